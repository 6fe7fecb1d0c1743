package main

import (
	"strings"
	"sync"

	"stereo2spatial/config"
	"stereo2spatial/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := logging.SetupLogger(logging.Options{
			Level:    cfg.Logging.Level,
			Format:   cfg.Logging.Format,
			FilePath: cfg.Logging.File,
		}); err != nil {
			c.configErr = err
			return
		}
		if exists {
			logging.DebugLog("Loaded configuration from %s", resolved)
		}
		c.config = cfg
	})
	return c.config, c.configErr
}
