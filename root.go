package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stereo2spatial/combiner"
	"stereo2spatial/config"
	"stereo2spatial/database"
	"stereo2spatial/logging"
	"stereo2spatial/scanner"
	"stereo2spatial/signalhandler"
	"stereo2spatial/utils"
)

var (
	errConversionsFailed = errors.New("one or more conversions failed")
	errNoInput           = errors.New("no input given")
)

type convertFlags struct {
	left       string
	right      string
	metadata   string
	outputDir  string
	output     string
	fov        string
	baseline   string
	suffix     string
	verbose    bool
	force      bool
	jobs       int
	history    bool
	encoder    string
	configPath string
}

func newRootCommand() *cobra.Command {
	flags := &convertFlags{}
	ctx := newCommandContext(&flags.configPath)

	rootCmd := &cobra.Command{
		Use:   "stereo2spatial [INPUT...]",
		Short: "Convert stereo images (MPO, JPS, PSD) to Apple spatial HEIC photos",
		Long: `Convert stereo image files to spatial HEIC photos.

Pass one or more MPO, JPS or PSD files (or directories containing them), or a
separate pair with --left and --right.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.CloseLogger()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, ctx, flags, args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Configuration file path")

	f := rootCmd.Flags()
	f.StringVar(&flags.left, "left", "", "Left-eye image file (use with --right for a separate L/R pair)")
	f.StringVar(&flags.right, "right", "", "Right-eye image file (use with --left for a separate L/R pair)")
	f.StringVar(&flags.metadata, "metadata", "", "Image whose EXIF is embedded in the output (default: the source file, or the left image in pair mode)")
	f.StringVarP(&flags.outputDir, "output-dir", "o", "", "Output directory (default: same directory as input file)")
	f.StringVar(&flags.output, "output", "", "Explicit output file path (pair mode only, overrides --output-dir and --suffix)")
	f.StringVar(&flags.fov, "fov", "", "Horizontal field of view in degrees (overrides EXIF-derived value)")
	f.StringVar(&flags.baseline, "baseline", "", "Stereo baseline in millimeters (overrides metadata)")
	f.StringVar(&flags.suffix, "suffix", "", "Suffix added before .heic (default: '_spatial')")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "Print EXIF/metadata details during conversion")
	f.BoolVar(&flags.force, "force", false, "Convert even when history shows the source is unchanged")
	f.IntVar(&flags.jobs, "jobs", 0, "Concurrent conversions (0 = choose from CPU count)")
	f.BoolVar(&flags.history, "history", false, "Record conversions and skip unchanged sources")
	f.StringVar(&flags.encoder, "encoder", "", "Path to the pair2spatial binary")

	rootCmd.AddCommand(newFormatsCommand())
	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

func runConvert(cmd *cobra.Command, ctx *commandContext, flags *convertFlags, inputs []string) error {
	hasLeft := flags.left != ""
	hasRight := flags.right != ""
	if hasLeft != hasRight {
		return errors.New("--left and --right must be used together")
	}
	pairMode := hasLeft && hasRight
	if pairMode && len(inputs) > 0 {
		return errors.New("cannot combine positional stereo files with --left/--right")
	}
	if !pairMode && len(inputs) == 0 {
		cmd.SetOut(cmd.ErrOrStderr())
		cmd.Help()
		return errNoInput
	}
	if flags.output != "" && !pairMode {
		return errors.New("--output is only valid with --left/--right")
	}

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	options, err := buildConvertOptions(cmd, cfg, flags)
	if err != nil {
		return err
	}

	encoderPath := flags.encoder
	if encoderPath == "" {
		encoderPath = cfg.Encoder.Path
	}
	binary, err := combiner.LocateEncoder(encoderPath)
	if err != nil {
		return err
	}
	encoder := combiner.NewEncoder(binary,
		combiner.WithQuality(cfg.Encoder.Quality),
		combiner.WithDefaults(cfg.Camera.FOVHorizontal, cfg.Camera.Baseline),
		combiner.WithStatusWriter(cmd.ErrOrStderr()),
	)

	converter := scanner.NewConverter(encoder, nil)
	converter.Stdout = cmd.OutOrStdout()
	converter.Stderr = cmd.ErrOrStderr()

	if flags.history || cfg.History.Enabled {
		if err := utils.EnsureParentDir(cfg.History.Path); err != nil {
			return err
		}
		db, err := database.InitDatabase(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("open history database: %w", err)
		}
		defer db.Close()
		converter.DB = db
	}

	runCtx, stop := signalhandler.SetupHandler(commandContextOf(cmd))
	defer stop()

	if pairMode {
		result := converter.ConvertPair(runCtx, scanner.PairOptions{
			ConvertOptions: options,
			Left:           flags.left,
			Right:          flags.right,
			OutputPath:     flags.output,
		})
		converter.Report(result)
		if !result.Success {
			return errConversionsFailed
		}
		return nil
	}

	options.Inputs = inputs
	batch := converter.ConvertAll(runCtx, options)
	scanner.PrintCompletionStats(cmd.ErrOrStderr(), batch)
	if batch.Errors > 0 || batch.Interrupted {
		return errConversionsFailed
	}
	return nil
}

// buildConvertOptions merges flags over configuration values
func buildConvertOptions(cmd *cobra.Command, cfg *config.Config, flags *convertFlags) (scanner.ConvertOptions, error) {
	options := scanner.ConvertOptions{
		OutputDir:    cfg.Output.Dir,
		Suffix:       cfg.Output.Suffix,
		MetadataPath: flags.metadata,
		ForceRewrite: flags.force,
		Verbose:      flags.verbose,
		MaxWorkers:   cfg.Batch.Jobs,
	}

	changed := cmd.Flags().Changed
	if changed("output-dir") {
		dir, err := config.ExpandPath(flags.outputDir)
		if err != nil {
			return options, err
		}
		options.OutputDir = dir
	}
	if changed("suffix") {
		options.Suffix = flags.suffix
	}
	if changed("jobs") {
		if flags.jobs < 0 {
			return options, errors.New("--jobs must not be negative")
		}
		options.MaxWorkers = flags.jobs
	}
	if strings.TrimSpace(flags.fov) != "" {
		fov, err := utils.ParseFOV(flags.fov)
		if err != nil {
			return options, err
		}
		options.FOV = &fov
	}
	if strings.TrimSpace(flags.baseline) != "" {
		baseline, err := utils.ParseBaseline(flags.baseline)
		if err != nil {
			return options, err
		}
		options.Baseline = &baseline
	}
	return options, nil
}

func commandContextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
