package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"stereo2spatial/config"
	"stereo2spatial/database"
	"stereo2spatial/imageprocessor"
	"stereo2spatial/metadata"
)

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "formats",
		Short:       "List supported stereo formats",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := imageprocessor.NewRegistry()
			rows := make([][]string, 0, len(registry.Handlers()))
			for _, h := range registry.Handlers() {
				rows = append(rows, []string{h.Name(), strings.Join(h.SupportedExtensions(), " ")})
			}
			pairs := imageprocessor.NewPairHandler()
			rows = append(rows, []string{pairs.Name() + " (--left/--right)", strings.Join(pairs.SupportedExtensions(), " ")})

			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Handler", "Extensions"}, rows, nil))
			return nil
		},
	}
}

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE...",
		Short: "Show the camera summary and handler for each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := imageprocessor.NewRegistry()
			analyzer := metadata.DefaultAnalyzer()

			rows := make([][]string, 0, len(args))
			for _, path := range args {
				rows = append(rows, inspectRow(registry, analyzer, path))
			}

			headers := []string{"File", "Handler", "Camera", "Focal", "35mm", "Sensor", "FOV"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}
}

func inspectRow(registry *imageprocessor.Registry, analyzer *metadata.Analyzer, path string) []string {
	name := filepath.Base(path)
	if _, err := os.Stat(path); err != nil {
		return []string{name, "not found"}
	}

	handler := "-"
	if h := registry.HandlerFor(path); h != nil {
		handler = h.Name()
	}

	summary := analyzer.SummaryFromPath(path)
	camera := strings.TrimSpace(summary.Make + " " + summary.Model)
	if camera == "" {
		camera = "-"
	}
	row := []string{name, handler, camera, "-", "-", "-", "-"}
	if summary.FocalLength > 0 {
		row[3] = fmt.Sprintf("%.1fmm", summary.FocalLength)
	}
	if summary.FocalLength35mm > 0 {
		row[4] = fmt.Sprintf("%dmm", summary.FocalLength35mm)
	}
	if summary.SensorWidth > 0 {
		row[5] = fmt.Sprintf("%.2fmm", summary.SensorWidth)
	}
	if fov, ok := summary.FOV(); ok {
		row[6] = fmt.Sprintf("%.1f°", fov)
	}
	return row
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded conversions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := os.Stat(cfg.History.Path); err != nil {
				fmt.Fprintf(out, "No history recorded at %s\n", cfg.History.Path)
				return nil
			}

			db, err := database.InitDatabase(cfg.History.Path)
			if err != nil {
				return fmt.Errorf("open history database: %w", err)
			}
			defer db.Close()

			records, err := database.ListConversions(db, limit)
			if err != nil {
				return err
			}
			stats, err := database.GetHistoryStats(db)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					rec.ConvertedAt,
					rec.SourcePath,
					filepath.Base(rec.OutputPath),
					rec.Format,
					strconv.FormatFloat(rec.FOVHorizontal, 'f', 2, 64),
					strconv.FormatFloat(rec.Baseline, 'f', 1, 64),
				})
			}
			headers := []string{"Converted", "Source", "Output", "Format", "FOV", "Baseline"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			fmt.Fprintf(out, "%d conversion(s) of %d source(s)\n", stats.TotalConversions, stats.DistinctSources)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of rows to show (0 = all)")
	return cmd
}

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	configCmd.AddCommand(newConfigInitCommand())
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			var err error
			if target == "" {
				target, err = config.DefaultConfigPath()
			} else {
				target, err = config.ExpandPath(target)
			}
			if err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}
