package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/food-label-mcp/internal/config"
	"github.com/ironsheep/food-label-mcp/internal/logger"
)

// app carries state shared by all subcommands once the root command has
// loaded configuration.
type app struct {
	configFile string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "food-label-mcp",
		Short: "Read and analyze nutrition facts labels",
		Long: `food-label-mcp reads nutrition facts labels from photos and rates them.

Photos are enhanced, run through OCR (local Tesseract or Google Cloud Vision),
rebuilt into label rows, corrected for common OCR misreads and optionally
analyzed by a hosted language model.

Without a subcommand it serves the MCP protocol over stdin/stdout. Configure
it in your MCP client (e.g., Claude Desktop).

Settings come from FOODLABEL_* environment variables, a .env file in the
working directory, or --config. For example:
  FOODLABEL_OCR_ENGINE=vision     Use Google Cloud Vision
  FOODLABEL_LOG_LEVEL=debug       Enable debug logging
  HF_TOKEN=hf_...                 Hugging Face inference token`,
		Version:       fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (yaml, json or toml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log.level (trace, debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(a),
		newExtractCmd(a),
		newAnalyzeCmd(a),
		newReconstructCmd(a),
		newNormalizeCmd(a),
	)

	return root
}

func (a *app) load() error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.cfg = cfg
	return nil
}
