package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/attrition-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/attrition-cli/internal/config"
	"github.com/KaramelBytes/attrition-cli/internal/logging"
	"github.com/KaramelBytes/attrition-cli/internal/submission"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	envFile string
	// Report overrides (override config if set)
	flagPreviewRows   int
	flagHistogramBins int

	// Loaded configuration and logger
	cfg    *cfgpkg.Global
	logger = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "attrition",
	Short: "Attrition: HR attrition dashboards from spreadsheet uploads",
	Long: `Attrition turns an uploaded employee spreadsheet (xlsx, csv or tsv) into a
filterable dashboard of attrition KPIs and chart-ready aggregates, and keeps
each submission with its contact form on local disk.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.attrition/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before configuration")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&flagPreviewRows, "preview-rows", 0, "rows in the employee sample (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagHistogramBins, "bins", 0, "age histogram bins (overrides config)")
}

func loadConfig() {
	if err := cfgpkg.LoadDotEnv(envFile); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so read-only commands still work
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{LogLevel: "info", LogFormat: "text", PreviewRows: 20, HistogramBins: 20, MaxUploadMB: 32, ListenAddr: "127.0.0.1:8080"}
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("preview-rows") && flagPreviewRows > 0 {
		cfg.PreviewRows = flagPreviewRows
	}
	if f.Changed("bins") && flagHistogramBins > 0 {
		cfg.HistogramBins = flagHistogramBins
	}
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	logger = logging.New(level, cfg.LogFormat, os.Stderr).With(slog.String("app", "attrition"))
}

func analysisOptions() analysis.Options {
	return analysis.Options{PreviewRows: cfg.PreviewRows, HistogramBins: cfg.HistogramBins}
}

func submissionStore() *submission.Store {
	return submission.NewStore(cfg.SubmissionsDir, logger)
}
