package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/attrition-cli/internal/server"
	"github.com/KaramelBytes/attrition-cli/internal/session"
)

var (
	serveAddr    string
	serveDataset string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the submission form API and live dashboard over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.ListenAddr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		sess := session.New(analysisOptions(), logger)
		if serveDataset != "" {
			data, err := os.ReadFile(serveDataset)
			if err != nil {
				return fmt.Errorf("read dataset: %w", err)
			}
			if _, err := sess.Load(filepath.Base(serveDataset), data); err != nil {
				return err
			}
		}
		srv := server.New(sess, submissionStore(), cfg.MaxUploadBytes(), logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Dashboard at http://%s/dashboard (Ctrl+C to stop)\n", addr)
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveDataset, "dataset", "", "preload a dataset before accepting uploads")
}
