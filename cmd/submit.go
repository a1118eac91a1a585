package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/attrition-cli/internal/session"
	"github.com/KaramelBytes/attrition-cli/internal/submission"
)

var (
	subName       string
	subEmail      string
	subPhone      string
	subCompany    string
	subOutputPath string
	subFormat     string
)

var submitCmd = &cobra.Command{
	Use:   "submit <file>",
	Short: "Submit contact details with a dataset, save both and print the dashboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		format, err := parseFormat(subFormat)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}
		form := submission.Form{
			Name:     subName,
			Email:    subEmail,
			Phone:    subPhone,
			Company:  subCompany,
			Filename: filepath.Base(path),
		}

		store := submissionStore()
		sess := session.New(analysisOptions(), logger)
		rec, report, err := sess.Submit(store, form, data)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Saved submission %s to %s\n", rec.ID, rec.FormPath)
		return writeReport(cmd.OutOrStdout(), report, format, subOutputPath)
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().StringVar(&subName, "name", "", "your name (required)")
	submitCmd.Flags().StringVar(&subEmail, "email", "", "your email (required)")
	submitCmd.Flags().StringVar(&subPhone, "phone", "", "your phone number (required)")
	submitCmd.Flags().StringVar(&subCompany, "company", "", "company name")
	submitCmd.Flags().StringVarP(&subOutputPath, "output", "o", "", "write the dashboard to a file instead of stdout")
	submitCmd.Flags().StringVarP(&subFormat, "format", "f", "markdown", "output format: markdown|html|json")
}
