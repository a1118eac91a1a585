package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/attrition-cli/internal/utils"
)

var listJSON bool

var submissionsCmd = &cobra.Command{
	Use:   "submissions",
	Short: "List saved submissions, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := submissionStore()
		recs, err := store.List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if listJSON {
			b, err := utils.PrettyJSON(recs)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		if len(recs) == 0 {
			fmt.Fprintf(out, "(no submissions in %s)\n", store.Dir())
			return nil
		}
		for _, r := range recs {
			company := ""
			if r.Form.Company != "" {
				company = ", " + r.Form.Company
			}
			fmt.Fprintf(out, "- %s %s <%s>%s: %s (%d bytes)\n",
				r.SubmittedAt.Format("2006-01-02 15:04:05"), r.Form.Name, r.Form.Email, company, r.Upload, r.Size)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(submissionsCmd)
	submissionsCmd.Flags().BoolVar(&listJSON, "json", false, "print records as JSON")
}
