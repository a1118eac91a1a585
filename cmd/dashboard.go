package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/attrition-cli/internal/analysis"
	"github.com/KaramelBytes/attrition-cli/internal/session"
	"github.com/KaramelBytes/attrition-cli/internal/utils"
)

var (
	dashOutputPath string
	dashFormat     string
	dashDepartment []string
	dashJobRole    []string
	dashGender     []string
	dashAgeMin     float64
	dashAgeMax     float64
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard <file>",
	Short: "Summarize an employee spreadsheet as an attrition dashboard",
	Long: `Reads an xlsx, csv or tsv file and prints KPIs, per-department attrition,
satisfaction by role, the age distribution and a sample of employees.

Filters are ANDed. --department, --job-role and --gender may be repeated.
Only one of --age-min/--age-max is needed; the other defaults to the observed bound.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		format, err := parseFormat(dashFormat)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}

		sess := session.New(analysisOptions(), logger)
		report, err := sess.Load(filepath.Base(path), data)
		if err != nil {
			return err
		}
		sel, active, err := selectionFromFlags(cmd, sess)
		if err != nil {
			return err
		}
		if active {
			if report, err = sess.Apply(sel); err != nil {
				return err
			}
		}
		return writeReport(cmd.OutOrStdout(), report, format, dashOutputPath)
	},
}

// selectionFromFlags turns the filter flags into a selection. Dimensions whose
// flags were not given stay unconstrained.
func selectionFromFlags(cmd *cobra.Command, sess *session.Session) (analysis.Selection, bool, error) {
	var sel analysis.Selection
	f := cmd.Flags()
	if f.Changed("department") {
		sel.SetValues(analysis.ColDepartment, dashDepartment...)
	}
	if f.Changed("job-role") {
		sel.SetValues(analysis.ColJobRole, dashJobRole...)
	}
	if f.Changed("gender") {
		sel.SetValues(analysis.ColGender, dashGender...)
	}
	if f.Changed("age-min") || f.Changed("age-max") {
		dims, err := sess.Dimensions()
		if err != nil {
			return sel, false, err
		}
		age, ok := analysis.FindDimension(dims, analysis.ColAge)
		if !ok {
			fmt.Fprintln(cmd.ErrOrStderr(), "⚠ Warning: dataset has no numeric Age column; ignoring --age-min/--age-max")
		} else {
			lo, hi := age.Bounds.Lo, age.Bounds.Hi
			// Flags are clamped to the observed bounds; an empty result still fails validation.
			if f.Changed("age-min") && dashAgeMin > lo {
				lo = dashAgeMin
			}
			if f.Changed("age-max") && dashAgeMax < hi {
				hi = dashAgeMax
			}
			sel.SetRange(analysis.ColAge, lo, hi)
		}
	}
	return sel, !sel.IsZero(), nil
}

type outputFormat string

const (
	formatMarkdown outputFormat = "markdown"
	formatHTML     outputFormat = "html"
	formatJSON     outputFormat = "json"
)

func parseFormat(s string) (outputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return formatMarkdown, nil
	case "html":
		return formatHTML, nil
	case "json":
		return formatJSON, nil
	default:
		return "", fmt.Errorf("unsupported --format: %s (use markdown|html|json)", s)
	}
}

// writeReport renders r and writes it to outPath, or to w when outPath is empty.
func writeReport(w io.Writer, r *analysis.Report, format outputFormat, outPath string) error {
	var out []byte
	switch format {
	case formatHTML:
		out = r.HTML()
	case formatJSON:
		b, err := utils.PrettyJSON(r)
		if err != nil {
			return err
		}
		out = append(b, '\n')
	default:
		out = []byte(r.Markdown())
	}
	if outPath == "" {
		_, err := w.Write(out)
		return err
	}
	if err := utils.SafeWriteFile(outPath, out); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(w, "✓ Wrote %s dashboard to %s\n", format, outPath)
	return nil
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().StringVarP(&dashOutputPath, "output", "o", "", "write the dashboard to a file instead of stdout")
	dashboardCmd.Flags().StringVarP(&dashFormat, "format", "f", "markdown", "output format: markdown|html|json")
	dashboardCmd.Flags().StringArrayVar(&dashDepartment, "department", nil, "keep only this department (repeatable)")
	dashboardCmd.Flags().StringArrayVar(&dashJobRole, "job-role", nil, "keep only this job role (repeatable)")
	dashboardCmd.Flags().StringArrayVar(&dashGender, "gender", nil, "keep only this gender (repeatable)")
	dashboardCmd.Flags().Float64Var(&dashAgeMin, "age-min", 0, "minimum age (inclusive)")
	dashboardCmd.Flags().Float64Var(&dashAgeMax, "age-max", 0, "maximum age (inclusive)")
}
