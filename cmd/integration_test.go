package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/attrition-cli/internal/analysis"
)

const hrCSV = "EmployeeNumber,Department,JobRole,Age,Gender,Attrition,JobSatisfaction,PerformanceRating\n" +
	"1,Sales,Sales Executive,25,Female,Yes,1,3\n" +
	"2,Research & Development,Research Scientist,35,Male,No,4,4\n" +
	"3,Sales,Sales Executive,45,Male,No,3,3\n" +
	"4,Human Resources,Manager,38,Female,Yes,2,4\n"

// resetFlags clears values and Changed state that persist between Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace([]string{})
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns stdout.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := tryCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func tryCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), err
}

func isolatedHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCLI_DashboardMarkdown(t *testing.T) {
	home := isolatedHome(t)
	path := writeFixture(t, home, "hr.csv", hrCSV)

	out := runCmd(t, "dashboard", path)
	assert.Contains(t, out, "[DASHBOARD]")
	assert.Contains(t, out, "- File: hr.csv")
	assert.Contains(t, out, "- Attrition Rate: 50.0%")
	assert.Contains(t, out, "[ATTRITION RATE BY DEPARTMENT]")
	assert.Contains(t, out, "[EMPLOYEE SAMPLE]")
}

func TestCLI_DashboardFilters(t *testing.T) {
	home := isolatedHome(t)
	path := writeFixture(t, home, "hr.csv", hrCSV)

	out := runCmd(t, "dashboard", path, "--format", "json", "--department", "Sales", "--department", "Human Resources", "--age-max", "40")
	var r analysis.Report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, 2, r.Rows)
	assert.Equal(t, 4, r.TotalRows)
	assert.Equal(t, []string{"Sales", "Human Resources"}, r.Selection.Values[analysis.ColDepartment])
	assert.Equal(t, analysis.Range{Lo: 25, Hi: 40}, r.Selection.Ranges[analysis.ColAge])

	// Flags from the previous run must not leak.
	out = runCmd(t, "dashboard", path, "--format", "json", "--gender", "Male")
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, 2, r.Rows)
	assert.NotContains(t, r.Selection.Values, analysis.ColDepartment)
}

func TestCLI_DashboardRejectsUnknownValue(t *testing.T) {
	home := isolatedHome(t)
	path := writeFixture(t, home, "hr.csv", hrCSV)

	_, err := tryCmd(t, "dashboard", path, "--department", "Legal")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown value "Legal"`)
}

func TestCLI_DashboardWorkbookToHTMLFile(t *testing.T) {
	home := isolatedHome(t)
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, line := range strings.Split(strings.TrimSpace(hrCSV), "\n") {
		cells := strings.Split(line, ",")
		row := make([]interface{}, len(cells))
		for j, c := range cells {
			row[j] = c
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	xlsx := filepath.Join(home, "hr.xlsx")
	require.NoError(t, f.SaveAs(xlsx))
	require.NoError(t, f.Close())

	outPath := filepath.Join(home, "dash.html")
	out := runCmd(t, "dashboard", xlsx, "--format", "html", "-o", outPath)
	assert.Contains(t, out, "✓ Wrote html dashboard")

	b, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "<title>Attrition Dashboard - hr.xlsx</title>")
	assert.Contains(t, string(b), "50.0%")
}

func TestCLI_DashboardUnreadableFile(t *testing.T) {
	home := isolatedHome(t)
	path := writeFixture(t, home, "empty.csv", "")
	_, err := tryCmd(t, "dashboard", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty or unreadable file")

	_, err = tryCmd(t, "dashboard", path, "--format", "pdf")
	assert.Error(t, err)
}

func TestCLI_SubmitAndList(t *testing.T) {
	home := isolatedHome(t)
	path := writeFixture(t, home, "hr.csv", hrCSV)

	out := runCmd(t, "submit", path, "--name", "Jane Doe", "--email", "jane@example.com", "--phone", "555", "--company", "Acme")
	assert.Contains(t, out, "[KEY METRICS]")

	subsDir := filepath.Join(home, ".attrition", "submissions")
	entries, err := os.ReadDir(subsDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "form yaml plus raw upload")

	out = runCmd(t, "submissions")
	assert.Contains(t, out, "Jane Doe <jane@example.com>, Acme")
	assert.Contains(t, out, "_hr.csv")
}

func TestCLI_SubmitRequiresFields(t *testing.T) {
	home := isolatedHome(t)
	path := writeFixture(t, home, "hr.csv", hrCSV)

	_, err := tryCmd(t, "submit", path, "--name", "Jane")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")

	out := runCmd(t, "submissions")
	assert.Contains(t, out, "(no submissions")
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := isolatedHome(t)

	runCmd(t, "config", "set", "preview_rows", "5")
	out := runCmd(t, "config", "show")
	assert.Contains(t, out, "preview_rows: 5")
	assert.Contains(t, out, "submissions_dir: "+filepath.Join(home, ".attrition", "submissions"))
	saved, err := os.ReadFile(filepath.Join(home, ".attrition", "config.yaml"))
	require.NoError(t, err)
	assert.NotContains(t, string(saved), "submissions_dir", "default location is not pinned")

	_, err = tryCmd(t, "config", "set", "preview_rows", "zero")
	assert.Error(t, err)
}

func TestCLI_PreviewRowsOverride(t *testing.T) {
	home := isolatedHome(t)
	path := writeFixture(t, home, "hr.csv", hrCSV)

	out := runCmd(t, "dashboard", path, "--format", "json", "--preview-rows", "1")
	var r analysis.Report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	require.NotNil(t, r.Preview)
	assert.Len(t, r.Preview.Rows, 1)
}
