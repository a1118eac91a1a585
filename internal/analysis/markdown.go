package analysis

import (
	"fmt"
	stdhtml "html"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown renders the report as sectioned plain Markdown.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DASHBOARD]\n\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("- File: %s\n", cell(r.Name)))
	}
	if r.Rows < r.TotalRows {
		b.WriteString(fmt.Sprintf("- Rows: %d of %d\n", r.Rows, r.TotalRows))
	} else {
		b.WriteString(fmt.Sprintf("- Rows: %d\n", r.Rows))
	}
	b.WriteString(fmt.Sprintf("- Columns: %d\n", len(r.Schema)))
	if len(r.Features) > 0 {
		b.WriteString(fmt.Sprintf("- Recognised: %s\n", strings.Join(r.Features, ", ")))
	}

	if len(r.Dimensions) > 0 {
		b.WriteString("\n[FILTERS]\n\n")
		for _, d := range r.Dimensions {
			b.WriteString(fmt.Sprintf("- %s: %s\n", d.Name, r.describeSelection(d)))
		}
	}

	b.WriteString("\n[KEY METRICS]\n\n")
	if len(r.KPIs) == 0 {
		b.WriteString("- none available for this dataset\n")
	}
	for _, k := range r.KPIs {
		b.WriteString(fmt.Sprintf("- %s: %s\n", k.Label, k.Text))
	}

	for _, a := range r.Aggregates {
		b.WriteString(fmt.Sprintf("\n[%s]\n\n", strings.ToUpper(a.Title)))
		writeAggregate(&b, a)
	}

	if r.Preview != nil {
		b.WriteString("\n[EMPLOYEE SAMPLE]\n\n")
		writeTable(&b, r.Preview.Columns, r.Preview.Rows)
	}

	if len(r.Notes) > 0 {
		b.WriteString("\n[NOTES]\n\n")
		for _, n := range r.Notes {
			b.WriteString("- " + n + "\n")
		}
	}
	return b.String()
}

// HTML renders the Markdown report as a complete HTML page.
func (r *Report) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	title := "Attrition Dashboard"
	if r.Name != "" {
		title += " - " + r.Name
	}
	// Smartypants writes the title without escaping it.
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage | html.SkipHTML,
		Title: stdhtml.EscapeString(title),
	})
	return markdown.ToHTML([]byte(r.Markdown()), p, renderer)
}

func (r *Report) describeSelection(d Dimension) string {
	switch d.Kind {
	case RangeKind:
		if sr, ok := r.Selection.Ranges[d.Name]; ok {
			return fmt.Sprintf("%s (of %s)", sr, *d.Bounds)
		}
		return fmt.Sprintf("all %s", *d.Bounds)
	default:
		vals, ok := r.Selection.Values[d.Name]
		if !ok || (len(vals) == len(d.Values) && sameSet(vals, d.Values)) {
			return fmt.Sprintf("all (%d)", len(d.Values))
		}
		if len(vals) == 0 {
			return "none"
		}
		return strings.Join(escapeAll(vals), ", ")
	}
}

func sameSet(a, b []string) bool {
	seen := make(map[string]struct{}, len(b))
	for _, v := range b {
		seen[v] = struct{}{}
	}
	for _, v := range a {
		if _, ok := seen[v]; !ok {
			return false
		}
	}
	return true
}

func writeAggregate(b *strings.Builder, a Aggregate) {
	if a.Len() == 0 {
		b.WriteString("- no data\n")
		return
	}
	switch a.Kind {
	case ChartBar:
		rows := make([][]string, len(a.Bars))
		for i, bar := range a.Bars {
			rows[i] = []string{bar.Key, formatBar(a.ID, bar.Value), fmt.Sprintf("%d", bar.Count)}
		}
		writeTable(b, []string{a.XLabel, a.YLabel, "n"}, rows)
	case ChartHistogram:
		rows := make([][]string, len(a.Bins))
		for i, bin := range a.Bins {
			rows[i] = []string{fmt.Sprintf("%.1f - %.1f", bin.Lo, bin.Hi), fmt.Sprintf("%d", bin.Count)}
		}
		writeTable(b, []string{a.XLabel, a.YLabel}, rows)
	case ChartScatter:
		// Points are summarised per color; the full list is in the JSON output.
		counts := map[string]int{}
		var order []string
		for _, p := range a.Points {
			if _, ok := counts[p.Color]; !ok {
				order = append(order, p.Color)
			}
			counts[p.Color]++
		}
		b.WriteString(fmt.Sprintf("- %d points (%s on x, %s on y)\n", len(a.Points), a.XLabel, a.YLabel))
		for _, c := range order {
			b.WriteString(fmt.Sprintf("  - %s: %d\n", cell(c), counts[c]))
		}
	}
}

func writeTable(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("| " + strings.Join(escapeAll(header), " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
	for _, row := range rows {
		b.WriteString("| " + strings.Join(escapeAll(row), " | ") + " |\n")
	}
}

func escapeAll(vals []string) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = cell(v)
	}
	return out
}

func formatBar(id string, v float64) string {
	if id == AggAttritionByDepartment {
		return fmt.Sprintf("%.1f%%", v*100)
	}
	return fmt.Sprintf("%.2f", v)
}

// cellEscaper backslash-escapes the characters that would otherwise start inline
// HTML, an entity or a table column break.
var cellEscaper = strings.NewReplacer(
	"\r\n", " ",
	"\n", " ",
	"\\", "\\\\",
	"|", "\\|",
	"<", "\\<",
	">", "\\>",
	"&", "\\&",
)

// cell makes v safe for a single Markdown table cell or list item. Text read
// from an upload never reaches the HTML page as markup.
func cell(v string) string {
	v = cellEscaper.Replace(v)
	if v == "" {
		return " "
	}
	return v
}
