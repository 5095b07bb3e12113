package summary

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

const analystRole = "You are an expert data analyst."

// BuildPrompt renders the analyst prompt for req. Rows are embedded one JSON
// object per line; when Headers is empty the column list comes from the
// first row.
func BuildPrompt(req Request) string {
	var b strings.Builder

	b.WriteString(analystRole)
	b.WriteString("\n\n1. Give a clear summary of what is happening in this chart (title: ")
	b.WriteString(req.ChartTitle)
	b.WriteString(", type: ")
	b.WriteString(req.ChartType)
	b.WriteString(").\n")
	b.WriteString("2. Provide two detailed insights, each as a separate point.\n")
	b.WriteString("3. Suggest one actionable improvement or next step.\n\n")
	b.WriteString("Be specific and use the data provided. Format your answer as a plain, short, bulleted list (not JSON, not code block).\n\n")

	b.WriteString("Columns: ")
	b.WriteString(strings.Join(columns(req), ", "))
	b.WriteString("\nTotal rows: ")
	b.WriteString(strconv.Itoa(max(req.TotalRows, len(req.Rows))))
	b.WriteString("\n\nData:\n")

	for i, row := range req.Rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		// map keys are sorted by the encoder, so the prompt is stable.
		line, err := json.Marshal(row)
		if err != nil {
			continue
		}
		b.Write(line)
	}
	return b.String()
}

func columns(req Request) []string {
	if len(req.Headers) > 0 {
		return req.Headers
	}
	if len(req.Rows) == 0 {
		return nil
	}
	cols := make([]string, 0, len(req.Rows[0]))
	for k := range req.Rows[0] {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// SplitLines breaks a model answer into trimmed, non-empty lines.
func SplitLines(text string) []string {
	lines := []string{}
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
