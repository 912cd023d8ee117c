package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/el-tools/elstats/pkg/models/domain"
)

type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
)

// ParseFormat validates a CLI format spelling.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTable, FormatCSV:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

type TableConfig struct {
	IndexWidth int
	CellWidth  int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		IndexWidth: 12,
		CellWidth:  14,
	}
}

// Reporter renders canonical tables to the terminal, either as an aligned
// text table or as CSV for piping into other tools.
type Reporter struct {
	writer io.Writer
	format Format
	config TableConfig
}

func NewReporter(writer io.Writer, format Format) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		format: format,
		config: DefaultTableConfig(),
	}
}

func (r *Reporter) Handle(title string, t *domain.Table) error {
	if r.format == FormatCSV {
		return r.writeCSV(t)
	}
	return r.writeTable(title, t)
}

func (r *Reporter) writeCSV(t *domain.Table) error {
	w := csv.NewWriter(r.writer)

	header := append([]string{"date"}, t.Columns()...)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, idx := range t.Index() {
		record := make([]string, 0, len(header))
		record = append(record, idx)
		for _, col := range t.Columns() {
			record = append(record, formatValue(t.Value(idx, col)))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (r *Reporter) writeTable(title string, t *domain.Table) error {
	columns := t.Columns()

	funcMap := template.FuncMap{
		"headerRow": func() string {
			cells := make([]string, 0, len(columns)+1)
			cells = append(cells, fmt.Sprintf("%-*s", r.config.IndexWidth, "date"))
			for _, c := range columns {
				cells = append(cells, fmt.Sprintf("%-*s", r.config.CellWidth, truncate(c, r.config.CellWidth)))
			}
			return "| " + strings.Join(cells, " | ") + " |"
		},
		"dataRow": func(idx string) string {
			cells := make([]string, 0, len(columns)+1)
			cells = append(cells, fmt.Sprintf("%-*s", r.config.IndexWidth, idx))
			for _, c := range columns {
				cells = append(cells, fmt.Sprintf("%*s", r.config.CellWidth, formatValue(t.Value(idx, c))))
			}
			return "| " + strings.Join(cells, " | ") + " |"
		},
		"separator": func() string {
			parts := make([]string, 0, len(columns)+1)
			parts = append(parts, strings.Repeat("-", r.config.IndexWidth+2))
			for range columns {
				parts = append(parts, strings.Repeat("-", r.config.CellWidth+2))
			}
			return "+" + strings.Join(parts, "+") + "+"
		},
	}

	tmpl := `{{.Title}} ({{len .Rows}} rows)

{{separator}}
{{headerRow}}
{{separator}}
{{range .Rows}}{{dataRow .}}
{{end}}{{separator}}
`

	tpl, err := template.New("table").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return tpl.Execute(r.writer, struct {
		Title string
		Rows  []string
	}{Title: title, Rows: t.Index()})
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}
