package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"securecheck/internal/catalog"
	"securecheck/internal/ingest"

	"github.com/jedib0t/go-pretty/v6/table"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON:
		return nil
	default:
		return fmt.Errorf("unknown format %q (want table or json)", format)
	}
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderResult(w io.Writer, res *catalog.Result, format string) error {
	if format == formatJSON {
		return renderJSON(w, res)
	}

	_, _ = fmt.Fprintln(w, res.Title)
	if len(res.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := newTable(w)
	header := make(table.Row, len(res.Columns))
	for i, col := range res.Columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range res.Rows {
		out := make(table.Row, len(row))
		for i, v := range row {
			out[i] = formatValue(v)
		}
		t.AppendRow(out)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(res.Rows))
	return nil
}

func renderDefinitions(w io.Writer, defs []catalog.Definition, format string) error {
	if format == formatJSON {
		return renderJSON(w, defs)
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"#", "slug", "category", "title"})
	for _, def := range defs {
		t.AppendRow(table.Row{int(def.Query), def.Slug, def.Category, def.Title})
	}
	t.Render()
	return nil
}

func renderReport(w io.Writer, report *ingest.Report, format string) error {
	if format == formatJSON {
		return renderJSON(w, report)
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"read", "loaded", "rejected", "duplicates"})
	t.AppendRow(table.Row{report.Read, report.Loaded, report.Rejected, report.Duplicates})
	t.Render()

	if len(report.Errors) > 0 {
		errs := newTable(w)
		errs.AppendHeader(table.Row{"line", "reason"})
		for _, e := range report.Errors {
			errs.AppendRow(table.Row{e.Line, e.Reason})
		}
		errs.Render()
		if report.Rejected > len(report.Errors) {
			_, _ = fmt.Fprintf(w, "... %d more rejected rows\n", report.Rejected-len(report.Errors))
		}
	}
	return nil
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case *float64:
		if val == nil {
			return "NULL"
		}
		return strconv.FormatFloat(*val, 'f', 2, 64)
	case float64:
		return strconv.FormatFloat(val, 'f', 2, 64)
	case string:
		if val == "" {
			return "NULL"
		}
		return val
	default:
		return fmt.Sprint(val)
	}
}
