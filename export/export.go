// Package export writes extracted records as CSV, JSON, XML or an aligned
// text table. Every writer normalizes price fields first, so rows coming
// back from a client are handled the same as rows fresh from a run.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/beevik/etree"
	"github.com/fwojciec/unscraper"
)

// Supported output formats.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatXML   = "xml"
)

// Formats lists the supported output formats.
var Formats = []string{FormatTable, FormatCSV, FormatJSON, FormatXML}

// Write writes rows to w in the named format.
func Write(w io.Writer, format string, rows []unscraper.Record) error {
	switch format {
	case FormatTable:
		return WriteTable(w, rows)
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatJSON:
		return WriteJSON(w, rows)
	case FormatXML:
		return WriteXML(w, rows)
	default:
		return unscraper.Errorf(unscraper.EINVALID, "unknown format %q", format)
	}
}

// WriteCSV writes a header of the sorted column union followed by one line
// per row. No rows produce an empty body.
func WriteCSV(w io.Writer, rows []unscraper.Record) error {
	rows = unscraper.NormalizePrices(rows)
	if len(rows) == 0 {
		return nil
	}

	cols := unscraper.Columns(rows)
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(cells(row, cols)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes rows as a JSON array indented by two spaces.
// No rows produce "[]".
func WriteJSON(w io.Writer, rows []unscraper.Record) error {
	rows = unscraper.NormalizePrices(rows)
	if rows == nil {
		rows = []unscraper.Record{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(rows)
}

// WriteXML writes rows as <records><record><field name="..."> elements.
// Field names are attributes since column names are free text.
func WriteXML(w io.Writer, rows []unscraper.Record) error {
	rows = unscraper.NormalizePrices(rows)
	cols := unscraper.Columns(rows)

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("records")
	for _, row := range rows {
		rec := root.CreateElement("record")
		for _, col := range cols {
			v, ok := row[col]
			if !ok {
				continue
			}
			field := rec.CreateElement("field")
			field.CreateAttr("name", col)
			field.SetText(cell(v))
		}
	}
	doc.Indent(2)

	_, err := doc.WriteTo(w)
	return err
}

// WriteTable writes rows as space aligned columns for terminals.
func WriteTable(w io.Writer, rows []unscraper.Record) error {
	rows = unscraper.NormalizePrices(rows)
	if len(rows) == 0 {
		return nil
	}

	cols := unscraper.Columns(rows)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	writeLine(tw, cols)
	for _, row := range rows {
		writeLine(tw, cells(row, cols))
	}
	return tw.Flush()
}

func writeLine(w io.Writer, values []string) {
	for i, v := range values {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, v)
	}
	fmt.Fprint(w, "\n")
}

func cells(row unscraper.Record, cols []string) []string {
	out := make([]string, len(cols))
	for i, col := range cols {
		out[i] = cell(row[col])
	}
	return out
}

func cell(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
