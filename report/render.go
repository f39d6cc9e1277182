package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/alecthomas/repr"
)

var Formats = []string{"text", "json", "repr"}

// Render writes r to w in the named format.
func Render(w io.Writer, r *Report, format string) error {
	switch format {
	case "", "text":
		_, err := io.WriteString(w, Text(r))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "repr":
		_, err := fmt.Fprintln(w, repr.String(r, repr.Indent("  "), repr.OmitEmpty(true)))
		return err
	default:
		return fmt.Errorf("unknown format %q, expected one of %v", format, Formats)
	}
}

// Text lays a report out for a terminal: one heading per entry, then one
// aligned row per inferred value.
func Text(r *Report) string {
	build := Filebuilder{}
	build.Add("%s %s", r.Command, r.Subject)
	build.Indent++
	for _, e := range r.Entries {
		if e.Error != "" && len(e.Values) == 0 {
			build.Add("%s: error: %s", e.Name, e.Error)
			continue
		}
		build.AddI("%s:", e.Name)
		var rows [][]string
		for _, v := range e.Values {
			row := []string{v.Repr, v.Display, v.Type, "truth=" + v.Truth}
			if v.Summary != "" {
				row = append(row, "# "+v.Summary)
			}
			rows = append(rows, row)
		}
		build.AddColumns(rows)
		if e.Error != "" {
			build.Add("error: %s", e.Error)
		}
		build.AddD()
	}
	return build.String()
}
