package report

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

// Filebuilder accumulates indented output lines.
type Filebuilder struct {
	Indent int

	strings.Builder
}

func (f *Filebuilder) Add(format string, a ...interface{}) {
	f.WriteString(strings.Repeat("  ", f.Indent))
	f.WriteString(fmt.Sprintf(format, a...))
	f.WriteRune('\n')
}

func (f *Filebuilder) AddI(format string, a ...interface{}) {
	f.Add(format, a...)
	f.Indent++
}

func (f *Filebuilder) AddD() {
	f.Indent--
}

// AddColumns writes rows with every column padded to its widest cell.
// Widths count grapheme clusters, so non-ASCII names stay aligned.
func (f *Filebuilder) AddColumns(rows [][]string) {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if w := uniseg.GraphemeClusterCount(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for _, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			line.WriteString(cell)
			if i == len(row)-1 {
				break
			}
			line.WriteString(strings.Repeat(" ", widths[i]-uniseg.GraphemeClusterCount(cell)+2))
		}
		f.Add("%s", strings.TrimRight(line.String(), " "))
	}
}
