package ast

import (
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var gm = goldmark.New(
	goldmark.WithParser(
		goldmark.DefaultParser(),
	),
)

type Documentation struct {
	Summary    string
	Discussion []string

	Source []byte
}

// FromDocstring reads a docstring as markdown. The first paragraph is the
// summary; every later paragraph or heading is discussion.
func FromDocstring(doc string) *Documentation {
	source := []byte(CleanDocstring(doc))

	document := gm.Parser().Parse(text.NewReader(source))

	d := Documentation{}
	d.Source = source

	summaryGot := false
	for i := document.FirstChild(); i != nil; i = i.NextSibling() {
		switch i.Kind() {
		case gmast.KindParagraph:
			if !summaryGot {
				d.Summary = joinLines(i, source)
				summaryGot = true
				continue
			}
			d.Discussion = append(d.Discussion, joinLines(i, source))
		case gmast.KindHeading:
			d.Discussion = append(d.Discussion, string(i.Text(source)))
		}
	}

	return &d
}

func joinLines(n gmast.Node, source []byte) string {
	lines := n.Lines()
	parts := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		parts = append(parts, strings.TrimSpace(string(seg.Value(source))))
	}
	return strings.Join(parts, " ")
}

// CleanDocstring removes the indentation that docstrings inherit from the
// code around them: the first line is stripped, every other line loses the
// smallest common indentation, and blank leading/trailing lines go away.
func CleanDocstring(doc string) string {
	lines := strings.Split(strings.ReplaceAll(doc, "\t", "    "), "\n")
	indent := -1
	for _, line := range lines[1:] {
		stripped := strings.TrimLeft(line, " ")
		if stripped == "" {
			continue
		}
		if n := len(line) - len(stripped); indent < 0 || n < indent {
			indent = n
		}
	}

	lines[0] = strings.TrimSpace(lines[0])
	if indent > 0 {
		for i := 1; i < len(lines); i++ {
			if len(lines[i]) >= indent {
				lines[i] = lines[i][indent:]
			} else {
				lines[i] = strings.TrimLeft(lines[i], " ")
			}
		}
	}

	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
