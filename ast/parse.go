package ast

import (
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// SyntaxError reports the first ERROR or MISSING node of a parse.
type SyntaxError struct {
	Line, Column int
	Near         string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d:%d near %q", e.Line, e.Column, e.Near)
}

// Parse parses Python source into a File.
func Parse(input []byte) (*File, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree := parser.Parse(nil, input)
	root := tree.RootNode()
	if root.HasError() {
		return nil, firstError(root, input)
	}

	file := FileFromNode(root, input)
	return &file, nil
}

func firstError(n *sitter.Node, input []byte) error {
	if n.Type() == "ERROR" || n.IsMissing() {
		near := n.Content(input)
		if len(near) > 20 {
			near = near[:20]
		}
		return &SyntaxError{int(n.StartPoint().Row) + 1, int(n.StartPoint().Column) + 1, near}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.HasError() || child.IsMissing() {
			return firstError(child, input)
		}
	}
	return &SyntaxError{int(n.StartPoint().Row) + 1, int(n.StartPoint().Column) + 1, ""}
}

func FileFromNode(n *sitter.Node, input []byte) File {
	var f File
	f.Span = SpanFromNode(n)
	f.Body, f.Doc = blockFromNode(n, input)
	return f
}

// blockFromNode converts the statements of a module or block and extracts
// the leading docstring.
func blockFromNode(n *sitter.Node, input []byte) ([]Stmt, string) {
	var body []Stmt
	doc := ""
	first := true
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		if first {
			first = false
			if s, ok := docstringOf(child, input); ok {
				doc = s
				continue
			}
		}
		body = append(body, StatementsFromNode(child, input)...)
	}
	return body, doc
}

func docstringOf(n *sitter.Node, input []byte) (string, bool) {
	if n.Type() != "expression_statement" || n.NamedChildCount() != 1 {
		return "", false
	}
	str := n.NamedChild(0)
	if str.Type() != "string" {
		return "", false
	}
	return stringLiteral(str.Content(input)), true
}

// StatementsFromNode converts one statement node. Compound statements
// produce a single Compound; unsupported statements produce nothing.
func StatementsFromNode(n *sitter.Node, input []byte) []Stmt {
	switch n.Type() {
	case "class_definition":
		return []Stmt{ClassFromNode(n, nil, input)}
	case "function_definition":
		return []Stmt{FunctionFromNode(n, nil, input)}
	case "decorated_definition":
		var decorators []Expr
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() == "decorator" && child.NamedChildCount() > 0 {
				decorators = append(decorators, ExprFromNode(child.NamedChild(0), input))
			}
		}
		def := n.ChildByFieldName("definition")
		switch def.Type() {
		case "class_definition":
			return []Stmt{ClassFromNode(def, decorators, input)}
		case "function_definition":
			return []Stmt{FunctionFromNode(def, decorators, input)}
		}
		return nil
	case "expression_statement":
		if n.NamedChildCount() == 0 {
			return nil
		}
		child := n.NamedChild(0)
		if child.Type() == "assignment" {
			return []Stmt{AssignFromNode(child, input)}
		}
		if child.Type() == "augmented_assignment" {
			return nil
		}
		return []Stmt{ExprStmt{ExprFromNode(child, input), SpanFromNode(n)}}
	case "return_statement":
		r := Return{Span: SpanFromNode(n)}
		if n.NamedChildCount() > 0 {
			r.Value = ExprFromNode(n.NamedChild(0), input)
		}
		return []Stmt{r}
	case "import_statement":
		return []Stmt{ImportFromNode(n, input)}
	case "import_from_statement":
		return []Stmt{ImportFromFromNode(n, input)}
	case "pass_statement":
		return []Stmt{Pass{SpanFromNode(n)}}
	case "if_statement", "for_statement", "while_statement", "try_statement",
		"with_statement", "match_statement":
		return []Stmt{Compound{n.Type(), nestedStatements(n, input), SpanFromNode(n)}}
	default:
		return nil
	}
}

// nestedStatements collects the statements of every block below a compound
// statement, in source order.
func nestedStatements(n *sitter.Node, input []byte) []Stmt {
	var body []Stmt
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch {
		case child.Type() == "block":
			stmts, _ := blockFromNode(child, input)
			body = append(body, stmts...)
		case strings.HasSuffix(child.Type(), "_clause"), child.Type() == "case_block":
			body = append(body, nestedStatements(child, input)...)
		}
	}
	return body
}

func ClassFromNode(n *sitter.Node, decorators []Expr, input []byte) ClassDef {
	var c ClassDef
	c.Span = SpanFromNode(n)
	c.Name = n.ChildByFieldName("name").Content(input)
	c.Decorators = decorators

	if supers := n.ChildByFieldName("superclasses"); supers != nil {
		for i := 0; i < int(supers.NamedChildCount()); i++ {
			child := supers.NamedChild(i)
			switch child.Type() {
			case "keyword_argument", "list_splat", "dictionary_splat", "comment":
				continue
			default:
				c.Bases = append(c.Bases, ExprFromNode(child, input))
			}
		}
	}

	c.Body, c.Doc = blockFromNode(n.ChildByFieldName("body"), input)
	return c
}

func FunctionFromNode(n *sitter.Node, decorators []Expr, input []byte) FunctionDef {
	var f FunctionDef
	f.Span = SpanFromNode(n)
	f.Name = n.ChildByFieldName("name").Content(input)
	f.Decorators = decorators
	f.Async = n.ChildCount() > 0 && n.Child(0).Type() == "async"

	if params := n.ChildByFieldName("parameters"); params != nil {
		f.Params = ParamsFromNode(params, input)
	}

	body := n.ChildByFieldName("body")
	f.Body, f.Doc = blockFromNode(body, input)
	f.Generator = containsYield(body)
	return f
}

// containsYield reports whether a yield expression occurs in n outside of
// nested functions, lambdas and classes.
func containsYield(n *sitter.Node) bool {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "yield":
			return true
		case "function_definition", "class_definition", "lambda", "decorated_definition":
			continue
		}
		if containsYield(child) {
			return true
		}
	}
	return false
}

func ParamsFromNode(n *sitter.Node, input []byte) []Param {
	var ps []Param
	kind := Positional
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		p := Param{Kind: kind, Span: SpanFromNode(child)}
		switch child.Type() {
		case "identifier":
			p.Name = child.Content(input)
		case "typed_parameter":
			inner := child.NamedChild(0)
			switch inner.Type() {
			case "list_splat_pattern":
				p.Name = splatName(inner, input)
				p.Kind = VarArgs
				kind = KeywordOnly
			case "dictionary_splat_pattern":
				p.Name = splatName(inner, input)
				p.Kind = KwArgs
			default:
				p.Name = inner.Content(input)
			}
		case "default_parameter", "typed_default_parameter":
			p.Name = child.ChildByFieldName("name").Content(input)
			p.Default = ExprFromNode(child.ChildByFieldName("value"), input)
		case "list_splat_pattern":
			p.Name = splatName(child, input)
			p.Kind = VarArgs
			kind = KeywordOnly
		case "dictionary_splat_pattern":
			p.Name = splatName(child, input)
			p.Kind = KwArgs
		case "keyword_separator":
			kind = KeywordOnly
			continue
		default:
			continue
		}
		ps = append(ps, p)
	}
	return ps
}

func splatName(n *sitter.Node, input []byte) string {
	if n.NamedChildCount() > 0 {
		return n.NamedChild(0).Content(input)
	}
	return strings.TrimLeft(n.Content(input), "*")
}

func AssignFromNode(n *sitter.Node, input []byte) Assign {
	var a Assign
	a.Span = SpanFromNode(n)
	for {
		a.Targets = append(a.Targets, targetFromNode(n.ChildByFieldName("left"), input))
		right := n.ChildByFieldName("right")
		if right == nil {
			// annotation only: x: int
			a.Value = nil
			return a
		}
		if right.Type() == "assignment" {
			n = right
			continue
		}
		a.Value = ExprFromNode(right, input)
		return a
	}
}

func targetFromNode(n *sitter.Node, input []byte) Expr {
	switch n.Type() {
	case "pattern_list", "tuple_pattern", "list_pattern":
		var c Collection
		c.Span = SpanFromNode(n)
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c.Elts = append(c.Elts, targetFromNode(n.NamedChild(i), input))
		}
		return c
	default:
		return ExprFromNode(n, input)
	}
}

func ImportFromNode(n *sitter.Node, input []byte) Import {
	var imp Import
	imp.Span = SpanFromNode(n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if alias, ok := aliasFromNode(n.NamedChild(i), input); ok {
			imp.Names = append(imp.Names, alias)
		}
	}
	return imp
}

func ImportFromFromNode(n *sitter.Node, input []byte) ImportFrom {
	var imp ImportFrom
	imp.Span = SpanFromNode(n)

	module := n.ChildByFieldName("module_name")
	name := module.Content(input)
	imp.Level = len(name) - len(strings.TrimLeft(name, "."))
	imp.Module = strings.TrimLeft(name, ".")

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.StartByte() == module.StartByte() {
			continue
		}
		if child.Type() == "wildcard_import" {
			imp.Names = append(imp.Names, Alias{Name: "*"})
			continue
		}
		if alias, ok := aliasFromNode(child, input); ok {
			imp.Names = append(imp.Names, alias)
		}
	}
	return imp
}

func aliasFromNode(n *sitter.Node, input []byte) (Alias, bool) {
	switch n.Type() {
	case "dotted_name":
		return Alias{Name: n.Content(input)}, true
	case "aliased_import":
		return Alias{
			Name:   n.ChildByFieldName("name").Content(input),
			AsName: n.ChildByFieldName("alias").Content(input),
		}, true
	default:
		return Alias{}, false
	}
}

func ExprFromNode(n *sitter.Node, input []byte) Expr {
	span := SpanFromNode(n)
	switch n.Type() {
	case "identifier":
		return Name{n.Content(input), span}
	case "attribute":
		return Attribute{
			ExprFromNode(n.ChildByFieldName("object"), input),
			n.ChildByFieldName("attribute").Content(input),
			span,
		}
	case "call":
		return CallFromNode(n, input)
	case "integer":
		text := strings.ReplaceAll(strings.ToLower(n.Content(input)), "_", "")
		v, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return Unknown{n.Type(), span}
		}
		return Const{v, span}
	case "float":
		v, err := strconv.ParseFloat(strings.ReplaceAll(n.Content(input), "_", ""), 64)
		if err != nil {
			return Unknown{n.Type(), span}
		}
		return Const{v, span}
	case "string":
		text := n.Content(input)
		if isBytesLiteral(text) {
			return Const{[]byte(stringLiteral(text)), span}
		}
		return Const{stringLiteral(text), span}
	case "concatenated_string":
		var sb strings.Builder
		for i := 0; i < int(n.NamedChildCount()); i++ {
			sb.WriteString(stringLiteral(n.NamedChild(i).Content(input)))
		}
		return Const{sb.String(), span}
	case "unary_operator":
		operand := ExprFromNode(n.ChildByFieldName("argument"), input)
		c, ok := operand.(Const)
		if op := n.ChildByFieldName("operator"); !ok || op == nil || op.Type() != "-" {
			return Unknown{n.Type(), span}
		}
		switch v := c.Value.(type) {
		case int64:
			return Const{-v, span}
		case float64:
			return Const{-v, span}
		}
		return Unknown{n.Type(), span}
	case "true":
		return Const{true, span}
	case "false":
		return Const{false, span}
	case "none":
		return Const{nil, span}
	case "parenthesized_expression":
		if n.NamedChildCount() == 0 {
			return Unknown{n.Type(), span}
		}
		return ExprFromNode(n.NamedChild(0), input)
	case "lambda":
		l := Lambda{Span: span}
		if params := n.ChildByFieldName("parameters"); params != nil {
			l.Params = ParamsFromNode(params, input)
		}
		l.Body = ExprFromNode(n.ChildByFieldName("body"), input)
		return l
	case "tuple", "expression_list":
		return collectionFromNode(n, TupleKind, input)
	case "list":
		return collectionFromNode(n, ListKind, input)
	case "set":
		return collectionFromNode(n, SetKind, input)
	case "dictionary":
		d := Dict{Span: span}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			pair := n.NamedChild(i)
			if pair.Type() != "pair" {
				continue
			}
			d.Keys = append(d.Keys, ExprFromNode(pair.ChildByFieldName("key"), input))
			d.Values = append(d.Values, ExprFromNode(pair.ChildByFieldName("value"), input))
		}
		return d
	case "subscript":
		return Subscript{
			ExprFromNode(n.ChildByFieldName("value"), input),
			ExprFromNode(n.ChildByFieldName("subscript"), input),
			span,
		}
	case "yield":
		y := Yield{Span: span}
		if n.NamedChildCount() > 0 {
			y.Value = ExprFromNode(n.NamedChild(0), input)
		}
		return y
	default:
		return Unknown{n.Type(), span}
	}
}

func CallFromNode(n *sitter.Node, input []byte) Call {
	var c Call
	c.Span = SpanFromNode(n)
	c.Func = ExprFromNode(n.ChildByFieldName("function"), input)

	args := n.ChildByFieldName("arguments")
	if args == nil || args.Type() != "argument_list" {
		if args != nil {
			c.Args = append(c.Args, Unknown{args.Type(), SpanFromNode(args)})
		}
		return c
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		child := args.NamedChild(i)
		switch child.Type() {
		case "keyword_argument":
			c.Keywords = append(c.Keywords, Keyword{
				child.ChildByFieldName("name").Content(input),
				ExprFromNode(child.ChildByFieldName("value"), input),
			})
		case "comment":
			continue
		default:
			c.Args = append(c.Args, ExprFromNode(child, input))
		}
	}
	return c
}

func collectionFromNode(n *sitter.Node, kind CollectionKind, input []byte) Collection {
	c := Collection{Kind: kind, Span: SpanFromNode(n)}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		c.Elts = append(c.Elts, ExprFromNode(child, input))
	}
	return c
}

func isBytesLiteral(text string) bool {
	prefix := strings.ToLower(text[:len(text)-len(strings.TrimLeft(text, "rRbBuUfF"))])
	return strings.Contains(prefix, "b")
}

// stringLiteral strips prefix letters and quotes. Escape sequences are kept
// as written.
func stringLiteral(text string) string {
	text = strings.TrimLeft(text, "rRbBuUfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(text) >= 2*len(q) && strings.HasPrefix(text, q) && strings.HasSuffix(text, q) {
			return text[len(q) : len(text)-len(q)]
		}
	}
	return text
}
