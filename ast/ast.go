package ast

import (
	sitter "github.com/smacker/go-tree-sitter"
)

type Span struct {
	Start, End sitter.Point
}

func SpanFromNode(n *sitter.Node) Span {
	return Span{n.StartPoint(), n.EndPoint()}
}

func (s Span) GetSpan() Span { return s }

// Line is the one-based line the span starts on.
func (s Span) Line() int { return int(s.Start.Row) + 1 }

type File struct {
	Body []Stmt
	Doc  string
	Span Span
}

type Stmt interface {
	isStmt()
	GetSpan() Span
}

type Expr interface {
	isExpr()
	GetSpan() Span
}

type ClassDef struct {
	Name       string
	Bases      []Expr
	Decorators []Expr
	Body       []Stmt
	Doc        string

	Span
}

func (ClassDef) isStmt() {}

type FunctionDef struct {
	Name       string
	Params     []Param
	Decorators []Expr
	Body       []Stmt
	Doc        string
	Async      bool
	Generator  bool

	Span
}

func (FunctionDef) isStmt() {}

type ParamKind int

const (
	Positional ParamKind = iota
	KeywordOnly
	VarArgs
	KwArgs
)

type Param struct {
	Name    string
	Kind    ParamKind
	Default Expr

	Span
}

// Assign binds Value to every target, left to right: a = b = 1.
type Assign struct {
	Targets []Expr
	Value   Expr

	Span
}

func (Assign) isStmt() {}

type Return struct {
	Value Expr

	Span
}

func (Return) isStmt() {}

type ExprStmt struct {
	Value Expr

	Span
}

func (ExprStmt) isStmt() {}

type Alias struct {
	Name   string
	AsName string
}

// Bound is the local name an import introduces.
func (a Alias) Bound() string {
	if a.AsName != "" {
		return a.AsName
	}
	return a.Name
}

type Import struct {
	Names []Alias

	Span
}

func (Import) isStmt() {}

type ImportFrom struct {
	Module string
	Level  int
	Names  []Alias

	Span
}

func (ImportFrom) isStmt() {}

// Compound is any block statement (if, for, while, try, with, match)
// flattened into the statements of all its branches.
type Compound struct {
	Kind string
	Body []Stmt

	Span
}

func (Compound) isStmt() {}

type Pass struct {
	Span
}

func (Pass) isStmt() {}

type Name struct {
	ID string

	Span
}

func (Name) isExpr() {}

type Attribute struct {
	Value Expr
	Attr  string

	Span
}

func (Attribute) isExpr() {}

type Keyword struct {
	Name  string
	Value Expr
}

type Call struct {
	Func     Expr
	Args     []Expr
	Keywords []Keyword

	Span
}

func (Call) isExpr() {}

// Const holds an int64, float64, string, []byte, bool or nil.
type Const struct {
	Value interface{}

	Span
}

func (Const) isExpr() {}

type Lambda struct {
	Params []Param
	Body   Expr

	Span
}

func (Lambda) isExpr() {}

type CollectionKind int

const (
	TupleKind CollectionKind = iota
	ListKind
	SetKind
)

func (k CollectionKind) String() string {
	switch k {
	case TupleKind:
		return "tuple"
	case ListKind:
		return "list"
	case SetKind:
		return "set"
	default:
		panic("Bad collection kind")
	}
}

type Collection struct {
	Kind CollectionKind
	Elts []Expr

	Span
}

func (Collection) isExpr() {}

type Dict struct {
	Keys   []Expr
	Values []Expr

	Span
}

func (Dict) isExpr() {}

type Subscript struct {
	Value Expr
	Index Expr

	Span
}

func (Subscript) isExpr() {}

type Yield struct {
	Value Expr

	Span
}

func (Yield) isExpr() {}

// Unknown stands in for syntax the object model does not interpret.
type Unknown struct {
	Kind string

	Span
}

func (Unknown) isExpr() {}
