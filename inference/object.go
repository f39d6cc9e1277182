package inference

import "fmt"

// Node is anything inference can start from: syntax nodes, which infer to
// the values they denote, and values, which infer to themselves.
type Node interface {
	Infer(ctx *Context) Results
}

// Value is a Node that inference can produce.
type Value interface {
	Node
	fmt.Stringer

	Pytype() string
	DisplayType() string
	Callable() bool
	BoolValue() Truth
}

// Object is the closed set of runtime objects that never appear literally
// in a tree: Instance, FrozenSet, Generator, UnboundMethod, BoundMethod and
// Super.
type Object interface {
	Value

	isObject()
	Getattr(name string, ctx *Context) ([]Node, error)
	Igetattr(name string, ctx *Context) Results
}

var (
	_ Object = &Instance{}
	_ Object = &FrozenSet{}
	_ Object = &Generator{}
	_ Object = &UnboundMethod{}
	_ Object = &BoundMethod{}
	_ Object = &Super{}
)

// Truth is the result of static truth-value testing.
type Truth int

const (
	TruthUnknown Truth = iota
	False
	True
)

func TruthOf(b bool) Truth {
	if b {
		return True
	}
	return False
}

func (t Truth) String() string {
	switch t {
	case True:
		return "True"
	case False:
		return "False"
	default:
		return "Uninferable"
	}
}

type uninferable struct{}

// Uninferable means no static conclusion was reached. It is distinct from
// an attribute being absent.
var Uninferable Value = uninferable{}

func (uninferable) Infer(*Context) Results { return Single(Uninferable) }
func (uninferable) String() string         { return "Uninferable" }
func (uninferable) Pytype() string         { return "Uninferable" }
func (uninferable) DisplayType() string    { return "Uninferable" }
func (uninferable) Callable() bool         { return false }
func (uninferable) BoolValue() Truth       { return TruthUnknown }

func IsUninferable(v Node) bool {
	_, ok := v.(uninferable)
	return ok
}

// proxiedClass is the class a value is an instance of, when it has one.
func proxiedClass(v Value) (*ClassDef, bool) {
	switch v := v.(type) {
	case *Instance:
		return v.cls, true
	case *FrozenSet:
		return v.cls, true
	case *Generator:
		return v.cls, true
	case *Const:
		cls, err := BuiltinClass(v.builtinName())
		return cls, err == nil
	case *Collection:
		cls, err := BuiltinClass(v.Kind.String())
		return cls, err == nil
	case *Dict:
		cls, err := BuiltinClass("dict")
		return cls, err == nil
	default:
		return nil, false
	}
}
