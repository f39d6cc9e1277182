package inference

import (
	"fmt"
	"strconv"
	"strings"

	"objmodel/ast"
)

type parented interface {
	Parent() Node
}

type base struct {
	parent Node
	span   ast.Span
}

func (b *base) Parent() Node   { return b.parent }
func (b *base) Span() ast.Span { return b.span }

// scopeEnv returns the binding environment a node under scope resolves
// names in.
func scopeEnv(scope Node) *Environment {
	switch s := scope.(type) {
	case *Module:
		return s.env
	case *ClassDef:
		return s.env
	case *FunctionDef:
		return s.env
	case *Lambda:
		return s.env
	default:
		return nil
	}
}

// rootModule walks parents up to the module containing n.
func rootModule(n Node) *Module {
	for n != nil {
		if m, ok := n.(*Module); ok {
			return m
		}
		p, ok := n.(parented)
		if !ok {
			return nil
		}
		n = p.Parent()
	}
	return nil
}

func qualify(scope Node, name string) string {
	switch s := scope.(type) {
	case *Module:
		return s.Name + "." + name
	case *ClassDef:
		return s.Qname() + "." + name
	case *FunctionDef:
		return s.Qname() + "." + name
	case *Lambda:
		return qualify(s.parent, "<lambda>") + "." + name
	default:
		return name
	}
}

// Module is a parsed source file. Package is set for a package's
// __init__ module.
type Module struct {
	Name    string
	Doc     string
	Package bool

	env      *Environment
	opaque   bool
	settings *Settings
}

func (m *Module) Infer(*Context) Results { return Single(m) }
func (m *Module) Parent() Node           { return nil }
func (m *Module) String() string         { return "Module " + m.Name }
func (m *Module) Pytype() string         { return "builtins.module" }
func (m *Module) DisplayType() string    { return "Module" }
func (m *Module) Callable() bool         { return false }
func (m *Module) BoolValue() Truth       { return True }
func (m *Module) Qname() string          { return m.Name }

func (m *Module) Locals() map[string][]Node { return m.env.Items }

// newContext starts a request with the settings m was built with.
func (m *Module) newContext() *Context {
	if m == nil || m.settings == nil {
		return NewContext()
	}
	return NewContextWith(m.settings)
}

// LocalNames lists module level names in binding order.
func (m *Module) LocalNames() []string { return m.env.Names() }

func (m *Module) Getattr(name string, ctx *Context) ([]Node, error) {
	if decls, ok := m.env.Items[name]; ok {
		return decls, nil
	}
	if v, ok := moduleModel.Lookup(name, m); ok {
		return []Node{v}, nil
	}
	return nil, &AttributeInferenceError{Target: m, Attribute: name, Context: ctx}
}

func (m *Module) Igetattr(name string, ctx *Context) Results {
	return func(yield func(Value, error) bool) {
		ctx = ctx.orNew()
		decls, err := m.Getattr(name, ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		for v, err := range InferStmts(nodes(decls[len(decls)-1:]), ctx, m) {
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}

// Const is a literal: int, float, str, bytes, bool or None.
type Const struct {
	Value interface{}
	base
}

func NewConst(v interface{}) *Const {
	return &Const{Value: v}
}

func (c *Const) builtinName() string {
	switch c.Value.(type) {
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "str"
	case []byte:
		return "bytes"
	case bool:
		return "bool"
	default:
		return "NoneType"
	}
}

func (c *Const) Infer(*Context) Results { return Single(c) }
func (c *Const) Pytype() string         { return "builtins." + c.builtinName() }
func (c *Const) DisplayType() string    { return "Instance of" }
func (c *Const) Callable() bool         { return false }

func (c *Const) BoolValue() Truth {
	switch v := c.Value.(type) {
	case int64:
		return TruthOf(v != 0)
	case float64:
		return TruthOf(v != 0)
	case string:
		return TruthOf(v != "")
	case []byte:
		return TruthOf(len(v) > 0)
	case bool:
		return TruthOf(v)
	default:
		return False
	}
}

func (c *Const) String() string {
	switch v := c.Value.(type) {
	case nil:
		return "None"
	case bool:
		if v {
			return "True"
		}
		return "False"
	case string:
		return strconv.Quote(v)
	case []byte:
		return "b" + strconv.Quote(string(v))
	default:
		return fmt.Sprint(v)
	}
}

// Collection is a tuple, list or set display.
type Collection struct {
	Kind ast.CollectionKind
	Elts []Node
	base
}

func (c *Collection) Infer(*Context) Results { return Single(c) }
func (c *Collection) Pytype() string         { return "builtins." + c.Kind.String() }
func (c *Collection) DisplayType() string    { return "Instance of" }
func (c *Collection) Callable() bool         { return false }
func (c *Collection) BoolValue() Truth       { return TruthOf(len(c.Elts) > 0) }

func (c *Collection) String() string {
	return fmt.Sprintf("%s of %d elements", c.Kind, len(c.Elts))
}

type Dict struct {
	Keys   []Node
	Values []Node
	base
}

func (d *Dict) Infer(*Context) Results { return Single(d) }
func (d *Dict) Pytype() string         { return "builtins.dict" }
func (d *Dict) DisplayType() string    { return "Instance of" }
func (d *Dict) Callable() bool         { return false }
func (d *Dict) BoolValue() Truth       { return TruthOf(len(d.Keys) > 0) }
func (d *Dict) String() string         { return fmt.Sprintf("dict of %d items", len(d.Keys)) }

// Name is a reference to a bound name.
type Name struct {
	ID string
	base
}

func (n *Name) String() string { return n.ID }

func (n *Name) Infer(ctx *Context) Results {
	return nonEmpty(n, ctx, guarded(n, ctx, func(ctx *Context) Results {
		env := scopeEnv(n.parent)
		if env == nil {
			return Fail(&NameInferenceError{Name: n.ID, Scope: n.parent})
		}
		decls, _, ok := env.Search(n.ID)
		if !ok {
			return Fail(&NameInferenceError{Name: n.ID, Scope: n.parent})
		}
		return InferStmts(nodes(decls[len(decls)-1:]), ctx, n.parent)
	}))
}

type Attribute struct {
	Expr Node
	Attr string
	base
}

func (a *Attribute) String() string { return fmt.Sprintf("%s.%s", describe(a.Expr), a.Attr) }

type Keyword struct {
	Name  string
	Value Node
}

type Call struct {
	Func     Node
	Args     []Node
	Keywords []Keyword
	base
}

func (c *Call) String() string { return describe(c.Func) + "(...)" }

type Subscript struct {
	Value Node
	Index Node
	base
}

func (s *Subscript) String() string { return describe(s.Value) + "[...]" }

// Unknown stands for syntax inference does not model.
type Unknown struct {
	Kind string
	base
}

func (u *Unknown) Infer(*Context) Results { return Single(Uninferable) }
func (u *Unknown) String() string         { return "<" + u.Kind + ">" }

// AssignName binds Name to Value. Value is nil when the bound value cannot
// be recovered, as for unpacking targets.
type AssignName struct {
	Name  string
	Value Node
	base
}

func (a *AssignName) String() string { return a.Name + " = ..." }

func (a *AssignName) Infer(ctx *Context) Results {
	if a.Value == nil {
		return Single(Uninferable)
	}
	return guarded(a, ctx, a.Value.Infer)
}

// AssignAttr is an attribute assignment such as self.x = value.
type AssignAttr struct {
	Expr  Node
	Attr  string
	Value Node
	base
}

func (a *AssignAttr) String() string { return fmt.Sprintf("%s.%s = ...", describe(a.Expr), a.Attr) }

func (a *AssignAttr) Infer(ctx *Context) Results {
	if a.Value == nil {
		return Single(Uninferable)
	}
	return guarded(a, ctx, a.Value.Infer)
}

// Return is a return statement. Value is nil for a bare return.
type Return struct {
	Value Node
	base
}

func (r *Return) Infer(ctx *Context) Results {
	if r.Value == nil {
		return Single(NewConst(nil))
	}
	return r.Value.Infer(ctx)
}

// ImportedName is a name bound by an import statement. Attr is empty for
// plain imports, which bind the module itself.
type ImportedName struct {
	Module string
	Attr   string
	Level  int
	base
}

func (i *ImportedName) String() string {
	if i.Attr == "" {
		return "import " + i.Module
	}
	return fmt.Sprintf("from %s%s import %s", strings.Repeat(".", i.Level), i.Module, i.Attr)
}

func (i *ImportedName) Infer(ctx *Context) Results {
	return nonEmpty(i, ctx, guarded(i, ctx, func(ctx *Context) Results {
		name := i.Module
		if i.Level > 0 {
			from := rootModule(i)
			level := i.Level
			if from.Package {
				level--
			}
			name = resolveRelative(from.Name, name, level)
		}
		if i.Attr == "" {
			mod, err := importModule(name, ctx)
			if err != nil {
				return Fail(&InferenceError{Node: i, Context: ctx, Cause: err})
			}
			return Single(mod)
		}
		if mod, err := importModule(name, ctx); err == nil {
			if _, err := mod.Getattr(i.Attr, ctx); err == nil {
				return mod.Igetattr(i.Attr, ctx)
			}
		}
		if sub, err := importModule(name+"."+i.Attr, ctx); err == nil {
			return Single(sub)
		}
		return Fail(&InferenceError{Node: i, Context: ctx, Message: fmt.Sprintf("cannot import %q from %s", i.Attr, name)})
	}))
}

// resolveRelative turns a relative module reference into an absolute name.
// Level 1 is the package containing from.
func resolveRelative(from, name string, level int) string {
	parts := strings.Split(from, ".")
	if level > len(parts) || (level == len(parts) && level > 0) {
		parts = nil
	} else {
		parts = parts[:len(parts)-level]
	}
	if name != "" {
		parts = append(parts, name)
	}
	return strings.Join(parts, ".")
}

// ImportResolver finds the modules import statements refer to. Modules it
// cannot find fall back to the bundled standard modules.
type ImportResolver interface {
	ModuleFor(name string) (*Module, error)
}

func importModule(name string, ctx *Context) (*Module, error) {
	if r := ctx.Settings().Imports; r != nil {
		if m, err := r.ModuleFor(name); err == nil {
			return m, nil
		}
	}
	if m, ok := BuiltinModule(name); ok {
		return m, nil
	}
	return nil, fmt.Errorf("module %q not found", name)
}
