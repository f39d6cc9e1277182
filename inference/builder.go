package inference

import (
	"strings"

	"objmodel/ast"
)

// Manager turns parsed files into inference trees that share one set of
// settings.
type Manager struct {
	settings *Settings
}

func NewManager(opts ...Option) *Manager {
	return &Manager{settings: NewSettings(opts...)}
}

func (m *Manager) Settings() *Settings { return m.settings }

// NewContext starts a request with the manager's settings.
func (m *Manager) NewContext() *Context { return NewContextWith(m.settings) }

// Module builds the tree of file under the dotted module name modpath.
func (m *Manager) Module(file *ast.File, modpath string) (*Module, error) {
	builtins, err := BuiltinsModule()
	if err != nil {
		return nil, err
	}
	mod := buildModule(file, modpath, builtins.env, false)
	mod.settings = m.settings
	m.settings.Logger.Debug("built module", "module", modpath, "names", len(mod.env.Items))
	return mod, nil
}

type builder struct{}

func buildModule(file *ast.File, name string, parent *Environment, opaque bool) *Module {
	mod := &Module{Name: name, Doc: file.Doc, opaque: opaque}
	mod.env = newEnvironment(mod, parent)
	var b builder
	b.statements(file.Body, mod, mod.env)
	return mod
}

func (b builder) statements(stmts []ast.Stmt, scope Node, env *Environment) {
	for _, s := range stmts {
		b.statement(s, scope, env)
	}
}

func (b builder) statement(s ast.Stmt, scope Node, env *Environment) {
	switch s := s.(type) {
	case ast.ClassDef:
		env.Add(s.Name, b.class(s, scope, env))
	case ast.FunctionDef:
		env.Add(s.Name, b.function(s, scope, env))
	case ast.Assign:
		value := b.expr(s.Value, scope)
		for _, t := range s.Targets {
			b.bind(t, value, scope, env)
		}
	case ast.Return:
		if fn, ok := scope.(*FunctionDef); ok {
			r := &Return{Value: b.expr(s.Value, scope)}
			r.parent, r.span = fn, s.Span
			fn.Returns = append(fn.Returns, r)
		}
	case ast.Import:
		for _, alias := range s.Names {
			imp := &ImportedName{Module: alias.Name}
			name := alias.AsName
			if name == "" {
				name, _, _ = strings.Cut(alias.Name, ".")
				imp.Module = name
			}
			imp.parent, imp.span = scope, s.Span
			env.Add(name, imp)
		}
	case ast.ImportFrom:
		for _, alias := range s.Names {
			if alias.Name == "*" {
				continue
			}
			imp := &ImportedName{Module: s.Module, Attr: alias.Name, Level: s.Level}
			imp.parent, imp.span = scope, s.Span
			env.Add(alias.Bound(), imp)
		}
	case ast.Compound:
		b.statements(s.Body, scope, env)
	}
}

// bind records an assignment target. Attribute targets on the receiver of a
// method become instance attributes of the enclosing class.
func (b builder) bind(target ast.Expr, value Node, scope Node, env *Environment) {
	switch t := target.(type) {
	case ast.Name:
		an := &AssignName{Name: t.ID, Value: value}
		an.parent, an.span = scope, t.Span
		env.Add(t.ID, an)
	case ast.Attribute:
		aa := &AssignAttr{Expr: b.expr(t.Value, scope), Attr: t.Attr, Value: value}
		aa.parent, aa.span = scope, t.Span
		fn, ok := scope.(*FunctionDef)
		if !ok {
			return
		}
		cls, ok := fn.parent.(*ClassDef)
		if !ok {
			return
		}
		receiver, ok := t.Value.(ast.Name)
		if ok && len(fn.params) > 0 && fn.params[0].Name == receiver.ID && !hasDecorator(fn, "staticmethod") {
			cls.addInstanceAttr(t.Attr, aa)
		}
	case ast.Collection:
		for _, elt := range t.Elts {
			b.bind(elt, nil, scope, env)
		}
	}
}

func hasDecorator(fn *FunctionDef, name string) bool {
	for _, d := range fn.Decorators {
		if n, ok := d.(*Name); ok && n.ID == name {
			return true
		}
	}
	return false
}

func (b builder) class(s ast.ClassDef, scope Node, env *Environment) *ClassDef {
	cls := &ClassDef{Name: s.Name, Doc: s.Doc, Newstyle: true}
	cls.parent, cls.span = scope, s.Span
	cls.env = newEnvironment(cls, env)
	for _, base := range s.Bases {
		cls.Bases = append(cls.Bases, b.expr(base, scope))
	}
	for _, d := range s.Decorators {
		cls.Decorators = append(cls.Decorators, b.expr(d, scope))
	}
	b.statements(s.Body, cls, cls.env)
	return cls
}

func (b builder) function(s ast.FunctionDef, scope Node, env *Environment) *FunctionDef {
	fn := &FunctionDef{Name: s.Name, Doc: s.Doc, Async: s.Async, IsGenerator: s.Generator}
	fn.parent, fn.span = scope, s.Span
	fn.env = newEnvironment(fn, enclosingNonClass(env))
	for _, d := range s.Decorators {
		fn.Decorators = append(fn.Decorators, b.expr(d, scope))
	}
	fn.params = b.params(s.Params, fn, fn.env, scope)
	b.statements(s.Body, fn, fn.env)
	return fn
}

func (b builder) params(in []ast.Param, fn Function, env *Environment, scope Node) []*Param {
	out := make([]*Param, 0, len(in))
	for i, p := range in {
		param := &Param{Name: p.Name, Kind: p.Kind, Index: i, fn: fn, Default: b.expr(p.Default, scope)}
		param.parent, param.span = fn, p.Span
		env.Add(p.Name, param)
		out = append(out, param)
	}
	return out
}

func (b builder) lambda(e ast.Lambda, scope Node) *Lambda {
	l := &Lambda{}
	l.parent, l.span = scope, e.Span
	l.env = newEnvironment(l, enclosingNonClass(scopeEnv(scope)))
	l.params = b.params(e.Params, l, l.env, scope)
	l.Body = b.expr(e.Body, l)
	return l
}

func (b builder) expr(e ast.Expr, scope Node) Node {
	if e == nil {
		return nil
	}
	switch e := e.(type) {
	case ast.Name:
		n := &Name{ID: e.ID}
		n.parent, n.span = scope, e.Span
		return n
	case ast.Attribute:
		a := &Attribute{Expr: b.expr(e.Value, scope), Attr: e.Attr}
		a.parent, a.span = scope, e.Span
		return a
	case ast.Call:
		c := &Call{Func: b.expr(e.Func, scope)}
		c.parent, c.span = scope, e.Span
		for _, arg := range e.Args {
			c.Args = append(c.Args, b.expr(arg, scope))
		}
		for _, kw := range e.Keywords {
			c.Keywords = append(c.Keywords, Keyword{Name: kw.Name, Value: b.expr(kw.Value, scope)})
		}
		return c
	case ast.Const:
		c := NewConst(e.Value)
		c.parent, c.span = scope, e.Span
		return c
	case ast.Lambda:
		return b.lambda(e, scope)
	case ast.Collection:
		c := &Collection{Kind: e.Kind}
		c.parent, c.span = scope, e.Span
		for _, elt := range e.Elts {
			c.Elts = append(c.Elts, b.expr(elt, scope))
		}
		return c
	case ast.Dict:
		d := &Dict{}
		d.parent, d.span = scope, e.Span
		for i := range e.Keys {
			d.Keys = append(d.Keys, b.expr(e.Keys[i], scope))
			d.Values = append(d.Values, b.expr(e.Values[i], scope))
		}
		return d
	case ast.Subscript:
		s := &Subscript{Value: b.expr(e.Value, scope), Index: b.expr(e.Index, scope)}
		s.parent, s.span = scope, e.Span
		return s
	case ast.Yield:
		u := &Unknown{Kind: "yield"}
		u.parent, u.span = scope, e.Span
		return u
	case ast.Unknown:
		u := &Unknown{Kind: e.Kind}
		u.parent, u.span = scope, e.Span
		return u
	default:
		return &Unknown{Kind: "expression"}
	}
}
