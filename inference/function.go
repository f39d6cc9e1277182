package inference

import (
	"strings"
	"sync/atomic"

	"objmodel/ast"
)

// Function is implemented by FunctionDef and Lambda, the two things a method
// can wrap.
type Function interface {
	Value
	parented

	FuncName() string
	Params() []*Param
	Qname() string
	// Type is one of "function", "method", "classmethod" or "staticmethod".
	Type() string
	DecoratorNames(ctx *Context) []string
	InferCallResult(caller Node, ctx *Context) Results
	Getattr(name string, ctx *Context) ([]Node, error)
	Igetattr(name string, ctx *Context) Results
}

var (
	_ Function = &FunctionDef{}
	_ Function = &Lambda{}
)

type FunctionDef struct {
	Name        string
	Doc         string
	Async       bool
	IsGenerator bool
	Decorators  []Node
	Returns     []*Return

	params []*Param
	env    *Environment
	base

	typ       atomic.Pointer[string]
	resolving atomic.Bool
}

func (f *FunctionDef) Infer(*Context) Results { return Single(f) }
func (f *FunctionDef) FuncName() string       { return f.Name }
func (f *FunctionDef) Params() []*Param       { return f.params }
func (f *FunctionDef) Qname() string          { return qualify(f.parent, f.Name) }
func (f *FunctionDef) String() string         { return "Function " + f.Qname() }
func (f *FunctionDef) Callable() bool         { return true }
func (f *FunctionDef) BoolValue() Truth       { return True }

func (f *FunctionDef) Pytype() string {
	if strings.Contains(f.Type(), "method") {
		return "builtins.instancemethod"
	}
	return "builtins.function"
}

func (f *FunctionDef) DisplayType() string {
	if _, ok := f.parent.(*ClassDef); ok && len(f.params) > 0 && f.params[0].Name == "self" {
		return "Method"
	}
	return "Function"
}

func (f *FunctionDef) Locals() map[string][]Node { return f.env.Items }

// Type classifies the function as function, method, classmethod or
// staticmethod. Decorators are inferred with the settings of the module the
// function was built in, once.
func (f *FunctionDef) Type() string {
	if t := f.typ.Load(); t != nil {
		return *t
	}
	typ := f.syntacticType()
	if typ == "classmethod" || !f.resolving.CompareAndSwap(false, true) {
		return typ
	}
	defer f.resolving.Store(false)
	typ = f.decoratedType(typ)
	f.typ.Store(&typ)
	return typ
}

func (f *FunctionDef) syntacticType() string {
	if _, ok := f.parent.(*ClassDef); ok {
		if f.Name == "__new__" || f.Name == "__init_subclass__" || f.Name == "__class_getitem__" {
			return "classmethod"
		}
		return "method"
	}
	return "function"
}

func (f *FunctionDef) decoratedType(typ string) string {
	mod := rootModule(f)
	for _, d := range f.Decorators {
		if n, ok := d.(*Name); ok && (n.ID == "classmethod" || n.ID == "staticmethod") {
			return n.ID
		}
		for v, err := range d.Infer(mod.newContext()) {
			if err != nil {
				break
			}
			cls, ok := v.(*ClassDef)
			if !ok {
				continue
			}
			if cls.IsSubtypeOf("builtins.classmethod", mod.newContext()) {
				return "classmethod"
			}
			if cls.IsSubtypeOf("builtins.staticmethod", mod.newContext()) {
				return "staticmethod"
			}
		}
	}
	return typ
}

// DecoratorNames returns the qualified names decorators infer to. A
// decorator that cannot be inferred contributes its dotted source text.
func (f *FunctionDef) DecoratorNames(ctx *Context) []string {
	ctx = ctx.orNew()
	var out []string
	for _, d := range f.Decorators {
		resolved := false
		for v, err := range d.Infer(ctx) {
			if err != nil {
				break
			}
			if q := qnameOf(v); q != "" {
				out = append(out, q)
				resolved = true
			}
		}
		if !resolved {
			if dotted := dottedName(d); dotted != "" {
				out = append(out, dotted)
			}
		}
	}
	return out
}

func qnameOf(v Value) string {
	switch v := v.(type) {
	case *ClassDef:
		return v.Qname()
	case *FunctionDef:
		return v.Qname()
	case *Instance:
		return v.cls.Qname()
	case *UnboundMethod:
		return v.Func.Qname()
	case *BoundMethod:
		return v.Func.Qname()
	default:
		return ""
	}
}

// dottedName renders a decorator expression such as a.b.c, looking through
// a call.
func dottedName(n Node) string {
	switch n := n.(type) {
	case *Name:
		return n.ID
	case *Attribute:
		if prefix := dottedName(n.Expr); prefix != "" {
			return prefix + "." + n.Attr
		}
	case *Call:
		return dottedName(n.Func)
	}
	return ""
}

func (f *FunctionDef) InferCallResult(caller Node, ctx *Context) Results {
	return func(yield func(Value, error) bool) {
		if f.IsGenerator {
			yield(NewGenerator(f), nil)
			return
		}
		if rootModule(f).opaque {
			yield(Uninferable, nil)
			return
		}
		ctx = ctx.orNew().Clone()
		ctx.callee = f
		if len(f.Returns) == 0 {
			yield(NewConst(nil), nil)
			return
		}
		for _, r := range f.Returns {
			for v, err := range r.Infer(ctx) {
				if err != nil {
					if !IsInferenceError(err) && !IsAttributeError(err) {
						yield(nil, err)
						return
					}
					v = Uninferable
				}
				if !yield(v, nil) {
					return
				}
				if err != nil {
					break
				}
			}
		}
	}
}

func (f *FunctionDef) Getattr(name string, ctx *Context) ([]Node, error) {
	if v, ok := functionModel.Lookup(name, f); ok {
		return []Node{v}, nil
	}
	return nil, &AttributeInferenceError{Target: f, Attribute: name, Context: ctx}
}

func (f *FunctionDef) Igetattr(name string, ctx *Context) Results {
	return igetattrFromGetattr(f, name, ctx, f.Getattr)
}

func igetattrFromGetattr(owner Node, name string, ctx *Context, getattr func(string, *Context) ([]Node, error)) Results {
	return func(yield func(Value, error) bool) {
		ctx = ctx.orNew()
		decls, err := getattr(name, ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		for v, err := range InferStmts(nodes(decls), ctx, owner) {
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}

// Lambda is an anonymous function expression.
type Lambda struct {
	Body Node

	params []*Param
	env    *Environment
	base
}

func (l *Lambda) Infer(*Context) Results { return Single(l) }
func (l *Lambda) FuncName() string       { return "<lambda>" }
func (l *Lambda) Params() []*Param       { return l.params }
func (l *Lambda) Qname() string          { return qualify(l.parent, "<lambda>") }
func (l *Lambda) String() string         { return "Lambda " + l.Qname() }
func (l *Lambda) DisplayType() string    { return "Function" }
func (l *Lambda) Callable() bool         { return true }
func (l *Lambda) BoolValue() Truth       { return True }

func (l *Lambda) DecoratorNames(*Context) []string { return nil }

func (l *Lambda) Pytype() string {
	if strings.Contains(l.Type(), "method") {
		return "builtins.instancemethod"
	}
	return "builtins.function"
}

// Type is "method" for a lambda assigned in a class body.
func (l *Lambda) Type() string {
	if l.inClassBody() {
		return "method"
	}
	return "function"
}

func (l *Lambda) inClassBody() bool {
	_, ok := l.parent.(*ClassDef)
	return ok
}

func (l *Lambda) firstParamName() string {
	if len(l.params) == 0 || l.params[0].Kind != ast.Positional {
		return ""
	}
	return l.params[0].Name
}

func (l *Lambda) InferCallResult(caller Node, ctx *Context) Results {
	ctx = ctx.orNew().Clone()
	ctx.callee = l
	return func(yield func(Value, error) bool) {
		for v, err := range l.Body.Infer(ctx) {
			if err != nil {
				if !IsInferenceError(err) && !IsAttributeError(err) {
					yield(nil, err)
					return
				}
				yield(Uninferable, nil)
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

func (l *Lambda) Getattr(name string, ctx *Context) ([]Node, error) {
	if v, ok := functionModel.Lookup(name, l); ok {
		return []Node{v}, nil
	}
	return nil, &AttributeInferenceError{Target: l, Attribute: name, Context: ctx}
}

func (l *Lambda) Igetattr(name string, ctx *Context) Results {
	return igetattrFromGetattr(l, name, ctx, l.Getattr)
}

// Param is a formal parameter. Index is its position in the parameter list.
type Param struct {
	Name    string
	Kind    ast.ParamKind
	Default Node
	Index   int

	fn Function
	base
}

func (p *Param) String() string { return "parameter " + p.Name }

// Infer binds the parameter. The receiver of a method comes from the bound
// node; other parameters come from the active call, which only applies when
// it targets this parameter's function.
func (p *Param) Infer(ctx *Context) Results {
	ctx = ctx.orNew()
	typ := p.fn.Type()
	receiver := typ == "method" || typ == "classmethod"
	var cc *CallContext
	if ctx.callee == p.fn {
		cc = ctx.CallContext
	}
	bound := ctx.BoundNode
	if ctx.callee != p.fn || IsUninferable(bound) {
		bound = nil
	}

	if receiver && p.Index == 0 && p.Kind == ast.Positional {
		switch {
		case bound != nil && typ == "classmethod":
			if cls, ok := bound.(*ClassDef); ok {
				return Single(cls)
			}
			if cls, ok := proxiedClass(bound); ok {
				return Single(cls)
			}
			return Single(Uninferable)
		case bound != nil:
			if cls, ok := bound.(*ClassDef); ok {
				return Single(NewInstance(cls))
			}
			return Single(bound)
		case cc == nil:
			cls, ok := p.fn.Parent().(*ClassDef)
			if !ok {
				return Single(Uninferable)
			}
			if typ == "classmethod" {
				return Single(cls)
			}
			return Single(NewInstance(cls))
		}
	}

	if cc != nil {
		offset := 0
		if receiver && bound != nil {
			offset = 1
		}
		argCtx := cc.caller
		if argCtx == nil {
			argCtx = ctx
		}
		switch p.Kind {
		case ast.Positional:
			if i := p.Index - offset; i >= 0 && i < len(cc.Args) {
				return cc.Args[i].Infer(argCtx)
			}
			if kw, ok := cc.Keywords[p.Name]; ok {
				return kw.Infer(argCtx)
			}
		case ast.KeywordOnly:
			if kw, ok := cc.Keywords[p.Name]; ok {
				return kw.Infer(argCtx)
			}
		default:
			return Single(Uninferable)
		}
	}
	if p.Default != nil {
		return p.Default.Infer(ctx)
	}
	return Single(Uninferable)
}
