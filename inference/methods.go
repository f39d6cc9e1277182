package inference

import "fmt"

// UnboundMethod is a function reached through its class.
type UnboundMethod struct {
	Func    Function
	special *SpecialAttributes
}

func NewUnboundMethod(fn Function) *UnboundMethod {
	return &UnboundMethod{Func: fn, special: unboundMethodModel}
}

func (m *UnboundMethod) isObject()              {}
func (m *UnboundMethod) Infer(*Context) Results { return Single(m) }
func (m *UnboundMethod) IsBound() bool          { return false }
func (m *UnboundMethod) Callable() bool         { return m.Func.Callable() }
func (m *UnboundMethod) Pytype() string         { return m.Func.Pytype() }
func (m *UnboundMethod) DisplayType() string    { return m.Func.DisplayType() }
func (m *UnboundMethod) BoolValue() Truth       { return True }
func (m *UnboundMethod) String() string         { return "UnboundMethod " + m.Func.Qname() }

func (m *UnboundMethod) Getattr(name string, ctx *Context) ([]Node, error) {
	return methodGetattr(m, m.special, m.Func, name, ctx)
}

func (m *UnboundMethod) Igetattr(name string, ctx *Context) Results {
	return methodIgetattr(m, m.special, m.Func, name, ctx)
}

func methodGetattr(owner Value, special *SpecialAttributes, fn Function, name string, ctx *Context) ([]Node, error) {
	if v, ok := special.Lookup(name, owner); ok {
		return []Node{v}, nil
	}
	return fn.Getattr(name, ctx)
}

func methodIgetattr(owner Value, special *SpecialAttributes, fn Function, name string, ctx *Context) Results {
	if v, ok := special.Lookup(name, owner); ok {
		return Single(v)
	}
	return fn.Igetattr(name, ctx)
}

// isObjectNew reports whether this is object.__new__, whose result depends
// on the class passed to it.
func (m *UnboundMethod) isObjectNew() bool {
	if m.Func.FuncName() != "__new__" {
		return false
	}
	cls, ok := m.Func.Parent().(*ClassDef)
	return ok && cls.Qname() == "builtins.object"
}

func (m *UnboundMethod) InferCallResult(caller Node, ctx *Context) Results {
	if !m.isObjectNew() {
		return m.Func.InferCallResult(caller, ctx)
	}
	return func(yield func(Value, error) bool) {
		ctx = ctx.orNew()
		args, argCtx := callArgs(caller, ctx)
		if len(args) == 0 {
			return
		}
		for v, err := range args[0].Infer(argCtx) {
			if err != nil {
				yield(nil, err)
				return
			}
			var out Value = Uninferable
			if cls, ok := v.(*ClassDef); ok {
				out = NewInstance(cls)
			}
			if !yield(out, nil) {
				return
			}
		}
	}
}

// callArgs returns the positional arguments of the active call and the
// context to infer them in.
func callArgs(caller Node, ctx *Context) ([]Node, *Context) {
	if cc := ctx.CallContext; cc != nil {
		if cc.caller != nil {
			return cc.Args, cc.caller
		}
		return cc.Args, ctx
	}
	if call, ok := caller.(*Call); ok {
		return call.Args, ctx
	}
	return nil, ctx
}

// BoundMethod is a method bound to an instance, or to a class for
// classmethods.
type BoundMethod struct {
	UnboundMethod
	Bound Value
}

func NewBoundMethod(fn Function, bound Value) *BoundMethod {
	return &BoundMethod{UnboundMethod: UnboundMethod{Func: fn, special: boundMethodModel}, Bound: bound}
}

func (m *BoundMethod) Infer(*Context) Results { return Single(m) }
func (m *BoundMethod) IsBound() bool          { return true }

func (m *BoundMethod) String() string {
	return fmt.Sprintf("BoundMethod %s of %s", m.Func.Qname(), describe(m.Bound))
}

func (m *BoundMethod) Getattr(name string, ctx *Context) ([]Node, error) {
	return methodGetattr(m, m.special, m.Func, name, ctx)
}

func (m *BoundMethod) Igetattr(name string, ctx *Context) Results {
	return methodIgetattr(m, m.special, m.Func, name, ctx)
}

// InferCallResult infers the call with Bound as the receiver.
func (m *BoundMethod) InferCallResult(caller Node, ctx *Context) Results {
	ctx = ctx.orNew().Clone()
	ctx.BoundNode = m.Bound
	return m.UnboundMethod.InferCallResult(caller, ctx)
}
