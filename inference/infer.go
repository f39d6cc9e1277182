package inference

import "iter"

// InferStmts infers each declaration in turn. A declaration that fails with
// an InferenceError contributes Uninferable; one whose name is unbound is
// skipped. It fails if nothing at all was inferred.
func InferStmts(stmts iter.Seq2[Node, error], ctx *Context, frame Node) Results {
	return func(yield func(Value, error) bool) {
		ctx = ctx.orNew()
		inferred := false
		for stmt, err := range stmts {
			if err != nil {
				yield(nil, err)
				return
			}
			if IsUninferable(stmt) {
				inferred = true
				if !yield(Uninferable, nil) {
					return
				}
				continue
			}
			for v, err := range stmt.Infer(ctx) {
				if err != nil {
					if _, unbound := err.(*NameInferenceError); unbound {
						break
					}
					if IsInferenceError(err) {
						inferred = true
						if !yield(Uninferable, nil) {
							return
						}
						break
					}
					yield(nil, err)
					return
				}
				inferred = true
				if !yield(v, nil) {
					return
				}
			}
		}
		if !inferred {
			yield(nil, &InferenceError{Node: frame, Context: ctx, Message: "no declaration could be inferred"})
		}
	}
}

// Infer resolves owner.attr for every value the owner infers to. Owners that
// lack the attribute are skipped.
func (a *Attribute) Infer(ctx *Context) Results {
	return nonEmpty(a, ctx, guarded(a, ctx, func(ctx *Context) Results {
		return func(yield func(Value, error) bool) {
			for owner, err := range a.Expr.Infer(ctx) {
				if err != nil {
					yield(nil, err)
					return
				}
				if IsUninferable(owner) {
					if !yield(owner, nil) {
						return
					}
					continue
				}
				octx := ctx.Clone()
				octx.BoundNode = owner
				for v, err := range igetattrOf(owner, a.Attr, octx) {
					if err != nil {
						if IsAttributeError(err) || IsInferenceError(err) {
							break
						}
						yield(nil, err)
						return
					}
					if !yield(v, nil) {
						return
					}
				}
			}
		}
	}))
}

// igetattrOf dispatches attribute inference on the kind of owner.
func igetattrOf(owner Value, name string, ctx *Context) Results {
	switch o := owner.(type) {
	case *ClassDef:
		return o.Igetattr(name, ctx, true)
	case *Module:
		return o.Igetattr(name, ctx)
	case Object:
		return o.Igetattr(name, ctx)
	case Function:
		return o.Igetattr(name, ctx)
	case *Const, *Collection, *Dict:
		cls, ok := proxiedClass(o)
		if !ok {
			return Fail(&AttributeInferenceError{Target: o, Attribute: name, Context: ctx})
		}
		return NewInstance(cls).Igetattr(name, ctx)
	default:
		return Fail(&AttributeInferenceError{Target: o, Attribute: name, Context: ctx})
	}
}

type callable interface {
	Value
	InferCallResult(caller Node, ctx *Context) Results
}

func callResult(callee Value, caller Node, ctx *Context) Results {
	c, ok := callee.(callable)
	if !ok || !callee.Callable() {
		return Fail(&InferenceError{Node: callee, Context: ctx, Message: "not callable"})
	}
	return c.InferCallResult(caller, ctx)
}

// Infer infers the result of the call for every value the callee infers
// to. Callees whose call cannot be inferred are skipped.
func (c *Call) Infer(ctx *Context) Results {
	return nonEmpty(c, ctx, guarded(c, ctx, func(ctx *Context) Results {
		return func(yield func(Value, error) bool) {
			keywords := map[string]Node{}
			for _, kw := range c.Keywords {
				if kw.Name != "" {
					keywords[kw.Name] = kw.Value
				}
			}
			cc := NewCallContext(ctx, c.Args, keywords)
			for callee, err := range c.Func.Infer(ctx) {
				if err != nil {
					yield(nil, err)
					return
				}
				if IsUninferable(callee) {
					if !yield(Uninferable, nil) {
						return
					}
					continue
				}
				var results Results
				if tip, ok := c.inferenceTip(callee); ok {
					results = tip(c, ctx)
				} else {
					cctx := ctx.Clone()
					cctx.CallContext = cc
					cctx.BoundNode = nil
					results = callResult(callee, c, cctx)
				}
				for v, err := range results {
					if err != nil {
						if IsInferenceError(err) || IsAttributeError(err) {
							break
						}
						yield(nil, err)
						return
					}
					if !yield(v, nil) {
						return
					}
				}
			}
		}
	}))
}

// inferenceTip returns special handling for calls to builtin classes whose
// result the class body does not describe.
func (c *Call) inferenceTip(callee Value) (func(*Call, *Context) Results, bool) {
	cls, ok := callee.(*ClassDef)
	if !ok {
		return nil, false
	}
	switch cls.Qname() {
	case "builtins.super":
		return inferSuperCall, true
	case "builtins.frozenset":
		return inferFrozenSetCall, true
	default:
		return nil, false
	}
}

// inferSuperCall builds the Super proxy for super() and super(type, obj).
// Calls outside a method fall back to an ordinary instance of super.
func inferSuperCall(call *Call, ctx *Context) Results {
	fallback := func() Results {
		cls, err := BuiltinClass("super")
		if err != nil {
			return Fail(err)
		}
		return Single(NewInstance(cls))
	}
	scope := enclosingFunction(call)
	if scope == nil {
		return fallback()
	}
	typ := scope.Type()
	if typ != "method" && typ != "classmethod" {
		return fallback()
	}
	cls, ok := scope.parent.(*ClassDef)
	if !ok {
		return fallback()
	}

	var pointer, mroType Value
	switch len(call.Args) {
	case 0:
		pointer = cls
		if typ == "classmethod" {
			mroType = cls
		} else {
			mroType = NewInstance(cls)
		}
	case 2:
		var ok bool
		var err error
		if pointer, ok, err = First(call.Args[0].Infer(ctx)); err != nil || !ok {
			return fallback()
		}
		if mroType, ok, err = First(call.Args[1].Infer(ctx)); err != nil || !ok {
			return fallback()
		}
	default:
		return fallback()
	}
	if IsUninferable(pointer) || IsUninferable(mroType) {
		return Single(Uninferable)
	}
	s := NewSuper(pointer, mroType, cls, scope)
	s.Parent = call
	return Single(s)
}

func inferFrozenSetCall(call *Call, ctx *Context) Results {
	if len(call.Args) == 0 {
		return Single(NewFrozenSet(nil))
	}
	if len(call.Args) > 1 {
		return Single(Uninferable)
	}
	return func(yield func(Value, error) bool) {
		for v, err := range call.Args[0].Infer(ctx) {
			if err != nil {
				yield(nil, err)
				return
			}
			var out Value = Uninferable
			switch v := v.(type) {
			case *Collection:
				out = NewFrozenSet(v.Elts)
			case *FrozenSet:
				out = NewFrozenSet(v.Elts)
			case *Dict:
				out = NewFrozenSet(v.Keys)
			}
			if !yield(out, nil) {
				return
			}
		}
	}
}

// enclosingFunction is the nearest function whose body contains n.
func enclosingFunction(n Node) *FunctionDef {
	for n != nil {
		if f, ok := n.(*FunctionDef); ok {
			return f
		}
		p, ok := n.(parented)
		if !ok {
			return nil
		}
		n = p.Parent()
	}
	return nil
}

// Infer resolves value[index] through __getitem__ on instances and directly
// on literal displays.
func (s *Subscript) Infer(ctx *Context) Results {
	return nonEmpty(s, ctx, guarded(s, ctx, func(ctx *Context) Results {
		return func(yield func(Value, error) bool) {
			for v, err := range s.Value.Infer(ctx) {
				if err != nil {
					yield(nil, err)
					return
				}
				var out Results
				switch v := v.(type) {
				case *Instance:
					item, err := v.Getitem(s.Index, ctx)
					if err != nil {
						out = Single(Uninferable)
					} else {
						out = Single(item)
					}
				case *Collection:
					out = s.literalItem(v.Elts, ctx)
				case *Dict:
					out = s.dictItem(v, ctx)
				default:
					out = Single(Uninferable)
				}
				for r, err := range out {
					if !yield(r, err) || err != nil {
						return
					}
				}
			}
		}
	}))
}

func (s *Subscript) literalItem(elts []Node, ctx *Context) Results {
	idx, ok, err := First(s.Index.Infer(ctx))
	if err != nil || !ok {
		return Single(Uninferable)
	}
	c, ok := idx.(*Const)
	if !ok {
		return Single(Uninferable)
	}
	i, ok := c.Value.(int64)
	if !ok {
		return Single(Uninferable)
	}
	if i < 0 {
		i += int64(len(elts))
	}
	if i < 0 || i >= int64(len(elts)) {
		return Single(Uninferable)
	}
	return elts[i].Infer(ctx)
}

func (s *Subscript) dictItem(d *Dict, ctx *Context) Results {
	idx, ok, err := First(s.Index.Infer(ctx))
	if err != nil || !ok {
		return Single(Uninferable)
	}
	want, ok := idx.(*Const)
	if !ok {
		return Single(Uninferable)
	}
	for i := len(d.Keys) - 1; i >= 0; i-- {
		k, ok, err := First(d.Keys[i].Infer(ctx))
		if err != nil || !ok {
			continue
		}
		if kc, ok := k.(*Const); ok && constEqual(kc, want) {
			return d.Values[i].Infer(ctx)
		}
	}
	return Single(Uninferable)
}

func constEqual(a, b *Const) bool {
	switch av := a.Value.(type) {
	case []byte:
		bv, ok := b.Value.([]byte)
		return ok && string(av) == string(bv)
	default:
		return a.Value == b.Value
	}
}
