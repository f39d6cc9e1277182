package inference

import "fmt"

// Super is the proxy produced by a super call. MroPointer is the class
// whose successors are searched; Type supplies the MRO and is either a
// class or an instance.
type Super struct {
	MroPointer Value
	Type       Value
	SelfClass  *ClassDef
	Scope      *FunctionDef
	Parent     Node

	classBased bool
	special    *SpecialAttributes
}

func NewSuper(mroPointer, typ Value, selfClass *ClassDef, scope *FunctionDef) *Super {
	return &Super{MroPointer: mroPointer, Type: typ, SelfClass: selfClass, Scope: scope, special: superModel}
}

func (s *Super) isObject()              {}
func (s *Super) Infer(*Context) Results { return Single(s) }
func (s *Super) Pytype() string         { return "builtins.super" }
func (s *Super) DisplayType() string    { return "Super of" }
func (s *Super) Callable() bool         { return false }
func (s *Super) BoolValue() Truth       { return True }

// Name is the name of the class the search starts after.
func (s *Super) Name() string {
	if c, ok := s.MroPointer.(*ClassDef); ok {
		return c.Name
	}
	return describe(s.MroPointer)
}

func (s *Super) String() string { return "Super of " + s.Name() }

// Proxied is the builtin super class.
func (s *Super) Proxied() (*ClassDef, error) { return BuiltinClass("super") }

// SuperMRO returns the part of the MRO of Type that follows MroPointer.
func (s *Super) SuperMRO(ctx *Context) ([]*ClassDef, error) {
	pointer, ok := s.MroPointer.(*ClassDef)
	if !ok {
		return nil, &SuperError{Super: s, Message: fmt.Sprintf(
			"the first argument to super must be a subtype of type, not %s", describe(s.MroPointer))}
	}
	var mroType *ClassDef
	if cls, ok := s.Type.(*ClassDef); ok {
		s.classBased = true
		mroType = cls
	} else if cls, ok := proxiedClass(s.Type); ok {
		mroType = cls
	} else {
		return nil, &SuperError{Super: s, Message: fmt.Sprintf(
			"the second argument to super must be an instance or subtype of type, not %s", describe(s.Type))}
	}
	if !mroType.Newstyle {
		return nil, &SuperError{Super: s, Message: "unable to call super on old-style classes"}
	}
	mro, err := mroType.MRO(ctx)
	if err != nil {
		return nil, err
	}
	for i, cls := range mro {
		if cls == pointer {
			return mro[i+1:], nil
		}
	}
	return nil, &SuperError{Super: s, Message: fmt.Sprintf(
		"the second argument to super must be an instance or subtype of type, not %s", describe(s.Type))}
}

func (s *Super) Igetattr(name string, ctx *Context) Results {
	return func(yield func(Value, error) bool) {
		ctx = ctx.orNew()
		if v, ok := s.special.Lookup(name, s); ok {
			yield(v, nil)
			return
		}

		mro, err := s.SuperMRO(ctx)
		if err != nil {
			var msg string
			switch err.(type) {
			case *MroError:
				msg = fmt.Sprintf("lookup for %s on %s failed because %s has an invalid MRO", name, s, describe(s.Type))
			default:
				msg = fmt.Sprintf("lookup for %s on %s failed because super call %s is invalid", name, s, s)
			}
			ctx.Logger().Debug("super lookup rejected", "attribute", name, "error", err)
			yield(nil, &AttributeInferenceError{Target: s, Attribute: name, Context: ctx, Message: msg, Cause: err})
			return
		}

		found := false
		for _, cls := range mro {
			decls := cls.Locals()[name]
			if len(decls) == 0 {
				continue
			}
			found = true
			for inferred, err := range InferStmts(nodes(decls[:1]), ctx, s) {
				if err != nil {
					yield(nil, err)
					return
				}
				for v, err := range s.classify(inferred, cls, ctx) {
					if !yield(v, err) || err != nil {
						return
					}
				}
			}
		}
		if !found {
			yield(nil, &AttributeInferenceError{Target: s, Attribute: name, Context: ctx})
		}
	}
}

// classify turns a function found in cls into what the super lookup
// produces for it.
func (s *Super) classify(inferred Value, cls *ClassDef, ctx *Context) Results {
	fn, ok := inferred.(*FunctionDef)
	if !ok {
		return Single(inferred)
	}
	switch {
	case fn.Type() == "classmethod":
		return Single(NewBoundMethod(fn, cls))
	case s.Scope != nil && s.Scope.Type() == "classmethod" && fn.Type() == "method":
		return Single(fn)
	case s.classBased, fn.Type() == "staticmethod":
		return Single(fn)
	case IsProperty(fn, ctx):
		return fn.InferCallResult(s, ctx)
	default:
		return Single(NewBoundMethod(fn, cls))
	}
}

func (s *Super) Getattr(name string, ctx *Context) ([]Node, error) {
	values, err := Collect(s.Igetattr(name, ctx))
	if err != nil {
		return nil, err
	}
	out := make([]Node, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out, nil
}
