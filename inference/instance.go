package inference

import (
	"fmt"
	"iter"
)

// baseInstance is the attribute resolver shared by everything that is an
// instance of some class. self points back at the embedding object so bound
// methods and special attributes see the outer value.
type baseInstance struct {
	cls     *ClassDef
	self    Object
	special *SpecialAttributes
}

func (b *baseInstance) isObject() {}

// Proxied is the class this is an instance of.
func (b *baseInstance) Proxied() *ClassDef { return b.cls }

func (b *baseInstance) Infer(*Context) Results { return Single(b.self) }
func (b *baseInstance) DisplayType() string    { return "Instance of" }

func (b *baseInstance) Getattr(name string, ctx *Context) ([]Node, error) {
	return b.LookupAttr(name, ctx, true)
}

// LookupAttr collects the declarations of name: instance attributes first,
// then, when lookupClass is set, class attributes after them. Special
// attributes are consulted only when no instance attribute exists.
func (b *baseInstance) LookupAttr(name string, ctx *Context, lookupClass bool) ([]Node, error) {
	ctx = ctx.orNew()
	values, err := b.cls.InstanceAttr(name, ctx)
	if err != nil {
		if v, ok := b.special.Lookup(name, b.self); ok {
			return []Node{v}, nil
		}
		if lookupClass {
			return b.cls.Getattr(name, ctx, false)
		}
		return nil, &AttributeInferenceError{Target: b.self, Attribute: name, Context: ctx}
	}
	if lookupClass {
		if classValues, err := b.cls.Getattr(name, ctx, false); err == nil {
			values = append(values, classValues...)
		}
	}
	return values, nil
}

// Igetattr infers attribute name. A repeated lookup of the same attribute on
// the same class within one request yields nothing.
func (b *baseInstance) Igetattr(name string, ctx *Context) Results {
	return func(yield func(Value, error) bool) {
		ctx = ctx.orNew()
		if ctx.Push(b.cls, name) {
			return
		}

		attrs, err := b.LookupAttr(name, ctx, false)
		if err == nil {
			missing := false
			for v, err := range InferStmts(b.wrapAttr(nodes(attrs), ctx), ctx, b.self) {
				if err != nil {
					if IsAttributeError(err) {
						missing = true
						break
					}
					yield(nil, err)
					return
				}
				if !yield(v, nil) {
					return
				}
			}
			if !missing {
				return
			}
		} else if !IsAttributeError(err) {
			yield(nil, err)
			return
		}

		// Class attributes go through the class so descriptors and method
		// wrapping apply.
		notFound := func(err error) error {
			if !IsAttributeError(err) {
				return err
			}
			return &InferenceError{
				Node:    b.self,
				Context: ctx,
				Message: fmt.Sprintf("attribute %q could not be inferred", name),
				Cause:   err,
			}
		}
		for v, err := range b.cls.Igetattr(name, ctx, false) {
			if err != nil {
				yield(nil, notFound(err))
				return
			}
			for w, err := range b.wrapAttr(nodes([]Node{v}), ctx) {
				if err != nil {
					yield(nil, notFound(err))
					return
				}
				if !yield(w.(Value), nil) {
					return
				}
			}
		}
	}
}

// wrapAttr binds class-level functions to the instance. Property-like
// methods are replaced by the results of calling them.
func (b *baseInstance) wrapAttr(attrs iter.Seq2[Node, error], ctx *Context) iter.Seq2[Node, error] {
	return func(yield func(Node, error) bool) {
		for attr, err := range attrs {
			if err != nil {
				yield(nil, err)
				return
			}
			switch a := attr.(type) {
			case *UnboundMethod:
				if IsProperty(a.Func, ctx) {
					pctx := ctx.Clone()
					pctx.BoundNode = b.self
					for v, err := range a.InferCallResult(b.self, pctx) {
						if !yield(v, err) || err != nil {
							return
						}
					}
					continue
				}
				attr = NewBoundMethod(a.Func, b.self)
			case *Lambda:
				if a.inClassBody() && a.firstParamName() == "self" {
					attr = NewBoundMethod(a, b.self)
				}
			}
			if !yield(attr, nil) {
				return
			}
		}
	}
}

// InferCallResult infers a call through the class's __call__.
func (b *baseInstance) InferCallResult(caller Node, ctx *Context) Results {
	return func(yield func(Value, error) bool) {
		ctx = ctx.orNew()
		inferred := false
		for node, err := range b.cls.Igetattr("__call__", ctx, true) {
			if err != nil {
				if IsAttributeError(err) || IsInferenceError(err) {
					break
				}
				yield(nil, err)
				return
			}
			if IsUninferable(node) || !node.Callable() {
				continue
			}
			var callee Value = node
			if m, ok := node.(*UnboundMethod); ok {
				callee = NewBoundMethod(m.Func, b.self)
			}
			for v, err := range callResult(callee, caller, ctx) {
				if err != nil {
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
			yield(nil, &InferenceError{Node: b.self, Context: ctx, Message: "object is not callable"})
		}
	}
}

// Instance is an instance of a user or builtin class.
type Instance struct {
	baseInstance
}

func NewInstance(cls *ClassDef) *Instance {
	i := &Instance{}
	i.baseInstance = baseInstance{cls: cls, self: i, special: instanceModel}
	return i
}

func (i *Instance) String() string { return "Instance of " + i.cls.Qname() }
func (i *Instance) Pytype() string { return i.cls.Qname() }

func (i *Instance) Callable() bool {
	_, err := i.cls.Getattr("__call__", nil, false)
	return err == nil
}

// BoolValue infers truth through __bool__, then __len__. A method that
// exists but cannot be inferred gives TruthUnknown; only a class with
// neither method is unconditionally true.
func (i *Instance) BoolValue() Truth {
	return i.BoolValueWith(NewSettings())
}

func (i *Instance) BoolValueWith(settings *Settings) Truth {
	ctx := NewContextWith(settings)
	ctx.CallContext = NewCallContext(ctx, []Node{i.self}, nil)
	result, err := inferMethodResultTruth(i.self, "__bool__", ctx)
	if err != nil {
		result, err = inferMethodResultTruth(i.self, "__len__", ctx)
		if err != nil {
			return True
		}
	}
	return result
}

func inferMethodResultTruth(instance Object, method string, ctx *Context) (Truth, error) {
	meth, ok, err := First(instance.Igetattr(method, ctx))
	if err != nil {
		return TruthUnknown, err
	}
	if !ok {
		return TruthUnknown, nil
	}
	c, isCallable := meth.(interface {
		InferCallResult(caller Node, ctx *Context) Results
	})
	if !isCallable || !meth.Callable() {
		return TruthUnknown, nil
	}
	for value, err := range c.InferCallResult(instance, ctx) {
		if err != nil {
			return TruthUnknown, err
		}
		if IsUninferable(value) {
			return TruthUnknown, nil
		}
		inferred, ok, err := First(value.Infer(ctx))
		if err != nil {
			return TruthUnknown, err
		}
		if !ok {
			return TruthUnknown, nil
		}
		return inferred.BoolValue(), nil
	}
	return TruthUnknown, nil
}

// Getitem infers self[index] through __getitem__.
func (i *Instance) Getitem(index Node, ctx *Context) (Value, error) {
	ctx = ctx.orNew()
	method, ok, err := First(i.Igetattr("__getitem__", ctx))
	if err != nil {
		return nil, err
	}
	bound, isBound := method.(*BoundMethod)
	if !ok || !isBound {
		return nil, &InferenceError{Node: i.self, Context: ctx, Message: "could not find __getitem__"}
	}
	callCtx := ctx.Clone()
	callCtx.CallContext = NewCallContext(ctx, []Node{index}, nil)
	callCtx.BoundNode = i.self
	v, ok, err := First(bound.InferCallResult(i.self, callCtx))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &InferenceError{
			Node:    i.self,
			Context: ctx,
			Message: fmt.Sprintf("inference for %s[%s] failed", describe(i.self), describe(index)),
		}
	}
	return v, nil
}

// Generator is the result of calling a generator function.
type Generator struct {
	baseInstance
	Parent *FunctionDef
}

func NewGenerator(parent *FunctionDef) *Generator {
	g := &Generator{Parent: parent}
	g.baseInstance = baseInstance{cls: mustBuiltinClass("generator"), self: g, special: generatorModel}
	return g
}

func (g *Generator) String() string      { return fmt.Sprintf("Generator(%s)", g.Parent.Name) }
func (g *Generator) Pytype() string      { return "builtins.generator" }
func (g *Generator) DisplayType() string { return "Generator" }
func (g *Generator) Callable() bool      { return false }
func (g *Generator) BoolValue() Truth    { return True }

// FrozenSet is a frozenset built from a literal collection.
type FrozenSet struct {
	Instance
	Elts []Node
}

func NewFrozenSet(elts []Node) *FrozenSet {
	f := &FrozenSet{Elts: elts}
	f.baseInstance = baseInstance{cls: mustBuiltinClass("frozenset"), self: f, special: instanceModel}
	return f
}

func (f *FrozenSet) String() string   { return fmt.Sprintf("frozenset of %d elements", len(f.Elts)) }
func (f *FrozenSet) Pytype() string   { return "builtins.frozenset" }
func (f *FrozenSet) BoolValue() Truth { return TruthOf(len(f.Elts) > 0) }
