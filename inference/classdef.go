package inference

import "fmt"

// ClassDef is a class statement. Newstyle is false only for classes that
// should be treated as old-style, which rejects super.
type ClassDef struct {
	Name       string
	Doc        string
	Bases      []Node
	Decorators []Node
	Newstyle   bool

	// InstanceAttrs holds self.attr assignments made in methods.
	InstanceAttrs map[string][]Node

	instanceAttrOrder []string
	env               *Environment
	base
}

func (c *ClassDef) Infer(*Context) Results { return Single(c) }
func (c *ClassDef) Qname() string          { return qualify(c.parent, c.Name) }
func (c *ClassDef) String() string         { return "Class " + c.Qname() }
func (c *ClassDef) Pytype() string         { return "builtins.type" }
func (c *ClassDef) DisplayType() string    { return "Class" }
func (c *ClassDef) Callable() bool         { return true }
func (c *ClassDef) BoolValue() Truth       { return True }

func (c *ClassDef) Locals() map[string][]Node { return c.env.Items }

// LocalNames lists names bound in the class body in binding order.
func (c *ClassDef) LocalNames() []string { return c.env.Names() }

// InstanceAttrNames lists instance attributes in assignment order.
func (c *ClassDef) InstanceAttrNames() []string {
	return append([]string(nil), c.instanceAttrOrder...)
}

func (c *ClassDef) addInstanceAttr(name string, n Node) {
	if c.InstanceAttrs == nil {
		c.InstanceAttrs = map[string][]Node{}
	}
	if _, ok := c.InstanceAttrs[name]; !ok {
		c.instanceAttrOrder = append(c.instanceAttrOrder, name)
	}
	c.InstanceAttrs[name] = append(c.InstanceAttrs[name], n)
}

func (c *ClassDef) isBuiltinObject() bool {
	m := rootModule(c)
	return m != nil && m.Name == "builtins" && c.Name == "object"
}

// bases resolves the base expressions to classes, skipping anything that
// does not infer to one. New-style classes without bases derive from object.
func (c *ClassDef) bases(ctx *Context) []*ClassDef {
	ctx = ctx.orNew()
	var out []*ClassDef
	for _, b := range c.Bases {
		for v, err := range b.Infer(ctx) {
			if err != nil {
				break
			}
			if cls, ok := v.(*ClassDef); ok {
				out = append(out, cls)
				break
			}
		}
	}
	if len(out) == 0 && len(c.Bases) == 0 && c.Newstyle && !c.isBuiltinObject() {
		if decls, ok := c.env.root().Items["object"]; ok {
			if object, ok := decls[0].(*ClassDef); ok {
				out = append(out, object)
			}
		}
	}
	return out
}

// Ancestors lists every base class depth first, each once.
func (c *ClassDef) Ancestors(ctx *Context) []*ClassDef {
	seen := map[*ClassDef]bool{c: true}
	var out []*ClassDef
	var walk func(k *ClassDef)
	walk = func(k *ClassDef) {
		for _, b := range k.bases(ctx) {
			if seen[b] {
				continue
			}
			seen[b] = true
			out = append(out, b)
			walk(b)
		}
	}
	walk(c)
	return out
}

// IsSubtypeOf reports whether c or one of its ancestors has the qualified
// name qname.
func (c *ClassDef) IsSubtypeOf(qname string, ctx *Context) bool {
	if c.Qname() == qname {
		return true
	}
	for _, a := range c.Ancestors(ctx) {
		if a.Qname() == qname {
			return true
		}
	}
	return false
}

// MRO computes the C3 linearization of c.
func (c *ClassDef) MRO(ctx *Context) ([]*ClassDef, error) {
	return c.mro(ctx.orNew(), map[*ClassDef]bool{})
}

func (c *ClassDef) mro(ctx *Context, visiting map[*ClassDef]bool) ([]*ClassDef, error) {
	if visiting[c] {
		return nil, &MroError{Class: c, Message: "cyclic class hierarchy"}
	}
	visiting[c] = true
	defer delete(visiting, c)

	bases := c.bases(ctx)
	seen := map[*ClassDef]bool{}
	for _, b := range bases {
		if seen[b] {
			return nil, &MroError{Class: c, Message: fmt.Sprintf("duplicate base class %s", b.Name)}
		}
		seen[b] = true
	}

	var seqs [][]*ClassDef
	for _, b := range bases {
		m, err := b.mro(ctx, visiting)
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, m)
	}
	seqs = append(seqs, append([]*ClassDef(nil), bases...))

	merged, ok := c3Merge(seqs)
	if !ok {
		return nil, &MroError{Class: c, Message: "inconsistent method resolution order"}
	}
	return append([]*ClassDef{c}, merged...), nil
}

func c3Merge(seqs [][]*ClassDef) ([]*ClassDef, bool) {
	for i := range seqs {
		seqs[i] = append([]*ClassDef(nil), seqs[i]...)
	}
	var out []*ClassDef
	for {
		nonEmpty := seqs[:0]
		for _, s := range seqs {
			if len(s) > 0 {
				nonEmpty = append(nonEmpty, s)
			}
		}
		seqs = nonEmpty
		if len(seqs) == 0 {
			return out, true
		}
		var head *ClassDef
		for _, s := range seqs {
			candidate := s[0]
			if !inAnyTail(candidate, seqs) {
				head = candidate
				break
			}
		}
		if head == nil {
			return nil, false
		}
		out = append(out, head)
		for i, s := range seqs {
			if s[0] == head {
				seqs[i] = s[1:]
			}
		}
	}
}

func inAnyTail(c *ClassDef, seqs [][]*ClassDef) bool {
	for _, s := range seqs {
		for _, k := range s[1:] {
			if k == c {
				return true
			}
		}
	}
	return false
}

// Getattr returns the class's own bindings of name followed by those of its
// ancestors. Special class attributes apply only in class context and only
// when nothing binds the name.
func (c *ClassDef) Getattr(name string, ctx *Context, classContext bool) ([]Node, error) {
	ctx = ctx.orNew()
	values := append([]Node(nil), c.env.Items[name]...)
	for _, a := range c.Ancestors(ctx) {
		values = append(values, a.env.Items[name]...)
	}
	if len(values) == 0 && classContext {
		if v, ok := classModel.Lookup(name, c); ok {
			return []Node{v}, nil
		}
	}
	if len(values) == 0 {
		return nil, &AttributeInferenceError{Target: c, Attribute: name, Context: ctx}
	}
	return values, nil
}

// Igetattr infers attribute name. Only declarations from the scope of the
// first one are used, so overridden ancestor members are not reported.
// Functions come back as methods: bound to the class for classmethods, raw
// for staticmethods, unbound otherwise. Instances of descriptor classes are
// Uninferable.
func (c *ClassDef) Igetattr(name string, ctx *Context, classContext bool) Results {
	return func(yield func(Value, error) bool) {
		ctx = ctx.orNew()
		attrs, err := c.Getattr(name, ctx, classContext)
		if err != nil {
			yield(nil, err)
			return
		}
		for v, err := range InferStmts(nodes(sameScopeAsFirst(attrs)), ctx, c) {
			if err != nil {
				yield(nil, err)
				return
			}
			if inst, ok := v.(*Instance); ok {
				if _, err := inst.cls.Getattr("__get__", ctx, false); err == nil {
					v = Uninferable
				}
			} else {
				v = functionToMethod(v, c)
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

func sameScopeAsFirst(attrs []Node) []Node {
	if len(attrs) < 2 {
		return attrs
	}
	scope := declScope(attrs[0])
	out := attrs[:1:1]
	for _, a := range attrs[1:] {
		if s := declScope(a); s != nil && s == scope {
			out = append(out, a)
		}
	}
	return out
}

func declScope(n Node) Node {
	if p, ok := n.(parented); ok {
		return p.Parent()
	}
	return nil
}

func functionToMethod(v Value, cls *ClassDef) Value {
	fn, ok := v.(*FunctionDef)
	if !ok {
		return v
	}
	if _, inClass := fn.parent.(*ClassDef); !inClass {
		return v
	}
	switch fn.Type() {
	case "classmethod":
		return NewBoundMethod(fn, cls)
	case "staticmethod":
		return v
	default:
		return NewUnboundMethod(fn)
	}
}

// InstanceAttr returns instance attribute bindings from c and its ancestors.
func (c *ClassDef) InstanceAttr(name string, ctx *Context) ([]Node, error) {
	values := append([]Node(nil), c.InstanceAttrs[name]...)
	for _, a := range c.Ancestors(ctx) {
		values = append(values, a.InstanceAttrs[name]...)
	}
	if len(values) == 0 {
		return nil, &AttributeInferenceError{Target: c, Attribute: name, Context: ctx}
	}
	return values, nil
}

// InferCallResult instantiates the class.
func (c *ClassDef) InferCallResult(caller Node, ctx *Context) Results {
	return Single(NewInstance(c))
}
