package inference

import "objmodel/ast"

// SpecialAttributes is a table of dunder attributes synthesized for one kind
// of owner rather than found in any scope.
type SpecialAttributes struct {
	Kind  string
	attrs map[string]func(owner Value) Value
}

// Lookup synthesizes attribute name for owner.
func (s *SpecialAttributes) Lookup(name string, owner Value) (Value, bool) {
	if s == nil {
		return nil, false
	}
	f, ok := s.attrs[name]
	if !ok {
		return nil, false
	}
	v := f(owner)
	if v == nil {
		return nil, false
	}
	return v, true
}

func builtinOrUninferable(name string) Value {
	cls, err := BuiltinClass(name)
	if err != nil {
		return Uninferable
	}
	return cls
}

func optionalDoc(doc string) Value {
	if doc == "" {
		return NewConst(nil)
	}
	return NewConst(doc)
}

func moduleNameOf(n Node) Value {
	if m := rootModule(n); m != nil {
		return NewConst(m.Name)
	}
	return NewConst(nil)
}

var moduleModel = &SpecialAttributes{Kind: "module", attrs: map[string]func(Value) Value{
	"__name__": func(o Value) Value { return NewConst(o.(*Module).Name) },
	"__doc__":  func(o Value) Value { return optionalDoc(o.(*Module).Doc) },
	"__dict__": func(Value) Value { return &Dict{} },
}}

var classModel = &SpecialAttributes{Kind: "class", attrs: map[string]func(Value) Value{
	"__name__":     func(o Value) Value { return NewConst(o.(*ClassDef).Name) },
	"__qualname__": func(o Value) Value { return NewConst(o.(*ClassDef).Qname()) },
	"__doc__":      func(o Value) Value { return optionalDoc(o.(*ClassDef).Doc) },
	"__module__":   func(o Value) Value { return moduleNameOf(o.(*ClassDef)) },
	"__dict__":     func(Value) Value { return &Dict{} },
	"__class__":    func(Value) Value { return builtinOrUninferable("type") },
	"__bases__": func(o Value) Value {
		var elts []Node
		for _, b := range o.(*ClassDef).bases(nil) {
			elts = append(elts, b)
		}
		return &Collection{Kind: ast.TupleKind, Elts: elts}
	},
	"__mro__": func(o Value) Value {
		mro, err := o.(*ClassDef).MRO(nil)
		if err != nil {
			return nil
		}
		elts := make([]Node, len(mro))
		for i, c := range mro {
			elts[i] = c
		}
		return &Collection{Kind: ast.TupleKind, Elts: elts}
	},
}}

var functionModel = &SpecialAttributes{Kind: "function", attrs: map[string]func(Value) Value{
	"__name__":     func(o Value) Value { return NewConst(o.(Function).FuncName()) },
	"__qualname__": func(o Value) Value { return NewConst(o.(Function).Qname()) },
	"__doc__": func(o Value) Value {
		if f, ok := o.(*FunctionDef); ok {
			return optionalDoc(f.Doc)
		}
		return NewConst(nil)
	},
	"__module__": func(o Value) Value { return moduleNameOf(o) },
	"__dict__":   func(Value) Value { return &Dict{} },
	"__class__":  func(Value) Value { return builtinOrUninferable("function") },
}}

var instanceModel = &SpecialAttributes{Kind: "instance", attrs: map[string]func(Value) Value{
	"__class__": func(o Value) Value {
		cls, ok := proxiedClass(o)
		if !ok {
			return nil
		}
		return cls
	},
	"__module__": func(o Value) Value {
		cls, ok := proxiedClass(o)
		if !ok {
			return nil
		}
		return moduleNameOf(cls)
	},
	"__doc__": func(o Value) Value {
		cls, ok := proxiedClass(o)
		if !ok {
			return nil
		}
		return optionalDoc(cls.Doc)
	},
	"__dict__": func(Value) Value { return &Dict{} },
}}

var generatorModel = &SpecialAttributes{Kind: "generator", attrs: map[string]func(Value) Value{
	"__name__": func(o Value) Value { return NewConst(o.(*Generator).Parent.Name) },
	"__doc__":  func(o Value) Value { return optionalDoc(o.(*Generator).Parent.Doc) },
}}

func methodAttrs(bound func(Value) Value) map[string]func(Value) Value {
	fn := func(o Value) Function {
		switch m := o.(type) {
		case *BoundMethod:
			return m.Func
		case *UnboundMethod:
			return m.Func
		}
		return nil
	}
	return map[string]func(Value) Value{
		"__func__": func(o Value) Value { return fn(o) },
		"im_func":  func(o Value) Value { return fn(o) },
		"__self__": bound,
		"im_self":  bound,
		"__name__": func(o Value) Value { return NewConst(fn(o).FuncName()) },
		"__doc__": func(o Value) Value {
			if f, ok := fn(o).(*FunctionDef); ok {
				return optionalDoc(f.Doc)
			}
			return NewConst(nil)
		},
		"__class__": func(Value) Value { return builtinOrUninferable("function") },
	}
}

var unboundMethodModel = &SpecialAttributes{Kind: "unbound method", attrs: methodAttrs(
	func(Value) Value { return NewConst(nil) },
)}

var boundMethodModel = &SpecialAttributes{Kind: "bound method", attrs: methodAttrs(
	func(o Value) Value { return o.(*BoundMethod).Bound },
)}

var superModel = &SpecialAttributes{Kind: "super", attrs: map[string]func(Value) Value{
	"__thisclass__": func(o Value) Value { return o.(*Super).MroPointer },
	"__self_class__": func(o Value) Value {
		if c := o.(*Super).SelfClass; c != nil {
			return c
		}
		return nil
	},
	"__self__":  func(o Value) Value { return o.(*Super).Type },
	"__class__": func(Value) Value { return builtinOrUninferable("super") },
}}
