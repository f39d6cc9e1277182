package inference

// Environment is the binding table of one scope. Items keeps every binding
// of a name in source order.
type Environment struct {
	Items map[string][]Node
	Owner Node

	Parent *Environment

	order []string
}

func newEnvironment(owner Node, parent *Environment) *Environment {
	return &Environment{Items: map[string][]Node{}, Owner: owner, Parent: parent}
}

func (e *Environment) Add(name string, n Node) {
	if _, ok := e.Items[name]; !ok {
		e.order = append(e.order, name)
	}
	e.Items[name] = append(e.Items[name], n)
}

// Names lists bound names in the order they were first bound.
func (e *Environment) Names() []string {
	return append([]string(nil), e.order...)
}

func (e *Environment) Search(name string) ([]Node, *Environment, bool) {
	if v, ok := e.Items[name]; ok {
		return v, e, true
	}
	if e.Parent == nil {
		return nil, nil, false
	}
	return e.Parent.Search(name)
}

// root is the outermost environment, the builtins scope.
func (e *Environment) root() *Environment {
	for e.Parent != nil {
		e = e.Parent
	}
	return e
}

// enclosingNonClass skips class scopes: names bound in a class body are not
// visible from functions nested in it.
func enclosingNonClass(e *Environment) *Environment {
	for e != nil {
		if _, ok := e.Owner.(*ClassDef); !ok {
			return e
		}
		e = e.Parent
	}
	return nil
}
