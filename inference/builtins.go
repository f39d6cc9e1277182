package inference

import (
	_ "embed"
	"fmt"
	"sync"

	"objmodel/ast"
)

//go:embed builtins.py
var builtinsSource []byte

//go:embed abc.py
var abcSource []byte

// registry holds the modules every tree resolves names against last. They
// are built once per process; class lookups are memoized per name.
type registry struct {
	once    sync.Once
	modules map[string]*Module
	err     error

	classes sync.Map
}

var builtinRegistry registry

func (r *registry) load() error {
	r.once.Do(func() {
		builtinsFile, err := ast.Parse(builtinsSource)
		if err != nil {
			r.err = fmt.Errorf("parsing builtins: %w", err)
			return
		}
		abcFile, err := ast.Parse(abcSource)
		if err != nil {
			r.err = fmt.Errorf("parsing abc: %w", err)
			return
		}
		builtins := buildModule(builtinsFile, "builtins", nil, true)
		r.modules = map[string]*Module{
			"builtins": builtins,
			"abc":      buildModule(abcFile, "abc", builtins.env, false),
		}
	})
	return r.err
}

// BuiltinsModule returns the builtins module.
func BuiltinsModule() (*Module, error) {
	if err := builtinRegistry.load(); err != nil {
		return nil, err
	}
	return builtinRegistry.modules["builtins"], nil
}

// BuiltinModule returns a bundled standard module such as abc.
func BuiltinModule(name string) (*Module, bool) {
	if err := builtinRegistry.load(); err != nil {
		return nil, false
	}
	m, ok := builtinRegistry.modules[name]
	return m, ok
}

// BuiltinClass returns the builtin class called name.
func BuiltinClass(name string) (*ClassDef, error) {
	if cls, ok := builtinRegistry.classes.Load(name); ok {
		return cls.(*ClassDef), nil
	}
	builtins, err := BuiltinsModule()
	if err != nil {
		return nil, err
	}
	decls, ok := builtins.env.Items[name]
	if !ok {
		return nil, fmt.Errorf("no builtin named %q", name)
	}
	cls, ok := decls[len(decls)-1].(*ClassDef)
	if !ok {
		return nil, fmt.Errorf("builtin %q is not a class", name)
	}
	actual, _ := builtinRegistry.classes.LoadOrStore(name, cls)
	return actual.(*ClassDef), nil
}

func mustBuiltinClass(name string) *ClassDef {
	cls, err := BuiltinClass(name)
	if err != nil {
		panic(err)
	}
	return cls
}
