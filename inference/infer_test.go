package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"objmodel/ast"
)

func parseModule(t *testing.T, src string) *Module {
	t.Helper()
	file, err := ast.Parse([]byte(src))
	require.NoError(t, err)
	mod, err := NewManager().Module(file, "test")
	require.NoError(t, err)
	return mod
}

func classNamed(t *testing.T, mod *Module, name string) *ClassDef {
	t.Helper()
	decls := mod.Locals()[name]
	require.NotEmpty(t, decls, name)
	cls, ok := decls[len(decls)-1].(*ClassDef)
	require.True(t, ok, "%s is %T", name, decls[len(decls)-1])
	return cls
}

// inferGlobal infers the module level binding of name.
func inferGlobal(t *testing.T, mod *Module, name string) []Value {
	t.Helper()
	values, err := Collect(mod.Igetattr(name, nil))
	require.NoError(t, err)
	return values
}

func requireConst(t *testing.T, v Value, want interface{}) {
	t.Helper()
	c, ok := v.(*Const)
	require.True(t, ok, "got %T %v", v, v)
	assert.Equal(t, want, c.Value)
}

func TestInferStmts_EmptyFails(t *testing.T) {
	_, err := Collect(InferStmts(nodes(nil), nil, nil))
	require.Error(t, err)
	assert.True(t, IsInferenceError(err))
}

func TestInferStmts_SkipsUnboundNames(t *testing.T) {
	mod := parseModule(t, `
x = 1
`)
	undefined := &Name{ID: "nowhere"}
	undefined.parent = mod

	values, err := Collect(InferStmts(nodes([]Node{undefined, mod.Locals()["x"][0]}), nil, mod))
	require.NoError(t, err)
	require.Len(t, values, 1)
	requireConst(t, values[0], int64(1))
}

func TestInferStmts_InferenceErrorBecomesUninferable(t *testing.T) {
	mod := parseModule(t, `
class A:
    pass

x = A().missing
`)
	values, err := Collect(InferStmts(nodes(mod.Locals()["x"]), nil, mod))
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.True(t, IsUninferable(values[0]))
}

func TestName_LastBindingWins(t *testing.T) {
	mod := parseModule(t, `
x = 1
x = "two"
y = x
`)
	values := inferGlobal(t, mod, "y")
	require.Len(t, values, 1)
	requireConst(t, values[0], "two")
}

func TestCall_ClassInstantiates(t *testing.T) {
	mod := parseModule(t, `
class A:
    pass

a = A()
`)
	values := inferGlobal(t, mod, "a")
	require.Len(t, values, 1)
	inst, ok := values[0].(*Instance)
	require.True(t, ok)
	assert.Same(t, classNamed(t, mod, "A"), inst.Proxied())
	assert.Equal(t, "test.A", inst.Pytype())
	assert.Equal(t, "Instance of", inst.DisplayType())
}

func TestCall_FunctionArguments(t *testing.T) {
	mod := parseModule(t, `
def pick(a, b=2, *, c=3):
    return b

def kw(a, *, c=3):
    return c

first = pick(1)
second = pick(1, "b")
third = kw(1, c=None)
`)
	requireConst(t, inferGlobal(t, mod, "first")[0], int64(2))
	requireConst(t, inferGlobal(t, mod, "second")[0], "b")
	requireConst(t, inferGlobal(t, mod, "third")[0], nil)
}

func TestCall_NoReturnIsNone(t *testing.T) {
	mod := parseModule(t, `
def f():
    pass

x = f()
`)
	values := inferGlobal(t, mod, "x")
	require.Len(t, values, 1)
	requireConst(t, values[0], nil)
}

func TestCall_RecursionTerminates(t *testing.T) {
	mod := parseModule(t, `
def f():
    return f()

x = f()
`)
	values := inferGlobal(t, mod, "x")
	require.Len(t, values, 1)
	assert.True(t, IsUninferable(values[0]))
}

func TestCall_BuiltinFunctionsAreOpaque(t *testing.T) {
	mod := parseModule(t, `
x = len("abc")
`)
	values := inferGlobal(t, mod, "x")
	require.Len(t, values, 1)
	assert.True(t, IsUninferable(values[0]))
}

func TestSubscript_Literals(t *testing.T) {
	mod := parseModule(t, `
t = (1, "a")
d = {"k": 3.5}
first = t[0]
last = t[-1]
value = d["k"]
`)
	requireConst(t, inferGlobal(t, mod, "first")[0], int64(1))
	requireConst(t, inferGlobal(t, mod, "last")[0], "a")
	requireConst(t, inferGlobal(t, mod, "value")[0], 3.5)
}

func TestImport_BundledModule(t *testing.T) {
	mod := parseModule(t, `
import abc
from abc import abstractproperty
`)
	values := inferGlobal(t, mod, "abc")
	require.Len(t, values, 1)
	m, ok := values[0].(*Module)
	require.True(t, ok)
	assert.Equal(t, "abc", m.Name)

	values = inferGlobal(t, mod, "abstractproperty")
	require.Len(t, values, 1)
	cls, ok := values[0].(*ClassDef)
	require.True(t, ok)
	assert.Equal(t, "abc.abstractproperty", cls.Qname())
}

type mapResolver map[string]*Module

func (r mapResolver) ModuleFor(name string) (*Module, error) {
	if m, ok := r[name]; ok {
		return m, nil
	}
	return nil, assert.AnError
}

func TestImport_ResolverAndRelative(t *testing.T) {
	lib := parseModule(t, `
VALUE = 10
`)
	lib.Name = "pkg.lib"

	file, err := ast.Parse([]byte(`
from .lib import VALUE
from pkg import lib
`))
	require.NoError(t, err)
	resolver := mapResolver{"pkg.lib": lib}
	mod, err := NewManager(WithImportResolver(resolver)).Module(file, "pkg.main")
	require.NoError(t, err)

	ctx := NewContext(WithImportResolver(resolver))
	values, err := Collect(mod.Igetattr("VALUE", ctx))
	require.NoError(t, err)
	requireConst(t, values[0], int64(10))

	values, err = Collect(mod.Igetattr("lib", ctx))
	require.NoError(t, err)
	assert.Same(t, lib, values[0])
}

func TestResolveRelative(t *testing.T) {
	assert.Equal(t, "pkg.lib", resolveRelative("pkg.main", "lib", 1))
	assert.Equal(t, "pkg", resolveRelative("pkg.main", "", 1))
	assert.Equal(t, "lib", resolveRelative("pkg.sub.main", "lib", 3))
}
