package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"objmodel/ast"
)

func functionNamed(t *testing.T, scope map[string][]Node, name string) *FunctionDef {
	t.Helper()
	decls := scope[name]
	require.NotEmpty(t, decls, name)
	fn, ok := decls[len(decls)-1].(*FunctionDef)
	require.True(t, ok, "%s is %T", name, decls[len(decls)-1])
	return fn
}

func TestFunctionDef_Type(t *testing.T) {
	mod := parseModule(t, `
import abc

def free():
    pass

class my_classmethod(classmethod):
    pass

class A:
    def method(self):
        pass

    @classmethod
    def cm(cls):
        pass

    @staticmethod
    def sm():
        pass

    @my_classmethod
    def custom(cls):
        pass

    def __new__(cls):
        pass

    def __init_subclass__(cls):
        pass
`)
	assert.Equal(t, "function", functionNamed(t, mod.Locals(), "free").Type())

	locals := classNamed(t, mod, "A").Locals()
	for name, want := range map[string]string{
		"method":            "method",
		"cm":                "classmethod",
		"sm":                "staticmethod",
		"custom":            "classmethod",
		"__new__":           "classmethod",
		"__init_subclass__": "classmethod",
	} {
		assert.Equal(t, want, functionNamed(t, locals, name).Type(), name)
	}
}

func TestFunctionDef_TypeUsesModuleImports(t *testing.T) {
	lib := parseModule(t, `
class shared_classmethod(classmethod):
    pass

class shared_staticmethod(staticmethod):
    pass
`)
	lib.Name = "lib"

	file, err := ast.Parse([]byte(`
from lib import shared_classmethod, shared_staticmethod

class A:
    @shared_classmethod
    def make(cls):
        return cls

    @shared_staticmethod
    def helper():
        return 1

    def plain(self):
        return self
`))
	require.NoError(t, err)
	mod, err := NewManager(WithImportResolver(mapResolver{"lib": lib})).Module(file, "main")
	require.NoError(t, err)

	locals := classNamed(t, mod, "A").Locals()
	factory := functionNamed(t, locals, "make")
	assert.Equal(t, "classmethod", factory.Type())
	assert.Equal(t, "classmethod", factory.Type())
	assert.Equal(t, "staticmethod", functionNamed(t, locals, "helper").Type())
	assert.Equal(t, "method", functionNamed(t, locals, "plain").Type())

	values, err := Collect(NewInstance(classNamed(t, mod, "A")).Igetattr("make", mod.newContext()))
	require.NoError(t, err)
	require.Len(t, values, 1)
	bound, ok := values[0].(*BoundMethod)
	require.True(t, ok, "%T", values[0])
	assert.Same(t, classNamed(t, mod, "A"), bound.Bound)
}

func TestFunctionDef_Display(t *testing.T) {
	mod := parseModule(t, `
def free():
    pass

class A:
    def method(self):
        pass

    @staticmethod
    def helper(x):
        pass
`)
	free := functionNamed(t, mod.Locals(), "free")
	assert.Equal(t, "builtins.function", free.Pytype())
	assert.Equal(t, "Function", free.DisplayType())
	assert.Equal(t, "test.free", free.Qname())

	method := functionNamed(t, classNamed(t, mod, "A").Locals(), "method")
	assert.Equal(t, "builtins.instancemethod", method.Pytype())
	assert.Equal(t, "Method", method.DisplayType())
	assert.Equal(t, "test.A.method", method.Qname())

	helper := functionNamed(t, classNamed(t, mod, "A").Locals(), "helper")
	// Any method kind, static ones included, reports as instancemethod.
	assert.Equal(t, "builtins.instancemethod", helper.Pytype())
	assert.Equal(t, "Function", helper.DisplayType())
}

func TestFunctionDef_DecoratorNames(t *testing.T) {
	mod := parseModule(t, `
import abc

def tracer(fn):
    return fn

class A:
    @property
    @abc.abstractproperty
    @tracer
    @functools.cached_property
    @missing(1)
    def value(self):
        pass
`)
	fn := functionNamed(t, classNamed(t, mod, "A").Locals(), "value")
	assert.Equal(t, []string{
		"builtins.property",
		"abc.abstractproperty",
		"test.tracer",
		"functools.cached_property",
		"missing",
	}, fn.DecoratorNames(nil))
	assert.True(t, IsProperty(fn, nil))
}

func TestFunctionDef_SpecialAttributes(t *testing.T) {
	mod := parseModule(t, `
def documented():
    """Short summary."""
`)
	fn := functionNamed(t, mod.Locals(), "documented")

	values, err := Collect(fn.Igetattr("__name__", nil))
	require.NoError(t, err)
	requireConst(t, values[0], "documented")

	values, err = Collect(fn.Igetattr("__doc__", nil))
	require.NoError(t, err)
	requireConst(t, values[0], "Short summary.")

	values, err = Collect(fn.Igetattr("__module__", nil))
	require.NoError(t, err)
	requireConst(t, values[0], "test")

	_, err = Collect(fn.Igetattr("missing", nil))
	assert.True(t, IsAttributeError(err))
}

func TestFunctionDef_ReturnErrorsBecomeUninferable(t *testing.T) {
	mod := parseModule(t, `
def f(flag):
    if flag:
        return undefined_name
    return 1

x = f(True)
`)
	values := inferGlobal(t, mod, "x")
	require.Len(t, values, 2)
	assert.True(t, IsUninferable(values[0]))
	requireConst(t, values[1], int64(1))
}

func TestLambda_CallAndType(t *testing.T) {
	mod := parseModule(t, `
double = lambda x: x
result = double("twice")
`)
	values := inferGlobal(t, mod, "double")
	require.Len(t, values, 1)
	l, ok := values[0].(*Lambda)
	require.True(t, ok, "got %T", values[0])
	assert.Equal(t, "function", l.Type())
	assert.Equal(t, "builtins.function", l.Pytype())
	assert.Equal(t, "test.<lambda>", l.Qname())

	requireConst(t, inferGlobal(t, mod, "result")[0], "twice")
}
