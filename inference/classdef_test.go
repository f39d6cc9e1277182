package inference

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qnames(classes []*ClassDef) []string {
	out := make([]string, len(classes))
	for i, c := range classes {
		out[i] = c.Qname()
	}
	return out
}

func TestClassDef_DiamondMRO(t *testing.T) {
	mod := parseModule(t, `
class A:
    pass

class B(A):
    pass

class C(A):
    pass

class D(B, C):
    pass
`)
	d := classNamed(t, mod, "D")

	mro, err := d.MRO(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"test.D", "test.B", "test.C", "test.A", "builtins.object"}, qnames(mro))

	assert.Equal(t, []string{"test.B", "test.A", "builtins.object", "test.C"}, qnames(d.Ancestors(nil)))

	assert.True(t, d.IsSubtypeOf("test.A", nil))
	assert.True(t, d.IsSubtypeOf("builtins.object", nil))
	assert.False(t, d.IsSubtypeOf("test.Z", nil))
}

func TestClassDef_MROErrors(t *testing.T) {
	mod := parseModule(t, `
class X:
    pass

class Y(X):
    pass

class Inconsistent(X, Y):
    pass

class Duplicate(X, X):
    pass

class Left(Right):
    pass

class Right(Left):
    pass
`)
	for _, name := range []string{"Inconsistent", "Duplicate", "Left"} {
		_, err := classNamed(t, mod, name).MRO(nil)
		var mroErr *MroError
		require.True(t, errors.As(err, &mroErr), name)
	}
}

func TestClassDef_OverriddenMembersResolveOnce(t *testing.T) {
	mod := parseModule(t, `
class P:
    def m(self):
        return 1

class Q(P):
    def m(self):
        return 2

value = Q().m()
`)
	q := classNamed(t, mod, "Q")

	decls, err := q.Getattr("m", nil, true)
	require.NoError(t, err)
	assert.Len(t, decls, 2)

	values, err := Collect(q.Igetattr("m", nil, true))
	require.NoError(t, err)
	require.Len(t, values, 1)
	um, ok := values[0].(*UnboundMethod)
	require.True(t, ok, "got %T", values[0])
	assert.Equal(t, "test.Q.m", um.Func.Qname())

	values = inferGlobal(t, mod, "value")
	require.Len(t, values, 1)
	requireConst(t, values[0], int64(2))
}

func TestClassDef_MethodKinds(t *testing.T) {
	mod := parseModule(t, `
class A:
    def method(self):
        """Does things."""
        return 1

    @classmethod
    def make(cls):
        return cls

    @staticmethod
    def helper():
        return 2

class B(A):
    pass
`)
	b := classNamed(t, mod, "B")

	values, err := Collect(b.Igetattr("method", nil, true))
	require.NoError(t, err)
	um, ok := values[0].(*UnboundMethod)
	require.True(t, ok, "got %T", values[0])
	assert.False(t, um.IsBound())
	assert.Equal(t, "builtins.instancemethod", um.Pytype())

	names, err := Collect(um.Igetattr("__name__", nil))
	require.NoError(t, err)
	requireConst(t, names[0], "method")
	docs, err := Collect(um.Igetattr("__doc__", nil))
	require.NoError(t, err)
	requireConst(t, docs[0], "Does things.")
	selves, err := Collect(um.Igetattr("__self__", nil))
	require.NoError(t, err)
	requireConst(t, selves[0], nil)

	values, err = Collect(b.Igetattr("make", nil, true))
	require.NoError(t, err)
	bm, ok := values[0].(*BoundMethod)
	require.True(t, ok, "got %T", values[0])
	assert.Same(t, b, bm.Bound)
	selves, err = Collect(bm.Igetattr("__self__", nil))
	require.NoError(t, err)
	assert.Same(t, b, selves[0])

	values, err = Collect(b.Igetattr("helper", nil, true))
	require.NoError(t, err)
	assert.IsType(t, &FunctionDef{}, values[0])
}

func TestClassDef_SpecialAttributes(t *testing.T) {
	mod := parseModule(t, `
class A:
    """Class docs."""

class B(A):
    __doc__ = "shadowed"
`)
	a, b := classNamed(t, mod, "A"), classNamed(t, mod, "B")

	values, err := Collect(a.Igetattr("__name__", nil, true))
	require.NoError(t, err)
	requireConst(t, values[0], "A")

	values, err = Collect(a.Igetattr("__doc__", nil, true))
	require.NoError(t, err)
	requireConst(t, values[0], "Class docs.")

	values, err = Collect(b.Igetattr("__doc__", nil, true))
	require.NoError(t, err)
	requireConst(t, values[0], "shadowed")

	values, err = Collect(b.Igetattr("__bases__", nil, true))
	require.NoError(t, err)
	bases, ok := values[0].(*Collection)
	require.True(t, ok)
	require.Len(t, bases.Elts, 1)
	assert.Same(t, a, bases.Elts[0])

	values, err = Collect(b.Igetattr("__mro__", nil, true))
	require.NoError(t, err)
	assert.Len(t, values[0].(*Collection).Elts, 3)

	_, err = b.Getattr("__name__", nil, false)
	assert.True(t, IsAttributeError(err))
}

func TestClassDef_ObjectNew(t *testing.T) {
	mod := parseModule(t, `
class A:
    pass

made = object.__new__(A)
odd = object.__new__(1)
`)
	values := inferGlobal(t, mod, "made")
	require.Len(t, values, 1)
	inst, ok := values[0].(*Instance)
	require.True(t, ok, "got %T", values[0])
	assert.Same(t, classNamed(t, mod, "A"), inst.Proxied())

	values = inferGlobal(t, mod, "odd")
	require.Len(t, values, 1)
	assert.True(t, IsUninferable(values[0]))
}

func TestClassDef_InstanceAttrNames(t *testing.T) {
	mod := parseModule(t, `
class A:
    def __init__(self):
        self.b = 1
        self.a = 2
        self.b = 3

    @staticmethod
    def helper(self):
        self.ignored = 4
`)
	a := classNamed(t, mod, "A")
	assert.Equal(t, []string{"b", "a"}, a.InstanceAttrNames())
	assert.Len(t, a.InstanceAttrs["b"], 2)
	assert.NotContains(t, a.InstanceAttrs, "ignored")
	assert.Equal(t, []string{"__init__", "helper"}, a.LocalNames())
}
