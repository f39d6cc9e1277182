package ast

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ClassesAndFunctions(t *testing.T) {
	file, err := Parse([]byte(`"""Module docs."""

import os.path
import json as j
from ..pkg import thing as other, more

@decorate
class A(Base, metaclass=Meta):
    """Class docs."""

    x = y = 1

    async def method(self, a, b=2, *args, c, d=None, **kw):
        yield a

    @staticmethod
    def helper():
        def inner():
            yield 1
        return inner
`))
	require.NoError(t, err)
	assert.Equal(t, "Module docs.", file.Doc)
	require.Len(t, file.Body, 4)

	imp := file.Body[0].(Import)
	assert.Equal(t, []Alias{{Name: "os.path"}}, imp.Names)
	imp = file.Body[1].(Import)
	assert.Equal(t, "j", imp.Names[0].Bound())

	from := file.Body[2].(ImportFrom)
	assert.Equal(t, 2, from.Level)
	assert.Equal(t, "pkg", from.Module)
	assert.Equal(t, []Alias{{Name: "thing", AsName: "other"}, {Name: "more"}}, from.Names)

	cls := file.Body[3].(ClassDef)
	assert.Equal(t, "A", cls.Name)
	assert.Equal(t, "Class docs.", cls.Doc)
	require.Len(t, cls.Bases, 1)
	assert.Equal(t, "Base", cls.Bases[0].(Name).ID)
	require.Len(t, cls.Decorators, 1)
	assert.Equal(t, "decorate", cls.Decorators[0].(Name).ID)
	require.Len(t, cls.Body, 3)

	assign := cls.Body[0].(Assign)
	require.Len(t, assign.Targets, 2)
	assert.Equal(t, int64(1), assign.Value.(Const).Value)

	method := cls.Body[1].(FunctionDef)
	assert.True(t, method.Async)
	assert.True(t, method.Generator)
	var kinds []ParamKind
	var names []string
	for _, p := range method.Params {
		kinds = append(kinds, p.Kind)
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"self", "a", "b", "args", "c", "d", "kw"}, names)
	assert.Equal(t, []ParamKind{Positional, Positional, Positional, VarArgs, KeywordOnly, KeywordOnly, KwArgs}, kinds)
	assert.Equal(t, int64(2), method.Params[2].Default.(Const).Value)

	helper := cls.Body[2].(FunctionDef)
	assert.False(t, helper.Generator)
	require.Len(t, helper.Decorators, 1)
}

func TestParse_Expressions(t *testing.T) {
	file, err := Parse([]byte(`
a = -3
b = -2.5
c = b"raw"
d = "con" "cat"
e = (1, [2], {3})
f = {"k": None}
g = obj.attr[0]
h = call(1, key=True)
i = lambda x, y=1: x
j = not x
`))
	require.NoError(t, err)
	values := map[string]Expr{}
	for _, s := range file.Body {
		a := s.(Assign)
		values[a.Targets[0].(Name).ID] = a.Value
	}

	assert.Equal(t, int64(-3), values["a"].(Const).Value)
	assert.Equal(t, -2.5, values["b"].(Const).Value)
	assert.Equal(t, []byte("raw"), values["c"].(Const).Value)
	assert.Equal(t, "concat", values["d"].(Const).Value)

	tuple := values["e"].(Collection)
	assert.Equal(t, TupleKind, tuple.Kind)
	require.Len(t, tuple.Elts, 3)
	assert.Equal(t, ListKind, tuple.Elts[1].(Collection).Kind)
	assert.Equal(t, SetKind, tuple.Elts[2].(Collection).Kind)

	dict := values["f"].(Dict)
	assert.Equal(t, "k", dict.Keys[0].(Const).Value)
	assert.Nil(t, dict.Values[0].(Const).Value)

	sub := values["g"].(Subscript)
	assert.Equal(t, "attr", sub.Value.(Attribute).Attr)

	call := values["h"].(Call)
	require.Len(t, call.Args, 1)
	require.Len(t, call.Keywords, 1)
	assert.Equal(t, "key", call.Keywords[0].Name)
	assert.Equal(t, true, call.Keywords[0].Value.(Const).Value)

	lambda := values["i"].(Lambda)
	require.Len(t, lambda.Params, 2)
	assert.Equal(t, "x", lambda.Body.(Name).ID)

	assert.IsType(t, Unknown{}, values["j"])
}

func TestParse_CompoundStatementsAreFlattened(t *testing.T) {
	file, err := Parse([]byte(`
if cond:
    a = 1
else:
    b = 2
try:
    c = 3
except Exception:
    d = 4
`))
	require.NoError(t, err)
	require.Len(t, file.Body, 2)
	first := file.Body[0].(Compound)
	assert.Len(t, first.Body, 2)
	second := file.Body[1].(Compound)
	assert.Len(t, second.Body, 2)
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse([]byte("def broken(:\n    pass\n"))
	var syntaxErr *SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	assert.Equal(t, 1, syntaxErr.Line)
}

func TestFromDocstring(t *testing.T) {
	doc := FromDocstring(`Summary line
    continues here.

    # Heading

    Discussion paragraph.
    `)
	assert.Equal(t, "Summary line continues here.", doc.Summary)
	assert.Equal(t, []string{"Heading", "Discussion paragraph."}, doc.Discussion)
}

func TestCleanDocstring(t *testing.T) {
	assert.Equal(t, "First\n\nindented\n  more", CleanDocstring("First\n\n    indented\n      more\n    "))
	assert.Equal(t, "Only", CleanDocstring("  Only  "))
}
