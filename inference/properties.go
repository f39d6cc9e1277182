package inference

import "strings"

// PropertyTable decides whether a decorated function behaves like a
// property. Exact holds qualified decorator names; Suffixes holds bare
// names matched against the last dotted component of any decorator, a
// heuristic for property-like decorators that projects define themselves.
type PropertyTable struct {
	Exact    map[string]struct{}
	Suffixes map[string]struct{}
}

var (
	defaultExactProperties = []string{"builtins.property", "abc.abstractproperty"}

	defaultSuffixProperties = []string{
		"cached_property", "cachedproperty",
		"lazyproperty", "lazy_property", "reify",
		"lazyattribute", "lazy_attribute",
		"LazyProperty", "lazy",
	}
)

func DefaultProperties() *PropertyTable {
	return NewPropertyTable(nil, nil)
}

// NewPropertyTable returns the default table extended with extra names.
func NewPropertyTable(exact, suffixes []string) *PropertyTable {
	t := &PropertyTable{Exact: map[string]struct{}{}, Suffixes: map[string]struct{}{}}
	for _, name := range append(append([]string{}, defaultExactProperties...), exact...) {
		t.Exact[name] = struct{}{}
	}
	for _, name := range append(append([]string{}, defaultSuffixProperties...), suffixes...) {
		t.Suffixes[name] = struct{}{}
	}
	return t
}

func (t *PropertyTable) Matches(decoratorNames []string) bool {
	for _, name := range decoratorNames {
		if _, ok := t.Exact[name]; ok {
			return true
		}
	}
	for _, name := range decoratorNames {
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			name = name[i+1:]
		}
		if _, ok := t.Suffixes[name]; ok {
			return true
		}
	}
	return false
}

// IsProperty reports whether fn is decorated with a property-like marker.
func IsProperty(fn Function, ctx *Context) bool {
	ctx = ctx.orNew()
	return ctx.Properties().Matches(fn.DecoratorNames(ctx))
}
