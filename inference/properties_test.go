package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPropertyTable_Matches(t *testing.T) {
	table := DefaultProperties()

	assert.True(t, table.Matches([]string{"builtins.property"}))
	assert.True(t, table.Matches([]string{"abc.abstractproperty"}))
	assert.True(t, table.Matches([]string{"functools.cached_property"}))
	assert.True(t, table.Matches([]string{"pyramid.decorator.reify"}))
	assert.True(t, table.Matches([]string{"lazy"}))
	assert.True(t, table.Matches([]string{"test.tracer", "cachedproperty"}))

	assert.False(t, table.Matches(nil))
	assert.False(t, table.Matches([]string{"property"}))
	assert.False(t, table.Matches([]string{"mylib.property"}))
	assert.False(t, table.Matches([]string{"builtins.staticmethod"}))
}

func TestPropertyTable_Extended(t *testing.T) {
	table := NewPropertyTable([]string{"mylib.Field"}, []string{"memoized"})

	assert.True(t, table.Matches([]string{"mylib.Field"}))
	assert.False(t, table.Matches([]string{"other.Field"}))
	assert.True(t, table.Matches([]string{"tools.memoized"}))
	assert.True(t, table.Matches([]string{"builtins.property"}))

	// Extending one table leaves the defaults alone.
	assert.False(t, DefaultProperties().Matches([]string{"memoized"}))
}
