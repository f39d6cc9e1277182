package modules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"objmodel/inference"
	"objmodel/logging"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func sampleWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		DefinitionFile: `
name: sample
sources: [src]
properties:
  exact: [sample.util.Field]
  suffixes: [memoized]
max_depth: 50
logging:
  level: debug
  format: json
`,
		"src/pkg/__init__.py": `
from .lib import Base
`,
		"src/pkg/lib.py": `
class Base:
    value = 1
`,
		"src/app.py": `
from pkg import Base
from pkg import lib

class App(Base):
    @memoized
    def cached(self):
        return "cached"
`,
		"src/.hidden/skipped.py": "x = 1\n",
		"src/__pycache__/app.py": "x = 1\n",
		"src/notes.txt":          "not python\n",
	})
	return dir
}

func TestLoadWorkspaceDefinition(t *testing.T) {
	def, err := LoadWorkspaceDefinitionFrom(sampleWorkspace(t))
	require.NoError(t, err)

	assert.Equal(t, "sample", def.Name)
	assert.Equal(t, []string{"src"}, def.Sources)
	assert.Equal(t, []string{"sample.util.Field"}, def.Properties.Exact)
	assert.Equal(t, []string{"memoized"}, def.Properties.Suffixes)
	assert.Equal(t, 50, def.MaxDepth)

	cfg, err := def.LoggerConfig()
	require.NoError(t, err)
	assert.Equal(t, logging.LogLevelDebug, cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "sample", cfg.Component)
}

func TestLoadWorkspaceDefinition_Defaults(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{DefinitionFile: "name: bare\n"})

	def, err := LoadWorkspaceDefinitionFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"."}, def.Sources)

	cfg, err := def.LoggerConfig()
	require.NoError(t, err)
	assert.Equal(t, logging.LogLevelInfo, cfg.Level)
	assert.Equal(t, "text", cfg.Format)
}

func TestLoadWorkspaceDefinition_Errors(t *testing.T) {
	_, err := LoadWorkspaceDefinitionFrom(t.TempDir())
	assert.ErrorContains(t, err, "failed to load objmodel.yaml")

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{DefinitionFile: "name: [unterminated\n"})
	_, err = LoadWorkspaceDefinitionFrom(dir)
	assert.ErrorContains(t, err, "failed to parse objmodel.yaml")

	dir = t.TempDir()
	writeFiles(t, dir, map[string]string{DefinitionFile: "max_depth: -1\n"})
	_, err = LoadWorkspaceDefinitionFrom(dir)
	assert.ErrorContains(t, err, "max_depth")

	dir = t.TempDir()
	writeFiles(t, dir, map[string]string{DefinitionFile: "logging:\n  level: loud\n"})
	def, err := LoadWorkspaceDefinitionFrom(dir)
	require.NoError(t, err)
	_, err = def.LoggerConfig()
	assert.Error(t, err)
}

func TestModuleName(t *testing.T) {
	for rel, want := range map[string]struct {
		name string
		pkg  bool
	}{
		"app.py":                   {"app", false},
		"pkg/__init__.py":          {"pkg", true},
		"pkg/sub/mod.py":           {"pkg.sub.mod", false},
		filepath.Join("a", "b.py"): {"a.b", false},
	} {
		name, pkg := moduleName(rel)
		assert.Equal(t, want.name, name, rel)
		assert.Equal(t, want.pkg, pkg, rel)
	}
}

func TestWorkspace_Modules(t *testing.T) {
	w, err := LoadWorkspaceFrom(sampleWorkspace(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"app", "pkg", "pkg.lib"}, w.ModuleNames())
	assert.Equal(t, 50, w.Manager.Settings().MaxDepth)

	pkg, err := w.ModuleFor("pkg")
	require.NoError(t, err)
	assert.True(t, pkg.Package)
	again, err := w.ModuleFor("pkg")
	require.NoError(t, err)
	assert.Same(t, pkg, again)

	lib, err := w.ModuleFor("pkg.lib")
	require.NoError(t, err)
	assert.False(t, lib.Package)

	_, err = w.ModuleFor("missing")
	assert.ErrorContains(t, err, "not part of workspace sample")
}

func TestWorkspace_ImportsAcrossModules(t *testing.T) {
	w, err := LoadWorkspaceFrom(sampleWorkspace(t))
	require.NoError(t, err)

	app, err := w.ModuleFor("app")
	require.NoError(t, err)
	lib, err := w.ModuleFor("pkg.lib")
	require.NoError(t, err)

	values, err := inference.Collect(app.Igetattr("lib", w.NewContext()))
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Same(t, lib, values[0])

	decls := app.Locals()["App"]
	require.Len(t, decls, 1)
	cls := decls[0].(*inference.ClassDef)

	mro, err := cls.MRO(w.NewContext())
	require.NoError(t, err)
	require.Len(t, mro, 3)
	assert.Equal(t, "pkg.lib.Base", mro[1].Qname())

	inst := inference.NewInstance(cls)
	values, err = inference.Collect(inst.Igetattr("value", w.NewContext()))
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, int64(1), values[0].(*inference.Const).Value)

	// memoized comes from the workspace property suffixes.
	values, err = inference.Collect(inst.Igetattr("cached", w.NewContext()))
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "cached", values[0].(*inference.Const).Value)
}

func TestWorkspace_OptionsOverrideDefinition(t *testing.T) {
	w, err := LoadWorkspaceFrom(sampleWorkspace(t), inference.WithMaxDepth(7))
	require.NoError(t, err)
	assert.Equal(t, 7, w.Manager.Settings().MaxDepth)
	assert.Same(t, w, w.Manager.Settings().Imports)
}

func TestWorkspace_SyntaxError(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		DefinitionFile: "name: broken\n",
		"bad.py":       "def broken(:\n",
	})
	w, err := LoadWorkspaceFrom(dir)
	require.NoError(t, err)

	_, err = w.ModuleFor("bad")
	assert.ErrorContains(t, err, "failed to parse module")
}
