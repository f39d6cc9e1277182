package modules

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"objmodel/ast"
	"objmodel/inference"
	"objmodel/logging"

	"gopkg.in/yaml.v3"
)

const DefinitionFile = "objmodel.yaml"

// Workspace is a set of Python source trees whose modules can import each
// other. Modules are parsed the first time they are asked for.
type Workspace struct {
	Dir        string
	Definition *WorkspaceDefinition
	Manager    *inference.Manager

	files    map[string]string
	packages map[string]bool

	mu     sync.Mutex
	loaded map[string]*inference.Module
}

type WorkspaceDefinition struct {
	Name       string               `yaml:"name"`
	Sources    []string             `yaml:"sources"`
	Properties PropertiesDefinition `yaml:"properties"`
	MaxDepth   int                  `yaml:"max_depth"`
	Logging    LoggingDefinition    `yaml:"logging"`
}

type PropertiesDefinition struct {
	Exact    []string `yaml:"exact"`
	Suffixes []string `yaml:"suffixes"`
}

type LoggingDefinition struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func LoadWorkspaceDefinitionFrom(dir string) (*WorkspaceDefinition, error) {
	file := path.Join(dir, DefinitionFile)
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", DefinitionFile, err)
	}

	d := WorkspaceDefinition{}

	err = yaml.Unmarshal(data, &d)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", DefinitionFile, err)
	}
	if len(d.Sources) == 0 {
		d.Sources = []string{"."}
	}
	if d.MaxDepth < 0 {
		return nil, fmt.Errorf("failed to parse %s: max_depth must not be negative", DefinitionFile)
	}

	return &d, nil
}

// LoggerConfig turns the logging section into a logger configuration.
func (d *WorkspaceDefinition) LoggerConfig() (*logging.LoggerConfig, error) {
	cfg := logging.DefaultLoggerConfig()
	level, err := logging.ParseLevel(d.Logging.Level)
	if err != nil {
		return nil, err
	}
	cfg.Level = level
	if d.Logging.Format != "" {
		cfg.Format = d.Logging.Format
	}
	cfg.Component = d.Name
	return cfg, nil
}

// Options are the inference settings the definition asks for.
func (d *WorkspaceDefinition) Options() []inference.Option {
	opts := []inference.Option{
		inference.WithProperties(inference.NewPropertyTable(d.Properties.Exact, d.Properties.Suffixes)),
	}
	if d.MaxDepth > 0 {
		opts = append(opts, inference.WithMaxDepth(d.MaxDepth))
	}
	return opts
}

// LoadWorkspaceFrom reads the definition in dir and indexes its sources.
// opts are applied after the definition's own settings.
func LoadWorkspaceFrom(dir string, opts ...inference.Option) (*Workspace, error) {
	def, err := LoadWorkspaceDefinitionFrom(dir)
	if err != nil {
		return nil, err
	}
	return NewWorkspace(dir, def, opts...)
}

// NewWorkspace indexes the sources def names, relative to dir.
func NewWorkspace(dir string, def *WorkspaceDefinition, opts ...inference.Option) (*Workspace, error) {
	w := &Workspace{
		Dir:        dir,
		Definition: def,
		files:      map[string]string{},
		packages:   map[string]bool{},
		loaded:     map[string]*inference.Module{},
	}

	all := append(def.Options(), opts...)
	all = append(all, inference.WithImportResolver(w))
	w.Manager = inference.NewManager(all...)

	for _, source := range def.Sources {
		if err := w.index(filepath.Join(dir, source)); err != nil {
			return nil, err
		}
	}

	return w, nil
}

func (w *Workspace) index(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to index %s: %w", root, err)
		}
		if d.IsDir() {
			if p != root && (strings.HasPrefix(d.Name(), ".") || d.Name() == "__pycache__") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(p) != ".py" {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		name, pkg := moduleName(rel)
		if name == "" {
			return nil
		}
		if prev, ok := w.files[name]; ok {
			w.Manager.Settings().Logger.Warn("module defined twice", "module", name, "kept", prev, "ignored", p)
			return nil
		}
		w.files[name] = p
		w.packages[name] = pkg
		return nil
	})
}

// moduleName maps a path relative to a source root to a dotted module name.
// A package's __init__.py takes the name of its directory.
func moduleName(rel string) (string, bool) {
	parts := strings.Split(filepath.ToSlash(strings.TrimSuffix(rel, ".py")), "/")
	pkg := false
	if parts[len(parts)-1] == "__init__" {
		parts = parts[:len(parts)-1]
		pkg = true
	}
	return strings.Join(parts, "."), pkg
}

// ModuleNames lists every module in the workspace, sorted.
func (w *Workspace) ModuleNames() []string {
	names := make([]string, 0, len(w.files))
	for name := range w.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ModuleFor parses and builds the named module on first use.
func (w *Workspace) ModuleFor(name string) (*inference.Module, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if m, ok := w.loaded[name]; ok {
		return m, nil
	}
	file, ok := w.files[name]
	if !ok {
		return nil, fmt.Errorf("module %s is not part of workspace %s", name, w.Definition.Name)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load module at %s: %w", file, err)
	}
	parsed, err := ast.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse module at %s: %w", file, err)
	}
	m, err := w.Manager.Module(parsed, name)
	if err != nil {
		return nil, err
	}
	m.Package = w.packages[name]

	w.loaded[name] = m
	return m, nil
}

// NewContext starts an inference request with the workspace settings.
func (w *Workspace) NewContext() *inference.Context {
	return w.Manager.NewContext()
}
