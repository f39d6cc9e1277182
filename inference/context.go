package inference

import (
	"objmodel/logging"
)

// DefaultMaxDepth bounds how many guarded inference steps may nest within
// one request.
const DefaultMaxDepth = 100

// CallContext holds the arguments of the call being inferred. Arguments are
// inferred in the caller's context, not the callee's.
type CallContext struct {
	Args     []Node
	Keywords map[string]Node

	caller *Context
}

func NewCallContext(caller *Context, args []Node, keywords map[string]Node) *CallContext {
	return &CallContext{Args: args, Keywords: keywords, caller: caller}
}

type visitKey struct {
	owner Node
	name  string
}

// request is the state shared by a context and all of its clones for the
// lifetime of one top-level inference request.
type request struct {
	settings *Settings
	visited  map[visitKey]struct{}
	active   map[Node]struct{}
	depth    int
}

// Context threads per-request state through every resolution step.
type Context struct {
	CallContext *CallContext
	BoundNode   Value

	// callee is the function whose body is being inferred; call arguments
	// and the bound node bind its parameters only.
	callee Function
	req    *request
}

// Settings are the knobs a request is created with.
type Settings struct {
	Logger     logging.Logger
	Properties *PropertyTable
	Imports    ImportResolver
	MaxDepth   int
}

type Option func(*Settings)

func WithLogger(l logging.Logger) Option {
	return func(s *Settings) { s.Logger = l }
}

func WithProperties(p *PropertyTable) Option {
	return func(s *Settings) { s.Properties = p }
}

func WithImportResolver(r ImportResolver) Option {
	return func(s *Settings) { s.Imports = r }
}

func WithMaxDepth(n int) Option {
	return func(s *Settings) { s.MaxDepth = n }
}

func NewSettings(opts ...Option) *Settings {
	s := &Settings{
		Logger:     logging.NoOpLogger{},
		Properties: DefaultProperties(),
		MaxDepth:   DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func NewContext(opts ...Option) *Context {
	return NewContextWith(NewSettings(opts...))
}

func NewContextWith(settings *Settings) *Context {
	return &Context{req: &request{
		settings: settings,
		visited:  map[visitKey]struct{}{},
		active:   map[Node]struct{}{},
	}}
}

// orNew lets every entry point accept a nil context.
func (c *Context) orNew() *Context {
	if c == nil {
		return NewContext()
	}
	return c
}

// Clone copies the call context and bound node. The visited set is shared:
// entries pushed through any clone stay visible for the whole request.
func (c *Context) Clone() *Context {
	c = c.orNew()
	return &Context{CallContext: c.CallContext, BoundNode: c.BoundNode, callee: c.callee, req: c.req}
}

// Push records that name is being resolved on owner and reports whether it
// already was. Entries are never popped.
func (c *Context) Push(owner Node, name string) bool {
	key := visitKey{owner, name}
	if _, ok := c.req.visited[key]; ok {
		c.Logger().Debug("recursion guard stopped lookup", "owner", describe(owner), "attribute", name)
		return true
	}
	c.req.visited[key] = struct{}{}
	return false
}

func (c *Context) Settings() *Settings { return c.req.settings }

func (c *Context) Logger() logging.Logger { return c.req.settings.Logger }

func (c *Context) Properties() *PropertyTable { return c.req.settings.Properties }

// enter marks node as being inferred. It fails when node is already on the
// active path or the depth limit is reached; leave must follow a successful
// enter.
func (c *Context) enter(node Node) bool {
	if _, ok := c.req.active[node]; ok {
		return false
	}
	if max := c.req.settings.MaxDepth; max > 0 && c.req.depth >= max {
		c.Logger().Debug("inference depth limit reached", "node", describe(node), "limit", max)
		return false
	}
	c.req.active[node] = struct{}{}
	c.req.depth++
	return true
}

func (c *Context) leave(node Node) {
	delete(c.req.active, node)
	c.req.depth--
}

// guarded runs infer unless node is already being inferred further up the
// path, in which case the branch yields nothing.
func guarded(node Node, ctx *Context, infer func(*Context) Results) Results {
	return func(yield func(Value, error) bool) {
		ctx = ctx.orNew()
		if !ctx.enter(node) {
			return
		}
		defer ctx.leave(node)
		for v, err := range infer(ctx) {
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}
