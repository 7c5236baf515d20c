package output

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
)

// ErrSpill is wrapped by every error caused by writing a spill file.
var ErrSpill = errors.New("write spill file")

// serializer produces compact JSON with sorted map keys. HTML characters and
// non-ASCII text are written as-is.
var serializer = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// spillPattern is the os.CreateTemp pattern for spill files.
const spillPattern = "mcp-query-*.json"

// Scope names the backend a Governor serves. It labels metrics only.
type Scope string

const (
	ScopeSearch Scope = "search"
	ScopeData   Scope = "data"
)

// Kind is the materialization chosen for a response.
type Kind string

const (
	KindInline  Kind = "inline"
	KindSpilled Kind = "spilled"
)

// Response is a governed result.
type Response struct {
	Kind Kind

	// Payload is the serialized result. Set only for inline responses.
	Payload string

	// Path, Reason and SizeBytes describe a spilled response.
	Path      string
	Reason    string
	SizeBytes int

	// Tokens is the estimated token count of the serialized result.
	Tokens int
}

// SpillDescriptor is the JSON object returned to the caller in place of a
// spilled result.
type SpillDescriptor struct {
	Type      string `json:"type"`
	Path      string `json:"path"`
	Reason    string `json:"reason"`
	SizeBytes int    `json:"size_bytes"`
}

// Spilled reports whether the result was written to a file.
func (r *Response) Spilled() bool {
	return r.Kind == KindSpilled
}

// Descriptor returns the spill descriptor for a spilled response.
func (r *Response) Descriptor() SpillDescriptor {
	return SpillDescriptor{
		Type:      "file",
		Path:      r.Path,
		Reason:    r.Reason,
		SizeBytes: r.SizeBytes,
	}
}

// String renders the response as the text handed back to the caller: the
// payload itself, or the JSON spill descriptor.
func (r *Response) String() string {
	if r.Kind != KindSpilled {
		return r.Payload
	}
	b, err := serializer.Marshal(r.Descriptor())
	if err != nil {
		// A descriptor holds only strings and an int.
		return fmt.Sprintf(`{"type":"file","path":%q,"reason":%q,"size_bytes":%d}`, r.Path, r.Reason, r.SizeBytes)
	}
	return string(b)
}

// Observer receives one notification per governed response.
type Observer interface {
	RecordGoverned(ctx context.Context, scope string, tokens int, spilled bool)
}

// Governor decides between inline and spilled responses for one budget.
type Governor struct {
	scope    Scope
	budget   int
	counter  TokenCounter
	spillDir string
	observer Observer
}

// GovernorOption configures a Governor.
type GovernorOption func(*Governor)

// WithSpillDir sets the directory spill files are created in.
func WithSpillDir(dir string) GovernorOption {
	return func(g *Governor) {
		g.spillDir = dir
	}
}

// WithTokenCounter replaces the default token counter.
func WithTokenCounter(c TokenCounter) GovernorOption {
	return func(g *Governor) {
		if c != nil {
			g.counter = c
		}
	}
}

// WithObserver registers an observer for governed responses.
func WithObserver(o Observer) GovernorOption {
	return func(g *Governor) {
		g.observer = o
	}
}

// NewGovernor creates a Governor with the given inline token budget.
func NewGovernor(scope Scope, budget int, opts ...GovernorOption) *Governor {
	g := &Governor{
		scope:   scope,
		budget:  budget,
		counter: DefaultTokenCounter,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Budget returns the inline token budget.
func (g *Governor) Budget() int {
	return g.budget
}

// Scope returns the scope label of the governor.
func (g *Governor) Scope() Scope {
	return g.scope
}

// Govern serializes v and returns it inline when its estimated token count is
// within budget. Otherwise the serialized text is written to a new spill file.
// Errors wrapping ErrSpill mean the spill file could not be written.
func (g *Governor) Govern(ctx context.Context, v any) (*Response, error) {
	serialized, err := serializer.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("serialize result: %w", err)
	}

	tokens := g.counter.Count(serialized)
	if tokens <= g.budget {
		g.observe(ctx, tokens, false)
		return &Response{
			Kind:    KindInline,
			Payload: string(serialized),
			Tokens:  tokens,
		}, nil
	}

	path, err := g.spill(serialized)
	if err != nil {
		return nil, err
	}

	g.observe(ctx, tokens, true)
	return &Response{
		Kind:      KindSpilled,
		Path:      path,
		Reason:    fmt.Sprintf("exceeds budget: %d > %d", tokens, g.budget),
		SizeBytes: len(serialized),
		Tokens:    tokens,
	}, nil
}

func (g *Governor) spill(data []byte) (string, error) {
	f, err := os.CreateTemp(g.spillDir, spillPattern)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSpill, err)
	}

	name := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("%w: %s: %w", ErrSpill, name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("%w: %s: %w", ErrSpill, name, err)
	}

	if abs, err := filepath.Abs(name); err == nil {
		name = abs
	}
	return name, nil
}

func (g *Governor) observe(ctx context.Context, tokens int, spilled bool) {
	if g.observer != nil {
		g.observer.RecordGoverned(ctx, string(g.scope), tokens, spilled)
	}
}
