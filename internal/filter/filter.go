// Package filter post-processes query results with jq expressions.
//
// The engine is hidden behind [Compiler] and [Program] so that the query
// executors never depend on a particular jq implementation. [JQ] is the
// default implementation, backed by github.com/itchyny/gojq.
package filter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/itchyny/gojq"
)

// Compiler turns a filter expression into a runnable Program.
type Compiler interface {
	Compile(expr string) (Program, error)
}

// Program is a compiled filter.
type Program interface {
	// Run evaluates the program against v and returns every output in order.
	// A program with no outputs returns an empty, non-nil slice.
	Run(ctx context.Context, v any) ([]any, error)
}

// CompileError reports an expression that could not be parsed or compiled.
type CompileError struct {
	Expr string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %q: %v", e.Expr, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// EvalError reports a failure while running a compiled program.
type EvalError struct {
	Err error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluate: %v", e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

// JQ compiles expressions with gojq.
type JQ struct{}

// Compile implements Compiler.
func (JQ) Compile(expr string) (Program, error) {
	query, err := gojq.Parse(strings.TrimSpace(expr))
	if err != nil {
		return nil, &CompileError{Expr: expr, Err: err}
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, &CompileError{Expr: expr, Err: err}
	}
	return &jqProgram{code: code}, nil
}

type jqProgram struct {
	code *gojq.Code
}

func (p *jqProgram) Run(ctx context.Context, v any) ([]any, error) {
	iter := p.code.RunWithContext(ctx, Normalize(v))
	out := make([]any, 0)
	for {
		item, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := item.(error); isErr {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				break
			}
			return nil, &EvalError{Err: err}
		}
		out = append(out, finite(item))
	}
	return out, nil
}

// Normalize converts decoded JSON into the value shapes gojq accepts:
// json.Number becomes int, *big.Int or float64, and nested maps and slices
// are converted recursively.
func Normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		return normalizeNumber(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = Normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Normalize(e)
		}
		return out
	default:
		return v
	}
}

func normalizeNumber(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		if int64(int(i)) == i {
			return int(i)
		}
		return big.NewInt(i)
	}
	if !strings.ContainsAny(n.String(), ".eE") {
		if bi, ok := new(big.Int).SetString(n.String(), 10); ok {
			return bi
		}
	}
	// Out of range literals such as 1e400 parse to ±Inf (or 0 on underflow)
	// and stay numbers, as in jq.
	if f, err := n.Float64(); err == nil || errors.Is(err, strconv.ErrRange) {
		return f
	}
	return n.String()
}

// finite replaces the float values JSON cannot represent the way gojq's own
// encoder does: ±Inf becomes ±math.MaxFloat64 and NaN becomes null.
func finite(v any) any {
	switch x := v.(type) {
	case float64:
		switch {
		case math.IsNaN(x):
			return nil
		case math.IsInf(x, 1):
			return math.MaxFloat64
		case math.IsInf(x, -1):
			return -math.MaxFloat64
		}
		return x
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = finite(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = finite(e)
		}
		return out
	default:
		return v
	}
}
