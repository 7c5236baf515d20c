package instrumentation

import (
	"context"
	"log/slog"
	"time"
)

// ToolInvocation is the audit record of one MCP tool call.
type ToolInvocation struct {
	Tool      string
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string
	ErrorKind string

	Environment string
	Backend     string
	Database    string

	ResultKind string
	Tokens     int

	TraceID string
	SpanID  string
}

// NewToolInvocation starts an audit record for tool.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// WithEnvironment records the environment the call targets.
func (ti *ToolInvocation) WithEnvironment(name string) *ToolInvocation {
	ti.Environment = name
	return ti
}

// WithBackend records the backend family.
func (ti *ToolInvocation) WithBackend(backend string) *ToolInvocation {
	ti.Backend = backend
	return ti
}

// WithDatabase records the database name.
func (ti *ToolInvocation) WithDatabase(dbname string) *ToolInvocation {
	ti.Database = dbname
	return ti
}

// WithResult records how the result was materialized.
func (ti *ToolInvocation) WithResult(kind string, tokens int) *ToolInvocation {
	ti.ResultKind = kind
	ti.Tokens = tokens
	return ti
}

// WithSpanContext copies the trace and span ids from ctx.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	ti.TraceID = GetTraceID(ctx)
	ti.SpanID = GetSpanID(ctx)
	return ti
}

// CompleteSuccess marks the invocation successful.
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// CompleteWithError marks the invocation failed with err.
func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.Complete(false, err)
}

// Complete sets the outcome and duration.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// Status returns the metric status label.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// EnvironmentType returns the classified environment.
func (ti *ToolInvocation) EnvironmentType() string {
	return ClassifyEnvironment(ti.Environment)
}

// LogAttrs returns low-cardinality attributes for operational logs.
func (ti *ToolInvocation) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.String("environment_type", ti.EnvironmentType()),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}
	if ti.Backend != "" {
		attrs = append(attrs, slog.String("backend", ti.Backend))
	}
	if ti.ResultKind != "" {
		attrs = append(attrs, slog.String("result_kind", ti.ResultKind))
	}
	if ti.ErrorKind != "" {
		attrs = append(attrs, slog.String("error_kind", ti.ErrorKind))
	}
	return attrs
}

// LogAuditAttrs returns the full audit attributes, including names that are
// kept out of metrics.
func (ti *ToolInvocation) LogAuditAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.Time("start_time", ti.StartTime),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}
	if ti.Environment != "" {
		attrs = append(attrs, slog.String("environment", ti.Environment))
	}
	if ti.Backend != "" {
		attrs = append(attrs, slog.String("backend", ti.Backend))
	}
	if ti.Database != "" {
		attrs = append(attrs, slog.String("database", ti.Database))
	}
	if ti.ResultKind != "" {
		attrs = append(attrs,
			slog.String("result_kind", ti.ResultKind),
			slog.Int("tokens", ti.Tokens),
		)
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}
	if ti.ErrorKind != "" {
		attrs = append(attrs, slog.String("error_kind", ti.ErrorKind))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	return attrs
}

// AuditLogger writes tool invocation audit records.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates an AuditLogger. A nil logger means slog.Default().
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{logger: logger}
}

// LogToolInvocation writes ti at info level on success and warn level on
// failure.
func (a *AuditLogger) LogToolInvocation(ctx context.Context, ti *ToolInvocation) {
	if a == nil || ti == nil {
		return
	}
	level := slog.LevelInfo
	if !ti.Success {
		level = slog.LevelWarn
	}
	a.logger.LogAttrs(ctx, level, "tool invocation", ti.LogAuditAttrs()...)
}

type invocationKey struct{}

// ContextWithInvocation returns a context carrying ti. Components further
// down the call, such as the response governor, annotate it in place.
func ContextWithInvocation(ctx context.Context, ti *ToolInvocation) context.Context {
	return context.WithValue(ctx, invocationKey{}, ti)
}

// InvocationFromContext returns the invocation stored by
// ContextWithInvocation, or nil.
func InvocationFromContext(ctx context.Context) *ToolInvocation {
	if ctx == nil {
		return nil
	}
	ti, _ := ctx.Value(invocationKey{}).(*ToolInvocation)
	return ti
}

// TraceIDFromContext returns the trace id of the span in ctx, or "".
func TraceIDFromContext(ctx context.Context) string {
	return GetTraceID(ctx)
}
