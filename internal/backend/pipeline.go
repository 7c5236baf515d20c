package backend

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout is the per-request HTTP timeout used when none is configured.
const DefaultTimeout = 60 * time.Second

// Request is a backend call before signing. A nil Body means no body is sent
// at all, which is distinct from an empty body.
type Request struct {
	Method  string
	Path    string
	Query   map[string]string
	Headers map[string]string
	Body    []byte
}

// HasBody reports whether the request carries a body.
func (r *Request) HasBody() bool {
	return r.Body != nil
}

// SetHeader sets a header, allocating the header map on first use.
func (r *Request) SetHeader(key, value string) {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
}

// Signer authenticates a call. It may configure the client, add headers to
// the request, or issue a verification call of its own.
type Signer interface {
	Sign(ctx context.Context, client *resty.Client, req *Request) error
}

// Envelope interprets a successful HTTP response body.
type Envelope interface {
	Decode(body []byte) (any, error)
}

// Observer receives one notification per outbound backend call.
type Observer interface {
	RecordBackendRequest(ctx context.Context, backend, operation string, statusCode int, duration time.Duration)
}

// Pipeline signs, sends and decodes one backend call. The search proxy and the
// data service are both configurations of a Pipeline.
type Pipeline struct {
	// Name labels metrics, for example "kibana" or "data-explorer".
	Name string

	BaseURL  string
	Signer   Signer
	Envelope Envelope
	Timeout  time.Duration
	Observer Observer

	// HTTPClient overrides the transport used by the resty client.
	HTTPClient *http.Client

	// Logger receives HTTP client diagnostics.
	Logger resty.Logger
}

// Do runs the pipeline for req. Signing failures, transport failures and
// envelope failures are returned as *Error values.
func (p *Pipeline) Do(ctx context.Context, operation string, req Request) (any, error) {
	client := p.newClient()

	if p.Signer != nil {
		if err := p.Signer.Sign(ctx, client, &req); err != nil {
			return nil, err
		}
	}

	body, err := p.send(ctx, client, operation, req)
	if err != nil {
		return nil, err
	}

	if p.Envelope == nil {
		return RawEnvelope{}.Decode(body)
	}
	return p.Envelope.Decode(body)
}

func (p *Pipeline) newClient() *resty.Client {
	var client *resty.Client
	if p.HTTPClient != nil {
		client = resty.NewWithClient(p.HTTPClient)
	} else {
		client = resty.New()
	}

	if p.Logger != nil {
		client.SetLogger(p.Logger)
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return client.
		SetTimeout(timeout).
		SetBaseURL(TrimBaseURL(p.BaseURL)).
		SetDisableWarn(true)
}

func (p *Pipeline) send(ctx context.Context, client *resty.Client, operation string, req Request) ([]byte, error) {
	r := client.R().SetContext(ctx)
	if len(req.Headers) > 0 {
		r.SetHeaders(req.Headers)
	}
	if len(req.Query) > 0 {
		r.SetQueryParams(req.Query)
	}
	if req.HasBody() {
		r.SetBody(req.Body)
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	start := time.Now()
	resp, err := r.Execute(method, req.Path)
	if err != nil {
		p.observe(ctx, operation, 0, time.Since(start))
		return nil, transportFailure(operation, err)
	}
	p.observe(ctx, operation, resp.StatusCode(), time.Since(start))

	if !IsSuccess(resp.StatusCode()) {
		return nil, &Error{
			Kind:   KindTransportError,
			Stage:  operation,
			Status: resp.StatusCode(),
			Body:   resp.String(),
		}
	}
	return resp.Body(), nil
}

func (p *Pipeline) observe(ctx context.Context, operation string, status int, d time.Duration) {
	if p.Observer != nil {
		p.Observer.RecordBackendRequest(ctx, p.Name, operation, status, d)
	}
}

// IsSuccess reports whether status is a 2xx code.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}

// TrimBaseURL removes trailing slashes so paths can be appended directly.
func TrimBaseURL(base string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/")
}

func transportFailure(stage string, err error) *Error {
	e := NewError(KindTransportError, stage, err)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		e.Message = "request timed out"
	case errors.Is(err, context.Canceled):
		e.Message = "request cancelled"
	}
	return e
}
