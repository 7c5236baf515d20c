package backend

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/giantswarm/mcp-query/internal/filter"
	"github.com/giantswarm/mcp-query/internal/tools/output"
)

// ConsoleProxyPath is the Kibana endpoint that forwards requests to
// Elasticsearch.
const ConsoleProxyPath = "/api/console/proxy"

// SearchQuery is one search proxy call.
type SearchQuery struct {
	BaseURL  string
	Username string
	Password string

	// Path is the Elasticsearch path, for example "_cat/indices" or
	// "logs-*/_search".
	Path string

	// Filter is an optional jq expression applied to the decoded result.
	Filter string

	// Body is the JSON request body. Empty means "{}".
	Body string
}

// SearchExecutor runs queries through a Kibana console proxy.
type SearchExecutor struct {
	Governor *output.Governor
	Compiler filter.Compiler
	Timeout  time.Duration
	Observer Observer

	// HTTPClient overrides the HTTP transport, mainly for tests.
	HTTPClient *http.Client
	Logger     resty.Logger
}

// Execute verifies the credentials, forwards the query, applies the optional
// filter and governs the result. The returned string is the inline result or
// a JSON spill descriptor.
func (e *SearchExecutor) Execute(ctx context.Context, q SearchQuery) (string, error) {
	body := strings.TrimSpace(q.Body)
	if body == "" || !gjson.Valid(body) {
		return "", Errorf(KindInvalidArgument, "validate", "query is not valid JSON")
	}
	if strings.TrimSpace(q.BaseURL) == "" {
		return "", Errorf(KindInvalidArgument, "validate", "base_url is required")
	}
	if strings.TrimSpace(q.Path) == "" {
		return "", Errorf(KindInvalidArgument, "validate", "path is required")
	}

	pipeline := &Pipeline{
		Name:    "kibana",
		BaseURL: q.BaseURL,
		Signer: BasicSession{
			Username: q.Username,
			Password: q.Password,
			Observer: e.Observer,
		},
		Envelope:   RawEnvelope{},
		Timeout:    e.Timeout,
		Observer:   e.Observer,
		HTTPClient: e.HTTPClient,
		Logger:     e.Logger,
	}

	req := Request{
		Method:  http.MethodPost,
		Path:    ConsoleProxyPath,
		Query:   map[string]string{"method": http.MethodGet, "path": q.Path},
		Headers: map[string]string{"kbn-xsrf": "true"},
	}
	if !IsListingPath(q.Path) {
		req.Headers["Content-Type"] = "application/json"
		req.Body = []byte(body)
	}

	result, err := pipeline.Do(ctx, "query", req)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(q.Filter) != "" {
		result, err = e.applyFilter(ctx, q.Filter, result)
		if err != nil {
			return "", err
		}
	}

	return govern(ctx, e.Governor, result)
}

func (e *SearchExecutor) applyFilter(ctx context.Context, expr string, v any) (any, error) {
	compiler := e.Compiler
	if compiler == nil {
		compiler = filter.JQ{}
	}
	prog, err := compiler.Compile(expr)
	if err != nil {
		return nil, NewError(KindInvalidFilter, "compile", err)
	}
	out, err := prog.Run(ctx, v)
	if err != nil {
		return nil, NewError(KindInvalidFilter, "filter", err)
	}
	return out, nil
}

// IsListingPath reports whether path is a _cat listing endpoint. Listing
// requests are sent without a body.
func IsListingPath(path string) bool {
	return strings.HasPrefix(path, "_cat") || strings.HasPrefix(path, "/_cat")
}

func govern(ctx context.Context, gov *output.Governor, v any) (string, error) {
	if gov == nil {
		gov = output.NewGovernor(output.ScopeSearch, output.DefaultSearchMaxTokens)
	}
	resp, err := gov.Govern(ctx, v)
	if err != nil {
		if errors.Is(err, output.ErrSpill) {
			return "", NewError(KindSpillFailed, "spill", err)
		}
		return "", NewError(KindRemoteQueryError, "serialize", err)
	}
	return resp.String(), nil
}
