package backend

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"

	"github.com/giantswarm/mcp-query/internal/tools/output"
)

// Data service endpoints.
const (
	QueryPath   = "/query"
	ExplorePath = "/explore_db"
)

// DataServiceExecutor runs SQL against the HMAC-authenticated data service.
type DataServiceExecutor struct {
	Governor *output.Governor
	Timeout  time.Duration
	Observer Observer

	// Now and NewID override the signer's clock and trace id generator.
	Now   func() time.Time
	NewID func() string

	HTTPClient *http.Client
	Logger     resty.Logger
}

// Execute runs sql against dbname and governs the result.
func (e *DataServiceExecutor) Execute(ctx context.Context, ep Endpoint, dbname, sql string) (string, error) {
	data, err := e.query(ctx, ep, dbname, sql)
	if err != nil {
		return "", err
	}
	return e.govern(ctx, data)
}

// ListCollections returns the database names visible to the endpoint's module.
func (e *DataServiceExecutor) ListCollections(ctx context.Context, ep Endpoint) (string, error) {
	data, err := e.pipeline(ep).Do(ctx, "explore", Request{
		Method: http.MethodGet,
		Path:   ExplorePath,
	})
	if err != nil {
		return "", err
	}
	return e.govern(ctx, data)
}

// ListSubCollections returns the table names of dbname. Rows returned as
// single-column objects are flattened to their value.
func (e *DataServiceExecutor) ListSubCollections(ctx context.Context, ep Endpoint, dbname string) (string, error) {
	data, err := e.query(ctx, ep, dbname, "SHOW TABLES")
	if err != nil {
		return "", err
	}
	return e.govern(ctx, flattenSingleColumn(data))
}

// DescribeSchema returns the CREATE TABLE statement of table. A single-row
// result is unwrapped to the row object.
func (e *DataServiceExecutor) DescribeSchema(ctx context.Context, ep Endpoint, dbname, table string) (string, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return "", Errorf(KindInvalidArgument, "validate", "table name is required")
	}
	if strings.Contains(table, "`") {
		return "", Errorf(KindInvalidArgument, "validate", "table name %q contains a backtick", table)
	}

	data, err := e.query(ctx, ep, dbname, "SHOW CREATE TABLE `"+table+"`")
	if err != nil {
		return "", err
	}
	if rows, ok := data.([]any); ok && len(rows) == 1 {
		data = rows[0]
	}
	return e.govern(ctx, data)
}

func (e *DataServiceExecutor) query(ctx context.Context, ep Endpoint, dbname, sql string) (any, error) {
	dbname = strings.TrimSpace(dbname)
	if dbname == "" {
		return nil, Errorf(KindInvalidArgument, "validate", "database name is required")
	}
	if strings.Contains(dbname, "/") {
		return nil, Errorf(KindInvalidArgument, "validate", "database name %q contains a slash", dbname)
	}

	normalized := NormalizeSQL(sql)
	if normalized == "" {
		return nil, Errorf(KindInvalidArgument, "validate", "sql is required")
	}

	body, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(map[string]string{"sql": normalized})
	if err != nil {
		return nil, NewError(KindInvalidArgument, "encode", err)
	}

	return e.pipeline(ep).Do(ctx, "query", Request{
		Method: http.MethodPost,
		Path:   QueryPath + "/" + dbname,
		Body:   body,
	})
}

func (e *DataServiceExecutor) pipeline(ep Endpoint) *Pipeline {
	return &Pipeline{
		Name:    "data-explorer",
		BaseURL: ep.BaseURL,
		Signer: HMACSigner{
			Credentials: ep.Credentials,
			Now:         e.Now,
			NewID:       e.NewID,
		},
		Envelope:   CodeDataEnvelope{},
		Timeout:    e.Timeout,
		Observer:   e.Observer,
		HTTPClient: e.HTTPClient,
		Logger:     e.Logger,
	}
}

func (e *DataServiceExecutor) govern(ctx context.Context, v any) (string, error) {
	gov := e.Governor
	if gov == nil {
		gov = output.NewGovernor(output.ScopeData, output.DefaultDataMaxTokens)
	}
	return govern(ctx, gov, v)
}

func flattenSingleColumn(v any) any {
	rows, ok := v.([]any)
	if !ok {
		return v
	}
	out := make([]any, len(rows))
	for i, row := range rows {
		obj, isObj := row.(map[string]any)
		if !isObj || len(obj) != 1 {
			out[i] = row
			continue
		}
		for _, value := range obj {
			out[i] = value
		}
	}
	return out
}
