package output

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	scopes  []string
	tokens  []int
	spilled []bool
}

func (r *recordingObserver) RecordGoverned(_ context.Context, scope string, tokens int, spilled bool) {
	r.scopes = append(r.scopes, scope)
	r.tokens = append(r.tokens, tokens)
	r.spilled = append(r.spilled, spilled)
}

func TestGovern_Serialization(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{
			name:  "array of objects is compact",
			value: []any{map[string]any{"index": "a"}, map[string]any{"index": "b"}},
			want:  `[{"index":"a"},{"index":"b"}]`,
		},
		{
			name:  "map keys are sorted",
			value: map[string]any{"z": 1, "a": 2, "m": 3},
			want:  `{"a":2,"m":3,"z":1}`,
		},
		{
			name:  "html and non-ascii are not escaped",
			value: map[string]any{"q": "<a&b>", "name": "café 日本"},
			want:  `{"name":"café 日本","q":"<a&b>"}`,
		},
		{
			name:  "json numbers are preserved",
			value: map[string]any{"n": json.Number("12345678901234567890")},
			want:  `{"n":12345678901234567890}`,
		},
		{
			name:  "string scalar",
			value: "not json",
			want:  `"not json"`,
		},
		{
			name:  "empty array",
			value: []any{},
			want:  `[]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gov := NewGovernor(ScopeSearch, 1000, WithSpillDir(t.TempDir()))

			resp, err := gov.Govern(context.Background(), tt.value)
			require.NoError(t, err)
			assert.Equal(t, KindInline, resp.Kind)
			assert.Equal(t, tt.want, resp.Payload)
			assert.Equal(t, tt.want, resp.String())
		})
	}
}

func TestGovern_BudgetBoundary(t *testing.T) {
	dir := t.TempDir()
	gov := NewGovernor(ScopeData, 10, WithSpillDir(dir))

	// 38 characters plus two quotes serialize to 40 bytes, exactly 10 tokens.
	atBudget := strings.Repeat("x", 38)
	resp, err := gov.Govern(context.Background(), atBudget)
	require.NoError(t, err)
	assert.Equal(t, KindInline, resp.Kind)
	assert.Equal(t, 10, resp.Tokens)

	overBudget := strings.Repeat("x", 39)
	resp, err = gov.Govern(context.Background(), overBudget)
	require.NoError(t, err)
	require.Equal(t, KindSpilled, resp.Kind)
	assert.True(t, resp.Spilled())
	assert.Equal(t, "exceeds budget: 11 > 10", resp.Reason)
	assert.Equal(t, 41, resp.SizeBytes)
	assert.Empty(t, resp.Payload)
	assert.Equal(t, dir, filepath.Dir(resp.Path))
}

func TestGovern_SpillRoundTrip(t *testing.T) {
	gov := NewGovernor(ScopeSearch, 1, WithSpillDir(t.TempDir()))

	value := map[string]any{
		"hits":  []any{"a", "b", "c"},
		"total": json.Number("3"),
	}

	resp, err := gov.Govern(context.Background(), value)
	require.NoError(t, err)
	require.True(t, resp.Spilled())

	content, err := os.ReadFile(resp.Path)
	require.NoError(t, err)
	assert.Equal(t, `{"hits":["a","b","c"],"total":3}`, string(content))
	assert.Equal(t, len(content), resp.SizeBytes)

	var descriptor map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.String()), &descriptor))
	assert.Equal(t, "file", descriptor["type"])
	assert.Equal(t, resp.Path, descriptor["path"])
	assert.Equal(t, resp.Reason, descriptor["reason"])
	assert.EqualValues(t, len(content), descriptor["size_bytes"])
}

func TestGovern_SpillFilesAreUnique(t *testing.T) {
	gov := NewGovernor(ScopeSearch, 0, WithSpillDir(t.TempDir()))

	first, err := gov.Govern(context.Background(), "same")
	require.NoError(t, err)
	second, err := gov.Govern(context.Background(), "same")
	require.NoError(t, err)

	assert.NotEqual(t, first.Path, second.Path)
	assert.True(t, strings.HasPrefix(filepath.Base(first.Path), "mcp-query-"))
	assert.True(t, strings.HasSuffix(first.Path, ".json"))
}

func TestGovern_SpillFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	gov := NewGovernor(ScopeSearch, 0, WithSpillDir(missing))

	resp, err := gov.Govern(context.Background(), "too big")
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, errors.Is(err, ErrSpill))
}

func TestGovern_CustomCounter(t *testing.T) {
	counter := TokenCounterFunc(func(text []byte) int { return len(text) })
	gov := NewGovernor(ScopeSearch, 3, WithTokenCounter(counter), WithSpillDir(t.TempDir()))

	resp, err := gov.Govern(context.Background(), 123)
	require.NoError(t, err)
	assert.Equal(t, KindInline, resp.Kind)

	resp, err = gov.Govern(context.Background(), 1234)
	require.NoError(t, err)
	assert.Equal(t, KindSpilled, resp.Kind)
	assert.Equal(t, "exceeds budget: 4 > 3", resp.Reason)
}

func TestGovern_Observer(t *testing.T) {
	obs := &recordingObserver{}
	gov := NewGovernor(ScopeData, 2, WithObserver(obs), WithSpillDir(t.TempDir()))

	_, err := gov.Govern(context.Background(), 1)
	require.NoError(t, err)
	_, err = gov.Govern(context.Background(), "a much longer value")
	require.NoError(t, err)

	assert.Equal(t, []string{"data", "data"}, obs.scopes)
	assert.Equal(t, []bool{false, true}, obs.spilled)
	assert.Equal(t, 1, obs.tokens[0])
}

func TestGovern_SerializeError(t *testing.T) {
	gov := NewGovernor(ScopeSearch, 100)

	_, err := gov.Govern(context.Background(), map[string]any{"ch": make(chan int)})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrSpill))
}

func TestResponse_StringInline(t *testing.T) {
	r := &Response{Kind: KindInline, Payload: `["t1","t2"]`}
	assert.Equal(t, `["t1","t2"]`, r.String())
	assert.False(t, r.Spilled())
}

func TestResponse_StringSpilled(t *testing.T) {
	r := &Response{
		Kind:      KindSpilled,
		Path:      "/tmp/mcp-query-1.json",
		Reason:    "exceeds budget: 5 > 4",
		SizeBytes: 20,
	}
	assert.Equal(t,
		`{"type":"file","path":"/tmp/mcp-query-1.json","reason":"exceeds budget: 5 > 4","size_bytes":20}`,
		r.String())
}
