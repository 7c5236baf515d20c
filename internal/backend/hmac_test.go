package backend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignHMAC(t *testing.T) {
	tests := []struct {
		name      string
		secret    string
		timestamp string
		want      string
	}{
		{
			name:      "known vector",
			secret:    "secret",
			timestamp: "1700000000000",
			want:      "4fe2ce12fd6bec5e0648b23bfbff158ba5fc18b3a214b4c207314671448a95e1",
		},
		{
			name:      "empty inputs",
			secret:    "",
			timestamp: "",
			want:      "b613679a0814d9ec772f95d778c35fc5ff1697c493715653c6c712144292c5ad",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SignHMAC(tt.secret, tt.timestamp))
			// Same inputs always give the same token.
			assert.Equal(t, SignHMAC(tt.secret, tt.timestamp), SignHMAC(tt.secret, tt.timestamp))
		})
	}
}

func TestHMACSigner_Headers(t *testing.T) {
	signer := HMACSigner{
		Credentials: Credentials{Module: "chatbot_admin", Secret: "secret"},
		Now:         func() time.Time { return time.UnixMilli(1700000000000) },
		NewID:       func() string { return "trace-1" },
	}

	withBody := signer.Headers(true)
	assert.Equal(t, map[string]string{
		HeaderContentType: "application/json",
		HeaderModuleName:  "chatbot_admin",
		HeaderTimestamp:   "1700000000000",
		HeaderAPIToken:    "4fe2ce12fd6bec5e0648b23bfbff158ba5fc18b3a214b4c207314671448a95e1",
		HeaderTraceID:     "trace-1",
	}, withBody)

	withoutBody := signer.Headers(false)
	_, hasContentType := withoutBody[HeaderContentType]
	assert.False(t, hasContentType)
	assert.Equal(t, "trace-1", withoutBody[HeaderTraceID])
}

func TestHMACSigner_FreshTraceIDs(t *testing.T) {
	signer := HMACSigner{Credentials: Credentials{Module: "m", Secret: "s"}}

	first := signer.Headers(false)[HeaderTraceID]
	second := signer.Headers(false)[HeaderTraceID]

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

func TestHMACSigner_Sign(t *testing.T) {
	signer := HMACSigner{
		Credentials: Credentials{Module: "m", Secret: "s"},
		Now:         func() time.Time { return time.UnixMilli(42) },
		NewID:       func() string { return "id" },
	}

	req := Request{Body: []byte(`{"sql":"SELECT 1"}`)}
	require.NoError(t, signer.Sign(context.Background(), nil, &req))
	assert.Equal(t, "42", req.Headers[HeaderTimestamp])
	assert.Equal(t, SignHMAC("s", "42"), req.Headers[HeaderAPIToken])
	assert.Equal(t, "application/json", req.Headers[HeaderContentType])
}

func TestHMACSigner_MissingCredentials(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
	}{
		{name: "both empty", creds: Credentials{}},
		{name: "module only", creds: Credentials{Module: "m"}},
		{name: "secret only", creds: Credentials{Secret: "s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Request{}
			err := HMACSigner{Credentials: tt.creds}.Sign(context.Background(), nil, &req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfigurationMissing)
			assert.Empty(t, req.Headers)
		})
	}
}
