package backend

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// Data service authentication headers.
const (
	HeaderContentType = "content-type"
	HeaderModuleName  = "module-name"
	HeaderTimestamp   = "timestamp"
	HeaderAPIToken    = "api-token"
	HeaderTraceID     = "trace-id"
)

// SignHMAC returns hex(HMAC-SHA256(secret, timestamp)).
func SignHMAC(secret, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	return hex.EncodeToString(mac.Sum(nil))
}

// HMACSigner signs data service requests with a per-call timestamp token and
// trace id.
type HMACSigner struct {
	Credentials Credentials

	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

// Sign implements Signer. It adds the authentication headers to req and a
// JSON content type when req carries a body.
func (s HMACSigner) Sign(_ context.Context, _ *resty.Client, req *Request) error {
	if !s.Credentials.Complete() {
		return Errorf(KindConfigurationMissing, "sign", "module name and secret are required")
	}

	for k, v := range s.Headers(req.HasBody()) {
		req.SetHeader(k, v)
	}
	return nil
}

// Headers builds the header set for one call.
func (s HMACSigner) Headers(withBody bool) map[string]string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	newID := uuid.NewString
	if s.NewID != nil {
		newID = s.NewID
	}

	ts := strconv.FormatInt(now().UnixMilli(), 10)
	headers := map[string]string{
		HeaderModuleName: s.Credentials.Module,
		HeaderTimestamp:  ts,
		HeaderAPIToken:   SignHMAC(s.Credentials.Secret, ts),
		HeaderTraceID:    newID(),
	}
	if withBody {
		headers[HeaderContentType] = "application/json"
	}
	return headers
}
