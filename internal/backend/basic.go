package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// StatusPath is the search proxy endpoint used to verify credentials.
const StatusPath = "/api/status"

// BasicSession authenticates with HTTP Basic credentials. Sign performs one
// verification call against StatusPath and leaves the credentials on the
// client so the query call reuses them.
type BasicSession struct {
	Username string
	Password string

	Observer Observer
}

// Sign implements Signer.
func (s BasicSession) Sign(ctx context.Context, client *resty.Client, _ *Request) error {
	if s.Username != "" || s.Password != "" {
		client.SetBasicAuth(s.Username, s.Password)
	}

	resp, err := client.R().SetContext(ctx).Get(StatusPath)
	if err != nil {
		if s.Observer != nil {
			s.Observer.RecordBackendRequest(ctx, "kibana", "login", 0, 0)
		}
		return NewError(KindAuthenticationFailed, "login", err)
	}
	if s.Observer != nil {
		s.Observer.RecordBackendRequest(ctx, "kibana", "login", resp.StatusCode(), resp.Time())
	}
	if !IsSuccess(resp.StatusCode()) {
		return &Error{
			Kind:    KindAuthenticationFailed,
			Stage:   "login",
			Message: fmt.Sprintf("status check returned %d %s", resp.StatusCode(), http.StatusText(resp.StatusCode())),
			Status:  resp.StatusCode(),
			Body:    resp.String(),
		}
	}
	return nil
}
