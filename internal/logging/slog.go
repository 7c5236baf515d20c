package logging

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation   = "operation"
	KeyTool        = "tool"
	KeyEnvironment = "environment"
	KeyBackend     = "backend"
	KeyDatabase    = "database"
	KeyPath        = "path"
	KeyResultKind  = "result_kind"
	KeyTokens      = "tokens"
	KeyDuration    = "duration"
	KeyStatus      = "status"
	KeyError       = "error"
	KeyErrorKind   = "error_kind"
	KeyHost        = "host"
)

// Status values for consistent logging.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Log output formats accepted by NewLogger.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ipv4Regex matches IPv4 addresses for sanitization.
var ipv4Regex = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)

// ipv6Regex matches common IPv6 formats, including the bracketed form used in
// URLs.
var ipv6Regex = regexp.MustCompile(`\[?([0-9a-fA-F]{0,4}:){2,7}[0-9a-fA-F]{0,4}\]?`)

// NewLogger builds a slog logger writing to w, or to stderr when w is nil.
// Stdout is never used because the stdio transport owns it.
func NewLogger(level, format string, w io.Writer) (*slog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q: must be %q or %q", format, FormatText, FormatJSON)
	}
}

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// WithEnvironment returns a logger with the environment attribute set.
func WithEnvironment(logger *slog.Logger, env string) *slog.Logger {
	return logger.With(slog.String(KeyEnvironment, env))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Tool returns a slog attribute for the tool name.
func Tool(name string) slog.Attr {
	return slog.String(KeyTool, name)
}

// Environment returns a slog attribute for the data service environment.
func Environment(name string) slog.Attr {
	return slog.String(KeyEnvironment, name)
}

// Backend returns a slog attribute for the backend name.
func Backend(name string) slog.Attr {
	return slog.String(KeyBackend, name)
}

// Database returns a slog attribute for the database name.
func Database(name string) slog.Attr {
	return slog.String(KeyDatabase, name)
}

// Path returns a slog attribute for a search proxy path.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// ResultKind returns a slog attribute for the governed result kind.
func ResultKind(kind string) slog.Attr {
	return slog.String(KeyResultKind, kind)
}

// Tokens returns a slog attribute for an estimated token count.
func Tokens(n int) slog.Attr {
	return slog.Int(KeyTokens, n)
}

// Duration returns a slog attribute for an elapsed time.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration(KeyDuration, d)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// ErrorKind returns a slog attribute for a classified error kind.
func ErrorKind(kind string) slog.Attr {
	return slog.String(KeyErrorKind, kind)
}

// Err returns a slog attribute for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// SanitizedErr returns a slog attribute for an error with IP addresses
// redacted. Backend errors often embed the URL that failed.
func SanitizedErr(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, SanitizeHost(err.Error()))
}

// Host returns a slog attribute for a host with IP addresses sanitized.
func Host(host string) slog.Attr {
	return slog.String(KeyHost, SanitizeHost(host))
}

// SanitizeHost redacts IPv4 and IPv6 addresses from host while keeping
// hostnames, schemes and ports.
//
// Examples:
//   - "https://192.168.1.100:5601" -> "https://<redacted-ip>:5601"
//   - "https://kibana.example.com" -> "https://kibana.example.com"
//   - "2001:db8::1" -> "<redacted-ip>"
//   - "" -> "<empty>"
func SanitizeHost(host string) string {
	if host == "" {
		return "<empty>"
	}

	redactIPs := func(s string) string {
		result := ipv4Regex.ReplaceAllString(s, "<redacted-ip>")
		return ipv6Regex.ReplaceAllString(result, "<redacted-ip>")
	}

	if !strings.Contains(host, "://") {
		return redactIPs(host)
	}

	parsed, err := url.Parse(host)
	if err != nil {
		return redactIPs(host)
	}

	changed := false
	// Credentials embedded in a URL never reach the log.
	if parsed.User != nil {
		parsed.User = url.User("redacted")
		changed = true
	}
	if ipv4Regex.MatchString(parsed.Host) || ipv6Regex.MatchString(parsed.Host) {
		parsed.Host = redactIPs(parsed.Host)
		changed = true
	}
	if changed {
		return parsed.String()
	}
	return host
}

// SanitizeToken returns a length indicator for a secret, api token or
// password without exposing any of its content.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}
