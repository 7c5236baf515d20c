package tools

import (
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"

	"github.com/giantswarm/mcp-query/internal/backend"
)

// DecodeArgs decodes tool arguments into out, a pointer to a struct tagged
// with `json` names. Scalars are coerced loosely, so a number sent for a
// string argument is accepted.
func DecodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return backend.NewError(backend.KindInvalidArgument, "decode", err)
	}
	if err := dec.Decode(args); err != nil {
		return backend.NewError(backend.KindInvalidArgument, "decode", err)
	}
	return nil
}

// RequireArgs returns an InvalidArgument error naming the first argument
// whose value is blank. Pairs are given as name, value.
func RequireArgs(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return backend.Errorf(backend.KindInvalidArgument, "validate", "%s is required", pairs[i])
		}
	}
	return nil
}

// StringArg returns args[key] coerced to a string, or "" when it is missing
// or not a scalar.
func StringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}
