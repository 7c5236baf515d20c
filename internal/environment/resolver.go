package environment

import (
	"strings"
	"unicode"

	"github.com/giantswarm/mcp-query/internal/backend"
)

// Credential variable names.
const (
	KeyPrefix        = "DATA_EXPLORER_"
	ModuleNameSuffix = "MODULE_NAME"
	SecretSuffix     = "SECRET"
)

// Endpoint is a resolved environment.
type Endpoint = backend.Endpoint

// Resolver maps an environment name to a backend.Endpoint.
type Resolver struct {
	Registry *Registry
	Source   Source
}

// NewResolver creates a Resolver. A nil source reads the process environment.
func NewResolver(registry *Registry, source Source) *Resolver {
	if source == nil {
		source = ProcessEnv{}
	}
	return &Resolver{Registry: registry, Source: source}
}

// Resolve returns the endpoint for name. Unknown names fail with
// InvalidArgument; missing credentials fail with ConfigurationMissing. No
// network calls are made.
func (r *Resolver) Resolve(name string) (backend.Endpoint, error) {
	name = strings.TrimSpace(name)
	env, ok := r.Registry.Lookup(name)
	if !ok {
		return backend.Endpoint{}, backend.Errorf(backend.KindInvalidArgument, "resolve",
			"unknown environment %q, valid environments: %s", name, strings.Join(r.Registry.Names(), ", "))
	}

	creds, ok := r.credentials(name)
	if !ok {
		return backend.Endpoint{}, backend.Errorf(backend.KindConfigurationMissing, "resolve",
			"no credentials for environment %q: set %s and %s, or %s and %s",
			name,
			ScopedKey(name, ModuleNameSuffix), ScopedKey(name, SecretSuffix),
			KeyPrefix+ModuleNameSuffix, KeyPrefix+SecretSuffix)
	}

	return backend.Endpoint{
		Name:        env.Name,
		BaseURL:     env.BaseURL,
		Credentials: creds,
	}, nil
}

func (r *Resolver) credentials(name string) (backend.Credentials, bool) {
	candidates := [][2]string{
		{ScopedKey(name, ModuleNameSuffix), ScopedKey(name, SecretSuffix)},
		{KeyPrefix + ModuleNameSuffix, KeyPrefix + SecretSuffix},
	}
	for _, pair := range candidates {
		module, _ := r.Source.Lookup(pair[0])
		secret, _ := r.Source.Lookup(pair[1])
		creds := backend.Credentials{Module: module, Secret: secret}
		if creds.Complete() {
			return creds, true
		}
	}
	return backend.Credentials{}, false
}

// ScopedKey returns the environment-specific variable name for suffix, for
// example ScopedKey("sg-live", "SECRET") is "DATA_EXPLORER_SG_LIVE_SECRET".
func ScopedKey(name, suffix string) string {
	var b strings.Builder
	b.WriteString(KeyPrefix)
	for _, r := range strings.ToUpper(name) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	b.WriteByte('_')
	b.WriteString(suffix)
	return b.String()
}
