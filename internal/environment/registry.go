// Package environment resolves data service environment names to endpoints.
//
// The set of environments is closed: it is read from the embedded
// environments.yaml, or from an operator supplied file with the same layout.
// Credentials never live in the registry. For an environment named "sg_live"
// the resolver reads, in order:
//
//	DATA_EXPLORER_SG_LIVE_MODULE_NAME / DATA_EXPLORER_SG_LIVE_SECRET
//	DATA_EXPLORER_MODULE_NAME         / DATA_EXPLORER_SECRET
//
// A pair is used only when both values are non-empty.
package environment

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed environments.yaml
var embeddedRegistry []byte

// Environment is one registry entry.
type Environment struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	BaseURL     string `yaml:"base_url" json:"base_url"`
}

type registryFile struct {
	Environments []Environment `yaml:"environments"`
}

// Registry is an immutable set of environments keyed by name.
type Registry struct {
	byName map[string]Environment
	names  []string
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// DefaultRegistry returns the embedded registry. It is parsed once.
func DefaultRegistry() (*Registry, error) {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = ParseRegistry(embeddedRegistry)
	})
	return defaultRegistry, defaultErr
}

// LoadRegistryFile reads a registry from a YAML file.
func LoadRegistryFile(path string) (*Registry, error) {
	cleanPath := filepath.Clean(path)

	// #nosec G304 -- path is provided by operator configuration
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read environments file %s: %w", cleanPath, err)
	}
	return ParseRegistry(data)
}

// ParseRegistry parses and validates registry YAML.
func ParseRegistry(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse environments: %w", err)
	}
	return NewRegistry(file.Environments...)
}

// NewRegistry builds a registry from entries. Names must be unique and every
// entry needs an absolute http(s) base URL.
func NewRegistry(envs ...Environment) (*Registry, error) {
	r := &Registry{byName: make(map[string]Environment, len(envs))}
	for _, env := range envs {
		env.Name = strings.TrimSpace(env.Name)
		env.BaseURL = strings.TrimRight(strings.TrimSpace(env.BaseURL), "/")

		if env.Name == "" {
			return nil, fmt.Errorf("environment with base_url %q has no name", env.BaseURL)
		}
		if _, dup := r.byName[env.Name]; dup {
			return nil, fmt.Errorf("duplicate environment %q", env.Name)
		}
		u, err := url.Parse(env.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("environment %q has invalid base_url %q", env.Name, env.BaseURL)
		}

		r.byName[env.Name] = env
		r.names = append(r.names, env.Name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Lookup returns the environment called name.
func (r *Registry) Lookup(name string) (Environment, bool) {
	env, ok := r.byName[name]
	return env, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// List returns every environment sorted by name.
func (r *Registry) List() []Environment {
	out := make([]Environment, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.byName[name])
	}
	return out
}
