package environment

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Source looks up configuration values by key.
type Source interface {
	Lookup(key string) (string, bool)
}

// ProcessEnv reads the process environment.
type ProcessEnv struct{}

// Lookup implements Source.
func (ProcessEnv) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapSource serves values from a fixed map.
type MapSource map[string]string

// Lookup implements Source.
func (m MapSource) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// LoadDotEnv reads a dotenv file into a MapSource.
func LoadDotEnv(path string) (MapSource, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return MapSource(vars), nil
}

// Layered consults each source in order and returns the first non-empty value.
type Layered []Source

// Lookup implements Source.
func (l Layered) Lookup(key string) (string, bool) {
	for _, src := range l {
		if src == nil {
			continue
		}
		if v, ok := src.Lookup(key); ok && v != "" {
			return v, true
		}
	}
	return "", false
}
