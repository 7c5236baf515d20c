package instrumentation

import "strings"

// Cardinality management helpers for metrics.
// These functions reduce high-cardinality label values to prevent metrics explosion.
//
// Environment names, Elasticsearch index names and HTTP status codes are
// folded into small fixed sets before they are used as labels.

// EnvironmentType represents a classification of environment names for metrics.
type EnvironmentType string

// Environment type classifications for metrics cardinality control.
const (
	EnvironmentTypeProduction  EnvironmentType = "production"
	EnvironmentTypeStaging     EnvironmentType = "staging"
	EnvironmentTypeTest        EnvironmentType = "test"
	EnvironmentTypeUnspecified EnvironmentType = "unspecified"
	EnvironmentTypeOther       EnvironmentType = "other"
)

// ClassifyEnvironment classifies an environment name for metrics.
//
// # Classification Rules
//
// Names are split on "_", "-" and "." and matched case-insensitively:
//
//	| Token                        | Classification |
//	|------------------------------|----------------|
//	| (empty name)                 | unspecified    |
//	| live, prod, production, prd  | production     |
//	| staging, stg, uat            | staging        |
//	| test, dev, qa, sandbox       | test           |
//	| anything else                | other          |
//
// # Examples
//
//	ClassifyEnvironment("sg_live")     // "production"
//	ClassifyEnvironment("sg-staging")  // "staging"
//	ClassifyEnvironment("sg_test")     // "test"
//	ClassifyEnvironment("sandbox")     // "test"
//	ClassifyEnvironment("eu")          // "other"
func ClassifyEnvironment(name string) string {
	if name == "" {
		return string(EnvironmentTypeUnspecified)
	}

	tokens := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})

	// Production wins when several tokens match, e.g. "prod_test_mirror".
	result := EnvironmentTypeOther
	for _, tok := range tokens {
		switch tok {
		case "live", "prod", "production", "prd":
			return string(EnvironmentTypeProduction)
		case "staging", "stg", "uat":
			if result == EnvironmentTypeOther || result == EnvironmentTypeTest {
				result = EnvironmentTypeStaging
			}
		case "test", "dev", "qa", "sandbox":
			if result == EnvironmentTypeOther {
				result = EnvironmentTypeTest
			}
		}
	}
	return string(result)
}

// StatusClass folds an HTTP status code into "2xx", "4xx" and so on. Zero
// means no response was received.
func StatusClass(code int) string {
	switch {
	case code <= 0:
		return "network_error"
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// SearchEndpoint reduces an Elasticsearch path to its API endpoint so index
// names never become label values.
//
// # Examples
//
//	SearchEndpoint("_cat/indices")          // "_cat/indices"
//	SearchEndpoint("/logs-2024.01/_search") // "_search"
//	SearchEndpoint("orders/_doc/42")        // "_doc"
//	SearchEndpoint("orders")                // "index"
//	SearchEndpoint("")                      // "root"
func SearchEndpoint(path string) string {
	path = strings.Trim(path, "/")
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "root"
	}

	parts := strings.Split(path, "/")
	if parts[0] == "_cat" {
		if len(parts) > 1 && parts[1] != "" {
			return "_cat/" + parts[1]
		}
		return "_cat"
	}
	for _, p := range parts {
		if strings.HasPrefix(p, "_") {
			return p
		}
	}
	return "index"
}
