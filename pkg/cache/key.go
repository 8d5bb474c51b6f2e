package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key identifies a cached backend response.
type Key struct {
	// Endpoint is the API path relative to the base URL (e.g., "/health")
	Endpoint string

	// Query holds the query parameters (e.g., {"limit": "100"})
	Query url.Values
}

// String generates a deterministic cache key string.
// Format: twin:endpoint:query1=val1:query2=val2
//
// Example:
//
//	twin:mem/memories:limit=100
func (k Key) String() string {
	parts := []string{"twin"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Sorted for determinism
	if len(k.Query) > 0 {
		names := make([]string, 0, len(k.Query))
		for name := range k.Query {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%s", name, strings.Join(k.Query[name], ",")))
		}
	}

	return strings.Join(parts, ":")
}
