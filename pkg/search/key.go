package search

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// keyPrefix namespaces memoized search results inside the shared cache.
const keyPrefix = "search:"

// Key identifies a memoized search: the query string plus the context
// values that influenced the results (filters, model types, NSFW level).
type Key struct {
	Query   string
	Context map[string]any
}

// String generates a deterministic cache key string. Context maps are
// canonicalized with sorted keys, so logically equal contexts produce the
// same key regardless of construction order, while different values
// produce different keys.
//
// Format: search:<query> or search:<query>:<canonical-context>
//
// The canonical form is standard-library JSON on purpose: key derivation
// must stay stable across processes even when the snapshot codec changes.
func (k Key) String() string {
	if len(k.Context) == 0 {
		return keyPrefix + k.Query
	}

	canonical, err := json.Marshal(k.Context)
	if err != nil {
		return keyPrefix + k.Query + ":" + fallbackContext(k.Context)
	}
	return keyPrefix + k.Query + ":" + string(canonical)
}

// fallbackContext formats contexts JSON cannot encode. Values collapse to
// their string form, which keeps the key deterministic.
func fallbackContext(context map[string]any) string {
	keys := make([]string, 0, len(context))
	for key := range context {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, context[key]))
	}
	return strings.Join(parts, ":")
}
