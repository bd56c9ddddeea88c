package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Key identifies one cached query result. Unlike REST responses, GraphQL
// POSTs carry no URL identity, so the key is derived from the query text
// and its variables.
type Key struct {
	// Shop is the normalized shop URL the query targets.
	Shop string

	// Query is the GraphQL document.
	Query string

	// Variables are the query variables. encoding/json sorts map keys,
	// so semantically equal variable sets produce the same key.
	Variables map[string]any
}

// String generates a deterministic cache key string.
// Format: gql:<shop-host>:<sha256 of query + canonical variables>
func (k Key) String() string {
	vars, err := json.Marshal(k.Variables)
	if err != nil {
		// Unmarshalable variables cannot have come off the wire; fall
		// back to a query-only key.
		vars = nil
	}

	sum := sha256.Sum256(append([]byte(k.Query), vars...))

	host := strings.TrimPrefix(strings.TrimPrefix(k.Shop, "https://"), "http://")
	return fmt.Sprintf("gql:%s:%s", host, hex.EncodeToString(sum[:]))
}
