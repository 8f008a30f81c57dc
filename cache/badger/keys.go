package badger

import (
	"fmt"

	"github.com/poiesic/searchdeck/core"
)

// Key prefix for cached query results. The version component namespaces
// the serialization format: bumping it implicitly invalidates entries
// written by older builds as they age out by TTL.
const queryResultPrefix = "qryres:v1"

// makeQueryResultKey generates a key for a query's cached result list.
// Queries are addressed by their BLAKE2b hash so arbitrary query bytes
// never enter the key space.
func makeQueryResultKey(query string) []byte {
	return []byte(fmt.Sprintf("%s:%d", queryResultPrefix, core.QueryKey(query)))
}
