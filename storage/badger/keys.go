package badger

import "fmt"

// Key prefixes for different data types
const (
	propertyPrefix = "prop"
	vectorPrefix   = "propvec"
	sessionPrefix  = "sess"
)

// makePropertyKey generates a key for a listing record by ID.
func makePropertyKey(id string) string {
	return fmt.Sprintf("%s:%s", propertyPrefix, id)
}

// makeVectorKey generates a key for a listing's embedding vector.
func makeVectorKey(id string) string {
	return fmt.Sprintf("%s:%s", vectorPrefix, id)
}

// makeSessionKey generates a key for a chat session by ID.
func makeSessionKey(id string) string {
	return fmt.Sprintf("%s:%s", sessionPrefix, id)
}

// trimKeyPrefix strips "<prefix>:" from a stored key, returning the ID part.
func trimKeyPrefix(key, prefix string) string {
	return key[len(prefix)+1:]
}
