package store

// Blobs is the durable key-value collaborator. Values are opaque string
// blobs; no schema is enforced at this layer.
type Blobs interface {
	// Get returns the blob for a key. The second result is false when the
	// key has never been written.
	Get(key string) (string, bool, error)

	// Set writes the blob for a key, replacing any previous value.
	Set(key, value string) error
}
