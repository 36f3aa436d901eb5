package types

// Row is one persisted configuration entry as the backend sees it.
type Row struct {
	Key      string
	Value    string
	DataType Tag
}

// Backend is the persistence contract the Store delegates to. Any storage
// that can upsert, fetch and remove rows by primary key satisfies it.
type Backend interface {
	// EnsureSchema prepares the backing table. It must be idempotent.
	EnsureSchema() error

	// Upsert inserts the row for key or replaces both value and data type
	// of an existing one.
	Upsert(key, value string, dataType Tag) error

	// Fetch returns the row for key. The boolean is false when no row exists;
	// that is not an error.
	Fetch(key string) (Row, bool, error)

	// Remove deletes the row for key. Removing an absent key is not an error.
	Remove(key string) error

	// Close releases the backend's handle.
	Close() error
}
