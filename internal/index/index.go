package index

// SelectionIndex defines the selection cache operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type SelectionIndex interface {
	UpsertSelection(r SelectionRow) error
	GetSelection(key string) (*SelectionRow, error)
	ListSelections(limit, offset int) ([]SelectionRow, int, error)
	DeleteSelection(key string) error
	UpsertSource(path, checksum, key string) error
	DeleteSource(path string) (string, error)
	SourceChecksums() (map[string]string, error)
	SourcesFor(key string) ([]string, error)
	Ping() error
	Close() error
}

// Verify *DB satisfies SelectionIndex at compile time.
var _ SelectionIndex = (*DB)(nil)
