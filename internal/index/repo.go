package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/LucasGeos/GKG/internal/apperr"
)

// SelectionRow represents a row in the selections table.
type SelectionRow struct {
	Key       string
	RunID     string
	Name      string
	Variables int
	Arcs      int
	Roots     int
	Selected  int
	Payload   []byte // JSON payload, nil in list results
	CreatedAt time.Time
}

// UpsertSelection inserts or replaces a cached selection.
func (db *DB) UpsertSelection(r SelectionRow) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := db.conn.Exec(`
		INSERT INTO selections (key, run_id, name, variables, arcs, roots, selected, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			run_id     = excluded.run_id,
			name       = excluded.name,
			variables  = excluded.variables,
			arcs       = excluded.arcs,
			roots      = excluded.roots,
			selected   = excluded.selected,
			payload    = excluded.payload,
			created_at = excluded.created_at
	`, r.Key, r.RunID, r.Name, r.Variables, r.Arcs, r.Roots, r.Selected, r.Payload, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert selection: %w", err)
	}
	return nil
}

// GetSelection returns the cached selection for key, payload included.
func (db *DB) GetSelection(key string) (*SelectionRow, error) {
	var r SelectionRow
	err := db.conn.QueryRow(`
		SELECT key, run_id, name, variables, arcs, roots, selected, payload, created_at
		FROM selections WHERE key = ?`, key).
		Scan(&r.Key, &r.RunID, &r.Name, &r.Variables, &r.Arcs, &r.Roots, &r.Selected, &r.Payload, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: get selection %s: %w", key, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get selection: %w", err)
	}
	return &r, nil
}

// ListSelections returns cached selections newest first, without payloads,
// and the total row count.
func (db *DB) ListSelections(limit, offset int) ([]SelectionRow, int, error) {
	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM selections`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count selections: %w", err)
	}
	rows, err := db.conn.Query(`
		SELECT key, run_id, name, variables, arcs, roots, selected, created_at
		FROM selections ORDER BY created_at DESC, key
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list selections: %w", err)
	}
	defer rows.Close()

	var out []SelectionRow
	for rows.Next() {
		var r SelectionRow
		if err := rows.Scan(&r.Key, &r.RunID, &r.Name, &r.Variables, &r.Arcs, &r.Roots, &r.Selected, &r.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// DeleteSelection removes a cached selection and the sources pointing at it.
func (db *DB) DeleteSelection(key string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`DELETE FROM selections WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("index: delete selection: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("index: delete selection %s: %w", key, apperr.ErrNotFound)
	}
	if _, err := tx.Exec(`DELETE FROM sources WHERE key = ?`, key); err != nil {
		return fmt.Errorf("index: delete sources of %s: %w", key, err)
	}
	return tx.Commit()
}

// UpsertSource records that the job document at path, with the given
// checksum, produced the selection key.
func (db *DB) UpsertSource(path, checksum, key string) error {
	_, err := db.conn.Exec(`
		INSERT INTO sources (path, checksum, key, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum   = excluded.checksum,
			key        = excluded.key,
			updated_at = excluded.updated_at
	`, path, checksum, key, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("index: upsert source: %w", err)
	}
	return nil
}

// DeleteSource forgets the job document at path. When no other source
// produced the same selection, the selection is dropped too and its key is
// returned; otherwise the returned key is empty.
func (db *DB) DeleteSource(path string) (string, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var key string
	err = tx.QueryRow(`SELECT key FROM sources WHERE path = ?`, path).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: delete source: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM sources WHERE path = ?`, path); err != nil {
		return "", fmt.Errorf("index: delete source: %w", err)
	}

	var others int
	if err := tx.QueryRow(`SELECT count(*) FROM sources WHERE key = ?`, key).Scan(&others); err != nil {
		return "", fmt.Errorf("index: count sources: %w", err)
	}
	dropped := ""
	if others == 0 {
		if _, err := tx.Exec(`DELETE FROM selections WHERE key = ?`, key); err != nil {
			return "", fmt.Errorf("index: drop orphan selection: %w", err)
		}
		dropped = key
	}
	return dropped, tx.Commit()
}

// SourceChecksums returns the stored checksum of every known job document.
func (db *DB) SourceChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM sources`)
	if err != nil {
		return nil, fmt.Errorf("index: source checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// SourcesFor returns the job document paths that produced key.
func (db *DB) SourcesFor(key string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT path FROM sources WHERE key = ? ORDER BY path`, key)
	if err != nil {
		return nil, fmt.Errorf("index: sources for: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
