// This is free and unencumbered software released into the public domain.
//
// Anyone is free to copy, modify, publish, use, compile, sell, or
// distribute this software, either in source code form or as a compiled
// binary, for any purpose, commercial or non-commercial, and by any
// means.
//
// In jurisdictions that recognize copyright laws, the author or authors
// of this software dedicate any and all copyright interest in the
// software to the public domain. We make this dedication for the benefit
// of the public at large and to the detriment of our heirs and
// successors. We intend this dedication to be an overt act of
// relinquishment in perpetuity of all present and future rights to this
// software under copyright law.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
// IN NO EVENT SHALL THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR
// OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE,
// ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.
//
// For more information, please refer to <https://unlicense.org>

package remote

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is a durable blob backend keeping content-addressed
// blobs in a single SQLite table. Digests are SHA-256 over the blob
// bytes and enumerate in ascending order through the primary key.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens or creates a blob store at the given path.
// The special path ":memory:" yields a store that lives and dies with
// the connection.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening blob store: %w", err)
	}
	// One connection keeps ":memory:" stores on a single database
	// and sidesteps SQLite's writer lock contention.
	db.SetMaxOpenConns(1)
	const schema = `
		CREATE TABLE IF NOT EXISTS blobs (
			digest BLOB PRIMARY KEY,
			data   BLOB NOT NULL
		) WITHOUT ROWID;`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating blob table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// List enumerates the stored digests in ascending order. The digests
// are read in full before f runs, so f may use the store's single
// connection, as Transfer's pulls do.
func (s *SQLiteStore) List(ctx context.Context, f func(Digest) error) error {
	rows, err := s.db.QueryContext(ctx, `SELECT digest FROM blobs ORDER BY digest`)
	if err != nil {
		return fmt.Errorf("listing blobs: %w", err)
	}
	defer rows.Close()

	var digests []Digest
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return fmt.Errorf("reading blob digest: %w", err)
		}
		if len(raw) != len(Digest{}) {
			return fmt.Errorf("malformed digest of %d bytes in blob table", len(raw))
		}
		var d Digest
		copy(d[:], raw)
		digests = append(digests, d)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	for _, d := range digests {
		if err := f(d); err != nil {
			return err
		}
	}
	return nil
}

// PullRaw loads a blob.
func (s *SQLiteStore) PullRaw(ctx context.Context, digest Digest) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM blobs WHERE digest = ?`, digest[:]).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Digest: digest}
	}
	if err != nil {
		return nil, fmt.Errorf("loading blob %x: %w", digest, err)
	}
	return blob, nil
}

// PushRaw stores a blob under its content digest. Storing the same
// bytes twice is a no-op.
func (s *SQLiteStore) PushRaw(ctx context.Context, blob []byte) (Digest, error) {
	digest := Digest(sha256.Sum256(blob))
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blobs (digest, data) VALUES (?, ?)
		 ON CONFLICT (digest) DO NOTHING`, digest[:], blob)
	if err != nil {
		return Digest{}, fmt.Errorf("storing blob %x: %w", digest, err)
	}
	return digest, nil
}
