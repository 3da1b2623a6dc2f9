// Package sqlite provides the default persistent vector store,
// backed by a local SQLite database. Embeddings are stored as
// little-endian float32 blobs and compared by cosine distance.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/regwatch-labs/regrag-cli/internal/core/domain"
	"github.com/regwatch-labs/regrag-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is a SQLite-backed vector collection.
type Store struct {
	db         *sql.DB
	collection string
	dimensions int
	path       string
}

const schema = `
CREATE TABLE IF NOT EXISTS collections (
	name       TEXT PRIMARY KEY,
	dimensions INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS records (
	id         TEXT NOT NULL,
	collection TEXT NOT NULL,
	content    TEXT NOT NULL,
	embedding  BLOB NOT NULL,
	metadata   TEXT NOT NULL,
	PRIMARY KEY (id, collection)
);
CREATE INDEX IF NOT EXISTS idx_records_collection ON records(collection);
`

// NewStore opens (or creates) the vector database under dataDir and
// binds to the named collection with the given dimensionality.
// Reopening an existing collection with a different dimensionality
// fails with ErrDimensionMismatch.
func NewStore(dataDir, collection string, dimensions int) (*Store, error) {
	if collection == "" {
		return nil, fmt.Errorf("vectorstore: collection name is required")
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("vectorstore: dimensions must be positive")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "vectors.db")

	// WAL mode for better concurrency between ingestion and queries.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	s := &Store{
		db:         db,
		collection: collection,
		dimensions: dimensions,
		path:       dbPath,
	}

	if err := s.registerCollection(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// registerCollection records the collection's dimensionality, or
// verifies it when the collection already exists.
func (s *Store) registerCollection() error {
	var existing int
	err := s.db.QueryRow(
		"SELECT dimensions FROM collections WHERE name = ?", s.collection,
	).Scan(&existing)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.Exec(
			"INSERT INTO collections (name, dimensions) VALUES (?, ?)",
			s.collection, s.dimensions,
		); err != nil {
			return fmt.Errorf("registering collection: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("checking collection: %w", err)
	case existing != s.dimensions:
		return domain.ErrDimensionMismatch
	default:
		return nil
	}
}

// Add appends records to the collection in one transaction.
// A duplicate id fails the whole call with ErrDuplicateID; nothing is
// written.
func (s *Store) Add(ctx context.Context, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	for _, r := range records {
		if len(r.Embedding) != s.dimensions {
			return domain.ErrDimensionMismatch
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (id, collection, content, embedding, metadata)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		metadataJSON, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata: %w", err)
		}

		if _, err := stmt.ExecContext(ctx,
			r.ID, s.collection, r.Text, float32SliceToBytes(r.Embedding), string(metadataJSON),
		); err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint") {
				return fmt.Errorf("record %s: %w", r.ID, domain.ErrDuplicateID)
			}
			return fmt.Errorf("inserting record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Search returns up to n nearest records by cosine distance,
// ascending, optionally filtered on one metadata field.
func (s *Store) Search(
	ctx context.Context, query []float32, n int, where *domain.MetadataFilter,
) ([]domain.VectorHit, error) {
	if len(query) != s.dimensions {
		return nil, domain.ErrDimensionMismatch
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, embedding, metadata
		FROM records WHERE collection = ?
	`, s.collection)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var hits []domain.VectorHit
	for rows.Next() {
		var (
			id, content, metadataJSON string
			blob                      []byte
		)
		if err := rows.Scan(&id, &content, &blob, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		var meta domain.ChunkMetadata
		if err := json.Unmarshal([]byte(metadataJSON), &meta); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata for %s: %w", id, err)
		}

		if where != nil && !where.Matches(meta) {
			continue
		}

		hits = append(hits, domain.VectorHit{
			ID:       id,
			Text:     content,
			Metadata: meta,
			Distance: domain.CosineDistance(query, bytesToFloat32Slice(blob)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	if n > 0 && n < len(hits) {
		hits = hits[:n]
	}
	return hits, nil
}

// Count returns the number of records in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM records WHERE collection = ?", s.collection,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return count, nil
}

// GetAll returns all records without embeddings, in insertion order,
// or the first limit records when limit > 0.
func (s *Store) GetAll(ctx context.Context, limit int) ([]domain.StoredRecord, error) {
	query := `
		SELECT id, content, metadata
		FROM records WHERE collection = ?
		ORDER BY rowid
	`
	args := []any{s.collection}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var out []domain.StoredRecord
	for rows.Next() {
		var rec domain.StoredRecord
		var metadataJSON string
		if err := rows.Scan(&rec.ID, &rec.Text, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		if err := json.Unmarshal([]byte(metadataJSON), &rec.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata for %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return out, nil
}

// Reset deletes all records of the collection and re-registers it
// under the same name. Idempotent: resetting an empty or missing
// collection succeeds.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM records WHERE collection = ?", s.collection,
	); err != nil {
		return fmt.Errorf("deleting records: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO collections (name, dimensions) VALUES (?, ?)",
		s.collection, s.dimensions,
	); err != nil {
		return fmt.Errorf("re-registering collection: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
