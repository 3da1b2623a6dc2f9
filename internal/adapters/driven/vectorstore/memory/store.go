// Package memory provides an in-memory vector store for tests and
// ephemeral runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/regwatch-labs/regrag-cli/internal/core/domain"
	"github.com/regwatch-labs/regrag-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store keeps vector records in memory, guarded by a mutex.
// Insertion order is preserved for GetAll.
type Store struct {
	mu         sync.RWMutex
	dimensions int
	records    []domain.VectorRecord
	index      map[string]int
}

// NewStore creates an in-memory store for vectors of the given
// dimensionality.
func NewStore(dimensions int) *Store {
	return &Store{
		dimensions: dimensions,
		index:      make(map[string]int),
	}
}

// Add appends records. The whole call fails on the first duplicate id
// or dimension mismatch, without partial writes.
func (s *Store) Add(_ context.Context, records []domain.VectorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if len(r.Embedding) != s.dimensions {
			return domain.ErrDimensionMismatch
		}
		if _, exists := s.index[r.ID]; exists {
			return domain.ErrDuplicateID
		}
	}

	for _, r := range records {
		s.index[r.ID] = len(s.records)
		s.records = append(s.records, r)
	}
	return nil
}

// Search returns up to n nearest records by cosine distance.
func (s *Store) Search(
	_ context.Context, query []float32, n int, where *domain.MetadataFilter,
) ([]domain.VectorHit, error) {
	if len(query) != s.dimensions {
		return nil, domain.ErrDimensionMismatch
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]domain.VectorHit, 0, len(s.records))
	for _, r := range s.records {
		if where != nil && !where.Matches(r.Metadata) {
			continue
		}
		hits = append(hits, domain.VectorHit{
			ID:       r.ID,
			Text:     r.Text,
			Metadata: r.Metadata,
			Distance: domain.CosineDistance(query, r.Embedding),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	if n > 0 && n < len(hits) {
		hits = hits[:n]
	}
	return hits, nil
}

// Count returns the number of stored records.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// GetAll returns all records, or the first limit records when
// limit > 0, in insertion order.
func (s *Store) GetAll(_ context.Context, limit int) ([]domain.StoredRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.records)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]domain.StoredRecord, n)
	for i := 0; i < n; i++ {
		out[i] = domain.StoredRecord{
			ID:       s.records[i].ID,
			Text:     s.records[i].Text,
			Metadata: s.records[i].Metadata,
		}
	}
	return out, nil
}

// Reset empties the collection. Idempotent.
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.index = make(map[string]int)
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}
