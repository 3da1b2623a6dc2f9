// Package chroma provides a vector store adapter for a remote
// ChromaDB server, for deployments where the index outlives the CLI
// host.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/regwatch-labs/regrag-cli/internal/core/domain"
	"github.com/regwatch-labs/regrag-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// serviceName identifies this adapter in ServiceError values.
const serviceName = "chroma"

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 60 * time.Second
)

// Config holds configuration for the Chroma store.
type Config struct {
	// BaseURL is the Chroma server URL (default: http://localhost:8000).
	BaseURL string

	// Collection is the collection name (required).
	Collection string

	// Dimensions is the embedding dimensionality (required).
	Dimensions int

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// Store talks to a ChromaDB server over its REST API.
type Store struct {
	client       *http.Client
	baseURL      string
	collection   string
	collectionID string
	dimensions   int
}

type collectionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type addRequest struct {
	IDs        []string         `json:"ids"`
	Embeddings [][]float32      `json:"embeddings"`
	Documents  []string         `json:"documents"`
	Metadatas  []map[string]any `json:"metadatas"`
}

type queryRequest struct {
	QueryEmbeddings [][]float32    `json:"query_embeddings"`
	NResults        int            `json:"n_results"`
	Where           map[string]any `json:"where,omitempty"`
	Include         []string       `json:"include"`
}

// queryResponse carries one inner list per query embedding; we always
// send exactly one.
type queryResponse struct {
	IDs       [][]string         `json:"ids"`
	Documents [][]string         `json:"documents"`
	Metadatas [][]map[string]any `json:"metadatas"`
	Distances [][]float64        `json:"distances"`
}

type getRequest struct {
	IDs     []string `json:"ids,omitempty"`
	Limit   int      `json:"limit,omitempty"`
	Include []string `json:"include,omitempty"`
}

type getResponse struct {
	IDs       []string         `json:"ids"`
	Documents []string         `json:"documents"`
	Metadatas []map[string]any `json:"metadatas"`
}

// NewStore connects to the Chroma server and gets or creates the
// configured collection.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Collection == "" {
		return nil, fmt.Errorf("chroma: collection name is required")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("chroma: dimensions must be positive")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	s := &Store{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		collection: cfg.Collection,
		dimensions: cfg.Dimensions,
	}

	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// ensureCollection gets or creates the collection and caches its id.
func (s *Store) ensureCollection(ctx context.Context) error {
	var resp collectionResponse
	err := s.post(ctx, "/api/v1/collections", map[string]any{
		"name":          s.collection,
		"get_or_create": true,
	}, &resp)
	if err != nil {
		return err
	}
	s.collectionID = resp.ID
	return nil
}

// Add uploads records. Ids already present in the collection fail the
// whole call with ErrDuplicateID before anything is written.
func (s *Store) Add(ctx context.Context, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	req := addRequest{
		IDs:        make([]string, 0, len(records)),
		Embeddings: make([][]float32, 0, len(records)),
		Documents:  make([]string, 0, len(records)),
		Metadatas:  make([]map[string]any, 0, len(records)),
	}
	for _, r := range records {
		if len(r.Embedding) != s.dimensions {
			return domain.ErrDimensionMismatch
		}
		meta, err := metadataToMap(r.Metadata)
		if err != nil {
			return err
		}
		req.IDs = append(req.IDs, r.ID)
		req.Embeddings = append(req.Embeddings, r.Embedding)
		req.Documents = append(req.Documents, r.Text)
		req.Metadatas = append(req.Metadatas, meta)
	}

	// Chroma upserts silently on conflicting ids; check first so
	// duplicates are rejected rather than overwritten.
	var existing getResponse
	err := s.post(ctx, "/api/v1/collections/"+s.collectionID+"/get",
		getRequest{IDs: req.IDs}, &existing)
	if err != nil {
		return err
	}
	if len(existing.IDs) > 0 {
		return fmt.Errorf("record %s: %w", existing.IDs[0], domain.ErrDuplicateID)
	}

	return s.post(ctx, "/api/v1/collections/"+s.collectionID+"/add", req, nil)
}

// Search runs a single-embedding nearest-neighbour query.
func (s *Store) Search(
	ctx context.Context, query []float32, n int, where *domain.MetadataFilter,
) ([]domain.VectorHit, error) {
	if len(query) != s.dimensions {
		return nil, domain.ErrDimensionMismatch
	}

	req := queryRequest{
		QueryEmbeddings: [][]float32{query},
		NResults:        n,
		Include:         []string{"documents", "metadatas", "distances"},
	}
	if where != nil {
		req.Where = map[string]any{where.Field: where.Value}
	}

	var resp queryResponse
	if err := s.post(ctx, "/api/v1/collections/"+s.collectionID+"/query", req, &resp); err != nil {
		return nil, err
	}

	if len(resp.IDs) == 0 || len(resp.IDs[0]) == 0 {
		return nil, nil
	}

	ids := resp.IDs[0]
	hits := make([]domain.VectorHit, 0, len(ids))
	for i := range ids {
		hit := domain.VectorHit{ID: ids[i]}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) {
			hit.Text = resp.Documents[0][i]
		}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			hit.Distance = resp.Distances[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			meta, err := mapToMetadata(resp.Metadatas[0][i])
			if err != nil {
				return nil, err
			}
			hit.Metadata = meta
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Count returns the number of records in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+"/api/v1/collections/"+s.collectionID+"/count", http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("chroma: create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, domain.NewServiceError(serviceName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, domain.NewServiceError(serviceName, err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, domain.NewServiceError(serviceName,
			fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	var count int
	if err := json.Unmarshal(body, &count); err != nil {
		return 0, domain.NewServiceError(serviceName, fmt.Errorf("decode count: %w", err))
	}
	return count, nil
}

// GetAll returns records without embeddings, up to limit when
// limit > 0.
func (s *Store) GetAll(ctx context.Context, limit int) ([]domain.StoredRecord, error) {
	req := getRequest{Include: []string{"documents", "metadatas"}}
	if limit > 0 {
		req.Limit = limit
	}

	var resp getResponse
	if err := s.post(ctx, "/api/v1/collections/"+s.collectionID+"/get", req, &resp); err != nil {
		return nil, err
	}

	out := make([]domain.StoredRecord, 0, len(resp.IDs))
	for i, id := range resp.IDs {
		rec := domain.StoredRecord{ID: id}
		if i < len(resp.Documents) {
			rec.Text = resp.Documents[i]
		}
		if i < len(resp.Metadatas) {
			meta, err := mapToMetadata(resp.Metadatas[i])
			if err != nil {
				return nil, err
			}
			rec.Metadata = meta
		}
		out = append(out, rec)
	}
	return out, nil
}

// Reset deletes the collection and recreates it empty under the same
// name. A missing collection is not an error.
func (s *Store) Reset(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		s.baseURL+"/api/v1/collections/"+s.collection, http.NoBody)
	if err != nil {
		return fmt.Errorf("chroma: create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.NewServiceError(serviceName, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return domain.NewServiceError(serviceName,
			fmt.Errorf("delete collection: status %d", resp.StatusCode))
	}

	return s.ensureCollection(ctx)
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

// post sends a JSON request and decodes the JSON response into out
// when out is non-nil.
func (s *Store) post(ctx context.Context, path string, payload, out any) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("chroma: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("chroma: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.NewServiceError(serviceName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.NewServiceError(serviceName, err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return domain.NewServiceError(serviceName,
			fmt.Errorf("%s: status %d: %s", path, resp.StatusCode, string(body)))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return domain.NewServiceError(serviceName, fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}

// metadataToMap flattens chunk metadata to the generic map Chroma
// stores. Empty date values are stripped rather than stored as nulls.
func metadataToMap(meta domain.ChunkMetadata) (map[string]any, error) {
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("chroma: marshal metadata: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("chroma: flatten metadata: %w", err)
	}
	return m, nil
}

func mapToMetadata(m map[string]any) (domain.ChunkMetadata, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return domain.ChunkMetadata{}, fmt.Errorf("chroma: marshal metadata: %w", err)
	}
	var meta domain.ChunkMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return domain.ChunkMetadata{}, fmt.Errorf("chroma: decode metadata: %w", err)
	}
	return meta, nil
}
