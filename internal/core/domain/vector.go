package domain

import (
	"math"
	"strconv"
)

// VectorRecord is one (id, embedding, text, metadata) tuple to be
// persisted in the vector store. ID uniqueness is the store's
// responsibility; a conflicting ID is rejected, not overwritten.
type VectorRecord struct {
	ID        string
	Embedding []float32
	Text      string
	Metadata  ChunkMetadata
}

// StoredRecord is a record as read back from the vector store,
// without its embedding.
type StoredRecord struct {
	ID       string
	Text     string
	Metadata ChunkMetadata
}

// VectorHit is a single similarity search result. Distance is the
// cosine distance to the query vector (lower is more similar).
type VectorHit struct {
	ID       string
	Text     string
	Metadata ChunkMetadata
	Distance float64
}

// MetadataFilter restricts a search to records whose metadata field
// exactly equals Value. Only single-field equality is supported.
type MetadataFilter struct {
	Field string
	Value string
}

// Matches reports whether meta satisfies the filter. Unknown field
// names match nothing.
func (f *MetadataFilter) Matches(meta ChunkMetadata) bool {
	switch f.Field {
	case "article_id":
		return strconv.FormatInt(meta.ArticleID, 10) == f.Value
	case "source":
		return meta.Source == f.Value
	case "title":
		return meta.Title == f.Value
	case "url":
		return meta.URL == f.Value
	case "date":
		return meta.Date == f.Value
	case "language":
		return meta.Language == f.Value
	default:
		return false
	}
}

// SourceFilter builds the common filter on the regulator source code.
func SourceFilter(source string) *MetadataFilter {
	if source == "" {
		return nil
	}
	return &MetadataFilter{Field: "source", Value: source}
}

// CosineDistance returns 1 - cosine similarity of a and b.
// 0 means identical direction, 1 orthogonal, 2 opposite. Vectors of
// differing length or zero magnitude are maximally distant.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// UsageStats reports cumulative embedding token consumption.
type UsageStats struct {
	// TotalTokens is the monotonic count of tokens billed so far.
	TotalTokens int

	// EstimatedCostUSD is the cost estimate derived from TotalTokens.
	EstimatedCostUSD float64

	// Model is the embedding model the tokens were billed against.
	Model string
}
