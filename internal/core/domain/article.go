package domain

import "strings"

// Article is a scraped regulatory-news article as produced by the
// upstream scrapers. It is immutable once it enters the pipeline.
type Article struct {
	// ID is the relational store identifier.
	ID int64

	// Source is the regulator code (e.g. "ESMA", "AMF", "CSSF").
	Source string

	// Title is the article headline.
	Title string

	// URL is the canonical article location.
	URL string

	// DatePublished is the publication date as scraped.
	// Empty when the source page carried no date.
	DatePublished string

	// Content is the full article text. Must be non-empty before the
	// article is handed to the chunker.
	Content string

	// Language is the ISO 639-1 code of the article text ("fr", "en").
	Language string
}

// Validate checks the invariants an article must hold before it may
// enter the chunking pipeline.
func (a *Article) Validate() error {
	if strings.TrimSpace(a.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}

// ChunkMetadata is the provenance record attached to every chunk.
// Fields map one-to-one onto the metadata persisted alongside each
// vector; Date is omitted from persistence when empty.
type ChunkMetadata struct {
	ArticleID   int64  `json:"article_id"`
	Source      string `json:"source"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Date        string `json:"date,omitempty"`
	Language    string `json:"language"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
}

// Chunk is a token-bounded slice of one article's text.
type Chunk struct {
	// Text is the chunk content.
	Text string

	// Metadata carries provenance and position within the article.
	Metadata ChunkMetadata

	// TokenCount is the token count of Text under the embedding
	// model's tokenization scheme.
	TokenCount int
}
