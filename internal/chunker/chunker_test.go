package chunker

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/regwatch-labs/regrag-cli/internal/core/domain"
)

// wordCounter counts whitespace-separated words so tests can reason
// about token budgets exactly.
type wordCounter struct{}

func (wordCounter) CountTokens(text string) int {
	return len(strings.Fields(text))
}

// paragraph builds a paragraph of n distinct words.
func paragraph(tag string, n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("%s%d", tag, i)
	}
	return strings.Join(words, " ")
}

func testMeta() domain.ChunkMetadata {
	return domain.ChunkMetadata{
		ArticleID: 7,
		Source:    "ESMA",
		Title:     "Guidelines on fund names",
		URL:       "https://www.esma.europa.eu/guidelines-fund-names",
		Language:  "en",
	}
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		s := New(wordCounter{})
		if s.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, s.chunkSize)
		}
		if s.chunkOverlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, s.chunkOverlap)
		}
		if s.minChunkSize != DefaultMinChunkSize {
			t.Errorf("expected minChunkSize %d, got %d", DefaultMinChunkSize, s.minChunkSize)
		}
	})

	t.Run("overlap exceeding chunk size is reduced", func(t *testing.T) {
		s := New(wordCounter{}, WithChunkSize(100), WithOverlap(150))
		if s.chunkOverlap >= s.chunkSize {
			t.Error("overlap should be reduced when it exceeds chunk size")
		}
	})

	t.Run("non-positive options ignored", func(t *testing.T) {
		s := New(wordCounter{}, WithChunkSize(0), WithOverlap(-1), WithMinChunkSize(-1))
		if s.chunkSize != DefaultChunkSize || s.chunkOverlap != DefaultChunkOverlap || s.minChunkSize != DefaultMinChunkSize {
			t.Error("invalid option values should keep defaults")
		}
	})
}

func TestSplitEmptyText(t *testing.T) {
	s := New(wordCounter{})
	if _, err := s.Split("", testMeta()); !errors.Is(err, domain.ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	s := New(wordCounter{}, WithChunkSize(50))
	text := paragraph("a", 10) + "\n\n" + paragraph("b", 10)

	chunks, err := s.Split(text, testMeta())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Error("short text must be returned verbatim as a single chunk")
	}
	if chunks[0].Metadata.ChunkIndex != 0 || chunks[0].Metadata.TotalChunks != 1 {
		t.Errorf("expected index 0 of 1, got %d of %d",
			chunks[0].Metadata.ChunkIndex, chunks[0].Metadata.TotalChunks)
	}
	if chunks[0].TokenCount != 20 {
		t.Errorf("expected 20 tokens, got %d", chunks[0].TokenCount)
	}
}

func TestSplitParagraphAccumulation(t *testing.T) {
	// 10 paragraphs of 250 words: 2500 tokens against a 1000-token
	// budget should yield exactly 3 chunks (4+4+2 paragraphs).
	paras := make([]string, 10)
	for i := range paras {
		paras[i] = paragraph(fmt.Sprintf("p%d_", i), 250)
	}
	text := strings.Join(paras, "\n\n")

	s := New(wordCounter{}, WithChunkSize(1000), WithOverlap(200), WithMinChunkSize(100))
	chunks, err := s.Split(text, testMeta())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != strings.Join(paras[0:4], "\n\n") {
		t.Error("first chunk should hold the first four paragraphs")
	}
	if chunks[2].TokenCount != 500 {
		t.Errorf("trailing chunk should hold 500 tokens, got %d", chunks[2].TokenCount)
	}

	for i, c := range chunks {
		if c.TokenCount > 1000 {
			t.Errorf("chunk %d exceeds the token budget: %d", i, c.TokenCount)
		}
		if c.Metadata.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, c.Metadata.ChunkIndex)
		}
		if c.Metadata.TotalChunks != 3 {
			t.Errorf("chunk %d reports total %d", i, c.Metadata.TotalChunks)
		}
		if c.Metadata.Source != "ESMA" || c.Metadata.ArticleID != 7 {
			t.Errorf("chunk %d lost its provenance metadata", i)
		}
	}
}

func TestSplitOverlapCarriedForward(t *testing.T) {
	// 6 paragraphs of 100 words, budget 300, overlap 100: each new
	// chunk should start with the previous chunk's last paragraph.
	paras := make([]string, 6)
	for i := range paras {
		paras[i] = paragraph(fmt.Sprintf("p%d_", i), 100)
	}
	text := strings.Join(paras, "\n\n")

	s := New(wordCounter{}, WithChunkSize(300), WithOverlap(100), WithMinChunkSize(50))
	chunks, err := s.Split(text, testMeta())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	if chunks[0].Text != strings.Join(paras[0:3], "\n\n") {
		t.Error("first chunk should hold the first three paragraphs")
	}
	if !strings.HasPrefix(chunks[1].Text, paras[2]) {
		t.Error("second chunk should start with the overlap paragraph carried from the first")
	}
	for i, c := range chunks {
		if c.TokenCount > 300 {
			t.Errorf("chunk %d exceeds the token budget: %d", i, c.TokenCount)
		}
	}
}

func TestSplitNoOverlapWhenDisabled(t *testing.T) {
	paras := make([]string, 4)
	for i := range paras {
		paras[i] = paragraph(fmt.Sprintf("p%d_", i), 100)
	}
	text := strings.Join(paras, "\n\n")

	s := New(wordCounter{}, WithChunkSize(200), WithOverlap(0), WithMinChunkSize(50))
	chunks, err := s.Split(text, testMeta())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[1].Text != strings.Join(paras[2:4], "\n\n") {
		t.Error("with overlap disabled no content may be repeated between chunks")
	}
}

func TestSplitOversizedParagraph(t *testing.T) {
	// One paragraph over budget is forced into sentence-level
	// splitting; a single oversized sentence becomes its own chunk.
	s1 := paragraph("a", 4)
	s2 := paragraph("b", 4)
	huge := paragraph("h", 12)
	s4 := paragraph("c", 4)
	text := strings.Join([]string{s1, s2, huge, s4}, ". ")

	s := New(wordCounter{}, WithChunkSize(10), WithOverlap(0), WithMinChunkSize(0))
	chunks, err := s.Split(text, testMeta())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != s1+". "+s2 {
		t.Errorf("expected first two sentences joined, got %q", chunks[0].Text)
	}
	if chunks[1].Text != huge {
		t.Error("the oversized sentence should stand alone")
	}
	if chunks[1].TokenCount <= 10 {
		t.Error("the oversized sentence chunk is allowed to exceed the budget")
	}
	if chunks[2].Text != s4 {
		t.Errorf("expected trailing sentence chunk, got %q", chunks[2].Text)
	}
	for i, c := range chunks {
		if c.Metadata.ChunkIndex != i || c.Metadata.TotalChunks != 3 {
			t.Errorf("chunk %d has index %d of %d", i, c.Metadata.ChunkIndex, c.Metadata.TotalChunks)
		}
	}
}

func TestSplitSubMinimumTrailingDropped(t *testing.T) {
	p1 := paragraph("a", 8)
	p2 := paragraph("b", 3)
	text := p1 + "\n\n" + p2

	s := New(wordCounter{}, WithChunkSize(10), WithOverlap(0), WithMinChunkSize(5))
	chunks, err := s.Split(text, testMeta())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(chunks) != 1 {
		t.Fatalf("expected the sub-minimum tail to be dropped, got %d chunks", len(chunks))
	}
	if chunks[0].Text != p1 {
		t.Errorf("expected only the first paragraph, got %q", chunks[0].Text)
	}
	if chunks[0].Metadata.TotalChunks != 1 {
		t.Errorf("total must reflect emitted chunks only, got %d", chunks[0].Metadata.TotalChunks)
	}
}

func TestSplitIndexDensity(t *testing.T) {
	paras := make([]string, 20)
	for i := range paras {
		paras[i] = paragraph(fmt.Sprintf("p%d_", i), 60)
	}
	text := strings.Join(paras, "\n\n")

	s := New(wordCounter{}, WithChunkSize(150), WithOverlap(30), WithMinChunkSize(10))
	chunks, err := s.Split(text, testMeta())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, c := range chunks {
		if c.Metadata.ChunkIndex != i {
			t.Fatalf("index gap at position %d: got %d", i, c.Metadata.ChunkIndex)
		}
		if c.Metadata.TotalChunks != len(chunks) {
			t.Fatalf("chunk %d reports total %d, want %d", i, c.Metadata.TotalChunks, len(chunks))
		}
	}
}
