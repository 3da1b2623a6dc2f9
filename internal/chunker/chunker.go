// Package chunker splits article text into token-bounded, ordered,
// metadata-tagged segments suitable for embedding.
package chunker

import (
	"strings"

	"github.com/regwatch-labs/regrag-cli/internal/core/domain"
	"github.com/regwatch-labs/regrag-cli/internal/core/ports/driven"
)

// Default segmentation parameters, in tokens.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultMinChunkSize = 100
)

// Joiners used when reassembling accumulated units into chunk text.
const (
	paragraphJoiner = "\n\n"
	sentenceJoiner  = ". "
)

// Splitter produces chunks from article text. Paragraphs are the
// primary segmentation unit; a paragraph that alone exceeds the chunk
// size is split further on sentence boundaries.
type Splitter struct {
	counter      driven.TokenCounter
	chunkSize    int
	chunkOverlap int
	minChunkSize int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk budget in tokens.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets how many trailing tokens of a flushed chunk are
// carried into the next one. Zero disables overlap.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.chunkOverlap = overlap
		}
	}
}

// WithMinChunkSize sets the minimum token count below which a
// trailing buffer is dropped instead of emitted.
func WithMinChunkSize(size int) Option {
	return func(s *Splitter) {
		if size >= 0 {
			s.minChunkSize = size
		}
	}
}

// New creates a splitter counting tokens with counter.
func New(counter driven.TokenCounter, opts ...Option) *Splitter {
	s := &Splitter{
		counter:      counter,
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		minChunkSize: DefaultMinChunkSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Overlap must leave room for fresh content in every chunk.
	if s.chunkOverlap >= s.chunkSize {
		s.chunkOverlap = s.chunkSize / 4
	}

	return s
}

// unit is one indivisible accumulation step: a paragraph, or a
// sentence when a paragraph had to be split further.
type unit struct {
	text   string
	tokens int
}

// draft is a finished chunk before index assignment.
type draft struct {
	text   string
	tokens int
}

// accumulator is the running buffer of units for the chunk being
// built. Seed units are overlap carried from the previous chunk and
// never justify emitting a chunk on their own.
type accumulator struct {
	units  []unit
	tokens int
	fresh  int
}

func (a *accumulator) add(u unit, seed bool) {
	a.units = append(a.units, u)
	a.tokens += u.tokens
	if !seed {
		a.fresh++
	}
}

func (a *accumulator) reset() {
	a.units = nil
	a.tokens = 0
	a.fresh = 0
}

// tail returns the trailing units whose cumulative token count fits
// within maxTokens, preserving order.
func (a *accumulator) tail(maxTokens int) []unit {
	if maxTokens <= 0 {
		return nil
	}
	start := len(a.units)
	budget := maxTokens
	for start > 0 && a.units[start-1].tokens <= budget {
		budget -= a.units[start-1].tokens
		start--
	}
	return a.units[start:]
}

// trimSeeds drops leading seed units until incoming fits the budget.
// Only meaningful right after an emit, when the buffer holds seeds
// alone; a buffer with fresh content is never trimmed.
func (a *accumulator) trimSeeds(incoming, budget int) {
	if a.fresh > 0 {
		return
	}
	for len(a.units) > 0 && a.tokens+incoming > budget {
		a.tokens -= a.units[0].tokens
		a.units = a.units[1:]
	}
}

func (a *accumulator) join(joiner string) string {
	parts := make([]string, len(a.units))
	for i, u := range a.units {
		parts[i] = u.text
	}
	return strings.Join(parts, joiner)
}

// Split divides text into ordered chunks carrying meta. ChunkIndex is
// assigned densely from 0 and TotalChunks is fixed once the full
// sequence is known. Empty text is a caller error.
func (s *Splitter) Split(text string, meta domain.ChunkMetadata) ([]domain.Chunk, error) {
	if text == "" {
		return nil, domain.ErrEmptyContent
	}

	total := s.counter.CountTokens(text)
	if total <= s.chunkSize {
		meta.ChunkIndex = 0
		meta.TotalChunks = 1
		return []domain.Chunk{{Text: text, Metadata: meta, TokenCount: total}}, nil
	}

	var drafts []draft
	acc := &accumulator{}

	// emit finishes the current buffer as a chunk. Buffers holding
	// only overlap seeds are discarded, never emitted. When gateMin
	// is set, buffers below the minimum size are dropped.
	emit := func(joiner string, gateMin bool) {
		if acc.fresh == 0 {
			return
		}
		if !gateMin || acc.tokens >= s.minChunkSize {
			drafts = append(drafts, draft{text: acc.join(joiner), tokens: acc.tokens})
		}
		seeds := acc.tail(s.chunkOverlap)
		carried := make([]unit, len(seeds))
		copy(carried, seeds)
		acc.reset()
		for _, u := range carried {
			acc.add(u, true)
		}
	}

	// place adds one unit, flushing first on overflow. Paragraph
	// overflows are gated on the minimum chunk size; sentence
	// overflows inside a forced split are not.
	place := func(u unit, joiner string) {
		if acc.tokens+u.tokens > s.chunkSize && acc.fresh > 0 {
			emit(joiner, joiner == paragraphJoiner)
		}
		acc.trimSeeds(u.tokens, s.chunkSize)
		acc.add(u, false)
	}

	for _, para := range strings.Split(text, paragraphJoiner) {
		paraTokens := s.counter.CountTokens(para)

		if paraTokens > s.chunkSize {
			// The paragraph alone busts the budget: flush whatever
			// is pending, then accumulate at sentence granularity.
			// A sentence that still exceeds the budget becomes its
			// own oversized chunk rather than being dropped.
			emit(paragraphJoiner, false)
			for _, sent := range strings.Split(para, sentenceJoiner) {
				place(unit{text: sent, tokens: s.counter.CountTokens(sent)}, sentenceJoiner)
			}
			// Leftover sentences stay buffered and join the
			// following paragraphs.
			continue
		}

		place(unit{text: para, tokens: paraTokens}, paragraphJoiner)
	}

	emit(paragraphJoiner, true)

	chunks := make([]domain.Chunk, len(drafts))
	for i, d := range drafts {
		m := meta
		m.ChunkIndex = i
		m.TotalChunks = len(drafts)
		chunks[i] = domain.Chunk{Text: d.text, Metadata: m, TokenCount: d.tokens}
	}

	return chunks, nil
}
