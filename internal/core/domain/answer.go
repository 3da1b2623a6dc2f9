package domain

// SourceInfo identifies one retrieved document that grounded an answer.
type SourceInfo struct {
	Source string  `json:"source"`
	Title  string  `json:"title"`
	URL    string  `json:"url"`
	Score  float64 `json:"score"`
}

// Answer is the structured result of one retrieval/grounding query.
// It is constructed fresh per query and never persisted.
type Answer struct {
	// Answer is the generated (or fixed terminal-state) answer text.
	Answer string `json:"answer"`

	// SourcesUsed is the number of documents that passed the
	// relevance threshold and were placed in the prompt context.
	SourcesUsed int `json:"sources_used"`

	// SourcesInfo lists those documents in retrieved order.
	SourcesInfo []SourceInfo `json:"sources_info,omitempty"`

	// Model is the generation model identifier. Empty when no
	// generation call was made (terminal retrieval states).
	Model string `json:"model,omitempty"`
}

// Grounded reports whether the answer was produced by the generation
// service from retrieved context, as opposed to a terminal state.
func (a *Answer) Grounded() bool {
	return a.SourcesUsed > 0
}

// AskOptions configures one retrieval/grounding query.
type AskOptions struct {
	// NResults is the number of nearest records requested from the
	// vector store. Defaults to 5 when zero.
	NResults int

	// SourceFilter restricts retrieval to one regulator source code.
	// Empty means no restriction.
	SourceFilter string
}
