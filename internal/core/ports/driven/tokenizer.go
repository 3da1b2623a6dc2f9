package driven

// TokenCounter counts tokens for a text span under the embedding
// model's tokenization scheme. Implementations must be pure: same
// text always yields the same count, with no I/O per call.
type TokenCounter interface {
	CountTokens(text string) int
}
