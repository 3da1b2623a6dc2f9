package cli

import (
	"context"

	"github.com/regwatch-labs/regrag-cli/internal/config"
	"github.com/regwatch-labs/regrag-cli/internal/core/domain"
	"github.com/regwatch-labs/regrag-cli/internal/core/ports/driving"
)

// fakeAskService is an AskService double for command tests.
type fakeAskService struct {
	answer *domain.Answer
	hits   []domain.VectorHit
	err    error

	lastQuery string
	lastOpts  domain.AskOptions
}

func (f *fakeAskService) Ask(_ context.Context, query string, opts domain.AskOptions) (*domain.Answer, error) {
	f.lastQuery = query
	f.lastOpts = opts
	return f.answer, f.err
}

func (f *fakeAskService) Search(_ context.Context, query string, _ int, _ string) ([]domain.VectorHit, error) {
	f.lastQuery = query
	return f.hits, f.err
}

// fakeVectorizeService is a VectorizeService double.
type fakeVectorizeService struct {
	report *driving.VectorizeReport
	err    error

	calls []driving.VectorizeOptions
}

func (f *fakeVectorizeService) Vectorize(_ context.Context, opts driving.VectorizeOptions) (*driving.VectorizeReport, error) {
	f.calls = append(f.calls, opts)
	return f.report, f.err
}

// fakeArticleStore is an ArticleStore double.
type fakeArticleStore struct {
	saved    []domain.Article
	existing map[string]bool
	count    int
	bySource map[string]int
}

func (f *fakeArticleStore) Save(_ context.Context, a domain.Article) (bool, error) {
	if err := a.Validate(); err != nil {
		return false, err
	}
	if f.existing[a.URL] {
		return false, nil
	}
	f.saved = append(f.saved, a)
	return true, nil
}

func (f *fakeArticleStore) ListVectorizable(context.Context) ([]domain.Article, error) {
	return f.saved, nil
}

func (f *fakeArticleStore) Count(context.Context) (int, error) { return f.count, nil }

func (f *fakeArticleStore) CountBySource(context.Context) (map[string]int, error) {
	return f.bySource, nil
}

func (f *fakeArticleStore) Close() error { return nil }

// fakeVectorStore only supports Count, which is all the commands use
// directly.
type fakeVectorStore struct {
	count int
}

func (f *fakeVectorStore) Add(context.Context, []domain.VectorRecord) error { return nil }

func (f *fakeVectorStore) Search(context.Context, []float32, int, *domain.MetadataFilter) ([]domain.VectorHit, error) {
	return nil, nil
}

func (f *fakeVectorStore) Count(context.Context) (int, error) { return f.count, nil }

func (f *fakeVectorStore) GetAll(context.Context, int) ([]domain.StoredRecord, error) {
	return nil, nil
}

func (f *fakeVectorStore) Reset(context.Context) error { return nil }
func (f *fakeVectorStore) Close() error                { return nil }

// setupTestDeps installs fake dependencies and returns them with a
// cleanup restoring the previous state.
func setupTestDeps() (*Deps, func()) {
	previous := deps
	d := &Deps{
		Config:       config.Default(),
		ArticleStore: &fakeArticleStore{existing: map[string]bool{}},
		VectorStore:  &fakeVectorStore{},
		AskService:   &fakeAskService{},
		VectorizeService: &fakeVectorizeService{
			report: &driving.VectorizeReport{},
		},
	}
	SetDeps(d)
	return d, func() { deps = previous }
}
