package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DRSN-tech/seller-agent/internal/domain"
)

type fakeProductRepo struct {
	products []domain.Product
	listErr  error
}

func (f *fakeProductRepo) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	return p, nil
}

func (f *fakeProductRepo) Update(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	return p, nil
}

func (f *fakeProductRepo) Archive(ctx context.Context, id string) error { return nil }

func (f *fakeProductRepo) ListAll(ctx context.Context) ([]domain.Product, error) {
	return f.products, f.listErr
}

func (f *fakeProductRepo) ListFirst(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit > len(f.products) {
		limit = len(f.products)
	}
	return f.products[:limit], f.listErr
}

func (f *fakeProductRepo) Filter(ctx context.Context, category, search string) ([]domain.Product, error) {
	return f.products, f.listErr
}

func (f *fakeProductRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	byID := make(map[string]domain.Product, len(f.products))
	for _, p := range f.products {
		byID[p.ID] = p
	}
	var out []domain.Product
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeEmbeddingRepo struct {
	records     map[string]domain.EmbeddingRecord
	upserts     int
	failUpsertN int // номер вызова Upsert, начиная с которого возвращается ошибка; 0 — никогда
	scanErr     error
	existErr    error
}

func newFakeEmbeddingRepo() *fakeEmbeddingRepo {
	return &fakeEmbeddingRepo{records: make(map[string]domain.EmbeddingRecord)}
}

func (f *fakeEmbeddingRepo) Upsert(ctx context.Context, records []domain.EmbeddingRecord) error {
	f.upserts++
	if f.failUpsertN > 0 && f.upserts >= f.failUpsertN {
		return fmt.Errorf("vector store unavailable")
	}
	for _, r := range records {
		f.records[r.ProductID] = r
	}
	return nil
}

func (f *fakeEmbeddingRepo) ScanAll(ctx context.Context) ([]domain.EmbeddingRecord, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	out := make([]domain.EmbeddingRecord, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeEmbeddingRepo) ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	if f.existErr != nil {
		return nil, f.existErr
	}
	out := make(map[string]struct{})
	for _, id := range ids {
		if _, ok := f.records[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

type fakeEmbedder struct {
	calls   [][]string
	vectors map[string][]float32
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, texts)
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		if vec, ok := f.vectors[text]; ok {
			out = append(out, vec)
		} else {
			out = append(out, []float32{1, 0, 0})
		}
	}
	return out, nil
}

func catalogOf(n int) []domain.Product {
	out := make([]domain.Product, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Product{
			ID:   fmt.Sprintf("00000000-0000-0000-0000-%012d", i+1),
			Name: fmt.Sprintf("product-%d", i+1),
		})
	}
	return out
}

func TestEnsureCoverageEmbedsMissingInBatches(t *testing.T) {
	products := catalogOf(coverageBatchSize + 5)
	embRepo := newFakeEmbeddingRepo()
	embedder := &fakeEmbedder{}

	uc := NewRetrievalUC(&fakeProductRepo{products: products}, embRepo, embedder, nopLogger{})

	added, err := uc.EnsureCoverage(context.Background())

	require.NoError(t, err)
	assert.Equal(t, len(products), added)
	require.Len(t, embedder.calls, 2)
	assert.Len(t, embedder.calls[0], coverageBatchSize)
	assert.Len(t, embedder.calls[1], 5)
	assert.Len(t, embRepo.records, len(products))
}

func TestEnsureCoverageIdempotent(t *testing.T) {
	products := catalogOf(3)
	embRepo := newFakeEmbeddingRepo()
	embedder := &fakeEmbedder{}

	uc := NewRetrievalUC(&fakeProductRepo{products: products}, embRepo, embedder, nopLogger{})

	added, err := uc.EnsureCoverage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	added, err = uc.EnsureCoverage(context.Background())
	require.NoError(t, err)
	assert.Zero(t, added, "повторный проход не должен перевекторизовывать покрытые товары")
	assert.Len(t, embedder.calls, 1)
}

func TestEnsureCoverageStopsOnFailedBatchKeepingProgress(t *testing.T) {
	products := catalogOf(coverageBatchSize * 2)
	embRepo := newFakeEmbeddingRepo()
	embRepo.failUpsertN = 2
	embedder := &fakeEmbedder{}

	uc := NewRetrievalUC(&fakeProductRepo{products: products}, embRepo, embedder, nopLogger{})

	added, err := uc.EnsureCoverage(context.Background())

	require.NoError(t, err)
	assert.Equal(t, coverageBatchSize, added)
	assert.Len(t, embRepo.records, coverageBatchSize, "первый батч должен остаться сохранённым")
}

func TestSearchEmptyQueryShortCircuits(t *testing.T) {
	embedder := &fakeEmbedder{}
	uc := NewRetrievalUC(&fakeProductRepo{}, newFakeEmbeddingRepo(), embedder, nopLogger{})

	ids := uc.Search(context.Background(), "   ", 10)

	assert.Nil(t, ids)
	assert.Empty(t, embedder.calls, "пустой запрос не должен ходить к провайдеру")
}

func TestSearchRanksCatalog(t *testing.T) {
	products := []domain.Product{
		{ID: "11111111-1111-1111-1111-111111111111", Name: "red jacket"},
		{ID: "22222222-2222-2222-2222-222222222222", Name: "blue jeans"},
	}
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		products[0].EmbeddingText(): {0, 1, 0},
		products[1].EmbeddingText(): {1, 0, 0},
		"jeans":                     {1, 0, 0},
	}}

	uc := NewRetrievalUC(&fakeProductRepo{products: products}, newFakeEmbeddingRepo(), embedder, nopLogger{})

	ids := uc.Search(context.Background(), "jeans", 1)

	assert.Equal(t, []string{"22222222-2222-2222-2222-222222222222"}, ids)
}

func TestSearchEmptyStore(t *testing.T) {
	embedder := &fakeEmbedder{}
	uc := NewRetrievalUC(&fakeProductRepo{}, newFakeEmbeddingRepo(), embedder, nopLogger{})

	ids := uc.Search(context.Background(), "jeans", 5)

	assert.Empty(t, ids)
	assert.Empty(t, embedder.calls, "при пустом хранилище запрос не должен векторизоваться")
}

func TestSearchDegradesToEmptyOnStoreFailure(t *testing.T) {
	products := catalogOf(2)
	embRepo := newFakeEmbeddingRepo()
	embRepo.scanErr = fmt.Errorf("vector store unavailable")
	embRepo.existErr = embRepo.scanErr

	uc := NewRetrievalUC(&fakeProductRepo{products: products}, embRepo, &fakeEmbedder{}, nopLogger{})

	ids := uc.Search(context.Background(), "jeans", 5)

	assert.Empty(t, ids, "недоступное хранилище деградирует до пустой выдачи")
}
