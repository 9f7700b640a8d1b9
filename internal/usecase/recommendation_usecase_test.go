package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DRSN-tech/seller-agent/internal/domain"
	"github.com/DRSN-tech/seller-agent/pkg/e"
)

type fakeRetrieval struct {
	ids []string
}

func (f *fakeRetrieval) EnsureCoverage(ctx context.Context) (int, error) { return 0, nil }

func (f *fakeRetrieval) Search(ctx context.Context, query string, topK int) []string {
	return f.ids
}

type fakeProductUC struct {
	products map[string]ProductInfo
}

func (f *fakeProductUC) CreateProduct(ctx context.Context, req *CreateProductReq) (*ProductInfo, error) {
	return nil, nil
}

func (f *fakeProductUC) UpdateProduct(ctx context.Context, req *UpdateProductReq) (*ProductInfo, error) {
	return nil, nil
}

func (f *fakeProductUC) ArchiveProduct(ctx context.Context, id string) error { return nil }

func (f *fakeProductUC) ListProducts(ctx context.Context, category, search string) ([]ProductInfo, error) {
	return nil, nil
}

func (f *fakeProductUC) GetProductsInfo(ctx context.Context, ids []string) ([]ProductInfo, error) {
	var out []ProductInfo
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeChat struct {
	reply string
	err   error
	turns []ChatTurn
}

func (f *fakeChat) Complete(ctx context.Context, turns []ChatTurn) (string, error) {
	f.turns = turns
	return f.reply, f.err
}

func testCandidates() map[string]ProductInfo {
	return map[string]ProductInfo{
		"p1": {ID: "p1", Name: "Skinny Jeans", Description: "Classic blue denim jeans", Tags: []string{"denim"}},
		"p2": {ID: "p2", Name: "Winter Jacket", Description: "Warm hooded jacket", Tags: []string{"outerwear"}},
		"p3": {ID: "p3", Name: "Running Shoes", Description: "Lightweight sneakers", Tags: []string{"sport"}},
	}
}

func newTestRecommendationUC(retrieval *fakeRetrieval, chat *fakeChat) *RecommendationUseCase {
	candidates := testCandidates()
	var catalog []domain.Product
	for _, id := range []string{"p1", "p2", "p3"} {
		c := candidates[id]
		catalog = append(catalog, domain.Product{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Tags:        c.Tags,
		})
	}

	return NewRecommendationUC(
		retrieval,
		&fakeProductUC{products: candidates},
		&fakeProductRepo{products: catalog},
		chat,
		nopLogger{},
		rand.New(rand.NewSource(1)),
	)
}

func TestGetRecommendationHappyPath(t *testing.T) {
	retrieval := &fakeRetrieval{ids: []string{"p1", "p2"}}
	chat := &fakeChat{reply: `{"response": "The Skinny Jeans are perfect for you.", "products": ["p1"]}`}

	uc := newTestRecommendationUC(retrieval, chat)

	rec, fallback := uc.GetRecommendation(context.Background(), "I need jeans", nil)

	assert.False(t, fallback)
	assert.Equal(t, "The Skinny Jeans are perfect for you.", rec.Response)
	assert.Equal(t, []string{"p1"}, rec.ProductIDs)
}

func TestGetRecommendationDropsUnknownIDs(t *testing.T) {
	retrieval := &fakeRetrieval{ids: []string{"p1"}}
	chat := &fakeChat{reply: `{"response": "ok", "products": ["made-up", "p1"]}`}

	uc := newTestRecommendationUC(retrieval, chat)

	rec, fallback := uc.GetRecommendation(context.Background(), "jeans", nil)

	assert.False(t, fallback)
	assert.Equal(t, []string{"p1"}, rec.ProductIDs, "идентификаторы вне множества кандидатов отбрасываются")
}

func TestGetRecommendationFallbackOnLLMFailure(t *testing.T) {
	retrieval := &fakeRetrieval{ids: []string{"p1", "p2", "p3"}}
	chat := &fakeChat{err: e.ErrAllKeysFailed}

	uc := newTestRecommendationUC(retrieval, chat)

	rec, fallback := uc.GetRecommendation(context.Background(), "jeans", nil)

	assert.True(t, fallback)
	require.NotEmpty(t, rec.Response)
	assert.Equal(t, []string{"p1"}, rec.ProductIDs, "keyword-фоллбэк должен найти джинсы по подстроке")
}

func TestGetRecommendationFallbackOnUnparsableReply(t *testing.T) {
	retrieval := &fakeRetrieval{ids: []string{"p1"}}
	chat := &fakeChat{reply: "I recommend the jeans, they are great!"}

	uc := newTestRecommendationUC(retrieval, chat)

	rec, fallback := uc.GetRecommendation(context.Background(), "jeans", nil)

	assert.True(t, fallback)
	assert.NotEmpty(t, rec.Response)
}

func TestGetRecommendationFallbackWhenAllIDsUnknown(t *testing.T) {
	retrieval := &fakeRetrieval{ids: []string{"p1"}}
	chat := &fakeChat{reply: `{"response": "ok", "products": ["ghost"]}`}

	uc := newTestRecommendationUC(retrieval, chat)

	_, fallback := uc.GetRecommendation(context.Background(), "jeans", nil)

	assert.True(t, fallback, "рекомендация без единого известного товара деградирует в fallback")
}

func TestGetRecommendationFallbackRandomSampleWhenNoKeywordHits(t *testing.T) {
	retrieval := &fakeRetrieval{ids: []string{"p1", "p2", "p3"}}
	chat := &fakeChat{err: e.ErrAllKeysFailed}

	uc := newTestRecommendationUC(retrieval, chat)

	rec, fallback := uc.GetRecommendation(context.Background(), "qwertyuiop", nil)

	assert.True(t, fallback)
	assert.Len(t, rec.ProductIDs, 3, "при отсутствии совпадений выборка ограничена размером каталога")
	assert.NotEmpty(t, rec.Response)
}

func TestGetRecommendationFallbackScoresWholeCatalog(t *testing.T) {
	jeansID := "00000000-0000-0000-0000-00000000jean"
	catalog := catalogOf(retrieveTopK)
	catalog = append(catalog, domain.Product{
		ID:          jeansID,
		Name:        "Skinny Jeans",
		Description: "Classic blue denim jeans",
	})

	resolvable := make(map[string]ProductInfo, len(catalog))
	widgetIDs := make([]string, 0, retrieveTopK)
	for i := range catalog {
		resolvable[catalog[i].ID] = NewProductInfoFromProduct(&catalog[i])
		if catalog[i].ID != jeansID {
			widgetIDs = append(widgetIDs, catalog[i].ID)
		}
	}

	uc := NewRecommendationUC(
		&fakeRetrieval{ids: widgetIDs},
		&fakeProductUC{products: resolvable},
		&fakeProductRepo{products: catalog},
		&fakeChat{err: e.ErrAllKeysFailed},
		nopLogger{},
		rand.New(rand.NewSource(1)),
	)

	rec, fallback := uc.GetRecommendation(context.Background(), "jeans", nil)

	assert.True(t, fallback)
	assert.Contains(t, rec.ProductIDs, jeansID,
		"keyword-фоллбэк обходит весь каталог, а не только кандидатов векторного поиска")
}

func TestGetRecommendationFallbackDegradesToCandidatesOnCatalogFailure(t *testing.T) {
	uc := NewRecommendationUC(
		&fakeRetrieval{ids: []string{"p1"}},
		&fakeProductUC{products: testCandidates()},
		&fakeProductRepo{listErr: fmt.Errorf("db down")},
		&fakeChat{err: e.ErrAllKeysFailed},
		nopLogger{},
		rand.New(rand.NewSource(1)),
	)

	rec, fallback := uc.GetRecommendation(context.Background(), "jeans", nil)

	assert.True(t, fallback)
	assert.Equal(t, []string{"p1"}, rec.ProductIDs,
		"при недоступном каталоге fallback работает по кандидатам RETRIEVE")
}

func TestGetRecommendationUsesCatalogHeadWhenSearchEmpty(t *testing.T) {
	retrieval := &fakeRetrieval{}
	chat := &fakeChat{reply: `{"response": "ok", "products": ["p2"]}`}

	uc := newTestRecommendationUC(retrieval, chat)

	rec, fallback := uc.GetRecommendation(context.Background(), "jacket", nil)

	assert.False(t, fallback)
	assert.Equal(t, []string{"p2"}, rec.ProductIDs, "кандидаты должны прийти из головы каталога")
}

func TestGetRecommendationTotalOnEmptyCatalog(t *testing.T) {
	uc := NewRecommendationUC(
		&fakeRetrieval{},
		&fakeProductUC{},
		&fakeProductRepo{},
		&fakeChat{err: e.ErrNoAPIKeys},
		nopLogger{},
		rand.New(rand.NewSource(1)),
	)

	rec, fallback := uc.GetRecommendation(context.Background(), "anything", nil)

	assert.True(t, fallback)
	require.NotNil(t, rec)
	assert.NotEmpty(t, rec.Response)
	assert.Empty(t, rec.ProductIDs)
}

func TestBuildContextWindowsHistory(t *testing.T) {
	uc := newTestRecommendationUC(&fakeRetrieval{}, &fakeChat{})

	history := make([]domain.ChatMessage, 0, 10)
	for i := 0; i < 10; i++ {
		history = append(history, domain.ChatMessage{
			Role:    domain.RoleUser,
			Content: fmt.Sprintf("message %d", i),
		})
	}

	turns := uc.buildContext("current", history, nil)

	require.Len(t, turns, historyWindow+2)
	assert.Equal(t, "system", turns[0].Role)
	assert.Equal(t, "message 4", turns[1].Content, "в промпт попадают только последние реплики")
	assert.Equal(t, "current", turns[len(turns)-1].Content)
}
