package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DRSN-tech/seller-agent/internal/domain"
	"github.com/DRSN-tech/seller-agent/internal/usecase"
	"github.com/DRSN-tech/seller-agent/pkg/e"
)

type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...any)            {}
func (nopLogger) Infof(format string, args ...any)             {}
func (nopLogger) Warnf(format string, args ...any)             {}
func (nopLogger) Errorf(err error, format string, args ...any) {}

type fakeChatUC struct {
	recommendRes *usecase.RecommendRes
	recommendErr error
	convRes      *usecase.ConversationRes
	convErr      error
}

func (f *fakeChatUC) Recommend(ctx context.Context, req *usecase.RecommendReq) (*usecase.RecommendRes, error) {
	if f.recommendErr != nil {
		return nil, f.recommendErr
	}
	return f.recommendRes, nil
}

func (f *fakeChatUC) GetConversation(ctx context.Context, sessionID string) (*usecase.ConversationRes, error) {
	if f.convErr != nil {
		return nil, f.convErr
	}
	return f.convRes, nil
}

func (f *fakeChatUC) CreateSession(ctx context.Context) (*domain.ChatSession, error) {
	return &domain.ChatSession{ID: "9f3b2c44-1a57-4d2e-9f70-0d2fb51a9f01"}, nil
}

type fakeProductUC struct {
	products []usecase.ProductInfo
	err      error
}

func (f *fakeProductUC) CreateProduct(ctx context.Context, req *usecase.CreateProductReq) (*usecase.ProductInfo, error) {
	return nil, f.err
}

func (f *fakeProductUC) UpdateProduct(ctx context.Context, req *usecase.UpdateProductReq) (*usecase.ProductInfo, error) {
	return nil, f.err
}

func (f *fakeProductUC) ArchiveProduct(ctx context.Context, id string) error {
	return f.err
}

func (f *fakeProductUC) ListProducts(ctx context.Context, category, search string) ([]usecase.ProductInfo, error) {
	return f.products, f.err
}

func (f *fakeProductUC) GetProductsInfo(ctx context.Context, ids []string) ([]usecase.ProductInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	var res []usecase.ProductInfo
	for _, id := range ids {
		for _, p := range f.products {
			if p.ID == id {
				res = append(res, p)
			}
		}
	}
	return res, nil
}

type fakeCartUC struct {
	items []usecase.CartItemInfo
	err   error
}

func (f *fakeCartUC) AddToCart(ctx context.Context, sessionID, productID string, quantity int32) ([]usecase.CartItemInfo, error) {
	return f.items, f.err
}

func (f *fakeCartUC) GetCart(ctx context.Context, sessionID string) ([]usecase.CartItemInfo, error) {
	return f.items, f.err
}

func (f *fakeCartUC) RemoveFromCart(ctx context.Context, sessionID, productID string) error {
	return f.err
}

func (f *fakeCartUC) ClearCart(ctx context.Context, sessionID string) error {
	return f.err
}

type fakeRetrievalUC struct {
	ids []string
	err error
}

func (f *fakeRetrievalUC) EnsureCoverage(ctx context.Context) (int, error) {
	return len(f.ids), f.err
}

func (f *fakeRetrievalUC) Search(ctx context.Context, query string, topK int) []string {
	return f.ids
}

func newTestRouter(chatUC usecase.ChatUC, prUC usecase.ProductUC, cartUC usecase.CartUC, retrievalUC usecase.RetrievalUC) *chi.Mux {
	mux := chi.NewRouter()
	NewRouter(mux, nopLogger{}).Init(chatUC, prUC, cartUC, retrievalUC)
	return mux
}

func testProducts() []usecase.ProductInfo {
	return []usecase.ProductInfo{
		{ID: "p1", Name: "Skinny Jeans", Price: "59.99", Category: "jeans"},
		{ID: "p2", Name: "Winter Jacket", Price: "120.00", Category: "outerwear"},
	}
}

func TestRecommendEndpoint(t *testing.T) {
	chatUC := &fakeChatUC{
		recommendRes: usecase.NewRecommendRes("s1", "Take a look at these jeans.", testProducts()[:1], false),
	}
	router := newTestRouter(chatUC, &fakeProductUC{}, &fakeCartUC{}, &fakeRetrievalUC{})

	body := bytes.NewBufferString(`{"session_id": "s1", "message": "need jeans"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommend", body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var res recommendResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, "s1", res.SessionID)
	assert.False(t, res.Fallback)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "Skinny Jeans", res.Products[0].Name)
}

func TestRecommendEndpointBadJSON(t *testing.T) {
	router := newTestRouter(&fakeChatUC{}, &fakeProductUC{}, &fakeCartUC{}, &fakeRetrievalUC{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommend", bytes.NewBufferString("{broken"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommendEndpointValidationError(t *testing.T) {
	chatUC := &fakeChatUC{recommendErr: e.ErrMessageRequired}
	router := newTestRouter(chatUC, &fakeProductUC{}, &fakeCartUC{}, &fakeRetrievalUC{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommend", bytes.NewBufferString(`{"message": ""}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errRes ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errRes))
	assert.Equal(t, e.ErrMessageRequired.Error(), errRes.Message)
}

func TestGetConversationNotFound(t *testing.T) {
	chatUC := &fakeChatUC{convErr: e.ErrSessionNotFound}
	router := newTestRouter(chatUC, &fakeProductUC{}, &fakeCartUC{}, &fakeRetrievalUC{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversation/9f3b2c44-1a57-4d2e-9f70-0d2fb51a9f01", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateSessionEndpoint(t *testing.T) {
	router := newTestRouter(&fakeChatUC{}, &fakeProductUC{}, &fakeCartUC{}, &fakeRetrievalUC{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var res sessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.NotEmpty(t, res.SessionID)
}

func TestGetProductNotFound(t *testing.T) {
	router := newTestRouter(&fakeChatUC{}, &fakeProductUC{products: testProducts()}, &fakeCartUC{}, &fakeRetrievalUC{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/unknown", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListProductsEndpoint(t *testing.T) {
	router := newTestRouter(&fakeChatUC{}, &fakeProductUC{products: testProducts()}, &fakeCartUC{}, &fakeRetrievalUC{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?category=jeans", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var res []productResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Len(t, res, 2)
}

func TestSearchEndpoint(t *testing.T) {
	router := newTestRouter(
		&fakeChatUC{},
		&fakeProductUC{products: testProducts()},
		&fakeCartUC{},
		&fakeRetrievalUC{ids: []string{"p2"}},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewBufferString(`{"query": "warm jacket"}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var res []productResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	require.Len(t, res, 1)
	assert.Equal(t, "Winter Jacket", res[0].Name)
}

func TestAddToCartQuantityError(t *testing.T) {
	cartUC := &fakeCartUC{err: e.ErrQuantityMustBePositive}
	router := newTestRouter(&fakeChatUC{}, &fakeProductUC{}, cartUC, &fakeRetrievalUC{})

	body := bytes.NewBufferString(`{"product_id": "p1", "quantity": 0}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/9f3b2c44-1a57-4d2e-9f70-0d2fb51a9f01", body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateProductRejectsNonMultipart(t *testing.T) {
	router := newTestRouter(&fakeChatUC{}, &fakeProductUC{}, &fakeCartUC{}, &fakeRetrievalUC{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", bytes.NewBufferString(`{"name": "x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBackfillEndpoint(t *testing.T) {
	router := newTestRouter(&fakeChatUC{}, &fakeProductUC{}, &fakeCartUC{}, &fakeRetrievalUC{ids: []string{"p1", "p2"}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/embeddings/backfill", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var res backfillResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, 2, res.Added)
}
