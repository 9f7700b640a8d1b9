package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DRSN-tech/seller-agent/internal/domain"
	"github.com/DRSN-tech/seller-agent/pkg/e"
)

type fakeCartRepo struct {
	items map[string]map[string]*domain.CartItem // session -> product -> item
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{items: make(map[string]map[string]*domain.CartItem)}
}

func (f *fakeCartRepo) Upsert(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error) {
	session, ok := f.items[item.SessionID]
	if !ok {
		session = make(map[string]*domain.CartItem)
		f.items[item.SessionID] = session
	}
	if existing, ok := session[item.ProductID]; ok {
		existing.Quantity += item.Quantity
		return existing, nil
	}
	session[item.ProductID] = item
	return item, nil
}

func (f *fakeCartRepo) ListBySession(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	var out []domain.CartItem
	for _, item := range f.items[sessionID] {
		out = append(out, *item)
	}
	return out, nil
}

func (f *fakeCartRepo) Delete(ctx context.Context, sessionID, productID string) error {
	delete(f.items[sessionID], productID)
	return nil
}

func (f *fakeCartRepo) Clear(ctx context.Context, sessionID string) error {
	delete(f.items, sessionID)
	return nil
}

const (
	cartSessionID = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	cartProductID = "11111111-1111-1111-1111-111111111111"
)

func newTestCartUC(repo *fakeCartRepo) *CartUseCase {
	sessions := &fakeSessionRepo{sessions: map[string]*domain.ChatSession{
		cartSessionID: {ID: cartSessionID},
	}}
	products := &fakeProductUC{products: map[string]ProductInfo{
		cartProductID: {ID: cartProductID, Name: "Skinny Jeans", Price: "1999.90"},
	}}

	return NewCartUC(repo, sessions, products, nopLogger{})
}

func TestAddToCartMergesQuantity(t *testing.T) {
	uc := newTestCartUC(newFakeCartRepo())

	_, err := uc.AddToCart(context.Background(), cartSessionID, cartProductID, 1)
	require.NoError(t, err)

	items, err := uc.AddToCart(context.Background(), cartSessionID, cartProductID, 2)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, int32(3), items[0].Quantity)
	assert.Equal(t, "Skinny Jeans", items[0].Product.Name)
}

func TestAddToCartValidation(t *testing.T) {
	uc := newTestCartUC(newFakeCartRepo())

	cases := []struct {
		name      string
		sessionID string
		productID string
		quantity  int32
		wantErr   error
	}{
		{name: "missing session", sessionID: "", productID: cartProductID, quantity: 1, wantErr: e.ErrSessionIDRequired},
		{name: "bad session id", sessionID: "nope", productID: cartProductID, quantity: 1, wantErr: e.ErrInvalidSessionID},
		{name: "bad product id", sessionID: cartSessionID, productID: "nope", quantity: 1, wantErr: e.ErrProductNotFound},
		{name: "zero quantity", sessionID: cartSessionID, productID: cartProductID, quantity: 0, wantErr: e.ErrQuantityMustBePositive},
		{name: "unknown product", sessionID: cartSessionID, productID: "22222222-2222-2222-2222-222222222222", quantity: 1, wantErr: e.ErrProductNotFound},
		{name: "unknown session", sessionID: "33333333-3333-3333-3333-333333333333", productID: cartProductID, quantity: 1, wantErr: e.ErrSessionNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.AddToCart(context.Background(), tc.sessionID, tc.productID, tc.quantity)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestClearAndRemoveFromCart(t *testing.T) {
	repo := newFakeCartRepo()
	uc := newTestCartUC(repo)

	_, err := uc.AddToCart(context.Background(), cartSessionID, cartProductID, 2)
	require.NoError(t, err)

	require.NoError(t, uc.RemoveFromCart(context.Background(), cartSessionID, cartProductID))

	items, err := uc.GetCart(context.Background(), cartSessionID)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = uc.AddToCart(context.Background(), cartSessionID, cartProductID, 1)
	require.NoError(t, err)
	require.NoError(t, uc.ClearCart(context.Background(), cartSessionID))

	items, err = uc.GetCart(context.Background(), cartSessionID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
