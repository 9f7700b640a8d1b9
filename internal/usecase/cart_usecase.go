package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/DRSN-tech/seller-agent/internal/domain"
	"github.com/DRSN-tech/seller-agent/pkg/e"
	"github.com/DRSN-tech/seller-agent/pkg/logger"
)

// CartUseCase реализует корзину покупателя в рамках сессии диалога.
type CartUseCase struct {
	cartRepo    CartRepository
	sessionRepo SessionRepository
	productUC   ProductUC
	logger      logger.Logger
}

func NewCartUC(
	cartRepo CartRepository,
	sessionRepo SessionRepository,
	productUC ProductUC,
	logger logger.Logger,
) *CartUseCase {
	return &CartUseCase{
		cartRepo:    cartRepo,
		sessionRepo: sessionRepo,
		productUC:   productUC,
		logger:      logger,
	}
}

// AddToCart добавляет товар в корзину сессии; повторное добавление того же
// товара суммирует количество. Возвращает актуальное содержимое корзины.
func (c *CartUseCase) AddToCart(ctx context.Context, sessionID, productID string, quantity int32) ([]CartItemInfo, error) {
	const op = "CartUseCase.AddToCart"

	if err := validateSessionID(sessionID); err != nil {
		return nil, e.Wrap(op, err)
	}
	if _, err := uuid.Parse(productID); err != nil {
		return nil, e.Wrap(op, e.ErrProductNotFound)
	}
	if quantity <= 0 {
		return nil, e.Wrap(op, e.ErrQuantityMustBePositive)
	}

	if _, err := c.sessionRepo.Get(ctx, sessionID); err != nil {
		return nil, e.Wrap(op, err)
	}

	products, err := c.productUC.GetProductsInfo(ctx, []string{productID})
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if len(products) == 0 {
		return nil, e.Wrap(op, e.ErrProductNotFound)
	}

	if _, err := c.cartRepo.Upsert(ctx, domain.NewCartItem(sessionID, productID, quantity)); err != nil {
		return nil, e.Wrap(op, err)
	}

	return c.GetCart(ctx, sessionID)
}

// GetCart возвращает содержимое корзины с данными товаров.
func (c *CartUseCase) GetCart(ctx context.Context, sessionID string) ([]CartItemInfo, error) {
	const op = "CartUseCase.GetCart"

	if err := validateSessionID(sessionID); err != nil {
		return nil, e.Wrap(op, err)
	}

	items, err := c.cartRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if len(items) == 0 {
		return []CartItemInfo{}, nil
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := c.productUC.GetProductsInfo(ctx, ids)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	byID := make(map[string]ProductInfo, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	result := make([]CartItemInfo, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			// Товар успел уйти в архив: позиция не показывается
			c.logger.Debugf("Cart references missing product %s, skipping", item.ProductID)
			continue
		}
		result = append(result, CartItemInfo{Product: product, Quantity: item.Quantity})
	}

	return result, nil
}

// RemoveFromCart убирает одну позицию из корзины.
func (c *CartUseCase) RemoveFromCart(ctx context.Context, sessionID, productID string) error {
	const op = "CartUseCase.RemoveFromCart"

	if err := validateSessionID(sessionID); err != nil {
		return e.Wrap(op, err)
	}

	if err := c.cartRepo.Delete(ctx, sessionID, productID); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// ClearCart опустошает корзину сессии.
func (c *CartUseCase) ClearCart(ctx context.Context, sessionID string) error {
	const op = "CartUseCase.ClearCart"

	if err := validateSessionID(sessionID); err != nil {
		return e.Wrap(op, err)
	}

	if err := c.cartRepo.Clear(ctx, sessionID); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

func validateSessionID(sessionID string) error {
	if sessionID == "" {
		return e.ErrSessionIDRequired
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		return e.ErrInvalidSessionID
	}
	return nil
}
