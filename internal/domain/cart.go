package domain

import "time"

// CartItem — позиция корзины, уникальная в рамках пары (сессия, товар).
type CartItem struct {
	ID        int64
	SessionID string
	ProductID string
	Quantity  int32
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func NewCartItem(sessionID, productID string, quantity int32) *CartItem {
	return &CartItem{
		SessionID: sessionID,
		ProductID: productID,
		Quantity:  quantity,
	}
}
