package pgdb

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"

	"github.com/DRSN-tech/seller-agent/internal/domain"
	"github.com/DRSN-tech/seller-agent/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/seller-agent/pkg/e"
)

// CartRepo реализует репозиторий корзины поверх PostgreSQL.
type CartRepo struct {
	pool *pgxpool.Pool
	conv converter.CartItemConverter
}

func NewCartRepo(pool *pgxpool.Pool, conv converter.CartItemConverter) *CartRepo {
	return &CartRepo{pool: pool, conv: conv}
}

// Upsert добавляет позицию в корзину; для существующей позиции количество
// суммируется.
func (c *CartRepo) Upsert(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error) {
	query := `
		INSERT INTO cart_items (session_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id, product_id)
		DO UPDATE SET
			quantity = cart_items.quantity + EXCLUDED.quantity,
			updated_at = NOW()
		RETURNING id, session_id, product_id, quantity, created_at, updated_at;
	`

	var model converter.CartItemModel
	if err := c.pool.QueryRow(ctx, query, item.SessionID, item.ProductID, item.Quantity).
		Scan(
			&model.ID, &model.SessionID, &model.ProductID,
			&model.Quantity, &model.CreatedAt, &model.UpdatedAt,
		); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(&model), nil
}

// ListBySession возвращает позиции корзины в порядке добавления.
func (c *CartRepo) ListBySession(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	query := `
		SELECT id, session_id, product_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE session_id = $1
		ORDER BY id;
	`

	rows, err := c.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	var models []*converter.CartItemModel
	for rows.Next() {
		var model converter.CartItemModel
		if err := rows.Scan(
			&model.ID, &model.SessionID, &model.ProductID,
			&model.Quantity, &model.CreatedAt, &model.UpdatedAt,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		models = append(models, &model)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToArrEntity(models), nil
}

// Delete убирает одну позицию из корзины.
func (c *CartRepo) Delete(ctx context.Context, sessionID, productID string) error {
	query := `DELETE FROM cart_items WHERE session_id = $1 AND product_id = $2;`

	if _, err := c.pool.Exec(ctx, query, sessionID, productID); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Clear опустошает корзину сессии.
func (c *CartRepo) Clear(ctx context.Context, sessionID string) error {
	query := `DELETE FROM cart_items WHERE session_id = $1;`

	if _, err := c.pool.Exec(ctx, query, sessionID); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
