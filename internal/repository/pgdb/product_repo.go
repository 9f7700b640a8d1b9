package pgdb

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"

	"github.com/DRSN-tech/seller-agent/internal/domain"
	"github.com/DRSN-tech/seller-agent/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/seller-agent/pkg/e"
	"github.com/DRSN-tech/seller-agent/pkg/tr"
)

const productColumns = "id, name, description, price, category, tags, image_key, created_at, updated_at, is_archived"

// ProductRepo реализует репозиторий товаров поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

// Create сохраняет новый товар. Требует активной транзакции в контексте.
func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model := p.conv.ToModel(product)
	query := `
		INSERT INTO products (id, name, description, price, category, tags, image_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at;
	`

	if err := tx.QueryRow(ctx, query,
		model.ID, model.Name, model.Description, model.Price,
		model.Category, model.Tags, model.ImageKey,
	).Scan(&model.CreatedAt); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

// Update обновляет товар по идентификатору. Пустой image_key сохраняет
// прежнее изображение. Требует активной транзакции в контексте.
func (p *ProductRepo) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model := p.conv.ToModel(product)
	query := `
		UPDATE products
		SET name = $2,
			description = $3,
			price = $4,
			category = $5,
			tags = $6,
			image_key = COALESCE($7, image_key),
			updated_at = NOW()
		WHERE id = $1 AND NOT is_archived
		RETURNING ` + productColumns + `;
	`

	var updated converter.ProductModel
	if err := tx.QueryRow(ctx, query,
		model.ID, model.Name, model.Description, model.Price,
		model.Category, model.Tags, model.ImageKey,
	).Scan(
		&updated.ID, &updated.Name, &updated.Description, &updated.Price,
		&updated.Category, &updated.Tags, &updated.ImageKey,
		&updated.CreatedAt, &updated.UpdatedAt, &updated.IsArchived,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&updated), nil
}

// Archive помечает товар архивным, скрывая его из каталога.
// Требует активной транзакции в контексте.
func (p *ProductRepo) Archive(ctx context.Context, id string) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	result, err := tx.Exec(ctx, `
		UPDATE products
		SET is_archived = TRUE, updated_at = NOW()
		WHERE id = $1 AND NOT is_archived;
	`, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if result.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}

	return nil
}

// ListAll возвращает все активные товары в порядке добавления.
func (p *ProductRepo) ListAll(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE NOT is_archived
		ORDER BY created_at, id;
	`

	return p.queryProducts(ctx, query)
}

// ListFirst возвращает первые limit активных товаров в порядке добавления.
func (p *ProductRepo) ListFirst(ctx context.Context, limit int) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE NOT is_archived
		ORDER BY created_at, id
		LIMIT $1;
	`

	return p.queryProducts(ctx, query, limit)
}

// GetByIDs возвращает активные товары с указанными идентификаторами.
func (p *ProductRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1) AND NOT is_archived;
	`

	return p.queryProducts(ctx, query, ids)
}

// Filter возвращает активные товары, сужая выдачу по категории и/или
// подстроке в названии, описании и тегах. Пустой фильтр не применяется.
func (p *ProductRepo) Filter(ctx context.Context, category, search string) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE NOT is_archived
		  AND ($1 = '' OR category = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%'
			OR description ILIKE '%' || $2 || '%'
			OR EXISTS (SELECT 1 FROM unnest(tags) AS tag WHERE tag ILIKE '%' || $2 || '%'))
		ORDER BY created_at, id;
	`

	return p.queryProducts(ctx, query, category, search)
}

func (p *ProductRepo) queryProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	var models []*converter.ProductModel
	for rows.Next() {
		var model converter.ProductModel
		if err := rows.Scan(
			&model.ID, &model.Name, &model.Description, &model.Price,
			&model.Category, &model.Tags, &model.ImageKey,
			&model.CreatedAt, &model.UpdatedAt, &model.IsArchived,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		models = append(models, &model)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToArrEntity(models), nil
}
