package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/DRSN-tech/seller-agent/internal/domain"
	"github.com/DRSN-tech/seller-agent/pkg/e"
	"github.com/DRSN-tech/seller-agent/pkg/logger"
)

// ProductUseCase реализует бизнес-логику управления каталогом товаров.
type ProductUseCase struct {
	productRepo ProductRepository
	outboxRepo  OutboxRepository
	dbPool      transaction.Transactional
	imagesInfra ImagesInfra
	cacheRepo   CacheRepository
	logger      logger.Logger
}

func NewProductUC(
	productRepo ProductRepository,
	outboxRepo OutboxRepository,
	dbPool transaction.Transactional,
	imagesInfra ImagesInfra,
	cacheRepo CacheRepository,
	logger logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
		outboxRepo:  outboxRepo,
		dbPool:      dbPool,
		imagesInfra: imagesInfra,
		cacheRepo:   cacheRepo,
		logger:      logger,
	}
}

// CreateProduct сохраняет новый товар с изображением и outbox-событием.
// Изображение грузится в MinIO до транзакции; при откате загруженный объект
// зачищается, чтобы не копить сирот.
func (p *ProductUseCase) CreateProduct(ctx context.Context, req *CreateProductReq) (*ProductInfo, error) {
	const op = "ProductUseCase.CreateProduct"

	var err error
	if err = p.validateProduct(req.Name, req.Price); err != nil {
		return nil, e.Wrap(op, err)
	}

	product := domain.NewProduct(req.Name, req.Description, req.Price, req.Category, req.Tags, "")
	product.ID = uuid.NewString()

	var imageKey string
	if req.Image != nil {
		imageKey, err = p.imagesInfra.UploadImage(ctx, NewUploadImageReq(product.ID, *req.Image))
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		product.ImageKey = imageKey
	}

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, p.dbPool)
	if err != nil {
		p.cleanupImage(imageKey, req.Name, err)
		return nil, e.Wrap(op, err)
	}
	defer func() {
		if err != nil {
			if tx.IsActive() {
				tx.Rollback(ctx)
			}
			p.cleanupImage(imageKey, req.Name, e.Wrap(op, err))
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	created, err := p.productRepo.Create(ctx, product)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err = p.createChangeEvent(ctx, EventProductUpserted, created); err != nil {
		return nil, e.Wrap(op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, e.Wrap(op, err)
	}

	info := NewProductInfoFromProduct(created)
	return &info, nil
}

// UpdateProduct обновляет товар и ставит событие об изменении в outbox.
func (p *ProductUseCase) UpdateProduct(ctx context.Context, req *UpdateProductReq) (*ProductInfo, error) {
	const op = "ProductUseCase.UpdateProduct"

	var err error
	if _, err = uuid.Parse(req.ID); err != nil {
		return nil, e.Wrap(op, e.ErrProductNotFound)
	}
	if err = p.validateProduct(req.Name, req.Price); err != nil {
		return nil, e.Wrap(op, err)
	}

	product := &domain.Product{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Tags:        req.Tags,
	}

	if req.Image != nil {
		imageKey, err := p.imagesInfra.UploadImage(ctx, NewUploadImageReq(product.ID, *req.Image))
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		product.ImageKey = imageKey
	}

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, p.dbPool)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	updated, err := p.productRepo.Update(ctx, product)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err = p.createChangeEvent(ctx, EventProductUpserted, updated); err != nil {
		return nil, e.Wrap(op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, e.Wrap(op, err)
	}

	p.invalidateCache(ctx, updated.ID)

	info := NewProductInfoFromProduct(updated)
	return &info, nil
}

// ArchiveProduct скрывает товар из каталога, не удаляя данные.
func (p *ProductUseCase) ArchiveProduct(ctx context.Context, id string) error {
	const op = "ProductUseCase.ArchiveProduct"

	var err error
	if _, err = uuid.Parse(id); err != nil {
		return e.Wrap(op, e.ErrProductNotFound)
	}

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, p.dbPool)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	if err = p.productRepo.Archive(ctx, id); err != nil {
		return e.Wrap(op, err)
	}

	if err = p.createChangeEvent(ctx, EventProductArchived, &domain.Product{ID: id}); err != nil {
		return e.Wrap(op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return e.Wrap(op, err)
	}

	p.invalidateCache(ctx, id)

	return nil
}

// ListProducts возвращает активный каталог в порядке добавления, при
// необходимости сужая выдачу по категории и поисковой подстроке.
func (p *ProductUseCase) ListProducts(ctx context.Context, category, search string) ([]ProductInfo, error) {
	const op = "ProductUseCase.ListProducts"

	var (
		products []domain.Product
		err      error
	)
	if category == "" && search == "" {
		products, err = p.productRepo.ListAll(ctx)
	} else {
		products, err = p.productRepo.Filter(ctx, category, search)
	}
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	infos := make([]ProductInfo, 0, len(products))
	for i := range products {
		infos = append(infos, NewProductInfoFromProduct(&products[i]))
	}

	return infos, nil
}

// GetProductsInfo возвращает информацию о товарах по их идентификаторам:
// сперва кэш, затем БД; найденное в БД докладывается в кэш фоном.
// Неизвестные идентификаторы молча пропускаются, порядок запрошенных ids
// сохраняется.
func (p *ProductUseCase) GetProductsInfo(ctx context.Context, ids []string) ([]ProductInfo, error) {
	const op = "ProductUseCase.GetProductsInfo"

	if len(ids) == 0 {
		return nil, nil
	}

	cached, err := p.cacheRepo.GetProducts(ctx, ids)
	if err != nil {
		p.logger.Warnf("Cache lookup failed: %v", e.Wrap(op, err))
		cached = nil
	}

	var missing []string
	for _, id := range ids {
		if _, ok := cached[id]; !ok {
			missing = append(missing, id)
		}
	}

	fromDB := make(map[string]ProductInfo)
	if len(missing) > 0 {
		products, err := p.productRepo.GetByIDs(ctx, missing)
		if err != nil {
			return nil, e.Wrap(op, err)
		}

		infos := make([]ProductInfo, 0, len(products))
		for i := range products {
			info := NewProductInfoFromProduct(&products[i])
			fromDB[info.ID] = info
			infos = append(infos, info)
		}

		if len(infos) > 0 {
			go func() {
				bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
				defer cancel()

				if err := p.cacheRepo.SetProducts(bgCtx, infos); err != nil {
					p.logger.Warnf("Failed to cache products in background: %v", e.Wrap(op, err))
				}
			}()
		}
	}

	result := make([]ProductInfo, 0, len(ids))
	for _, id := range ids {
		if info, ok := cached[id]; ok {
			result = append(result, info)
		} else if info, ok := fromDB[id]; ok {
			result = append(result, info)
		}
	}

	return result, nil
}

// createChangeEvent ставит событие об изменении товара в outbox той же
// транзакцией, что и само изменение.
func (p *ProductUseCase) createChangeEvent(ctx context.Context, eventType string, product *domain.Product) error {
	payload, err := json.Marshal(ProductChangeEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		ProductID: product.ID,
		Name:      product.Name,
		Price:     NewProductInfoFromProduct(product).Price,
		Category:  product.Category,
		Tags:      product.Tags,
		Timestamp: time.Now().UnixNano(),
	})
	if err != nil {
		return err
	}

	event := NewOutboxEvent(uuid.NewString(), eventType, product.ID, payload)
	_, err = p.outboxRepo.Create(ctx, event)
	return err
}

// invalidateCache убирает устаревшие данные товара из кэша (best effort).
func (p *ProductUseCase) invalidateCache(ctx context.Context, id string) {
	if err := p.cacheRepo.DeleteProducts(ctx, []string{id}); err != nil {
		p.logger.Warnf("Failed to invalidate product cache: %v", err)
	}
}

// cleanupImage зачищает осиротевший объект MinIO после неудачной транзакции.
func (p *ProductUseCase) cleanupImage(imageKey, productName string, cause error) {
	if imageKey == "" {
		return
	}

	p.logger.Warnf(
		"Cleaning up orphaned image after transaction failure. product_name: %s, error: %v",
		productName,
		cause,
	)
	p.imagesInfra.CleanupImages([]string{imageKey})
}

// validateProduct проверяет корректность входных данных товара.
func (p *ProductUseCase) validateProduct(name string, price int64) error {
	if strings.TrimSpace(name) == "" {
		return e.ErrProductNameRequired
	}

	if price <= 0 {
		return e.ErrInvalidPrice
	}

	return nil
}
