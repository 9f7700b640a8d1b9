package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/DRSN-tech/seller-agent/internal/domain"
	"github.com/DRSN-tech/seller-agent/pkg/e"
	"github.com/DRSN-tech/seller-agent/pkg/logger"
)

// coverageBatchSize — размер батча при дозаполнении векторного хранилища.
const coverageBatchSize = 32

// RetrievalUseCase отвечает за векторный поиск товаров: следит, чтобы у каждого
// товара каталога был эмбеддинг, и ранжирует каталог по близости к запросу.
type RetrievalUseCase struct {
	productRepo   ProductRepository
	embeddingRepo EmbeddingRepository
	embeddings    EmbeddingsInfra
	logger        logger.Logger
}

func NewRetrievalUC(
	productRepo ProductRepository,
	embeddingRepo EmbeddingRepository,
	embeddings EmbeddingsInfra,
	logger logger.Logger,
) *RetrievalUseCase {
	return &RetrievalUseCase{
		productRepo:   productRepo,
		embeddingRepo: embeddingRepo,
		embeddings:    embeddings,
		logger:        logger,
	}
}

// EnsureCoverage дозаполняет эмбеддинги для товаров, которых ещё нет в
// векторном хранилище, и возвращает число добавленных записей. Батчи
// обрабатываются последовательно; сбой батча останавливает проход, но уже
// сохранённый прогресс не откатывается. Ошибка возвращается только при
// недоступности каталога или хранилища — сбой провайдера эмбеддингов сюда
// не попадает, он гасится локальным fallback'ом.
func (r *RetrievalUseCase) EnsureCoverage(ctx context.Context) (int, error) {
	const op = "RetrievalUseCase.EnsureCoverage"

	products, err := r.productRepo.ListAll(ctx)
	if err != nil {
		return 0, e.Wrap(op, err)
	}
	if len(products) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(products))
	for _, product := range products {
		ids = append(ids, product.ID)
	}

	existing, err := r.embeddingRepo.ExistingIDs(ctx, ids)
	if err != nil {
		return 0, e.Wrap(op, err)
	}

	var missing []domain.Product
	for _, product := range products {
		if _, ok := existing[product.ID]; !ok {
			missing = append(missing, product)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	added := 0
	for start := 0; start < len(missing); start += coverageBatchSize {
		end := start + coverageBatchSize
		if end > len(missing) {
			end = len(missing)
		}
		batch := missing[start:end]

		if err := r.embedBatch(ctx, batch); err != nil {
			r.logger.Warnf("Coverage pass stopped after %d of %d products: %v", added, len(missing), e.Wrap(op, err))
			return added, nil
		}

		added += len(batch)
	}

	r.logger.Infof("Embedded %d previously uncovered products", added)
	return added, nil
}

// Search возвращает идентификаторы topK товаров, ближайших к запросу.
// Функция тотальна: любой сбой логируется и даёт пустой результат, ошибки
// наружу не выходят — сбойный поиск деградирует, а не роняет вызывающего.
// Пустой запрос и пустое хранилище дают пустой результат без обращений
// к провайдеру; дозаполнение покрытия перед поиском — best effort.
func (r *RetrievalUseCase) Search(ctx context.Context, query string, topK int) []string {
	const op = "RetrievalUseCase.Search"

	if strings.TrimSpace(query) == "" || topK <= 0 {
		return nil
	}

	if _, err := r.EnsureCoverage(ctx); err != nil {
		r.logger.Warnf("Coverage check before search failed: %v", e.Wrap(op, err))
	}

	records, err := r.embeddingRepo.ScanAll(ctx)
	if err != nil {
		r.logger.Warnf("Vector store scan failed, search degrades to empty: %v", e.Wrap(op, err))
		return nil
	}
	if len(records) == 0 {
		return nil
	}

	vectors, err := r.embeddings.Embed(ctx, []string{query})
	if err != nil {
		r.logger.Warnf("Query embedding failed, search degrades to empty: %v", e.Wrap(op, err))
		return nil
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		r.logger.Warnf("Query embedding empty, search degrades to empty: %v", e.Wrap(op, e.ErrEmptyVectors))
		return nil
	}

	return rankTopK(vectors[0], records, topK)
}

// embedBatch векторизует один батч товаров и сохраняет записи в хранилище.
func (r *RetrievalUseCase) embedBatch(ctx context.Context, batch []domain.Product) error {
	texts := make([]string, 0, len(batch))
	for _, product := range batch {
		texts = append(texts, product.EmbeddingText())
	}

	vectors, err := r.embeddings.Embed(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(batch) {
		return e.ErrVectorCountMismatch
	}

	now := time.Now()
	records := make([]domain.EmbeddingRecord, 0, len(batch))
	for i, product := range batch {
		records = append(records, *domain.NewEmbeddingRecord(product.ID, vectors[i], now))
	}

	return r.embeddingRepo.Upsert(ctx, records)
}
