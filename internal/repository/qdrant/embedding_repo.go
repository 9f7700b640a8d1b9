package qdrant

import (
	"context"
	"time"

	"github.com/jimlawless/whereami"
	"github.com/qdrant/go-client/qdrant"

	"github.com/DRSN-tech/seller-agent/internal/cfg"
	"github.com/DRSN-tech/seller-agent/internal/domain"
	"github.com/DRSN-tech/seller-agent/pkg/e"
)

// scrollPageSize — размер страницы при полном проходе коллекции.
const scrollPageSize = 256

// EmbeddingRepo — репозиторий embedding-записей товаров в Qdrant.
// Точка коллекции ключуется UUID товара, payload хранит момент векторизации.
type EmbeddingRepo struct {
	client *qdrant.Client
	cfg    *cfg.QdrantCfg
}

func NewEmbeddingRepo(client *qdrant.Client, cfg *cfg.QdrantCfg) *EmbeddingRepo {
	return &EmbeddingRepo{
		client: client,
		cfg:    cfg,
	}
}

// Upsert сохраняет или заменяет embedding-записи: одна точка на товар.
func (q *EmbeddingRepo) Upsert(ctx context.Context, records []domain.EmbeddingRecord) error {
	points := make([]*qdrant.PointStruct, 0, len(records))
	for _, record := range records {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(record.ProductID),
			Vectors: qdrant.NewVectors(record.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"product_id": record.ProductID,
				"updated_at": record.UpdatedAt.UTC().Format(time.RFC3339Nano),
			}),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.cfg.CollectionName,
		Points:         points,
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// ScanAll выгружает все записи коллекции постранично.
func (q *EmbeddingRepo) ScanAll(ctx context.Context) ([]domain.EmbeddingRecord, error) {
	var (
		records []domain.EmbeddingRecord
		offset  *qdrant.PointId
		limit   = uint32(scrollPageSize)
	)

	for {
		resp, err := q.client.GetPointsClient().Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: q.cfg.CollectionName,
			Limit:          &limit,
			Offset:         offset,
			WithVectors:    qdrant.NewWithVectors(true),
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		for _, point := range resp.GetResult() {
			records = append(records, toRecord(point))
		}

		offset = resp.GetNextPageOffset()
		if offset == nil {
			return records, nil
		}
	}
}

// ExistingIDs возвращает подмножество ids, для которых запись уже существует.
// Векторы не выгружаются: интересует только факт наличия точки.
func (q *EmbeddingRepo) ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	if len(ids) == 0 {
		return map[string]struct{}{}, nil
	}

	pointIDs := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		pointIDs = append(pointIDs, qdrant.NewIDUUID(id))
	}

	points, err := q.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: q.cfg.CollectionName,
		Ids:            pointIDs,
		WithVectors:    qdrant.NewWithVectors(false),
		WithPayload:    qdrant.NewWithPayload(false),
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	existing := make(map[string]struct{}, len(points))
	for _, point := range points {
		existing[point.GetId().GetUuid()] = struct{}{}
	}

	return existing, nil
}

func toRecord(point *qdrant.RetrievedPoint) domain.EmbeddingRecord {
	record := domain.EmbeddingRecord{
		ProductID: point.GetId().GetUuid(),
		Vector:    point.GetVectors().GetVector().GetData(),
	}

	if value, ok := point.GetPayload()["updated_at"]; ok {
		if parsed, err := time.Parse(time.RFC3339Nano, value.GetStringValue()); err == nil {
			record.UpdatedAt = parsed
		}
	}

	return record
}
