package domain

import "time"

// EmbeddingRecord — сохранённый вектор товара. На один товар приходится
// ровно одна запись; замена записи атомарна.
type EmbeddingRecord struct {
	ProductID string // uuid товара, ключ записи
	Vector    []float32
	UpdatedAt time.Time
}

func NewEmbeddingRecord(productID string, vector []float32, updatedAt time.Time) *EmbeddingRecord {
	return &EmbeddingRecord{
		ProductID: productID,
		Vector:    vector,
		UpdatedAt: updatedAt,
	}
}
