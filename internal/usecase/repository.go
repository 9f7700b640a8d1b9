package usecase

import (
	"context"

	"github.com/DRSN-tech/seller-agent/internal/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Archive(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]domain.Product, error)
	ListFirst(ctx context.Context, limit int) ([]domain.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	Filter(ctx context.Context, category, search string) ([]domain.Product, error)
}

type SessionRepository interface {
	GetOrCreate(ctx context.Context, id string) (*domain.ChatSession, error)
	Get(ctx context.Context, id string) (*domain.ChatSession, error)
}

type MessageRepository interface {
	// Create требует активной транзакции в контексте
	Create(ctx context.Context, message *domain.ChatMessage) (*domain.ChatMessage, error)
	ListBySession(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
}

type CartRepository interface {
	Upsert(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error)
	ListBySession(ctx context.Context, sessionID string) ([]domain.CartItem, error)
	Delete(ctx context.Context, sessionID string, productID string) error
	Clear(ctx context.Context, sessionID string) error
}

type EmbeddingRepository interface {
	Upsert(ctx context.Context, records []domain.EmbeddingRecord) error
	ScanAll(ctx context.Context) ([]domain.EmbeddingRecord, error)
	ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error)
}

type CacheRepository interface {
	GetProducts(ctx context.Context, ids []string) (map[string]ProductInfo, error)
	SetProducts(ctx context.Context, products []ProductInfo) error
	DeleteProducts(ctx context.Context, ids []string) error
}

type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Delete(ctx context.Context, key string) error
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
}
