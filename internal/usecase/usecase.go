package usecase

import (
	"context"

	"github.com/DRSN-tech/seller-agent/internal/domain"
)

type ChatUC interface {
	Recommend(ctx context.Context, req *RecommendReq) (*RecommendRes, error)
	GetConversation(ctx context.Context, sessionID string) (*ConversationRes, error)
	CreateSession(ctx context.Context) (*domain.ChatSession, error)
}

type ProductUC interface {
	CreateProduct(ctx context.Context, req *CreateProductReq) (*ProductInfo, error)
	UpdateProduct(ctx context.Context, req *UpdateProductReq) (*ProductInfo, error)
	ArchiveProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context, category, search string) ([]ProductInfo, error)
	GetProductsInfo(ctx context.Context, ids []string) ([]ProductInfo, error)
}

type CartUC interface {
	AddToCart(ctx context.Context, sessionID, productID string, quantity int32) ([]CartItemInfo, error)
	GetCart(ctx context.Context, sessionID string) ([]CartItemInfo, error)
	RemoveFromCart(ctx context.Context, sessionID, productID string) error
	ClearCart(ctx context.Context, sessionID string) error
}

// RetrievalUC: Search тотален — сбои гасятся пустым результатом, ошибку
// наружу отдаёт только дозаполнение покрытия.
type RetrievalUC interface {
	EnsureCoverage(ctx context.Context) (int, error)
	Search(ctx context.Context, query string, topK int) []string
}

// RecommendationUC всегда возвращает результат: при любом сбое провайдера
// срабатывает локальный запасной ответ, второй результат — признак fallback.
type RecommendationUC interface {
	GetRecommendation(ctx context.Context, message string, history []domain.ChatMessage) (*domain.Recommendation, bool)
}
