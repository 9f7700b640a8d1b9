package usecase

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/DRSN-tech/seller-agent/internal/domain"
)

// CHAT USECASE

// ChatTurn — одна реплика диалога в формате chat-completion провайдера.
type ChatTurn struct {
	Role    string
	Content string
}

// RecommendReq — запрос рекомендации по сообщению покупателя.
type RecommendReq struct {
	SessionID string
	Message   string
}

// RecommendRes — сгенерированный ответ и рекомендованные товары.
type RecommendRes struct {
	SessionID string
	Response  string
	Products  []ProductInfo
	// Fallback выставляется, когда ответ собран без LLM
	Fallback bool
}

// MessageInfo — одна сохранённая реплика диалога.
type MessageInfo struct {
	Role       string
	Content    string
	ProductIDs []string
	CreatedAt  time.Time
}

// ConversationRes — история диалога сессии в хронологическом порядке.
type ConversationRes struct {
	SessionID string
	Messages  []MessageInfo
}

// PRODUCT USECASE

// ProductInfo — DTO с информацией о товаре для внешнего использования.
// Price — десятичная строка в рублях ("1999.90"), внутри храним копейки.
// JSON-теги нужны для сериализации кандидатов в промпт модели.
type ProductInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags,omitempty"`
	ImageKey    string   `json:"image_key,omitempty"`
}

// CreateProductReq — запрос на добавление товара через админ-API.
type CreateProductReq struct {
	Name        string
	Description string
	Price       int64 // копейки
	Category    string
	Tags        []string
	Image       *ProductImage
}

// UpdateProductReq — запрос на обновление товара.
type UpdateProductReq struct {
	ID          string
	Name        string
	Description string
	Price       int64
	Category    string
	Tags        []string
	Image       *ProductImage
}

func NewCreateProductReq(name, description string, price int64, category string, tags []string, image *ProductImage) *CreateProductReq {
	return &CreateProductReq{
		Name:        name,
		Description: description,
		Price:       price,
		Category:    category,
		Tags:        tags,
		Image:       image,
	}
}

func NewUpdateProductReq(id, name, description string, price int64, category string, tags []string, image *ProductImage) *UpdateProductReq {
	return &UpdateProductReq{
		ID:          id,
		Name:        name,
		Description: description,
		Price:       price,
		Category:    category,
		Tags:        tags,
		Image:       image,
	}
}

// ProductImage представляет изображение, загруженное через multipart/form-data.
type ProductImage struct {
	Data     []byte // байты изображения
	MimeType string // Content-Type из multipart (image/jpeg)
	Size     int64  // фактический размер в байтах
	Name     string // оригинальное имя файла (для логов)
}

// UploadImageReq — запрос на загрузку изображения товара в MinIO.
type UploadImageReq struct {
	ProductID string
	Image     ProductImage
}

// CART USECASE

// CartItemInfo — позиция корзины с данными товара.
type CartItemInfo struct {
	Product  ProductInfo
	Quantity int32
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

const (
	EventProductUpserted      = "product.upserted"
	EventProductArchived      = "product.archived"
	EventRecommendationServed = "recommendation.served"
)

// OutboxEvent — запись transactional outbox, доставляемая в Kafka воркером.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   string
	AggregateID string
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// ProductChangeEvent — JSON-полезная нагрузка событий product.*.
type ProductChangeEvent struct {
	EventID   string   `json:"event_id"`
	EventType string   `json:"event_type"`
	ProductID string   `json:"product_id"`
	Name      string   `json:"name,omitempty"`
	Price     string   `json:"price,omitempty"`
	Category  string   `json:"category,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

// RecommendationServedEvent — JSON-полезная нагрузка события recommendation.served.
type RecommendationServedEvent struct {
	EventID    string   `json:"event_id"`
	SessionID  string   `json:"session_id"`
	ProductIDs []string `json:"product_ids"`
	Fallback   bool     `json:"fallback"`
	Timestamp  int64    `json:"timestamp"`
}

// INFRASTRUCTURE

type WriteRawMessageReq struct {
	Key     string
	Payload []byte
}

// MAPPERS

func NewRecommendReq(sessionID, message string) *RecommendReq {
	return &RecommendReq{
		SessionID: sessionID,
		Message:   message,
	}
}

func NewRecommendRes(sessionID, response string, products []ProductInfo, fallback bool) *RecommendRes {
	return &RecommendRes{
		SessionID: sessionID,
		Response:  response,
		Products:  products,
		Fallback:  fallback,
	}
}

func NewConversationRes(sessionID string, messages []MessageInfo) *ConversationRes {
	return &ConversationRes{
		SessionID: sessionID,
		Messages:  messages,
	}
}

// NewProductInfoFromProduct переводит доменный товар в DTO, форматируя цену
// из копеек в десятичную строку.
func NewProductInfoFromProduct(product *domain.Product) ProductInfo {
	return ProductInfo{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       decimal.New(product.Price, -2).StringFixed(2),
		Category:    product.Category,
		Tags:        product.Tags,
		ImageKey:    product.ImageKey,
	}
}

func NewProductImage(data []byte, mimeType string, size int64, name string) *ProductImage {
	return &ProductImage{
		Data:     data,
		MimeType: mimeType,
		Size:     size,
		Name:     name,
	}
}

func NewUploadImageReq(productID string, image ProductImage) *UploadImageReq {
	return &UploadImageReq{
		ProductID: productID,
		Image:     image,
	}
}

func NewWriteRawMessageReq(key string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:     key,
		Payload: payload,
	}
}

func NewOutboxEvent(eventID, eventType, aggregateID string, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		EventID:     eventID,
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     payload,
		Status:      Pending,
		CreatedAt:   time.Now(),
	}
}
