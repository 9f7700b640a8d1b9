package converter

import (
	"github.com/DRSN-tech/seller-agent/internal/domain"
	"github.com/DRSN-tech/seller-agent/internal/usecase"
)

// ProductConverter преобразует сущности Product между domain и моделью PostgreSQL.
type ProductConverter struct{}

func (ProductConverter) ToModel(entity *domain.Product) *ProductModel {
	var imageKey *string
	if entity.ImageKey != "" {
		imageKey = &entity.ImageKey
	}

	return &ProductModel{
		ID:          entity.ID,
		Name:        entity.Name,
		Description: entity.Description,
		Price:       entity.Price,
		Category:    entity.Category,
		Tags:        entity.Tags,
		ImageKey:    imageKey,
		CreatedAt:   entity.CreatedAt,
		UpdatedAt:   entity.UpdatedAt,
		IsArchived:  entity.IsArchived,
	}
}

func (ProductConverter) ToEntity(model *ProductModel) *domain.Product {
	var imageKey string
	if model.ImageKey != nil {
		imageKey = *model.ImageKey
	}

	return &domain.Product{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		Price:       model.Price,
		Category:    model.Category,
		Tags:        model.Tags,
		ImageKey:    imageKey,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
		IsArchived:  model.IsArchived,
	}
}

func (c ProductConverter) ToArrEntity(models []*ProductModel) []domain.Product {
	result := make([]domain.Product, 0, len(models))
	for _, model := range models {
		result = append(result, *c.ToEntity(model))
	}
	return result
}

// ChatSessionConverter преобразует сущности ChatSession между domain и моделью PostgreSQL.
type ChatSessionConverter struct{}

func (ChatSessionConverter) ToEntity(model *ChatSessionModel) *domain.ChatSession {
	return &domain.ChatSession{
		ID:        model.ID,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// ChatMessageConverter преобразует сущности ChatMessage между domain и моделью PostgreSQL.
type ChatMessageConverter struct{}

func (ChatMessageConverter) ToModel(entity *domain.ChatMessage) *ChatMessageModel {
	return &ChatMessageModel{
		ID:         entity.ID,
		SessionID:  entity.SessionID,
		Role:       string(entity.Role),
		Content:    entity.Content,
		ProductIDs: entity.ProductIDs,
		CreatedAt:  entity.CreatedAt,
	}
}

func (ChatMessageConverter) ToEntity(model *ChatMessageModel) *domain.ChatMessage {
	return &domain.ChatMessage{
		ID:         model.ID,
		SessionID:  model.SessionID,
		Role:       domain.MessageRole(model.Role),
		Content:    model.Content,
		ProductIDs: model.ProductIDs,
		CreatedAt:  model.CreatedAt,
	}
}

func (c ChatMessageConverter) ToArrEntity(models []*ChatMessageModel) []domain.ChatMessage {
	result := make([]domain.ChatMessage, 0, len(models))
	for _, model := range models {
		result = append(result, *c.ToEntity(model))
	}
	return result
}

// CartItemConverter преобразует сущности CartItem между domain и моделью PostgreSQL.
type CartItemConverter struct{}

func (CartItemConverter) ToEntity(model *CartItemModel) *domain.CartItem {
	return &domain.CartItem{
		ID:        model.ID,
		SessionID: model.SessionID,
		ProductID: model.ProductID,
		Quantity:  model.Quantity,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func (c CartItemConverter) ToArrEntity(models []*CartItemModel) []domain.CartItem {
	result := make([]domain.CartItem, 0, len(models))
	for _, model := range models {
		result = append(result, *c.ToEntity(model))
	}
	return result
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter struct{}

func (OutboxEventConverter) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   entity.EventType,
		AggregateID: entity.AggregateID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverter) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   model.EventType,
		AggregateID: model.AggregateID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c OutboxEventConverter) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	result := make([]*usecase.OutboxEvent, 0, len(models))
	for _, model := range models {
		result = append(result, c.ToEntity(model))
	}
	return result
}
