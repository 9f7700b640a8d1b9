package domain

import (
	"fmt"
	"strings"
	"time"
)

// Product описывает товар каталога
type Product struct {
	ID          string // uuid
	Name        string
	Description string
	Price       int64 // Цена хранится в копейках
	Category    string
	Tags        []string
	ImageKey    string // ключ объекта в MinIO, может быть пустым
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	IsArchived  bool
}

func NewProduct(name, description string, price int64, category string, tags []string, imageKey string) *Product {
	return &Product{
		Name:        name,
		Description: description,
		Price:       price,
		Category:    category,
		Tags:        tags,
		ImageKey:    imageKey,
	}
}

// EmbeddingText возвращает текстовое представление товара для векторизации.
// Один и тот же товар всегда даёт один и тот же текст.
func (p *Product) EmbeddingText() string {
	return fmt.Sprintf(
		"Name: %s\nDescription: %s\nCategory: %s\nTags: %s",
		p.Name, p.Description, p.Category, strings.Join(p.Tags, ", "),
	)
}
