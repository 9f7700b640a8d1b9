package converter

import (
	"github.com/DRSN-tech/seller-agent/internal/usecase"
)

// ProductInfoConverter преобразует ProductInfo между usecase и Redis-моделью.
type ProductInfoConverter struct{}

func (ProductInfoConverter) ToRedisModel(entity *usecase.ProductInfo) *ProductInfoRedisModel {
	return &ProductInfoRedisModel{
		ID:          entity.ID,
		Name:        entity.Name,
		Description: entity.Description,
		Price:       entity.Price,
		Category:    entity.Category,
		Tags:        entity.Tags,
		ImageKey:    entity.ImageKey,
	}
}

func (ProductInfoConverter) ToUseCase(model *ProductInfoRedisModel) *usecase.ProductInfo {
	return &usecase.ProductInfo{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		Price:       model.Price,
		Category:    model.Category,
		Tags:        model.Tags,
		ImageKey:    model.ImageKey,
	}
}

func (c ProductInfoConverter) ToArrRedisModel(entities []usecase.ProductInfo) []ProductInfoRedisModel {
	result := make([]ProductInfoRedisModel, 0, len(entities))
	for i := range entities {
		result = append(result, *c.ToRedisModel(&entities[i]))
	}
	return result
}
