package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DRSN-tech/seller-agent/internal/usecase"
	"github.com/DRSN-tech/seller-agent/pkg/e"
	"github.com/DRSN-tech/seller-agent/pkg/logger"
)

type ProductHandler struct {
	productUsecase   usecase.ProductUC
	retrievalUsecase usecase.RetrievalUC
	logger           logger.Logger
}

func NewProductHandler(productUsecase usecase.ProductUC, retrievalUsecase usecase.RetrievalUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{productUsecase: productUsecase, retrievalUsecase: retrievalUsecase, logger: logger}
}

type productResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags,omitempty"`
	ImageKey    string   `json:"image_key,omitempty"`
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

func toProductResponse(info usecase.ProductInfo) productResponse {
	return productResponse{
		ID:          info.ID,
		Name:        info.Name,
		Description: info.Description,
		Price:       info.Price,
		Category:    info.Category,
		Tags:        info.Tags,
		ImageKey:    info.ImageKey,
	}
}

func toProductResponses(infos []usecase.ProductInfo) []productResponse {
	res := make([]productResponse, 0, len(infos))
	for _, info := range infos {
		res = append(res, toProductResponse(info))
	}

	return res
}

// listProducts
//
//	@Summary	Каталог товаров
//	@Tags		products
//	@Produce	json
//	@Param		category	query		string				false	"Фильтр по категории"
//	@Param		search		query		string				false	"Поиск по названию, описанию и тегам"
//	@Success	200			{array}		productResponse		"Список товаров"
//	@Failure	500			{object}	ErrorResponse		"Внутренняя ошибка"
//	@Router		/products [get]
func (p *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	search := r.URL.Query().Get("search")

	products, err := p.productUsecase.ListProducts(r.Context(), category, search)
	if err != nil {
		p.logger.Errorf(err, "list products failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponses(products))
}

// getProduct
//
//	@Summary	Карточка товара
//	@Tags		products
//	@Produce	json
//	@Param		id	path		string			true	"Идентификатор товара"
//	@Success	200	{object}	productResponse	"Товар"
//	@Failure	404	{object}	ErrorResponse	"Товар не найден"
//	@Router		/products/{id} [get]
func (p *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	products, err := p.productUsecase.GetProductsInfo(r.Context(), []string{id})
	if err != nil {
		p.logger.Errorf(err, "get product failed: %s", id)
		WriteError(w, err)
		return
	}

	if len(products) == 0 {
		WriteError(w, e.ErrProductNotFound)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(products[0]))
}

// searchProducts
//
//	@Summary		Семантический поиск товаров
//	@Description	Ранжирует каталог по векторной близости к запросу.
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			request	body		searchRequest	true	"Поисковый запрос"
//	@Success		200		{array}		productResponse	"Найденные товары"
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Router			/search [post]
func (p *ProductHandler) searchProducts(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	const defaultTopK = 10
	if req.TopK <= 0 {
		req.TopK = defaultTopK
	}

	ids := p.retrievalUsecase.Search(r.Context(), req.Query, req.TopK)

	products, err := p.productUsecase.GetProductsInfo(r.Context(), ids)
	if err != nil {
		p.logger.Errorf(err, "resolve search results failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponses(products))
}
