package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DRSN-tech/seller-agent/internal/usecase"
	"github.com/DRSN-tech/seller-agent/pkg/e"
	"github.com/DRSN-tech/seller-agent/pkg/logger"
)

type CartHandler struct {
	cartUsecase usecase.CartUC
	logger      logger.Logger
}

func NewCartHandler(cartUsecase usecase.CartUC, logger logger.Logger) *CartHandler {
	return &CartHandler{cartUsecase: cartUsecase, logger: logger}
}

type addToCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

type cartItemResponse struct {
	Product  productResponse `json:"product"`
	Quantity int32           `json:"quantity"`
}

func toCartResponses(items []usecase.CartItemInfo) []cartItemResponse {
	res := make([]cartItemResponse, 0, len(items))
	for _, item := range items {
		res = append(res, cartItemResponse{
			Product:  toProductResponse(item.Product),
			Quantity: item.Quantity,
		})
	}

	return res
}

// addToCart
//
//	@Summary	Добавление товара в корзину
//	@Tags		cart
//	@Accept		json
//	@Produce	json
//	@Param		session_id	path		string				true	"Идентификатор сессии"
//	@Param		request		body		addToCartRequest	true	"Товар и количество"
//	@Success	200			{array}		cartItemResponse	"Содержимое корзины"
//	@Failure	400			{object}	ErrorResponse		"Ошибка валидации"
//	@Router		/cart/{session_id} [post]
func (c *CartHandler) addToCart(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")

	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	items, err := c.cartUsecase.AddToCart(r.Context(), sessionID, req.ProductID, req.Quantity)
	if err != nil {
		c.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCartResponses(items))
}

// getCart
//
//	@Summary	Содержимое корзины
//	@Tags		cart
//	@Produce	json
//	@Param		session_id	path		string				true	"Идентификатор сессии"
//	@Success	200			{array}		cartItemResponse	"Содержимое корзины"
//	@Failure	400			{object}	ErrorResponse		"Ошибка валидации"
//	@Router		/cart/{session_id} [get]
func (c *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")

	items, err := c.cartUsecase.GetCart(r.Context(), sessionID)
	if err != nil {
		c.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCartResponses(items))
}

// removeFromCart
//
//	@Summary	Удаление товара из корзины
//	@Tags		cart
//	@Produce	json
//	@Param		session_id	path	string	true	"Идентификатор сессии"
//	@Param		product_id	path	string	true	"Идентификатор товара"
//	@Success	204			"Удалено"
//	@Failure	400			{object}	ErrorResponse	"Ошибка валидации"
//	@Router		/cart/{session_id}/items/{product_id} [delete]
func (c *CartHandler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	productID := chi.URLParam(r, "product_id")

	if err := c.cartUsecase.RemoveFromCart(r.Context(), sessionID, productID); err != nil {
		c.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// clearCart
//
//	@Summary	Очистка корзины
//	@Tags		cart
//	@Produce	json
//	@Param		session_id	path	string	true	"Идентификатор сессии"
//	@Success	204			"Очищено"
//	@Failure	400			{object}	ErrorResponse	"Ошибка валидации"
//	@Router		/cart/{session_id} [delete]
func (c *CartHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")

	if err := c.cartUsecase.ClearCart(r.Context(), sessionID); err != nil {
		c.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
