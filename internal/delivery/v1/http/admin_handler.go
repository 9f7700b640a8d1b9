package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/DRSN-tech/seller-agent/internal/usecase"
	"github.com/DRSN-tech/seller-agent/pkg/e"
	"github.com/DRSN-tech/seller-agent/pkg/logger"
)

type AdminHandler struct {
	productUsecase   usecase.ProductUC
	retrievalUsecase usecase.RetrievalUC
	logger           logger.Logger
}

func NewAdminHandler(productUsecase usecase.ProductUC, retrievalUsecase usecase.RetrievalUC, logger logger.Logger) *AdminHandler {
	return &AdminHandler{productUsecase: productUsecase, retrievalUsecase: retrievalUsecase, logger: logger}
}

type productForm struct {
	Name        string
	Description string
	Price       int64
	Category    string
	Tags        []string
}

func parseProductForm(r *http.Request) (*productForm, error) {
	price, err := parsePriceToCents(r.FormValue("price"))
	if err != nil {
		return nil, err
	}

	var tags []string
	for _, raw := range strings.Split(r.FormValue("tags"), ",") {
		if tag := strings.TrimSpace(raw); tag != "" {
			tags = append(tags, tag)
		}
	}

	return &productForm{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Price:       price,
		Category:    strings.TrimSpace(r.FormValue("category")),
		Tags:        tags,
	}, nil
}

// createProduct
//
//	@Summary		Регистрация нового товара
//	@Description	Создает товар в каталоге, опционально с изображением
//	@Tags			admin
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			name		formData	string			true	"Название товара"
//	@Param			description	formData	string			false	"Описание"
//	@Param			price		formData	number			true	"Цена"
//	@Param			category	formData	string			false	"Категория"
//	@Param			tags		formData	string			false	"Теги через запятую"
//	@Param			image		formData	file			false	"Изображение товара"
//	@Success		201			{object}	productResponse	"Созданный товар"
//	@Failure		400			{object}	ErrorResponse	"Ошибка валидации"
//	@Router			/admin/products [post]
func (a *AdminHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	const (
		maxTotalRequestSize = 20 << 20
		maxMemory           = 16 << 20
	)

	r.Body = http.MaxBytesReader(w, r.Body, maxTotalRequestSize)

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		a.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), r.Header.Get("Content-Type"))
		WriteError(w, err)
		return
	}

	form, err := parseProductForm(r)
	if err != nil {
		a.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	image, err := parseImage(r.MultipartForm.File["image"])
	if err != nil {
		a.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	info, err := a.productUsecase.CreateProduct(r.Context(), usecase.NewCreateProductReq(form.Name, form.Description, form.Price, form.Category, form.Tags, image))
	if err != nil {
		a.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toProductResponse(*info))
}

// updateProduct
//
//	@Summary	Обновление товара
//	@Tags		admin
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		id			path		string			true	"Идентификатор товара"
//	@Param		name		formData	string			true	"Название товара"
//	@Param		description	formData	string			false	"Описание"
//	@Param		price		formData	number			true	"Цена"
//	@Param		category	formData	string			false	"Категория"
//	@Param		tags		formData	string			false	"Теги через запятую"
//	@Param		image		formData	file			false	"Новое изображение"
//	@Success	200			{object}	productResponse	"Обновлённый товар"
//	@Failure	404			{object}	ErrorResponse	"Товар не найден"
//	@Router		/admin/products/{id} [put]
func (a *AdminHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	const (
		maxTotalRequestSize = 20 << 20
		maxMemory           = 16 << 20
	)

	id := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, maxTotalRequestSize)

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		a.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), r.Header.Get("Content-Type"))
		WriteError(w, err)
		return
	}

	form, err := parseProductForm(r)
	if err != nil {
		a.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	image, err := parseImage(r.MultipartForm.File["image"])
	if err != nil {
		a.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	info, err := a.productUsecase.UpdateProduct(r.Context(), usecase.NewUpdateProductReq(id, form.Name, form.Description, form.Price, form.Category, form.Tags, image))
	if err != nil {
		a.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(*info))
}

// archiveProduct
//
//	@Summary	Архивирование товара
//	@Tags		admin
//	@Produce	json
//	@Param		id	path	string	true	"Идентификатор товара"
//	@Success	204	"Товар архивирован"
//	@Failure	404	{object}	ErrorResponse	"Товар не найден"
//	@Router		/admin/products/{id} [delete]
func (a *AdminHandler) archiveProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := a.productUsecase.ArchiveProduct(r.Context(), id); err != nil {
		a.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type backfillResponse struct {
	Added int `json:"added"`
}

// backfillEmbeddings
//
//	@Summary		Дозаполнение векторного индекса
//	@Description	Считает и сохраняет эмбеддинги для товаров, у которых их ещё нет.
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	backfillResponse	"Количество добавленных векторов"
//	@Failure		500	{object}	ErrorResponse		"Хранилище недоступно"
//	@Router			/admin/embeddings/backfill [post]
func (a *AdminHandler) backfillEmbeddings(w http.ResponseWriter, r *http.Request) {
	added, err := a.retrievalUsecase.EnsureCoverage(r.Context())
	if err != nil {
		a.logger.Errorf(err, "embeddings backfill failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, backfillResponse{Added: added})
}
