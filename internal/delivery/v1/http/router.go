package http

import (
	_ "github.com/DRSN-tech/seller-agent/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/seller-agent/internal/usecase"
	"github.com/DRSN-tech/seller-agent/pkg/logger"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(chatUC usecase.ChatUC, prUC usecase.ProductUC, cartUC usecase.CartUC, retrievalUC usecase.RetrievalUC) {
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"), // ссылка на JSON
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		chatHandler := NewChatHandler(chatUC, r.logger)
		registerChatRoutes(v1, chatHandler)

		prHandler := NewProductHandler(prUC, retrievalUC, r.logger)
		registerProductRoutes(v1, prHandler)

		cartHandler := NewCartHandler(cartUC, r.logger)
		registerCartRoutes(v1, cartHandler)

		adminHandler := NewAdminHandler(prUC, retrievalUC, r.logger)
		registerAdminRoutes(v1, adminHandler)
	})
}

func registerChatRoutes(router chi.Router, chatHandler *ChatHandler) {
	router.Post("/recommend", chatHandler.recommend)
	router.Post("/sessions", chatHandler.createSession)
	router.Get("/conversation/{session_id}", chatHandler.getConversation)
}

func registerProductRoutes(router chi.Router, prHandler *ProductHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", prHandler.listProducts)
		pr.Get("/{id}", prHandler.getProduct)
	})
	router.Post("/search", prHandler.searchProducts)
}

func registerCartRoutes(router chi.Router, cartHandler *CartHandler) {
	router.Route("/cart/{session_id}", func(cart chi.Router) {
		cart.Post("/", cartHandler.addToCart)
		cart.Get("/", cartHandler.getCart)
		cart.Delete("/", cartHandler.clearCart)
		cart.Delete("/items/{product_id}", cartHandler.removeFromCart)
	})
}

func registerAdminRoutes(router chi.Router, adminHandler *AdminHandler) {
	router.Route("/admin", func(admin chi.Router) {
		admin.Post("/products", adminHandler.createProduct)
		admin.Put("/products/{id}", adminHandler.updateProduct)
		admin.Delete("/products/{id}", adminHandler.archiveProduct)
		admin.Post("/embeddings/backfill", adminHandler.backfillEmbeddings)
	})
}
