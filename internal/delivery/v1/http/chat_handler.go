package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/DRSN-tech/seller-agent/internal/usecase"
	"github.com/DRSN-tech/seller-agent/pkg/e"
	"github.com/DRSN-tech/seller-agent/pkg/logger"
)

type ChatHandler struct {
	chatUsecase usecase.ChatUC
	logger      logger.Logger
}

func NewChatHandler(chatUsecase usecase.ChatUC, logger logger.Logger) *ChatHandler {
	return &ChatHandler{chatUsecase: chatUsecase, logger: logger}
}

type recommendRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type recommendResponse struct {
	SessionID string            `json:"session_id"`
	Response  string            `json:"response"`
	Products  []productResponse `json:"products"`
	Fallback  bool              `json:"fallback"`
}

type messageResponse struct {
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	ProductIDs []string  `json:"product_ids,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type conversationResponse struct {
	SessionID string            `json:"session_id"`
	Messages  []messageResponse `json:"messages"`
}

type sessionResponse struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// recommend
//
//	@Summary		Рекомендация товаров по сообщению покупателя
//	@Description	Принимает сообщение, возвращает ответ ассистента и подобранные товары. Session_id не обязателен: без него создаётся новая сессия.
//	@Tags			chat
//	@Accept			json
//	@Produce		json
//	@Param			request	body		recommendRequest	true	"Сообщение покупателя"
//	@Success		200		{object}	recommendResponse	"Рекомендация"
//	@Failure		400		{object}	ErrorResponse		"Ошибка валидации"
//	@Router			/recommend [post]
func (c *ChatHandler) recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	res, err := c.chatUsecase.Recommend(r.Context(), usecase.NewRecommendReq(req.SessionID, req.Message))
	if err != nil {
		c.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, recommendResponse{
		SessionID: res.SessionID,
		Response:  res.Response,
		Products:  toProductResponses(res.Products),
		Fallback:  res.Fallback,
	})
}

// getConversation
//
//	@Summary	История диалога сессии
//	@Tags		chat
//	@Produce	json
//	@Param		session_id	path		string					true	"Идентификатор сессии"
//	@Success	200			{object}	conversationResponse	"История диалога"
//	@Failure	404			{object}	ErrorResponse			"Сессия не найдена"
//	@Router		/conversation/{session_id} [get]
func (c *ChatHandler) getConversation(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")

	res, err := c.chatUsecase.GetConversation(r.Context(), sessionID)
	if err != nil {
		c.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	messages := make([]messageResponse, 0, len(res.Messages))
	for _, msg := range res.Messages {
		messages = append(messages, messageResponse{
			Role:       msg.Role,
			Content:    msg.Content,
			ProductIDs: msg.ProductIDs,
			CreatedAt:  msg.CreatedAt,
		})
	}

	WriteSuccess(w, http.StatusOK, conversationResponse{
		SessionID: res.SessionID,
		Messages:  messages,
	})
}

// createSession
//
//	@Summary	Создание новой сессии диалога
//	@Tags		chat
//	@Produce	json
//	@Success	201	{object}	sessionResponse	"Созданная сессия"
//	@Router		/sessions [post]
func (c *ChatHandler) createSession(w http.ResponseWriter, r *http.Request) {
	session, err := c.chatUsecase.CreateSession(r.Context())
	if err != nil {
		c.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, sessionResponse{
		SessionID: session.ID,
		CreatedAt: session.CreatedAt,
	})
}
