package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/DRSN-tech/seller-agent/internal/domain"
	"github.com/DRSN-tech/seller-agent/pkg/e"
	"github.com/DRSN-tech/seller-agent/pkg/logger"
)

// ChatUseCase реализует диалоговый сценарий: принимает сообщение покупателя,
// получает рекомендацию и сохраняет обе реплики диалога в одной транзакции.
type ChatUseCase struct {
	sessionRepo    SessionRepository
	messageRepo    MessageRepository
	productUC      ProductUC
	recommendation RecommendationUC
	dbPool         transaction.Transactional
	producer       MessageProducer
	logger         logger.Logger
}

func NewChatUC(
	sessionRepo SessionRepository,
	messageRepo MessageRepository,
	productUC ProductUC,
	recommendation RecommendationUC,
	dbPool transaction.Transactional,
	producer MessageProducer,
	logger logger.Logger,
) *ChatUseCase {
	return &ChatUseCase{
		sessionRepo:    sessionRepo,
		messageRepo:    messageRepo,
		productUC:      productUC,
		recommendation: recommendation,
		dbPool:         dbPool,
		producer:       producer,
		logger:         logger,
	}
}

// Recommend обрабатывает сообщение покупателя: валидирует запрос, строит
// рекомендацию и сохраняет реплики user/assistant в одной транзакции.
// Сбой провайдера сюда не протекает — рекомендация всегда есть, пусть и
// fallback; ошибкой заканчиваются только невалидный запрос и недоступность БД.
func (c *ChatUseCase) Recommend(ctx context.Context, req *RecommendReq) (*RecommendRes, error) {
	const op = "ChatUseCase.Recommend"

	sessionID, err := c.validateRecommendReq(req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	session, err := c.sessionRepo.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	history, err := c.messageRepo.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	rec, fallback := c.recommendation.GetRecommendation(ctx, req.Message, history)

	products, err := c.productUC.GetProductsInfo(ctx, rec.ProductIDs)
	if err != nil {
		// Ответ ценнее карточек: отдаём текст без товарных данных
		c.logger.Warnf("Resolving recommended products failed: %v", e.Wrap(op, err))
		products = nil
	}

	if err := c.persistTurns(ctx, session.ID, req.Message, rec); err != nil {
		return nil, e.Wrap(op, err)
	}

	c.publishServedEvent(session.ID, rec.ProductIDs, fallback)

	return NewRecommendRes(session.ID, rec.Response, products, fallback), nil
}

// CreateSession заводит новую пустую сессию диалога.
func (c *ChatUseCase) CreateSession(ctx context.Context) (*domain.ChatSession, error) {
	const op = "ChatUseCase.CreateSession"

	session, err := c.sessionRepo.GetOrCreate(ctx, uuid.NewString())
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return session, nil
}

// GetConversation возвращает историю диалога сессии в хронологическом порядке.
func (c *ChatUseCase) GetConversation(ctx context.Context, sessionID string) (*ConversationRes, error) {
	const op = "ChatUseCase.GetConversation"

	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, e.Wrap(op, e.ErrInvalidSessionID)
	}

	session, err := c.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	messages, err := c.messageRepo.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	infos := make([]MessageInfo, 0, len(messages))
	for _, msg := range messages {
		infos = append(infos, MessageInfo{
			Role:       string(msg.Role),
			Content:    msg.Content,
			ProductIDs: msg.ProductIDs,
			CreatedAt:  msg.CreatedAt,
		})
	}

	return NewConversationRes(session.ID, infos), nil
}

// persistTurns сохраняет реплику покупателя и ответ ассистента атомарно.
func (c *ChatUseCase) persistTurns(ctx context.Context, sessionID, message string, rec *domain.Recommendation) error {
	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, c.dbPool)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	if _, err = c.messageRepo.Create(ctx, domain.NewChatMessage(sessionID, domain.RoleUser, message, nil)); err != nil {
		return err
	}

	if _, err = c.messageRepo.Create(ctx, domain.NewChatMessage(sessionID, domain.RoleAssistant, rec.Response, rec.ProductIDs)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// publishServedEvent отправляет событие о выданной рекомендации. Доставка
// best-effort: сбой брокера не влияет на ответ покупателю.
func (c *ChatUseCase) publishServedEvent(sessionID string, productIDs []string, fallback bool) {
	const op = "ChatUseCase.publishServedEvent"

	payload, err := json.Marshal(RecommendationServedEvent{
		EventID:    uuid.NewString(),
		SessionID:  sessionID,
		ProductIDs: productIDs,
		Fallback:   fallback,
		Timestamp:  time.Now().UnixNano(),
	})
	if err != nil {
		c.logger.Warnf("Marshaling served event failed: %v", e.Wrap(op, err))
		return
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := c.producer.WriteRawMessage(bgCtx, NewWriteRawMessageReq(sessionID, payload)); err != nil {
			c.logger.Warnf("Publishing served event failed: %v", e.Wrap(op, err))
		}
	}()
}

// validateRecommendReq проверяет запрос и возвращает идентификатор сессии;
// пустой session_id означает новую сессию.
func (c *ChatUseCase) validateRecommendReq(req *RecommendReq) (string, error) {
	if strings.TrimSpace(req.Message) == "" {
		return "", e.ErrMessageRequired
	}

	if strings.TrimSpace(req.SessionID) == "" {
		return uuid.NewString(), nil
	}

	if _, err := uuid.Parse(req.SessionID); err != nil {
		return "", e.ErrInvalidSessionID
	}

	return req.SessionID, nil
}
