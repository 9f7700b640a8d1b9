package pgdb

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"

	"github.com/DRSN-tech/seller-agent/internal/domain"
	"github.com/DRSN-tech/seller-agent/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/seller-agent/pkg/e"
	"github.com/DRSN-tech/seller-agent/pkg/tr"
)

// MessageRepo реализует репозиторий реплик диалога поверх PostgreSQL.
type MessageRepo struct {
	pool *pgxpool.Pool
	conv converter.ChatMessageConverter
}

func NewMessageRepo(pool *pgxpool.Pool, conv converter.ChatMessageConverter) *MessageRepo {
	return &MessageRepo{pool: pool, conv: conv}
}

// Create сохраняет реплику диалога. Требует активной транзакции в контексте:
// реплики user и assistant пишутся атомарно.
func (m *MessageRepo) Create(ctx context.Context, message *domain.ChatMessage) (*domain.ChatMessage, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model := m.conv.ToModel(message)
	query := `
		INSERT INTO chat_messages (session_id, role, content, product_ids)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at;
	`

	if err := tx.QueryRow(ctx, query,
		model.SessionID, model.Role, model.Content, model.ProductIDs,
	).Scan(&model.ID, &model.CreatedAt); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return m.conv.ToEntity(model), nil
}

// ListBySession возвращает реплики сессии в хронологическом порядке.
func (m *MessageRepo) ListBySession(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	query := `
		SELECT id, session_id, role, content, product_ids, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY id;
	`

	rows, err := m.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	var models []*converter.ChatMessageModel
	for rows.Next() {
		var model converter.ChatMessageModel
		if err := rows.Scan(
			&model.ID, &model.SessionID, &model.Role,
			&model.Content, &model.ProductIDs, &model.CreatedAt,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		models = append(models, &model)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return m.conv.ToArrEntity(models), nil
}
