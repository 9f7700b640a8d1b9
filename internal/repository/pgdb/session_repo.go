package pgdb

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"

	"github.com/DRSN-tech/seller-agent/internal/domain"
	"github.com/DRSN-tech/seller-agent/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/seller-agent/pkg/e"
)

// SessionRepo реализует репозиторий сессий диалога поверх PostgreSQL.
type SessionRepo struct {
	pool *pgxpool.Pool
	conv converter.ChatSessionConverter
}

func NewSessionRepo(pool *pgxpool.Pool, conv converter.ChatSessionConverter) *SessionRepo {
	return &SessionRepo{pool: pool, conv: conv}
}

// GetOrCreate идемпотентно возвращает сессию с указанным идентификатором,
// создавая её при первом обращении.
func (s *SessionRepo) GetOrCreate(ctx context.Context, id string) (*domain.ChatSession, error) {
	query := `
		WITH ins AS (
			INSERT INTO chat_sessions (id)
			VALUES ($1)
			ON CONFLICT (id) DO NOTHING
			RETURNING id, created_at, updated_at
		)
		SELECT id, created_at, updated_at FROM ins
		UNION ALL
		SELECT id, created_at, updated_at FROM chat_sessions
		WHERE id = $1 AND NOT EXISTS (SELECT 1 FROM ins);
	`

	var model converter.ChatSessionModel
	if err := s.pool.QueryRow(ctx, query, id).
		Scan(&model.ID, &model.CreatedAt, &model.UpdatedAt); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return s.conv.ToEntity(&model), nil
}

// Get возвращает существующую сессию.
func (s *SessionRepo) Get(ctx context.Context, id string) (*domain.ChatSession, error) {
	query := `SELECT id, created_at, updated_at FROM chat_sessions WHERE id = $1;`

	var model converter.ChatSessionModel
	if err := s.pool.QueryRow(ctx, query, id).
		Scan(&model.ID, &model.CreatedAt, &model.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrSessionNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return s.conv.ToEntity(&model), nil
}
