package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shenase/shenase/internal/domain/entity"
	"github.com/shenase/shenase/internal/domain/repository"
)

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, s *entity.Session) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (id, access_token, client_fingerprint, status, expires_at, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, s.ID, s.AccessToken, s.ClientFingerprint, s.Status, s.ExpiresAt, s.UserID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation &&
			pgErr.ConstraintName == "sessions_access_token_key" {
			return repository.ErrDuplicateAccessToken
		}
		return err
	}
	return nil
}

func (r *SessionRepository) GetByAccessToken(ctx context.Context, accessToken string) (*entity.Session, error) {
	s := &entity.Session{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, access_token, client_fingerprint, status, expires_at, user_id
		FROM sessions
		WHERE access_token = $1
	`, accessToken)
	if err := row.Scan(&s.ID, &s.AccessToken, &s.ClientFingerprint, &s.Status, &s.ExpiresAt, &s.UserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

func (r *SessionRepository) UpdateStatus(ctx context.Context, id string, status entity.SessionStatus) error {
	_, err := r.pool.Exec(ctx, `UPDATE sessions SET status = $1 WHERE id = $2`, status, id)
	return err
}

var _ repository.SessionRepository = (*SessionRepository)(nil)
