package repository

import (
	"context"
	"errors"

	"github.com/shenase/shenase/internal/domain/entity"
)

// SessionRepository persists session records keyed by their unique access
// token. GetByAccessToken returns (nil, nil) when no session matches.
// Create must fail when the access token already exists so that the session
// service can retry with a fresh token.
type SessionRepository interface {
	Create(ctx context.Context, s *entity.Session) error
	GetByAccessToken(ctx context.Context, accessToken string) (*entity.Session, error)
	UpdateStatus(ctx context.Context, id string, status entity.SessionStatus) error
}

// ErrDuplicateAccessToken is returned by Create on a token collision.
// With 128 bits of entropy this is effectively unreachable, but the session
// service still retries a bounded number of times.
var ErrDuplicateAccessToken = errors.New("access token already exists")
