package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shenase/shenase/internal/domain/entity"
	"github.com/shenase/shenase/internal/domain/repository"
	"github.com/shenase/shenase/pkg/apperrors"
	"github.com/shenase/shenase/pkg/helpers"
)

// tokenCreateAttempts bounds the retry loop on access-token collisions.
// With 128-bit tokens a single retry should never happen in practice.
const tokenCreateAttempts = 3

// SessionService owns the session lifecycle: issuance, validation with
// fingerprint binding and lazy expiry, and explicit deactivation.
type SessionService struct {
	Sessions repository.SessionRepository
	TTL      time.Duration
	Logger   *logrus.Logger

	now func() time.Time
}

func NewSessionService(sessions repository.SessionRepository, ttl time.Duration, logger *logrus.Logger) *SessionService {
	return &SessionService{
		Sessions: sessions,
		TTL:      ttl,
		Logger:   logger,
		now:      time.Now,
	}
}

// Create issues a fresh ACTIVE session for the given user and client
// fingerprint, expiring after the configured TTL.
func (s *SessionService) Create(ctx context.Context, userID, fingerprint string) (*entity.Session, error) {
	for i := 0; i < tokenCreateAttempts; i++ {
		token, err := helpers.NewAccessToken()
		if err != nil {
			return nil, err
		}
		sess := &entity.Session{
			ID:                uuid.NewString(),
			AccessToken:       token,
			ClientFingerprint: fingerprint,
			Status:            entity.SessionActive,
			ExpiresAt:         s.now().Add(s.TTL),
			UserID:            userID,
		}
		err = s.Sessions.Create(ctx, sess)
		if errors.Is(err, repository.ErrDuplicateAccessToken) {
			if s.Logger != nil {
				s.Logger.WithField("user_id", userID).Warn("access token collision, retrying")
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		return sess, nil
	}
	return nil, errors.New("could not allocate a unique access token")
}

// Validate resolves an access token to a usable session.
//
// It returns apperrors.ErrInvalidSession uniformly when the token is unknown,
// the session is INACTIVE or EXPIRED, or the presented fingerprint does not
// match. An ACTIVE session past its deadline is transitioned to EXPIRED,
// the transition is persisted, and the validation still fails; validation
// never extends a session's expiry.
func (s *SessionService) Validate(ctx context.Context, accessToken, fingerprint string) (*entity.Session, error) {
	sess, err := s.Sessions.GetByAccessToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.Status != entity.SessionActive {
		return nil, apperrors.ErrInvalidSession
	}
	if subtle.ConstantTimeCompare([]byte(sess.ClientFingerprint), []byte(fingerprint)) != 1 {
		return nil, apperrors.ErrInvalidSession
	}
	if !s.now().Before(sess.ExpiresAt) {
		if err := s.Sessions.UpdateStatus(ctx, sess.ID, entity.SessionExpired); err != nil {
			return nil, err
		}
		return nil, apperrors.ErrInvalidSession
	}
	return sess, nil
}

// Deactivate marks the session INACTIVE. Idempotent: an unknown token or an
// already terminal session is a no-op, not an error.
func (s *SessionService) Deactivate(ctx context.Context, accessToken string) error {
	sess, err := s.Sessions.GetByAccessToken(ctx, accessToken)
	if err != nil {
		return err
	}
	if sess == nil || sess.Status != entity.SessionActive {
		return nil
	}
	return s.Sessions.UpdateStatus(ctx, sess.ID, entity.SessionInactive)
}
