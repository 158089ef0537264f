package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shenase/shenase/internal/domain/entity"
	"github.com/shenase/shenase/internal/domain/repository"
	"github.com/shenase/shenase/pkg/apperrors"
	"github.com/shenase/shenase/pkg/helpers"
)

// fakeSessionRepo is an in-memory SessionRepository. It hands out copies so
// that mutations only become visible through explicit writes, like a real
// store round trip.
type fakeSessionRepo struct {
	mu       sync.Mutex
	byID     map[string]*entity.Session
	byToken  map[string]string // access token -> id
	creates  int
	rejected int // pending forced duplicate-token rejections
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		byID:    make(map[string]*entity.Session),
		byToken: make(map[string]string),
	}
}

func (f *fakeSessionRepo) Create(_ context.Context, s *entity.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.rejected > 0 {
		f.rejected--
		return repository.ErrDuplicateAccessToken
	}
	if _, ok := f.byToken[s.AccessToken]; ok {
		return repository.ErrDuplicateAccessToken
	}
	cp := *s
	f.byID[s.ID] = &cp
	f.byToken[s.AccessToken] = s.ID
	return nil
}

func (f *fakeSessionRepo) GetByAccessToken(_ context.Context, token string) (*entity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byToken[token]
	if !ok {
		return nil, nil
	}
	cp := *f.byID[id]
	return &cp, nil
}

func (f *fakeSessionRepo) UpdateStatus(_ context.Context, id string, status entity.SessionStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.byID[id]; ok {
		s.Status = status
	}
	return nil
}

func (f *fakeSessionRepo) stored(token string) *entity.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byToken[token]
	if !ok {
		return nil
	}
	cp := *f.byID[id]
	return &cp
}

func newSessionService(repo repository.SessionRepository) *SessionService {
	return NewSessionService(repo, 7*24*time.Hour, helpers.NewLogger("test", "development"))
}

const testFingerprint = "2f5a1b6c" // any stable value; only equality matters

func TestSessionCreateValidateRoundTrip(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := newSessionService(repo)
	ctx := context.Background()

	sess, err := svc.Create(ctx, "user-1", testFingerprint)
	require.NoError(t, err)
	require.Equal(t, entity.SessionActive, sess.Status)
	require.Len(t, sess.AccessToken, 32)
	require.True(t, sess.Usable(time.Now()))
	require.False(t, sess.Usable(sess.ExpiresAt))

	got, err := svc.Validate(ctx, sess.AccessToken, testFingerprint)
	require.NoError(t, err)
	require.Equal(t, sess.ID, got.ID)
	require.Equal(t, "user-1", got.UserID)
}

func TestSessionValidateFingerprintMismatch(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := newSessionService(repo)
	ctx := context.Background()

	sess, err := svc.Create(ctx, "user-1", testFingerprint)
	require.NoError(t, err)

	got, err := svc.Validate(ctx, sess.AccessToken, "different-fingerprint")
	require.ErrorIs(t, err, apperrors.ErrInvalidSession)
	require.Nil(t, got)

	// the session itself is untouched
	require.Equal(t, entity.SessionActive, repo.stored(sess.AccessToken).Status)
}

func TestSessionValidateUnknownToken(t *testing.T) {
	svc := newSessionService(newFakeSessionRepo())

	got, err := svc.Validate(context.Background(), "deadbeefdeadbeefdeadbeefdeadbeef", testFingerprint)
	require.ErrorIs(t, err, apperrors.ErrInvalidSession)
	require.Nil(t, got)
}

func TestSessionLazyExpiry(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := newSessionService(repo)
	ctx := context.Background()

	sess, err := svc.Create(ctx, "user-1", testFingerprint)
	require.NoError(t, err)

	// move the clock past the deadline
	svc.now = func() time.Time { return sess.ExpiresAt.Add(time.Minute) }

	got, err := svc.Validate(ctx, sess.AccessToken, testFingerprint)
	require.ErrorIs(t, err, apperrors.ErrInvalidSession)
	require.Nil(t, got)

	// the transition was persisted
	require.Equal(t, entity.SessionExpired, repo.stored(sess.AccessToken).Status)

	// subsequent validations stay invalid, correct fingerprint or not,
	// even after the clock goes back
	svc.now = time.Now
	_, err = svc.Validate(ctx, sess.AccessToken, testFingerprint)
	require.ErrorIs(t, err, apperrors.ErrInvalidSession)
}

func TestSessionDeactivateIdempotent(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := newSessionService(repo)
	ctx := context.Background()

	sess, err := svc.Create(ctx, "user-1", testFingerprint)
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, sess.AccessToken))
	require.Equal(t, entity.SessionInactive, repo.stored(sess.AccessToken).Status)

	// second call observes the same end state and does not error
	require.NoError(t, svc.Deactivate(ctx, sess.AccessToken))
	require.Equal(t, entity.SessionInactive, repo.stored(sess.AccessToken).Status)

	_, err = svc.Validate(ctx, sess.AccessToken, testFingerprint)
	require.ErrorIs(t, err, apperrors.ErrInvalidSession)
}

func TestSessionDeactivateUnknownTokenIsNoop(t *testing.T) {
	svc := newSessionService(newFakeSessionRepo())
	require.NoError(t, svc.Deactivate(context.Background(), "no-such-token"))
}

func TestSessionDeactivateDoesNotReviveExpired(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := newSessionService(repo)
	ctx := context.Background()

	sess, err := svc.Create(ctx, "user-1", testFingerprint)
	require.NoError(t, err)

	svc.now = func() time.Time { return sess.ExpiresAt.Add(time.Minute) }
	_, err = svc.Validate(ctx, sess.AccessToken, testFingerprint)
	require.ErrorIs(t, err, apperrors.ErrInvalidSession)

	// EXPIRED is terminal; logout afterwards must not rewrite it
	require.NoError(t, svc.Deactivate(ctx, sess.AccessToken))
	require.Equal(t, entity.SessionExpired, repo.stored(sess.AccessToken).Status)
}

func TestSessionCreateRetriesOnTokenCollision(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.rejected = 2
	svc := newSessionService(repo)

	sess, err := svc.Create(context.Background(), "user-1", testFingerprint)
	require.NoError(t, err)
	require.NotNil(t, sess)
	require.Equal(t, 3, repo.creates)
}

func TestSessionCreateGivesUpAfterRepeatedCollisions(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.rejected = tokenCreateAttempts
	svc := newSessionService(repo)

	_, err := svc.Create(context.Background(), "user-1", testFingerprint)
	require.Error(t, err)
}
