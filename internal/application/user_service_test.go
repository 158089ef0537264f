package application

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/shenase/shenase/internal/domain/entity"
	"github.com/shenase/shenase/internal/domain/repository"
	"github.com/shenase/shenase/pkg/apperrors"
	"github.com/shenase/shenase/pkg/helpers"
)

// fakeUserRepo is an in-memory UserRepository with atomic user+profile
// creation, mirroring the transactional contract of the real store.
type fakeUserRepo struct {
	mu   sync.Mutex
	byID map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*entity.User)}
}

func cloneUser(u *entity.User) *entity.User {
	cp := *u
	if u.Profile != nil {
		pcp := *u.Profile
		cp.Profile = &pcp
	}
	return &cp
}

func (f *fakeUserRepo) Create(_ context.Context, u *entity.User, p *entity.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Username == u.Username {
			return apperrors.ErrDuplicateUsername
		}
		if existing.Email == u.Email {
			return apperrors.ErrDuplicateEmail
		}
	}
	u.CreatedAt = time.Now()
	p.UserID = u.ID
	u.Profile = p
	f.byID[u.ID] = cloneUser(u)
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		return cloneUser(u), nil
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[u.ID]; !ok {
		return apperrors.ErrUserNotFound
	}
	f.byID[u.ID] = cloneUser(u)
	return nil
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, id string, role entity.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (f *fakeUserRepo) UpdateStatus(_ context.Context, id string, status entity.UserStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Status = status
	return nil
}

func (f *fakeUserRepo) UpdateAvatar(_ context.Context, userID, avatar string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if u.Profile != nil {
		u.Profile.Avatar = avatar
	}
	return nil
}

func (f *fakeUserRepo) SetVerified(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.IsVerified = true
	return nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newUserService(repo repository.UserRepository) *UserService {
	logger := helpers.NewLogger("test", "development")
	return NewUserService(UserServiceParams{
		Repo:          repo,
		Sessions:      newSessionService(newFakeSessionRepo()),
		Logger:        logger,
		DefaultAvatar: "default.jpg",
		VerifyTokens:  helpers.NewVerifyTokenManager("test-secret", time.Hour),
	})
}

func registerJohn(t *testing.T, svc *UserService) *entity.User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{
		Username:    "johndoe",
		Email:       "john@example.com",
		Password:    "password123",
		DisplayName: "John Doe",
	})
	require.NoError(t, err)
	return u
}

func TestRegisterCreatesUserWithProfile(t *testing.T) {
	svc := newUserService(newFakeUserRepo())
	u := registerJohn(t, svc)

	require.NotEmpty(t, u.ID)
	require.Equal(t, entity.RoleUser, u.Role)
	require.Equal(t, entity.UserActive, u.Status)
	require.False(t, u.IsVerified)
	require.NotNil(t, u.Profile)
	require.Equal(t, "John Doe", u.Profile.DisplayName)
	require.Equal(t, "default.jpg", u.Profile.Avatar)
	require.NotEqual(t, "password123", u.HashedPassword)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newUserService(newFakeUserRepo())
	registerJohn(t, svc)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username:    "johndoe",
		Email:       "other@example.com", // different email, same username
		Password:    "password123",
		DisplayName: "Another John",
	})
	require.ErrorIs(t, err, apperrors.ErrDuplicateUsername)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newUserService(newFakeUserRepo())
	registerJohn(t, svc)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username:    "janedoe",
		Email:       "john@example.com",
		Password:    "password123",
		DisplayName: "Jane Doe",
	})
	require.ErrorIs(t, err, apperrors.ErrDuplicateEmail)
}

func TestLoginSuccessIssuesSession(t *testing.T) {
	svc := newUserService(newFakeUserRepo())
	registerJohn(t, svc)

	u, sess, err := svc.Login(context.Background(), "johndoe", "password123", testFingerprint)
	require.NoError(t, err)
	require.Equal(t, "johndoe", u.Username)
	require.Equal(t, u.ID, sess.UserID)
	require.Equal(t, testFingerprint, sess.ClientFingerprint)
	require.Equal(t, entity.SessionActive, sess.Status)
}

func TestLoginFailureIsUniform(t *testing.T) {
	svc := newUserService(newFakeUserRepo())
	registerJohn(t, svc)

	_, _, errWrongPassword := svc.Login(context.Background(), "johndoe", "wrongpassword", testFingerprint)
	require.ErrorIs(t, errWrongPassword, apperrors.ErrInvalidCredentials)

	_, _, errUnknownUser := svc.Login(context.Background(), "nosuchuser", "password123", testFingerprint)
	require.ErrorIs(t, errUnknownUser, apperrors.ErrInvalidCredentials)

	// no enumeration signal in the error itself
	require.Equal(t, errWrongPassword.Error(), errUnknownUser.Error())
}

func TestUpdateRejectsTakenUsername(t *testing.T) {
	svc := newUserService(newFakeUserRepo())
	registerJohn(t, svc)
	jane, err := svc.Register(context.Background(), RegisterInput{
		Username:    "janedoe",
		Email:       "jane@example.com",
		Password:    "password123",
		DisplayName: "Jane Doe",
	})
	require.NoError(t, err)

	taken := "johndoe"
	_, err = svc.Update(context.Background(), jane.ID, UpdateInput{Username: &taken})
	require.ErrorIs(t, err, apperrors.ErrDuplicateUsername)
}

func TestUpdateAllowsKeepingOwnValues(t *testing.T) {
	svc := newUserService(newFakeUserRepo())
	u := registerJohn(t, svc)

	same := "johndoe"
	bio := "hello"
	updated, err := svc.Update(context.Background(), u.ID, UpdateInput{Username: &same, Bio: &bio})
	require.NoError(t, err)
	require.Equal(t, "johndoe", updated.Username)
	require.Equal(t, "hello", updated.Profile.Bio)
}

func TestUpdateRoleUnknownUser(t *testing.T) {
	svc := newUserService(newFakeUserRepo())
	_, err := svc.UpdateRole(context.Background(), "ghost", entity.RoleModerator)
	require.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUpdateStatus(t *testing.T) {
	svc := newUserService(newFakeUserRepo())
	registerJohn(t, svc)

	u, err := svc.UpdateStatus(context.Background(), "johndoe", entity.UserSuspended)
	require.NoError(t, err)
	require.Equal(t, entity.UserSuspended, u.Status)
}

func TestVerifyInitAndConfirm(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newUserService(repo)
	u := registerJohn(t, svc)

	link, already, err := svc.VerifyInit(context.Background(), u.ID)
	require.NoError(t, err)
	require.False(t, already)
	require.Contains(t, link, "?token=")
	token := link[strings.Index(link, "?token=")+len("?token="):]
	require.NotEmpty(t, token)

	require.NoError(t, svc.VerifyConfirm(context.Background(), token))
	fresh, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.True(t, fresh.IsVerified)

	_, already, err = svc.VerifyInit(context.Background(), u.ID)
	require.NoError(t, err)
	require.True(t, already)
}

func TestVerifyConfirmRejectsGarbageToken(t *testing.T) {
	svc := newUserService(newFakeUserRepo())
	err := svc.VerifyConfirm(context.Background(), "not-a-token")
	require.ErrorIs(t, err, apperrors.ErrInvalidSession)
}

func TestIdentityCacheInvalidatedOnStatusChange(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	repo := newFakeUserRepo()
	svc := newUserService(repo)
	svc.Redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	u := registerJohn(t, svc)

	// prime the cache
	got, err := svc.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, entity.UserActive, got.Status)

	_, err = svc.UpdateStatus(context.Background(), "johndoe", entity.UserSuspended)
	require.NoError(t, err)

	// the next read observes the new status, not the cached one
	got, err = svc.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, entity.UserSuspended, got.Status)
}
