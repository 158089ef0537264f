package application

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/shenase/shenase/internal/domain/entity"
	"github.com/shenase/shenase/internal/domain/repository"
	"github.com/shenase/shenase/pkg/apperrors"
	"github.com/shenase/shenase/pkg/helpers"
	"github.com/shenase/shenase/pkg/mailer"
)

// identityCacheTTL bounds how stale a cached identity may be. Writes that
// change role or status invalidate the key immediately, so the TTL only
// matters to cross-instance consistency.
const identityCacheTTL = 30 * time.Second

func identityKey(userID string) string {
	return "user:ident:" + userID
}

// UserServiceParams collects the collaborators of UserService; the blob
// store, cache, search index, and mail queue are optional and skipped when
// nil.
type UserServiceParams struct {
	Repo     repository.UserRepository
	Sessions *SessionService
	Logger   *logrus.Logger

	Redis *redis.Client

	GCS           *storage.Client
	GCSBucket     string
	AvatarPrefix  string
	DefaultAvatar string

	ES           *elasticsearch.Client
	ESUsersIndex string

	VerifyTokens   *helpers.VerifyTokenManager
	VerifyEmailURL string
	Pub            *helpers.RabbitPublisher
	MailEnabled    bool
}

// UserService implements registration, login, profile management, and the
// administrative role/status operations on top of the credential store.
type UserService struct {
	UserServiceParams
}

func NewUserService(p UserServiceParams) *UserService {
	return &UserService{UserServiceParams: p}
}

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
	Bio         string
	Location    string
}

// Register creates the user and its profile atomically. Uniqueness is
// pre-checked to produce a specific error kind; the store's constraints
// remain the backstop for concurrent registrations.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	if existing, err := s.Repo.GetByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.ErrDuplicateUsername
	}
	if existing, err := s.Repo.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.ErrDuplicateEmail
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{
		ID:             uuid.NewString(),
		Username:       in.Username,
		Email:          in.Email,
		HashedPassword: hash,
		Role:           entity.RoleUser,
		Status:         entity.UserActive,
	}
	p := &entity.Profile{
		ID:          uuid.NewString(),
		DisplayName: in.DisplayName,
		Avatar:      s.DefaultAvatar,
		Bio:         in.Bio,
		Location:    in.Location,
	}

	if err := s.Repo.Create(ctx, u, p); err != nil {
		if apperrors.Expected(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUserCreation, err)
	}

	s.indexUser(ctx, u)
	return u, nil
}

// Login verifies the credentials and issues a session bound to the client
// fingerprint. The failure is uniform: an unknown username and a wrong
// password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username, password, fingerprint string) (*entity.User, *entity.Session, error) {
	u, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	if u == nil || !helpers.CompareHashAndPassword(u.HashedPassword, password) {
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	sess, err := s.Sessions.Create(ctx, u.ID, fingerprint)
	if err != nil {
		return nil, nil, err
	}
	return u, sess, nil
}

// Logout invalidates the presented session. Idempotent.
func (s *UserService) Logout(ctx context.Context, accessToken string) error {
	return s.Sessions.Deactivate(ctx, accessToken)
}

// GetByID loads a user through the short-lived identity cache. Used by the
// authentication gate on every request.
func (s *UserService) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if s.Redis != nil {
		var cached entity.User
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, identityKey(id), &cached); err == nil && ok {
			return &cached, nil
		}
	}
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil || u == nil {
		return u, err
	}
	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, identityKey(id), u, identityCacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("identity cache write failed")
		}
	}
	return u, nil
}

// GetByUsername returns the named user or apperrors.ErrUserNotFound.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	u, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

// UpdateInput carries a partial user/profile update; nil fields are left
// untouched.
type UpdateInput struct {
	Username    *string
	Email       *string
	Password    *string
	DisplayName *string
	Bio         *string
	Location    *string
}

// Update applies a partial update to the caller's own account and profile,
// re-checking uniqueness for a changed username or email.
func (s *UserService) Update(ctx context.Context, userID string, in UpdateInput) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperrors.ErrUserNotFound
	}

	if in.Username != nil && *in.Username != u.Username {
		if existing, err := s.Repo.GetByUsername(ctx, *in.Username); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, apperrors.ErrDuplicateUsername
		}
		u.Username = *in.Username
	}
	if in.Email != nil && *in.Email != u.Email {
		if existing, err := s.Repo.GetByEmail(ctx, *in.Email); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, apperrors.ErrDuplicateEmail
		}
		u.Email = *in.Email
	}
	if in.Password != nil {
		hash, err := helpers.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		u.HashedPassword = hash
	}
	if u.Profile != nil {
		if in.DisplayName != nil {
			u.Profile.DisplayName = *in.DisplayName
		}
		if in.Bio != nil {
			u.Profile.Bio = *in.Bio
		}
		if in.Location != nil {
			u.Profile.Location = *in.Location
		}
	}

	if err := s.Repo.Update(ctx, u); err != nil {
		if apperrors.Expected(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUserUpdate, err)
	}

	s.invalidateIdentity(ctx, u.ID)
	s.indexUser(ctx, u)
	return u, nil
}

// UpdateRole changes the named user's role.
func (s *UserService) UpdateRole(ctx context.Context, username string, role entity.Role) (*entity.User, error) {
	u, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateRole(ctx, u.ID, role); err != nil {
		return nil, err
	}
	u.Role = role
	s.invalidateIdentity(ctx, u.ID)
	s.indexUser(ctx, u)
	return u, nil
}

// UpdateStatus changes the named user's account status.
func (s *UserService) UpdateStatus(ctx context.Context, username string, status entity.UserStatus) (*entity.User, error) {
	u, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateStatus(ctx, u.ID, status); err != nil {
		return nil, err
	}
	u.Status = status
	s.invalidateIdentity(ctx, u.ID)
	s.indexUser(ctx, u)
	return u, nil
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]*entity.User, error) {
	return s.Repo.List(ctx)
}

// SaveAvatar stores the uploaded file in the blob store under a generated
// unique object name and records that name on the profile. Returns the
// public URL of the stored object.
func (s *UserService) SaveAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", fmt.Errorf("avatar storage not configured")
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", apperrors.ErrUserNotFound
	}

	objectName := uniqueFilename(filename)
	objectPath := filepath.ToSlash(filepath.Join(s.AvatarPrefix, objectName))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	if err := s.Repo.UpdateAvatar(ctx, userID, objectName); err != nil {
		return "", err
	}
	s.invalidateIdentity(ctx, userID)
	return url, nil
}

// uniqueFilename keeps the original extension on a short random stem.
func uniqueFilename(filename string) string {
	stem := strings.ReplaceAll(uuid.NewString(), "-", "")[:15]
	return stem + strings.ToLower(filepath.Ext(filename))
}

// VerifyInit issues a signed verification link for the user and enqueues the
// verification email. The second result reports whether the account was
// already verified, in which case no link is issued.
func (s *UserService) VerifyInit(ctx context.Context, userID string) (string, bool, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return "", false, err
	}
	if u == nil {
		return "", false, apperrors.ErrUserNotFound
	}
	if u.IsVerified {
		return "", true, nil
	}

	token, err := s.VerifyTokens.Generate(u.ID)
	if err != nil {
		return "", false, err
	}
	link := s.VerifyEmailURL + "?token=" + token

	if s.Pub != nil && s.MailEnabled {
		displayName := u.Username
		if u.Profile != nil && u.Profile.DisplayName != "" {
			displayName = u.Profile.DisplayName
		}
		job := mailer.VerificationEmail(u.Email, displayName, link)
		if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("verification email enqueue failed")
		}
	}
	return link, false, nil
}

// VerifyConfirm validates the signed token and marks the account verified.
func (s *UserService) VerifyConfirm(ctx context.Context, token string) error {
	userID, err := s.VerifyTokens.Parse(token)
	if err != nil {
		return apperrors.ErrInvalidSession
	}
	if err := s.Repo.SetVerified(ctx, userID); err != nil {
		return err
	}
	s.invalidateIdentity(ctx, userID)
	return nil
}

func (s *UserService) invalidateIdentity(ctx context.Context, userID string) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, identityKey(userID)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("identity cache invalidation failed")
	}
}

func (s *UserService) indexUser(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	doc := map[string]any{
		"id":          u.ID,
		"username":    u.Username,
		"email":       u.Email,
		"role":        u.Role,
		"status":      u.Status,
		"is_verified": u.IsVerified,
		"created_at":  u.CreatedAt.Format(time.RFC3339Nano),
	}
	if u.Profile != nil {
		doc["display_name"] = u.Profile.DisplayName
		doc["location"] = u.Profile.Location
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}

// Search performs a multi_match query over the user index.
func (s *UserService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"username^2", "email^2", "display_name", "location"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
