package repository

import (
	"context"

	"github.com/shenase/shenase/internal/domain/entity"
)

// UserRepository is the credential store contract.
//
// Lookups return (nil, nil) when no match exists; an error always means the
// store itself failed. Create persists the user and its profile atomically:
// a concurrent reader never observes the user without the profile.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User, p *entity.Profile) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	UpdateRole(ctx context.Context, id string, role entity.Role) error
	UpdateStatus(ctx context.Context, id string, status entity.UserStatus) error
	UpdateAvatar(ctx context.Context, userID, avatar string) error
	SetVerified(ctx context.Context, id string) error
	List(ctx context.Context) ([]*entity.User, error)
}
