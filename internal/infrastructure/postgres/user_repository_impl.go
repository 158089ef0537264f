package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shenase/shenase/internal/domain/entity"
	"github.com/shenase/shenase/internal/domain/repository"
	"github.com/shenase/shenase/pkg/apperrors"
)

const uniqueViolation = "23505"

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userSelect = `
	SELECT u.id, u.username, u.email, u.hashed_password, u.role, u.status,
	       u.is_verified, u.created_at,
	       p.id, p.display_name, p.avatar, p.bio, p.location
	FROM users u
	JOIN profiles p ON p.user_id = u.id
`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{Profile: &entity.Profile{}}
	if err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.Role, &u.Status,
		&u.IsVerified, &u.CreatedAt,
		&u.Profile.ID, &u.Profile.DisplayName, &u.Profile.Avatar,
		&u.Profile.Bio, &u.Profile.Location,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.Profile.UserID = u.ID
	return u, nil
}

// Create inserts the user and its profile in a single transaction. The
// uniqueness pre-checks live in the service layer; the constraint mapping
// here is the backstop for concurrent registrations.
func (r *UserRepository) Create(ctx context.Context, u *entity.User, p *entity.Profile) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO users (id, username, email, hashed_password, role, status, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, u.ID, u.Username, u.Email, u.HashedPassword, u.Role, u.Status, u.IsVerified)
	if err := row.Scan(&u.CreatedAt); err != nil {
		return mapUniqueViolation(err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO profiles (id, display_name, avatar, bio, location, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.DisplayName, p.Avatar, p.Bio, p.Location, u.ID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	p.UserID = u.ID
	u.Profile = p
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, userSelect+` WHERE u.id = $1`, id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, userSelect+` WHERE u.username = $1`, username))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, userSelect+` WHERE u.email = $1`, email))
}

// Update persists user and profile fields in one transaction.
func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res, err := tx.Exec(ctx, `
		UPDATE users
		SET username = $1, email = $2, hashed_password = $3
		WHERE id = $4
	`, u.Username, u.Email, u.HashedPassword, u.ID)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if res.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	if u.Profile != nil {
		if _, err := tx.Exec(ctx, `
			UPDATE profiles
			SET display_name = $1, avatar = $2, bio = $3, location = $4
			WHERE user_id = $5
		`, u.Profile.DisplayName, u.Profile.Avatar, u.Profile.Bio, u.Profile.Location, u.ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *UserRepository) UpdateRole(ctx context.Context, id string, role entity.Role) error {
	return r.updateColumn(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, id)
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id string, status entity.UserStatus) error {
	return r.updateColumn(ctx, `UPDATE users SET status = $1 WHERE id = $2`, status, id)
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, userID, avatar string) error {
	return r.updateColumn(ctx, `UPDATE profiles SET avatar = $1 WHERE user_id = $2`, avatar, userID)
}

func (r *UserRepository) SetVerified(ctx context.Context, id string) error {
	return r.updateColumn(ctx, `UPDATE users SET is_verified = TRUE WHERE id = $1`, id)
}

func (r *UserRepository) updateColumn(ctx context.Context, sql string, args ...any) error {
	res, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, userSelect+` ORDER BY u.created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "users_username_key":
			return apperrors.ErrDuplicateUsername
		case "users_email_key":
			return apperrors.ErrDuplicateEmail
		}
	}
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)
