package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/shenase/shenase/config"
	"github.com/shenase/shenase/internal/domain/entity"
	pginfra "github.com/shenase/shenase/internal/infrastructure/postgres"
	"github.com/shenase/shenase/pkg/helpers"
)

// Seeds an initial admin account for local development.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	repo := pginfra.NewUserRepository(pool)

	const (
		username = "admin"
		email    = "admin@localhost"
		password = "changeme123"
	)

	if existing, err := repo.GetByUsername(ctx, username); err != nil {
		log.Fatalf("lookup failed: %v", err)
	} else if existing != nil {
		fmt.Printf("admin user already present: id=%s\n", existing.ID)
		return
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	u := &entity.User{
		ID:             uuid.NewString(),
		Username:       username,
		Email:          email,
		HashedPassword: hash,
		Role:           entity.RoleAdmin,
		Status:         entity.UserActive,
		IsVerified:     true,
	}
	p := &entity.Profile{
		ID:          uuid.NewString(),
		DisplayName: "Administrator",
		Avatar:      cfg.DefaultAvatar,
	}
	if err := repo.Create(ctx, u, p); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s username=%s password=%s\n", u.ID, username, password)
}
