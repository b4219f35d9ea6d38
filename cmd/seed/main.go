// Command seed provisions the default accounts: one admin plus three test
// users. Existing accounts are left untouched, so the command is safe to run
// repeatedly.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/gdiv-se/richflow/internal/domain/user"
	"github.com/gdiv-se/richflow/internal/storage"
	"github.com/gdiv-se/richflow/internal/storage/postgres"
)

type seedUser struct {
	name     string
	email    string
	password string
	isAdmin  bool
	currency string
}

func seedUsers() ([]seedUser, error) {
	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		return nil, fmt.Errorf("SEED_ADMIN_PASSWORD is required")
	}
	return []seedUser{
		{name: "admin", email: "richflow@gdiv.se", password: adminPassword, isAdmin: true, currency: "USD"},
		{name: "testuser1", email: "testuser1@example.com", password: "Test123!", currency: "USD"},
		{name: "testuser2", email: "testuser2@example.com", password: "Test123!", currency: "EUR"},
		{name: "testuser3", email: "testuser3@example.com", password: "Test123!", currency: "GBP"},
	}, nil
}

func main() {
	_ = godotenv.Load()

	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	users, err := seedUsers()
	if err != nil {
		return err
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if err := postgres.Migrate(ctx, db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	store := postgres.New(db)
	for _, su := range users {
		if _, err := store.GetUserByEmail(ctx, su.email); err == nil {
			fmt.Printf("skipped %s (already exists)\n", su.email)
			continue
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(su.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", su.email, err)
		}
		created, err := store.CreateUser(ctx, user.User{
			Name:              su.name,
			Email:             su.email,
			PasswordHash:      string(hash),
			IsAdmin:           su.isAdmin,
			PreferredCurrency: su.currency,
		})
		if err != nil {
			return fmt.Errorf("create %s: %w", su.email, err)
		}
		fmt.Printf("created %s (%s)\n", created.Email, created.ID)
	}
	return nil
}
