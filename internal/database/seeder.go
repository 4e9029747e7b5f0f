// server/internal/database/seeder.go
package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"bike-parking-api-server/config"
	"bike-parking-api-server/internal/apperr"
	"bike-parking-api-server/internal/auth"
	"bike-parking-api-server/internal/logger"
	"bike-parking-api-server/internal/models"
	"bike-parking-api-server/internal/store"
)

// SeedAdmin creates the configured administrator when no admin account exists yet.
// It does nothing when admin.email or admin.password is unset.
func SeedAdmin(ctx context.Context, accounts store.AccountStore, hasher auth.Hasher, cfg config.AdminConfig) error {
	if cfg.Email == "" || cfg.Password == "" {
		return nil
	}

	admins, err := accounts.ListAccounts(ctx, store.AccountFilter{Role: models.RoleAdmin})
	if err != nil {
		return err
	}
	if len(admins) > 0 {
		logger.Info("Admin already exists. Seeding skipped.")
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(cfg.Email))
	if _, err := accounts.GetAccountByEmail(ctx, email); err == nil {
		// promotion stays with cmd/create-admin
		logger.Warn("Seed admin email belongs to a member account; seeding skipped", "email", email)
		return nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}

	logger.Info("Admin not found. Seeding...", "email", email)
	hash, err := hasher.HashPassword(cfg.Password)
	if err != nil {
		return err
	}

	now := time.Now()
	admin := &models.Account{
		Name:         cfg.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Status:       models.AccountActive,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
	if err := accounts.CreateAccount(ctx, admin); err != nil {
		return err
	}

	logger.Info("Admin seeded successfully.", "id", admin.ID.Hex())
	return nil
}

// EnsureAdmin creates an administrator for email, or promotes and reactivates the
// existing account with that email. The password is only set for new accounts.
// It reports whether a new account was created.
func EnsureAdmin(ctx context.Context, accounts store.AccountStore, hasher auth.Hasher, name, email, password string) (*models.Account, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, false, apperr.Validation("email is required", "email")
	}

	existing, err := accounts.GetAccountByEmail(ctx, email)
	switch {
	case err == nil:
		role, status := models.RoleAdmin, models.AccountActive
		updated, err := accounts.UpdateAccount(ctx, existing.ID, models.AccountUpdate{Role: &role, Status: &status})
		if err != nil {
			return nil, false, err
		}
		return updated, false, nil
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, false, err
	}

	if len(password) < 6 {
		return nil, false, apperr.Validation("password must be at least 6 characters", "password")
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}
	hash, err := hasher.HashPassword(password)
	if err != nil {
		return nil, false, err
	}

	now := time.Now()
	admin := &models.Account{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Status:       models.AccountActive,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
	if err := accounts.CreateAccount(ctx, admin); err != nil {
		return nil, false, err
	}
	return admin, true, nil
}
