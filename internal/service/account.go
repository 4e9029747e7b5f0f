package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"bike-parking-api-server/internal/apperr"
	"bike-parking-api-server/internal/auth"
	"bike-parking-api-server/internal/logger"
	"bike-parking-api-server/internal/models"
	"bike-parking-api-server/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccountService covers signup, login, caller resolution, self-service profile
// changes and the admin user-management operations.
type AccountService struct {
	accounts store.AccountStore
	hasher   auth.Hasher
	tokens   *auth.TokenManager
	now      func() time.Time
}

func NewAccountService(accounts store.AccountStore, hasher auth.Hasher, tokens *auth.TokenManager) *AccountService {
	return &AccountService{accounts: accounts, hasher: hasher, tokens: tokens, now: time.Now}
}

type SignupInput struct {
	Name     string `json:"name" binding:"required,notblank"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Session is what signup and login hand back to the client.
type Session struct {
	Token   string          `json:"token"`
	Account *models.Account `json:"user"`
}

func (s *AccountService) session(a *models.Account) (*Session, error) {
	token, err := s.tokens.Issue(a.ID, a.Email, string(a.Role))
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, Account: a}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AccountService) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)

	hash, err := s.hasher.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := s.now()
	a := &models.Account{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleMember,
		Status:       models.AccountActive,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
	if err := s.accounts.CreateAccount(ctx, a); err != nil {
		return nil, err
	}
	logger.Info("Account registered", "id", a.ID.Hex())
	return s.session(a)
}

// Login checks credentials before status, so a deactivated account only learns it is
// deactivated after proving its password.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	email := normalizeEmail(in.Email)
	a, err := s.accounts.GetAccountByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.CheckPasswordHash(in.Password, a.PasswordHash) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if a.Status != models.AccountActive {
		return nil, apperr.Forbidden("account deactivated")
	}
	return s.session(a)
}

// ResolveCaller maps a bearer token to the live account behind it.
func (s *AccountService) ResolveCaller(ctx context.Context, token string) (*models.Account, error) {
	if token == "" {
		return nil, apperr.Unauthorized("no token provided")
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	a, err := s.accounts.GetAccount(ctx, claims.ID())
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Unauthorized("user no longer exists")
	}
	if err != nil {
		return nil, err
	}
	if a.Status != models.AccountActive {
		return nil, apperr.Forbidden("account deactivated")
	}
	return a, nil
}

// Managed accounts: admins act on members only.

func (s *AccountService) managed(ctx context.Context, id string) (*models.Account, error) {
	oid, err := parseID(id, "user")
	if err != nil {
		return nil, err
	}
	a, err := s.accounts.GetAccount(ctx, oid)
	if err != nil {
		return nil, err
	}
	if a.IsAdmin() {
		return nil, apperr.Forbidden("administrator accounts cannot be managed")
	}
	return a, nil
}

func (s *AccountService) ListMembers(ctx context.Context) ([]models.Account, error) {
	return s.accounts.ListAccounts(ctx, store.AccountFilter{ExcludeRole: models.RoleAdmin})
}

func (s *AccountService) GetManaged(ctx context.Context, id string) (*models.Account, error) {
	return s.managed(ctx, id)
}

// ManagedUpdateInput is the admin edit of a member. Empty fields keep their value.
type ManagedUpdateInput struct {
	Name   string `json:"name"`
	Email  string `json:"email" binding:"omitempty,email"`
	Role   string `json:"role" binding:"omitempty,oneofci=member admin"`
	Status string `json:"status" binding:"omitempty,oneofci=active inactive"`
}

func (s *AccountService) UpdateManaged(ctx context.Context, id string, in ManagedUpdateInput) (*models.Account, error) {
	a, err := s.managed(ctx, id)
	if err != nil {
		return nil, err
	}

	var update models.AccountUpdate
	if name := strings.TrimSpace(in.Name); name != "" {
		update.Name = &name
	}
	if email := normalizeEmail(in.Email); email != "" {
		update.Email = &email
	}
	if role := models.Role(strings.ToLower(strings.TrimSpace(in.Role))); role != "" {
		if role == models.RoleAdmin {
			return nil, apperr.Forbidden("users cannot be promoted to administrator")
		}
		update.Role = &role
	}
	if status := models.AccountStatus(strings.ToLower(strings.TrimSpace(in.Status))); status != "" {
		update.Status = &status
	}
	if len(update.SetDocument()) == 0 {
		return a, nil
	}
	return s.accounts.UpdateAccount(ctx, a.ID, update)
}

func (s *AccountService) DeleteManaged(ctx context.Context, id string) error {
	a, err := s.managed(ctx, id)
	if err != nil {
		return err
	}
	if err := s.accounts.DeleteAccount(ctx, a.ID); err != nil {
		return err
	}
	logger.Info("Account deleted", "id", a.ID.Hex())
	return nil
}

// ToggleStatus flips a member between active and inactive.
func (s *AccountService) ToggleStatus(ctx context.Context, id string) (*models.Account, error) {
	a, err := s.managed(ctx, id)
	if err != nil {
		return nil, err
	}
	next := models.AccountInactive
	if a.Status != models.AccountActive {
		next = models.AccountActive
	}
	return s.accounts.UpdateAccount(ctx, a.ID, models.AccountUpdate{Status: &next})
}

// ProfileInput is a self-service update. Changing the password requires the current one.
type ProfileInput struct {
	Name            string `json:"name"`
	Password        string `json:"password" binding:"omitempty,min=6"`
	CurrentPassword string `json:"currentPassword"`
}

func (s *AccountService) UpdateProfile(ctx context.Context, actor *models.Account, in ProfileInput) (*models.Account, error) {
	var update models.AccountUpdate
	if name := strings.TrimSpace(in.Name); name != "" {
		update.Name = &name
	}

	if in.Password != "" {
		if !s.hasher.CheckPasswordHash(in.CurrentPassword, actor.PasswordHash) {
			return nil, apperr.Validation("current password is incorrect", "currentPassword")
		}
		hash, err := s.hasher.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		update.PasswordHash = &hash
	}

	if len(update.SetDocument()) == 0 {
		return nil, apperr.Validation("no fields to update")
	}
	return s.accounts.UpdateAccount(ctx, actor.ID, update)
}

// Me reloads the caller's account.
func (s *AccountService) Me(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	return s.accounts.GetAccount(ctx, id)
}
