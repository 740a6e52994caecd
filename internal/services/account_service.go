// account_service.go
//
// Account operations: signup with bcrypt hashing, login with hash
// verification, profile reads, and the plan upgrade flow. Email uniqueness
// is a best-effort pre-check read, not atomic; two concurrent signups with
// the same email can both succeed upstream. The check lives in one place
// so an atomic upstream primitive could replace it without touching
// callers.

package services

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/recorre/indie-comments-cloud/internal/models"
	"github.com/recorre/indie-comments-cloud/internal/nocode"
	"github.com/recorre/indie-comments-cloud/internal/types"
	"github.com/recorre/indie-comments-cloud/internal/utils"
)

// bcryptCost is the work factor applied to every stored password.
const bcryptCost = 10

// AccountService handles signup, login, and plan upgrades.
type AccountService struct {
	nc     *nocode.Client
	tokens *TokenService
}

// NewAccountService constructs an AccountService.
func NewAccountService(nc *nocode.Client, tokens *TokenService) *AccountService {
	return &AccountService{nc: nc, tokens: tokens}
}

// Register hashes the plaintext password and creates the user upstream.
// No local validation happens here; Signup is the validated entry point.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return models.User{}, types.ConfigError("password hashing failed")
	}

	id, err := s.nc.Create(ctx, "users", map[string]any{
		"name":          name,
		"email":         email,
		"password_hash": string(hash),
		"plan":          models.PlanFree,
	})
	if err != nil {
		return models.User{}, err
	}

	return models.User{
		ID:    types.FlexUint64(id),
		Name:  name,
		Email: email,
		Plan:  models.PlanFree,
	}, nil
}

// Signup validates the input locally, pre-checks the email for duplicates,
// registers the user, and issues a session token. Validation failures never
// reach the network.
func (s *AccountService) Signup(ctx context.Context, name, email, password string) (models.User, string, error) {
	if !utils.ValidEmail(email) {
		return models.User{}, "", types.ValidationError("Invalid email address.")
	}
	if len(password) < 6 {
		return models.User{}, "", types.ValidationError("Password must be at least 6 characters.")
	}

	var existing []models.User
	if _, err := s.nc.Read(ctx, "users", nocode.NewQuery().Eq("email", email), &existing); err != nil {
		return models.User{}, "", err
	}
	if len(existing) > 0 {
		return models.User{}, "", types.ValidationError("This email is already in use.")
	}

	user, err := s.Register(ctx, name, email, password)
	if err != nil {
		return models.User{}, "", err
	}

	token, err := s.tokens.Issue(user.ID.Uint64())
	if err != nil {
		return models.User{}, "", types.ConfigError("token signing failed")
	}
	return user, token, nil
}

// Login verifies the password against the stored hash and issues a session
// token. The returned user never carries the password hash. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, email, password string) (models.User, string, error) {
	if !utils.ValidEmail(email) {
		return models.User{}, "", types.ValidationError("Invalid email address.")
	}

	var users []models.User
	if _, err := s.nc.Read(ctx, "users", nocode.NewQuery().Eq("email", email), &users); err != nil {
		return models.User{}, "", err
	}
	if len(users) == 0 {
		return models.User{}, "", types.AuthError("Invalid email or password.")
	}

	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, "", types.AuthError("Invalid email or password.")
	}

	token, err := s.tokens.Issue(user.ID.Uint64())
	if err != nil {
		return models.User{}, "", types.ConfigError("token signing failed")
	}
	return user.Public(), token, nil
}

// Get fetches one user by id.
func (s *AccountService) Get(ctx context.Context, userID uint64) (models.User, error) {
	var users []models.User
	if _, err := s.nc.Read(ctx, "users", nocode.NewQuery().EqUint("id", userID), &users); err != nil {
		return models.User{}, err
	}
	if len(users) == 0 {
		return models.User{}, types.AuthError("Unknown user.")
	}
	return users[0].Public(), nil
}

// Upgrade flips the user's plan to paid, recording the supplied payment
// proof. Plan is mutated nowhere else in this system.
func (s *AccountService) Upgrade(ctx context.Context, userID uint64, paymentProof string) error {
	return s.nc.Update(ctx, "users", userID, map[string]any{
		"plan":          models.PlanPaid,
		"payment_proof": paymentProof,
	})
}
