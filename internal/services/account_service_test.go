package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recorre/indie-comments-cloud/internal/nocode"
	"github.com/recorre/indie-comments-cloud/internal/types"
	"github.com/recorre/indie-comments-cloud/tests/helpers"
)

func newAccounts(up *helpers.Upstream) (*AccountService, *TokenService) {
	nc := nocode.New(up.URL(), "test_instance", "test-key", 5*time.Second)
	tokens := NewTokenService("test-secret", time.Hour)
	return NewAccountService(nc, tokens), tokens
}

func TestSignupRejectsBadInputLocally(t *testing.T) {
	up := helpers.NewUpstream()
	defer up.Close()
	accounts, _ := newAccounts(up)
	ctx := context.Background()

	_, _, err := accounts.Signup(ctx, "A", "not-an-email", "longenough")
	assert.Equal(t, types.KindValidation, types.KindOf(err))

	_, _, err = accounts.Signup(ctx, "A", "a@b", "longenough")
	assert.Equal(t, types.KindValidation, types.KindOf(err))

	_, _, err = accounts.Signup(ctx, "A", "a@b.co", "short")
	assert.Equal(t, types.KindValidation, types.KindOf(err))

	// Validation failures never reach the network.
	assert.Zero(t, up.Requests())
}

func TestSignupDuplicateEmail(t *testing.T) {
	up := helpers.NewUpstream()
	defer up.Close()
	accounts, _ := newAccounts(up)

	up.Seed("users", map[string]any{"email": "taken@example.com", "plan": "free"})

	_, _, err := accounts.Signup(context.Background(), "B", "taken@example.com", "longenough")
	require.Error(t, err)
	assert.Equal(t, types.KindValidation, types.KindOf(err))
	assert.Contains(t, err.Error(), "already in use")
}

func TestSignupStoresHashAndIssuesToken(t *testing.T) {
	up := helpers.NewUpstream()
	defer up.Close()
	accounts, tokens := newAccounts(up)

	user, token, err := accounts.Signup(context.Background(), "Maria", "maria@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "free", user.Plan)
	assert.Empty(t, user.PasswordHash)

	userID, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Uint64(), userID)

	rows := up.Rows("users")
	require.Len(t, rows, 1)
	hash := rows[0]["password_hash"].(string)
	assert.True(t, strings.HasPrefix(hash, "$2"), "expected a bcrypt hash, got %q", hash)
	assert.NotContains(t, hash, "hunter22")
}

func TestLogin(t *testing.T) {
	up := helpers.NewUpstream()
	defer up.Close()
	accounts, _ := newAccounts(up)
	ctx := context.Background()

	_, err := accounts.Register(ctx, "Maria", "maria@example.com", "hunter22")
	require.NoError(t, err)

	// Unknown email and wrong password are indistinguishable.
	_, _, err = accounts.Login(ctx, "nobody@example.com", "hunter22")
	assert.Equal(t, types.KindAuth, types.KindOf(err))
	unknownMsg := err.Error()

	_, _, err = accounts.Login(ctx, "maria@example.com", "wrong-password")
	assert.Equal(t, types.KindAuth, types.KindOf(err))
	assert.Equal(t, unknownMsg, err.Error())

	user, token, err := accounts.Login(ctx, "maria@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)
	assert.NotEmpty(t, token)
}

func TestLoginRejectsMalformedEmailLocally(t *testing.T) {
	up := helpers.NewUpstream()
	defer up.Close()
	accounts, _ := newAccounts(up)

	_, _, err := accounts.Login(context.Background(), "not-an-email", "whatever")
	assert.Equal(t, types.KindValidation, types.KindOf(err))
	assert.Zero(t, up.Requests())
}

func TestUpgrade(t *testing.T) {
	up := helpers.NewUpstream()
	defer up.Close()
	accounts, _ := newAccounts(up)

	id := up.Seed("users", map[string]any{"email": "maria@example.com", "plan": "free"})

	require.NoError(t, accounts.Upgrade(context.Background(), id, "pix-12345"))

	rows := up.Rows("users")
	assert.Equal(t, "paid", rows[0]["plan"])
	assert.Equal(t, "pix-12345", rows[0]["payment_proof"])
}
