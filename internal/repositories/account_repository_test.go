package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/crosspostx/backend/internal/models"
)

func newAccount(username string, active bool) *models.MonitoredAccount {
	return &models.MonitoredAccount{
		UserID:          "user-1",
		TwitterUsername: username,
		IsActive:        active,
	}
}

func TestCreateAccount_AssignsID(t *testing.T) {
	repo := NewGormAccountRepository(setupTestDB(t))
	ctx := context.Background()

	account := newAccount("alice", true)
	require.NoError(t, repo.CreateAccount(ctx, account))
	assert.NotEmpty(t, account.ID)

	got, err := repo.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.TwitterUsername)
}

func TestGetAccountByID_NotFound(t *testing.T) {
	repo := NewGormAccountRepository(setupTestDB(t))

	_, err := repo.GetAccountByID(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListActiveAccounts_SkipsDisabled(t *testing.T) {
	repo := NewGormAccountRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.CreateAccount(ctx, newAccount("alice", true)))
	require.NoError(t, repo.CreateAccount(ctx, newAccount("bob", false)))
	carol := newAccount("carol", true)
	carol.UserID = "user-2"
	require.NoError(t, repo.CreateAccount(ctx, carol))

	active, err := repo.ListActiveAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)

	usernames := []string{active[0].TwitterUsername, active[1].TwitterUsername}
	assert.ElementsMatch(t, []string{"alice", "carol"}, usernames)
}

func TestListAccountsByUser_ScopedToOwner(t *testing.T) {
	repo := NewGormAccountRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.CreateAccount(ctx, newAccount("alice", true)))
	other := newAccount("carol", true)
	other.UserID = "user-2"
	require.NoError(t, repo.CreateAccount(ctx, other))

	accounts, err := repo.ListAccountsByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "alice", accounts[0].TwitterUsername)
}

func TestSetAccountActive(t *testing.T) {
	repo := NewGormAccountRepository(setupTestDB(t))
	ctx := context.Background()

	account := newAccount("alice", true)
	require.NoError(t, repo.CreateAccount(ctx, account))

	require.NoError(t, repo.SetAccountActive(ctx, account.ID, false))

	got, err := repo.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestSetAccountActive_NotFound(t *testing.T) {
	repo := NewGormAccountRepository(setupTestDB(t))

	err := repo.SetAccountActive(context.Background(), "no-such-id", false)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdateWatermark(t *testing.T) {
	repo := NewGormAccountRepository(setupTestDB(t))
	ctx := context.Background()

	account := newAccount("alice", true)
	require.NoError(t, repo.CreateAccount(ctx, account))

	checkedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateWatermark(ctx, account.ID, checkedAt, "300"))

	got, err := repo.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "300", got.LastTweetID)
	require.NotNil(t, got.LastCheckedAt)
	assert.True(t, got.LastCheckedAt.Equal(checkedAt))
}

func TestDeleteAccount(t *testing.T) {
	repo := NewGormAccountRepository(setupTestDB(t))
	ctx := context.Background()

	account := newAccount("alice", true)
	require.NoError(t, repo.CreateAccount(ctx, account))

	require.NoError(t, repo.DeleteAccount(ctx, account.ID))

	_, err := repo.GetAccountByID(ctx, account.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, repo.DeleteAccount(ctx, account.ID), gorm.ErrRecordNotFound)
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	repo := NewGormUserRepository(setupTestDB(t))
	ctx := context.Background()

	user := &models.User{PrivyUserID: "did:privy:abc", Email: "alice@example.com"}
	require.NoError(t, repo.CreateUser(ctx, user))
	assert.NotEmpty(t, user.ID)

	byPrivy, err := repo.GetUserByPrivyID(ctx, "did:privy:abc")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byPrivy.ID)

	byID, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)

	_, err = repo.GetUserByPrivyID(ctx, "did:privy:unknown")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
