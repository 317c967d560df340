package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nftclicks-backend/internal/common/config"
	apperrors "nftclicks-backend/internal/common/errors"
	"nftclicks-backend/internal/features/admin/models"
	usermodels "nftclicks-backend/internal/features/user/models"
	usermemory "nftclicks-backend/internal/features/user/repository/memory"
	withdrawalmemory "nftclicks-backend/internal/features/withdrawal/repository/memory"
)

// passthroughCache always misses, so tests exercise the setter path.
type passthroughCache struct {
	invalidations int
}

func (c *passthroughCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, setter func() (interface{}, error)) error {
	value, err := setter()
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *passthroughCache) InvalidateStats(ctx context.Context) error {
	c.invalidations++
	return nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTL = time.Hour
	cfg.Auth.AdminEmail = "admin@example.com"
	cfg.Auth.AdminPassword = "hunter22"
	return cfg
}

func newTestService(t *testing.T) (AdminService, *usermemory.Repository, *passthroughCache) {
	t.Helper()
	users := usermemory.NewRepository()
	withdrawals := withdrawalmemory.NewRepository(users)
	cache := &passthroughCache{}
	svc := NewAdminService(users, withdrawals, cache, testConfig(), zap.NewNop())
	return svc, users, cache
}

func seedUsers(t *testing.T, users *usermemory.Repository, statuses ...usermodels.Status) {
	t.Helper()
	for i, status := range statuses {
		require.NoError(t, users.Create(context.Background(), &usermodels.User{
			Email:     fmt.Sprintf("u%d@example.com", i),
			SponsorID: fmt.Sprintf("NFT%05d", i),
			Status:    status,
		}))
	}
}

func TestAdminLogin(t *testing.T) {
	svc, _, _ := newTestService(t)

	token, err := svc.Login(context.Background(), &models.LoginInput{
		Email:    "admin@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), &models.LoginInput{
		Email:    "admin@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, appErr.Code)
}

func TestStatsCountsTiers(t *testing.T) {
	svc, users, _ := newTestService(t)
	seedUsers(t, users,
		usermodels.StatusFree,
		usermodels.StatusUser,
		usermodels.StatusUser,
		usermodels.StatusLeader,
		usermodels.StatusPremium,
	)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(5), stats.TotalUsers)
	assert.Equal(t, int64(4), stats.ActiveUsers)
	assert.Equal(t, int64(1), stats.Leaders)
	assert.Equal(t, int64(1), stats.PremiumUsers)
	assert.Zero(t, stats.PendingWithdrawals)
}

func TestGlobalCreditTargetsOneWallet(t *testing.T) {
	svc, users, cache := newTestService(t)
	seedUsers(t, users, usermodels.StatusUser, usermodels.StatusUser)

	require.NoError(t, svc.GlobalCredit(context.Background(), "u0@example.com", 32))
	assert.Equal(t, 1, cache.invalidations)

	target, err := users.GetByEmail(context.Background(), "u0@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(32), target.Wallet.Autobot)
	assert.Equal(t, int64(32), target.Wallet.Total)

	entries, err := users.ListTransactions(context.Background(), "u0@example.com")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, usermodels.TransactionGlobal, entries[0].Type)
	assert.Equal(t, "level-5", entries[0].Level)

	// Other accounts are untouched.
	bystander, err := users.GetByEmail(context.Background(), "u1@example.com")
	require.NoError(t, err)
	assert.Zero(t, bystander.Wallet.Total)
	assert.Zero(t, bystander.Wallet.Autobot)
}

func TestGlobalCreditRejectsInactiveAccount(t *testing.T) {
	svc, users, _ := newTestService(t)
	seedUsers(t, users, usermodels.StatusNone)

	err := svc.GlobalCredit(context.Background(), "u0@example.com", 8)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeForbidden, appErr.Code)

	user, err := users.GetByEmail(context.Background(), "u0@example.com")
	require.NoError(t, err)
	assert.Zero(t, user.Wallet.Total)
}

func TestGlobalCreditUnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.GlobalCredit(context.Background(), "ghost@example.com", 8)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeUserNotFound, appErr.Code)
}

func TestGlobalCreditRejectsNonPositive(t *testing.T) {
	svc, users, _ := newTestService(t)
	seedUsers(t, users, usermodels.StatusUser)

	err := svc.GlobalCredit(context.Background(), "u0@example.com", 0)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidAmount, appErr.Code)

	user, err := users.GetByEmail(context.Background(), "u0@example.com")
	require.NoError(t, err)
	assert.Zero(t, user.Wallet.Total)
}

func TestLevelLabel(t *testing.T) {
	assert.Equal(t, "level-1", levelLabel(2))
	assert.Equal(t, "level-2", levelLabel(4))
	assert.Equal(t, "level-5", levelLabel(32))
	assert.Equal(t, "level-10", levelLabel(1024))

	assert.Equal(t, "-", levelLabel(3))
	assert.Equal(t, "-", levelLabel(2048))
	assert.Equal(t, "-", levelLabel(1))
}
