package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	usermodels "nftclicks-backend/internal/features/user/models"
	"nftclicks-backend/internal/features/user/repository/memory"
)

// buildChain creates users u0 (origin) under s0 under s1 ... so that s0 is
// the direct sponsor of u0 and s<i> sits at depth i.
func buildChain(t *testing.T, repo *memory.Repository, depth int, status usermodels.Status) *usermodels.User {
	t.Helper()
	ctx := context.Background()

	inviteCode := ""
	for i := depth - 1; i >= 0; i-- {
		sponsor := &usermodels.User{
			Email:      fmt.Sprintf("s%d@example.com", i),
			SponsorID:  fmt.Sprintf("NFT%05d", i),
			InviteCode: inviteCode,
			Status:     status,
		}
		require.NoError(t, repo.Create(ctx, sponsor))
		inviteCode = sponsor.SponsorID
	}

	origin := &usermodels.User{
		Email:      "origin@example.com",
		SponsorID:  "NFT99999",
		InviteCode: inviteCode,
		Status:     usermodels.StatusUser,
	}
	require.NoError(t, repo.Create(ctx, origin))
	return origin
}

func walletOf(t *testing.T, repo *memory.Repository, email string) usermodels.Wallet {
	t.Helper()
	user, err := repo.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	return user.Wallet
}

func TestActivationWalkTwoLevels(t *testing.T) {
	repo := memory.NewRepository()
	origin := buildChain(t, repo, 2, usermodels.StatusUser)

	walker := NewWalker(repo, zap.NewNop())
	walker.Propagate(context.Background(), origin, EventActivation)

	direct := walletOf(t, repo, "s0@example.com")
	assert.Equal(t, int64(10), direct.Referral)
	assert.Equal(t, int64(10), direct.Total)
	assert.Equal(t, int64(10), direct.Available)

	grand := walletOf(t, repo, "s1@example.com")
	assert.Equal(t, int64(1), grand.Level)
	assert.Equal(t, int64(1), grand.Total)

	entries, err := repo.ListTransactions(context.Background(), "s1@example.com")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, usermodels.TransactionLevel, entries[0].Type)
	assert.Equal(t, "level-1", entries[0].Level)
}

func TestActivationWalkBoundedAtDepthTen(t *testing.T) {
	repo := memory.NewRepository()
	origin := buildChain(t, repo, 15, usermodels.StatusUser)

	walker := NewWalker(repo, zap.NewNop())
	walker.Propagate(context.Background(), origin, EventActivation)

	for depth := 0; depth <= 10; depth++ {
		w := walletOf(t, repo, fmt.Sprintf("s%d@example.com", depth))
		assert.Positive(t, w.Total, "depth %d must be credited", depth)
	}
	for depth := 11; depth < 15; depth++ {
		w := walletOf(t, repo, fmt.Sprintf("s%d@example.com", depth))
		assert.Zero(t, w.Total, "depth %d must not be credited", depth)
	}
}

func TestActivationWalkShortCircuitsOnDisqualified(t *testing.T) {
	repo := memory.NewRepository()
	origin := buildChain(t, repo, 8, usermodels.StatusUser)
	repo.SetStatus("s3@example.com", usermodels.StatusNone)

	walker := NewWalker(repo, zap.NewNop())
	walker.Propagate(context.Background(), origin, EventActivation)

	for depth := 0; depth <= 2; depth++ {
		w := walletOf(t, repo, fmt.Sprintf("s%d@example.com", depth))
		assert.Positive(t, w.Total, "depth %d must be credited", depth)
	}
	// The disqualified node and everything above it get nothing.
	for depth := 3; depth < 8; depth++ {
		w := walletOf(t, repo, fmt.Sprintf("s%d@example.com", depth))
		assert.Zero(t, w.Total, "depth %d must not be credited", depth)
	}
}

func TestActivationWalkStopsAtMissingLink(t *testing.T) {
	repo := memory.NewRepository()

	origin := &usermodels.User{
		Email:      "origin@example.com",
		SponsorID:  "NFT00001",
		InviteCode: "NFTMISSING",
		Status:     usermodels.StatusUser,
	}
	require.NoError(t, repo.Create(context.Background(), origin))

	walker := NewWalker(repo, zap.NewNop())
	walker.Propagate(context.Background(), origin, EventActivation)

	entries, err := repo.ListTransactions(context.Background(), "origin@example.com")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpgradeWalkCreditsLeadersOnly(t *testing.T) {
	repo := memory.NewRepository()
	origin := buildChain(t, repo, 4, usermodels.StatusLeader)
	repo.SetStatus("s2@example.com", usermodels.StatusUser)

	walker := NewWalker(repo, zap.NewNop())
	walker.Propagate(context.Background(), origin, EventUpgrade)

	direct := walletOf(t, repo, "s0@example.com")
	assert.Equal(t, int64(20), direct.Referral)

	team := walletOf(t, repo, "s1@example.com")
	assert.Equal(t, int64(5), team.Team)

	// s2 is only User: disqualified for upgrade events, walk ends there.
	assert.Zero(t, walletOf(t, repo, "s2@example.com").Total)
	assert.Zero(t, walletOf(t, repo, "s3@example.com").Total)
}

func TestCommissionSchedule(t *testing.T) {
	c, ok := CommissionAt(EventActivation, 0)
	require.True(t, ok)
	assert.Equal(t, int64(10), c.Amount)
	assert.Equal(t, usermodels.BucketReferral, c.Bucket)

	c, ok = CommissionAt(EventActivation, 10)
	require.True(t, ok)
	assert.Equal(t, int64(1), c.Amount)
	assert.Equal(t, usermodels.BucketLevel, c.Bucket)
	assert.Equal(t, "level-10", c.Entry.Level)

	c, ok = CommissionAt(EventUpgrade, 5)
	require.True(t, ok)
	assert.Equal(t, int64(5), c.Amount)
	assert.Equal(t, usermodels.BucketTeam, c.Bucket)

	_, ok = CommissionAt(EventActivation, 11)
	assert.False(t, ok)
}

func TestQualification(t *testing.T) {
	assert.True(t, Qualifies(EventActivation, usermodels.StatusFree))
	assert.True(t, Qualifies(EventActivation, usermodels.StatusUser))
	assert.False(t, Qualifies(EventActivation, usermodels.StatusNone))

	assert.True(t, Qualifies(EventUpgrade, usermodels.StatusLeader))
	assert.False(t, Qualifies(EventUpgrade, usermodels.StatusUser))
}
