package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nftclicks-backend/internal/common/config"
	apperrors "nftclicks-backend/internal/common/errors"
	usermodels "nftclicks-backend/internal/features/user/models"
	usermemory "nftclicks-backend/internal/features/user/repository/memory"
	"nftclicks-backend/internal/features/withdrawal/models"
	withdrawalrepo "nftclicks-backend/internal/features/withdrawal/repository"
	withdrawalmemory "nftclicks-backend/internal/features/withdrawal/repository/memory"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Withdrawal.Minimum = 2
	return cfg
}

func newTestService(t *testing.T) (WithdrawalService, *usermemory.Repository) {
	t.Helper()
	users := usermemory.NewRepository()
	withdrawals := withdrawalmemory.NewRepository(users)
	return NewWithdrawalService(withdrawals, users, testConfig(), zap.NewNop()), users
}

// seedEligibleUser creates a user with a downline, bank details and a
// funded wallet, so every withdrawal precondition passes.
func seedEligibleUser(t *testing.T, users *usermemory.Repository, available int64) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &usermodels.User{
		Email:     "earner@example.com",
		SponsorID: "NFT00001",
		Status:    usermodels.StatusUser,
		Bank: &usermodels.Bank{
			HolderName:    "Earner",
			AccountNumber: "123456",
			BankName:      "Test Bank",
			IFSC:          "TEST0000001",
			Mobile:        "9876543210",
		},
		Wallet: usermodels.Wallet{Total: available, Available: available},
	}))
	require.NoError(t, users.Create(ctx, &usermodels.User{
		Email:      "downline@example.com",
		SponsorID:  "NFT00002",
		InviteCode: "NFT00001",
		Status:     usermodels.StatusUser,
	}))
}

func availableOf(t *testing.T, users *usermemory.Repository, email string) int64 {
	t.Helper()
	user, err := users.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	return user.Wallet.Available
}

func TestRequestHoldsAvailableBalance(t *testing.T) {
	svc, users := newTestService(t)
	seedEligibleUser(t, users, 100)

	entry, err := svc.Request(context.Background(), "earner@example.com", 40)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^INF\d{12}$`), entry.PaymentRef)
	assert.Equal(t, models.StatusPending, entry.Status)
	assert.Equal(t, int64(60), availableOf(t, users, "earner@example.com"))

	// Total is untouched; only available is held.
	user, err := users.GetByEmail(context.Background(), "earner@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(100), user.Wallet.Total)

	queue, err := svc.Queue(context.Background())
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, "Earner", queue[0].HolderName)
	assert.Equal(t, "123456", queue[0].AccountNumber)
}

func TestRequestRecordsLedgerEntry(t *testing.T) {
	svc, users := newTestService(t)
	seedEligibleUser(t, users, 100)

	_, err := svc.Request(context.Background(), "earner@example.com", 40)
	require.NoError(t, err)

	entries, err := users.ListTransactions(context.Background(), "earner@example.com")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, usermodels.TransactionWithdrawal, entries[0].Type)
	assert.Equal(t, int64(40), entries[0].Amount)
	assert.Equal(t, withdrawalrepo.LedgerLabel, entries[0].Level)
}

func TestRequestRequiresDownline(t *testing.T) {
	svc, users := newTestService(t)
	require.NoError(t, users.Create(context.Background(), &usermodels.User{
		Email:     "loner@example.com",
		SponsorID: "NFT00009",
		Status:    usermodels.StatusUser,
		Wallet:    usermodels.Wallet{Total: 50, Available: 50},
		Bank:      &usermodels.Bank{HolderName: "Loner", AccountNumber: "1", BankName: "B", IFSC: "TEST0000001", Mobile: "9876543210"},
	}))

	_, err := svc.Request(context.Background(), "loner@example.com", 10)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeReferralRequired, appErr.Code)
}

func TestRequestIgnoresInactiveDownlines(t *testing.T) {
	svc, users := newTestService(t)
	seedEligibleUser(t, users, 100)
	users.SetStatus("downline@example.com", usermodels.StatusNone)

	_, err := svc.Request(context.Background(), "earner@example.com", 10)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeReferralRequired, appErr.Code)
}

func TestRequestRequiresBankDetails(t *testing.T) {
	svc, users := newTestService(t)
	seedEligibleUser(t, users, 100)

	// Strip bank details after seeding.
	require.NoError(t, users.Create(context.Background(), &usermodels.User{
		Email:     "nobank@example.com",
		SponsorID: "NFT00003",
		Status:    usermodels.StatusUser,
		Wallet:    usermodels.Wallet{Total: 50, Available: 50},
	}))
	require.NoError(t, users.Create(context.Background(), &usermodels.User{
		Email:      "nobank-downline@example.com",
		SponsorID:  "NFT00004",
		InviteCode: "NFT00003",
		Status:     usermodels.StatusUser,
	}))

	_, err := svc.Request(context.Background(), "nobank@example.com", 10)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeBankDetailsMissing, appErr.Code)
}

func TestRequestEnforcesMinimum(t *testing.T) {
	svc, users := newTestService(t)
	seedEligibleUser(t, users, 100)

	_, err := svc.Request(context.Background(), "earner@example.com", 1)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeBelowMinimum, appErr.Code)
}

func TestRequestRejectsOverdraw(t *testing.T) {
	svc, users := newTestService(t)
	seedEligibleUser(t, users, 30)

	_, err := svc.Request(context.Background(), "earner@example.com", 31)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInsufficientBalance, appErr.Code)

	// A rejected request must not move any balance.
	assert.Equal(t, int64(30), availableOf(t, users, "earner@example.com"))
}

func TestSettleSuccessKeepsDebit(t *testing.T) {
	svc, users := newTestService(t)
	seedEligibleUser(t, users, 100)

	entry, err := svc.Request(context.Background(), "earner@example.com", 40)
	require.NoError(t, err)

	require.NoError(t, svc.Settle(context.Background(), entry.PaymentRef, true))

	assert.Equal(t, int64(60), availableOf(t, users, "earner@example.com"))

	history, err := svc.History(context.Background(), "earner@example.com")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.StatusSuccess, history[0].Status)

	queue, err := svc.Queue(context.Background())
	require.NoError(t, err)
	assert.Empty(t, queue)
}

func TestSettleFailureRefundsAvailable(t *testing.T) {
	svc, users := newTestService(t)
	seedEligibleUser(t, users, 100)

	entry, err := svc.Request(context.Background(), "earner@example.com", 40)
	require.NoError(t, err)

	require.NoError(t, svc.Settle(context.Background(), entry.PaymentRef, false))

	assert.Equal(t, int64(100), availableOf(t, users, "earner@example.com"))

	history, err := svc.History(context.Background(), "earner@example.com")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.StatusFailed, history[0].Status)
}

func TestSettleUnknownReference(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Settle(context.Background(), "INF000000000000", true)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeSettlementNotFound, appErr.Code)
}
