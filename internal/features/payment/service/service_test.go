package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nftclicks-backend/internal/common/config"
	apperrors "nftclicks-backend/internal/common/errors"
	"nftclicks-backend/internal/features/payment/models"
	paymentmemory "nftclicks-backend/internal/features/payment/repository/memory"
	referral "nftclicks-backend/internal/features/referral/service"
	usermodels "nftclicks-backend/internal/features/user/models"
	usermemory "nftclicks-backend/internal/features/user/repository/memory"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Gateway.WebhookSecret = "test-secret"
	cfg.Pricing.User = 30
	cfg.Pricing.Leader = 60
	cfg.Pricing.Premium = 1999
	cfg.Quota.Standard = 5
	cfg.Quota.Premium = 15
	cfg.Quota.PremiumBump = 10
	return cfg
}

func newTestService(t *testing.T) (PaymentService, *usermemory.Repository, *paymentmemory.Repository) {
	t.Helper()
	users := usermemory.NewRepository()
	payments := paymentmemory.NewRepository(users)
	walker := referral.NewWalker(users, zap.NewNop())
	svc := NewPaymentService(payments, users, walker, testConfig(), zap.NewNop())
	return svc, users, payments
}

func seedUser(t *testing.T, users *usermemory.Repository, email, sponsorID, inviteCode string, status usermodels.Status) {
	t.Helper()
	require.NoError(t, users.Create(context.Background(), &usermodels.User{
		Email:       email,
		SponsorID:   sponsorID,
		InviteCode:  inviteCode,
		Status:      status,
		UploadLimit: 5,
	}))
}

func seedPayment(t *testing.T, payments *paymentmemory.Repository, reference string, amount int64) {
	t.Helper()
	require.NoError(t, payments.Create(context.Background(), &models.Payment{
		Reference: reference,
		PaymentID: "pay_" + reference,
		Amount:    amount,
		Status:    "captured",
		Token:     models.TokenValid,
		CreatedAt: time.Now(),
	}))
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func webhookBody(rrn string, amountMinor int64) []byte {
	return []byte(fmt.Sprintf(`{
		"payload": {
			"payment": {
				"entity": {
					"id": "pay_test",
					"amount": %d,
					"status": "captured",
					"vpa": "buyer@upi",
					"acquirer_data": {"rrn": %q}
				}
			}
		}
	}`, amountMinor, rrn))
}

func TestIngestWebhookRecordsPayment(t *testing.T) {
	svc, _, payments := newTestService(t)

	body := webhookBody("REF123", 3000)
	err := svc.IngestWebhook(context.Background(), body, sign("test-secret", body))
	require.NoError(t, err)

	payment, err := payments.GetByReference(context.Background(), "REF123")
	require.NoError(t, err)
	assert.Equal(t, int64(30), payment.Amount)
	assert.Equal(t, models.TokenValid, payment.Token)
	assert.Equal(t, "buyer@upi", payment.VPA)
}

func TestIngestWebhookRejectsBadSignature(t *testing.T) {
	svc, _, payments := newTestService(t)

	body := webhookBody("REF124", 3000)
	err := svc.IngestWebhook(context.Background(), body, "deadbeef")
	require.NoError(t, err)

	_, err = payments.GetByReference(context.Background(), "REF124")
	assert.Error(t, err)
}

func TestIngestWebhookIgnoresRedelivery(t *testing.T) {
	svc, _, payments := newTestService(t)

	body := webhookBody("REF125", 3000)
	signature := sign("test-secret", body)
	require.NoError(t, svc.IngestWebhook(context.Background(), body, signature))
	require.NoError(t, svc.IngestWebhook(context.Background(), body, signature))

	payment, err := payments.GetByReference(context.Background(), "REF125")
	require.NoError(t, err)
	assert.Equal(t, models.TokenValid, payment.Token)
}

func TestActivateCreditsSponsorChain(t *testing.T) {
	svc, users, payments := newTestService(t)

	seedUser(t, users, "s1@example.com", "NFT00002", "", usermodels.StatusUser)
	seedUser(t, users, "s0@example.com", "NFT00001", "NFT00002", usermodels.StatusUser)
	seedUser(t, users, "buyer@example.com", "NFT00000", "NFT00001", usermodels.StatusFree)
	seedPayment(t, payments, "REF200", 30)

	result, err := svc.Activate(context.Background(), "buyer@example.com", "REF200")
	require.NoError(t, err)
	assert.Equal(t, string(usermodels.StatusUser), result.NewStatus)
	assert.Equal(t, "success", result.AlertType)

	buyer, err := users.GetByEmail(context.Background(), "buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, usermodels.StatusUser, buyer.Status)
	assert.False(t, buyer.ActivatedAt.IsZero())

	direct, err := users.GetByEmail(context.Background(), "s0@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(10), direct.Wallet.Referral)
	assert.Equal(t, int64(10), direct.Wallet.Total)

	upline, err := users.GetByEmail(context.Background(), "s1@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), upline.Wallet.Level)
}

func TestActivateSameReferenceTwiceFails(t *testing.T) {
	svc, users, payments := newTestService(t)

	seedUser(t, users, "buyer@example.com", "NFT00000", "", usermodels.StatusFree)
	seedPayment(t, payments, "REF201", 30)

	_, err := svc.Activate(context.Background(), "buyer@example.com", "REF201")
	require.NoError(t, err)

	seedUser(t, users, "other@example.com", "NFT00009", "", usermodels.StatusFree)
	_, err = svc.Activate(context.Background(), "other@example.com", "REF201")
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodePaymentAlreadyUsed, appErr.Code)
}

func TestActivateRejectsWrongAmount(t *testing.T) {
	svc, users, payments := newTestService(t)

	seedUser(t, users, "buyer@example.com", "NFT00000", "", usermodels.StatusFree)
	seedPayment(t, payments, "REF202", 45)

	_, err := svc.Activate(context.Background(), "buyer@example.com", "REF202")
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidAmount, appErr.Code)

	// A rejected amount must not consume the token.
	payment, err := payments.GetByReference(context.Background(), "REF202")
	require.NoError(t, err)
	assert.Equal(t, models.TokenValid, payment.Token)
}

func TestActivatePremiumBumpsUploadLimit(t *testing.T) {
	svc, users, payments := newTestService(t)

	seedUser(t, users, "buyer@example.com", "NFT00000", "", usermodels.StatusFree)
	seedPayment(t, payments, "REF203", 1999)

	result, err := svc.Activate(context.Background(), "buyer@example.com", "REF203")
	require.NoError(t, err)
	assert.Equal(t, string(usermodels.StatusPremium), result.NewStatus)

	buyer, err := users.GetByEmail(context.Background(), "buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, usermodels.StatusPremium, buyer.Status)
	assert.Equal(t, int64(15), buyer.UploadLimit)
}

func TestActivateUpgradeToLeader(t *testing.T) {
	svc, users, payments := newTestService(t)

	seedUser(t, users, "s0@example.com", "NFT00001", "", usermodels.StatusLeader)
	seedUser(t, users, "buyer@example.com", "NFT00000", "NFT00001", usermodels.StatusUser)
	seedPayment(t, payments, "REF204", 60)

	result, err := svc.Activate(context.Background(), "buyer@example.com", "REF204")
	require.NoError(t, err)
	assert.Equal(t, string(usermodels.StatusLeader), result.NewStatus)

	direct, err := users.GetByEmail(context.Background(), "s0@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(20), direct.Wallet.Referral)
}

func TestActivateAlreadyLeaderIsWarningNoOp(t *testing.T) {
	svc, users, payments := newTestService(t)

	seedUser(t, users, "buyer@example.com", "NFT00000", "", usermodels.StatusLeader)
	seedPayment(t, payments, "REF205", 60)

	result, err := svc.Activate(context.Background(), "buyer@example.com", "REF205")
	require.NoError(t, err)
	assert.Equal(t, "warning", result.AlertType)

	payment, err := payments.GetByReference(context.Background(), "REF205")
	require.NoError(t, err)
	assert.Equal(t, models.TokenValid, payment.Token)
}

func TestActivateUnknownReference(t *testing.T) {
	svc, users, _ := newTestService(t)

	seedUser(t, users, "buyer@example.com", "NFT00000", "", usermodels.StatusFree)

	_, err := svc.Activate(context.Background(), "buyer@example.com", "REF999")
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodePaymentNotFound, appErr.Code)
}
