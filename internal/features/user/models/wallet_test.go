package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletCredit(t *testing.T) {
	w := Wallet{Total: 100, Available: 40, Referral: 30}

	got := w.Credit(BucketReferral, 10)

	assert.Equal(t, int64(110), got.Total)
	assert.Equal(t, int64(50), got.Available)
	assert.Equal(t, int64(40), got.Referral)
	assert.Equal(t, int64(100), w.Total, "receiver must stay unchanged")
}

func TestWalletCreditBuckets(t *testing.T) {
	cases := []struct {
		bucket Bucket
		read   func(Wallet) int64
	}{
		{BucketReferral, func(w Wallet) int64 { return w.Referral }},
		{BucketTeam, func(w Wallet) int64 { return w.Team }},
		{BucketLevel, func(w Wallet) int64 { return w.Level }},
		{BucketAutobot, func(w Wallet) int64 { return w.Autobot }},
	}

	for _, tc := range cases {
		t.Run(string(tc.bucket), func(t *testing.T) {
			w := Wallet{}
			got := w.Credit(tc.bucket, 7)
			assert.Equal(t, int64(7), got.Total)
			assert.Equal(t, int64(7), got.Available)
			assert.Equal(t, int64(7), tc.read(got))
		})
	}
}

func TestWalletCreditZeroIsNoop(t *testing.T) {
	w := Wallet{Total: 5, Available: 5, Level: 5}
	assert.Equal(t, w, w.Credit(BucketLevel, 0))
}

func TestWalletCreditNegativeIgnored(t *testing.T) {
	w := Wallet{Total: 5, Available: 5}
	assert.Equal(t, w, w.Credit(BucketReferral, -3))
}

func TestWalletDebit(t *testing.T) {
	w := Wallet{Total: 50, Available: 50}

	got, err := w.Debit(10)
	require.NoError(t, err)

	assert.Equal(t, int64(40), got.Available)
	assert.Equal(t, int64(50), got.Total, "total reflects lifetime earned")
}

func TestWalletDebitInsufficient(t *testing.T) {
	w := Wallet{Total: 20, Available: 5}

	got, err := w.Debit(10)
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, w, got, "wallet unchanged on failed debit")
}
