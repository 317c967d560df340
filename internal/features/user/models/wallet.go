package models

import "errors"

// Bucket names one of the earning buckets of a wallet.
type Bucket string

const (
	BucketReferral Bucket = "referral"
	BucketTeam     Bucket = "team"
	BucketLevel    Bucket = "level"
	BucketAutobot  Bucket = "autobot"
)

// TransactionType classifies ledger entries.
type TransactionType string

const (
	TransactionReferral   TransactionType = "referral"
	TransactionLevel      TransactionType = "level"
	TransactionUpgrade    TransactionType = "upgrade"
	TransactionGlobal     TransactionType = "global"
	TransactionWithdrawal TransactionType = "withdrawal"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

// Wallet is the per-user balance snapshot. Total is lifetime earned and
// only ever grows; Available is the withdrawable portion. Every credit to a
// named bucket raises Total and Available by the same amount; a withdrawal
// debits Available only.
type Wallet struct {
	Total     int64 `json:"total"`
	Available int64 `json:"available"`
	Referral  int64 `json:"referral"`
	Team      int64 `json:"team"`
	Level     int64 `json:"level"`
	Autobot   int64 `json:"autobot"`
	Today     int64 `json:"today"`
}

// Credit applies a non-negative credit to the given bucket, raising Total
// and Available alongside. Returns the updated snapshot.
func (w Wallet) Credit(bucket Bucket, amount int64) Wallet {
	if amount < 0 {
		return w
	}

	w.Total += amount
	w.Available += amount

	switch bucket {
	case BucketReferral:
		w.Referral += amount
	case BucketTeam:
		w.Team += amount
	case BucketLevel:
		w.Level += amount
	case BucketAutobot:
		w.Autobot += amount
	}

	return w
}

// Debit removes amount from Available, leaving Total untouched. Fails
// without touching the wallet when amount exceeds Available.
func (w Wallet) Debit(amount int64) (Wallet, error) {
	if amount > w.Available {
		return w, ErrInsufficientBalance
	}

	w.Available -= amount
	return w, nil
}

// Transaction is an append-only ledger entry. Level carries the display
// label ("direct", "level-3", "Wallet") matching the entry's origin.
type Transaction struct {
	Type   TransactionType `json:"type"`
	Amount int64           `json:"amount"`
	Level  string          `json:"level"`
}
