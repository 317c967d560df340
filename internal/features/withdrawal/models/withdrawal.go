package models

import "time"

// Status tracks a withdrawal through settlement.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// HistoryEntry is the user-visible withdrawal record.
type HistoryEntry struct {
	PaymentRef string    `json:"paymentRef"`
	Email      string    `json:"email"`
	Amount     int64     `json:"amount"`
	Status     Status    `json:"status"`
	Time       time.Time `json:"time"`
}

// QueueEntry is the admin payout work item. Bank details are snapshotted
// at request time so later edits never redirect a pending payout.
type QueueEntry struct {
	PaymentRef    string    `json:"paymentRef"`
	Email         string    `json:"email"`
	Amount        int64     `json:"amount"`
	HolderName    string    `json:"holdersName"`
	AccountNumber string    `json:"accountNumber"`
	BankName      string    `json:"bankName"`
	IFSC          string    `json:"ifsc"`
	Mobile        string    `json:"mobile"`
	RequestedAt   time.Time `json:"requestedAt"`
}

// RequestInput is the withdrawal request body.
type RequestInput struct {
	Amount int64 `json:"amount" binding:"required"`
}

// SettleInput is the admin settlement body.
type SettleInput struct {
	PaymentRef string `json:"paymentRef" binding:"required"`
	Success    bool   `json:"success"`
}
