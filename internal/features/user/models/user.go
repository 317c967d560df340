package models

import "time"

// Status is the referral tier of an account. Premium is an upload-quota
// tier that lives in the same field, entered directly on its own payment
// amount.
type Status string

const (
	StatusFree    Status = "Free"
	StatusNone    Status = "None"
	StatusUser    Status = "User"
	StatusLeader  Status = "Leader"
	StatusPremium Status = "Premium"
)

// Active reports whether the account counts as an active downline.
func (s Status) Active() bool {
	return s != StatusNone && s != ""
}

// Bank holds the payout destination for withdrawals.
type Bank struct {
	HolderName    string `json:"name"`
	AccountNumber string `json:"accountNumber"`
	BankName      string `json:"bankName"`
	IFSC          string `json:"ifsc"`
	Mobile        string `json:"mobile"`
}

// User is the account record. SponsorID is the code this user hands out to
// recruits; InviteCode is the sponsor's code this user registered under,
// the upward link of the referral forest.
type User struct {
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	SponsorID    string    `json:"sponsorID"`
	InviteCode   string    `json:"inviteCode"`
	Status       Status    `json:"status"`
	Wallet       Wallet    `json:"earnings"`
	UploadLimit  int64     `json:"limit"`
	Bank         *Bank     `json:"bank,omitempty"`
	SignedUpAt   time.Time `json:"signed_up_at"`
	ActivatedAt  time.Time `json:"activated_at,omitempty"`
}

// HasBank reports whether payout details are on file.
func (u *User) HasBank() bool {
	return u.Bank != nil && u.Bank.AccountNumber != ""
}

// UserResponse is the public profile shape.
type UserResponse struct {
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	SponsorID   string    `json:"sponsorID"`
	InviteCode  string    `json:"inviteCode"`
	Status      Status    `json:"status"`
	Wallet      Wallet    `json:"earnings"`
	UploadLimit int64     `json:"limit"`
	Bank        *Bank     `json:"bank,omitempty"`
	SignedUpAt  time.Time `json:"signed_up_at"`
}

// SignUpInput is the registration payload.
type SignUpInput struct {
	Username   string `json:"username" binding:"required"`
	Email      string `json:"email" binding:"required"`
	Password   string `json:"pass" binding:"required"`
	RePassword string `json:"rePass" binding:"required"`
	InviteCode string `json:"inviteCode"`
}

// SignInInput is the login payload.
type SignInInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"pass" binding:"required"`
}

// BankDetailsInput is the payout details payload.
type BankDetailsInput struct {
	HolderName      string `json:"holdersName" binding:"required"`
	AccountNumber   string `json:"accountNumber" binding:"required"`
	ReAccountNumber string `json:"reAccountNumber" binding:"required"`
	BankName        string `json:"bankName" binding:"required"`
	IFSC            string `json:"ifsc" binding:"required"`
	Mobile          string `json:"mobile" binding:"required"`
}

// UploadInput reports how many files the upload subsystem stored.
type UploadInput struct {
	Count int64 `json:"count" binding:"required"`
}

func ToUserResponse(u *User) *UserResponse {
	return &UserResponse{
		Email:       u.Email,
		Username:    u.Username,
		SponsorID:   u.SponsorID,
		InviteCode:  u.InviteCode,
		Status:      u.Status,
		Wallet:      u.Wallet,
		UploadLimit: u.UploadLimit,
		Bank:        u.Bank,
		SignedUpAt:  u.SignedUpAt,
	}
}
