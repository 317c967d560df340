package models

// LoginInput is the admin panel credential payload.
type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"pass" binding:"required"`
}

// GlobalCreditInput is the manual credit payload.
type GlobalCreditInput struct {
	Email  string `json:"email" binding:"required"`
	Amount int64  `json:"amount" binding:"required"`
}

// Stats is the dashboard counter set.
type Stats struct {
	TotalUsers         int64 `json:"totalUsers"`
	ActiveUsers        int64 `json:"activeUsers"`
	Leaders            int64 `json:"leaders"`
	PremiumUsers       int64 `json:"premiumUsers"`
	PendingWithdrawals int   `json:"pendingWithdrawals"`
}
