package models

import "time"

// Token guards single use of a gateway payment. Webhook ingestion stores
// Valid; the activation workflow flips it to Invalid exactly once.
type Token string

const (
	TokenValid   Token = "Valid"
	TokenInvalid Token = "Invalid"
)

// Payment is a gateway-confirmed transaction, keyed by the acquirer's
// retrieval reference number.
type Payment struct {
	Reference string    `json:"rrn"`
	PaymentID string    `json:"payment_id"`
	Amount    int64     `json:"amount"`
	VPA       string    `json:"vpa"`
	Status    string    `json:"status"`
	Token     Token     `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// WebhookPayload is the gateway's notification body.
type WebhookPayload struct {
	Payload struct {
		Payment struct {
			Entity struct {
				ID     string `json:"id"`
				Status string `json:"status"`
				// Amount arrives in minor units (paise).
				Amount       int64  `json:"amount"`
				VPA          string `json:"vpa"`
				AcquirerData struct {
					RRN string `json:"rrn"`
				} `json:"acquirer_data"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// ActivateInput is the activation request body.
type ActivateInput struct {
	TransactionID string `json:"transaction_id" binding:"required"`
}

// ActivationResult reports the tier transition outcome.
type ActivationResult struct {
	NewStatus string `json:"newStatus"`
	AlertType string `json:"alertType"`
	Alert     string `json:"alert"`
	Message   string `json:"message"`
}
