package models

// UPIConfig is the singleton payee configuration rendered into payment
// QR codes.
type UPIConfig struct {
	VPA       string `json:"upiId"`
	PayeeName string `json:"payeeName"`
}

// UpdateInput is the admin payload for changing the payee.
type UpdateInput struct {
	VPA       string `json:"upiId" binding:"required"`
	PayeeName string `json:"payeeName"`
}
