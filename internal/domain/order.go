package domain

import "time"

// Order is the durable record of one checkout request. Step timestamps are
// set as each outbound call completes so a stranded order (charged but never
// provisioned or notified) can be found and resumed.
type Order struct {
	ID            string
	Email         string
	Project       string
	Quantity      int64
	AmountMinor   int64
	Currency      string
	PromoID       string
	PaymentRef    string
	SessionID     string
	UploadURL     string
	Status        string
	CreatedAt     time.Time
	ProvisionedAt *time.Time
	ChargedAt     *time.Time
	NotifiedAt    *time.Time
}

// Order statuses, in the order the steps run.
const (
	OrderStatusPending     = "pending"
	OrderStatusProvisioned = "provisioned"
	OrderStatusCharged     = "charged"
	OrderStatusCompleted   = "completed"
)

// Discount is a promo code resolved against the payment processor's catalog.
// Exactly one of PercentOff and AmountOff is non-zero for a valid discount.
type Discount struct {
	ID         string
	Code       string
	PercentOff float64
	AmountOff  int64
}
