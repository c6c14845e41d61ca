package payment

import (
	"context"

	"dlvrit-backend/internal/domain"
)

// ChargeInput describes a direct, immediately confirmed charge.
type ChargeInput struct {
	AmountMinor    int64
	Currency       string
	PaymentMethod  string
	ReceiptEmail   string
	IdempotencyKey string
	Metadata       map[string]string
}

// Charge is the processor's record of a captured payment.
type Charge struct {
	ID          string
	AmountMinor int64
	Currency    string
	Status      string
}

// SessionInput describes a hosted checkout session. The customer is redirected
// to the session URL and completion is confirmed later by session id.
type SessionInput struct {
	UnitAmountMinor int64
	Currency        string
	Quantity        int64
	ProductName     string
	CustomerEmail   string
	SuccessURL      string
	CancelURL       string
	DiscountID      string
	Metadata        map[string]string
}

// Session is a hosted checkout session as reported by the processor.
type Session struct {
	ID          string
	URL         string
	Email       string
	Paid        bool
	AmountMinor int64
	Currency    string
	Metadata    map[string]string
}

// Processor is the payment capability. Implementations wrap a concrete
// provider; callers never see provider types.
type Processor interface {
	// CreateCharge submits and confirms a charge in one call.
	CreateCharge(ctx context.Context, in ChargeInput) (*Charge, error)
	// CreateSession creates a hosted checkout session.
	CreateSession(ctx context.Context, in SessionInput) (*Session, error)
	// GetSession retrieves a session by id, including its payment status.
	GetSession(ctx context.Context, id string) (*Session, error)
	// FindPromoCode resolves an active promo code by exact match. A code with
	// no active match returns domain.ErrInvalidPromo.
	FindPromoCode(ctx context.Context, code string) (*domain.Discount, error)
	// UnitPrice looks up a catalog price in minor units plus its currency.
	UnitPrice(ctx context.Context, priceID string) (int64, string, error)
}
