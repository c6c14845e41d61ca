package payment

import (
	"context"
	"errors"
	"io"
	"log"

	"dlvrit-backend/internal/domain"
	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// StripeProcessor implements Processor against the Stripe API.
type StripeProcessor struct {
	sc     *client.API
	logger *log.Logger
}

// NewStripe builds a StripeProcessor from a secret key.
func NewStripe(secretKey string, logger *log.Logger) *StripeProcessor {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &StripeProcessor{sc: client.New(secretKey, nil), logger: logger}
}

func (p *StripeProcessor) CreateCharge(ctx context.Context, in ChargeInput) (*Charge, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(in.AmountMinor),
		Currency:      stripe.String(in.Currency),
		PaymentMethod: stripe.String(in.PaymentMethod),
		Confirm:       stripe.Bool(true),
		ReceiptEmail:  stripe.String(in.ReceiptEmail),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	if in.IdempotencyKey != "" {
		params.IdempotencyKey = stripe.String(in.IdempotencyKey)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := p.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, p.wrap("create charge", err)
	}
	p.logger.Printf("stripe: payment intent %s status=%s amount=%d %s", pi.ID, pi.Status, pi.Amount, pi.Currency)
	return &Charge{
		ID:          pi.ID,
		AmountMinor: pi.Amount,
		Currency:    string(pi.Currency),
		Status:      string(pi.Status),
	}, nil
}

func (p *StripeProcessor) CreateSession(ctx context.Context, in SessionInput) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(in.SuccessURL),
		CancelURL:     stripe.String(in.CancelURL),
		CustomerEmail: stripe.String(in.CustomerEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(in.Currency),
				UnitAmount: stripe.Int64(in.UnitAmountMinor),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(in.ProductName),
				},
			},
			Quantity: stripe.Int64(in.Quantity),
		}},
	}
	params.Context = ctx
	if in.DiscountID != "" {
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{{
			PromotionCode: stripe.String(in.DiscountID),
		}}
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := p.sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, p.wrap("create session", err)
	}
	p.logger.Printf("stripe: checkout session %s created", s.ID)
	return toSession(s), nil
}

func (p *StripeProcessor) GetSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := p.sc.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, p.wrap("get session", err)
	}
	return toSession(s), nil
}

func (p *StripeProcessor) FindPromoCode(ctx context.Context, code string) (*domain.Discount, error) {
	params := &stripe.PromotionCodeListParams{
		Code:   stripe.String(code),
		Active: stripe.Bool(true),
	}
	params.Context = ctx

	iter := p.sc.PromotionCodes.List(params)
	for iter.Next() {
		pc := iter.PromotionCode()
		if pc.Code != code || !pc.Active {
			continue
		}
		d := &domain.Discount{ID: pc.ID, Code: pc.Code}
		if pc.Coupon != nil {
			d.PercentOff = pc.Coupon.PercentOff
			d.AmountOff = pc.Coupon.AmountOff
		}
		return d, nil
	}
	if err := iter.Err(); err != nil {
		return nil, p.wrap("list promo codes", err)
	}
	return nil, domain.ErrInvalidPromo
}

func (p *StripeProcessor) UnitPrice(ctx context.Context, priceID string) (int64, string, error) {
	params := &stripe.PriceParams{}
	params.Context = ctx
	price, err := p.sc.Prices.Get(priceID, params)
	if err != nil {
		return 0, "", p.wrap("get price", err)
	}
	return price.UnitAmount, string(price.Currency), nil
}

func toSession(s *stripe.CheckoutSession) *Session {
	email := s.CustomerEmail
	if email == "" && s.CustomerDetails != nil {
		email = s.CustomerDetails.Email
	}
	return &Session{
		ID:          s.ID,
		URL:         s.URL,
		Email:       email,
		Paid:        s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		AmountMinor: s.AmountTotal,
		Currency:    string(s.Currency),
		Metadata:    s.Metadata,
	}
}

// wrap converts a Stripe API error into a domain.StatusError carrying the
// status Stripe reported, so the boundary can propagate it.
func (p *StripeProcessor) wrap(op string, err error) error {
	var sErr *stripe.Error
	if errors.As(err, &sErr) {
		p.logger.Printf("stripe: %s failed status=%d code=%s", op, sErr.HTTPStatusCode, sErr.Code)
		return &domain.StatusError{Status: sErr.HTTPStatusCode, Message: sErr.Msg}
	}
	p.logger.Printf("stripe: %s failed: %v", op, err)
	return err
}
