package promo

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"dlvrit-backend/internal/domain"
	"dlvrit-backend/internal/payment"
)

// Service validates promo codes against the payment processor's catalog.
type Service struct {
	payments payment.Processor
	logger   *log.Logger
}

// New builds a promo Service.
func New(payments payment.Processor, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{payments: payments, logger: logger}
}

// Result reports whether a code is redeemable and its magnitude when it is.
type Result struct {
	Valid      bool
	PercentOff float64
	AmountOff  int64
}

// Validate resolves a code among the processor's active promo codes. An
// unknown or inactive code is a normal not-valid outcome, not an error.
func (s *Service) Validate(ctx context.Context, code string) (*Result, error) {
	if strings.TrimSpace(code) == "" {
		return &Result{}, nil
	}
	d, err := s.payments.FindPromoCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPromo) {
			s.logger.Printf("promo: code %q not valid", code)
			return &Result{}, nil
		}
		return nil, err
	}
	return &Result{Valid: true, PercentOff: d.PercentOff, AmountOff: d.AmountOff}, nil
}
