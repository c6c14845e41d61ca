package promo

import (
	"context"
	"errors"
	"testing"

	"dlvrit-backend/internal/domain"
	"dlvrit-backend/internal/payment"
)

type stubProcessor struct {
	discount *domain.Discount
	err      error
	lastCode string
}

func (s *stubProcessor) CreateCharge(_ context.Context, _ payment.ChargeInput) (*payment.Charge, error) {
	return nil, errors.New("not implemented")
}

func (s *stubProcessor) CreateSession(_ context.Context, _ payment.SessionInput) (*payment.Session, error) {
	return nil, errors.New("not implemented")
}

func (s *stubProcessor) GetSession(_ context.Context, _ string) (*payment.Session, error) {
	return nil, errors.New("not implemented")
}

func (s *stubProcessor) FindPromoCode(_ context.Context, code string) (*domain.Discount, error) {
	s.lastCode = code
	return s.discount, s.err
}

func (s *stubProcessor) UnitPrice(_ context.Context, _ string) (int64, string, error) {
	return 0, "", errors.New("not implemented")
}

func TestValidateKnownCode(t *testing.T) {
	proc := &stubProcessor{discount: &domain.Discount{ID: "promo_1", Code: "SAVE10", PercentOff: 10}}
	svc := New(proc, nil)

	res, err := svc.Validate(context.Background(), "SAVE10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Valid || res.PercentOff != 10 || res.AmountOff != 0 {
		t.Fatalf("expected {valid:true percent_off:10 amount_off:0}, got %+v", res)
	}
	if proc.lastCode != "SAVE10" {
		t.Fatalf("expected exact code lookup, got %q", proc.lastCode)
	}
}

func TestValidateUnknownCodeIsNotAnError(t *testing.T) {
	proc := &stubProcessor{err: domain.ErrInvalidPromo}
	svc := New(proc, nil)

	res, err := svc.Validate(context.Background(), "BADCODE")
	if err != nil {
		t.Fatalf("a not-valid code is a normal outcome, got error %v", err)
	}
	if res.Valid {
		t.Fatalf("expected valid:false for unknown code")
	}
}

func TestValidateEmptyCode(t *testing.T) {
	proc := &stubProcessor{}
	svc := New(proc, nil)

	res, err := svc.Validate(context.Background(), "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Valid {
		t.Fatalf("blank code must not validate")
	}
	if proc.lastCode != "" {
		t.Fatalf("blank code must not hit the processor")
	}
}

func TestValidatePropagatesProcessorFailure(t *testing.T) {
	proc := &stubProcessor{err: errors.New("processor unavailable")}
	svc := New(proc, nil)

	if _, err := svc.Validate(context.Background(), "SAVE10"); err == nil {
		t.Fatalf("expected processor failure to propagate")
	}
}
