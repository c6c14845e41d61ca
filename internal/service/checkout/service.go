package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dlvrit-backend/internal/config"
	"dlvrit-backend/internal/domain"
	"dlvrit-backend/internal/notify"
	"dlvrit-backend/internal/payment"
	orderrepo "dlvrit-backend/internal/repository/order"
	"dlvrit-backend/internal/transfer"
	"github.com/google/uuid"
)

// Options carries the pricing and delivery knobs the orchestrator needs.
type Options struct {
	PriceMode      string
	UnitPriceMinor int64
	Currency       string

	TransferMode   string
	PortalPassword string

	MailFrom string
	MailBCC  string

	FrontendBaseURL string
	OutboundTimeout time.Duration
}

// Service runs the checkout sequence: resolve price and promo, secure the
// upload destination, capture payment, notify the customer. The destination is
// provisioned before money moves so a provisioning failure can never leave a
// paid customer without an upload link.
type Service struct {
	payments payment.Processor
	packages transfer.Provisioner
	mailer   notify.Sender
	orders   orderrepo.Repository
	opts     Options
	logger   *log.Logger
}

// New builds a checkout Service.
func New(payments payment.Processor, packages transfer.Provisioner, mailer notify.Sender, orders orderrepo.Repository, opts Options, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		payments: payments,
		packages: packages,
		mailer:   mailer,
		orders:   orders,
		opts:     opts,
		logger:   logger,
	}
}

// Input is a validated checkout request.
type Input struct {
	PaymentMethod string `json:"payment_method"`
	ProductID     string `json:"product_id"`
	Quantity      int64  `json:"quantity"`
	Email         string `json:"email"`
	Project       string `json:"project"`
	Promo         string `json:"promo"`
}

// Result is the outcome of a completed synchronous checkout.
type Result struct {
	OrderID   string
	UploadURL string
}

// SessionResult is the outcome of starting a hosted checkout.
type SessionResult struct {
	OrderID   string
	SessionID string
	URL       string
}

func validationErr(msg string) error {
	return &domain.StatusError{Status: http.StatusBadRequest, Message: msg}
}

func (s *Service) validate(in Input, needPaymentMethod bool) error {
	if strings.TrimSpace(in.Email) == "" {
		return validationErr("email is required")
	}
	if in.Quantity <= 0 {
		return validationErr("quantity must be a positive number of minutes")
	}
	if needPaymentMethod && strings.TrimSpace(in.PaymentMethod) == "" {
		return validationErr("payment_method is required")
	}
	if s.opts.PriceMode == config.PriceModeCatalog && strings.TrimSpace(in.ProductID) == "" {
		return validationErr("product_id is required")
	}
	return nil
}

// resolveAmount computes the charge amount in integer minor units: unit price
// times quantity, unit price coming either from configuration or the
// processor's catalog.
func (s *Service) resolveAmount(ctx context.Context, in Input) (int64, string, error) {
	unit := s.opts.UnitPriceMinor
	currency := s.opts.Currency
	if s.opts.PriceMode == config.PriceModeCatalog {
		var err error
		unit, currency, err = s.payments.UnitPrice(ctx, in.ProductID)
		if err != nil {
			return 0, "", err
		}
	}
	return unit * in.Quantity, currency, nil
}

// resolvePromo looks up the promo code when one is supplied. A zero-match
// lookup surfaces domain.ErrInvalidPromo, which short-circuits the request
// before any charge is attempted.
func (s *Service) resolvePromo(ctx context.Context, code string) (*domain.Discount, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}
	return s.payments.FindPromoCode(ctx, code)
}

// applyDiscount reduces an amount by the discount's magnitude, never below
// zero. Percent discounts round to the nearest minor unit.
func applyDiscount(amount int64, d *domain.Discount) int64 {
	if d == nil {
		return amount
	}
	if d.PercentOff > 0 {
		amount -= int64(math.Round(float64(amount) * d.PercentOff / 100))
	} else if d.AmountOff > 0 {
		amount -= d.AmountOff
	}
	if amount < 0 {
		return 0
	}
	return amount
}

func (s *Service) callCtx(parent context.Context) (context.Context, context.CancelFunc) {
	if s.opts.OutboundTimeout > 0 {
		return context.WithTimeout(parent, s.opts.OutboundTimeout)
	}
	return context.WithCancel(parent)
}

// Checkout performs the synchronous direct-charge flow: provision the upload
// destination, capture the charge, email the link. Once the charge step starts
// the work continues on a context detached from the inbound request, so a
// client disconnect cannot abandon a submitted charge.
func (s *Service) Checkout(ctx context.Context, in Input) (*Result, error) {
	if err := s.validate(in, true); err != nil {
		return nil, err
	}

	discount, err := s.resolvePromo(ctx, in.Promo)
	if err != nil {
		return nil, err
	}

	amount, currency, err := s.resolveAmount(ctx, in)
	if err != nil {
		return nil, err
	}
	amount = applyDiscount(amount, discount)

	o := domain.Order{
		ID:          uuid.NewString(),
		Email:       in.Email,
		Project:     in.Project,
		Quantity:    in.Quantity,
		AmountMinor: amount,
		Currency:    currency,
		Status:      domain.OrderStatusPending,
	}
	if discount != nil {
		o.PromoID = discount.ID
	}
	created, err := s.orders.Create(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("record order: %w", err)
	}
	s.logger.Printf("checkout: order %s amount=%d %s quantity=%d", created.ID, amount, currency, in.Quantity)

	pctx, cancel := s.callCtx(ctx)
	dest, err := s.packages.CreatePackage(pctx, transfer.PackageInput{
		Project:     in.Project,
		Description: in.Project,
		Sender:      in.Email,
		Recipient:   in.Email,
	})
	cancel()
	if err != nil {
		return nil, err
	}
	if err := s.orders.MarkProvisioned(ctx, created.ID, dest.UploadURL); err != nil {
		return nil, fmt.Errorf("record provisioning: %w", err)
	}

	// Point of no return: from here the inbound request context no longer
	// governs the outbound calls.
	detached := context.WithoutCancel(ctx)

	cctx, cancel := s.callCtx(detached)
	charge, err := s.payments.CreateCharge(cctx, payment.ChargeInput{
		AmountMinor:    amount,
		Currency:       currency,
		PaymentMethod:  in.PaymentMethod,
		ReceiptEmail:   in.Email,
		IdempotencyKey: created.ID,
		Metadata:       s.chargeMetadata(created.ID, in, discount),
	})
	cancel()
	if err != nil {
		return nil, err
	}
	if err := s.orders.MarkCharged(detached, created.ID, charge.ID); err != nil {
		// The money already moved; bookkeeping must not turn a captured
		// charge into a client-visible failure.
		s.logger.Printf("checkout: order %s charged as %s but ledger update failed: %v", created.ID, charge.ID, err)
	}

	nctx, cancel := s.callCtx(detached)
	err = s.sendUploadEmail(nctx, in.Email, in.Project, in.Quantity, dest.UploadURL)
	cancel()
	if err != nil {
		s.logger.Printf("checkout: order %s notification failed: %v", created.ID, err)
		return nil, fmt.Errorf("send upload link email: %w", err)
	}
	if err := s.orders.MarkNotified(detached, created.ID); err != nil {
		s.logger.Printf("checkout: order %s notified but ledger update failed: %v", created.ID, err)
	}

	return &Result{OrderID: created.ID, UploadURL: dest.UploadURL}, nil
}

// CreateSession starts a hosted checkout: the caller redirects the customer to
// the returned URL and later confirms completion via ConfirmSession.
func (s *Service) CreateSession(ctx context.Context, in Input) (*SessionResult, error) {
	if err := s.validate(in, false); err != nil {
		return nil, err
	}

	discount, err := s.resolvePromo(ctx, in.Promo)
	if err != nil {
		return nil, err
	}

	unit := s.opts.UnitPriceMinor
	currency := s.opts.Currency
	if s.opts.PriceMode == config.PriceModeCatalog {
		unit, currency, err = s.payments.UnitPrice(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
	}

	o := domain.Order{
		ID:          uuid.NewString(),
		Email:       in.Email,
		Project:     in.Project,
		Quantity:    in.Quantity,
		AmountMinor: unit * in.Quantity,
		Currency:    currency,
		Status:      domain.OrderStatusPending,
	}
	if discount != nil {
		o.PromoID = discount.ID
	}
	created, err := s.orders.Create(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("record order: %w", err)
	}

	base := strings.TrimRight(s.opts.FrontendBaseURL, "/")
	sin := payment.SessionInput{
		UnitAmountMinor: unit,
		Currency:        currency,
		Quantity:        in.Quantity,
		ProductName:     productName(in.Project),
		CustomerEmail:   in.Email,
		SuccessURL:      base + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:       base + "/cancel",
		Metadata:        s.chargeMetadata(created.ID, in, discount),
	}
	if discount != nil {
		sin.DiscountID = discount.ID
	}

	cctx, cancel := s.callCtx(ctx)
	sess, err := s.payments.CreateSession(cctx, sin)
	cancel()
	if err != nil {
		return nil, err
	}
	if err := s.orders.SetSessionID(ctx, created.ID, sess.ID); err != nil {
		return nil, fmt.Errorf("record session: %w", err)
	}
	s.logger.Printf("checkout: order %s awaiting hosted session %s", created.ID, sess.ID)

	return &SessionResult{OrderID: created.ID, SessionID: sess.ID, URL: sess.URL}, nil
}

// ConfirmSession finishes a hosted checkout after the customer returns from
// the payment page: verify the session is paid, then provision and notify.
// Confirming an already-completed order returns its upload link again rather
// than provisioning twice.
func (s *Service) ConfirmSession(ctx context.Context, sessionID string) (*Result, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, validationErr("session_id is required")
	}

	gctx, cancel := s.callCtx(ctx)
	sess, err := s.payments.GetSession(gctx, sessionID)
	cancel()
	if err != nil {
		return nil, err
	}
	if !sess.Paid {
		return nil, &domain.StatusError{Status: http.StatusBadRequest, Message: "checkout session has not been paid"}
	}

	o, err := s.orders.GetBySessionID(ctx, sessionID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// The ledger row is gone or was never written; fall back to the
		// email and metadata the session itself carries.
		o = orderFromSession(sess)
		if _, cerr := s.orders.Create(ctx, *o); cerr != nil {
			s.logger.Printf("checkout: could not re-record order for session %s: %v", sessionID, cerr)
		} else if serr := s.orders.SetSessionID(ctx, o.ID, sessionID); serr != nil {
			s.logger.Printf("checkout: could not attach session %s to order %s: %v", sessionID, o.ID, serr)
		}
	case err != nil:
		return nil, fmt.Errorf("look up order for session: %w", err)
	}
	if o.NotifiedAt != nil {
		return &Result{OrderID: o.ID, UploadURL: o.UploadURL}, nil
	}

	// The payment is already captured, so run the remaining steps detached
	// from the inbound request.
	detached := context.WithoutCancel(ctx)
	if err := s.orders.MarkCharged(detached, o.ID, sess.ID); err != nil {
		s.logger.Printf("checkout: order %s paid via session but ledger update failed: %v", o.ID, err)
	}

	pctx, cancel := s.callCtx(detached)
	dest, err := s.packages.CreatePackage(pctx, transfer.PackageInput{
		Project:     o.Project,
		Description: o.Project,
		Sender:      o.Email,
		Recipient:   o.Email,
	})
	cancel()
	if err != nil {
		return nil, err
	}
	if err := s.orders.MarkProvisioned(detached, o.ID, dest.UploadURL); err != nil {
		s.logger.Printf("checkout: order %s provisioned but ledger update failed: %v", o.ID, err)
	}

	nctx, cancel := s.callCtx(detached)
	err = s.sendUploadEmail(nctx, o.Email, o.Project, o.Quantity, dest.UploadURL)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("send upload link email: %w", err)
	}
	if err := s.orders.MarkNotified(detached, o.ID); err != nil {
		s.logger.Printf("checkout: order %s notified but ledger update failed: %v", o.ID, err)
	}

	return &Result{OrderID: o.ID, UploadURL: dest.UploadURL}, nil
}

func (s *Service) chargeMetadata(orderID string, in Input, discount *domain.Discount) map[string]string {
	md := map[string]string{
		"order_id": orderID,
		"quantity": strconv.FormatInt(in.Quantity, 10),
		"email":    in.Email,
	}
	if in.ProductID != "" {
		md["product_id"] = in.ProductID
	}
	if in.Project != "" {
		md["project"] = in.Project
	}
	if discount != nil {
		md["promo_id"] = discount.ID
	}
	return md
}

// orderFromSession rebuilds a transient order from what the processor stored
// on the session at creation time.
func orderFromSession(sess *payment.Session) *domain.Order {
	o := &domain.Order{
		ID:          sess.Metadata["order_id"],
		Email:       sess.Email,
		Project:     sess.Metadata["project"],
		AmountMinor: sess.AmountMinor,
		Currency:    sess.Currency,
		Status:      domain.OrderStatusPending,
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if q, err := strconv.ParseInt(sess.Metadata["quantity"], 10, 64); err == nil {
		o.Quantity = q
	}
	return o
}

func productName(project string) string {
	if strings.TrimSpace(project) != "" {
		return "DLVRIT delivery: " + strings.TrimSpace(project)
	}
	return "DLVRIT delivery minutes"
}
