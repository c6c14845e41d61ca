package httpserver

import (
	"context"
	"net/http"

	"dlvrit-backend/internal/config"
	"dlvrit-backend/internal/domain"
	"dlvrit-backend/internal/service/checkout"
	"dlvrit-backend/internal/service/promo"
	"github.com/gin-gonic/gin"
)

type checkoutService interface {
	Checkout(ctx context.Context, in checkout.Input) (*checkout.Result, error)
	CreateSession(ctx context.Context, in checkout.Input) (*checkout.SessionResult, error)
	ConfirmSession(ctx context.Context, sessionID string) (*checkout.Result, error)
}

type promoService interface {
	Validate(ctx context.Context, code string) (*promo.Result, error)
}

// Deps carries the services the routes depend on. PaymentMode decides which
// checkout flow /create-checkout-session runs.
type Deps struct {
	Checkout    checkoutService
	Promo       promoService
	PaymentMode string
}

type checkoutSuccessRequest struct {
	SessionID string `json:"session_id"`
}

type validatePromoRequest struct {
	Promo string `json:"promo"`
}

// writeError collapses any failure into the single {"error": message}
// envelope, with the status the error carries (default 500).
func writeError(c *gin.Context, err error) {
	c.JSON(domain.HTTPStatus(err), gin.H{"error": err.Error()})
}

func createCheckoutSessionHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in checkout.Input
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		if deps.PaymentMode == config.PaymentModeSession {
			res, err := deps.Checkout.CreateSession(c.Request.Context(), in)
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"sessionId": res.SessionID, "url": res.URL})
			return
		}

		res, err := deps.Checkout.Checkout(c.Request.Context(), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "uploadUrl": res.UploadURL})
	}
}

func checkoutSuccessHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutSuccessRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		res, err := deps.Checkout.ConfirmSession(c.Request.Context(), req.SessionID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "uploadUrl": res.UploadURL})
	}
}

func validatePromoCodeHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req validatePromoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		res, err := deps.Promo.Validate(c.Request.Context(), req.Promo)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"valid":       res.Valid,
			"percent_off": res.PercentOff,
			"amount_off":  res.AmountOff,
		})
	}
}
