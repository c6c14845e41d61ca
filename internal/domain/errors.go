package domain

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidPromo indicates a promo code matched no active discount.
	ErrInvalidPromo = errors.New("invalid or expired promo code")
)

// StatusError carries the HTTP status a failure should surface as, typically
// the status reported by an outbound collaborator, so the boundary can
// propagate it instead of a blanket 500.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

// HTTPStatus maps an error to the status the endpoint should report:
// validation failures are 400, collaborator failures keep their own status,
// everything else is a 500.
func HTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidPromo) {
		return http.StatusBadRequest
	}
	var se *StatusError
	if errors.As(err, &se) && se.Status != 0 {
		return se.Status
	}
	return http.StatusInternalServerError
}
