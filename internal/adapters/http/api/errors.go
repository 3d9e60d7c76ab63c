package api

import (
	"errors"
	"net/http"

	"github.com/Anshuman123-dev/Varuna-task/internal/adapters/repository"
	"github.com/Anshuman123-dev/Varuna-task/internal/domain/compliance"
)

// ErrBadRequest covers malformed request bodies and query parameters.
var ErrBadRequest = errors.New("bad request")

// classify maps an error to its HTTP status and machine-readable code.
// Input problems are 400, missing entities 404, wrong-state operations 409,
// balance shortfalls and pool invariant failures 422.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, compliance.ErrInputValidation):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, compliance.ErrRecordNotFound),
		errors.Is(err, repository.ErrPoolNotFound),
		errors.Is(err, repository.ErrRouteNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, compliance.ErrState):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, compliance.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity, "insufficient_balance"
	case errors.Is(err, compliance.ErrInvariantViolation):
		return http.StatusUnprocessableEntity, "invariant_violation"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
