package api

import (
	"errors"
	"fmt"
	"net/http"

	repository "github.com/okian/vouch/internal/adapters/repository"
	txqueue "github.com/okian/vouch/internal/adapters/txn/queue"
)

// Sentinel kinds for API errors.
var (
	ErrServe         = errors.New("api serve failed")
	ErrBadRequest    = errors.New("bad request")
	ErrMissingCaller = errors.New("missing caller identity")
	ErrRateLimited   = errors.New("rate limited")
)

// NewKind returns a kind-only error annotated with the operation.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind annotates err with an operation and a sentinel kind.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// Wrap annotates err with the operation that produced it.
func Wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// statusFor translates an error chain into an HTTP status and a stable
// machine-readable code. Unrecognized errors surface as 500.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrMissingCaller):
		return http.StatusUnauthorized, "missing_caller"
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, repository.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrAlreadyEndorsed):
		return http.StatusConflict, "already_endorsed"
	case errors.Is(err, repository.ErrAlreadyExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, repository.ErrSelfEndorsement):
		return http.StatusForbidden, "self_endorsement"
	case errors.Is(err, repository.ErrInsufficientReputation):
		return http.StatusForbidden, "insufficient_reputation"
	case errors.Is(err, txqueue.ErrFull):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, txqueue.ErrClosed):
		return http.StatusServiceUnavailable, "shutting_down"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
