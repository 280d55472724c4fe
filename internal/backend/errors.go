package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sony/gobreaker/v2"
)

var (
	// ErrGenerationTimeout is returned when document generation exceeds its deadline
	ErrGenerationTimeout = errors.New("Timeout: A geração do documento demorou mais que 30 segundos")
	// ErrNotFound matches any 404 response
	ErrNotFound = errors.New("resource not found")
	// ErrBackendFailure is returned when the backend answers success:false or an unusable body
	ErrBackendFailure = errors.New("backend reported failure")
	// ErrBackendUnavailable is returned while the circuit breaker is open
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// HTTPStatusError carries a non-2xx response
type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "backend status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("backend %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("backend %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses
func (e *HTTPStatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// IsCircuitOpen reports whether err came from an open or saturated breaker
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// countsAsFailure decides whether err should trip the breaker. Caller
// cancellation and 4xx answers say nothing about backend health.
func countsAsFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500
	}
	return !errors.Is(err, ErrBackendFailure)
}
