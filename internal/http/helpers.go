package http

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"thot/internal/core"
	"thot/internal/log"
	"thot/internal/services"
	"thot/internal/storage"
)

// sanitizeInput removes control characters (except tab and newlines) and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// requestID reuses an upstream X-Request-ID when it is reasonable, and
// generates one otherwise.
func requestID(r *http.Request) string {
	if id := sanitizeInput(r.Header.Get("X-Request-ID")); id != "" && len(id) <= 64 {
		return id
	}
	return generateRequestID()
}

// inScope reports whether the caller may touch records of unit. Scoped
// callers may not touch records without a unit.
func inScope(scope []int64, unit *int64) bool {
	if scope == nil {
		return true
	}
	if unit == nil {
		return false
	}
	for _, id := range scope {
		if id == *unit {
			return true
		}
	}
	return false
}

// isValidation reports whether err is a domain validation failure.
func isValidation(err error) bool {
	var fe *FieldError
	if errors.As(err, &fe) {
		return true
	}
	for _, target := range []error{
		core.ErrInvalidDay, core.ErrInvalidMonth, core.ErrInvalidAmount,
		core.ErrNegativeAmount, core.ErrEmptyName, core.ErrInvalidEmail,
		core.ErrInvalidCode, core.ErrMissingCustomer, core.ErrEmptyOrderNumber,
		core.ErrEmptyTaxID, core.ErrInvalidChoice, services.ErrUnknownReference,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondError maps err to a status: unknown ids are 404, validation
// failures 422 and everything else 500. Only 500s are logged as errors.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		NotFoundError(err.Error()).Write(w)
	case isValidation(err):
		UnprocessableEntityError(err.Error()).Write(w)
	default:
		requestLog(r).LogError(r.Context(), "Request failed", err, op, log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, ""))
		InternalServerError("internal error").Write(w)
	}
}
