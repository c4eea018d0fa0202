package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrBadCreds           = errors.New("invalid email or password")
	ErrUserBlocked        = errors.New("User is Blocked")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNoSession          = errors.New("no active session")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidStep        = errors.New("action not allowed at this checkout step")
	ErrGatewayUnavailable = errors.New("payment gateway not configured")
	ErrUnknownPayment     = errors.New("unknown or expired payment reference")
	ErrBadSignature       = errors.New("payment signature mismatch")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidStock       = errors.New("stock must be zero or more")
	ErrOrderNotFound      = errors.New("order not found")
)

// ValidationError carries field-level messages keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
