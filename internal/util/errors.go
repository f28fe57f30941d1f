// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidInput    = errors.New("invalid input provided")
)

// IsError reports whether err matches target in its chain.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
