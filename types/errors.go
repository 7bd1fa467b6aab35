package types

import (
	"errors"
	"fmt"
)

// ErrInvalidInput rejects a request before any provider or storage work:
// out-of-range or non-finite coordinates, non-positive radius, blank query
// text.
var ErrInvalidInput = errors.New("invalid input")

// ProviderError reports an upstream dependency failure: unreachable host,
// non-2xx status, malformed body, or provider-side quota. Storage failures
// are not ProviderErrors; they are recovered inside the cache layer.
type ProviderError struct {
	Provider string
	Reason   string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Reason)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func NewProviderError(provider, reason string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Reason: reason, Err: err}
}

// IsProviderError reports whether any error in the chain is a ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
