package logic

import (
	"errors"
	"fmt"
)

// User-facing messages passed to FormSink.SetError.
const (
	ErrMsgGuestCountInvalid = "Guest count must be a whole number"
	ErrMsgSearchFailed      = "Could not search products, please try again"
	ErrMsgSearchResultGone  = "That search result is no longer available"
)

// ErrMsgQueryTooShort formats the minimum query length message.
func ErrMsgQueryTooShort(minLength int) string {
	return fmt.Sprintf("Type at least %d characters to search", minLength)
}

// ErrNoCatalog is logged when a session searches without a catalog.
var ErrNoCatalog = errors.New("no product catalog configured")
