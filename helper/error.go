package helper

import "fmt"

// NewError wraps an error with the context in which it occurred.
// The wrapped error stays available for errors.Is/errors.As checks.
func NewError(context string, err error) error {
	return fmt.Errorf("error in %s: %w", context, err)
}
