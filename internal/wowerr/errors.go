// Package wowerr defines the closed set of error kinds the core surfaces
// (spec §7) and the wrapping convention used throughout the module:
// github.com/pkg/errors, grounded on the pattern in
// rockstar-0000-aistore/dsort/dsort.go (errors.Wrap/Wrapf/Errorf rather than
// bare fmt.Errorf at every call site).
package wowerr

import "github.com/pkg/errors"

// Sentinel kinds. Callers compare with errors.Is after unwrapping through
// any number of Wrap layers.
var (
	ErrDisconnected    = errors.New("wowcore: disconnected")
	ErrFraming         = errors.New("wowcore: framing error")
	ErrDecode          = errors.New("wowcore: decode error")
	ErrProtocol        = errors.New("wowcore: protocol error")
	ErrSend            = errors.New("wowcore: send error")
	ErrCancelled       = errors.New("wowcore: cancelled")
	ErrInvalidArgument = errors.New("wowcore: invalid argument")
	ErrPayloadTooLarge = errors.New("wowcore: payload too large")
)

// Wrap attaches context to one of the sentinel kinds above.
func Wrap(kind error, context string) error {
	return errors.Wrap(kind, context)
}

// Wrapf attaches formatted context to one of the sentinel kinds above.
func Wrapf(kind error, format string, args ...interface{}) error {
	return errors.Wrapf(kind, format, args...)
}
