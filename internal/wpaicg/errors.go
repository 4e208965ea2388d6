package wpaicg

import (
	"errors"
	"fmt"
)

// Error kinds returned by this package. Every failure surfaced by a Client
// matches ErrChat; the remaining sentinels narrow it down so callers can
// distinguish transport failures from protocol drift with errors.Is.
var (
	ErrChat = errors.New("chat request failed")

	// ErrConnection covers network failures, timeouts, and non-success HTTP
	// statuses from either the token fetch or the chat submission.
	ErrConnection = fmt.Errorf("connection error: %w", ErrChat)

	// ErrAuthentication is reserved for credential or authorization
	// rejections. No current backend path produces it.
	ErrAuthentication = fmt.Errorf("authentication error: %w", ErrChat)

	// ErrParse means an expected structure was absent from the landing page
	// HTML or the chat response JSON, usually a sign the site changed its
	// markup or served an interstitial instead of the widget shell.
	ErrParse = fmt.Errorf("parse error: %w", ErrChat)
)
