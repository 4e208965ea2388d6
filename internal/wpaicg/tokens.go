package wpaicg

import (
	"fmt"
	"regexp"
)

// The widget shell embeds both values as data attributes somewhere in the
// landing page. The nonce rotates per page load; the post id is the content
// object the widget is attached to.
var (
	noncePattern  = regexp.MustCompile(`data-nonce="(.+?)"`)
	postIDPattern = regexp.MustCompile(`data-post-id="(.+?)"`)
)

// authTokens are the per-session security values the backend requires on
// every chat submission. They are fetched fresh for each call and never
// cached.
type authTokens struct {
	nonce  string
	postID string
}

// extractAuthTokens scans the landing page HTML for the nonce and post id.
// Attribute values are returned verbatim; only presence is checked, the
// content is backend-defined and opaque. A missing attribute means the page
// markup changed or the site served an error page instead of the widget
// shell.
func extractAuthTokens(html string) (authTokens, error) {
	nonce := noncePattern.FindStringSubmatch(html)
	postID := postIDPattern.FindStringSubmatch(html)

	if nonce == nil || postID == nil {
		return authTokens{}, fmt.Errorf("%w: failed to parse authentication tokens from response", ErrParse)
	}

	return authTokens{nonce: nonce[1], postID: postID[1]}, nil
}
