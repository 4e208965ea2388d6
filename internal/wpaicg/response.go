package wpaicg

import (
	"encoding/json"
	"fmt"
)

// interpretChatResponse validates the chat POST response and extracts the
// reply. A non-success HTTP status is a connection error; network-level and
// HTTP-level failures are deliberately the same kind from the caller's
// perspective. The body must be a JSON object whose "data" field is a
// string, anything else is protocol drift.
func interpretChatResponse(status int, body []byte) (string, error) {
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("%w: chat endpoint returned status %d", ErrConnection, status)
	}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return "", fmt.Errorf("%w: invalid message format in response", ErrParse)
	}

	reply, ok := fields["data"].(string)
	if !ok {
		return "", fmt.Errorf("%w: invalid message format in response", ErrParse)
	}

	return reply, nil
}
