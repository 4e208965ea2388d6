package wpaicg

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/gorilla/schema"
)

const (
	chatEndpointPath = "/wp-admin/admin-ajax.php"
	chatAction       = "wpaicg_chat_shortcode_message"
	chatBotID        = "0"
	chatIdentity     = "shortcode"
)

var payloadEncoder = schema.NewEncoder()

// chatPayload is the form body for one chat submission. The schema tags are
// the wire field names the admin-ajax handler dispatches on. A payload is
// built fresh per call and never reused.
type chatPayload struct {
	Nonce       string `schema:"_wpnonce"`
	PostID      string `schema:"post_id"`
	URL         string `schema:"url"`
	Action      string `schema:"action"`
	Message     string `schema:"message"`
	BotID       string `schema:"bot_id"`
	Identity    string `schema:"chatbot_identity"`
	ClientID    string `schema:"wpaicg_chat_client_id"`
	HistoryJSON string `schema:"wpaicg_chat_history"`
}

// buildChatForm assembles the form-encoded payload for the chat POST. The
// transcript travels as a JSON array of strings inside the form, that is the
// shape the backend expects for the history sub-field.
func buildChatForm(tokens authTokens, baseURL, message string, transcript []string) (url.Values, error) {
	history, err := json.Marshal(transcript)
	if err != nil {
		return nil, fmt.Errorf("%w: serializing chat history: %s", ErrChat, err)
	}

	payload := chatPayload{
		Nonce:       tokens.nonce,
		PostID:      tokens.postID,
		URL:         baseURL,
		Action:      chatAction,
		Message:     message,
		BotID:       chatBotID,
		Identity:    chatIdentity,
		ClientID:    newClientID(),
		HistoryJSON: string(history),
	}

	form := url.Values{}
	if err := payloadEncoder.Encode(payload, form); err != nil {
		return nil, fmt.Errorf("%w: encoding chat payload: %s", ErrChat, err)
	}

	return form, nil
}

// newClientID produces the per-call widget client identifier: 10 hex chars
// from 5 random bytes. Uniqueness in practice is all the backend needs,
// secrecy is irrelevant.
func newClientID() string {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// initialHeaders is the header set for the landing page GET: a generic
// browser navigation arriving from a search engine.
func initialHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent": userAgent,
		"Referer":    "https://www.google.com/",
		"Accept": "text/html,application/xhtml+xml,application/xml;q=0.9," +
			"image/avif,image/webp,image/apng,*/*;q=0.8," +
			"application/signed-exchange;v=b3;q=0.7",
	}
}

// postHeaders is the header set for the chat POST: a same-site AJAX call
// originating from the widget page. The User-Agent must match the one used
// for the token fetch; the backend cross-checks consistency within a
// session.
func postHeaders(userAgent, baseURL string) map[string]string {
	return map[string]string{
		"User-Agent":   userAgent,
		"Referer":      baseURL,
		"Origin":       baseURL,
		"Accept":       "*/*",
		"Content-Type": "application/x-www-form-urlencoded; charset=UTF-8",
	}
}
