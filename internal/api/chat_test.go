package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wpchat-client/internal/store"
	"wpchat-client/internal/wpaicg"
	pkgapi "wpchat-client/pkg/api"
)

type stubChatter struct {
	reply string
	err   error

	calls        int
	lastModel    wpaicg.Model
	lastMessages []wpaicg.Message
}

func (s *stubChatter) Chat(ctx context.Context, query string, model wpaicg.Model) (string, error) {
	return s.ChatHistory(ctx, []wpaicg.Message{{Role: wpaicg.RoleUser, Content: query}}, model)
}

func (s *stubChatter) ChatHistory(ctx context.Context, messages []wpaicg.Message, model wpaicg.Model) (string, error) {
	s.calls++
	s.lastModel = model
	s.lastMessages = messages
	return s.reply, s.err
}

func newTestRouter(t *testing.T, chatter Chatter) chi.Router {
	db, err := store.Open()
	require.NoError(t, err)

	router := chi.NewRouter()
	NewChatService(db, chatter).AddRoutes(router)
	return router
}

func doJSON(t *testing.T, router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, &stubChatter{})

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp pkgapi.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestModelsEndpoint(t *testing.T) {
	router := newTestRouter(t, &stubChatter{})

	rec := doJSON(t, router, http.MethodGet, "/chat/models", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp pkgapi.ModelsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []string{"gpt-4o", "gpt-4o-mini", "chatgpt-4o-latest"}, resp.Models)
}

func TestSendMessage(t *testing.T) {
	chatter := &stubChatter{reply: "Hi there!"}
	router := newTestRouter(t, chatter)

	rec := doJSON(t, router, http.MethodPost, "/chat/message", pkgapi.ChatMessageRequest{Message: "Hi", Model: "gpt-4o-mini"})
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp pkgapi.ChatMessageResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Hi there!", resp.Reply)
	assert.Equal(t, "gpt-4o-mini", resp.Model)
	assert.Equal(t, wpaicg.ModelGPT4oMini, chatter.lastModel)
}

func TestSendMessage_Validation(t *testing.T) {
	chatter := &stubChatter{reply: "unused"}
	router := newTestRouter(t, chatter)

	rec := doJSON(t, router, http.MethodPost, "/chat/message", pkgapi.ChatMessageRequest{Message: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/chat/message", pkgapi.ChatMessageRequest{Message: "Hi", Model: "gpt-5"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, 0, chatter.calls)
}

func TestSendMessage_UpstreamFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"parse error", fmt.Errorf("%w: invalid message format in response", wpaicg.ErrParse), http.StatusBadGateway},
		{"connection error", fmt.Errorf("%w: status 500", wpaicg.ErrConnection), http.StatusBadGateway},
		{"generic chat error", wpaicg.ErrChat, http.StatusBadGateway},
		{"unclassified error", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, &stubChatter{err: tt.err})
			rec := doJSON(t, router, http.MethodPost, "/chat/message", pkgapi.ChatMessageRequest{Message: "Hi"})
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestConversationFlow(t *testing.T) {
	chatter := &stubChatter{reply: "Hi there!"}
	router := newTestRouter(t, chatter)

	rec := doJSON(t, router, http.MethodPost, "/chat/conversations", pkgapi.StartConversationRequest{Title: "Test Conversation"})
	require.Equal(t, http.StatusOK, rec.Code)

	var startResp pkgapi.StartConversationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&startResp))
	conversationID := startResp.ConversationID

	// Conversation shows up in the listing.
	rec = doJSON(t, router, http.MethodGet, "/chat/conversations", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listResp pkgapi.GetConversationsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&listResp))
	require.Len(t, listResp.Conversations, 1)
	assert.Equal(t, "Test Conversation", listResp.Conversations[0].Title)

	// First message.
	rec = doJSON(t, router, http.MethodPost, "/chat/conversations/"+conversationID+"/messages", pkgapi.ChatMessageRequest{Message: "Hi"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, chatter.lastMessages, 1)

	// Second message carries the accumulated history upstream.
	chatter.reply = "Still here"
	rec = doJSON(t, router, http.MethodPost, "/chat/conversations/"+conversationID+"/messages", pkgapi.ChatMessageRequest{Message: "Are you there?"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, chatter.lastMessages, 3)
	assert.Equal(t, wpaicg.RoleUser, chatter.lastMessages[0].Role)
	assert.Equal(t, wpaicg.RoleAssistant, chatter.lastMessages[1].Role)
	assert.Equal(t, "Are you there?", chatter.lastMessages[2].Content)

	// Both sides of each exchange are persisted in order.
	rec = doJSON(t, router, http.MethodGet, "/chat/conversations/"+conversationID+"/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var historyResp pkgapi.GetHistoryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&historyResp))
	require.Len(t, historyResp.Messages, 4)
	assert.Equal(t, "Hi", historyResp.Messages[0].Content)
	assert.Equal(t, "Hi there!", historyResp.Messages[1].Content)
	assert.Equal(t, "Are you there?", historyResp.Messages[2].Content)
	assert.Equal(t, "Still here", historyResp.Messages[3].Content)

	// Rename.
	rec = doJSON(t, router, http.MethodPost, "/chat/conversations/"+conversationID+"/rename", pkgapi.RenameConversationRequest{Title: "Renamed"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/chat/conversations", nil)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&listResp))
	assert.Equal(t, "Renamed", listResp.Conversations[0].Title)

	// Delete.
	rec = doJSON(t, router, http.MethodDelete, "/chat/conversations/"+conversationID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/chat/conversations/"+conversationID+"/history", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConversationMessage_UnknownConversation(t *testing.T) {
	chatter := &stubChatter{reply: "unused"}
	router := newTestRouter(t, chatter)

	rec := doJSON(t, router, http.MethodPost, "/chat/conversations/"+uuid.NewString()+"/messages", pkgapi.ChatMessageRequest{Message: "Hi"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, chatter.calls)
}

func TestConversationMessage_UpstreamFailureNotPersisted(t *testing.T) {
	chatter := &stubChatter{err: fmt.Errorf("%w: status 500", wpaicg.ErrConnection)}
	router := newTestRouter(t, chatter)

	rec := doJSON(t, router, http.MethodPost, "/chat/conversations", pkgapi.StartConversationRequest{Title: "Test"})
	require.Equal(t, http.StatusOK, rec.Code)

	var startResp pkgapi.StartConversationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&startResp))

	rec = doJSON(t, router, http.MethodPost, "/chat/conversations/"+startResp.ConversationID+"/messages", pkgapi.ChatMessageRequest{Message: "Hi"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/chat/conversations/"+startResp.ConversationID+"/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var historyResp pkgapi.GetHistoryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&historyResp))
	assert.Empty(t, historyResp.Messages)
}

func TestInvalidConversationID(t *testing.T) {
	router := newTestRouter(t, &stubChatter{})

	rec := doJSON(t, router, http.MethodGet, "/chat/conversations/not-a-uuid/history", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
