package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"wpchat-client/internal/store"
	"wpchat-client/internal/wpaicg"
	"wpchat-client/pkg/api"
)

// Chatter is the upstream widget client the gateway forwards to.
type Chatter interface {
	Chat(ctx context.Context, query string, model wpaicg.Model) (string, error)
	ChatHistory(ctx context.Context, messages []wpaicg.Message, model wpaicg.Model) (string, error)
}

type ChatService struct {
	db     *gorm.DB
	client Chatter

	// The upstream client is sequential, so calls through it are serialized
	// here rather than in the client itself.
	upstreamMu sync.Mutex
}

func NewChatService(db *gorm.DB, client Chatter) *ChatService {
	return &ChatService{db: db, client: client}
}

func (s *ChatService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(s.Health))
	r.Route("/chat", func(r chi.Router) {
		r.Get("/models", RestHandler(s.GetModels))
		r.Post("/message", RestHandler(s.SendMessage))
		r.Get("/conversations", RestHandler(s.GetConversations))
		r.Post("/conversations", RestHandler(s.StartConversation))
		r.Post("/conversations/{conversation_id}/messages", RestHandler(s.SendConversationMessage))
		r.Get("/conversations/{conversation_id}/history", RestHandler(s.GetHistory))
		r.Post("/conversations/{conversation_id}/rename", RestHandler(s.RenameConversation))
		r.Delete("/conversations/{conversation_id}", RestHandler(s.DeleteConversation))
	})
}

func (s *ChatService) Health(r *http.Request) (any, error) {
	return api.HealthResponse{Status: "ok"}, nil
}

func (s *ChatService) GetModels(r *http.Request) (any, error) {
	var names []string
	for _, m := range wpaicg.Models() {
		names = append(names, m.APIName())
	}
	return api.ModelsResponse{Models: names}, nil
}

// SendMessage is the stateless single-shot endpoint: one query in, one reply
// out, nothing persisted.
func (s *ChatService) SendMessage(r *http.Request) (any, error) {
	req, err := ParseRequest[api.ChatMessageRequest](r)
	if err != nil {
		return nil, err
	}

	model, err := parseModel(req.Model)
	if err != nil {
		return nil, err
	}
	if req.Message == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "message must not be empty")
	}

	s.upstreamMu.Lock()
	reply, err := s.client.Chat(r.Context(), req.Message, model)
	s.upstreamMu.Unlock()
	if err != nil {
		return nil, upstreamError(err)
	}

	return api.ChatMessageResponse{Reply: reply, Model: model.APIName()}, nil
}

func (s *ChatService) GetConversations(r *http.Request) (any, error) {
	conversations, err := store.ListConversations(s.db)
	if err != nil {
		return nil, err
	}

	resp := api.GetConversationsResponse{Conversations: []api.ConversationMetadata{}}
	for _, c := range conversations {
		resp.Conversations = append(resp.Conversations, api.ConversationMetadata{
			ID:        c.ID,
			Title:     c.Title,
			CreatedAt: c.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp, nil
}

func (s *ChatService) StartConversation(r *http.Request) (any, error) {
	req, err := ParseRequest[api.StartConversationRequest](r)
	if err != nil {
		return nil, err
	}

	conversationID := uuid.New()
	err = store.CreateConversation(s.db, &store.Conversation{
		ID:    conversationID,
		Title: req.Title,
	})
	if err != nil {
		return nil, err
	}

	return api.StartConversationResponse{ConversationID: conversationID.String()}, nil
}

// SendConversationMessage submits a message with the conversation's
// accumulated history as transcript context, then records both sides of the
// exchange.
func (s *ChatService) SendConversationMessage(r *http.Request) (any, error) {
	conversationID, err := URLParamUUID(r, "conversation_id")
	if err != nil {
		return nil, err
	}

	req, err := ParseRequest[api.ChatMessageRequest](r)
	if err != nil {
		return nil, err
	}

	model, err := parseModel(req.Model)
	if err != nil {
		return nil, err
	}
	if req.Message == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "message must not be empty")
	}

	if _, err := store.GetConversation(s.db, conversationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "conversation %v not found", conversationID)
		}
		return nil, err
	}

	history, err := store.GetHistory(s.db, conversationID)
	if err != nil {
		return nil, err
	}

	messages := make([]wpaicg.Message, 0, len(history)+1)
	for _, msg := range history {
		messages = append(messages, wpaicg.Message{Role: wpaicg.Role(msg.Role), Content: msg.Content})
	}
	messages = append(messages, wpaicg.Message{Role: wpaicg.RoleUser, Content: req.Message})

	s.upstreamMu.Lock()
	reply, err := s.client.ChatHistory(r.Context(), messages, model)
	s.upstreamMu.Unlock()
	if err != nil {
		return nil, upstreamError(err)
	}

	err = store.AppendMessage(s.db, &store.ChatMessage{
		ConversationID: conversationID,
		Role:           string(wpaicg.RoleUser),
		Content:        req.Message,
	})
	if err != nil {
		return nil, err
	}
	err = store.AppendMessage(s.db, &store.ChatMessage{
		ConversationID: conversationID,
		Role:           string(wpaicg.RoleAssistant),
		Content:        reply,
	})
	if err != nil {
		return nil, err
	}

	return api.ChatMessageResponse{Reply: reply, Model: model.APIName()}, nil
}

func (s *ChatService) GetHistory(r *http.Request) (any, error) {
	conversationID, err := URLParamUUID(r, "conversation_id")
	if err != nil {
		return nil, err
	}

	if _, err := store.GetConversation(s.db, conversationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "conversation %v not found", conversationID)
		}
		return nil, err
	}

	history, err := store.GetHistory(s.db, conversationID)
	if err != nil {
		return nil, err
	}

	resp := api.GetHistoryResponse{Messages: []api.ChatHistoryItem{}}
	for _, msg := range history {
		resp.Messages = append(resp.Messages, api.ChatHistoryItem{
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return resp, nil
}

func (s *ChatService) RenameConversation(r *http.Request) (any, error) {
	conversationID, err := URLParamUUID(r, "conversation_id")
	if err != nil {
		return nil, err
	}

	req, err := ParseRequest[api.RenameConversationRequest](r)
	if err != nil {
		return nil, err
	}

	if _, err := store.GetConversation(s.db, conversationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "conversation %v not found", conversationID)
		}
		return nil, err
	}

	return nil, store.RenameConversation(s.db, conversationID, req.Title)
}

func (s *ChatService) DeleteConversation(r *http.Request) (any, error) {
	conversationID, err := URLParamUUID(r, "conversation_id")
	if err != nil {
		return nil, err
	}

	return nil, store.DeleteConversation(s.db, conversationID)
}

func parseModel(name string) (wpaicg.Model, error) {
	if name == "" {
		return wpaicg.DefaultModel, nil
	}
	model, err := wpaicg.ParseModel(name)
	if err != nil {
		return 0, CodedError(http.StatusBadRequest, err)
	}
	return model, nil
}

// upstreamError maps the widget client's error taxonomy to a bad gateway;
// anything outside the taxonomy is unexpected and stays a 500.
func upstreamError(err error) error {
	if errors.Is(err, wpaicg.ErrChat) {
		return CodedError(http.StatusBadGateway, err)
	}
	return err
}
