package api

import "github.com/google/uuid"

type HealthResponse struct {
	Status string `json:"status"`
}

type ModelsResponse struct {
	Models []string `json:"models"`
}

type ChatMessageRequest struct {
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
}

type ChatMessageResponse struct {
	Reply string `json:"reply"`
	Model string `json:"model"`
}

type StartConversationRequest struct {
	Title string `json:"title"`
}

type StartConversationResponse struct {
	ConversationID string `json:"conversation_id"`
}

type ConversationMetadata struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt string    `json:"created_at"`
}

type GetConversationsResponse struct {
	Conversations []ConversationMetadata `json:"conversations"`
}

type RenameConversationRequest struct {
	Title string `json:"title"`
}

type ChatHistoryItem struct {
	Role      string `json:"role"` // "user" or "assistant"
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

type GetHistoryResponse struct {
	Messages []ChatHistoryItem `json:"messages"`
}
