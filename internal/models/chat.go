package models

// ChatMessage is one earlier turn of an assistant conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

type ChatRequest struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history"`
}

type ChatResponse struct {
	Reply  string `json:"reply"`
	Source string `json:"source"` // "command" | "model" | "offline"
}
