package store

import "time"

type Business struct {
	ID            string    `json:"id"` // Using UUID for external ID
	Name          string    `json:"name"`
	GeneratedCode string    `json:"generated_code"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Usage struct {
	BusinessID      string `json:"business_id"`
	MessagesUsed    int    `json:"messages_used"`
	GenerationsUsed int    `json:"generations_used"`
}

type CustomizationMessage struct {
	ID         string    `json:"id"` // Using UUID for external ID
	BusinessID string    `json:"business_id"`
	Sender     string    `json:"sender"` // "user" or "assistant"
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
}
