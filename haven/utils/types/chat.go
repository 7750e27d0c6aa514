// haven/utils/types/chat.go
package types

import (
	"time"

	"haven/haven/support"
)

type ChatRequest struct {
	Message        string `json:"message" validate:"required"`
	ConversationID *uint  `json:"conversation_id,omitempty"`
}

type ChatResponse struct {
	ConversationID       uint               `json:"conversation_id"`
	Response             string             `json:"response"`
	RiskLevel            support.RiskLevel  `json:"risk_level"`
	Triggers             []string           `json:"triggers"`
	RecommendedResources []support.Resource `json:"recommended_resources"`
}

type MessageView struct {
	ID        uint      `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type ConversationDetail struct {
	ID        uint              `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	RiskLevel support.RiskLevel `json:"risk_level"`
	Messages  []MessageView     `json:"messages"`
}

// KeywordFlag marks a user message whose text matched at least one trigger.
type KeywordFlag struct {
	MessageID     uint              `json:"message_id"`
	Excerpt       string            `json:"excerpt"`
	Triggers      []string          `json:"triggers"`
	AssessedLevel support.RiskLevel `json:"assessed_level"`
}

type ConversationAnalysis struct {
	ConversationID   uint              `json:"conversation_id"`
	CreatedAt        time.Time         `json:"created_at"`
	RiskLevel        support.RiskLevel `json:"risk_level"`
	MessageCount     int               `json:"message_count"`
	UserMessageCount int               `json:"user_message_count"`
	BotMessageCount  int               `json:"bot_message_count"`
	KeywordFlags     []KeywordFlag     `json:"keyword_flags"`
	LastMessageAt    time.Time         `json:"last_message_at"`
}

// Transcript is the document written to object storage on export.
type Transcript struct {
	Conversation ConversationDetail   `json:"conversation"`
	Analysis     ConversationAnalysis `json:"analysis"`
	ExportedAt   time.Time            `json:"exported_at"`
}

type ExportResponse struct {
	ConversationID uint   `json:"conversation_id"`
	Key            string `json:"key"`
}
