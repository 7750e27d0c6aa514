// haven/sources/psql/models/message.go
package models

import (
	"time"
)

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Message rows are append-only. Conversation is declared only so the foreign
// key and cascade are migrated; it is never preloaded.
type Message struct {
	ID             uint         `json:"id" gorm:"primaryKey;autoIncrement"`
	ConversationID uint         `json:"conversation_id" gorm:"not null;index"`
	Conversation   Conversation `json:"-" gorm:"foreignKey:ConversationID;references:ID;constraint:OnDelete:CASCADE"`
	Sender         string       `json:"sender" gorm:"type:varchar(16);not null"`
	Text           string       `json:"text" gorm:"type:text;not null"`
	CreatedAt      time.Time    `json:"created_at" gorm:"autoCreateTime;not null"`
}

func (Message) TableName() string {
	return "messages"
}
