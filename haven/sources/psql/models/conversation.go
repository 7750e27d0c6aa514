// haven/sources/psql/models/conversation.go
package models

import (
	"time"

	"haven/haven/support"
)

type Conversation struct {
	ID        uint              `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time         `json:"created_at" gorm:"autoCreateTime;not null;index"`
	RiskLevel support.RiskLevel `json:"risk_level" gorm:"type:varchar(32);not null;default:'unknown'"`
}

func (Conversation) TableName() string {
	return "conversations"
}
