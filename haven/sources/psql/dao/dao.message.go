// haven/sources/psql/dao/dao.message.go
package dao

import (
	"context"

	"haven/haven/sources/psql/models"

	"gorm.io/gorm/clause"
)

// AppendMessage stores a message; the creation time is assigned here.
func (dao *ConversationDAO) AppendMessage(ctx context.Context, conversationID uint, sender, text string) (*models.Message, error) {
	msg := models.Message{
		ConversationID: conversationID,
		Sender:         sender,
		Text:           text,
	}
	err := dao.DB.WithContext(ctx).Omit(clause.Associations).Create(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// GetMessages loads a conversation's messages oldest first.
func (dao *ConversationDAO) GetMessages(ctx context.Context, conversationID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := dao.DB.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}
