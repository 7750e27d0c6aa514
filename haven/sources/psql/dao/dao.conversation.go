// haven/sources/psql/dao/dao.conversation.go
package dao

import (
	"context"
	"errors"
	"time"

	"haven/haven/sources/psql/models"
	"haven/haven/support"
	"haven/haven/utils/apperrors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConversationDAO struct {
	DB *gorm.DB
}

func NewConversationDAO(db *gorm.DB) *ConversationDAO {
	return &ConversationDAO{DB: db}
}

// ConversationSummary is a conversation row annotated with its message count.
type ConversationSummary struct {
	ID           uint              `json:"id"`
	CreatedAt    time.Time         `json:"created_at"`
	RiskLevel    support.RiskLevel `json:"risk_level"`
	MessageCount int64             `json:"message_count"`
}

type messageCount struct {
	ConversationID uint
	MessageCount   int64
}

// Transaction runs fn against a DAO bound to one database transaction. The
// transaction commits when fn returns nil and rolls back on error or panic.
func (dao *ConversationDAO) Transaction(ctx context.Context, fn func(tx *ConversationDAO) error) error {
	return dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ConversationDAO{DB: tx})
	})
}

// GetOrCreate returns the conversation with the given id, locked for update,
// or creates a new unknown-risk conversation when id is nil or unresolved.
// The bool reports whether a conversation was created.
func (dao *ConversationDAO) GetOrCreate(ctx context.Context, id *uint) (*models.Conversation, bool, error) {
	if id != nil {
		var conv models.Conversation
		err := dao.DB.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&conv, "id = ?", *id).Error
		if err == nil {
			return &conv, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
	}
	conv := models.Conversation{RiskLevel: support.RiskUnknown}
	if err := dao.DB.WithContext(ctx).Create(&conv).Error; err != nil {
		return nil, false, err
	}
	return &conv, true, nil
}

func (dao *ConversationDAO) GetByID(ctx context.Context, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := dao.DB.WithContext(ctx).First(&conv, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// SetRiskLevel overwrites the stored level; callers pass the merged value.
func (dao *ConversationDAO) SetRiskLevel(ctx context.Context, id uint, level support.RiskLevel) error {
	res := dao.DB.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("risk_level", level)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrConversationNotFound
	}
	return nil
}

// ListAll returns every conversation, newest first.
func (dao *ConversationDAO) ListAll(ctx context.Context) ([]ConversationSummary, error) {
	var convs []models.Conversation
	err := dao.DB.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}

	var counts []messageCount
	err = dao.DB.WithContext(ctx).
		Model(&models.Message{}).
		Select("conversation_id, COUNT(id) AS message_count").
		Group("conversation_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	byConversation := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byConversation[c.ConversationID] = c.MessageCount
	}

	summaries := make([]ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		summaries = append(summaries, ConversationSummary{
			ID:           conv.ID,
			CreatedAt:    conv.CreatedAt,
			RiskLevel:    conv.RiskLevel,
			MessageCount: byConversation[conv.ID],
		})
	}
	return summaries, nil
}
