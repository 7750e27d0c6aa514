// haven/controllers/conversations.go
package controllers

import (
	"context"
	"time"

	"haven/haven/sources/psql/dao"
	"haven/haven/sources/psql/models"
	"haven/haven/support"
	"haven/haven/utils/apperrors"
	"haven/haven/utils/logging"
	"haven/haven/utils/types"

	"github.com/samber/lo"
)

const excerptLength = 120

type ConversationsController struct {
	convDAO *dao.ConversationDAO
	catalog *support.Catalog
	now     func() time.Time
}

func NewConversationsController(convDAO *dao.ConversationDAO, catalog *support.Catalog) *ConversationsController {
	return &ConversationsController{
		convDAO: convDAO,
		catalog: catalog,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (c *ConversationsController) ListConversations(ctx context.Context) ([]dao.ConversationSummary, error) {
	return c.convDAO.ListAll(ctx)
}

func (c *ConversationsController) load(ctx context.Context, id uint) (*models.Conversation, []models.Message, error) {
	conv, err := c.convDAO.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if conv == nil {
		return nil, nil, apperrors.ErrConversationNotFound
	}
	msgs, err := c.convDAO.GetMessages(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return conv, msgs, nil
}

func (c *ConversationsController) GetConversation(ctx context.Context, id uint) (*types.ConversationDetail, error) {
	conv, msgs, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return buildDetail(conv, msgs), nil
}

// AnalyzeConversation re-assesses every user message with the current
// keyword table. Nothing is cached per message.
func (c *ConversationsController) AnalyzeConversation(ctx context.Context, id uint) (*types.ConversationAnalysis, error) {
	defer logging.LogDuration(ctx, "conversations_controller_analyze")()

	conv, msgs, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.buildAnalysis(conv, msgs), nil
}

func buildDetail(conv *models.Conversation, msgs []models.Message) *types.ConversationDetail {
	return &types.ConversationDetail{
		ID:        conv.ID,
		CreatedAt: conv.CreatedAt,
		RiskLevel: conv.RiskLevel,
		Messages: lo.Map(msgs, func(m models.Message, _ int) types.MessageView {
			return types.MessageView{
				ID:        m.ID,
				Sender:    m.Sender,
				Text:      m.Text,
				CreatedAt: m.CreatedAt,
			}
		}),
	}
}

func (c *ConversationsController) buildAnalysis(conv *models.Conversation, msgs []models.Message) *types.ConversationAnalysis {
	flags := []types.KeywordFlag{}
	lastMessageAt := c.now()
	for _, m := range msgs {
		lastMessageAt = m.CreatedAt
		if m.Sender != models.SenderUser {
			continue
		}
		risk := c.catalog.Assess(m.Text)
		if len(risk.Triggers) == 0 {
			continue
		}
		flags = append(flags, types.KeywordFlag{
			MessageID:     m.ID,
			Excerpt:       excerpt(m.Text, excerptLength),
			Triggers:      risk.Triggers,
			AssessedLevel: risk.Level,
		})
	}

	return &types.ConversationAnalysis{
		ConversationID: conv.ID,
		CreatedAt:      conv.CreatedAt,
		RiskLevel:      conv.RiskLevel,
		MessageCount:   len(msgs),
		UserMessageCount: lo.CountBy(msgs, func(m models.Message) bool {
			return m.Sender == models.SenderUser
		}),
		BotMessageCount: lo.CountBy(msgs, func(m models.Message) bool {
			return m.Sender == models.SenderBot
		}),
		KeywordFlags:  flags,
		LastMessageAt: lastMessageAt,
	}
}

func excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
