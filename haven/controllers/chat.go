// haven/controllers/chat.go
package controllers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"haven/haven/observability"
	"haven/haven/sources/psql/dao"
	"haven/haven/sources/psql/models"
	"haven/haven/support"
	"haven/haven/utils/apperrors"
	"haven/haven/utils/logging"
	"haven/haven/utils/types"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New()

type ChatController struct {
	convDAO *dao.ConversationDAO
	catalog *support.Catalog
	metrics *observability.Metrics
}

func NewChatController(convDAO *dao.ConversationDAO, catalog *support.Catalog, metrics *observability.Metrics) *ChatController {
	return &ChatController{convDAO: convDAO, catalog: catalog, metrics: metrics}
}

// Chat stores the user message, assesses it, raises the conversation risk
// level and stores the bot reply, all in one transaction.
func (c *ChatController) Chat(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error) {
	defer logging.LogDuration(ctx, "chat_controller_chat")()

	req.Message = strings.TrimSpace(req.Message)
	if err := validate.Struct(req); err != nil {
		return nil, apperrors.ErrEmptyMessage
	}

	start := time.Now()
	var (
		resp    *types.ChatResponse
		created bool
		risk    support.RiskResult
	)
	err := c.convDAO.Transaction(ctx, func(tx *dao.ConversationDAO) error {
		conv, isNew, err := tx.GetOrCreate(ctx, req.ConversationID)
		if err != nil {
			return fmt.Errorf("load conversation: %w", err)
		}
		created = isNew

		if _, err := tx.AppendMessage(ctx, conv.ID, models.SenderUser, req.Message); err != nil {
			return fmt.Errorf("store user message: %w", err)
		}

		risk = c.catalog.Assess(req.Message)
		merged := support.MergeRiskLevels(conv.RiskLevel, risk.Level)
		if err := tx.SetRiskLevel(ctx, conv.ID, merged); err != nil {
			return fmt.Errorf("update risk level: %w", err)
		}

		botText := support.ComposeResponse(risk)
		if _, err := tx.AppendMessage(ctx, conv.ID, models.SenderBot, botText); err != nil {
			return fmt.Errorf("store bot message: %w", err)
		}

		resp = &types.ChatResponse{
			ConversationID:       conv.ID,
			Response:             botText,
			RiskLevel:            merged,
			Triggers:             risk.Triggers,
			RecommendedResources: c.catalog.Recommend(risk.Level),
		}
		return nil
	})
	if c.metrics != nil {
		c.metrics.ObserveDuration(start, err)
	}
	if err != nil {
		logging.ErrorLogger.Error("chat transaction failed",
			zap.String("trace_id", logging.TraceID(ctx)),
			zap.Error(err),
		)
		return nil, err
	}
	if c.metrics != nil {
		c.metrics.ObserveMessage(risk.Level, created)
	}

	logging.AppLogger.Info("chat message processed",
		zap.String("trace_id", logging.TraceID(ctx)),
		zap.Uint("conversation_id", resp.ConversationID),
		zap.Bool("new_conversation", created),
		zap.String("assessed_level", risk.Level.String()),
		zap.String("risk_level", resp.RiskLevel.String()),
		zap.Int("trigger_count", len(risk.Triggers)),
	)
	return resp, nil
}

// Resources returns the full catalog.
func (c *ChatController) Resources() []support.Resource {
	return c.catalog.Resources()
}
