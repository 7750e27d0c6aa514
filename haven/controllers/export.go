// haven/controllers/export.go
package controllers

import (
	"context"
	"errors"
	"fmt"

	"haven/haven/utils/apperrors"
	"haven/haven/utils/jsonutils"
	"haven/haven/utils/logging"
	"haven/haven/utils/types"

	"go.uber.org/zap"
)

// TranscriptStore persists exported transcripts and returns their object key.
type TranscriptStore interface {
	UploadTranscript(ctx context.Context, conversationID uint, data []byte) (string, error)
}

type ExportController struct {
	conversations *ConversationsController
	store         TranscriptStore
}

// NewExportController accepts a nil store; exports then fail with
// ErrExportDisabled.
func NewExportController(conversations *ConversationsController, store TranscriptStore) *ExportController {
	return &ExportController{conversations: conversations, store: store}
}

func (c *ExportController) ExportConversation(ctx context.Context, id uint) (*types.ExportResponse, error) {
	if c.store == nil {
		return nil, apperrors.ErrExportDisabled
	}
	defer logging.LogDuration(ctx, "export_controller_export")()

	conv, msgs, err := c.conversations.load(ctx, id)
	if err != nil {
		return nil, err
	}
	transcript := types.Transcript{
		Conversation: *buildDetail(conv, msgs),
		Analysis:     *c.conversations.buildAnalysis(conv, msgs),
		ExportedAt:   c.conversations.now(),
	}
	body := jsonutils.ToJSON(transcript)
	if body == "" {
		return nil, errors.New("render transcript")
	}

	key, err := c.store.UploadTranscript(ctx, conv.ID, []byte(body))
	if err != nil {
		return nil, fmt.Errorf("upload transcript: %w", err)
	}
	logging.AppLogger.Info("transcript exported",
		zap.String("trace_id", logging.TraceID(ctx)),
		zap.Uint("conversation_id", conv.ID),
		zap.String("key", key),
	)
	return &types.ExportResponse{ConversationID: conv.ID, Key: key}, nil
}
