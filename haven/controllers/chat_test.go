package controllers

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"haven/haven/observability"
	"haven/haven/sources/psql"
	"haven/haven/sources/psql/dao"
	"haven/haven/sources/psql/models"
	"haven/haven/support"
	"haven/haven/utils/apperrors"
	"haven/haven/utils/types"

	"github.com/stretchr/testify/require"
)

type testEnv struct {
	dao           *dao.ConversationDAO
	chat          *ChatController
	conversations *ConversationsController
}

// --- Helpers ---
func setupTestEnv(t *testing.T) testEnv {
	t.Helper()
	db, err := psql.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "haven.db"))
	require.NoError(t, err)
	t.Cleanup(db.Close)

	catalog, err := support.DefaultCatalog()
	require.NoError(t, err)

	convDAO := dao.NewConversationDAO(db.DB)
	return testEnv{
		dao:           convDAO,
		chat:          NewChatController(convDAO, catalog, observability.NewMetrics()),
		conversations: NewConversationsController(convDAO, catalog),
	}
}

func send(t *testing.T, env testEnv, message string, id *uint) *types.ChatResponse {
	t.Helper()
	resp, err := env.chat.Chat(context.Background(), types.ChatRequest{Message: message, ConversationID: id})
	require.NoError(t, err)
	return resp
}

func TestChat_RejectsEmptyMessage(t *testing.T) {
	env := setupTestEnv(t)

	for _, msg := range []string{"", "   ", "\n\t"} {
		_, err := env.chat.Chat(context.Background(), types.ChatRequest{Message: msg})
		require.ErrorIs(t, err, apperrors.ErrEmptyMessage)
	}

	list, err := env.dao.ListAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestChat_ImmediateDangerStartsConversation(t *testing.T) {
	req := require.New(t)
	env := setupTestEnv(t)

	resp := send(t, env, "he is choking me right now", nil)
	req.NotZero(resp.ConversationID)
	req.Equal(support.RiskImmediateDanger, resp.RiskLevel)
	req.NotEmpty(resp.Triggers)
	req.NotEmpty(resp.RecommendedResources)
	for _, r := range resp.RecommendedResources {
		req.Equal(support.CategoryEmergency, r.Category)
	}
	req.Equal(support.ComposeResponse(support.RiskResult{Level: support.RiskImmediateDanger}), resp.Response)

	msgs, err := env.dao.GetMessages(context.Background(), resp.ConversationID)
	req.NoError(err)
	req.Len(msgs, 2)
	req.Equal(models.SenderUser, msgs[0].Sender)
	req.Equal("he is choking me right now", msgs[0].Text)
	req.Equal(models.SenderBot, msgs[1].Sender)
	req.Equal(resp.Response, msgs[1].Text)
}

func TestChat_RiskNeverDecreases(t *testing.T) {
	req := require.New(t)
	env := setupTestEnv(t)

	first := send(t, env, "he is choking me right now", nil)
	id := first.ConversationID

	second := send(t, env, "hello", &id)
	req.Equal(id, second.ConversationID)
	req.Equal(support.RiskImmediateDanger, second.RiskLevel)
	req.Empty(second.Triggers)
	// Resources follow the message's own assessment.
	req.Len(second.RecommendedResources, len(env.chat.Resources()))
	req.Equal(support.ComposeResponse(support.RiskResult{Level: support.RiskLow}), second.Response)
}

func TestChat_StoredLevelIsFoldOfAssessments(t *testing.T) {
	req := require.New(t)
	env := setupTestEnv(t)
	catalog, err := support.DefaultCatalog()
	req.NoError(err)

	messages := []string{"hi", "he gets jealous", "hello again", "I feel trapped", "ok"}
	var (
		id       *uint
		assessed []support.RiskLevel
	)
	for _, m := range messages {
		resp := send(t, env, m, id)
		id = &resp.ConversationID
		assessed = append(assessed, catalog.Assess(m).Level)
		req.Equal(support.FoldRiskLevels(assessed...), resp.RiskLevel)
	}

	conv, err := env.dao.GetByID(context.Background(), *id)
	req.NoError(err)
	req.Equal(support.RiskHigh, conv.RiskLevel)
}

func TestChat_UnknownIDCreatesConversation(t *testing.T) {
	env := setupTestEnv(t)
	missing := uint(4242)

	resp := send(t, env, "hello", &missing)
	require.NotEqual(t, missing, resp.ConversationID)
	require.Equal(t, support.RiskLow, resp.RiskLevel)
	require.Equal(t, []string{}, resp.Triggers)
}

func TestChat_ConcurrentMessagesKeepMaximum(t *testing.T) {
	env := setupTestEnv(t)
	first := send(t, env, "hi", nil)
	id := first.ConversationID

	texts := []string{"hello", "I'm scared", "he is angry", "hello", "nothing much", "he has a weapon", "ok"}
	var wg sync.WaitGroup
	errs := make(chan error, len(texts))
	for _, text := range texts {
		wg.Add(1)
		go func(text string) {
			defer wg.Done()
			_, err := env.chat.Chat(context.Background(), types.ChatRequest{Message: text, ConversationID: &id})
			errs <- err
		}(text)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	conv, err := env.dao.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, support.RiskImmediateDanger, conv.RiskLevel)

	msgs, err := env.dao.GetMessages(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, msgs, 2*(len(texts)+1))
}

func TestGetConversation(t *testing.T) {
	req := require.New(t)
	env := setupTestEnv(t)
	ctx := context.Background()

	resp := send(t, env, "I'm being monitoring constantly", nil)
	id := resp.ConversationID
	send(t, env, "thanks", &id)

	detail, err := env.conversations.GetConversation(ctx, id)
	req.NoError(err)
	req.Equal(id, detail.ID)
	req.Equal(support.RiskModerate, detail.RiskLevel)
	req.Len(detail.Messages, 4)
	req.Equal([]string{models.SenderUser, models.SenderBot, models.SenderUser, models.SenderBot},
		[]string{detail.Messages[0].Sender, detail.Messages[1].Sender, detail.Messages[2].Sender, detail.Messages[3].Sender})
	req.Equal("thanks", detail.Messages[2].Text)

	_, err = env.conversations.GetConversation(ctx, 999)
	req.ErrorIs(err, apperrors.ErrConversationNotFound)
}

func TestListConversations(t *testing.T) {
	env := setupTestEnv(t)
	a := send(t, env, "hi", nil)
	b := send(t, env, "hello", nil)
	id := a.ConversationID
	send(t, env, "again", &id)

	list, err := env.conversations.ListConversations(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, b.ConversationID, list[0].ID)
	require.Equal(t, int64(2), list[0].MessageCount)
	require.Equal(t, a.ConversationID, list[1].ID)
	require.Equal(t, int64(4), list[1].MessageCount)
}

func TestAnalyzeConversation(t *testing.T) {
	req := require.New(t)
	env := setupTestEnv(t)
	ctx := context.Background()

	resp := send(t, env, "I am scared of him", nil)
	id := resp.ConversationID
	send(t, env, "we had dinner", &id)

	analysis, err := env.conversations.AnalyzeConversation(ctx, id)
	req.NoError(err)
	req.Equal(id, analysis.ConversationID)
	req.Equal(4, analysis.MessageCount)
	req.Equal(2, analysis.UserMessageCount)
	req.Equal(2, analysis.BotMessageCount)
	req.Len(analysis.KeywordFlags, 1)
	req.Equal([]string{"scared"}, analysis.KeywordFlags[0].Triggers)
	req.Equal("I am scared of him", analysis.KeywordFlags[0].Excerpt)
	req.Equal(support.RiskHigh, analysis.KeywordFlags[0].AssessedLevel)

	detail, err := env.conversations.GetConversation(ctx, id)
	req.NoError(err)
	req.Equal(detail.Messages[0].ID, analysis.KeywordFlags[0].MessageID)
	req.True(analysis.LastMessageAt.Equal(detail.Messages[3].CreatedAt))

	_, err = env.conversations.AnalyzeConversation(ctx, 31337)
	req.ErrorIs(err, apperrors.ErrConversationNotFound)
}

func TestAnalyzeConversation_TruncatesExcerpt(t *testing.T) {
	env := setupTestEnv(t)
	long := "I feel isolated " + strings.Repeat("é", 200)
	resp := send(t, env, long, nil)

	analysis, err := env.conversations.AnalyzeConversation(context.Background(), resp.ConversationID)
	require.NoError(t, err)
	require.Len(t, analysis.KeywordFlags, 1)
	require.Equal(t, 120, len([]rune(analysis.KeywordFlags[0].Excerpt)))
}

func TestAnalyzeConversation_EmptyConversationUsesNow(t *testing.T) {
	env := setupTestEnv(t)
	conv, _, err := env.dao.GetOrCreate(context.Background(), nil)
	require.NoError(t, err)

	analysis, err := env.conversations.AnalyzeConversation(context.Background(), conv.ID)
	require.NoError(t, err)
	require.Equal(t, 0, analysis.MessageCount)
	require.Empty(t, analysis.KeywordFlags)
	require.NotNil(t, analysis.KeywordFlags)
	require.False(t, analysis.LastMessageAt.IsZero())
	require.False(t, analysis.LastMessageAt.Before(conv.CreatedAt))
}

type memoryStore struct {
	uploads map[string][]byte
	err     error
}

func (m *memoryStore) UploadTranscript(_ context.Context, conversationID uint, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	key := fmt.Sprintf("transcripts/%d.json", conversationID)
	m.uploads[key] = data
	return key, nil
}

func TestExportConversation(t *testing.T) {
	req := require.New(t)
	env := setupTestEnv(t)
	ctx := context.Background()
	resp := send(t, env, "he keeps tracking my phone", nil)

	store := &memoryStore{uploads: map[string][]byte{}}
	export := NewExportController(env.conversations, store)
	out, err := export.ExportConversation(ctx, resp.ConversationID)
	req.NoError(err)
	req.Equal(resp.ConversationID, out.ConversationID)
	req.Contains(string(store.uploads[out.Key]), `"tracking"`)

	_, err = export.ExportConversation(ctx, 9999)
	req.ErrorIs(err, apperrors.ErrConversationNotFound)

	store.err = errors.New("bucket gone")
	_, err = export.ExportConversation(ctx, resp.ConversationID)
	req.Error(err)

	_, err = NewExportController(env.conversations, nil).ExportConversation(ctx, resp.ConversationID)
	req.ErrorIs(err, apperrors.ErrExportDisabled)
}
