package dao

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"haven/haven/sources/psql"
	"haven/haven/sources/psql/models"
	"haven/haven/support"
	"haven/haven/utils/apperrors"

	"github.com/stretchr/testify/require"
)

func setupTestDAO(t *testing.T) *ConversationDAO {
	t.Helper()
	db, err := psql.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "haven.db"))
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return NewConversationDAO(db.DB)
}

func TestGetOrCreate(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dao := setupTestDAO(t)

	created, isNew, err := dao.GetOrCreate(ctx, nil)
	req.NoError(err)
	req.True(isNew)
	req.NotZero(created.ID)
	req.Equal(support.RiskUnknown, created.RiskLevel)
	req.False(created.CreatedAt.IsZero())

	id := created.ID
	again, isNew, err := dao.GetOrCreate(ctx, &id)
	req.NoError(err)
	req.False(isNew)
	req.Equal(created.ID, again.ID)

	missing := uint(9999)
	other, isNew, err := dao.GetOrCreate(ctx, &missing)
	req.NoError(err)
	req.True(isNew)
	req.NotEqual(missing, other.ID)
	req.NotEqual(created.ID, other.ID)
}

func TestGetByID_NotFound(t *testing.T) {
	dao := setupTestDAO(t)
	conv, err := dao.GetByID(context.Background(), 42)
	require.NoError(t, err)
	require.Nil(t, conv)
}

func TestAppendMessageAndGetMessages(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dao := setupTestDAO(t)

	conv, _, err := dao.GetOrCreate(ctx, nil)
	req.NoError(err)

	first, err := dao.AppendMessage(ctx, conv.ID, models.SenderUser, "hello")
	req.NoError(err)
	req.False(first.CreatedAt.IsZero())
	_, err = dao.AppendMessage(ctx, conv.ID, models.SenderBot, "hi there")
	req.NoError(err)
	_, err = dao.AppendMessage(ctx, conv.ID, models.SenderUser, "bye")
	req.NoError(err)

	msgs, err := dao.GetMessages(ctx, conv.ID)
	req.NoError(err)
	req.Len(msgs, 3)
	req.Equal([]string{"hello", "hi there", "bye"}, []string{msgs[0].Text, msgs[1].Text, msgs[2].Text})
	req.Equal(models.SenderBot, msgs[1].Sender)
	req.Less(msgs[0].ID, msgs[1].ID)
}

func TestAppendMessage_UnknownConversationFails(t *testing.T) {
	_, err := setupTestDAO(t).AppendMessage(context.Background(), 777, models.SenderUser, "orphan")
	require.Error(t, err)
}

func TestSetRiskLevel(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dao := setupTestDAO(t)

	conv, _, err := dao.GetOrCreate(ctx, nil)
	req.NoError(err)
	req.NoError(dao.SetRiskLevel(ctx, conv.ID, support.RiskHigh))

	stored, err := dao.GetByID(ctx, conv.ID)
	req.NoError(err)
	req.Equal(support.RiskHigh, stored.RiskLevel)

	req.ErrorIs(dao.SetRiskLevel(ctx, 12345, support.RiskLow), apperrors.ErrConversationNotFound)
}

func TestListAll(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dao := setupTestDAO(t)

	older, _, err := dao.GetOrCreate(ctx, nil)
	req.NoError(err)
	newer, _, err := dao.GetOrCreate(ctx, nil)
	req.NoError(err)
	for _, text := range []string{"a", "b", "c"} {
		_, err := dao.AppendMessage(ctx, older.ID, models.SenderUser, text)
		req.NoError(err)
	}

	list, err := dao.ListAll(ctx)
	req.NoError(err)
	req.Len(list, 2)
	req.Equal(newer.ID, list[0].ID)
	req.Equal(int64(0), list[0].MessageCount)
	req.Equal(older.ID, list[1].ID)
	req.Equal(int64(3), list[1].MessageCount)
	req.Equal(support.RiskUnknown, list[1].RiskLevel)
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dao := setupTestDAO(t)
	boom := errors.New("boom")

	err := dao.Transaction(ctx, func(tx *ConversationDAO) error {
		conv, _, err := tx.GetOrCreate(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.AppendMessage(ctx, conv.ID, models.SenderUser, "never stored"); err != nil {
			return err
		}
		return boom
	})
	req.ErrorIs(err, boom)

	list, err := dao.ListAll(ctx)
	req.NoError(err)
	req.Empty(list)
}
