package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skillswap-labs/skillswap-api/internal/models"
)

func TestChatRepositoryCreatePreloadsSender(t *testing.T) {
	db := setupRepoTestDB(t, &models.User{}, &models.SwapRequest{}, &models.ChatMessage{})
	repo := NewChatMessageRepository(db)
	alice, bob := createPair(t, db)
	request := newRequest(alice.ID, bob.ID, models.SwapStatusAccepted)
	require.NoError(t, db.Create(&request).Error)

	message := models.ChatMessage{
		SwapRequestID: request.ID,
		FromUserID:    alice.ID,
		ToUserID:      bob.ID,
		Message:       "hello",
	}
	require.NoError(t, repo.Create(context.Background(), &message))
	require.NotZero(t, message.ID)
	require.Equal(t, "Alice", message.FromUser.Name)
}

func TestChatRepositoryListByRequests(t *testing.T) {
	db := setupRepoTestDB(t, &models.User{}, &models.SwapRequest{}, &models.ChatMessage{})
	repo := NewChatMessageRepository(db)
	alice, bob := createPair(t, db)
	first := newRequest(alice.ID, bob.ID, models.SwapStatusAccepted)
	second := newRequest(bob.ID, alice.ID, models.SwapStatusAccepted)
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&second).Error)
	ctx := context.Background()

	now := time.Now().UTC()
	older := models.ChatMessage{SwapRequestID: second.ID, FromUserID: bob.ID, ToUserID: alice.ID, Message: "first", CreatedAt: now.Add(-time.Minute)}
	newer := models.ChatMessage{SwapRequestID: first.ID, FromUserID: alice.ID, ToUserID: bob.ID, Message: "second", CreatedAt: now}
	require.NoError(t, db.Create(&older).Error)
	require.NoError(t, db.Create(&newer).Error)

	messages, err := repo.ListByRequests(ctx, []uint{first.ID, second.ID})
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, "first", messages[0].Message, "ascending by creation time across requests")
	require.Equal(t, "second", messages[1].Message)

	scoped, err := repo.ListByRequests(ctx, []uint{first.ID})
	require.NoError(t, err)
	require.Len(t, scoped, 1)

	empty, err := repo.ListByRequests(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestChatRepositoryUnreadCountsAndMarkRead(t *testing.T) {
	db := setupRepoTestDB(t, &models.User{}, &models.SwapRequest{}, &models.ChatMessage{})
	repo := NewChatMessageRepository(db)
	alice, bob := createPair(t, db)
	carol := models.User{Name: "Carol", Email: "carol@example.com", Password: "x", Role: models.RoleUser, IsVerified: true}
	require.NoError(t, db.Create(&carol).Error)

	withBob := newRequest(alice.ID, bob.ID, models.SwapStatusAccepted)
	withCarol := newRequest(carol.ID, alice.ID, models.SwapStatusAccepted)
	require.NoError(t, db.Create(&withBob).Error)
	require.NoError(t, db.Create(&withCarol).Error)
	ctx := context.Background()

	for _, message := range []models.ChatMessage{
		{SwapRequestID: withBob.ID, FromUserID: bob.ID, ToUserID: alice.ID, Message: "from bob"},
		{SwapRequestID: withBob.ID, FromUserID: bob.ID, ToUserID: alice.ID, Message: "from bob again"},
		{SwapRequestID: withCarol.ID, FromUserID: carol.ID, ToUserID: alice.ID, Message: "from carol"},
		{SwapRequestID: withBob.ID, FromUserID: alice.ID, ToUserID: bob.ID, Message: "from alice"},
	} {
		m := message
		require.NoError(t, db.Create(&m).Error)
	}

	total, err := repo.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)

	inBob, err := repo.UnreadCountInRequests(ctx, []uint{withBob.ID}, alice.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), inBob)

	none, err := repo.UnreadCountInRequests(ctx, nil, alice.ID)
	require.NoError(t, err)
	require.Zero(t, none)

	// Marking read is scoped to the given requests and recipient.
	require.NoError(t, repo.MarkReadInRequests(ctx, []uint{withBob.ID}, alice.ID))

	total, err = repo.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), total, "the carol conversation stays unread")

	forBob, err := repo.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), forBob, "alice's own outgoing message is untouched")

	require.NoError(t, repo.MarkReadInRequests(ctx, nil, alice.ID))
}
