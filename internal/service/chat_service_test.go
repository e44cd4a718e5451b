package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/skillswap-labs/skillswap-api/internal/dto"
	"github.com/skillswap-labs/skillswap-api/internal/models"
	"github.com/skillswap-labs/skillswap-api/internal/repository"
)

func newChatTestService(t *testing.T) (ChatService, *gorm.DB) {
	t.Helper()
	db := newServiceTestDB(t, &models.User{}, &models.SwapRequest{}, &models.ChatMessage{})
	chats := repository.NewChatMessageRepository(db)
	swaps := repository.NewSwapRequestRepository(db)
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewChatService(chats, swaps, nil, nil, "skillswap-test", validate, zerolog.Nop()), db
}

func seedSwap(t *testing.T, db *gorm.DB, from, to uint, teach, learn, status string, createdAt time.Time) models.SwapRequest {
	t.Helper()
	request := models.SwapRequest{
		FromUserID:   from,
		ToUserID:     to,
		SkillToTeach: teach,
		SkillToLearn: learn,
		Message:      "seeded request for testing",
		Status:       status,
		CreatedAt:    createdAt,
	}
	require.NoError(t, db.Create(&request).Error)
	return request
}

func seedMessage(t *testing.T, db *gorm.DB, requestID, from, to uint, text string, createdAt time.Time) models.ChatMessage {
	t.Helper()
	message := models.ChatMessage{
		SwapRequestID: requestID,
		FromUserID:    from,
		ToUserID:      to,
		Message:       text,
		CreatedAt:     createdAt,
	}
	require.NoError(t, db.Create(&message).Error)
	return message
}

func TestChatServiceSendMessageRequiresAcceptedRequest(t *testing.T) {
	svc, db := newChatTestService(t)
	alice := seedUser(t, db, "Alice", []string{"Go"}, []string{"Piano"})
	bob := seedUser(t, db, "Bob", []string{"Piano"}, []string{"Go"})
	carol := seedUser(t, db, "Carol", nil, nil)
	ctx := context.Background()

	now := time.Now().UTC()
	pending := seedSwap(t, db, alice.ID, bob.ID, "Go", "Piano", models.SwapStatusPending, now)

	_, err := svc.SendMessage(ctx, alice.ID, dto.ChatSendRequest{SwapRequestID: pending.ID, Message: "hello"})
	require.ErrorIs(t, err, ErrChatNotAllowed)

	accepted := seedSwap(t, db, alice.ID, bob.ID, "SQL", "French", models.SwapStatusAccepted, now)

	_, err = svc.SendMessage(ctx, carol.ID, dto.ChatSendRequest{SwapRequestID: accepted.ID, Message: "hello"})
	require.ErrorIs(t, err, ErrChatNotAllowed)

	_, err = svc.SendMessage(ctx, alice.ID, dto.ChatSendRequest{SwapRequestID: 9999, Message: "hello"})
	require.ErrorIs(t, err, ErrChatNotAllowed)
}

func TestChatServiceSendMessageDerivesRecipientAndSanitizes(t *testing.T) {
	svc, db := newChatTestService(t)
	alice := seedUser(t, db, "Alice", []string{"Go"}, []string{"Piano"})
	bob := seedUser(t, db, "Bob", []string{"Piano"}, []string{"Go"})
	ctx := context.Background()

	accepted := seedSwap(t, db, alice.ID, bob.ID, "Go", "Piano", models.SwapStatusAccepted, time.Now().UTC())

	response, err := svc.SendMessage(ctx, bob.ID, dto.ChatSendRequest{
		SwapRequestID: accepted.ID,
		Message:       "<b>see</b> you at 5",
	})
	require.NoError(t, err)
	require.Equal(t, bob.ID, response.FromUserID)
	require.Equal(t, alice.ID, response.ToUserID, "recipient derived from the request")
	require.Equal(t, "see you at 5", response.Message)
	require.Equal(t, "Bob", response.FromUserName)
	require.False(t, response.IsRead)

	// Markup-only payloads sanitize to nothing and are rejected.
	_, err = svc.SendMessage(ctx, bob.ID, dto.ChatSendRequest{
		SwapRequestID: accepted.ID,
		Message:       "<script>alert(1)</script>",
	})
	require.ErrorIs(t, err, ErrEmptyMessage, "markup-only messages are a validation failure, not a permission one")
}

func TestChatServiceHistoryMergesAcceptedRequestsAndMarksRead(t *testing.T) {
	svc, db := newChatTestService(t)
	alice := seedUser(t, db, "Alice", []string{"Go"}, []string{"Piano"})
	bob := seedUser(t, db, "Bob", []string{"Piano"}, []string{"Go"})
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	first := seedSwap(t, db, alice.ID, bob.ID, "Go", "Piano", models.SwapStatusAccepted, base)
	second := seedSwap(t, db, bob.ID, alice.ID, "French", "SQL", models.SwapStatusAccepted, base.Add(time.Minute))
	declined := seedSwap(t, db, alice.ID, bob.ID, "Welding", "Guitar", models.SwapStatusDeclined, base.Add(2*time.Minute))

	seedMessage(t, db, first.ID, alice.ID, bob.ID, "oldest", base.Add(5*time.Minute))
	seedMessage(t, db, second.ID, bob.ID, alice.ID, "middle", base.Add(10*time.Minute))
	seedMessage(t, db, first.ID, bob.ID, alice.ID, "newest", base.Add(15*time.Minute))
	seedMessage(t, db, declined.ID, alice.ID, bob.ID, "hidden", base.Add(20*time.Minute))

	history, err := svc.History(ctx, alice.ID, first.ID)
	require.NoError(t, err)
	require.Len(t, history, 3, "messages from declined requests stay out")
	require.Equal(t, "oldest", history[0].Message)
	require.Equal(t, "middle", history[1].Message)
	require.Equal(t, "newest", history[2].Message)

	for _, message := range history {
		if message.ToUserID == alice.ID {
			require.True(t, message.IsRead)
		}
	}

	count, err := svc.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	require.Zero(t, count.Count, "reading the conversation clears the pair's unread messages")

	// Bob never opened anything, his two incoming messages stay unread.
	count, err = svc.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), count.Count)
}

func TestChatServiceConversationsGroupByOtherParty(t *testing.T) {
	svc, db := newChatTestService(t)
	alice := seedUser(t, db, "Alice", []string{"Go"}, []string{"Piano"})
	bob := seedUser(t, db, "Bob", []string{"Piano"}, []string{"Go"})
	carol := seedUser(t, db, "Carol", []string{"French"}, []string{"Go"})
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	bobFirst := seedSwap(t, db, alice.ID, bob.ID, "Go", "Piano", models.SwapStatusAccepted, base)
	bobSecond := seedSwap(t, db, bob.ID, alice.ID, "Piano", "Go", models.SwapStatusAccepted, base.Add(time.Minute))
	carolOnly := seedSwap(t, db, carol.ID, alice.ID, "French", "Go", models.SwapStatusAccepted, base.Add(2*time.Minute))

	seedMessage(t, db, bobFirst.ID, bob.ID, alice.ID, "from bob", base.Add(5*time.Minute))
	seedMessage(t, db, bobSecond.ID, bob.ID, alice.ID, "also from bob", base.Add(6*time.Minute))
	seedMessage(t, db, carolOnly.ID, carol.ID, alice.ID, "bonjour", base.Add(30*time.Minute))

	conversations, err := svc.Conversations(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, conversations, 2, "both swap requests with Bob collapse into one conversation")

	// Carol's conversation has the newest message and sorts first.
	require.Equal(t, carol.ID, conversations[0].OtherUser.ID)
	require.Equal(t, "bonjour", conversations[0].LastMessage.Text)
	require.False(t, conversations[0].LastMessage.FromMe)
	require.Equal(t, int64(1), conversations[0].UnreadCount)
	require.Equal(t, 1, conversations[0].SwapRequestCount)

	bobConversation := conversations[1]
	require.Equal(t, bob.ID, bobConversation.OtherUser.ID)
	require.Equal(t, 2, bobConversation.SwapRequestCount)
	require.Equal(t, int64(2), bobConversation.UnreadCount)
	require.Equal(t, "also from bob", bobConversation.LastMessage.Text)
	require.Equal(t, "Piano, Go", bobConversation.Skills, "skill pairs deduplicate case-insensitively")
	require.Equal(t, bobSecond.ID, bobConversation.SwapRequestID, "newest accepted request is the conversation handle")
}
