package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skillswap-labs/skillswap-api/internal/dto"
	"github.com/skillswap-labs/skillswap-api/internal/models"
	"github.com/skillswap-labs/skillswap-api/internal/repository"
)

func newServiceTestDB(t *testing.T, tables ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(tables...))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string, teach, learn []string) models.User {
	t.Helper()
	user := models.User{
		Name:       name,
		Email:      strings.ToLower(name) + "@example.com",
		Password:   "irrelevant",
		Role:       models.RoleUser,
		IsVerified: true,
		Profile: models.Profile{
			TeachSkills: models.SkillList(teach),
			LearnSkills: models.SkillList(learn),
		},
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func newSwapTestService(t *testing.T) (SwapService, *gorm.DB) {
	t.Helper()
	db := newServiceTestDB(t, &models.User{}, &models.SwapRequest{})
	swaps := repository.NewSwapRequestRepository(db)
	users := repository.NewUserRepository(db)
	mailer := NewLogMailer("noreply@skillswap.test", zerolog.Nop())
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewSwapService(swaps, users, mailer, nil, validate, zerolog.Nop()), db
}

func TestSwapServiceSendCreatesPendingRequest(t *testing.T) {
	svc, db := newSwapTestService(t)
	ctx := context.Background()

	sender := seedUser(t, db, "Alice", []string{"Go"}, []string{"Piano"})
	recipient := seedUser(t, db, "Bob", []string{"Piano"}, []string{"Go"})

	response, err := svc.Send(ctx, sender.ID, dto.SwapRequestCreateRequest{
		ToUserID:     recipient.ID,
		SkillToTeach: "Go",
		SkillToLearn: "Piano",
		Message:      "Let us trade lessons this month",
	})
	require.NoError(t, err)
	require.Equal(t, models.SwapStatusPending, response.Status)
	require.Equal(t, sender.ID, response.FromUser.ID)
	require.Equal(t, recipient.ID, response.ToUser.ID)
}

func TestSwapServiceSendRejectsSelfAndUnknownUsers(t *testing.T) {
	svc, db := newSwapTestService(t)
	sender := seedUser(t, db, "Alice", []string{"Go"}, []string{"Piano"})
	ctx := context.Background()

	payload := dto.SwapRequestCreateRequest{
		ToUserID:     sender.ID,
		SkillToTeach: "Go",
		SkillToLearn: "Piano",
		Message:      "Let us trade lessons this month",
	}
	_, err := svc.Send(ctx, sender.ID, payload)
	require.ErrorIs(t, err, ErrSelfSwap)

	payload.ToUserID = 999
	_, err = svc.Send(ctx, sender.ID, payload)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestSwapServiceSendChecksSkillOwnership(t *testing.T) {
	svc, db := newSwapTestService(t)
	sender := seedUser(t, db, "Alice", []string{"Go"}, []string{"Piano"})
	recipient := seedUser(t, db, "Bob", []string{"Piano"}, []string{"Go"})
	ctx := context.Background()

	_, err := svc.Send(ctx, sender.ID, dto.SwapRequestCreateRequest{
		ToUserID:     recipient.ID,
		SkillToTeach: "Welding",
		SkillToLearn: "Piano",
		Message:      "Let us trade lessons this month",
	})
	require.ErrorIs(t, err, ErrSenderCannotTeach)

	_, err = svc.Send(ctx, sender.ID, dto.SwapRequestCreateRequest{
		ToUserID:     recipient.ID,
		SkillToTeach: "Go",
		SkillToLearn: "Knitting",
		Message:      "Let us trade lessons this month",
	})
	require.ErrorIs(t, err, ErrRecipientCannotTeach)
}

func TestSwapServiceSendBlocksDuplicateActiveRequest(t *testing.T) {
	svc, db := newSwapTestService(t)
	sender := seedUser(t, db, "Alice", []string{"Go"}, []string{"Piano"})
	recipient := seedUser(t, db, "Bob", []string{"Piano"}, []string{"Go"})
	ctx := context.Background()

	payload := dto.SwapRequestCreateRequest{
		ToUserID:     recipient.ID,
		SkillToTeach: "Go",
		SkillToLearn: "Piano",
		Message:      "Let us trade lessons this month",
	}

	_, err := svc.Send(ctx, sender.ID, payload)
	require.NoError(t, err)

	_, err = svc.Send(ctx, sender.ID, payload)
	require.ErrorIs(t, err, ErrDuplicateSwap)

	// The reverse direction is a different ordered pair and stays open.
	_, err = svc.Send(ctx, recipient.ID, dto.SwapRequestCreateRequest{
		ToUserID:     sender.ID,
		SkillToTeach: "Piano",
		SkillToLearn: "Go",
		Message:      "Happy to go the other way too",
	})
	require.NoError(t, err)
}

func TestSwapServiceAcceptOnlyByRecipientWhilePending(t *testing.T) {
	svc, db := newSwapTestService(t)
	sender := seedUser(t, db, "Alice", []string{"Go"}, []string{"Piano"})
	recipient := seedUser(t, db, "Bob", []string{"Piano"}, []string{"Go"})
	ctx := context.Background()

	sent, err := svc.Send(ctx, sender.ID, dto.SwapRequestCreateRequest{
		ToUserID:     recipient.ID,
		SkillToTeach: "Go",
		SkillToLearn: "Piano",
		Message:      "Let us trade lessons this month",
	})
	require.NoError(t, err)

	// The sender cannot accept their own request.
	_, err = svc.Accept(ctx, sent.ID, sender.ID)
	require.ErrorIs(t, err, ErrSwapNotActionable)

	accepted, err := svc.Accept(ctx, sent.ID, recipient.ID)
	require.NoError(t, err)
	require.Equal(t, models.SwapStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.RespondedAt)

	// Terminal states cannot be re-processed.
	_, err = svc.Decline(ctx, sent.ID, recipient.ID)
	require.ErrorIs(t, err, ErrSwapNotActionable)
	_, err = svc.Cancel(ctx, sent.ID, sender.ID)
	require.ErrorIs(t, err, ErrSwapNotActionable)
}

func TestSwapServiceCancelBySenderWhilePending(t *testing.T) {
	svc, db := newSwapTestService(t)
	sender := seedUser(t, db, "Alice", []string{"Go"}, []string{"Piano"})
	recipient := seedUser(t, db, "Bob", []string{"Piano"}, []string{"Go"})
	ctx := context.Background()

	sent, err := svc.Send(ctx, sender.ID, dto.SwapRequestCreateRequest{
		ToUserID:     recipient.ID,
		SkillToTeach: "Go",
		SkillToLearn: "Piano",
		Message:      "Let us trade lessons this month",
	})
	require.NoError(t, err)

	// Only the sender may cancel.
	_, err = svc.Cancel(ctx, sent.ID, recipient.ID)
	require.ErrorIs(t, err, ErrSwapNotActionable)

	cancelled, err := svc.Cancel(ctx, sent.ID, sender.ID)
	require.NoError(t, err)
	require.Equal(t, models.SwapStatusCancelled, cancelled.Status)
}

func TestSwapServiceConnectionStatusAndPendingCount(t *testing.T) {
	svc, db := newSwapTestService(t)
	sender := seedUser(t, db, "Alice", []string{"Go"}, []string{"Piano"})
	recipient := seedUser(t, db, "Bob", []string{"Piano"}, []string{"Go"})
	ctx := context.Background()

	status, err := svc.ConnectionStatus(ctx, sender.ID, recipient.ID)
	require.NoError(t, err)
	require.False(t, status.Connected)
	require.Empty(t, status.Status)

	sent, err := svc.Send(ctx, sender.ID, dto.SwapRequestCreateRequest{
		ToUserID:     recipient.ID,
		SkillToTeach: "Go",
		SkillToLearn: "Piano",
		Message:      "Let us trade lessons this month",
	})
	require.NoError(t, err)

	status, err = svc.ConnectionStatus(ctx, sender.ID, recipient.ID)
	require.NoError(t, err)
	require.False(t, status.Connected)
	require.Equal(t, models.SwapStatusPending, status.Status)

	count, err := svc.PendingCount(ctx, recipient.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count.Count)

	_, err = svc.Accept(ctx, sent.ID, recipient.ID)
	require.NoError(t, err)

	status, err = svc.ConnectionStatus(ctx, recipient.ID, sender.ID)
	require.NoError(t, err)
	require.True(t, status.Connected)
	require.Equal(t, models.SwapStatusAccepted, status.Status)

	count, err = svc.PendingCount(ctx, recipient.ID)
	require.NoError(t, err)
	require.Zero(t, count.Count)
}
