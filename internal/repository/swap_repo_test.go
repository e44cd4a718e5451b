package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skillswap-labs/skillswap-api/internal/models"
)

func setupRepoTestDB(t *testing.T, tables ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(tables...))
	return db
}

func createPair(t *testing.T, db *gorm.DB) (models.User, models.User) {
	t.Helper()
	alice := models.User{Name: "Alice", Email: "alice@example.com", Password: "x", Role: models.RoleUser, IsVerified: true}
	bob := models.User{Name: "Bob", Email: "bob@example.com", Password: "x", Role: models.RoleUser, IsVerified: true}
	require.NoError(t, db.Create(&alice).Error)
	require.NoError(t, db.Create(&bob).Error)
	return alice, bob
}

func newRequest(from, to uint, status string) models.SwapRequest {
	return models.SwapRequest{
		FromUserID:   from,
		ToUserID:     to,
		SkillToTeach: "Go",
		SkillToLearn: "Piano",
		Message:      "let us swap lessons",
		Status:       status,
	}
}

func TestSwapRepositoryCreateIfNoActive(t *testing.T) {
	db := setupRepoTestDB(t, &models.User{}, &models.SwapRequest{})
	repo := NewSwapRequestRepository(db)
	alice, bob := createPair(t, db)
	ctx := context.Background()

	first := newRequest(alice.ID, bob.ID, models.SwapStatusPending)
	require.NoError(t, repo.CreateIfNoActive(ctx, &first))
	require.NotZero(t, first.ID)

	duplicate := newRequest(alice.ID, bob.ID, models.SwapStatusPending)
	require.ErrorIs(t, repo.CreateIfNoActive(ctx, &duplicate), ErrActiveSwapExists)

	// The pair is ordered; the reverse direction is not blocked.
	reverse := newRequest(bob.ID, alice.ID, models.SwapStatusPending)
	require.NoError(t, repo.CreateIfNoActive(ctx, &reverse))

	// Accepted requests still count as active.
	_, err := repo.Respond(ctx, first.ID, bob.ID, models.SwapStatusAccepted)
	require.NoError(t, err)
	again := newRequest(alice.ID, bob.ID, models.SwapStatusPending)
	require.ErrorIs(t, repo.CreateIfNoActive(ctx, &again), ErrActiveSwapExists)

	// Terminal states free the pair up.
	require.NoError(t, db.Model(&models.SwapRequest{}).Where("id = ?", first.ID).Update("status", models.SwapStatusDeclined).Error)
	released := newRequest(alice.ID, bob.ID, models.SwapStatusPending)
	require.NoError(t, repo.CreateIfNoActive(ctx, &released))
}

func TestSwapRepositoryRespondGuards(t *testing.T) {
	db := setupRepoTestDB(t, &models.User{}, &models.SwapRequest{})
	repo := NewSwapRequestRepository(db)
	alice, bob := createPair(t, db)
	ctx := context.Background()

	request := newRequest(alice.ID, bob.ID, models.SwapStatusPending)
	require.NoError(t, repo.CreateIfNoActive(ctx, &request))

	// Wrong recipient.
	_, err := repo.Respond(ctx, request.ID, alice.ID, models.SwapStatusAccepted)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Unknown id.
	_, err = repo.Respond(ctx, 999, bob.ID, models.SwapStatusAccepted)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	accepted, err := repo.Respond(ctx, request.ID, bob.ID, models.SwapStatusAccepted)
	require.NoError(t, err)
	require.Equal(t, models.SwapStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.RespondedAt)
	require.Equal(t, "Alice", accepted.FromUser.Name, "participants are preloaded")

	// No longer pending.
	_, err = repo.Respond(ctx, request.ID, bob.ID, models.SwapStatusDeclined)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSwapRepositoryCancelGuards(t *testing.T) {
	db := setupRepoTestDB(t, &models.User{}, &models.SwapRequest{})
	repo := NewSwapRequestRepository(db)
	alice, bob := createPair(t, db)
	ctx := context.Background()

	request := newRequest(alice.ID, bob.ID, models.SwapStatusPending)
	require.NoError(t, repo.CreateIfNoActive(ctx, &request))

	// Only the sender may cancel.
	_, err := repo.Cancel(ctx, request.ID, bob.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	cancelled, err := repo.Cancel(ctx, request.ID, alice.ID)
	require.NoError(t, err)
	require.Equal(t, models.SwapStatusCancelled, cancelled.Status)

	_, err = repo.Cancel(ctx, request.ID, alice.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSwapRepositoryInboxOutboxFiltering(t *testing.T) {
	db := setupRepoTestDB(t, &models.User{}, &models.SwapRequest{})
	repo := NewSwapRequestRepository(db)
	alice, bob := createPair(t, db)
	ctx := context.Background()

	pending := newRequest(alice.ID, bob.ID, models.SwapStatusPending)
	require.NoError(t, db.Create(&pending).Error)
	declined := models.SwapRequest{FromUserID: alice.ID, ToUserID: bob.ID, SkillToTeach: "SQL", SkillToLearn: "French", Message: "another", Status: models.SwapStatusDeclined}
	require.NoError(t, db.Create(&declined).Error)

	inbox, err := repo.Inbox(ctx, bob.ID, models.SwapStatusPending)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	require.Equal(t, pending.ID, inbox[0].ID)

	all, err := repo.Inbox(ctx, bob.ID, "all")
	require.NoError(t, err)
	require.Len(t, all, 2)

	unfiltered, err := repo.Inbox(ctx, bob.ID, "")
	require.NoError(t, err)
	require.Len(t, unfiltered, 2)

	outbox, err := repo.Outbox(ctx, alice.ID, "")
	require.NoError(t, err)
	require.Len(t, outbox, 2)

	empty, err := repo.Outbox(ctx, bob.ID, "")
	require.NoError(t, err)
	require.Empty(t, empty)

	count, err := repo.CountPending(ctx, bob.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestSwapRepositoryListBetweenAndAcceptedForUser(t *testing.T) {
	db := setupRepoTestDB(t, &models.User{}, &models.SwapRequest{})
	repo := NewSwapRequestRepository(db)
	alice, bob := createPair(t, db)
	carol := models.User{Name: "Carol", Email: "carol@example.com", Password: "x", Role: models.RoleUser, IsVerified: true}
	require.NoError(t, db.Create(&carol).Error)
	ctx := context.Background()

	now := time.Now().UTC()
	toBob := models.SwapRequest{FromUserID: alice.ID, ToUserID: bob.ID, SkillToTeach: "Go", SkillToLearn: "Piano", Message: "m", Status: models.SwapStatusAccepted, CreatedAt: now}
	fromBob := models.SwapRequest{FromUserID: bob.ID, ToUserID: alice.ID, SkillToTeach: "Piano", SkillToLearn: "Go", Message: "m", Status: models.SwapStatusAccepted, CreatedAt: now.Add(time.Minute)}
	toCarol := models.SwapRequest{FromUserID: alice.ID, ToUserID: carol.ID, SkillToTeach: "Go", SkillToLearn: "French", Message: "m", Status: models.SwapStatusPending, CreatedAt: now.Add(2 * time.Minute)}
	require.NoError(t, db.Create(&toBob).Error)
	require.NoError(t, db.Create(&fromBob).Error)
	require.NoError(t, db.Create(&toCarol).Error)

	between, err := repo.ListBetween(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, between, 2, "both directions count, other pairs do not")
	require.Equal(t, fromBob.ID, between[0].ID, "newest first")

	accepted, err := repo.AcceptedForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, accepted, 2)
	for _, request := range accepted {
		require.Equal(t, models.SwapStatusAccepted, request.Status)
	}
}
