package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/skillswap-labs/skillswap-api/internal/dto"
	"github.com/skillswap-labs/skillswap-api/internal/models"
	"github.com/skillswap-labs/skillswap-api/internal/repository"
)

func TestBrowseServiceListingOrderAndFilters(t *testing.T) {
	db := newServiceTestDB(t, &models.User{})
	users := repository.NewUserRepository(db)
	svc := NewBrowseService(users, nil, time.Minute, zerolog.Nop())
	ctx := context.Background()

	viewer := seedUser(t, db, "Viewer", []string{"Go"}, []string{"Piano", "French"})

	strong := seedUser(t, db, "Strong", []string{"Piano", "French"}, []string{"Go"})
	weak := seedUser(t, db, "Weak", []string{"Piano"}, nil)
	none := seedUser(t, db, "None", []string{"Welding"}, []string{"Knitting"})
	none.Profile.Location = "Berlin"
	require.NoError(t, db.Save(&none).Error)

	response, err := svc.Browse(ctx, viewer.ID, dto.BrowseQuery{})
	require.NoError(t, err)
	require.Equal(t, 3, response.TotalUsers, "viewer is excluded from their own listing")
	require.Equal(t, strong.ID, response.Users[0].User.ID, "best match leads")
	require.Equal(t, weak.ID, response.Users[1].User.ID)
	require.Contains(t, response.Filters.Locations, "Berlin")

	filtered, err := svc.Browse(ctx, viewer.ID, dto.BrowseQuery{Location: "berlin"})
	require.NoError(t, err)
	require.Len(t, filtered.Users, 1)
	require.Equal(t, none.ID, filtered.Users[0].User.ID)

	searched, err := svc.Browse(ctx, viewer.ID, dto.BrowseQuery{Search: "piano"})
	require.NoError(t, err)
	require.Len(t, searched.Users, 2, "search matches names and skills")

	named, err := svc.Browse(ctx, viewer.ID, dto.BrowseQuery{Sort: "name"})
	require.NoError(t, err)
	require.Equal(t, "None", named.Users[0].User.Name)
}

func TestBrowseServiceTopMatchesDropZeroScores(t *testing.T) {
	db := newServiceTestDB(t, &models.User{})
	users := repository.NewUserRepository(db)
	svc := NewBrowseService(users, nil, time.Minute, zerolog.Nop())
	ctx := context.Background()

	viewer := seedUser(t, db, "Viewer", []string{"Go"}, []string{"Piano"})
	match := seedUser(t, db, "Match", []string{"Piano"}, []string{"Go"})
	seedUser(t, db, "None", []string{"Welding"}, []string{"Knitting"})

	top, err := svc.TopMatches(ctx, viewer.ID, 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, match.ID, top[0].User.ID)
}

func TestBrowseServiceCachesScoredListing(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	db := newServiceTestDB(t, &models.User{})
	users := repository.NewUserRepository(db)
	svc := NewBrowseService(users, redisClient, time.Minute, zerolog.Nop())
	ctx := context.Background()

	viewer := seedUser(t, db, "Viewer", []string{"Go"}, []string{"Piano"})
	candidate := seedUser(t, db, "Candidate", []string{"Piano"}, []string{"Go"})

	first, err := svc.Browse(ctx, viewer.ID, dto.BrowseQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, first.TotalUsers)

	// Database changes are invisible until the cache entry expires.
	candidate.Name = "Renamed"
	require.NoError(t, db.Save(&candidate).Error)

	second, err := svc.Browse(ctx, viewer.ID, dto.BrowseQuery{})
	require.NoError(t, err)
	require.Equal(t, "Candidate", second.Users[0].User.Name)

	mini.FastForward(2 * time.Minute)

	third, err := svc.Browse(ctx, viewer.ID, dto.BrowseQuery{})
	require.NoError(t, err)
	require.Equal(t, "Renamed", third.Users[0].User.Name)
}

func TestBrowseServiceSearchSkills(t *testing.T) {
	db := newServiceTestDB(t, &models.User{})
	users := repository.NewUserRepository(db)
	svc := NewBrowseService(users, nil, time.Minute, zerolog.Nop())
	ctx := context.Background()

	seedUser(t, db, "Alice", []string{"Go", "Gardening"}, []string{"Piano"})
	seedUser(t, db, "Bob", []string{"gardening"}, []string{"French"})

	skills, err := svc.SearchSkills(ctx, "gar")
	require.NoError(t, err)
	require.Equal(t, []string{"Gardening"}, skills, "duplicates collapse case-insensitively")

	short, err := svc.SearchSkills(ctx, "g")
	require.NoError(t, err)
	require.Empty(t, short, "queries under two characters return nothing")
}
