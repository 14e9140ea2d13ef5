//go:build integration

package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/fittrack/internal/domain"
	"example.com/fittrack/internal/store/memory"
)

func newTestStore(t *testing.T) *Store {
	ctx := context.Background()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("fittrack"),
		postgrescontainer.WithUsername("fittrack"),
		postgrescontainer.WithPassword("fittrack"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))
	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	return New(pool)
}

func TestUsernameUniquenessIsSchemaEnforced(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateUser(ctx, domain.NewUser{Username: "dupe", Password: "x", Email: "a@example.com"})
	require.NoError(t, err)

	// Unlike the in-memory store, the engine rejects the duplicate.
	_, err = store.CreateUser(ctx, domain.NewUser{Username: "dupe", Password: "x", Email: "b@example.com"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "users_username_key")
}

func TestLikeConflictConvergesOnSingleRow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, domain.NewUser{Username: "liker", Password: "x", Email: "a@example.com"})
	require.NoError(t, err)
	post, err := store.CreatePost(ctx, domain.NewPost{UserID: user.ID, Content: "hello"})
	require.NoError(t, err)

	first, err := store.AddLike(ctx, domain.NewLike{UserID: user.ID, PostID: post.ID})
	require.NoError(t, err)
	second, err := store.AddLike(ctx, domain.NewLike{UserID: user.ID, PostID: post.ID})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	likes, err := store.ListLikesByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, likes, 1)

	require.NoError(t, store.RemoveLike(ctx, user.ID, post.ID))
	require.NoError(t, store.RemoveLike(ctx, user.ID, post.ID))
}

func TestWaterIntakeDateWindow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, domain.NewUser{Username: "drinker", Password: "x", Email: "a@example.com"})
	require.NoError(t, err)

	endOfDay := time.Date(2026, time.March, 14, 23, 59, 59, 999_000_000, time.UTC)
	startOfNext := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	earlier, err := store.AddWaterIntake(ctx, domain.NewWaterIntake{UserID: user.ID, AmountMl: 250, RecordedAt: endOfDay})
	require.NoError(t, err)
	_, err = store.AddWaterIntake(ctx, domain.NewWaterIntake{UserID: user.ID, AmountMl: 300, RecordedAt: startOfNext})
	require.NoError(t, err)

	day := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	records, err := store.ListWaterIntakeByUserAndDate(ctx, user.ID, day)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, earlier.ID, records[0].ID)
}

// TestParityWithMemoryStore runs one scripted sequence against both backends
// and compares results up to assigned identifiers (the memory store's seed
// fixture shifts its user ids).
func TestParityWithMemoryStore(t *testing.T) {
	ctx := context.Background()
	backends := map[string]domain.Store{
		"postgres": newTestStore(t),
		"memory":   memory.New(),
	}

	type outcome struct {
		updatedEmail  string
		goal          int
		activityOrder []string
		postWindow    []string
		likeCount     int
		commentOrder  []string
		dailyAmounts  []int
	}
	results := make(map[string]outcome)

	for name, store := range backends {
		user, err := store.CreateUser(ctx, domain.NewUser{Username: "parity", Password: "hash", Email: "old@example.com"})
		require.NoError(t, err)

		email := "new@example.com"
		updated, err := store.UpdateUser(ctx, user.ID, domain.UserUpdate{Email: &email})
		require.NoError(t, err)
		require.NotNil(t, updated)

		for _, title := range []string{"one", "two", "three"} {
			_, err := store.CreateActivity(ctx, domain.NewActivity{UserID: user.ID, Title: title, ActivityType: "run"})
			require.NoError(t, err)
		}
		activities, err := store.ListActivitiesByUser(ctx, user.ID)
		require.NoError(t, err)
		activityOrder := make([]string, 0, len(activities))
		for _, a := range activities {
			activityOrder = append(activityOrder, a.Title)
		}

		var firstPost *domain.Post
		for _, content := range []string{"p1", "p2", "p3", "p4"} {
			post, err := store.CreatePost(ctx, domain.NewPost{UserID: user.ID, Content: content})
			require.NoError(t, err)
			if firstPost == nil {
				firstPost = post
			}
		}
		window, err := store.ListPosts(ctx, 2, 1)
		require.NoError(t, err)
		postWindow := make([]string, 0, len(window))
		for _, p := range window {
			postWindow = append(postWindow, p.Content)
		}

		_, err = store.AddLike(ctx, domain.NewLike{UserID: user.ID, PostID: firstPost.ID})
		require.NoError(t, err)
		_, err = store.AddLike(ctx, domain.NewLike{UserID: user.ID, PostID: firstPost.ID})
		require.NoError(t, err)
		likes, err := store.ListLikesByPost(ctx, firstPost.ID)
		require.NoError(t, err)

		for _, content := range []string{"c1", "c2"} {
			_, err := store.AddComment(ctx, domain.NewComment{UserID: user.ID, PostID: firstPost.ID, Content: content})
			require.NoError(t, err)
		}
		comments, err := store.ListCommentsByPost(ctx, firstPost.ID)
		require.NoError(t, err)
		commentOrder := make([]string, 0, len(comments))
		for _, c := range comments {
			commentOrder = append(commentOrder, c.Content)
		}

		day := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
		for i, amount := range []int{200, 300} {
			_, err := store.AddWaterIntake(ctx, domain.NewWaterIntake{
				UserID:     user.ID,
				AmountMl:   amount,
				RecordedAt: day.Add(time.Duration(i) * time.Hour),
			})
			require.NoError(t, err)
		}
		daily, err := store.ListWaterIntakeByUserAndDate(ctx, user.ID, day)
		require.NoError(t, err)
		dailyAmounts := make([]int, 0, len(daily))
		for _, record := range daily {
			dailyAmounts = append(dailyAmounts, record.AmountMl)
		}

		results[name] = outcome{
			updatedEmail:  updated.Email,
			goal:          updated.DailyWaterGoal,
			activityOrder: activityOrder,
			postWindow:    postWindow,
			likeCount:     len(likes),
			commentOrder:  commentOrder,
			dailyAmounts:  dailyAmounts,
		}
	}

	require.Equal(t, results["memory"], results["postgres"])
}

func TestAbsenceIsNotAnError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.GetUser(ctx, 404)
	require.NoError(t, err)
	require.Nil(t, user)

	route, err := store.GetRouteByActivity(ctx, 404)
	require.NoError(t, err)
	require.Nil(t, route)

	updatedEmail := "x@example.com"
	updated, err := store.UpdateUser(ctx, 404, domain.UserUpdate{Email: &updatedEmail})
	require.NoError(t, err)
	require.Nil(t, updated)
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	files := []string{
		"../../../db/postgres/migrations/0001_init.up.sql",
	}

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	for _, rel := range files {
		path := resolvePath(t, rel)
		contents, readErr := os.ReadFile(path)
		require.NoError(t, readErr)

		_, execErr := pool.Exec(ctx, string(contents))
		require.NoError(t, execErr)
	}
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
