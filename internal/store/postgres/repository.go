// Package postgres provides the Postgres-backed Store implementation.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/fittrack/internal/domain"
	"example.com/fittrack/internal/observability"
)

// Store translates each contract operation into a query against Postgres.
// Engine errors (constraint violations included) propagate to the caller
// unwrapped; absence maps pgx.ErrNoRows to a nil result.
type Store struct {
	pool *pgxpool.Pool
}

// New constructs a Store over the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const userColumns = `id, username, password, email, profile_picture, daily_water_goal`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Username, &user.Password, &user.Email, &user.ProfilePicture, &user.DailyWaterGoal)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetUser implements domain.Store.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(s.pool.QueryRow(ctx, query, id))
}

// GetUserByUsername implements domain.Store.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username=$1`
	return scanUser(s.pool.QueryRow(ctx, query, username))
}

// CreateUser implements domain.Store. The users.username unique constraint is
// schema-enforced; a violation surfaces as the engine's error.
func (s *Store) CreateUser(ctx context.Context, input domain.NewUser) (*domain.User, error) {
	goal := input.DailyWaterGoal
	if goal <= 0 {
		goal = domain.DefaultDailyWaterGoalMl
	}

	const query = `INSERT INTO users (username, password, email, profile_picture, daily_water_goal)
        VALUES ($1,$2,$3,$4,$5) RETURNING ` + userColumns
	return scanUser(s.pool.QueryRow(ctx, query, input.Username, input.Password, input.Email, input.ProfilePicture, goal))
}

// UpdateUser implements domain.Store. Nil fields keep their stored value.
func (s *Store) UpdateUser(ctx context.Context, id int64, update domain.UserUpdate) (*domain.User, error) {
	const query = `UPDATE users SET
            username = COALESCE($2, username),
            password = COALESCE($3, password),
            email = COALESCE($4, email),
            profile_picture = COALESCE($5, profile_picture),
            daily_water_goal = COALESCE($6, daily_water_goal)
        WHERE id=$1 RETURNING ` + userColumns
	return scanUser(s.pool.QueryRow(ctx, query, id, update.Username, update.Password, update.Email, update.ProfilePicture, update.DailyWaterGoal))
}

// AddWaterIntake implements domain.Store.
func (s *Store) AddWaterIntake(ctx context.Context, input domain.NewWaterIntake) (*domain.WaterIntake, error) {
	recordedAt := input.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	const query = `INSERT INTO water_intakes (user_id, amount_ml, recorded_at)
        VALUES ($1,$2,$3) RETURNING id, user_id, amount_ml, recorded_at`
	var record domain.WaterIntake
	err := s.pool.QueryRow(ctx, query, input.UserID, input.AmountMl, recordedAt).
		Scan(&record.ID, &record.UserID, &record.AmountMl, &record.RecordedAt)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListWaterIntakeByUser implements domain.Store; newest-first.
func (s *Store) ListWaterIntakeByUser(ctx context.Context, userID int64) ([]domain.WaterIntake, error) {
	const query = `SELECT id, user_id, amount_ml, recorded_at FROM water_intakes
        WHERE user_id=$1 ORDER BY recorded_at DESC, id DESC`
	return s.queryWater(ctx, query, userID)
}

// ListWaterIntakeByUserAndDate implements domain.Store. The day window is
// computed application-side so both backends agree on its bounds.
func (s *Store) ListWaterIntakeByUserAndDate(ctx context.Context, userID int64, day time.Time) ([]domain.WaterIntake, error) {
	year, month, d := day.Date()
	start := time.Date(year, month, d, 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	const query = `SELECT id, user_id, amount_ml, recorded_at FROM water_intakes
        WHERE user_id=$1 AND recorded_at >= $2 AND recorded_at < $3
        ORDER BY recorded_at ASC, id ASC`
	return s.queryWater(ctx, query, userID, start, end)
}

func (s *Store) queryWater(ctx context.Context, query string, args ...interface{}) ([]domain.WaterIntake, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.WaterIntake, 0)
	for rows.Next() {
		var record domain.WaterIntake
		if err := rows.Scan(&record.ID, &record.UserID, &record.AmountMl, &record.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

const activityColumns = `id, user_id, title, activity_type, distance_km, duration_sec, elevation_gain, weather, temperature, is_public, created_at`

// CreateActivity implements domain.Store. Optional-field defaults are applied
// here rather than relying on schema defaults, mirroring the in-memory store.
func (s *Store) CreateActivity(ctx context.Context, input domain.NewActivity) (*domain.Activity, error) {
	isPublic := true
	if input.IsPublic != nil {
		isPublic = *input.IsPublic
	}
	createdAt := time.Now().UTC()

	const query = `INSERT INTO activities (user_id, title, activity_type, distance_km, duration_sec, elevation_gain, weather, temperature, is_public, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING ` + activityColumns
	activity, err := scanActivity(s.pool.QueryRow(ctx, query,
		input.UserID, input.Title, input.ActivityType, input.DistanceKm, input.DurationSec,
		input.ElevationGain, input.Weather, input.Temperature, isPublic, createdAt))
	if err != nil {
		return nil, err
	}
	observability.RecordActivityPersisted(activity.CreatedAt)
	return activity, nil
}

func scanActivity(row pgx.Row) (*domain.Activity, error) {
	var activity domain.Activity
	err := row.Scan(&activity.ID, &activity.UserID, &activity.Title, &activity.ActivityType,
		&activity.DistanceKm, &activity.DurationSec, &activity.ElevationGain, &activity.Weather,
		&activity.Temperature, &activity.IsPublic, &activity.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &activity, nil
}

// GetActivity implements domain.Store.
func (s *Store) GetActivity(ctx context.Context, id int64) (*domain.Activity, error) {
	const query = `SELECT ` + activityColumns + ` FROM activities WHERE id=$1`
	return scanActivity(s.pool.QueryRow(ctx, query, id))
}

// ListActivitiesByUser implements domain.Store; newest-first.
func (s *Store) ListActivitiesByUser(ctx context.Context, userID int64) ([]domain.Activity, error) {
	const query = `SELECT ` + activityColumns + ` FROM activities
        WHERE user_id=$1 ORDER BY created_at DESC, id DESC`
	return s.queryActivities(ctx, query, userID)
}

// ListRecentActivities implements domain.Store; public only, newest-first.
func (s *Store) ListRecentActivities(ctx context.Context, limit int) ([]domain.Activity, error) {
	const query = `SELECT ` + activityColumns + ` FROM activities
        WHERE is_public ORDER BY created_at DESC, id DESC LIMIT $1`
	return s.queryActivities(ctx, query, limit)
}

// ListPublicActivitiesNearby implements domain.Store. Stub: the location
// parameters are ignored and the 10 most recent public activities returned.
func (s *Store) ListPublicActivitiesNearby(ctx context.Context, lat, lng, radiusKm float64) ([]domain.Activity, error) {
	return s.ListRecentActivities(ctx, 10)
}

func (s *Store) queryActivities(ctx context.Context, query string, args ...interface{}) ([]domain.Activity, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Activity, 0)
	for rows.Next() {
		var activity domain.Activity
		if err := rows.Scan(&activity.ID, &activity.UserID, &activity.Title, &activity.ActivityType,
			&activity.DistanceKm, &activity.DurationSec, &activity.ElevationGain, &activity.Weather,
			&activity.Temperature, &activity.IsPublic, &activity.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, activity)
	}
	return out, rows.Err()
}

// SaveRoute implements domain.Store.
func (s *Store) SaveRoute(ctx context.Context, input domain.NewRoute) (*domain.Route, error) {
	const query = `INSERT INTO routes (activity_id, coordinates)
        VALUES ($1,$2) RETURNING id, activity_id, coordinates`
	var route domain.Route
	err := s.pool.QueryRow(ctx, query, input.ActivityID, input.Coordinates).
		Scan(&route.ID, &route.ActivityID, &route.Coordinates)
	if err != nil {
		return nil, err
	}
	return &route, nil
}

// GetRouteByActivity implements domain.Store; first match when several exist.
func (s *Store) GetRouteByActivity(ctx context.Context, activityID int64) (*domain.Route, error) {
	const query = `SELECT id, activity_id, coordinates FROM routes
        WHERE activity_id=$1 ORDER BY id ASC LIMIT 1`
	var route domain.Route
	err := s.pool.QueryRow(ctx, query, activityID).Scan(&route.ID, &route.ActivityID, &route.Coordinates)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &route, nil
}

const postColumns = `id, user_id, activity_id, content, image_url, created_at`

// CreatePost implements domain.Store.
func (s *Store) CreatePost(ctx context.Context, input domain.NewPost) (*domain.Post, error) {
	createdAt := time.Now().UTC()

	const query = `INSERT INTO posts (user_id, activity_id, content, image_url, created_at)
        VALUES ($1,$2,$3,$4,$5) RETURNING ` + postColumns
	var post domain.Post
	err := s.pool.QueryRow(ctx, query, input.UserID, input.ActivityID, input.Content, input.ImageURL, createdAt).
		Scan(&post.ID, &post.UserID, &post.ActivityID, &post.Content, &post.ImageURL, &post.CreatedAt)
	if err != nil {
		return nil, err
	}
	observability.RecordPostCreated()
	return &post, nil
}

// ListPosts implements domain.Store; newest-first window [offset, offset+limit).
func (s *Store) ListPosts(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	const query = `SELECT ` + postColumns + ` FROM posts
        ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	return s.queryPosts(ctx, query, limit, offset)
}

// ListPostsByUser implements domain.Store; newest-first.
func (s *Store) ListPostsByUser(ctx context.Context, userID int64) ([]domain.Post, error) {
	const query = `SELECT ` + postColumns + ` FROM posts
        WHERE user_id=$1 ORDER BY created_at DESC, id DESC`
	return s.queryPosts(ctx, query, userID)
}

func (s *Store) queryPosts(ctx context.Context, query string, args ...interface{}) ([]domain.Post, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Post, 0)
	for rows.Next() {
		var post domain.Post
		if err := rows.Scan(&post.ID, &post.UserID, &post.ActivityID, &post.Content, &post.ImageURL, &post.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, post)
	}
	return out, rows.Err()
}

// AddLike implements domain.Store. Uniqueness lives in the schema
// (likes_user_post_key); ON CONFLICT DO NOTHING makes concurrent duplicate
// requests converge on the single surviving row.
func (s *Store) AddLike(ctx context.Context, input domain.NewLike) (*domain.Like, error) {
	const insert = `INSERT INTO likes (user_id, post_id) VALUES ($1,$2)
        ON CONFLICT (user_id, post_id) DO NOTHING RETURNING id, user_id, post_id`
	var like domain.Like
	err := s.pool.QueryRow(ctx, insert, input.UserID, input.PostID).Scan(&like.ID, &like.UserID, &like.PostID)
	if err == nil {
		return &like, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	const query = `SELECT id, user_id, post_id FROM likes WHERE user_id=$1 AND post_id=$2`
	err = s.pool.QueryRow(ctx, query, input.UserID, input.PostID).Scan(&like.ID, &like.UserID, &like.PostID)
	if err != nil {
		return nil, err
	}
	return &like, nil
}

// RemoveLike implements domain.Store; deleting nothing is not an error.
func (s *Store) RemoveLike(ctx context.Context, userID, postID int64) error {
	const query = `DELETE FROM likes WHERE user_id=$1 AND post_id=$2`
	_, err := s.pool.Exec(ctx, query, userID, postID)
	return err
}

// ListLikesByPost implements domain.Store.
func (s *Store) ListLikesByPost(ctx context.Context, postID int64) ([]domain.Like, error) {
	const query = `SELECT id, user_id, post_id FROM likes WHERE post_id=$1`
	rows, err := s.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Like, 0)
	for rows.Next() {
		var like domain.Like
		if err := rows.Scan(&like.ID, &like.UserID, &like.PostID); err != nil {
			return nil, err
		}
		out = append(out, like)
	}
	return out, rows.Err()
}

// AddComment implements domain.Store.
func (s *Store) AddComment(ctx context.Context, input domain.NewComment) (*domain.Comment, error) {
	createdAt := time.Now().UTC()

	const query = `INSERT INTO comments (user_id, post_id, content, created_at)
        VALUES ($1,$2,$3,$4) RETURNING id, user_id, post_id, content, created_at`
	var comment domain.Comment
	err := s.pool.QueryRow(ctx, query, input.UserID, input.PostID, input.Content, createdAt).
		Scan(&comment.ID, &comment.UserID, &comment.PostID, &comment.Content, &comment.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListCommentsByPost implements domain.Store; oldest-first.
func (s *Store) ListCommentsByPost(ctx context.Context, postID int64) ([]domain.Comment, error) {
	const query = `SELECT id, user_id, post_id, content, created_at FROM comments
        WHERE post_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := s.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Comment, 0)
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(&comment.ID, &comment.UserID, &comment.PostID, &comment.Content, &comment.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, comment)
	}
	return out, rows.Err()
}
