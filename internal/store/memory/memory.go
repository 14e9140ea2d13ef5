// Package memory provides an in-memory Store for local development and tests.
// Every filter and sort is a full scan; fine for the dataset sizes it serves.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"example.com/fittrack/internal/domain"
)

// Store keeps one map and one id counter per entity type. Identifiers start
// at 1 and are never reused, even after a like is removed.
//
// Unlike the Postgres store it enforces no uniqueness constraints: duplicate
// usernames are accepted silently. Callers that care must check first.
type Store struct {
	mu sync.RWMutex

	users      map[int64]domain.User
	water      map[int64]domain.WaterIntake
	activities map[int64]domain.Activity
	routes     map[int64]domain.Route
	posts      map[int64]domain.Post
	likes      map[int64]domain.Like
	comments   map[int64]domain.Comment

	nextUserID     int64
	nextWaterID    int64
	nextActivityID int64
	nextRouteID    int64
	nextPostID     int64
	nextLikeID     int64
	nextCommentID  int64
}

// New constructs a Store populated with the seed fixture.
func New() *Store {
	s := &Store{
		users:      make(map[int64]domain.User),
		water:      make(map[int64]domain.WaterIntake),
		activities: make(map[int64]domain.Activity),
		routes:     make(map[int64]domain.Route),
		posts:      make(map[int64]domain.Post),
		likes:      make(map[int64]domain.Like),
		comments:   make(map[int64]domain.Comment),

		nextUserID:     1,
		nextWaterID:    1,
		nextActivityID: 1,
		nextRouteID:    1,
		nextPostID:     1,
		nextLikeID:     1,
		nextCommentID:  1,
	}
	s.seed()
	return s
}

// seed creates the testuser fixture. Test-only scaffolding, kept for parity
// with local-dev expectations; production deployments use the Postgres store.
func (s *Store) seed() {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextUserID
	s.nextUserID++
	s.users[id] = domain.User{
		ID:             id,
		Username:       "testuser",
		Password:       string(hash),
		Email:          "test@example.com",
		DailyWaterGoal: domain.DefaultDailyWaterGoalMl,
	}
}

// GetUser implements domain.Store.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// GetUserByUsername implements domain.Store.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			match := user
			return &match, nil
		}
	}
	return nil, nil
}

// CreateUser implements domain.Store.
func (s *Store) CreateUser(ctx context.Context, input domain.NewUser) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	goal := input.DailyWaterGoal
	if goal <= 0 {
		goal = domain.DefaultDailyWaterGoalMl
	}

	id := s.nextUserID
	s.nextUserID++
	user := domain.User{
		ID:             id,
		Username:       input.Username,
		Password:       input.Password,
		Email:          input.Email,
		ProfilePicture: input.ProfilePicture,
		DailyWaterGoal: goal,
	}
	s.users[id] = user
	return &user, nil
}

// UpdateUser implements domain.Store.
func (s *Store) UpdateUser(ctx context.Context, id int64, update domain.UserUpdate) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	if update.Username != nil {
		user.Username = *update.Username
	}
	if update.Password != nil {
		user.Password = *update.Password
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.ProfilePicture != nil {
		user.ProfilePicture = update.ProfilePicture
	}
	if update.DailyWaterGoal != nil {
		user.DailyWaterGoal = *update.DailyWaterGoal
	}
	s.users[id] = user
	return &user, nil
}

// AddWaterIntake implements domain.Store.
func (s *Store) AddWaterIntake(ctx context.Context, input domain.NewWaterIntake) (*domain.WaterIntake, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recordedAt := input.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	id := s.nextWaterID
	s.nextWaterID++
	record := domain.WaterIntake{
		ID:         id,
		UserID:     input.UserID,
		AmountMl:   input.AmountMl,
		RecordedAt: recordedAt,
	}
	s.water[id] = record
	return &record, nil
}

// ListWaterIntakeByUser implements domain.Store; newest-first.
func (s *Store) ListWaterIntakeByUser(ctx context.Context, userID int64) ([]domain.WaterIntake, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.WaterIntake, 0)
	for _, record := range s.water {
		if record.UserID == userID {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RecordedAt.Equal(out[j].RecordedAt) {
			return out[i].RecordedAt.After(out[j].RecordedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// ListWaterIntakeByUserAndDate implements domain.Store; oldest-first within
// the calendar day of `day` in day's location.
func (s *Store) ListWaterIntakeByUserAndDate(ctx context.Context, userID int64, day time.Time) ([]domain.WaterIntake, error) {
	start, end := dayBounds(day)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.WaterIntake, 0)
	for _, record := range s.water {
		if record.UserID != userID {
			continue
		}
		if record.RecordedAt.Before(start) || !record.RecordedAt.Before(end) {
			continue
		}
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RecordedAt.Equal(out[j].RecordedAt) {
			return out[i].RecordedAt.Before(out[j].RecordedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// CreateActivity implements domain.Store.
func (s *Store) CreateActivity(ctx context.Context, input domain.NewActivity) (*domain.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	isPublic := true
	if input.IsPublic != nil {
		isPublic = *input.IsPublic
	}

	id := s.nextActivityID
	s.nextActivityID++
	activity := domain.Activity{
		ID:            id,
		UserID:        input.UserID,
		Title:         input.Title,
		ActivityType:  input.ActivityType,
		DistanceKm:    input.DistanceKm,
		DurationSec:   input.DurationSec,
		ElevationGain: input.ElevationGain,
		Weather:       input.Weather,
		Temperature:   input.Temperature,
		IsPublic:      isPublic,
		CreatedAt:     time.Now().UTC(),
	}
	s.activities[id] = activity
	return &activity, nil
}

// GetActivity implements domain.Store.
func (s *Store) GetActivity(ctx context.Context, id int64) (*domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	activity, ok := s.activities[id]
	if !ok {
		return nil, nil
	}
	return &activity, nil
}

// ListActivitiesByUser implements domain.Store; newest-first.
func (s *Store) ListActivitiesByUser(ctx context.Context, userID int64) ([]domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Activity, 0)
	for _, activity := range s.activities {
		if activity.UserID == userID {
			out = append(out, activity)
		}
	}
	sortActivitiesNewestFirst(out)
	return out, nil
}

// ListRecentActivities implements domain.Store; public only, newest-first.
func (s *Store) ListRecentActivities(ctx context.Context, limit int) ([]domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Activity, 0)
	for _, activity := range s.activities {
		if activity.IsPublic {
			out = append(out, activity)
		}
	}
	sortActivitiesNewestFirst(out)
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListPublicActivitiesNearby implements domain.Store. Stub: location and
// radius are ignored and the 10 most recent public activities are returned.
func (s *Store) ListPublicActivitiesNearby(ctx context.Context, lat, lng, radiusKm float64) ([]domain.Activity, error) {
	return s.ListRecentActivities(ctx, 10)
}

// SaveRoute implements domain.Store.
func (s *Store) SaveRoute(ctx context.Context, input domain.NewRoute) (*domain.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextRouteID
	s.nextRouteID++
	route := domain.Route{
		ID:          id,
		ActivityID:  input.ActivityID,
		Coordinates: input.Coordinates,
	}
	s.routes[id] = route
	return &route, nil
}

// GetRouteByActivity implements domain.Store; first match by id when more
// than one route was saved for the activity.
func (s *Store) GetRouteByActivity(ctx context.Context, activityID int64) (*domain.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var match *domain.Route
	for _, route := range s.routes {
		if route.ActivityID != activityID {
			continue
		}
		if match == nil || route.ID < match.ID {
			found := route
			match = &found
		}
	}
	return match, nil
}

// CreatePost implements domain.Store.
func (s *Store) CreatePost(ctx context.Context, input domain.NewPost) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextPostID
	s.nextPostID++
	post := domain.Post{
		ID:         id,
		UserID:     input.UserID,
		ActivityID: input.ActivityID,
		Content:    input.Content,
		ImageURL:   input.ImageURL,
		CreatedAt:  time.Now().UTC(),
	}
	s.posts[id] = post
	return &post, nil
}

// ListPosts implements domain.Store; newest-first window [offset, offset+limit).
func (s *Store) ListPosts(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Post, 0, len(s.posts))
	for _, post := range s.posts {
		out = append(out, post)
	}
	sortPostsNewestFirst(out)

	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return []domain.Post{}, nil
	}
	out = out[offset:]
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListPostsByUser implements domain.Store; newest-first.
func (s *Store) ListPostsByUser(ctx context.Context, userID int64) ([]domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Post, 0)
	for _, post := range s.posts {
		if post.UserID == userID {
			out = append(out, post)
		}
	}
	sortPostsNewestFirst(out)
	return out, nil
}

// AddLike implements domain.Store. The existence check and insert run under
// one write lock, so the at-most-one invariant holds under concurrency.
func (s *Store) AddLike(ctx context.Context, input domain.NewLike) (*domain.Like, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, like := range s.likes {
		if like.UserID == input.UserID && like.PostID == input.PostID {
			existing := like
			return &existing, nil
		}
	}

	id := s.nextLikeID
	s.nextLikeID++
	like := domain.Like{
		ID:     id,
		UserID: input.UserID,
		PostID: input.PostID,
	}
	s.likes[id] = like
	return &like, nil
}

// RemoveLike implements domain.Store; a no-op when the pair is absent.
func (s *Store) RemoveLike(ctx context.Context, userID, postID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, like := range s.likes {
		if like.UserID == userID && like.PostID == postID {
			delete(s.likes, id)
			return nil
		}
	}
	return nil
}

// ListLikesByPost implements domain.Store; order unspecified.
func (s *Store) ListLikesByPost(ctx context.Context, postID int64) ([]domain.Like, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Like, 0)
	for _, like := range s.likes {
		if like.PostID == postID {
			out = append(out, like)
		}
	}
	return out, nil
}

// AddComment implements domain.Store.
func (s *Store) AddComment(ctx context.Context, input domain.NewComment) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextCommentID
	s.nextCommentID++
	comment := domain.Comment{
		ID:        id,
		UserID:    input.UserID,
		PostID:    input.PostID,
		Content:   input.Content,
		CreatedAt: time.Now().UTC(),
	}
	s.comments[id] = comment
	return &comment, nil
}

// ListCommentsByPost implements domain.Store; oldest-first.
func (s *Store) ListCommentsByPost(ctx context.Context, postID int64) ([]domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Comment, 0)
	for _, comment := range s.comments {
		if comment.PostID == postID {
			out = append(out, comment)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// dayBounds returns the [00:00, +24h) window of day in day's location.
func dayBounds(day time.Time) (time.Time, time.Time) {
	year, month, d := day.Date()
	start := time.Date(year, month, d, 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

func sortActivitiesNewestFirst(activities []domain.Activity) {
	sort.Slice(activities, func(i, j int) bool {
		if !activities[i].CreatedAt.Equal(activities[j].CreatedAt) {
			return activities[i].CreatedAt.After(activities[j].CreatedAt)
		}
		return activities[i].ID > activities[j].ID
	})
}

func sortPostsNewestFirst(posts []domain.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
}
