// Package domain defines the entity model, the storage contract and the
// business workflows of the fitness tracker.
package domain

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"example.com/fittrack/internal/observability"
)

var (
	// ErrUsernameTaken indicates a registration attempt with an existing username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned when a user cannot be located.
	ErrUserNotFound = errors.New("user not found")
	// ErrActivityNotFound is returned when an activity cannot be located.
	ErrActivityNotFound = errors.New("activity not found")
)

// FeedPublisher emits feed events for newly created content. Publishing is
// best-effort: failures are logged and counted, never surfaced to the caller.
type FeedPublisher interface {
	ActivityCreated(ctx context.Context, activity Activity) error
	PostCreated(ctx context.Context, post Post) error
}

// Service orchestrates workflows over the Store. Handlers depend on Service
// only, never on a concrete store implementation.
type Service struct {
	store Store
	feed  FeedPublisher
}

// NewService constructs a Service.
func NewService(store Store, feed FeedPublisher) *Service {
	return &Service{store: store, feed: feed}
}

// RegisterInput captures the registration payload.
type RegisterInput struct {
	Username       string
	Password       string
	Email          string
	ProfilePicture *string
	DailyWaterGoal int
}

// Register creates an account. The username is checked up front so both store
// implementations reject duplicates the same way; the raw password is hashed
// before it reaches the store.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	existing, err := s.store.GetUserByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	goal := input.DailyWaterGoal
	if goal <= 0 {
		goal = DefaultDailyWaterGoalMl
	}

	return s.store.CreateUser(ctx, NewUser{
		Username:       input.Username,
		Password:       string(hash),
		Email:          input.Email,
		ProfilePicture: input.ProfilePicture,
		DailyWaterGoal: goal,
	})
}

// Authenticate verifies a username/password pair and returns the account.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Profile fetches a user by id.
func (s *Service) Profile(ctx context.Context, id int64) (*User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile applies a partial update. A new password is hashed before it
// reaches the store; a new username must not collide with another account.
func (s *Service) UpdateProfile(ctx context.Context, id int64, update UserUpdate) (*User, error) {
	if update.Username != nil {
		existing, err := s.store.GetUserByUsername(ctx, *update.Username)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, ErrUsernameTaken
		}
	}
	if update.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*update.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hashed := string(hash)
		update.Password = &hashed
	}

	user, err := s.store.UpdateUser(ctx, id, update)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// LogWaterIntake records a drink for an existing user.
func (s *Service) LogWaterIntake(ctx context.Context, input NewWaterIntake) (*WaterIntake, error) {
	user, err := s.store.GetUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return s.store.AddWaterIntake(ctx, input)
}

// WaterIntakeHistory returns all of a user's records, newest-first.
func (s *Service) WaterIntakeHistory(ctx context.Context, userID int64) ([]WaterIntake, error) {
	return s.store.ListWaterIntakeByUser(ctx, userID)
}

// WaterIntakeForDay returns a day's records oldest-first plus their total in
// milliliters, for goal-progress display.
func (s *Service) WaterIntakeForDay(ctx context.Context, userID int64, day time.Time) ([]WaterIntake, int, error) {
	records, err := s.store.ListWaterIntakeByUserAndDate(ctx, userID, day)
	if err != nil {
		return nil, 0, err
	}
	total := 0
	for _, record := range records {
		total += record.AmountMl
	}
	return records, total, nil
}

// RecordActivity creates an activity for an existing user, saves its route
// when encoded coordinates are supplied, and emits a feed event.
func (s *Service) RecordActivity(ctx context.Context, input NewActivity, coordinates string) (*Activity, *Route, error) {
	user, err := s.store.GetUser(ctx, input.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrUserNotFound
	}

	activity, err := s.store.CreateActivity(ctx, input)
	if err != nil {
		return nil, nil, err
	}

	var route *Route
	if coordinates != "" {
		route, err = s.store.SaveRoute(ctx, NewRoute{ActivityID: activity.ID, Coordinates: coordinates})
		if err != nil {
			return nil, nil, err
		}
	}

	s.publishActivity(ctx, *activity)
	return activity, route, nil
}

// ActivityDetail fetches an activity together with its route, if any.
func (s *Service) ActivityDetail(ctx context.Context, id int64) (*Activity, *Route, error) {
	activity, err := s.store.GetActivity(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if activity == nil {
		return nil, nil, ErrActivityNotFound
	}
	route, err := s.store.GetRouteByActivity(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return activity, route, nil
}

// UserActivities returns a user's activities newest-first.
func (s *Service) UserActivities(ctx context.Context, userID int64) ([]Activity, error) {
	return s.store.ListActivitiesByUser(ctx, userID)
}

// RecentFeed returns the latest public activities.
func (s *Service) RecentFeed(ctx context.Context, limit int) ([]Activity, error) {
	return s.store.ListRecentActivities(ctx, limit)
}

// NearbyFeed delegates to the store's nearby lookup, which currently ignores
// location; see Store.ListPublicActivitiesNearby.
func (s *Service) NearbyFeed(ctx context.Context, lat, lng, radiusKm float64) ([]Activity, error) {
	return s.store.ListPublicActivitiesNearby(ctx, lat, lng, radiusKm)
}

// SharePost creates a post and emits a feed event. A referenced activity must
// exist.
func (s *Service) SharePost(ctx context.Context, input NewPost) (*Post, error) {
	if input.ActivityID != nil {
		activity, err := s.store.GetActivity(ctx, *input.ActivityID)
		if err != nil {
			return nil, err
		}
		if activity == nil {
			return nil, ErrActivityNotFound
		}
	}

	post, err := s.store.CreatePost(ctx, input)
	if err != nil {
		return nil, err
	}
	s.publishPost(ctx, *post)
	return post, nil
}

// PostsPage returns the window [offset, offset+limit) of all posts,
// newest-first.
func (s *Service) PostsPage(ctx context.Context, limit, offset int) ([]Post, error) {
	return s.store.ListPosts(ctx, limit, offset)
}

// PostsOf returns one user's posts newest-first.
func (s *Service) PostsOf(ctx context.Context, userID int64) ([]Post, error) {
	return s.store.ListPostsByUser(ctx, userID)
}

// LikePost likes a post on behalf of a user. Liking twice returns the
// existing like instead of creating a duplicate.
func (s *Service) LikePost(ctx context.Context, userID, postID int64) (*Like, error) {
	return s.store.AddLike(ctx, NewLike{UserID: userID, PostID: postID})
}

// UnlikePost removes a like; absent likes are ignored.
func (s *Service) UnlikePost(ctx context.Context, userID, postID int64) error {
	return s.store.RemoveLike(ctx, userID, postID)
}

// CommentOnPost adds a comment to a post.
func (s *Service) CommentOnPost(ctx context.Context, input NewComment) (*Comment, error) {
	return s.store.AddComment(ctx, input)
}

// PostEngagement returns a post's likes and comments.
func (s *Service) PostEngagement(ctx context.Context, postID int64) ([]Like, []Comment, error) {
	likes, err := s.store.ListLikesByPost(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	comments, err := s.store.ListCommentsByPost(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	return likes, comments, nil
}

func (s *Service) publishActivity(ctx context.Context, activity Activity) {
	if s.feed == nil {
		return
	}
	if err := s.feed.ActivityCreated(ctx, activity); err != nil {
		observability.RecordFeedPublishFailure()
		log.Printf("feed publish failed for activity %d: %v", activity.ID, err)
	}
}

func (s *Service) publishPost(ctx context.Context, post Post) {
	if s.feed == nil {
		return
	}
	if err := s.feed.PostCreated(ctx, post); err != nil {
		observability.RecordFeedPublishFailure()
		log.Printf("feed publish failed for post %d: %v", post.ID, err)
	}
}
