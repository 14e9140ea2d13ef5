package domain

import (
	"context"
	"time"
)

// Store captures every persistence operation the service layer may perform.
// Two implementations exist: an in-memory store for development and tests, and
// a Postgres-backed store. Callers select one at startup and never inspect the
// concrete type.
//
// Absence is not an error: point lookups return (nil, nil) and list operations
// return an empty slice when nothing matches. Store implementations do not
// wrap or reinterpret engine failures; callers receive them as-is.
type Store interface {
	// GetUser returns the user with the given id, or nil if absent.
	GetUser(ctx context.Context, id int64) (*User, error)
	// GetUserByUsername returns the user with the given username, or nil.
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	// CreateUser persists a new user and assigns its id. Username uniqueness
	// is not checked here; the Postgres schema enforces it and propagates the
	// engine error, the in-memory store accepts duplicates.
	CreateUser(ctx context.Context, input NewUser) (*User, error)
	// UpdateUser applies the non-nil fields of update and returns the result,
	// or nil if no such user exists. Untouched fields are preserved.
	UpdateUser(ctx context.Context, id int64, update UserUpdate) (*User, error)

	// AddWaterIntake persists a record, defaulting RecordedAt to now when zero.
	AddWaterIntake(ctx context.Context, input NewWaterIntake) (*WaterIntake, error)
	// ListWaterIntakeByUser returns a user's records newest-first.
	ListWaterIntakeByUser(ctx context.Context, userID int64) ([]WaterIntake, error)
	// ListWaterIntakeByUserAndDate returns records whose RecordedAt falls
	// within the calendar day of `day` (in day's location), oldest-first.
	ListWaterIntakeByUserAndDate(ctx context.Context, userID int64, day time.Time) ([]WaterIntake, error)

	// CreateActivity persists an activity. CreatedAt is server-assigned and
	// IsPublic defaults to true when the input leaves it nil.
	CreateActivity(ctx context.Context, input NewActivity) (*Activity, error)
	// GetActivity returns the activity with the given id, or nil.
	GetActivity(ctx context.Context, id int64) (*Activity, error)
	// ListActivitiesByUser returns a user's activities newest-first.
	ListActivitiesByUser(ctx context.Context, userID int64) ([]Activity, error)
	// ListRecentActivities returns up to limit public activities newest-first.
	ListRecentActivities(ctx context.Context, limit int) ([]Activity, error)
	// ListPublicActivitiesNearby is a stub: it ignores all three parameters
	// and returns up to 10 most recent public activities. Documented
	// limitation carried over until real geospatial search is commissioned.
	ListPublicActivitiesNearby(ctx context.Context, lat, lng, radiusKm float64) ([]Activity, error)

	// SaveRoute persists the encoded coordinates of an activity.
	SaveRoute(ctx context.Context, input NewRoute) (*Route, error)
	// GetRouteByActivity returns the first route recorded for the activity,
	// or nil.
	GetRouteByActivity(ctx context.Context, activityID int64) (*Route, error)

	// CreatePost persists a post with a server-assigned timestamp.
	CreatePost(ctx context.Context, input NewPost) (*Post, error)
	// ListPosts returns the window [offset, offset+limit) of all posts
	// ordered newest-first.
	ListPosts(ctx context.Context, limit, offset int) ([]Post, error)
	// ListPostsByUser returns a user's posts newest-first.
	ListPostsByUser(ctx context.Context, userID int64) ([]Post, error)

	// AddLike is idempotent per (UserID, PostID): when the pair already
	// exists the existing Like is returned and no duplicate is created.
	AddLike(ctx context.Context, input NewLike) (*Like, error)
	// RemoveLike deletes the like for the pair; a no-op when absent.
	RemoveLike(ctx context.Context, userID, postID int64) error
	// ListLikesByPost returns all likes on the post, order unspecified.
	ListLikesByPost(ctx context.Context, postID int64) ([]Like, error)

	// AddComment persists a comment with a server-assigned timestamp.
	AddComment(ctx context.Context, input NewComment) (*Comment, error)
	// ListCommentsByPost returns the post's comments oldest-first.
	ListCommentsByPost(ctx context.Context, postID int64) ([]Comment, error)
}
