package domain

import "time"

// DefaultDailyWaterGoalMl is applied when registration omits a goal.
const DefaultDailyWaterGoalMl = 2000

// User is an account holder. Password always holds a bcrypt hash; the raw
// password never reaches the store layer.
type User struct {
	ID             int64
	Username       string
	Password       string
	Email          string
	ProfilePicture *string
	DailyWaterGoal int
}

// NewUser carries the fields required to create a User.
type NewUser struct {
	Username       string
	Password       string
	Email          string
	ProfilePicture *string
	DailyWaterGoal int
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Username       *string
	Password       *string
	Email          *string
	ProfilePicture *string
	DailyWaterGoal *int
}

// WaterIntake records a single drink. Immutable once created.
type WaterIntake struct {
	ID         int64
	UserID     int64
	AmountMl   int
	RecordedAt time.Time
}

// NewWaterIntake is the creation payload. A zero RecordedAt defaults to the
// creation time.
type NewWaterIntake struct {
	UserID     int64
	AmountMl   int
	RecordedAt time.Time
}

// Activity is a completed workout, optionally enriched with conditions and a
// GPS route (stored separately). Immutable once created.
type Activity struct {
	ID            int64
	UserID        int64
	Title         string
	ActivityType  string
	DistanceKm    float64
	DurationSec   int
	ElevationGain *float64
	Weather       *string
	Temperature   *float64
	IsPublic      bool
	CreatedAt     time.Time
}

// NewActivity is the creation payload. IsPublic nil means public.
type NewActivity struct {
	UserID        int64
	Title         string
	ActivityType  string
	DistanceKm    float64
	DurationSec   int
	ElevationGain *float64
	Weather       *string
	Temperature   *float64
	IsPublic      *bool
}

// Route is the encoded coordinate sequence of one activity. The encoding is
// opaque to the store: an ordered polyline serialized as text.
type Route struct {
	ID          int64
	ActivityID  int64
	Coordinates string
}

// NewRoute is the creation payload for a Route.
type NewRoute struct {
	ActivityID  int64
	Coordinates string
}

// Post is a shared update, optionally referencing an Activity.
type Post struct {
	ID         int64
	UserID     int64
	ActivityID *int64
	Content    string
	ImageURL   *string
	CreatedAt  time.Time
}

// NewPost is the creation payload for a Post.
type NewPost struct {
	UserID     int64
	ActivityID *int64
	Content    string
	ImageURL   *string
}

// Like marks that one user liked one post. At most one per (UserID, PostID).
type Like struct {
	ID     int64
	UserID int64
	PostID int64
}

// NewLike is the creation payload for a Like.
type NewLike struct {
	UserID int64
	PostID int64
}

// Comment is a reply on a post. Immutable, unbounded per post.
type Comment struct {
	ID        int64
	UserID    int64
	PostID    int64
	Content   string
	CreatedAt time.Time
}

// NewComment is the creation payload for a Comment.
type NewComment struct {
	UserID  int64
	PostID  int64
	Content string
}
