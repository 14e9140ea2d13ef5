package api

import (
	"errors"
	"strings"
	"time"

	"example.com/fittrack/internal/domain"
)

// RegisterRequest is the payload for POST /v1/users.
type RegisterRequest struct {
	Username       string  `json:"username"`
	Password       string  `json:"password"`
	Email          string  `json:"email"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	DailyWaterGoal int     `json:"daily_water_goal,omitempty"`
}

// Validate ensures request correctness.
func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return errors.New("username is required")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		return errors.New("email is required")
	}
	if r.DailyWaterGoal < 0 {
		return errors.New("daily_water_goal must be >= 0")
	}
	return nil
}

// LoginRequest is the payload for POST /v1/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate ensures request correctness.
func (r LoginRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return errors.New("username is required")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

// UpdateUserRequest is the payload for PATCH /v1/users/{id}. Absent fields
// are left untouched.
type UpdateUserRequest struct {
	Username       *string `json:"username,omitempty"`
	Password       *string `json:"password,omitempty"`
	Email          *string `json:"email,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	DailyWaterGoal *int    `json:"daily_water_goal,omitempty"`
}

// Validate ensures request correctness.
func (r UpdateUserRequest) Validate() error {
	if r.Username != nil && strings.TrimSpace(*r.Username) == "" {
		return errors.New("username must not be empty")
	}
	if r.Password != nil && *r.Password == "" {
		return errors.New("password must not be empty")
	}
	if r.Email != nil && strings.TrimSpace(*r.Email) == "" {
		return errors.New("email must not be empty")
	}
	if r.DailyWaterGoal != nil && *r.DailyWaterGoal <= 0 {
		return errors.New("daily_water_goal must be > 0")
	}
	return nil
}

// LogWaterRequest is the payload for POST /v1/users/{id}/water.
type LogWaterRequest struct {
	AmountMl int `json:"amount_ml"`
}

// Validate ensures request correctness.
func (r LogWaterRequest) Validate() error {
	if r.AmountMl <= 0 {
		return errors.New("amount_ml must be > 0")
	}
	return nil
}

// CreateActivityRequest is the payload for POST /v1/activities. Coordinates,
// when present, are stored as the activity's route.
type CreateActivityRequest struct {
	UserID        int64    `json:"user_id"`
	Title         string   `json:"title"`
	ActivityType  string   `json:"activity_type"`
	DistanceKm    float64  `json:"distance_km"`
	DurationSec   int      `json:"duration_sec"`
	ElevationGain *float64 `json:"elevation_gain,omitempty"`
	Weather       *string  `json:"weather,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`
	IsPublic      *bool    `json:"is_public,omitempty"`
	Coordinates   string   `json:"coordinates,omitempty"`
}

// Validate ensures request correctness.
func (r CreateActivityRequest) Validate() error {
	if r.UserID <= 0 {
		return errors.New("user_id is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(r.ActivityType) == "" {
		return errors.New("activity_type is required")
	}
	if r.DistanceKm < 0 {
		return errors.New("distance_km must be >= 0")
	}
	if r.DurationSec < 0 {
		return errors.New("duration_sec must be >= 0")
	}
	return nil
}

// CreatePostRequest is the payload for POST /v1/posts.
type CreatePostRequest struct {
	UserID     int64   `json:"user_id"`
	ActivityID *int64  `json:"activity_id,omitempty"`
	Content    string  `json:"content"`
	ImageURL   *string `json:"image_url,omitempty"`
}

// Validate ensures request correctness.
func (r CreatePostRequest) Validate() error {
	if r.UserID <= 0 {
		return errors.New("user_id is required")
	}
	if strings.TrimSpace(r.Content) == "" {
		return errors.New("content is required")
	}
	return nil
}

// LikeRequest is the payload for POST /v1/posts/{id}/likes.
type LikeRequest struct {
	UserID int64 `json:"user_id"`
}

// Validate ensures request correctness.
func (r LikeRequest) Validate() error {
	if r.UserID <= 0 {
		return errors.New("user_id is required")
	}
	return nil
}

// CommentRequest is the payload for POST /v1/posts/{id}/comments.
type CommentRequest struct {
	UserID  int64  `json:"user_id"`
	Content string `json:"content"`
}

// Validate ensures request correctness.
func (r CommentRequest) Validate() error {
	if r.UserID <= 0 {
		return errors.New("user_id is required")
	}
	if strings.TrimSpace(r.Content) == "" {
		return errors.New("content is required")
	}
	return nil
}

// UserView is the outward representation of a User. It never carries the
// password hash; redaction happens here, not in the store.
type UserView struct {
	ID             int64   `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	DailyWaterGoal int     `json:"daily_water_goal"`
}

// WaterView is the outward representation of a WaterIntake.
type WaterView struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	AmountMl   int       `json:"amount_ml"`
	RecordedAt time.Time `json:"recorded_at"`
}

// WaterListResponse packages water intake history.
type WaterListResponse struct {
	Items []WaterView `json:"items"`
}

// DailyWaterResponse packages one day's records and their total.
type DailyWaterResponse struct {
	Items   []WaterView `json:"items"`
	TotalMl int         `json:"total_ml"`
}

// ActivityView is the outward representation of an Activity.
type ActivityView struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Title         string    `json:"title"`
	ActivityType  string    `json:"activity_type"`
	DistanceKm    float64   `json:"distance_km"`
	DurationSec   int       `json:"duration_sec"`
	ElevationGain *float64  `json:"elevation_gain,omitempty"`
	Weather       *string   `json:"weather,omitempty"`
	Temperature   *float64  `json:"temperature,omitempty"`
	IsPublic      bool      `json:"is_public"`
	CreatedAt     time.Time `json:"created_at"`
}

// RouteView is the outward representation of a Route.
type RouteView struct {
	ID          int64  `json:"id"`
	ActivityID  int64  `json:"activity_id"`
	Coordinates string `json:"coordinates"`
}

// ActivityDetailResponse pairs an activity with its route, if any.
type ActivityDetailResponse struct {
	Activity ActivityView `json:"activity"`
	Route    *RouteView   `json:"route,omitempty"`
}

// ActivityListResponse packages activity lists.
type ActivityListResponse struct {
	Items []ActivityView `json:"items"`
}

// PostView is the outward representation of a Post.
type PostView struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	ActivityID *int64    `json:"activity_id,omitempty"`
	Content    string    `json:"content"`
	ImageURL   *string   `json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// PostListResponse packages post lists.
type PostListResponse struct {
	Items []PostView `json:"items"`
}

// LikeView is the outward representation of a Like.
type LikeView struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`
	PostID int64 `json:"post_id"`
}

// LikeListResponse packages like lists.
type LikeListResponse struct {
	Items []LikeView `json:"items"`
}

// CommentView is the outward representation of a Comment.
type CommentView struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	PostID    int64     `json:"post_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentListResponse packages comment lists.
type CommentListResponse struct {
	Items []CommentView `json:"items"`
}

// EngagementResponse merges a post's likes and comments.
type EngagementResponse struct {
	Likes    []LikeView    `json:"likes"`
	Comments []CommentView `json:"comments"`
}

func toUserView(user domain.User) UserView {
	return UserView{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		ProfilePicture: user.ProfilePicture,
		DailyWaterGoal: user.DailyWaterGoal,
	}
}

func toWaterView(record domain.WaterIntake) WaterView {
	return WaterView{
		ID:         record.ID,
		UserID:     record.UserID,
		AmountMl:   record.AmountMl,
		RecordedAt: record.RecordedAt,
	}
}

func toWaterViews(records []domain.WaterIntake) []WaterView {
	out := make([]WaterView, 0, len(records))
	for _, record := range records {
		out = append(out, toWaterView(record))
	}
	return out
}

func toActivityView(activity domain.Activity) ActivityView {
	return ActivityView{
		ID:            activity.ID,
		UserID:        activity.UserID,
		Title:         activity.Title,
		ActivityType:  activity.ActivityType,
		DistanceKm:    activity.DistanceKm,
		DurationSec:   activity.DurationSec,
		ElevationGain: activity.ElevationGain,
		Weather:       activity.Weather,
		Temperature:   activity.Temperature,
		IsPublic:      activity.IsPublic,
		CreatedAt:     activity.CreatedAt,
	}
}

func toActivityViews(activities []domain.Activity) []ActivityView {
	out := make([]ActivityView, 0, len(activities))
	for _, activity := range activities {
		out = append(out, toActivityView(activity))
	}
	return out
}

func toRouteView(route domain.Route) RouteView {
	return RouteView{
		ID:          route.ID,
		ActivityID:  route.ActivityID,
		Coordinates: route.Coordinates,
	}
}

func toPostView(post domain.Post) PostView {
	return PostView{
		ID:         post.ID,
		UserID:     post.UserID,
		ActivityID: post.ActivityID,
		Content:    post.Content,
		ImageURL:   post.ImageURL,
		CreatedAt:  post.CreatedAt,
	}
}

func toPostViews(posts []domain.Post) []PostView {
	out := make([]PostView, 0, len(posts))
	for _, post := range posts {
		out = append(out, toPostView(post))
	}
	return out
}

func toLikeView(like domain.Like) LikeView {
	return LikeView{ID: like.ID, UserID: like.UserID, PostID: like.PostID}
}

func toLikeViews(likes []domain.Like) []LikeView {
	out := make([]LikeView, 0, len(likes))
	for _, like := range likes {
		out = append(out, toLikeView(like))
	}
	return out
}

func toCommentView(comment domain.Comment) CommentView {
	return CommentView{
		ID:        comment.ID,
		UserID:    comment.UserID,
		PostID:    comment.PostID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
}

func toCommentViews(comments []domain.Comment) []CommentView {
	out := make([]CommentView, 0, len(comments))
	for _, comment := range comments {
		out = append(out, toCommentView(comment))
	}
	return out
}
