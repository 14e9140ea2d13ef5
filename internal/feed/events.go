// Package feed publishes activity and post events for downstream feed
// consumers. Publishing is optional: without configured brokers the service
// runs with the no-op publisher.
package feed

import "time"

// Topics carrying feed events, one per event type.
const (
	TopicActivityCreated = "activity_feed"
	TopicPostCreated     = "post_feed"
)

// ActivityCreatedEvent is the payload emitted when an activity is recorded.
type ActivityCreatedEvent struct {
	EventID      string    `json:"event_id"`
	ActivityID   int64     `json:"activity_id"`
	UserID       int64     `json:"user_id"`
	Title        string    `json:"title"`
	ActivityType string    `json:"activity_type"`
	DistanceKm   float64   `json:"distance_km"`
	DurationSec  int       `json:"duration_sec"`
	IsPublic     bool      `json:"is_public"`
	CreatedAt    time.Time `json:"created_at"`
}

// PostCreatedEvent is the payload emitted when a post is shared.
type PostCreatedEvent struct {
	EventID    string    `json:"event_id"`
	PostID     int64     `json:"post_id"`
	UserID     int64     `json:"user_id"`
	ActivityID *int64    `json:"activity_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
