package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activityPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fittrack",
		Subsystem: "store",
		Name:      "last_activity_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity written to Postgres.",
	})
	postsCreatedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fittrack",
		Subsystem: "store",
		Name:      "posts_created_total",
		Help:      "Number of posts written to Postgres.",
	})
	feedPublishFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fittrack",
		Subsystem: "feed",
		Name:      "publish_failures_total",
		Help:      "Number of feed events that could not be published.",
	})
)

func init() {
	prometheus.MustRegister(activityPersistGauge, postsCreatedCounter, feedPublishFailures)
}

// RecordActivityPersisted updates the persistence watermark gauge.
func RecordActivityPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	activityPersistGauge.Set(float64(ts.Unix()))
}

// RecordPostCreated increments the post creation counter.
func RecordPostCreated() {
	postsCreatedCounter.Inc()
}

// RecordFeedPublishFailure increments the feed failure counter.
func RecordFeedPublishFailure() {
	feedPublishFailures.Inc()
}
