package analysis

import (
	"github.com/trendscout-agent/internal/models"
	"github.com/trendscout-agent/internal/platform"
)

// Score computes the weighted engagement score of a record. Pure and
// total: counters the weight table does not mention, and counters the
// record does not carry, contribute nothing.
func Score(rec *models.Record, w platform.Weights) float64 {
	return float64(rec.Likes)*w.Likes +
		float64(rec.Comments)*w.Comments +
		float64(rec.Shares)*w.Shares +
		float64(rec.Saves)*w.Saves +
		float64(rec.Views)*w.Views +
		float64(rec.Retweets)*w.Retweets +
		float64(rec.Replies)*w.Replies +
		float64(rec.Quotes)*w.Quotes +
		float64(rec.Bookmarks)*w.Bookmarks
}

// Rate normalizes a score by the author's follower count, as a
// percentage. A missing or zero follower count is treated as 1, so the
// rate degenerates to score x100 - an approximation for zero-follower
// accounts, not a true per-capita rate.
func Rate(score float64, followers int64) float64 {
	if followers < 1 {
		followers = 1
	}
	return score / float64(followers) * 100
}

// Enrich fills in the two derived fields on every record using the
// profile's weight table. Records are modified in place and must not
// be mutated again afterwards.
func Enrich(records []*models.Record, prof platform.Profile) {
	for _, rec := range records {
		rec.EngagementScore = Score(rec, prof.Weights)
		rec.EngagementRate = Rate(rec.EngagementScore, rec.FollowerCount)
	}
}
