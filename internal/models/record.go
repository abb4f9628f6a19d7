package models

import (
	"time"

	"github.com/trendscout-agent/internal/platform"
)

// JSON is a custom type for carrying arbitrary JSON data, such as the
// original scraper payload a record was built from
type JSON map[string]interface{}

// Record represents one fetched post or video with its platform-native
// engagement counters. Counters the platform does not have stay zero;
// missing or null fields in the source payload decode to zero as well.
//
// A record is immutable after fetch except for the two derived fields,
// which the analysis pipeline fills in exactly once.
type Record struct {
	Platform      platform.Platform `json:"platform"`
	URL           string            `json:"url"`
	Author        string            `json:"author"`
	FollowerCount int64             `json:"follower_count"`
	Caption       string            `json:"caption"`
	Hashtags      []string          `json:"hashtags,omitempty"`
	PublishedAt   time.Time         `json:"published_at"`

	Likes     int64 `json:"likes"`
	Comments  int64 `json:"comments"`
	Shares    int64 `json:"shares"`
	Saves     int64 `json:"saves"`
	Views     int64 `json:"views"`
	Retweets  int64 `json:"retweets"`
	Replies   int64 `json:"replies"`
	Quotes    int64 `json:"quotes"`
	Bookmarks int64 `json:"bookmarks"`

	RawData JSON `json:"raw_data,omitempty"`

	// Derived fields, set by the analysis pipeline
	EngagementScore float64 `json:"engagement_score"`
	EngagementRate  float64 `json:"engagement_rate"`

	// VideoAnalysis is attached to outlier video records by the AI
	// collaborator; the pipeline passes it through untouched
	VideoAnalysis *VideoAnalysis `json:"video_analysis,omitempty"`
}

// IsVideo reports whether the record points at playable video content
func (r *Record) IsVideo() bool {
	switch r.Platform {
	case platform.TikTok, platform.YouTube:
		return true
	}
	return r.Views > 0
}

// VideoAnalysis is the structured result of the AI video-content
// analysis collaborator. Its internals are not validated here.
type VideoAnalysis struct {
	Hook             string `json:"hook"`
	ContentStructure string `json:"content_structure"`
	DeliveryStyle    string `json:"delivery_style"`
	CTA              string `json:"cta"`
}
