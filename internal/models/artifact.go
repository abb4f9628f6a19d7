package models

import (
	"time"

	"github.com/trendscout-agent/internal/platform"
)

// TopicCount is one entry of a topic frequency table
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// TopicTables holds the frequency-ranked topics mined from a full
// record collection (not just the outliers)
type TopicTables struct {
	Hashtags []TopicCount `json:"hashtags"`
	Keywords []TopicCount `json:"keywords"`
	Mentions []TopicCount `json:"mentions,omitempty"`
}

// PatternStat pairs an occurrence count with its share of the outlier
// set, as a percentage
type PatternStat struct {
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// ContentPatterns summarizes structural traits of the outlier posts:
// how many carry media or links, ask a question, use a list layout,
// and how their caption lengths distribute
type ContentPatterns struct {
	HasMedia   PatternStat            `json:"has_media"`
	HasLink    PatternStat            `json:"has_link"`
	Question   PatternStat            `json:"question"`
	ListFormat PatternStat            `json:"list_format"`
	Length     map[string]PatternStat `json:"length"`
}

// RunMetadata describes one fetch+analyze invocation. Created once per
// run and never mutated afterwards.
type RunMetadata struct {
	RunID               string            `json:"run_id"`
	Platform            platform.Platform `json:"platform"`
	GeneratedAt         time.Time         `json:"generated_at"`
	TotalRecords        int               `json:"total_records"`
	OutlierCount        int               `json:"outlier_count"`
	ThresholdMultiplier float64           `json:"threshold_multiplier"`
	Mean                float64           `json:"mean"`
	StdDev              float64           `json:"std_dev"`
	Threshold           float64           `json:"threshold"`
	// Degenerate is set when fewer than two records were present or
	// all rates were identical, so no outlier test could be applied
	Degenerate bool     `json:"degenerate,omitempty"`
	Accounts   []string `json:"accounts"`
}

// Artifact is the persisted result of one platform run: run metadata,
// topic tables and the ordered outlier records.
//
// Invariants: Outliers is a subset of the analyzed collection, sorted
// descending by engagement_score, and every member's engagement_rate
// strictly exceeds Metadata.Threshold unless the run was degenerate
// (in which case Outliers is empty).
type Artifact struct {
	Metadata RunMetadata      `json:"metadata"`
	Topics   TopicTables      `json:"topics"`
	Patterns *ContentPatterns `json:"content_patterns,omitempty"`
	Outliers []*Record        `json:"outliers"`
}
