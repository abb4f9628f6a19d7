package models

import (
	"time"

	"github.com/trendscout-agent/internal/platform"
)

// OpportunityEntry is one cross-platform content idea produced by the
// planner: a topic that performed on one platform, scored against how
// saturated it already is everywhere else. Immutable once computed.
type OpportunityEntry struct {
	Topic          string            `json:"topic"`
	SourcePlatform platform.Platform `json:"source_platform"`
	// SourceEngagement is the 0-10 percentile rank of the topic's best
	// outlier within its platform's outlier pool
	SourceEngagement float64                       `json:"source_engagement"`
	Saturation       map[platform.Platform]float64 `json:"saturation"`
	Opportunity      float64                       `json:"opportunity"`
	ExampleURL       string                        `json:"example_url,omitempty"`
}

// ContentPlan is the persisted output of one planner run
type ContentPlan struct {
	PlanID      string              `json:"plan_id"`
	GeneratedAt time.Time           `json:"generated_at"`
	Platforms   []platform.Platform `json:"platforms"`
	Entries     []OpportunityEntry  `json:"entries"`
}
