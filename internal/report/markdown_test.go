package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trendscout-agent/internal/models"
	"github.com/trendscout-agent/internal/platform"
)

func TestRenderArtifact(t *testing.T) {
	artifact := &models.Artifact{
		Metadata: models.RunMetadata{
			RunID:               "run-1",
			Platform:            platform.TikTok,
			GeneratedAt:         time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC),
			TotalRecords:        40,
			OutlierCount:        1,
			ThresholdMultiplier: 2,
			Mean:                2.5,
			StdDev:              1.2,
			Threshold:           4.9,
			Accounts:            []string{"creator"},
		},
		Topics: models.TopicTables{
			Hashtags: []models.TopicCount{{Topic: "productivity", Count: 7}},
			Mentions: []models.TopicCount{{Topic: "mkbhd", Count: 2}},
		},
		Patterns: &models.ContentPatterns{
			HasMedia:   models.PatternStat{Count: 1, Percent: 100},
			ListFormat: models.PatternStat{Count: 1, Percent: 100},
			Length: map[string]models.PatternStat{
				"short": {Count: 1, Percent: 100},
			},
		},
		Outliers: []*models.Record{
			{
				URL:             "https://www.tiktok.com/@creator/video/1",
				Author:          "creator",
				EngagementScore: 1560,
				EngagementRate:  5.2,
				VideoAnalysis: &models.VideoAnalysis{
					Hook:             "bold claim in first second",
					ContentStructure: "list of three tips",
					DeliveryStyle:    "fast cuts, on-screen text",
					CTA:              "asks viewers to comment",
				},
			},
		},
	}

	md := RenderArtifact(artifact)

	assert.Contains(t, md, "# TIKTOK outlier report")
	assert.Contains(t, md, "Records analyzed: 40")
	assert.Contains(t, md, "Threshold: 4.9000")
	assert.Contains(t, md, "https://www.tiktok.com/@creator/video/1")
	assert.Contains(t, md, "bold claim in first second")
	assert.Contains(t, md, "| productivity | 7 |")
	assert.Contains(t, md, "## Top mentions")
	assert.Contains(t, md, "| mkbhd | 2 |")
	assert.Contains(t, md, "## Content patterns")
	assert.Contains(t, md, "- Has media: 1 (100%)")
	assert.Contains(t, md, "- Length: short: 1 (100%)")
	assert.NotContains(t, md, "## Top keywords", "empty tables are omitted")
}

func TestRenderArtifactDegenerate(t *testing.T) {
	artifact := &models.Artifact{
		Metadata: models.RunMetadata{
			Platform:            platform.X,
			TotalRecords:        1,
			ThresholdMultiplier: 2,
			Degenerate:          true,
		},
	}

	md := RenderArtifact(artifact)

	assert.Contains(t, md, "outlier test was not applicable")
	assert.NotContains(t, md, "## Outliers")
	assert.NotContains(t, md, "## Content patterns")
}

func TestRenderPlan(t *testing.T) {
	plan := &models.ContentPlan{
		PlanID:      "plan-1",
		GeneratedAt: time.Date(2026, 8, 1, 7, 30, 0, 0, time.UTC),
		Platforms:   []platform.Platform{platform.Instagram, platform.TikTok},
		Entries: []models.OpportunityEntry{
			{
				Topic:            "desksetup",
				SourcePlatform:   platform.TikTok,
				SourceEngagement: 8,
				Opportunity:      12,
				ExampleURL:       "https://www.tiktok.com/@creator/video/2",
			},
		},
	}

	md := RenderPlan(plan)

	assert.Contains(t, md, "instagram, tiktok")
	assert.Contains(t, md, "| 1 | desksetup | tiktok | 8.0 | 12.00 |")
}

func TestRenderPlanEmpty(t *testing.T) {
	plan := &models.ContentPlan{GeneratedAt: time.Now()}
	assert.Contains(t, RenderPlan(plan), "No opportunities found")
}
