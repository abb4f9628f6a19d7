package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendscout-agent/internal/models"
)

func TestChannelZScore(t *testing.T) {
	assert.InDelta(t, 2.0, ChannelZScore(30000, 10000, 10000), 1e-9)
	assert.InDelta(t, -0.5, ChannelZScore(5000, 10000, 10000), 1e-9)

	// zero or undefined channel stddev must not fault
	assert.Zero(t, ChannelZScore(30000, 10000, 0))
	assert.Zero(t, ChannelZScore(30000, 10000, -1))
}

func TestRecencyBoost(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	assert.InDelta(t, 1.0, RecencyBoost(now, now), 1e-9)
	assert.InDelta(t, 0.95, RecencyBoost(now.AddDate(0, 0, -1), now), 1e-9)
	assert.InDelta(t, math.Pow(0.95, 10), RecencyBoost(now.AddDate(0, 0, -10), now), 1e-9)

	// decay floors at 0.3, so old outperformers are never zeroed out
	assert.InDelta(t, 0.3, RecencyBoost(now.AddDate(-2, 0, 0), now), 1e-9)

	// future timestamps clamp to no decay
	assert.InDelta(t, 1.0, RecencyBoost(now.AddDate(0, 0, 3), now), 1e-9)
}

func TestRankVideos(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("recent_video_outranks_equal_z_score", func(t *testing.T) {
		old := &models.Record{URL: "old", Views: 30000, PublishedAt: now.AddDate(0, 0, -30)}
		fresh := &models.Record{URL: "fresh", Views: 30000, PublishedAt: now.AddDate(0, 0, -2)}

		ranked := RankVideos([]*models.Record{old, fresh}, 10000, 10000, now)
		require.Len(t, ranked, 2)
		assert.Equal(t, "fresh", ranked[0].URL)
		assert.Equal(t, "old", ranked[1].URL)
	})

	t.Run("higher_z_score_wins_at_equal_age", func(t *testing.T) {
		low := &models.Record{URL: "low", Views: 12000, PublishedAt: now.AddDate(0, 0, -1)}
		high := &models.Record{URL: "high", Views: 90000, PublishedAt: now.AddDate(0, 0, -1)}

		ranked := RankVideos([]*models.Record{low, high}, 10000, 10000, now)
		assert.Equal(t, "high", ranked[0].URL)
	})

	t.Run("zero_channel_stddev_keeps_input_order", func(t *testing.T) {
		a := &models.Record{URL: "a", Views: 500, PublishedAt: now}
		b := &models.Record{URL: "b", Views: 900000, PublishedAt: now}

		ranked := RankVideos([]*models.Record{a, b}, 10000, 0, now)
		assert.Equal(t, "a", ranked[0].URL)
		assert.Equal(t, "b", ranked[1].URL)
	})
}

func TestChannelViewStats(t *testing.T) {
	avg, stdDev := ChannelViewStats([]int64{10000, 20000, 30000})
	assert.InDelta(t, 20000, avg, 1e-9)
	assert.InDelta(t, 10000, stdDev, 1e-9)

	avg, stdDev = ChannelViewStats([]int64{5000})
	assert.InDelta(t, 5000, avg, 1e-9)
	assert.Zero(t, stdDev)

	avg, stdDev = ChannelViewStats(nil)
	assert.Zero(t, avg)
	assert.Zero(t, stdDev)
}
