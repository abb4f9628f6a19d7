package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendscout-agent/internal/models"
	"github.com/trendscout-agent/internal/platform"
	"github.com/trendscout-agent/internal/source"
	"github.com/trendscout-agent/internal/storage"
	"github.com/trendscout-agent/pkg/logger"
)

type fakeSource struct {
	platform platform.Platform
	records  []*models.Record
	err      error
}

func (s *fakeSource) Name() string                { return "fake-" + string(s.platform) }
func (s *fakeSource) Platform() platform.Platform { return s.platform }

func (s *fakeSource) Fetch(ctx context.Context, accounts []string, days, limit int) ([]*models.Record, error) {
	return s.records, s.err
}

func (s *fakeSource) HealthCheck(ctx context.Context) error { return nil }

func newTestAgent(t *testing.T, src source.RecordSource) (*Agent, *storage.Store) {
	t.Helper()

	store, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)

	sources := source.NewManager()
	if src != nil {
		sources.Register(src)
	}

	log := logger.New(logger.Config{Level: "error", Format: "json", Output: "stdout"})
	return NewAgent(sources, platform.Profiles(nil), store, log), store
}

func tiktokRecord(n int, likes int64) *models.Record {
	return &models.Record{
		Platform:      platform.TikTok,
		URL:           fmt.Sprintf("https://www.tiktok.com/@creator/video/%d", n),
		Author:        "creator",
		FollowerCount: 1000,
		Caption:       "daily vlog",
		Likes:         likes,
	}
}

func TestRunDetectsOutliers(t *testing.T) {
	// Likes-only scores over 1000 followers give rates 1,2,1,2,50
	records := []*models.Record{
		tiktokRecord(1, 10),
		tiktokRecord(2, 20),
		tiktokRecord(3, 10),
		tiktokRecord(4, 20),
		tiktokRecord(5, 500),
	}
	records[4].Caption = "my #productivity desk setup"
	records[4].Hashtags = []string{"productivity"}

	// A refetched duplicate must not skew the statistics
	dup := tiktokRecord(5, 500)
	records = append(records, dup)

	agent, store := newTestAgent(t, &fakeSource{platform: platform.TikTok, records: records})

	result, err := agent.Run(context.Background(), Options{
		Platform:  platform.TikTok,
		Accounts:  []string{"creator"},
		Threshold: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, 6, result.RecordsFound)
	assert.Equal(t, 5, result.Analyzed)
	assert.Equal(t, 1, result.Outliers)
	assert.False(t, result.Degenerate)
	assert.Empty(t, result.Errors)
	assert.NotEmpty(t, result.RunID)

	artifact, err := store.LoadArtifact(result.ArtifactPath)
	require.NoError(t, err)

	require.Len(t, artifact.Outliers, 1)
	assert.Equal(t, records[4].URL, artifact.Outliers[0].URL)
	assert.InDelta(t, 500.0, artifact.Outliers[0].EngagementScore, 1e-9)
	assert.InDelta(t, 50.0, artifact.Outliers[0].EngagementRate, 1e-9)

	md := artifact.Metadata
	assert.Equal(t, platform.TikTok, md.Platform)
	assert.Equal(t, 5, md.TotalRecords)
	assert.Equal(t, 1, md.OutlierCount)
	assert.InDelta(t, 11.2, md.Mean, 1e-9)
	assert.Greater(t, md.Threshold, md.Mean)

	// Topics come from the full collection, not just the outliers
	require.NotEmpty(t, artifact.Topics.Hashtags)
	assert.Equal(t, "productivity", artifact.Topics.Hashtags[0].Topic)

	// Content patterns summarize the outlier set only
	require.NotNil(t, artifact.Patterns)
	assert.Equal(t, 1, artifact.Patterns.HasMedia.Count)
	assert.InDelta(t, 100.0, artifact.Patterns.HasMedia.Percent, 1e-9)
}

func TestRunDegenerateWritesEmptyArtifact(t *testing.T) {
	records := []*models.Record{
		tiktokRecord(1, 10),
		tiktokRecord(2, 10),
		tiktokRecord(3, 10),
	}

	agent, store := newTestAgent(t, &fakeSource{platform: platform.TikTok, records: records})

	result, err := agent.Run(context.Background(), Options{
		Platform:  platform.TikTok,
		Threshold: 2,
	})
	require.NoError(t, err, "degenerate statistics are a flagged result, not an error")

	assert.True(t, result.Degenerate)
	assert.Zero(t, result.Outliers)

	artifact, err := store.LoadArtifact(result.ArtifactPath)
	require.NoError(t, err)
	assert.True(t, artifact.Metadata.Degenerate)
	assert.Empty(t, artifact.Outliers)
	assert.Nil(t, artifact.Patterns)
}

func TestRunFetchErrorAbortsBeforeWriting(t *testing.T) {
	agent, store := newTestAgent(t, &fakeSource{
		platform: platform.TikTok,
		err:      fmt.Errorf("actor timed out"),
	})

	_, err := agent.Run(context.Background(), Options{Platform: platform.TikTok, Threshold: 2})
	require.Error(t, err)

	paths, err := store.List(platform.TikTok)
	require.NoError(t, err)
	assert.Empty(t, paths, "no artifact on a failed run")
}

func TestRunNoSourceRegistered(t *testing.T) {
	agent, _ := newTestAgent(t, nil)

	_, err := agent.Run(context.Background(), Options{Platform: platform.Instagram, Threshold: 2})
	assert.Error(t, err)
}

func TestRunFromInputFile(t *testing.T) {
	records := []*models.Record{
		tiktokRecord(1, 10),
		tiktokRecord(2, 20),
		tiktokRecord(3, 10),
		tiktokRecord(4, 20),
		tiktokRecord(5, 500),
	}
	data, err := json.Marshal(records)
	require.NoError(t, err)

	input := filepath.Join(t.TempDir(), "collection.json")
	require.NoError(t, os.WriteFile(input, data, 0o644))

	// No source registered: an input run must never touch the network
	agent, _ := newTestAgent(t, nil)

	result, err := agent.Run(context.Background(), Options{
		Platform:  platform.TikTok,
		Threshold: 1,
		Input:     input,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Analyzed)
	assert.Equal(t, 1, result.Outliers)
}

func TestRunOutputOverride(t *testing.T) {
	records := []*models.Record{
		tiktokRecord(1, 10),
		tiktokRecord(2, 20),
	}

	agent, store := newTestAgent(t, &fakeSource{platform: platform.TikTok, records: records})

	output := filepath.Join(t.TempDir(), "custom.json")
	result, err := agent.Run(context.Background(), Options{
		Platform:  platform.TikTok,
		Threshold: 2,
		Output:    output,
	})
	require.NoError(t, err)
	assert.Equal(t, output, result.ArtifactPath)

	artifact, err := store.LoadArtifact(output)
	require.NoError(t, err)
	assert.Equal(t, platform.TikTok, artifact.Metadata.Platform)
}

type fakeChannelStats struct {
	avg    float64
	stdDev float64
}

func (f *fakeChannelStats) ChannelViewStats(ctx context.Context, channel string) (float64, float64, error) {
	return f.avg, f.stdDev, nil
}

func TestRunYouTubeRanksByZScoreAndRecency(t *testing.T) {
	now := time.Now().UTC()
	records := []*models.Record{
		{
			Platform:      platform.YouTube,
			URL:           "https://www.youtube.com/watch?v=mid",
			Author:        "channel",
			FollowerCount: 10000,
			Views:         30000,
			PublishedAt:   now,
		},
		{
			Platform:      platform.YouTube,
			URL:           "https://www.youtube.com/watch?v=big",
			Author:        "channel",
			FollowerCount: 10000,
			Views:         50000,
			PublishedAt:   now,
		},
	}

	agent, store := newTestAgent(t, &fakeSource{platform: platform.YouTube, records: records})
	agent.SetChannelStats(&fakeChannelStats{avg: 10000, stdDev: 5000})

	result, err := agent.Run(context.Background(), Options{
		Platform: platform.YouTube,
		Accounts: []string{"UC123"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Outliers)

	artifact, err := store.LoadArtifact(result.ArtifactPath)
	require.NoError(t, err)

	require.Len(t, artifact.Outliers, 2)
	assert.Equal(t, "https://www.youtube.com/watch?v=big", artifact.Outliers[0].URL)
	// z=8 at (near) full recency for a just-published video
	assert.InDelta(t, 8.0, artifact.Outliers[0].EngagementScore, 0.01)
	assert.InDelta(t, 500.0, artifact.Outliers[0].EngagementRate, 1e-9)

	assert.InDelta(t, 10000, artifact.Metadata.Mean, 1e-9)
	assert.InDelta(t, 5000, artifact.Metadata.StdDev, 1e-9)
}
