package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trendscout-agent/internal/analysis"
	"github.com/trendscout-agent/internal/models"
	"github.com/trendscout-agent/internal/platform"
	"github.com/trendscout-agent/internal/source"
	"github.com/trendscout-agent/internal/storage"
	"github.com/trendscout-agent/pkg/logger"
)

// VideoAnalyzer is the AI collaborator contract: given an outlier
// video record, return the structured content breakdown
type VideoAnalyzer interface {
	AnalyzeVideo(ctx context.Context, rec *models.Record) (*models.VideoAnalysis, error)
}

// ChannelStats supplies a channel's view average and deviation for the
// YouTube ranker
type ChannelStats interface {
	ChannelViewStats(ctx context.Context, channel string) (avg, stdDev float64, err error)
}

// Agent runs one platform's fetch+analyze pipeline and writes the run
// artifact. All four platforms go through the same pipeline; the
// profile carries the differences.
type Agent struct {
	sources      *source.Manager
	profiles     map[platform.Platform]platform.Profile
	store        *storage.Store
	ai           VideoAnalyzer // optional
	channelStats ChannelStats  // optional, youtube only
	maxAnalyses  int
	log          *logger.Logger
}

// NewAgent creates a new analyzer agent
func NewAgent(
	sources *source.Manager,
	profiles map[platform.Platform]platform.Profile,
	store *storage.Store,
	log *logger.Logger,
) *Agent {
	return &Agent{
		sources:     sources,
		profiles:    profiles,
		store:       store,
		maxAnalyses: 10,
		log:         log.WithComponent("analyzer"),
	}
}

// SetVideoAnalyzer enables AI content analysis of top outlier videos
func (a *Agent) SetVideoAnalyzer(ai VideoAnalyzer, maxAnalyses int) {
	a.ai = ai
	if maxAnalyses > 0 {
		a.maxAnalyses = maxAnalyses
	}
}

// SetChannelStats supplies channel view statistics for YouTube runs
func (a *Agent) SetChannelStats(cs ChannelStats) {
	a.channelStats = cs
}

// Options control one run
type Options struct {
	Platform  platform.Platform
	Accounts  []string
	Threshold float64 // threshold multiplier k
	Days      int
	Limit     int
	// Input skips the network fetch and analyzes an already-fetched
	// record collection instead
	Input string
	// Output overrides the artifact path inside the runs directory
	Output string
}

// Result contains the results of one run
type Result struct {
	RunID        string
	Platform     platform.Platform
	RecordsFound int
	Analyzed     int
	Outliers     int
	Degenerate   bool
	ArtifactPath string
	Duration     time.Duration
	Errors       []error
}

// Run executes the pipeline: fetch, dedupe, enrich, detect outliers,
// extract topics, analyze top videos, write the artifact. A degenerate
// run still writes an explicit empty-outliers artifact; fatal errors
// abort before anything is written.
func (a *Agent) Run(ctx context.Context, opts Options) (*Result, error) {
	startTime := time.Now()
	runID := uuid.NewString()
	log := a.log.WithPlatform(string(opts.Platform)).WithRunID(runID)

	result := &Result{RunID: runID, Platform: opts.Platform}

	prof, ok := a.profiles[opts.Platform]
	if !ok {
		return nil, fmt.Errorf("no profile for platform %s", opts.Platform)
	}

	records, err := a.loadRecords(ctx, opts, log)
	if err != nil {
		return nil, err
	}
	result.RecordsFound = len(records)

	records = source.Dedupe(records)
	result.Analyzed = len(records)

	log.Info().
		Int("records_found", result.RecordsFound).
		Int("records_analyzed", result.Analyzed).
		Msg("Fetched records")

	artifact := &models.Artifact{
		Metadata: models.RunMetadata{
			RunID:               runID,
			Platform:            opts.Platform,
			GeneratedAt:         time.Now().UTC(),
			TotalRecords:        len(records),
			ThresholdMultiplier: opts.Threshold,
			Accounts:            opts.Accounts,
		},
	}

	var outliers []*models.Record
	if prof.Ranked {
		outliers, err = a.rankYouTube(ctx, records, artifact, log)
		if err != nil {
			return nil, err
		}
	} else {
		analysis.Enrich(records, prof)

		detected, stats, err := analysis.Detect(records, opts.Threshold)
		if err != nil {
			return nil, fmt.Errorf("outlier detection failed: %w", err)
		}

		artifact.Metadata.Mean = stats.Mean
		artifact.Metadata.StdDev = stats.StdDev
		artifact.Metadata.Threshold = stats.Threshold
		artifact.Metadata.Degenerate = stats.Degenerate
		outliers = detected

		if stats.Degenerate {
			log.Warn().
				Int("records", len(records)).
				Msg("Degenerate statistics: outlier test not applicable, emitting empty result")
		}
	}

	artifact.Topics = analysis.ExtractTopics(records)
	artifact.Patterns = analysis.DetectPatterns(outliers)
	artifact.Outliers = outliers
	artifact.Metadata.OutlierCount = len(outliers)
	result.Outliers = len(outliers)
	result.Degenerate = artifact.Metadata.Degenerate

	// AI content analysis for a bounded subset of outlier videos
	if a.ai != nil {
		result.Errors = append(result.Errors, a.analyzeVideos(ctx, outliers, log)...)
	}

	path, err := a.saveArtifact(artifact, opts.Output)
	if err != nil {
		return nil, err
	}
	result.ArtifactPath = path
	result.Duration = time.Since(startTime)

	log.Info().
		Int("outliers", result.Outliers).
		Bool("degenerate", result.Degenerate).
		Str("artifact", path).
		Dur("duration", result.Duration).
		Msg("Run completed")

	return result, nil
}

func (a *Agent) loadRecords(ctx context.Context, opts Options, log *logger.Logger) ([]*models.Record, error) {
	if opts.Input != "" {
		log.Info().Str("input", opts.Input).Msg("Analyzing pre-fetched records")
		return storage.LoadRecords(opts.Input)
	}

	src := a.sources.ForPlatform(opts.Platform)
	if src == nil {
		return nil, fmt.Errorf("no source registered for platform %s", opts.Platform)
	}

	records, err := src.Fetch(ctx, opts.Accounts, opts.Days, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	return records, nil
}

// rankYouTube re-ranks pre-filtered candidates by channel z-score and
// recency instead of running the outlier test
func (a *Agent) rankYouTube(ctx context.Context, records []*models.Record, artifact *models.Artifact, log *logger.Logger) ([]*models.Record, error) {
	now := time.Now()

	// Channel view distribution: per-account stats when a provider is
	// wired, otherwise derived from the fetched collection itself
	avg, stdDev := a.channelDistribution(ctx, artifact.Metadata.Accounts, records, log)

	artifact.Metadata.Mean = avg
	artifact.Metadata.StdDev = stdDev
	if stdDev == 0 {
		artifact.Metadata.Degenerate = true
	}

	ranked := analysis.RankVideos(records, avg, stdDev, now)

	for _, rec := range ranked {
		z := analysis.ChannelZScore(rec.Views, avg, stdDev)
		rec.EngagementScore = z * analysis.RecencyBoost(rec.PublishedAt, now)
		rec.EngagementRate = analysis.Rate(float64(rec.Views), rec.FollowerCount)
	}

	return ranked, nil
}

func (a *Agent) channelDistribution(ctx context.Context, accounts []string, records []*models.Record, log *logger.Logger) (avg, stdDev float64) {
	if a.channelStats != nil && len(accounts) == 1 {
		avg, stdDev, err := a.channelStats.ChannelViewStats(ctx, accounts[0])
		if err == nil {
			return avg, stdDev
		}
		log.Warn().Err(err).Msg("Channel stats unavailable, deriving from fetched records")
	}

	views := make([]int64, len(records))
	for i, rec := range records {
		views[i] = rec.Views
	}
	return analysis.ChannelViewStats(views)
}

func (a *Agent) analyzeVideos(ctx context.Context, outliers []*models.Record, log *logger.Logger) []error {
	var errors []error
	analyzed := 0

	for _, rec := range outliers {
		if analyzed >= a.maxAnalyses {
			break
		}
		if !rec.IsVideo() {
			continue
		}

		va, err := a.ai.AnalyzeVideo(ctx, rec)
		if err != nil {
			log.Warn().
				Err(err).
				Str("url", rec.URL).
				Msg("Failed to analyze video, skipping")
			errors = append(errors, fmt.Errorf("video analysis failed for %s: %w", rec.URL, err))
			continue
		}

		rec.VideoAnalysis = va
		analyzed++
	}

	log.Info().Int("videos_analyzed", analyzed).Msg("Video analysis completed")
	return errors
}

func (a *Agent) saveArtifact(artifact *models.Artifact, output string) (string, error) {
	if output != "" {
		if err := a.store.SaveArtifactAs(artifact, output); err != nil {
			return "", err
		}
		return output, nil
	}
	return a.store.SaveArtifact(artifact)
}
