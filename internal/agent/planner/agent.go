package planner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trendscout-agent/internal/agent/analyzer"
	"github.com/trendscout-agent/internal/analysis"
	"github.com/trendscout-agent/internal/models"
	"github.com/trendscout-agent/internal/platform"
	"github.com/trendscout-agent/internal/storage"
	"github.com/trendscout-agent/pkg/logger"
)

// Agent aggregates per-platform run artifacts into a cross-platform
// content plan ranked by opportunity score
type Agent struct {
	analyzer *analyzer.Agent
	store    *storage.Store
	log      *logger.Logger
}

// NewAgent creates a new planner agent
func NewAgent(analyzerAgent *analyzer.Agent, store *storage.Store, log *logger.Logger) *Agent {
	return &Agent{
		analyzer: analyzerAgent,
		store:    store,
		log:      log.WithComponent("planner"),
	}
}

// RunAll fans the analyzer out over the given platforms concurrently.
// Pipelines share no state, so the only synchronization is the join:
// aggregation must not start until every pipeline has finished.
func (a *Agent) RunAll(ctx context.Context, optsByPlatform map[platform.Platform]analyzer.Options) ([]*analyzer.Result, []error) {
	type outcome struct {
		result *analyzer.Result
		err    error
	}

	results := make(chan outcome, len(optsByPlatform))

	for _, opts := range optsByPlatform {
		go func(opts analyzer.Options) {
			result, err := a.analyzer.Run(ctx, opts)
			results <- outcome{result: result, err: err}
		}(opts)
	}

	var completed []*analyzer.Result
	var errors []error

	for range optsByPlatform {
		o := <-results
		if o.err != nil {
			errors = append(errors, o.err)
		} else {
			completed = append(completed, o.result)
		}
	}

	return completed, errors
}

// Plan loads the latest artifact per platform and computes the
// cross-platform opportunity ranking
func (a *Agent) Plan(ctx context.Context) (*models.ContentPlan, error) {
	artifacts := make(map[platform.Platform]*models.Artifact)
	for _, p := range platform.All {
		art, err := a.store.Latest(p)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s artifact: %w", p, err)
		}
		if art != nil {
			artifacts[p] = art
		}
	}

	if len(artifacts) == 0 {
		return nil, fmt.Errorf("no run artifacts found; run an analysis first")
	}

	plan := BuildPlan(artifacts)

	a.log.Info().
		Int("platforms", len(artifacts)).
		Int("entries", len(plan.Entries)).
		Msg("Content plan computed")

	if _, err := a.store.SavePlan(plan); err != nil {
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}

	return plan, nil
}

// BuildPlan turns per-platform artifacts into an opportunity-ranked
// plan. Pure: callers own artifact loading and persistence.
func BuildPlan(artifacts map[platform.Platform]*models.Artifact) *models.ContentPlan {
	plan := &models.ContentPlan{
		PlanID:      uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
	}

	// fixed platform order keeps plans reproducible
	for _, p := range platform.All {
		if _, ok := artifacts[p]; ok {
			plan.Platforms = append(plan.Platforms, p)
		}
	}

	for _, p := range plan.Platforms {
		art := artifacts[p]
		pool := ratePool(art)

		for _, tc := range candidateTopics(art) {
			best, ok := bestOutlierRate(art, tc.Topic)
			if !ok {
				// topic never backed by an outlier on its own platform
				continue
			}

			saturation := make(map[platform.Platform]float64)
			flat := make(map[string]float64)
			for _, other := range plan.Platforms {
				if other == p {
					continue
				}
				level := analysis.SaturationLevel(topicMatches(artifacts[other], tc.Topic))
				saturation[other] = level
				flat[string(other)] = level
			}

			engagement := analysis.NormalizeEngagement(best, pool)
			plan.Entries = append(plan.Entries, models.OpportunityEntry{
				Topic:            tc.Topic,
				SourcePlatform:   p,
				SourceEngagement: engagement,
				Saturation:       saturation,
				Opportunity:      analysis.Opportunity(engagement, flat),
				ExampleURL:       bestOutlierURL(art, tc.Topic),
			})
		}
	}

	sort.SliceStable(plan.Entries, func(i, j int) bool {
		return plan.Entries[i].Opportunity > plan.Entries[j].Opportunity
	})

	return plan
}

// candidateTopics merges a platform's hashtag and keyword tables,
// keeping table order and skipping duplicates
func candidateTopics(art *models.Artifact) []models.TopicCount {
	seen := make(map[string]bool)
	var out []models.TopicCount
	for _, tc := range append(append([]models.TopicCount{}, art.Topics.Hashtags...), art.Topics.Keywords...) {
		if seen[tc.Topic] {
			continue
		}
		seen[tc.Topic] = true
		out = append(out, tc)
	}
	return out
}

func ratePool(art *models.Artifact) []float64 {
	pool := make([]float64, len(art.Outliers))
	for i, rec := range art.Outliers {
		pool[i] = rec.EngagementRate
	}
	return pool
}

// bestOutlierRate finds the highest engagement rate among outliers
// mentioning the topic
func bestOutlierRate(art *models.Artifact, topic string) (float64, bool) {
	best, found := 0.0, false
	for _, rec := range art.Outliers {
		if recordMentions(rec, topic) && (!found || rec.EngagementRate > best) {
			best, found = rec.EngagementRate, true
		}
	}
	return best, found
}

func bestOutlierURL(art *models.Artifact, topic string) string {
	url, best := "", -1.0
	for _, rec := range art.Outliers {
		if recordMentions(rec, topic) && rec.EngagementRate > best {
			url, best = rec.URL, rec.EngagementRate
		}
	}
	return url
}

func recordMentions(rec *models.Record, topic string) bool {
	for _, h := range rec.Hashtags {
		if strings.EqualFold(strings.TrimPrefix(h, "#"), topic) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(rec.Caption), topic)
}

// topicMatches counts how often a topic shows up in another platform's
// frequency tables, driving its saturation level there
func topicMatches(art *models.Artifact, topic string) int {
	if art == nil {
		return 0
	}
	matches := 0
	for _, tc := range art.Topics.Hashtags {
		if tc.Topic == topic {
			matches += tc.Count
		}
	}
	for _, tc := range art.Topics.Keywords {
		if tc.Topic == topic {
			matches += tc.Count
		}
	}
	return matches
}
