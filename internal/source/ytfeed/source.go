package ytfeed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"github.com/trendscout-agent/internal/models"
	"github.com/trendscout-agent/internal/platform"
	"github.com/trendscout-agent/pkg/logger"
	"github.com/trendscout-agent/pkg/ratelimit"
)

// feedURL is YouTube's credential-free per-channel uploads feed
const feedURL = "https://www.youtube.com/feeds/videos.xml?channel_id=%s"

// Source lists a channel's recent uploads from its RSS feed. It needs
// no API key, which makes it the fallback when TubeLab is not
// configured; view counts come from the media extension's statistics.
type Source struct {
	parser      *gofeed.Parser
	rateLimiter *ratelimit.MultiLimiter
	log         *logger.Logger
}

// New creates a new channel-feed source
func New(limiter *ratelimit.MultiLimiter, log *logger.Logger) *Source {
	return &Source{
		parser:      gofeed.NewParser(),
		rateLimiter: limiter,
		log:         log.WithSource("ytfeed", "uploads"),
	}
}

// Name returns the source name
func (s *Source) Name() string { return "ytfeed" }

// Platform returns youtube
func (s *Source) Platform() platform.Platform { return platform.YouTube }

// HealthCheck is a no-op; feeds are fetched lazily per channel
func (s *Source) HealthCheck(ctx context.Context) error { return nil }

// Fetch lists recent uploads for each channel ID, keeping items inside
// the day window
func (s *Source) Fetch(ctx context.Context, channels []string, days, limit int) ([]*models.Record, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	var records []*models.Record

	for _, channel := range channels {
		if err := s.rateLimiter.Wait(ctx, ratelimit.LimiterFeed); err != nil {
			return nil, fmt.Errorf("rate limit error: %w", err)
		}

		feed, err := s.parser.ParseURLWithContext(fmt.Sprintf(feedURL, channel), ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to parse uploads feed for %s: %w", channel, err)
		}

		for _, item := range feed.Items {
			publishedAt := time.Now()
			if item.PublishedParsed != nil {
				publishedAt = *item.PublishedParsed
				if publishedAt.Before(cutoff) {
					continue
				}
			}

			records = append(records, &models.Record{
				Platform:    platform.YouTube,
				URL:         item.Link,
				Author:      feed.Title,
				Caption:     item.Title,
				PublishedAt: publishedAt,
				Views:       mediaViews(item),
			})

			if limit > 0 && len(records) >= limit {
				break
			}
		}

		if limit > 0 && len(records) >= limit {
			break
		}
	}

	s.log.Info().
		Int("channels", len(channels)).
		Int("records", len(records)).
		Msg("Fetched channel uploads")

	return records, nil
}

// mediaViews digs the view count out of the media:group statistics
// extension YouTube feeds carry
func mediaViews(item *gofeed.Item) int64 {
	group := extension(item.Extensions, "media", "group")
	if group == nil {
		return 0
	}
	community := childExtension(group.Children, "community")
	if community == nil {
		return 0
	}
	statistics := childExtension(community.Children, "statistics")
	if statistics == nil {
		return 0
	}

	var views int64
	fmt.Sscanf(statistics.Attrs["views"], "%d", &views)
	return views
}

func extension(exts map[string]map[string][]ext.Extension, ns, name string) *ext.Extension {
	group, ok := exts[ns]
	if !ok {
		return nil
	}
	return childExtension(group, name)
}

func childExtension(children map[string][]ext.Extension, name string) *ext.Extension {
	list := children[name]
	if len(list) == 0 {
		return nil
	}
	return &list[0]
}

// ChannelIDFromURL extracts a channel ID from a channel URL, or
// returns the input unchanged when it already looks like an ID
func ChannelIDFromURL(s string) string {
	if idx := strings.Index(s, "/channel/"); idx >= 0 {
		return strings.TrimSuffix(s[idx+len("/channel/"):], "/")
	}
	return s
}
