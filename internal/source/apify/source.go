package apify

import (
	"context"
	"fmt"
	"time"

	"github.com/trendscout-agent/internal/config"
	"github.com/trendscout-agent/internal/models"
	"github.com/trendscout-agent/internal/platform"
	"github.com/trendscout-agent/pkg/logger"
)

// normalizeFunc converts one raw dataset item into a Record. Missing
// or null fields become zero values.
type normalizeFunc func(item map[string]interface{}) *models.Record

// inputFunc builds the actor input for a set of accounts
type inputFunc func(accounts []string, days, limit int) map[string]interface{}

// Source implements source.RecordSource on top of one Apify actor.
// The three scraper platforms differ only in actor, input shape and
// field naming, captured by the two funcs.
type Source struct {
	name      string
	platform  platform.Platform
	actor     string
	client    *Client
	input     inputFunc
	normalize normalizeFunc
	log       *logger.Logger
}

// Name returns the source name
func (s *Source) Name() string { return s.name }

// Platform returns the platform this source fetches for
func (s *Source) Platform() platform.Platform { return s.platform }

// HealthCheck verifies the Apify API is reachable
func (s *Source) HealthCheck(ctx context.Context) error {
	return s.client.HealthCheck(ctx)
}

// Fetch runs the actor for the given accounts and normalizes its
// dataset into records
func (s *Source) Fetch(ctx context.Context, accounts []string, days, limit int) ([]*models.Record, error) {
	s.log.Debug().
		Strs("accounts", accounts).
		Int("days", days).
		Int("limit", limit).
		Msg("Fetching records")

	items, err := s.client.RunActor(ctx, s.actor, s.input(accounts, days, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s records: %w", s.platform, err)
	}

	records := make([]*models.Record, 0, len(items))
	for _, item := range items {
		rec := s.normalize(item)
		if rec.URL == "" {
			continue
		}
		rec.Platform = s.platform
		rec.RawData = item
		records = append(records, rec)
	}

	s.log.Info().
		Int("items", len(items)).
		Int("records", len(records)).
		Msg("Fetched records")

	return records, nil
}

// NewX creates the X/Twitter scraper source
func NewX(cfg config.ApifyConfig, client *Client, log *logger.Logger) *Source {
	return &Source{
		name:     "apify-x",
		platform: platform.X,
		actor:    cfg.XActor,
		client:   client,
		log:      log.WithSource("apify", "x"),
		input: func(accounts []string, days, limit int) map[string]interface{} {
			return map[string]interface{}{
				"twitterHandles": accounts,
				"maxItems":       limit,
				"start":          time.Now().AddDate(0, 0, -days).Format("2006-01-02"),
			}
		},
		normalize: func(item map[string]interface{}) *models.Record {
			author, _ := item["author"].(map[string]interface{})
			return &models.Record{
				URL:           str(item, "url"),
				Author:        str(author, "userName"),
				FollowerCount: num(author, "followers"),
				Caption:       str(item, "text"),
				PublishedAt:   timestamp(item, "createdAt"),
				Likes:         num(item, "likeCount"),
				Retweets:      num(item, "retweetCount"),
				Replies:       num(item, "replyCount"),
				Quotes:        num(item, "quoteCount"),
				Bookmarks:     num(item, "bookmarkCount"),
				Views:         num(item, "viewCount"),
			}
		},
	}
}

// NewInstagram creates the Instagram scraper source
func NewInstagram(cfg config.ApifyConfig, client *Client, log *logger.Logger) *Source {
	return &Source{
		name:     "apify-instagram",
		platform: platform.Instagram,
		actor:    cfg.InstagramActor,
		client:   client,
		log:      log.WithSource("apify", "instagram"),
		input: func(accounts []string, days, limit int) map[string]interface{} {
			return map[string]interface{}{
				"username":           accounts,
				"resultsLimit":       limit,
				"onlyPostsNewerThan": time.Now().AddDate(0, 0, -days).Format("2006-01-02"),
			}
		},
		normalize: func(item map[string]interface{}) *models.Record {
			return &models.Record{
				URL:           str(item, "url"),
				Author:        str(item, "ownerUsername"),
				FollowerCount: num(item, "ownerFollowersCount"),
				Caption:       str(item, "caption"),
				Hashtags:      strs(item, "hashtags"),
				PublishedAt:   timestamp(item, "timestamp"),
				Likes:         num(item, "likesCount"),
				Comments:      num(item, "commentsCount"),
				Views:         num(item, "videoPlayCount"),
			}
		},
	}
}

// NewTikTok creates the TikTok scraper source
func NewTikTok(cfg config.ApifyConfig, client *Client, log *logger.Logger) *Source {
	return &Source{
		name:     "apify-tiktok",
		platform: platform.TikTok,
		actor:    cfg.TikTokActor,
		client:   client,
		log:      log.WithSource("apify", "tiktok"),
		input: func(accounts []string, days, limit int) map[string]interface{} {
			return map[string]interface{}{
				"profiles":              accounts,
				"resultsPerPage":        limit,
				"oldestPostDateUnified": fmt.Sprintf("%d days", days),
			}
		},
		normalize: func(item map[string]interface{}) *models.Record {
			authorMeta, _ := item["authorMeta"].(map[string]interface{})
			return &models.Record{
				URL:           str(item, "webVideoUrl"),
				Author:        str(authorMeta, "name"),
				FollowerCount: num(authorMeta, "fans"),
				Caption:       str(item, "text"),
				Hashtags:      hashtagNames(item),
				PublishedAt:   timestamp(item, "createTimeISO"),
				Likes:         num(item, "diggCount"),
				Comments:      num(item, "commentCount"),
				Shares:        num(item, "shareCount"),
				Saves:         num(item, "collectCount"),
				Views:         num(item, "playCount"),
			}
		},
	}
}

// str reads a string field, empty when missing or not a string
func str(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// num reads a numeric field, zero when missing. JSON numbers decode as
// float64; some actors emit counts as strings, which are ignored.
func num(m map[string]interface{}, key string) int64 {
	if m == nil {
		return 0
	}
	f, _ := m[key].(float64)
	return int64(f)
}

// strs reads a string-array field
func strs(m map[string]interface{}, key string) []string {
	raw, _ := m[key].([]interface{})
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// hashtagNames reads the TikTok hashtags array of {name: ...} objects
func hashtagNames(m map[string]interface{}) []string {
	raw, _ := m["hashtags"].([]interface{})
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if obj, ok := v.(map[string]interface{}); ok {
			if name := str(obj, "name"); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

// timestamp parses an RFC3339 or date-only field, zero time when absent
func timestamp(m map[string]interface{}, key string) time.Time {
	s := str(m, key)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
