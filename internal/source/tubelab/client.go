package tubelab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/trendscout-agent/internal/config"
	"github.com/trendscout-agent/internal/models"
	"github.com/trendscout-agent/internal/platform"
	"github.com/trendscout-agent/pkg/logger"
	"github.com/trendscout-agent/pkg/ratelimit"
)

// Client talks to the TubeLab API, which returns pre-filtered YouTube
// outlier candidates per channel. Candidates are re-ranked downstream,
// not re-tested.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *ratelimit.MultiLimiter
	log         *logger.Logger
}

// NewClient creates a new TubeLab client
func NewClient(cfg config.TubeLabConfig, limiter *ratelimit.MultiLimiter, log *logger.Logger) *Client {
	return &Client{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		rateLimiter: limiter,
		log:         log.WithComponent("tubelab"),
	}
}

// outlierVideo is the wire shape of one TubeLab candidate
type outlierVideo struct {
	VideoID      string    `json:"video_id"`
	Title        string    `json:"title"`
	ChannelTitle string    `json:"channel_title"`
	ViewCount    int64     `json:"view_count"`
	LikeCount    int64     `json:"like_count"`
	CommentCount int64     `json:"comment_count"`
	Subscribers  int64     `json:"subscribers"`
	PublishedAt  time.Time `json:"published_at"`
	Tags         []string  `json:"tags"`
}

// channelStats is the wire shape of TubeLab channel statistics
type channelStats struct {
	ChannelID   string  `json:"channel_id"`
	AvgViews    float64 `json:"avg_views"`
	StdDevViews float64 `json:"std_dev_views"`
	VideoCount  int     `json:"video_count"`
	Subscribers int64   `json:"subscribers"`
}

// ChannelStats holds a channel's view distribution, feeding the
// z-score ranker
type ChannelStats struct {
	ChannelID   string
	AvgViews    float64
	StdDevViews float64
	Subscribers int64
}

// Name returns the source name
func (c *Client) Name() string { return "tubelab" }

// Platform returns youtube
func (c *Client) Platform() platform.Platform { return platform.YouTube }

// Fetch retrieves outlier candidates for the given channels
func (c *Client) Fetch(ctx context.Context, channels []string, days, limit int) ([]*models.Record, error) {
	var records []*models.Record

	for _, channel := range channels {
		videos, err := c.channelOutliers(ctx, channel, days, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch outliers for channel %s: %w", channel, err)
		}

		for _, v := range videos {
			records = append(records, &models.Record{
				Platform:      platform.YouTube,
				URL:           "https://www.youtube.com/watch?v=" + v.VideoID,
				Author:        v.ChannelTitle,
				FollowerCount: v.Subscribers,
				Caption:       v.Title,
				Hashtags:      v.Tags,
				PublishedAt:   v.PublishedAt,
				Views:         v.ViewCount,
				Likes:         v.LikeCount,
				Comments:      v.CommentCount,
			})
		}
	}

	c.log.Info().
		Int("channels", len(channels)).
		Int("records", len(records)).
		Msg("Fetched outlier candidates")

	return records, nil
}

func (c *Client) channelOutliers(ctx context.Context, channel string, days, limit int) ([]outlierVideo, error) {
	var out struct {
		Videos []outlierVideo `json:"videos"`
	}
	endpoint := fmt.Sprintf("%s/channels/%s/outliers?days=%d&limit=%d",
		c.baseURL, url.PathEscape(channel), days, limit)
	if err := c.getJSON(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	return out.Videos, nil
}

// GetChannelStats retrieves a channel's view average and deviation
func (c *Client) GetChannelStats(ctx context.Context, channel string) (*ChannelStats, error) {
	var out channelStats
	endpoint := fmt.Sprintf("%s/channels/%s/stats", c.baseURL, url.PathEscape(channel))
	if err := c.getJSON(ctx, endpoint, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch channel stats for %s: %w", channel, err)
	}
	return &ChannelStats{
		ChannelID:   out.ChannelID,
		AvgViews:    out.AvgViews,
		StdDevViews: out.StdDevViews,
		Subscribers: out.Subscribers,
	}, nil
}

// ChannelViewStats returns just the view distribution, for rankers
// that only need the z-score baseline
func (c *Client) ChannelViewStats(ctx context.Context, channel string) (avg, stdDev float64, err error) {
	stats, err := c.GetChannelStats(ctx, channel)
	if err != nil {
		return 0, 0, err
	}
	return stats.AvgViews, stats.StdDevViews, nil
}

// HealthCheck verifies the API accepts the configured key
func (c *Client) HealthCheck(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	return c.getJSON(ctx, c.baseURL+"/ping", &out)
}

func (c *Client) getJSON(ctx context.Context, endpoint string, v interface{}) error {
	if err := c.rateLimiter.Wait(ctx, ratelimit.LimiterTubeLab); err != nil {
		return fmt.Errorf("rate limit error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tubelab request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read tubelab response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tubelab returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode tubelab response: %w", err)
	}
	return nil
}
