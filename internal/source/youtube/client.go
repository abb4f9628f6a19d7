package youtube

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/trendscout-agent/internal/analysis"
	"github.com/trendscout-agent/internal/config"
	"github.com/trendscout-agent/pkg/logger"
	"github.com/trendscout-agent/pkg/ratelimit"
)

// Client wraps the YouTube Data API for channel view statistics. It
// exists to compute the channel average and deviation the ranker
// needs when TubeLab stats are unavailable.
type Client struct {
	service     *yt.Service
	maxUploads  int64
	rateLimiter *ratelimit.MultiLimiter
	log         *logger.Logger
}

// NewClient creates a new YouTube Data API client
func NewClient(ctx context.Context, cfg config.YouTubeConfig, limiter *ratelimit.MultiLimiter, log *logger.Logger) (*Client, error) {
	service, err := yt.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}

	maxUploads := int64(cfg.MaxUploads)
	if maxUploads <= 0 {
		maxUploads = 15
	}

	return &Client{
		service:     service,
		maxUploads:  maxUploads,
		rateLimiter: limiter,
		log:         log.WithComponent("youtube"),
	}, nil
}

// ChannelViewStats computes the average and sample deviation of view
// counts across a channel's most recent uploads
func (c *Client) ChannelViewStats(ctx context.Context, channelID string) (avg, stdDev float64, err error) {
	if err := c.rateLimiter.Wait(ctx, ratelimit.LimiterYouTube); err != nil {
		return 0, 0, fmt.Errorf("rate limit error: %w", err)
	}

	// The uploads playlist shares the channel ID with a UU prefix
	uploads := "UU" + trimChannelPrefix(channelID)

	playlistResp, err := c.service.PlaylistItems.List([]string{"contentDetails"}).
		PlaylistId(uploads).
		MaxResults(c.maxUploads).
		Context(ctx).
		Do()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list uploads for %s: %w", channelID, err)
	}

	ids := make([]string, 0, len(playlistResp.Items))
	for _, item := range playlistResp.Items {
		ids = append(ids, item.ContentDetails.VideoId)
	}
	if len(ids) == 0 {
		return 0, 0, nil
	}

	if err := c.rateLimiter.Wait(ctx, ratelimit.LimiterYouTube); err != nil {
		return 0, 0, fmt.Errorf("rate limit error: %w", err)
	}

	videosResp, err := c.service.Videos.List([]string{"statistics"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to fetch video statistics: %w", err)
	}

	views := make([]int64, 0, len(videosResp.Items))
	for _, v := range videosResp.Items {
		if v.Statistics != nil {
			views = append(views, int64(v.Statistics.ViewCount))
		}
	}

	avg, stdDev = analysis.ChannelViewStats(views)

	c.log.Debug().
		Str("channel", channelID).
		Int("videos", len(views)).
		Float64("avg_views", avg).
		Msg("Computed channel view stats")

	return avg, stdDev, nil
}

// trimChannelPrefix strips the UC prefix from a canonical channel ID
func trimChannelPrefix(channelID string) string {
	if len(channelID) > 2 && channelID[:2] == "UC" {
		return channelID[2:]
	}
	return channelID
}
