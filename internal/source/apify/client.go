package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/trendscout-agent/internal/config"
	"github.com/trendscout-agent/pkg/logger"
	"github.com/trendscout-agent/pkg/ratelimit"
)

// Client is a minimal Apify API client: it starts an actor run
// synchronously and returns the dataset items the run produced.
type Client struct {
	baseURL     string
	token       string
	httpClient  *http.Client
	rateLimiter *ratelimit.MultiLimiter
	log         *logger.Logger
}

// NewClient creates a new Apify client
func NewClient(cfg config.ApifyConfig, limiter *ratelimit.MultiLimiter, log *logger.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 2 * time.Minute
	}

	return &Client{
		baseURL:     cfg.BaseURL,
		token:       cfg.Token,
		httpClient:  &http.Client{Timeout: timeout},
		rateLimiter: limiter,
		log:         log.WithComponent("apify"),
	}
}

// RunActor runs an actor with the given input and decodes each dataset
// item the run produced into a raw JSON map
func (c *Client) RunActor(ctx context.Context, actor string, input map[string]interface{}) ([]map[string]interface{}, error) {
	if err := c.rateLimiter.Wait(ctx, ratelimit.LimiterApify); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal actor input: %w", err)
	}

	// Actor names use ~ as the owner separator in run endpoints
	endpoint := fmt.Sprintf("%s/acts/%s/run-sync-get-dataset-items?token=%s",
		c.baseURL, url.PathEscape(actorPath(actor)), url.QueryEscape(c.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug().
		Str("actor", actor).
		Msg("Starting actor run")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("actor run failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read actor response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Error().
			Str("actor", actor).
			Int("status", resp.StatusCode).
			Msg("Actor run returned error status")
		return nil, fmt.Errorf("actor %s returned status %d", actor, resp.StatusCode)
	}

	var items []map[string]interface{}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode dataset items: %w", err)
	}

	c.log.Debug().
		Str("actor", actor).
		Int("items", len(items)).
		Msg("Actor run completed")

	return items, nil
}

// HealthCheck verifies the API accepts the configured token
func (c *Client) HealthCheck(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/users/me?token=%s", c.baseURL, url.QueryEscape(c.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("apify unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("apify auth check returned status %d", resp.StatusCode)
	}
	return nil
}

// actorPath converts "owner/actor" into the "owner~actor" form run
// endpoints expect
func actorPath(actor string) string {
	out := []byte(actor)
	for i, b := range out {
		if b == '/' {
			out[i] = '~'
		}
	}
	return string(out)
}
