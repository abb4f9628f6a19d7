package apify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendscout-agent/internal/config"
	"github.com/trendscout-agent/internal/platform"
	"github.com/trendscout-agent/pkg/logger"
	"github.com/trendscout-agent/pkg/ratelimit"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	limiter := ratelimit.NewMultiLimiter()
	limiter.AddLimiter(ratelimit.LimiterApify, 1000, 1000)

	return NewClient(config.ApifyConfig{
		BaseURL: srv.URL,
		Token:   "test-token",
	}, limiter, logger.Default())
}

func TestFetchNormalizesTikTokItems(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{
				"webVideoUrl": "https://www.tiktok.com/@maker/video/1",
				"text": "morning routine #productivity",
				"createTimeISO": "2026-07-20T08:00:00Z",
				"diggCount": 1000,
				"commentCount": 50,
				"shareCount": 30,
				"collectCount": 20,
				"playCount": 100000,
				"hashtags": [{"name": "productivity"}, {"name": "routine"}],
				"authorMeta": {"name": "maker", "fans": 25000}
			},
			{
				"webVideoUrl": "https://www.tiktok.com/@maker/video/2"
			},
			{
				"text": "no url, dropped"
			}
		]`))
	})

	src := NewTikTok(config.ApifyConfig{TikTokActor: "clockworks/tiktok-scraper"}, client, logger.Default())
	require.Equal(t, platform.TikTok, src.Platform())

	records, err := src.Fetch(context.Background(), []string{"maker"}, 30, 100)
	require.NoError(t, err)
	require.Len(t, records, 2)

	rec := records[0]
	assert.Equal(t, platform.TikTok, rec.Platform)
	assert.Equal(t, "maker", rec.Author)
	assert.EqualValues(t, 25000, rec.FollowerCount)
	assert.EqualValues(t, 1000, rec.Likes)
	assert.EqualValues(t, 50, rec.Comments)
	assert.EqualValues(t, 30, rec.Shares)
	assert.EqualValues(t, 20, rec.Saves)
	assert.EqualValues(t, 100000, rec.Views)
	assert.Equal(t, []string{"productivity", "routine"}, rec.Hashtags)
	assert.NotNil(t, rec.RawData)

	// missing fields default to zero, not an error
	sparse := records[1]
	assert.Zero(t, sparse.Likes)
	assert.Zero(t, sparse.FollowerCount)
	assert.True(t, sparse.PublishedAt.IsZero())
}

func TestFetchNormalizesXItems(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{
				"url": "https://x.com/someone/status/1",
				"text": "shipping beats planning",
				"createdAt": "2026-07-21T10:00:00Z",
				"likeCount": 100,
				"retweetCount": 10,
				"replyCount": 5,
				"quoteCount": 2,
				"bookmarkCount": 3,
				"author": {"userName": "someone", "followers": 10000}
			}
		]`))
	})

	src := NewX(config.ApifyConfig{XActor: "apidojo/tweet-scraper"}, client, logger.Default())

	records, err := src.Fetch(context.Background(), []string{"someone"}, 7, 50)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "someone", rec.Author)
	assert.EqualValues(t, 100, rec.Likes)
	assert.EqualValues(t, 10, rec.Retweets)
	assert.EqualValues(t, 5, rec.Replies)
	assert.EqualValues(t, 2, rec.Quotes)
	assert.EqualValues(t, 3, rec.Bookmarks)
	assert.EqualValues(t, 10000, rec.FollowerCount)
}

func TestRunActorErrorStatus(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"actor not found"}`, http.StatusNotFound)
	})

	_, err := client.RunActor(context.Background(), "missing/actor", nil)
	assert.Error(t, err)
}

func TestActorPath(t *testing.T) {
	assert.Equal(t, "clockworks~tiktok-scraper", actorPath("clockworks/tiktok-scraper"))
	assert.Equal(t, "plain", actorPath("plain"))
}
