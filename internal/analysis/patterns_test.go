package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendscout-agent/internal/models"
	"github.com/trendscout-agent/internal/platform"
)

func TestDetectPatterns(t *testing.T) {
	outliers := []*models.Record{
		{
			Platform: platform.TikTok,
			Caption:  "3 tools I use daily:\n1. Notion\n2. Obsidian\n3. Raycast",
		},
		{
			Platform: platform.X,
			Caption: "Why do most launches fail? Full thread: https://example.com/post " +
				strings.Repeat("every takeaway written out in detail ", 5),
		},
		{
			Platform: platform.X,
			Caption:  strings.Repeat("a very long breakdown ", 30),
		},
		{
			Platform: platform.Instagram,
			Caption:  "behind the scenes",
			Views:    1200,
		},
	}

	patterns := DetectPatterns(outliers)
	require.NotNil(t, patterns)

	// TikTok records and anything with views count as media
	assert.Equal(t, models.PatternStat{Count: 2, Percent: 50}, patterns.HasMedia)
	assert.Equal(t, models.PatternStat{Count: 1, Percent: 25}, patterns.HasLink)
	assert.Equal(t, models.PatternStat{Count: 1, Percent: 25}, patterns.Question)
	assert.Equal(t, models.PatternStat{Count: 1, Percent: 25}, patterns.ListFormat)

	assert.Equal(t, 2, patterns.Length["short"].Count)
	assert.Equal(t, 1, patterns.Length["medium"].Count)
	assert.Equal(t, 1, patterns.Length["long"].Count)
}

func TestDetectPatternsEmptySet(t *testing.T) {
	assert.Nil(t, DetectPatterns(nil))
	assert.Nil(t, DetectPatterns([]*models.Record{}))
}

func TestIsListFormat(t *testing.T) {
	tests := []struct {
		name    string
		caption string
		want    bool
	}{
		{"numbered", "my stack:\n1. Go\n2. Postgres", true},
		{"bulleted", "- fast\n- cheap\n- reliable", true},
		{"single_item", "1. only one line", false},
		{"prose", "just a normal caption about work", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isListFormat(tt.caption))
		})
	}
}
