package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Platform
		wantErr bool
	}{
		{input: "x", want: X},
		{input: "twitter", want: X},
		{input: "instagram", want: Instagram},
		{input: "tiktok", want: TikTok},
		{input: "youtube", want: YouTube},
		{input: "facebook", wantErr: true},
		{input: "", wantErr: true},
		{input: "X", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultProfileWeights(t *testing.T) {
	x := DefaultProfile(X)
	assert.Equal(t, 1.0, x.Weights.Likes)
	assert.Equal(t, 2.0, x.Weights.Retweets)
	assert.Equal(t, 3.0, x.Weights.Replies)
	assert.Equal(t, 2.0, x.Weights.Quotes)
	assert.Equal(t, 4.0, x.Weights.Bookmarks)
	assert.Zero(t, x.Weights.Views, "views do not score on X")
	assert.False(t, x.Ranked)

	ig := DefaultProfile(Instagram)
	assert.Equal(t, 3.0, ig.Weights.Comments)
	assert.Equal(t, 0.1, ig.Weights.Views)

	tk := DefaultProfile(TikTok)
	assert.Equal(t, 2.0, tk.Weights.Shares)
	assert.Equal(t, 2.0, tk.Weights.Saves)
	assert.Equal(t, 0.05, tk.Weights.Views)

	yt := DefaultProfile(YouTube)
	assert.True(t, yt.Ranked, "youtube candidates are re-ranked, not weighted")
}

func TestProfilesOverrideReplacesWholeTable(t *testing.T) {
	profiles := Profiles(map[Platform]Weights{
		Instagram: {Likes: 2},
	})

	// The override replaces every weight, not just the one it names
	ig := profiles[Instagram]
	assert.Equal(t, 2.0, ig.Weights.Likes)
	assert.Zero(t, ig.Weights.Comments)
	assert.Zero(t, ig.Weights.Views)

	// Other platforms keep their defaults
	assert.Equal(t, 4.0, profiles[X].Weights.Bookmarks)
	assert.True(t, profiles[YouTube].Ranked)
}

func TestProfilesCoversAllPlatforms(t *testing.T) {
	profiles := Profiles(nil)
	for _, p := range All {
		prof, ok := profiles[p]
		assert.True(t, ok, "missing profile for %s", p)
		assert.Equal(t, p, prof.Platform)
	}
}
