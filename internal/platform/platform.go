package platform

import "fmt"

// Platform identifies a supported social platform
type Platform string

const (
	X         Platform = "x"
	Instagram Platform = "instagram"
	TikTok    Platform = "tiktok"
	YouTube   Platform = "youtube"
)

// All lists every supported platform in a fixed order
var All = []Platform{X, Instagram, TikTok, YouTube}

// Parse converts a string into a Platform
func Parse(s string) (Platform, error) {
	switch Platform(s) {
	case X, Instagram, TikTok, YouTube:
		return Platform(s), nil
	case "twitter":
		return X, nil
	}
	return "", fmt.Errorf("unknown platform: %q", s)
}

// Weights holds the engagement weight per interaction type.
// A zero weight means the interaction does not exist on the platform.
type Weights struct {
	Likes     float64 `mapstructure:"likes" json:"likes"`
	Comments  float64 `mapstructure:"comments" json:"comments"`
	Shares    float64 `mapstructure:"shares" json:"shares"`
	Saves     float64 `mapstructure:"saves" json:"saves"`
	Views     float64 `mapstructure:"views" json:"views"`
	Retweets  float64 `mapstructure:"retweets" json:"retweets"`
	Replies   float64 `mapstructure:"replies" json:"replies"`
	Quotes    float64 `mapstructure:"quotes" json:"quotes"`
	Bookmarks float64 `mapstructure:"bookmarks" json:"bookmarks"`
}

// Profile describes how one platform's records are scored and mined.
// The analysis pipeline is generic; this record is the only place
// platform differences live.
type Profile struct {
	Platform Platform
	Weights  Weights
	// Ranked marks platforms whose candidates arrive pre-filtered
	// and are re-ranked instead of outlier-tested (YouTube).
	Ranked bool
}

// defaultProfiles encodes the shipped weight tables. Saves and bookmarks
// carry the strongest intent signal, passive likes the weakest.
var defaultProfiles = map[Platform]Profile{
	X: {
		Platform: X,
		Weights: Weights{
			Likes:     1,
			Retweets:  2,
			Replies:   3,
			Quotes:    2,
			Bookmarks: 4,
		},
	},
	Instagram: {
		Platform: Instagram,
		Weights: Weights{
			Likes:    1,
			Comments: 3,
			Views:    0.1,
		},
	},
	TikTok: {
		Platform: TikTok,
		Weights: Weights{
			Likes:    1,
			Comments: 3,
			Shares:   2,
			Saves:    2,
			Views:    0.05,
		},
	},
	YouTube: {
		Platform: YouTube,
		Ranked:   true,
	},
}

// DefaultProfile returns the shipped profile for a platform
func DefaultProfile(p Platform) Profile {
	return defaultProfiles[p]
}

// Profiles returns the shipped profiles with per-platform weight
// overrides applied. An override replaces the whole weight table for
// that platform so retuning one platform never disturbs the others.
func Profiles(overrides map[Platform]Weights) map[Platform]Profile {
	out := make(map[Platform]Profile, len(defaultProfiles))
	for p, prof := range defaultProfiles {
		if w, ok := overrides[p]; ok {
			prof.Weights = w
		}
		out[p] = prof
	}
	return out
}
