package analysis

import (
	"strings"

	"github.com/trendscout-agent/internal/models"
)

// Caption length buckets, in runes
const (
	lengthShortMax  = 100
	lengthMediumMax = 500
)

// DetectPatterns summarizes structural traits of the outlier set: media
// and link presence, question and list formatting, and caption length
// distribution. Returns nil for an empty set so degenerate artifacts
// omit the block entirely.
func DetectPatterns(outliers []*models.Record) *models.ContentPatterns {
	if len(outliers) == 0 {
		return nil
	}

	var media, link, question, list int
	lengths := map[string]int{}

	for _, rec := range outliers {
		if rec.IsVideo() {
			media++
		}
		caption := rec.Caption
		lower := strings.ToLower(caption)
		if strings.Contains(lower, "http://") || strings.Contains(lower, "https://") {
			link++
		}
		if strings.Contains(caption, "?") {
			question++
		}
		if isListFormat(caption) {
			list++
		}
		lengths[lengthBucket(caption)]++
	}

	n := len(outliers)
	patterns := &models.ContentPatterns{
		HasMedia:   patternStat(media, n),
		HasLink:    patternStat(link, n),
		Question:   patternStat(question, n),
		ListFormat: patternStat(list, n),
		Length:     map[string]models.PatternStat{},
	}
	for bucket, count := range lengths {
		patterns.Length[bucket] = patternStat(count, n)
	}
	return patterns
}

func patternStat(count, total int) models.PatternStat {
	return models.PatternStat{
		Count:   count,
		Percent: float64(count) / float64(total) * 100,
	}
}

// isListFormat reports whether a caption reads as a list: at least two
// lines opening with a bullet or an enumerator
func isListFormat(caption string) bool {
	listLines := 0
	for _, line := range strings.Split(caption, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "•") || strings.HasPrefix(trimmed, "*") {
			listLines++
			continue
		}
		if len(trimmed) >= 2 && trimmed[0] >= '1' && trimmed[0] <= '9' &&
			(trimmed[1] == '.' || trimmed[1] == ')') {
			listLines++
		}
	}
	return listLines >= 2
}

func lengthBucket(caption string) string {
	switch n := len([]rune(caption)); {
	case n <= lengthShortMax:
		return "short"
	case n <= lengthMediumMax:
		return "medium"
	default:
		return "long"
	}
}
