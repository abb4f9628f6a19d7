package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/trendscout-agent/internal/models"
)

// Stats summarizes the engagement-rate distribution one detection ran
// over
type Stats struct {
	Mean      float64
	StdDev    float64
	Threshold float64
	// Degenerate is set when the collection was too small (n < 2) or
	// all rates were identical (stddev 0), so the mean+k*sigma test
	// could not separate anything. No record is flagged in that case.
	Degenerate bool
}

// Detect partitions records into outliers and the rest using a
// mean + k*stddev threshold over engagement_rate. Standard deviation is
// the sample (n-1) form. A record is an outlier when its rate strictly
// exceeds the threshold.
//
// Outliers come back sorted descending by engagement_score; ties keep
// their input order so repeated runs are byte-identical. The input
// slice is not reordered.
//
// k must be finite; zero or negative values are allowed and simply
// flag more records.
func Detect(records []*models.Record, k float64) ([]*models.Record, Stats, error) {
	if math.IsNaN(k) || math.IsInf(k, 0) {
		return nil, Stats{}, fmt.Errorf("threshold multiplier must be finite, got %v", k)
	}

	n := len(records)
	if n < 2 {
		return nil, Stats{Degenerate: true}, nil
	}

	var sum float64
	for _, rec := range records {
		sum += rec.EngagementRate
	}
	mean := sum / float64(n)

	var sqSum float64
	for _, rec := range records {
		d := rec.EngagementRate - mean
		sqSum += d * d
	}
	stdDev := math.Sqrt(sqSum / float64(n-1))

	if stdDev == 0 {
		return nil, Stats{Mean: mean, Degenerate: true}, nil
	}

	threshold := mean + k*stdDev
	stats := Stats{Mean: mean, StdDev: stdDev, Threshold: threshold}

	var outliers []*models.Record
	for _, rec := range records {
		if rec.EngagementRate > threshold {
			outliers = append(outliers, rec)
		}
	}

	sort.SliceStable(outliers, func(i, j int) bool {
		return outliers[i].EngagementScore > outliers[j].EngagementScore
	})

	return outliers, stats, nil
}
