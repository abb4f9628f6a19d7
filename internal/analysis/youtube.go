package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/trendscout-agent/internal/models"
)

// recencyFloor keeps very old outperforming videos from decaying to
// nothing
const recencyFloor = 0.3

// RecencyBoost returns the multiplicative decay factor for a publish
// time: 5% off per elapsed day, floored at 0.3
func RecencyBoost(publishedAt, now time.Time) float64 {
	days := now.Sub(publishedAt).Hours() / 24
	if days < 0 {
		days = 0
	}
	return math.Max(recencyFloor, math.Pow(0.95, days))
}

// ChannelZScore expresses a view count in standard deviations from the
// channel average. A zero or undefined channel stddev yields 0 rather
// than a division fault.
func ChannelZScore(views int64, channelAvg, channelStdDev float64) float64 {
	if channelStdDev <= 0 {
		return 0
	}
	return (float64(views) - channelAvg) / channelStdDev
}

// RankVideos orders candidate videos by z-score x recency boost,
// descending, ties keeping input order. The upstream collaborator has
// already pre-filtered candidates; this only re-ranks, it does not
// independently flag outliers.
func RankVideos(videos []*models.Record, channelAvg, channelStdDev float64, now time.Time) []*models.Record {
	type ranked struct {
		rec *models.Record
		key float64
	}

	out := make([]ranked, len(videos))
	for i, v := range videos {
		z := ChannelZScore(v.Views, channelAvg, channelStdDev)
		out[i] = ranked{rec: v, key: z * RecencyBoost(v.PublishedAt, now)}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].key > out[j].key
	})

	result := make([]*models.Record, len(out))
	for i, r := range out {
		result[i] = r.rec
	}
	return result
}

// ChannelViewStats computes the average and sample standard deviation
// of view counts across a channel's recent uploads, feeding RankVideos.
// Fewer than two videos yields a zero stddev.
func ChannelViewStats(views []int64) (avg, stdDev float64) {
	n := len(views)
	if n == 0 {
		return 0, 0
	}

	var sum float64
	for _, v := range views {
		sum += float64(v)
	}
	avg = sum / float64(n)

	if n < 2 {
		return avg, 0
	}

	var sqSum float64
	for _, v := range views {
		d := float64(v) - avg
		sqSum += d * d
	}
	return avg, math.Sqrt(sqSum / float64(n-1))
}
