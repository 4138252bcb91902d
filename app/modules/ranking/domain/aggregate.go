package rankingdomain

import (
	"sort"
	"time"
)

const (
	// topWeightedSlice is how many of a player's best scores feed the
	// weighted accuracy and weighted rank statistics.
	topWeightedSlice = 100
	// recentDeviceSlice is how many recent scores vote on the most-used
	// platform and headset.
	recentDeviceSlice = 50
	// missingRankPlaceholder backfills the weighted-rank statistic for slots
	// beyond a player's real scores, so players with very few scores do not
	// get an unbounded advantage.
	missingRankPlaceholder = 10
)

// EligibleScore is one score as the aggregator sees it: already filtered for
// validity (valid-for-general, owner not banned unless bot, not excluded).
type EligibleScore struct {
	ID            int64
	Pp            float64
	AccPp         float64
	PassPp        float64
	TechPp        float64
	BonusPp       float64
	Accuracy      float64
	BaseScore     int64
	ModifiedScore int64
	Rank          int
	MaxStreak     int
	Qualification bool
	Platform      string
	HMD           string
	Timestamp     time.Time
}

// Ranked reports whether the score counts toward ranked statistics.
func (s EligibleScore) Ranked() bool {
	return s.Pp != 0 && !s.Qualification
}

// RankScoreCurve converts a leaderboard rank into an equivalent top-1 score
// value. The concrete curve lives outside the engine.
type RankScoreCurve func(rank int) int64

// PercentileContext carries the population position known by the caller.
type PercentileContext struct {
	GlobalRank   int
	GlobalTotal  int
	CountryRank  int
	CountryTotal int
}

// AccuracyBands counts ranked plays per accuracy band.
type AccuracyBands struct {
	Above95    int `json:"above95"`
	From90To95 int `json:"from90to95"`
	From85To90 int `json:"from85to90"`
	From80To85 int `json:"from80to85"`
	Below80    int `json:"below80"`
}

// PartitionStats is the per-partition half of a stats snapshot.
type PartitionStats struct {
	PlayCount       int       `json:"playCount"`
	TotalScore      int64     `json:"totalScore"`
	AverageAccuracy float64   `json:"averageAccuracy"`
	MedianAccuracy  float64   `json:"medianAccuracy"`
	TopAccuracy     float64   `json:"topAccuracy"`
	AverageRank     float64   `json:"averageRank"`
	MaxStreak       int       `json:"maxStreak"`
	LastScoreTime   time.Time `json:"lastScoreTime"`
	Top1Count       int       `json:"top1Count"`
	Top1Score       int64     `json:"top1Score"`
}

// StatsSnapshot is the full ScoreStats aggregate for one player. It is
// recomputed wholesale on each run; aggregating the same score set twice
// yields an identical snapshot.
type StatsSnapshot struct {
	Total    PartitionStats `json:"total"`
	Ranked   PartitionStats `json:"ranked"`
	Unranked PartitionStats `json:"unranked"`

	AverageWeightedRankedAccuracy float64       `json:"averageWeightedRankedAccuracy"`
	AverageWeightedRankedRank     float64       `json:"averageWeightedRankedRank"`
	RankedBands                   AccuracyBands `json:"rankedBands"`

	TopPlatform string `json:"topPlatform"`
	TopHMD      string `json:"topHMD"`

	GlobalPercentile  float64 `json:"globalPercentile"`
	CountryPercentile float64 `json:"countryPercentile"`
}

// Aggregate computes a player's stats snapshot from their eligible scores.
// Pure: no I/O, no clock reads, deterministic for a given input.
func Aggregate(scores []EligibleScore, curves *Curves, rankCurve RankScoreCurve, pctx *PercentileContext) StatsSnapshot {
	var ranked, unranked []EligibleScore
	for _, s := range scores {
		if s.Ranked() {
			ranked = append(ranked, s)
		} else {
			unranked = append(unranked, s)
		}
	}

	snapshot := StatsSnapshot{
		Total:    partitionStats(scores, rankCurve),
		Ranked:   partitionStats(ranked, rankCurve),
		Unranked: partitionStats(unranked, rankCurve),
	}

	snapshot.AverageWeightedRankedAccuracy = weightedAccuracy(ranked, curves.TopAcc)
	snapshot.AverageWeightedRankedRank = weightedRank(ranked, curves.TopRank)
	snapshot.RankedBands = accuracyBands(ranked)
	snapshot.TopPlatform, snapshot.TopHMD = topDevices(scores)

	if pctx != nil {
		if pctx.GlobalTotal > 0 && pctx.GlobalRank > 0 {
			snapshot.GlobalPercentile = float64(pctx.GlobalRank) / float64(pctx.GlobalTotal)
		}
		if pctx.CountryTotal > 0 && pctx.CountryRank > 0 {
			snapshot.CountryPercentile = float64(pctx.CountryRank) / float64(pctx.CountryTotal)
		}
	}

	return snapshot
}

func partitionStats(scores []EligibleScore, rankCurve RankScoreCurve) PartitionStats {
	var stats PartitionStats
	stats.PlayCount = len(scores)
	if len(scores) == 0 {
		return stats
	}

	var accSum, rankSum float64
	for _, s := range scores {
		stats.TotalScore += s.ModifiedScore
		accSum += s.Accuracy
		rankSum += float64(s.Rank)
		if s.Accuracy > stats.TopAccuracy {
			stats.TopAccuracy = s.Accuracy
		}
		if s.MaxStreak > stats.MaxStreak {
			stats.MaxStreak = s.MaxStreak
		}
		if s.Timestamp.After(stats.LastScoreTime) {
			stats.LastScoreTime = s.Timestamp
		}
		if s.Rank == 1 {
			stats.Top1Count++
		}
		if rankCurve != nil {
			stats.Top1Score += rankCurve(s.Rank)
		}
	}

	stats.AverageAccuracy = accSum / float64(len(scores))
	stats.AverageRank = rankSum / float64(len(scores))
	stats.MedianAccuracy = medianAccuracy(scores)
	return stats
}

// medianAccuracy sorts descending by accuracy; the median is the middle
// element for odd counts and the mean of the two middle elements for even.
func medianAccuracy(scores []EligibleScore) float64 {
	accs := make([]float64, len(scores))
	for i, s := range scores {
		accs[i] = s.Accuracy
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(accs)))

	mid := len(accs) / 2
	if len(accs)%2 == 1 {
		return accs[mid]
	}
	return (accs[mid-1] + accs[mid]) / 2
}

// sortByPpDesc returns a copy ordered best-first. Stable so equal-pp scores
// keep their input order and reruns stay byte-identical.
func sortByPpDesc(scores []EligibleScore) []EligibleScore {
	sorted := make([]EligibleScore, len(scores))
	copy(sorted, scores)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Pp > sorted[j].Pp
	})
	return sorted
}

func weightedAccuracy(ranked []EligibleScore, curve *WeightCurve) float64 {
	if len(ranked) == 0 {
		return 0
	}
	sorted := sortByPpDesc(ranked)
	if len(sorted) > topWeightedSlice {
		sorted = sorted[:topWeightedSlice]
	}

	var sum, weightSum float64
	for i, s := range sorted {
		w := curve.Weight(i)
		sum += s.Accuracy * w
		weightSum += w
	}
	return sum / weightSum
}

// weightedRank fills all topWeightedSlice slots: real ranks first, then the
// synthetic placeholder index*10 for the slots a player has no score in.
func weightedRank(ranked []EligibleScore, curve *WeightCurve) float64 {
	if len(ranked) == 0 {
		return 0
	}
	sorted := sortByPpDesc(ranked)

	var sum, weightSum float64
	for i := 0; i < topWeightedSlice; i++ {
		w := curve.Weight(i)
		if i < len(sorted) {
			sum += float64(sorted[i].Rank) * w
		} else {
			sum += float64(i*missingRankPlaceholder) * w
		}
		weightSum += w
	}
	return sum / weightSum
}

func accuracyBands(ranked []EligibleScore) AccuracyBands {
	var bands AccuracyBands
	for _, s := range ranked {
		switch {
		case s.Accuracy > 0.95:
			bands.Above95++
		case s.Accuracy > 0.90:
			bands.From90To95++
		case s.Accuracy > 0.85:
			bands.From85To90++
		case s.Accuracy > 0.80:
			bands.From80To85++
		default:
			bands.Below80++
		}
	}
	return bands
}

// topDevices picks the most-used platform and headset from the most recent
// scores. Ties break toward whichever reached the max count first in
// recency order.
func topDevices(scores []EligibleScore) (platform, hmd string) {
	recent := make([]EligibleScore, len(scores))
	copy(recent, scores)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp.After(recent[j].Timestamp)
	})
	if len(recent) > recentDeviceSlice {
		recent = recent[:recentDeviceSlice]
	}

	platform = firstSeenMax(recent, func(s EligibleScore) string { return s.Platform })
	hmd = firstSeenMax(recent, func(s EligibleScore) string { return s.HMD })
	return platform, hmd
}

func firstSeenMax(scores []EligibleScore, key func(EligibleScore) string) string {
	counts := make(map[string]int, len(scores))
	best := ""
	bestCount := 0
	for _, s := range scores {
		k := key(s)
		if k == "" {
			continue
		}
		counts[k]++
		if counts[k] > bestCount {
			best = k
			bestCount = counts[k]
		}
	}
	return best
}
