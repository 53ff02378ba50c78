// Package scoring holds the pure computation engines of the ledger: handicaps, net
// scores, match-play splits, stroke-play field ranking and bye credits.
// Nothing in here touches storage, blocks, or reads shared state; every function
// takes the policy it runs under as a parameter and returns a fresh value.
package scoring

import (
	"cmp"
	"math"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/trentd187/golf-league-ledger/internal/models"
	"github.com/trentd187/golf-league-ledger/internal/policy"
)

// HistoryEntry is one recorded week for a team: the gross score and whether a
// substitute played it. Substitute rounds never count toward a team's handicap.
type HistoryEntry struct {
	Week       int
	Gross      float64
	Substitute bool
}

// Handicap computes a team's handicap for targetWeek from its chronological
// history (oldest first). Only entries from weeks before targetWeek are used.
//
// Week 1 and substitutes are never computed here; callers supply those manually.
func Handicap(history []HistoryEntry, p policy.HandicapPolicy, targetWeek int) float64 {
	// A frozen handicap stops moving after the freeze week: compute it as if
	// we were still in the freeze week.
	if p.FreezeWeek != nil && targetWeek > *p.FreezeWeek {
		targetWeek = *p.FreezeWeek
	}

	scores := eligibleScores(history, targetWeek)
	scores = selectScores(scores, p)
	scores = dropExtremes(scores, p.DropHighest, p.DropLowest)
	if len(scores) == 0 {
		return p.DefaultHandicap
	}

	if p.CapExceptional {
		for i, s := range scores {
			if s > p.ExceptionalCap {
				scores[i] = p.ExceptionalCap
			}
		}
	}

	var mean float64
	if p.UseWeighting {
		mean = weightedMean(scores, p.WeightRecent, p.WeightDecay)
	} else {
		mean = simpleMean(scores)
	}
	if p.UseTrend {
		mean += p.TrendWeight * trendSlope(scores)
	}

	raw := (mean - p.BaseScore) * p.Multiplier
	hcp := roundHandicap(raw, p.Rounding)

	if p.MinHandicap != nil && hcp < *p.MinHandicap {
		hcp = *p.MinHandicap
	}
	if p.MaxHandicap != nil && hcp > *p.MaxHandicap {
		hcp = *p.MaxHandicap
	}

	if targetWeek <= p.ProvWeeks {
		hcp *= p.ProvMultiplier
	}
	return hcp
}

// eligibleScores keeps the non-substitute gross scores recorded before targetWeek,
// in chronological order.
func eligibleScores(history []HistoryEntry, targetWeek int) []float64 {
	ordered := slices.Clone(history)
	// Stable so same-week entries keep the order they were recorded in.
	slices.SortStableFunc(ordered, func(a, b HistoryEntry) int {
		return cmp.Compare(a.Week, b.Week)
	})

	scores := make([]float64, 0, len(ordered))
	for _, e := range ordered {
		if e.Substitute || e.Week >= targetWeek {
			continue
		}
		scores = append(scores, e.Gross)
	}
	return scores
}

// selectScores applies the score-selection method. The result stays chronological.
func selectScores(scores []float64, p policy.HandicapPolicy) []float64 {
	switch p.Selection {
	case models.SelectionLastN:
		return lastN(scores, p.ScoreCount)
	case models.SelectionBestOfLast:
		return bestN(lastN(scores, p.LastOf), p.BestOf)
	default:
		return scores
	}
}

func lastN(scores []float64, n int) []float64 {
	if n >= len(scores) {
		return scores
	}
	return scores[len(scores)-n:]
}

// bestN keeps the n lowest scores without disturbing their chronological order.
func bestN(scores []float64, n int) []float64 {
	if n >= len(scores) {
		return scores
	}
	keep := rankedIndexes(scores)[:n]
	return pick(scores, keep)
}

// dropExtremes removes the `high` worst (largest) and `low` best (smallest) scores.
func dropExtremes(scores []float64, high, low int) []float64 {
	if high == 0 && low == 0 {
		return scores
	}
	if high+low >= len(scores) {
		return nil
	}
	ranked := rankedIndexes(scores)
	keep := ranked[low : len(ranked)-high]
	return pick(scores, keep)
}

// rankedIndexes returns the indexes of scores sorted best (lowest) first. Equal
// scores keep chronological order, so the older one is treated as "better".
func rankedIndexes(scores []float64) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(scores[a], scores[b])
	})
	return idx
}

// pick returns scores at the given indexes, in index (chronological) order.
func pick(scores []float64, indexes []int) []float64 {
	sorted := slices.Clone(indexes)
	slices.Sort(sorted)
	out := make([]float64, len(sorted))
	for i, at := range sorted {
		out[i] = scores[at]
	}
	return out
}

func simpleMean(scores []float64) float64 {
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// weightedMean weights each score by recent × decay^age, age 0 being the most recent.
func weightedMean(scores []float64, recent, decay float64) float64 {
	var sum, weights float64
	w := recent
	for i := len(scores) - 1; i >= 0; i-- {
		sum += scores[i] * w
		weights += w
		w *= decay
	}
	return sum / weights
}

// trendSlope is the least-squares slope of the scores against their position.
// A positive slope means the team has been scoring higher (worse) recently.
func trendSlope(scores []float64) float64 {
	n := float64(len(scores))
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range scores {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// roundHandicap rounds the raw value to a whole number. The value is first
// rounded to 9 places so float noise (7 × 0.9 = 6.300000000000001) can't push
// a floor or ceil over a boundary.
//
// Non-finite values pass through untouched so the caller can report them.
func roundHandicap(raw float64, mode models.Rounding) float64 {
	if !isFinite(raw) {
		return raw
	}
	d := decimal.NewFromFloat(raw).Round(9)
	switch mode {
	case models.RoundingFloor:
		d = d.Floor()
	case models.RoundingCeil:
		d = d.Ceil()
	default:
		d = d.Round(0)
	}
	return d.InexactFloat64()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
