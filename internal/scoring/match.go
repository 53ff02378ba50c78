package scoring

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/trentd187/golf-league-ledger/internal/apperr"
)

// MatchPool is the number of points split between the two sides of every matchup.
const MatchPool = 20.0

// winnerBase is the winner's default share before the margin is added; each
// stroke of margin moves one more point to the winner.
const winnerBase = 12.0

// pointsTolerance absorbs float noise when checking a submitted split.
const pointsTolerance = 1e-9

// MatchPoints is a two-way split of the match pool.
type MatchPoints struct {
	A float64 `json:"team_a_points"`
	B float64 `json:"team_b_points"`
}

// SuggestMatchPoints proposes a default split for two net scores. Lower net wins.
// Equal nets split the pool evenly; otherwise the winner gets 12 plus the margin,
// capped at the whole pool and rounded to the nearest half point.
//
// This is only a starting point: admins may submit any split that passes
// ValidateMatchPoints.
func SuggestMatchPoints(netA, netB float64) MatchPoints {
	if netA == netB {
		return MatchPoints{A: MatchPool / 2, B: MatchPool / 2}
	}
	margin := math.Abs(netA - netB)
	winner := math.Min(MatchPool, winnerBase+margin)
	if isFinite(winner) {
		winner = decimal.NewFromFloat(winner * 2).Round(0).Div(decimal.NewFromInt(2)).InexactFloat64()
	}
	loser := MatchPool - winner
	if netA < netB {
		return MatchPoints{A: winner, B: loser}
	}
	return MatchPoints{A: loser, B: winner}
}

// ValidateMatchPoints accepts a submitted split only if both values are finite,
// non-negative, and sum to exactly the match pool.
func ValidateMatchPoints(p MatchPoints) error {
	if !isFinite(p.A) || p.A < 0 {
		return apperr.Invalid("team_a_points", "must be a non-negative number")
	}
	if !isFinite(p.B) || p.B < 0 {
		return apperr.Invalid("team_b_points", "must be a non-negative number")
	}
	if math.Abs(p.A+p.B-MatchPool) > pointsTolerance {
		return apperr.Invalid("points", "team points must sum to %v (got %v + %v)", MatchPool, p.A, p.B)
	}
	return nil
}

// ForfeitPoints gives the whole pool to the side that didn't forfeit.
func ForfeitPoints(teamAForfeited bool) MatchPoints {
	if teamAForfeited {
		return MatchPoints{A: 0, B: MatchPool}
	}
	return MatchPoints{A: MatchPool, B: 0}
}
