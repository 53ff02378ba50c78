package scoring

import (
	"github.com/shopspring/decimal"
	"github.com/trentd187/golf-league-ledger/internal/models"
)

// ByeInput carries what the averaging modes need. Both slices hold match points
// (one value per team per matchup); either may be empty.
type ByeInput struct {
	// WeekPoints are the points every team earned in that week's non-bye matchups.
	WeekPoints []float64
	// TeamPoints are the bye team's own points from its matchups earlier in the season.
	TeamPoints []float64
}

// ByePoints returns the credit for a team with no opponent in a week.
// Averages are rounded to the nearest 0.1 and are 0 when there is nothing to average.
func ByePoints(mode models.ByePointsMode, flat float64, in ByeInput) float64 {
	switch mode {
	case models.ByeFlat:
		return flat
	case models.ByeLeagueAverage:
		return averageToTenth(in.WeekPoints)
	case models.ByeTeamAverage:
		return averageToTenth(in.TeamPoints)
	default:
		return 0
	}
}

func averageToTenth(points []float64) float64 {
	if len(points) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, p := range points {
		if !isFinite(p) {
			return p
		}
		sum = sum.Add(decimal.NewFromFloat(p))
	}
	return sum.Div(decimal.NewFromInt(int64(len(points)))).Round(1).InexactFloat64()
}
