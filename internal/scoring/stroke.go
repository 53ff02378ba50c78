package scoring

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/trentd187/golf-league-ledger/internal/models"
	"github.com/trentd187/golf-league-ledger/internal/policy"
)

// FieldEntry is one team's result in a stroke-play week before ranking.
type FieldEntry struct {
	TeamID uuid.UUID
	Net    float64
	DNP    bool
}

// FieldResult is the ranked outcome for one team.
type FieldResult struct {
	TeamID   uuid.UUID `json:"team_id"`
	Net      float64   `json:"net"`
	DNP      bool      `json:"dnp"`
	Position int       `json:"position"` // 1 = best, 0 for DNP
	Tied     bool      `json:"tied"`
	Label    string    `json:"label"`  // "1", "T2", "DNP"
	Points   float64   `json:"points"` // rank points, or DNP points + penalty
	Bonus    float64   `json:"bonus"`  // show + beat bonuses
}

// Total is what the week contributes to the team's standings.
func (r FieldResult) Total() float64 {
	return r.Points + r.Bonus
}

// RankField ranks every non-DNP entry by net score ascending and assigns points from
// the policy's scale. par is the value a net score must beat to earn BonusBeat.
//
// Entries with equal nets share a position. In split mode each of them gets the
// average of the scale slots the group covers; in same mode each gets the first
// slot's value. Results come back ranked, DNP entries last in input order.
func RankField(entries []FieldEntry, p policy.ScoringPolicy, par float64) []FieldResult {
	played := make([]FieldEntry, 0, len(entries))
	var absent []FieldEntry
	for _, e := range entries {
		if e.DNP {
			absent = append(absent, e)
			continue
		}
		played = append(played, e)
	}

	// Stable so teams with equal nets keep the caller's order.
	slices.SortStableFunc(played, func(a, b FieldEntry) int {
		return cmp.Compare(a.Net, b.Net)
	})

	results := make([]FieldResult, 0, len(entries))
	for start := 0; start < len(played); {
		end := start + 1
		for end < len(played) && played[end].Net == played[start].Net {
			end++
		}
		size := end - start
		position := start + 1
		points := groupPoints(p, position, size)

		label := fmt.Sprint(position)
		if size > 1 {
			label = "T" + label
		}

		for _, e := range played[start:end] {
			bonus := p.BonusShow
			if e.Net < par {
				bonus += p.BonusBeat
			}
			results = append(results, FieldResult{
				TeamID:   e.TeamID,
				Net:      e.Net,
				Position: position,
				Tied:     size > 1,
				Label:    label,
				Points:   points,
				Bonus:    bonus,
			})
		}
		start = end
	}

	for _, e := range absent {
		results = append(results, FieldResult{
			TeamID: e.TeamID,
			DNP:    true,
			Label:  "DNP",
			Points: p.DNPPoints + p.DNPPenalty,
		})
	}
	return results
}

// groupPoints is what each member of a tie group of `size` teams starting at
// `position` receives.
func groupPoints(p policy.ScoringPolicy, position, size int) float64 {
	if size == 1 || p.TieMode == models.TieSame {
		return p.ScaleAt(position)
	}
	var sum float64
	for slot := position; slot < position+size; slot++ {
		sum += p.ScaleAt(slot)
	}
	return sum / float64(size)
}

// WeeksPlayed counts, per team, the weeks in which it actually played (was not DNP).
// Standings use it to pro-rate totals into points per week played.
func WeeksPlayed(weeks ...[]FieldResult) map[uuid.UUID]int {
	counts := make(map[uuid.UUID]int)
	for _, week := range weeks {
		for _, r := range week {
			if !r.DNP {
				counts[r.TeamID]++
			}
		}
	}
	return counts
}

// PointsPerWeek pro-rates a total over the weeks played; zero weeks yields zero.
func PointsPerWeek(total float64, weeksPlayed int) float64 {
	if weeksPlayed == 0 {
		return 0
	}
	return total / float64(weeksPlayed)
}
