package ledger

import (
	"cmp"
	"slices"

	"github.com/google/uuid"

	"github.com/trentd187/golf-league-ledger/internal/models"
	"github.com/trentd187/golf-league-ledger/internal/policy"
	"github.com/trentd187/golf-league-ledger/internal/scoring"
)

// foldStandings derives every team's aggregate from the league's records.
// Teams appear in the result even before they have played; records that reference a
// team no longer on the roster still count, under the team's id.
func foldStandings(teams []models.Team, matchups []models.Matchup, weekly []models.WeeklyScore, byes []models.Bye, pol policy.Policy) []models.TeamStanding {
	rows := make(map[uuid.UUID]*models.TeamStanding, len(teams))
	order := make([]uuid.UUID, 0, len(teams))
	get := func(id uuid.UUID) *models.TeamStanding {
		if st, ok := rows[id]; ok {
			return st
		}
		st := &models.TeamStanding{TeamID: id, TeamName: id.String()}
		rows[id] = st
		order = append(order, id)
		return st
	}
	for _, t := range teams {
		get(t.ID).TeamName = t.Name
	}

	for _, m := range matchups {
		a, b := get(m.TeamAID), get(m.TeamBID)
		a.MatchPoints += m.TeamAPoints
		b.MatchPoints += m.TeamBPoints
		a.FieldPoints += m.TeamAFieldPts
		b.FieldPoints += m.TeamBFieldPts

		if m.Forfeit {
			// Only the side that showed up played.
			if m.ForfeitTeamID != nil && *m.ForfeitTeamID == m.TeamAID {
				b.Wins++
				a.Losses++
				b.WeeksPlayed++
			} else {
				a.Wins++
				b.Losses++
				a.WeeksPlayed++
			}
			continue
		}

		a.WeeksPlayed++
		b.WeeksPlayed++
		switch {
		case m.TeamAPoints > m.TeamBPoints:
			a.Wins++
			b.Losses++
		case m.TeamAPoints < m.TeamBPoints:
			b.Wins++
			a.Losses++
		default:
			a.Ties++
			b.Ties++
		}
	}

	for _, w := range weekly {
		st := get(w.TeamID)
		st.StrokePoints += w.Points + w.Bonus
		if w.DNP {
			st.DNPCount++
			continue
		}
		st.WeeksPlayed++
	}

	for _, bye := range byes {
		st := get(bye.TeamID)
		st.ByePoints += bye.Points
		st.ByeCount++
	}

	out := make([]models.TeamStanding, 0, len(order))
	for _, id := range order {
		st := rows[id]
		st.TotalPoints = st.MatchPoints + st.FieldPoints + st.StrokePoints + st.ByePoints
		// A bye week's credit is part of TotalPoints, so the week counts too.
		st.PointsPerWk = scoring.PointsPerWeek(st.TotalPoints, st.WeeksPlayed+st.ByeCount)
		st.OverDNPLimit = pol.Scoring.MaxDNP > 0 && st.DNPCount > pol.Scoring.MaxDNP
		out = append(out, *st)
	}
	rankStandings(out, pol.Scoring.ProRate)
	return out
}

// rankStandings orders by points (per week played or bye when pro-rating), then wins, then
// name. Teams level on both points and wins share a rank.
func rankStandings(rows []models.TeamStanding, proRate bool) {
	key := func(st models.TeamStanding) float64 {
		if proRate {
			return st.PointsPerWk
		}
		return st.TotalPoints
	}
	slices.SortStableFunc(rows, func(a, b models.TeamStanding) int {
		if c := cmp.Compare(key(b), key(a)); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Wins, a.Wins); c != 0 {
			return c
		}
		if c := cmp.Compare(a.TeamName, b.TeamName); c != 0 {
			return c
		}
		return cmp.Compare(a.TeamID.String(), b.TeamID.String())
	})
	for i := range rows {
		if i > 0 && key(rows[i]) == key(rows[i-1]) && rows[i].Wins == rows[i-1].Wins {
			rows[i].Rank = rows[i-1].Rank
			continue
		}
		rows[i].Rank = i + 1
	}
}
