package ledger

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/trentd187/golf-league-ledger/internal/apperr"
	"github.com/trentd187/golf-league-ledger/internal/models"
	"github.com/trentd187/golf-league-ledger/internal/policy"
	"github.com/trentd187/golf-league-ledger/internal/scoring"
)

// histories maps a team to its chronological handicap history.
type histories map[uuid.UUID][]scoring.HistoryEntry

// add records a played score. Substitute rounds never enter a team's history.
func (h histories) add(team uuid.UUID, week int, gross *float64, sub bool) {
	if sub || gross == nil {
		return
	}
	h[team] = append(h[team], scoring.HistoryEntry{Week: week, Gross: *gross})
}

// matchupHistories builds histories from stored matchups played before `before`.
// Forfeits contribute nothing.
func matchupHistories(rows []models.Matchup, before int) histories {
	h := make(histories)
	for _, m := range rows {
		if m.Week >= before || m.Forfeit {
			continue
		}
		h.add(m.TeamAID, m.Week, m.TeamAGross, m.TeamASub)
		h.add(m.TeamBID, m.Week, m.TeamBGross, m.TeamBSub)
	}
	return h
}

// weeklyHistories builds histories from stored stroke-play rows played before `before`.
func weeklyHistories(rows []models.WeeklyScore, before int) histories {
	h := make(histories)
	for _, w := range rows {
		if w.Week >= before || w.DNP {
			continue
		}
		h.add(w.TeamID, w.Week, w.Gross, w.Sub)
	}
	return h
}

// manualHandicap reports whether a side's handicap must be entered by hand rather
// than computed: always in week 1, and always for a substitute.
func manualHandicap(week int, sub bool) bool {
	return week == 1 || sub
}

func matchupLabel(m *models.Matchup) string {
	return fmt.Sprintf("matchup %s (week %d)", m.ID, m.Week)
}

func weeklyLabel(w *models.WeeklyScore) string {
	return fmt.Sprintf("weekly score %s (week %d, team %s)", w.ID, w.Week, w.TeamID)
}

func checkFinite(record, field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &apperr.ComputationError{Record: record, Field: field, Value: v}
	}
	return nil
}

// scoreMatchup fills in handicaps, nets and (unless overridden) points for a
// non-forfeit matchup, using only the history accumulated from earlier weeks.
// Manual sides keep whatever handicap is already on the record.
func scoreMatchup(m *models.Matchup, hist histories, pol policy.Policy) error {
	if m.Forfeit {
		return nil
	}
	label := matchupLabel(m)

	hcpA, err := sideHandicap(label, "team_a", m.Week, m.TeamASub, m.TeamAHandicap, hist[m.TeamAID], pol.Handicap)
	if err != nil {
		return err
	}
	hcpB, err := sideHandicap(label, "team_b", m.Week, m.TeamBSub, m.TeamBHandicap, hist[m.TeamBID], pol.Handicap)
	if err != nil {
		return err
	}
	if m.TeamAGross == nil || m.TeamBGross == nil {
		return &apperr.ComputationError{Record: label, Field: "gross", Value: math.NaN()}
	}

	netA := scoring.Net(*m.TeamAGross, hcpA)
	netB := scoring.Net(*m.TeamBGross, hcpB)
	if err := checkFinite(label, "team_a_net", netA); err != nil {
		return err
	}
	if err := checkFinite(label, "team_b_net", netB); err != nil {
		return err
	}
	m.TeamAHandicap, m.TeamBHandicap = ptr(hcpA), ptr(hcpB)
	m.TeamANet, m.TeamBNet = ptr(netA), ptr(netB)

	if !m.PointsOverride {
		pts := scoring.SuggestMatchPoints(netA, netB)
		m.TeamAPoints, m.TeamBPoints = pts.A, pts.B
	}
	if err := checkFinite(label, "team_a_points", m.TeamAPoints); err != nil {
		return err
	}
	return checkFinite(label, "team_b_points", m.TeamBPoints)
}

// sideHandicap returns the recorded handicap for manual sides and a freshly computed
// one otherwise.
func sideHandicap(label, side string, week int, sub bool, recorded *float64, hist []scoring.HistoryEntry, hp policy.HandicapPolicy) (float64, error) {
	field := side + "_handicap"
	if manualHandicap(week, sub) {
		if recorded == nil {
			return 0, &apperr.ComputationError{Record: label, Field: field, Value: math.NaN()}
		}
		return *recorded, checkFinite(label, field, *recorded)
	}
	hcp := scoring.Handicap(hist, hp, week)
	return hcp, checkFinite(label, field, hcp)
}

// scoreWeek recomputes one stroke-play week in place: handicaps, nets, then the
// field ranking. rows must all belong to the same week.
func scoreWeek(rows []models.WeeklyScore, hist histories, pol policy.Policy) error {
	entries := make([]scoring.FieldEntry, 0, len(rows))
	for i := range rows {
		w := &rows[i]
		if w.DNP {
			w.Gross, w.Handicap, w.Net = nil, nil, nil
			entries = append(entries, scoring.FieldEntry{TeamID: w.TeamID, DNP: true})
			continue
		}
		label := weeklyLabel(w)
		hcp, err := sideHandicap(label, "team", w.Week, w.Sub, w.Handicap, hist[w.TeamID], pol.Handicap)
		if err != nil {
			return err
		}
		if w.Gross == nil {
			return &apperr.ComputationError{Record: label, Field: "gross", Value: math.NaN()}
		}
		net := scoring.Net(*w.Gross, hcp)
		if err := checkFinite(label, "net", net); err != nil {
			return err
		}
		w.Handicap, w.Net = ptr(hcp), ptr(net)
		entries = append(entries, scoring.FieldEntry{TeamID: w.TeamID, Net: net})
	}

	results := scoring.RankField(entries, pol.Scoring, pol.Handicap.BaseScore)
	byTeam := make(map[uuid.UUID]scoring.FieldResult, len(results))
	for _, r := range results {
		byTeam[r.TeamID] = r
	}
	for i := range rows {
		w := &rows[i]
		r := byTeam[w.TeamID]
		w.Points, w.Bonus, w.Tied = r.Points, r.Bonus, r.Tied
		w.Position = nil
		if !r.DNP {
			w.Position = ptr(r.Position)
		}
		label := weeklyLabel(w)
		if err := checkFinite(label, "points", w.Points); err != nil {
			return err
		}
		if err := checkFinite(label, "bonus", w.Bonus); err != nil {
			return err
		}
	}
	return nil
}

// replayWeekly recomputes every stroke-play row in week order. Each week's
// handicaps see only the rows of earlier weeks.
func replayWeekly(rows []models.WeeklyScore, pol policy.Policy) error {
	hist := make(histories)
	for start := 0; start < len(rows); {
		end := start
		for end < len(rows) && rows[end].Week == rows[start].Week {
			end++
		}
		week := rows[start:end]
		if err := scoreWeek(week, hist, pol); err != nil {
			return err
		}
		for _, w := range week {
			if !w.DNP {
				hist.add(w.TeamID, w.Week, w.Gross, w.Sub)
			}
		}
		start = end
	}
	return nil
}

// applyFieldPoints ranks every played matchup side against the whole week in hybrid
// leagues and stores the weighted field points on the matchup. Other formats get 0.
func applyFieldPoints(rows []models.Matchup, pol policy.Policy) error {
	hybrid := pol.Scoring.Type == models.ScoringHybrid
	for start := 0; start < len(rows); {
		end := start
		for end < len(rows) && rows[end].Week == rows[start].Week {
			end++
		}
		week := rows[start:end]
		start = end

		var entries []scoring.FieldEntry
		for i := range week {
			m := &week[i]
			m.TeamAFieldPts, m.TeamBFieldPts = 0, 0
			if !hybrid || m.Forfeit || m.TeamANet == nil || m.TeamBNet == nil {
				continue
			}
			entries = append(entries,
				scoring.FieldEntry{TeamID: m.TeamAID, Net: *m.TeamANet},
				scoring.FieldEntry{TeamID: m.TeamBID, Net: *m.TeamBNet},
			)
		}
		if len(entries) == 0 {
			continue
		}

		field := make(map[uuid.UUID]float64, len(entries))
		for _, r := range scoring.RankField(entries, pol.Scoring, pol.Handicap.BaseScore) {
			field[r.TeamID] = r.Total() * pol.Scoring.HybridFieldWeight
		}
		for i := range week {
			m := &week[i]
			if m.Forfeit || m.TeamANet == nil || m.TeamBNet == nil {
				continue
			}
			m.TeamAFieldPts, m.TeamBFieldPts = field[m.TeamAID], field[m.TeamBID]
			label := matchupLabel(m)
			if err := checkFinite(label, "team_a_field_points", m.TeamAFieldPts); err != nil {
				return err
			}
			if err := checkFinite(label, "team_b_field_points", m.TeamBFieldPts); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyByePoints recomputes every bye credit from the (already final) matchups.
func applyByePoints(byes []models.Bye, matchups []models.Matchup, pol policy.Policy) error {
	for i := range byes {
		b := &byes[i]
		b.Points = scoring.ByePoints(pol.Scoring.ByeMode, pol.Scoring.ByeFlat, byeInput(b.Week, b.TeamID, matchups))
		if err := checkFinite(fmt.Sprintf("bye %s (week %d)", b.ID, b.Week), "points", b.Points); err != nil {
			return err
		}
	}
	return nil
}

func byeInput(week int, team uuid.UUID, matchups []models.Matchup) scoring.ByeInput {
	var in scoring.ByeInput
	for _, m := range matchups {
		if m.Week == week {
			in.WeekPoints = append(in.WeekPoints, m.TeamAPoints, m.TeamBPoints)
		}
		if m.Week < week {
			switch team {
			case m.TeamAID:
				in.TeamPoints = append(in.TeamPoints, m.TeamAPoints)
			case m.TeamBID:
				in.TeamPoints = append(in.TeamPoints, m.TeamBPoints)
			}
		}
	}
	return in
}

func ptr[T any](v T) *T { return &v }
