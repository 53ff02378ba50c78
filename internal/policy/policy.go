// Package policy turns a league's stored settings into validated, immutable policy
// values. Everything downstream (the scoring engines and the ledger replay) takes a
// Policy as a plain parameter, so a whole recalculation sees one consistent snapshot.
package policy

import (
	"math"

	"github.com/trentd187/golf-league-ledger/internal/apperr"
	"github.com/trentd187/golf-league-ledger/internal/models"
)

// maxDrop bounds dropHighest/dropLowest; a season is never longer than this.
const maxDrop = 52

// HandicapPolicy holds every knob of the handicap calculation.
// Construct it with NewHandicapPolicy; the zero value is not valid.
type HandicapPolicy struct {
	BaseScore       float64
	Multiplier      float64
	Rounding        models.Rounding
	DefaultHandicap float64
	MinHandicap     *float64
	MaxHandicap     *float64
	Selection       models.ScoreSelection
	ScoreCount      int // last_n
	BestOf          int // best_of_last
	LastOf          int // best_of_last
	DropHighest     int
	DropLowest      int
	UseWeighting    bool
	WeightRecent    float64
	WeightDecay     float64
	CapExceptional  bool
	ExceptionalCap  float64
	ProvWeeks       int
	ProvMultiplier  float64
	FreezeWeek      *int
	UseTrend        bool
	TrendWeight     float64
}

// ScoringPolicy holds the point-allocation knobs for every format.
type ScoringPolicy struct {
	Type              models.ScoringType
	PointScale        []float64 // strictly descending, non-negative
	BonusShow         float64
	BonusBeat         float64
	DNPPoints         float64
	DNPPenalty        float64 // <= 0
	MaxDNP            int     // 0 = no threshold
	TieMode           models.TieMode
	ProRate           bool
	HybridFieldWeight float64
	ByeMode           models.ByePointsMode
	ByeFlat           float64
}

// Policy is the pair of policies a single operation runs under.
type Policy struct {
	Handicap HandicapPolicy
	Scoring  ScoringPolicy
}

// UsesMatchups reports whether the league plays head-to-head matchups.
func (p ScoringPolicy) UsesMatchups() bool {
	return p.Type == models.ScoringMatchPlay || p.Type == models.ScoringHybrid
}

// UsesField reports whether weekly results are ranked across the whole field.
func (p ScoringPolicy) UsesField() bool {
	return p.Type == models.ScoringStrokePlay || p.Type == models.ScoringHybrid
}

// ScaleAt returns the point-scale value for a 1-based position, or 0 past the end.
func (p ScoringPolicy) ScaleAt(position int) float64 {
	if position < 1 || position > len(p.PointScale) {
		return 0
	}
	return p.PointScale[position-1]
}

// FromSettings validates stored settings and returns the policy snapshot.
func FromSettings(s models.LeagueSettings) (Policy, error) {
	h, err := NewHandicapPolicy(s)
	if err != nil {
		return Policy{}, err
	}
	sc, err := NewScoringPolicy(s)
	if err != nil {
		return Policy{}, err
	}
	return Policy{Handicap: h, Scoring: sc}, nil
}

// NewHandicapPolicy validates the handicap half of the settings.
func NewHandicapPolicy(s models.LeagueSettings) (HandicapPolicy, error) {
	if err := requireFinite([]namedValue{
		{"base_score", s.BaseScore},
		{"multiplier", s.Multiplier},
		{"default_handicap", s.DefaultHandicap},
		{"weight_recent", s.WeightRecent},
		{"weight_decay", s.WeightDecay},
		{"exceptional_cap", s.ExceptionalCap},
		{"prov_multiplier", s.ProvMultiplier},
		{"trend_weight", s.TrendWeight},
	}); err != nil {
		return HandicapPolicy{}, err
	}

	switch s.Rounding {
	case models.RoundingFloor, models.RoundingRound, models.RoundingCeil:
	default:
		return HandicapPolicy{}, apperr.Invalid("rounding", "must be one of floor, round, ceil (got %q)", s.Rounding)
	}

	if s.MinHandicap != nil && !finite(*s.MinHandicap) {
		return HandicapPolicy{}, apperr.Invalid("min_handicap", "must be a finite number")
	}
	if s.MaxHandicap != nil && !finite(*s.MaxHandicap) {
		return HandicapPolicy{}, apperr.Invalid("max_handicap", "must be a finite number")
	}
	if s.MinHandicap != nil && s.MaxHandicap != nil && *s.MinHandicap > *s.MaxHandicap {
		return HandicapPolicy{}, apperr.Invalid("min_handicap", "must not exceed max_handicap")
	}

	switch s.ScoreSelection {
	case models.SelectionAll:
	case models.SelectionLastN:
		if s.ScoreCount < 1 {
			return HandicapPolicy{}, apperr.Invalid("score_count", "must be at least 1 when score_selection is last_n")
		}
	case models.SelectionBestOfLast:
		if s.BestOf < 1 {
			return HandicapPolicy{}, apperr.Invalid("best_of", "must be at least 1 when score_selection is best_of_last")
		}
		if s.LastOf < 1 {
			return HandicapPolicy{}, apperr.Invalid("last_of", "must be at least 1 when score_selection is best_of_last")
		}
		if s.BestOf > s.LastOf {
			return HandicapPolicy{}, apperr.Invalid("best_of", "must not exceed last_of (%d > %d)", s.BestOf, s.LastOf)
		}
	default:
		return HandicapPolicy{}, apperr.Invalid("score_selection", "must be one of all, last_n, best_of_last (got %q)", s.ScoreSelection)
	}

	if s.DropHighest < 0 || s.DropHighest > maxDrop {
		return HandicapPolicy{}, apperr.Invalid("drop_highest", "must be between 0 and %d", maxDrop)
	}
	if s.DropLowest < 0 || s.DropLowest > maxDrop {
		return HandicapPolicy{}, apperr.Invalid("drop_lowest", "must be between 0 and %d", maxDrop)
	}

	if s.UseWeighting {
		if s.WeightRecent <= 0 {
			return HandicapPolicy{}, apperr.Invalid("weight_recent", "must be positive when weighting is enabled")
		}
		if s.WeightDecay <= 0 || s.WeightDecay > 1 {
			return HandicapPolicy{}, apperr.Invalid("weight_decay", "must be in (0, 1] when weighting is enabled")
		}
	}
	if s.CapExceptional && s.ExceptionalCap <= 0 {
		return HandicapPolicy{}, apperr.Invalid("exceptional_cap", "must be positive when cap_exceptional is enabled")
	}
	if s.ProvWeeks < 0 {
		return HandicapPolicy{}, apperr.Invalid("prov_weeks", "must not be negative")
	}
	if s.ProvWeeks > 0 && s.ProvMultiplier <= 0 {
		return HandicapPolicy{}, apperr.Invalid("prov_multiplier", "must be positive when prov_weeks is set")
	}
	if s.FreezeWeek != nil && *s.FreezeWeek < 1 {
		return HandicapPolicy{}, apperr.Invalid("freeze_week", "must be at least 1")
	}

	return HandicapPolicy{
		BaseScore:       s.BaseScore,
		Multiplier:      s.Multiplier,
		Rounding:        s.Rounding,
		DefaultHandicap: s.DefaultHandicap,
		MinHandicap:     copyFloat(s.MinHandicap),
		MaxHandicap:     copyFloat(s.MaxHandicap),
		Selection:       s.ScoreSelection,
		ScoreCount:      s.ScoreCount,
		BestOf:          s.BestOf,
		LastOf:          s.LastOf,
		DropHighest:     s.DropHighest,
		DropLowest:      s.DropLowest,
		UseWeighting:    s.UseWeighting,
		WeightRecent:    s.WeightRecent,
		WeightDecay:     s.WeightDecay,
		CapExceptional:  s.CapExceptional,
		ExceptionalCap:  s.ExceptionalCap,
		ProvWeeks:       s.ProvWeeks,
		ProvMultiplier:  s.ProvMultiplier,
		FreezeWeek:      copyInt(s.FreezeWeek),
		UseTrend:        s.UseTrend,
		TrendWeight:     s.TrendWeight,
	}, nil
}

// NewScoringPolicy validates the scoring half of the settings.
func NewScoringPolicy(s models.LeagueSettings) (ScoringPolicy, error) {
	switch s.ScoringType {
	case models.ScoringMatchPlay, models.ScoringStrokePlay, models.ScoringHybrid:
	default:
		return ScoringPolicy{}, apperr.Invalid("scoring_type", "must be one of match_play, stroke_play, hybrid (got %q)", s.ScoringType)
	}

	scale := make([]float64, len(s.PointScale))
	copy(scale, s.PointScale)
	for i, v := range scale {
		if !finite(v) || v < 0 {
			return ScoringPolicy{}, apperr.Invalid("point_scale", "position %d must be a non-negative number", i+1)
		}
		if i > 0 && v >= scale[i-1] {
			return ScoringPolicy{}, apperr.Invalid("point_scale", "must be strictly descending (position %d is %v after %v)", i+1, v, scale[i-1])
		}
	}
	if len(scale) == 0 && s.ScoringType != models.ScoringMatchPlay {
		return ScoringPolicy{}, apperr.Invalid("point_scale", "is required for %s leagues", s.ScoringType)
	}

	if err := requireFinite([]namedValue{
		{"bonus_show", s.BonusShow},
		{"bonus_beat", s.BonusBeat},
		{"dnp_points", s.DNPPoints},
		{"dnp_penalty", s.DNPPenalty},
		{"hybrid_field_weight", s.HybridFieldWeight},
		{"bye_points_flat", s.ByePointsFlat},
	}); err != nil {
		return ScoringPolicy{}, err
	}
	if s.BonusShow < 0 {
		return ScoringPolicy{}, apperr.Invalid("bonus_show", "must not be negative")
	}
	if s.BonusBeat < 0 {
		return ScoringPolicy{}, apperr.Invalid("bonus_beat", "must not be negative")
	}
	if s.DNPPenalty > 0 {
		return ScoringPolicy{}, apperr.Invalid("dnp_penalty", "must be zero or negative")
	}
	if s.MaxDNP < 0 {
		return ScoringPolicy{}, apperr.Invalid("max_dnp", "must not be negative")
	}

	switch s.TieMode {
	case models.TieSplit, models.TieSame:
	default:
		return ScoringPolicy{}, apperr.Invalid("tie_mode", "must be split or same (got %q)", s.TieMode)
	}

	if s.ScoringType == models.ScoringHybrid && (s.HybridFieldWeight < 0 || s.HybridFieldWeight > 1) {
		return ScoringPolicy{}, apperr.Invalid("hybrid_field_weight", "must be between 0 and 1")
	}

	switch s.ByePointsMode {
	case models.ByeZero, models.ByeLeagueAverage, models.ByeTeamAverage:
	case models.ByeFlat:
		if s.ByePointsFlat < 0 {
			return ScoringPolicy{}, apperr.Invalid("bye_points_flat", "must not be negative")
		}
	default:
		return ScoringPolicy{}, apperr.Invalid("bye_points_mode", "must be one of zero, flat, league_average, team_average (got %q)", s.ByePointsMode)
	}

	return ScoringPolicy{
		Type:              s.ScoringType,
		PointScale:        scale,
		BonusShow:         s.BonusShow,
		BonusBeat:         s.BonusBeat,
		DNPPoints:         s.DNPPoints,
		DNPPenalty:        s.DNPPenalty,
		MaxDNP:            s.MaxDNP,
		TieMode:           s.TieMode,
		ProRate:           s.ProRate,
		HybridFieldWeight: s.HybridFieldWeight,
		ByeMode:           s.ByePointsMode,
		ByeFlat:           s.ByePointsFlat,
	}, nil
}

// DefaultSettings returns the settings a freshly created league starts with.
func DefaultSettings() models.LeagueSettings {
	return models.LeagueSettings{
		BaseScore:         36,
		Multiplier:        0.8,
		Rounding:          models.RoundingRound,
		ScoreSelection:    models.SelectionAll,
		WeightRecent:      1,
		WeightDecay:       1,
		ProvMultiplier:    1,
		ScoringType:       models.ScoringMatchPlay,
		PointScale:        []float64{},
		TieMode:           models.TieSplit,
		HybridFieldWeight: 0.5,
		ByePointsMode:     models.ByeZero,
	}
}

type namedValue struct {
	field string
	value float64
}

func requireFinite(values []namedValue) error {
	for _, nv := range values {
		if !finite(nv.value) {
			return apperr.Invalid(nv.field, "must be a finite number")
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
