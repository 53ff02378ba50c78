// Package models defines the data structures (models) that map to database tables.
// GORM uses these structs to generate SQL queries and map database rows back to Go values.
// The struct field tags (the backtick strings like `gorm:"..."`) tell GORM how to handle
// each field: its column type, constraints, default values, and relationships.
//
// The data model represents the scoring ledger of a golf league:
//   - A League has Teams and exactly one LeagueSettings row (its handicap + scoring policy)
//   - Match-play weeks produce Matchups (two teams head-to-head)
//   - Stroke-play weeks produce one WeeklyScore per team
//   - Teams without an opponent get a Bye
//   - TeamStanding is derived: it is rewritten from the rows above, never edited directly
package models

import (
	"time"

	// uuid provides universally unique identifiers for primary keys.
	"github.com/google/uuid"
	// datatypes gives us a typed JSON column for the point scale.
	"gorm.io/datatypes"
)

// --- Enums ---
// Go doesn't have a built-in enum keyword, so we simulate them using a named string type
// plus constants. The values are what the admin console sends and what the DB stores.

// Rounding controls how a raw handicap is turned into a whole number.
type Rounding string

const (
	RoundingFloor Rounding = "floor" // Always round down (6.9 -> 6)
	RoundingRound Rounding = "round" // Nearest, halves away from zero (6.5 -> 7)
	RoundingCeil  Rounding = "ceil"  // Always round up (6.1 -> 7)
)

// ScoreSelection picks which historical scores feed the handicap average.
type ScoreSelection string

const (
	SelectionAll        ScoreSelection = "all"          // Every recorded score
	SelectionLastN      ScoreSelection = "last_n"       // The N most recent scores
	SelectionBestOfLast ScoreSelection = "best_of_last" // The best X of the last Y scores
)

// ScoringType is the league's competition format.
type ScoringType string

const (
	ScoringMatchPlay  ScoringType = "match_play"  // Head-to-head, 20 points split per matchup
	ScoringStrokePlay ScoringType = "stroke_play" // Whole field ranked each week
	ScoringHybrid     ScoringType = "hybrid"      // Matchups plus a weighted field ranking
)

// TieMode decides how tied stroke-play positions share points.
type TieMode string

const (
	TieSplit TieMode = "split" // Average of the slots the tie occupies
	TieSame  TieMode = "same"  // Everyone gets the best slot's value
)

// ByePointsMode decides what a team earns in a week with no opponent.
type ByePointsMode string

const (
	ByeZero          ByePointsMode = "zero"
	ByeFlat          ByePointsMode = "flat"
	ByeLeagueAverage ByePointsMode = "league_average"
	ByeTeamAverage   ByePointsMode = "team_average"
)

// --- Models ---

// League is the top-level container. Everything else hangs off LeagueID.
type League struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Teams     []Team `gorm:"foreignKey:LeagueID"`
}

// Team is a registered team in a league. Approval workflow and rosters live elsewhere;
// the ledger only needs the id, the name (for standings) and whether the team is active.
type Team struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	LeagueID  uuid.UUID `gorm:"type:uuid;not null;index" json:"league_id"`
	Name      string    `gorm:"not null" json:"name"`
	Active    bool      `gorm:"not null" json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// LeagueSettings is the stored form of the league's handicap and scoring policy.
// It is plain data: policy.FromSettings validates it and turns it into the
// immutable values the scoring engines consume.
//
// No field may carry a gorm `default:` tag: on insert gorm replaces a zero value
// (a multiplier of 0, a hybrid weight of 0) with the tag. Defaults come from
// policy.DefaultSettings.
type LeagueSettings struct {
	LeagueID uuid.UUID `gorm:"type:uuid;primaryKey" json:"league_id"`

	// Handicap policy
	BaseScore       float64        `gorm:"not null" json:"base_score"`
	Multiplier      float64        `gorm:"not null" json:"multiplier"`
	Rounding        Rounding       `gorm:"not null" json:"rounding"`
	DefaultHandicap float64        `gorm:"not null" json:"default_handicap"`
	MaxHandicap     *float64       `json:"max_handicap"`
	MinHandicap     *float64       `json:"min_handicap"`
	ScoreSelection  ScoreSelection `gorm:"not null" json:"score_selection"`
	ScoreCount      int            `gorm:"not null" json:"score_count"`
	BestOf          int            `gorm:"not null" json:"best_of"`
	LastOf          int            `gorm:"not null" json:"last_of"`
	DropHighest     int            `gorm:"not null" json:"drop_highest"`
	DropLowest      int            `gorm:"not null" json:"drop_lowest"`
	UseWeighting    bool           `gorm:"not null" json:"use_weighting"`
	WeightRecent    float64        `gorm:"not null" json:"weight_recent"`
	WeightDecay     float64        `gorm:"not null" json:"weight_decay"`
	CapExceptional  bool           `gorm:"not null" json:"cap_exceptional"`
	ExceptionalCap  float64        `gorm:"not null" json:"exceptional_cap"`
	ProvWeeks       int            `gorm:"not null" json:"prov_weeks"`
	ProvMultiplier  float64        `gorm:"not null" json:"prov_multiplier"`
	FreezeWeek      *int           `json:"freeze_week"`
	UseTrend        bool           `gorm:"not null" json:"use_trend"`
	TrendWeight     float64        `gorm:"not null" json:"trend_weight"`

	// Scoring policy
	ScoringType       ScoringType                  `gorm:"not null" json:"scoring_type"`
	PointScale        datatypes.JSONSlice[float64] `gorm:"type:jsonb;not null" json:"point_scale"`
	BonusShow         float64                      `gorm:"not null" json:"bonus_show"`
	BonusBeat         float64                      `gorm:"not null" json:"bonus_beat"`
	DNPPoints         float64                      `gorm:"column:dnp_points;not null" json:"dnp_points"`
	DNPPenalty        float64                      `gorm:"column:dnp_penalty;not null" json:"dnp_penalty"`
	MaxDNP            int                          `gorm:"column:max_dnp;not null" json:"max_dnp"`
	TieMode           TieMode                      `gorm:"not null" json:"tie_mode"`
	ProRate           bool                         `gorm:"not null" json:"pro_rate"`
	HybridFieldWeight float64                      `gorm:"not null" json:"hybrid_field_weight"`
	ByePointsMode     ByePointsMode                `gorm:"not null" json:"bye_points_mode"`
	ByePointsFlat     float64                      `gorm:"not null" json:"bye_points_flat"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Matchup is one week's head-to-head result between two teams.
// Handicaps and nets are nil on forfeits (no scores are recorded for either side).
// The uniqueness of team+week is enforced by the ledger inside the insert transaction,
// because a team can appear on either side and a plain unique index can't express that.
//
// TeamASub/TeamBSub mark a side represented by a substitute. The field points are
// only used by hybrid leagues. ForfeitTeamID names the side that forfeited; the
// other side gets all 20.
type Matchup struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	LeagueID uuid.UUID `gorm:"type:uuid;not null;index:idx_matchups_league_week" json:"league_id"`
	Week     int       `gorm:"not null;index:idx_matchups_league_week" json:"week"`

	TeamAID        uuid.UUID  `gorm:"type:uuid;not null" json:"team_a_id"`
	TeamBID        uuid.UUID  `gorm:"type:uuid;not null" json:"team_b_id"`
	TeamAGross     *float64   `json:"team_a_gross"`
	TeamBGross     *float64   `json:"team_b_gross"`
	TeamAHandicap  *float64   `json:"team_a_handicap"`
	TeamBHandicap  *float64   `json:"team_b_handicap"`
	TeamANet       *float64   `json:"team_a_net"`
	TeamBNet       *float64   `json:"team_b_net"`
	TeamAPoints    float64    `gorm:"not null" json:"team_a_points"`
	TeamBPoints    float64    `gorm:"not null" json:"team_b_points"`
	TeamASub       bool       `gorm:"not null" json:"team_a_sub"`
	TeamBSub       bool       `gorm:"not null" json:"team_b_sub"`
	TeamAFieldPts  float64    `gorm:"column:team_a_field_points;not null" json:"team_a_field_points"`
	TeamBFieldPts  float64    `gorm:"column:team_b_field_points;not null" json:"team_b_field_points"`
	Forfeit        bool       `gorm:"not null" json:"forfeit"`
	ForfeitTeamID  *uuid.UUID `gorm:"type:uuid" json:"forfeit_team_id"`
	PointsOverride bool       `gorm:"column:points_overridden;not null" json:"points_overridden"`

	// CreatedAt doubles as the insertion order used to replay a week deterministically.
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WeeklyScore is one team's stroke-play result for one week.
// Gross, Handicap, Net and Position are nil when the team did not play. Points holds
// the rank points (or DNP points plus penalty); Bonus keeps the show and beat bonuses
// apart for display.
type WeeklyScore struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	LeagueID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_weekly_league_week_team" json:"league_id"`
	Week     int       `gorm:"not null;uniqueIndex:idx_weekly_league_week_team" json:"week"`
	TeamID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_weekly_league_week_team" json:"team_id"`

	Gross    *float64 `json:"gross"`
	Handicap *float64 `json:"handicap"`
	Net      *float64 `json:"net"`
	Points   float64  `gorm:"not null" json:"points"`
	Bonus    float64  `gorm:"not null" json:"bonus"`
	Sub      bool     `gorm:"not null" json:"sub"`
	DNP      bool     `gorm:"column:dnp;not null" json:"dnp"`
	Position *int     `json:"position"`
	Tied     bool     `gorm:"not null" json:"tied"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Bye credits a team that had no opponent in a match-play week.
type Bye struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	LeagueID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_byes_league_week_team" json:"league_id"`
	Week      int       `gorm:"not null;uniqueIndex:idx_byes_league_week_team" json:"week"`
	TeamID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_byes_league_week_team" json:"team_id"`
	Points    float64   `gorm:"not null" json:"points"`
	CreatedAt time.Time `json:"created_at"`
}

// TeamStanding is the derived aggregate for one team. The whole set for a league is
// replaced on every write, so it never drifts from the records it summarizes.
type TeamStanding struct {
	LeagueID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"league_id"`
	TeamID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"team_id"`
	TeamName     string    `gorm:"not null" json:"team_name"`
	Rank         int       `gorm:"not null" json:"rank"`
	TotalPoints  float64   `gorm:"not null" json:"total_points"`
	MatchPoints  float64   `gorm:"not null" json:"match_points"`
	FieldPoints  float64   `gorm:"not null" json:"field_points"`
	StrokePoints float64   `gorm:"not null" json:"stroke_points"`
	ByePoints    float64   `gorm:"not null" json:"bye_points"`
	Wins         int       `gorm:"not null" json:"wins"`
	Losses       int       `gorm:"not null" json:"losses"`
	Ties         int       `gorm:"not null" json:"ties"`
	WeeksPlayed  int       `gorm:"not null" json:"weeks_played"`
	DNPCount     int       `gorm:"column:dnp_count;not null" json:"dnp_count"`
	ByeCount     int       `gorm:"not null" json:"bye_count"`
	PointsPerWk  float64   `gorm:"column:points_per_week;not null" json:"points_per_week"`
	OverDNPLimit bool      `gorm:"column:over_dnp_limit;not null" json:"over_dnp_limit"`
}
