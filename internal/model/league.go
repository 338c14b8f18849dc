package model

import (
	"regexp"
	"strings"
	"time"
)

// Region groups leagues by geography (inferred from league names).
type Region struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;type:varchar(128);uniqueIndex;not null"`
	Slug      string    `gorm:"column:slug;type:varchar(128);uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:now()"`
}

// Season is keyed by the upstream season id. At most one row has IsCurrent=true.
type Season struct {
	ID               uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	ExternalSeasonID int64     `gorm:"column:external_season_id;type:bigint;uniqueIndex;not null"`
	Name             string    `gorm:"column:name;type:varchar(128);not null"`
	IsCurrent        bool      `gorm:"column:is_current;type:boolean;default:false"`
	CreatedAt        time.Time `gorm:"column:created_at;type:timestamp;default:now()"`
	UpdatedAt        time.Time `gorm:"column:updated_at;type:timestamp;default:now()"`
}

// League is keyed by the upstream league id; Name is stored normalized.
type League struct {
	ID               uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	ExternalLeagueID int64     `gorm:"column:external_league_id;type:bigint;uniqueIndex;not null"`
	Name             string    `gorm:"column:name;type:varchar(256);not null"`
	RegionID         uint64    `gorm:"column:region_id;type:bigint;not null;index"`
	VenueID          int64     `gorm:"column:venue_id;type:bigint;default:0"`
	CreatedAt        time.Time `gorm:"column:created_at;type:timestamp;default:now()"`
	UpdatedAt        time.Time `gorm:"column:updated_at;type:timestamp;default:now()"`
}

// Division is the league x season scope under which standings and fixtures are grouped.
type Division struct {
	ID                 uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	ExternalDivisionID int64      `gorm:"column:external_division_id;type:bigint;not null;uniqueIndex:uk_division_league_season"`
	LeagueID           uint64     `gorm:"column:league_id;type:bigint;not null;uniqueIndex:uk_division_league_season"`
	SeasonID           uint64     `gorm:"column:season_id;type:bigint;not null;uniqueIndex:uk_division_league_season"`
	Name               string     `gorm:"column:name;type:varchar(128);not null"`
	Tier               int        `gorm:"column:tier;type:int;default:0"`
	LastScrapedAt      *time.Time `gorm:"column:last_scraped_at;type:timestamp"`
	CreatedAt          time.Time  `gorm:"column:created_at;type:timestamp;default:now()"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;type:timestamp;default:now()"`
}

// Team is keyed by the upstream team id when known, otherwise deduplicated by name.
type Team struct {
	ID             uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	ExternalTeamID *int64    `gorm:"column:external_team_id;type:bigint;uniqueIndex"`
	Name           string    `gorm:"column:name;type:varchar(256);not null;index"`
	CreatedAt      time.Time `gorm:"column:created_at;type:timestamp;default:now()"`
	UpdatedAt      time.Time `gorm:"column:updated_at;type:timestamp;default:now()"`
}

// DivisionTeam links teams to the divisions they play in.
type DivisionTeam struct {
	DivisionID uint64    `gorm:"column:division_id;type:bigint;primaryKey"`
	TeamID     uint64    `gorm:"column:team_id;type:bigint;primaryKey"`
	CreatedAt  time.Time `gorm:"column:created_at;type:timestamp;default:now()"`
}

// Standing is one row of a division table snapshot.
type Standing struct {
	ID              uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	TeamID          uint64    `gorm:"column:team_id;type:bigint;not null;uniqueIndex:uk_standing_team_division"`
	DivisionID      uint64    `gorm:"column:division_id;type:bigint;not null;uniqueIndex:uk_standing_team_division;index"`
	Position        int       `gorm:"column:position;type:int;not null"`
	Played          int       `gorm:"column:played;type:int;default:0"`
	Wins            int       `gorm:"column:wins;type:int;default:0"`
	Losses          int       `gorm:"column:losses;type:int;default:0"`
	Draws           int       `gorm:"column:draws;type:int;default:0"`
	ForfeitsFor     int       `gorm:"column:forfeits_for;type:int;default:0"`
	ForfeitsAgainst int       `gorm:"column:forfeits_against;type:int;default:0"`
	PointsFor       int       `gorm:"column:points_for;type:int;default:0"`
	PointsAgainst   int       `gorm:"column:points_against;type:int;default:0"`
	PointDifference int       `gorm:"column:point_difference;type:int;default:0"`
	BonusPoints     int       `gorm:"column:bonus_points;type:int;default:0"`
	TotalPoints     int       `gorm:"column:total_points;type:int;default:0"`
	UpdatedAt       time.Time `gorm:"column:updated_at;type:timestamp;default:now()"`
}

func (Region) TableName() string       { return "regions" }
func (Season) TableName() string       { return "seasons" }
func (League) TableName() string       { return "leagues" }
func (Division) TableName() string     { return "divisions" }
func (Team) TableName() string         { return "teams" }
func (DivisionTeam) TableName() string { return "division_teams" }
func (Standing) TableName() string     { return "standings" }

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases name and joins its alphanumeric runs with dashes.
func Slugify(name string) string {
	return strings.Trim(slugSeparators.ReplaceAllString(strings.ToLower(name), "-"), "-")
}
