package model

import (
	"time"

	"gorm.io/gorm"
)

// FixtureStatus is derived from the scores and never set independently.
type FixtureStatus string

const (
	FixtureScheduled FixtureStatus = "scheduled"
	FixtureCompleted FixtureStatus = "completed"
)

// DeriveFixtureStatus returns completed iff both scores are present. The date plays no part:
// a past fixture without a score is treated as pending.
func DeriveFixtureStatus(homeScore, awayScore *int) FixtureStatus {
	if homeScore != nil && awayScore != nil {
		return FixtureCompleted
	}
	return FixtureScheduled
}

// Fixture is a match between two teams in a division on a date.
// VenueVerified is false when home/away came from a team-profile page and was never
// confirmed against a division fixtures page.
type Fixture struct {
	ID                uint64        `gorm:"column:id;primaryKey;autoIncrement"`
	ExternalFixtureID *int64        `gorm:"column:external_fixture_id;type:bigint;index"`
	DivisionID        uint64        `gorm:"column:division_id;type:bigint;not null;uniqueIndex:uk_fixture_division_teams_date"`
	HomeTeamID        uint64        `gorm:"column:home_team_id;type:bigint;not null;uniqueIndex:uk_fixture_division_teams_date"`
	AwayTeamID        uint64        `gorm:"column:away_team_id;type:bigint;not null;uniqueIndex:uk_fixture_division_teams_date"`
	MatchDate         time.Time     `gorm:"column:match_date;type:date;not null;uniqueIndex:uk_fixture_division_teams_date"`
	MatchTime         *string       `gorm:"column:match_time;type:varchar(5)"`
	Pitch             *string       `gorm:"column:pitch;type:varchar(64)"`
	RoundNumber       *int          `gorm:"column:round_number;type:int"`
	HomeScore         *int          `gorm:"column:home_score;type:int"`
	AwayScore         *int          `gorm:"column:away_score;type:int"`
	Status            FixtureStatus `gorm:"column:status;type:varchar(16);not null;default:scheduled"`
	IsForfeit         bool          `gorm:"column:is_forfeit;type:boolean;default:false"`
	VenueVerified     bool          `gorm:"column:venue_verified;type:boolean;not null"`
	CreatedAt         time.Time     `gorm:"column:created_at;type:timestamp;default:now()"`
	UpdatedAt         time.Time     `gorm:"column:updated_at;type:timestamp;default:now()"`
}

// BeforeSave keeps Status consistent with the scores on every write.
func (f *Fixture) BeforeSave(tx *gorm.DB) error {
	f.Status = DeriveFixtureStatus(f.HomeScore, f.AwayScore)
	return nil
}

// Player is keyed by the upstream player id when known, otherwise by name within a team.
type Player struct {
	ID               uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	ExternalPlayerID *int64    `gorm:"column:external_player_id;type:bigint;uniqueIndex"`
	Name             string    `gorm:"column:name;type:varchar(256);not null;index:idx_player_name_team"`
	TeamID           uint64    `gorm:"column:team_id;type:bigint;not null;index:idx_player_name_team"`
	CreatedAt        time.Time `gorm:"column:created_at;type:timestamp;default:now()"`
	UpdatedAt        time.Time `gorm:"column:updated_at;type:timestamp;default:now()"`
}

// PlayerAward counts awards of one type a player received in a division.
type PlayerAward struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	PlayerID   uint64    `gorm:"column:player_id;type:bigint;not null;uniqueIndex:uk_award_player_division_type"`
	TeamID     uint64    `gorm:"column:team_id;type:bigint;not null"`
	DivisionID uint64    `gorm:"column:division_id;type:bigint;not null;uniqueIndex:uk_award_player_division_type"`
	FixtureID  *uint64   `gorm:"column:fixture_id;type:bigint"`
	AwardType  string    `gorm:"column:award_type;type:varchar(64);not null;uniqueIndex:uk_award_player_division_type"`
	AwardCount int       `gorm:"column:award_count;type:int;default:1"`
	UpdatedAt  time.Time `gorm:"column:updated_at;type:timestamp;default:now()"`
}

func (Fixture) TableName() string     { return "fixtures" }
func (Player) TableName() string      { return "players" }
func (PlayerAward) TableName() string { return "player_awards" }
