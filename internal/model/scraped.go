package model

// DivisionRef addresses a division's pages on the upstream site.
type DivisionRef struct {
	VenueID    int64
	LeagueID   int64
	SeasonID   int64
	DivisionID int64
}

// ScrapedLeagueListItem is one (league, season, division) entry of the league list page.
type ScrapedLeagueListItem struct {
	RegionName         string `validate:"required"`
	VenueID            int64  `validate:"gte=0"`
	LeagueExternalID   int64  `validate:"gt=0"`
	LeagueName         string `validate:"required"`
	SeasonExternalID   int64  `validate:"gt=0"`
	SeasonName         string `validate:"required"`
	DivisionExternalID int64  `validate:"gt=0"`
	DivisionName       string `validate:"required"`
	Tier               int    `validate:"gte=0"`
}

// Ref returns the page address of the item's division.
func (i ScrapedLeagueListItem) Ref() DivisionRef {
	return DivisionRef{
		VenueID:    i.VenueID,
		LeagueID:   i.LeagueExternalID,
		SeasonID:   i.SeasonExternalID,
		DivisionID: i.DivisionExternalID,
	}
}

// ScrapedLeagueList is the parsed league list page.
type ScrapedLeagueList struct {
	Items []ScrapedLeagueListItem
	// Regions in first-seen order.
	Regions []string
	Seasons map[int64]string
	// CurrentSeasonID is the season the page marks as selected, 0 when the page has no marker.
	CurrentSeasonID int64
}

// ScrapedStanding is one parsed standings table row.
type ScrapedStanding struct {
	TeamExternalID  int64  `validate:"gt=0"`
	TeamName        string `validate:"required"`
	Position        int    `validate:"gt=0"`
	Played          int    `validate:"gte=0"`
	Wins            int    `validate:"gte=0"`
	Losses          int    `validate:"gte=0"`
	Draws           int    `validate:"gte=0"`
	ForfeitsFor     int    `validate:"gte=0"`
	ForfeitsAgainst int    `validate:"gte=0"`
	PointsFor       int    `validate:"gte=0"`
	PointsAgainst   int    `validate:"gte=0"`
	PointDifference int
	BonusPoints     int
	TotalPoints     int
}

// ScrapedFixture is one parsed fixture. Date is ISO (YYYY-MM-DD), Time is HH:MM.
type ScrapedFixture struct {
	ExternalFixtureID  *int64 `validate:"omitempty,gt=0"`
	HomeTeamExternalID int64  `validate:"gt=0"`
	HomeTeamName       string `validate:"required"`
	AwayTeamExternalID int64  `validate:"gt=0,nefield=HomeTeamExternalID"`
	AwayTeamName       string `validate:"required"`
	Date               string `validate:"required,datetime=2006-01-02"`
	Time               string `validate:"omitempty,datetime=15:04"`
	Pitch              string
	RoundNumber        *int          `validate:"omitempty,gt=0"`
	HomeScore          *int          `validate:"omitempty,gte=0"`
	AwayScore          *int          `validate:"omitempty,gte=0"`
	Status             FixtureStatus `validate:"oneof=scheduled completed"`
	IsForfeit          bool
}

// ScrapedAward is one parsed statistics row.
type ScrapedAward struct {
	PlayerExternalID *int64 `validate:"omitempty,gt=0"`
	PlayerName       string `validate:"required"`
	TeamExternalID   *int64 `validate:"omitempty,gt=0"`
	TeamName         string `validate:"required"`
	AwardType        string `validate:"required"`
	AwardCount       int    `validate:"gt=0"`
}

// ScrapedTeamFixture is a fixture seen from a team's own page. The page never says which side
// is home, so the subject team is recorded as home until matched against a stored fixture.
type ScrapedTeamFixture struct {
	Date               string `validate:"required,datetime=2006-01-02"`
	Time               string `validate:"omitempty,datetime=15:04"`
	OpponentExternalID int64  `validate:"gt=0"`
	OpponentName       string `validate:"required"`
	SubjectScore       *int   `validate:"omitempty,gte=0"`
	OpponentScore      *int   `validate:"omitempty,gte=0"`
	Division           *DivisionRef
	IsForfeit          bool
}

// ScrapedSeasonLink is a season/division the team page links to.
type ScrapedSeasonLink struct {
	LeagueExternalID   int64 `validate:"gte=0"`
	SeasonExternalID   int64 `validate:"gt=0"`
	SeasonName         string
	DivisionExternalID int64 `validate:"gt=0"`
	DivisionName       string
}

// ScrapedTeamProfile is the parsed team page.
type ScrapedTeamProfile struct {
	TeamExternalID int64  `validate:"gt=0"`
	TeamName       string `validate:"required"`
	Historical     []ScrapedTeamFixture
	Upcoming       []ScrapedTeamFixture
	SeasonLinks    []ScrapedSeasonLink
}
