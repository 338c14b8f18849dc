package parser

import (
	"fmt"
	"regexp"
	"strings"

	"LeagueSync/internal/model"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

var teamTitlePrefix = regexp.MustCompile(`(?i)^(?:team\s*(?:profile)?\s*[:\-–—|]\s*)`)

// ParseTeamProfile reads the page of team teamID: its name, the fixtures listed in tables
// whose header mentions a date and an opponent or result, and the season/division links.
// The page does not say which side was at home, so the subject team is always recorded as
// home; scored fixtures are historical and unscored ones upcoming.
func (p *Parser) ParseTeamProfile(html string, teamID int64) (*model.ScrapedTeamProfile, error) {
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}

	profile := &model.ScrapedTeamProfile{
		TeamExternalID: teamID,
		TeamName:       teamName(doc, teamID),
		SeasonLinks:    seasonLinks(doc),
	}

	var fallback *model.DivisionRef
	if len(profile.SeasonLinks) == 1 {
		l := profile.SeasonLinks[0]
		fallback = &model.DivisionRef{LeagueID: l.LeagueExternalID, SeasonID: l.SeasonExternalID, DivisionID: l.DivisionExternalID}
	}

	seen := make(map[string]bool)
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		labels, header := headerCells(table)
		if !tableMatches(labels, []string{"date"}, []string{"opposition", "opponent", "opponents", "result", "vs", "versus"}) {
			return
		}
		cursor := &fixtureCursor{}
		dataRows(table, header).Each(func(i int, row *goquery.Selection) {
			rec, ok := p.teamFixtureFromRow(row, teamID, cursor, fallback, i)
			if !ok {
				return
			}
			key := fixtureKey(teamID, rec.OpponentExternalID, rec.Date)
			if seen[key] {
				return
			}
			seen[key] = true
			if rec.SubjectScore != nil && rec.OpponentScore != nil {
				profile.Historical = append(profile.Historical, rec)
			} else {
				profile.Upcoming = append(profile.Upcoming, rec)
			}
		})
	})

	if !p.valid("team_profile", *profile, logrus.Fields{"team_id": teamID}) {
		return nil, fmt.Errorf("team %d: %w", teamID, ErrUnrecognizedPage)
	}
	p.logger.WithFields(logrus.Fields{
		"team_id":    teamID,
		"historical": len(profile.Historical),
		"upcoming":   len(profile.Upcoming),
		"seasons":    len(profile.SeasonLinks),
	}).Debug("parsed team profile")
	return profile, nil
}

func (p *Parser) teamFixtureFromRow(row *goquery.Selection, teamID int64, cursor *fixtureCursor, fallback *model.DivisionRef, index int) (model.ScrapedTeamFixture, bool) {
	var opponent *goquery.Selection
	for _, a := range teamAnchors(row) {
		if anchorID(a, paramTeam) != teamID {
			opponent = a
			break
		}
	}
	text := nodeText(row)
	if opponent == nil {
		cursor.header(text)
		return model.ScrapedTeamFixture{}, false
	}

	rest := textWithout(row, []*goquery.Selection{opponent})
	date, ok := normalizeDate(rest)
	if !ok {
		date = cursor.date
	}
	rec := model.ScrapedTeamFixture{
		Date:               date,
		OpponentExternalID: anchorID(opponent, paramTeam),
		OpponentName:       cleanText(opponent.Text()),
		IsForfeit:          isForfeit(text),
		Division:           fallback,
	}
	if t, ok := normalizeTime(rest); ok {
		rec.Time = t
	}
	rec.SubjectScore, rec.OpponentScore = extractScore(row, stripDates(rest))

	row.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if anchorID(a, paramDivision) == 0 {
			return true
		}
		rec.Division = &model.DivisionRef{
			VenueID:    anchorID(a, paramVenue),
			LeagueID:   anchorID(a, paramLeague),
			SeasonID:   anchorID(a, paramSeason),
			DivisionID: anchorID(a, paramDivision),
		}
		return false
	})

	if !p.valid("team_fixture", rec, logrus.Fields{"row": index, "team_id": teamID, "opponent_id": rec.OpponentExternalID}) {
		return model.ScrapedTeamFixture{}, false
	}
	return rec, true
}

// teamName prefers the page heading, then the text of a link to the team itself.
func teamName(doc *goquery.Document, teamID int64) string {
	for _, sel := range []string{"h1", "h2", ".team-name", "title"} {
		name := cleanText(doc.Find(sel).First().Text())
		name = strings.TrimSpace(teamTitlePrefix.ReplaceAllString(name, ""))
		if name != "" {
			return name
		}
	}
	var name string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if anchorID(a, paramTeam) == teamID {
			name = cleanText(a.Text())
		}
		return name == ""
	})
	return name
}

// seasonLinks collects the distinct season/division links on the page.
func seasonLinks(doc *goquery.Document) []model.ScrapedSeasonLink {
	seen := make(map[string]bool)
	var out []model.ScrapedSeasonLink
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		season, division := anchorID(a, paramSeason), anchorID(a, paramDivision)
		if season == 0 || division == 0 {
			return
		}
		league := anchorID(a, paramLeague)
		key := formatID(league) + ":" + formatID(season) + ":" + formatID(division)
		if seen[key] {
			return
		}
		seen[key] = true

		label := cleanText(a.Text())
		if around := cleanText(a.Parent().Text()); len(around) > len(label) {
			label = around
		}
		link := model.ScrapedSeasonLink{
			LeagueExternalID:   league,
			SeasonExternalID:   season,
			DivisionExternalID: division,
			SeasonName:         seasonPattern.FindString(label),
			DivisionName:       divisionName(label),
		}
		out = append(out, link)
	})
	return out
}
