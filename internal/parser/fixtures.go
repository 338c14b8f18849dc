package parser

import (
	"regexp"
	"strings"

	"LeagueSync/internal/model"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

var (
	roundPattern = regexp.MustCompile(`(?i)\b(?:round|rnd|rd|week|wk)\.?\s*(\d{1,3})\b`)
	pitchPattern = regexp.MustCompile(`(?i)\b(?:pitch|court|field)\s*[:#]?\s*[a-z0-9]+\b`)
)

// fixtureCursor carries the date and round headers seen so far, in document order.
type fixtureCursor struct {
	date  string
	round *int
}

// header updates the cursor from a row or block that is not itself a fixture.
func (c *fixtureCursor) header(text string) {
	if d, ok := normalizeDate(text); ok {
		c.date = d
	}
	if m := roundPattern.FindStringSubmatch(text); m != nil {
		if n, ok := parseInt(m[1]); ok {
			c.round = &n
		}
	}
}

// ParseFixtures reads fixtures from table rows, falling back to div/li blocks when no
// table row yields one. Home is the first team link, away the second.
func (p *Parser) ParseFixtures(html string) ([]model.ScrapedFixture, error) {
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []model.ScrapedFixture
	add := func(rec model.ScrapedFixture) {
		key := fixtureKey(rec.HomeTeamExternalID, rec.AwayTeamExternalID, rec.Date)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, rec)
	}

	cursor := &fixtureCursor{}
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(i int, row *goquery.Selection) {
			if rec, ok := p.fixtureFromBlock(row, cursor, i); ok {
				add(rec)
			}
		})
	})

	if len(out) == 0 {
		cursor = &fixtureCursor{}
		i := 0
		doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
			switch {
			case isFixtureBlock(sel):
				if rec, ok := p.fixtureFromBlock(sel, cursor, i); ok {
					add(rec)
				}
				i++
			case isHeading(sel):
				cursor.header(nodeText(sel))
			}
		})
	}

	p.logger.WithField("count", len(out)).Debug("parsed fixtures")
	return out, nil
}

func fixtureKey(home, away int64, date string) string {
	var b strings.Builder
	b.WriteString(date)
	b.WriteByte('|')
	b.WriteString(formatID(home))
	b.WriteByte('|')
	b.WriteString(formatID(away))
	return b.String()
}

// fixtureFromBlock reads one fixture from a table row or div block. Blocks with fewer
// than two team links are treated as date/round headers.
func (p *Parser) fixtureFromBlock(sel *goquery.Selection, cursor *fixtureCursor, index int) (model.ScrapedFixture, bool) {
	anchors := teamAnchors(sel)
	text := nodeText(sel)
	if len(anchors) < 2 {
		cursor.header(text)
		return model.ScrapedFixture{}, false
	}

	home, away := anchors[0], anchors[1]
	homeID, awayID := anchorID(home, paramTeam), anchorID(away, paramTeam)
	if homeID == awayID {
		p.logger.WithFields(logrus.Fields{"row": index, "team_id": homeID}).Debug("fixture row with same team on both sides skipped")
		return model.ScrapedFixture{}, false
	}

	rest := textWithout(sel, anchors[:2])
	date, ok := normalizeDate(rest)
	if !ok {
		date = cursor.date
	}

	rec := model.ScrapedFixture{
		HomeTeamExternalID: homeID,
		HomeTeamName:       cleanText(home.Text()),
		AwayTeamExternalID: awayID,
		AwayTeamName:       cleanText(away.Text()),
		Date:               date,
		RoundNumber:        cursor.round,
		IsForfeit:          isForfeit(text),
	}
	if t, ok := normalizeTime(rest); ok {
		rec.Time = t
	}
	if m := pitchPattern.FindString(rest); m != "" {
		rec.Pitch = cleanText(m)
	}
	if m := roundPattern.FindStringSubmatch(rest); m != nil {
		if n, ok := parseInt(m[1]); ok {
			rec.RoundNumber = &n
		}
	}
	if id := firstAnchorID(sel, paramFixture); id > 0 {
		rec.ExternalFixtureID = &id
	} else if id := firstAnchorID(sel, paramMatch); id > 0 {
		rec.ExternalFixtureID = &id
	}
	rec.HomeScore, rec.AwayScore = extractScore(sel, stripDates(rest))
	rec.Status = model.DeriveFixtureStatus(rec.HomeScore, rec.AwayScore)

	if !p.valid("fixture", rec, logrus.Fields{"row": index, "home_id": homeID, "away_id": awayID}) {
		return model.ScrapedFixture{}, false
	}
	return rec, true
}

// stripDates blanks dates and times so their digits are not read as scores.
func stripDates(s string) string {
	for _, re := range []*regexp.Regexp{isoDatePattern, slashDatePattern, textDatePattern, timePattern} {
		s = re.ReplaceAllString(s, " ")
	}
	return s
}

// isFixtureBlock reports whether sel is an innermost div/li holding two or more team links.
func isFixtureBlock(sel *goquery.Selection) bool {
	if !sel.Is("div, li, article") || len(teamAnchors(sel)) < 2 {
		return false
	}
	inner := sel.Find("div, li, article").FilterFunction(func(_ int, child *goquery.Selection) bool {
		return len(teamAnchors(child)) >= 2
	})
	return inner.Length() == 0
}

// isHeading reports whether sel may carry a date or round header in block layouts.
func isHeading(sel *goquery.Selection) bool {
	if sel.Is("h1, h2, h3, h4, h5, h6, dt, caption") {
		return true
	}
	class, _ := sel.Attr("class")
	class = strings.ToLower(class)
	return (strings.Contains(class, "date") || strings.Contains(class, "round")) && len(teamAnchors(sel)) == 0
}
