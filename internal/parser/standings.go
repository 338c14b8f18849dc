package parser

import (
	"LeagueSync/internal/model"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// Standings column names.
const (
	colPosition        = "position"
	colTeam            = "team"
	colPlayed          = "played"
	colWins            = "wins"
	colLosses          = "losses"
	colDraws           = "draws"
	colForfeitsFor     = "forfeits_for"
	colForfeitsAgainst = "forfeits_against"
	colPointsFor       = "points_for"
	colPointsAgainst   = "points_against"
	colPointDifference = "point_difference"
	colBonusPoints     = "bonus_points"
	colTotalPoints     = "total_points"
)

var standingsSynonyms = map[string]string{
	"pos": colPosition, "position": colPosition, "#": colPosition, "rank": colPosition,
	"team": colTeam, "team name": colTeam, "club": colTeam,
	"p": colPlayed, "pld": colPlayed, "pl": colPlayed, "played": colPlayed, "gp": colPlayed, "mp": colPlayed,
	"w": colWins, "won": colWins, "wins": colWins,
	"l": colLosses, "lost": colLosses, "losses": colLosses,
	"d": colDraws, "drawn": colDraws, "draws": colDraws, "t": colDraws, "tied": colDraws, "ties": colDraws,
	"ff": colForfeitsFor, "forfeits for": colForfeitsFor, "forfeit for": colForfeitsFor,
	"fa": colForfeitsAgainst, "forfeits against": colForfeitsAgainst, "forfeit against": colForfeitsAgainst,
	"f": colPointsFor, "for": colPointsFor, "pf": colPointsFor, "points for": colPointsFor, "gf": colPointsFor,
	"a": colPointsAgainst, "against": colPointsAgainst, "pa": colPointsAgainst, "points against": colPointsAgainst, "ga": colPointsAgainst,
	"+/-": colPointDifference, "diff": colPointDifference, "pd": colPointDifference, "gd": colPointDifference, "difference": colPointDifference,
	"bp": colBonusPoints, "bonus": colBonusPoints, "bonus points": colBonusPoints,
	"pts": colTotalPoints, "points": colTotalPoints, "total": colTotalPoints, "total points": colTotalPoints,
}

// standingsPositional is the usual column order of a standings table.
var standingsPositional = []string{
	colPosition, colTeam, colPlayed, colWins, colLosses, colDraws,
	colForfeitsFor, colForfeitsAgainst, colPointsFor, colPointsAgainst,
	colPointDifference, colBonusPoints, colTotalPoints,
}

// ParseStandings reads the first standings table (header mentions team and points) that
// yields rows. Position follows row order and only advances for rows with a team id.
func (p *Parser) ParseStandings(html string) ([]model.ScrapedStanding, error) {
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}

	var out []model.ScrapedStanding
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		labels, header := headerCells(table)
		if !tableMatches(labels, []string{"team", "club"}, []string{"pts", "points"}) {
			return true
		}
		cols := mapColumns(labels, standingsSynonyms, standingsPositional)
		out = p.standingsFromTable(dataRows(table, header), cols)
		return len(out) == 0
	})

	p.logger.WithField("count", len(out)).Debug("parsed standings")
	return out, nil
}

func (p *Parser) standingsFromTable(rows *goquery.Selection, cols map[string]int) []model.ScrapedStanding {
	var out []model.ScrapedStanding
	rows.Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}

		var teamLink *goquery.Selection
		if teamCell, _, ok := cell(cells, cols, colTeam); ok {
			if anchors := teamAnchors(teamCell); len(anchors) > 0 {
				teamLink = anchors[0]
			}
		}
		if teamLink == nil {
			if anchors := teamAnchors(row); len(anchors) > 0 {
				teamLink = anchors[0]
			}
		}
		if teamLink == nil {
			p.logger.WithField("row", i).Debug("standings row without team link skipped")
			return
		}

		rec := model.ScrapedStanding{
			TeamExternalID:  anchorID(teamLink, paramTeam),
			TeamName:        cleanText(teamLink.Text()),
			Position:        len(out) + 1,
			Played:          intCell(cells, cols, colPlayed),
			Wins:            intCell(cells, cols, colWins),
			Losses:          intCell(cells, cols, colLosses),
			Draws:           intCell(cells, cols, colDraws),
			ForfeitsFor:     intCell(cells, cols, colForfeitsFor),
			ForfeitsAgainst: intCell(cells, cols, colForfeitsAgainst),
			PointsFor:       intCell(cells, cols, colPointsFor),
			PointsAgainst:   intCell(cells, cols, colPointsAgainst),
			BonusPoints:     intCell(cells, cols, colBonusPoints),
			TotalPoints:     intCell(cells, cols, colTotalPoints),
		}
		if _, text, ok := cell(cells, cols, colPointDifference); ok {
			rec.PointDifference, _ = parseInt(text)
		} else {
			rec.PointDifference = rec.PointsFor - rec.PointsAgainst
		}

		if p.valid("standing", rec, logrus.Fields{"row": i, "team_id": rec.TeamExternalID}) {
			out = append(out, rec)
		}
	})
	return out
}
