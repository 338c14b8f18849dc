package parser

import (
	"LeagueSync/internal/model"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// DefaultAwardType is used when neither a column nor a table title names the award.
const DefaultAwardType = "Player of the Match"

const (
	colPlayer    = "player"
	colAwardType = "award_type"
	colCount     = "count"
)

var statisticsSynonyms = map[string]string{
	"player": colPlayer, "name": colPlayer, "player name": colPlayer,
	"team": colTeam, "club": colTeam, "team name": colTeam,
	"award": colAwardType, "award type": colAwardType, "type": colAwardType, "category": colAwardType,
	"count": colCount, "total": colCount, "awards": colCount, "no": colCount, "number": colCount,
	"qty": colCount, "times": colCount, "player of the match": colCount, "pom": colCount, "mvp": colCount,
}

var statisticsPositional = []string{colPlayer, colTeam, colCount}

// ParseStatistics reads player award rows from every table whose header mentions a player
// and an award or match. A missing or unreadable count is 1.
func (p *Parser) ParseStatistics(html string) ([]model.ScrapedAward, error) {
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}

	var out []model.ScrapedAward
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		labels, header := headerCells(table)
		if !tableMatches(labels, []string{"player", "name"}, []string{"award", "awards", "match", "mvp", "pom"}) {
			return
		}
		cols := mapColumns(labels, statisticsSynonyms, statisticsPositional)
		awardType := tableTitle(table)
		if awardType == "" {
			awardType = DefaultAwardType
		}
		dataRows(table, header).Each(func(i int, row *goquery.Selection) {
			if rec, ok := p.awardFromRow(row, cols, awardType, i); ok {
				out = append(out, rec)
			}
		})
	})

	p.logger.WithField("count", len(out)).Debug("parsed statistics")
	return out, nil
}

func (p *Parser) awardFromRow(row *goquery.Selection, cols map[string]int, awardType string, index int) (model.ScrapedAward, bool) {
	cells := row.Find("td")
	if cells.Length() == 0 {
		return model.ScrapedAward{}, false
	}

	rec := model.ScrapedAward{AwardType: awardType, AwardCount: 1}

	if playerCell, text, ok := cell(cells, cols, colPlayer); ok {
		rec.PlayerName = text
		if a := playerCell.Find("a[href]").First(); a.Length() > 0 {
			if id := anchorID(a, paramPlayer); id > 0 {
				rec.PlayerExternalID = &id
				rec.PlayerName = cleanText(a.Text())
			}
		}
	}
	if rec.PlayerExternalID == nil {
		if id := firstAnchorID(row, paramPlayer); id > 0 {
			rec.PlayerExternalID = &id
		}
	}

	if anchors := teamAnchors(row); len(anchors) > 0 {
		id := anchorID(anchors[0], paramTeam)
		rec.TeamExternalID = &id
		rec.TeamName = cleanText(anchors[0].Text())
	} else if _, text, ok := cell(cells, cols, colTeam); ok {
		rec.TeamName = text
	}

	if _, text, ok := cell(cells, cols, colAwardType); ok && text != "" {
		rec.AwardType = text
	}
	if _, text, ok := cell(cells, cols, colCount); ok {
		if n, ok := parseInt(text); ok {
			rec.AwardCount = n
		}
	}

	if !p.valid("award", rec, logrus.Fields{"row": index, "player": rec.PlayerName}) {
		return model.ScrapedAward{}, false
	}
	return rec, true
}

// tableTitle returns the table's caption or the nearest heading before it.
func tableTitle(table *goquery.Selection) string {
	if caption := cleanText(table.Find("caption").First().Text()); caption != "" {
		return caption
	}
	for node := table; node.Length() > 0 && !node.Is("body"); node = node.Parent() {
		if h := node.PrevAll().Filter("h1, h2, h3, h4, h5, h6").First(); h.Length() > 0 {
			return cleanText(h.Text())
		}
	}
	return ""
}
