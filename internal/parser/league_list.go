package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"LeagueSync/internal/model"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

var (
	seasonPattern   = regexp.MustCompile(`(?i)\b(?:(?:spring|summer|autumn|fall|winter)\s+)?(?:19|20)\d{2}(?:\s*[/\-–]\s*(?:19|20)?\d{2})?(?:\s+season)?\b`)
	divisionPattern = regexp.MustCompile(`(?i)\b(?:(?:premier(?:ship)?|championship|first|second|third|fourth)\s+division|(?:division|div\.?|tier|conference|group|pool)\s*[a-z0-9]+|premier(?:ship)?|championship)\b`)
	tierPattern     = regexp.MustCompile(`(?i)\b(?:division|div\.?|tier)\s*([0-9]+|[a-z]+)\b|\b(first|second|third|fourth)\s+division\b`)
	leagueNameTrim  = regexp.MustCompile(`^[\s\-–—|:•·]+|[\s\-–—|:•·]+$`)
)

var genericLinkText = map[string]bool{
	"standings": true, "table": true, "league table": true, "fixtures": true,
	"results": true, "fixtures & results": true, "view": true,
}

var tierWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"first": 1, "second": 2, "third": 3, "fourth": 4,
	"a": 1, "b": 2, "c": 3, "d": 4,
}

const listHeadings = "h1, h2, h3, h4, h5, h6, caption, [class*='league'], [class*='season'], [class*='division'], [class*='heading']"

// ParseLeagueList reads the league list page: every link to a standings or fixtures page
// that carries league, season and division ids becomes one item, deduplicated on that
// triple in first-seen order.
func (p *Parser) ParseLeagueList(html string) (*model.ScrapedLeagueList, error) {
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}

	list := &model.ScrapedLeagueList{Seasons: make(map[int64]string)}
	p.readSeasonSelect(doc, list)

	seen := make(map[string]bool)
	regionSeen := make(map[string]bool)
	doc.Find("a[href]").Each(func(i int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		lower := strings.ToLower(href)
		if !strings.Contains(lower, "standings") && !strings.Contains(lower, "fixtures") {
			return
		}
		league, season, division := extractID(href, paramLeague), extractID(href, paramSeason), extractID(href, paramDivision)
		if league == 0 || season == 0 || division == 0 {
			return
		}
		key := formatID(league) + ":" + formatID(season) + ":" + formatID(division)
		if seen[key] {
			return
		}

		item := p.leagueListItem(a, list, league, season, division)
		item.VenueID = extractID(href, paramVenue)
		if !p.valid("league_list_item", item, logrus.Fields{"link": i, "key": key}) {
			return
		}
		seen[key] = true
		list.Items = append(list.Items, item)
		if _, ok := list.Seasons[season]; !ok {
			list.Seasons[season] = item.SeasonName
		}
		if !regionSeen[item.RegionName] {
			regionSeen[item.RegionName] = true
			list.Regions = append(list.Regions, item.RegionName)
		}
	})

	p.logger.WithFields(logrus.Fields{
		"items":          len(list.Items),
		"regions":        len(list.Regions),
		"seasons":        len(list.Seasons),
		"current_season": list.CurrentSeasonID,
	}).Debug("parsed league list")
	return list, nil
}

func (p *Parser) leagueListItem(a *goquery.Selection, list *model.ScrapedLeagueList, league, season, division int64) model.ScrapedLeagueListItem {
	headings := nearestHeadings(a)

	around := a.Closest("li, tr, p, dd")
	if around.Length() == 0 {
		around = a.Parent()
	}
	surrounding := cleanText(around.Text())

	seasonName := seasonPattern.FindString(surrounding)
	if seasonName == "" {
		seasonName = headings.season
	}
	if seasonName == "" {
		seasonName = list.Seasons[season]
	}
	if seasonName == "" {
		seasonName = fmt.Sprintf("Season %d", season)
	}

	divName := divisionName(surrounding)
	if divName == "" {
		if text := cleanText(a.Text()); text != "" && !genericLinkText[strings.ToLower(text)] {
			divName = text
		}
	}
	if divName == "" {
		divName = headings.division
	}
	if divName == "" {
		divName = fmt.Sprintf("Division %d", division)
	}

	leagueName := headings.league
	if leagueName == "" {
		leagueName = fmt.Sprintf("League %d", league)
	}

	return model.ScrapedLeagueListItem{
		RegionName:         p.regionFor(leagueName),
		LeagueExternalID:   league,
		LeagueName:         leagueName,
		SeasonExternalID:   season,
		SeasonName:         cleanText(seasonName),
		DivisionExternalID: division,
		DivisionName:       divName,
		Tier:               inferTier(divName),
	}
}

type headingContext struct {
	league   string
	season   string
	division string
}

// nearestHeadings walks up from sel and classifies the closest preceding headings as
// season, division or league labels. The first heading that is neither is the league.
func nearestHeadings(sel *goquery.Selection) headingContext {
	var ctx headingContext
	for node := sel; node.Length() > 0 && !node.Is("html"); node = node.Parent() {
		node.PrevAll().Each(func(_ int, sib *goquery.Selection) {
			if ctx.league != "" {
				return
			}
			// a sibling holding division links is another league's block
			if sib.Find("a[href*='DivisionId'], a[href*='divisionid']").Length() > 0 {
				return
			}
			heading := sib
			if !sib.Is(listHeadings) {
				if heading = sib.Find(listHeadings).Last(); heading.Length() == 0 {
					return
				}
			}
			ctx.classify(cleanText(heading.Text()))
		})
		if ctx.league != "" {
			break
		}
	}
	return ctx
}

func (c *headingContext) classify(text string) {
	if text == "" {
		return
	}
	if s := seasonPattern.FindString(text); s != "" {
		if c.season == "" {
			c.season = s
		}
		text = strings.Replace(text, s, " ", 1)
		if len(cleanLeagueName(text)) < 3 {
			return
		}
	}
	if d := divisionPattern.FindString(text); d != "" && len(cleanLeagueName(strings.Replace(text, d, " ", 1))) < 3 {
		if c.division == "" {
			c.division = cleanText(d)
		}
		return
	}
	c.league = cleanLeagueName(text)
}

// cleanLeagueName collapses whitespace and strips separator runs at both ends.
func cleanLeagueName(name string) string {
	return leagueNameTrim.ReplaceAllString(cleanText(name), "")
}

func divisionName(text string) string {
	return cleanText(divisionPattern.FindString(text))
}

// inferTier reads a division's level from its name; 0 when unknown.
func inferTier(name string) int {
	if m := tierPattern.FindStringSubmatch(name); m != nil {
		word := strings.ToLower(m[1] + m[2])
		if n, err := strconv.Atoi(word); err == nil {
			return n
		}
		if n, ok := tierWords[word]; ok {
			return n
		}
	}
	lower := strings.ToLower(name)
	if strings.Contains(lower, "premier") || strings.Contains(lower, "championship") {
		return 1
	}
	return 0
}

// readSeasonSelect fills season names from a season drop-down and takes its selected
// option as the page's current season.
func (p *Parser) readSeasonSelect(doc *goquery.Document, list *model.ScrapedLeagueList) {
	doc.Find("select").Each(func(_ int, sel *goquery.Selection) {
		name, _ := sel.Attr("name")
		id, _ := sel.Attr("id")
		if !strings.Contains(strings.ToLower(name+" "+id), "season") {
			return
		}
		sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
			value, _ := opt.Attr("value")
			seasonID := extractID(value, paramSeason)
			if seasonID == 0 {
				if n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
					seasonID = n
				}
			}
			if seasonID <= 0 {
				return
			}
			if label := cleanText(opt.Text()); label != "" {
				list.Seasons[seasonID] = label
			}
			if _, selected := opt.Attr("selected"); selected {
				list.CurrentSeasonID = seasonID
			}
		})
	})
}
