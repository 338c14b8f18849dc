package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Query parameters carrying upstream ids.
const (
	paramVenue    = "VenueId"
	paramLeague   = "LeagueId"
	paramSeason   = "SeasonId"
	paramDivision = "DivisionId"
	paramTeam     = "TeamId"
	paramFixture  = "FixtureId"
	paramMatch    = "MatchId"
	paramPlayer   = "PlayerId"
)

var idPatterns = func() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp)
	for _, p := range []string{paramVenue, paramLeague, paramSeason, paramDivision, paramTeam, paramFixture, paramMatch, paramPlayer} {
		patterns[p] = regexp.MustCompile(`(?i)(?:^|[?&;/])` + p + `=(\d+)`)
	}
	return patterns
}()

// extractID returns the numeric value of param in href, or 0.
func extractID(href, param string) int64 {
	re, ok := idPatterns[param]
	if !ok {
		re = regexp.MustCompile(`(?i)(?:^|[?&;/])` + regexp.QuoteMeta(param) + `=(\d+)`)
	}
	m := re.FindStringSubmatch(href)
	if m == nil {
		return 0
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// anchorID returns the id of param on sel's href.
func anchorID(sel *goquery.Selection, param string) int64 {
	href, ok := sel.Attr("href")
	if !ok {
		return 0
	}
	return extractID(href, param)
}

// firstAnchorID returns the first positive param id among the anchors below sel.
func firstAnchorID(sel *goquery.Selection, param string) int64 {
	var id int64
	sel.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		id = anchorID(a, param)
		return id == 0
	})
	return id
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var intPattern = regexp.MustCompile(`[-+]?\d+`)

// parseInt reads the first integer in s.
func parseInt(s string) (int, bool) {
	m := intPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// --- dates and times ---

var (
	isoDatePattern   = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	slashDatePattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4}|\d{2})\b`)
	textDatePattern  = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(?:st|nd|rd|th)?\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?,?\s+(\d{4})\b`)
	timePattern      = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})\s*(am|pm)?\b`)
)

// normalizeDate finds a date in s and returns it as YYYY-MM-DD. Accepted forms are
// "Monday 19 Jan 2026", "19/01/2026" (day first) and "2026-01-19".
func normalizeDate(s string) (string, bool) {
	var (
		t   time.Time
		err error
	)
	switch {
	case isoDatePattern.MatchString(s):
		m := isoDatePattern.FindStringSubmatch(s)
		t, err = time.Parse("2006-1-2", fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3]))
	case textDatePattern.MatchString(s):
		m := textDatePattern.FindStringSubmatch(s)
		month := strings.ToUpper(m[2][:1]) + strings.ToLower(m[2][1:3])
		t, err = time.Parse("2 Jan 2006", fmt.Sprintf("%s %s %s", m[1], month, m[3]))
	case slashDatePattern.MatchString(s):
		m := slashDatePattern.FindStringSubmatch(s)
		layout := "2/1/2006"
		if len(m[3]) == 2 {
			layout = "2/1/06"
		}
		t, err = time.Parse(layout, fmt.Sprintf("%s/%s/%s", m[1], m[2], m[3]))
	default:
		return "", false
	}
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// normalizeTime finds a clock time in s and returns it zero-padded as HH:MM.
func normalizeTime(s string) (string, bool) {
	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	switch strings.ToLower(m[3]) {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	if hour > 23 || minute > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// --- scores ---

var scorePattern = regexp.MustCompile(`(?:^|[\s(])(\d{1,3})\s*[-–—]\s*(\d{1,3})(?:$|[\s)])`)

// scoreAttrs are data attribute pairs that carry explicit scores, checked in order.
var scoreAttrs = [][2]string{
	{"data-home-score", "data-away-score"},
	{"data-score-home", "data-score-away"},
	{"data-team-score", "data-opponent-score"},
}

// extractScore reads a score pair from sel. Explicit data attributes win; otherwise the
// first "N - N" in text is used. Text should exclude team names.
func extractScore(sel *goquery.Selection, text string) (*int, *int) {
	for _, pair := range scoreAttrs {
		if home, away, ok := attrScore(sel, pair[0], pair[1]); ok {
			return home, away
		}
	}
	if v, ok := findAttr(sel, "data-score"); ok {
		text = v
	}
	m := scorePattern.FindStringSubmatch(text)
	if m == nil {
		return nil, nil
	}
	home, _ := strconv.Atoi(m[1])
	away, _ := strconv.Atoi(m[2])
	return &home, &away
}

func attrScore(sel *goquery.Selection, homeAttr, awayAttr string) (*int, *int, bool) {
	h, okH := findAttr(sel, homeAttr)
	a, okA := findAttr(sel, awayAttr)
	if !okH || !okA {
		return nil, nil, false
	}
	home, errH := strconv.Atoi(strings.TrimSpace(h))
	away, errA := strconv.Atoi(strings.TrimSpace(a))
	if errH != nil || errA != nil {
		return nil, nil, false
	}
	return &home, &away, true
}

// findAttr looks for attr on sel itself, then on its descendants.
func findAttr(sel *goquery.Selection, attr string) (string, bool) {
	if v, ok := sel.Attr(attr); ok {
		return v, true
	}
	return sel.Find("[" + attr + "]").First().Attr(attr)
}

// --- tables ---

// headerCells returns the header labels of table and the row they came from.
// The header row is the first row holding th cells, else the first row.
func headerCells(table *goquery.Selection) ([]string, *goquery.Selection) {
	rows := table.Find("tr")
	header := rows.FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Find("th").Length() > 0
	}).First()
	if header.Length() == 0 {
		header = rows.First()
	}
	var labels []string
	header.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		labels = append(labels, cleanText(cell.Text()))
	})
	return labels, header
}

// tableMatches reports whether the header text holds at least one keyword of every group.
func tableMatches(labels []string, groups ...[]string) bool {
	words := make(map[string]bool)
	joined := strings.ToLower(strings.Join(labels, " "))
	for _, w := range strings.FieldsFunc(joined, func(r rune) bool {
		return r == ' ' || r == '/' || r == '.' || r == '(' || r == ')'
	}) {
		words[w] = true
	}
	for _, group := range groups {
		found := false
		for _, kw := range group {
			if words[kw] || (strings.Contains(kw, " ") && strings.Contains(joined, kw)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// dataRows returns the rows of table after its header row.
func dataRows(table, header *goquery.Selection) *goquery.Selection {
	return table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return !tr.IsSelection(header)
	})
}

func normalizeHeader(label string) string {
	return strings.TrimRight(strings.ToLower(cleanText(label)), ".:")
}

// mapColumns resolves header labels to canonical field names through synonyms.
// Fields no label maps to take their index from positional when that column is free.
func mapColumns(labels []string, synonyms map[string]string, positional []string) map[string]int {
	cols := make(map[string]int)
	used := make(map[int]bool)
	for i, label := range labels {
		field, ok := synonyms[normalizeHeader(label)]
		if !ok {
			continue
		}
		if _, dup := cols[field]; dup {
			continue
		}
		cols[field] = i
		used[i] = true
	}
	for i, field := range positional {
		if field == "" || i >= len(labels) || used[i] {
			continue
		}
		if _, ok := cols[field]; ok {
			continue
		}
		cols[field] = i
		used[i] = true
	}
	return cols
}

// cell returns the text of the column mapped to field in cells.
func cell(cells *goquery.Selection, cols map[string]int, field string) (*goquery.Selection, string, bool) {
	i, ok := cols[field]
	if !ok || i >= cells.Length() {
		return nil, "", false
	}
	c := cells.Eq(i)
	return c, cleanText(c.Text()), true
}

// intCell reads an integer column, 0 when missing or unparseable.
func intCell(cells *goquery.Selection, cols map[string]int, field string) int {
	_, text, ok := cell(cells, cols, field)
	if !ok {
		return 0
	}
	n, _ := parseInt(text)
	return n
}

// teamAnchors returns the anchors below sel that carry a TeamId, in document order.
func teamAnchors(sel *goquery.Selection) []*goquery.Selection {
	var out []*goquery.Selection
	sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if anchorID(a, paramTeam) > 0 {
			out = append(out, a)
		}
	})
	return out
}

// nodeText returns sel's text with a space between text nodes. Selection.Text joins
// them directly, which runs adjacent cells together in minified markup.
func nodeText(sel *goquery.Selection) string {
	var parts []string
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			if goquery.NodeName(c) == "#text" {
				parts = append(parts, c.Text())
				return
			}
			walk(c)
		})
	}
	walk(sel)
	return cleanText(strings.Join(parts, " "))
}

// textWithout returns sel's text with the given anchors' text blanked out.
func textWithout(sel *goquery.Selection, anchors []*goquery.Selection) string {
	text := " " + nodeText(sel) + " "
	for _, a := range anchors {
		name := nodeText(a)
		if name != "" {
			text = strings.Replace(text, name, " ", 1)
		}
	}
	return text
}

var forfeitPattern = regexp.MustCompile(`(?i)\b(forfeit(?:ed)?|walk\s?over|w/o)\b|\(ff\)`)

func isForfeit(text string) bool {
	return forfeitPattern.MatchString(text)
}
