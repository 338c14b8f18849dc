package parser

import (
	"io"
	"strings"
	"testing"

	"LeagueSync/internal/config"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser() *Parser {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(logger, []config.RegionKeyword{
		{Keyword: "leeds", Region: "Yorkshire"},
		{Keyword: "london", Region: "London"},
	})
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Monday 19 Jan 2026", "2026-01-19", true},
		{"19/01/2026", "2026-01-19", true},
		{"2026-01-19", "2026-01-19", true},
		{"Sat 7th February 2026", "2026-02-07", true},
		{"5/3/26", "2026-03-05", true},
		{"Round 3 - Monday 19 Jan 2026", "2026-01-19", true},
		{"31/02/2026", "", false},
		{"next Tuesday", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := normalizeDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"7:05", "07:05", true},
		{"19:30", "19:30", true},
		{"7:30pm", "19:30", true},
		{"12:15 am", "00:15", true},
		{"25:00", "", false},
		{"tbc", "", false},
	}
	for _, tt := range tests {
		got, ok := normalizeTime(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestExtractID(t *testing.T) {
	assert.Equal(t, int64(3), extractID("Standings.aspx?LeagueId=12&SeasonId=3", paramSeason))
	assert.Equal(t, int64(12), extractID("Standings.aspx?LeagueId=12&SeasonId=3", paramLeague))
	assert.Equal(t, int64(5), extractID("/x?leagueid=5", paramLeague))
	assert.Equal(t, int64(0), extractID("/x?HomeTeamId=4", paramTeam))
	assert.Equal(t, int64(0), extractID("/x", paramTeam))
}

func TestExtractScore(t *testing.T) {
	tests := []struct {
		name       string
		html       string
		home, away *int
	}{
		{name: "hyphen", html: `<div>12 - 8</div>`, home: intPtr(12), away: intPtr(8)},
		{name: "en dash", html: `<div>10 – 10</div>`, home: intPtr(10), away: intPtr(10)},
		{name: "em dash no spaces", html: `<div>7—9</div>`, home: intPtr(7), away: intPtr(9)},
		{name: "attributes win", html: `<div><span data-home-score="3" data-away-score="4">1 - 1</span></div>`, home: intPtr(3), away: intPtr(4)},
		{name: "no score", html: `<div>v</div>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(tt.html))
			require.NoError(t, err)
			sel := doc.Find("div").First()
			home, away := extractScore(sel, sel.Text())
			assert.Equal(t, tt.home, home)
			assert.Equal(t, tt.away, away)
		})
	}
}

func TestMapColumns(t *testing.T) {
	cols := mapColumns([]string{"Team", "Pld", "W", "Pts.", "Mystery"}, standingsSynonyms, standingsPositional)
	assert.Equal(t, 0, cols[colTeam])
	assert.Equal(t, 1, cols[colPlayed])
	assert.Equal(t, 2, cols[colWins])
	assert.Equal(t, 3, cols[colTotalPoints])
	// unmapped column falls back to its positional default
	assert.Equal(t, 4, cols[colLosses])
}

func intPtr(n int) *int { return &n }
