package parser

import (
	"testing"

	"LeagueSync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturesTablePage = `<html><body>
<table class="fixtures">
  <tr><th colspan="5">Round 3 - Monday 19 Jan 2026</th></tr>
  <tr><td>19:30</td><td><a href="Team.aspx?TeamId=11">Aces</a></td><td class="score" data-home-score="12" data-away-score="8">12 - 8</td><td><a href="Team.aspx?TeamId=12">Blazers</a></td><td>Court 2</td></tr>
  <tr><td>8:15</td><td><a href="Team.aspx?TeamId=13">Comets</a></td><td>v</td><td><a href="Team.aspx?TeamId=14">Dragons</a></td><td></td></tr>
  <tr><td>20:00</td><td><a href="Team.aspx?TeamId=15">Eagles</a></td><td>v</td><td><a href="Team.aspx?TeamId=15">Eagles</a></td><td></td></tr>
  <tr><th colspan="5">26/01/2026</th></tr>
  <tr><td>19:30</td><td><a href="Team.aspx?TeamId=12">Blazers</a></td><td>10 – 10</td><td><a href="Team.aspx?TeamId=13">Comets</a></td><td>Forfeit</td></tr>
  <tr><td><a href="Team.aspx?TeamId=16">Only One</a></td></tr>
</table>
</body></html>`

func TestParseFixtures_tables(t *testing.T) {
	fixtures, err := newTestParser().ParseFixtures(fixturesTablePage)
	require.NoError(t, err)
	require.Len(t, fixtures, 3)

	first := fixtures[0]
	assert.Equal(t, int64(11), first.HomeTeamExternalID)
	assert.Equal(t, "Aces", first.HomeTeamName)
	assert.Equal(t, int64(12), first.AwayTeamExternalID)
	assert.Equal(t, "2026-01-19", first.Date)
	assert.Equal(t, "19:30", first.Time)
	assert.Equal(t, "Court 2", first.Pitch)
	require.NotNil(t, first.RoundNumber)
	assert.Equal(t, 3, *first.RoundNumber)
	assert.Equal(t, intPtr(12), first.HomeScore)
	assert.Equal(t, intPtr(8), first.AwayScore)
	assert.Equal(t, model.FixtureCompleted, first.Status)

	second := fixtures[1]
	assert.Equal(t, "08:15", second.Time)
	assert.Equal(t, "2026-01-19", second.Date)
	assert.Nil(t, second.HomeScore)
	assert.Equal(t, model.FixtureScheduled, second.Status)

	third := fixtures[2]
	assert.Equal(t, "2026-01-26", third.Date)
	assert.Equal(t, intPtr(10), third.HomeScore)
	assert.Equal(t, intPtr(10), third.AwayScore)
	assert.True(t, third.IsForfeit)
	assert.Equal(t, model.FixtureCompleted, third.Status)
}

func TestParseFixtures_divFallback(t *testing.T) {
	page := `<html><body>
<div class="fixtures">
  <h4 class="fixture-date">Saturday 7 Feb 2026</h4>
  <div class="fixture"><a href="?TeamId=21">Hawks</a> <span>3 - 1</span> <a href="?TeamId=22">Ibis</a> <span>14:00</span></div>
  <div class="fixture"><a href="?TeamId=23">Jays</a> vs <a href="?TeamId=24">Kites</a> <a href="Match.aspx?FixtureId=900">details</a></div>
</div>
</body></html>`
	fixtures, err := newTestParser().ParseFixtures(page)
	require.NoError(t, err)
	require.Len(t, fixtures, 2)

	assert.Equal(t, "2026-02-07", fixtures[0].Date)
	assert.Equal(t, "14:00", fixtures[0].Time)
	assert.Equal(t, intPtr(3), fixtures[0].HomeScore)
	assert.Equal(t, intPtr(1), fixtures[0].AwayScore)

	assert.Equal(t, int64(23), fixtures[1].HomeTeamExternalID)
	assert.Equal(t, int64(24), fixtures[1].AwayTeamExternalID)
	require.NotNil(t, fixtures[1].ExternalFixtureID)
	assert.Equal(t, int64(900), *fixtures[1].ExternalFixtureID)
	assert.Equal(t, model.FixtureScheduled, fixtures[1].Status)
}

func TestParseFixtures_tablesWinOverDivs(t *testing.T) {
	page := `<table><tr><td>2026-03-01</td><td><a href="?TeamId=1">A</a></td><td><a href="?TeamId=2">B</a></td></tr></table>
<div class="fixture">2026-03-02 <a href="?TeamId=3">C</a> v <a href="?TeamId=4">D</a></div>`
	fixtures, err := newTestParser().ParseFixtures(page)
	require.NoError(t, err)
	require.Len(t, fixtures, 1)
	assert.Equal(t, int64(1), fixtures[0].HomeTeamExternalID)
	assert.Equal(t, "2026-03-01", fixtures[0].Date)
}

func TestParseFixtures_undatedRowDropped(t *testing.T) {
	page := `<table><tr><td><a href="?TeamId=1">A</a></td><td><a href="?TeamId=2">B</a></td></tr></table>`
	fixtures, err := newTestParser().ParseFixtures(page)
	require.NoError(t, err)
	assert.Empty(t, fixtures)
}

func TestParseFixtures_pastUnscoredStaysScheduled(t *testing.T) {
	page := `<table><tr><td>01/09/2001</td><td><a href="?TeamId=1">A</a></td><td><a href="?TeamId=2">B</a></td></tr></table>`
	fixtures, err := newTestParser().ParseFixtures(page)
	require.NoError(t, err)
	require.Len(t, fixtures, 1)
	assert.Equal(t, model.FixtureScheduled, fixtures[0].Status)
}

func TestParseFixtures_minifiedRows(t *testing.T) {
	page := `<table><tr><td>Mon 19 Jan 2026</td><td>19:30</td><td><a href="Team.aspx?TeamId=31">Lions</a></td><td>3 - 1</td><td><a href="Team.aspx?TeamId=32">Tigers</a></td></tr>` +
		`<tr><td>19/01/2026</td><td>20:15</td><td><a href="Team.aspx?TeamId=33">Bears</a></td><td>v</td><td><a href="Team.aspx?TeamId=34">Wolves</a></td></tr></table>`
	fixtures, err := newTestParser().ParseFixtures(page)
	require.NoError(t, err)
	require.Len(t, fixtures, 2)

	assert.Equal(t, "2026-01-19", fixtures[0].Date)
	assert.Equal(t, "19:30", fixtures[0].Time)
	assert.Equal(t, intPtr(3), fixtures[0].HomeScore)
	assert.Equal(t, intPtr(1), fixtures[0].AwayScore)

	assert.Equal(t, "2026-01-19", fixtures[1].Date)
	assert.Equal(t, "20:15", fixtures[1].Time)
	assert.Equal(t, model.FixtureScheduled, fixtures[1].Status)
}
