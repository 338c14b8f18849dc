package parser

import (
	"testing"

	"LeagueSync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const leagueListPage = `<html><body>
<h1>Netball Leagues</h1>
<form>
  <select name="ctl00$SeasonId" id="ddlSeason">
    <option value="31">Summer 2025</option>
    <option value="32" selected="selected">2025/26</option>
  </select>
</form>
<div class="region-block">
  <h3>Leeds Monday League</h3>
  <ul>
    <li>Division 1 - <a href="/External/Fixtures/Standings.aspx?VenueId=7&LeagueId=100&SeasonId=32&DivisionId=201">Standings</a>
      | <a href="/External/Fixtures/Fixtures.aspx?VenueId=7&LeagueId=100&SeasonId=32&DivisionId=201">Fixtures</a></li>
    <li>Division Two - <a href="/External/Fixtures/Standings.aspx?VenueId=7&LeagueId=100&SeasonId=32&DivisionId=202">Standings</a></li>
  </ul>
  <h3> - London Thursday League | </h3>
  <ul>
    <li>Premier Division <a href="Standings.aspx?LeagueId=101&SeasonId=32&DivisionId=301">Standings</a></li>
    <li><a href="Standings.aspx?LeagueId=101&DivisionId=302">Missing season</a></li>
  </ul>
  <a href="/External/Fixtures/Team.aspx?TeamId=5">Team page</a>
</div>
</body></html>`

func TestParseLeagueList(t *testing.T) {
	list, err := newTestParser().ParseLeagueList(leagueListPage)
	require.NoError(t, err)

	require.Len(t, list.Items, 3)
	assert.Equal(t, model.ScrapedLeagueListItem{
		RegionName:         "Yorkshire",
		VenueID:            7,
		LeagueExternalID:   100,
		LeagueName:         "Leeds Monday League",
		SeasonExternalID:   32,
		SeasonName:         "2025/26",
		DivisionExternalID: 201,
		DivisionName:       "Division 1",
		Tier:               1,
	}, list.Items[0])

	assert.Equal(t, int64(202), list.Items[1].DivisionExternalID)
	assert.Equal(t, "Division Two", list.Items[1].DivisionName)
	assert.Equal(t, 2, list.Items[1].Tier)

	london := list.Items[2]
	assert.Equal(t, "London Thursday League", london.LeagueName)
	assert.Equal(t, "London", london.RegionName)
	assert.Equal(t, "Premier Division", london.DivisionName)
	assert.Equal(t, 1, london.Tier)
	assert.Equal(t, int64(0), london.VenueID)

	assert.Equal(t, []string{"Yorkshire", "London"}, list.Regions)
	assert.Equal(t, map[int64]string{31: "Summer 2025", 32: "2025/26"}, list.Seasons)
	assert.Equal(t, int64(32), list.CurrentSeasonID)
}

func TestParseLeagueList_unknownRegionAndFallbackNames(t *testing.T) {
	page := `<html><body>
<h2>Wakefield Social League</h2>
<p><a href="Fixtures.aspx?LeagueId=9&SeasonId=4&DivisionId=8">Fixtures</a></p>
</body></html>`
	list, err := newTestParser().ParseLeagueList(page)
	require.NoError(t, err)

	require.Len(t, list.Items, 1)
	item := list.Items[0]
	assert.Equal(t, OtherRegion, item.RegionName)
	assert.Equal(t, "Wakefield Social League", item.LeagueName)
	assert.Equal(t, "Season 4", item.SeasonName)
	assert.Equal(t, "Division 8", item.DivisionName)
	assert.Equal(t, int64(0), list.CurrentSeasonID)
}

func TestParseLeagueList_emptyPage(t *testing.T) {
	list, err := newTestParser().ParseLeagueList(`<html><body><p>Site maintenance</p></body></html>`)
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assert.Empty(t, list.Regions)
}

func TestCleanLeagueName(t *testing.T) {
	assert.Equal(t, "Leeds League", cleanLeagueName(" -- Leeds League -"))
	assert.Equal(t, "A - B League", cleanLeagueName("| A - B League :"))
	assert.Equal(t, "", cleanLeagueName(" - "))
}

func TestInferTier(t *testing.T) {
	assert.Equal(t, 3, inferTier("Division 3"))
	assert.Equal(t, 1, inferTier("Division One"))
	assert.Equal(t, 2, inferTier("Second Division"))
	assert.Equal(t, 1, inferTier("Premier Division"))
	assert.Equal(t, 0, inferTier("Social"))
}
