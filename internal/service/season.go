package service

import (
	"sort"
	"strings"

	"LeagueSync/internal/model"
)

// currentSeasonID picks the current season: the configured id, then the season the page
// marks as selected, then the first season whose name contains a configured label.
// 0 means undetermined.
func (s *SyncService) currentSeasonID(list *model.ScrapedLeagueList) int64 {
	if s.cfg.CurrentSeasonID > 0 {
		return s.cfg.CurrentSeasonID
	}
	if list.CurrentSeasonID > 0 {
		return list.CurrentSeasonID
	}
	for _, id := range seasonOrder(list) {
		name := strings.ToLower(list.Seasons[id])
		for _, label := range s.cfg.CurrentSeasonLabels {
			if label != "" && strings.Contains(name, strings.ToLower(label)) {
				return id
			}
		}
	}
	return 0
}

// seasonOrder lists season ids in the order items reference them, followed by seasons
// only known from the page's season selector, ascending.
func seasonOrder(list *model.ScrapedLeagueList) []int64 {
	seen := make(map[int64]bool, len(list.Seasons))
	var ids []int64
	for _, item := range list.Items {
		if !seen[item.SeasonExternalID] {
			seen[item.SeasonExternalID] = true
			ids = append(ids, item.SeasonExternalID)
		}
	}
	var rest []int64
	for id := range list.Seasons {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(ids, rest...)
}
