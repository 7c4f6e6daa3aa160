package tui

import (
	"math"
	"sort"
	"strings"

	"github.com/ppiankov/docsite/internal/aggregator"
)

// filterState holds current active filters.
type filterState struct {
	Direction  string
	SearchText string
}

// sortField enumerates columns that can be sorted.
type sortField int

const (
	sortByDirection sortField = iota
	sortByName
	sortByChange
	sortByPoints
)

// sortFieldCount is the total number of sortable columns.
const sortFieldCount = 4

// directionChoices are the selectable direction filters, "All" excluded.
var directionChoices = []string{
	aggregator.DirectionDegrading,
	aggregator.DirectionImproving,
	aggregator.DirectionStable,
}

var directionPriority = map[string]int{
	aggregator.DirectionDegrading: 0,
	aggregator.DirectionImproving: 1,
	aggregator.DirectionStable:    2,
}

// applyFilters returns trends matching all active filters.
func applyFilters(trends []aggregator.MetricTrend, f filterState) []aggregator.MetricTrend {
	result := make([]aggregator.MetricTrend, 0, len(trends))
	searchLower := strings.ToLower(f.SearchText)

	for _, tr := range trends {
		if f.Direction != "" && tr.Direction != f.Direction {
			continue
		}
		if searchLower != "" && !strings.Contains(strings.ToLower(tr.Name), searchLower) {
			continue
		}
		result = append(result, tr)
	}
	return result
}

// sortTrends sorts a slice of trends in place by the given field.
func sortTrends(trends []aggregator.MetricTrend, field sortField) {
	sort.SliceStable(trends, func(i, j int) bool {
		switch field {
		case sortByDirection:
			pi, pj := directionPriority[trends[i].Direction], directionPriority[trends[j].Direction]
			if pi != pj {
				return pi < pj
			}
			return trends[i].Name < trends[j].Name
		case sortByName:
			return trends[i].Name < trends[j].Name
		case sortByChange:
			return math.Abs(trends[i].ChangePercent) > math.Abs(trends[j].ChangePercent)
		case sortByPoints:
			return trends[i].Points > trends[j].Points
		default:
			return false
		}
	})
}

// sortFieldName returns a human-readable name for the sort field.
func sortFieldName(f sortField) string {
	switch f {
	case sortByDirection:
		return "direction"
	case sortByName:
		return "name"
	case sortByChange:
		return "change"
	case sortByPoints:
		return "points"
	default:
		return "unknown"
	}
}
