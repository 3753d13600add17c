package pipeline

import (
	"context"
	"sort"

	"pulseboard/internal/records"
	"pulseboard/internal/records/store"
	dErrors "pulseboard/pkg/domain-errors"
)

// Stats is the aggregate view of one sector's records in a date window.
// Totals sum each numeric metric; ratios derive from the totals, so a ratio
// over an empty window is zero rather than undefined.
type Stats struct {
	Sector  string             `json:"sector"`
	Count   int                `json:"count"`
	Totals  map[string]float64 `json:"totals"`
	Ratios  map[string]float64 `json:"ratios"`
	GroupBy string             `json:"group_by,omitempty"`
	Groups  []GroupStats       `json:"groups,omitempty"`
}

// GroupStats is the per-group breakdown for sectors that define one.
type GroupStats struct {
	Value  string             `json:"value"`
	Count  int                `json:"count"`
	Totals map[string]float64 `json:"totals"`
	Ratios map[string]float64 `json:"ratios"`
}

// Stats aggregates all records in the window.
func (s *Service[T, P]) Stats(ctx context.Context, filter store.Filter) (Stats, error) {
	items, err := s.store.ListAll(ctx, filter)
	if err != nil {
		return Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "list records for stats")
	}

	totals := map[string]float64{}
	for _, rec := range items {
		for name, v := range rec.Metrics() {
			totals[name] += v
		}
	}
	result := Stats{
		Sector: s.sector,
		Count:  len(items),
		Totals: totals,
		Ratios: s.proto.Ratios(totals),
	}

	if grouper, ok := records.Record(s.proto).(records.Grouper); ok {
		result.GroupBy = grouper.GroupLabel()
		result.Groups = s.groupStats(items)
	}
	return result, nil
}

func (s *Service[T, P]) groupStats(items []T) []GroupStats {
	byValue := map[string]*GroupStats{}
	for _, rec := range items {
		value := records.Record(rec).(records.Grouper).GroupValue()
		group, ok := byValue[value]
		if !ok {
			group = &GroupStats{Value: value, Totals: map[string]float64{}}
			byValue[value] = group
		}
		group.Count++
		for name, v := range rec.Metrics() {
			group.Totals[name] += v
		}
	}

	groups := make([]GroupStats, 0, len(byValue))
	for _, group := range byValue {
		group.Ratios = s.proto.Ratios(group.Totals)
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Value < groups[j].Value })
	return groups
}
