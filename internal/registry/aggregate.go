package registry

import (
	"strings"
)

// AverageDerivedValue returns the integer average derived value of every
// record whose tags include all of tagSet's space-separated tags and whose
// value is positive. Results are cached per tagSet string until
// InvalidateAggregates or the next Load. No match gives 0, which is not
// cached.
func (r *Registry) AverageDerivedValue(tagSet string) int {
	if v, ok := r.aggregates.Get(tagSet); ok {
		r.logger.Debug("aggregate cache hit", "tags", tagSet)
		return v.(int)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	r.scans.Add(1)
	r.logger.Debug("aggregate cache miss", "tags", tagSet)

	want := strings.Fields(tagSet)
	seen := make(map[string]bool)
	var sum, count int

	var visit func(rec Record)
	visit = func(rec Record) {
		if seen[rec.Path()] {
			return
		}
		seen[rec.Path()] = true
		if v := rec.DerivedValue(); v > 0 && hasAllTags(rec.Tags(), want) {
			sum += v
			count++
		}
		for _, linked := range rec.Linked() {
			visit(linked)
		}
	}
	for _, m := range r.modules {
		for _, c := range m.containers {
			for _, rec := range c.records {
				visit(rec)
			}
		}
	}

	if count == 0 {
		return 0
	}
	avg := sum / count
	r.aggregates.SetDefault(tagSet, avg)
	return avg
}

// InvalidateAggregates drops every cached average.
func (r *Registry) InvalidateAggregates() {
	r.aggregates.Flush()
}

// AggregateScans returns how many times AverageDerivedValue scanned the
// graph.
func (r *Registry) AggregateScans() int {
	return int(r.scans.Load())
}

func hasAllTags(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, t := range have {
		set[t] = struct{}{}
	}
	for _, t := range want {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}
