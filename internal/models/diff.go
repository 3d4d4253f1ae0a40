package models

import "sort"

// Diff is the classification of one snapshot against the previous baseline.
// The three slices partition the snapshot's entity IDs exactly; each is
// sorted ascending for deterministic output.
type Diff struct {
	New       []int64 `json:"new"`
	Returning []int64 `json:"returning"`
	Unchanged []int64 `json:"unchanged"`
}

func (d *Diff) Sort() {
	sortIDs(d.New)
	sortIDs(d.Returning)
	sortIDs(d.Unchanged)
}

func (d *Diff) Total() int {
	return len(d.New) + len(d.Returning) + len(d.Unchanged)
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
