package consolidate

import (
	"sort"

	"rfpmerge/internal"
)

// BuildInsertionQueue orders the columns to be written into a combined
// sheet. Sorting is by column index first, template before supplier on ties;
// suppliers keep their caller-given order, so the output column order is
// fully deterministic.
func BuildInsertionQueue(common []int, suppliers []string, supplierOnly map[string][]int) []internal.QueueItem {
	queue := make([]internal.QueueItem, 0, len(common))
	for _, col := range common {
		queue = append(queue, internal.QueueItem{Column: col, Source: internal.SourceTemplate})
	}
	for _, supplier := range suppliers {
		for _, col := range supplierOnly[supplier] {
			queue = append(queue, internal.QueueItem{Column: col, Source: supplier})
		}
	}

	sort.SliceStable(queue, func(i, j int) bool {
		if queue[i].Column != queue[j].Column {
			return queue[i].Column < queue[j].Column
		}
		return queue[i].Source == internal.SourceTemplate && queue[j].Source != internal.SourceTemplate
	})

	return queue
}
