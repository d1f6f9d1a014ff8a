package planner

import "sort"

// AssignColumns lays out one day's events so that overlapping events never
// share a column. Events are reordered by (start, end) and their Column,
// ColumnSpan and ColumnOffset fields are rewritten in place.
//
// Events are swept in order while an active set tracks those still running.
// An event joins the cluster of the first active event, or opens a new
// cluster when nothing is active, and takes the lowest column no active
// event occupies. Every event of a cluster then spans the cluster width.
func AssignColumns(events []Event) {
	if len(events) == 0 {
		return
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].StartMinutes != events[j].StartMinutes {
			return events[i].StartMinutes < events[j].StartMinutes
		}
		return events[i].EndMinutes < events[j].EndMinutes
	})

	clusterOf := make([]int, len(events))
	var clusters [][]int
	var active []int

	for i := range events {
		current := &events[i]

		// Drop events that finished at or before this one starts.
		kept := active[:0]
		for _, a := range active {
			if events[a].EndMinutes > current.StartMinutes {
				kept = append(kept, a)
			}
		}
		active = kept

		cluster := len(clusters)
		if len(active) > 0 {
			cluster = clusterOf[active[0]]
		} else {
			clusters = append(clusters, nil)
		}

		used := make(map[int]bool, len(active))
		for _, a := range active {
			used[events[a].Column] = true
		}
		column := 0
		for used[column] {
			column++
		}

		current.Column = column
		clusterOf[i] = cluster
		clusters[cluster] = append(clusters[cluster], i)
		active = append(active, i)
	}

	for _, members := range clusters {
		width := 1
		for _, m := range members {
			width = max(width, events[m].Column+1)
		}
		for _, m := range members {
			events[m].ColumnSpan = width
			events[m].ColumnOffset = events[m].Column
		}
	}
}
