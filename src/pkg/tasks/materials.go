package tasks

import (
	"slices"
	"strings"
)

type MaterialCount struct {
	Material string `json:"material"`
	Count    int    `json:"count"`
}

/*
AggregateMaterials tallies the comma separated materials of every task.

Tokens are trimmed and counted as typed, case included; empty tokens and
blank materials fields are ignored. The result is sorted by count, highest
first, with ties kept in the order each material first appeared.
*/
func AggregateMaterials(tasks []CompletedTask) []MaterialCount {
	counts := []MaterialCount{}
	positions := map[string]int{}

	for _, task := range tasks {
		if strings.TrimSpace(task.Materials) == "" {
			continue
		}

		for _, token := range strings.Split(task.Materials, ",") {
			material := strings.TrimSpace(token)
			if material == "" {
				continue
			}

			if position, seen := positions[material]; seen {
				counts[position].Count++
				continue
			}
			positions[material] = len(counts)
			counts = append(counts, MaterialCount{Material: material, Count: 1})
		}
	}

	slices.SortStableFunc(counts, func(a, b MaterialCount) int {
		return b.Count - a.Count
	})
	return counts
}

// TotalUnits is the sum of all counts.
func TotalUnits(counts []MaterialCount) int {
	total := 0
	for _, entry := range counts {
		total += entry.Count
	}
	return total
}
