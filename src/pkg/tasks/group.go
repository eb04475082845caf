package tasks

import (
	"cmp"
	"slices"
	"strconv"
	"time"

	"sima-reports/src/pkg/period"
	"sima-reports/src/pkg/store"
	"sima-reports/src/pkg/timestamp"
)

type SiteGroup struct {
	Site  string          `json:"sede"`
	Tasks []CompletedTask `json:"tasks"`
}

type ClientGroup struct {
	Client string      `json:"client"`
	Sites  []SiteGroup `json:"sedes"`
}

// MonthGroup is one node of the completed-tasks tree: month, then client, then site.
type MonthGroup struct {
	Year    int           `json:"year"`
	Month   time.Month    `json:"month"`
	Label   string        `json:"label"`
	Count   int           `json:"count"`
	Clients []ClientGroup `json:"clients"`
}

// ResolveCompleted keeps the completed records whose completion instant can be
// resolved, sorted by completion instant and then by id.
func ResolveCompleted(records []store.TaskRecord, loc *time.Location) []CompletedTask {
	resolved := make([]CompletedTask, 0, len(records))
	for _, record := range records {
		if !record.Completed {
			continue
		}
		completedAt, ok := timestamp.Normalize(record.CompletedAt, loc)
		if !ok {
			continue
		}
		resolved = append(resolved, CompletedTask{TaskRecord: record, CompletedAt: completedAt})
	}
	sortByCompletion(resolved)
	return resolved
}

/*
GroupByMonth builds the completed-tasks tree.

Months run from most recent to oldest, clients and sites are sorted by name,
and tasks inside a site keep their given order.
*/
func GroupByMonth(tasks []CompletedTask) []MonthGroup {
	type monthKey struct {
		year  int
		month time.Month
	}

	buckets := map[monthKey]map[string]map[string][]CompletedTask{}
	for _, task := range tasks {
		key := monthKey{task.CompletedAt.Year(), task.CompletedAt.Month()}
		if buckets[key] == nil {
			buckets[key] = map[string]map[string][]CompletedTask{}
		}
		if buckets[key][task.Client] == nil {
			buckets[key][task.Client] = map[string][]CompletedTask{}
		}
		buckets[key][task.Client][task.Site] = append(buckets[key][task.Client][task.Site], task)
	}

	groups := make([]MonthGroup, 0, len(buckets))
	for key, clients := range buckets {
		group := MonthGroup{
			Year:  key.year,
			Month: key.month,
			Label: period.MonthName(key.month) + " " + strconv.Itoa(key.year),
		}

		for _, clientName := range sortedKeys(clients) {
			clientGroup := ClientGroup{Client: clientName}
			for _, siteName := range sortedKeys(clients[clientName]) {
				siteTasks := clients[clientName][siteName]
				clientGroup.Sites = append(clientGroup.Sites, SiteGroup{Site: siteName, Tasks: siteTasks})
				group.Count += len(siteTasks)
			}
			group.Clients = append(group.Clients, clientGroup)
		}
		groups = append(groups, group)
	}

	slices.SortFunc(groups, func(a, b MonthGroup) int {
		if byYear := cmp.Compare(b.Year, a.Year); byYear != 0 {
			return byYear
		}
		return cmp.Compare(b.Month, a.Month)
	})
	return groups
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

func sortByCompletion(tasks []CompletedTask) {
	slices.SortStableFunc(tasks, func(a, b CompletedTask) int {
		if byTime := a.CompletedAt.Compare(b.CompletedAt); byTime != 0 {
			return byTime
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
