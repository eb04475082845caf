// Package tasks selects the completed tasks a report covers and derives the
// views built from them.
package tasks

import (
	"context"
	"strconv"
	"strings"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"sima-reports/src/pkg/store"
	"sima-reports/src/pkg/timestamp"
)

// AllSites selects every site of the client.
const AllSites = store.AllSites

// CompletedTask is a task whose completion instant has been resolved.
type CompletedTask struct {
	store.TaskRecord
	CompletedAt time.Time
}

type Criteria struct {
	OwnerID string
	Client  string
	Site    string // a site name or AllSites
	Start   time.Time
	End     time.Time
	// Location the completion instants are expressed in; time.Local when nil.
	Location *time.Location
}

/*
FilterCompletedTasks returns the completed tasks of criteria.Client (and
criteria.Site unless it is AllSites) whose completion instant falls inside
[Start, End], both ends inclusive, sorted by completion instant and then by id.

Tasks that are not flagged completed, or whose completion instant cannot be
resolved, are left out and logged. When the store cannot be read the result is
an empty slice together with the error.
*/
func FilterCompletedTasks(ctx context.Context, source store.Reader, criteria Criteria) ([]CompletedTask, error) {
	site := criteria.Site
	if strings.TrimSpace(site) == "" {
		site = AllSites
	}

	records, err := source.ListCompletedTasks(ctx, criteria.OwnerID, criteria.Client, site)
	if err != nil {
		tl.Log(tl.Warning, palette.YellowBold, "Unable to list completed tasks of '%s': %s", criteria.Client, err.Error())
		return []CompletedTask{}, err
	}

	tl.Log(
		tl.Debug, palette.CyanDim, "Filtering %s candidate tasks of '%s' / '%s' between %s and %s",
		strconv.Itoa(len(records)), criteria.Client, site, criteria.Start.Format(time.RFC3339), criteria.End.Format(time.RFC3339),
	)

	selected := make([]CompletedTask, 0, len(records))
	for _, record := range records {
		if !record.Completed {
			continue
		}

		completedAt, ok := timestamp.Normalize(record.CompletedAt, criteria.Location)
		if !ok {
			tl.Log(tl.Warning, palette.Yellow, "Task '%s' (%s) has %s, skipping it", record.ID, record.Description, "no usable completion date")
			continue
		}

		if completedAt.Before(criteria.Start) || completedAt.After(criteria.End) {
			continue
		}
		selected = append(selected, CompletedTask{TaskRecord: record, CompletedAt: completedAt})
	}

	sortByCompletion(selected)

	tl.Log(tl.Info1, palette.Green, "Selected %s completed tasks of '%s'", strconv.Itoa(len(selected)), criteria.Client)
	return selected, nil
}
