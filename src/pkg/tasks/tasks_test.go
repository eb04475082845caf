package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sima-reports/src/pkg/period"
	"sima-reports/src/pkg/store"
	"sima-reports/src/pkg/timestamp"
)

type failingReader struct{}

func (failingReader) ListCompletedTasks(ctx context.Context, ownerID, client, site string) ([]store.TaskRecord, error) {
	return nil, errors.New("store unreachable")
}

func importTask(t *testing.T, s *store.MemoryStore, record store.TaskRecord) {
	t.Helper()
	record.OwnerID = "owner"
	if record.Client == "" {
		record.Client = "Acme"
	}
	if record.Site == "" {
		record.Site = "HQ"
	}
	_, err := s.ImportTask(context.Background(), record)
	require.NoError(t, err)
}

func marchCriteria(site string) Criteria {
	p := period.Monthly(2024, time.March, time.UTC)
	return Criteria{OwnerID: "owner", Client: "Acme", Site: site, Start: p.Start, End: p.End, Location: time.UTC}
}

func TestFilterCompletedTasksBoundariesAreInclusive(t *testing.T) {
	s := store.NewMemoryStore()
	criteria := marchCriteria("HQ")

	importTask(t, s, store.TaskRecord{ID: "end", Description: "al final", Completed: true, CompletedAt: timestamp.Native{Time: criteria.End}})
	importTask(t, s, store.TaskRecord{ID: "start", Description: "al inicio", Completed: true, CompletedAt: timestamp.Serialized{Seconds: criteria.Start.Unix()}})
	importTask(t, s, store.TaskRecord{ID: "before", Description: "antes", Completed: true, CompletedAt: timestamp.Native{Time: criteria.Start.Add(-time.Second)}})
	importTask(t, s, store.TaskRecord{ID: "after", Description: "despues", Completed: true, CompletedAt: timestamp.Native{Time: criteria.End.Add(time.Second)}})

	selected, err := FilterCompletedTasks(context.Background(), s, criteria)
	require.NoError(t, err)
	require.Len(t, selected, 2)
	assert.Equal(t, "start", selected[0].ID)
	assert.Equal(t, "end", selected[1].ID)
}

func TestFilterCompletedTasksKeepsSubSecondCompletionAtMonthEnd(t *testing.T) {
	s := store.NewMemoryStore()
	lastSecond := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)
	importTask(t, s, store.TaskRecord{ID: "late", Description: "cierre", Completed: true, CompletedAt: timestamp.Serialized{Seconds: lastSecond.Unix(), Nanoseconds: 500000000}})

	march, err := FilterCompletedTasks(context.Background(), s, marchCriteria(""))
	require.NoError(t, err)
	require.Len(t, march, 1)
	assert.Equal(t, "late", march[0].ID)

	april := period.Monthly(2024, time.April, time.UTC)
	selected, err := FilterCompletedTasks(context.Background(), s, Criteria{OwnerID: "owner", Client: "Acme", Start: april.Start, End: april.End, Location: time.UTC})
	require.NoError(t, err)
	assert.Empty(t, selected)
}

func TestFilterCompletedTasksExcludesPendingAndUndated(t *testing.T) {
	s := store.NewMemoryStore()
	inside := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	importTask(t, s, store.TaskRecord{ID: "pending", Description: "pendiente", CompletedAt: timestamp.Native{Time: inside}})
	importTask(t, s, store.TaskRecord{ID: "undated", Description: "sin fecha", Completed: true})
	importTask(t, s, store.TaskRecord{ID: "garbage", Description: "fecha rota", Completed: true, CompletedAt: timestamp.ISOString("pronto")})
	importTask(t, s, store.TaskRecord{ID: "ok", Description: "bien", Completed: true, CompletedAt: timestamp.ISOString("2024-03-10T12:00:00Z")})

	selected, err := FilterCompletedTasks(context.Background(), s, marchCriteria(AllSites))
	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, "ok", selected[0].ID)
	assert.True(t, selected[0].CompletedAt.Equal(inside))
}

func TestFilterCompletedTasksTieBreaksById(t *testing.T) {
	s := store.NewMemoryStore()
	same := timestamp.EpochMillis(float64(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC).UnixMilli()))

	importTask(t, s, store.TaskRecord{ID: "c", Description: "c", Completed: true, CompletedAt: same})
	importTask(t, s, store.TaskRecord{ID: "a", Description: "a", Completed: true, CompletedAt: same})
	importTask(t, s, store.TaskRecord{ID: "b", Description: "b", Completed: true, CompletedAt: same})

	selected, err := FilterCompletedTasks(context.Background(), s, marchCriteria(""))
	require.NoError(t, err)
	require.Len(t, selected, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{selected[0].ID, selected[1].ID, selected[2].ID})
}

func TestFilterCompletedTasksSiteScope(t *testing.T) {
	s := store.NewMemoryStore()
	inside := timestamp.Native{Time: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}

	importTask(t, s, store.TaskRecord{ID: "hq", Description: "hq", Site: "HQ", Completed: true, CompletedAt: inside})
	importTask(t, s, store.TaskRecord{ID: "bodega", Description: "bodega", Site: "Bodega", Completed: true, CompletedAt: inside})
	importTask(t, s, store.TaskRecord{ID: "globex", Description: "otro", Client: "Globex", Completed: true, CompletedAt: inside})

	hq, err := FilterCompletedTasks(context.Background(), s, marchCriteria("HQ"))
	require.NoError(t, err)
	assert.Len(t, hq, 1)

	all, err := FilterCompletedTasks(context.Background(), s, marchCriteria(AllSites))
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestFilterCompletedTasksFetchFailureIsEmpty(t *testing.T) {
	selected, err := FilterCompletedTasks(context.Background(), failingReader{}, marchCriteria("HQ"))

	assert.Error(t, err)
	assert.NotNil(t, selected)
	assert.Empty(t, selected)
}

func TestAggregateMaterials(t *testing.T) {
	tasks := []CompletedTask{
		{TaskRecord: store.TaskRecord{Materials: "Cable, Conector"}},
		{TaskRecord: store.TaskRecord{Materials: "cable , Switch"}},
		{TaskRecord: store.TaskRecord{Materials: ""}},
	}

	assert.Equal(t, []MaterialCount{
		{Material: "Cable", Count: 1},
		{Material: "Conector", Count: 1},
		{Material: "cable", Count: 1},
		{Material: "Switch", Count: 1},
	}, AggregateMaterials(tasks))
}

func TestAggregateMaterialsSortsByCountKeepingFirstSeenTies(t *testing.T) {
	tasks := []CompletedTask{
		{TaskRecord: store.TaskRecord{Materials: "Tornillos, Cinta"}},
		{TaskRecord: store.TaskRecord{Materials: "Cinta,, Breaker"}},
		{TaskRecord: store.TaskRecord{Materials: "   "}},
		{TaskRecord: store.TaskRecord{Materials: "Breaker, Cinta, Pintura"}},
	}

	counts := AggregateMaterials(tasks)
	assert.Equal(t, []MaterialCount{
		{Material: "Cinta", Count: 3},
		{Material: "Breaker", Count: 2},
		{Material: "Tornillos", Count: 1},
		{Material: "Pintura", Count: 1},
	}, counts)
	assert.Equal(t, 7, TotalUnits(counts))
	assert.Empty(t, AggregateMaterials(nil))
}

func TestGroupByMonth(t *testing.T) {
	records := []store.TaskRecord{
		{ID: "1", Client: "Acme", Site: "HQ", Completed: true, CompletedAt: timestamp.ISOString("2024-02-10T12:00:00Z")},
		{ID: "2", Client: "Acme", Site: "Bodega", Completed: true, CompletedAt: timestamp.ISOString("2024-03-01T12:00:00Z")},
		{ID: "3", Client: "Globex", Site: "HQ", Completed: true, CompletedAt: timestamp.ISOString("2024-03-02T12:00:00Z")},
		{ID: "4", Client: "Acme", Site: "HQ", Completed: true, CompletedAt: timestamp.ISOString("2024-03-03T12:00:00Z")},
		{ID: "5", Client: "Acme", Site: "HQ", Completed: true},
		{ID: "6", Client: "Acme", Site: "HQ", CompletedAt: timestamp.ISOString("2024-03-03T12:00:00Z")},
	}

	groups := GroupByMonth(ResolveCompleted(records, time.UTC))
	require.Len(t, groups, 2)

	march := groups[0]
	assert.Equal(t, "Marzo 2024", march.Label)
	assert.Equal(t, 3, march.Count)
	require.Len(t, march.Clients, 2)
	assert.Equal(t, "Acme", march.Clients[0].Client)
	require.Len(t, march.Clients[0].Sites, 2)
	assert.Equal(t, "Bodega", march.Clients[0].Sites[0].Site)
	assert.Equal(t, "HQ", march.Clients[0].Sites[1].Site)
	assert.Equal(t, "Globex", march.Clients[1].Client)

	assert.Equal(t, "Febrero 2024", groups[1].Label)
	assert.Equal(t, 1, groups[1].Count)
}
