package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sima-reports/src/pkg/timestamp"
)

const legacyArray = `[
  {"id": "a1", "userId": "u1", "description": "Cambio de filtros", "client": "Acme", "sede": " HQ ",
   "type": "preventivo", "completed": true, "createdAt": "2024-03-01T08:00:00Z",
   "completedAt": {"_seconds": 1709632800, "_nanoseconds": 500}, "materials": "Filtro"},
  {"id": "a2", "userId": "u1", "description": "Pintura", "client": "Acme", "sede": "Bodega",
   "type": "correctivo", "completed": true, "completedAt": 1709632800123},
  {"id": "a3", "userId": "u1", "description": "Pendiente", "client": "Acme", "sede": "HQ", "completed": false},
  {"id": "a4", "userId": "u1", "description": "Sin sede", "client": "Acme"}
]`

func TestDecodeLegacyExportArray(t *testing.T) {
	records, err := DecodeLegacyExport(strings.NewReader(legacyArray))
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, "HQ", records[0].Site)
	assert.Equal(t, timestamp.ISOString("2024-03-01T08:00:00Z"), records[0].CreatedAt)
	assert.Equal(t, timestamp.Serialized{Seconds: 1709632800, Nanoseconds: 500}, records[0].CompletedAt)
	assert.Equal(t, timestamp.EpochMillis(1709632800123), records[1].CompletedAt)
	assert.Equal(t, timestamp.Absent{}, records[2].CompletedAt)
}

func TestDecodeLegacyExportKeyedObject(t *testing.T) {
	export := `{
	  "z9": {"userId": "u1", "client": "Acme", "sede": "HQ", "completed": true, "completedAt": "2024-03-02T10:00:00Z"},
	  "b2": {"id": "custom", "userId": "u1", "client": "Acme", "sede": "HQ"}
	}`
	records, err := DecodeLegacyExport(strings.NewReader(export))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "custom", records[0].ID)
	assert.Equal(t, "z9", records[1].ID)
}

func TestDecodeLegacyExportInvalid(t *testing.T) {
	_, err := DecodeLegacyExport(strings.NewReader("   "))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = DecodeLegacyExport(strings.NewReader("[{"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestImportLegacy(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		records, err := DecodeLegacyExport(strings.NewReader(legacyArray))
		require.NoError(t, err)

		summary, err := ImportLegacy(ctx, s, owner, records)
		require.NoError(t, err)
		assert.Equal(t, ImportSummary{Imported: 3, Skipped: 1, Clients: 1, Sites: 2}, summary)

		sites, err := s.ListSites(ctx, owner, "Acme")
		require.NoError(t, err)
		assert.Len(t, sites, 2)

		completed, err := s.ListCompletedTasks(ctx, owner, "Acme", AllSites)
		require.NoError(t, err)
		assert.Len(t, completed, 2)

		again, err := ImportLegacy(ctx, s, owner, records)
		require.NoError(t, err)
		assert.Equal(t, ImportSummary{Skipped: 4}, again)
	})
}

func TestImportLegacyKeepsExportOwner(t *testing.T) {
	s := NewMemoryStore()
	records := []TaskRecord{
		{ID: "x", OwnerID: "u7", Client: "Acme", Site: "HQ"},
		{ID: "y", Client: "Acme", Site: "HQ"},
	}

	summary, err := ImportLegacy(context.Background(), s, "", records)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 1, summary.Skipped)

	tasks, err := s.ListTasks(context.Background(), "u7")
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestImportLegacySkipsReservedSite(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		records := []TaskRecord{
			{ID: "x", Client: "Ghost", Site: AllSites},
			{ID: "y", Client: "Acme", Site: "HQ"},
		}

		summary, err := ImportLegacy(ctx, s, owner, records)
		require.NoError(t, err)
		assert.Equal(t, ImportSummary{Imported: 1, Skipped: 1, Clients: 1, Sites: 1}, summary)

		clients, err := s.ListClients(ctx, owner)
		require.NoError(t, err)
		require.Len(t, clients, 1)
		assert.Equal(t, "Acme", clients[0].Name)
	})
}
