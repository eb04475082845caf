package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"sima-reports/src/pkg/timestamp"
)

// legacyTask is a task document as exported from the hosted document store.
// Timestamps keep whatever shape the export wrote.
type legacyTask struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Description string `json:"description"`
	Client      string `json:"client"`
	Site        string `json:"sede"`
	Type        string `json:"type"`
	Completed   bool   `json:"completed"`
	CreatedAt   any    `json:"createdAt"`
	CompletedAt any    `json:"completedAt"`
	Materials   string `json:"materials"`
	Photo       string `json:"photo"`
}

type ImportSummary struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Clients  int `json:"clients_created"`
	Sites    int `json:"sites_created"`
}

/*
DecodeLegacyExport reads a JSON export of task documents into records.

The export is either an array of documents or an object keyed by document
id. Numbers are kept as json.Number so epoch milliseconds survive exactly.
*/
func DecodeLegacyExport(r io.Reader) ([]TaskRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}

	documents := []legacyTask{}
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0:
		return nil, fmt.Errorf("%w: export is empty", ErrInvalid)
	case trimmed[0] == '[':
		if err := decodeNumbers(trimmed, &documents); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	default:
		keyed := map[string]legacyTask{}
		if err := decodeNumbers(trimmed, &keyed); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		ids := make([]string, 0, len(keyed))
		for id := range keyed {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			document := keyed[id]
			if document.ID == "" {
				document.ID = id
			}
			documents = append(documents, document)
		}
	}

	records := make([]TaskRecord, 0, len(documents))
	for _, document := range documents {
		records = append(records, TaskRecord{
			ID:          document.ID,
			OwnerID:     document.UserID,
			Description: document.Description,
			Client:      strings.TrimSpace(document.Client),
			Site:        strings.TrimSpace(document.Site),
			Type:        document.Type,
			Completed:   document.Completed,
			CreatedAt:   timestamp.FromAny(document.CreatedAt),
			CompletedAt: timestamp.FromAny(document.CompletedAt),
			Materials:   document.Materials,
			Photo:       document.Photo,
		})
	}
	return records, nil
}

func decodeNumbers(data []byte, target any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	return decoder.Decode(target)
}

/*
ImportLegacy stores the records, creating missing clients and sites first.

A non-empty ownerID replaces the owner of every record. Records already in
the store, records without owner, client or site, and records naming the
reserved site "all" are skipped.
*/
func ImportLegacy(ctx context.Context, s Store, ownerID string, records []TaskRecord) (summary ImportSummary, err error) {
	for _, record := range records {
		if ownerID != "" {
			record.OwnerID = ownerID
		}
		if record.OwnerID == "" || record.Client == "" || record.Site == "" {
			tl.Log(tl.Warning, palette.Yellow, "Skipping task '%s': %s", record.ID, "owner, client and sede are required")
			summary.Skipped++
			continue
		}
		if record.Site == AllSites {
			tl.Log(tl.Warning, palette.Yellow, "Skipping task '%s': sede '%s' is %s", record.ID, AllSites, "reserved")
			summary.Skipped++
			continue
		}

		createdClient, err := ensureCreated(func() error {
			_, err := s.CreateClient(ctx, record.OwnerID, record.Client)
			return err
		})
		if err != nil {
			return summary, err
		}
		if createdClient {
			summary.Clients++
		}

		createdSite, err := ensureCreated(func() error {
			_, err := s.CreateSite(ctx, record.OwnerID, record.Client, record.Site)
			return err
		})
		if err != nil {
			return summary, err
		}
		if createdSite {
			summary.Sites++
		}

		_, err = s.ImportTask(ctx, record)
		if errors.Is(err, ErrDuplicate) {
			tl.Log(tl.Info, palette.Yellow, "Task '%s' is %s, skipping", record.ID, "already imported")
			summary.Skipped++
			continue
		}
		if err != nil {
			return summary, fmt.Errorf("import task '%s': %w", record.ID, err)
		}
		summary.Imported++
	}
	return summary, nil
}

func ensureCreated(create func() error) (created bool, err error) {
	err = create()
	if errors.Is(err, ErrDuplicate) {
		return false, nil
	}
	return err == nil, err
}
