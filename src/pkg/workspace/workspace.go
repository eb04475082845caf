/*
Package workspace holds one owner's clients, sites and tasks in memory and keeps
them in step with the store.

Every mutation goes to the store first and then reloads the lists it touched,
so the views never show a write the store did not accept. Deleting a client or
a site reloads everything because the store cascades to tasks.
*/
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"sima-reports/src/pkg/photo"
	"sima-reports/src/pkg/store"
	"sima-reports/src/pkg/tasks"
	"sima-reports/src/pkg/timestamp"
)

type Workspace struct {
	store    store.Store
	ownerID  string
	location *time.Location
	photos   photo.Options

	mu      sync.RWMutex
	clients []store.Client
	sites   []store.Site
	tasks   []store.TaskRecord
}

func New(s store.Store, ownerID string, location *time.Location) *Workspace {
	if location == nil {
		location = time.Local
	}
	return &Workspace{store: s, ownerID: ownerID, location: location, photos: photo.DefaultOptions()}
}

// Load reads clients, sites and tasks from the store.
func (w *Workspace) Load(ctx context.Context) error {
	if err := w.loadClients(ctx); err != nil {
		return err
	}
	if err := w.loadSites(ctx); err != nil {
		return err
	}
	return w.loadTasks(ctx)
}

func (w *Workspace) loadClients(ctx context.Context) error {
	clients, err := w.store.ListClients(ctx, w.ownerID)
	if err != nil {
		return fmt.Errorf("load clients: %w", err)
	}
	w.mu.Lock()
	w.clients = clients
	w.mu.Unlock()
	return nil
}

func (w *Workspace) loadSites(ctx context.Context) error {
	sites, err := w.store.ListSites(ctx, w.ownerID, "")
	if err != nil {
		return fmt.Errorf("load sites: %w", err)
	}
	w.mu.Lock()
	w.sites = sites
	w.mu.Unlock()
	return nil
}

func (w *Workspace) loadTasks(ctx context.Context) error {
	records, err := w.store.ListTasks(ctx, w.ownerID)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	w.mu.Lock()
	w.tasks = records
	w.mu.Unlock()

	tl.Log(tl.Debug, palette.CyanDim, "Loaded %s tasks of owner '%s'", fmt.Sprint(len(records)), w.ownerID)
	return nil
}

func (w *Workspace) Clients() []store.Client {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.clients)
}

// Sites returns the sites of clientName, or all sites when it is empty.
func (w *Workspace) Sites(clientName string) []store.Site {
	w.mu.RLock()
	defer w.mu.RUnlock()

	sites := make([]store.Site, 0, len(w.sites))
	for _, site := range w.sites {
		if clientName == "" || site.ClientName == clientName {
			sites = append(sites, site)
		}
	}
	return sites
}

func (w *Workspace) Tasks() []store.TaskRecord {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.tasks)
}

func (w *Workspace) AddClient(ctx context.Context, name string) (client store.Client, err error) {
	name = strings.TrimSpace(name)

	w.mu.RLock()
	exists := slices.ContainsFunc(w.clients, func(c store.Client) bool { return c.Name == name })
	w.mu.RUnlock()
	if exists {
		return client, fmt.Errorf("%w: client '%s'", store.ErrDuplicate, name)
	}

	client, err = w.store.CreateClient(ctx, w.ownerID, name)
	if err != nil {
		return client, err
	}
	tl.Log(tl.Info, palette.Green, "Added client '%s'", name)
	return client, w.loadClients(ctx)
}

// RemoveClient deletes the client with its sites and tasks.
func (w *Workspace) RemoveClient(ctx context.Context, clientID string) error {
	err := w.store.DeleteClient(ctx, w.ownerID, clientID)
	if err != nil {
		return err
	}
	tl.Log(tl.Info, palette.Yellow, "Removed client '%s' with its sites and tasks", clientID)
	return w.Load(ctx)
}

func (w *Workspace) AddSite(ctx context.Context, clientName string, name string) (site store.Site, err error) {
	name = strings.TrimSpace(name)

	w.mu.RLock()
	exists := slices.ContainsFunc(w.sites, func(s store.Site) bool { return s.Name == name && s.ClientName == clientName })
	w.mu.RUnlock()
	if exists {
		return site, fmt.Errorf("%w: site '%s' of client '%s'", store.ErrDuplicate, name, clientName)
	}

	site, err = w.store.CreateSite(ctx, w.ownerID, clientName, name)
	if err != nil {
		return site, err
	}
	tl.Log(tl.Info, palette.Green, "Added site '%s' to client '%s'", name, clientName)
	return site, w.loadSites(ctx)
}

// RemoveSite deletes the site and the tasks of that client and site.
func (w *Workspace) RemoveSite(ctx context.Context, siteID string) error {
	err := w.store.DeleteSite(ctx, w.ownerID, siteID)
	if err != nil {
		return err
	}
	tl.Log(tl.Info, palette.Yellow, "Removed site '%s' with its tasks", siteID)
	return w.Load(ctx)
}

func (w *Workspace) AddTask(ctx context.Context, task store.NewTask) (record store.TaskRecord, err error) {
	record, err = w.store.CreateTask(ctx, w.ownerID, task)
	if err != nil {
		return record, err
	}
	tl.Log(tl.Info, palette.Green, "Added task '%s' for '%s' / '%s'", record.ID, record.Client, record.Site)
	return record, w.loadTasks(ctx)
}

/*
CompleteTask marks the task done with the given materials.

When photoSource is not nil the image is resized to a JPEG data URI before the
store is written; an unreadable image fails the call and leaves the task pending.
*/
func (w *Workspace) CompleteTask(ctx context.Context, taskID string, materials string, photoSource io.Reader) (record store.TaskRecord, err error) {
	completion := store.Completion{Materials: strings.TrimSpace(materials)}

	if photoSource != nil {
		dataURI, e := photo.ResizeToDataURI(photoSource, w.photos)
		if e != nil {
			tl.Log(tl.Warning, palette.Yellow, "Photo for task '%s' rejected: %s", taskID, e)
			return record, fmt.Errorf("%w: photo could not be processed", store.ErrInvalid)
		}
		completion.Photo = dataURI
	}

	record, err = w.store.CompleteTask(ctx, w.ownerID, taskID, completion)
	if err != nil {
		return record, err
	}
	tl.Log(tl.Info, palette.Green, "Completed task '%s'", taskID)
	return record, w.loadTasks(ctx)
}

func (w *Workspace) RemoveTask(ctx context.Context, taskID string) error {
	err := w.store.DeleteTask(ctx, w.ownerID, taskID)
	if err != nil {
		return err
	}
	return w.loadTasks(ctx)
}

// CompletedByMonth is the completed-tasks tree: month, client, site.
func (w *Workspace) CompletedByMonth() []tasks.MonthGroup {
	return tasks.GroupByMonth(tasks.ResolveCompleted(w.Tasks(), w.location))
}

type PendingSite struct {
	Site  string             `json:"sede"`
	Tasks []store.TaskRecord `json:"tasks"`
}

type PendingClient struct {
	Client string        `json:"client"`
	Sites  []PendingSite `json:"sedes"`
}

// Pending groups the tasks still open by client and site, both sorted by name.
func (w *Workspace) Pending() []PendingClient {
	byClient := map[string]map[string][]store.TaskRecord{}
	for _, record := range w.Tasks() {
		if record.Completed {
			continue
		}
		if byClient[record.Client] == nil {
			byClient[record.Client] = map[string][]store.TaskRecord{}
		}
		byClient[record.Client][record.Site] = append(byClient[record.Client][record.Site], record)
	}

	groups := make([]PendingClient, 0, len(byClient))
	for _, client := range sortedKeys(byClient) {
		group := PendingClient{Client: client}
		for _, site := range sortedKeys(byClient[client]) {
			group.Sites = append(group.Sites, PendingSite{Site: site, Tasks: byClient[client][site]})
		}
		groups = append(groups, group)
	}
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

// DateDiagnostic describes how a completed task's completion date was stored.
type DateDiagnostic struct {
	TaskID      string `json:"task_id"`
	Description string `json:"description"`
	Shape       string `json:"shape"`
	Resolved    string `json:"resolved,omitempty"`
	Client      string `json:"client"`
	Site        string `json:"sede"`
}

// CompletedDateDiagnostics lists up to limit completed tasks with the raw shape
// of their completion date and the instant it resolves to, if any.
func (w *Workspace) CompletedDateDiagnostics(limit int) []DateDiagnostic {
	diagnostics := []DateDiagnostic{}
	for _, record := range w.Tasks() {
		if !record.Completed {
			continue
		}
		if len(diagnostics) == limit {
			break
		}

		diagnostic := DateDiagnostic{
			TaskID:      record.ID,
			Description: record.Description,
			Shape:       timestamp.ShapeName(record.CompletedAt),
			Client:      record.Client,
			Site:        record.Site,
		}
		if instant, ok := timestamp.Normalize(record.CompletedAt, w.location); ok {
			diagnostic.Resolved = instant.Format(time.RFC3339)
		}
		diagnostics = append(diagnostics, diagnostic)
	}
	return diagnostics
}

// UserMessage turns a store error into the message shown to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, store.ErrDuplicate):
		return "El registro ya existe"
	case errors.Is(err, store.ErrNotFound):
		return "Registro no encontrado"
	case errors.Is(err, store.ErrAlreadyCompleted):
		return "La tarea ya fue completada"
	case errors.Is(err, store.ErrInvalid):
		return "Datos inválidos"
	}
	return "Error: " + err.Error()
}
