package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"sima-reports/src/pkg/timestamp"
)

/*
MemoryStore keeps everything in process memory.

Timestamps it assigns stay live values (timestamp.Live) for as long as the
process runs, which is the shape a document store hands out right after a
write. Used by tests and by the server when no database path is configured.
*/
type MemoryStore struct {
	mu      sync.RWMutex
	clients []Client
	sites   []Site
	tasks   []TaskRecord // insertion order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) ListClients(ctx context.Context, ownerID string) ([]Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	clients := []Client{}
	for _, client := range m.clients {
		if client.OwnerID == ownerID {
			clients = append(clients, client)
		}
	}
	slices.SortStableFunc(clients, func(a, b Client) int { return strings.Compare(a.Name, b.Name) })
	return clients, nil
}

func (m *MemoryStore) CreateClient(ctx context.Context, ownerID string, name string) (Client, error) {
	client := Client{ID: uuid.NewString(), OwnerID: ownerID, Name: strings.TrimSpace(name), CreatedAt: timestamp.Now()}
	if client.Name == "" {
		return Client{}, fmt.Errorf("%w: client name is empty", ErrInvalid)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.clients {
		if existing.OwnerID == ownerID && existing.Name == client.Name {
			return Client{}, fmt.Errorf("%w: client '%s'", ErrDuplicate, client.Name)
		}
	}
	m.clients = append(m.clients, client)
	return client, nil
}

func (m *MemoryStore) DeleteClient(ctx context.Context, ownerID string, clientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	index := slices.IndexFunc(m.clients, func(c Client) bool { return c.OwnerID == ownerID && c.ID == clientID })
	if index < 0 {
		return ErrNotFound
	}
	name := m.clients[index].Name

	m.clients = slices.Delete(m.clients, index, index+1)
	m.sites = slices.DeleteFunc(m.sites, func(s Site) bool { return s.OwnerID == ownerID && s.ClientName == name })
	m.tasks = slices.DeleteFunc(m.tasks, func(t TaskRecord) bool { return t.OwnerID == ownerID && t.Client == name })
	return nil
}

func (m *MemoryStore) ListSites(ctx context.Context, ownerID string, clientName string) ([]Site, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sites := []Site{}
	for _, site := range m.sites {
		if site.OwnerID == ownerID && (clientName == "" || site.ClientName == clientName) {
			sites = append(sites, site)
		}
	}
	slices.SortStableFunc(sites, func(a, b Site) int {
		if byClient := strings.Compare(a.ClientName, b.ClientName); byClient != 0 {
			return byClient
		}
		return strings.Compare(a.Name, b.Name)
	})
	return sites, nil
}

func (m *MemoryStore) CreateSite(ctx context.Context, ownerID string, clientName string, name string) (Site, error) {
	site := Site{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		ClientName: strings.TrimSpace(clientName),
		Name:       strings.TrimSpace(name),
		CreatedAt:  timestamp.Now(),
	}
	if site.Name == "" || site.ClientName == "" {
		return Site{}, fmt.Errorf("%w: site and client names are required", ErrInvalid)
	}
	if site.Name == AllSites {
		return Site{}, fmt.Errorf("%w: '%s' is reserved", ErrInvalid, AllSites)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !slices.ContainsFunc(m.clients, func(c Client) bool { return c.OwnerID == ownerID && c.Name == site.ClientName }) {
		return Site{}, fmt.Errorf("%w: client '%s'", ErrNotFound, site.ClientName)
	}
	for _, existing := range m.sites {
		if existing.OwnerID == ownerID && existing.ClientName == site.ClientName && existing.Name == site.Name {
			return Site{}, fmt.Errorf("%w: site '%s'", ErrDuplicate, site.Name)
		}
	}
	m.sites = append(m.sites, site)
	return site, nil
}

func (m *MemoryStore) DeleteSite(ctx context.Context, ownerID string, siteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	index := slices.IndexFunc(m.sites, func(s Site) bool { return s.OwnerID == ownerID && s.ID == siteID })
	if index < 0 {
		return ErrNotFound
	}
	site := m.sites[index]

	m.sites = slices.Delete(m.sites, index, index+1)
	m.tasks = slices.DeleteFunc(m.tasks, func(t TaskRecord) bool {
		return t.OwnerID == ownerID && t.Client == site.ClientName && t.Site == site.Name
	})
	return nil
}

func (m *MemoryStore) ListTasks(ctx context.Context, ownerID string) ([]TaskRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tasks := []TaskRecord{}
	for i := len(m.tasks) - 1; i >= 0; i-- {
		if m.tasks[i].OwnerID == ownerID {
			tasks = append(tasks, m.tasks[i])
		}
	}
	return tasks, nil
}

func (m *MemoryStore) ListCompletedTasks(ctx context.Context, ownerID string, client string, site string) ([]TaskRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	tasks := []TaskRecord{}
	for _, task := range m.tasks {
		if task.OwnerID == ownerID && task.Completed && task.Client == client && siteMatches(site, task.Site) {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (m *MemoryStore) GetTask(ctx context.Context, ownerID string, taskID string) (TaskRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	index := m.taskIndex(ownerID, taskID)
	if index < 0 {
		return TaskRecord{}, ErrNotFound
	}
	return m.tasks[index], nil
}

func (m *MemoryStore) CreateTask(ctx context.Context, ownerID string, task NewTask) (TaskRecord, error) {
	record := TaskRecord{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Description: strings.TrimSpace(task.Description),
		Client:      strings.TrimSpace(task.Client),
		Site:        strings.TrimSpace(task.Site),
		Type:        strings.TrimSpace(task.Type),
		CreatedAt:   timestamp.Now(),
		CompletedAt: timestamp.Absent{},
	}
	if record.Description == "" || record.Client == "" || record.Site == "" {
		return TaskRecord{}, fmt.Errorf("%w: description, client and site are required", ErrInvalid)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.tasks = append(m.tasks, record)
	return record, nil
}

func (m *MemoryStore) ImportTask(ctx context.Context, record TaskRecord) (TaskRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt == nil {
		record.CreatedAt = timestamp.Absent{}
	}
	if record.CompletedAt == nil || !record.Completed {
		record.CompletedAt = timestamp.Absent{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if slices.ContainsFunc(m.tasks, func(t TaskRecord) bool { return t.ID == record.ID }) {
		return TaskRecord{}, fmt.Errorf("%w: task '%s'", ErrDuplicate, record.ID)
	}
	m.tasks = append(m.tasks, record)
	return record, nil
}

func (m *MemoryStore) CompleteTask(ctx context.Context, ownerID string, taskID string, completion Completion) (TaskRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	index := m.taskIndex(ownerID, taskID)
	if index < 0 {
		return TaskRecord{}, ErrNotFound
	}
	if m.tasks[index].Completed {
		return TaskRecord{}, ErrAlreadyCompleted
	}

	task := &m.tasks[index]
	task.Completed = true
	task.CompletedAt = timestamp.Now()
	task.Materials = strings.TrimSpace(completion.Materials)
	task.Photo = completion.Photo

	return *task, nil
}

func (m *MemoryStore) DeleteTask(ctx context.Context, ownerID string, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	index := m.taskIndex(ownerID, taskID)
	if index < 0 {
		return ErrNotFound
	}
	m.tasks = slices.Delete(m.tasks, index, index+1)
	return nil
}

func (m *MemoryStore) taskIndex(ownerID string, taskID string) int {
	return slices.IndexFunc(m.tasks, func(t TaskRecord) bool { return t.OwnerID == ownerID && t.ID == taskID })
}
