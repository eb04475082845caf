package store

import "context"

// Reader is the read side the report pipeline needs.
type Reader interface {
	// ListCompletedTasks returns tasks flagged completed for client, limited to
	// site unless site is AllSites. Completion instants are not checked.
	ListCompletedTasks(ctx context.Context, ownerID string, client string, site string) ([]TaskRecord, error)
}

type Store interface {
	Reader

	ListClients(ctx context.Context, ownerID string) ([]Client, error)
	CreateClient(ctx context.Context, ownerID string, name string) (Client, error)
	// DeleteClient removes the client, its sites and its tasks in one batch.
	DeleteClient(ctx context.Context, ownerID string, clientID string) error

	// ListSites returns the sites of clientName, or every site when it is empty.
	ListSites(ctx context.Context, ownerID string, clientName string) ([]Site, error)
	CreateSite(ctx context.Context, ownerID string, clientName string, name string) (Site, error)
	// DeleteSite removes the site and the tasks of that client+site pair in one batch.
	DeleteSite(ctx context.Context, ownerID string, siteID string) error

	// ListTasks returns every task, newest first.
	ListTasks(ctx context.Context, ownerID string) ([]TaskRecord, error)
	GetTask(ctx context.Context, ownerID string, taskID string) (TaskRecord, error)
	CreateTask(ctx context.Context, ownerID string, task NewTask) (TaskRecord, error)
	// CompleteTask sets the completion flag, a store-assigned completion
	// timestamp, the materials and the photo together.
	CompleteTask(ctx context.Context, ownerID string, taskID string, completion Completion) (TaskRecord, error)
	DeleteTask(ctx context.Context, ownerID string, taskID string) error

	// ImportTask stores a record as-is, keeping its raw timestamps.
	ImportTask(ctx context.Context, record TaskRecord) (TaskRecord, error)

	Close() error
}
