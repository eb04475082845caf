// Package store keeps clients, sites and maintenance tasks.
//
// Records reference their client and site by name. Timestamps are kept in the
// raw shape they were written in; see package timestamp.
package store

import (
	"errors"

	"sima-reports/src/pkg/timestamp"
)

// AllSites selects every site of a client.
const AllSites = "all"

var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicate        = errors.New("record already exists")
	ErrAlreadyCompleted = errors.New("task is already completed")
	ErrInvalid          = errors.New("invalid record")
)

type Client struct {
	ID        string        `json:"id"`
	OwnerID   string        `json:"owner_id"`
	Name      string        `json:"name"`
	CreatedAt timestamp.Raw `json:"-"`
}

type Site struct {
	ID         string        `json:"id"`
	OwnerID    string        `json:"owner_id"`
	ClientName string        `json:"client"`
	Name       string        `json:"name"`
	CreatedAt  timestamp.Raw `json:"-"`
}

/*
TaskRecord is a task as the store returns it.

CompletedAt is only set once Completed is true. Materials is the free-text
comma separated list typed by the technician; Photo is a data URI or empty.
*/
type TaskRecord struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"owner_id"`
	Description string        `json:"description"`
	Client      string        `json:"client"`
	Site        string        `json:"sede"`
	Type        string        `json:"type"`
	Completed   bool          `json:"completed"`
	CreatedAt   timestamp.Raw `json:"-"`
	CompletedAt timestamp.Raw `json:"-"`
	Materials   string        `json:"materials,omitempty"`
	Photo       string        `json:"photo,omitempty"`
}

type NewTask struct {
	Description string `json:"description"`
	Client      string `json:"client"`
	Site        string `json:"sede"`
	Type        string `json:"type"`
}

// Completion is applied to a pending task in a single call.
type Completion struct {
	Materials string `json:"materials"`
	Photo     string `json:"photo,omitempty"`
}

func siteMatches(filter string, site string) bool {
	return filter == "" || filter == AllSites || filter == site
}
