package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"sima-reports/src/pkg/timestamp"
)

//go:embed schema.sql
var schema string

const taskColumns = `id, owner_id, description, client, site, type, completed, created_at, completed_at, materials, photo`

// SQLiteStore keeps records in a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// One writer keeps batch deletes and completions serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListClients(ctx context.Context, ownerID string) ([]Client, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, name, created_at FROM clients WHERE owner_id = ? ORDER BY name`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := []Client{}
	for rows.Next() {
		var client Client
		var createdAt sql.NullString
		if err := rows.Scan(&client.ID, &client.OwnerID, &client.Name, &createdAt); err != nil {
			return nil, err
		}
		client.CreatedAt = decodeColumn(createdAt)
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

func (s *SQLiteStore) CreateClient(ctx context.Context, ownerID string, name string) (Client, error) {
	client := Client{ID: uuid.NewString(), OwnerID: ownerID, Name: strings.TrimSpace(name), CreatedAt: timestamp.Now()}
	if client.Name == "" {
		return Client{}, fmt.Errorf("%w: client name is empty", ErrInvalid)
	}

	createdAt, err := encodeColumn(client.CreatedAt)
	if err != nil {
		return Client{}, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO clients (id, owner_id, name, created_at) VALUES (?, ?, ?, ?)`,
		client.ID, client.OwnerID, client.Name, createdAt,
	)
	if err != nil {
		return Client{}, translateError(err)
	}
	return client, nil
}

func (s *SQLiteStore) DeleteClient(ctx context.Context, ownerID string, clientID string) error {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM clients WHERE owner_id = ? AND id = ?`, ownerID, clientID).Scan(&name)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		statements := []string{
			`DELETE FROM clients WHERE owner_id = ? AND id = ?`,
			`DELETE FROM sites WHERE owner_id = ? AND client = ?`,
			`DELETE FROM tasks WHERE owner_id = ? AND client = ?`,
		}
		args := [][]any{{ownerID, clientID}, {ownerID, name}, {ownerID, name}}

		for i, statement := range statements {
			if _, err := tx.ExecContext(ctx, statement, args[i]...); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) ListSites(ctx context.Context, ownerID string, clientName string) ([]Site, error) {
	query := `SELECT id, owner_id, client, name, created_at FROM sites WHERE owner_id = ?`
	args := []any{ownerID}
	if clientName != "" {
		query += ` AND client = ?`
		args = append(args, clientName)
	}
	query += ` ORDER BY client, name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sites := []Site{}
	for rows.Next() {
		var site Site
		var createdAt sql.NullString
		if err := rows.Scan(&site.ID, &site.OwnerID, &site.ClientName, &site.Name, &createdAt); err != nil {
			return nil, err
		}
		site.CreatedAt = decodeColumn(createdAt)
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

func (s *SQLiteStore) CreateSite(ctx context.Context, ownerID string, clientName string, name string) (Site, error) {
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

	var clientCount int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clients WHERE owner_id = ? AND name = ?`, ownerID, site.ClientName).Scan(&clientCount)
	if err != nil {
		return Site{}, err
	}
	if clientCount == 0 {
		return Site{}, fmt.Errorf("%w: client '%s'", ErrNotFound, site.ClientName)
	}

	createdAt, err := encodeColumn(site.CreatedAt)
	if err != nil {
		return Site{}, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sites (id, owner_id, client, name, created_at) VALUES (?, ?, ?, ?, ?)`,
		site.ID, site.OwnerID, site.ClientName, site.Name, createdAt,
	)
	if err != nil {
		return Site{}, translateError(err)
	}
	return site, nil
}

func (s *SQLiteStore) DeleteSite(ctx context.Context, ownerID string, siteID string) error {
	var clientName, siteName string
	err := s.db.QueryRowContext(ctx,
		`SELECT client, name FROM sites WHERE owner_id = ? AND id = ?`, ownerID, siteID).Scan(&clientName, &siteName)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sites WHERE owner_id = ? AND id = ?`, ownerID, siteID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`DELETE FROM tasks WHERE owner_id = ? AND client = ? AND site = ?`, ownerID, clientName, siteName)
		return err
	})
}

func (s *SQLiteStore) ListTasks(ctx context.Context, ownerID string) ([]TaskRecord, error) {
	return s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE owner_id = ? ORDER BY seq DESC`, ownerID)
}

func (s *SQLiteStore) ListCompletedTasks(ctx context.Context, ownerID string, client string, site string) ([]TaskRecord, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = ? AND completed = 1 AND client = ?`
	args := []any{ownerID, client}
	if site != "" && site != AllSites {
		query += ` AND site = ?`
		args = append(args, site)
	}
	query += ` ORDER BY seq`

	return s.queryTasks(ctx, query, args...)
}

func (s *SQLiteStore) GetTask(ctx context.Context, ownerID string, taskID string) (TaskRecord, error) {
	tasks, err := s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE owner_id = ? AND id = ?`, ownerID, taskID)
	if err != nil {
		return TaskRecord{}, err
	}
	if len(tasks) == 0 {
		return TaskRecord{}, ErrNotFound
	}
	return tasks[0], nil
}

func (s *SQLiteStore) CreateTask(ctx context.Context, ownerID string, task NewTask) (TaskRecord, error) {
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

	return s.insertTask(ctx, record)
}

func (s *SQLiteStore) ImportTask(ctx context.Context, record TaskRecord) (TaskRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt == nil {
		record.CreatedAt = timestamp.Absent{}
	}
	if record.CompletedAt == nil || !record.Completed {
		record.CompletedAt = timestamp.Absent{}
	}
	return s.insertTask(ctx, record)
}

func (s *SQLiteStore) insertTask(ctx context.Context, record TaskRecord) (TaskRecord, error) {
	createdAt, err := encodeColumn(record.CreatedAt)
	if err != nil {
		return TaskRecord{}, err
	}
	completedAt, err := encodeColumn(record.CompletedAt)
	if err != nil {
		return TaskRecord{}, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.OwnerID, record.Description, record.Client, record.Site, record.Type,
		record.Completed, createdAt, completedAt, record.Materials, record.Photo,
	)
	if err != nil {
		return TaskRecord{}, translateError(err)
	}
	return record, nil
}

func (s *SQLiteStore) CompleteTask(ctx context.Context, ownerID string, taskID string, completion Completion) (TaskRecord, error) {
	var record TaskRecord

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var completed bool
		err := tx.QueryRowContext(ctx,
			`SELECT completed FROM tasks WHERE owner_id = ? AND id = ?`, ownerID, taskID).Scan(&completed)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if completed {
			return ErrAlreadyCompleted
		}

		completedAt := timestamp.Now()
		encoded, err := encodeColumn(completedAt)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE tasks SET completed = 1, completed_at = ?, materials = ?, photo = ? WHERE owner_id = ? AND id = ?`,
			encoded, strings.TrimSpace(completion.Materials), completion.Photo, ownerID, taskID,
		)
		if err != nil {
			return err
		}

		tasks, err := scanTasks(tx.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE owner_id = ? AND id = ?`, ownerID, taskID))
		if err != nil {
			return err
		}
		record = tasks[0]
		// The caller gets the live value; later reads see the serialized form.
		record.CompletedAt = completedAt
		return nil
	})

	return record, err
}

func (s *SQLiteStore) DeleteTask(ctx context.Context, ownerID string, taskID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE owner_id = ? AND id = ?`, ownerID, taskID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) queryTasks(ctx context.Context, query string, args ...any) ([]TaskRecord, error) {
	return scanTasks(s.db.QueryContext(ctx, query, args...))
}

func scanTasks(rows *sql.Rows, err error) ([]TaskRecord, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []TaskRecord{}
	for rows.Next() {
		var task TaskRecord
		var createdAt, completedAt sql.NullString
		err := rows.Scan(
			&task.ID, &task.OwnerID, &task.Description, &task.Client, &task.Site, &task.Type,
			&task.Completed, &createdAt, &completedAt, &task.Materials, &task.Photo,
		)
		if err != nil {
			return nil, err
		}
		task.CreatedAt = decodeColumn(createdAt)
		task.CompletedAt = decodeColumn(completedAt)
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func encodeColumn(raw timestamp.Raw) (sql.NullString, error) {
	if _, absent := raw.(timestamp.Absent); absent || raw == nil {
		return sql.NullString{}, nil
	}
	encoded, err := timestamp.Encode(raw)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(encoded), Valid: true}, nil
}

func decodeColumn(column sql.NullString) timestamp.Raw {
	if !column.Valid {
		return timestamp.Absent{}
	}
	return timestamp.Decode([]byte(column.String))
}

// translateError maps unique and primary key violations to ErrDuplicate; other
// constraint failures pass through unchanged.
func translateError(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return fmt.Errorf("%w: %s", ErrDuplicate, sqliteErr.Error())
	}
	return err
}
