// Package sqlstore is the standalone, single-host store.Store adapter
// backed by modernc.org/sqlite (pure Go, no cgo) with schema managed
// through golang-migrate (see migrate_driver.go for the engine adapter).
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/shardhost/botengine/internal/model"
	"github.com/shardhost/botengine/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a sqlite database at path and applies
// pending migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // modernc sqlite is not safe for concurrent writers

	// SQLite enforces FOREIGN KEY constraints, and the ON DELETE CASCADE
	// the schema relies on for DeleteBot, only per connection, never by
	// default. With a single pooled connection this only needs setting
	// once at open.
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	drv, err := NewDriver(db)
	if err != nil {
		return nil, fmt.Errorf("build migrate driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("load embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return nil, fmt.Errorf("build migrator: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) GetBot(ctx context.Context, id string) (*model.Bot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, runtime, main_file, credential, status,
		       pid, memory, cpu, uptime, last_start, created_at, updated_at
		FROM bots WHERE id = ?`, id)
	return scanBot(row)
}

func scanBot(row *sql.Row) (*model.Bot, error) {
	var b model.Bot
	var pid sql.NullInt64
	var lastStart sql.NullTime
	if err := row.Scan(&b.ID, &b.OwnerID, &b.Name, &b.Runtime, &b.MainFile, &b.Credential,
		&b.Status, &pid, &b.Memory, &b.CPU, &b.Uptime, &lastStart, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if pid.Valid {
		v := int(pid.Int64)
		b.PID = &v
	}
	if lastStart.Valid {
		v := lastStart.Time
		b.LastStart = &v
	}
	return &b, nil
}

func (s *Store) UpdateBot(ctx context.Context, id string, patch model.BotPatch) error {
	current, err := s.GetBot(ctx, id)
	if err != nil {
		return err
	}
	if patch.Status != nil {
		current.Status = *patch.Status
	}
	if patch.PID != nil {
		current.PID = *patch.PID
	}
	if patch.Memory != nil {
		current.Memory = *patch.Memory
	}
	if patch.CPU != nil {
		current.CPU = *patch.CPU
	}
	if patch.Uptime != nil {
		current.Uptime = *patch.Uptime
	}
	if patch.MainFile != nil {
		current.MainFile = *patch.MainFile
	}
	if patch.LastStart != nil {
		current.LastStart = *patch.LastStart
	}

	var pid sql.NullInt64
	if current.PID != nil {
		pid = sql.NullInt64{Int64: int64(*current.PID), Valid: true}
	}
	var lastStart sql.NullTime
	if current.LastStart != nil {
		lastStart = sql.NullTime{Time: *current.LastStart, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE bots SET status=?, pid=?, memory=?, cpu=?, uptime=?, main_file=?, last_start=?, updated_at=?
		WHERE id=?`,
		current.Status, pid, current.Memory, current.CPU, current.Uptime, current.MainFile, lastStart, time.Now(), id)
	return err
}

func (s *Store) DeleteBot(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bots WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) GetBotFiles(ctx context.Context, botID string) ([]*model.BotFile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, bot_id, filename, content, size FROM bot_files WHERE bot_id = ? ORDER BY filename`, botID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.BotFile
	for rows.Next() {
		var f model.BotFile
		if err := rows.Scan(&f.ID, &f.BotID, &f.Filename, &f.Content, &f.Size); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

func (s *Store) UpdateBotFile(ctx context.Context, botID, filename, content string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE bot_files SET content=?, size=? WHERE bot_id=? AND filename=?`,
		content, len(content), botID, filename)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// CreateBotFile inserts a new file; used by workspace seeding/tests, not
// part of store.Store (file creation belongs to the upload collaborator).
func (s *Store) CreateBotFile(ctx context.Context, f *model.BotFile) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO bot_files (id, bot_id, filename, content, size) VALUES (?,?,?,?,?)`,
		f.ID, f.BotID, f.Filename, f.Content, len(f.Content))
	return err
}

// CreateBot inserts a new bot row; used by the upload collaborator, not
// part of store.Store.
func (s *Store) CreateBot(ctx context.Context, b *model.Bot) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now()
	b.CreatedAt, b.UpdatedAt = now, now
	if b.Status == "" {
		b.Status = model.StatusStopped
	}
	if b.Memory == "" {
		b.Memory = "0MB"
	}
	if b.CPU == "" {
		b.CPU = "0%"
	}
	if b.Uptime == "" {
		b.Uptime = "0s"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bots (id, owner_id, name, runtime, main_file, credential, status, memory, cpu, uptime, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		b.ID, b.OwnerID, b.Name, b.Runtime, b.MainFile, b.Credential, b.Status, b.Memory, b.CPU, b.Uptime, b.CreatedAt, b.UpdatedAt)
	return err
}

func (s *Store) GetBotLogs(ctx context.Context, botID string, limit int) ([]*model.BotLogRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, bot_id, severity, message, timestamp FROM bot_log_records
		WHERE bot_id = ? ORDER BY timestamp DESC LIMIT ?`, botID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.BotLogRecord
	for rows.Next() {
		var r model.BotLogRecord
		if err := rows.Scan(&r.ID, &r.BotID, &r.Severity, &r.Message, &r.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *Store) CreateBotLog(ctx context.Context, rec *model.BotLogRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO bot_log_records (id, bot_id, severity, message, timestamp) VALUES (?,?,?,?,?)`,
		rec.ID, rec.BotID, rec.Severity, rec.Message, rec.Timestamp)
	return err
}

var _ store.Store = (*Store)(nil)
