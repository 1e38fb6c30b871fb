package sqlstore

// golang-migrate ships an official sqlite3 driver, but it's built on
// mattn/go-sqlite3 (cgo). This module deploys as a single static binary
// (modernc.org/sqlite, no cgo), so we adapt golang-migrate's small
// database.Driver interface onto modernc ourselves rather than pull in a
// cgo dependency for one component.

import (
	"database/sql"
	"fmt"
	"io"
	"sync"

	"github.com/golang-migrate/migrate/v4/database"
)

func init() {
	database.Register("sqlite", &Driver{})
}

// Driver implements database.Driver for modernc.org/sqlite.
type Driver struct {
	db   *sql.DB
	mu   sync.Mutex
}

// NewDriver wraps an already-open *sql.DB for use as golang-migrate's
// database driver.
func NewDriver(db *sql.DB) (*Driver, error) {
	d := &Driver{db: db}
	if err := d.ensureVersionTable(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Driver) Open(url string) (database.Driver, error) {
	return nil, fmt.Errorf("sqlstore.Driver: Open(url) unsupported, construct with NewDriver(db) instead")
}

func (d *Driver) Close() error { return nil }

// Lock/Unlock are no-ops: this deploys as a single process on a single
// host, so there is no cross-process migration race to guard.
func (d *Driver) Lock() error   { return nil }
func (d *Driver) Unlock() error { return nil }

func (d *Driver) Run(migration io.Reader) error {
	body, err := io.ReadAll(migration)
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.db.Exec(string(body)); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

func (d *Driver) SetVersion(version int, dirty bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.db.Exec(`DELETE FROM schema_migrations`)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(`INSERT INTO schema_migrations (version, dirty) VALUES (?, ?)`, version, dirty)
	return err
}

func (d *Driver) Version() (int, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var version int
	var dirty bool
	row := d.db.QueryRow(`SELECT version, dirty FROM schema_migrations LIMIT 1`)
	if err := row.Scan(&version, &dirty); err != nil {
		if err == sql.ErrNoRows {
			return -1, false, nil
		}
		return 0, false, err
	}
	return version, dirty, nil
}

func (d *Driver) Drop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	rows, err := d.db.Query(`SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return err
	}
	defer rows.Close()
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		tables = append(tables, name)
	}
	for _, t := range tables {
		if _, err := d.db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %q`, t)); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) ensureVersionTable() error {
	_, err := d.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER NOT NULL, dirty BOOL NOT NULL)`)
	return err
}

var _ database.Driver = (*Driver)(nil)
