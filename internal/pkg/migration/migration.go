// Package migration applies the embedded SQL schema with golang-migrate.
package migration

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // pgx5:// driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ErrDatabaseURLRequired is returned when the database URL is empty.
var ErrDatabaseURLRequired = errors.New("migration: database url is required")

// Migrator runs schema migrations from an fs.FS against PostgreSQL.
type Migrator struct {
	m *migrate.Migrate
}

// New builds a Migrator reading *.sql files from dir inside fsys.
func New(fsys fs.FS, dir, databaseURL string) (*Migrator, error) {
	if databaseURL == "" {
		return nil, ErrDatabaseURLRequired
	}

	src, err := iofs.New(fsys, dir)
	if err != nil {
		return nil, err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, DriverURL(databaseURL))
	if err != nil {
		return nil, err
	}

	return &Migrator{m: m}, nil
}

// DriverURL rewrites a postgres:// or postgresql:// URL to the pgx5 scheme
// registered by the golang-migrate pgx/v5 driver.
func DriverURL(databaseURL string) string {
	for _, scheme := range []string{"postgresql://", "postgres://"} {
		if rest, ok := strings.CutPrefix(databaseURL, scheme); ok {
			return "pgx5://" + rest
		}
	}
	return databaseURL
}

// Up applies every pending migration. No pending migration is not an error.
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Down rolls back steps migrations.
func (mg *Migrator) Down(steps int) error {
	if steps <= 0 {
		steps = 1
	}
	if err := mg.m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Version returns the applied version; 0 when nothing was applied.
func (mg *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// Close releases the source and database handles.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}
