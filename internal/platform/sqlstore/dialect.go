package sqlstore

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/pressly/goose/v3"
)

// Dialect describes the differences between the supported databases.
type Dialect struct {
	name       string
	driverName string
	goose      goose.Dialect
}

// Supported dialects.
var (
	Postgres = Dialect{name: "postgres", driverName: "pgx", goose: goose.DialectPostgres}
	SQLite   = Dialect{name: "sqlite", driverName: "sqlite", goose: goose.DialectSQLite3}
)

// ParseDialect returns the dialect for a configured driver name.
func ParseDialect(name string) (Dialect, error) {
	switch name {
	case Postgres.name:
		return Postgres, nil
	case SQLite.name:
		return SQLite, nil
	}
	return Dialect{}, fmt.Errorf("unsupported database driver %q", name)
}

// Name returns the configured driver name.
func (d Dialect) Name() string { return d.name }

// DriverName returns the database/sql driver to open.
func (d Dialect) DriverName() string { return d.driverName }

func (d Dialect) migrationsDir() string { return "migrations/" + d.name }

var placeholder = regexp.MustCompile(`\?`)

// Rebind converts ? placeholders to $1, $2, ... for PostgreSQL. Queries must
// not contain a literal question mark.
func (d Dialect) Rebind(query string) string {
	if d.name != Postgres.name {
		return query
	}
	n := 0
	return placeholder.ReplaceAllStringFunc(query, func(string) string {
		n++
		return "$" + strconv.Itoa(n)
	})
}
