package database

import (
	"fmt"
	"strings"

	"github.com/at-ishikawa/quizdrill/schemas"
)

// Dialect holds the SQL that differs between the supported stores.
type Dialect interface {
	// Name is the dialect name, also the schema file name.
	Name() string
	// DriverName is the database/sql driver registered for the dialect.
	DriverName() string
	// Now is the SQL expression of the server's current timestamp.
	Now() string
	// Upsert returns the clause appended to a multi-row INSERT so that a row
	// conflicting on conflictColumns overwrites updateColumns and refreshes touchColumn.
	Upsert(conflictColumns, updateColumns []string, touchColumn string) string
}

// Schema returns the attempts DDL of the dialect.
func Schema(d Dialect) (string, error) {
	content, err := schemas.Files.ReadFile(d.Name() + ".sql")
	if err != nil {
		return "", fmt.Errorf("read %s schema: %w", d.Name(), err)
	}
	return string(content), nil
}

type SQLite struct{}

func (SQLite) Name() string       { return "sqlite" }
func (SQLite) DriverName() string { return "sqlite" }
func (SQLite) Now() string        { return "CURRENT_TIMESTAMP" }

func (d SQLite) Upsert(conflictColumns, updateColumns []string, touchColumn string) string {
	return onConflict(conflictColumns, updateColumns, touchColumn, d.Now())
}

type Postgres struct{}

func (Postgres) Name() string       { return "postgres" }
func (Postgres) DriverName() string { return "pgx" }
func (Postgres) Now() string        { return "NOW()" }

func (d Postgres) Upsert(conflictColumns, updateColumns []string, touchColumn string) string {
	return onConflict(conflictColumns, updateColumns, touchColumn, d.Now())
}

type MySQL struct{}

func (MySQL) Name() string       { return "mysql" }
func (MySQL) DriverName() string { return "mysql" }
func (MySQL) Now() string        { return "CURRENT_TIMESTAMP" }

// Upsert relies on the table's primary key, so conflictColumns is not part of the clause.
func (d MySQL) Upsert(_, updateColumns []string, touchColumn string) string {
	assignments := make([]string, 0, len(updateColumns)+1)
	for _, c := range updateColumns {
		assignments = append(assignments, fmt.Sprintf("%s = VALUES(%s)", c, c))
	}
	assignments = append(assignments, fmt.Sprintf("%s = %s", touchColumn, d.Now()))
	return " ON DUPLICATE KEY UPDATE " + strings.Join(assignments, ", ")
}

func onConflict(conflictColumns, updateColumns []string, touchColumn, now string) string {
	assignments := make([]string, 0, len(updateColumns)+1)
	for _, c := range updateColumns {
		assignments = append(assignments, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	assignments = append(assignments, fmt.Sprintf("%s = %s", touchColumn, now))
	return fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s",
		strings.Join(conflictColumns, ", "),
		strings.Join(assignments, ", "),
	)
}
