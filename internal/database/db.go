// Package database provides database connection management for the attempts ledger.
package database

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/at-ishikawa/quizdrill/internal/config"
)

func init() {
	sqlx.BindDriver(SQLite{}.DriverName(), sqlx.QUESTION)
}

// DB is a connection pool bound to the dialect it was opened with.
type DB struct {
	*sqlx.DB
	Dialect Dialect
}

// Target is the store a configuration resolves to.
type Target struct {
	Dialect Dialect
	DSN     string
	// Fallback is true when a URL was configured but no driver serves its scheme.
	Fallback bool
}

// Remote reports whether the target is a networked store.
func (t Target) Remote() bool {
	return t.Dialect.Name() != SQLite{}.Name()
}

// Resolve picks the dialect and DSN for cfg. An unset URL, or one whose scheme
// no driver serves, resolves to the embedded SQLite file.
func Resolve(cfg config.DatabaseConfig) (Target, error) {
	if cfg.URL == "" {
		return Target{Dialect: SQLite{}, DSN: sqliteDSN(cfg.SQLitePath)}, nil
	}

	u, err := url.Parse(cfg.URL)
	if err != nil {
		return Target{}, fmt.Errorf("parse database url: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
		return Target{Dialect: Postgres{}, DSN: cfg.URL}, nil
	case "mysql":
		dsn, err := mysqlDSN(u)
		if err != nil {
			return Target{}, err
		}
		return Target{Dialect: MySQL{}, DSN: dsn}, nil
	default:
		return Target{Dialect: SQLite{}, DSN: sqliteDSN(cfg.SQLitePath), Fallback: true}, nil
	}
}

// Open opens the store cfg resolves to. It does not connect until first use.
func Open(cfg config.DatabaseConfig) (*DB, Target, error) {
	target, err := Resolve(cfg)
	if err != nil {
		return nil, Target{}, err
	}

	if !target.Remote() {
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, Target{}, fmt.Errorf("create sqlite directory %s: %w", dir, err)
			}
		}
	}

	db, err := sqlx.Open(target.Dialect.DriverName(), target.DSN)
	if err != nil {
		return nil, Target{}, fmt.Errorf("open database connection: %w", err)
	}

	if !target.Remote() {
		// A single writer avoids SQLITE_BUSY between pooled connections
		db.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}

	return &DB{DB: db, Dialect: target.Dialect}, target, nil
}

func sqliteDSN(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func mysqlDSN(u *url.URL) (string, error) {
	mysqlCfg := mysql.NewConfig()
	if u.User != nil {
		mysqlCfg.User = u.User.Username()
		mysqlCfg.Passwd, _ = u.User.Password()
	}
	mysqlCfg.Net = "tcp"
	mysqlCfg.Addr = u.Host
	if u.Port() == "" {
		mysqlCfg.Addr = u.Host + ":3306"
	}
	mysqlCfg.DBName = strings.TrimPrefix(u.Path, "/")
	if mysqlCfg.DBName == "" {
		return "", fmt.Errorf("mysql url %s has no database name", u.Redacted())
	}
	mysqlCfg.ParseTime = true

	query := u.Query()
	if tls := query.Get("tls"); tls != "" {
		mysqlCfg.TLSConfig = tls
		query.Del("tls")
	}
	if len(query) > 0 {
		mysqlCfg.Params = make(map[string]string, len(query))
		for key := range query {
			mysqlCfg.Params[key] = query.Get(key)
		}
	}
	return mysqlCfg.FormatDSN(), nil
}

// RunInTx runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back; otherwise, it is committed.
func RunInTx(ctx context.Context, db *sqlx.DB, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback transaction: %w (original error: %v)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// BuildMultiRowInsert returns "INSERT INTO table (c1, c2) VALUES (?, ?), (?, ?)" with rowCount tuples.
// Placeholders are "?"; callers Rebind for their driver.
func BuildMultiRowInsert(table string, columns []string, rowCount int) string {
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	tuples := make([]string, rowCount)
	for i := range tuples {
		tuples[i] = tuple
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		table,
		strings.Join(columns, ", "),
		strings.Join(tuples, ", "),
	)
}

// Timestamp scans a timestamp column on every dialect. SQLite stores
// CURRENT_TIMESTAMP as text; PostgreSQL and MySQL (parseTime) return time.Time.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
}

func (ts *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		ts.Time = time.Time{}
		return nil
	case time.Time:
		ts.Time = v.UTC()
		return nil
	case []byte:
		return ts.parse(string(v))
	case string:
		return ts.parse(v)
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (ts *Timestamp) parse(s string) error {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unsupported timestamp format %q", s)
}
