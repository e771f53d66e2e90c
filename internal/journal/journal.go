//go:generate go run github.com/golang/mock/mockgen -destination=./mocks/journal.go -package=mocks . Repository

// Package journal records collection load outcomes and clock samples.
//
// The journal is diagnostic only: components never read it back to decide
// what to display. Two database/sql drivers are supported:
//   - postgres: github.com/lib/pq
//   - sqlite: modernc.org/sqlite (pure Go, suitable for a local file)
//
// Example usage:
//
//	repo, err := journal.Open("sqlite", "clockfeed.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
//	loads, err := repo.RecentLoads(ctx, "users", 10)
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/tejusbharadwaj/clockfeed/internal/models"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Repository defines the journal operations.
type Repository interface {
	// RecordLoad stores the outcome of one applied collection load.
	RecordLoad(ctx context.Context, entry models.LoadEntry) error

	// RecordSample stores one clock reading.
	RecordSample(ctx context.Context, sample models.Sample) error

	// RecentLoads returns the newest load entries first. An empty collection
	// name matches every collection.
	RecentLoads(ctx context.Context, collection string, limit int) ([]models.LoadEntry, error)

	// Close releases any resources held by the repository.
	Close() error
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS collection_loads (
		collection  TEXT    NOT NULL,
		endpoint    TEXT    NOT NULL,
		status      TEXT    NOT NULL,
		items       INTEGER NOT NULL,
		error       TEXT    NOT NULL DEFAULT '',
		duration_ms BIGINT  NOT NULL,
		loaded_at   BIGINT  NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS clock_samples (
		country        TEXT    NOT NULL,
		timezone       TEXT    NOT NULL,
		formatted_time TEXT    NOT NULL,
		formatted_date TEXT    NOT NULL,
		updates        INTEGER NOT NULL,
		sampled_at     BIGINT  NOT NULL
	)`,
}

// SQLRepo implements Repository on database/sql.
type SQLRepo struct {
	db     *sql.DB
	driver string
}

// Open connects to the database, verifies connectivity and creates the
// tables when they do not exist yet.
func Open(driver, dsn string) (*SQLRepo, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported journal driver: %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// one connection keeps writes serialized and in-memory databases alive
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	repo := &SQLRepo{db: db, driver: driver}
	if err := repo.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLRepo) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create journal tables: %w", err)
		}
	}
	return nil
}

// bind rewrites ? placeholders to $n for postgres
func (r *SQLRepo) bind(query string) string {
	if r.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func (r *SQLRepo) RecordLoad(ctx context.Context, entry models.LoadEntry) error {
	_, err := r.db.ExecContext(ctx, r.bind(`
		INSERT INTO collection_loads (collection, endpoint, status, items, error, duration_ms, loaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		entry.Collection,
		entry.Endpoint,
		entry.Status.String(),
		entry.Items,
		entry.Error,
		entry.Duration.Milliseconds(),
		entry.At.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert load entry: %w", err)
	}
	return nil
}

func (r *SQLRepo) RecordSample(ctx context.Context, sample models.Sample) error {
	_, err := r.db.ExecContext(ctx, r.bind(`
		INSERT INTO clock_samples (country, timezone, formatted_time, formatted_date, updates, sampled_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		sample.Country,
		sample.Timezone,
		sample.FormattedTime,
		sample.FormattedDate,
		sample.Updates,
		sample.At.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert clock sample: %w", err)
	}
	return nil
}

func (r *SQLRepo) RecentLoads(ctx context.Context, collection string, limit int) ([]models.LoadEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT collection, endpoint, status, items, error, duration_ms, loaded_at FROM collection_loads`
	args := []any{}
	if collection != "" {
		query += ` WHERE collection = ?`
		args = append(args, collection)
	}
	query += ` ORDER BY loaded_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, r.bind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LoadEntry
	for rows.Next() {
		var (
			e          models.LoadEntry
			status     string
			durationMS int64
			loadedAt   int64
		)
		if err := rows.Scan(&e.Collection, &e.Endpoint, &status, &e.Items, &e.Error, &durationMS, &loadedAt); err != nil {
			return nil, err
		}
		e.Status = models.ParseStatus(status)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.At = time.UnixMilli(loadedAt)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// CountSamples returns the number of samples stored for a country.
func (r *SQLRepo) CountSamples(ctx context.Context, country string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, r.bind(`SELECT COUNT(*) FROM clock_samples WHERE country = ?`), country).Scan(&n)
	return n, err
}

func (r *SQLRepo) Close() error {
	return r.db.Close()
}

// Compile-time interface implementation check
var _ Repository = (*SQLRepo)(nil)
