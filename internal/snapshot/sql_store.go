package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dialect selects placeholder syntax for SQLStore.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// SQLStore persists snapshots in a health_snapshots table. It is the
// primary store; Postgres (pgx) and SQLite are supported.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// NewSQLStore wraps an open database handle.
func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect, now: time.Now}
}

// WithClock overrides the clock used to compute List windows.
func (s *SQLStore) WithClock(now func() time.Time) *SQLStore {
	s.now = now
	return s
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS health_snapshots (
	date TEXT PRIMARY KEY,
	taken_at TEXT NOT NULL,
	completed INTEGER NOT NULL,
	overdue INTEGER NOT NULL,
	blocked INTEGER NOT NULL,
	active INTEGER NOT NULL,
	health_score INTEGER NOT NULL,
	health_status TEXT NOT NULL,
	slippage_rate INTEGER NOT NULL,
	completion_rate INTEGER NOT NULL,
	total_planned INTEGER NOT NULL,
	owners INTEGER,
	squads INTEGER,
	velocity_points DOUBLE PRECISION
)`

// EnsureSchema creates the snapshot table if needed.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create snapshot schema: %w", err)
	}
	return nil
}

func (s *SQLStore) Save(ctx context.Context, snap Snapshot) error {
	if snap.Date == "" {
		return fmt.Errorf("snapshot date is required")
	}
	q := s.rebind(`
INSERT INTO health_snapshots (date, taken_at, completed, overdue, blocked, active, health_score, health_status, slippage_rate, completion_rate, total_planned, owners, squads, velocity_points)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (date)
DO UPDATE SET taken_at = EXCLUDED.taken_at,
              completed = EXCLUDED.completed,
              overdue = EXCLUDED.overdue,
              blocked = EXCLUDED.blocked,
              active = EXCLUDED.active,
              health_score = EXCLUDED.health_score,
              health_status = EXCLUDED.health_status,
              slippage_rate = EXCLUDED.slippage_rate,
              completion_rate = EXCLUDED.completion_rate,
              total_planned = EXCLUDED.total_planned,
              owners = EXCLUDED.owners,
              squads = EXCLUDED.squads,
              velocity_points = EXCLUDED.velocity_points`)

	var owners, squads sql.NullInt64
	var velocity sql.NullFloat64
	if snap.Team != nil {
		owners = sql.NullInt64{Int64: int64(snap.Team.Owners), Valid: true}
		squads = sql.NullInt64{Int64: int64(snap.Team.Squads), Valid: true}
		velocity = sql.NullFloat64{Float64: snap.Team.VelocityPoints, Valid: true}
	}

	c := snap.Company
	_, err := s.db.ExecContext(ctx, q,
		snap.Date,
		snap.Timestamp,
		c.Completed,
		c.Overdue,
		c.Blocked,
		c.Active,
		c.HealthScore,
		c.HealthStatus,
		c.SlippageRate,
		c.CompletionRate,
		c.TotalPlanned,
		owners,
		squads,
		velocity,
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context, days int) ([]Snapshot, error) {
	q := s.rebind(`
SELECT date, taken_at, completed, overdue, blocked, active, health_score, health_status, slippage_rate, completion_rate, total_planned, owners, squads, velocity_points
FROM health_snapshots
WHERE date >= ?
ORDER BY date ASC`)

	rows, err := s.db.QueryContext(ctx, q, cutoffDate(s.now(), days))
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		var owners, squads sql.NullInt64
		var velocity sql.NullFloat64
		c := &snap.Company
		if err := rows.Scan(
			&snap.Date, &snap.Timestamp,
			&c.Completed, &c.Overdue, &c.Blocked, &c.Active,
			&c.HealthScore, &c.HealthStatus, &c.SlippageRate, &c.CompletionRate, &c.TotalPlanned,
			&owners, &squads, &velocity,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if owners.Valid || squads.Valid || velocity.Valid {
			snap.Team = &TeamSnapshot{
				Owners:         int(owners.Int64),
				Squads:         int(squads.Int64),
				VelocityPoints: velocity.Float64,
			}
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return out, nil
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *SQLStore) rebind(q string) string {
	if s.dialect != DialectPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
