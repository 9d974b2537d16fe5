package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/planning"
)

// createdAtLayout is fixed width so created_at sorts lexically.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

const plansSchema = `
CREATE TABLE IF NOT EXISTS plans (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	created_at TEXT NOT NULL,
	capacity TEXT NOT NULL,
	group_count INTEGER NOT NULL,
	batch_count INTEGER NOT NULL,
	payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_plans_created_at ON plans(created_at);
`

// SQLitePlanStore persists plans in a SQLite database. The full plan is
// stored as JSON next to the columns needed for listing.
type SQLitePlanStore struct {
	db *sql.DB
}

// NewSQLitePlanStore opens (creating if needed) the database at path.
func NewSQLitePlanStore(path string) (*SQLitePlanStore, error) {
	if path == "" {
		return nil, errors.New("sqlite plan store requires a path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(plansSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialise schema: %w", err)
	}
	return &SQLitePlanStore{db: db}, nil
}

// SavePlan inserts or replaces plan.
func (s *SQLitePlanStore) SavePlan(ctx context.Context, plan planning.Plan) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO plans (id, source, created_at, capacity, group_count, batch_count, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		plan.ID,
		plan.Source,
		plan.CreatedAt.UTC().Format(createdAtLayout),
		plan.Capacity.String(),
		len(plan.Groups),
		plan.BatchCount(),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert plan %s: %w", plan.ID, err)
	}
	return nil
}

// GetPlan loads the plan stored under id.
func (s *SQLitePlanStore) GetPlan(ctx context.Context, id string) (planning.Plan, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM plans WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return planning.Plan{}, ErrPlanNotFound
	}
	if err != nil {
		return planning.Plan{}, fmt.Errorf("query plan %s: %w", id, err)
	}

	var plan planning.Plan
	if err := json.Unmarshal([]byte(payload), &plan); err != nil {
		return planning.Plan{}, fmt.Errorf("decode plan %s: %w", id, err)
	}
	return plan, nil
}

// ListPlans returns up to limit records, newest first. A non-positive limit
// returns every plan.
func (s *SQLitePlanStore) ListPlans(ctx context.Context, limit int) ([]PlanRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, created_at, capacity, group_count, batch_count
		 FROM plans ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	out := make([]PlanRecord, 0)
	for rows.Next() {
		var (
			rec       PlanRecord
			createdAt string
			capacity  string
		)
		if err := rows.Scan(&rec.ID, &rec.Source, &createdAt, &capacity, &rec.GroupCount, &rec.BatchCount); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		if rec.CreatedAt, err = time.Parse(createdAtLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at for %s: %w", rec.ID, err)
		}
		if rec.Capacity, err = decimal.NewFromString(capacity); err != nil {
			return nil, fmt.Errorf("parse capacity for %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *SQLitePlanStore) Close() error {
	return s.db.Close()
}
