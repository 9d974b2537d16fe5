package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/batching"
	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/planning"
)

const (
	// DriverMemory keeps plan history in process memory.
	DriverMemory = "memory"
	// DriverSQLite keeps plan history in a SQLite database file.
	DriverSQLite = "sqlite"

	defaultHistory = 50
)

// ErrPlanNotFound is returned when no plan exists for the requested ID.
var ErrPlanNotFound = errors.New("plan not found")

// PlanRecord is the listing view of a stored plan.
type PlanRecord struct {
	ID         string         `json:"id"`
	Source     string         `json:"source"`
	CreatedAt  time.Time      `json:"createdAt"`
	Capacity   batching.Width `json:"capacity"`
	GroupCount int            `json:"groupCount"`
	BatchCount int            `json:"batchCount"`
}

// PlanStore keeps a history of computed plans.
type PlanStore interface {
	SavePlan(ctx context.Context, plan planning.Plan) error
	GetPlan(ctx context.Context, id string) (planning.Plan, error)
	ListPlans(ctx context.Context, limit int) ([]PlanRecord, error)
	Close() error
}

// OpenPlanStore builds the PlanStore selected by driver. history bounds the
// in-memory store and is ignored by SQLite.
func OpenPlanStore(driver, path string, history int) (PlanStore, error) {
	switch driver {
	case "", DriverMemory:
		return NewMemoryPlanStore(history), nil
	case DriverSQLite:
		return NewSQLitePlanStore(path)
	default:
		return nil, fmt.Errorf("unknown plan store driver %q", driver)
	}
}

func recordOf(plan planning.Plan) PlanRecord {
	return PlanRecord{
		ID:         plan.ID,
		Source:     plan.Source,
		CreatedAt:  plan.CreatedAt,
		Capacity:   plan.Capacity,
		GroupCount: len(plan.Groups),
		BatchCount: plan.BatchCount(),
	}
}

// MemoryPlanStore retains the most recent plans up to a fixed bound.
type MemoryPlanStore struct {
	mu    sync.RWMutex
	limit int
	plans []planning.Plan
}

// NewMemoryPlanStore creates a store holding at most history plans.
func NewMemoryPlanStore(history int) *MemoryPlanStore {
	if history <= 0 {
		history = defaultHistory
	}
	return &MemoryPlanStore{limit: history}
}

// SavePlan stores plan, evicting the oldest entry when full. Saving an ID
// that already exists replaces it.
func (s *MemoryPlanStore) SavePlan(_ context.Context, plan planning.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.plans {
		if existing.ID == plan.ID {
			s.plans = append(s.plans[:i], s.plans[i+1:]...)
			break
		}
	}
	s.plans = append(s.plans, plan)
	if over := len(s.plans) - s.limit; over > 0 {
		s.plans = append([]planning.Plan(nil), s.plans[over:]...)
	}
	return nil
}

// GetPlan returns the plan stored under id.
func (s *MemoryPlanStore) GetPlan(_ context.Context, id string) (planning.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, plan := range s.plans {
		if plan.ID == id {
			return plan, nil
		}
	}
	return planning.Plan{}, ErrPlanNotFound
}

// ListPlans returns up to limit records, newest first.
func (s *MemoryPlanStore) ListPlans(_ context.Context, limit int) ([]PlanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.plans) {
		limit = len(s.plans)
	}
	out := make([]PlanRecord, 0, limit)
	for i := len(s.plans) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, recordOf(s.plans[i]))
	}
	return out, nil
}

// Close is a no-op.
func (s *MemoryPlanStore) Close() error {
	return nil
}
