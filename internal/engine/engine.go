// Package engine executes named multi-step write plans inside a single
// database transaction. A plan's steps run strictly in declared order;
// the first failing step rolls the whole transaction back and its cause
// is carried out in a StepError. Steps that also touch external storage
// (blob writes) must perform the external write before their database
// write, so a rollback can never leave a row referencing a file that
// was not stored; a blob orphaned by a later step failing is harmless
// garbage for a separate sweep.
package engine

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stayora/hotel-booking-backend/internal/observability"
	"github.com/stayora/hotel-booking-backend/internal/repository"
)

// Step is one named unit of work inside a plan.
type Step struct {
	Name string
	Run  func(ctx context.Context, tx *sql.Tx) error
}

// Plan is an ordered sequence of steps committed as one atomic unit.
type Plan struct {
	Name  string
	Steps []Step
}

// StepError reports which step of which plan failed. It unwraps to the
// step's cause so callers can match sentinels through it.
type StepError struct {
	Plan string
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("plan %s: step %s: %v", e.Plan, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// IsConflict reports whether the plan failed on a recognized
// user-caused constraint violation rather than an infrastructure fault.
func (e *StepError) IsConflict() bool {
	return repository.IsForeignKeyViolation(e.Err) ||
		repository.IsDuplicateEntry(e.Err)
}

// Engine runs plans against one database handle.
type Engine struct {
	db  *sql.DB
	log zerolog.Logger
}

func New(db *sql.DB, log zerolog.Logger) *Engine {
	if db == nil {
		panic("nil db passed to engine.New")
	}
	return &Engine{db: db, log: log}
}

// Execute runs every step of the plan inside one transaction. On any
// step failure the transaction is rolled back and a *StepError is
// returned; otherwise the transaction commits. Execute never leaves a
// transaction open: every path reaches commit or rollback.
func (e *Engine) Execute(ctx context.Context, p Plan) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return &StepError{Plan: p.Name, Step: "begin", Err: err}
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, s := range p.Steps {
		if err := s.Run(ctx, tx); err != nil {
			e.log.Warn().Str("plan", p.Name).Str("step", s.Name).Err(err).Msg("plan step failed, rolling back")
			observability.PlanExecutions.WithLabelValues(p.Name, "rollback").Inc()
			return &StepError{Plan: p.Name, Step: s.Name, Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		observability.PlanExecutions.WithLabelValues(p.Name, "rollback").Inc()
		return &StepError{Plan: p.Name, Step: "commit", Err: err}
	}
	committed = true
	observability.PlanExecutions.WithLabelValues(p.Name, "ok").Inc()
	return nil
}
