// Package loop implements the update loop driver: iterate plan -> query ->
// ingest until convergence, never holding a transaction across the
// transport call.
package loop

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/graphmirror/internal/ingest"
	"github.com/mesh-intelligence/graphmirror/internal/planner"
	"github.com/mesh-intelligence/graphmirror/internal/querylang"
	"github.com/mesh-intelligence/graphmirror/internal/store"
	"github.com/mesh-intelligence/graphmirror/pkg/schema"
)

// Transport posts a query and returns the response's data payload, or
// fails with any error.
type Transport func(ctx context.Context, req querylang.Request) (map[string]any, error)

// Options configures one Run of the update loop.
type Options struct {
	Since              int64
	Now                func() int64
	NodesLimit         int
	NodesOfTypeLimit   int
	ConnectionLimit    int
	ConnectionPageSize int
	BlacklistedIds     map[string]bool

	// OnStep, if set, is invoked once per step, after the transport returns
	// and before that step's ingest, with the counts scheduled that step --
	// CLI progress reporting hooks in here; the loop itself has no UI
	// dependency.
	OnStep func(StepStats)
}

// StepStats summarizes one loop step for progress reporting.
type StepStats struct {
	StepNumber        int
	ObjectsScheduled  int
	ConnectionsScheduled int
}

func (o Options) limits() planner.Limits {
	return planner.Limits{
		NodesLimit:         o.NodesLimit,
		NodesOfTypeLimit:   o.NodesOfTypeLimit,
		ConnectionLimit:    o.ConnectionLimit,
		ConnectionPageSize: o.ConnectionPageSize,
	}
}

// Run repeatedly plans, queries, and ingests until both the outdated
// objects and outdated connections sets are empty.
func Run(ctx context.Context, st *store.Store, info *schema.Info, transport Transport, opts Options) error {
	if opts.Now == nil {
		return fmt.Errorf("loop: Options.Now must be supplied")
	}

	step := 0
	for {
		plan, err := planner.FindOutdated(ctx, st, opts.Since)
		if err != nil {
			return fmt.Errorf("loop: finding outdated entities: %w", err)
		}
		if plan.IsEmpty() {
			return nil
		}

		doc, err := planner.BuildQuery(info, plan, opts.limits())
		if err != nil {
			return fmt.Errorf("loop: building query: %w", err)
		}

		req := querylang.NewRequest(doc)

		// No transaction is open across this call: FindOutdated reads through
		// the store's *sql.DB without opening a transaction of its own, and
		// the ingest transaction below has not opened yet.
		result, err := transport(ctx, req)
		if err != nil {
			return fmt.Errorf("loop: transport failed: %w", err)
		}

		step++
		if opts.OnStep != nil {
			opts.OnStep(StepStats{
				StepNumber:           step,
				ObjectsScheduled:     len(plan.Objects),
				ConnectionsScheduled: len(plan.Connections),
			})
		}

		now := opts.Now()
		err = st.WithTxSimple(ctx, func(tx *sql.Tx) error {
			var updateID int64
			res, err := tx.Exec("INSERT INTO updates (time_epoch_millis) VALUES (?)", now)
			if err != nil {
				return fmt.Errorf("inserting updates row: %w", err)
			}
			updateID, err = res.LastInsertId()
			if err != nil {
				return fmt.Errorf("reading updates rowid: %w", err)
			}
			return ingest.Ingest(tx, info, opts.BlacklistedIds, updateID, result)
		})
		if err != nil {
			return fmt.Errorf("loop: ingesting step %d: %w", step, err)
		}
	}
}
