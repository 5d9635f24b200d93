// Package mirror is the public API of the core: a small facade wiring
// together the store, store initializer, registrar, planner, ingester,
// update loop, and extractor behind four operations -- construct,
// register, update, extract.
package mirror

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/graphmirror/internal/extract"
	"github.com/mesh-intelligence/graphmirror/internal/loop"
	"github.com/mesh-intelligence/graphmirror/internal/mirrorstore"
	"github.com/mesh-intelligence/graphmirror/internal/registrar"
	"github.com/mesh-intelligence/graphmirror/internal/store"
	"github.com/mesh-intelligence/graphmirror/pkg/schema"
)

// Options are the Mirror's construction options, split into the
// identity-relevant subset (mirrorstore.Options, fingerprinted on disk)
// and the operational subset consumed only at update-loop time.
type Options struct {
	BlacklistedIds []string

	NodesLimit         int
	NodesOfTypeLimit   int
	ConnectionLimit    int
	ConnectionPageSize int
}

func (o Options) blacklistSet() map[string]bool {
	set := make(map[string]bool, len(o.BlacklistedIds))
	for _, id := range o.BlacklistedIds {
		set[id] = true
	}
	return set
}

// Mirror owns the store and the compiled SchemaInfo for the lifetime of
// the process.
type Mirror struct {
	store   *store.Store
	info    *schema.Info
	options Options
}

// New opens (or attaches to) the SQLite database at dbPath, compiles schema,
// and runs the store initializer, failing with mirrorstore.ErrIncompatible
// if an existing database's fingerprint does not match this schema/options
// pair.
func New(ctx context.Context, dbPath string, s schema.Schema, options Options) (*Mirror, error) {
	info, err := schema.Compile(s)
	if err != nil {
		return nil, fmt.Errorf("mirror: compiling schema: %w", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("mirror: opening store: %w", err)
	}

	if err := mirrorstore.Initialize(ctx, st, info, mirrorstore.Options{BlacklistedIds: options.BlacklistedIds}); err != nil {
		st.Close()
		return nil, fmt.Errorf("mirror: initializing store: %w", err)
	}

	return &Mirror{store: st, info: info, options: options}, nil
}

// Close releases the underlying database connection.
func (m *Mirror) Close() error {
	return m.store.Close()
}

// Info exposes the compiled SchemaInfo, e.g. for CLI diagnostics that walk
// the schema's link/connection shape without recompiling it.
func (m *Mirror) Info() *schema.Info { return m.info }

// Store exposes the underlying store for read-only CLI inspection (show,
// list); no core operation needs this itself.
func (m *Mirror) Store() *store.Store { return m.store }

// RegisterObject is the only way to introduce a root object the update
// loop will subsequently discover as outdated.
func (m *Mirror) RegisterObject(ctx context.Context, typename schema.Typename, id string) error {
	return registrar.Register(ctx, m.store, m.info, typename, id)
}

// Update drives the loop to convergence, using since/now and this Mirror's
// configured limits and blacklist. onStep, if non-nil, receives per-step
// progress for callers such as a CLI progress bar.
func (m *Mirror) Update(ctx context.Context, transport loop.Transport, since int64, now func() int64, onStep func(loop.StepStats)) error {
	return loop.Run(ctx, m.store, m.info, transport, loop.Options{
		Since:              since,
		Now:                now,
		NodesLimit:         m.options.NodesLimit,
		NodesOfTypeLimit:   m.options.NodesOfTypeLimit,
		ConnectionLimit:    m.options.ConnectionLimit,
		ConnectionPageSize: m.options.ConnectionPageSize,
		BlacklistedIds:     m.options.blacklistSet(),
		OnStep:             onStep,
	})
}

// Extract builds the in-memory, possibly-cyclic object graph rooted at
// rootID.
func (m *Mirror) Extract(ctx context.Context, rootID string) (map[string]any, error) {
	return extract.Extract(ctx, m.store, m.info, rootID)
}
