package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/graphmirror/pkg/mirror"
	"github.com/mesh-intelligence/graphmirror/pkg/schema"
)

// openMirror loads config, loads and compiles the schema, and constructs a
// Mirror over the resolved data directory's database -- the common
// preamble of every subcommand but "init" (which additionally creates the
// directories).
func openMirror(cmd *cobra.Command) (*mirror.Mirror, *resolvedConfig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.SchemaFile == "" {
		return nil, nil, fmt.Errorf("no schema file configured: pass --schema or set schema_file in config.yaml")
	}

	s, err := schema.LoadFile(cfg.SchemaFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading schema: %w", err)
	}

	m, err := mirror.New(cmd.Context(), dbPath(cfg.DataDir), s, mirror.Options{
		BlacklistedIds:     cfg.BlacklistedIds,
		NodesLimit:         cfg.NodesLimit,
		NodesOfTypeLimit:   cfg.NodesOfTypeLimit,
		ConnectionLimit:    cfg.ConnectionLimit,
		ConnectionPageSize: cfg.ConnectionPageSize,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening mirror: %w", err)
	}
	return m, cfg, nil
}
