package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/graphmirror/pkg/mirror"
	"github.com/mesh-intelligence/graphmirror/pkg/schema"
)

// configFile is the structure written to config.yaml.
type configFile struct {
	DataDir            string   `yaml:"data_dir,omitempty"`
	SchemaFile         string   `yaml:"schema_file,omitempty"`
	BlacklistedIds     []string `yaml:"blacklisted_ids,omitempty"`
	NodesLimit         int      `yaml:"nodes_limit,omitempty"`
	NodesOfTypeLimit   int      `yaml:"nodes_of_type_limit,omitempty"`
	ConnectionLimit    int      `yaml:"connection_limit,omitempty"`
	ConnectionPageSize int      `yaml:"connection_page_size,omitempty"`
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the mirror's configuration and database",
		Long:  "Create the configuration and data directories, write config.yaml if absent, and run the store initializer.",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.SchemaFile == "" {
		return fmt.Errorf("init requires --schema (path to the schema descriptor JSON file)")
	}

	if err := os.MkdirAll(cfg.ConfigDir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	if err := writeConfigIfMissing(filepath.Join(cfg.ConfigDir, "config.yaml"), cfg); err != nil {
		return fmt.Errorf("writing config.yaml: %w", err)
	}

	s, err := schema.LoadFile(cfg.SchemaFile)
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}

	m, err := mirror.New(cmd.Context(), dbPath(cfg.DataDir), s, mirror.Options{
		BlacklistedIds:     cfg.BlacklistedIds,
		NodesLimit:         cfg.NodesLimit,
		NodesOfTypeLimit:   cfg.NodesOfTypeLimit,
		ConnectionLimit:    cfg.ConnectionLimit,
		ConnectionPageSize: cfg.ConnectionPageSize,
	})
	if err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}
	defer m.Close()

	fmt.Fprintln(cmd.OutOrStdout(), "graphmirror initialized successfully")
	return nil
}

// writeConfigIfMissing creates config.yaml with the resolved settings if the
// file does not exist yet. If it already exists, this is a no-op --
// re-running init must not silently change an already-initialized mirror's
// identity-relevant options out from under it.
func writeConfigIfMissing(path string, cfg *resolvedConfig) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	out := configFile{
		DataDir:            cfg.DataDir,
		SchemaFile:         cfg.SchemaFile,
		BlacklistedIds:     cfg.BlacklistedIds,
		NodesLimit:         cfg.NodesLimit,
		NodesOfTypeLimit:   cfg.NodesOfTypeLimit,
		ConnectionLimit:    cfg.ConnectionLimit,
		ConnectionPageSize: cfg.ConnectionPageSize,
	}
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
