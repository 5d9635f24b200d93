package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/graphmirror/internal/paths"
)

// resolvedConfig is every setting a subcommand needs, after flag > env >
// config.yaml > default resolution.
type resolvedConfig struct {
	ConfigDir  string
	DataDir    string
	SchemaFile string

	BlacklistedIds []string

	NodesLimit         int
	NodesOfTypeLimit   int
	ConnectionLimit    int
	ConnectionPageSize int
}

// loadConfig resolves directories via internal/paths, then lets viper layer
// config.yaml and GRAPHMIRROR_* environment variables over the compiled-in
// defaults.
func loadConfig() (*resolvedConfig, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.SetEnvPrefix("GRAPHMIRROR")
	v.AutomaticEnv()

	v.SetDefault("nodes_limit", 500)
	v.SetDefault("nodes_of_type_limit", 50)
	v.SetDefault("connection_limit", 50)
	v.SetDefault("connection_page_size", 50)

	// A missing config.yaml is expected before `init` has run; every other
	// read error is real.
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("reading config.yaml: %w", err)
		}
	}

	dataDir, err := paths.ResolveDataDir(flags.dataDir, v.GetString("data_dir"))
	if err != nil {
		return nil, fmt.Errorf("resolving data directory: %w", err)
	}

	schemaFile, err := paths.ResolveSchemaFile(flags.schemaFile, v.GetString("schema_file"))
	if err != nil {
		return nil, fmt.Errorf("resolving schema file: %w", err)
	}

	return &resolvedConfig{
		ConfigDir:          configDir,
		DataDir:            dataDir,
		SchemaFile:         schemaFile,
		BlacklistedIds:     v.GetStringSlice("blacklisted_ids"),
		NodesLimit:         v.GetInt("nodes_limit"),
		NodesOfTypeLimit:   v.GetInt("nodes_of_type_limit"),
		ConnectionLimit:    v.GetInt("connection_limit"),
		ConnectionPageSize: v.GetInt("connection_page_size"),
	}, nil
}

// dbPath is the fixed database filename within a data directory.
func dbPath(dataDir string) string {
	return filepath.Join(dataDir, "mirror.sqlite")
}
