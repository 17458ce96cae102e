package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Game defaults: empty path means the caller must supply one
	v.SetDefault("game.path", "")
	v.SetDefault("game.catalog_file", "")

	// Graph build defaults
	v.SetDefault("graph.include_native", true)
	v.SetDefault("graph.include_optional", true)
	v.SetDefault("graph.selected_only", false)

	// Order synthesis defaults
	v.SetDefault("order.cycle_policy", "lenient")

	// Snapshot store defaults
	v.SetDefault("snapshot.backend", "file")
	v.SetDefault("snapshot.path", "snapshots.json")
	v.SetDefault("snapshot.max_snapshots", 10)

	// Server defaults
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", []string{
		"http://localhost",
		"http://127.0.0.1",
	})
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 40)
}
