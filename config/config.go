package config

// Config represents the launcher manager configuration
type Config struct {
	Game     GameConfig     `mapstructure:"game"`
	Graph    GraphConfig    `mapstructure:"graph"`
	Order    OrderConfig    `mapstructure:"order"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Server   ServerConfig   `mapstructure:"server"`
}

// GameConfig locates the installed game and its module catalog
type GameConfig struct {
	// Path is the game installation root; modules live under Path/Modules
	Path string `mapstructure:"path"`
	// CatalogFile is an explicit catalog document (json/toml/yaml) used
	// instead of scanning the game directory when set
	CatalogFile string `mapstructure:"catalog_file"`
}

// GraphConfig carries default dependency graph build options
type GraphConfig struct {
	IncludeNative   bool `mapstructure:"include_native"`   // include official modules as nodes (default: true)
	IncludeOptional bool `mapstructure:"include_optional"` // emit edges for optional dependencies (default: true)
	SelectedOnly    bool `mapstructure:"selected_only"`    // restrict nodes to the current selection (default: false)
}

// OrderConfig configures load order analysis and synthesis
type OrderConfig struct {
	// CyclePolicy controls synthesizer behavior on dependency cycles:
	// "lenient" skips in-progress nodes silently, "report" also surfaces
	// the broken edges on the result
	CyclePolicy string `mapstructure:"cycle_policy"`
}

// SnapshotConfig configures the load order snapshot store
type SnapshotConfig struct {
	// Backend selects the store implementation: "file" or "sqlite"
	Backend string `mapstructure:"backend"`
	// Path is the store location (JSON document or SQLite database file)
	Path string `mapstructure:"path"`
	// MaxSnapshots bounds the history; oldest snapshots are evicted first
	MaxSnapshots int `mapstructure:"max_snapshots"`
}

// ServerConfig configures the graph push server
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// RateLimit is the per-client request rate in requests per second;
	// RateBurst is the burst allowance on top of it
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

// Server port constants
const (
	// DefaultServerPort is the graph push server port (above privileged range)
	DefaultServerPort = 8136
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
