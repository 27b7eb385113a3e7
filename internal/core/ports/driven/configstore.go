package driven

// ConfigStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files) and type conversion.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string value; empty string when absent or not
	// a string.
	GetString(key string) string

	// GetInt retrieves an integer value; 0 when absent or not an integer.
	GetInt(key string) int

	// GetFloat retrieves a float value; 0 when absent or not numeric.
	GetFloat(key string) float64

	// GetBool retrieves a boolean value; false when absent or not a bool.
	GetBool(key string) bool

	// Set stores a value and persists it immediately.
	Set(key string, value any) error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
