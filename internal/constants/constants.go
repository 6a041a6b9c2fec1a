package constants

import "time"

// Application identity.
const (
	// AppName is written to the config file on initialisation.
	AppName = "nuvolos-cli"

	// EnvPrefix is the prefix for environment variable overrides (NUVOLOS_API_KEY, ...).
	EnvPrefix = "NUVOLOS"

	// DefaultAPIURL is the Nuvolos API used when none is configured.
	DefaultAPIURL = "https://api.nuvolos.cloud"

	// APIKeySecretPath is read when no API key is configured or set in the environment.
	APIKeySecretPath = "/secrets/NUVOLOS_API_KEY"
)

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600

	// ConfigDirName is the directory under $HOME holding the config file.
	ConfigDirName = ".nuvolos"

	// ConfigFileName is the config file name inside ConfigDirName.
	ConfigFileName = "config.yaml"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultRetryMax is the default maximum number of transport retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait between transport retries.
	DefaultRetryWaitMin = 500 * time.Millisecond

	// DefaultRetryWaitMax is the maximum wait between transport retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Polling.
const (
	// DefaultPollInterval is the fixed delay between two status queries.
	DefaultPollInterval = 5 * time.Second

	// DefaultWorkloadTimeout bounds the wait for a workload to report RUNNING.
	DefaultWorkloadTimeout = 600 * time.Second

	// NoWorkloadTimeout bounds the wait for the platform to schedule any
	// workload at all, measured from the same start as DefaultWorkloadTimeout.
	NoWorkloadTimeout = 30 * time.Second

	// DefaultTaskTimeout bounds the wait for a task to reach a terminal state.
	DefaultTaskTimeout = 600 * time.Second

	// MaxConcurrentWaits limits parallel waits when several apps are started.
	MaxConcurrentWaits = 4
)

// Caching of listing responses.
const (
	// DefaultCacheTTL is how long a cached listing stays valid.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultCacheBucket is the JetStream key-value bucket name.
	DefaultCacheBucket = "nuvolos_cli_cache"

	// DefaultCacheSize is the default memory cache size limit.
	DefaultCacheSize = 256
)

// Output formats.
const (
	// FormatTable renders tables.
	FormatTable = "table"

	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"
)

// UI and display constants.
const (
	// CheckMarkSymbol is used to indicate current/active items.
	CheckMarkSymbol = "✓"

	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// DateTimeFormat is used for timestamps in tables.
	DateTimeFormat = "2006-01-02 15:04:05"
)

// Boolean string constants.
const (
	// BooleanTrue string representation.
	BooleanTrue = "true"

	// BooleanFalse string representation.
	BooleanFalse = "false"
)

// MinimumArgumentCount is the argument count of `config set KEY VALUE`.
const MinimumArgumentCount = 2
