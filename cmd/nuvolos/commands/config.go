package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nuvolos-cloud/nuvolos-cli/internal/cache"
	"github.com/nuvolos-cloud/nuvolos-cli/internal/constants"
	"github.com/nuvolos-cloud/nuvolos-cli/pkg/nuvolos"
)

// Configuration keys, shared by the config file, viper and `config set`.
const (
	keyAppName         = "app_name"
	keyCLIVersion      = "nuvolos_cli_version"
	keyAPIKey          = "api_key"
	keyAPIURL          = "api_url"
	keyOutput          = "output"
	keyNoColor         = "no_color"
	keyVerbose         = "verbose"
	keyOrg             = "org"
	keySpace           = "space"
	keyInstance        = "instance"
	keyTaskTimeout     = "task_timeout"
	keyWorkloadTimeout = "workload_timeout"
	keyCacheType       = "cache.type"
	keyCacheNATSURL    = "cache.nats_url"
	keyCacheTTL        = "cache.ttl"
)

// Settings is the on-disk configuration file.
type Settings struct {
	AppName         string        `json:"app_name"                   yaml:"app_name"`
	CLIVersion      string        `json:"nuvolos_cli_version"        yaml:"nuvolos_cli_version"`
	APIKey          string        `json:"api_key,omitempty"          yaml:"api_key,omitempty"`
	APIURL          string        `json:"api_url,omitempty"          yaml:"api_url,omitempty"`
	Output          string        `json:"output,omitempty"           yaml:"output,omitempty"`
	NoColor         bool          `json:"no_color,omitempty"         yaml:"no_color,omitempty"`
	Org             string        `json:"org,omitempty"              yaml:"org,omitempty"`
	Space           string        `json:"space,omitempty"            yaml:"space,omitempty"`
	Instance        string        `json:"instance,omitempty"         yaml:"instance,omitempty"`
	TaskTimeout     string        `json:"task_timeout,omitempty"     yaml:"task_timeout,omitempty"`
	WorkloadTimeout string        `json:"workload_timeout,omitempty" yaml:"workload_timeout,omitempty"`
	Cache           CacheSettings `json:"cache,omitempty"            yaml:"cache,omitempty"`
}

// CacheSettings configures the listing cache.
type CacheSettings struct {
	Type    string `json:"type,omitempty"     yaml:"type,omitempty"`
	NATSURL string `json:"nats_url,omitempty" yaml:"nats_url,omitempty"`
	TTL     string `json:"ttl,omitempty"      yaml:"ttl,omitempty"`
}

func defaultSettings(version string) *Settings {
	return &Settings{
		AppName:    constants.AppName,
		CLIVersion: version,
	}
}

// ConfigPath returns the config file in use: --config, or the default under
// the home directory.
func (c *Context) ConfigPath() (string, error) {
	if path := c.Viper.GetString("config"); path != "" {
		return path, nil
	}

	home, err := c.HomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName, constants.ConfigFileName), nil
}

// initConfig loads the config file and environment into c.Viper. A missing
// config file is not an error.
func (c *Context) initConfig() error {
	v := c.Viper

	v.SetDefault(keyAPIURL, constants.DefaultAPIURL)
	v.SetDefault(keyOutput, constants.FormatTable)
	v.SetDefault(keyCacheType, string(cache.TypeNone))
	v.SetDefault(keyCacheTTL, constants.DefaultCacheTTL.String())

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := c.ConfigPath()
	if err != nil {
		return err
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	switch format := v.GetString(keyOutput); format {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
	default:
		return fmt.Errorf("%w: %q", constants.ErrInvalidOutputFormat, format)
	}

	return nil
}

// APIKey resolves the API key from flags, environment or config, falling
// back to the mounted secret file.
func (c *Context) APIKey() (string, error) {
	if key := strings.TrimSpace(c.Viper.GetString(keyAPIKey)); key != "" {
		return key, nil
	}

	if c.SecretPath != "" {
		data, err := os.ReadFile(c.SecretPath)
		if err == nil {
			if key := strings.TrimSpace(string(data)); key != "" {
				return key, nil
			}
		}
	}

	return "", nuvolos.ErrAPIKeyRequired
}

func (c *Context) cacheConfig() (cache.Config, error) {
	cfg := cache.DefaultConfig()
	cfg.Type = cache.Type(c.Viper.GetString(keyCacheType))
	cfg.NATSURL = c.Viper.GetString(keyCacheNATSURL)

	ttl, err := parseTimeout(c.Viper.GetString(keyCacheTTL))
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", keyCacheTTL, err)
	}

	if ttl != nil && *ttl > 0 {
		cfg.TTL = *ttl
	}

	return cfg, nil
}

// timeoutSetting resolves a wait budget: an explicit --timeout flag wins,
// then the config key (or its environment variable). Nil means the wait's
// own default; an explicit zero is kept.
func (c *Context) timeoutSetting(cmd *cobra.Command, key string) (*time.Duration, error) {
	value := c.Viper.GetString(key)
	source := key

	if flag := cmd.Flags().Lookup("timeout"); flag != nil && flag.Changed {
		value = flag.Value.String()
		source = "--timeout"
	}

	timeout, err := parseTimeout(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	return timeout, nil
}

// parseTimeout accepts whole seconds ("600") or a Go duration ("10m"). An
// empty value is unset and yields nil.
func parseTimeout(value string) (*time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return nil, fmt.Errorf("%w: %q is negative", constants.ErrInvalidDuration, value)
		}

		d := time.Duration(seconds) * time.Second

		return &d, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", constants.ErrInvalidDuration, value)
	}

	if d < 0 {
		return nil, fmt.Errorf("%w: %q is negative", constants.ErrInvalidDuration, value)
	}

	return &d, nil
}

// loadSettings reads the config file without environment overrides, so
// that saving it never persists values that came from the environment.
func (c *Context) loadSettings() (*Settings, error) {
	path, err := c.ConfigPath()
	if err != nil {
		return nil, err
	}

	settings := defaultSettings(c.Version)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return settings, nil
		}

		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return settings, nil
}

func (c *Context) saveSettings(settings *Settings) error {
	path, err := c.ConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, constants.ConfigFilePerm); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

func configFileExists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

// NewConfigCommand creates the config command group. Run without a
// subcommand it writes the initial configuration.
func NewConfigCommand(c *Context) *cobra.Command {
	var apiKey string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configure the Nuvolos CLI",
		Long: `Write the initial configuration file with your Nuvolos API key.

When --api-key is omitted and standard input is a terminal, the key is
prompted for without echo.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(c, apiKey)
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "the Nuvolos API key to use for authentication")

	cmd.AddCommand(newConfigShowCommand(c))
	cmd.AddCommand(newConfigSetCommand(c))
	cmd.AddCommand(newConfigUnsetCommand(c))

	return cmd
}

func runConfigInit(c *Context, apiKey string) error {
	path, err := c.ConfigPath()
	if err != nil {
		return err
	}

	settings, err := c.loadSettings()
	if err != nil {
		return err
	}

	if configFileExists(path) && settings.APIKey != "" {
		return constants.ErrConfigAlreadyExists
	}

	if apiKey == "" {
		apiKey, err = promptAPIKey(c)
		if err != nil {
			return err
		}
	}

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return constants.ErrAPIKeyEmpty
	}

	settings.APIKey = apiKey
	settings.CLIVersion = c.Version

	if err := c.saveSettings(settings); err != nil {
		return err
	}

	c.printer().Success("Nuvolos CLI configuration written to %s", path)

	return nil
}

func promptAPIKey(c *Context) (string, error) {
	if c.IsTerminal == nil || !c.IsTerminal() {
		return "", constants.ErrNoTerminalForPrompt
	}

	_, _ = fmt.Fprint(c.Err, "Nuvolos API key: ")

	key, err := c.ReadSecret()

	_, _ = fmt.Fprintln(c.Err)

	if err != nil {
		return "", fmt.Errorf("reading API key: %w", err)
	}

	return key, nil
}

func newConfigShowCommand(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the configuration file contents with the API key masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := c.loadSettings()
			if err != nil {
				return err
			}

			masked := *settings
			masked.APIKey = maskSecret(masked.APIKey)

			return c.printer().Print(masked, func(table *tablewriter.Table) {
				table.Header("Key", "Value")

				for _, row := range settingsRows(&masked) {
					_ = table.Append(row[0], row[1])
				}
			})
		},
	}
}

func newConfigSetCommand(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: " + strings.Join(settableKeys(), ", "),
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := c.loadSettings()
			if err != nil {
				return err
			}

			if err := setSetting(settings, args[0], args[1]); err != nil {
				return err
			}

			if err := c.saveSettings(settings); err != nil {
				return err
			}

			c.printer().Success("Set %s", args[0])

			return nil
		},
	}
}

func newConfigUnsetCommand(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value so that its default applies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := c.loadSettings()
			if err != nil {
				return err
			}

			if err := unsetSetting(settings, args[0]); err != nil {
				return err
			}

			if err := c.saveSettings(settings); err != nil {
				return err
			}

			c.printer().Success("Unset %s", args[0])

			return nil
		},
	}
}

// setters maps every user-settable key to a validating setter.
var setters = map[string]func(s *Settings, value string) error{
	keyAPIKey: func(s *Settings, value string) error {
		if strings.TrimSpace(value) == "" {
			return constants.ErrAPIKeyEmpty
		}

		s.APIKey = strings.TrimSpace(value)

		return nil
	},
	keyAPIURL: func(s *Settings, value string) error {
		s.APIURL = strings.TrimRight(value, "/")

		return nil
	},
	keyOutput: func(s *Settings, value string) error {
		switch value {
		case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
			s.Output = value

			return nil
		default:
			return fmt.Errorf("%w: %q", constants.ErrInvalidOutputFormat, value)
		}
	},
	keyNoColor: func(s *Settings, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: invalid boolean %q: %w", keyNoColor, value, err)
		}

		s.NoColor = b

		return nil
	},
	keyOrg: func(s *Settings, value string) error {
		s.selectOrg(value)

		return nil
	},
	keySpace: func(s *Settings, value string) error {
		s.selectSpace(value)

		return nil
	},
	keyInstance: func(s *Settings, value string) error {
		s.Instance = value

		return nil
	},
	keyTaskTimeout: func(s *Settings, value string) error {
		if _, err := parseTimeout(value); err != nil {
			return err
		}

		s.TaskTimeout = value

		return nil
	},
	keyWorkloadTimeout: func(s *Settings, value string) error {
		if _, err := parseTimeout(value); err != nil {
			return err
		}

		s.WorkloadTimeout = value

		return nil
	},
	keyCacheType: func(s *Settings, value string) error {
		switch cache.Type(value) {
		case cache.TypeNone, cache.TypeMemory, cache.TypeNATS:
			s.Cache.Type = value

			return nil
		default:
			return fmt.Errorf("%w: %s", constants.ErrUnsupportedCacheType, value)
		}
	},
	keyCacheNATSURL: func(s *Settings, value string) error {
		s.Cache.NATSURL = value

		return nil
	},
	keyCacheTTL: func(s *Settings, value string) error {
		if _, err := parseTimeout(value); err != nil {
			return err
		}

		s.Cache.TTL = value

		return nil
	},
}

func settableKeys() []string {
	keys := make([]string, 0, len(setters))
	for key := range setters {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func setSetting(s *Settings, key, value string) error {
	setter, ok := setters[key]
	if !ok {
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return setter(s, value)
}

func unsetSetting(s *Settings, key string) error {
	switch key {
	case keyAPIKey:
		s.APIKey = ""
	case keyAPIURL:
		s.APIURL = ""
	case keyOutput:
		s.Output = ""
	case keyNoColor:
		s.NoColor = false
	case keyOrg:
		s.selectOrg("")
	case keySpace:
		s.selectSpace("")
	case keyInstance:
		s.Instance = ""
	case keyTaskTimeout:
		s.TaskTimeout = ""
	case keyWorkloadTimeout:
		s.WorkloadTimeout = ""
	case keyCacheType:
		s.Cache.Type = ""
	case keyCacheNATSURL:
		s.Cache.NATSURL = ""
	case keyCacheTTL:
		s.Cache.TTL = ""
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

// selectOrg changes the selected organization and clears the levels below.
func (s *Settings) selectOrg(org string) {
	s.Org = org
	s.Space = ""
	s.Instance = ""
}

// selectSpace changes the selected space and clears the instance.
func (s *Settings) selectSpace(space string) {
	s.Space = space
	s.Instance = ""
}

func settingsRows(s *Settings) [][2]string {
	return [][2]string{
		{keyAppName, s.AppName},
		{keyCLIVersion, s.CLIVersion},
		{keyAPIKey, s.APIKey},
		{keyAPIURL, s.APIURL},
		{keyOutput, s.Output},
		{keyNoColor, strconv.FormatBool(s.NoColor)},
		{keyOrg, s.Org},
		{keySpace, s.Space},
		{keyInstance, s.Instance},
		{keyTaskTimeout, s.TaskTimeout},
		{keyWorkloadTimeout, s.WorkloadTimeout},
		{keyCacheType, s.Cache.Type},
		{keyCacheNATSURL, s.Cache.NATSURL},
		{keyCacheTTL, s.Cache.TTL},
	}
}

// maskSecret keeps the last four characters of long secrets.
func maskSecret(secret string) string {
	const visible = 4

	switch {
	case secret == "":
		return ""
	case len(secret) <= 2*visible:
		return constants.MaskedSecret
	default:
		return constants.MaskedSecret + secret[len(secret)-visible:]
	}
}
