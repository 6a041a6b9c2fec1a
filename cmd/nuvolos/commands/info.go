package commands

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nuvolos-cloud/nuvolos-cli/internal/constants"
)

const banner = `
 _   _                  _              ____ _     ___
| \ | |_   ___   _____ | | ___  ___   / ___| |   |_ _|
|  \| | | | \ \ / / _ \| |/ _ \/ __| | |   | |    | |
| |\  | |_| |\ V / (_) | | (_) \__ \ | |___| |___ | |
|_| \_|\__,_| \_/ \___/|_|\___/|___/  \____|_____|___|
`

// Info is the effective configuration shown by `nuvolos info`.
type Info struct {
	Version         string `json:"version"          yaml:"version"`
	ConfigFile      string `json:"config_file"      yaml:"config_file"`
	APIURL          string `json:"api_url"          yaml:"api_url"`
	APIKey          string `json:"api_key"          yaml:"api_key"`
	Org             string `json:"org"              yaml:"org"`
	Space           string `json:"space"            yaml:"space"`
	Instance        string `json:"instance"         yaml:"instance"`
	TaskTimeout     string `json:"task_timeout"     yaml:"task_timeout"`
	WorkloadTimeout string `json:"workload_timeout" yaml:"workload_timeout"`
	Cache           string `json:"cache"            yaml:"cache"`
}

// NewInfoCommand creates the info command.
func NewInfoCommand(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print information about the Nuvolos CLI",
		Long:  "Print the CLI version, the config file location and the effective configuration with the API key masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(c)
		},
	}
}

func runInfo(c *Context) error {
	path, err := c.ConfigPath()
	if err != nil {
		return err
	}

	apiKey, err := c.APIKey()
	if err != nil {
		apiKey = ""
	}

	info := Info{
		Version:         c.Version,
		ConfigFile:      path,
		APIURL:          c.Viper.GetString(keyAPIURL),
		APIKey:          maskSecret(apiKey),
		Org:             c.Viper.GetString(keyOrg),
		Space:           c.Viper.GetString(keySpace),
		Instance:        c.Viper.GetString(keyInstance),
		TaskTimeout:     effectiveTimeout(c.Viper.GetString(keyTaskTimeout), constants.DefaultTaskTimeout.String()),
		WorkloadTimeout: effectiveTimeout(c.Viper.GetString(keyWorkloadTimeout), constants.DefaultWorkloadTimeout.String()),
		Cache:           c.Viper.GetString(keyCacheType),
	}

	p := c.printer()
	if p.format == constants.FormatTable {
		_, _ = fmt.Fprint(c.Out, banner)
	}

	return p.Print(info, func(table *tablewriter.Table) {
		table.Header("Property", "Value")
		_ = table.Append("Version", info.Version)
		_ = table.Append("Config file", info.ConfigFile)
		_ = table.Append("API URL", info.APIURL)
		_ = table.Append("API key", orNA(info.APIKey))
		_ = table.Append("Organization", orNA(info.Org))
		_ = table.Append("Space", orNA(info.Space))
		_ = table.Append("Instance", orNA(info.Instance))
		_ = table.Append("Task timeout", info.TaskTimeout)
		_ = table.Append("Workload timeout", info.WorkloadTimeout)
		_ = table.Append("Cache", info.Cache)
	})
}

func effectiveTimeout(configured, fallback string) string {
	d, err := parseTimeout(configured)
	if err != nil || d == nil {
		return fallback
	}

	return d.String()
}
