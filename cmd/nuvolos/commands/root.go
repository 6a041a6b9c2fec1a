package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nuvolos-cloud/nuvolos-cli/internal/constants"
	"github.com/nuvolos-cloud/nuvolos-cli/internal/logging"
	"github.com/nuvolos-cloud/nuvolos-cli/pkg/nuvolos"
)

// NewRootCommand builds the nuvolos command tree around c.
func NewRootCommand(c *Context) *cobra.Command {
	root := &cobra.Command{
		Use:   "nuvolos",
		Short: "Nuvolos CLI",
		Long: `A command-line interface for the Nuvolos platform.

List organizations, spaces, instances, snapshots and applications, start
and stop applications, run commands in running workloads and wait for
long-running tasks to finish.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}

	root.SetIn(c.In)
	root.SetOut(c.Out)
	root.SetErr(c.Err)

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.nuvolos/config.yaml)")
	flags.String("api-url", "", "Nuvolos API URL (default "+constants.DefaultAPIURL+")")
	flags.String("output", constants.FormatTable, "output format (table, json, yaml)")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.Bool("no-color", false, "disable colored output")

	_ = c.Viper.BindPFlag("config", flags.Lookup("config"))
	_ = c.Viper.BindPFlag(keyAPIURL, flags.Lookup("api-url"))
	_ = c.Viper.BindPFlag(keyOutput, flags.Lookup("output"))
	_ = c.Viper.BindPFlag(keyVerbose, flags.Lookup("verbose"))
	_ = c.Viper.BindPFlag(keyNoColor, flags.Lookup("no-color"))

	root.AddCommand(NewVersionCommand(c))
	root.AddCommand(NewConfigCommand(c))
	root.AddCommand(NewInfoCommand(c))
	root.AddCommand(NewListCommand(c))
	root.AddCommand(NewOrgsCommand(c))
	root.AddCommand(NewSpacesCommand(c))
	root.AddCommand(NewInstancesCommand(c))
	root.AddCommand(NewSnapshotsCommand(c))
	root.AddCommand(NewAppsCommand(c))
	root.AddCommand(NewTasksCommand(c))

	return root
}

// setup loads configuration and replaces the logger according to
// --verbose and --no-color.
func (c *Context) setup() error {
	if err := c.initConfig(); err != nil {
		return err
	}

	c.Logger = logging.New(logging.Options{
		Output:  c.Err,
		Verbose: c.Viper.GetBool(keyVerbose),
		NoColor: c.Viper.GetBool(keyNoColor),
	})

	if c.Viper.GetBool(keyVerbose) {
		if used := c.Viper.ConfigFileUsed(); used != "" {
			c.Logger.Debug("using config file", map[string]interface{}{"path": used})
		}
	}

	return nil
}

// apiClient returns the API client for cmd's context.
func (c *Context) apiClient(cmd *cobra.Command) (nuvolos.Client, error) {
	apiClient, err := c.Client(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("creating API client: %w", err)
	}

	return apiClient, nil
}
