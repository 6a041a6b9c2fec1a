package commands

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nuvolos-cloud/nuvolos-cli/internal/constants"
	"github.com/nuvolos-cloud/nuvolos-cli/pkg/nuvolos"
)

// NewInstancesCommand creates the instances command group.
func NewInstancesCommand(c *Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "instances",
		Aliases: []string{"instance"},
		Short:   "Manage instances",
		Long:    "List the instances of a space and select the one later commands use",
	}

	cmd.AddCommand(newInstancesListCommand(c))
	cmd.AddCommand(newInstancesUseCommand(c))

	return cmd
}

func newInstancesListCommand(c *Context) *cobra.Command {
	var flags scopeFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List instances",
		Long:  "List the instances of the given or selected space",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.resolveScope(flags, scopeSpace)
			if err != nil {
				return err
			}

			apiClient, err := c.apiClient(cmd)
			if err != nil {
				return err
			}

			instances, err := apiClient.Instances().List(cmd.Context(), s.Org, s.Space)
			if err != nil {
				return err
			}

			return renderInstances(c, instances, s.Instance)
		},
	}

	addScopeFlags(cmd, &flags, scopeSpace)

	return cmd
}

func newInstancesUseCommand(c *Context) *cobra.Command {
	var flags scopeFlags

	cmd := &cobra.Command{
		Use:   "use INSTANCE_SLUG",
		Short: "Select an instance",
		Long:  "Select an instance of the selected space for later commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.resolveScope(flags, scopeSpace)
			if err != nil {
				return err
			}

			apiClient, err := c.apiClient(cmd)
			if err != nil {
				return err
			}

			instances, err := apiClient.Instances().List(cmd.Context(), s.Org, s.Space)
			if err != nil {
				return err
			}

			if !containsInstance(instances, args[0]) {
				return fmt.Errorf("%w: %s not in %s/%s", constants.ErrInstanceNotFound, args[0], s.Org, s.Space)
			}

			err = c.useSettings(func(settings *Settings) {
				if settings.Org != s.Org {
					settings.selectOrg(s.Org)
				}

				if settings.Space != s.Space {
					settings.selectSpace(s.Space)
				}

				settings.Instance = args[0]
			})
			if err != nil {
				return err
			}

			c.printer().Success("Current instance set to %s/%s/%s", s.Org, s.Space, args[0])

			return nil
		},
	}

	addScopeFlags(cmd, &flags, scopeSpace)

	return cmd
}

func containsInstance(instances []nuvolos.Instance, slug string) bool {
	for _, instance := range instances {
		if instance.Slug == slug {
			return true
		}
	}

	return false
}

func renderInstances(c *Context, instances []nuvolos.Instance, selected string) error {
	p := c.printer()
	if len(instances) == 0 {
		return p.Empty("instances")
	}

	return p.Print(instances, func(table *tablewriter.Table) {
		table.Header("", "Slug", "Name", "ID", "Description")

		for _, instance := range instances {
			_ = table.Append(currentMarker(instance.Slug == selected), instance.Slug, instance.Name, strconv.Itoa(instance.IID), instance.Description)
		}
	})
}
