package commands

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nuvolos-cloud/nuvolos-cli/internal/constants"
	"github.com/nuvolos-cloud/nuvolos-cli/pkg/nuvolos"
)

// NewSpacesCommand creates the spaces command group.
func NewSpacesCommand(c *Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "spaces",
		Aliases: []string{"space"},
		Short:   "Manage spaces",
		Long:    "List the spaces of an organization and select the one later commands use",
	}

	cmd.AddCommand(newSpacesListCommand(c))
	cmd.AddCommand(newSpacesUseCommand(c))

	return cmd
}

func newSpacesListCommand(c *Context) *cobra.Command {
	var flags scopeFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List spaces",
		Long:  "List the spaces of the given or selected organization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.resolveScope(flags, scopeOrg)
			if err != nil {
				return err
			}

			apiClient, err := c.apiClient(cmd)
			if err != nil {
				return err
			}

			spaces, err := apiClient.Spaces().List(cmd.Context(), s.Org)
			if err != nil {
				return err
			}

			return renderSpaces(c, spaces, s.Space)
		},
	}

	addScopeFlags(cmd, &flags, scopeOrg)

	return cmd
}

func newSpacesUseCommand(c *Context) *cobra.Command {
	var flags scopeFlags

	cmd := &cobra.Command{
		Use:   "use SPACE_SLUG",
		Short: "Select a space",
		Long:  "Select a space of the selected organization for later commands. The selected instance is cleared.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.resolveScope(flags, scopeOrg)
			if err != nil {
				return err
			}

			apiClient, err := c.apiClient(cmd)
			if err != nil {
				return err
			}

			spaces, err := apiClient.Spaces().List(cmd.Context(), s.Org)
			if err != nil {
				return err
			}

			if !containsSpace(spaces, args[0]) {
				return fmt.Errorf("%w: %s not in %s", constants.ErrSpaceNotFound, args[0], s.Org)
			}

			err = c.useSettings(func(settings *Settings) {
				if settings.Org != s.Org {
					settings.selectOrg(s.Org)
				}

				settings.selectSpace(args[0])
			})
			if err != nil {
				return err
			}

			c.printer().Success("Current space set to %s/%s", s.Org, args[0])

			return nil
		},
	}

	addScopeFlags(cmd, &flags, scopeOrg)

	return cmd
}

func containsSpace(spaces []nuvolos.Space, slug string) bool {
	for _, space := range spaces {
		if space.Slug == slug {
			return true
		}
	}

	return false
}

func renderSpaces(c *Context, spaces []nuvolos.Space, selected string) error {
	p := c.printer()
	if len(spaces) == 0 {
		return p.Empty("spaces")
	}

	return p.Print(spaces, func(table *tablewriter.Table) {
		table.Header("", "Slug", "Name", "ID", "Description")

		for _, space := range spaces {
			_ = table.Append(currentMarker(space.Slug == selected), space.Slug, space.Name, strconv.Itoa(space.SID), space.Description)
		}
	})
}
