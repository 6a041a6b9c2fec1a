package commands

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nuvolos-cloud/nuvolos-cli/internal/constants"
	"github.com/nuvolos-cloud/nuvolos-cli/pkg/nuvolos"
)

// NewOrgsCommand creates the organizations command group.
func NewOrgsCommand(c *Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orgs",
		Aliases: []string{"organizations", "org"},
		Short:   "Manage organizations",
		Long:    "List Nuvolos organizations and select the one later commands use",
	}

	cmd.AddCommand(newOrgsListCommand(c))
	cmd.AddCommand(newOrgsUseCommand(c))

	return cmd
}

func newOrgsListCommand(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List organizations",
		Long:  "List all organizations the API key has access to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := c.apiClient(cmd)
			if err != nil {
				return err
			}

			orgs, err := apiClient.Orgs().List(cmd.Context())
			if err != nil {
				return err
			}

			return renderOrgs(c, orgs)
		},
	}
}

func newOrgsUseCommand(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "use ORG_SLUG",
		Short: "Select an organization",
		Long:  "Select the organization used by later commands. The selected space and instance are cleared.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := c.apiClient(cmd)
			if err != nil {
				return err
			}

			org, err := apiClient.Orgs().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if err := c.useSettings(func(s *Settings) { s.selectOrg(org.Slug) }); err != nil {
				return err
			}

			c.printer().Success("Current organization set to %s", org.Slug)

			return nil
		},
	}
}

func renderOrgs(c *Context, orgs []nuvolos.Org) error {
	p := c.printer()
	if len(orgs) == 0 {
		return p.Empty("organizations")
	}

	selected := c.Viper.GetString(keyOrg)

	return p.Print(orgs, func(table *tablewriter.Table) {
		table.Header("", "Slug", "Name", "ID", "Description")

		for _, org := range orgs {
			_ = table.Append(currentMarker(org.Slug == selected), org.Slug, org.Name, strconv.Itoa(org.OID), org.Description)
		}
	})
}

func currentMarker(current bool) string {
	if current {
		return constants.CheckMarkSymbol
	}

	return ""
}

// useSettings persists a selection change made by fn.
func (c *Context) useSettings(fn func(s *Settings)) error {
	settings, err := c.loadSettings()
	if err != nil {
		return err
	}

	fn(settings)

	if err := c.saveSettings(settings); err != nil {
		return fmt.Errorf("saving selection: %w", err)
	}

	return nil
}
