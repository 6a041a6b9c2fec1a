package commands

import (
	"github.com/spf13/cobra"
)

// NewListCommand creates the drill-down list command: organizations, or the
// spaces of --org, the instances of --org/--space, or the snapshots of
// --org/--space/--instance.
func NewListCommand(c *Context) *cobra.Command {
	var flags scopeFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List organizations, spaces, instances or snapshots",
		Long: `Lists the Nuvolos organizations available to the current user.

With --org the spaces of that organization are listed, adding --space lists
its instances and adding --instance lists the snapshots of the instance.
Only the flags are used; the persisted selection is ignored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, c, flags)
		},
	}

	addScopeFlags(cmd, &flags, scopeInstance)

	return cmd
}

func runList(cmd *cobra.Command, c *Context, flags scopeFlags) error {
	apiClient, err := c.apiClient(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	switch {
	case flags.org == "":
		orgs, err := apiClient.Orgs().List(ctx)
		if err != nil {
			return err
		}

		return renderOrgs(c, orgs)
	case flags.space == "":
		spaces, err := apiClient.Spaces().List(ctx, flags.org)
		if err != nil {
			return err
		}

		return renderSpaces(c, spaces, "")
	case flags.instance == "":
		instances, err := apiClient.Instances().List(ctx, flags.org, flags.space)
		if err != nil {
			return err
		}

		return renderInstances(c, instances, "")
	default:
		snapshots, err := apiClient.Snapshots().List(ctx, flags.org, flags.space, flags.instance)
		if err != nil {
			return err
		}

		return renderSnapshots(c, snapshots)
	}
}
