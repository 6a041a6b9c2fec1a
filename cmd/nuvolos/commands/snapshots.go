package commands

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nuvolos-cloud/nuvolos-cli/internal/constants"
	"github.com/nuvolos-cloud/nuvolos-cli/internal/wait"
	"github.com/nuvolos-cloud/nuvolos-cli/pkg/nuvolos"
)

// NewSnapshotsCommand creates the snapshots command group.
func NewSnapshotsCommand(c *Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshots",
		Aliases: []string{"snapshot", "snap"},
		Short:   "Manage instance snapshots",
		Long:    "List, create and delete snapshots of an instance",
	}

	cmd.AddCommand(newSnapshotsListCommand(c))
	cmd.AddCommand(newSnapshotsCreateCommand(c))
	cmd.AddCommand(newSnapshotsDeleteCommand(c))

	return cmd
}

func newSnapshotsListCommand(c *Context) *cobra.Command {
	var flags scopeFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List snapshots",
		Long:  "List the snapshots of the given or selected instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.resolveScope(flags, scopeInstance)
			if err != nil {
				return err
			}

			apiClient, err := c.apiClient(cmd)
			if err != nil {
				return err
			}

			snapshots, err := apiClient.Snapshots().List(cmd.Context(), s.Org, s.Space, s.Instance)
			if err != nil {
				return err
			}

			return renderSnapshots(c, snapshots)
		},
	}

	addScopeFlags(cmd, &flags, scopeInstance)

	return cmd
}

// snapshotTaskFlags are shared by create and delete.
type snapshotTaskFlags struct {
	scope scopeFlags
	wait  bool
}

func addSnapshotTaskFlags(cmd *cobra.Command, flags *snapshotTaskFlags) {
	addScopeFlags(cmd, &flags.scope, scopeInstance)
	cmd.Flags().BoolVarP(&flags.wait, "wait", "w", false, "wait for the snapshot task to finish")
	addTimeoutFlag(cmd, "task", constants.DefaultTaskTimeout)
}

func newSnapshotsCreateCommand(c *Context) *cobra.Command {
	var (
		flags       snapshotTaskFlags
		name        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a snapshot",
		Long:  "Create a snapshot of the given or selected instance. With --wait the command blocks until the snapshot task finishes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.resolveScope(flags.scope, scopeInstance)
			if err != nil {
				return err
			}

			apiClient, err := c.apiClient(cmd)
			if err != nil {
				return err
			}

			task, err := apiClient.Snapshots().Create(cmd.Context(), s.Org, s.Space, s.Instance,
				&nuvolos.SnapshotCreateRequest{Name: name, Description: description})
			if err != nil {
				return err
			}

			return followTask(cmd, c, apiClient, task, flags.wait, "Snapshot "+name+" of "+s.String())
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "snapshot name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "snapshot description")
	_ = cmd.MarkFlagRequired("name")
	addSnapshotTaskFlags(cmd, &flags)

	return cmd
}

func newSnapshotsDeleteCommand(c *Context) *cobra.Command {
	var flags snapshotTaskFlags

	cmd := &cobra.Command{
		Use:   "delete SNAPSHOT",
		Short: "Delete a snapshot",
		Long:  "Delete a snapshot of the given or selected instance. With --wait the command blocks until the deletion task finishes.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.resolveScope(flags.scope, scopeInstance)
			if err != nil {
				return err
			}

			apiClient, err := c.apiClient(cmd)
			if err != nil {
				return err
			}

			task, err := apiClient.Snapshots().Delete(cmd.Context(), s.Org, s.Space, s.Instance, args[0])
			if err != nil {
				return err
			}

			return followTask(cmd, c, apiClient, task, flags.wait, "Deletion of snapshot "+args[0])
		},
	}

	addSnapshotTaskFlags(cmd, &flags)

	return cmd
}

// followTask reports a started task, or waits for it when wait is set.
func followTask(cmd *cobra.Command, c *Context, apiClient nuvolos.Client, task *nuvolos.Task, block bool, what string) error {
	p := c.printer()

	if !block {
		p.Success("%s started (task %s)", what, task.ID)

		return renderTask(c, task)
	}

	final, err := waitForTask(cmd, c, apiClient, task.ID)
	if err != nil {
		return err
	}

	p.Success("%s completed", what)

	return renderTask(c, final)
}

func waitForTask(cmd *cobra.Command, c *Context, apiClient nuvolos.Client, id string) (*nuvolos.Task, error) {
	timeout, err := c.timeoutSetting(cmd, keyTaskTimeout)
	if err != nil {
		return nil, err
	}

	return wait.ForTask(cmd.Context(), apiClient.Tasks(), id, wait.Options{
		Timeout:  timeout,
		Clock:    c.Clock,
		Logger:   c.Logger,
		Progress: c.printer().Progress("task " + id),
	})
}

func renderSnapshots(c *Context, snapshots []nuvolos.Snapshot) error {
	p := c.printer()
	if len(snapshots) == 0 {
		return p.Empty("snapshots")
	}

	return p.Print(snapshots, func(table *tablewriter.Table) {
		table.Header("Slug", "Name", "ID", "Created", "Description")

		for _, snapshot := range snapshots {
			_ = table.Append(snapshot.Slug, snapshot.Name, strconv.Itoa(snapshot.SnID), formatTime(snapshot.CreatedAt), snapshot.Description)
		}
	})
}
