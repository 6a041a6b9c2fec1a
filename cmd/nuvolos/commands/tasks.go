package commands

import (
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nuvolos-cloud/nuvolos-cli/internal/constants"
	"github.com/nuvolos-cloud/nuvolos-cli/pkg/nuvolos"
)

// NewTasksCommand creates the tasks command group.
func NewTasksCommand(c *Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Inspect asynchronous tasks",
		Long:    "Show and wait for the platform tasks started by snapshot operations",
	}

	cmd.AddCommand(newTasksGetCommand(c))
	cmd.AddCommand(newTasksWaitCommand(c))

	return cmd
}

func newTasksGetCommand(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "get TASK_ID",
		Short: "Get task details",
		Long:  "Display the current state of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := c.apiClient(cmd)
			if err != nil {
				return err
			}

			task, err := apiClient.Tasks().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return renderTask(c, task)
		},
	}
}

func newTasksWaitCommand(c *Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wait TASK_ID",
		Short: "Wait for a task to finish",
		Long: `Poll a task every five seconds until it completes, fails or is cancelled.

The command fails when the task fails, is cancelled, reports an unknown
status, or does not finish within the timeout. A timeout does not cancel
the task on the platform.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := c.apiClient(cmd)
			if err != nil {
				return err
			}

			task, err := waitForTask(cmd, c, apiClient, args[0])
			if err != nil {
				return err
			}

			c.printer().Success("Task %s completed", task.ID)

			return renderTask(c, task)
		},
	}

	addTimeoutFlag(cmd, "task", constants.DefaultTaskTimeout)

	return cmd
}

// addTimeoutFlag adds --timeout, which overrides the configured budget.
func addTimeoutFlag(cmd *cobra.Command, what string, fallback time.Duration) {
	cmd.Flags().StringP("timeout", "t", "",
		fmt.Sprintf("maximum time to wait for the %s, in seconds or as a duration such as 10m (default %s)", what, fallback))
}

func renderTask(c *Context, task *nuvolos.Task) error {
	return c.printer().Print(task, func(table *tablewriter.Table) {
		table.Header("Property", "Value")
		_ = table.Append("ID", task.ID)
		_ = table.Append("Status", task.Status)
		_ = table.Append("Operation", orNA(task.Operation))

		if task.Error != "" {
			_ = table.Append("Error", task.Error)
		}

		if len(task.Result) > 0 {
			_ = table.Append("Result", string(task.Result))
		}

		_ = table.Append("Created", formatTime(task.CreatedAt))
		_ = table.Append("Updated", formatTime(task.UpdatedAt))
	})
}
