package commands

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nuvolos-cloud/nuvolos-cli/internal/constants"
	"github.com/nuvolos-cloud/nuvolos-cli/internal/wait"
	"github.com/nuvolos-cloud/nuvolos-cli/pkg/nuvolos"
)

// NewAppsCommand creates the applications command group.
func NewAppsCommand(c *Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "apps",
		Aliases: []string{"app", "applications"},
		Short:   "Manage applications",
		Long:    "List, start and stop applications and run commands in their running workloads",
	}

	cmd.AddCommand(newAppsListCommand(c))
	cmd.AddCommand(newAppsStartCommand(c))
	cmd.AddCommand(newAppsStopCommand(c))
	cmd.AddCommand(newAppsWaitCommand(c))
	cmd.AddCommand(newAppsExecuteCommand(c))

	return cmd
}

func newAppsListCommand(c *Context) *cobra.Command {
	var (
		flags   scopeFlags
		running bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List applications",
		Long: `List the applications of the given or selected instance.

Without any organization, space or instance (or with --running) the running
workloads of all your applications are listed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := c.apiClient(cmd)
			if err != nil {
				return err
			}

			if running || c.selection(flags).isEmpty() {
				workloads, err := apiClient.Workloads().ListAll(cmd.Context())
				if err != nil {
					return err
				}

				return renderWorkloads(c, workloads)
			}

			s, err := c.resolveScope(flags, scopeInstance)
			if err != nil {
				return err
			}

			apps, err := apiClient.Apps().List(cmd.Context(), s.Org, s.Space, s.Instance)
			if err != nil {
				return err
			}

			return renderApps(c, apps)
		},
	}

	addScopeFlags(cmd, &flags, scopeInstance)
	cmd.Flags().BoolVar(&running, "running", false, "list the running workloads of all applications")

	return cmd
}

func newAppsStartCommand(c *Context) *cobra.Command {
	var (
		flags scopeFlags
		block bool
	)

	cmd := &cobra.Command{
		Use:   "start APP [APP...]",
		Short: "Start applications",
		Long: `Start one or more applications of the given or selected instance.

With --wait the command blocks until every application has a RUNNING
workload. Several applications are started and waited for concurrently;
each wait has its own timeout and a failure of one does not stop the others.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.resolveScope(flags, scopeInstance)
			if err != nil {
				return err
			}

			var timeout *time.Duration
			if block {
				timeout, err = c.timeoutSetting(cmd, keyWorkloadTimeout)
				if err != nil {
					return err
				}
			}

			apiClient, err := c.apiClient(cmd)
			if err != nil {
				return err
			}

			return startApps(cmd.Context(), c, apiClient, s, args, block, timeout)
		},
	}

	addScopeFlags(cmd, &flags, scopeInstance)
	cmd.Flags().BoolVarP(&block, "wait", "w", false, "wait until the applications are running")
	addTimeoutFlag(cmd, "workload", constants.DefaultWorkloadTimeout)

	return cmd
}

// startApps starts every app and optionally waits for it, at most
// constants.MaxConcurrentWaits at a time. All failures are reported.
func startApps(ctx context.Context, c *Context, apiClient nuvolos.Client, s scope, apps []string, block bool, timeout *time.Duration) error {
	p := c.printer()

	var (
		mu     sync.Mutex
		result *multierror.Error
	)

	record := func(err error) {
		mu.Lock()
		defer mu.Unlock()

		result = multierror.Append(result, err)
	}

	var group errgroup.Group
	group.SetLimit(constants.MaxConcurrentWaits)

	for _, app := range apps {
		group.Go(func() error {
			ref := s.appRef(app)

			if err := apiClient.Apps().Start(ctx, ref); err != nil {
				record(err)

				return nil
			}

			if !block {
				p.Success("Start of %s requested", ref)

				return nil
			}

			workload, err := wait.ForWorkload(ctx, apiClient.Workloads(), ref, c.workloadWaitOptions(p, ref, timeout))
			if err != nil {
				record(err)

				return nil
			}

			p.Success("%s is running (workload %s)", ref, workload.ID)

			return nil
		})
	}

	_ = group.Wait()

	switch {
	case result == nil:
		return nil
	case len(result.Errors) == 1:
		return result.Errors[0]
	default:
		return result.ErrorOrNil()
	}
}

func (c *Context) workloadWaitOptions(p *Printer, ref nuvolos.AppRef, timeout *time.Duration) wait.Options {
	return wait.Options{
		Timeout:  timeout,
		Clock:    c.Clock,
		Logger:   c.Logger,
		Progress: p.Progress("application " + ref.String()),
	}
}

func newAppsStopCommand(c *Context) *cobra.Command {
	var flags scopeFlags

	cmd := &cobra.Command{
		Use:   "stop APP",
		Short: "Stop an application",
		Long:  "Stop a running application of the given or selected instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.resolveScope(flags, scopeInstance)
			if err != nil {
				return err
			}

			apiClient, err := c.apiClient(cmd)
			if err != nil {
				return err
			}

			ref := s.appRef(args[0])
			if err := apiClient.Apps().Stop(cmd.Context(), ref); err != nil {
				return err
			}

			c.printer().Success("Stop of %s requested", ref)

			return nil
		},
	}

	addScopeFlags(cmd, &flags, scopeInstance)

	return cmd
}

func newAppsWaitCommand(c *Context) *cobra.Command {
	var flags scopeFlags

	cmd := &cobra.Command{
		Use:   "wait APP",
		Short: "Wait for an application to run",
		Long: `Poll the workloads of an application every five seconds until one is RUNNING.

If no workload has been scheduled within 30 seconds the wait fails early;
otherwise it fails when the timeout is exceeded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.resolveScope(flags, scopeInstance)
			if err != nil {
				return err
			}

			timeout, err := c.timeoutSetting(cmd, keyWorkloadTimeout)
			if err != nil {
				return err
			}

			apiClient, err := c.apiClient(cmd)
			if err != nil {
				return err
			}

			p := c.printer()
			ref := s.appRef(args[0])

			workload, err := wait.ForWorkload(cmd.Context(), apiClient.Workloads(), ref, c.workloadWaitOptions(p, ref, timeout))
			if err != nil {
				return err
			}

			p.Success("%s is running", ref)

			return renderWorkloads(c, []nuvolos.Workload{*workload})
		},
	}

	addScopeFlags(cmd, &flags, scopeInstance)
	addTimeoutFlag(cmd, "workload", constants.DefaultWorkloadTimeout)

	return cmd
}

func newAppsExecuteCommand(c *Context) *cobra.Command {
	var flags scopeFlags

	cmd := &cobra.Command{
		Use:     "execute APP -- COMMAND [ARG...]",
		Aliases: []string{"exec"},
		Short:   "Run a command in a running application",
		Long:    "Run a command inside the running workload of an application and print its output",
		Example: "  nuvolos apps execute jupyterlab -- pip list",
		Args:    cobra.MinimumNArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.resolveScope(flags, scopeInstance)
			if err != nil {
				return err
			}

			apiClient, err := c.apiClient(cmd)
			if err != nil {
				return err
			}

			result, err := apiClient.Workloads().Execute(cmd.Context(), s.appRef(args[0]), args[1:])
			if err != nil {
				return err
			}

			return renderExecResult(c, result)
		},
	}

	addScopeFlags(cmd, &flags, scopeInstance)

	return cmd
}

func renderExecResult(c *Context, result *nuvolos.ExecResult) error {
	p := c.printer()

	if p.format == constants.FormatTable {
		_, _ = fmt.Fprint(c.Out, result.Stdout)
		_, _ = fmt.Fprint(c.Err, result.Stderr)
	} else if err := p.Print(result, nil); err != nil {
		return err
	}

	if result.ExitCode != 0 {
		return fmt.Errorf("%w: exit status %d", constants.ErrRemoteCommandFailed, result.ExitCode)
	}

	return nil
}

func renderApps(c *Context, apps []nuvolos.App) error {
	p := c.printer()
	if len(apps) == 0 {
		return p.Empty("applications")
	}

	return p.Print(apps, func(table *tablewriter.Table) {
		table.Header("Slug", "Name", "Type", "ID", "Description")

		for _, app := range apps {
			_ = table.Append(app.Slug, app.Name, orNA(app.Type), strconv.Itoa(app.AID), app.Description)
		}
	})
}

func renderWorkloads(c *Context, workloads []nuvolos.Workload) error {
	p := c.printer()
	if len(workloads) == 0 {
		return p.Empty("running applications")
	}

	return p.Print(workloads, func(table *tablewriter.Table) {
		table.Header("App", "Organization", "Space", "Instance", "Status", "Started", "ID")

		for _, w := range workloads {
			_ = table.Append(w.AppSlug, w.OrgSlug, w.SpaceSlug, w.InstanceSlug, w.Status, formatTime(w.StartedAt), w.ID)
		}
	})
}
