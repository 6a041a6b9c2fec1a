package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nuvolos-cloud/nuvolos-cli/pkg/nuvolos"
)

// WorkloadsClient implements nuvolos.WorkloadsClient. Nothing here is
// cached since callers poll these endpoints for fresh state.
type WorkloadsClient struct {
	*resource
}

// ListAll returns every running workload of the user.
func (c *WorkloadsClient) ListAll(ctx context.Context) ([]nuvolos.Workload, error) {
	workloads, err := get[[]nuvolos.Workload](ctx, c.resource, apiPath("workloads/v1"), nil)
	if err != nil {
		return nil, fmt.Errorf("listing workloads: %w", err)
	}

	return workloads, nil
}

// ListForApp returns the workloads of one application.
func (c *WorkloadsClient) ListForApp(ctx context.Context, ref nuvolos.AppRef) ([]nuvolos.Workload, error) {
	if err := requireRef(ref); err != nil {
		return nil, err
	}

	path := apiPath("workloads/v1", ref.Org, ref.Space, ref.Instance)

	workloads, err := getStatus[[]nuvolos.Workload](ctx, c.resource, path, url.Values{"app": []string{ref.App}})
	if err != nil {
		return nil, fmt.Errorf("listing workloads of %s: %w", ref, err)
	}

	return workloads, nil
}

// Execute runs command inside the application's running workload.
func (c *WorkloadsClient) Execute(ctx context.Context, ref nuvolos.AppRef, command []string) (*nuvolos.ExecResult, error) {
	if err := requireRef(ref); err != nil {
		return nil, err
	}

	if len(command) == 0 {
		return nil, nuvolos.ErrCommandRequired
	}

	path := apiPath("workloads/v1", ref.Org, ref.Space, ref.Instance, ref.App, "execute")

	result, err := post[*nuvolos.ExecResult](ctx, c.resource, path, &nuvolos.ExecRequest{Command: command})
	if err != nil {
		return nil, fmt.Errorf("executing command in %s: %w", ref, err)
	}

	return result, nil
}
