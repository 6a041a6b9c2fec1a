package client

import (
	"context"
	"fmt"

	"github.com/nuvolos-cloud/nuvolos-cli/pkg/nuvolos"
)

// AppsClient implements nuvolos.AppsClient.
type AppsClient struct {
	*resource
}

// List returns the applications of an instance.
func (c *AppsClient) List(ctx context.Context, org, space, instance string) ([]nuvolos.App, error) {
	if err := checkInstanceScope(org, space, instance); err != nil {
		return nil, err
	}

	apps, err := getCached[[]nuvolos.App](ctx, c.resource, apiPath("apps/v1", org, space, instance))
	if err != nil {
		return nil, fmt.Errorf("listing applications of %s/%s/%s: %w", org, space, instance, err)
	}

	return apps, nil
}

// Start asks the platform to start the application. It returns once the
// request is accepted; use the workload wait to block until it runs.
func (c *AppsClient) Start(ctx context.Context, ref nuvolos.AppRef) error {
	return c.control(ctx, ref, "start")
}

// Stop asks the platform to stop the application.
func (c *AppsClient) Stop(ctx context.Context, ref nuvolos.AppRef) error {
	return c.control(ctx, ref, "stop")
}

func (c *AppsClient) control(ctx context.Context, ref nuvolos.AppRef, action string) error {
	if err := requireRef(ref); err != nil {
		return err
	}

	path := apiPath("apps/v1", ref.Org, ref.Space, ref.Instance, ref.App, action)

	if _, err := c.http.Post(ctx, path, nil); err != nil {
		return fmt.Errorf("%s application %s: %w", action, ref, err)
	}

	return nil
}
