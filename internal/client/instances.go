package client

import (
	"context"
	"fmt"

	"github.com/nuvolos-cloud/nuvolos-cli/pkg/nuvolos"
)

// InstancesClient implements nuvolos.InstancesClient.
type InstancesClient struct {
	*resource
}

// List returns the instances of a space.
func (c *InstancesClient) List(ctx context.Context, org, space string) ([]nuvolos.Instance, error) {
	switch {
	case org == "":
		return nil, nuvolos.ErrOrgRequired
	case space == "":
		return nil, nuvolos.ErrSpaceRequired
	}

	instances, err := getCached[[]nuvolos.Instance](ctx, c.resource, apiPath("instances/v1", org, space))
	if err != nil {
		return nil, fmt.Errorf("listing instances of %s/%s: %w", org, space, err)
	}

	return instances, nil
}
