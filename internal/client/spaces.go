package client

import (
	"context"
	"fmt"

	"github.com/nuvolos-cloud/nuvolos-cli/pkg/nuvolos"
)

// SpacesClient implements nuvolos.SpacesClient.
type SpacesClient struct {
	*resource
}

// List returns the spaces of org.
func (c *SpacesClient) List(ctx context.Context, org string) ([]nuvolos.Space, error) {
	if org == "" {
		return nil, nuvolos.ErrOrgRequired
	}

	spaces, err := getCached[[]nuvolos.Space](ctx, c.resource, apiPath("spaces/v1", org))
	if err != nil {
		return nil, fmt.Errorf("listing spaces of %s: %w", org, err)
	}

	return spaces, nil
}
