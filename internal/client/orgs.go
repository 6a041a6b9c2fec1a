package client

import (
	"context"
	"fmt"

	"github.com/nuvolos-cloud/nuvolos-cli/pkg/nuvolos"
)

// OrgsClient implements nuvolos.OrgsClient.
type OrgsClient struct {
	*resource
}

// List returns the organizations visible to the API key.
func (c *OrgsClient) List(ctx context.Context) ([]nuvolos.Org, error) {
	orgs, err := getCached[[]nuvolos.Org](ctx, c.resource, apiPath("orgs/v1"))
	if err != nil {
		return nil, fmt.Errorf("listing organizations: %w", err)
	}

	return orgs, nil
}

// Get returns a single organization.
func (c *OrgsClient) Get(ctx context.Context, slug string) (*nuvolos.Org, error) {
	if slug == "" {
		return nil, nuvolos.ErrOrgRequired
	}

	org, err := get[*nuvolos.Org](ctx, c.resource, apiPath("orgs/v1", slug), nil)
	if err != nil {
		return nil, fmt.Errorf("getting organization %s: %w", slug, err)
	}

	return org, nil
}
