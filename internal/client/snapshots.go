package client

import (
	"context"
	"fmt"

	"github.com/nuvolos-cloud/nuvolos-cli/pkg/nuvolos"
)

// SnapshotsClient implements nuvolos.SnapshotsClient. Listings are not
// cached because create and delete change them.
type SnapshotsClient struct {
	*resource
}

func checkInstanceScope(org, space, instance string) error {
	switch {
	case org == "":
		return nuvolos.ErrOrgRequired
	case space == "":
		return nuvolos.ErrSpaceRequired
	case instance == "":
		return nuvolos.ErrInstanceRequired
	}

	return nil
}

// List returns the snapshots of an instance.
func (c *SnapshotsClient) List(ctx context.Context, org, space, instance string) ([]nuvolos.Snapshot, error) {
	if err := checkInstanceScope(org, space, instance); err != nil {
		return nil, err
	}

	snapshots, err := get[[]nuvolos.Snapshot](ctx, c.resource, apiPath("snapshots/v1", org, space, instance), nil)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots of %s/%s/%s: %w", org, space, instance, err)
	}

	return snapshots, nil
}

// Create starts a snapshot of the instance and returns the tracking task.
func (c *SnapshotsClient) Create(ctx context.Context, org, space, instance string, request *nuvolos.SnapshotCreateRequest) (*nuvolos.Task, error) {
	if err := checkInstanceScope(org, space, instance); err != nil {
		return nil, err
	}

	if request == nil || request.Name == "" {
		return nil, nuvolos.ErrSnapshotRequired
	}

	task, err := post[*nuvolos.Task](ctx, c.resource, apiPath("snapshots/v1", org, space, instance), request)
	if err != nil {
		return nil, fmt.Errorf("creating snapshot %s: %w", request.Name, err)
	}

	return task, nil
}

// Delete removes a snapshot and returns the tracking task.
func (c *SnapshotsClient) Delete(ctx context.Context, org, space, instance, snapshot string) (*nuvolos.Task, error) {
	if err := checkInstanceScope(org, space, instance); err != nil {
		return nil, err
	}

	if snapshot == "" {
		return nil, nuvolos.ErrSnapshotRequired
	}

	task, err := del[*nuvolos.Task](ctx, c.resource, apiPath("snapshots/v1", org, space, instance, snapshot))
	if err != nil {
		return nil, fmt.Errorf("deleting snapshot %s: %w", snapshot, err)
	}

	return task, nil
}
