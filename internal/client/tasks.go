package client

import (
	"context"
	"fmt"

	"github.com/nuvolos-cloud/nuvolos-cli/pkg/nuvolos"
)

// TasksClient implements nuvolos.TasksClient.
type TasksClient struct {
	*resource
}

// Get fetches the current state of a task.
func (c *TasksClient) Get(ctx context.Context, id string) (*nuvolos.Task, error) {
	if id == "" {
		return nil, nuvolos.ErrTaskIDRequired
	}

	task, err := getStatus[*nuvolos.Task](ctx, c.resource, apiPath("tasks/v1", id), nil)
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}

	if task == nil {
		return nil, fmt.Errorf("getting task %s: %w", id, nuvolos.ErrUnexpectedEmptyBody)
	}

	return task, nil
}
