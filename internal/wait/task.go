package wait

import (
	"context"
	"fmt"

	"github.com/nuvolos-cloud/nuvolos-cli/internal/constants"
	"github.com/nuvolos-cloud/nuvolos-cli/pkg/nuvolos"
)

// TaskState is the classification of a task status.
type TaskState int

const (
	// TaskPending means the task is still CREATED, QUEUED or RUNNING.
	TaskPending TaskState = iota
	// TaskCompleted means the task finished successfully.
	TaskCompleted
	// TaskFailed means the task ended in any other state.
	TaskFailed
)

// ReasonTaskCancelled is the failure reason of a CANCELLED task.
const ReasonTaskCancelled = "task cancelled: the task was cancelled before it completed"

const unexpectedStatusFormat = "unexpected task status: %s"

// TaskGetter fetches a task by id.
type TaskGetter interface {
	Get(ctx context.Context, id string) (*nuvolos.Task, error)
}

// ClassifyTask maps every possible task status onto a TaskState. For failed
// tasks it also returns the reason: the task's own error for FAILED, a fixed
// message for CANCELLED and the literal status for anything unknown.
func ClassifyTask(task *nuvolos.Task) (TaskState, string) {
	if task == nil {
		return TaskFailed, ErrUnexpectedNilTask.Error()
	}

	switch task.Status {
	case nuvolos.TaskStatusCreated, nuvolos.TaskStatusQueued, nuvolos.TaskStatusRunning:
		return TaskPending, ""
	case nuvolos.TaskStatusCompleted:
		return TaskCompleted, ""
	case nuvolos.TaskStatusFailed:
		return TaskFailed, task.Error
	case nuvolos.TaskStatusCancelled:
		return TaskFailed, ReasonTaskCancelled
	default:
		return TaskFailed, fmt.Sprintf(unexpectedStatusFormat, task.Status)
	}
}

// ForTask re-fetches the task every interval until it reaches a terminal
// state and returns the completed task, whose Result carries the payload.
// The timeout defaults to 600 seconds. On failure or timeout the last fetched
// task is returned together with the error.
func ForTask(ctx context.Context, getter TaskGetter, id string, opts Options) (*nuvolos.Task, error) {
	if id == "" {
		return nil, ErrTaskIDRequired
	}

	target := "task " + id

	return Wait(ctx, Spec[*nuvolos.Task]{
		Target: target,
		Query: func(ctx context.Context) (*nuvolos.Task, error) {
			return getter.Get(ctx, id)
		},
		IsSuccess: func(task *nuvolos.Task) bool {
			state, _ := ClassifyTask(task)

			return state == TaskCompleted
		},
		IsFailure: func(task *nuvolos.Task) (bool, string) {
			state, reason := ClassifyTask(task)

			return state == TaskFailed, reason
		},
		Timeout:  opts.timeout(constants.DefaultTaskTimeout),
		Interval: opts.Interval,
		Start:    opts.Start,
		Clock:    opts.Clock,
		Describe: describeTask,
		Observe:  opts.observer(target),
	})
}

func describeTask(task *nuvolos.Task) string {
	if task == nil {
		return constants.NotAvailable
	}

	return task.Status
}
