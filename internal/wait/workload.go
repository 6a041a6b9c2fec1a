package wait

import (
	"context"
	"strings"

	"github.com/nuvolos-cloud/nuvolos-cli/internal/constants"
	"github.com/nuvolos-cloud/nuvolos-cli/pkg/nuvolos"
)

// NoWorkloadPhase names the budget that applies while the platform has not
// scheduled any workload for the application.
const NoWorkloadPhase = "no workload scheduled"

// noWorkloadStatus is reported as the status while no workload exists.
const noWorkloadStatus = "NO_WORKLOAD"

// WorkloadLister lists the workloads of one application.
type WorkloadLister interface {
	ListForApp(ctx context.Context, ref nuvolos.AppRef) ([]nuvolos.Workload, error)
}

// ForWorkload blocks until a workload of the application reports RUNNING and
// returns it. The overall timeout is 600 seconds unless opts.Timeout is set.
// While no workload exists at all a 30 second budget, measured from the same
// start, applies when it is the shorter of the two.
//
// A workload reporting any status other than RUNNING is treated as still
// starting.
func ForWorkload(ctx context.Context, lister WorkloadLister, ref nuvolos.AppRef, opts Options) (*nuvolos.Workload, error) {
	if ref.Org == "" || ref.Space == "" || ref.Instance == "" || ref.App == "" {
		return nil, ErrIncompleteAppRef
	}

	target := "application " + ref.String()

	workloads, err := Wait(ctx, Spec[[]nuvolos.Workload]{
		Target: target,
		Query: func(ctx context.Context) ([]nuvolos.Workload, error) {
			return lister.ListForApp(ctx, ref)
		},
		IsSuccess: func(workloads []nuvolos.Workload) bool {
			return runningWorkload(workloads) != nil
		},
		Timeout:      opts.timeout(constants.DefaultWorkloadTimeout),
		Interval:     opts.Interval,
		Start:        opts.Start,
		Clock:        opts.Clock,
		PhaseTimeout: noWorkloadPhase,
		Describe:     DescribeWorkloads,
		Observe:      opts.observer(target),
	})
	if err != nil {
		return nil, err
	}

	return runningWorkload(workloads), nil
}

func noWorkloadPhase(workloads []nuvolos.Workload) (Phase, bool) {
	if len(workloads) > 0 {
		return Phase{}, false
	}

	return Phase{Name: NoWorkloadPhase, Timeout: constants.NoWorkloadTimeout}, true
}

func runningWorkload(workloads []nuvolos.Workload) *nuvolos.Workload {
	for i := range workloads {
		if workloads[i].Status == nuvolos.WorkloadStatusRunning {
			return &workloads[i]
		}
	}

	return nil
}

// DescribeWorkloads renders the statuses of a workload listing, e.g.
// "STARTING" or "STARTING,RUNNING". An empty listing is "NO_WORKLOAD".
func DescribeWorkloads(workloads []nuvolos.Workload) string {
	if len(workloads) == 0 {
		return noWorkloadStatus
	}

	statuses := make([]string, 0, len(workloads))
	for _, workload := range workloads {
		statuses = append(statuses, workload.Status)
	}

	return strings.Join(statuses, ",")
}
