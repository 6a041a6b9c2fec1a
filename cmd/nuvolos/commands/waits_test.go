package commands_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuvolos-cloud/nuvolos-cli/internal/constants"
	"github.com/nuvolos-cloud/nuvolos-cli/internal/wait"
	"github.com/nuvolos-cloud/nuvolos-cli/pkg/nuvolos"
)

const (
	scoped        = "org: acme\nspace: research\ninstance: master"
	jupyterRoute  = "GET /workloads/v1/acme/research/master?app=jupyterlab"
	startJupyter  = "POST /apps/v1/acme/research/master/jupyterlab/start"
	startRStudio  = "POST /apps/v1/acme/research/master/rstudio/start"
	rstudioRoute  = "GET /workloads/v1/acme/research/master?app=rstudio"
	taskRoute     = "GET /tasks/v1/task-1"
	snapshotRoute = "POST /snapshots/v1/acme/research/master"
)

func workloads(statuses ...string) reply {
	list := make([]nuvolos.Workload, 0, len(statuses))
	for i, status := range statuses {
		list = append(list, nuvolos.Workload{
			ID:           "wl-" + string(rune('a'+i)),
			OrgSlug:      "acme",
			SpaceSlug:    "research",
			InstanceSlug: "master",
			AppSlug:      "jupyterlab",
			Status:       status,
		})
	}

	data, _ := json.Marshal(nuvolos.DataResponse[[]nuvolos.Workload]{Data: list})

	return ok(string(data))
}

func task(status, reason string) reply {
	data, _ := json.Marshal(nuvolos.DataResponse[*nuvolos.Task]{
		Data: &nuvolos.Task{ID: "task-1", Status: status, Error: reason},
	})

	return ok(string(data))
}

func TestAppsCommandStructure(t *testing.T) {
	t.Parallel()

	apps := findSubcommand(newRootFor(newTestEnv(t)), "apps")
	require.NotNil(t, apps)

	start := findSubcommand(apps, "start")
	require.NotNil(t, start)
	assert.NotNil(t, start.Flags().Lookup("wait"))
	assert.NotNil(t, start.Flags().Lookup("timeout"))
	assert.NotNil(t, start.Flags().Lookup("instance"))

	execute := findSubcommand(apps, "execute")
	require.NotNil(t, execute)
	assert.Contains(t, execute.Aliases, "exec")

	for _, name := range []string{"list", "stop", "wait"} {
		assert.NotNil(t, findSubcommand(apps, name), name)
	}
}

func TestAppsList(t *testing.T) {
	t.Parallel()

	t.Run("instance scope", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t).withKey(scoped)
		env.api.on("GET /apps/v1/acme/research/master", ok(appsBody))

		require.NoError(t, env.run("apps", "list"))
		assert.Contains(t, env.out.String(), "JupyterLab")
	})

	t.Run("no scope lists running workloads", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t).withKey()
		env.api.on("GET /workloads/v1", workloads(nuvolos.WorkloadStatusRunning))

		require.NoError(t, env.run("apps", "list"))
		assert.Contains(t, env.out.String(), "wl-a")
	})

	t.Run("running flag", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t).withKey(scoped)
		env.api.on("GET /workloads/v1", ok(`{"data":[]}`))

		require.NoError(t, env.run("apps", "list", "--running"))
		assert.Equal(t, "No running applications found\n", env.out.String())
		assert.Equal(t, 0, env.api.count("GET /apps/v1/acme/research/master"))
	})
}

func TestAppsStartWait(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t).withKey(scoped)
	env.api.on(startJupyter, ok(`{"data":null}`))
	env.api.on(jupyterRoute,
		workloads(),
		workloads(nuvolos.WorkloadStatusStarting),
		workloads(nuvolos.WorkloadStatusRunning),
	)

	require.NoError(t, env.run("apps", "start", "jupyterlab", "--wait"))
	assert.Contains(t, env.out.String(), "acme/research/master/jupyterlab is running (workload wl-a)")
	assert.Contains(t, env.errOut.String(), "NO_WORKLOAD")
	assert.Equal(t, 3, env.api.count(jupyterRoute))
	assert.Equal(t, 2, env.clock.sleepCount())
}

func TestAppsStartWithoutWait(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t).withKey(scoped)
	env.api.on(startJupyter, ok(`{"data":null}`))

	require.NoError(t, env.run("apps", "start", "jupyterlab"))
	assert.Contains(t, env.out.String(), "Start of acme/research/master/jupyterlab requested")
	assert.Equal(t, 0, env.api.count(jupyterRoute))
}

func TestAppsStartReportsEachFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t).withKey(scoped)
	env.api.on(startJupyter, ok(`{"data":null}`))
	env.api.on(jupyterRoute, workloads(nuvolos.WorkloadStatusRunning))
	env.api.on(startRStudio, reply{status: http.StatusForbidden, body: `{"error":"not allowed"}`})

	err := env.run("apps", "start", "jupyterlab", "rstudio", "--wait")
	require.Error(t, err)
	assert.True(t, nuvolos.IsForbidden(err))
	assert.Contains(t, env.out.String(), "jupyterlab is running")
	assert.Equal(t, 0, env.api.count(rstudioRoute))
}

func TestAppsWaitNoWorkload(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t).withKey(scoped)
	env.api.on(jupyterRoute, ok(`{"data":[]}`))

	err := env.run("apps", "wait", "jupyterlab")
	require.ErrorIs(t, err, wait.ErrTimeout)
	assert.Contains(t, err.Error(), "no workload scheduled timeout 30s")

	// Elapsed 0s, 5s ... 35s: the budget is exceeded on the eighth tick.
	assert.Equal(t, 8, env.api.count(jupyterRoute))
}

func TestAppsWaitTimeoutFlag(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t).withKey(scoped)
	env.api.on(jupyterRoute, workloads(nuvolos.WorkloadStatusStarting))

	err := env.run("apps", "wait", "jupyterlab", "--timeout", "10")
	require.ErrorIs(t, err, wait.ErrTimeout)
	assert.Contains(t, err.Error(), "last status: STARTING")
	assert.Equal(t, 4, env.api.count(jupyterRoute))

	err = env.run("apps", "wait", "jupyterlab", "--timeout", "soon")
	require.ErrorIs(t, err, constants.ErrInvalidDuration)
}

func TestAppsWaitTimeoutFlagCapsNoWorkloadBudget(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t).withKey(scoped)
	env.api.on(jupyterRoute, ok(`{"data":[]}`))

	err := env.run("apps", "wait", "jupyterlab", "--timeout", "10")
	require.ErrorIs(t, err, wait.ErrTimeout)
	assert.Contains(t, err.Error(), "timeout 10s exceeded")
	assert.NotContains(t, err.Error(), "no workload scheduled")

	// Elapsed 0s, 5s, 10s, 15s: the overall budget ends the wait well before 30s.
	assert.Equal(t, 4, env.api.count(jupyterRoute))
	assert.Equal(t, 3, env.clock.sleepCount())
}

func TestAppsWaitZeroTimeout(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t).withKey(scoped)
	env.api.on(jupyterRoute, workloads(nuvolos.WorkloadStatusStarting))

	err := env.run("apps", "wait", "jupyterlab", "--timeout", "0")
	require.ErrorIs(t, err, wait.ErrTimeout)
	assert.Equal(t, 1, env.api.count(jupyterRoute))
	assert.Equal(t, 0, env.clock.sleepCount())
}

func TestAppsStop(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t).withKey(scoped)
	env.api.on("POST /apps/v1/acme/research/master/jupyterlab/stop", ok(`{"data":null}`))

	require.NoError(t, env.run("apps", "stop", "jupyterlab"))
	assert.Contains(t, env.out.String(), "Stop of acme/research/master/jupyterlab requested")
}

func TestAppsExecute(t *testing.T) {
	t.Parallel()

	route := "POST /workloads/v1/acme/research/master/jupyterlab/execute"

	env := newTestEnv(t).withKey(scoped)
	env.api.on(route,
		ok(`{"data":{"stdout":"numpy 2.0\n","stderr":"","exit_code":0}}`),
		ok(`{"data":{"stdout":"","stderr":"boom\n","exit_code":3}}`),
	)

	require.NoError(t, env.run("apps", "execute", "jupyterlab", "--", "pip", "list"))
	assert.Equal(t, "numpy 2.0\n", env.out.String())
	assert.JSONEq(t, `{"command":["pip","list"]}`, env.api.lastBody(route))

	err := env.run("apps", "exec", "jupyterlab", "--", "false")
	require.ErrorIs(t, err, constants.ErrRemoteCommandFailed)
	assert.Contains(t, err.Error(), "exit status 3")
	assert.Equal(t, "boom\n", env.errOut.String())
}

func TestTasksWait(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t).withKey()
	env.api.on(taskRoute,
		task(nuvolos.TaskStatusQueued, ""),
		task(nuvolos.TaskStatusRunning, ""),
		task(nuvolos.TaskStatusCompleted, ""),
	)

	require.NoError(t, env.run("tasks", "wait", "task-1"))
	assert.Contains(t, env.out.String(), "Task task-1 completed")
	assert.Equal(t, 2, env.clock.sleepCount())
}

func TestTasksWaitFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t).withKey()
	env.api.on(taskRoute, task(nuvolos.TaskStatusRunning, ""), task(nuvolos.TaskStatusFailed, "disk full"))

	err := env.run("tasks", "wait", "task-1")
	require.ErrorIs(t, err, wait.ErrTerminalFailure)
	assert.Contains(t, err.Error(), "disk full")

	var failure *wait.TerminalFailureError
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, nuvolos.TaskStatusFailed, failure.Status)
}

func TestTasksWaitConfiguredTimeout(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t).withKey("task_timeout: 1m")
	env.api.on(taskRoute, task(nuvolos.TaskStatusQueued, ""))

	err := env.run("tasks", "wait", "task-1", "--output", "json")
	require.ErrorIs(t, err, wait.ErrTimeout)
	assert.Contains(t, err.Error(), "timeout 1m0s exceeded")
	assert.Empty(t, env.errOut.String())
}

func TestTasksWaitZeroTimeout(t *testing.T) {
	t.Parallel()

	t.Run("flag", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t).withKey()
		env.api.on(taskRoute, task(nuvolos.TaskStatusQueued, ""))

		err := env.run("tasks", "wait", "task-1", "--timeout", "0")
		require.ErrorIs(t, err, wait.ErrTimeout)
		assert.Contains(t, err.Error(), "timeout 0s exceeded")
		assert.Equal(t, 1, env.api.count(taskRoute))
		assert.Equal(t, 0, env.clock.sleepCount())
	})

	t.Run("config", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t).withKey(`task_timeout: "0"`)
		env.api.on(taskRoute, task(nuvolos.TaskStatusQueued, ""))

		err := env.run("tasks", "wait", "task-1")
		require.ErrorIs(t, err, wait.ErrTimeout)
		assert.Equal(t, 1, env.api.count(taskRoute))
		assert.Equal(t, 0, env.clock.sleepCount())
	})
}

func TestTasksGet(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t).withKey()
	env.api.on(taskRoute, task(nuvolos.TaskStatusRunning, ""))

	require.NoError(t, env.run("tasks", "get", "task-1", "--output", "json"))

	var got nuvolos.Task
	require.NoError(t, json.Unmarshal(env.out.Bytes(), &got))
	assert.Equal(t, nuvolos.TaskStatusRunning, got.Status)
	assert.Equal(t, 0, env.clock.sleepCount())
}

func TestSnapshotsCreate(t *testing.T) {
	t.Parallel()

	t.Run("without wait", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t).withKey(scoped)
		env.api.on(snapshotRoute, task(nuvolos.TaskStatusQueued, ""))

		require.NoError(t, env.run("snapshots", "create", "--name", "nightly", "-d", "before upgrade"))
		assert.Contains(t, env.out.String(), "Snapshot nightly of acme/research/master started (task task-1)")
		assert.JSONEq(t, `{"name":"nightly","description":"before upgrade"}`, env.api.lastBody(snapshotRoute))
		assert.Equal(t, 0, env.api.count(taskRoute))
	})

	t.Run("with wait", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t).withKey(scoped)
		env.api.on(snapshotRoute, task(nuvolos.TaskStatusQueued, ""))
		env.api.on(taskRoute, task(nuvolos.TaskStatusRunning, ""), task(nuvolos.TaskStatusCompleted, ""))

		require.NoError(t, env.run("snapshots", "create", "-n", "nightly", "--wait"))
		assert.Contains(t, env.out.String(), "Snapshot nightly of acme/research/master completed")
		assert.Equal(t, 2, env.api.count(taskRoute))
	})

	t.Run("name required", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t).withKey(scoped)
		require.Error(t, env.run("snapshots", "create"))
		assert.Equal(t, 0, env.api.count(snapshotRoute))
	})
}

func TestSnapshotsDeleteCancelled(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t).withKey(scoped)
	env.api.on("DELETE /snapshots/v1/acme/research/master/nightly", task(nuvolos.TaskStatusQueued, ""))
	env.api.on(taskRoute, task(nuvolos.TaskStatusCancelled, ""))

	err := env.run("snapshots", "delete", "nightly", "-w")
	require.ErrorIs(t, err, wait.ErrTerminalFailure)
	assert.Contains(t, err.Error(), wait.ReasonTaskCancelled)
}
