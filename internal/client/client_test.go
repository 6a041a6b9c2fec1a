package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuvolos-cloud/nuvolos-cli/internal/cache"
	"github.com/nuvolos-cloud/nuvolos-cli/internal/client"
	internalhttp "github.com/nuvolos-cloud/nuvolos-cli/internal/http"
	"github.com/nuvolos-cloud/nuvolos-cli/pkg/nuvolos"
)

var testRef = nuvolos.AppRef{Org: "acme", Space: "research", Instance: "master", App: "jupyterlab"}

// route describes the single request a test server expects.
type route struct {
	method string
	path   string
	query  string
	status int
	body   string
	check  func(t *testing.T, r *http.Request)
}

func newServer(t *testing.T, rt route) (*httptest.Server, *int32) {
	t.Helper()

	var hits int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)

		assert.Equal(t, rt.method, r.Method)
		assert.Equal(t, rt.path, r.URL.EscapedPath())
		assert.Equal(t, rt.query, r.URL.RawQuery)
		assert.Equal(t, "basic test-key", r.Header.Get("Authorization"))

		if rt.check != nil {
			rt.check(t, r)
		}

		status := rt.status
		if status == 0 {
			status = http.StatusOK
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, rt.body)
	}))
	t.Cleanup(server.Close)

	return server, &hits
}

func newClient(t *testing.T, serverURL string, opts ...client.Option) *client.Client {
	t.Helper()

	opts = append(opts, client.WithHTTPOptions(internalhttp.WithRetryWait(time.Millisecond, 2*time.Millisecond)))

	c, err := client.New(&nuvolos.Config{APIURL: serverURL, APIKey: "test-key"}, opts...)
	require.NoError(t, err)

	return c
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := client.New(nil)
	require.ErrorIs(t, err, nuvolos.ErrAPIURLRequired)

	_, err = client.New(&nuvolos.Config{APIURL: "https://api.nuvolos.cloud"})
	require.ErrorIs(t, err, nuvolos.ErrAPIKeyRequired)

	c, err := client.New(&nuvolos.Config{APIURL: "https://api.nuvolos.cloud", APIKey: "k"})
	require.NoError(t, err)
	assert.NotNil(t, c.Orgs())
	assert.NotNil(t, c.Spaces())
	assert.NotNil(t, c.Instances())
	assert.NotNil(t, c.Snapshots())
	assert.NotNil(t, c.Apps())
	assert.NotNil(t, c.Workloads())
	assert.NotNil(t, c.Tasks())
	assert.NoError(t, c.Close())
}

func TestOrgs(t *testing.T) {
	t.Parallel()

	t.Run("list", func(t *testing.T) {
		t.Parallel()

		server, _ := newServer(t, route{
			method: http.MethodGet,
			path:   "/orgs/v1",
			body:   `{"data":[{"oid":1,"slug":"acme","name":"Acme"},{"oid":2,"slug":"globex","name":"Globex"}]}`,
		})

		orgs, err := newClient(t, server.URL).Orgs().List(context.Background())
		require.NoError(t, err)
		require.Len(t, orgs, 2)
		assert.Equal(t, "acme", orgs[0].Slug)
		assert.Equal(t, "Globex", orgs[1].Name)
	})

	t.Run("get", func(t *testing.T) {
		t.Parallel()

		server, _ := newServer(t, route{
			method: http.MethodGet,
			path:   "/orgs/v1/acme",
			body:   `{"data":{"oid":1,"slug":"acme","name":"Acme"}}`,
		})

		org, err := newClient(t, server.URL).Orgs().Get(context.Background(), "acme")
		require.NoError(t, err)
		assert.Equal(t, "Acme", org.Name)
	})

	t.Run("get not found", func(t *testing.T) {
		t.Parallel()

		server, _ := newServer(t, route{
			method: http.MethodGet,
			path:   "/orgs/v1/nope",
			status: http.StatusNotFound,
			body:   `{"error":"organization not found"}`,
		})

		_, err := newClient(t, server.URL).Orgs().Get(context.Background(), "nope")
		require.Error(t, err)
		assert.True(t, nuvolos.IsNotFound(err))
		assert.Contains(t, err.Error(), "getting organization nope")
		assert.Contains(t, err.Error(), server.URL+"/orgs/v1/nope")
	})

	t.Run("get requires slug", func(t *testing.T) {
		t.Parallel()

		_, err := newClient(t, "http://127.0.0.1:1").Orgs().Get(context.Background(), "")
		require.ErrorIs(t, err, nuvolos.ErrOrgRequired)
	})
}

func TestSpacesAndInstances(t *testing.T) {
	t.Parallel()

	t.Run("spaces", func(t *testing.T) {
		t.Parallel()

		server, _ := newServer(t, route{
			method: http.MethodGet,
			path:   "/spaces/v1/acme",
			body:   `{"data":[{"sid":10,"slug":"research","name":"Research"}]}`,
		})

		spaces, err := newClient(t, server.URL).Spaces().List(context.Background(), "acme")
		require.NoError(t, err)
		require.Len(t, spaces, 1)
		assert.Equal(t, "research", spaces[0].Slug)
	})

	t.Run("instances", func(t *testing.T) {
		t.Parallel()

		server, _ := newServer(t, route{
			method: http.MethodGet,
			path:   "/instances/v1/acme/research",
			body:   `{"data":[{"iid":100,"slug":"master","name":"Master"}]}`,
		})

		instances, err := newClient(t, server.URL).Instances().List(context.Background(), "acme", "research")
		require.NoError(t, err)
		require.Len(t, instances, 1)
		assert.Equal(t, "master", instances[0].Slug)
	})

	t.Run("scope is required", func(t *testing.T) {
		t.Parallel()

		c := newClient(t, "http://127.0.0.1:1")

		_, err := c.Spaces().List(context.Background(), "")
		require.ErrorIs(t, err, nuvolos.ErrOrgRequired)

		_, err = c.Instances().List(context.Background(), "acme", "")
		require.ErrorIs(t, err, nuvolos.ErrSpaceRequired)
	})

	t.Run("segments are escaped", func(t *testing.T) {
		t.Parallel()

		server, _ := newServer(t, route{
			method: http.MethodGet,
			path:   "/instances/v1/acme/my%20space",
			body:   `{"data":[]}`,
		})

		instances, err := newClient(t, server.URL).Instances().List(context.Background(), "acme", "my space")
		require.NoError(t, err)
		assert.Empty(t, instances)
	})
}

func TestSnapshots(t *testing.T) {
	t.Parallel()

	t.Run("list", func(t *testing.T) {
		t.Parallel()

		server, _ := newServer(t, route{
			method: http.MethodGet,
			path:   "/snapshots/v1/acme/research/master",
			body:   `{"data":[{"snid":7,"slug":"nightly","name":"nightly"}]}`,
		})

		snapshots, err := newClient(t, server.URL).Snapshots().List(context.Background(), "acme", "research", "master")
		require.NoError(t, err)
		require.Len(t, snapshots, 1)
		assert.Equal(t, "nightly", snapshots[0].Name)
	})

	t.Run("create returns task", func(t *testing.T) {
		t.Parallel()

		server, _ := newServer(t, route{
			method: http.MethodPost,
			path:   "/snapshots/v1/acme/research/master",
			status: http.StatusAccepted,
			body:   `{"data":{"id":"task-1","status":"CREATED"}}`,
			check: func(t *testing.T, r *http.Request) {
				var req nuvolos.SnapshotCreateRequest
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "nightly", req.Name)
				assert.Equal(t, "before upgrade", req.Description)
			},
		})

		task, err := newClient(t, server.URL).Snapshots().Create(context.Background(), "acme", "research", "master",
			&nuvolos.SnapshotCreateRequest{Name: "nightly", Description: "before upgrade"})
		require.NoError(t, err)
		assert.Equal(t, "task-1", task.ID)
		assert.Equal(t, nuvolos.TaskStatusCreated, task.Status)
	})

	t.Run("create requires name", func(t *testing.T) {
		t.Parallel()

		_, err := newClient(t, "http://127.0.0.1:1").Snapshots().Create(context.Background(), "acme", "research", "master",
			&nuvolos.SnapshotCreateRequest{})
		require.ErrorIs(t, err, nuvolos.ErrSnapshotRequired)
	})

	t.Run("delete returns task", func(t *testing.T) {
		t.Parallel()

		server, _ := newServer(t, route{
			method: http.MethodDelete,
			path:   "/snapshots/v1/acme/research/master/nightly",
			status: http.StatusAccepted,
			body:   `{"data":{"id":"task-2","status":"QUEUED"}}`,
		})

		task, err := newClient(t, server.URL).Snapshots().Delete(context.Background(), "acme", "research", "master", "nightly")
		require.NoError(t, err)
		assert.Equal(t, "task-2", task.ID)
	})

	t.Run("instance scope is required", func(t *testing.T) {
		t.Parallel()

		_, err := newClient(t, "http://127.0.0.1:1").Snapshots().List(context.Background(), "acme", "research", "")
		require.ErrorIs(t, err, nuvolos.ErrInstanceRequired)
	})
}

func TestApps(t *testing.T) {
	t.Parallel()

	t.Run("list", func(t *testing.T) {
		t.Parallel()

		server, _ := newServer(t, route{
			method: http.MethodGet,
			path:   "/apps/v1/acme/research/master",
			body:   `{"data":[{"aid":3,"slug":"jupyterlab","name":"JupyterLab","type":"jupyter"}]}`,
		})

		apps, err := newClient(t, server.URL).Apps().List(context.Background(), "acme", "research", "master")
		require.NoError(t, err)
		require.Len(t, apps, 1)
		assert.Equal(t, "jupyterlab", apps[0].Slug)
	})

	for _, action := range []string{"start", "stop"} {
		t.Run(action, func(t *testing.T) {
			t.Parallel()

			server, hits := newServer(t, route{
				method: http.MethodPost,
				path:   "/apps/v1/acme/research/master/jupyterlab/" + action,
				status: http.StatusAccepted,
			})

			c := newClient(t, server.URL)

			var err error
			if action == "start" {
				err = c.Apps().Start(context.Background(), testRef)
			} else {
				err = c.Apps().Stop(context.Background(), testRef)
			}

			require.NoError(t, err)
			assert.Equal(t, int32(1), atomic.LoadInt32(hits))
		})
	}

	t.Run("start rejected", func(t *testing.T) {
		t.Parallel()

		server, _ := newServer(t, route{
			method: http.MethodPost,
			path:   "/apps/v1/acme/research/master/jupyterlab/start",
			status: http.StatusForbidden,
			body:   `{"error":"no seats left"}`,
		})

		err := newClient(t, server.URL).Apps().Start(context.Background(), testRef)
		require.Error(t, err)
		assert.True(t, nuvolos.IsForbidden(err))
		assert.Contains(t, err.Error(), "start application acme/research/master/jupyterlab")
		assert.Contains(t, err.Error(), "no seats left")
	})

	t.Run("incomplete reference", func(t *testing.T) {
		t.Parallel()

		err := newClient(t, "http://127.0.0.1:1").Apps().Start(context.Background(), nuvolos.AppRef{Org: "acme", Space: "research", Instance: "master"})
		require.ErrorIs(t, err, nuvolos.ErrAppRequired)
	})
}

func TestWorkloads(t *testing.T) {
	t.Parallel()

	t.Run("list all", func(t *testing.T) {
		t.Parallel()

		server, _ := newServer(t, route{
			method: http.MethodGet,
			path:   "/workloads/v1",
			body:   `{"data":[{"id":"wl-1","app_slug":"jupyterlab","status":"RUNNING"}]}`,
		})

		workloads, err := newClient(t, server.URL).Workloads().ListAll(context.Background())
		require.NoError(t, err)
		require.Len(t, workloads, 1)
		assert.Equal(t, nuvolos.WorkloadStatusRunning, workloads[0].Status)
	})

	t.Run("list for app", func(t *testing.T) {
		t.Parallel()

		server, _ := newServer(t, route{
			method: http.MethodGet,
			path:   "/workloads/v1/acme/research/master",
			query:  "app=jupyterlab",
			body:   `{"data":[{"id":"wl-1","status":"STARTING"}]}`,
		})

		workloads, err := newClient(t, server.URL).Workloads().ListForApp(context.Background(), testRef)
		require.NoError(t, err)
		require.Len(t, workloads, 1)
		assert.Equal(t, nuvolos.WorkloadStatusStarting, workloads[0].Status)
	})

	t.Run("execute", func(t *testing.T) {
		t.Parallel()

		server, _ := newServer(t, route{
			method: http.MethodPost,
			path:   "/workloads/v1/acme/research/master/jupyterlab/execute",
			body:   `{"data":{"stdout":"hello\n","stderr":"","exit_code":0}}`,
			check: func(t *testing.T, r *http.Request) {
				var req nuvolos.ExecRequest
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, []string{"echo", "hello"}, req.Command)
			},
		})

		result, err := newClient(t, server.URL).Workloads().Execute(context.Background(), testRef, []string{"echo", "hello"})
		require.NoError(t, err)
		assert.Equal(t, "hello\n", result.Stdout)
		assert.Equal(t, 0, result.ExitCode)
	})

	t.Run("execute requires command", func(t *testing.T) {
		t.Parallel()

		_, err := newClient(t, "http://127.0.0.1:1").Workloads().Execute(context.Background(), testRef, nil)
		require.ErrorIs(t, err, nuvolos.ErrCommandRequired)
	})
}

func TestTasks(t *testing.T) {
	t.Parallel()

	t.Run("get", func(t *testing.T) {
		t.Parallel()

		server, _ := newServer(t, route{
			method: http.MethodGet,
			path:   "/tasks/v1/task-1",
			body:   `{"data":{"id":"task-1","status":"FAILED","error":"disk full"}}`,
		})

		task, err := newClient(t, server.URL).Tasks().Get(context.Background(), "task-1")
		require.NoError(t, err)
		assert.Equal(t, nuvolos.TaskStatusFailed, task.Status)
		assert.Equal(t, "disk full", task.Error)
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()

		server, _ := newServer(t, route{
			method: http.MethodGet,
			path:   "/tasks/v1/task-1",
		})

		_, err := newClient(t, server.URL).Tasks().Get(context.Background(), "task-1")
		require.ErrorIs(t, err, nuvolos.ErrUnexpectedEmptyBody)
	})

	t.Run("null payload", func(t *testing.T) {
		t.Parallel()

		server, _ := newServer(t, route{
			method: http.MethodGet,
			path:   "/tasks/v1/task-1",
			body:   `{"data":null}`,
		})

		_, err := newClient(t, server.URL).Tasks().Get(context.Background(), "task-1")
		require.ErrorIs(t, err, nuvolos.ErrUnexpectedEmptyBody)
	})

	t.Run("requires id", func(t *testing.T) {
		t.Parallel()

		_, err := newClient(t, "http://127.0.0.1:1").Tasks().Get(context.Background(), "")
		require.ErrorIs(t, err, nuvolos.ErrTaskIDRequired)
	})
}

func TestStatusQueriesAreNotRetried(t *testing.T) {
	t.Parallel()

	t.Run("task", func(t *testing.T) {
		t.Parallel()

		server, hits := newServer(t, route{
			method: http.MethodGet,
			path:   "/tasks/v1/task-1",
			status: http.StatusServiceUnavailable,
		})

		_, err := newClient(t, server.URL).Tasks().Get(context.Background(), "task-1")
		var apiErr *nuvolos.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
		assert.Equal(t, int32(1), atomic.LoadInt32(hits))
	})

	t.Run("workloads of an app", func(t *testing.T) {
		t.Parallel()

		server, hits := newServer(t, route{
			method: http.MethodGet,
			path:   "/workloads/v1/acme/research/master",
			query:  "app=jupyterlab",
			status: http.StatusTooManyRequests,
		})

		_, err := newClient(t, server.URL).Workloads().ListForApp(context.Background(), testRef)
		require.Error(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(hits))
	})

	t.Run("listings keep transport retries", func(t *testing.T) {
		t.Parallel()

		server, hits := newServer(t, route{
			method: http.MethodGet,
			path:   "/orgs/v1",
			status: http.StatusServiceUnavailable,
		})

		_, err := newClient(t, server.URL).Orgs().List(context.Background())
		require.Error(t, err)
		assert.Equal(t, int32(4), atomic.LoadInt32(hits))
	})
}

func TestCaching(t *testing.T) {
	t.Parallel()

	t.Run("listings are served from the cache", func(t *testing.T) {
		t.Parallel()

		server, hits := newServer(t, route{
			method: http.MethodGet,
			path:   "/orgs/v1",
			body:   `{"data":[{"slug":"acme"}]}`,
		})

		c := newClient(t, server.URL, client.WithCache(cache.NewMemory(8), time.Minute))

		for range 3 {
			orgs, err := c.Orgs().List(context.Background())
			require.NoError(t, err)
			require.Len(t, orgs, 1)
		}

		assert.Equal(t, int32(1), atomic.LoadInt32(hits))
	})

	t.Run("status queries always reach the API", func(t *testing.T) {
		t.Parallel()

		server, hits := newServer(t, route{
			method: http.MethodGet,
			path:   "/workloads/v1/acme/research/master",
			query:  "app=jupyterlab",
			body:   `{"data":[]}`,
		})

		c := newClient(t, server.URL, client.WithCache(cache.NewMemory(8), time.Minute))

		for range 3 {
			_, err := c.Workloads().ListForApp(context.Background(), testRef)
			require.NoError(t, err)
		}

		assert.Equal(t, int32(3), atomic.LoadInt32(hits))
	})

	t.Run("errors are not cached", func(t *testing.T) {
		t.Parallel()

		server, hits := newServer(t, route{
			method: http.MethodGet,
			path:   "/spaces/v1/acme",
			status: http.StatusUnauthorized,
		})

		c := newClient(t, server.URL, client.WithCache(cache.NewMemory(8), time.Minute))

		for range 2 {
			_, err := c.Spaces().List(context.Background(), "acme")
			require.Error(t, err)
			assert.True(t, nuvolos.IsUnauthorized(err))
		}

		assert.Equal(t, int32(2), atomic.LoadInt32(hits))
	})
}
