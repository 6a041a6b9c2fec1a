package commands_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/nuvolos-cloud/nuvolos-cli/cmd/nuvolos/commands"
)

// reply is one canned API response.
type reply struct {
	status int
	body   string
}

func ok(body string) reply { return reply{status: http.StatusOK, body: body} }

// fakeAPI serves queued replies per "METHOD /path?query" route. The last
// reply of a route repeats.
type fakeAPI struct {
	mu      sync.Mutex
	replies map[string][]reply
	calls   map[string]int
	bodies  map[string][]string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		replies: map[string][]reply{},
		calls:   map[string]int{},
		bodies:  map[string][]string{},
	}
}

func (f *fakeAPI) on(route string, replies ...reply) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.replies[route] = append(f.replies[route], replies...)
}

func (f *fakeAPI) count(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[route]
}

func (f *fakeAPI) lastBody(route string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	bodies := f.bodies[route]
	if len(bodies) == 0 {
		return ""
	}

	return bodies[len(bodies)-1]
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.EscapedPath()
	if r.URL.RawQuery != "" {
		route += "?" + r.URL.RawQuery
	}

	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls[route]++
	f.bodies[route] = append(f.bodies[route], string(body))

	queue := f.replies[route]

	var next reply

	switch {
	case len(queue) == 0:
		next = reply{status: http.StatusNotFound, body: `{"error":"no route ` + route + `"}`}
	case len(queue) == 1:
		next = queue[0]
	default:
		next = queue[0]
		f.replies[route] = queue[1:]
	}
	f.mu.Unlock()

	if r.Header.Get("Authorization") != "basic test-key" {
		w.WriteHeader(http.StatusUnauthorized)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(next.status)
	_, _ = io.WriteString(w, next.body)
}

// fakeClock advances only when slept on.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps int
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
	c.sleeps++

	return nil
}

func (c *fakeClock) sleepCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.sleeps
}

// testEnv is a CLI wired to a fake API, a temporary home and buffers.
type testEnv struct {
	t      *testing.T
	api    *fakeAPI
	server *httptest.Server
	home   string
	clock  *fakeClock
	ctx    *commands.Context
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	api := newFakeAPI()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	env := &testEnv{
		t:      t,
		api:    api,
		server: server,
		home:   t.TempDir(),
		clock:  newFakeClock(),
	}
	env.reset()

	return env
}

// reset gives the next run a fresh Context.
func (e *testEnv) reset() {
	e.out = &bytes.Buffer{}
	e.errOut = &bytes.Buffer{}

	c := commands.NewContext("1.2.3", "abc123", "2024-05-01")
	c.In = strings.NewReader("")
	c.Out = e.out
	c.Err = e.errOut
	c.Clock = e.clock
	c.HomeDir = func() (string, error) { return e.home, nil }
	c.SecretPath = ""
	c.IsTerminal = func() bool { return false }

	e.ctx = c
}

func (e *testEnv) configPath() string {
	return filepath.Join(e.home, ".nuvolos", "config.yaml")
}

func (e *testEnv) writeConfig(content string) {
	e.t.Helper()

	require.NoError(e.t, os.MkdirAll(filepath.Dir(e.configPath()), 0o750))
	require.NoError(e.t, os.WriteFile(e.configPath(), []byte(content), 0o600))
}

func (e *testEnv) readConfig() string {
	e.t.Helper()

	data, err := os.ReadFile(e.configPath())
	require.NoError(e.t, err)

	return string(data)
}

// withKey writes a config holding the test API key plus extra lines.
func (e *testEnv) withKey(extra ...string) *testEnv {
	e.writeConfig("api_key: test-key\n" + strings.Join(extra, "\n") + "\n")

	return e
}

// run executes the CLI with a fresh Context.
func (e *testEnv) run(args ...string) error {
	e.t.Helper()

	e.reset()

	root := commands.NewRootCommand(e.ctx)
	root.SetArgs(append([]string{"--api-url", e.server.URL, "--no-color"}, args...))

	err := root.ExecuteContext(context.Background())
	_ = e.ctx.Close()

	return err
}

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

// newRootFor builds a root command around the env's current Context
// without resetting it.
func newRootFor(e *testEnv) *cobra.Command {
	return commands.NewRootCommand(e.ctx)
}
