package wait_test

import (
	"context"
	"time"

	"github.com/nuvolos-cloud/nuvolos-cli/pkg/nuvolos"
	"github.com/stretchr/testify/mock"
)

var epoch = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

// fakeClock advances only when Sleep is called (or when a test moves it).
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: epoch}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)

	return nil
}

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// taskSequence returns the given tasks in order, repeating the last one.
type taskSequence struct {
	tasks []nuvolos.Task
	calls int
}

func (s *taskSequence) Get(ctx context.Context, id string) (*nuvolos.Task, error) {
	i := s.calls
	if i >= len(s.tasks) {
		i = len(s.tasks) - 1
	}

	s.calls++
	task := s.tasks[i]
	task.ID = id

	return &task, nil
}

// workloadSequence returns the given listings in order, repeating the last one.
type workloadSequence struct {
	listings [][]nuvolos.Workload
	calls    int
}

func (s *workloadSequence) ListForApp(ctx context.Context, ref nuvolos.AppRef) ([]nuvolos.Workload, error) {
	i := s.calls
	if i >= len(s.listings) {
		i = len(s.listings) - 1
	}

	s.calls++

	return s.listings[i], nil
}

type mockLogger struct {
	mock.Mock
}

func (m *mockLogger) Debug(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *mockLogger) Info(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *mockLogger) Warn(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *mockLogger) Error(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

var testRef = nuvolos.AppRef{Org: "acme", Space: "research", Instance: "master", App: "jupyterlab"}
