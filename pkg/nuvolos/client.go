package nuvolos

import (
	"context"
	"time"
)

// Client is the entry point to the Nuvolos REST API.
type Client interface {
	Orgs() OrgsClient
	Spaces() SpacesClient
	Instances() InstancesClient
	Snapshots() SnapshotsClient
	Apps() AppsClient
	Workloads() WorkloadsClient
	Tasks() TasksClient
}

// OrgsClient lists organizations.
type OrgsClient interface {
	List(ctx context.Context) ([]Org, error)
	Get(ctx context.Context, slug string) (*Org, error)
}

// SpacesClient lists spaces of an organization.
type SpacesClient interface {
	List(ctx context.Context, org string) ([]Space, error)
}

// InstancesClient lists instances of a space.
type InstancesClient interface {
	List(ctx context.Context, org, space string) ([]Instance, error)
}

// SnapshotsClient manages instance snapshots. Create and Delete are
// asynchronous and return the platform task tracking them.
type SnapshotsClient interface {
	List(ctx context.Context, org, space, instance string) ([]Snapshot, error)
	Create(ctx context.Context, org, space, instance string, request *SnapshotCreateRequest) (*Task, error)
	Delete(ctx context.Context, org, space, instance, snapshot string) (*Task, error)
}

// AppsClient lists and controls applications.
type AppsClient interface {
	List(ctx context.Context, org, space, instance string) ([]App, error)
	Start(ctx context.Context, ref AppRef) error
	Stop(ctx context.Context, ref AppRef) error
}

// WorkloadsClient inspects running workloads.
type WorkloadsClient interface {
	ListAll(ctx context.Context) ([]Workload, error)
	ListForApp(ctx context.Context, ref AppRef) ([]Workload, error)
	Execute(ctx context.Context, ref AppRef, command []string) (*ExecResult, error)
}

// TasksClient fetches asynchronous tasks.
type TasksClient interface {
	Get(ctx context.Context, id string) (*Task, error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a Client.
type Config struct {
	// APIURL is the base URL of the Nuvolos API. A trailing slash is trimmed.
	APIURL string
	// APIKey is sent as "Authorization: basic <key>".
	APIKey string
	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// HTTPTimeout bounds a single request including transport retries.
	HTTPTimeout time.Duration
	// RetryMax is the number of transport-level retries for 429 and 5xx.
	RetryMax int
	// Logger is an optional structured logger used by the HTTP layer.
	Logger Logger
	// Debug enables request/response logging when a Logger is provided.
	Debug bool
}
