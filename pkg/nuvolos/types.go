package nuvolos

import (
	"encoding/json"
	"time"
)

// DataResponse is the envelope every Nuvolos API payload is wrapped in.
type DataResponse[T any] struct {
	Data T `json:"data" yaml:"data"`
}

// Org represents a Nuvolos organization.
type Org struct {
	OID         int    `json:"oid"                   yaml:"oid"`
	Slug        string `json:"slug"                  yaml:"slug"`
	Name        string `json:"name"                  yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Space represents a space inside an organization.
type Space struct {
	SID         int    `json:"sid"                   yaml:"sid"`
	OID         int    `json:"oid"                   yaml:"oid"`
	Slug        string `json:"slug"                  yaml:"slug"`
	Name        string `json:"name"                  yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Instance represents an instance inside a space.
type Instance struct {
	IID         int    `json:"iid"                   yaml:"iid"`
	SID         int    `json:"sid"                   yaml:"sid"`
	Slug        string `json:"slug"                  yaml:"slug"`
	Name        string `json:"name"                  yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Snapshot represents a point-in-time snapshot of an instance.
type Snapshot struct {
	SnID        int        `json:"snid"                  yaml:"snid"`
	IID         int        `json:"iid"                   yaml:"iid"`
	Slug        string     `json:"slug"                  yaml:"slug"`
	Name        string     `json:"name"                  yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"  yaml:"created_at,omitempty"`
}

// SnapshotCreateRequest is the body of a snapshot creation call.
type SnapshotCreateRequest struct {
	Name        string `json:"name"                  yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// App represents an application installed in an instance.
type App struct {
	AID         int    `json:"aid"                   yaml:"aid"`
	Slug        string `json:"slug"                  yaml:"slug"`
	Name        string `json:"name"                  yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Type        string `json:"type,omitempty"        yaml:"type,omitempty"`
}

// Workload is a scheduled, running or starting copy of an application.
type Workload struct {
	ID           string     `json:"id"                   yaml:"id"`
	OrgSlug      string     `json:"org_slug"             yaml:"org_slug"`
	SpaceSlug    string     `json:"space_slug"           yaml:"space_slug"`
	InstanceSlug string     `json:"instance_slug"        yaml:"instance_slug"`
	AppSlug      string     `json:"app_slug"             yaml:"app_slug"`
	Status       string     `json:"status"               yaml:"status"`
	StartedAt    *time.Time `json:"started_at,omitempty" yaml:"started_at,omitempty"`
}

// Workload statuses reported by the platform. Any other value means the
// workload is still coming up.
const (
	WorkloadStatusStarting = "STARTING"
	WorkloadStatusRunning  = "RUNNING"
)

// Task is a long-running asynchronous platform operation such as a snapshot
// creation or deletion.
type Task struct {
	ID        string          `json:"id"                   yaml:"id"`
	Status    string          `json:"status"               yaml:"status"`
	Operation string          `json:"operation,omitempty"  yaml:"operation,omitempty"`
	Error     string          `json:"error,omitempty"      yaml:"error,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"     yaml:"-"`
	CreatedAt *time.Time      `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Task statuses.
const (
	TaskStatusCreated   = "CREATED"
	TaskStatusQueued    = "QUEUED"
	TaskStatusRunning   = "RUNNING"
	TaskStatusCompleted = "COMPLETED"
	TaskStatusFailed    = "FAILED"
	TaskStatusCancelled = "CANCELLED"
)

// ExecRequest is the body of a command execution call.
type ExecRequest struct {
	Command []string `json:"command" yaml:"command"`
}

// ExecResult is the captured outcome of a command executed in a workload.
type ExecResult struct {
	Stdout   string `json:"stdout"    yaml:"stdout"`
	Stderr   string `json:"stderr"    yaml:"stderr"`
	ExitCode int    `json:"exit_code" yaml:"exit_code"`
}

// AppRef locates an application inside the org/space/instance hierarchy.
type AppRef struct {
	Org      string `json:"org"      yaml:"org"`
	Space    string `json:"space"    yaml:"space"`
	Instance string `json:"instance" yaml:"instance"`
	App      string `json:"app"      yaml:"app"`
}

// String renders the reference as org/space/instance/app.
func (r AppRef) String() string {
	return r.Org + "/" + r.Space + "/" + r.Instance + "/" + r.App
}
