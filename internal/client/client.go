package client

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/nuvolos-cloud/nuvolos-cli/internal/cache"
	"github.com/nuvolos-cloud/nuvolos-cli/internal/constants"
	"github.com/nuvolos-cloud/nuvolos-cli/internal/http"
	"github.com/nuvolos-cloud/nuvolos-cli/pkg/nuvolos"
)

// Client implements nuvolos.Client.
type Client struct {
	httpClient *http.Client
	pollClient *http.Client
	extraHTTP  []http.Option
	logger     nuvolos.Logger

	cache    cache.Cache
	cacheTTL time.Duration
	now      func() time.Time

	orgs      *OrgsClient
	spaces    *SpacesClient
	instances *InstancesClient
	snapshots *SnapshotsClient
	apps      *AppsClient
	workloads *WorkloadsClient
	tasks     *TasksClient
}

var _ nuvolos.Client = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithCache serves listing requests from c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(client *Client) {
		client.cache = c
		if ttl > 0 {
			client.cacheTTL = ttl
		}
	}
}

// WithHTTPOptions passes extra options to the HTTP layer.
func WithHTTPOptions(opts ...http.Option) Option {
	return func(client *Client) {
		client.extraHTTP = append(client.extraHTTP, opts...)
	}
}

// New creates a Nuvolos API client.
func New(config *nuvolos.Config, opts ...Option) (*Client, error) {
	if config == nil || config.APIURL == "" {
		return nil, nuvolos.ErrAPIURLRequired
	}

	if config.APIKey == "" {
		return nil, nuvolos.ErrAPIKeyRequired
	}

	client := &Client{
		logger:   config.Logger,
		cache:    cache.NewNoOp(),
		cacheTTL: constants.DefaultCacheTTL,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(client)
	}

	httpOpts := []http.Option{
		http.WithUserAgent(config.UserAgent),
		http.WithTimeout(config.HTTPTimeout),
		http.WithDebug(config.Debug),
	}

	if config.RetryMax > 0 {
		httpOpts = append(httpOpts, http.WithRetryMax(config.RetryMax))
	}

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	httpOpts = append(httpOpts, client.extraHTTP...)
	client.httpClient = http.NewClient(config.APIURL, config.APIKey, httpOpts...)
	// Status queries are repeated by the waits on their own schedule.
	client.pollClient = http.NewClient(config.APIURL, config.APIKey, append(httpOpts, http.WithRetryMax(0))...)

	base := &resource{
		http:      client.httpClient,
		poll:      client.pollClient,
		cache:     client.cache,
		ttl:       client.cacheTTL,
		now:       client.now,
		keyPrefix: cacheKeyPrefix(config.APIURL, config.APIKey),
		logger:    client.logger,
	}

	client.orgs = &OrgsClient{base}
	client.spaces = &SpacesClient{base}
	client.instances = &InstancesClient{base}
	client.snapshots = &SnapshotsClient{base}
	client.apps = &AppsClient{base}
	client.workloads = &WorkloadsClient{base}
	client.tasks = &TasksClient{base}

	return client, nil
}

// Orgs returns the organizations client.
func (c *Client) Orgs() nuvolos.OrgsClient { return c.orgs }

// Spaces returns the spaces client.
func (c *Client) Spaces() nuvolos.SpacesClient { return c.spaces }

// Instances returns the instances client.
func (c *Client) Instances() nuvolos.InstancesClient { return c.instances }

// Snapshots returns the snapshots client.
func (c *Client) Snapshots() nuvolos.SnapshotsClient { return c.snapshots }

// Apps returns the applications client.
func (c *Client) Apps() nuvolos.AppsClient { return c.apps }

// Workloads returns the workloads client.
func (c *Client) Workloads() nuvolos.WorkloadsClient { return c.workloads }

// Tasks returns the tasks client.
func (c *Client) Tasks() nuvolos.TasksClient { return c.tasks }

// Close releases the cache backend.
func (c *Client) Close() error {
	return c.cache.Close()
}

// cacheKeyPrefix scopes cached listings to one API endpoint and key.
func cacheKeyPrefix(apiURL, apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))

	return apiURL + "|" + hex.EncodeToString(sum[:4]) + "|"
}
