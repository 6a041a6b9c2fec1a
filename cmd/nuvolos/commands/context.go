package commands

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/nuvolos-cloud/nuvolos-cli/internal/cache"
	"github.com/nuvolos-cloud/nuvolos-cli/internal/client"
	"github.com/nuvolos-cloud/nuvolos-cli/internal/constants"
	"github.com/nuvolos-cloud/nuvolos-cli/internal/logging"
	"github.com/nuvolos-cloud/nuvolos-cli/internal/wait"
	"github.com/nuvolos-cloud/nuvolos-cli/pkg/nuvolos"
)

// ClientFactory builds the API client for a command invocation.
type ClientFactory func(ctx context.Context, c *Context) (nuvolos.Client, error)

// Context carries everything a command needs. It is built once in main and
// handed to every command constructor.
type Context struct {
	Version string
	Commit  string
	Date    string

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Viper holds flags, environment and config file values.
	Viper *viper.Viper
	// Logger is replaced with a configured logrus logger before each run.
	Logger nuvolos.Logger
	Clock  wait.Clock

	NewClient ClientFactory

	// HomeDir locates the default config directory.
	HomeDir func() (string, error)
	// SecretPath is read for the API key when none is configured.
	SecretPath string
	// IsTerminal reports whether In is an interactive terminal.
	IsTerminal func() bool
	// ReadSecret reads a line from the terminal without echo.
	ReadSecret func() (string, error)

	mu     sync.Mutex
	client nuvolos.Client
	// outMu serializes status lines written by concurrent waits.
	outMu sync.Mutex
}

// NewContext returns a Context wired to the process's standard streams.
func NewContext(version, commit, date string) *Context {
	return &Context{
		Version:    version,
		Commit:     commit,
		Date:       date,
		In:         os.Stdin,
		Out:        os.Stdout,
		Err:        os.Stderr,
		Viper:      viper.New(),
		Logger:     logging.Discard(),
		Clock:      wait.RealClock(),
		NewClient:  DefaultClientFactory,
		HomeDir:    os.UserHomeDir,
		SecretPath: constants.APIKeySecretPath,
		IsTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
		ReadSecret: func() (string, error) {
			secret, err := term.ReadPassword(int(os.Stdin.Fd()))

			return string(secret), err
		},
	}
}

// Client returns the API client, creating it on first use.
func (c *Context) Client(ctx context.Context) (nuvolos.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	apiClient, err := c.NewClient(ctx, c)
	if err != nil {
		return nil, err
	}

	c.client = apiClient

	return apiClient, nil
}

// Close releases the API client's resources.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	closer, ok := c.client.(io.Closer)
	if !ok {
		return nil
	}

	c.client = nil

	return closer.Close()
}

// DefaultClientFactory builds the REST client from the effective settings.
// An unreachable cache backend is logged and caching is disabled.
func DefaultClientFactory(ctx context.Context, c *Context) (nuvolos.Client, error) {
	apiKey, err := c.APIKey()
	if err != nil {
		return nil, err
	}

	cacheConfig, err := c.cacheConfig()
	if err != nil {
		return nil, err
	}

	store, err := cache.New(ctx, cacheConfig)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without it", map[string]interface{}{
			"type":  string(cacheConfig.Type),
			"error": err.Error(),
		})

		store = cache.NewNoOp()
	}

	apiClient, err := client.New(&nuvolos.Config{
		APIURL:    c.Viper.GetString(keyAPIURL),
		APIKey:    apiKey,
		UserAgent: constants.AppName + "/" + c.Version,
		Logger:    c.Logger,
		Debug:     c.Viper.GetBool(keyVerbose),
	}, client.WithCache(store, cacheConfig.TTL))
	if err != nil {
		_ = store.Close()

		return nil, err
	}

	return apiClient, nil
}
