// Package cache holds short-lived copies of API listings (orgs, spaces,
// instances, apps) so repeated drill-down commands do not refetch them.
// Status queries made while waiting are never cached.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/nuvolos-cloud/nuvolos-cli/internal/constants"
)

// Type names a cache backend.
type Type string

const (
	// TypeNone disables caching.
	TypeNone Type = "none"

	// TypeMemory keeps entries in process memory.
	TypeMemory Type = "memory"

	// TypeNATS stores entries in a NATS JetStream key-value bucket.
	TypeNATS Type = "nats"
)

// Entry is a cached response body.
type Entry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry is stale at now.
func (e *Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// Cache is implemented by every backend.
type Cache interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry *Entry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Type    Type
	NATSURL string
	Bucket  string
	TTL     time.Duration
	MaxSize int
}

// DefaultConfig returns a disabled cache configuration.
func DefaultConfig() Config {
	return Config{
		Type:    TypeNone,
		Bucket:  constants.DefaultCacheBucket,
		TTL:     constants.DefaultCacheTTL,
		MaxSize: constants.DefaultCacheSize,
	}
}

// New builds the backend named by cfg.Type. An empty type disables caching.
func New(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Type {
	case TypeNone, "":
		return NewNoOp(), nil

	case TypeMemory:
		return NewMemory(cfg.MaxSize), nil

	case TypeNATS:
		if cfg.NATSURL == "" {
			return nil, constants.ErrNATSURLRequired
		}

		return NewNATS(ctx, NATSConfig{URL: cfg.NATSURL, Bucket: cfg.Bucket, TTL: cfg.TTL})

	default:
		return nil, fmt.Errorf("%w: %s", constants.ErrUnsupportedCacheType, cfg.Type)
	}
}

// NoOp caches nothing.
type NoOp struct{}

// NewNoOp creates a cache that never stores anything.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Get always fails with constants.ErrCacheDisabled.
func (c *NoOp) Get(ctx context.Context, key string) (*Entry, error) {
	return nil, constants.ErrCacheDisabled
}

// Set does nothing.
func (c *NoOp) Set(ctx context.Context, key string, entry *Entry) error {
	return nil
}

// Delete does nothing.
func (c *NoOp) Delete(ctx context.Context, key string) error {
	return nil
}

// Clear does nothing.
func (c *NoOp) Clear(ctx context.Context) error {
	return nil
}

// Has always returns false.
func (c *NoOp) Has(ctx context.Context, key string) bool {
	return false
}

// Close does nothing.
func (c *NoOp) Close() error {
	return nil
}
