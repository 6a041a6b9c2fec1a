package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/nuvolos-cloud/nuvolos-cli/internal/constants"
)

// NATSConfig configures the JetStream key-value backend.
type NATSConfig struct {
	URL            string
	Bucket         string
	TTL            time.Duration
	ConnectTimeout time.Duration
}

// NATS stores entries in a JetStream key-value bucket shared between CLI
// invocations. The bucket TTL bounds how long entries survive on the server.
type NATS struct {
	conn *nats.Conn
	kv   jetstream.KeyValue
	now  func() time.Time
}

// NewNATS connects to cfg.URL and creates or updates the bucket.
func NewNATS(ctx context.Context, cfg NATSConfig) (*NATS, error) {
	if cfg.URL == "" {
		return nil, constants.ErrNATSURLRequired
	}

	if cfg.Bucket == "" {
		cfg.Bucket = constants.DefaultCacheBucket
	}

	if cfg.TTL <= 0 {
		cfg.TTL = constants.DefaultCacheTTL
	}

	opts := []nats.Option{nats.Name(constants.AppName)}
	if cfg.ConnectTimeout > 0 {
		opts = append(opts, nats.Timeout(cfg.ConnectTimeout))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", cfg.URL, err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      cfg.Bucket,
		Description: "nuvolos-cli listing cache",
		TTL:         cfg.TTL,
	})
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("opening key-value bucket %s: %w", cfg.Bucket, err)
	}

	return &NATS{conn: conn, kv: kv, now: time.Now}, nil
}

// Get fetches and decodes the entry stored under key.
func (c *NATS) Get(ctx context.Context, key string) (*Entry, error) {
	kve, err := c.kv.Get(ctx, bucketKey(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: key not found: %s", constants.ErrCacheMiss, key)
		}

		return nil, fmt.Errorf("reading cache key %s: %w", key, err)
	}

	var entry Entry
	if err := json.Unmarshal(kve.Value(), &entry); err != nil {
		return nil, fmt.Errorf("decoding cache entry %s: %w", key, err)
	}

	if entry.Expired(c.now()) {
		_ = c.Delete(ctx, key)

		return nil, fmt.Errorf("%w: entry expired: %s", constants.ErrCacheMiss, key)
	}

	return &entry, nil
}

// Set encodes and stores entry under key.
func (c *NATS) Set(ctx context.Context, key string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry %s: %w", key, err)
	}

	if _, err := c.kv.Put(ctx, bucketKey(key), data); err != nil {
		return fmt.Errorf("writing cache key %s: %w", key, err)
	}

	return nil
}

// Delete removes key. Missing keys are not an error.
func (c *NATS) Delete(ctx context.Context, key string) error {
	err := c.kv.Delete(ctx, bucketKey(key))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("deleting cache key %s: %w", key, err)
	}

	return nil
}

// Clear purges every key in the bucket.
func (c *NATS) Clear(ctx context.Context) error {
	lister, err := c.kv.ListKeys(ctx)
	if err != nil {
		return fmt.Errorf("listing cache keys: %w", err)
	}
	defer func() { _ = lister.Stop() }()

	for key := range lister.Keys() {
		if err := c.kv.Purge(ctx, key); err != nil {
			return fmt.Errorf("purging cache key %s: %w", key, err)
		}
	}

	return nil
}

// Has reports whether a live entry exists for key.
func (c *NATS) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Close drains the connection.
func (c *NATS) Close() error {
	if err := c.conn.Drain(); err != nil {
		return fmt.Errorf("draining NATS connection: %w", err)
	}

	return nil
}

// bucketKey maps an arbitrary key onto the key-value alphabet.
func bucketKey(key string) string {
	sum := sha256.Sum256([]byte(key))

	return hex.EncodeToString(sum[:])
}
