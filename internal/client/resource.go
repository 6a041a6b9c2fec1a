package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nuvolos-cloud/nuvolos-cli/internal/cache"
	"github.com/nuvolos-cloud/nuvolos-cli/internal/http"
	"github.com/nuvolos-cloud/nuvolos-cli/pkg/nuvolos"
)

// resource is shared by the per-resource clients.
type resource struct {
	http      *http.Client
	poll      *http.Client
	cache     cache.Cache
	ttl       time.Duration
	now       func() time.Time
	keyPrefix string
	logger    nuvolos.Logger
}

// apiPath joins escaped path segments under an API prefix such as "orgs/v1".
func apiPath(prefix string, segments ...string) string {
	var b strings.Builder

	b.WriteString("/")
	b.WriteString(prefix)

	for _, segment := range segments {
		b.WriteString("/")
		b.WriteString(url.PathEscape(segment))
	}

	return b.String()
}

// decodeData unwraps the {"data": ...} envelope.
func decodeData[T any](body []byte) (T, error) {
	var envelope nuvolos.DataResponse[T]

	if len(body) == 0 {
		return envelope.Data, nuvolos.ErrUnexpectedEmptyBody
	}

	if err := json.Unmarshal(body, &envelope); err != nil {
		return envelope.Data, fmt.Errorf("parsing response: %w", err)
	}

	return envelope.Data, nil
}

// get fetches path and decodes its payload.
func get[T any](ctx context.Context, r *resource, path string, query url.Values) (T, error) {
	return fetch[T](ctx, r.http, path, query)
}

// getStatus is get for the status queries behind the waits. It bypasses the
// cache and makes exactly one attempt, so each poll tick is one request.
func getStatus[T any](ctx context.Context, r *resource, path string, query url.Values) (T, error) {
	return fetch[T](ctx, r.poll, path, query)
}

func fetch[T any](ctx context.Context, c *http.Client, path string, query url.Values) (T, error) {
	resp, err := c.Get(ctx, path, query)
	if err != nil {
		var zero T

		return zero, err
	}

	return decodeData[T](resp.Body)
}

// getCached is get for listings that may be served from the cache.
func getCached[T any](ctx context.Context, r *resource, path string) (T, error) {
	key := r.keyPrefix + path

	if entry, err := r.cache.Get(ctx, key); err == nil {
		data, decodeErr := decodeData[T](entry.Data)
		if decodeErr == nil {
			r.debug("cache hit", map[string]interface{}{"path": path})

			return data, nil
		}

		_ = r.cache.Delete(ctx, key)
	}

	resp, err := r.http.Get(ctx, path, nil)
	if err != nil {
		var zero T

		return zero, err
	}

	data, err := decodeData[T](resp.Body)
	if err != nil {
		return data, err
	}

	if err := r.cache.Set(ctx, key, &cache.Entry{Data: resp.Body, ExpiresAt: r.now().Add(r.ttl)}); err != nil {
		r.debug("cache write failed", map[string]interface{}{"path": path, "error": err.Error()})
	}

	return data, nil
}

// post sends body to path and decodes the payload of the response.
func post[T any](ctx context.Context, r *resource, path string, body interface{}) (T, error) {
	resp, err := r.http.Post(ctx, path, body)
	if err != nil {
		var zero T

		return zero, err
	}

	return decodeData[T](resp.Body)
}

func del[T any](ctx context.Context, r *resource, path string) (T, error) {
	resp, err := r.http.Delete(ctx, path)
	if err != nil {
		var zero T

		return zero, err
	}

	return decodeData[T](resp.Body)
}

func (r *resource) debug(msg string, fields map[string]interface{}) {
	if r.logger != nil {
		r.logger.Debug(msg, fields)
	}
}

func requireRef(ref nuvolos.AppRef) error {
	switch {
	case ref.Org == "":
		return nuvolos.ErrOrgRequired
	case ref.Space == "":
		return nuvolos.ErrSpaceRequired
	case ref.Instance == "":
		return nuvolos.ErrInstanceRequired
	case ref.App == "":
		return nuvolos.ErrAppRequired
	}

	return nil
}
