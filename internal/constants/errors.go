package constants

import "errors"

// Configuration errors.
var (
	ErrUnknownConfigKey     = errors.New("unknown configuration key")
	ErrInvalidDuration      = errors.New("invalid duration")
	ErrInvalidOutputFormat  = errors.New("invalid output format (expected table, json or yaml)")
	ErrAPIKeyEmpty          = errors.New("API key must not be empty")
	ErrConfigAlreadyExists  = errors.New("configuration already exists, use `nuvolos config set api_key` to change the key")
	ErrNoTerminalForPrompt  = errors.New("no API key given and standard input is not a terminal")
	ErrUnsupportedCacheType = errors.New("unsupported cache type")
	ErrNATSURLRequired      = errors.New("cache.nats_url is required for the nats cache")
	ErrCacheMiss            = errors.New("cache miss")
	ErrCacheDisabled        = errors.New("cache disabled")
)

// Command errors.
var (
	ErrSpaceNotFound       = errors.New("space not found in organization")
	ErrInstanceNotFound    = errors.New("instance not found in space")
	ErrRemoteCommandFailed = errors.New("remote command failed")
)
