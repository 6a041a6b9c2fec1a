package nuvolos

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is returned by the REST client for every non-2xx response. The
// request method and URL are recorded where the request was made.
type APIError struct {
	StatusCode int    `json:"status_code" yaml:"status_code"`
	Reason     string `json:"reason"      yaml:"reason"`
	Body       string `json:"body"        yaml:"body"`
	Method     string `json:"method"      yaml:"method"`
	URL        string `json:"url"         yaml:"url"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	var b strings.Builder

	if e.Method != "" || e.URL != "" {
		_, _ = fmt.Fprintf(&b, "%s %s: ", e.Method, e.URL)
	}

	_, _ = fmt.Fprintf(&b, "(%d) %s", e.StatusCode, e.Reason)

	if body := strings.TrimSpace(e.Body); body != "" {
		b.WriteString(": ")
		b.WriteString(body)
	}

	return b.String()
}

// NewAPIError builds an APIError, deriving the reason phrase from the status
// code when none is given.
func NewAPIError(method, url string, statusCode int, reason string, body []byte) *APIError {
	if reason == "" {
		reason = http.StatusText(statusCode)
	}

	return &APIError{
		StatusCode: statusCode,
		Reason:     reason,
		Body:       string(body),
		Method:     method,
		URL:        url,
	}
}

// Static errors that can be wrapped with context.
var (
	ErrAPIKeyRequired      = errors.New("the Nuvolos API key must be set either as the NUVOLOS_API_KEY environment variable or with the `nuvolos config --api-key` command")
	ErrAPIURLRequired      = errors.New("API URL is required")
	ErrOrgRequired         = errors.New("organization is required (use --org or `nuvolos orgs use`)")
	ErrSpaceRequired       = errors.New("space is required (use --space or `nuvolos spaces use`)")
	ErrInstanceRequired    = errors.New("instance is required (use --instance or `nuvolos instances use`)")
	ErrAppRequired         = errors.New("application is required")
	ErrTaskIDRequired      = errors.New("task id is required")
	ErrSnapshotRequired    = errors.New("snapshot is required")
	ErrCommandRequired     = errors.New("command is required")
	ErrUnexpectedEmptyBody = errors.New("unexpected empty response body")
)

// IsNotFound checks if the error is a 404 from the API.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error is a 401 from the API.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden checks if the error is a 403 from the API.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

func hasStatus(err error, status int) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}

	return false
}
