package out

import (
	"net/http"
	"strings"
	"time"
)

// HTTPConfig is shared by the collector transports.
type HTTPConfig struct {
	Endpoint string
	// Timeout of zero leaves the call without a deadline.
	Timeout time.Duration
	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

func (c HTTPConfig) endpoint() string {
	return strings.TrimSpace(c.Endpoint)
}

func (c HTTPConfig) client() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return &http.Client{Timeout: c.Timeout}
}

// drainLimit caps how much of a response body is read before closing.
const drainLimit = 64 << 10
