// Package netx provides connectivity probing for the sync engine. The probe
// is the single source of the online/offline signal: the orchestrator, the
// mutation router, and the watcher all consult it.
package netx

import (
	"context"
	"net/http"
	"time"
)

// Probe reports whether the remote endpoint is currently reachable.
type Probe interface {
	Online(ctx context.Context) bool
}

// HTTPProbe checks reachability with a HEAD request against the endpoint
// base URL. Any response counts as reachable; only transport failure or a
// timeout means offline.
type HTTPProbe struct {
	url     string
	client  *http.Client
	timeout time.Duration
}

func NewHTTPProbe(baseURL string, timeout time.Duration) *HTTPProbe {
	return &HTTPProbe{url: baseURL, client: &http.Client{}, timeout: timeout}
}

func (p *HTTPProbe) Online(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return true
}

// StaticProbe always reports the same state. Useful in tests and for
// forcing offline mode from the CLI.
type StaticProbe bool

func (p StaticProbe) Online(context.Context) bool { return bool(p) }
