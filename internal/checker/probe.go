// Package checker probes monitored services and records the outcome.
package checker

import (
	"context"
	"io"
	"net/http"
	"time"
)

// DefaultProbeTimeout bounds one service probe.
const DefaultProbeTimeout = 5 * time.Second

type ProbeResult struct {
	StatusCode int
	Duration   time.Duration
	Err        error
}

// Up reports a 2xx response.
func (r ProbeResult) Up() bool {
	return r.Err == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Prober issues bounded GET requests.
type Prober struct {
	client *http.Client
}

func NewProber(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &Prober{client: &http.Client{Timeout: timeout}}
}

// Probe GETs url and measures the round trip. Transport failures, including
// timeouts, are returned in Err rather than as an error.
func (p *Prober) Probe(ctx context.Context, url string) ProbeResult {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ProbeResult{Err: err, Duration: time.Since(start)}
	}
	req.Header.Set("User-Agent", "LogWise-Monitor/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return ProbeResult{Err: err, Duration: time.Since(start)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	return ProbeResult{StatusCode: resp.StatusCode, Duration: time.Since(start)}
}
