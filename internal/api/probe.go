package api

import (
	"context"
	"net/http"
	"time"

	"github.com/kapu/messenger-api-go/internal/constants"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// ProbeResult describes whether an environment answered at all. Any HTTP
// status counts as reachable.
type ProbeResult struct {
	Environment Environment
	BaseURL     string
	Reachable   bool
	StatusCode  int
	Latency     time.Duration
	Err         error
}

// Ping issues a GET against the base URL, bypassing the circuit breaker.
func (c *Client) Ping(ctx context.Context) ProbeResult {
	result := ProbeResult{
		Environment: c.env,
		BaseURL:     c.baseURL,
	}

	ctx, cancel := context.WithTimeout(ctx, constants.ProbeConfig.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		result.Err = err
		return result
	}
	req.Header.Set("User-Agent", constants.APIConfig.UserAgent)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	result.Latency = time.Since(started)
	if err != nil {
		result.Err = err
		return result
	}
	resp.Body.Close()

	result.Reachable = true
	result.StatusCode = resp.StatusCode
	return result
}

// Probe pings every client concurrently. Results keep the order of clients.
func Probe(ctx context.Context, clients []*Client, logger *zap.Logger) []ProbeResult {
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]ProbeResult, len(clients))
	p := pool.New().WithMaxGoroutines(constants.ProbeConfig.Concurrency)

	for idx, client := range clients {
		idx, client := idx, client
		p.Go(func() {
			results[idx] = client.Ping(ctx)
		})
	}
	p.Wait()

	for _, r := range results {
		if r.Reachable {
			logger.Info("Environment reachable",
				zap.String("environment", r.Environment.String()),
				zap.Int("status", r.StatusCode),
				zap.Duration("latency", r.Latency),
			)
		} else {
			logger.Warn("Environment unreachable",
				zap.String("environment", r.Environment.String()),
				zap.Error(r.Err),
			)
		}
	}

	return results
}
