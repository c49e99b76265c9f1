package core

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ProbeOptions controls dry-run probing of remote URLs.
type ProbeOptions struct {
	// Timeout is the per-URL request deadline. If <= 0, a default is used.
	Timeout time.Duration
	// RateLimit caps probe requests per second. 0 disables throttling.
	RateLimit float64
	// UserAgent overrides the User-Agent header.
	UserAgent string
	// Client optionally overrides the HTTP client, mainly for tests.
	Client *http.Client
	// OnProbe, if set, is called after each URL is checked.
	OnProbe func(url string, result ProbeResult)
}

// ProbeResult is the outcome of one metadata-only existence check.
type ProbeResult struct {
	// Size is the reported content length in bytes; 0 means unknown.
	Size int64 `json:"size"`
	// ContentType is the reported content type, if any.
	ContentType string `json:"content_type,omitempty"`
	// Error is a per-URL failure description; empty means the probe
	// succeeded with HTTP 200.
	Error string `json:"error,omitempty"`
}

// ProbeURLs issues one metadata-only request per URL, sequentially, and
// returns a per-URL result plus the summed size of the successful subset.
// Errors and non-200 responses are reported per URL, never raised, and
// nothing is written anywhere: the dry run is a read-only side path.
func ProbeURLs(ctx context.Context, urls []string, opts ProbeOptions) (map[string]ProbeResult, int64) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultProbeTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	results := make(map[string]ProbeResult, len(urls))
	var totalSize int64

	for _, u := range urls {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				results[u] = ProbeResult{Error: err.Error()}
				continue
			}
		}

		result := probeOne(ctx, client, u, opts)
		results[u] = result
		if result.Error == "" {
			totalSize += result.Size
		}
		if opts.OnProbe != nil {
			opts.OnProbe(u, result)
		}
	}

	return results, totalSize
}

func probeOne(ctx context.Context, client *http.Client, urlStr string, opts ProbeOptions) ProbeResult {
	probeCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	status, length, contentType, err := headRemote(probeCtx, client, urlStr, opts.UserAgent)
	if err != nil {
		return ProbeResult{Error: err.Error()}
	}
	if status != http.StatusOK {
		return ProbeResult{Error: fmt.Sprintf("HTTP %d", status)}
	}

	if length < 0 {
		length = 0
	}
	return ProbeResult{Size: length, ContentType: contentType}
}
