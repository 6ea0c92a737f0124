package probe

import (
	"context"
	"io"
	"net/http"
	"time"
)

// DefaultUserAgent identifies probe requests in target access logs.
const DefaultUserAgent = "uptimereport-probe/1.0"

// HTTPChecker issues a GET against the target URL. Redirects are not
// followed so that a 3xx from the target itself counts as an answer.
type HTTPChecker struct {
	Client    *http.Client
	UserAgent string
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	return &HTTPChecker{
		Client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		UserAgent: DefaultUserAgent,
	}
}

func httpFailure(msg string, latency float64, at time.Time) CheckResult {
	return CheckResult{Name: "HTTP", Message: msg, LatencyMS: latency, CheckedAt: at}
}

// Check treats any 2xx or 3xx answer as up.
func (h *HTTPChecker) Check(ctx context.Context, target string) CheckResult {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return httpFailure(err.Error(), 0, start)
	}
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	latency := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		return httpFailure(err.Error(), latency, start)
	}
	defer resp.Body.Close()
	// drain a little so the connection can be reused
	_, _ = io.CopyN(io.Discard, resp.Body, 4<<10)

	return CheckResult{
		Name:       "HTTP",
		Success:    resp.StatusCode >= 200 && resp.StatusCode < 400,
		StatusCode: resp.StatusCode,
		Message:    resp.Status,
		LatencyMS:  latency,
		CheckedAt:  start,
	}
}
