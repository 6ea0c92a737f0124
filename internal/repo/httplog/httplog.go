// Package httplog fetches check logs published over HTTP under
// <base>/logs/<key>_report.log.
package httplog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hamed0406/uptimereport/internal/domain"
	"github.com/hamed0406/uptimereport/internal/repo"
	"github.com/hamed0406/uptimereport/internal/repo/file"
)

// MaxLogBytes caps how much of a log body is read. Logs list their newest
// records first, so a longer body is cut back to its last complete line.
const MaxLogBytes = 16 << 20

// ErrLogTooLarge is returned when an oversized body holds no complete line.
var ErrLogTooLarge = errors.New("log too large")

type Source struct {
	Client  *http.Client
	BaseURL string
}

func New(baseURL string, timeout time.Duration) *Source {
	return &Source{
		Client:  &http.Client{Timeout: timeout},
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

// URL returns the log location for key.
func (s *Source) URL(key domain.TargetKey) string {
	return s.BaseURL + "/logs/" + file.LogName(key)
}

// Fetch maps any 4xx answer to repo.ErrNoLog. Transport errors and 5xx are
// returned as errors so callers can retry them.
func (s *Source) Fetch(ctx context.Context, key domain.TargetKey) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(key), nil)
	if err != nil {
		return "", err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("get log %s: %w", key, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("get log %s: %s", key, resp.Status)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", repo.ErrNoLog
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, MaxLogBytes+1))
	if err != nil {
		return "", fmt.Errorf("read log %s: %w", key, err)
	}
	if len(b) > MaxLogBytes {
		b = b[:MaxLogBytes]
		i := bytes.LastIndexByte(b, '\n')
		if i < 0 {
			return "", fmt.Errorf("read log %s: %w", key, ErrLogTooLarge)
		}
		b = b[:i+1]
	}
	return string(b), nil
}
