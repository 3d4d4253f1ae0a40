package monitor

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"pvd/internal/models"
	"pvd/internal/providers"
	"pvd/internal/structures"
)

// SnapshotSourceInterface supplies the current listing of visible entities.
// Implementations signal throttling with RateLimitedError and recoverable
// hiccups with TransientError; anything else is treated as transient by the
// loop.
type SnapshotSourceInterface interface {
	ListCurrentEntities(ctx context.Context) ([]*models.RawEntity, error)
}

// RateLimitedError is the platform's throttle signal. The loop waits
// RetryAfter and retries the same cycle without advancing its baseline.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// TransientError marks a recoverable source failure (network, upstream
// auth hiccup). The loop logs it, backs off and retries.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "transient source error: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

const defaultRetryAfter = 30 * time.Second

// HTTPSource fetches the entity listing from the platform bridge over HTTP.
// The bridge owns the messaging-account session; this daemon only consumes
// its JSON listing.
type HTTPSource struct {
	url    string
	client *http.Client
	logger providers.Logger
}

func NewHTTPSource(conf *structures.Config, logger providers.Logger) SnapshotSourceInterface {
	return &HTTPSource{
		url:    conf.Monitor.SourceURL,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

func (s *HTTPSource) ListCurrentEntities(ctx context.Context) ([]*models.RawEntity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, &TransientError{Err: err}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitedError{RetryAfter: retryAfter(resp)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &TransientError{Err: fmt.Errorf("source returned %s", resp.Status)}
	}

	var entities []*models.RawEntity
	if err := json.NewDecoder(resp.Body).Decode(&entities); err != nil {
		return nil, &TransientError{Err: err}
	}
	return entities, nil
}

func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultRetryAfter
}
