package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"eth-anchor/internal/metrics"
)

const defaultUserAgent = "ethanchor/1.0"

// StatusError reports a non-2xx answer from a venue.
type StatusError struct {
	Venue   string
	Op      string
	Product string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s %s: status %d: %s", e.Venue, e.Op, e.Product, e.Code, e.Message)
	}
	return fmt.Sprintf("%s %s %s: status %d", e.Venue, e.Op, e.Product, e.Code)
}

// getter performs uncached JSON GETs against one venue.
type getter struct {
	venue     string
	baseURL   string
	userAgent string
	client    *http.Client
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

func newGetter(venue, baseURL, userAgent string, timeout time.Duration, m *metrics.Metrics, logger zerolog.Logger) getter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if ua := strings.TrimSpace(userAgent); ua != "" {
		userAgent = ua
	} else {
		userAgent = defaultUserAgent
	}
	return getter{
		venue:     venue,
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		metrics:   m,
		logger:    logger,
	}
}

// getJSON returns the raw body of a 2xx answer. Any valid JSON document is
// accepted; fields missing from it simply do not extract.
func (g getter) getJSON(ctx context.Context, op, product, path string) ([]byte, error) {
	start := time.Now()
	payload, code, err := g.do(ctx, op, product, path)
	g.metrics.ObserveUpstream(g.venue, op, code, err, time.Since(start))
	if err != nil {
		g.logger.Debug().Err(err).Str("op", op).Str("product", product).Int("status", code).Msg("venue request failed")
		return nil, err
	}
	g.logger.Debug().Str("op", op).Str("product", product).Dur("elapsed", time.Since(start)).Msg("venue request complete")
	return payload, nil
}

func (g getter) do(ctx context.Context, op, product, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s %s: %w", g.venue, op, product, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%s %s %s: read body: %w", g.venue, op, product, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, &StatusError{
			Venue:   g.venue,
			Op:      op,
			Product: product,
			Code:    resp.StatusCode,
			Message: errorMessage(body),
		}
	}

	if !gjson.ValidBytes(body) {
		return nil, resp.StatusCode, fmt.Errorf("%s %s %s: decode: invalid json body", g.venue, op, product)
	}
	return body, resp.StatusCode, nil
}

func errorMessage(payload []byte) string {
	if gjson.ValidBytes(payload) {
		if msg := gjson.GetBytes(payload, "message").String(); msg != "" {
			return msg
		}
		if msg := gjson.GetBytes(payload, "error").String(); msg != "" {
			return msg
		}
	}
	msg := strings.TrimSpace(string(payload))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
