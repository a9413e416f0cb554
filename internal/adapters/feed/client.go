package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/skyglobe/internal/core/domain"
	"github.com/samirrijal/skyglobe/internal/pkg/metrics"
	"github.com/samirrijal/skyglobe/internal/pkg/telemetry"
)

// DefaultBaseURL serves one JSON file per hour, 00.json through 23.json.
const DefaultBaseURL = "https://a.windbornesystems.com/treasure"

const maxBodyBytes = 32 << 20

var tracer = telemetry.Tracer("skyglobe/feed")

// Client implements ports.TelemetrySource over HTTP.
type Client struct {
	baseURL     string
	proxyPrefix string
	httpClient  *http.Client
}

// NewClient creates a feed client. proxyPrefix, when set, is prepended
// verbatim to every feed URL (for example "https://corsproxy.io/?").
func NewClient(baseURL, proxyPrefix string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		proxyPrefix: proxyPrefix,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// URL returns the feed URL for an hour index.
func (c *Client) URL(hour int) string {
	return fmt.Sprintf("%s%s/%02d.json", c.proxyPrefix, c.baseURL, hour)
}

// Fetch downloads and decodes the feed for hour. Rows that are not exactly
// three finite numbers are skipped.
func (c *Client) Fetch(ctx context.Context, hour int) ([]domain.GeoCoordinate, error) {
	url := c.URL(hour)

	ctx, span := tracer.Start(ctx, "feed.Fetch", trace.WithAttributes(telemetry.AttrHour.Int(hour)))
	defer span.End()

	coords, skipped, err := c.fetch(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(telemetry.AttrRows.Int(len(coords)), telemetry.AttrSkipped.Int(skipped))
	if skipped > 0 {
		metrics.TelemetryRowsSkipped.Add(float64(skipped))
		slog.Warn("skipped malformed telemetry rows", "hour", hour, "skipped", skipped, "kept", len(coords))
	}
	return coords, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]domain.GeoCoordinate, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, &domain.FetchError{Source: "telemetry", URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &domain.FetchError{Source: "telemetry", URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, 0, &domain.FetchError{
			Source:     "telemetry",
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, 0, &domain.FetchError{Source: "telemetry", URL: url, Err: fmt.Errorf("read body: %w", err)}
	}

	coords, skipped, err := DecodeRows(body)
	if err != nil {
		return nil, 0, &domain.FetchError{Source: "telemetry", URL: url, Err: err}
	}
	return coords, skipped, nil
}

// DecodeRows parses a JSON array of [lat, lon, alt] rows. It returns the
// valid coordinates in feed order and the number of rows dropped.
func DecodeRows(body []byte) ([]domain.GeoCoordinate, int, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, 0, fmt.Errorf("decode feed: %w", err)
	}

	coords := make([]domain.GeoCoordinate, 0, len(rows))
	skipped := 0
	for _, raw := range rows {
		c, ok := decodeRow(raw)
		if !ok {
			skipped++
			continue
		}
		coords = append(coords, c)
	}
	return coords, skipped, nil
}

func decodeRow(raw json.RawMessage) (domain.GeoCoordinate, bool) {
	var vals []any
	if err := json.Unmarshal(raw, &vals); err != nil || len(vals) != 3 {
		return domain.GeoCoordinate{}, false
	}
	var f [3]float64
	for i, v := range vals {
		n, ok := v.(float64)
		if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
			return domain.GeoCoordinate{}, false
		}
		f[i] = n
	}
	return domain.GeoCoordinate{Latitude: f[0], Longitude: f[1], Altitude: f[2]}, true
}
