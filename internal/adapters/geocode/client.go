package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/skyglobe/internal/core/domain"
	"github.com/samirrijal/skyglobe/internal/pkg/telemetry"
)

// DefaultBaseURL is the keyless client-side reverse-geocode endpoint.
const DefaultBaseURL = "https://api.bigdatacloud.net/data/reverse-geocode-client"

const maxBodyBytes = 1 << 20

var tracer = telemetry.Tracer("skyglobe/geocode")

// Client implements ports.PlaceResolver over HTTP.
type Client struct {
	baseURL    string
	language   string
	httpClient *http.Client
}

// NewClient creates a reverse-geocode client. language is sent as
// localityLanguage and defaults to "en".
func NewClient(baseURL, language string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if language == "" {
		language = "en"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		language:   language,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type reverseResponse struct {
	City        string `json:"city"`
	CountryCode string `json:"countryCode"`
	Continent   string `json:"continent"`
	Locality    string `json:"locality"`
}

// URL returns the lookup URL for a coordinate.
func (c *Client) URL(lat, lon float64) string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("localityLanguage", c.language)
	return c.baseURL + "?" + q.Encode()
}

// Reverse looks up the place at (lat, lon). Missing fields come back empty;
// a response with no fields at all returns domain.ErrEmptyResult.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (domain.PlaceDescriptor, error) {
	ctx, span := tracer.Start(ctx, "geocode.Reverse", trace.WithAttributes(
		telemetry.AttrLatitude.Float64(lat),
		telemetry.AttrLongitude.Float64(lon),
	))
	defer span.End()

	place, status, err := c.reverse(ctx, c.URL(lat, lon))
	if status != 0 {
		span.SetAttributes(telemetry.AttrHTTPStatus.Int(status))
	}
	switch {
	case errors.Is(err, domain.ErrEmptyResult):
		return place, err
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.PlaceDescriptor{}, err
	}
	return place, nil
}

func (c *Client) reverse(ctx context.Context, u string) (domain.PlaceDescriptor, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.PlaceDescriptor{}, 0, &domain.FetchError{Source: "geocode", URL: u, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.PlaceDescriptor{}, 0, &domain.FetchError{Source: "geocode", URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.PlaceDescriptor{}, resp.StatusCode, &domain.FetchError{
			Source:     "geocode",
			URL:        u,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var body reverseResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return domain.PlaceDescriptor{}, resp.StatusCode, &domain.FetchError{
			Source: "geocode",
			URL:    u,
			Err:    fmt.Errorf("decode response: %w", err),
		}
	}

	place := domain.PlaceDescriptor{
		City:        strings.TrimSpace(body.City),
		CountryCode: strings.TrimSpace(body.CountryCode),
		Continent:   strings.TrimSpace(body.Continent),
		Locality:    strings.TrimSpace(body.Locality),
	}
	if place == (domain.PlaceDescriptor{}) {
		return place, resp.StatusCode, domain.ErrEmptyResult
	}
	return place, resp.StatusCode, nil
}
