package geocode_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/samirrijal/skyglobe/internal/adapters/geocode"
	"github.com/samirrijal/skyglobe/internal/core/domain"
)

func TestClient_Reverse(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query = map[string]string{
			"latitude":         q.Get("latitude"),
			"longitude":        q.Get("longitude"),
			"localityLanguage": q.Get("localityLanguage"),
		}
		_, _ = w.Write([]byte(`{"city":"New York","countryCode":"US","continent":"NA","locality":"Manhattan","plusCode":"87G8"}`))
	}))
	defer srv.Close()

	c := geocode.NewClient(srv.URL, "", time.Second)
	place, err := c.Reverse(context.Background(), 40.7128, -74.006)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if query["latitude"] != "40.7128" || query["longitude"] != "-74.006" {
		t.Errorf("query = %v", query)
	}
	if query["localityLanguage"] != "en" {
		t.Errorf("localityLanguage = %q", query["localityLanguage"])
	}
	want := domain.PlaceDescriptor{City: "New York", CountryCode: "US", Continent: "NA", Locality: "Manhattan"}
	if place != want {
		t.Errorf("place = %+v, want %+v", place, want)
	}
}

func TestClient_ReverseEmptyObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := geocode.NewClient(srv.URL, "en", time.Second)
	place, err := c.Reverse(context.Background(), 0, 0)
	if !errors.Is(err, domain.ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}
	if domain.IsFetchError(err) {
		t.Error("empty result must not be a FetchError")
	}
	if place != (domain.PlaceDescriptor{}) {
		t.Errorf("expected empty place, got %+v", place)
	}
}

func TestClient_ReverseLocalityOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"city":" ","locality":"Pacific Ocean"}`))
	}))
	defer srv.Close()

	c := geocode.NewClient(srv.URL, "en", time.Second)
	place, err := c.Reverse(context.Background(), 0, -150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if place.City != "" || place.Locality != "Pacific Ocean" {
		t.Errorf("place = %+v", place)
	}
}

func TestClient_ReverseHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := geocode.NewClient(srv.URL, "en", time.Second)
	_, err := c.Reverse(context.Background(), 1, 2)

	var fe *domain.FetchError
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected FetchError 429, got %v", err)
	}
	if !strings.Contains(err.Error(), "HTTP error! 429") {
		t.Errorf("error text = %q", err.Error())
	}
}

func TestClient_ReverseTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c := geocode.NewClient(srv.URL, "en", time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Reverse(ctx, 1, 2)
	if !domain.IsFetchError(err) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded in chain, got %v", err)
	}
}
