package usecases_test

import (
	"errors"
	"testing"

	"github.com/samirrijal/skyglobe/internal/core/domain"
	"github.com/samirrijal/skyglobe/internal/core/usecases"
)

func TestComposePlaceMessage(t *testing.T) {
	tests := []struct {
		place domain.PlaceDescriptor
		want  string
	}{
		{domain.PlaceDescriptor{City: "New York", CountryCode: "US", Continent: "NA"}, "New York, US, NA"},
		{domain.PlaceDescriptor{City: "Bilbao", Continent: "EU"}, "Bilbao, EU"},
		{domain.PlaceDescriptor{City: "  ", Locality: "Bay of Biscay"}, "Bay of Biscay"},
		{domain.PlaceDescriptor{Locality: "Pacific Ocean"}, "Pacific Ocean"},
		{domain.PlaceDescriptor{}, "No data available"},
	}
	for _, tt := range tests {
		if got := usecases.ComposePlaceMessage(tt.place); got != tt.want {
			t.Errorf("ComposePlaceMessage(%+v) = %q, want %q", tt.place, got, tt.want)
		}
	}
}

func TestFetchFailureMessage(t *testing.T) {
	got := usecases.FetchFailureMessage(errors.New("boom"))
	if got != "error fetching data: boom" {
		t.Errorf("got %q", got)
	}
}
