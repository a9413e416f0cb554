package usecases

import (
	"strings"

	"github.com/samirrijal/skyglobe/internal/core/domain"
)

// NoDataMessage is shown when a lookup succeeds with nothing displayable.
const NoDataMessage = "No data available"

// ComposePlaceMessage renders a place as "city, countryCode, continent",
// skipping empty parts, then falls back to the locality and finally to
// NoDataMessage.
func ComposePlaceMessage(p domain.PlaceDescriptor) string {
	var parts []string
	for _, s := range []string{p.City, p.CountryCode, p.Continent} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if msg := strings.Join(parts, ", "); msg != "" {
		return msg
	}
	if loc := strings.TrimSpace(p.Locality); loc != "" {
		return loc
	}
	return NoDataMessage
}

// FetchFailureMessage is the panel text for a failed lookup.
func FetchFailureMessage(err error) string {
	return "error fetching data: " + err.Error()
}
