package geo

import (
	"math"

	"github.com/thorrangonak/ucustazminati-sub002/internal/domain"
)

const earthRadiusKm = 6371.0

// DistanceKm computes the haversine great-circle distance between two
// points. The result is not rounded; NaN coordinates propagate to a NaN
// distance, which callers must treat as unknown.
func DistanceKm(a, b domain.Coordinate) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// IsDomestic reports whether both airports are in the home country.
func IsDomestic(a, b domain.Airport, homeCountry string) bool {
	return a.CountryCode == homeCountry && b.CountryCode == homeCountry
}
