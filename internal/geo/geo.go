package geo

import (
	"math"

	olc "github.com/google/open-location-code/go"
)

const (
	earthRadiusMeters = 6371000
	// walkingMetersPerMinute is an average walking speed of 5 km/h.
	walkingMetersPerMinute = 83.33
	plusCodeLength         = 10
)

// DistanceMeters calculates the great-circle distance between two coordinates using the
// Haversine formula. Inputs are degrees; NaN inputs propagate.
func DistanceMeters(originLat, originLng, targetLat, targetLng float64) float64 {
	lat1Rad := originLat * math.Pi / 180
	lat2Rad := targetLat * math.Pi / 180
	dlat := (targetLat - originLat) * math.Pi / 180
	dlng := (targetLng - originLng) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dlng/2)*math.Sin(dlng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// WalkingMinutes rounds the walk up to whole minutes. Only a zero (or negative) distance
// yields 0.
func WalkingMinutes(distanceMeters float64) int {
	if distanceMeters <= 0 || math.IsNaN(distanceMeters) {
		return 0
	}
	return int(math.Ceil(distanceMeters / walkingMetersPerMinute))
}

// PlusCode returns the Open Location Code for a point, or "" for out of range input.
func PlusCode(lat, lng float64) string {
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return ""
	}
	return olc.Encode(lat, lng, plusCodeLength)
}
