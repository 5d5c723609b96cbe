package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is Earth's mean radius in kilometres for the Haversine calculation.
const EarthRadiusKm = 6371.0088

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lng float64
}

// Valid reports whether p is a real coordinate.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180 &&
		!math.IsNaN(p.Lat) && !math.IsNaN(p.Lng)
}

// HaversineKm calculates the great-circle distance between two points
// on Earth in kilometres using the Haversine formula.
func HaversineKm(a, b Point) float64 {
	const degToRad = math.Pi / 180
	dLat := (b.Lat - a.Lat) * degToRad
	dLng := (b.Lng - a.Lng) * degToRad
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(a.Lat*degToRad)*math.Cos(b.Lat*degToRad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// Label formats a distance for the restaurant card: metres below 1 km, else one decimal km.
func Label(km float64) string {
	if km < 1 {
		m := int(math.Round(km*1000/10) * 10)
		return fmt.Sprintf("%d m", m)
	}
	return fmt.Sprintf("%.1f km", km)
}

// DistanceLabel returns the label for the distance from origin to dest.
// ok is false when either point is invalid.
func DistanceLabel(origin, dest Point) (label string, ok bool) {
	if !origin.Valid() || !dest.Valid() {
		return "", false
	}
	return Label(HaversineKm(origin, dest)), true
}
