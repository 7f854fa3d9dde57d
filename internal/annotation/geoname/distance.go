package geoname

import (
	"github.com/golang/geo/s2"

	gtypes "github.com/turtacn/EpiAnnotator/pkg/types/geoname"
)

// EarthRadiusKm is the mean earth radius used for great-circle distances.
const EarthRadiusKm = 6371.009

// DistanceKm is the great-circle distance between two records.
func DistanceKm(a, b *gtypes.Record) float64 {
	pa := s2.LatLngFromDegrees(a.Latitude, a.Longitude)
	pb := s2.LatLngFromDegrees(b.Latitude, b.Longitude)
	return pa.Distance(pb).Radians() * EarthRadiusKm
}

//Personal.AI order the ending
