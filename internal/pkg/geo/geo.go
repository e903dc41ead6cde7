package geo

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
const EarthRadiusMeters = 6371000

var ErrMissingCoordinates = errors.New("latitude and longitude are required")

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// Office is a circular geofence around a fixed point.
type Office struct {
	Point        `yaml:",inline"`
	RadiusMeters float64 `yaml:"radius_meters"`
}

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b Point) float64 {
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1)*math.Cos(lat2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// Destination returns the point reached by travelling distanceMeters from p
// along the given initial bearing (degrees clockwise from north).
func Destination(p Point, bearingDegrees, distanceMeters float64) Point {
	delta := distanceMeters / EarthRadiusMeters
	theta := toRadians(bearingDegrees)
	lat1 := toRadians(p.Latitude)
	lon1 := toRadians(p.Longitude)

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(delta) + math.Cos(lat1)*math.Sin(delta)*math.Cos(theta))
	lon2 := lon1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(lat1),
		math.Cos(delta)-math.Sin(lat1)*math.Sin(lat2),
	)

	return Point{Latitude: toDegrees(lat2), Longitude: toDegrees(lon2)}
}

// Result is the outcome of a geofence evaluation.
type Result struct {
	Admitted bool
	// DistanceMeters is rounded to the nearest meter.
	DistanceMeters int64
	AllowedMeters  float64
}

// Evaluate checks a reported position against the office geofence.
// A nil latitude or longitude yields ErrMissingCoordinates.
func (o Office) Evaluate(latitude, longitude *float64) (Result, error) {
	if latitude == nil || longitude == nil {
		return Result{}, ErrMissingCoordinates
	}

	d := Distance(o.Point, Point{Latitude: *latitude, Longitude: *longitude})

	return Result{
		Admitted:       d <= o.RadiusMeters,
		DistanceMeters: int64(math.Round(d)),
		AllowedMeters:  o.RadiusMeters,
	}, nil
}

func (o Office) Validate() error {
	if o.Latitude < -90 || o.Latitude > 90 {
		return fmt.Errorf("office latitude must be between -90 and 90")
	}
	if o.Longitude < -180 || o.Longitude > 180 {
		return fmt.Errorf("office longitude must be between -180 and 180")
	}
	if o.RadiusMeters < 0 {
		return fmt.Errorf("office radius must not be negative")
	}
	return nil
}

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}

func toDegrees(rad float64) float64 {
	return rad * (180.0 / math.Pi)
}
