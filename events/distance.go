package events

import (
	"math"

	"github.com/jrsteele09/go-events-client/internal/utils"
)

const earthRadiusKm = 6371.0

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// DistanceKm is the great-circle distance between a and b.
func DistanceKm(a, b Point) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLat := lat2 - lat1
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// Point returns the venue coordinate, if the event has one.
func (e *Event) Point() (Point, bool) {
	if e.Location == nil || e.Location.Latitude == nil || e.Location.Longitude == nil {
		return Point{}, false
	}
	return Point{Lat: *e.Location.Latitude, Lng: *e.Location.Longitude}, true
}

// AnnotateDistance sets DistanceKm on every event with a venue coordinate,
// measured from origin and rounded to 2 decimals. Events without one are left untouched.
func AnnotateDistance(list []Event, origin Point) {
	for i := range list {
		p, ok := list[i].Point()
		if !ok {
			continue
		}
		list[i].DistanceKm = utils.Ptr(utils.Round(DistanceKm(origin, p), 2))
	}
}
