package station

import (
	"fmt"
	"strconv"
	"strings"
)

// Coordinate is a WGS-84 position kept as the provider's decimal text so that
// values round-trip without float reformatting.
type Coordinate struct {
	Longitude string `json:"longitude"`
	Latitude  string `json:"latitude"`
}

// NewCoordinate validates lon/lat text and builds a Coordinate.
func NewCoordinate(lon, lat string) (Coordinate, error) {
	lon = strings.TrimSpace(lon)
	lat = strings.TrimSpace(lat)

	lonV, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("invalid longitude %q: %w", lon, err)
	}
	latV, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("invalid latitude %q: %w", lat, err)
	}
	if lonV < -180 || lonV > 180 {
		return Coordinate{}, fmt.Errorf("longitude %s out of range", lon)
	}
	if latV < -90 || latV > 90 {
		return Coordinate{}, fmt.Errorf("latitude %s out of range", lat)
	}

	return Coordinate{Longitude: lon, Latitude: lat}, nil
}

// String returns the "lon,lat" form expected by the directions provider.
func (c Coordinate) String() string {
	return c.Longitude + "," + c.Latitude
}

// IsZero reports whether the coordinate was never set.
func (c Coordinate) IsZero() bool {
	return c.Longitude == "" && c.Latitude == ""
}
