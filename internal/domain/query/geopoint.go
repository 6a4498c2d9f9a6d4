package query

import "encoding/json"

// Geo point variants.
const (
	GeoDistance    = "geo_distance"
	GeoBoundingBox = "geo_bounding_box"
)

// Coordinate is a latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GeoPoint is a location filter. The geo_distance variant is a point with an
// optional radius; the geo_bounding_box variant is a rectangle defined by its
// top-left and bottom-right corners. The populated fields must match the
// declared variant exactly, and mismatches are terminal: regenerating the
// query cannot fix a numerically impossible coordinate or a malformed shape.
type GeoPoint struct {
	Type string `json:"type"`

	// geo_distance fields.
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
	Distance string   `json:"distance,omitempty"`

	// geo_bounding_box fields.
	TopLeft     *Coordinate `json:"top_left,omitempty"`
	BottomRight *Coordinate `json:"bottom_right,omitempty"`
}

func parseGeoPoint(field string, raw json.RawMessage) (*GeoPoint, error) {
	var gp GeoPoint
	if err := json.Unmarshal(raw, &gp); err != nil {
		return nil, errorf(field, "malformed geopoint object: %v", err)
	}
	if gp.Type == "" {
		gp.Type = GeoDistance
	}
	if err := gp.validate(field); err != nil {
		return nil, err
	}
	return &gp, nil
}

func (g *GeoPoint) validate(field string) error {
	switch g.Type {
	case GeoDistance:
		if g.TopLeft != nil || g.BottomRight != nil {
			return terminalf(field, "Error: top_left and bottom_right should not be present when type is geo_distance")
		}
		if g.Lat == nil {
			return terminalf(field, "Error: lat is required when type is geo_distance")
		}
		if g.Lon == nil {
			return terminalf(field, "Error: lon is required when type is geo_distance")
		}
		return validateCoordinate(field, *g.Lat, *g.Lon)
	case GeoBoundingBox:
		if g.Lat != nil || g.Lon != nil || g.Distance != "" {
			return terminalf(field, "Error: lat, lon, and distance should not be present when type is geo_bounding_box")
		}
		if g.TopLeft == nil {
			return terminalf(field, "Error: top_left is required when type is geo_bounding_box")
		}
		if g.BottomRight == nil {
			return terminalf(field, "Error: bottom_right is required when type is geo_bounding_box")
		}
		if err := validateCoordinate(field, g.TopLeft.Lat, g.TopLeft.Lon); err != nil {
			return err
		}
		return validateCoordinate(field, g.BottomRight.Lat, g.BottomRight.Lon)
	default:
		return errorf(field, "unknown geopoint type %q", g.Type)
	}
}

func validateCoordinate(field string, lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return terminalf(field, "Error: Invalid latitude value: %v is not in range [-90, +90]", lat)
	}
	if lon < -180 || lon > 180 {
		return terminalf(field, "Error: Invalid longitude value: %v is not in range [-180, +180]", lon)
	}
	return nil
}
