package query

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Shape discriminates the value variants a filter field can hold.
type Shape int

const (
	ShapeScalar Shape = iota
	ShapeList
	ShapeExists
	ShapeMissing
	ShapeRange
	ShapeGeo
)

// Value is one filter value: a scalar, a list of scalars (implicit OR), an
// existence marker, a date range, or a geo point. The shape tag selects the
// populated payload.
type Value struct {
	shape  Shape
	scalar json.RawMessage
	list   []string
	rng    *DateRange
	geo    *GeoPoint
}

// Shape returns the value variant.
func (v Value) Shape() Shape { return v.shape }

// Scalar returns the raw JSON scalar for ShapeScalar values.
func (v Value) Scalar() json.RawMessage { return v.scalar }

// List returns the member strings for ShapeList values.
func (v Value) List() []string { return v.list }

// Range returns the date range for ShapeRange values.
func (v Value) Range() *DateRange { return v.rng }

// Geo returns the geo point for ShapeGeo values.
func (v Value) Geo() *GeoPoint { return v.geo }

// DateRange filters a date field to [GTE, LTE]. Either bound may be empty.
type DateRange struct {
	GTE string
	LTE string
}

// MarshalJSON renders the wire form {"type":"range","gte":...,"lte":...}.
func (r DateRange) MarshalJSON() ([]byte, error) {
	m := struct {
		Type string `json:"type"`
		GTE  string `json:"gte,omitempty"`
		LTE  string `json:"lte,omitempty"`
	}{Type: "range", GTE: r.GTE, LTE: r.LTE}
	return json.Marshal(m)
}

// MarshalJSON renders the value in its wire form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.shape {
	case ShapeScalar:
		return v.scalar, nil
	case ShapeList:
		return json.Marshal(v.list)
	case ShapeExists:
		return []byte(`{"type":"exists"}`), nil
	case ShapeMissing:
		return []byte(`{"type":"missing"}`), nil
	case ShapeRange:
		return json.Marshal(v.rng)
	case ShapeGeo:
		return json.Marshal(v.geo)
	}
	return nil, errorf("", "unknown value shape %d", v.shape)
}

// parseValue coerces a raw JSON value into the shape the field declares:
// plain values become scalars, arrays become lists, objects are discriminated
// by their "type" member.
func parseValue(f Field, raw json.RawMessage) (Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Value{}, errorf(f.Name, "empty value")
	}

	switch raw[0] {
	case '{':
		return parseObjectValue(f, raw)
	case '[':
		return parseListValue(f, raw)
	default:
		return parseScalarValue(f, raw)
	}
}

func parseObjectValue(f Field, raw json.RawMessage) (Value, error) {
	if f.Kind == Geo {
		gp, err := parseGeoPoint(f.Name, raw)
		if err != nil {
			return Value{}, err
		}
		return Value{shape: ShapeGeo, geo: gp}, nil
	}

	var obj struct {
		Type string          `json:"type"`
		GTE  json.RawMessage `json:"gte"`
		LTE  json.RawMessage `json:"lte"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Value{}, errorf(f.Name, "malformed object value: %v", err)
	}

	switch obj.Type {
	case "exists", "missing":
		if f.NoExistence {
			return Value{}, errorf(f.Name, "field is always present; existence queries are not supported")
		}
		if obj.Type == "exists" {
			return Value{shape: ShapeExists}, nil
		}
		return Value{shape: ShapeMissing}, nil
	case "range":
		if f.Kind != Date {
			return Value{}, errorf(f.Name, "range values are only supported for date fields")
		}
		rng, err := parseDateRange(f.Name, obj.GTE, obj.LTE)
		if err != nil {
			return Value{}, err
		}
		return Value{shape: ShapeRange, rng: rng}, nil
	case "":
		return Value{}, errorf(f.Name, "object value is missing its type discriminator")
	default:
		return Value{}, errorf(f.Name, "unknown value type %q", obj.Type)
	}
}

func parseListValue(f Field, raw json.RawMessage) (Value, error) {
	if f.Kind != String {
		return Value{}, errorf(f.Name, "list values are only supported for string fields")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return Value{}, errorf(f.Name, "malformed list value: %v", err)
	}
	list := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			return Value{}, errorf(f.Name, "list members must be strings, got %s", item)
		}
		if err := checkEnum(f, s); err != nil {
			return Value{}, err
		}
		list = append(list, s)
	}
	return Value{shape: ShapeList, list: list}, nil
}

func checkEnum(f Field, s string) error {
	if len(f.Enum) == 0 {
		return nil
	}
	for _, allowed := range f.Enum {
		if s == allowed {
			return nil
		}
	}
	return errorf(f.Name, "value %q is not one of %v", s, f.Enum)
}

func parseScalarValue(f Field, raw json.RawMessage) (Value, error) {
	switch f.Kind {
	case String:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, errorf(f.Name, "expected a string, got %s", raw)
		}
		if err := checkEnum(f, s); err != nil {
			return Value{}, err
		}
	case Bool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return Value{}, errorf(f.Name, "expected a boolean, got %s", raw)
		}
	case Int:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return Value{}, errorf(f.Name, "expected an integer, got %s", raw)
		}
		if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
			return Value{}, errorf(f.Name, "expected an integer, got %s", raw)
		}
	case Float:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return Value{}, errorf(f.Name, "expected a number, got %s", raw)
		}
	case Date:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, errorf(f.Name, "expected an ISO 8601 date string, got %s", raw)
		}
		if _, err := parseDate(s); err != nil {
			return Value{}, errorf(f.Name, "invalid date %q", s)
		}
	case Geo:
		return Value{}, errorf(f.Name, "expected a geopoint object, got %s", raw)
	}
	return Value{shape: ShapeScalar, scalar: raw}, nil
}

func parseDateRange(field string, gte, lte json.RawMessage) (*DateRange, error) {
	var rng DateRange
	for _, bound := range []struct {
		name string
		raw  json.RawMessage
		dst  *string
	}{
		{"gte", gte, &rng.GTE},
		{"lte", lte, &rng.LTE},
	} {
		if len(bound.raw) == 0 || bytes.Equal(bound.raw, []byte("null")) {
			continue
		}
		var s string
		if err := json.Unmarshal(bound.raw, &s); err != nil {
			return nil, errorf(field, "range %s must be a date string, got %s", bound.name, bound.raw)
		}
		if _, err := parseDate(s); err != nil {
			return nil, errorf(field, "invalid range %s date %q", bound.name, s)
		}
		*bound.dst = s
	}
	return &rng, nil
}

// dateLayouts accepts ISO 8601 dates, including unpadded months and days as
// they appear in collection data.
var dateLayouts = []string{"2006-01-02", "2006-1-2"}

func parseDate(s string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
