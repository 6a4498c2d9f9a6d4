package query

import "github.com/invopop/jsonschema"

// JSONSchema builds the schema handed to the language model for "rq"
// objects. Every recognized field appears with its documentation so the
// model can choose fields without guessing.
func (Query) JSONSchema() *jsonschema.Schema {
	return objectSchema(recordFields, "Search criteria in the iDigBio record query format.")
}

// JSONSchema builds the schema for "mq" objects.
func (MediaQuery) JSONSchema() *jsonschema.Schema {
	return objectSchema(mediaFields, "Search criteria in the iDigBio media query format.")
}

func objectSchema(fields []Field, description string) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:                 "object",
		Description:          description,
		Properties:           jsonschema.NewProperties(),
		AdditionalProperties: jsonschema.FalseSchema,
	}
	for _, f := range fields {
		s.Properties.Set(f.Name, fieldSchema(f))
	}
	return s
}

func fieldSchema(f Field) *jsonschema.Schema {
	var shapes []*jsonschema.Schema
	switch f.Kind {
	case String:
		scalar := &jsonschema.Schema{Type: "string"}
		if len(f.Enum) > 0 {
			for _, v := range f.Enum {
				scalar.Enum = append(scalar.Enum, v)
			}
		}
		shapes = append(shapes, scalar, &jsonschema.Schema{Type: "array", Items: scalar})
	case Bool:
		shapes = append(shapes, &jsonschema.Schema{Type: "boolean"})
	case Int:
		shapes = append(shapes, &jsonschema.Schema{Type: "integer"})
	case Float:
		shapes = append(shapes, &jsonschema.Schema{Type: "number"})
	case Date:
		shapes = append(shapes,
			&jsonschema.Schema{Type: "string", Format: "date"},
			dateRangeSchema(),
		)
	case Geo:
		return geoPointSchema(f.Doc)
	}
	if !f.NoExistence {
		shapes = append(shapes, existenceSchema())
	}
	if len(shapes) == 1 {
		shape := *shapes[0]
		shape.Description = f.Doc
		return &shape
	}
	return &jsonschema.Schema{Description: f.Doc, AnyOf: shapes}
}

func existenceSchema() *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:                 "object",
		Description:          "Requires the field to be present (exists) or absent (missing), regardless of value.",
		Properties:           jsonschema.NewProperties(),
		Required:             []string{"type"},
		AdditionalProperties: jsonschema.FalseSchema,
	}
	s.Properties.Set("type", &jsonschema.Schema{Type: "string", Enum: []any{"exists", "missing"}})
	return s
}

func dateRangeSchema() *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:                 "object",
		Description:          "An inclusive date range. Either bound may be omitted.",
		Properties:           jsonschema.NewProperties(),
		Required:             []string{"type"},
		AdditionalProperties: jsonschema.FalseSchema,
	}
	s.Properties.Set("type", &jsonschema.Schema{Type: "string", Enum: []any{"range"}})
	s.Properties.Set("gte", &jsonschema.Schema{Type: "string", Format: "date", Description: "The start date of the range."})
	s.Properties.Set("lte", &jsonschema.Schema{Type: "string", Format: "date", Description: "The end date of the range."})
	return s
}

func geoPointSchema(doc string) *jsonschema.Schema {
	coord := func() *jsonschema.Schema {
		c := &jsonschema.Schema{
			Type:                 "object",
			Properties:           jsonschema.NewProperties(),
			Required:             []string{"lat", "lon"},
			AdditionalProperties: jsonschema.FalseSchema,
		}
		c.Properties.Set("lat", &jsonschema.Schema{Type: "number", Description: "latitude"})
		c.Properties.Set("lon", &jsonschema.Schema{Type: "number", Description: "longitude"})
		return c
	}

	s := &jsonschema.Schema{
		Type: "object",
		Description: doc + " Supports two variants: geo_distance (a point with an optional " +
			"distance radius) and geo_bounding_box (a rectangle defined by top-left and " +
			"bottom-right coordinates). Populate only the fields of the chosen variant.",
		Properties:           jsonschema.NewProperties(),
		Required:             []string{"type"},
		AdditionalProperties: jsonschema.FalseSchema,
	}
	s.Properties.Set("type", &jsonschema.Schema{Type: "string", Enum: []any{GeoDistance, GeoBoundingBox}})
	s.Properties.Set("lat", &jsonschema.Schema{Type: "number", Description: "latitude (geo_distance only)"})
	s.Properties.Set("lon", &jsonschema.Schema{Type: "number", Description: "longitude (geo_distance only)"})
	s.Properties.Set("distance", &jsonschema.Schema{
		Type:        "string",
		Description: "distance in kilometers with km at the end, e.g. 575km (geo_distance only)",
	})
	tl := coord()
	tl.Description = "Top-left coordinate of the bounding box (geo_bounding_box only)"
	s.Properties.Set("top_left", tl)
	br := coord()
	br.Description = "Bottom-right coordinate of the bounding box (geo_bounding_box only)"
	s.Properties.Set("bottom_right", br)
	return s
}
