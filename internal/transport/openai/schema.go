package openai

import (
	"github.com/invopop/jsonschema"

	"github.com/acislab/ichatbio-idigbio-agent/internal/domain/envelope"
)

// responseSchema reflects the JSON schema for a parameter envelope. The
// schema is inlined (no $ref) because completion services reject schemas
// with external definitions in the response_format slot.
func responseSchema[P any]() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference:             true,
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: true,
	}
	var env envelope.Envelope[P]
	s := r.Reflect(&env)
	s.Version = ""
	return s
}
