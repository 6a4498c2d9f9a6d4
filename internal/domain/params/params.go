// Package params defines the parameter objects for the three iDigBio API
// operations. Each wraps the query format with operation-specific knobs.
package params

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/acislab/ichatbio-idigbio-agent/internal/domain/query"
)

// API limits shared by the operations.
const (
	MinLimit     = 1
	MaxLimit     = 5000
	DefaultLimit = 100

	DefaultCount = 10
	MaxPreview   = 25
	MaxCount     = 5000
)

// OccurrenceSearch parameterizes the occurrence records API.
type OccurrenceSearch struct {
	RQ    *query.Query `json:"rq" jsonschema:"required,description=Search criteria for species occurrence records in iDigBio"`
	Limit *int         `json:"limit,omitempty" jsonschema:"description=The maximum number of records to return. Must be between 1 and 5000. Defaults to 100."`
}

// ApplyDefaults fills the unset limit with the API default.
func (p *OccurrenceSearch) ApplyDefaults() {
	if p.Limit == nil {
		limit := DefaultLimit
		p.Limit = &limit
	}
}

// Validate checks the operation-specific knobs. The rq object validates
// itself during decoding, but its presence is checked here: an occurrence
// search without rq would match every record in iDigBio.
func (p *OccurrenceSearch) Validate() error {
	if p.RQ == nil {
		return &query.ValidationError{Field: "rq", Message: "search criteria are required"}
	}
	return validateLimit(p.Limit)
}

// Summary parameterizes the records summary (aggregate count) API.
type Summary struct {
	TopFields TopFields    `json:"top_fields" jsonschema:"required"`
	Count     *int         `json:"count,omitempty" jsonschema:"description=The maximum number of unique values to report record counts for. Must be between 1 and 5000. Defaults to 10."`
	RQ        *query.Query `json:"rq,omitempty" jsonschema:"description=Search criteria limiting which records are counted. Omit to count all records."`
}

// Validate checks the operation-specific knobs.
func (p *Summary) Validate() error {
	if p.TopFields.IsZero() {
		return &query.ValidationError{Field: "top_fields", Message: "at least one breakdown field is required"}
	}
	if p.Count != nil && (*p.Count <= 0 || *p.Count > MaxCount) {
		return &query.ValidationError{Field: "count", Message: "count must be between 1 and 5000"}
	}
	return nil
}

// MediaSearch parameterizes the media records API.
type MediaSearch struct {
	MQ    *query.MediaQuery `json:"mq,omitempty" jsonschema:"description=Search criteria for media and media records"`
	RQ    *query.Query      `json:"rq,omitempty" jsonschema:"description=Search criteria for the occurrence records associated with the media"`
	Limit *int              `json:"limit,omitempty" jsonschema:"description=The maximum number of media records to return"`
}

// Validate checks the operation-specific knobs.
func (p *MediaSearch) Validate() error {
	return validateLimit(p.Limit)
}

func validateLimit(limit *int) error {
	if limit != nil && (*limit < MinLimit || *limit > MaxLimit) {
		return &query.ValidationError{Field: "limit", Message: "limit must be between 1 and 5000"}
	}
	return nil
}

// TopFields is the breakdown target of a summary query: a single field name
// or a list of names. The scalar form is preserved through a JSON round trip
// because the summary API keys its response by the form it was given.
type TopFields struct {
	fields []string
	scalar bool
}

// NewTopFields creates a single-field breakdown target.
func NewTopFields(name string) TopFields {
	return TopFields{fields: []string{name}, scalar: true}
}

// NewTopFieldsList creates a multi-field breakdown target.
func NewTopFieldsList(names ...string) TopFields {
	return TopFields{fields: names}
}

// IsZero reports whether no breakdown field is set.
func (t TopFields) IsZero() bool { return len(t.fields) == 0 }

// Fields returns the breakdown field names.
func (t TopFields) Fields() []string { return t.fields }

// First returns the primary breakdown field, which keys the API response.
func (t TopFields) First() string {
	if len(t.fields) == 0 {
		return ""
	}
	return t.fields[0]
}

// Remapped returns a copy with each field rewritten through the keyword
// remapping table.
func (t TopFields) Remapped() TopFields {
	return TopFields{fields: query.KeywordAll(t.fields), scalar: t.scalar}
}

// UnmarshalJSON accepts a string or a list of strings.
func (t *TopFields) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*t = NewTopFields(name)
		return nil
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return &query.ValidationError{
			Field:   "top_fields",
			Message: "must be a field name or a list of field names",
		}
	}
	*t = NewTopFieldsList(names...)
	return nil
}

// MarshalJSON emits the form the value was created with.
func (t TopFields) MarshalJSON() ([]byte, error) {
	if t.scalar && len(t.fields) == 1 {
		return json.Marshal(t.fields[0])
	}
	return json.Marshal(t.fields)
}

// JSONSchema describes the breakdown target for the language model.
func (TopFields) JSONSchema() *jsonschema.Schema {
	name := &jsonschema.Schema{Type: "string"}
	return &jsonschema.Schema{
		Description: `The field to break down record counts by. Defaults to "scientificname". ` +
			`For example, if top_fields is "country", the API finds the countries with the most ` +
			`records matching the search parameters.`,
		AnyOf: []*jsonschema.Schema{
			name,
			{Type: "array", Items: name},
		},
	}
}
