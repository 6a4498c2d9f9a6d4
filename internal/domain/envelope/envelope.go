// Package envelope defines the structure the language model must produce for
// every request: a plan, optional search parameters, and a description of the
// artifact the parameters would retrieve.
package envelope

import "github.com/acislab/ichatbio-idigbio-agent/internal/domain/query"

// Envelope is the generation target for one operation. Leaving
// SearchParameters unset is a deliberate abort: the model judged that the
// request cannot be honestly satisfied with the available parameters, and
// Plan explains why.
type Envelope[P any] struct {
	Plan                string `json:"plan" jsonschema:"required,description=A brief explanation of what API parameters you plan to use. Or if you are unable to fulfill the user's request using the available API parameters a brief explanation of why you cannot retrieve the requested records."`
	SearchParameters    *P     `json:"search_parameters,omitempty" jsonschema:"description=The search parameters to use to retrieve the requested records. If you are unable to fulfill the user's request using the available API parameters leave this field unset to abort."`
	ArtifactDescription string `json:"artifact_description,omitempty" jsonschema:"description=A concise characterization of the retrieved record data if any. Required whenever search_parameters is set."`
}

// Aborted reports whether the model declined to produce parameters.
func (e Envelope[P]) Aborted() bool { return e.SearchParameters == nil }

// Validate enforces the envelope invariant: the plan is always present, and
// search parameters and the artifact description travel together. An
// inconsistent envelope is terminal: the generation attempt contradicted
// itself, and retrying with the same prompt cannot be trusted to converge.
func (e *Envelope[P]) Validate() error {
	if e.Plan == "" {
		return &query.ValidationError{Field: "plan", Message: "a plan is required"}
	}
	if e.SearchParameters == nil && e.ArtifactDescription != "" {
		return &query.ValidationError{
			Field:    "artifact_description",
			Message:  "Error: an artifact description was provided without search parameters",
			Terminal: true,
		}
	}
	if e.SearchParameters != nil && e.ArtifactDescription == "" {
		return &query.ValidationError{
			Field:    "artifact_description",
			Message:  "Error: search parameters were provided without an artifact description",
			Terminal: true,
		}
	}
	if e.SearchParameters != nil {
		if v, ok := any(e.SearchParameters).(interface{ Validate() error }); ok {
			return v.Validate()
		}
	}
	return nil
}
