package envelope

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/acislab/ichatbio-idigbio-agent/internal/domain/params"
	"github.com/acislab/ichatbio-idigbio-agent/internal/domain/query"
)

func TestValidateAcceptsFullEnvelope(t *testing.T) {
	var env Envelope[params.OccurrenceSearch]
	raw := `{
		"plan": "Search for Homo sapiens records",
		"search_parameters": {"rq": {"genus": "Homo", "specificepithet": "sapiens"}},
		"artifact_description": "Homo sapiens occurrence records"
	}`
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := env.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if env.Aborted() {
		t.Error("an envelope with parameters should not read as aborted")
	}
}

func TestValidateAcceptsAbort(t *testing.T) {
	env := Envelope[params.OccurrenceSearch]{Plan: "The request asks for DNA data, which this API does not index."}
	if err := env.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !env.Aborted() {
		t.Error("an envelope without parameters should read as aborted")
	}
}

func TestValidateRequiresPlan(t *testing.T) {
	var env Envelope[params.OccurrenceSearch]
	err := env.Validate()
	if err == nil {
		t.Fatal("expected an error for a missing plan")
	}
	if query.IsTerminal(err) {
		t.Error("a missing plan should be retryable")
	}
}

func TestValidatePairingIsTerminal(t *testing.T) {
	p := params.OccurrenceSearch{}

	env := Envelope[params.OccurrenceSearch]{Plan: "p", SearchParameters: &p}
	if err := env.Validate(); !query.IsTerminal(err) {
		t.Errorf("parameters without a description should be terminal, got: %v", err)
	}

	env = Envelope[params.OccurrenceSearch]{Plan: "p", ArtifactDescription: "d"}
	if err := env.Validate(); !query.IsTerminal(err) {
		t.Errorf("a description without parameters should be terminal, got: %v", err)
	}
}

func TestValidateDelegatesToParameters(t *testing.T) {
	limit := 0
	q := query.MustParse(`{"genus": "Homo"}`)
	p := params.OccurrenceSearch{RQ: &q, Limit: &limit}
	env := Envelope[params.OccurrenceSearch]{
		Plan:                "p",
		SearchParameters:    &p,
		ArtifactDescription: "d",
	}
	err := env.Validate()
	if err == nil {
		t.Fatal("expected the nested limit validation to fail")
	}
	if query.IsTerminal(err) {
		t.Error("an out-of-range limit should be retryable")
	}
}

func TestValidateRejectsMissingSearchCriteria(t *testing.T) {
	var env Envelope[params.OccurrenceSearch]
	raw := `{
		"plan": "Return a sample of records",
		"search_parameters": {"limit": 5},
		"artifact_description": "A sample of occurrence records"
	}`
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	err := env.Validate()
	if err == nil {
		t.Fatal("parameters without rq would match every record and must not validate")
	}
	var verr *query.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a ValidationError, got %T: %v", err, err)
	}
	if verr.Field != "rq" {
		t.Errorf("expected the error to name rq, got %q", verr.Field)
	}
	if verr.Terminal {
		t.Error("a missing rq should be retryable")
	}
}
