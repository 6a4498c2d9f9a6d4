package params

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/acislab/ichatbio-idigbio-agent/internal/domain/query"
)

func intp(n int) *int { return &n }

func TestOccurrenceSearchApplyDefaults(t *testing.T) {
	var p OccurrenceSearch
	p.ApplyDefaults()
	if p.Limit == nil || *p.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %v", DefaultLimit, p.Limit)
	}

	p = OccurrenceSearch{Limit: intp(250)}
	p.ApplyDefaults()
	if *p.Limit != 250 {
		t.Errorf("an explicit limit should survive defaulting, got %d", *p.Limit)
	}
}

func TestOccurrenceSearchRequiresQuery(t *testing.T) {
	var p OccurrenceSearch
	if err := json.Unmarshal([]byte(`{"limit":5}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	err := p.Validate()
	if err == nil {
		t.Fatal("expected an error when rq is absent")
	}
	var verr *query.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a ValidationError, got %T: %v", err, err)
	}
	if verr.Field != "rq" || verr.Terminal {
		t.Errorf("expected a retryable error naming rq, got %+v", verr)
	}

	q := query.MustParse(`{"genus":"Homo"}`)
	p.RQ = &q
	if err := p.Validate(); err != nil {
		t.Errorf("unexpected error with rq present: %v", err)
	}
}

func TestOccurrenceSearchValidateLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit *int
		ok    bool
	}{
		{"unset", nil, true},
		{"minimum", intp(1), true},
		{"maximum", intp(5000), true},
		{"zero", intp(0), false},
		{"negative", intp(-5), false},
		{"over maximum", intp(5001), false},
	}
	q := query.MustParse(`{"genus":"Homo"}`)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := OccurrenceSearch{RQ: &q, Limit: tt.limit}
			err := p.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestSummaryValidate(t *testing.T) {
	p := Summary{TopFields: NewTopFields("scientificname")}
	if err := p.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	p = Summary{}
	if err := p.Validate(); err == nil {
		t.Error("expected an error when no breakdown field is set")
	}

	p = Summary{TopFields: NewTopFields("country"), Count: intp(0)}
	if err := p.Validate(); err == nil {
		t.Error("expected an error for count 0")
	}

	p = Summary{TopFields: NewTopFields("country"), Count: intp(MaxCount + 1)}
	if err := p.Validate(); err == nil {
		t.Error("expected an error for count above the cap")
	}
}

func TestTopFieldsRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		literal string
	}{
		{"scalar form", `"country"`},
		{"list form", `["country","stateprovince"]`},
		{"single-element list stays a list", `["country"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tf TopFields
			if err := json.Unmarshal([]byte(tt.literal), &tf); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			out, err := json.Marshal(tf)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(out) != tt.literal {
				t.Errorf("round trip changed the form:\n in: %s\nout: %s", tt.literal, out)
			}
		})
	}
}

func TestTopFieldsRejectsOtherShapes(t *testing.T) {
	for _, literal := range []string{`42`, `{"field":"country"}`, `[1,2]`} {
		var tf TopFields
		if err := json.Unmarshal([]byte(literal), &tf); err == nil {
			t.Errorf("expected %s to be rejected", literal)
		}
	}
}

func TestTopFieldsRemapped(t *testing.T) {
	tf := NewTopFieldsList("collector", "scientificname")
	remapped := tf.Remapped()

	fields := remapped.Fields()
	if fields[0] != "collector.keyword" || fields[1] != "scientificname" {
		t.Errorf("unexpected remapped fields: %v", fields)
	}
	if tf.Fields()[0] != "collector" {
		t.Error("Remapped should not mutate the original")
	}
}

func TestTopFieldsRemappedKeepsScalarForm(t *testing.T) {
	tf := NewTopFields("collector")
	out, err := json.Marshal(tf.Remapped())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"collector.keyword"` {
		t.Errorf("expected the scalar form to survive remapping, got %s", out)
	}
}

func TestTopFieldsFirst(t *testing.T) {
	if first := NewTopFieldsList("a", "b").First(); first != "a" {
		t.Errorf("expected %q, got %q", "a", first)
	}
	if first := (TopFields{}).First(); first != "" {
		t.Errorf("expected empty string for zero value, got %q", first)
	}
}

func TestSummaryUnmarshal(t *testing.T) {
	literal := `{"top_fields":"scientificname","count":5,"rq":{"country":"Colombia"}}`
	var p Summary
	if err := json.Unmarshal([]byte(literal), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.TopFields.First() != "scientificname" {
		t.Errorf("unexpected top field: %q", p.TopFields.First())
	}
	if p.Count == nil || *p.Count != 5 {
		t.Errorf("unexpected count: %v", p.Count)
	}
	if p.RQ == nil {
		t.Fatal("expected the rq object to be decoded")
	}
	if _, ok := p.RQ.Get("country"); !ok {
		t.Error("expected the country filter to survive decoding")
	}
}

func TestMediaSearchUnmarshal(t *testing.T) {
	literal := `{"mq":{"mediatype":"images"},"rq":{"genus":"Ursus"}}`
	var p MediaSearch
	if err := json.Unmarshal([]byte(literal), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.MQ == nil || p.RQ == nil {
		t.Fatal("expected both query objects to be decoded")
	}
	if err := p.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestUnmarshalSurfacesQueryValidation(t *testing.T) {
	var p OccurrenceSearch
	err := json.Unmarshal([]byte(`{"rq":{"bogus":"x"}}`), &p)
	if err == nil {
		t.Fatal("expected the nested query validation to fail the decode")
	}
	var verr *query.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a ValidationError in the chain, got %T: %v", err, err)
	}
	if verr.Field != "bogus" {
		t.Errorf("expected the error to name the field, got %q", verr.Field)
	}
}
