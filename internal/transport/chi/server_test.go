package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/acislab/ichatbio-idigbio-agent/internal/agent"
	"github.com/acislab/ichatbio-idigbio-agent/internal/domain/envelope"
	"github.com/acislab/ichatbio-idigbio-agent/internal/domain/params"
	"github.com/acislab/ichatbio-idigbio-agent/internal/domain/query"
	"github.com/acislab/ichatbio-idigbio-agent/internal/idigbio"
	"github.com/acislab/ichatbio-idigbio-agent/internal/usecase/media"
	"github.com/acislab/ichatbio-idigbio-agent/internal/usecase/occurrence"
	"github.com/acislab/ichatbio-idigbio-agent/internal/usecase/summary"
)

// --- Mocks for the operation dependencies ---

type stubOccurrenceGen struct {
	env envelope.Envelope[params.OccurrenceSearch]
}

func (s *stubOccurrenceGen) GenerateOccurrenceParameters(
	_ context.Context, _ string,
) (envelope.Envelope[params.OccurrenceSearch], error) {
	return s.env, nil
}

type stubMediaGen struct{}

func (s *stubMediaGen) GenerateMediaParameters(
	_ context.Context, _ string,
) (envelope.Envelope[params.MediaSearch], error) {
	return envelope.Envelope[params.MediaSearch]{Plan: "abort"}, nil
}

type stubSummaryGen struct{}

func (s *stubSummaryGen) GenerateSummaryParameters(
	_ context.Context, _ string,
) (envelope.Envelope[params.Summary], error) {
	return envelope.Envelope[params.Summary]{Plan: "abort"}, nil
}

type stubSearchAPI struct {
	result idigbio.SearchResult
}

func (s *stubSearchAPI) SearchRecords(
	_ context.Context, _ json.RawMessage,
) (idigbio.SearchResult, error) {
	return s.result, nil
}

func (s *stubSearchAPI) SearchMedia(
	_ context.Context, _ json.RawMessage,
) (idigbio.SearchResult, error) {
	return s.result, nil
}

type stubTopAPI struct{}

func (s *stubTopAPI) TopRecords(_ context.Context, _ string) (idigbio.TopCounts, error) {
	return idigbio.TopCounts{}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	rq := query.MustParse(`{"genus": "Homo"}`)
	occGen := &stubOccurrenceGen{env: envelope.Envelope[params.OccurrenceSearch]{
		Plan:                "search by genus",
		SearchParameters:    &params.OccurrenceSearch{RQ: &rq},
		ArtifactDescription: "Occurrence records of the genus Homo",
	}}
	api := &stubSearchAPI{result: idigbio.SearchResult{
		ItemCount: 10,
		Items:     []idigbio.Item{{UUID: "a"}},
	}}

	a := agent.New(
		occurrence.New(occGen, api, nil),
		media.New(&stubMediaGen{}, api, nil),
		summary.New(&stubSummaryGen{}, &stubTopAPI{}, nil),
	)
	return NewServer(a, zap.NewNop()).Router(nil)
}

// --- Tests ---

func TestAgentCardEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("GET", "/.well-known/agent.json", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var card agent.Card
	if err := json.NewDecoder(rr.Body).Decode(&card); err != nil {
		t.Fatalf("decode card: %v", err)
	}
	if card.Name != "iDigBio Search" {
		t.Errorf("card name = %q", card.Name)
	}
	if len(card.Entrypoints) != 3 {
		t.Fatalf("entrypoint count = %d, want 3", len(card.Entrypoints))
	}
	if card.Entrypoints[0].ID != "find_occurrence_records" {
		t.Errorf("first entrypoint = %q", card.Entrypoints[0].ID)
	}
}

func TestRunEntrypoint(t *testing.T) {
	router := newTestRouter(t)

	body := strings.NewReader(`{"request": "Homo sapiens"}`)
	req := httptest.NewRequest("POST", "/entrypoints/find_occurrence_records", body)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Entrypoint string    `json:"entrypoint"`
		Messages   []Message `json:"messages"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Messages[0].Type != "begin_process" {
		t.Errorf("first message type = %q", resp.Messages[0].Type)
	}

	var artifacts, replies int
	for _, m := range resp.Messages {
		switch m.Type {
		case "artifact":
			artifacts++
			if m.ArtifactID == "" {
				t.Error("artifact message without an id")
			}
		case "reply":
			replies++
		}
	}
	if artifacts != 1 {
		t.Errorf("artifact messages = %d, want 1", artifacts)
	}
	if replies == 0 {
		t.Error("expected at least one reply message")
	}
}

type failingOccurrenceGen struct{}

func (f *failingOccurrenceGen) GenerateOccurrenceParameters(
	_ context.Context, _ string,
) (envelope.Envelope[params.OccurrenceSearch], error) {
	return envelope.Envelope[params.OccurrenceSearch]{}, errors.New("connection reset")
}

func TestRunEntrypointFailureLogsWithRequestID(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)

	api := &stubSearchAPI{}
	a := agent.New(
		occurrence.New(&failingOccurrenceGen{}, api, nil),
		media.New(&stubMediaGen{}, api, nil),
		summary.New(&stubSummaryGen{}, &stubTopAPI{}, nil),
	)
	router := NewServer(a, zap.New(core)).Router(nil)

	body := strings.NewReader(`{"request": "Homo sapiens"}`)
	req := httptest.NewRequest("POST", "/entrypoints/find_occurrence_records", body)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 error log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["entrypoint"] != "find_occurrence_records" {
		t.Errorf("logged entrypoint = %v", fields["entrypoint"])
	}
	if id, _ := fields["request_id"].(string); id == "" {
		t.Error("expected the request-scoped logger to carry the request id")
	}
}

func TestRunEntrypointUnknown(t *testing.T) {
	router := newTestRouter(t)

	body := strings.NewReader(`{"request": "anything"}`)
	req := httptest.NewRequest("POST", "/entrypoints/nope", body)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestRunEntrypointEmptyRequest(t *testing.T) {
	router := newTestRouter(t)

	body := strings.NewReader(`{}`)
	req := httptest.NewRequest("POST", "/entrypoints/find_occurrence_records", body)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}
