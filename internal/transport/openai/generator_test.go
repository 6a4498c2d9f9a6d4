package openai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/acislab/ichatbio-idigbio-agent/internal/domain"
	"github.com/acislab/ichatbio-idigbio-agent/internal/domain/params"
)

// scriptedClient plays back canned completions and records the requests it
// received. The last response repeats once the script runs out.
type scriptedClient struct {
	responses []string
	err       error
	requests  []openai.ChatCompletionRequest
}

func (c *scriptedClient) CreateChatCompletion(
	_ context.Context, req openai.ChatCompletionRequest,
) (openai.ChatCompletionResponse, error) {
	c.requests = append(c.requests, req)
	if c.err != nil {
		return openai.ChatCompletionResponse{}, c.err
	}
	i := len(c.requests) - 1
	if i >= len(c.responses) {
		i = len(c.responses) - 1
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: c.responses[i]}},
		},
	}, nil
}

func newTestGenerator(client *scriptedClient) *Generator {
	return &Generator{
		client:      client,
		model:       "test-model",
		maxAttempts: DefaultMaxAttempts,
		logger:      zap.NewNop(),
	}
}

const validEnvelope = `{
	"plan": "search by genus",
	"search_parameters": {"rq": {"genus": "Homo"}},
	"artifact_description": "Occurrence records of the genus Homo"
}`

func TestGenerateFirstAttemptSucceeds(t *testing.T) {
	client := &scriptedClient{responses: []string{validEnvelope}}
	gen := newTestGenerator(client)

	env, err := gen.GenerateOccurrenceParameters(context.Background(), "Homo")
	if err != nil {
		t.Fatalf("GenerateOccurrenceParameters: %v", err)
	}
	if env.Aborted() {
		t.Fatal("expected search parameters")
	}
	if got := env.SearchParameters.RQ.Len(); got != 1 {
		t.Errorf("rq field count = %d, want 1", got)
	}
	if len(client.requests) != 1 {
		t.Errorf("completion calls = %d, want 1", len(client.requests))
	}
}

func TestGenerateAbortPassesValidation(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"plan": "The API cannot relate records to each other, so I should abort."}`,
	}}
	gen := newTestGenerator(client)

	env, err := gen.GenerateOccurrenceParameters(context.Background(), "proximity search")
	if err != nil {
		t.Fatalf("GenerateOccurrenceParameters: %v", err)
	}
	if !env.Aborted() {
		t.Error("expected an aborted envelope")
	}
}

func TestGenerateRetriesWithFeedback(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"plan": "p", "search_parameters": {"rq": {"colour": "blue"}}, "artifact_description": "d"}`,
		validEnvelope,
	}}
	gen := newTestGenerator(client)

	_, err := gen.GenerateOccurrenceParameters(context.Background(), "Homo")
	if err != nil {
		t.Fatalf("GenerateOccurrenceParameters: %v", err)
	}
	if len(client.requests) != 2 {
		t.Fatalf("completion calls = %d, want 2", len(client.requests))
	}

	second := client.requests[1].Messages
	if len(second) != 4 {
		t.Fatalf("retry message count = %d, want 4", len(second))
	}
	if second[2].Role != openai.ChatMessageRoleAssistant {
		t.Errorf("message 2 role = %q", second[2].Role)
	}
	if !strings.Contains(second[3].Content, "did not validate") {
		t.Errorf("feedback message = %q", second[3].Content)
	}
}

func TestGenerateTerminalStopsRetrying(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"plan": "p", "search_parameters":
			{"rq": {"geopoint": {"type": "geo_distance", "lat": 100, "lon": 10}}},
			"artifact_description": "d"}`,
	}}
	gen := newTestGenerator(client)

	_, err := gen.GenerateOccurrenceParameters(context.Background(), "somewhere impossible")
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(client.requests) != 1 {
		t.Errorf("completion calls = %d, want 1", len(client.requests))
	}

	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error type = %T", err)
	}
	if !genErr.Terminal {
		t.Error("expected a terminal failure")
	}
	if !strings.Contains(genErr.Message, "not in range") {
		t.Errorf("message = %q", genErr.Message)
	}
}

func TestGenerateInconsistentEnvelopeIsTerminal(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"plan": "p", "search_parameters": {"rq": {"genus": "Homo"}}}`,
	}}
	gen := newTestGenerator(client)

	_, err := gen.GenerateOccurrenceParameters(context.Background(), "Homo")

	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error type = %T", err)
	}
	if !genErr.Terminal {
		t.Error("expected a terminal failure for a parameters-without-description envelope")
	}
}

func TestGenerateExhaustsAttempts(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"plan": "p", "search_parameters": {"rq": {"colour": "blue"}}, "artifact_description": "d"}`,
	}}
	gen := newTestGenerator(client)

	_, err := gen.GenerateOccurrenceParameters(context.Background(), "Homo")
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(client.requests) != DefaultMaxAttempts {
		t.Errorf("completion calls = %d, want %d", len(client.requests), DefaultMaxAttempts)
	}

	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error type = %T", err)
	}
	if genErr.Terminal {
		t.Error("exhaustion is not terminal")
	}
	want := "Error: AI failed to generate valid output after 3 attempts."
	if genErr.Message != want {
		t.Errorf("message = %q, want %q", genErr.Message, want)
	}
}

func TestGenerateServiceError(t *testing.T) {
	client := &scriptedClient{err: errors.New("connection refused")}
	gen := newTestGenerator(client)

	_, err := gen.GenerateSummaryParameters(context.Background(), "count things")
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("error = %v, want ErrGenerationFailed", err)
	}
	var genErr *domain.GenerationError
	if errors.As(err, &genErr) {
		t.Error("a transport failure must not look like a classified generation outcome")
	}
}

func TestResponseSchemaShape(t *testing.T) {
	schema := responseSchema[params.OccurrenceSearch]()
	raw, err := json.Marshal(schema)
	if err != nil {
		t.Fatalf("marshal schema: %v", err)
	}

	for _, want := range []string{
		`"plan"`, `"search_parameters"`, `"artifact_description"`, `"rq"`,
	} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("schema missing %s", want)
		}
	}
	if strings.Contains(string(raw), `"$ref"`) {
		t.Error("schema must be inlined for the response_format slot")
	}
}
