// Package openai implements the structured-generation protocol: it asks an
// OpenAI-compatible completion service for a parameter envelope conforming to
// a JSON schema, validates what comes back, and retries with bounded,
// classified failure handling.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/acislab/ichatbio-idigbio-agent/internal/domain"
	"github.com/acislab/ichatbio-idigbio-agent/internal/domain/envelope"
	"github.com/acislab/ichatbio-idigbio-agent/internal/domain/params"
	"github.com/acislab/ichatbio-idigbio-agent/internal/domain/query"
	"github.com/acislab/ichatbio-idigbio-agent/internal/metrics"
	"github.com/acislab/ichatbio-idigbio-agent/internal/prompt"
)

// DefaultMaxAttempts is the generation retry ceiling.
const DefaultMaxAttempts = 3

// Generator produces validated parameter envelopes from free-text requests.
type Generator struct {
	client      completionClient
	model       string
	maxAttempts int
	logger      *zap.Logger
}

// completionClient is the slice of the OpenAI client the generator uses.
// Tests substitute a scripted implementation.
type completionClient interface {
	CreateChatCompletion(
		ctx context.Context, req openai.ChatCompletionRequest,
	) (openai.ChatCompletionResponse, error)
}

// Config holds the completion service settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxAttempts int
	Logger      *zap.Logger
}

// NewGenerator creates a generator backed by an OpenAI-compatible service.
func NewGenerator(cfg *Config) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// GenerateOccurrenceParameters translates a request for the occurrence
// records operation.
func (g *Generator) GenerateOccurrenceParameters(
	ctx context.Context, request string,
) (envelope.Envelope[params.OccurrenceSearch], error) {
	return generate[params.OccurrenceSearch](
		ctx, g, "find_occurrence_records", prompt.ForOccurrenceSearch(), request,
	)
}

// GenerateSummaryParameters translates a request for the aggregate count
// operation.
func (g *Generator) GenerateSummaryParameters(
	ctx context.Context, request string,
) (envelope.Envelope[params.Summary], error) {
	return generate[params.Summary](
		ctx, g, "count_occurrence_records", prompt.ForSummary(), request,
	)
}

// GenerateMediaParameters translates a request for the media records
// operation.
func (g *Generator) GenerateMediaParameters(
	ctx context.Context, request string,
) (envelope.Envelope[params.MediaSearch], error) {
	return generate[params.MediaSearch](
		ctx, g, "find_media_records", prompt.ForMediaSearch(), request,
	)
}

// generate runs the retry loop. Each attempt asks for output conforming to
// the envelope schema at (effectively) zero temperature; invalid output is
// fed back as a correction turn, terminal failures stop the loop, and
// exhaustion raises a generation failure naming the attempt count.
func generate[P any](
	ctx context.Context, g *Generator, operation, systemPrompt, request string,
) (envelope.Envelope[P], error) {
	var empty envelope.Envelope[P]

	format := &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   operation + "_parameters",
			Schema: responseSchema[P](),
		},
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: request},
	}

	var lastErr error
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		start := time.Now()

		resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    g.model,
			Messages: messages,
			// go-openai omits a zero temperature from the request, which
			// would fall back to the service default of 1.
			Temperature:    math.SmallestNonzeroFloat32,
			ResponseFormat: format,
		})

		metrics.GenerationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.GenerationAttemptsTotal.WithLabelValues(operation, "api_error").Inc()
			metrics.GenerationFailuresTotal.WithLabelValues(operation, metrics.FailureAPI).Inc()
			return empty, fmt.Errorf("%w: completion request: %w", domain.ErrGenerationFailed, err)
		}
		if len(resp.Choices) == 0 {
			metrics.GenerationAttemptsTotal.WithLabelValues(operation, "api_error").Inc()
			metrics.GenerationFailuresTotal.WithLabelValues(operation, metrics.FailureAPI).Inc()
			return empty, fmt.Errorf("%w: completion returned no choices", domain.ErrGenerationFailed)
		}

		content := resp.Choices[0].Message.Content

		var env envelope.Envelope[P]
		err = json.Unmarshal([]byte(content), &env)
		if err == nil {
			err = env.Validate()
		}
		if err == nil {
			metrics.GenerationAttemptsTotal.WithLabelValues(operation, "success").Inc()
			return env, nil
		}

		lastErr = err
		g.logger.Warn("generated parameters failed validation",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Bool("terminal", query.IsTerminal(err)),
			zap.Error(err),
		)

		if query.IsTerminal(err) {
			metrics.GenerationAttemptsTotal.WithLabelValues(operation, "terminal").Inc()
			metrics.GenerationFailuresTotal.WithLabelValues(operation, metrics.FailureTerminal).Inc()
			return empty, domain.NewTerminalGeneration(query.TerminalMessage(err), attempt)
		}

		metrics.GenerationAttemptsTotal.WithLabelValues(operation, "invalid").Inc()
		messages = append(messages,
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("The response did not validate: %v. Answer the original request again, correcting the problem.", err),
			},
		)
	}

	metrics.GenerationFailuresTotal.WithLabelValues(operation, metrics.FailureExhausted).Inc()
	g.logger.Warn("generation attempts exhausted",
		zap.String("operation", operation),
		zap.Int("attempts", g.maxAttempts),
		zap.Error(lastErr),
	)
	return empty, domain.NewExhaustedGeneration(g.maxAttempts)
}
