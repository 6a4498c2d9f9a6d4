// Package summary drives the aggregate count operation: break down matching
// record counts by a field through iDigBio's records summary API.
package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/acislab/ichatbio-idigbio-agent/internal/domain"
	"github.com/acislab/ichatbio-idigbio-agent/internal/domain/params"
	"github.com/acislab/ichatbio-idigbio-agent/internal/idigbio"
)

// Entrypoint is the agent card entry for this operation.
var Entrypoint = domain.Entrypoint{
	ID: "count_occurrence_records",
	Description: "Counts the total number of records in iDigBio matching the user's search criteria. Also breaks" +
		" the count down by a specified field (default: scientific name) to build top-N lists or to find unique" +
		" record field values that were matched. Counts can be broken down by any of iDigBio's query fields, such" +
		" as \"country\" or \"collector\". Does NOT count the total number of unique values that were matched." +
		"\n\nHere are some examples of building top-N lists:\n" +
		"- List the 10 species that have the most records in a country\n" +
		"- List the 5 countries that have the most records of a species\n" +
		"- List the 3 collectors who have recorded the most occurrences of a species\n" +
		"\nHere are some examples of finding unique values in matching records:\n" +
		"- List the continents that a species occurs in\n" +
		"- List different scientific names that have the same genus and specific epithet (e.g., scientific names" +
		" with different authors)\n" +
		"\nAlso returns the URL used to collect records counts from the iDigBio Summary API.",
}

// Service handles aggregate record counts.
type Service struct {
	gen        Generator
	api        API
	searchBase string
	logger     *zap.Logger
}

// Config holds the URL base used to build summary query URLs.
type Config struct {
	SearchBase string
	Logger     *zap.Logger
}

// New creates a summary service.
func New(gen Generator, api API, cfg *Config) *Service {
	s := &Service{gen: gen, api: api}
	if cfg != nil {
		s.searchBase = cfg.SearchBase
		s.logger = cfg.Logger
	}
	if s.searchBase == "" {
		s.searchBase = idigbio.DefaultSearchAPIBase
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Run executes one aggregate count request.
func (s *Service) Run(ctx context.Context, rc domain.ResponseContext, request string) error {
	proc, err := rc.BeginProcess(ctx, "Requesting iDigBio statistics")
	if err != nil {
		return err
	}

	if err := proc.Log(ctx, "Generating search parameters for species occurrences"); err != nil {
		return err
	}

	env, err := s.gen.GenerateSummaryParameters(ctx, request)
	if err != nil {
		if errors.Is(err, domain.ErrGenerationFailed) {
			return proc.Log(ctx, domain.GenerationMessage(err))
		}
		return err
	}
	if env.Aborted() {
		return proc.Log(ctx, fmt.Sprintf(
			"Failed to generate appropriate search parameters. Reason: %s", env.Plan))
	}

	p := env.SearchParameters

	// Some fields are indexed by word instead of full text, which is not
	// useful for breakdowns. Switch to their keyword versions.
	p.TopFields = p.TopFields.Remapped()

	// An unset count still defaults the preview size, but the API itself is
	// told zero, which means no cap on the unique values it reports.
	countUnset := p.Count == nil
	if countUnset {
		zero := 0
		p.Count = &zero
	}

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal search parameters: %w", err)
	}
	if err := proc.LogData(ctx, "Generated search parameters", json.RawMessage(body)); err != nil {
		return err
	}

	queryURL, err := idigbio.APIURL(s.searchBase, idigbio.TopRecordsPath, body)
	if err != nil {
		return fmt.Errorf("build API URL: %w", err)
	}
	if err := proc.Log(ctx, fmt.Sprintf(
		"Sending a GET request to the iDigBio records summary API at %s", queryURL)); err != nil {
		return err
	}

	counts, err := s.api.TopRecords(ctx, queryURL)
	if err != nil {
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) {
			return proc.Log(ctx, fmt.Sprintf(
				"Response code: %d - something went wrong!", upstream.StatusCode))
		}
		return err
	}

	topField := p.TopFields.First()
	uniqueCount := len(counts.Counts)

	if err := rc.Reply(ctx, fmt.Sprintf(
		"The API query found %d unique %q values across %d matching records in iDigBio",
		uniqueCount, topField, counts.ItemCount)); err != nil {
		return err
	}
	if err := proc.Log(ctx, fmt.Sprintf(
		"[View summary of %d unique %q values across %d records](%s)",
		uniqueCount, topField, counts.ItemCount, queryURL)); err != nil {
		return err
	}

	if counts.ItemCount == 0 {
		return nil
	}

	if uniqueCount >= params.MaxCount {
		if err := rc.Reply(ctx, fmt.Sprintf(
			"Warning: Maximum count reached! iDigBio's Summary API can not return more than %d unique"+
				" values. There are probably more than that. Consider narrowing your search parameters"+
				" if you need exact counts.", params.MaxCount)); err != nil {
			return err
		}
	}

	previewCount := previewSize(countUnset, *p.Count)
	if previewCount > uniqueCount {
		previewCount = uniqueCount
	}

	table := domain.Table{Columns: []string{counts.Field, "records"}}
	for _, c := range counts.Counts[:previewCount] {
		table.Rows = append(table.Rows, []any{c.Value, c.Count})
	}
	if err := proc.LogData(ctx, fmt.Sprintf(
		"Record counts for the top %d out of %d unique %q values",
		previewCount, uniqueCount, topField), table); err != nil {
		return err
	}

	s.logger.Info("summary completed",
		zap.String("top_field", topField),
		zap.Int("unique_values", uniqueCount),
		zap.Int("matching", counts.ItemCount),
	)

	return proc.CreateArtifact(ctx, domain.Artifact{
		Mimetype:    "application/json",
		Description: env.ArtifactDescription,
		URIs:        []string{queryURL},
		Metadata: map[string]any{
			"data_source":        "iDigBio",
			"total_record_count": counts.ItemCount,
			"total_unique_count": uniqueCount,
		},
	})
}

// previewSize decides how many of the top counts to show. An unset count
// falls back to the default preview size regardless of the zero sent to the
// API; an explicit count is honored up to the preview cap.
func previewSize(countUnset bool, count int) int {
	switch {
	case countUnset:
		return params.DefaultCount
	case count > params.MaxPreview || count == 0:
		return params.MaxPreview
	default:
		return count
	}
}
