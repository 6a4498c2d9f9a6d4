// Package occurrence drives the occurrence records operation: generate
// search parameters from a free-text request, query the iDigBio records API,
// and report the results with a portal link and a JSON artifact.
package occurrence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/acislab/ichatbio-idigbio-agent/internal/domain"
	"github.com/acislab/ichatbio-idigbio-agent/internal/idigbio"
)

// Entrypoint is the agent card entry for this operation.
var Entrypoint = domain.Entrypoint{
	ID: "find_occurrence_records",
	Description: "Searches for species occurrence records using the iDigBio Portal or the iDigBio records API. " +
		"Returns the total number of records that were found, the URL used to call the iDigBio Records API to " +
		"perform the search, and a URL to view the results in the iDigBio Search Portal.",
}

// Service handles occurrence record searches.
type Service struct {
	gen          Generator
	api          API
	searchBase   string
	portalBase   string
	downloadBase string
	logger       *zap.Logger
}

// Config holds the URL bases used in replies and artifacts.
type Config struct {
	SearchBase   string
	PortalBase   string
	DownloadBase string
	Logger       *zap.Logger
}

// New creates an occurrence search service.
func New(gen Generator, api API, cfg *Config) *Service {
	s := &Service{gen: gen, api: api}
	if cfg != nil {
		s.searchBase = cfg.SearchBase
		s.portalBase = cfg.PortalBase
		s.downloadBase = cfg.DownloadBase
		s.logger = cfg.Logger
	}
	if s.searchBase == "" {
		s.searchBase = idigbio.DefaultSearchAPIBase
	}
	if s.portalBase == "" {
		s.portalBase = idigbio.DefaultPortalBase
	}
	if s.downloadBase == "" {
		s.downloadBase = idigbio.DefaultDownloadAPIBase
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Run executes one occurrence search request. Generation failures, deliberate
// aborts, and upstream API failures are reported through the response context
// and end the run without an error.
func (s *Service) Run(ctx context.Context, rc domain.ResponseContext, request string) error {
	proc, err := rc.BeginProcess(ctx, "Searching iDigBio occurrence records")
	if err != nil {
		return err
	}

	if err := proc.Log(ctx, "Generating search parameters for iDigBio's occurrence records API"); err != nil {
		return err
	}

	env, err := s.gen.GenerateOccurrenceParameters(ctx, request)
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
	p.ApplyDefaults()

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal search parameters: %w", err)
	}
	if err := proc.LogData(ctx, "Generated search parameters", json.RawMessage(body)); err != nil {
		return err
	}

	apiURL, err := idigbio.APIURL(s.searchBase, idigbio.RecordsSearchPath, body)
	if err != nil {
		return fmt.Errorf("build API URL: %w", err)
	}
	if err := proc.Log(ctx, fmt.Sprintf(
		"Sending a POST request to the iDigBio occurrence records API at %s", apiURL)); err != nil {
		return err
	}

	result, err := s.api.SearchRecords(ctx, body)
	if err != nil {
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) {
			return proc.Log(ctx, fmt.Sprintf(
				"Response code: %d - something went wrong!", upstream.StatusCode))
		}
		return err
	}

	matchingCount := result.ItemCount
	recordCount := len(result.Items)

	if err := rc.Reply(ctx, fmt.Sprintf(
		"The API query returned %d out of %d matching records in iDigBio using the URL %s",
		recordCount, matchingCount, apiURL)); err != nil {
		return err
	}

	portalURL, err := idigbio.PortalSearchURL(s.portalBase, body)
	if err != nil {
		return fmt.Errorf("build portal URL: %w", err)
	}
	if err := proc.Log(ctx, fmt.Sprintf(
		"[View %d out of %d matching records](%s) | [Show in iDigBio portal](%s)",
		recordCount, matchingCount, apiURL, portalURL)); err != nil {
		return err
	}

	if recordCount == 0 {
		return nil
	}

	if err := rc.Reply(ctx, fmt.Sprintf(
		"The records can be viewed in the iDigBio portal at %s. The portal shows the records in an"+
			" interactive list and plots them on a map. The raw records returned by the API can be"+
			" found at %s", portalURL, apiURL)); err != nil {
		return err
	}

	s.logger.Info("occurrence search completed",
		zap.Int("retrieved", recordCount),
		zap.Int("matching", matchingCount),
	)

	// The data API exports the full record set for the same rq, without
	// the search API's limit.
	rqOnly, err := json.Marshal(struct {
		RQ any `json:"rq"`
	}{RQ: p.RQ})
	if err != nil {
		return fmt.Errorf("marshal download parameters: %w", err)
	}
	downloadURL, err := idigbio.DownloadURL(s.downloadBase, rqOnly)
	if err != nil {
		return fmt.Errorf("build download URL: %w", err)
	}

	return proc.CreateArtifact(ctx, domain.Artifact{
		Mimetype:    "application/json",
		Description: env.ArtifactDescription,
		URIs:        []string{apiURL},
		Metadata: map[string]any{
			"data_source":            "iDigBio",
			"portal_url":             portalURL,
			"download_url":           downloadURL,
			"retrieved_record_count": recordCount,
			"total_matching_count":   matchingCount,
		},
	})
}
