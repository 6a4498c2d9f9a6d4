// Package media drives the media records operation: search iDigBio for
// images, audio, and other media associated with occurrence records.
package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/acislab/ichatbio-idigbio-agent/internal/domain"
	"github.com/acislab/ichatbio-idigbio-agent/internal/idigbio"
)

// MaxPreviewItems caps the media preview table.
const MaxPreviewItems = 5

// Entrypoint is the agent card entry for this operation.
var Entrypoint = domain.Entrypoint{
	ID: "find_media_records",
	Description: "Searches iDigBio for media records (like images and audio). Returns the total number of media" +
		" records that were found, a URL to access the raw results returned by the iDigBio media API, and a URL" +
		" to view the results in the iDigBio Search Portal. Also displays an interactive media gallery to the user.",
}

// Service handles media record searches.
type Service struct {
	gen        Generator
	api        API
	searchBase string
	portalBase string
	logger     *zap.Logger
}

// Config holds the URL bases used in replies and previews.
type Config struct {
	SearchBase string
	PortalBase string
	Logger     *zap.Logger
}

// New creates a media search service.
func New(gen Generator, api API, cfg *Config) *Service {
	s := &Service{gen: gen, api: api}
	if cfg != nil {
		s.searchBase = cfg.SearchBase
		s.portalBase = cfg.PortalBase
		s.logger = cfg.Logger
	}
	if s.searchBase == "" {
		s.searchBase = idigbio.DefaultSearchAPIBase
	}
	if s.portalBase == "" {
		s.portalBase = idigbio.DefaultPortalBase
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Run executes one media search request.
func (s *Service) Run(ctx context.Context, rc domain.ResponseContext, request string) error {
	proc, err := rc.BeginProcess(ctx, "Searching iDigBio media records")
	if err != nil {
		return err
	}

	if err := proc.Log(ctx, "Generating search parameters for iDigBio's media records API"); err != nil {
		return err
	}

	env, err := s.gen.GenerateMediaParameters(ctx, request)
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

	body, err := json.Marshal(env.SearchParameters)
	if err != nil {
		return fmt.Errorf("marshal search parameters: %w", err)
	}
	if err := proc.LogData(ctx, "Generated search parameters", json.RawMessage(body)); err != nil {
		return err
	}

	apiURL, err := idigbio.APIURL(s.searchBase, idigbio.MediaSearchPath, body)
	if err != nil {
		return fmt.Errorf("build API URL: %w", err)
	}
	if err := proc.Log(ctx, fmt.Sprintf(
		"Sending a POST request to the iDigBio media records API at %s", apiURL)); err != nil {
		return err
	}

	result, err := s.api.SearchMedia(ctx, body)
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
		"The API query returned %d out of %d matching media records in iDigBio using the URL %s",
		recordCount, matchingCount, apiURL)); err != nil {
		return err
	}

	if recordCount == 0 {
		return nil
	}

	if table := previewTable(result.Items, s.portalBase); len(table.Rows) > 0 {
		if err := proc.LogData(ctx, fmt.Sprintf(
			"Preview of the first %d media records with an access URI", len(table.Rows)), table); err != nil {
			return err
		}
	}

	if err := proc.CreateArtifact(ctx, domain.Artifact{
		Mimetype:    "application/json",
		Description: env.ArtifactDescription,
		URIs:        []string{apiURL},
		Metadata: map[string]any{
			"data_source":            "iDigBio",
			"retrieved_record_count": recordCount,
			"total_matching_count":   matchingCount,
		},
	}); err != nil {
		return err
	}

	s.logger.Info("media search completed",
		zap.Int("retrieved", recordCount),
		zap.Int("matching", matchingCount),
	)

	return rc.Reply(ctx,
		"Tips:\n"+
			"- Image URLs can be found in the artifact record data at items[].indexTerms.accessuri\n"+
			"- UUIDs for associated specimen/occurrence records in iDigBio are found in the artifact record"+
			" data at items[].indexTerms.records\n"+
			"- The web pages for individual media records follow the pattern"+
			" https://portal.idigbio.org/portal/mediarecords/[UUID] using the UUIDs found in the artifact"+
			" record data at items[].uuid.")
}

// previewTable collects up to MaxPreviewItems items that carry an access URI.
// Items with a uuid also get a link to their portal page.
func previewTable(items []idigbio.Item, portalBase string) domain.Table {
	table := domain.Table{Columns: []string{"accessURI", "format", "view online"}}
	for _, it := range items {
		if len(table.Rows) == MaxPreviewItems {
			break
		}
		uri := it.AccessURI()
		if uri == "" {
			continue
		}
		page := ""
		if it.UUID != "" {
			page = idigbio.MediaRecordPageURL(portalBase, it.UUID)
		}
		table.Rows = append(table.Rows, []any{uri, it.Format(), page})
	}
	return table
}
