package summary

import (
	"context"

	"github.com/acislab/ichatbio-idigbio-agent/internal/domain/envelope"
	"github.com/acislab/ichatbio-idigbio-agent/internal/domain/params"
	"github.com/acislab/ichatbio-idigbio-agent/internal/idigbio"
)

// Generator translates a free-text request into summary parameters.
type Generator interface {
	GenerateSummaryParameters(
		ctx context.Context, request string,
	) (envelope.Envelope[params.Summary], error)
}

// API issues the records summary query against iDigBio. The query travels in
// the URL because the summary endpoint is a GET.
type API interface {
	TopRecords(ctx context.Context, queryURL string) (idigbio.TopCounts, error)
}
