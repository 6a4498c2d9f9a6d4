package occurrence

import (
	"context"
	"encoding/json"

	"github.com/acislab/ichatbio-idigbio-agent/internal/domain/envelope"
	"github.com/acislab/ichatbio-idigbio-agent/internal/domain/params"
	"github.com/acislab/ichatbio-idigbio-agent/internal/idigbio"
)

// Generator translates a free-text request into occurrence search parameters.
type Generator interface {
	GenerateOccurrenceParameters(
		ctx context.Context, request string,
	) (envelope.Envelope[params.OccurrenceSearch], error)
}

// API issues the occurrence records search against iDigBio.
type API interface {
	SearchRecords(ctx context.Context, params json.RawMessage) (idigbio.SearchResult, error)
}
