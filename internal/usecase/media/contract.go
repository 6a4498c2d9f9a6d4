package media

import (
	"context"
	"encoding/json"

	"github.com/acislab/ichatbio-idigbio-agent/internal/domain/envelope"
	"github.com/acislab/ichatbio-idigbio-agent/internal/domain/params"
	"github.com/acislab/ichatbio-idigbio-agent/internal/idigbio"
)

// Generator translates a free-text request into media search parameters.
type Generator interface {
	GenerateMediaParameters(
		ctx context.Context, request string,
	) (envelope.Envelope[params.MediaSearch], error)
}

// API issues the media records search against iDigBio.
type API interface {
	SearchMedia(ctx context.Context, params json.RawMessage) (idigbio.SearchResult, error)
}
