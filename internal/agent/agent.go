// Package agent ties the three operations together behind a single card and
// a dispatch by entrypoint id.
package agent

import (
	"context"
	"fmt"

	"github.com/acislab/ichatbio-idigbio-agent/internal/domain"
	"github.com/acislab/ichatbio-idigbio-agent/internal/usecase/media"
	"github.com/acislab/ichatbio-idigbio-agent/internal/usecase/occurrence"
	"github.com/acislab/ichatbio-idigbio-agent/internal/usecase/summary"
)

// Runner executes one operation against a response context.
type Runner interface {
	Run(ctx context.Context, rc domain.ResponseContext, request string) error
}

// Card describes the agent to callers deciding which operation to invoke.
type Card struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Entrypoints []domain.Entrypoint `json:"entrypoints"`
}

// Agent dispatches requests to the operation named by an entrypoint id.
type Agent struct {
	runners     map[string]Runner
	entrypoints []domain.Entrypoint
}

// New creates the agent over the three operation services.
func New(occ *occurrence.Service, med *media.Service, sum *summary.Service) *Agent {
	return &Agent{
		runners: map[string]Runner{
			occurrence.Entrypoint.ID: occ,
			media.Entrypoint.ID:      med,
			summary.Entrypoint.ID:    sum,
		},
		entrypoints: []domain.Entrypoint{
			occurrence.Entrypoint,
			media.Entrypoint,
			summary.Entrypoint,
		},
	}
}

// Card returns the agent card.
func (a *Agent) Card() Card {
	return Card{
		Name:        "iDigBio Search",
		Description: "Searches for information in the iDigBio portal (https://idigbio.org).",
		Entrypoints: a.entrypoints,
	}
}

// Run executes the operation registered under the entrypoint id.
func (a *Agent) Run(ctx context.Context, rc domain.ResponseContext, entrypoint, request string) error {
	runner, ok := a.runners[entrypoint]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownEntrypoint, entrypoint)
	}
	return runner.Run(ctx, rc, request)
}
