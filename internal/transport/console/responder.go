// Package console implements the response boundary for one-shot CLI runs:
// progress goes to the terminal as it happens.
package console

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/acislab/ichatbio-idigbio-agent/internal/domain"
)

// Responder implements domain.ResponseContext by writing the transcript to a
// stream, usually stdout.
type Responder struct {
	Out io.Writer
}

var _ domain.ResponseContext = (*Responder)(nil)

// BeginProcess prints the process summary and returns a printer for its steps.
func (r *Responder) BeginProcess(_ context.Context, summary string) (domain.Process, error) {
	fmt.Fprintf(r.Out, "=== %s\n", summary)
	return &process{out: r.Out}, nil
}

// Reply prints a message addressed to the user.
func (r *Responder) Reply(_ context.Context, text string) error {
	_, err := fmt.Fprintf(r.Out, "\n%s\n", text)
	return err
}

type process struct {
	out io.Writer
}

func (p *process) Log(_ context.Context, text string) error {
	_, err := fmt.Fprintf(p.out, "  - %s\n", text)
	return err
}

func (p *process) LogData(_ context.Context, text string, data any) error {
	raw, err := json.MarshalIndent(data, "    ", "  ")
	if err != nil {
		raw = []byte(fmt.Sprintf("%v", data))
	}
	_, err = fmt.Fprintf(p.out, "  - %s\n    %s\n", text, raw)
	return err
}

func (p *process) CreateArtifact(_ context.Context, artifact domain.Artifact) error {
	fmt.Fprintf(p.out, "  - Artifact (%s): %s\n", artifact.Mimetype, artifact.Description)
	for _, uri := range artifact.URIs {
		fmt.Fprintf(p.out, "    %s\n", uri)
	}
	if len(artifact.Metadata) > 0 {
		raw, err := json.MarshalIndent(artifact.Metadata, "    ", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(p.out, "    %s\n", raw)
	}
	return nil
}
