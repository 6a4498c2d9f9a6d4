package chi

import (
	"context"

	"github.com/google/uuid"

	"github.com/acislab/ichatbio-idigbio-agent/internal/domain"
)

// Message is one entry in the ordered transcript of a run.
type Message struct {
	Type     string           `json:"type"` // begin_process, log, reply, artifact
	Text     string           `json:"text,omitempty"`
	Data     any              `json:"data,omitempty"`
	Artifact *domain.Artifact `json:"artifact,omitempty"`

	// ProcessID groups log and artifact messages under the process that
	// produced them.
	ProcessID string `json:"process_id,omitempty"`

	// ArtifactID names an artifact so later turns can refer to it.
	ArtifactID string `json:"artifact_id,omitempty"`
}

// CollectingResponder implements domain.ResponseContext by accumulating the
// transcript in memory for a single HTTP exchange.
type CollectingResponder struct {
	Messages []Message
}

var _ domain.ResponseContext = (*CollectingResponder)(nil)

// BeginProcess opens a process with a fresh identifier.
func (c *CollectingResponder) BeginProcess(_ context.Context, summary string) (domain.Process, error) {
	id := uuid.NewString()
	c.Messages = append(c.Messages, Message{
		Type:      "begin_process",
		Text:      summary,
		ProcessID: id,
	})
	return &collectingProcess{responder: c, id: id}, nil
}

// Reply records a direct message to the end user.
func (c *CollectingResponder) Reply(_ context.Context, text string) error {
	c.Messages = append(c.Messages, Message{Type: "reply", Text: text})
	return nil
}

// Artifacts returns the artifacts published during the run.
func (c *CollectingResponder) Artifacts() []domain.Artifact {
	var out []domain.Artifact
	for _, m := range c.Messages {
		if m.Artifact != nil {
			out = append(out, *m.Artifact)
		}
	}
	return out
}

type collectingProcess struct {
	responder *CollectingResponder
	id        string
}

func (p *collectingProcess) Log(_ context.Context, text string) error {
	p.responder.Messages = append(p.responder.Messages, Message{
		Type:      "log",
		Text:      text,
		ProcessID: p.id,
	})
	return nil
}

func (p *collectingProcess) LogData(_ context.Context, text string, data any) error {
	p.responder.Messages = append(p.responder.Messages, Message{
		Type:      "log",
		Text:      text,
		Data:      data,
		ProcessID: p.id,
	})
	return nil
}

func (p *collectingProcess) CreateArtifact(_ context.Context, artifact domain.Artifact) error {
	p.responder.Messages = append(p.responder.Messages, Message{
		Type:       "artifact",
		Artifact:   &artifact,
		ProcessID:  p.id,
		ArtifactID: uuid.NewString(),
	})
	return nil
}
