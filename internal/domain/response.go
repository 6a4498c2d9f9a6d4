package domain

import "context"

// ResponseContext is the boundary to the hosting agent framework. A driver
// reports progress and results through it; implementations decide how the
// messages reach the end user (HTTP response, console, chat stream).
type ResponseContext interface {
	// BeginProcess opens a named unit of work. The returned Process collects
	// log lines and artifacts produced while handling one request.
	BeginProcess(ctx context.Context, summary string) (Process, error)

	// Reply sends a direct message to the end user.
	Reply(ctx context.Context, text string) error
}

// Process records the steps taken while fulfilling a request.
type Process interface {
	// Log appends a plain progress line.
	Log(ctx context.Context, text string) error

	// LogData appends a progress line with structured data, such as the
	// generated search parameters or a preview table.
	LogData(ctx context.Context, text string, data any) error

	// CreateArtifact publishes a reference to a retrieved result set.
	CreateArtifact(ctx context.Context, artifact Artifact) error
}

// Artifact is a persisted reference to a result set: the query URL that
// reproduces it plus descriptive metadata.
type Artifact struct {
	Mimetype    string         `json:"mimetype"`
	Description string         `json:"description"`
	URIs        []string       `json:"uris"`
	Metadata    map[string]any `json:"metadata"`
}

// Table is the structured-data payload for tabular previews. Rows preserve
// the order returned by the API.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}
