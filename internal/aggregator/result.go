package aggregator

import "github.com/samvad-hq/geekfeed/internal/domain"

// Outcome statuses.
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

// NoMatchingSourcesMessage is reported when a selection matches nothing in the catalog.
const NoMatchingSourcesMessage = "No matching sources found"

// Request selects what to aggregate. Empty SourceIDs means every enabled source.
type Request struct {
	LimitPerSource int
	SourceIDs      []string
}

// OutcomeError describes why a source produced no items. Code is null when the
// underlying error carried none.
type OutcomeError struct {
	Message string  `json:"message"`
	Code    *string `json:"code"`
}

// SourceOutcome is the per-source record of one aggregation.
type SourceOutcome struct {
	domain.SourceRef
	Status     string        `json:"status"`
	DurationMs int64         `json:"durationMs"`
	Count      int           `json:"count"`
	Error      *OutcomeError `json:"error,omitempty"`

	// Items stay internal; the response lists them once, merged.
	Items []domain.Item `json:"-"`
}

type Taxonomy struct {
	Tags       []string `json:"tags"`
	Badges     []string `json:"badges"`
	Categories []string `json:"categories"`
}

type Summary struct {
	OK              int      `json:"ok"`
	Skipped         int      `json:"skipped"`
	Errors          int      `json:"errors"`
	ErrorMessages   []string `json:"errorMessages"`
	SkippedMessages []string `json:"skippedMessages"`
}

// Result is the complete answer to one aggregation request.
type Result struct {
	Success        bool            `json:"success"`
	FetchedAt      string          `json:"fetchedAt"`
	LimitPerSource int             `json:"limitPerSource"`
	TotalItems     int             `json:"totalItems"`
	Taxonomy       Taxonomy        `json:"taxonomy"`
	Summary        Summary         `json:"summary"`
	Sources        []SourceOutcome `json:"sources"`
	Items          []domain.Item   `json:"items"`
	Message        string          `json:"message,omitempty"`
}

// HasErrors reports whether any source ended with status error.
func (r Result) HasErrors() bool {
	for _, s := range r.Sources {
		if s.Status == StatusError {
			return true
		}
	}
	return false
}
