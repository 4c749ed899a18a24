package ingest

import (
	"time"

	"github.com/google/uuid"
)

// WarningKind classifies recoverable per-item problems.
type WarningKind string

const (
	WarningUnknownType    WarningKind = "unknown_type"
	WarningRegionNotFound WarningKind = "region_not_found"
	WarningMalformedItem  WarningKind = "malformed_item"
)

// Warning is an item skipped during a run. The run continues.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	URL     string      `json:"url"`
	Region  string      `json:"region,omitempty"`
	Label   string      `json:"label,omitempty"`
	Message string      `json:"message"`
}

// Failure is a feed that could not be fetched or decoded.
type Failure struct {
	URL   string `json:"url"`
	Shape string `json:"shape"`
	Err   error  `json:"-"`
	// Message mirrors Err for serialized reports.
	Message string `json:"error"`
}

// Report summarizes one ingestion run.
type Report struct {
	RunID        uuid.UUID `json:"run_id"`
	Started      time.Time `json:"started"`
	Finished     time.Time `json:"finished"`
	Sources      int       `json:"sources"`
	Fetched      int       `json:"fetched"`
	Observations int       `json:"observations"`
	Writes       int       `json:"writes"`
	Warnings     []Warning `json:"warnings"`
	Failures     []Failure `json:"failures"`
}

func newReport(sources int) *Report {
	return &Report{
		RunID:    uuid.New(),
		Started:  time.Now().UTC(),
		Sources:  sources,
		Warnings: []Warning{},
		Failures: []Failure{},
	}
}

// WarningCount returns the number of warnings of kind.
func (r *Report) WarningCount(kind WarningKind) int {
	n := 0
	for _, w := range r.Warnings {
		if w.Kind == kind {
			n++
		}
	}
	return n
}

// OK reports whether every feed was fetched and decoded.
func (r *Report) OK() bool { return len(r.Failures) == 0 }
