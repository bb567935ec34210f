package importer

import "github.com/cardboxhq/cardbox/internal/decklist"

// Event types emitted while an import runs.
const (
	EventStart    = "start"
	EventProgress = "progress"
	EventDone     = "done"
	EventError    = "error"
)

// Success records one committed line: the printing it resolved to, how many
// copies merged, and whether the merge created a new ledger row.
type Success struct {
	Card     string `json:"card"`
	CardID   string `json:"card_id"`
	Quantity int    `json:"quantity"`
	Created  bool   `json:"created"`
}

// Event is one frame of import progress. Exactly one start event opens a
// run, a progress event follows each line, and a single done or error event
// closes it. Zero counts are written out, so an empty decklist still reports
// total 0.
type Event struct {
	Type string `json:"type"`

	// start and progress
	Total int `json:"total"`

	// progress
	Current int    `json:"current,omitempty"`
	Card    string `json:"card,omitempty"`
	OK      *bool  `json:"ok,omitempty"`

	// done; Successes sums the committed quantities, not lines
	Successes      int                `json:"successes"`
	Failures       int                `json:"failures"`
	SuccessDetails []Success          `json:"success_details,omitempty"`
	FailureDetails []decklist.Failure `json:"failure_details,omitempty"`

	// progress (failed lines) and error
	Message string `json:"message,omitempty"`
}

// Result summarizes a finished import. Successes is the total number of
// copies committed across all lines.
type Result struct {
	Successes      int                `json:"successes"`
	Failures       int                `json:"failures"`
	SuccessDetails []Success          `json:"success_details"`
	FailureDetails []decklist.Failure `json:"failure_details"`
}

func okPtr(ok bool) *bool { return &ok }
