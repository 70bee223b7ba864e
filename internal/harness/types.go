package harness

import (
	"fmt"

	"github.com/roach88/clartest/internal/clarity"
)

// Trace event types.
const (
	EventBlock    = "block"
	EventTx       = "tx"
	EventReadOnly = "read_only"
)

// TraceEvent is one observable step of a scenario run.
type TraceEvent struct {
	Type   string          `json:"type"`
	Height int64           `json:"height"`
	Call   string          `json:"call,omitempty"`
	Sender string          `json:"sender,omitempty"`
	Args   []clarity.Value `json:"args,omitempty"`
	Result clarity.Value   `json:"result,omitempty"`
}

// canonical returns the event as a canonical JSON object.
func (e TraceEvent) canonical() map[string]any {
	out := map[string]any{
		"type":   e.Type,
		"height": e.Height,
	}
	if e.Type == EventBlock {
		return out
	}
	args := e.Args
	if args == nil {
		args = []clarity.Value{}
	}
	out["call"] = e.Call
	out["sender"] = e.Sender
	out["args"] = args
	out["result"] = e.Result
	return out
}

// Result contains the outcome of running a scenario.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool

	// Trace records every block, transaction and read-only call in order.
	Trace []TraceEvent

	// Errors contains failure messages (empty if Pass is true).
	Errors []string

	// FinalHeight is the chain height after the last step.
	FinalHeight int64
}

// AddError adds an error message and marks the result as failed.
func (r *Result) AddError(format string, args ...any) {
	r.Pass = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Calls returns the call names of tx and read-only events in order.
func (r *Result) Calls() []string {
	var calls []string
	for _, e := range r.Trace {
		if e.Type != EventBlock {
			calls = append(calls, e.Call)
		}
	}
	return calls
}
