package ui

import "github.com/abelbrown/screener/internal/stock"

// OutcomeKind is the state of the latest retrieval.
type OutcomeKind int

const (
	OutcomePending OutcomeKind = iota
	OutcomeFailed
	OutcomeSucceeded
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomePending:
		return "pending"
	case OutcomeFailed:
		return "failed"
	case OutcomeSucceeded:
		return "succeeded"
	}
	return "unknown"
}

// Outcome is exactly one of pending, failed(message) or succeeded(list).
type Outcome struct {
	kind    OutcomeKind
	message string
	stocks  []stock.Record
}

// Pending is an outcome with a request outstanding.
func Pending() Outcome { return Outcome{kind: OutcomePending} }

// Failed carries the user-facing failure text.
func Failed(msg string) Outcome { return Outcome{kind: OutcomeFailed, message: msg} }

// Succeeded carries the delivered list. nil becomes empty.
func Succeeded(stocks []stock.Record) Outcome {
	if stocks == nil {
		stocks = []stock.Record{}
	}
	return Outcome{kind: OutcomeSucceeded, stocks: stocks}
}

func (o Outcome) Kind() OutcomeKind { return o.kind }

// Message is the failure text; "" unless failed.
func (o Outcome) Message() string { return o.message }

// Stocks is the delivered list; nil unless succeeded.
func (o Outcome) Stocks() []stock.Record { return o.stocks }

// ViewKind is what the body of the screen shows.
type ViewKind int

const (
	ViewSpinner ViewKind = iota
	ViewError
	ViewEmpty
	ViewTable
)

func (v ViewKind) String() string {
	return [...]string{"spinner", "error", "empty", "table"}[v]
}

// View selects the single view for o.
func (o Outcome) View() ViewKind {
	switch o.kind {
	case OutcomeFailed:
		return ViewError
	case OutcomeSucceeded:
		if len(o.stocks) == 0 {
			return ViewEmpty
		}
		return ViewTable
	default:
		return ViewSpinner
	}
}
