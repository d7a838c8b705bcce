// Package ui provides the Bubble Tea TUI for the screener.
package ui

import (
	"time"

	"github.com/abelbrown/screener/internal/stock"
)

// LoadMode says why a retrieval was started.
type LoadMode int

const (
	LoadActivate LoadMode = iota // location activation: init, navigate, reload, back
	LoadReplace                  // in-place replace from a submission
)

func (m LoadMode) String() string {
	if m == LoadReplace {
		return "replace"
	}
	return "activate"
}

// StocksLoadedMsg is sent when a retrieval finishes. Gen identifies the
// request; the App drops messages whose Gen is no longer current.
type StocksLoadedMsg struct {
	Gen    uint64
	Query  string
	Mode   LoadMode
	Stocks []stock.Record
	Err    error
	Dur    time.Duration
}

// SubmitMsg is sent by QueryInput when the user presses enter.
type SubmitMsg struct {
	Query string
}

// NavigateMsg activates a new Location, pushing the current one onto the
// back stack.
type NavigateMsg struct {
	Location Location
}

// activateMsg starts the first activation from Init.
type activateMsg struct{}

// noticeExpiredMsg clears the transient notice it was scheduled for.
type noticeExpiredMsg struct {
	id int
}
