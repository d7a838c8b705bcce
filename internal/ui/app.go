package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/screener/internal/client"
	"github.com/abelbrown/screener/internal/logging"
	"github.com/abelbrown/screener/internal/otel"
	"github.com/abelbrown/screener/internal/stock"
)

// noticeTTL is how long a transient notice stays on screen.
const noticeTTL = 5 * time.Second

// Retriever is the part of the client the App needs.
// *client.Client satisfies it.
type Retriever interface {
	ListAll(ctx context.Context) ([]stock.Record, error)
	ListFiltered(ctx context.Context, query string) ([]stock.Record, error)
}

// SubmitMode selects what enter in the filter bar does.
type SubmitMode int

const (
	// SubmitNavigate makes the trimmed text the query of a new Location
	// and activates it.
	SubmitNavigate SubmitMode = iota
	// SubmitReplace fetches directly and swaps the listing in place. A
	// failure leaves the current listing up and shows a notice.
	SubmitReplace
)

// Options configures NewApp.
type Options struct {
	Location Location
	Mode     SubmitMode
	Events   *otel.Logger     // optional
	Ring     *otel.RingBuffer // optional, backs the debug overlay
	Debug    bool             // start with the overlay open
}

// App is the root Bubble Tea model. It owns the active Location and the
// outcome of retrieving it.
// IMPORTANT: App does NOT hold the HTTP client. Retrievals run as commands
// and come back as StocksLoadedMsg.
type App struct {
	retriever Retriever
	mode      SubmitMode
	events    *otel.Logger
	ring      *otel.RingBuffer

	loc     Location
	history []Location
	input   QueryInput
	outcome Outcome
	retry   bool // last failure was a connectivity error

	table   table.Model
	spinner spinner.Model

	gen       uint64
	cancel    context.CancelFunc
	replacing bool // a replace submission is in flight

	notice   string
	noticeID int

	debug    bool
	quitting bool
	width    int
	height   int
}

// NewApp creates an App for opts.Location. Nothing is fetched until Init.
func NewApp(r Retriever, opts Options) App {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorHighlight)

	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
		table.WithStyles(tableStyles()),
	)

	return App{
		retriever: r,
		mode:      opts.Mode,
		events:    opts.Events,
		ring:      opts.Ring,
		loc:       opts.Location,
		input:     NewQueryInput(opts.Location.Query()),
		outcome:   Pending(),
		table:     t,
		spinner:   s,
		debug:     opts.Debug,
		width:     80,
		height:    24,
	}
}

// Init activates the starting Location.
func (a App) Init() tea.Cmd {
	return func() tea.Msg { return activateMsg{} }
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() {
		a.events.Trace("ui", fmt.Sprintf("%T", msg))
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.input = a.input.SetWidth(msg.Width - 8)
		a.resizeTable()
		return a, nil

	case activateMsg:
		return a.activate(a.loc, false)

	case NavigateMsg:
		return a.activate(msg.Location, true)

	case SubmitMsg:
		return a.submit(msg.Query)

	case StocksLoadedMsg:
		return a.handleLoaded(msg)

	case noticeExpiredMsg:
		if msg.id == a.noticeID {
			a.notice = ""
		}
		return a, nil

	case spinner.TickMsg:
		if a.outcome.Kind() != OutcomePending && !a.replacing {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	if a.input.Focused() {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a.quit()
	}

	if a.input.Focused() {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return a.quit()

	case key.Matches(msg, keys.Debug):
		a.debug = !a.debug
		return a, nil

	case key.Matches(msg, keys.Focus):
		var cmd tea.Cmd
		a.input, cmd = a.input.Focus()
		return a, cmd

	case key.Matches(msg, keys.Reload):
		return a.activate(a.loc, false)

	case key.Matches(msg, keys.Clear):
		if a.loc.IsZero() {
			return a, nil
		}
		return a.activate(Location{}, true)

	case key.Matches(msg, keys.Back):
		if len(a.history) == 0 {
			return a, nil
		}
		prev := a.history[len(a.history)-1]
		a.history = a.history[:len(a.history)-1]
		return a.activate(prev, false)

	case key.Matches(msg, keys.Up, keys.Down, keys.Top, keys.Bottom):
		if a.outcome.View() == ViewTable {
			var cmd tea.Cmd
			a.table, cmd = a.table.Update(msg)
			return a, cmd
		}
	}

	return a, nil
}

func (a App) quit() (tea.Model, tea.Cmd) {
	a.quitting = true
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	return a, tea.Quit
}

// activate makes loc current and starts exactly one retrieval for it.
// Any outstanding retrieval is cancelled and its result will be dropped.
func (a App) activate(loc Location, push bool) (App, tea.Cmd) {
	if push && loc != a.loc {
		a.history = append(a.history, a.loc)
	}
	if loc != a.loc {
		a.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindNavigate, Comp: "ui", Query: loc.Query(), Msg: loc.String()})
	}

	a.loc = loc
	a.input = a.input.Seed(loc.Query())
	a.outcome = Pending()
	a.retry = false
	a.replacing = false

	cmd := a.startRetrieval(loc.Query(), LoadActivate)
	return a, tea.Batch(cmd, a.spinner.Tick)
}

// submit applies the configured submit strategy to text.
func (a App) submit(text string) (App, tea.Cmd) {
	a.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSubmit, Comp: "ui", Query: text,
		Extra: map[string]any{"mode": a.modeName()}})

	if a.mode == SubmitNavigate {
		return a.activate(a.loc.WithQuery(text), true)
	}

	a.replacing = true
	q := text
	if strings.TrimSpace(q) == "" {
		q = ""
	}
	cmd := a.startRetrieval(q, LoadReplace)
	return a, tea.Batch(cmd, a.spinner.Tick)
}

func (a App) modeName() string {
	if a.mode == SubmitReplace {
		return "replace"
	}
	return "navigate"
}

// startRetrieval bumps the generation, cancels the previous request and
// returns the command that performs the new one.
func (a *App) startRetrieval(q string, mode LoadMode) tea.Cmd {
	if a.cancel != nil {
		a.cancel()
	}
	a.gen++
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindRetrieveStart, Comp: "ui",
		Gen: a.gen, Query: q, Msg: mode.String()})

	return retrieve(ctx, a.retriever, a.gen, q, mode)
}

// retrieve calls ListAll for an empty query and ListFiltered otherwise.
func retrieve(ctx context.Context, r Retriever, gen uint64, q string, mode LoadMode) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		var (
			list []stock.Record
			err  error
		)
		if q == "" {
			list, err = r.ListAll(ctx)
		} else {
			list, err = r.ListFiltered(ctx, q)
		}
		return StocksLoadedMsg{Gen: gen, Query: q, Mode: mode, Stocks: list, Err: err, Dur: time.Since(start)}
	}
}

func (a App) handleLoaded(msg StocksLoadedMsg) (App, tea.Cmd) {
	if a.quitting || msg.Gen != a.gen {
		a.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindRetrieveStale, Comp: "ui",
			Gen: msg.Gen, Query: msg.Query, Msg: fmt.Sprintf("current gen %d", a.gen)})
		return a, nil
	}
	a.cancel = nil

	if msg.Err != nil {
		a.events.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindRetrieveError, Comp: "ui",
			Gen: msg.Gen, Query: msg.Query, Dur: msg.Dur, Err: msg.Err.Error()})
	} else {
		a.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindRetrieveComplete, Comp: "ui",
			Gen: msg.Gen, Query: msg.Query, Dur: msg.Dur, Count: len(msg.Stocks)})
	}

	if msg.Mode == LoadReplace {
		return a.applyReplace(msg)
	}

	if msg.Err != nil {
		logging.Warn("retrieval failed", "query", msg.Query, "error", msg.Err)
		a.outcome = Failed(client.Message(msg.Err))
		a.retry = client.Retryable(msg.Err)
		return a, nil
	}
	a.setStocks(msg.Stocks)
	return a, nil
}

// applyReplace handles the result of a replace submission. Failures keep
// whatever is displayed unless nothing was displayed yet.
func (a App) applyReplace(msg StocksLoadedMsg) (App, tea.Cmd) {
	a.replacing = false

	if msg.Err != nil {
		logging.Warn("filter submission failed", "query", msg.Query, "error", msg.Err)
		if a.outcome.Kind() == OutcomePending {
			a.outcome = Failed(client.Message(msg.Err))
			a.retry = client.Retryable(msg.Err)
			return a, nil
		}
		return a.showNotice("Filter failed: " + client.Message(msg.Err))
	}

	next := a.loc.WithQuery(msg.Query)
	if next != a.loc {
		a.history = append(a.history, a.loc)
		a.loc = next
	}
	a.retry = false
	a.setStocks(msg.Stocks)
	return a, nil
}

func (a *App) setStocks(list []stock.Record) {
	a.outcome = Succeeded(list)
	rows := make([]table.Row, len(list))
	for i, r := range list {
		rows[i] = table.Row(r.Row())
	}
	a.table.SetRows(rows)
	a.table.GotoTop()
}

func (a App) showNotice(text string) (App, tea.Cmd) {
	a.noticeID++
	a.notice = text
	id := a.noticeID
	return a, tea.Tick(noticeTTL, func(time.Time) tea.Msg { return noticeExpiredMsg{id: id} })
}

// columns sizes the name column to whatever width the metrics leave.
func columns(width int) []table.Column {
	cols := make([]table.Column, 0, len(stock.Fields)+1)
	used := 0
	for _, f := range stock.Fields {
		w := len(f.Short())
		if w < 10 {
			w = 10
		}
		cols = append(cols, table.Column{Title: f.Short(), Width: w})
		used += w + 2
	}
	nameWidth := width - used - 2
	if nameWidth < 16 {
		nameWidth = 16
	}
	return append([]table.Column{{Title: "Stock Name", Width: nameWidth}}, cols...)
}

func (a *App) resizeTable() {
	a.table.SetColumns(columns(a.width))
	// title, filter bar, notice, status bar, table header and border
	h := a.height - 7
	if h < 3 {
		h = 3
	}
	a.table.SetHeight(h)
}

// View renders the UI.
func (a App) View() string {
	if a.quitting {
		return ""
	}

	title := TitleStyle.Render("Stock Screener") + " " + LocationStyle.Render(a.locationLabel())
	filter := FilterBar.Width(a.width).Render(a.input.View())

	body := a.body()
	if a.debug {
		body = debugOverlay(a.ring, a.width, a.height-4)
	}

	parts := []string{title, filter, body}
	if a.notice != "" {
		parts = append(parts, NoticeStyle.Render(a.notice))
	}
	parts = append(parts, a.statusBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// body renders exactly one of spinner, error, empty state or table.
func (a App) body() string {
	switch a.outcome.View() {
	case ViewSpinner:
		return "\n " + a.spinner.View() + " Loading stocks...\n"
	case ViewError:
		text := ErrorStyle.Render("Error: " + a.outcome.Message())
		if a.retry {
			text += "\n" + HelpStyle.Render("Press r to retry.")
		}
		return "\n" + text + "\n"
	case ViewEmpty:
		return HelpStyle.Render("No stocks match the current filter.")
	default:
		return a.table.View()
	}
}

func (a App) locationLabel() string {
	if a.loc.IsZero() {
		return "all stocks"
	}
	return a.loc.String()
}

func (a App) statusBar() string {
	var left string
	switch {
	case a.replacing:
		left = a.spinner.View() + " filtering"
	case a.outcome.Kind() == OutcomeSucceeded:
		n := len(a.outcome.Stocks())
		if n > 0 {
			left = fmt.Sprintf("%d/%d", a.table.Cursor()+1, n)
		} else {
			left = "0 stocks"
		}
	case a.outcome.Kind() == OutcomeFailed:
		left = "failed"
	default:
		left = "loading"
	}

	hints := make([]string, 0, len(statusHints))
	for _, b := range statusHints {
		h := b.Help()
		hints = append(hints, StatusBarKey.Render(h.Key)+StatusBarText.Render(":"+h.Desc))
	}
	if a.debug {
		left = "[DEBUG] " + left
	}
	return StatusBar.Width(a.width).Render(left + "  " + strings.Join(hints, " "))
}

// Location returns the active location.
func (a App) Location() Location { return a.loc }

// Outcome returns the outcome of the latest current retrieval.
func (a App) Outcome() Outcome { return a.outcome }

// Input returns the query input controller.
func (a App) Input() QueryInput { return a.input }

// Notice returns the transient notice, if any.
func (a App) Notice() string { return a.notice }

// Cursor returns the selected table row (for testing).
func (a App) Cursor() int { return a.table.Cursor() }

// Gen returns the current retrieval generation (for testing).
func (a App) Gen() uint64 { return a.gen }
