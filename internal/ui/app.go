package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/booklib/internal/books"
	"github.com/abelbrown/booklib/internal/coord"
	"github.com/abelbrown/booklib/internal/otel"
	"github.com/abelbrown/booklib/internal/state"
)

// DefaultToastDuration is how long an error toast stays on screen.
const DefaultToastDuration = 2 * time.Second

// Store is the part of *state.Store the App needs.
type Store interface {
	State() state.State
	Dispatch(a state.Action) state.State
}

type mode int

const (
	modeForm mode = iota
	modeList
	modeFilter
)

type field int

const (
	fieldTitle field = iota
	fieldAuthor
)

// ObsConfig holds the optional observability hooks.
type ObsConfig struct {
	Logger *otel.Logger
	Ring   *otel.RingBuffer
}

// AppConfig wires an App. Store is required; everything else is optional.
type AppConfig struct {
	Store         Store
	Coord         *coord.Coordinator
	APIURL        string
	ToastDuration time.Duration
	StartInList   bool
	Rand          books.Intn // nil uses math/rand
	Context       context.Context
	Obs           ObsConfig
}

// App is the root Bubble Tea model.
// All book state lives in the Store; App keeps only view state.
type App struct {
	store    Store
	coord    *coord.Coordinator
	apiURL   string
	ctx      context.Context
	rng      books.Intn
	logger   *otel.Logger
	ring     *otel.RingBuffer
	toastFor time.Duration

	mode   mode
	field  field
	title  textinput.Model
	author textinput.Model
	filter textinput.Model

	// Filter mode edits one of two inputs; tab switches.
	filterField  field
	authorFilter textinput.Model

	spin spinner.Model

	cursor       int
	toast        string
	toastSeq     int
	debugVisible bool

	width  int
	height int
	ready  bool
}

// NewAppWithConfig creates an App from cfg.
func NewAppWithConfig(cfg AppConfig) App {
	if cfg.ToastDuration <= 0 {
		cfg.ToastDuration = DefaultToastDuration
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}

	title := textinput.New()
	title.Prompt = ""
	title.Placeholder = "Title"
	title.Focus()

	author := textinput.New()
	author.Prompt = ""
	author.Placeholder = "Author"

	filter := textinput.New()
	filter.Prompt = ""
	filter.Placeholder = "filter by title"
	filter.SetValue(state.SelectTitleFilter(cfg.Store.State()))

	authorFilter := textinput.New()
	authorFilter.Prompt = ""
	authorFilter.Placeholder = "filter by author"
	authorFilter.SetValue(state.SelectAuthorFilter(cfg.Store.State()))

	a := App{
		store:    cfg.Store,
		coord:    cfg.Coord,
		apiURL:   cfg.APIURL,
		ctx:      cfg.Context,
		rng:      cfg.Rand,
		logger:   cfg.Obs.Logger,
		ring:     cfg.Obs.Ring,
		toastFor: cfg.ToastDuration,
		title:    title,
		author:   author,
		filter:   filter,

		authorFilter: authorFilter,

		spin: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(LoadingText)),
	}
	if cfg.StartInList {
		a.setMode(modeList)
	}
	return a
}

// Init starts the cursor blink of the focused input.
func (a App) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	a.logger.TraceMsg(otel.KindMsgReceived, msg)
	model, cmd := a.update(msg)
	a.logger.TraceMsg(otel.KindMsgHandled, msg)
	return model, cmd
}

func (a App) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.title.Width = msg.Width / 2
		a.author.Width = msg.Width / 2
		return a, nil

	case coord.Settled:
		if a.coord == nil {
			return a, nil
		}
		var cmds []tea.Cmd
		for _, act := range a.coord.Actions(msg) {
			cmds = append(cmds, a.dispatch(act))
		}
		a.clampCursor()
		return a, tea.Batch(cmds...)

	case spinner.TickMsg:
		if !state.SelectIsLoadingViaAPI(a.store.State()) {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case ToastExpired:
		if msg.Seq == a.toastSeq {
			a.toast = ""
		}
		return a, nil
	}

	// Cursor blink and other input plumbing.
	return a.updateInputs(msg)
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.logger != nil {
		a.logger.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindKeyPress, Comp: "ui", Msg: msg.String()})
	}

	// Keys that work everywhere.
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "ctrl+d":
		a.debugVisible = !a.debugVisible
		return a, nil
	case "ctrl+r":
		cmd := a.addRandom()
		return a, cmd
	case "ctrl+a":
		cmd := a.fetchViaAPI()
		return a, cmd
	case "ctrl+f":
		cmd := a.dispatch(state.ToggleOnlyFavorite{})
		a.clampCursor()
		return a, cmd
	case "ctrl+x":
		cmd := a.dispatch(state.ResetFilters{})
		a.filter.SetValue("")
		a.authorFilter.SetValue("")
		a.clampCursor()
		return a, cmd
	}

	switch a.mode {
	case modeForm:
		return a.handleFormKey(msg)
	case modeList:
		return a.handleListKey(msg)
	case modeFilter:
		return a.handleFilterKey(msg)
	}
	return a, nil
}

func (a App) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		if a.field == fieldTitle {
			a.setField(fieldAuthor)
		} else {
			a.setField(fieldTitle)
		}
		return a, nil

	case "enter":
		cmd := a.submit()
		return a, cmd

	case "esc":
		a.setMode(modeList)
		return a, nil
	}
	return a.updateInputs(msg)
}

func (a App) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := state.SelectFilteredBooks(a.store.State())

	switch msg.String() {
	case "q":
		return a, tea.Quit

	case "j", "down":
		if a.cursor < len(visible)-1 {
			a.cursor++
		}
		return a, nil

	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case "g", "home":
		a.cursor = 0
		return a, nil

	case "G", "end":
		if len(visible) > 0 {
			a.cursor = len(visible) - 1
		}
		return a, nil

	case "d", "delete":
		if a.cursor < len(visible) {
			cmd := a.dispatch(state.DeleteBook{ID: visible[a.cursor].ID})
			a.clampCursor()
			return a, cmd
		}
		return a, nil

	case "f", " ":
		if a.cursor < len(visible) {
			cmd := a.dispatch(state.ToggleFavorite{ID: visible[a.cursor].ID})
			a.clampCursor()
			return a, cmd
		}
		return a, nil

	case "/":
		a.setMode(modeFilter)
		return a, nil

	case "esc", "tab":
		a.setMode(modeForm)
		return a, nil
	}
	return a, nil
}

func (a App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		a.setMode(modeList)
		return a, nil

	case "tab", "shift+tab":
		if a.filterField == fieldTitle {
			a.filterField = fieldAuthor
		} else {
			a.filterField = fieldTitle
		}
		a.setMode(modeFilter)
		return a, nil
	}

	var cmd tea.Cmd
	if a.filterField == fieldAuthor {
		before := a.authorFilter.Value()
		a.authorFilter, cmd = a.authorFilter.Update(msg)
		if v := a.authorFilter.Value(); v != before {
			cmd = tea.Batch(cmd, a.dispatch(state.SetAuthorFilter{Author: v}))
			a.cursor = 0
		}
		return a, cmd
	}

	before := a.filter.Value()
	a.filter, cmd = a.filter.Update(msg)
	if v := a.filter.Value(); v != before {
		cmd = tea.Batch(cmd, a.dispatch(state.SetTitleFilter{Title: v}))
		a.cursor = 0
	}
	return a, cmd
}

// updateInputs forwards msg to whichever text input has focus.
func (a App) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case a.mode == modeFilter && a.filterField == fieldAuthor:
		a.authorFilter, cmd = a.authorFilter.Update(msg)
	case a.mode == modeFilter:
		a.filter, cmd = a.filter.Update(msg)
	case a.mode == modeForm && a.field == fieldTitle:
		a.title, cmd = a.title.Update(msg)
	case a.mode == modeForm && a.field == fieldAuthor:
		a.author, cmd = a.author.Update(msg)
	}
	return a, cmd
}

// submit validates the form and adds a manual book.
// Invalid input raises the error toast and keeps what was typed.
func (a *App) submit() tea.Cmd {
	raw := books.Raw{
		Title:  a.title.Value(),
		Author: a.author.Value(),
	}
	if err := books.ValidateManual(raw); err != nil {
		return a.dispatch(state.SetError{Message: err.Error()})
	}

	cmd := a.dispatch(state.AddBook{Book: books.New(raw, books.SourceManual)})
	a.title.Reset()
	a.author.Reset()
	a.setField(fieldTitle)
	return cmd
}

func (a *App) addRandom() tea.Cmd {
	b, err := books.Random(a.rng)
	if err != nil {
		return a.dispatch(state.SetError{Message: err.Error()})
	}
	return a.dispatch(state.AddBook{Book: b})
}

// fetchViaAPI starts an API fetch unless one is already in flight.
func (a *App) fetchViaAPI() tea.Cmd {
	if a.coord == nil || state.SelectIsLoadingViaAPI(a.store.State()) {
		return nil
	}
	p := a.coord.Begin(a.apiURL)
	toast := a.dispatch(p)
	return tea.Batch(a.coord.Cmd(a.ctx, p), a.spin.Tick, toast)
}

// dispatch sends act to the store and runs the toast contract: an error
// message that appears is shown once, cleared from the store straight away,
// and hidden again after toastFor.
func (a *App) dispatch(act state.Action) tea.Cmd {
	next := a.store.Dispatch(act)
	msg := state.SelectErrorMessage(next)
	if msg == "" {
		return nil
	}

	a.toast = msg
	a.toastSeq++
	a.store.Dispatch(state.ClearError{})
	a.logger.Warn(otel.KindToastShown, "ui", msg)

	seq := a.toastSeq
	return tea.Tick(a.toastFor, func(time.Time) tea.Msg {
		return ToastExpired{Seq: seq}
	})
}

func (a *App) setMode(m mode) {
	a.mode = m
	a.title.Blur()
	a.author.Blur()
	a.filter.Blur()
	a.authorFilter.Blur()
	switch m {
	case modeForm:
		a.setField(a.field)
	case modeFilter:
		if a.filterField == fieldAuthor {
			a.authorFilter.Focus()
		} else {
			a.filter.Focus()
		}
	case modeList:
		a.clampCursor()
	}
}

func (a *App) setField(f field) {
	a.field = f
	if f == fieldTitle {
		a.author.Blur()
		a.title.Focus()
	} else {
		a.title.Blur()
		a.author.Focus()
	}
}

// clampCursor keeps the cursor inside the visible list.
func (a *App) clampCursor() {
	n := len(state.SelectFilteredBooks(a.store.State()))
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.debugVisible {
		overlay := debugOverlay(a.ring, a.width, a.height-1)
		return lipgloss.JoinVertical(lipgloss.Left, overlay, debugStatusBar(a.width))
	}

	s := a.store.State()
	all := state.SelectBooks(s)
	visible := state.SelectFilteredBooks(s)
	loading := state.SelectIsLoadingViaAPI(s)

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Book Library"))
	b.WriteString("\n")

	// Form
	b.WriteString(SectionHeader.Render("Add a New Book"))
	b.WriteString("\n")
	b.WriteString(a.fieldLabel("Title", fieldTitle) + a.title.View() + "\n")
	b.WriteString(a.fieldLabel("Author", fieldAuthor) + a.author.View() + "\n")

	// Filters
	titleText, authorText := a.filter.Value(), a.authorFilter.Value()
	if a.mode == modeFilter {
		if a.filterField == fieldAuthor {
			authorText = a.authorFilter.View()
		} else {
			titleText = a.filter.View()
		}
	}
	b.WriteString("\n")
	b.WriteString(RenderFilterBar(titleText, authorText, state.SelectOnlyFavoriteFilter(s), len(visible), len(all), a.width))
	b.WriteString("\n")

	// List
	b.WriteString(SectionHeader.Render("Book List"))
	b.WriteString("\n")
	cursor := -1
	if a.mode == modeList {
		cursor = a.cursor
	}
	used := strings.Count(b.String(), "\n") + 3 // toast, status bar, slack
	b.WriteString(RenderBookList(visible, cursor, a.width, a.height-used))

	if a.toast != "" {
		b.WriteString("\n")
		b.WriteString(ToastStyle.Render(a.toast))
	}
	b.WriteString("\n")

	spin := ""
	if loading {
		spin = a.spin.View()
	}
	b.WriteString(RenderStatusBar(a.mode, a.cursor, len(visible), len(all), a.width, spin))
	return b.String()
}

func (a App) fieldLabel(label string, f field) string {
	if a.mode == modeForm && a.field == f {
		return FieldLabelActive.Render(label)
	}
	return FieldLabel.Render(label)
}

// Cursor returns the list cursor position (for testing).
func (a App) Cursor() int {
	return a.cursor
}

// Toast returns the toast currently on screen, or "" (for testing).
func (a App) Toast() string {
	return a.toast
}
