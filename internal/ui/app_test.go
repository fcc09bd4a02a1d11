package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/booklib/internal/books"
	"github.com/abelbrown/booklib/internal/coord"
	"github.com/abelbrown/booklib/internal/state"
)

// recordingStore wraps a real store and remembers every dispatched action type.
type recordingStore struct {
	*state.Store
	types []state.ActionType
}

func (r *recordingStore) Dispatch(a state.Action) state.State {
	r.types = append(r.types, a.Type())
	return r.Store.Dispatch(a)
}

func (r *recordingStore) count(t state.ActionType) int {
	n := 0
	for _, got := range r.types {
		if got == t {
			n++
		}
	}
	return n
}

type stubFetcher struct {
	raw books.Raw
	err error
}

func (f stubFetcher) FetchBook(ctx context.Context, url string) (books.Raw, error) {
	return f.raw, f.err
}

type fixedRand int

func (r fixedRand) Intn(n int) int { return int(r) % n }

func newTestApp(f coord.Fetcher) (App, *recordingStore) {
	st := &recordingStore{Store: state.NewStore(state.Initial())}
	app := NewAppWithConfig(AppConfig{
		Store:         st,
		Coord:         coord.NewCoordinator(f, nil),
		APIURL:        "http://books.test/random",
		ToastDuration: time.Millisecond,
		Rand:          fixedRand(0),
	})
	model, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return model.(App), st
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+a":
		return tea.KeyMsg{Type: tea.KeyCtrlA}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	case "ctrl+f":
		return tea.KeyMsg{Type: tea.KeyCtrlF}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds keys to app in order and returns the final model and last command.
func press(app App, keys ...string) (App, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var model tea.Model
		model, cmd = app.Update(key(k))
		app = model.(App)
	}
	return app, cmd
}

// collect runs cmd and flattens any batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func settledFrom(t *testing.T, cmd tea.Cmd) coord.Settled {
	t.Helper()
	for _, msg := range collect(cmd) {
		if s, ok := msg.(coord.Settled); ok {
			return s
		}
	}
	t.Fatal("command did not produce a coord.Settled message")
	return coord.Settled{}
}

func TestAppInit(t *testing.T) {
	app, _ := newTestApp(stubFetcher{})
	if app.Init() == nil {
		t.Error("Init should start the input cursor blink")
	}
}

func TestViewBeforeWindowSize(t *testing.T) {
	app := NewAppWithConfig(AppConfig{Store: state.NewStore(state.Initial())})
	if got := app.View(); got != "Loading..." {
		t.Errorf("View before size = %q, want Loading...", got)
	}
}

func TestSubmitAddsManualBook(t *testing.T) {
	app, st := newTestApp(stubFetcher{})

	app, _ = press(app, "Dune", "tab", "Frank Herbert", "enter")

	got := state.SelectBooks(st.State())
	if len(got) != 1 {
		t.Fatalf("want 1 book, got %d", len(got))
	}
	if got[0].Title != "Dune" || got[0].Author != "Frank Herbert" {
		t.Errorf("unexpected book %+v", got[0])
	}
	if got[0].Source != books.SourceManual {
		t.Errorf("source = %q, want manual", got[0].Source)
	}
	if got[0].IsFavorite {
		t.Error("new book should not be a favorite")
	}
	if app.title.Value() != "" || app.author.Value() != "" {
		t.Errorf("inputs should be cleared, got %q / %q", app.title.Value(), app.author.Value())
	}
	if app.field != fieldTitle {
		t.Error("focus should return to the title field")
	}
}

func TestSubmitKeepsFieldsAsTyped(t *testing.T) {
	app, st := newTestApp(stubFetcher{})

	press(app, "  Emma ", "tab", "   ", "enter")

	got := state.SelectBooks(st.State())
	if len(got) != 1 || got[0].Title != "  Emma " || got[0].Author != "   " {
		t.Errorf("unexpected books %+v", got)
	}
	if st.count(state.TypeSetError) != 0 {
		t.Errorf("whitespace is content, want no SetError, got %v", st.types)
	}
}

func TestSubmitMissingFieldShowsToastOnce(t *testing.T) {
	app, st := newTestApp(stubFetcher{})

	app, cmd := press(app, "Dune", "enter")

	if n := len(state.SelectBooks(st.State())); n != 0 {
		t.Fatalf("nothing should be added, got %d books", n)
	}
	if app.Toast() != "You must fill title and author" {
		t.Errorf("toast = %q", app.Toast())
	}
	if msg := state.SelectErrorMessage(st.State()); msg != "" {
		t.Errorf("error slice should be cleared after the toast shows it, got %q", msg)
	}
	if st.count(state.TypeSetError) != 1 || st.count(state.TypeClearError) != 1 {
		t.Errorf("want one SetError and one ClearError, got %v", st.types)
	}
	if app.title.Value() != "Dune" {
		t.Errorf("typed title should be kept, got %q", app.title.Value())
	}

	// The returned command expires the toast.
	msgs := collect(cmd)
	if len(msgs) != 1 {
		t.Fatalf("want one toast expiry message, got %v", msgs)
	}
	model, _ := app.Update(msgs[0])
	if model.(App).Toast() != "" {
		t.Error("toast should be hidden after it expires")
	}
}

func TestStaleToastExpiryIgnored(t *testing.T) {
	app, _ := newTestApp(stubFetcher{})

	app, _ = press(app, "enter", "enter")
	if app.toastSeq != 2 {
		t.Fatalf("toastSeq = %d, want 2", app.toastSeq)
	}

	model, _ := app.Update(ToastExpired{Seq: 1})
	if model.(App).Toast() == "" {
		t.Error("an older toast's expiry must not hide the newer toast")
	}
}

func TestRandomAddsDatasetBook(t *testing.T) {
	app, st := newTestApp(stubFetcher{})
	all, err := books.Dataset()
	if err != nil {
		t.Fatal(err)
	}

	press(app, "ctrl+r")

	got := state.SelectBooks(st.State())
	if len(got) != 1 {
		t.Fatalf("want 1 book, got %d", len(got))
	}
	if got[0].Title != all[0].Title || got[0].Author != all[0].Author {
		t.Errorf("got %+v, want first dataset entry %+v", got[0], all[0])
	}
	if got[0].Source != books.SourceRandom {
		t.Errorf("source = %q, want random", got[0].Source)
	}
}

func TestFetchViaAPISuccess(t *testing.T) {
	app, st := newTestApp(stubFetcher{raw: books.Raw{Title: "Dune", Author: "Frank Herbert"}})

	app, cmd := press(app, "ctrl+a")
	if !state.SelectIsLoadingViaAPI(st.State()) {
		t.Fatal("loading should be set as soon as the fetch starts")
	}
	if !strings.Contains(app.View(), "fetching") {
		t.Error("view should show the loading indicator")
	}

	// The control is disabled while loading.
	app, again := press(app, "ctrl+a")
	if again != nil {
		t.Error("ctrl+a while loading should do nothing")
	}
	if n := st.count(state.TypeFetchPending); n != 1 {
		t.Errorf("want 1 pending dispatch, got %d", n)
	}

	model, _ := app.Update(settledFrom(t, cmd))
	app = model.(App)

	got := state.SelectBooks(st.State())
	if len(got) != 1 || got[0].Title != "Dune" || got[0].Source != books.SourceAPI {
		t.Fatalf("unexpected books %+v", got)
	}
	if state.SelectIsLoadingViaAPI(st.State()) {
		t.Error("loading should be cleared after fulfillment")
	}
	if app.Toast() != "" {
		t.Errorf("no toast expected, got %q", app.Toast())
	}
}

func TestFetchViaAPIFailure(t *testing.T) {
	app, st := newTestApp(stubFetcher{err: errors.New("Network Error")})

	app, cmd := press(app, "ctrl+a")
	model, _ := app.Update(settledFrom(t, cmd))
	app = model.(App)

	if n := len(state.SelectBooks(st.State())); n != 0 {
		t.Errorf("no book expected, got %d", n)
	}
	if state.SelectIsLoadingViaAPI(st.State()) {
		t.Error("loading should be cleared after rejection")
	}
	if app.Toast() != "Network Error" {
		t.Errorf("toast = %q, want Network Error", app.Toast())
	}
	if msg := state.SelectErrorMessage(st.State()); msg != "" {
		t.Errorf("error slice should be cleared, got %q", msg)
	}
}

func TestFetchViaAPIMalformedPayloadIgnored(t *testing.T) {
	app, st := newTestApp(stubFetcher{raw: books.Raw{Title: "Dune"}})

	app, cmd := press(app, "ctrl+a")
	model, _ := app.Update(settledFrom(t, cmd))
	app = model.(App)

	if n := len(state.SelectBooks(st.State())); n != 0 {
		t.Errorf("malformed payload should be dropped, got %d books", n)
	}
	if state.SelectIsLoadingViaAPI(st.State()) {
		t.Error("loading should be cleared")
	}
	if app.Toast() != "" {
		t.Errorf("no toast expected, got %q", app.Toast())
	}
}

func seed(st *recordingStore, titles ...string) {
	for _, title := range titles {
		st.Store.Dispatch(state.AddBook{Book: books.New(books.Raw{Title: title, Author: "Someone"}, books.SourceManual)})
	}
}

func TestListNavigationDeleteFavorite(t *testing.T) {
	app, st := newTestApp(stubFetcher{})
	seed(st, "Dune", "Emma", "Ulysses")

	app, _ = press(app, "esc")
	if app.mode != modeList {
		t.Fatal("esc should switch to the list")
	}

	app, _ = press(app, "j")
	if app.Cursor() != 1 {
		t.Fatalf("j should move cursor to 1, got %d", app.Cursor())
	}

	app, _ = press(app, "f")
	if bs := state.SelectBooks(st.State()); !bs[1].IsFavorite {
		t.Error("f should mark Emma as favorite")
	}

	app, _ = press(app, "d")
	bs := state.SelectBooks(st.State())
	if len(bs) != 2 || bs[0].Title != "Dune" || bs[1].Title != "Ulysses" {
		t.Fatalf("d should delete Emma, got %+v", bs)
	}

	app, _ = press(app, "G", "d")
	if app.Cursor() != 0 {
		t.Errorf("cursor should clamp to 0 after deleting the last row, got %d", app.Cursor())
	}

	app, _ = press(app, "k", "k", "j", "j")
	if app.Cursor() != 0 {
		t.Errorf("cursor should stay within a single-row list, got %d", app.Cursor())
	}

	app, _ = press(app, "d", "d")
	if n := len(state.SelectBooks(st.State())); n != 0 {
		t.Errorf("want empty list, got %d", n)
	}
}

func TestFilterMode(t *testing.T) {
	app, st := newTestApp(stubFetcher{})
	seed(st, "Dune", "Emma")

	app, _ = press(app, "esc", "/", "DU")
	if got := state.SelectTitleFilter(st.State()); got != "DU" {
		t.Errorf("title filter = %q, want DU", got)
	}
	visible := state.SelectFilteredBooks(st.State())
	if len(visible) != 1 || visible[0].Title != "Dune" {
		t.Errorf("filter should match Dune only, got %+v", visible)
	}

	// tab moves typing to the author filter; the title filter stays put.
	app, _ = press(app, "tab", "SOME")
	if app.filterField != fieldAuthor {
		t.Fatal("tab should switch to the author filter")
	}
	if got := state.SelectAuthorFilter(st.State()); got != "SOME" {
		t.Errorf("author filter = %q, want SOME", got)
	}
	if got := state.SelectTitleFilter(st.State()); got != "DU" {
		t.Errorf("title filter should be unchanged, got %q", got)
	}
	if n := len(state.SelectFilteredBooks(st.State())); n != 1 {
		t.Errorf("Dune by Someone should still match, got %d visible", n)
	}
	if view := app.View(); !strings.Contains(view, "SOME") || !strings.Contains(view, "DU") {
		t.Errorf("filter bar should show both filters:\n%s", view)
	}

	app, _ = press(app, "x")
	if n := len(state.SelectFilteredBooks(st.State())); n != 0 {
		t.Errorf("author SOMEx matches nothing, got %d visible", n)
	}

	app, _ = press(app, "tab", "N")
	if got := state.SelectTitleFilter(st.State()); got != "DUN" {
		t.Errorf("second tab should go back to the title filter, got %q", got)
	}
	if got := state.SelectAuthorFilter(st.State()); got != "SOMEx" {
		t.Errorf("author filter should be unchanged, got %q", got)
	}

	app, _ = press(app, "enter")
	if app.mode != modeList {
		t.Error("enter should leave filter mode")
	}

	app, _ = press(app, "ctrl+f")
	if !state.SelectOnlyFavoriteFilter(st.State()) {
		t.Error("ctrl+f should enable the only-favorite filter")
	}
	if n := len(state.SelectFilteredBooks(st.State())); n != 0 {
		t.Errorf("no favorites yet, got %d visible", n)
	}

	app, _ = press(app, "ctrl+x")
	if f := st.State().Filter; f != (state.FilterSlice{}) {
		t.Errorf("ctrl+x should reset filters, got %+v", f)
	}
	if app.filter.Value() != "" || app.authorFilter.Value() != "" {
		t.Errorf("filter inputs should be cleared, got %q / %q", app.filter.Value(), app.authorFilter.Value())
	}
}

func TestQuitOnlyFromList(t *testing.T) {
	app, _ := newTestApp(stubFetcher{})

	app, _ = press(app, "q")
	if app.title.Value() != "q" {
		t.Errorf("q should be typed into the title, got %q", app.title.Value())
	}

	_, cmd := press(app, "esc", "q")
	if cmd == nil {
		t.Fatal("q in the list should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q in the list should return tea.Quit")
	}
}

func TestViewRendersBooks(t *testing.T) {
	app, st := newTestApp(stubFetcher{})
	seed(st, "Dune")
	st.Store.Dispatch(state.ToggleFavorite{ID: state.SelectBooks(st.State())[0].ID})

	view := app.View()
	for _, want := range []string{"Book Library", "Book List", "Dune", "Someone", "★", "manual"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q, got:\n%s", want, view)
		}
	}
}

func TestStartInList(t *testing.T) {
	app := NewAppWithConfig(AppConfig{
		Store:       state.NewStore(state.Initial()),
		StartInList: true,
	})
	if app.mode != modeList {
		t.Error("StartInList should open on the list")
	}
}
