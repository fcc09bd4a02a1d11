// Package coord runs the API fetch and maps its settlement onto store actions.
//
// A fetch moves idle -> pending -> fulfilled|rejected. Pending is dispatched
// synchronously before the request starts. Settlement is delivered either as a
// Settled message (bubbletea path, see Cmd) or through a Task the caller can
// wait on (headless path, see FetchBook). Both paths build their actions with
// Actions, so the two behave identically.
//
// There is no retry, no cancellation of an in-flight fetch by a newer one,
// and no guard against overlap: concurrent fetches settle independently, in
// settlement order.
package coord

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/booklib/internal/books"
	"github.com/abelbrown/booklib/internal/otel"
	"github.com/abelbrown/booklib/internal/state"
)

// Fetcher is the outbound call. *fetch.Fetcher satisfies it.
type Fetcher interface {
	FetchBook(ctx context.Context, url string) (books.Raw, error)
}

// Settled is the outcome of one fetch. Exactly one of Raw/Err is meaningful.
type Settled struct {
	RequestID string
	URL       string
	Raw       books.Raw
	Err       error
	Dur       time.Duration
}

// Coordinator issues fetches. Safe for concurrent use.
type Coordinator struct {
	fetcher Fetcher
	logger  *otel.Logger // optional
	newBook func(books.Raw, books.Source) books.Book
	seq     atomic.Uint64
	wg      sync.WaitGroup
}

// NewCoordinator creates a Coordinator. logger may be nil.
func NewCoordinator(f Fetcher, logger *otel.Logger) *Coordinator {
	return &Coordinator{
		fetcher: f,
		logger:  logger,
		newBook: books.New,
	}
}

// Begin returns the pending action for a fetch of url. Dispatch it before calling Run.
func (c *Coordinator) Begin(url string) state.FetchPending {
	id := fmt.Sprintf("fetch-%d", c.seq.Add(1))
	if c.logger != nil {
		c.logger.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFetchStart, Comp: "coord", RequestID: id, Source: url})
	}
	return state.FetchPending{RequestID: id, URL: url}
}

// Run performs the fetch described by p and blocks until it settles.
func (c *Coordinator) Run(ctx context.Context, p state.FetchPending) Settled {
	start := time.Now()
	raw, err := c.fetcher.FetchBook(ctx, p.URL)
	s := Settled{RequestID: p.RequestID, URL: p.URL, Raw: raw, Err: err, Dur: time.Since(start)}

	if c.logger != nil {
		if err != nil {
			c.logger.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindFetchError, Comp: "coord", RequestID: p.RequestID, Source: p.URL, Dur: s.Dur, Err: err.Error()})
		} else {
			c.logger.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFetchComplete, Comp: "coord", RequestID: p.RequestID, Source: p.URL, Dur: s.Dur, Count: boolCount(raw.Complete())})
		}
	}
	return s
}

// Actions returns what to dispatch, in order, for a settled fetch.
//
// Success yields a single FetchFulfilled carrying a new api-tagged record, or a
// nil record when the payload lacks a title or author. Failure yields
// SetError with the failure text followed by FetchRejected.
func (c *Coordinator) Actions(s Settled) []state.Action {
	if s.Err != nil {
		msg := s.Err.Error()
		return []state.Action{
			state.SetError{Message: msg},
			state.FetchRejected{RequestID: s.RequestID, Message: msg},
		}
	}

	var rec *books.Book
	if s.Raw.Complete() {
		b := c.newBook(s.Raw, books.SourceAPI)
		rec = &b
	}
	return []state.Action{state.FetchFulfilled{RequestID: s.RequestID, Book: rec}}
}

// Cmd returns a bubbletea command that runs the fetch and yields a Settled message.
func (c *Coordinator) Cmd(ctx context.Context, p state.FetchPending) tea.Cmd {
	return func() tea.Msg {
		return c.Run(ctx, p)
	}
}

// FetchBook dispatches pending to d, then fetches in the background and
// dispatches the settlement. The returned Task completes after the settlement
// has been dispatched.
func (c *Coordinator) FetchBook(ctx context.Context, d state.Dispatcher, url string) *Task {
	p := c.Begin(url)
	d.Dispatch(p)

	t := &Task{RequestID: p.RequestID, done: make(chan struct{})}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(t.done)

		s := c.Run(ctx, p)
		for _, a := range c.Actions(s) {
			d.Dispatch(a)
			if f, ok := a.(state.FetchFulfilled); ok {
				t.book = f.Book
			}
		}
		t.err = s.Err
	}()
	return t
}

// Wait blocks until every Task started by FetchBook has completed.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Task is a started fetch.
type Task struct {
	RequestID string

	done chan struct{}
	book *books.Book
	err  error
}

// Done is closed once the settlement has been dispatched.
func (t *Task) Done() <-chan struct{} { return t.done }

// Result waits for the task and returns the added record (nil if the payload
// was dropped) or the fetch error. ctx only bounds the wait, not the fetch.
func (t *Task) Result(ctx context.Context) (*books.Book, error) {
	select {
	case <-t.done:
		return t.book, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func boolCount(b bool) int {
	if b {
		return 1
	}
	return 0
}
