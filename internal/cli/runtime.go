package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abelbrown/booklib/internal/config"
	"github.com/abelbrown/booklib/internal/coord"
	"github.com/abelbrown/booklib/internal/fetch"
	"github.com/abelbrown/booklib/internal/journal"
	"github.com/abelbrown/booklib/internal/logging"
	"github.com/abelbrown/booklib/internal/otel"
	"github.com/abelbrown/booklib/internal/state"
)

// runtime is everything one booklib process wires together.
type runtime struct {
	ctx    context.Context
	cancel context.CancelFunc

	store   *state.Store
	coord   *coord.Coordinator
	journal *journal.Journal // nil when disabled
	logger  *otel.Logger
	ring    *otel.RingBuffer

	eventFile *os.File
	unsubs    []func()
}

// openRuntime sets up logging, the event log, the journal and the store.
func openRuntime(parent context.Context, cfg *config.Config) (*runtime, error) {
	if parent == nil {
		parent = context.Background()
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := logging.Init(cfg.LogDir(), cfg.Log.Level); err != nil {
		return nil, err
	}

	rt := &runtime{}
	rt.ctx, rt.cancel = context.WithCancel(parent)

	ef, err := os.OpenFile(cfg.EventLogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	rt.eventFile = ef
	rt.logger = otel.NewLogger(ef)
	rt.ring = otel.NewRingBuffer(otel.DefaultRingSize)
	rt.logger.SetRingBuffer(rt.ring)

	rt.store = state.NewStore(state.Initial())
	rt.unsubs = append(rt.unsubs, rt.store.Subscribe(func(a state.Action, _, _ state.State) {
		rt.logger.Dispatched("store", string(a.Type()), bookIDOf(a))
		logging.Debug("dispatch", "action", a.Type())
		if r, ok := a.(state.FetchRejected); ok {
			logging.Error("fetch failed", "rid", r.RequestID, "err", r.Message)
		}
	}))

	if path := cfg.JournalPath(); path != "" {
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				rt.Close()
				return nil, fmt.Errorf("failed to create journal directory: %w", err)
			}
		}
		j, err := journal.Open(path)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.journal = j
		jlog := logging.WithPrefix("journal")
		rt.unsubs = append(rt.unsubs, rt.store.Subscribe(j.Listener(func(err error) {
			rt.logger.Error(otel.KindJournalError, "journal", err)
			jlog.Warn("write failed", "err", err)
		})))
	}

	f := fetch.NewFetcher(cfg.API.Timeout, cfg.API.RatePerSecond)
	rt.coord = coord.NewCoordinator(f, rt.logger)

	logging.Info("booklib started", "session", rt.logger.SessionID(), "api", cfg.API.URL, "journal", cfg.JournalPath())
	return rt, nil
}

// Close waits for in-flight headless fetches, then releases everything in reverse order.
func (rt *runtime) Close() {
	if rt.cancel != nil {
		rt.cancel()
	}
	if rt.coord != nil {
		rt.coord.Wait()
	}
	for i := len(rt.unsubs) - 1; i >= 0; i-- {
		rt.unsubs[i]()
	}
	if rt.journal != nil {
		if err := rt.journal.Close(); err != nil {
			logging.Warn("journal close failed", "err", err)
		}
	}
	if rt.logger != nil {
		rt.logger.Info(otel.KindShutdown, "main", "")
		rt.logger.Close()
	}
	if rt.eventFile != nil {
		rt.eventFile.Close()
	}
	logging.Info("booklib shutting down")
	logging.Close()
}

// bookIDOf returns the id of the book an action touches, if any.
func bookIDOf(a state.Action) string {
	switch a := a.(type) {
	case state.AddBook:
		return a.Book.ID
	case state.DeleteBook:
		return a.ID
	case state.ToggleFavorite:
		return a.ID
	case state.FetchFulfilled:
		if a.Book != nil {
			return a.Book.ID
		}
	}
	return ""
}
