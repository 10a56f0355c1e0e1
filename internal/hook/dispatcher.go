package hook

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/robert-claypool/dotfiles/internal/format"
	"github.com/robert-claypool/dotfiles/internal/history"
	"github.com/robert-claypool/dotfiles/internal/payload"
	"github.com/robert-claypool/dotfiles/internal/state"
)

// Store is the persistence the dispatcher needs. *state.Store satisfies it.
type Store interface {
	Load(ctx context.Context) state.LoadResult
	Save(ctx context.Context, st state.SessionState) state.SaveResult
	Lock(ctx context.Context) (func(), error)
}

// Journal records dispatches. history.Service satisfies it.
type Journal interface {
	Record(ctx context.Context, entry history.Entry) (history.Entry, error)
}

// Options configures a Dispatcher. The zero value emits the built-in texts
// as plain text, without a journal, logging through slog.Default.
type Options struct {
	Payloads *payload.Set
	Format   format.OutputFormat
	Journal  Journal
	Logger   *slog.Logger
}

// Dispatcher handles one event per invocation. It holds no state of its own
// between calls; everything lives in the Store.
type Dispatcher struct {
	store    Store
	payloads payload.Set
	format   format.OutputFormat
	journal  Journal
	logger   *slog.Logger
}

// Outcome describes what a Handle call did.
type Outcome struct {
	Event   Event
	Ignored bool
	Before  state.SessionState
	After   state.SessionState
	Reset   bool
	Payload payload.Kind
	Load    state.LoadResult
	Save    state.SaveResult
}

// NewDispatcher returns a Dispatcher persisting through store.
func NewDispatcher(store Store, opts Options) *Dispatcher {
	d := &Dispatcher{
		store:    store,
		payloads: payload.Builtin(),
		format:   format.Parse(string(opts.Format)),
		journal:  opts.Journal,
		logger:   opts.Logger,
	}
	if opts.Payloads != nil {
		d.payloads = *opts.Payloads
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Handle reads one event from in, runs it through the state machine and
// writes the selected reminder, if any, to out. It never fails: malformed
// input is ignored and storage problems are logged and absorbed.
func (d *Dispatcher) Handle(ctx context.Context, in io.Reader, out io.Writer) Outcome {
	ev, err := ReadEvent(in)
	if err != nil {
		d.logger.Debug("ignoring hook input", "error", err)
		return Outcome{Ignored: true}
	}

	log := d.logger.With("event", ev.Name, "session_id", ev.SessionID)
	outcome := d.transition(ctx, log, ev)

	if d.journal != nil {
		d.record(ctx, log, outcome)
	}

	log.Info("dispatched",
		"payload", outcome.Payload.String(),
		"reset", outcome.Reset,
		"pending_before", outcome.Before.CompactionPending,
		"pending_after", outcome.After.CompactionPending,
	)

	d.emit(log, out, ev.Name, outcome.Payload)
	return outcome
}

// transition runs load, reconcile, apply and save under the store lock.
func (d *Dispatcher) transition(ctx context.Context, log *slog.Logger, ev Event) Outcome {
	release, err := d.store.Lock(ctx)
	if err != nil {
		log.Warn("proceeding without state lock", "error", err)
	}
	defer release()

	loaded := d.store.Load(ctx)
	switch {
	case loaded.Err == nil:
	case errors.Is(loaded.Err, state.ErrNoState):
		log.Debug("no stored state, using default")
	default:
		log.Warn("state load failed, using default", "error", loaded.Err)
	}

	reconciled := state.Reconcile(loaded.State, ev.SessionID)
	next, kind := Apply(reconciled, ev.Name)

	saved := d.store.Save(ctx, next)
	if !saved.OK() {
		log.Warn("state save failed", "error", saved.Err)
	}

	return Outcome{
		Event:   ev,
		Before:  loaded.State,
		After:   next,
		Reset:   !loaded.State.SameSession(ev.SessionID),
		Payload: kind,
		Load:    loaded,
		Save:    saved,
	}
}

func (d *Dispatcher) record(ctx context.Context, log *slog.Logger, o Outcome) {
	_, err := d.journal.Record(ctx, history.Entry{
		SessionID:     o.Event.SessionID,
		Event:         o.Event.Name,
		Payload:       o.Payload.String(),
		PendingBefore: o.Before.CompactionPending,
		PendingAfter:  o.After.CompactionPending,
		SessionReset:  o.Reset,
	})
	if err != nil {
		log.Warn("history record failed", "error", err)
	}
}

// emit writes the reminder exactly once. Nothing is written for payload.None.
func (d *Dispatcher) emit(log *slog.Logger, out io.Writer, eventName string, kind payload.Kind) {
	text := d.payloads.Text(kind)
	if text == "" {
		return
	}

	formatted, err := format.FormatOutput(text, eventName, d.format)
	if err != nil {
		log.Warn("output format failed, writing plain text", "error", err)
		formatted = text
	}
	if _, err := io.WriteString(out, formatted); err != nil {
		log.Warn("writing reminder failed", "error", err)
	}
}
