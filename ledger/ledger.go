package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/color-game/contest/datastore"
	"github.com/color-game/contest/models"
)

const stateKey = "state"

// Ledger is the single writer of the contest aggregate
type Ledger struct {
	store     datastore.KeyValueStore
	keyPrefix string
	logger    *slog.Logger
	now       func() time.Time

	writeMu  sync.Mutex
	notifyMu sync.Mutex
	state    atomic.Pointer[models.ContestState]

	subMu       sync.Mutex
	subscribers map[int]func(models.ContestState)
	nextSubID   int
}

type Option func(*Ledger)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// WithClock replaces time.Now for submission timestamps
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// WithKeyPrefix sets the prefix of the persisted key, "contest:" by default
func WithKeyPrefix(prefix string) Option {
	return func(l *Ledger) {
		l.keyPrefix = prefix
	}
}

// New loads the persisted aggregate from store, or starts empty when
// nothing has been stored yet.
func New(ctx context.Context, store datastore.KeyValueStore, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		store:       store,
		keyPrefix:   "contest:",
		now:         time.Now,
		subscribers: make(map[int]func(models.ContestState)),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	state, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	l.state.Store(&state)
	l.logger.Debug("ledger loaded",
		"entries", len(state.Entries),
		"tags", len(state.Tags),
	)
	return l, nil
}

func emptyState() models.ContestState {
	return models.ContestState{
		Entries: []models.ContestEntry{},
		Tags:    []string{},
	}
}

func (l *Ledger) key() string {
	return l.keyPrefix + stateKey
}

type persistedState struct {
	Entries      []json.RawMessage   `json:"entries"`
	Tags         []string            `json:"tags"`
	PantoneColor *models.ColorSample `json:"pantoneColor,omitempty"`
}

func (l *Ledger) load(ctx context.Context) (models.ContestState, error) {
	buf, err := l.store.Get(ctx, l.key())
	if datastore.IsNotFound(err) {
		return emptyState(), nil
	}
	if err != nil {
		return models.ContestState{}, fmt.Errorf("failed to load contest state: %w", err)
	}

	var persisted persistedState
	if err := json.Unmarshal(buf, &persisted); err != nil {
		return models.ContestState{}, fmt.Errorf("failed to decode contest state: %w", err)
	}

	state := emptyState()
	state.ReferenceColor = persisted.PantoneColor
	// Stored entries go through the same normalization as imports so
	// aggregates written by older versions load in the current shape.
	for i, raw := range persisted.Entries {
		entry, err := decodeRecord(raw)
		if err != nil {
			return models.ContestState{}, fmt.Errorf("failed to decode stored entry %d: %w", i, err)
		}
		state.Entries = append(state.Entries, entry)
	}
	state.Tags = mergeTags(persisted.Tags, entryTags(state.Entries))
	return state, nil
}

// Snapshot returns a deep copy of the current aggregate
func (l *Ledger) Snapshot() models.ContestState {
	return l.state.Load().Clone()
}

// Subscribe registers fn to receive every newly written aggregate, in write
// order. fn must not write to the ledger. The returned function removes the
// subscription.
func (l *Ledger) Subscribe(fn func(models.ContestState)) func() {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	id := l.nextSubID
	l.nextSubID++
	l.subscribers[id] = fn
	return func() {
		l.subMu.Lock()
		defer l.subMu.Unlock()
		delete(l.subscribers, id)
	}
}

func (l *Ledger) notify(state models.ContestState) {
	l.subMu.Lock()
	subs := make([]func(models.ContestState), 0, len(l.subscribers))
	for _, fn := range l.subscribers {
		subs = append(subs, fn)
	}
	l.subMu.Unlock()

	for _, fn := range subs {
		fn(state.Clone())
	}
}

// update runs one read-modify-write transition. fn receives the current
// aggregate, which it must not modify, and returns the replacement and
// whether anything changed. Unchanged results are not written. Subscribers
// are notified in write order.
func (l *Ledger) update(ctx context.Context, op string, fn func(current models.ContestState) (models.ContestState, bool)) (bool, error) {
	l.writeMu.Lock()
	current := l.state.Load()
	next, changed := fn(*current)
	if !changed {
		l.writeMu.Unlock()
		l.logger.Debug("ledger operation changed nothing", "op", op)
		return false, nil
	}

	if err := l.persist(ctx, next); err != nil {
		l.writeMu.Unlock()
		l.logger.Error("ledger write failed", "op", op, "error", err)
		return false, err
	}
	l.state.Store(&next)
	// taken before writeMu is released so deliveries keep write order
	l.notifyMu.Lock()
	l.writeMu.Unlock()
	defer l.notifyMu.Unlock()

	l.logger.Debug("ledger updated",
		"op", op,
		"entries", len(next.Entries),
		"tags", len(next.Tags),
	)
	l.notify(next)
	return true, nil
}

func (l *Ledger) persist(ctx context.Context, state models.ContestState) error {
	buf, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode contest state: %w", err)
	}
	if err := l.store.Set(ctx, l.key(), buf); err != nil {
		return fmt.Errorf("failed to persist contest state: %w", err)
	}
	return nil
}
