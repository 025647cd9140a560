package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/color-game/contest/datastore"
	"github.com/color-game/contest/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red   = models.ColorSample{L: 0.63, C: 0.26, H: 29, Alpha: 1}
	blue  = models.ColorSample{L: 0.45, C: 0.31, H: 264, Alpha: 1}
	green = models.ColorSample{L: 0.87, C: 0.29, H: 142, Alpha: 1}
)

// stepClock returns a clock that advances one millisecond per call
func stepClock(start int64) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := time.UnixMilli(next)
		next++
		return now
	}
}

func newTestLedger(t *testing.T, store datastore.KeyValueStore) *Ledger {
	t.Helper()
	if store == nil {
		store = datastore.NewMemoryStore()
	}
	l, err := New(context.Background(), store, WithClock(stepClock(1000)))
	require.NoError(t, err)
	return l
}

// failingStore fails every write after the first failAfter writes
type failingStore struct {
	*datastore.MemoryStore
	mu        sync.Mutex
	writes    int
	failAfter int
}

func (fs *failingStore) Set(ctx context.Context, key string, value []byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.writes >= fs.failAfter {
		return errors.New("disk full")
	}
	fs.writes++
	return fs.MemoryStore.Set(ctx, key, value)
}

func TestNewEmptyStore(t *testing.T) {
	l := newTestLedger(t, nil)
	state := l.Snapshot()
	assert.Empty(t, state.Entries)
	assert.NotNil(t, state.Entries)
	assert.Empty(t, state.Tags)
	assert.Nil(t, state.ReferenceColor)
}

func TestNewCorruptState(t *testing.T) {
	store := datastore.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "contest:state", []byte("{nope")))
	_, err := New(context.Background(), store)
	assert.Error(t, err)
}

func TestSubmitEntry(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil)

	entry, err := l.SubmitEntry(ctx, "  Ada  ", "ada@example.com", red, blue)
	require.NoError(t, err)
	assert.Equal(t, "Ada", entry.Name)
	assert.Equal(t, "ada@example.com", entry.Contact)
	assert.Equal(t, int64(1000), entry.Timestamp)
	assert.Equal(t, red, entry.GuessedColor)
	assert.Equal(t, blue, entry.PrimerColor)
	assert.Nil(t, entry.Tags)

	_, err = l.SubmitEntry(ctx, "Grace", "", green, red)
	require.NoError(t, err)

	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Ada", entries[0].Name)
	assert.Equal(t, "Grace", entries[1].Name)
	assert.Equal(t, int64(1001), entries[1].Timestamp)
}

func TestStatePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	store := datastore.NewMemoryStore()
	l := newTestLedger(t, store)

	_, err := l.SubmitEntry(ctx, "Ada", "", red, blue)
	require.NoError(t, err)
	_, err = l.CreateTag(ctx, "finalists")
	require.NoError(t, err)
	require.NoError(t, l.SetReferenceColor(ctx, &green))

	reloaded, err := New(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, l.Snapshot(), reloaded.Snapshot())
}

func TestKeyPrefix(t *testing.T) {
	ctx := context.Background()
	store := datastore.NewMemoryStore()
	l, err := New(ctx, store, WithKeyPrefix("spring:"))
	require.NoError(t, err)
	_, err = l.SubmitEntry(ctx, "Ada", "", red, blue)
	require.NoError(t, err)

	_, err = store.Get(ctx, "spring:state")
	assert.NoError(t, err)
	_, err = store.Get(ctx, "contest:state")
	assert.True(t, datastore.IsNotFound(err))
}

func TestLegacyStateUpgradedOnLoad(t *testing.T) {
	ctx := context.Background()
	store := datastore.NewMemoryStore()
	stored := `{"entries":[{"name":"Old","contact":"x","l":0.5,"c":0.1,"h":200,"alpha":1,"timestamp":5,"tags":["vip","vip"]}],"tags":["vip"]}`
	require.NoError(t, store.Set(ctx, "contest:state", []byte(stored)))

	l, err := New(ctx, store)
	require.NoError(t, err)
	entries := l.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, models.NeutralPrimer, entries[0].PrimerColor)
	assert.Equal(t, models.ColorSample{L: 0.5, C: 0.1, H: 200, Alpha: 1}, entries[0].GuessedColor)
	assert.Equal(t, []string{"vip"}, entries[0].Tags)
}

func TestSnapshotIsIsolated(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil)
	_, err := l.SubmitEntry(ctx, "Ada", "", red, blue)
	require.NoError(t, err)
	_, err = l.AddTagsToEntries(ctx, []int64{1000}, []string{"vip"})
	require.NoError(t, err)
	require.NoError(t, l.SetReferenceColor(ctx, &green))

	snap := l.Snapshot()
	snap.Entries[0].Tags[0] = "mutated"
	snap.Entries[0].Name = "mutated"
	snap.Tags[0] = "mutated"
	snap.ReferenceColor.L = 0

	fresh := l.Snapshot()
	assert.Equal(t, "Ada", fresh.Entries[0].Name)
	assert.Equal(t, []string{"vip"}, fresh.Entries[0].Tags)
	assert.Equal(t, []string{"vip"}, fresh.Tags)
	assert.Equal(t, green, *fresh.ReferenceColor)
}

func TestFailedWriteLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{MemoryStore: datastore.NewMemoryStore(), failAfter: 1}
	l := newTestLedger(t, store)

	_, err := l.SubmitEntry(ctx, "Ada", "", red, blue)
	require.NoError(t, err)
	before := l.Snapshot()

	notified := 0
	l.Subscribe(func(models.ContestState) { notified++ })

	_, err = l.SubmitEntry(ctx, "Grace", "", green, red)
	assert.ErrorContains(t, err, "disk full")
	_, err = l.CreateTag(ctx, "vip")
	assert.Error(t, err)
	assert.Error(t, l.Reset(ctx))

	result := l.ImportEntries(ctx, []byte(`[{"name":"x","contact":"","l":0.5,"c":0.1,"h":1,"alpha":1,"timestamp":9}]`))
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "disk full")

	assert.Equal(t, before, l.Snapshot())
	assert.Zero(t, notified)
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil)

	var seen []int
	unsubscribe := l.Subscribe(func(state models.ContestState) {
		seen = append(seen, len(state.Entries))
	})

	_, err := l.SubmitEntry(ctx, "Ada", "", red, blue)
	require.NoError(t, err)
	_, err = l.SubmitEntry(ctx, "Grace", "", red, blue)
	require.NoError(t, err)

	// no-op operations do not notify
	_, err = l.CreateTag(ctx, "  ")
	require.NoError(t, err)

	unsubscribe()
	_, err = l.SubmitEntry(ctx, "Linus", "", red, blue)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, seen)
}

func TestSetReferenceColor(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil)
	assert.Nil(t, l.ReferenceColor())

	require.NoError(t, l.SetReferenceColor(ctx, &blue))
	assert.Equal(t, blue, *l.ReferenceColor())

	require.NoError(t, l.SetReferenceColor(ctx, nil))
	assert.Nil(t, l.ReferenceColor())
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil)
	_, err := l.SubmitEntry(ctx, "Ada", "", red, blue)
	require.NoError(t, err)
	_, err = l.CreateTag(ctx, "vip")
	require.NoError(t, err)
	require.NoError(t, l.SetReferenceColor(ctx, &green))

	require.NoError(t, l.Reset(ctx))
	state := l.Snapshot()
	assert.Empty(t, state.Entries)
	assert.Empty(t, state.Tags)
	assert.Nil(t, state.ReferenceColor)
}

func TestConcurrentSubmissions(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.SubmitEntry(ctx, "racer", "", red, blue)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Len(t, l.Entries(), 50)
}

func TestConcurrentWritesNotifyInOrder(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil)

	var (
		mu   sync.Mutex
		seen []int
	)
	l.Subscribe(func(state models.ContestState) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, len(state.Entries))
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.SubmitEntry(ctx, "racer", "", red, blue)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 50)
	for i, count := range seen {
		assert.Equal(t, i+1, count, "delivery %d", i)
	}
}

func TestLoadRestoresGlobalTagSuperset(t *testing.T) {
	ctx := context.Background()
	store := datastore.NewMemoryStore()
	stored := `{"entries":[` +
		`{"name":"A","contact":"","guessedColor":{"l":0.5,"c":0.1,"h":1,"alpha":1},"primerColor":{"l":0.5,"c":0,"h":0,"alpha":1},"timestamp":1,"tags":["vip","late"]}` +
		`],"tags":["unused"]}`
	require.NoError(t, store.Set(ctx, "contest:state", []byte(stored)))

	l, err := New(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, []string{"late", "unused", "vip"}, l.Tags())
	assertGlobalSuperset(t, l.Snapshot())
}
