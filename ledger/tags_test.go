package ledger

import (
	"context"
	"testing"

	"github.com/color-game/contest/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedLedger returns a ledger with three entries stamped 1000, 1001, 1002
func seedLedger(t *testing.T) *Ledger {
	t.Helper()
	ctx := context.Background()
	l := newTestLedger(t, nil)
	for _, name := range []string{"Ada", "Grace", "Linus"} {
		_, err := l.SubmitEntry(ctx, name, "", red, blue)
		require.NoError(t, err)
	}
	return l
}

func names(entries []models.ContestEntry) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Name)
	}
	return out
}

// assertGlobalSuperset checks every entry tag is in the global tag set
func assertGlobalSuperset(t *testing.T, state models.ContestState) {
	t.Helper()
	for _, entry := range state.Entries {
		for _, tag := range entry.Tags {
			assert.Contains(t, state.Tags, tag, "entry %s carries tag %q missing from global set", entry.Name, tag)
		}
	}
}

func TestCreateTag(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil)

	_, err := l.CreateTag(ctx, "  vip ")
	require.NoError(t, err)
	_, err = l.CreateTag(ctx, "alpha")
	require.NoError(t, err)
	_, err = l.CreateTag(ctx, "vip")
	require.NoError(t, err)
	_, err = l.CreateTag(ctx, "")
	require.NoError(t, err)
	_, err = l.CreateTag(ctx, "   ")
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "vip"}, l.Tags())
}

func TestTagsAreCaseSensitive(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil)
	_, err := l.CreateTag(ctx, "VIP")
	require.NoError(t, err)
	_, err = l.CreateTag(ctx, "vip")
	require.NoError(t, err)
	assert.Equal(t, []string{"VIP", "vip"}, l.Tags())
}

func TestDeleteTag(t *testing.T) {
	ctx := context.Background()
	l := seedLedger(t)
	_, err := l.AddTagsToEntries(ctx, []int64{1000, 1001}, []string{"vip", "late"})
	require.NoError(t, err)
	_, err = l.AddTagsToEntries(ctx, []int64{1002}, []string{"vip"})
	require.NoError(t, err)

	_, err = l.DeleteTag(ctx, "vip")
	require.NoError(t, err)

	state := l.Snapshot()
	assert.Equal(t, []string{"late"}, state.Tags)
	assert.Equal(t, []string{"late"}, state.Entries[0].Tags)
	assert.Equal(t, []string{"late"}, state.Entries[1].Tags)
	assert.Nil(t, state.Entries[2].Tags)
	for _, entry := range state.Entries {
		assert.False(t, entry.HasTag("vip"))
	}

	// deleting an unknown tag is a no-op
	_, err = l.DeleteTag(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, state, l.Snapshot())
}

func TestRenameTag(t *testing.T) {
	ctx := context.Background()
	l := seedLedger(t)
	_, err := l.AddTagsToEntries(ctx, []int64{1000, 1002}, []string{"vip"})
	require.NoError(t, err)
	_, err = l.CreateTag(ctx, "late")
	require.NoError(t, err)

	_, err = l.RenameTag(ctx, "vip", " finalist ")
	require.NoError(t, err)

	state := l.Snapshot()
	assert.Equal(t, []string{"finalist", "late"}, state.Tags)
	assert.Equal(t, []string{"finalist"}, state.Entries[0].Tags)
	assert.Nil(t, state.Entries[1].Tags)
	assert.Equal(t, []string{"finalist"}, state.Entries[2].Tags)
	assertGlobalSuperset(t, state)
}

func TestRenameTagRefusesCollisions(t *testing.T) {
	ctx := context.Background()
	l := seedLedger(t)
	_, err := l.AddTagsToEntries(ctx, []int64{1000}, []string{"vip"})
	require.NoError(t, err)
	_, err = l.AddTagsToEntries(ctx, []int64{1001}, []string{"late"})
	require.NoError(t, err)
	before := l.Snapshot()

	for _, newName := range []string{"late", "vip", "", "   "} {
		_, err = l.RenameTag(ctx, "vip", newName)
		require.NoError(t, err)
		assert.Equal(t, before, l.Snapshot(), "rename to %q should change nothing", newName)
	}
}

func TestAddTagsToEntries(t *testing.T) {
	ctx := context.Background()
	l := seedLedger(t)

	_, err := l.AddTagsToEntries(ctx, []int64{1000, 1002, 9999}, []string{"vip", " ", "vip", "b"})
	require.NoError(t, err)

	state := l.Snapshot()
	assert.Equal(t, []string{"b", "vip"}, state.Entries[0].Tags)
	assert.Nil(t, state.Entries[1].Tags)
	assert.Equal(t, []string{"b", "vip"}, state.Entries[2].Tags)
	assert.Equal(t, []string{"b", "vip"}, state.Tags)
	assertGlobalSuperset(t, state)

	// adding again is idempotent
	_, err = l.AddTagsToEntries(ctx, []int64{1000}, []string{"vip"})
	require.NoError(t, err)
	assert.Equal(t, state, l.Snapshot())
}

func TestAddTagsToUnknownEntries(t *testing.T) {
	ctx := context.Background()
	l := seedLedger(t)
	before := l.Snapshot()

	_, err := l.AddTagsToEntries(ctx, []int64{42}, []string{"vip"})
	require.NoError(t, err)
	_, err = l.AddTagsToEntries(ctx, nil, []string{"vip"})
	require.NoError(t, err)
	_, err = l.AddTagsToEntries(ctx, []int64{1000}, nil)
	require.NoError(t, err)
	assert.Equal(t, before, l.Snapshot())
}

func TestTimestampCollisionsShareIdentity(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil)
	data := []byte(`[
		{"name":"a","contact":"","l":0.5,"c":0.1,"h":10,"alpha":1,"timestamp":7},
		{"name":"b","contact":"","l":0.5,"c":0.1,"h":10,"alpha":1,"timestamp":7},
		{"name":"c","contact":"","l":0.5,"c":0.1,"h":10,"alpha":1,"timestamp":8}
	]`)
	require.True(t, l.ImportEntries(ctx, data).Success)

	_, err := l.AddTagsToEntries(ctx, []int64{7}, []string{"twin"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names(l.FilterByAnyTag([]string{"twin"})))
}

func TestRemoveTagsFromEntries(t *testing.T) {
	ctx := context.Background()
	l := seedLedger(t)
	_, err := l.AddTagsToEntries(ctx, []int64{1000, 1001}, []string{"vip", "late"})
	require.NoError(t, err)

	_, err = l.RemoveTagsFromEntries(ctx, []int64{1000}, []string{"vip", "late"})
	require.NoError(t, err)
	_, err = l.RemoveTagsFromEntries(ctx, []int64{1001}, []string{"vip"})
	require.NoError(t, err)

	state := l.Snapshot()
	assert.Nil(t, state.Entries[0].Tags, "emptied tag set should be absent")
	assert.Equal(t, []string{"late"}, state.Entries[1].Tags)
	assert.Equal(t, []string{"late", "vip"}, state.Tags, "global set is untouched")
	assertGlobalSuperset(t, state)
}

func TestFilters(t *testing.T) {
	ctx := context.Background()
	l := seedLedger(t)
	_, err := l.AddTagsToEntries(ctx, []int64{1000}, []string{"vip", "late"})
	require.NoError(t, err)
	_, err = l.AddTagsToEntries(ctx, []int64{1001}, []string{"vip"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Ada", "Grace"}, names(l.FilterByAnyTag([]string{"vip"})))
	assert.Equal(t, []string{"Ada", "Grace"}, names(l.FilterByAnyTag([]string{"late", "vip"})))
	assert.Equal(t, []string{"Ada"}, names(l.FilterByAllTags([]string{"late", "vip"})))
	assert.Empty(t, l.FilterByAnyTag([]string{"missing"}))
	assert.Equal(t, []string{"Linus"}, names(l.UntaggedEntries()))

	// empty filters select everything
	assert.Equal(t, []string{"Ada", "Grace", "Linus"}, names(l.FilterByAnyTag(nil)))
	assert.Equal(t, []string{"Ada", "Grace", "Linus"}, names(l.FilterByAllTags([]string{})))
}

func TestFilterByAllTagsIsSubsetOfAny(t *testing.T) {
	ctx := context.Background()
	l := seedLedger(t)
	_, err := l.AddTagsToEntries(ctx, []int64{1000}, []string{"a", "b"})
	require.NoError(t, err)
	_, err = l.AddTagsToEntries(ctx, []int64{1001}, []string{"b"})
	require.NoError(t, err)
	_, err = l.AddTagsToEntries(ctx, []int64{1002}, []string{"c"})
	require.NoError(t, err)

	for _, filter := range [][]string{{"a"}, {"a", "b"}, {"b", "c"}, {"a", "b", "c"}} {
		anyMatches := names(l.FilterByAnyTag(filter))
		for _, name := range names(l.FilterByAllTags(filter)) {
			assert.Contains(t, anyMatches, name, "filter %v", filter)
		}
	}
}

func TestTagUsageCounts(t *testing.T) {
	ctx := context.Background()
	l := seedLedger(t)
	_, err := l.AddTagsToEntries(ctx, []int64{1000, 1001}, []string{"vip"})
	require.NoError(t, err)
	_, err = l.AddTagsToEntries(ctx, []int64{1002}, []string{"late"})
	require.NoError(t, err)
	_, err = l.CreateTag(ctx, "unused")
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"vip": 2, "late": 1, "unused": 0}, l.TagUsageCounts())
	assert.Equal(t, []models.TagStat{
		{Name: "late", Count: 1},
		{Name: "unused", Count: 0},
		{Name: "vip", Count: 2},
	}, l.TagStats())
}

func TestTagOperationsReportChanges(t *testing.T) {
	ctx := context.Background()
	l := seedLedger(t)

	steps := []struct {
		name    string
		op      func() (bool, error)
		changed bool
	}{
		{"create", func() (bool, error) { return l.CreateTag(ctx, "vip") }, true},
		{"create again", func() (bool, error) { return l.CreateTag(ctx, " vip ") }, false},
		{"add", func() (bool, error) { return l.AddTagsToEntries(ctx, []int64{1000}, []string{"vip"}) }, true},
		{"add again", func() (bool, error) { return l.AddTagsToEntries(ctx, []int64{1000}, []string{"vip"}) }, false},
		{"add unknown id", func() (bool, error) { return l.AddTagsToEntries(ctx, []int64{42}, []string{"late"}) }, false},
		{"rename", func() (bool, error) { return l.RenameTag(ctx, "vip", "finalist") }, true},
		{"rename missing", func() (bool, error) { return l.RenameTag(ctx, "vip", "other") }, false},
		{"remove", func() (bool, error) { return l.RemoveTagsFromEntries(ctx, []int64{1000}, []string{"finalist"}) }, true},
		{"remove again", func() (bool, error) { return l.RemoveTagsFromEntries(ctx, []int64{1000}, []string{"finalist"}) }, false},
		{"delete", func() (bool, error) { return l.DeleteTag(ctx, "finalist") }, true},
		{"delete missing", func() (bool, error) { return l.DeleteTag(ctx, "finalist") }, false},
	}
	for _, step := range steps {
		changed, err := step.op()
		require.NoError(t, err, step.name)
		assert.Equal(t, step.changed, changed, step.name)
	}
}
