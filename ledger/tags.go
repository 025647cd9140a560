package ledger

import (
	"context"
	"slices"
	"strings"

	"github.com/color-game/contest/models"
)

// CreateTag adds a trimmed tag to the global set. Blank and existing names
// are ignored. Like every tag operation it reports whether the ledger
// changed.
func (l *Ledger) CreateTag(ctx context.Context, name string) (bool, error) {
	tag := strings.TrimSpace(name)
	return l.update(ctx, "createTag", func(current models.ContestState) (models.ContestState, bool) {
		if tag == "" || slices.Contains(current.Tags, tag) {
			return current, false
		}
		next := current
		next.Tags = mergeTags(current.Tags, []string{tag})
		return next, true
	})
}

// DeleteTag removes the tag from the global set and from every entry
func (l *Ledger) DeleteTag(ctx context.Context, name string) (bool, error) {
	return l.update(ctx, "deleteTag", func(current models.ContestState) (models.ContestState, bool) {
		changed := slices.Contains(current.Tags, name)
		next := current
		next.Tags = withoutTags(current.Tags, []string{name})
		next.Entries = make([]models.ContestEntry, len(current.Entries))
		for i, entry := range current.Entries {
			if entry.HasTag(name) {
				entry.Tags = nilIfEmpty(withoutTags(entry.Tags, []string{name}))
				changed = true
			}
			next.Entries[i] = entry
		}
		return next, changed
	})
}

// RenameTag renames a tag everywhere it appears. It does nothing when the
// new name is blank, equal to the old one, or already exists, so two tags
// are never merged.
func (l *Ledger) RenameTag(ctx context.Context, oldName, newName string) (bool, error) {
	renamed := strings.TrimSpace(newName)
	return l.update(ctx, "renameTag", func(current models.ContestState) (models.ContestState, bool) {
		if renamed == "" || renamed == oldName || slices.Contains(current.Tags, renamed) {
			return current, false
		}
		changed := false
		next := current
		next.Tags = make([]string, 0, len(current.Tags))
		for _, tag := range current.Tags {
			if tag == oldName {
				tag = renamed
				changed = true
			}
			next.Tags = append(next.Tags, tag)
		}
		next.Tags = mergeTags(next.Tags, nil)

		next.Entries = make([]models.ContestEntry, len(current.Entries))
		for i, entry := range current.Entries {
			if entry.HasTag(oldName) {
				tags := make([]string, 0, len(entry.Tags))
				for _, tag := range entry.Tags {
					if tag == oldName {
						tag = renamed
					}
					tags = append(tags, tag)
				}
				entry.Tags = dedupe(tags)
				changed = true
			}
			next.Entries[i] = entry
		}
		return next, changed
	})
}

// AddTagsToEntries tags every entry whose timestamp is in ids. Applied tags
// are also added to the global set so it stays a superset of entry tags.
func (l *Ledger) AddTagsToEntries(ctx context.Context, ids []int64, tags []string) (bool, error) {
	cleaned := cleanTags(tags)
	return l.update(ctx, "addTagsToEntries", func(current models.ContestState) (models.ContestState, bool) {
		if len(cleaned) == 0 || len(ids) == 0 {
			return current, false
		}
		changed := false
		matched := false
		next := current
		next.Entries = make([]models.ContestEntry, len(current.Entries))
		for i, entry := range current.Entries {
			if slices.Contains(ids, entry.Timestamp) {
				matched = true
				merged := mergeTags(entry.Tags, cleaned)
				if !slices.Equal(merged, entry.Tags) {
					entry.Tags = merged
					changed = true
				}
			}
			next.Entries[i] = entry
		}
		if matched {
			global := mergeTags(current.Tags, cleaned)
			if !slices.Equal(global, current.Tags) {
				next.Tags = global
				changed = true
			}
		}
		return next, changed
	})
}

// RemoveTagsFromEntries strips tags from every entry whose timestamp is in
// ids. The global set is left alone.
func (l *Ledger) RemoveTagsFromEntries(ctx context.Context, ids []int64, tags []string) (bool, error) {
	cleaned := cleanTags(tags)
	return l.update(ctx, "removeTagsFromEntries", func(current models.ContestState) (models.ContestState, bool) {
		if len(cleaned) == 0 || len(ids) == 0 {
			return current, false
		}
		changed := false
		next := current
		next.Entries = make([]models.ContestEntry, len(current.Entries))
		for i, entry := range current.Entries {
			if slices.Contains(ids, entry.Timestamp) && slices.ContainsFunc(cleaned, entry.HasTag) {
				entry.Tags = nilIfEmpty(withoutTags(entry.Tags, cleaned))
				changed = true
			}
			next.Entries[i] = entry
		}
		return next, changed
	})
}

// FilterByAnyTag returns entries carrying at least one of tags. An empty
// filter returns every entry.
func (l *Ledger) FilterByAnyTag(tags []string) []models.ContestEntry {
	return FilterByAnyTag(l.Entries(), tags)
}

// FilterByAllTags returns entries carrying every one of tags. An empty
// filter returns every entry.
func (l *Ledger) FilterByAllTags(tags []string) []models.ContestEntry {
	return FilterByAllTags(l.Entries(), tags)
}

func (l *Ledger) UntaggedEntries() []models.ContestEntry {
	return UntaggedEntries(l.Entries())
}

// TagUsageCounts maps every known tag to the number of entries carrying it.
// Tags in the global set with no entries count 0.
func (l *Ledger) TagUsageCounts() map[string]int {
	state := l.state.Load()
	counts := make(map[string]int, len(state.Tags))
	for _, tag := range state.Tags {
		counts[tag] = 0
	}
	for _, entry := range state.Entries {
		for _, tag := range entry.Tags {
			counts[tag]++
		}
	}
	return counts
}

// TagStats lists TagUsageCounts sorted by tag name
func (l *Ledger) TagStats() []models.TagStat {
	counts := l.TagUsageCounts()
	stats := make([]models.TagStat, 0, len(counts))
	for tag, count := range counts {
		stats = append(stats, models.TagStat{Name: tag, Count: count})
	}
	slices.SortFunc(stats, func(a, b models.TagStat) int {
		return strings.Compare(a.Name, b.Name)
	})
	return stats
}

func FilterByAnyTag(entries []models.ContestEntry, tags []string) []models.ContestEntry {
	if len(tags) == 0 {
		return entries
	}
	out := make([]models.ContestEntry, 0, len(entries))
	for _, entry := range entries {
		if slices.ContainsFunc(tags, entry.HasTag) {
			out = append(out, entry)
		}
	}
	return out
}

func FilterByAllTags(entries []models.ContestEntry, tags []string) []models.ContestEntry {
	if len(tags) == 0 {
		return entries
	}
	out := make([]models.ContestEntry, 0, len(entries))
	for _, entry := range entries {
		all := true
		for _, tag := range tags {
			if !entry.HasTag(tag) {
				all = false
				break
			}
		}
		if all {
			out = append(out, entry)
		}
	}
	return out
}

func UntaggedEntries(entries []models.ContestEntry) []models.ContestEntry {
	out := make([]models.ContestEntry, 0, len(entries))
	for _, entry := range entries {
		if len(entry.Tags) == 0 {
			out = append(out, entry)
		}
	}
	return out
}

// mergeTags returns the sorted, deduplicated union of a and b
func mergeTags(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	slices.Sort(out)
	return slices.Compact(out)
}

func withoutTags(tags, remove []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if !slices.Contains(remove, tag) {
			out = append(out, tag)
		}
	}
	return out
}

// dedupe drops repeated tags, keeping first occurrences in order
func dedupe(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return dedupe(out)
}

func nilIfEmpty(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	return tags
}
