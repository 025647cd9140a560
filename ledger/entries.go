package ledger

import (
	"context"
	"strings"

	"github.com/color-game/contest/models"
)

// SubmitEntry appends a new entry stamped with the current time and returns
// it. The name is trimmed; contact is stored as given.
func (l *Ledger) SubmitEntry(ctx context.Context, name, contact string, guessed, primer models.ColorSample) (models.ContestEntry, error) {
	var submitted models.ContestEntry
	_, err := l.update(ctx, "submitEntry", func(current models.ContestState) (models.ContestState, bool) {
		submitted = models.ContestEntry{
			Name:         strings.TrimSpace(name),
			Contact:      contact,
			GuessedColor: guessed,
			PrimerColor:  primer,
			Timestamp:    l.now().UnixMilli(),
		}
		next := current
		next.Entries = appendEntries(current.Entries, submitted)
		return next, true
	})
	if err != nil {
		return models.ContestEntry{}, err
	}
	return submitted, nil
}

// SetReferenceColor replaces the reference color. A nil sample clears it.
func (l *Ledger) SetReferenceColor(ctx context.Context, sample *models.ColorSample) error {
	_, err := l.update(ctx, "setReferenceColor", func(current models.ContestState) (models.ContestState, bool) {
		next := current
		if sample == nil {
			next.ReferenceColor = nil
			return next, current.ReferenceColor != nil
		}
		ref := *sample
		next.ReferenceColor = &ref
		return next, true
	})
	return err
}

// Reset replaces the aggregate with an empty one
func (l *Ledger) Reset(ctx context.Context) error {
	_, err := l.update(ctx, "reset", func(models.ContestState) (models.ContestState, bool) {
		return emptyState(), true
	})
	return err
}

func (l *Ledger) Entries() []models.ContestEntry {
	return l.Snapshot().Entries
}

func (l *Ledger) Tags() []string {
	return l.Snapshot().Tags
}

// ReferenceColor returns a copy of the reference color, or nil
func (l *Ledger) ReferenceColor() *models.ColorSample {
	ref := l.state.Load().ReferenceColor
	if ref == nil {
		return nil
	}
	out := *ref
	return &out
}

func appendEntries(existing []models.ContestEntry, added ...models.ContestEntry) []models.ContestEntry {
	out := make([]models.ContestEntry, 0, len(existing)+len(added))
	out = append(out, existing...)
	return append(out, added...)
}
