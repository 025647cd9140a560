package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/color-game/contest/models"
)

// SchemaVersion identifies the shape of one serialized entry
type SchemaVersion int

const (
	SchemaUnknown SchemaVersion = iota
	// SchemaLegacy entries inline l, c, h and alpha and carry no primer
	SchemaLegacy
	// SchemaCurrent entries carry guessedColor and primerColor objects
	SchemaCurrent
)

func (v SchemaVersion) String() string {
	switch v {
	case SchemaLegacy:
		return "legacy"
	case SchemaCurrent:
		return "current"
	default:
		return "unknown"
	}
}

var (
	ErrUnrecognizedSchema = errors.New("record matches neither the current nor the legacy entry schema")
	ErrEmptyImport        = errors.New("import file is empty")
)

type recordFields map[string]json.RawMessage

func (f recordFields) present(name string) bool {
	raw, ok := f[name]
	return ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (f recordFields) object(name string) bool {
	raw, ok := f[name]
	raw = bytes.TrimSpace(raw)
	return ok && len(raw) > 0 && raw[0] == '{'
}

func (f recordFields) number(name string) bool {
	raw, ok := f[name]
	if !ok {
		return false
	}
	var n float64
	return json.Unmarshal(raw, &n) == nil
}

func (f recordFields) str(name string) bool {
	raw, ok := f[name]
	if !ok {
		return false
	}
	var s string
	return json.Unmarshal(raw, &s) == nil
}

// DetectSchema classifies one serialized entry. Records that are not JSON
// objects, or that match neither shape, are SchemaUnknown.
func DetectSchema(raw json.RawMessage) SchemaVersion {
	var fields recordFields
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return SchemaUnknown
	}
	return detect(fields)
}

func detect(fields recordFields) SchemaVersion {
	if fields.object("guessedColor") && fields.object("primerColor") {
		return SchemaCurrent
	}
	if fields.present("guessedColor") || fields.present("primerColor") {
		return SchemaUnknown
	}
	for _, name := range []string{"l", "c", "h", "alpha"} {
		if !fields.number(name) {
			return SchemaUnknown
		}
	}
	return SchemaLegacy
}

type currentRecord struct {
	Name         string            `json:"name"`
	Contact      string            `json:"contact"`
	GuessedColor models.ColorInput `json:"guessedColor"`
	PrimerColor  models.ColorInput `json:"primerColor"`
	Tags         []string          `json:"tags"`
	Timestamp    int64             `json:"timestamp"`
}

// decodeRecord converts one serialized entry of either schema into a
// current entry.
func decodeRecord(raw json.RawMessage) (models.ContestEntry, error) {
	var fields recordFields
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return models.ContestEntry{}, fmt.Errorf("expected a JSON object")
	}
	if !fields.str("name") {
		return models.ContestEntry{}, fmt.Errorf("missing or invalid name")
	}
	if !fields.number("timestamp") {
		return models.ContestEntry{}, fmt.Errorf("missing or invalid timestamp")
	}
	if fields.present("contact") && !fields.str("contact") {
		return models.ContestEntry{}, fmt.Errorf("invalid contact")
	}

	var entry models.ContestEntry
	switch detect(fields) {
	case SchemaCurrent:
		var rec currentRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return models.ContestEntry{}, err
		}
		entry = models.ContestEntry{
			Name:         rec.Name,
			Contact:      rec.Contact,
			GuessedColor: rec.GuessedColor.Sample(),
			PrimerColor:  rec.PrimerColor.Sample(),
			Tags:         rec.Tags,
			Timestamp:    rec.Timestamp,
		}
	case SchemaLegacy:
		var legacy models.LegacyContestEntry
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return models.ContestEntry{}, err
		}
		entry = legacy.Upgrade()
	default:
		return models.ContestEntry{}, ErrUnrecognizedSchema
	}
	entry.Tags = nilIfEmpty(cleanTags(entry.Tags))
	return entry, nil
}

// DecodeEntries parses an import file holding one entry or an array of
// entries in any mix of schemas. Any bad record fails the whole file.
func DecodeEntries(data []byte) ([]models.ContestEntry, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyImport
	}

	var records []json.RawMessage
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	case '{':
		if !json.Valid(data) {
			return nil, fmt.Errorf("invalid JSON")
		}
		records = []json.RawMessage{data}
	default:
		return nil, fmt.Errorf("expected a JSON object or array")
	}

	entries := make([]models.ContestEntry, 0, len(records))
	for i, raw := range records {
		entry, err := decodeRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func entryTags(entries []models.ContestEntry) []string {
	var tags []string
	for _, entry := range entries {
		tags = append(tags, entry.Tags...)
	}
	return tags
}

// ImportEntries appends the entries in data and adds their tags to the
// global set. Nothing is written when any record is invalid.
func (l *Ledger) ImportEntries(ctx context.Context, data []byte) models.ImportResult {
	entries, err := DecodeEntries(data)
	if err != nil {
		l.logger.Warn("import rejected", "error", err)
		return models.ImportResult{Error: err.Error()}
	}
	_, err = l.update(ctx, "importEntries", func(current models.ContestState) (models.ContestState, bool) {
		next := current
		next.Entries = appendEntries(current.Entries, entries...)
		next.Tags = mergeTags(current.Tags, entryTags(entries))
		return next, len(entries) > 0
	})
	if err != nil {
		return models.ImportResult{Error: err.Error()}
	}
	l.logger.Info("entries imported", "count", len(entries))
	return models.ImportResult{Success: true, Count: len(entries)}
}

// ReplaceAllEntries discards every entry and tag and loads the entries in
// data instead. The reference color is kept.
func (l *Ledger) ReplaceAllEntries(ctx context.Context, data []byte) models.ImportResult {
	entries, err := DecodeEntries(data)
	if err != nil {
		l.logger.Warn("replace rejected", "error", err)
		return models.ImportResult{Error: err.Error()}
	}
	_, err = l.update(ctx, "replaceAllEntries", func(current models.ContestState) (models.ContestState, bool) {
		return models.ContestState{
			Entries:        entries,
			Tags:           mergeTags(nil, entryTags(entries)),
			ReferenceColor: current.ReferenceColor,
		}, true
	})
	if err != nil {
		return models.ImportResult{Error: err.Error()}
	}
	l.logger.Info("entries replaced", "count", len(entries))
	return models.ImportResult{Success: true, Count: len(entries)}
}

// ExportEntries serializes every entry in the current schema. With
// includeTags false the tags are omitted.
func (l *Ledger) ExportEntries(includeTags bool) ([]byte, error) {
	return encodeEntries(l.Entries(), includeTags)
}

// ExportEntriesByTags serializes the entries carrying any of tags, with
// their tags.
func (l *Ledger) ExportEntriesByTags(tags []string) ([]byte, error) {
	return encodeEntries(l.FilterByAnyTag(tags), true)
}

// ExportFilteredEntries combines both exports: entries carrying any of tags
// (all entries when tags is empty), with tags stripped unless includeTags.
func (l *Ledger) ExportFilteredEntries(tags []string, includeTags bool) ([]byte, error) {
	return encodeEntries(l.FilterByAnyTag(tags), includeTags)
}

// encodeEntries works on copies handed out by the snapshot, so stripping
// tags here never reaches the ledger.
func encodeEntries(entries []models.ContestEntry, includeTags bool) ([]byte, error) {
	if entries == nil {
		entries = []models.ContestEntry{}
	}
	if !includeTags {
		for i := range entries {
			entries[i].Tags = nil
		}
	}
	buf, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode entries: %w", err)
	}
	return buf, nil
}

// ExportFilename is the suggested download name for an export made at now
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("contest-entries-%d.json", now.UnixMilli())
}
