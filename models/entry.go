package models

// ContestEntry is one persisted guess. Timestamp (unix millis) doubles as the
// identity used by tag operations and is not guaranteed to be unique.
type ContestEntry struct {
	Name         string      `json:"name"`
	Contact      string      `json:"contact"`
	GuessedColor ColorSample `json:"guessedColor"`
	PrimerColor  ColorSample `json:"primerColor"`
	Tags         []string    `json:"tags,omitempty"`
	Timestamp    int64       `json:"timestamp"`
}

// HasTag reports whether the entry carries tag
func (e ContestEntry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with e
func (e ContestEntry) Clone() ContestEntry {
	if e.Tags != nil {
		e.Tags = append([]string(nil), e.Tags...)
	}
	return e
}

// LegacyContestEntry is the older on-disk shape with the guessed color
// inlined and no primer color.
type LegacyContestEntry struct {
	Name      string   `json:"name"`
	Contact   string   `json:"contact"`
	L         float64  `json:"l"`
	C         float64  `json:"c"`
	H         float64  `json:"h"`
	Alpha     float64  `json:"alpha"`
	Tags      []string `json:"tags,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

// Upgrade converts a legacy entry into the current shape
func (le LegacyContestEntry) Upgrade() ContestEntry {
	entry := ContestEntry{
		Name:    le.Name,
		Contact: le.Contact,
		GuessedColor: ColorSample{
			L:     le.L,
			C:     le.C,
			H:     le.H,
			Alpha: le.Alpha,
		},
		PrimerColor: NeutralPrimer,
		Timestamp:   le.Timestamp,
	}
	if len(le.Tags) > 0 {
		entry.Tags = append([]string(nil), le.Tags...)
	}
	return entry
}

// ContestState is the whole persisted aggregate
type ContestState struct {
	Entries        []ContestEntry `json:"entries"`
	Tags           []string       `json:"tags"`
	ReferenceColor *ColorSample   `json:"pantoneColor,omitempty"`
}

// Clone returns a deep copy of the state
func (s ContestState) Clone() ContestState {
	out := ContestState{
		Entries: make([]ContestEntry, len(s.Entries)),
		Tags:    append([]string{}, s.Tags...),
	}
	for i, entry := range s.Entries {
		out.Entries[i] = entry.Clone()
	}
	if s.ReferenceColor != nil {
		ref := *s.ReferenceColor
		out.ReferenceColor = &ref
	}
	return out
}

// ImportResult reports the outcome of an import or replace
type ImportResult struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Error   string `json:"error,omitempty"`
}

// ScoredEntry is one row of a ranking
type ScoredEntry struct {
	Rank        int          `json:"rank"`
	Entry       ContestEntry `json:"entry"`
	Distance    *float64     `json:"distance,omitempty"`
	Score       int          `json:"score"`
	Winner      bool         `json:"winner"`
	Description string       `json:"description,omitempty"`
}

// HasDistance reports whether a reference color was available for scoring
func (se ScoredEntry) HasDistance() bool {
	return se.Distance != nil
}

// SubmitEntryRequest is a contestant's submission
type SubmitEntryRequest struct {
	Name         string      `json:"name"`
	Contact      string      `json:"contact"`
	GuessedColor *ColorInput `json:"guessedColor"`
	PrimerColor  *ColorInput `json:"primerColor,omitempty"`
}

// SubmitEntryResponse confirms a stored entry
type SubmitEntryResponse struct {
	Entry       ContestEntry     `json:"entry"`
	Description ColorDescription `json:"description"`
	Message     string           `json:"message"`
}

// TagRequest names a single tag
type TagRequest struct {
	Name string `json:"name"`
}

// RenameTagRequest renames a tag
type RenameTagRequest struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// EntryTagsRequest adds or removes tags on the entries with the given timestamps
type EntryTagsRequest struct {
	IDs  []int64  `json:"ids"`
	Tags []string `json:"tags"`
}

// TagStat is a tag and the number of entries carrying it
type TagStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ReferenceColorResponse describes the ledger's reference color
type ReferenceColorResponse struct {
	Color       *ColorSample      `json:"color"`
	Description *ColorDescription `json:"description,omitempty"`
}

// RankingResponse is the admin ranking view
type RankingResponse struct {
	ReferenceColor *ColorSample  `json:"referenceColor,omitempty"`
	Metric         string        `json:"metric"`
	Entries        []ScoredEntry `json:"entries"`
}

// TagMutationResponse reports whether a tag operation changed anything and
// the resulting tag usage.
type TagMutationResponse struct {
	Changed bool      `json:"changed"`
	Tags    []TagStat `json:"tags"`
}
