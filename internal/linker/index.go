package linker

import (
	"fmt"
	"strings"
)

// Index holds the forward lookup tables for one dataset. Slices preserve
// ingestion order.
type Index struct {
	side          Side
	byNameKey     map[string][]CandidateRecord
	byLastNameKey map[string][]CandidateRecord
	byContest     map[string][]CandidateRecord
	contestNames  map[string]string
	contestOrder  []string
	seen          map[string]struct{}
	candidates    map[CandidateRef]CandidateRecord
	spellings     map[string]string
	variants      map[string]struct{}
}

func newIndex(side Side) *Index {
	return &Index{
		side:          side,
		byNameKey:     make(map[string][]CandidateRecord),
		byLastNameKey: make(map[string][]CandidateRecord),
		byContest:     make(map[string][]CandidateRecord),
		contestNames:  make(map[string]string),
		seen:          make(map[string]struct{}),
		candidates:    make(map[CandidateRef]CandidateRecord),
		spellings:     make(map[string]string),
		variants:      make(map[string]struct{}),
	}
}

// Side reports which dataset the index describes.
func (ix *Index) Side() Side { return ix.side }

// ByNameKey returns the records sharing a full-name key.
func (ix *Index) ByNameKey(key string) []CandidateRecord { return ix.byNameKey[key] }

// ByLastNameKey returns the records sharing a last-name key.
func (ix *Index) ByLastNameKey(key string) []CandidateRecord { return ix.byLastNameKey[key] }

// Candidates returns the records of one contest, pseudo-candidates included.
func (ix *Index) Candidates(contestID string) []CandidateRecord { return ix.byContest[contestID] }

// Candidate returns a real candidate by its composite identity.
func (ix *Index) Candidate(ref CandidateRef) (CandidateRecord, bool) {
	rec, ok := ix.candidates[ref]
	return rec, ok
}

// ContestIDs returns every contest id seen on this side in first-seen order.
func (ix *Index) ContestIDs() []string {
	return append([]string(nil), ix.contestOrder...)
}

// ContestName returns the recorded display name of a contest, if any.
func (ix *Index) ContestName(contestID string) string { return ix.contestNames[contestID] }

// HasContest reports whether contestID was seen on this side.
func (ix *Index) HasContest(contestID string) bool {
	_, ok := ix.contestNames[contestID]
	return ok
}

func (ix *Index) noteContest(contestID string) {
	if _, ok := ix.contestNames[contestID]; ok {
		return
	}
	ix.contestNames[contestID] = ""
	ix.contestOrder = append(ix.contestOrder, contestID)
}

func (ix *Index) setContestName(contestID, name string) error {
	name = strings.TrimSpace(name)
	existing, ok := ix.contestNames[contestID]
	if !ok {
		ix.contestNames[contestID] = name
		ix.contestOrder = append(ix.contestOrder, contestID)
		return nil
	}
	switch {
	case name == "" || existing == name:
		return nil
	case existing == "":
		ix.contestNames[contestID] = name
		return nil
	default:
		return fmt.Errorf("%w: %s contest %q is named %q and %q", ErrContestNameMismatch, ix.side, contestID, existing, name)
	}
}

// register records rec under its contest. It returns false when the same
// candidate (or the same choice of a measure) was already registered.
func (ix *Index) register(rec CandidateRecord) bool {
	id := rec.identity()
	if _, dup := ix.seen[id]; dup {
		return false
	}
	ix.seen[id] = struct{}{}
	ix.noteContest(rec.ContestID)
	ix.byContest[rec.ContestID] = append(ix.byContest[rec.ContestID], rec)
	if !rec.IsPseudo() {
		ix.candidates[rec.Ref()] = rec
	}
	return true
}

func (ix *Index) addNameKeys(rec CandidateRecord) {
	ix.byNameKey[rec.NameKey] = append(ix.byNameKey[rec.NameKey], rec)
	ix.byLastNameKey[rec.LastNameKey] = append(ix.byLastNameKey[rec.LastNameKey], rec)
}

// observeSpelling remembers the first raw spelling of each name key and
// returns it when rawName is a new, different presentation of that key.
func (ix *Index) observeSpelling(key, rawName string) (string, bool) {
	rawName = strings.TrimSpace(rawName)
	first, ok := ix.spellings[key]
	if !ok {
		ix.spellings[key] = rawName
		return "", false
	}
	if first == rawName {
		return "", false
	}
	variant := key + "\x00" + rawName
	if _, reported := ix.variants[variant]; reported {
		return "", false
	}
	ix.variants[variant] = struct{}{}
	return first, true
}
