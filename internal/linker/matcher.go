package linker

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"ballotlink/internal/logging"
	"ballotlink/internal/namekey"
)

// DefaultSkipPattern matches ballot choices that carry no identity.
const DefaultSkipPattern = "yes|no|write-?in"

// Options configures a Matcher.
type Options struct {
	// SkipPattern is matched against the whole name key of every candidate
	// and ballot choice; matches are dropped. Empty means DefaultSkipPattern.
	SkipPattern string
	// SkipChoices are extra literal choices to drop, compared by name key.
	SkipChoices []string
	// SuppressTieWarnings disables the warning recorded for contests left
	// pending by a tied majority vote.
	SuppressTieWarnings bool
	Logger              *slog.Logger
}

// Matcher holds the indices, evidence, and resolved maps of one linking run.
type Matcher struct {
	logger       *slog.Logger
	skip         *regexp.Regexp
	warnOnTies   bool
	primary      *Index
	secondary    *Index
	nameEvidence *EvidenceTable
	lastEvidence *EvidenceTable

	contestMap       map[string]string
	contestInverse   map[string]string
	contestOrder     []string
	candidateMap     map[CandidateRef]CandidateRef
	candidateInverse map[CandidateRef]CandidateRef
	candidateOrder   []CandidateRef

	diag diagnostics

	unmappedPrimary   []UnmappedCandidate
	unmappedSecondary []UnmappedCandidate

	resolved           bool
	candidatesResolved bool
}

// New constructs an empty Matcher.
func New(opts Options) (*Matcher, error) {
	skip, err := CompileSkipPattern(opts.SkipPattern, opts.SkipChoices)
	if err != nil {
		return nil, err
	}
	return &Matcher{
		logger:           logging.NewComponentLogger(opts.Logger, "linker"),
		skip:             skip,
		warnOnTies:       !opts.SuppressTieWarnings,
		primary:          newIndex(Primary),
		secondary:        newIndex(Secondary),
		nameEvidence:     newEvidenceTable("full-name"),
		lastEvidence:     newEvidenceTable("last-name"),
		contestMap:       make(map[string]string),
		contestInverse:   make(map[string]string),
		candidateMap:     make(map[CandidateRef]CandidateRef),
		candidateInverse: make(map[CandidateRef]CandidateRef),
	}, nil
}

// CompileSkipPattern builds the anchored, case-insensitive expression used to
// recognise identity-free ballot choices.
func CompileSkipPattern(pattern string, choices []string) (*regexp.Regexp, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		pattern = DefaultSkipPattern
	}
	alternatives := []string{"(?:" + pattern + ")"}
	for _, choice := range choices {
		if key := namekey.Key(choice); key != "" {
			alternatives = append(alternatives, regexp.QuoteMeta(key))
		}
	}
	re, err := regexp.Compile("(?i)^(?:" + strings.Join(alternatives, "|") + ")$")
	if err != nil {
		return nil, fmt.Errorf("compile skip pattern %q: %w", pattern, err)
	}
	return re, nil
}

// PrimaryIndex exposes the primary dataset tables.
func (m *Matcher) PrimaryIndex() *Index { return m.primary }

// SecondaryIndex exposes the secondary dataset tables.
func (m *Matcher) SecondaryIndex() *Index { return m.secondary }

// NameEvidence returns the full-name vote table as built during ingestion.
func (m *Matcher) NameEvidence() *EvidenceTable { return m.nameEvidence }

// LastNameEvidence returns the last-name vote table as built during ingestion.
func (m *Matcher) LastNameEvidence() *EvidenceTable { return m.lastEvidence }

// Skips reports whether name is an identity-free choice under the configured
// skip pattern.
func (m *Matcher) Skips(name string) bool {
	return m.skips(namekey.Key(name))
}

func (m *Matcher) skips(key string) bool {
	return key == "" || m.skip.MatchString(key)
}

// EnterContest records a contest name for side. A non-empty choice (a
// ballot-measure response or retention choice) that survives the skip
// pattern is entered as a pseudo-candidate so measures take part in
// name-based matching.
func (m *Matcher) EnterContest(side Side, contestID, contestName, choice string) error {
	contestID = strings.TrimSpace(contestID)
	if err := m.checkIngest(contestID); err != nil {
		return err
	}
	if err := m.index(side).setContestName(contestID, contestName); err != nil {
		return err
	}
	if strings.TrimSpace(choice) == "" {
		return nil
	}
	if side == Primary {
		return m.EnterCandidate(contestID, "", choice)
	}
	return m.LookupCandidate(contestID, "", choice)
}

// EnterCandidate adds a primary candidate to the primary index.
func (m *Matcher) EnterCandidate(contestID, candidateID, fullName string) error {
	rec, ok, err := m.prepare(m.primary, contestID, candidateID, fullName)
	if err != nil || !ok {
		return err
	}
	if m.primary.register(rec) {
		m.primary.addNameKeys(rec)
	}
	return nil
}

// LookupCandidate registers a secondary candidate and turns its name matches
// in the primary index into contest evidence.
func (m *Matcher) LookupCandidate(contestID, candidateID, fullName string) error {
	rec, ok, err := m.prepare(m.secondary, contestID, candidateID, fullName)
	if err != nil || !ok {
		return err
	}
	if !m.secondary.register(rec) {
		return nil
	}

	full := m.primary.ByNameKey(rec.NameKey)
	last := m.primary.ByLastNameKey(rec.LastNameKey)
	if len(full) == 0 && len(last) == 0 {
		return nil
	}

	if _, mapped := m.contestMap[rec.ContestID]; len(full) == 1 && !mapped {
		m.logger.Debug("unique full-name match",
			logging.String(logging.FieldContestID, rec.ContestID),
			logging.String("primary_contest_id", full[0].ContestID),
			logging.String("name", rec.RawName),
		)
		if m.SetContestMap(rec.ContestID, full[0].ContestID) {
			return nil
		}
		// Rejected commits still count as a vote.
	}

	matched := make(map[string]struct{}, len(full))
	for _, p := range full {
		matched[p.identity()] = struct{}{}
		m.nameEvidence.Add(rec.ContestID, p.ContestID)
	}
	for _, p := range last {
		if _, dup := matched[p.identity()]; dup {
			continue
		}
		m.lastEvidence.Add(rec.ContestID, p.ContestID)
	}
	return nil
}

// prepare validates an ingestion call and builds the record. ok is false when
// the name carries no identity and the record must be dropped.
func (m *Matcher) prepare(ix *Index, contestID, candidateID, fullName string) (CandidateRecord, bool, error) {
	contestID = strings.TrimSpace(contestID)
	if err := m.checkIngest(contestID); err != nil {
		return CandidateRecord{}, false, err
	}
	ix.noteContest(contestID)

	rec := CandidateRecord{
		ContestID:   contestID,
		CandidateID: strings.TrimSpace(candidateID),
		NameKey:     namekey.Key(fullName),
		LastNameKey: namekey.LastNameKey(fullName),
		RawName:     strings.TrimSpace(fullName),
	}
	if m.skips(rec.NameKey) {
		m.logger.Debug("skipping identity-free choice",
			logging.String(logging.FieldSide, ix.side.String()),
			logging.String(logging.FieldContestID, contestID),
			logging.String("name", rec.RawName),
		)
		return rec, false, nil
	}
	if first, variant := ix.observeSpelling(rec.NameKey, rec.RawName); variant {
		m.diag.warn(m.logger, "spelling_variant",
			fmt.Sprintf("%s name key %q seen as %q and %q", ix.side, rec.NameKey, first, rec.RawName),
			logging.String(logging.FieldSide, ix.side.String()),
			logging.String(logging.FieldContestID, contestID),
		)
	}
	return rec, true, nil
}

func (m *Matcher) checkIngest(contestID string) error {
	if m.resolved {
		return ErrFrozen
	}
	if contestID == "" {
		return ErrMissingContestID
	}
	return nil
}

func (m *Matcher) index(side Side) *Index {
	if side == Primary {
		return m.primary
	}
	return m.secondary
}

// SetContestMap commits secondaryID -> primaryID. The first mapping for a
// secondary contest wins; a different later value, or a primary contest
// already claimed by another secondary contest, is recorded as a conflict
// and leaves the maps untouched. It reports whether the requested mapping is
// in effect afterwards.
func (m *Matcher) SetContestMap(secondaryID, primaryID string) bool {
	if current, ok := m.contestMap[secondaryID]; ok {
		if current == primaryID {
			return true
		}
		m.diag.conflict(m.logger, "contest_conflict",
			fmt.Sprintf("secondary contest %s already mapped to %s; rejected %s",
				m.describeContest(Secondary, secondaryID), m.describeContest(Primary, current), m.describeContest(Primary, primaryID)),
			logging.String(logging.FieldContestID, secondaryID),
		)
		return false
	}
	if owner, ok := m.contestInverse[primaryID]; ok && owner != secondaryID {
		m.diag.conflict(m.logger, "contest_conflict",
			fmt.Sprintf("primary contest %s already claimed by %s; rejected %s",
				m.describeContest(Primary, primaryID), m.describeContest(Secondary, owner), m.describeContest(Secondary, secondaryID)),
			logging.String(logging.FieldContestID, secondaryID),
		)
		return false
	}
	m.contestMap[secondaryID] = primaryID
	m.contestInverse[primaryID] = secondaryID
	m.contestOrder = append(m.contestOrder, secondaryID)
	m.logger.Debug("contest mapped",
		logging.String(logging.FieldContestID, secondaryID),
		logging.String("primary_contest_id", primaryID),
	)
	return true
}

// SetCandidateMap commits a candidate pairing with the same first-writer-wins
// and conflict semantics as SetContestMap.
func (m *Matcher) SetCandidateMap(secondary, primary CandidateRef) bool {
	if current, ok := m.candidateMap[secondary]; ok {
		if current == primary {
			return true
		}
		m.diag.conflict(m.logger, "candidate_conflict",
			fmt.Sprintf("secondary candidate %s already mapped to %s; rejected %s", secondary, current, primary),
			logging.String(logging.FieldCandidateID, secondary.String()),
		)
		return false
	}
	if owner, ok := m.candidateInverse[primary]; ok && owner != secondary {
		m.diag.conflict(m.logger, "candidate_conflict",
			fmt.Sprintf("primary candidate %s already claimed by %s; rejected %s", primary, owner, secondary),
			logging.String(logging.FieldCandidateID, secondary.String()),
		)
		return false
	}
	m.candidateMap[secondary] = primary
	m.candidateInverse[primary] = secondary
	m.candidateOrder = append(m.candidateOrder, secondary)
	return true
}

// ContestFor returns the primary contest mapped to secondaryID.
func (m *Matcher) ContestFor(secondaryID string) (string, bool) {
	id, ok := m.contestMap[secondaryID]
	return id, ok
}

// CandidateFor returns the primary candidate mapped to secondary.
func (m *Matcher) CandidateFor(secondary CandidateRef) (CandidateRef, bool) {
	ref, ok := m.candidateMap[secondary]
	return ref, ok
}

func (m *Matcher) describeContest(side Side, contestID string) string {
	if name := m.index(side).ContestName(contestID); name != "" {
		return fmt.Sprintf("%q (%s)", contestID, name)
	}
	return fmt.Sprintf("%q", contestID)
}
