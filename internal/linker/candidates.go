package linker

import "ballotlink/internal/logging"

// ResolveCandidates pairs real candidates inside every mapped contest pair.
// A secondary candidate is committed only when exactly one primary candidate
// shares its name key, or failing any full-name match, its last-name key.
// Everything left over on either side is reported as unmapped.
func (m *Matcher) ResolveCandidates() error {
	if !m.resolved {
		return ErrNotResolved
	}
	if m.candidatesResolved {
		return ErrAlreadyResolved
	}
	m.candidatesResolved = true

	committed := 0
	for _, sec := range m.secondary.ContestIDs() {
		prim, ok := m.contestMap[sec]
		if !ok {
			continue
		}
		committed += m.resolveContestPair(sec, prim)
	}

	m.logger.Info("candidate resolution complete",
		logging.Int("mapped", len(m.candidateMap)),
		logging.Int("resolved_this_pass", committed),
		logging.Int("unmapped_primary", len(m.unmappedPrimary)),
		logging.Int("unmapped_secondary", len(m.unmappedSecondary)),
	)
	return nil
}

func (m *Matcher) resolveContestPair(secondaryID, primaryID string) int {
	var primaries []CandidateRecord
	covered := make(map[CandidateRef]bool)
	for _, rec := range m.primary.Candidates(primaryID) {
		if rec.IsPseudo() {
			continue
		}
		primaries = append(primaries, rec)
		if _, ok := m.candidateInverse[rec.Ref()]; ok {
			covered[rec.Ref()] = true
		}
	}

	committed := 0
	for _, rec := range m.secondary.Candidates(secondaryID) {
		if rec.IsPseudo() {
			continue
		}
		if target, ok := m.candidateMap[rec.Ref()]; ok {
			covered[target] = true
			continue
		}

		match, ok := uniqueMatch(primaries, func(p CandidateRecord) bool { return p.NameKey == rec.NameKey })
		if !ok && !anyMatch(primaries, func(p CandidateRecord) bool { return p.NameKey == rec.NameKey }) {
			match, ok = uniqueMatch(primaries, func(p CandidateRecord) bool { return p.LastNameKey == rec.LastNameKey })
		}
		if ok && m.SetCandidateMap(rec.Ref(), match.Ref()) {
			covered[match.Ref()] = true
			committed++
			continue
		}
		m.unmappedSecondary = append(m.unmappedSecondary, UnmappedCandidate{Side: Secondary, Ref: rec.Ref(), Name: rec.RawName})
	}

	for _, p := range primaries {
		if covered[p.Ref()] {
			continue
		}
		m.unmappedPrimary = append(m.unmappedPrimary, UnmappedCandidate{Side: Primary, Ref: p.Ref(), Name: p.RawName})
	}
	return committed
}

// uniqueMatch returns the only record accepted by match.
func uniqueMatch(records []CandidateRecord, match func(CandidateRecord) bool) (CandidateRecord, bool) {
	var found CandidateRecord
	n := 0
	for _, rec := range records {
		if match(rec) {
			found = rec
			n++
		}
	}
	return found, n == 1
}

func anyMatch(records []CandidateRecord, match func(CandidateRecord) bool) bool {
	for _, rec := range records {
		if match(rec) {
			return true
		}
	}
	return false
}

func (m *Matcher) unmappedCandidates() ([]UnmappedCandidate, []UnmappedCandidate) {
	return append([]UnmappedCandidate(nil), m.unmappedPrimary...),
		append([]UnmappedCandidate(nil), m.unmappedSecondary...)
}
