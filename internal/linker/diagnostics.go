package linker

import (
	"log/slog"

	"ballotlink/internal/logging"
)

type diagnostics struct {
	conflicts []string
	warnings  []string
}

func (d *diagnostics) conflict(logger *slog.Logger, eventType, msg string, attrs ...logging.Attr) {
	d.conflicts = append(d.conflicts, msg)
	attrs = append(attrs,
		logging.String("detail", msg),
		logging.String(logging.FieldImpact, "first mapping kept"),
		logging.String(logging.FieldErrorHint, "add a manual override if the kept mapping is wrong"),
	)
	logging.WarnWithContext(logger, "mapping conflict", eventType, attrs...)
}

func (d *diagnostics) warn(logger *slog.Logger, eventType, msg string, attrs ...logging.Attr) {
	d.warnings = append(d.warnings, msg)
	logger.Info("matching warning", logging.Args(append(attrs,
		logging.String(logging.FieldEventType, eventType),
		logging.String("detail", msg),
	)...)...)
}

// ContestLink is one resolved contest pairing.
type ContestLink struct {
	Secondary     string `json:"secondary"`
	Primary       string `json:"primary"`
	SecondaryName string `json:"secondary_name,omitempty"`
	PrimaryName   string `json:"primary_name,omitempty"`
}

// CandidateLink is one resolved candidate pairing.
type CandidateLink struct {
	Secondary     CandidateRef `json:"secondary"`
	Primary       CandidateRef `json:"primary"`
	SecondaryName string       `json:"secondary_name,omitempty"`
	PrimaryName   string       `json:"primary_name,omitempty"`
}

// UnmappedContest is a contest left without a counterpart.
type UnmappedContest struct {
	Side      Side   `json:"side"`
	ContestID string `json:"contest_id"`
	Name      string `json:"name,omitempty"`
}

// UnmappedCandidate is a candidate left without a counterpart inside a
// mapped contest pair.
type UnmappedCandidate struct {
	Side Side         `json:"side"`
	Ref  CandidateRef `json:"ref"`
	Name string       `json:"name,omitempty"`
}

// Result is the complete output of a linking run.
type Result struct {
	ContestMap          map[string]string
	ContestMapInverse   map[string]string
	CandidateMap        map[CandidateRef]CandidateRef
	CandidateMapInverse map[CandidateRef]CandidateRef

	// ContestLinks and CandidateLinks list the maps in commit order.
	ContestLinks   []ContestLink
	CandidateLinks []CandidateLink

	Conflicts []string
	Warnings  []string

	UnmappedContestsPrimary     []UnmappedContest
	UnmappedContestsSecondary   []UnmappedContest
	UnmappedCandidatesPrimary   []UnmappedCandidate
	UnmappedCandidatesSecondary []UnmappedCandidate
}

// Result snapshots the maps and diagnostics. Unmapped contests are only
// reported once Resolve has run, unmapped candidates once ResolveCandidates
// has run.
func (m *Matcher) Result() Result {
	res := Result{
		ContestMap:          make(map[string]string, len(m.contestMap)),
		ContestMapInverse:   make(map[string]string, len(m.contestInverse)),
		CandidateMap:        make(map[CandidateRef]CandidateRef, len(m.candidateMap)),
		CandidateMapInverse: make(map[CandidateRef]CandidateRef, len(m.candidateInverse)),
		Conflicts:           append([]string(nil), m.diag.conflicts...),
		Warnings:            append([]string(nil), m.diag.warnings...),
	}
	for k, v := range m.contestMap {
		res.ContestMap[k] = v
	}
	for k, v := range m.contestInverse {
		res.ContestMapInverse[k] = v
	}
	for k, v := range m.candidateMap {
		res.CandidateMap[k] = v
	}
	for k, v := range m.candidateInverse {
		res.CandidateMapInverse[k] = v
	}

	for _, sec := range m.contestOrder {
		prim := m.contestMap[sec]
		res.ContestLinks = append(res.ContestLinks, ContestLink{
			Secondary:     sec,
			Primary:       prim,
			SecondaryName: m.secondary.ContestName(sec),
			PrimaryName:   m.primary.ContestName(prim),
		})
	}
	for _, sec := range m.candidateOrder {
		prim := m.candidateMap[sec]
		link := CandidateLink{Secondary: sec, Primary: prim}
		if rec, ok := m.secondary.Candidate(sec); ok {
			link.SecondaryName = rec.RawName
		}
		if rec, ok := m.primary.Candidate(prim); ok {
			link.PrimaryName = rec.RawName
		}
		res.CandidateLinks = append(res.CandidateLinks, link)
	}

	if m.resolved {
		res.UnmappedContestsPrimary = m.unmappedContests(m.primary, m.contestInverse)
		res.UnmappedContestsSecondary = m.unmappedContests(m.secondary, m.contestMap)
	}
	if m.candidatesResolved {
		res.UnmappedCandidatesPrimary, res.UnmappedCandidatesSecondary = m.unmappedCandidates()
	}
	return res
}

func (m *Matcher) unmappedContests(ix *Index, mapped map[string]string) []UnmappedContest {
	var out []UnmappedContest
	for _, id := range ix.ContestIDs() {
		if _, ok := mapped[id]; ok {
			continue
		}
		out = append(out, UnmappedContest{Side: ix.side, ContestID: id, Name: ix.ContestName(id)})
	}
	return out
}
