package linker

import (
	"fmt"
	"strings"

	"ballotlink/internal/logging"
)

// Resolve commits contest mappings from the evidence tables and freezes the
// matcher against further ingestion.
//
// The full-name table is drained before the last-name table. Within each
// table an elimination pass (a row resolves only when a single candidate
// primary contest remains) runs to a fixed point before a majority pass
// (a strict, non-tied leader with more than one vote also resolves).
func (m *Matcher) Resolve() error {
	if m.resolved {
		return ErrAlreadyResolved
	}
	m.resolved = true

	for _, table := range []*EvidenceTable{m.nameEvidence, m.lastEvidence} {
		pending := table.clone()
		m.eliminate(pending, false)
		m.eliminate(pending, true)
	}

	m.logger.Info("contest resolution complete",
		logging.Int("mapped", len(m.contestMap)),
		logging.Int("primary_contests", len(m.primary.contestOrder)),
		logging.Int("secondary_contests", len(m.secondary.contestOrder)),
	)
	return nil
}

// eliminate runs rounds over pending until a round makes no progress. Each
// round reads claims from a snapshot taken when the round starts; a row whose
// choice was claimed earlier in the same round is deferred and stripped in
// the next round.
func (m *Matcher) eliminate(pending *EvidenceTable, majority bool) {
	for round := 1; pending.Len() > 0; round++ {
		claimed := make(map[string]string, len(m.contestInverse))
		for k, v := range m.contestInverse {
			claimed[k] = v
		}

		progress := false
		for _, sec := range pending.Secondaries() {
			if _, mapped := m.contestMap[sec]; mapped {
				pending.remove(sec)
				progress = true
				continue
			}

			row, _ := pending.Row(sec)
			before := row.Len()
			row.retain(func(prim string) bool {
				owner, taken := claimed[prim]
				return !taken || owner == sec
			})
			if row.Len() < before {
				progress = true
			}
			if row.Len() == 0 {
				m.logger.Debug("evidence exhausted",
					logging.String(logging.FieldContestID, sec),
					logging.String("table", pending.Name()),
				)
				pending.remove(sec)
				continue
			}

			choice := ""
			if targets := row.Targets(); len(targets) == 1 {
				choice = targets[0]
			} else if majority {
				choice = majorityChoice(row)
			}
			if choice == "" {
				continue
			}
			if owner, taken := m.contestInverse[choice]; taken && owner != sec {
				continue
			}

			m.logger.Debug("contest resolved",
				logging.String(logging.FieldContestID, sec),
				logging.String("primary_contest_id", choice),
				logging.String("table", pending.Name()),
				logging.Bool("majority", majority),
				logging.Int("round", round),
			)
			m.SetContestMap(sec, choice)
			pending.remove(sec)
			progress = true
		}
		if !progress {
			break
		}
	}

	if majority && m.warnOnTies {
		m.reportTies(pending)
	}
}

// majorityChoice returns the sole leader of row when it has more than one
// vote, or "" when the lead is tied or the top count is 1.
func majorityChoice(row *Tally) string {
	leaders, votes := row.leaders()
	if len(leaders) != 1 || votes <= 1 {
		return ""
	}
	return leaders[0]
}

func (m *Matcher) reportTies(pending *EvidenceTable) {
	for _, sec := range pending.Secondaries() {
		if _, mapped := m.contestMap[sec]; mapped {
			continue
		}
		row, _ := pending.Row(sec)
		// Single-vote splits can never win a majority; not reported.
		leaders, votes := row.leaders()
		if len(leaders) < 2 || votes <= 1 {
			continue
		}
		names := make([]string, len(leaders))
		for i, id := range leaders {
			names[i] = m.describeContest(Primary, id)
		}
		m.diag.warn(m.logger, "majority_tie",
			fmt.Sprintf("%s evidence for secondary contest %s is tied at %d votes between %s",
				pending.Name(), m.describeContest(Secondary, sec), votes, strings.Join(names, ", ")),
			logging.String(logging.FieldContestID, sec),
		)
	}
}
