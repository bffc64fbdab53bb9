package linker

// Tally counts votes from one secondary contest toward primary contest ids.
type Tally struct {
	order []string
	votes map[string]int
}

func newTally() *Tally {
	return &Tally{votes: make(map[string]int)}
}

func (t *Tally) add(primaryID string) {
	if _, ok := t.votes[primaryID]; !ok {
		t.order = append(t.order, primaryID)
	}
	t.votes[primaryID]++
}

// Votes returns the count recorded for primaryID.
func (t *Tally) Votes(primaryID string) int { return t.votes[primaryID] }

// Targets returns the primary contest ids in first-voted order.
func (t *Tally) Targets() []string { return append([]string(nil), t.order...) }

// Len returns the number of distinct primary contest ids.
func (t *Tally) Len() int { return len(t.order) }

// retain drops every target for which keep returns false.
func (t *Tally) retain(keep func(primaryID string) bool) {
	kept := t.order[:0]
	for _, id := range t.order {
		if keep(id) {
			kept = append(kept, id)
			continue
		}
		delete(t.votes, id)
	}
	t.order = kept
}

// leaders returns the ids sharing the highest vote count, and that count.
func (t *Tally) leaders() ([]string, int) {
	best := 0
	var ids []string
	for _, id := range t.order {
		switch v := t.votes[id]; {
		case v > best:
			best = v
			ids = []string{id}
		case v == best:
			ids = append(ids, id)
		}
	}
	return ids, best
}

func (t *Tally) clone() *Tally {
	out := &Tally{order: append([]string(nil), t.order...), votes: make(map[string]int, len(t.votes))}
	for k, v := range t.votes {
		out.votes[k] = v
	}
	return out
}

// EvidenceTable maps secondary contest ids to vote tallies over primary
// contest ids. Rows keep the order in which they were first added.
type EvidenceTable struct {
	name  string
	order []string
	rows  map[string]*Tally
}

func newEvidenceTable(name string) *EvidenceTable {
	return &EvidenceTable{name: name, rows: make(map[string]*Tally)}
}

// Name labels the table in diagnostics ("full-name" or "last-name").
func (e *EvidenceTable) Name() string { return e.name }

// Add records one vote from secondaryID toward primaryID.
func (e *EvidenceTable) Add(secondaryID, primaryID string) {
	row, ok := e.rows[secondaryID]
	if !ok {
		row = newTally()
		e.rows[secondaryID] = row
		e.order = append(e.order, secondaryID)
	}
	row.add(primaryID)
}

// Row returns the tally for secondaryID.
func (e *EvidenceTable) Row(secondaryID string) (*Tally, bool) {
	row, ok := e.rows[secondaryID]
	return row, ok
}

// Secondaries returns the secondary contest ids with evidence.
func (e *EvidenceTable) Secondaries() []string { return append([]string(nil), e.order...) }

// Len returns the number of pending rows.
func (e *EvidenceTable) Len() int { return len(e.order) }

func (e *EvidenceTable) remove(secondaryID string) {
	if _, ok := e.rows[secondaryID]; !ok {
		return
	}
	delete(e.rows, secondaryID)
	for i, id := range e.order {
		if id == secondaryID {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

func (e *EvidenceTable) clone() *EvidenceTable {
	out := &EvidenceTable{name: e.name, order: append([]string(nil), e.order...), rows: make(map[string]*Tally, len(e.rows))}
	for k, row := range e.rows {
		out.rows[k] = row.clone()
	}
	return out
}
