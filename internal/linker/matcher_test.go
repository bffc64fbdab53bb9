package linker_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"ballotlink/internal/linker"
)

func newMatcher(t *testing.T, opts linker.Options) *linker.Matcher {
	t.Helper()
	m, err := linker.New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return m
}

// addContest enters a contest and its candidates. Candidate ids are the
// contest id followed by the 1-based position.
func addContest(t *testing.T, m *linker.Matcher, side linker.Side, contestID, contestName string, names ...string) {
	t.Helper()
	if err := m.EnterContest(side, contestID, contestName, ""); err != nil {
		t.Fatalf("EnterContest(%s) failed: %v", contestID, err)
	}
	for i, name := range names {
		id := fmt.Sprintf("%s-%d", contestID, i+1)
		var err error
		if side == linker.Primary {
			err = m.EnterCandidate(contestID, id, name)
		} else {
			err = m.LookupCandidate(contestID, id, name)
		}
		if err != nil {
			t.Fatalf("enter %s/%s failed: %v", contestID, name, err)
		}
	}
}

// addMeasure enters a ballot measure with one pseudo-candidate per choice.
func addMeasure(t *testing.T, m *linker.Matcher, side linker.Side, contestID, contestName string, choices ...string) {
	t.Helper()
	for _, choice := range choices {
		if err := m.EnterContest(side, contestID, contestName, choice); err != nil {
			t.Fatalf("EnterContest(%s, %q) failed: %v", contestID, choice, err)
		}
	}
}

func resolveAll(t *testing.T, m *linker.Matcher) linker.Result {
	t.Helper()
	if err := m.Resolve(); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if err := m.ResolveCandidates(); err != nil {
		t.Fatalf("ResolveCandidates failed: %v", err)
	}
	return m.Result()
}

func ref(contest, candidate string) linker.CandidateRef {
	return linker.CandidateRef{ContestID: contest, CandidateID: candidate}
}

func TestUnambiguousSingleCandidate(t *testing.T) {
	m := newMatcher(t, linker.Options{})
	addContest(t, m, linker.Primary, "C1", "Mayor", "Jane Doe")
	addContest(t, m, linker.Secondary, "X1", "MAYOR", "JANE DOE")

	res := resolveAll(t, m)
	if got := res.ContestMap["X1"]; got != "C1" {
		t.Fatalf("expected X1 -> C1, got %q", got)
	}
	if got := res.CandidateMap[ref("X1", "X1-1")]; got != ref("C1", "C1-1") {
		t.Fatalf("expected candidate pair mapped, got %+v", got)
	}
	if res.CandidateMapInverse[ref("C1", "C1-1")] != ref("X1", "X1-1") {
		t.Fatalf("expected inverse candidate map populated, got %+v", res.CandidateMapInverse)
	}
	if len(res.Conflicts) != 0 || len(res.Warnings) != 0 {
		t.Fatalf("expected clean run, got conflicts=%v warnings=%v", res.Conflicts, res.Warnings)
	}
	if len(res.UnmappedContestsPrimary)+len(res.UnmappedContestsSecondary) != 0 {
		t.Fatalf("expected no unmapped contests, got %+v %+v", res.UnmappedContestsPrimary, res.UnmappedContestsSecondary)
	}
}

func TestSkippedChoicesNeverMatch(t *testing.T) {
	m := newMatcher(t, linker.Options{})
	addMeasure(t, m, linker.Primary, "M1", "Measure A", "Yes", "No")
	addMeasure(t, m, linker.Primary, "M2", "Measure B", "Yes", "No", "Write-in")
	addMeasure(t, m, linker.Secondary, "Y1", "Measure A", "yes", "no")

	if m.NameEvidence().Len() != 0 || m.LastNameEvidence().Len() != 0 {
		t.Fatalf("expected skipped choices to contribute no evidence")
	}
	res := resolveAll(t, m)
	if len(res.ContestMap) != 0 {
		t.Fatalf("expected no contest mapped, got %v", res.ContestMap)
	}
	if len(res.UnmappedContestsPrimary) != 2 || len(res.UnmappedContestsSecondary) != 1 {
		t.Fatalf("expected all contests unmapped, got %+v %+v", res.UnmappedContestsPrimary, res.UnmappedContestsSecondary)
	}
	if res.UnmappedContestsSecondary[0].Name != "Measure A" {
		t.Fatalf("expected contest name carried into unmapped list, got %+v", res.UnmappedContestsSecondary[0])
	}
}

func TestSharedChoicesStayAmbiguous(t *testing.T) {
	m := newMatcher(t, linker.Options{})
	addMeasure(t, m, linker.Primary, "M1", "Measure A", "For", "Against")
	addMeasure(t, m, linker.Primary, "M2", "Measure B", "For", "Against")
	addMeasure(t, m, linker.Secondary, "Y1", "Prop A", "FOR", "AGAINST")

	row, ok := m.NameEvidence().Row("Y1")
	if !ok {
		t.Fatalf("expected full-name evidence for Y1")
	}
	if row.Votes("M1") != 2 || row.Votes("M2") != 2 {
		t.Fatalf("expected two votes each, got M1=%d M2=%d", row.Votes("M1"), row.Votes("M2"))
	}
	if m.LastNameEvidence().Len() != 0 {
		t.Fatalf("expected last-name matches already counted as full-name evidence to be skipped")
	}

	res := resolveAll(t, m)
	if _, ok := res.ContestMap["Y1"]; ok {
		t.Fatalf("expected Y1 to stay unmapped, got %v", res.ContestMap)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "tied") {
		t.Fatalf("expected one tie warning, got %v", res.Warnings)
	}
}

func TestTieWarningsCanBeSuppressed(t *testing.T) {
	m := newMatcher(t, linker.Options{SuppressTieWarnings: true})
	addMeasure(t, m, linker.Primary, "M1", "Measure A", "For", "Against")
	addMeasure(t, m, linker.Primary, "M2", "Measure B", "For", "Against")
	addMeasure(t, m, linker.Secondary, "Y1", "Prop A", "For", "Against")

	res := resolveAll(t, m)
	if len(res.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", res.Warnings)
	}
}

func TestDistinctChoiceDisambiguatesMeasures(t *testing.T) {
	m := newMatcher(t, linker.Options{})
	addMeasure(t, m, linker.Primary, "M1", "Measure A", "For", "Against")
	addMeasure(t, m, linker.Primary, "M2", "Measure B", "For", "Against", "Abstain")
	addMeasure(t, m, linker.Secondary, "Y1", "Prop A", "For", "Against")
	addMeasure(t, m, linker.Secondary, "Y2", "Prop B", "For", "Against", "Abstain")

	res := resolveAll(t, m)
	if res.ContestMap["Y2"] != "M2" {
		t.Fatalf("expected Y2 -> M2 from the unique choice, got %v", res.ContestMap)
	}
	if res.ContestMap["Y1"] != "M1" {
		t.Fatalf("expected Y1 -> M1 by elimination, got %v", res.ContestMap)
	}
	if len(res.CandidateMap) != 0 {
		t.Fatalf("expected pseudo-candidates to stay out of the candidate map, got %v", res.CandidateMap)
	}
	if len(res.UnmappedCandidatesPrimary)+len(res.UnmappedCandidatesSecondary) != 0 {
		t.Fatalf("expected pseudo-candidates to stay out of unmapped lists")
	}
	if len(res.Conflicts) != 0 {
		t.Fatalf("expected no conflicts, got %v", res.Conflicts)
	}
}

func TestEliminationCascade(t *testing.T) {
	m := newMatcher(t, linker.Options{})
	addContest(t, m, linker.Primary, "C1", "Council 1", "Lee Park", "Dana Wu", "Sam Ono")
	addContest(t, m, linker.Primary, "C2", "Council 2", "Lee Park", "Dana Wu")
	addContest(t, m, linker.Secondary, "X1", "Council A", "Lee Park", "Dana Wu")
	addContest(t, m, linker.Secondary, "X2", "Council B", "Lee Park", "Dana Wu")
	addContest(t, m, linker.Secondary, "X3", "Council C", "Lee Park", "Sam Ono")

	res := resolveAll(t, m)
	if res.ContestMap["X3"] != "C1" {
		t.Fatalf("expected X3 -> C1 from unique full-name match, got %v", res.ContestMap)
	}
	if res.ContestMap["X1"] != "C2" {
		t.Fatalf("expected X1 -> C2 once C1 left contention, got %v", res.ContestMap)
	}
	if _, ok := res.ContestMap["X2"]; ok {
		t.Fatalf("expected X2 to be dropped once both primaries were claimed, got %v", res.ContestMap)
	}
	if len(res.Conflicts) != 0 {
		t.Fatalf("expected same-round claims to defer rather than conflict, got %v", res.Conflicts)
	}
	if len(res.UnmappedContestsSecondary) != 1 || res.UnmappedContestsSecondary[0].ContestID != "X2" {
		t.Fatalf("expected X2 reported unmapped, got %+v", res.UnmappedContestsSecondary)
	}
	if len(res.UnmappedContestsPrimary) != 0 {
		t.Fatalf("expected no unmapped primary contests, got %+v", res.UnmappedContestsPrimary)
	}
}

func TestEliminationAcrossRounds(t *testing.T) {
	m := newMatcher(t, linker.Options{})
	addContest(t, m, linker.Primary, "C1", "Seat 1", "Pat Kim", "Lou Diaz")
	addContest(t, m, linker.Primary, "C2", "Seat 2", "Lou Diaz", "Max Ray")
	addContest(t, m, linker.Primary, "C3", "Seat 3", "Pat Kim")
	addContest(t, m, linker.Secondary, "X2", "Seat B", "Pat Kim")
	addContest(t, m, linker.Secondary, "X1", "Seat A", "Lou Diaz")
	addContest(t, m, linker.Secondary, "X3", "Seat C", "Max Ray")

	res := resolveAll(t, m)
	want := map[string]string{"X1": "C1", "X2": "C3", "X3": "C2"}
	for sec, prim := range want {
		if res.ContestMap[sec] != prim {
			t.Fatalf("expected %s -> %s, got %v", sec, prim, res.ContestMap)
		}
	}
	order := make([]string, 0, len(res.ContestLinks))
	for _, link := range res.ContestLinks {
		order = append(order, link.Secondary)
	}
	if strings.Join(order, ",") != "X3,X1,X2" {
		t.Fatalf("expected links in commit order, got %v", order)
	}
	if res.ContestLinks[0].PrimaryName != "Seat 2" || res.ContestLinks[0].SecondaryName != "Seat C" {
		t.Fatalf("expected contest names on links, got %+v", res.ContestLinks[0])
	}
	if len(res.UnmappedCandidatesPrimary) != 2 {
		t.Fatalf("expected two uncovered primary candidates, got %+v", res.UnmappedCandidatesPrimary)
	}
}

func TestMajorityVoteResolves(t *testing.T) {
	m := newMatcher(t, linker.Options{})
	addContest(t, m, linker.Primary, "C1", "Board", "Ana Ruiz", "Ben Ota")
	addContest(t, m, linker.Primary, "C2", "Board 2", "Ana Ruiz")
	addContest(t, m, linker.Primary, "C3", "Board 3", "Ben Ota")
	addContest(t, m, linker.Secondary, "X1", "School Board", "Ana Ruiz", "Ben Ota")

	res := resolveAll(t, m)
	if res.ContestMap["X1"] != "C1" {
		t.Fatalf("expected majority to pick C1, got %v", res.ContestMap)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("expected no tie warning, got %v", res.Warnings)
	}
}

func TestSingleVoteIsNotAMajority(t *testing.T) {
	m := newMatcher(t, linker.Options{})
	addContest(t, m, linker.Primary, "C1", "Board", "Ana Ruiz")
	addContest(t, m, linker.Primary, "C2", "Board 2", "Ben Ota")
	addContest(t, m, linker.Primary, "C3", "Board 3", "Ben Ota")
	addContest(t, m, linker.Secondary, "X1", "School Board", "Ben Ota")

	res := resolveAll(t, m)
	if _, ok := res.ContestMap["X1"]; ok {
		t.Fatalf("expected X1 unresolved on a 1-1 split, got %v", res.ContestMap)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("expected no tie warning for single-vote split, got %v", res.Warnings)
	}
}

func TestLastNameEvidenceResolves(t *testing.T) {
	m := newMatcher(t, linker.Options{})
	addContest(t, m, linker.Primary, "C1", "Sheriff", "Jonathan Q. Public", "Mary Major")
	addContest(t, m, linker.Secondary, "X1", "County Sheriff", "Jon Public")

	if m.NameEvidence().Len() != 0 {
		t.Fatalf("expected no full-name evidence")
	}
	if row, ok := m.LastNameEvidence().Row("X1"); !ok || row.Votes("C1") != 1 {
		t.Fatalf("expected last-name vote for C1")
	}
	res := resolveAll(t, m)
	if res.ContestMap["X1"] != "C1" {
		t.Fatalf("expected X1 -> C1 from last-name evidence, got %v", res.ContestMap)
	}
	if res.CandidateMap[ref("X1", "X1-1")] != ref("C1", "C1-1") {
		t.Fatalf("expected candidate paired by last name, got %v", res.CandidateMap)
	}
	if len(res.UnmappedCandidatesPrimary) != 1 || res.UnmappedCandidatesPrimary[0].Name != "Mary Major" {
		t.Fatalf("expected Mary Major unmapped, got %+v", res.UnmappedCandidatesPrimary)
	}
}

func TestAmbiguousCandidateLeftUnmapped(t *testing.T) {
	m := newMatcher(t, linker.Options{})
	addContest(t, m, linker.Primary, "C1", "Council", "Sam Lee", "Kim Lee")
	addContest(t, m, linker.Secondary, "X1", "Council", "Sam Lee", "Dana Lee")

	res := resolveAll(t, m)
	if res.ContestMap["X1"] != "C1" {
		t.Fatalf("expected X1 -> C1, got %v", res.ContestMap)
	}
	if len(res.CandidateMap) != 1 {
		t.Fatalf("expected only Sam Lee mapped, got %v", res.CandidateMap)
	}
	if len(res.UnmappedCandidatesSecondary) != 1 || res.UnmappedCandidatesSecondary[0].Ref != ref("X1", "X1-2") {
		t.Fatalf("expected Dana Lee unmapped, got %+v", res.UnmappedCandidatesSecondary)
	}
	if len(res.UnmappedCandidatesPrimary) != 1 || res.UnmappedCandidatesPrimary[0].Ref != ref("C1", "C1-2") {
		t.Fatalf("expected Kim Lee unmapped, got %+v", res.UnmappedCandidatesPrimary)
	}
}

func TestSpellingVariantWarning(t *testing.T) {
	m := newMatcher(t, linker.Options{})
	addContest(t, m, linker.Primary, "C1", "Assessor", "Robert Smith")
	addContest(t, m, linker.Primary, "C2", "Treasurer", "ROBERT SMITH")
	addContest(t, m, linker.Primary, "C3", "Recorder", "ROBERT SMITH")

	res := m.Result()
	if len(res.Conflicts) != 0 {
		t.Fatalf("expected no conflicts, got %v", res.Conflicts)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one spelling warning, got %v", res.Warnings)
	}
	if !strings.Contains(res.Warnings[0], `"Robert Smith"`) || !strings.Contains(res.Warnings[0], `"ROBERT SMITH"`) {
		t.Fatalf("expected both spellings in warning, got %q", res.Warnings[0])
	}
}

func TestGenuineConflict(t *testing.T) {
	m := newMatcher(t, linker.Options{})
	addContest(t, m, linker.Primary, "C9", "Judge", "Ida Bell")
	addContest(t, m, linker.Primary, "C10", "Judge 2", "Ray Cho")
	addContest(t, m, linker.Secondary, "X9", "Judge", "Ida Bell")

	if m.SetContestMap("X9", "C10") {
		t.Fatalf("expected conflicting mapping to be rejected")
	}
	if !m.SetContestMap("X9", "C9") {
		t.Fatalf("expected repeating the existing mapping to succeed")
	}
	res := resolveAll(t, m)
	if res.ContestMap["X9"] != "C9" {
		t.Fatalf("expected X9 -> C9 unchanged, got %v", res.ContestMap)
	}
	if len(res.Conflicts) != 1 || !strings.Contains(res.Conflicts[0], "C10") {
		t.Fatalf("expected one conflict naming C10, got %v", res.Conflicts)
	}
}

func TestInverseConflictRejected(t *testing.T) {
	m := newMatcher(t, linker.Options{})
	if !m.SetContestMap("X1", "C1") {
		t.Fatalf("expected first mapping to succeed")
	}
	if m.SetContestMap("X2", "C1") {
		t.Fatalf("expected second claim on C1 to be rejected")
	}
	if got, _ := m.ContestFor("X1"); got != "C1" {
		t.Fatalf("expected X1 -> C1, got %q", got)
	}
	if _, ok := m.ContestFor("X2"); ok {
		t.Fatalf("expected X2 unmapped")
	}
	if res := m.Result(); len(res.Conflicts) != 1 {
		t.Fatalf("expected one conflict, got %v", res.Conflicts)
	}
}

func TestRejectedImmediateMatchKeepsEvidence(t *testing.T) {
	m := newMatcher(t, linker.Options{})
	addContest(t, m, linker.Primary, "C1", "Mayor", "Ana Ruiz")
	addContest(t, m, linker.Secondary, "X1", "Mayor", "Ana Ruiz")
	addContest(t, m, linker.Secondary, "X2", "City Mayor", "Ana Ruiz")

	if got, _ := m.ContestFor("X1"); got != "C1" {
		t.Fatalf("expected X1 -> C1 from the unique match, got %q", got)
	}
	row, ok := m.NameEvidence().Row("X2")
	if !ok || row.Votes("C1") != 1 {
		t.Fatalf("expected the rejected match recorded as one vote for C1, got %v", row)
	}

	res := resolveAll(t, m)
	if _, ok := res.ContestMap["X2"]; ok {
		t.Fatalf("expected X2 unmapped, got %v", res.ContestMap)
	}
	if len(res.Conflicts) != 1 || !strings.Contains(res.Conflicts[0], "C1") {
		t.Fatalf("expected one conflict naming C1, got %v", res.Conflicts)
	}
}

func TestManualCandidateMapClaimsPrimary(t *testing.T) {
	m := newMatcher(t, linker.Options{})
	addContest(t, m, linker.Primary, "C1", "Mayor", "Jane Doe")
	if !m.SetCandidateMap(ref("X1", "legacy"), ref("C1", "C1-1")) {
		t.Fatalf("expected manual candidate mapping to succeed")
	}
	addContest(t, m, linker.Secondary, "X1", "Mayor", "Jane Doe")

	res := resolveAll(t, m)
	if got, _ := m.CandidateFor(ref("X1", "legacy")); got != ref("C1", "C1-1") {
		t.Fatalf("expected manual mapping kept, got %+v", got)
	}
	if len(res.Conflicts) != 1 {
		t.Fatalf("expected automatic pairing to conflict with the manual one, got %v", res.Conflicts)
	}
	if len(res.UnmappedCandidatesSecondary) != 1 || len(res.UnmappedCandidatesPrimary) != 0 {
		t.Fatalf("unexpected unmapped candidates: %+v %+v", res.UnmappedCandidatesPrimary, res.UnmappedCandidatesSecondary)
	}
}

func TestSkipPatternMatchesWholeKey(t *testing.T) {
	m := newMatcher(t, linker.Options{SkipChoices: []string{"Sí"}})
	tests := []struct {
		name string
		skip bool
	}{
		{"Yes", true},
		{"NO", true},
		{"Write-In", true},
		{"write in", true},
		{"Si", true},
		{"Nora Smith", false},
		{"Yesenia Lopez", false},
		{"", true},
	}
	for _, tc := range tests {
		if got := m.Skips(tc.name); got != tc.skip {
			t.Errorf("Skips(%q) = %v, want %v", tc.name, got, tc.skip)
		}
	}
}

func TestNewRejectsInvalidSkipPattern(t *testing.T) {
	if _, err := linker.New(linker.Options{SkipPattern: "yes|("}); err == nil {
		t.Fatalf("expected invalid pattern error")
	}
}

func TestProgrammerMisuse(t *testing.T) {
	m := newMatcher(t, linker.Options{})
	if err := m.EnterCandidate(" ", "a", "Jane Doe"); !errors.Is(err, linker.ErrMissingContestID) {
		t.Fatalf("expected ErrMissingContestID, got %v", err)
	}
	if err := m.EnterContest(linker.Primary, "C1", "Mayor", ""); err != nil {
		t.Fatalf("EnterContest failed: %v", err)
	}
	if err := m.EnterContest(linker.Primary, "C1", "Mayor", ""); err != nil {
		t.Fatalf("expected repeated identical contest to be accepted, got %v", err)
	}
	if err := m.EnterContest(linker.Primary, "C1", "Governor", ""); !errors.Is(err, linker.ErrContestNameMismatch) {
		t.Fatalf("expected ErrContestNameMismatch, got %v", err)
	}
	if err := m.EnterContest(linker.Secondary, "C1", "Governor", ""); err != nil {
		t.Fatalf("expected sides to be independent, got %v", err)
	}
	if err := m.ResolveCandidates(); !errors.Is(err, linker.ErrNotResolved) {
		t.Fatalf("expected ErrNotResolved, got %v", err)
	}
	if err := m.Resolve(); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if err := m.Resolve(); !errors.Is(err, linker.ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}
	if err := m.LookupCandidate("X1", "a", "Jane Doe"); !errors.Is(err, linker.ErrFrozen) {
		t.Fatalf("expected ErrFrozen, got %v", err)
	}
	if err := m.ResolveCandidates(); err != nil {
		t.Fatalf("ResolveCandidates failed: %v", err)
	}
	if err := m.ResolveCandidates(); !errors.Is(err, linker.ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved on second candidate pass, got %v", err)
	}
}

func TestDuplicateCandidateIgnored(t *testing.T) {
	m := newMatcher(t, linker.Options{})
	addContest(t, m, linker.Primary, "C1", "Mayor", "Jane Doe", "Jim Roe")
	addContest(t, m, linker.Primary, "C2", "Clerk", "Jim Roe")
	if err := m.LookupCandidate("X1", "s1", "Jim Roe"); err != nil {
		t.Fatalf("LookupCandidate failed: %v", err)
	}
	if err := m.LookupCandidate("X1", "s1", "Jim Roe"); err != nil {
		t.Fatalf("LookupCandidate failed: %v", err)
	}
	row, ok := m.NameEvidence().Row("X1")
	if !ok || row.Votes("C1") != 1 {
		t.Fatalf("expected duplicate lookup to add no evidence")
	}
}

func TestResultBeforeResolveOmitsUnmapped(t *testing.T) {
	m := newMatcher(t, linker.Options{})
	addContest(t, m, linker.Primary, "C1", "Mayor", "Jane Doe")
	res := m.Result()
	if res.UnmappedContestsPrimary != nil || res.UnmappedCandidatesPrimary != nil {
		t.Fatalf("expected unmapped lists to wait for resolution, got %+v", res)
	}
}

func TestCandidateRefParse(t *testing.T) {
	tests := []struct {
		in   string
		want linker.CandidateRef
		ok   bool
	}{
		{"C1:42", ref("C1", "42"), true},
		{" C1:a:b ", ref("C1", "a:b"), true},
		{"C1", linker.CandidateRef{}, false},
		{":42", linker.CandidateRef{}, false},
		{"C1:", linker.CandidateRef{}, false},
	}
	for _, tc := range tests {
		got, ok := linker.ParseCandidateRef(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseCandidateRef(%q) = %+v, %v", tc.in, got, ok)
		}
		if ok && got.String() != strings.TrimSpace(tc.in) {
			t.Errorf("String() = %q, want %q", got.String(), strings.TrimSpace(tc.in))
		}
	}
}

func TestSideText(t *testing.T) {
	for _, side := range []linker.Side{linker.Primary, linker.Secondary} {
		text, err := side.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", side, err)
		}
		var got linker.Side
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if got != side {
			t.Fatalf("side %q decoded as %v", text, got)
		}
	}
	var s linker.Side
	if err := s.UnmarshalText([]byte("tertiary")); err == nil {
		t.Fatal("expected error for unknown side")
	}
}
