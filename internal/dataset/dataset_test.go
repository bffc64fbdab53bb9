package dataset_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ballotlink/internal/dataset"
	"ballotlink/internal/linker"
)

func TestReadContestsSkipsHeaderAndComments(t *testing.T) {
	input := "\ufeff# exported 2024-11-05\ncontest_id\tcontest_name\tchoice\n\nM1\tMeasure A\tYes\nM1\tMeasure A\tNo\r\nC1\tMayor\n"
	rows, err := dataset.ReadContests(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadContests failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d: %+v", len(rows), rows)
	}
	if rows[0].Line != 4 || rows[0].Choice != "Yes" {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Choice != "No" {
		t.Fatalf("expected trailing CR trimmed, got %q", rows[1].Choice)
	}
	if rows[2].ContestName != "Mayor" || rows[2].Choice != "" {
		t.Fatalf("unexpected contest row without choice: %+v", rows[2])
	}
}

func TestReadCandidatesRejectsMalformedRows(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  string
	}{
		{name: "too few columns", input: "C1\t1\tJane Doe\nC1\t2\n", line: "line 2"},
		{name: "empty contest", input: "\t1\tJane Doe\n", line: "line 1"},
		{name: "empty candidate", input: "# c\nC1\t\tJane Doe\n", line: "line 2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := dataset.ReadCandidates(strings.NewReader(tc.input))
			if !errors.Is(err, dataset.ErrMalformedRow) {
				t.Fatalf("expected ErrMalformedRow, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.line) {
				t.Fatalf("expected %q in error, got %v", tc.line, err)
			}
		})
	}
}

func TestLoadAndFeed(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}
	primary, err := dataset.Load(
		t.Context(),
		write("p_contests.tsv", "C1\tMayor\nM1\tMeasure A\tAdopt\nM1\tMeasure A\tReject\n"),
		write("p_candidates.tsv", "contest_id\tcandidate_id\tfull_name\nC1\t10\tJane Doe\nC1\t11\tJohn Roe\n"),
	)
	if err != nil {
		t.Fatalf("Load primary failed: %v", err)
	}
	if contests, candidates := primary.Counts(); contests != 2 || candidates != 2 {
		t.Fatalf("unexpected counts: %d contests, %d candidates", contests, candidates)
	}
	secondary, err := dataset.Load(
		t.Context(),
		write("s_contests.tsv", "A\tMAYOR\nB\tMEASURE A\tADOPT\nB\tMEASURE A\tREJECT\n"),
		write("s_candidates.tsv", "A\t1\tJANE DOE\nA\t2\tJOHN ROE\n"),
	)
	if err != nil {
		t.Fatalf("Load secondary failed: %v", err)
	}

	m, err := linker.New(linker.Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := dataset.Feed(m, linker.Primary, primary); err != nil {
		t.Fatalf("Feed primary failed: %v", err)
	}
	if err := dataset.Feed(m, linker.Secondary, secondary); err != nil {
		t.Fatalf("Feed secondary failed: %v", err)
	}
	if err := m.Resolve(); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got, _ := m.ContestFor("A"); got != "C1" {
		t.Fatalf("expected A -> C1, got %q", got)
	}
	if got, _ := m.ContestFor("B"); got != "M1" {
		t.Fatalf("expected B -> M1, got %q", got)
	}
}

func TestFeedReportsLine(t *testing.T) {
	m, err := linker.New(linker.Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	data := dataset.Side{Contests: []dataset.ContestRow{
		{Line: 3, ContestID: "C1", ContestName: "Mayor"},
		{Line: 7, ContestID: "C1", ContestName: "Sheriff"},
	}}
	err = dataset.Feed(m, linker.Primary, data)
	if !errors.Is(err, linker.ErrContestNameMismatch) {
		t.Fatalf("expected ErrContestNameMismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), "primary contests line 7") {
		t.Fatalf("expected line context, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := dataset.Load(t.Context(), filepath.Join(t.TempDir(), "missing.tsv"), ""); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadHonoursCancellation(t *testing.T) {
	dir := t.TempDir()
	contests := filepath.Join(dir, "contests.tsv")
	if err := os.WriteFile(contests, []byte("C1\tMayor\n"), 0o644); err != nil {
		t.Fatalf("write contests: %v", err)
	}
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if _, err := dataset.Load(ctx, contests, filepath.Join(dir, "candidates.tsv")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
