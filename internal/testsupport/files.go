package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteText writes body to path, creating parent directories.
func WriteText(t testing.TB, path, body string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteTSV writes rows as tab-separated lines to dir/name and returns the
// path.
func WriteTSV(t testing.TB, dir, name string, rows ...[]string) string {
	t.Helper()

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(strings.Join(row, "\t"))
		b.WriteByte('\n')
	}
	path := filepath.Join(dir, name)
	WriteText(t, path, b.String())
	return path
}

// Inputs holds the four input files of a linking run.
type Inputs struct {
	PrimaryContests     string
	PrimaryCandidates   string
	SecondaryContests   string
	SecondaryCandidates string
}

// WriteElection writes a small two-source election into dir: a mayoral race
// with a spelling difference, a council race resolved by elimination, and a
// ballot measure that only the primary source carries.
func WriteElection(t testing.TB, dir string) Inputs {
	t.Helper()

	return Inputs{
		PrimaryContests: WriteTSV(t, dir, "primary_contests.tsv",
			[]string{"contest_id", "contest_name", "choice"},
			[]string{"100", "Mayor"},
			[]string{"200", "City Council"},
			[]string{"300", "Measure A", "Yes"},
			[]string{"300", "Measure A", "No"},
		),
		PrimaryCandidates: WriteTSV(t, dir, "primary_candidates.tsv",
			[]string{"contest_id", "candidate_id", "full_name"},
			[]string{"100", "1", "Jane Doe"},
			[]string{"100", "2", "John Q. Public"},
			[]string{"200", "3", "María de la Cruz"},
			[]string{"200", "4", "Lee Park"},
		),
		SecondaryContests: WriteTSV(t, dir, "secondary_contests.tsv",
			[]string{"M", "MAYOR"},
			[]string{"CC", "CITY COUNCIL"},
		),
		SecondaryCandidates: WriteTSV(t, dir, "secondary_candidates.tsv",
			[]string{"M", "a", "JANE DOE"},
			[]string{"M", "b", "Jack Public"},
			[]string{"CC", "c", "Maria De La Cruz"},
			[]string{"CC", "d", "Pat Kim"},
		),
	}
}
