// Package dataset reads the contest and candidate lists that feed a linking
// run from tab-separated files.
//
// Contest files carry contest_id, contest_name and an optional ballot
// choice; a contest repeats once per choice. Candidate files carry
// contest_id, candidate_id and full_name. Blank lines and lines starting
// with '#' are ignored, and a first row whose first field is "contest_id"
// is treated as a header.
package dataset

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"ballotlink/internal/linker"
)

const maxLineBytes = 1 << 20

// ErrMalformedRow reports a row with missing columns or a missing id.
var ErrMalformedRow = errors.New("malformed row")

// ContestRow is one line of a contests file.
type ContestRow struct {
	Line        int
	ContestID   string
	ContestName string
	Choice      string
}

// CandidateRow is one line of a candidates file.
type CandidateRow struct {
	Line        int
	ContestID   string
	CandidateID string
	FullName    string
}

// Side is everything read for one dataset.
type Side struct {
	Contests   []ContestRow
	Candidates []CandidateRow
}

// Counts summarises a Side for logs and reports.
func (s Side) Counts() (contests, candidates int) {
	seen := make(map[string]struct{})
	for _, row := range s.Contests {
		seen[row.ContestID] = struct{}{}
	}
	for _, row := range s.Candidates {
		seen[row.ContestID] = struct{}{}
	}
	return len(seen), len(s.Candidates)
}

// Load reads one side from disk. Either path may be empty.
func Load(ctx context.Context, contestsPath, candidatesPath string) (Side, error) {
	var side Side
	if strings.TrimSpace(contestsPath) != "" {
		rows, err := readFile(contestsPath, ReadContests)
		if err != nil {
			return Side{}, err
		}
		side.Contests = rows
	}
	if err := ctx.Err(); err != nil {
		return Side{}, err
	}
	if strings.TrimSpace(candidatesPath) != "" {
		rows, err := readFile(candidatesPath, ReadCandidates)
		if err != nil {
			return Side{}, err
		}
		side.Candidates = rows
	}
	return side, nil
}

func readFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	rows, err := read(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// ReadContests parses a contests file.
func ReadContests(r io.Reader) ([]ContestRow, error) {
	var rows []ContestRow
	err := scan(r, 2, func(line int, fields []string) error {
		row := ContestRow{Line: line, ContestID: fields[0], ContestName: fields[1]}
		if len(fields) > 2 {
			row.Choice = fields[2]
		}
		rows = append(rows, row)
		return nil
	})
	return rows, err
}

// ReadCandidates parses a candidates file.
func ReadCandidates(r io.Reader) ([]CandidateRow, error) {
	var rows []CandidateRow
	err := scan(r, 3, func(line int, fields []string) error {
		if fields[1] == "" {
			return fmt.Errorf("line %d: %w: empty candidate_id", line, ErrMalformedRow)
		}
		rows = append(rows, CandidateRow{Line: line, ContestID: fields[0], CandidateID: fields[1], FullName: fields[2]})
		return nil
	})
	return rows, err
}

func scan(r io.Reader, minFields int, emit func(line int, fields []string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	first := true
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if line == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		text = strings.TrimRight(text, "\r")
		if strings.TrimSpace(text) == "" || strings.HasPrefix(strings.TrimSpace(text), "#") {
			continue
		}
		fields := strings.Split(text, "\t")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if first {
			first = false
			if strings.EqualFold(fields[0], "contest_id") {
				continue
			}
		}
		if len(fields) < minFields {
			return fmt.Errorf("line %d: %w: expected at least %d columns, got %d", line, ErrMalformedRow, minFields, len(fields))
		}
		if fields[0] == "" {
			return fmt.Errorf("line %d: %w: empty contest_id", line, ErrMalformedRow)
		}
		if err := emit(line, fields); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan tsv: %w", err)
	}
	return nil
}

// Feed ingests data into m in file order: contests first, then candidates.
// Primary candidates are entered into the index; secondary candidates are
// looked up against it, so the primary side must be fed first.
func Feed(m *linker.Matcher, side linker.Side, data Side) error {
	for _, row := range data.Contests {
		if err := m.EnterContest(side, row.ContestID, row.ContestName, row.Choice); err != nil {
			return fmt.Errorf("%s contests line %d: %w", side, row.Line, err)
		}
	}
	for _, row := range data.Candidates {
		var err error
		if side == linker.Primary {
			err = m.EnterCandidate(row.ContestID, row.CandidateID, row.FullName)
		} else {
			err = m.LookupCandidate(row.ContestID, row.CandidateID, row.FullName)
		}
		if err != nil {
			return fmt.Errorf("%s candidates line %d: %w", side, row.Line, err)
		}
	}
	return nil
}
