// Package mapfile publishes the outcome of a linking run into an output
// directory: the two identifier maps, the unmapped review list, and a JSON
// report. Every file is replaced atomically while the directory lock is held.
package mapfile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"ballotlink/internal/fileutil"
	"ballotlink/internal/linker"
)

// Output file names.
const (
	ContestMapFile   = "contest_map.tsv"
	CandidateMapFile = "candidate_map.tsv"
	UnmappedFile     = "unmapped.tsv"
	ReportFile       = "report.json"
)

// Counts summarises input sizes and outcomes.
type Counts struct {
	PrimaryContests     int `json:"primary_contests"`
	PrimaryCandidates   int `json:"primary_candidates"`
	SecondaryContests   int `json:"secondary_contests"`
	SecondaryCandidates int `json:"secondary_candidates"`
	ContestsMapped      int `json:"contests_mapped"`
	CandidatesMapped    int `json:"candidates_mapped"`
	OverridesApplied    int `json:"overrides_applied"`
	Conflicts           int `json:"conflicts"`
	Warnings            int `json:"warnings"`
}

// Report is the JSON document written to report.json.
type Report struct {
	RunID              string                     `json:"run_id"`
	StartedAt          time.Time                  `json:"started_at"`
	FinishedAt         time.Time                  `json:"finished_at"`
	Counts             Counts                     `json:"counts"`
	Contests           []linker.ContestLink       `json:"contests"`
	Candidates         []linker.CandidateLink     `json:"candidates"`
	Conflicts          []string                   `json:"conflicts"`
	Warnings           []string                   `json:"warnings"`
	UnmappedContests   []linker.UnmappedContest   `json:"unmapped_contests"`
	UnmappedCandidates []linker.UnmappedCandidate `json:"unmapped_candidates"`
}

// NewReport assembles a report from a run result.
func NewReport(runID string, started, finished time.Time, counts Counts, res linker.Result) Report {
	counts.ContestsMapped = len(res.ContestLinks)
	counts.CandidatesMapped = len(res.CandidateLinks)
	counts.Conflicts = len(res.Conflicts)
	counts.Warnings = len(res.Warnings)
	return Report{
		RunID:              runID,
		StartedAt:          started.UTC(),
		FinishedAt:         finished.UTC(),
		Counts:             counts,
		Contests:           nonNil(res.ContestLinks),
		Candidates:         nonNil(res.CandidateLinks),
		Conflicts:          nonNil(res.Conflicts),
		Warnings:           nonNil(res.Warnings),
		UnmappedContests:   nonNil(append(append([]linker.UnmappedContest(nil), res.UnmappedContestsPrimary...), res.UnmappedContestsSecondary...)),
		UnmappedCandidates: nonNil(append(append([]linker.UnmappedCandidate(nil), res.UnmappedCandidatesPrimary...), res.UnmappedCandidatesSecondary...)),
	}
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}

// Files lists the paths written by Write.
type Files struct {
	ContestMap   string
	CandidateMap string
	Unmapped     string
	Report       string
}

// Write publishes report into dir under the directory lock.
func Write(dir string, report Report) (Files, error) {
	lock, err := fileutil.LockDir(dir)
	if err != nil {
		return Files{}, err
	}
	defer lock.Unlock()

	files := Files{
		ContestMap:   filepath.Join(dir, ContestMapFile),
		CandidateMap: filepath.Join(dir, CandidateMapFile),
		Unmapped:     filepath.Join(dir, UnmappedFile),
		Report:       filepath.Join(dir, ReportFile),
	}
	writers := []struct {
		path  string
		write func(io.Writer) error
	}{
		{files.ContestMap, func(w io.Writer) error { return WriteContestMap(w, report.Contests) }},
		{files.CandidateMap, func(w io.Writer) error { return WriteCandidateMap(w, report.Candidates) }},
		{files.Unmapped, func(w io.Writer) error { return WriteUnmapped(w, report.UnmappedContests, report.UnmappedCandidates) }},
		{files.Report, func(w io.Writer) error { return WriteReport(w, report) }},
	}
	for _, out := range writers {
		if err := fileutil.WriteAtomic(out.path, 0o644, out.write); err != nil {
			return Files{}, fmt.Errorf("write %s: %w", filepath.Base(out.path), err)
		}
	}
	return files, nil
}

// WriteContestMap writes one "secondary<TAB>primary" row per link.
func WriteContestMap(w io.Writer, links []linker.ContestLink) error {
	tw := newTSV(w)
	tw.row("secondary_contest_id", "primary_contest_id")
	for _, link := range links {
		tw.row(link.Secondary, link.Primary)
	}
	return tw.flush()
}

// WriteCandidateMap writes one "secondary<TAB>primary" row per link, using
// the contest:candidate form for both columns.
func WriteCandidateMap(w io.Writer, links []linker.CandidateLink) error {
	tw := newTSV(w)
	tw.row("secondary_candidate", "primary_candidate")
	for _, link := range links {
		tw.row(link.Secondary.String(), link.Primary.String())
	}
	return tw.flush()
}

// WriteUnmapped writes the manual review list: kind, side, id, name.
func WriteUnmapped(w io.Writer, contests []linker.UnmappedContest, candidates []linker.UnmappedCandidate) error {
	tw := newTSV(w)
	tw.row("kind", "side", "id", "name")
	for _, c := range contests {
		tw.row("contest", c.Side.String(), c.ContestID, c.Name)
	}
	for _, c := range candidates {
		tw.row("candidate", c.Side.String(), c.Ref.String(), c.Name)
	}
	return tw.flush()
}

// WriteReport writes report as indented JSON.
func WriteReport(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

type tsvWriter struct {
	w   *bufio.Writer
	err error
}

func newTSV(w io.Writer) *tsvWriter {
	return &tsvWriter{w: bufio.NewWriter(w)}
}

var fieldCleaner = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

func (t *tsvWriter) row(fields ...string) {
	if t.err != nil {
		return
	}
	for i, f := range fields {
		fields[i] = fieldCleaner.Replace(f)
	}
	_, t.err = t.w.WriteString(strings.Join(fields, "\t") + "\n")
}

func (t *tsvWriter) flush() error {
	if t.err != nil {
		return t.err
	}
	return t.w.Flush()
}
