package linker

import (
	"fmt"
	"strings"
)

// Side selects which dataset an ingestion call populates.
type Side int

const (
	Primary Side = iota
	Secondary
)

func (s Side) String() string {
	if s == Primary {
		return "primary"
	}
	return "secondary"
}

// MarshalText renders the side as "primary" or "secondary".
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the forms produced by MarshalText.
func (s *Side) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "primary":
		*s = Primary
	case "secondary":
		*s = Secondary
	default:
		return fmt.Errorf("unknown side %q", text)
	}
	return nil
}

// CandidateRef identifies a candidate globally by qualifying it with its
// owning contest.
type CandidateRef struct {
	ContestID   string `json:"contest_id"`
	CandidateID string `json:"candidate_id"`
}

func (r CandidateRef) String() string {
	return r.ContestID + ":" + r.CandidateID
}

// ParseCandidateRef splits a "contest:candidate" string. Contest ids may not
// contain a colon; candidate ids may.
func ParseCandidateRef(value string) (CandidateRef, bool) {
	contest, candidate, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok || contest == "" || candidate == "" {
		return CandidateRef{}, false
	}
	return CandidateRef{ContestID: contest, CandidateID: candidate}, true
}

// CandidateRecord is one ingested candidate or ballot choice.
type CandidateRecord struct {
	ContestID   string
	CandidateID string
	NameKey     string
	LastNameKey string
	RawName     string
}

// Ref returns the record's composite identity.
func (r CandidateRecord) Ref() CandidateRef {
	return CandidateRef{ContestID: r.ContestID, CandidateID: r.CandidateID}
}

// IsPseudo reports whether the record stands for a ballot-measure choice
// rather than a real candidate.
func (r CandidateRecord) IsPseudo() bool {
	return r.CandidateID == ""
}

func (r CandidateRecord) identity() string {
	if r.IsPseudo() {
		return r.ContestID + "\x00\x00" + r.NameKey
	}
	return r.ContestID + "\x00" + r.CandidateID
}
