package linker

import "errors"

var (
	// ErrMissingContestID indicates an ingestion call without a contest id.
	ErrMissingContestID = errors.New("contest id is required")
	// ErrContestNameMismatch indicates one side supplied two different names
	// for the same contest id.
	ErrContestNameMismatch = errors.New("contest name mismatch")
	// ErrFrozen indicates ingestion after Resolve.
	ErrFrozen = errors.New("matcher is frozen after resolve")
	// ErrNotResolved indicates ResolveCandidates was called before Resolve.
	ErrNotResolved = errors.New("contests have not been resolved")
	// ErrAlreadyResolved indicates a resolution step was run twice.
	ErrAlreadyResolved = errors.New("resolution already ran")
)
