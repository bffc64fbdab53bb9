// Package linker reconciles contest and candidate identifiers between a
// primary (master) election dataset and a secondary dataset that describes
// the same ballot under different ids and spellings.
//
// A Matcher owns all state for one run. Callers ingest both datasets through
// EnterContest, EnterCandidate (primary side), and LookupCandidate (secondary
// side), then call Resolve and ResolveCandidates, and finally read Result.
//
// Evidence is name based only. Every secondary candidate whose full-name key
// matches exactly one primary candidate pins its contest immediately; all
// other matches become votes in two evidence tables, one for full-name keys
// and one for last-name keys. Resolve drains the full-name table before the
// last-name table, and within each table runs a pure elimination pass before
// a majority-vote pass. Ambiguity and contradiction never produce errors:
// they surface as conflicts, warnings, and unmapped entries in the Result.
//
// Errors are reserved for caller misuse (see ErrContestNameMismatch and
// friends). A Matcher is not safe for concurrent use.
package linker
