// Package runstore keeps an audit trail of linking runs in SQLite.
//
// Each run records its inputs, counts, committed links, and diagnostics so
// operators can review past results with `ballotlink runs`. Matching never
// reads from the store; every run starts from empty state.
package runstore
