// Package linkrun orchestrates one end-to-end linking run: load both
// datasets, apply manual overrides, match, publish outputs, and record the
// run in the history store.
package linkrun
