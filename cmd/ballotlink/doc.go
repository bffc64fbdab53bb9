// Package main hosts the ballotlink CLI entrypoint and command graph.
//
// The Cobra-based command tree runs contest and candidate linking between a
// primary and a secondary election dataset, inspects how names normalize,
// browses the run history, and scaffolds configuration. It centralizes
// configuration resolution and structured logging setup so subcommands can
// focus on presentation.
//
// Keep this package lean: matching lives in internal/linker and the run
// pipeline in internal/linkrun; commands here only translate flags and render
// results.
package main
