package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"ballotlink/internal/dataset"
	"ballotlink/internal/linker"
	"ballotlink/internal/overrides"
	"ballotlink/internal/runstore"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckOutputDirectory is CheckDirectoryAccess for a directory the run may
// create: a missing path passes when its nearest existing ancestor is
// writable.
func CheckOutputDirectory(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return CheckDirectoryAccess(name, path)
	}
	parent := filepath.Dir(path)
	for {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		next := filepath.Dir(parent)
		if next == parent {
			break
		}
		parent = next
	}
	if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckReadableFile verifies that path is a regular file the process can read.
func CheckReadableFile(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckInputs reads both files of one side and reports row counts, so
// malformed rows surface before a run.
func CheckInputs(ctx context.Context, name, contestsPath, candidatesPath string) Result {
	for _, path := range []string{contestsPath, candidatesPath} {
		if path == "" {
			continue
		}
		if r := CheckReadableFile(name, path); !r.Passed {
			return r
		}
	}
	side, err := dataset.Load(ctx, contestsPath, candidatesPath)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	contests, candidates := side.Counts()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d contests, %d candidates", contests, candidates)}
}

// CheckSkipPattern verifies that the configured skip pattern compiles.
func CheckSkipPattern(pattern string, choices []string) Result {
	const name = "Skip pattern"
	re, err := linker.CompileSkipPattern(pattern, choices)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: re.String()}
}

// CheckOverrides verifies that the overrides file, when present, parses.
func CheckOverrides(path string) Result {
	const name = "Overrides"
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (not present)", path)}
	}
	entries, err := overrides.NewCatalog(path, nil).Entries()
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d entries)", path, len(entries))}
}

// CheckRunStore opens the run history database and reports its schema
// version. Opening applies pending migrations.
func CheckRunStore(ctx context.Context, path string) Result {
	const name = "Run history"
	store, err := runstore.OpenPath(path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	defer store.Close()
	version, err := store.SchemaVersion(ctx)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (schema %s)", path, version)}
}
