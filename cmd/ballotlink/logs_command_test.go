package main

import (
	"encoding/json"
	"testing"

	"ballotlink/internal/logs"
)

func TestLogsCommandShowsRunEntries(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"logs"}, env.configPath)
	if err != nil {
		t.Fatalf("logs (empty): %v", err)
	}
	requireContains(t, out, "No log entries")

	runID := linkForRunID(t, env)

	out, _, err = runCLI(t, []string{"logs", "--json", "--run", shortID(runID), "--limit", "0"}, env.configPath)
	if err != nil {
		t.Fatalf("logs --json: %v", err)
	}
	var entries []logs.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if len(entries) == 0 {
		t.Fatal("expected log entries for the run")
	}
	found := false
	for _, e := range entries {
		if e.RunID != runID {
			t.Fatalf("entry from another run: %+v", e)
		}
		if e.Message == "link run complete" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected completion entry, got %+v", entries)
	}

	out, _, err = runCLI(t, []string{"logs", "--run", shortID(runID)}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "link run complete")
}

func TestLogsCommandRejectsBadLevel(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"logs", "--level", "loud"}, env.configPath); err == nil {
		t.Fatal("expected invalid level error")
	}
}
