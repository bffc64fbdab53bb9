package main

import (
	"encoding/json"
	"strings"
	"testing"

	"ballotlink/internal/testsupport"
)

func linkForRunID(t *testing.T, env *cliTestEnv) string {
	t.Helper()
	out, _, err := runCLI(t, env.linkArgs("--json"), env.configPath)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	var payload linkJSON
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode link json: %v", err)
	}
	return payload.RunID
}

func TestRunsListAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"runs"}, env.configPath)
	if err != nil {
		t.Fatalf("runs (empty): %v", err)
	}
	requireContains(t, out, "No runs recorded")

	runID := linkForRunID(t, env)

	out, _, err = runCLI(t, []string{"runs"}, env.configPath)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	requireContains(t, out, shortID(runID))
	requireContains(t, out, "completed")
	requireContains(t, out, "2/2")
	requireContains(t, out, "3/4")

	out, _, err = runCLI(t, []string{"runs", "show", shortID(runID)}, env.configPath)
	if err != nil {
		t.Fatalf("runs show: %v", err)
	}
	requireContains(t, out, "Run "+runID)
	requireContains(t, out, "secondary_candidates")
	requireContains(t, out, "CITY COUNCIL")

	out, _, err = runCLI(t, []string{"runs", "show", "--json", runID}, env.configPath)
	if err != nil {
		t.Fatalf("runs show --json: %v", err)
	}
	var view runView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode run json: %v", err)
	}
	if view.ID != runID || view.Status != "completed" {
		t.Fatalf("unexpected run view: %+v", view)
	}
	if len(view.Contests) != 2 || len(view.Candidates) != 3 {
		t.Fatalf("expected 2 contest and 3 candidate links, got %d and %d", len(view.Contests), len(view.Candidates))
	}
}

func TestRunsListJSONAndLimit(t *testing.T) {
	env := setupCLITestEnv(t)
	linkForRunID(t, env)
	latest := linkForRunID(t, env)

	out, _, err := runCLI(t, []string{"runs", "--json", "--limit", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("runs --json: %v", err)
	}
	var views []runView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode runs json: %v", err)
	}
	if len(views) != 1 || views[0].ID != latest {
		t.Fatalf("expected only the latest run %s, got %+v", latest, views)
	}
}

func TestRunsShowUnknown(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"runs", "show", "does-not-exist"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestRunsPrune(t *testing.T) {
	env := setupCLITestEnv(t)
	linkForRunID(t, env)

	out, _, err := runCLI(t, []string{"runs", "prune", "--older-than", "24h"}, env.configPath)
	if err != nil {
		t.Fatalf("runs prune: %v", err)
	}
	requireContains(t, out, "Removed 0 run(s)")

	out, _, err = runCLI(t, []string{"runs", "prune", "--older-than", "1ns"}, env.configPath)
	if err != nil {
		t.Fatalf("runs prune: %v", err)
	}
	requireContains(t, out, "Removed 1 run(s)")

	if _, _, err := runCLI(t, []string{"runs", "prune", "--older-than", "0s"}, env.configPath); err == nil {
		t.Fatal("expected error for non-positive age")
	}
}

func TestRunsDisabledStore(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithoutRunStore())

	_, _, err := runCLI(t, []string{"runs"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "disabled") {
		t.Fatalf("expected disabled error, got %v", err)
	}
}
