package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ballotlink/internal/config"
	"ballotlink/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	inputs     testsupport.Inputs
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	configPath := filepath.Join(homeDir, ".config", "ballotlink", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		inputs:     testsupport.WriteElection(t, filepath.Join(base, "inputs")),
		configPath: configPath,
		baseDir:    base,
	}
}

func (env *cliTestEnv) linkArgs(extra ...string) []string {
	args := []string{
		"link",
		"--primary-contests", env.inputs.PrimaryContests,
		"--primary-candidates", env.inputs.PrimaryCandidates,
		"--secondary-contests", env.inputs.SecondaryContests,
		"--secondary-candidates", env.inputs.SecondaryCandidates,
	}
	return append(args, extra...)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--log-level", "error"}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\noutput_dir = %q\nlog_dir = %q\noverrides_path = %q\n\n[run_store]\nenabled = %t\npath = %q\n\n[logging]\nformat = \"json\"\n",
		cfg.Paths.OutputDir,
		cfg.Paths.LogDir,
		cfg.Paths.OverridesPath,
		cfg.RunStore.Enabled,
		cfg.RunStore.Path,
	)
	if len(cfg.Matching.SkipChoices) > 0 {
		quoted := make([]string, len(cfg.Matching.SkipChoices))
		for i, choice := range cfg.Matching.SkipChoices {
			quoted[i] = fmt.Sprintf("%q", choice)
		}
		content += fmt.Sprintf("\n[matching]\nskip_choices = [%s]\n", strings.Join(quoted, ", "))
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
