package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runRootCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	_, err := rootCmd.ExecuteC()
	rootCmd.SetArgs(nil)
	return strings.TrimSpace(buf.String()), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	want := []string{"version", "status", "serve", "submit", "clear", "cluster", "debate", "suggest"}
	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected subcommand %q to be registered", name)
		}
	}
}

func TestDebateCommandRegistersSubcommands(t *testing.T) {
	want := []string{"start", "list", "status", "consensus"}
	for _, name := range want {
		found := false
		for _, c := range debateCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected debate subcommand %q to be registered", name)
		}
	}
}

func TestProjectFlagsDefaultToDefaultProject(t *testing.T) {
	for _, tc := range []struct {
		cmdName string
		value   string
	}{
		{"submit", submitProject},
		{"clear", clearProject},
		{"cluster", clusterProjectFlag},
		{"debate start", debateStartProject},
		{"debate list", debateListProject},
	} {
		if tc.value != "default" {
			t.Errorf("%s --project default = %q, want %q", tc.cmdName, tc.value, "default")
		}
	}
}

func TestHelpMentionsHarmony(t *testing.T) {
	out, err := runRootCommand(t, "--help")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	if !strings.Contains(out, "harmony") {
		t.Fatalf("expected help output to mention harmony, got %q", out)
	}
}

func TestOpenStackCreatesDataDir(t *testing.T) {
	tmpDir := t.TempDir()
	origHome := os.Getenv("HOME")
	defer os.Setenv("HOME", origHome)
	_ = os.Setenv("HOME", tmpDir)

	stk, err := openStack()
	if err != nil {
		t.Fatalf("openStack failed: %v", err)
	}
	defer stk.close()

	dbPath := filepath.Join(tmpDir, ".harmony", "harmony.db")
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected database at %s: %v", dbPath, err)
	}
}
