package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github-projects-mcp/cmd/mockgen/engine"
	apperrors "github-projects-mcp/internal/errors"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATA_PATH", dir)
	t.Setenv("LOGS_FOLDER", filepath.Join(dir, "logs"))
	t.Setenv("GITHUB_PAT", "")
	t.Chdir(dir)
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetOut(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "ghp-mcp dev") {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestReportCommand_FromFixtures(t *testing.T) {
	dir := isolate(t)
	fixtures := filepath.Join(dir, "fixtures")
	outDir := filepath.Join(dir, "out")

	for _, repo := range []string{"widgets", "gadgets"} {
		nodes := engine.Generate(engine.GeneratorConfig{Owner: "acme", Name: repo, Count: 30, Days: 10, Seed: 5, Now: time.Now()})
		if _, err := engine.Save(fixtures, "acme", repo, nodes, 8); err != nil {
			t.Fatal(err)
		}
	}

	out, err := run(t, "report", "acme/widgets", "acme/gadgets", "--fixtures", fixtures, "--format", "json", "--out", outDir)
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(entries))
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "acme-") || filepath.Ext(e.Name()) != ".json" {
			t.Errorf("unexpected report file %s", e.Name())
		}
		if !strings.Contains(out, e.Name()) {
			t.Errorf("written path %s not printed", e.Name())
		}
	}
}

func TestReportCommand_InvalidRepository(t *testing.T) {
	isolate(t)
	_, err := run(t, "report", "not-a-repo", "--fixtures", t.TempDir())
	if !apperrors.Is(err, apperrors.ErrCodeValidation) {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
}

func TestReportCommand_MissingTokenWithoutFixtures(t *testing.T) {
	isolate(t)
	_, err := run(t, "report", "acme/widgets", "--fixtures", "")
	if !apperrors.Is(err, apperrors.ErrCodeConfiguration) {
		t.Fatalf("expected CONFIGURATION, got %v", err)
	}
}
