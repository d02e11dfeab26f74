package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zurustar/evscript/pkg/compiler"
	"github.com/zurustar/evscript/pkg/config"
)

// setupWorkspace 一時ディレクトリにスクリプトを作成し、そこへ移動する
func setupWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()
	for _, name := range []string{config.EnvLogLevel, config.EnvLogFormat, config.EnvLogFile, config.EnvJobs, config.EnvListing} {
		t.Setenv(name, "")
	}

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	t.Chdir(dir)
	return dir
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := New(&stdout, &stderr).Run(args)
	return stdout.String(), stderr.String(), err
}

func TestRun_Help(t *testing.T) {
	setupWorkspace(t, nil)
	stdout, _, err := run(t, "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "evscriptc") {
		t.Errorf("help not printed: %q", stdout)
	}
}

func TestRun_NoInput(t *testing.T) {
	setupWorkspace(t, nil)
	if _, _, err := run(t); err == nil {
		t.Error("expected error without input paths")
	}
}

func TestRun_Success(t *testing.T) {
	setupWorkspace(t, map[string]string{
		"events/village.script":   "--- village\ntalk(hello)\njump(inn)\n--- inn\n",
		"events/town/shop.SCRIPT": "--- shop\nspecial(shop_buy)\n",
		"events/notes.txt":        "not a script",
		"single/boss.script":      "--- boss\nreceive_money(100)\n",
	})

	_, stderr, err := run(t, "-l", "error", "events", "single/boss.script")
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, stderr)
	}
	if !strings.Contains(stderr, "compiled 3 scripts") {
		t.Errorf("summary missing: %q", stderr)
	}
}

func TestRun_Failure(t *testing.T) {
	setupWorkspace(t, map[string]string{
		"events/good.script": "--- good\ntalk(fine)\n",
		"events/bad.script":  "--- bad\ntalk(fine)\nspecial(shop_rent)\n",
	})

	_, stderr, err := run(t, "-l", "error", "events")
	if err == nil {
		t.Fatal("expected error when a script fails to compile")
	}
	if !strings.Contains(err.Error(), "1 of 2 scripts failed") {
		t.Errorf("error = %v", err)
	}

	for _, want := range []string{
		filepath.Join("events", "bad.script") + ":3:9",
		`unknown special instruction "shop_rent"`,
		"> 3 | special(shop_rent)",
		"^",
	} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr should contain %q:\n%s", want, stderr)
		}
	}
}

func TestRun_MissingPath(t *testing.T) {
	setupWorkspace(t, nil)
	if _, _, err := run(t, "nowhere"); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestRun_ListingToStdout(t *testing.T) {
	setupWorkspace(t, map[string]string{
		"a.script": "--- a\njump(b)\n",
	})

	stdout, _, err := run(t, "-l", "error", "--list", "text", "a.script")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout != "--- a\njump(b)\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestRun_ListingToDirectory(t *testing.T) {
	dir := setupWorkspace(t, map[string]string{
		"events/village.script":   "--- village\ntalk(hello)\n",
		"events/town/shop.script": "--- shop\nspecial(shop_sell)\n",
	})

	_, _, err := run(t, "-l", "error", "--list", "json", "-o", "out", "events")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, rel := range []string{"out/village.json", "out/town/shop.json"} {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			t.Errorf("listing %s not written: %v", rel, err)
			continue
		}
		if !strings.Contains(string(data), `"sections"`) {
			t.Errorf("%s is not a listing: %s", rel, data)
		}
	}
}

func TestRun_ConfigFile(t *testing.T) {
	dir := setupWorkspace(t, map[string]string{
		"evscript.yaml": "compile:\n  extensions: [evs]\nlisting:\n  format: yaml\n  output: listings\nlogging:\n  level: error\n",
		"src/a.evs":     "--- a\njump(b)\n",
		"src/b.script":  "--- b\nfly(away)\n",
	})

	// b.script は拡張子が一致しないので読み込まれない
	_, stderr, err := run(t, "src")
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, "listings", "a.yaml")); err != nil {
		t.Errorf("listing from config not written: %v", err)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	setupWorkspace(t, map[string]string{
		"evscript.yaml": "logging:\n  level: loud\n",
		"a.script":      "--- a\n",
	})
	if _, _, err := run(t, "a.script"); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestDiagnostic(t *testing.T) {
	s := newStyles(&bytes.Buffer{})

	spe := compiler.NewScriptParseError("expected end of line", 2, 9, "--- a\njump(b) junk\n")
	got := s.diagnostic("a.script", spe)
	for _, want := range []string{"✗", "a.script:2:9", "expected end of line", "> 2 | jump(b) junk", "^"} {
		if !strings.Contains(got, want) {
			t.Errorf("diagnostic should contain %q:\n%s", want, got)
		}
	}

	got = s.diagnostic("b.script", errors.New("context canceled"))
	if !strings.Contains(got, "b.script") || !strings.Contains(got, "context canceled") {
		t.Errorf("plain diagnostic = %q", got)
	}
}

func TestSummary(t *testing.T) {
	s := newStyles(&bytes.Buffer{})
	if got := s.summary(1, 0); got != "✓ compiled 1 script" {
		t.Errorf("summary(1, 0) = %q", got)
	}
	if got := s.summary(3, 2); got != "✗ 2 of 3 scripts failed to compile" {
		t.Errorf("summary(3, 2) = %q", got)
	}
}
