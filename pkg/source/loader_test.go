package source

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"testing/fstest"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/zurustar/evscript/pkg/fileutil"
)

func TestNewLoader_DefaultExtension(t *testing.T) {
	loader := NewLoader(fileutil.NewRealFS("/test/path"))
	if loader == nil {
		t.Fatal("NewLoader returned nil")
	}
	if !reflect.DeepEqual(loader.exts, []string{".script"}) {
		t.Errorf("exts = %v, want [.script]", loader.exts)
	}
}

func TestFindScriptFiles_CaseInsensitive(t *testing.T) {
	// テスト用の一時ディレクトリを作成
	tmpDir := t.TempDir()

	// 様々な大文字小文字のファイルを作成
	testFiles := []string{
		"village.script",
		"castle.SCRIPT",
		"shop.Script",
		"other.txt", // これは検出されないはず
	}
	for _, filename := range testFiles {
		filePath := filepath.Join(tmpDir, filename)
		if err := os.WriteFile(filePath, []byte("test content"), 0644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}
	}

	loader := NewLoader(fileutil.NewRealFS(tmpDir))
	files, err := loader.findScriptFiles()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"castle.SCRIPT", "shop.Script", "village.script"}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("files = %v, want %v", files, want)
	}
}

func TestLoad_UTF8(t *testing.T) {
	tmpDir := t.TempDir()
	content := "--- 村\ntalk(挨拶)\n"
	if err := os.WriteFile(filepath.Join(tmpDir, "village.script"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	loader := NewLoader(fileutil.NewRealFS(tmpDir))
	src, err := loader.Load("village.script")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if src.Content != content {
		t.Errorf("content mismatch:\nexpected: %q\ngot: %q", content, src.Content)
	}
	if src.FileName != "village.script" || src.Path != "village.script" {
		t.Errorf("FileName/Path = %q/%q", src.FileName, src.Path)
	}
	if src.Size != int64(len(content)) {
		t.Errorf("Size = %d, want %d", src.Size, len(content))
	}
}

func TestLoad_ShiftJIS(t *testing.T) {
	// Shift-JISのテストファイルを作成
	tmpDir := t.TempDir()
	testContent := "--- 村\ntalk(これはShift-JISのテストです)\n"

	// UTF-8からShift-JISに変換
	encoder := japanese.ShiftJIS.NewEncoder()
	shiftJISContent, _, err := transform.String(encoder, testContent)
	if err != nil {
		t.Fatalf("failed to encode to Shift-JIS: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "village.script"), []byte(shiftJISContent), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	src, err := NewLoader(fileutil.NewRealFS(tmpDir)).Load("VILLAGE.SCRIPT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if src.Content != testContent {
		t.Errorf("content mismatch:\nexpected: %q\ngot: %q", testContent, src.Content)
	}
}

func TestLoadAll(t *testing.T) {
	mfs := fstest.MapFS{
		"events/b.script":      {Data: []byte("--- b\n")},
		"events/town/a.script": {Data: []byte("--- a\n")},
		"events/notes.md":      {Data: []byte("# notes")},
	}

	loader := NewLoader(fileutil.NewEmbedFS(mfs, "events"))
	sources, err := loader.LoadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var paths []string
	for _, s := range sources {
		paths = append(paths, s.Path)
	}
	want := []string{"b.script", "town/a.script"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}
	if sources[1].FileName != "a.script" {
		t.Errorf("FileName = %q, want a.script", sources[1].FileName)
	}
}

func TestLoadAll_CustomExtensions(t *testing.T) {
	mfs := fstest.MapFS{
		"a.evs":    {Data: []byte("--- a\n")},
		"b.script": {Data: []byte("--- b\n")},
	}

	sources, err := NewLoader(fileutil.NewEmbedFS(mfs, ""), ".evs").LoadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sources) != 1 || sources[0].Path != "a.evs" {
		t.Errorf("sources = %+v, want only a.evs", sources)
	}
}

func TestLoadAll_NoScripts(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "readme.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewLoader(fileutil.NewRealFS(tmpDir)).LoadAll(); err == nil {
		t.Error("expected error when no script files exist")
	}
}

func TestLoadAll_NonExistentDirectory(t *testing.T) {
	loader := NewLoader(fileutil.NewRealFS(filepath.Join(t.TempDir(), "missing")))
	if _, err := loader.LoadAll(); err == nil {
		t.Error("expected error for non-existent directory")
	}
}

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "Intro.script")
	if err := os.WriteFile(path, []byte("--- intro\n"), 0644); err != nil {
		t.Fatal(err)
	}

	src, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.Content != "--- intro\n" || src.FileName != "Intro.script" {
		t.Errorf("src = %+v", src)
	}

	if _, err := LoadFile(filepath.Join(tmpDir, "missing.script")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDecode(t *testing.T) {
	testCases := []struct {
		name  string
		input []byte
		want  string
	}{
		{"ascii", []byte("--- a\n"), "--- a\n"},
		{"utf-8", []byte("talk(挨拶)\n"), "talk(挨拶)\n"},
		{"utf-8 with BOM", append([]byte{0xEF, 0xBB, 0xBF}, "--- a\n"...), "--- a\n"},
		{"empty", []byte{}, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode(tc.input)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got != tc.want {
				t.Errorf("Decode() = %q, want %q", got, tc.want)
			}
		})
	}

	// Shift-JIS
	encoded, _, err := transform.String(japanese.ShiftJIS.NewEncoder(), "日本語テスト")
	if err != nil {
		t.Fatalf("failed to encode to Shift-JIS: %v", err)
	}
	got, err := Decode([]byte(encoded))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != "日本語テスト" {
		t.Errorf("Decode() = %q, want 日本語テスト", got)
	}
}
