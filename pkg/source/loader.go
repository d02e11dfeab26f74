// Package source finds event script files and decodes them to UTF-8 text.
package source

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/zurustar/evscript/pkg/fileutil"
)

// DefaultExtension はスクリプトファイルの既定の拡張子
const DefaultExtension = ".script"

// Source はスクリプトファイルを表す
type Source struct {
	FileName string // ファイル名
	Path     string // ベースパスからの相対パス（"/" 区切り）
	Content  string // UTF-8に変換された内容
	Size     int64  // ファイルサイズ
}

// Loader はスクリプトファイルの読み込みを行う
type Loader struct {
	fsys fileutil.FileSystem
	exts []string
}

// NewLoader Loaderを作成。exts を省略すると DefaultExtension を使う
func NewLoader(fsys fileutil.FileSystem, exts ...string) *Loader {
	if len(exts) == 0 {
		exts = []string{DefaultExtension}
	}
	return &Loader{
		fsys: fsys,
		exts: exts,
	}
}

// LoadAll すべてのスクリプトファイルを読み込む。結果はパス順
func (l *Loader) LoadAll() ([]Source, error) {
	files, err := l.findScriptFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to find script files: %w", err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no script files found in %s", l.fsys.BasePath())
	}

	sources := make([]Source, 0, len(files))
	for _, name := range files {
		src, err := l.Load(name)
		if err != nil {
			return nil, err
		}
		sources = append(sources, *src)
	}

	return sources, nil
}

// findScriptFiles 拡張子が一致するファイルを検出（case-insensitive）
func (l *Loader) findScriptFiles() ([]string, error) {
	var files []string

	err := l.fsys.WalkDir(".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		// 拡張子をcase-insensitiveで比較
		if fileutil.HasExtension(p, l.exts) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Load 単一のスクリプトファイルを読み込む
func (l *Loader) Load(name string) (*Source, error) {
	// ファイル情報を取得
	info, err := l.fsys.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load script %s: %w", name, err)
	}

	// ファイルを読み込む
	data, err := l.fsys.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load script %s: %w", name, err)
	}

	content, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load script %s: %w", name, err)
	}

	return &Source{
		FileName: path.Base(name),
		Path:     name,
		Content:  content,
		Size:     info.Size(),
	}, nil
}

// LoadFile 実ファイルシステム上の単一ファイルを読み込む
func LoadFile(filePath string) (*Source, error) {
	l := NewLoader(fileutil.NewRealFS(filepath.Dir(filePath)))
	return l.Load(filepath.Base(filePath))
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode スクリプトの内容をUTF-8文字列に変換する。
// 正しいUTF-8であればそのまま（BOMは除去）、そうでなければShift-JISとして扱う
func Decode(data []byte) (string, error) {
	if bytes.HasPrefix(data, utf8BOM) {
		data = data[len(utf8BOM):]
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	return convertShiftJISToUTF8(data)
}

// convertShiftJISToUTF8 Shift-JISからUTF-8に変換
func convertShiftJISToUTF8(data []byte) (string, error) {
	decoder := japanese.ShiftJIS.NewDecoder()
	reader := transform.NewReader(bytes.NewReader(data), decoder)

	utf8Data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to decode Shift-JIS: %w", err)
	}

	return string(utf8Data), nil
}
