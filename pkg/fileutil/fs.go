package fileutil

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileSystem はスクリプトを格納するディレクトリへのアクセスを抽象化する。
// 名前はベースパスからの相対パスで、区切り文字は "/" を使う。
type FileSystem interface {
	// ReadFile はファイルの内容を読み込む（大文字小文字を無視）
	ReadFile(name string) ([]byte, error)
	// Stat はファイル情報を返す（大文字小文字を無視）
	Stat(name string) (fs.FileInfo, error)
	// WalkDir はディレクトリを再帰的に走査する。fn に渡すパスはベースパスからの相対パス
	WalkDir(root string, fn fs.WalkDirFunc) error
	// BasePath はベースパスを返す
	BasePath() string
}

// RealFS は実ファイルシステムへのアクセスを提供する
type RealFS struct {
	basePath string
}

// NewRealFS は実ファイルシステム用のFileSystemを作成する
func NewRealFS(basePath string) *RealFS {
	return &RealFS{basePath: basePath}
}

func (r *RealFS) ReadFile(name string) ([]byte, error) {
	actualPath, err := r.find(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(actualPath)
}

func (r *RealFS) Stat(name string) (fs.FileInfo, error) {
	actualPath, err := r.find(name)
	if err != nil {
		return nil, err
	}
	return os.Stat(actualPath)
}

func (r *RealFS) WalkDir(root string, fn fs.WalkDirFunc) error {
	start := r.resolvePath(root)
	return filepath.WalkDir(start, func(walkPath string, d fs.DirEntry, err error) error {
		// ベースパスからの相対パスに変換
		relPath := walkPath
		if rel, relErr := filepath.Rel(r.basePath, walkPath); relErr == nil {
			relPath = rel
		}
		return fn(filepath.ToSlash(relPath), d, err)
	})
}

func (r *RealFS) BasePath() string {
	return r.basePath
}

func (r *RealFS) resolvePath(name string) string {
	// 先頭の "/" や "\" を除去
	cleanName := strings.TrimLeft(name, "/\\")
	if cleanName == "" {
		cleanName = "."
	}
	return filepath.Join(r.basePath, filepath.FromSlash(cleanName))
}

func (r *RealFS) find(name string) (string, error) {
	p := r.resolvePath(name)
	// まず直接アクセスを試みる
	if _, err := os.Stat(p); err == nil {
		return p, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	// 大文字小文字を無視して検索
	return FindFileCaseInsensitive(filepath.Dir(p), filepath.Base(p))
}

// EmbedFS は fs.FS（embed.FS など）へのアクセスを提供する
type EmbedFS struct {
	fsys     fs.FS
	basePath string
}

// NewEmbedFS は埋め込みファイルシステム用のFileSystemを作成する
func NewEmbedFS(fsys fs.FS, basePath string) *EmbedFS {
	return &EmbedFS{fsys: fsys, basePath: basePath}
}

func (e *EmbedFS) ReadFile(name string) ([]byte, error) {
	actualPath, err := e.find(name)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(e.fsys, actualPath)
}

func (e *EmbedFS) Stat(name string) (fs.FileInfo, error) {
	actualPath, err := e.find(name)
	if err != nil {
		return nil, err
	}
	return fs.Stat(e.fsys, actualPath)
}

func (e *EmbedFS) WalkDir(root string, fn fs.WalkDirFunc) error {
	start := e.resolvePath(root)
	return fs.WalkDir(e.fsys, start, func(walkPath string, d fs.DirEntry, err error) error {
		// ベースパスからの相対パスに変換
		relPath := walkPath
		if e.basePath != "" && e.basePath != "." {
			if walkPath == e.basePath {
				relPath = "."
			} else {
				relPath = strings.TrimPrefix(walkPath, e.basePath+"/")
			}
		}
		return fn(relPath, d, err)
	})
}

func (e *EmbedFS) BasePath() string {
	return e.basePath
}

func (e *EmbedFS) resolvePath(name string) string {
	// 先頭の "/" や "\" を除去
	cleanName := strings.TrimLeft(strings.ReplaceAll(name, "\\", "/"), "/")
	if cleanName == "" {
		cleanName = "."
	}
	if e.basePath == "" {
		return path.Clean(cleanName)
	}
	return path.Join(e.basePath, cleanName)
}

func (e *EmbedFS) find(name string) (string, error) {
	p := e.resolvePath(name)
	// まず直接アクセスを試みる
	if _, err := fs.Stat(e.fsys, p); err == nil {
		return p, nil
	}
	// 大文字小文字を無視して検索
	return FindFileCaseInsensitiveFS(e.fsys, path.Dir(p), path.Base(p))
}
