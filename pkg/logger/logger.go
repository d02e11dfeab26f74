package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu           sync.RWMutex
	globalLogger *slog.Logger
	fileWriter   *lj.Logger
)

// Options ロガーの設定
type Options struct {
	Level  string    // debug|info|warn|error
	Format string    // text|json
	File   string    // 指定するとJSON形式でローテーション付きファイルにも出力
	Writer io.Writer // コンソール出力先（nilならos.Stderr）
}

// Init オプションに応じてslogを初期化し、slog.Defaultにも設定する
func Init(opts Options) error {
	slogLevel, err := parseLevel(opts.Level)
	if err != nil {
		return err
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{Level: slogLevel}

	// コンソール
	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "text":
		handler = slog.NewTextHandler(w, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(w, handlerOpts)
	default:
		return fmt.Errorf("invalid log format: %s", opts.Format)
	}

	// ファイル（ローテーション付き）
	var fw *lj.Logger
	if file := strings.TrimSpace(opts.File); file != "" {
		fw = &lj.Logger{Filename: file, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		handler = &multiHandler{hs: []slog.Handler{handler, slog.NewJSONHandler(fw, handlerOpts)}}
	}

	mu.Lock()
	if fileWriter != nil {
		_ = fileWriter.Close()
	}
	fileWriter = fw
	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
	mu.Unlock()

	return nil
}

// Close ログファイルを閉じる
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if fileWriter == nil {
		return nil
	}
	err := fileWriter.Close()
	fileWriter = nil
	return err
}

// GetLogger グローバルロガーを取得
func GetLogger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if globalLogger == nil {
		// デフォルトロガーを返す
		return slog.Default()
	}
	return globalLogger
}

// WithComponent component属性付きのロガーを返す
func WithComponent(name string) *slog.Logger {
	return GetLogger().With(slog.String("component", name))
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level: %s", level)
}

// multiHandler 複数のハンドラにレコードを振り分ける
type multiHandler struct{ hs []slog.Handler }

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range m.hs {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	res := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		res[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{hs: res}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	res := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		res[i] = h.WithGroup(name)
	}
	return &multiHandler{hs: res}
}
