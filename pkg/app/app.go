package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/zurustar/evscript/pkg/cli"
	"github.com/zurustar/evscript/pkg/compiler"
	"github.com/zurustar/evscript/pkg/config"
	"github.com/zurustar/evscript/pkg/fileutil"
	"github.com/zurustar/evscript/pkg/listing"
	"github.com/zurustar/evscript/pkg/logger"
	"github.com/zurustar/evscript/pkg/source"
)

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	stdout   io.Writer
	stderr   io.Writer
	config   *cli.Config
	settings config.Config
	log      *slog.Logger
	styles   styles
}

// input 読み込んだスクリプトと表示用の情報
type input struct {
	src     source.Source
	display string // 診断メッセージに表示するパス
	rel     string // リスティングの出力先を決める相対パス
}

// New Applicationを作成
func New(stdout, stderr io.Writer) *Application {
	return &Application{
		stdout: stdout,
		stderr: stderr,
		styles: newStyles(stderr),
	}
}

// Run アプリケーションを実行
func (app *Application) Run(args []string) error {
	// 1. コマンドライン引数の解析
	if err := app.parseArgs(args); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	if app.config.ShowHelp {
		cli.PrintHelp(app.stdout)
		return nil
	}

	if len(app.config.Paths) == 0 {
		return fmt.Errorf("no input: specify script files or directories (see --help)")
	}

	// 2. 設定ファイルの読み込み（コマンドラインが優先）
	if err := app.loadConfig(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 3. ロガーの初期化
	if err := app.initLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()

	// 4. スクリプトファイルの読み込み
	inputs, err := app.loadSources(app.config.Paths)
	if err != nil {
		return fmt.Errorf("failed to load scripts: %w", err)
	}

	app.log.Info("Scripts loaded", "count", len(inputs))
	for _, in := range inputs {
		app.log.Debug("Script file", "path", in.display, "size", in.src.Size)
	}

	// 5. スクリプトのコンパイル（Ctrl+Cで未着手のファイルを中止）
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	results := app.compile(ctx, inputs)
	failed := compiler.Failed(results)

	app.log.Info("Scripts compiled",
		"ok", len(results)-len(failed),
		"failed", len(failed),
		"elapsed", time.Since(start).Round(time.Millisecond))

	// 6. 診断メッセージの表示
	app.report(inputs, results)

	// 7. リスティングの出力
	if app.settings.Listing.Format != "" {
		if err := app.writeListings(inputs, results); err != nil {
			return fmt.Errorf("failed to write listings: %w", err)
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d scripts failed to compile", len(failed), len(results))
	}
	return nil
}

// parseArgs コマンドライン引数を解析
func (app *Application) parseArgs(args []string) error {
	c, err := cli.ParseArgs(args)
	if err != nil {
		return err
	}
	app.config = c
	return nil
}

// loadConfig 設定ファイルと環境変数を読み込み、コマンドラインの値で上書きする
func (app *Application) loadConfig() error {
	settings, err := config.Load(app.config.ConfigPath)
	if err != nil {
		return err
	}
	app.config.Apply(&settings)
	if err := settings.Validate(); err != nil {
		return err
	}
	app.settings = settings
	return nil
}

// initLogger ロガーを初期化
func (app *Application) initLogger() error {
	err := logger.Init(logger.Options{
		Level:  app.settings.Logging.Level,
		Format: app.settings.Logging.Format,
		File:   app.settings.Logging.File,
		Writer: app.stderr,
	})
	if err != nil {
		return err
	}
	app.log = logger.WithComponent("app")
	return nil
}

// loadSources 引数ごとにスクリプトを読み込む。
// ディレクトリは拡張子が一致するファイルをすべて、ファイルはそれ自体を読み込む
func (app *Application) loadSources(paths []string) ([]input, error) {
	exts := app.settings.Compile.Extensions
	var inputs []input

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			src, err := source.LoadFile(p)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, input{src: *src, display: p, rel: src.FileName})
			continue
		}

		sources, err := source.NewLoader(fileutil.NewRealFS(p), exts...).LoadAll()
		if err != nil {
			return nil, err
		}
		for _, src := range sources {
			inputs = append(inputs, input{
				src:     src,
				display: filepath.Join(p, filepath.FromSlash(src.Path)),
				rel:     src.Path,
			})
		}
	}

	return inputs, nil
}

// compile 読み込んだスクリプトを並列にコンパイル
func (app *Application) compile(ctx context.Context, inputs []input) []compiler.CompileResult {
	sources := make([]source.Source, len(inputs))
	for i, in := range inputs {
		sources[i] = in.src
	}
	return compiler.CompileSources(ctx, sources, compiler.CompileOptions{
		Jobs:       app.settings.Compile.Jobs,
		Extensions: app.settings.Compile.Extensions,
	})
}

// report 失敗したファイルの診断と集計を表示
func (app *Application) report(inputs []input, results []compiler.CompileResult) {
	failed := 0
	for i, r := range results {
		if r.Err == nil {
			continue
		}
		failed++
		app.log.Debug("Compile failed", "path", inputs[i].display, "error", r.Err)
		fmt.Fprintln(app.stderr, app.styles.diagnostic(inputs[i].display, r.Err))
	}
	fmt.Fprintln(app.stderr, app.styles.summary(len(results), failed))
}

// writeListings コンパイルに成功したスクリプトのリスティングを出力
func (app *Application) writeListings(inputs []input, results []compiler.CompileResult) error {
	format, err := listing.ParseFormat(app.settings.Listing.Format)
	if err != nil {
		return err
	}
	outDir := app.settings.Listing.Output

	written := 0
	for i, r := range results {
		if r.Err != nil {
			continue
		}

		if outDir == "" {
			// 標準出力：YAMLは複数ドキュメントとして区切る
			if format == listing.FormatYAML && written > 0 {
				fmt.Fprintln(app.stdout, "---")
			}
			if err := listing.Write(app.stdout, inputs[i].display, r.Script, format); err != nil {
				return err
			}
			written++
			continue
		}

		rel := strings.TrimSuffix(inputs[i].rel, filepath.Ext(inputs[i].rel)) + format.Extension()
		target := filepath.Join(outDir, filepath.FromSlash(rel))
		if err := writeListingFile(target, inputs[i].display, r, format); err != nil {
			return err
		}
		app.log.Debug("Listing written", "path", target)
		written++
	}

	app.log.Info("Listings written", "count", written, "format", string(format))
	return nil
}

func writeListingFile(target, name string, r compiler.CompileResult, format listing.Format) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	f, err := os.Create(target)
	if err != nil {
		return err
	}
	if err := listing.Write(f, name, r.Script, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
