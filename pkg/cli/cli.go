package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/zurustar/evscript/pkg/config"
	"github.com/zurustar/evscript/pkg/listing"
)

// Config はコマンドライン引数から解析された設定を保持する
type Config struct {
	Paths      []string // コンパイル対象のファイルまたはディレクトリ
	ConfigPath string   // 設定ファイルのパス（空ならevscript.yaml）
	LogLevel   string   // ログレベル（空なら設定ファイルの値）
	Jobs       int      // 並列数（-1なら設定ファイルの値）
	List       string   // リスティング形式（空なら設定ファイルの値）
	Output     string   // リスティングの出力先ディレクトリ
	ShowHelp   bool     // ヘルプ表示フラグ
}

// boolFlags 値を取らないフラグ
var boolFlags = map[string]bool{
	"-h":     true,
	"-help":  true,
	"--help": true,
}

// ParseArgs コマンドライン引数を解析してConfigを返す
func ParseArgs(args []string) (*Config, error) {
	// 引数を並べ替え：フラグを前に、位置引数を後ろに
	reorderedArgs, err := reorderArgs(args)
	if err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("evscriptc", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	c := &Config{}

	fs.StringVar(&c.ConfigPath, "config", "", "設定ファイル")
	fs.StringVar(&c.ConfigPath, "c", "", "設定ファイル（短縮形）")
	fs.StringVar(&c.LogLevel, "log-level", "", "ログレベル（debug, info, warn, error）")
	fs.StringVar(&c.LogLevel, "l", "", "ログレベル（短縮形）")
	fs.IntVar(&c.Jobs, "jobs", -1, "並列コンパイル数")
	fs.IntVar(&c.Jobs, "j", -1, "並列コンパイル数（短縮形）")
	fs.StringVar(&c.List, "list", "", "リスティング形式（yaml, json, text）")
	fs.StringVar(&c.Output, "output", "", "リスティングの出力先ディレクトリ")
	fs.StringVar(&c.Output, "o", "", "リスティングの出力先ディレクトリ（短縮形）")
	fs.BoolVar(&c.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&c.ShowHelp, "h", false, "ヘルプを表示（短縮形）")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	// ログレベルの検証
	if c.LogLevel != "" {
		c.LogLevel = strings.ToLower(c.LogLevel)
		validLogLevels := map[string]bool{
			"debug": true,
			"info":  true,
			"warn":  true,
			"error": true,
		}
		if !validLogLevels[c.LogLevel] {
			return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
		}
	}

	// 並列数の検証
	if c.Jobs < -1 {
		return nil, fmt.Errorf("jobs must be non-negative, got %d", c.Jobs)
	}

	// リスティング形式の検証
	if c.List != "" {
		f, err := listing.ParseFormat(c.List)
		if err != nil {
			return nil, err
		}
		c.List = string(f)
	}

	c.Paths = fs.Args()

	return c, nil
}

// Apply コマンドラインで指定された値で設定を上書きする
func (c *Config) Apply(cfg *config.Config) {
	if c.LogLevel != "" {
		cfg.Logging.Level = c.LogLevel
	}
	if c.Jobs >= 0 {
		cfg.Compile.Jobs = c.Jobs
	}
	if c.List != "" {
		cfg.Listing.Format = c.List
	}
	if c.Output != "" {
		cfg.Listing.Output = c.Output
	}
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する
func reorderArgs(args []string) ([]string, error) {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// "--" 以降はすべて位置引数
		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}

		// フラグかどうかを判定（-または--で始まる）
		if len(arg) > 1 && arg[0] == '-' {
			flags = append(flags, arg)

			// --flag=value の形式なら次の引数は値ではない
			if strings.Contains(arg, "=") || boolFlags[arg] {
				continue
			}
			if i+1 >= len(args) {
				return nil, fmt.Errorf("flag needs an argument: %s", arg)
			}
			i++
			flags = append(flags, args[i])
		} else {
			// 位置引数
			positional = append(positional, arg)
		}
	}

	// フラグを前に、位置引数を後ろに配置
	return append(append(flags, "--"), positional...), nil
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `evscriptc - event script compiler

Usage:
  evscriptc [options] <file-or-directory>...

Arguments:
  file-or-directory   コンパイルするスクリプトファイル、またはディレクトリ
                      ディレクトリを指定した場合、拡張子が一致するファイルを再帰的に検出

Options:
  -c, --config <path>       設定ファイル（デフォルト: ./%s）
  -l, --log-level <level>   ログレベル: debug, info, warn, error（デフォルト: info）
  -j, --jobs <n>            並列コンパイル数（0はCPU数、デフォルト: 0）
  --list <format>           コンパイル結果を出力: yaml, json, text
  -o, --output <dir>        リスティングの出力先ディレクトリ（省略時は標準出力）
  -h, --help                このヘルプを表示

Environment Variables:
  %s=<level>      ログレベル
  %s=<n>               並列コンパイル数
  %s=<format>       リスティング形式

Examples:
  evscriptc events/                    ディレクトリ内のスクリプトをすべてコンパイル
  evscriptc events/village.script      ファイルを1つだけコンパイル
  evscriptc --list yaml -o out events  コンパイル結果をout/にYAMLで出力
`, config.DefaultFileName, config.EnvLogLevel, config.EnvJobs, config.EnvListing)
}
