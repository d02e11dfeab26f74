package app

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zurustar/evscript/pkg/compiler"
)

var (
	accentColor    = lipgloss.Color("#3B82F6")
	successColor   = lipgloss.Color("#10B981")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	highlightColor = lipgloss.Color("#F59E0B")
)

// styles 診断メッセージの装飾。出力先が端末でなければ色は付かない
type styles struct {
	location lipgloss.Style
	message  lipgloss.Style
	context  lipgloss.Style
	marked   lipgloss.Style
	pointer  lipgloss.Style
	success  lipgloss.Style
	failure  lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		location: r.NewStyle().Foreground(accentColor).Bold(true),
		message:  r.NewStyle().Foreground(errorColor),
		context:  r.NewStyle().Foreground(mutedColor),
		marked:   r.NewStyle().Bold(true),
		pointer:  r.NewStyle().Foreground(highlightColor).Bold(true),
		success:  r.NewStyle().Foreground(successColor).Bold(true),
		failure:  r.NewStyle().Foreground(errorColor).Bold(true),
	}
}

// diagnostic 1ファイル分のエラー表示を組み立てる
//
//	✗ events/shop.script:3:9
//	  unknown special instruction "shop_rent"
//	    2 | talk(fine)
//	  > 3 | special(shop_rent)
//	      |         ^
func (s styles) diagnostic(path string, err error) string {
	var spe *compiler.ScriptParseError
	if !errors.As(err, &spe) {
		return fmt.Sprintf("%s %s\n  %s",
			s.failure.Render("✗"), s.location.Render(path), s.message.Render(err.Error()))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n  %s",
		s.failure.Render("✗"),
		s.location.Render(fmt.Sprintf("%s:%d:%d", path, spe.Line, spe.Column)),
		s.message.Render(spe.Description))

	for _, line := range strings.Split(strings.TrimRight(spe.Context, "\n"), "\n") {
		if line == "" {
			continue
		}
		b.WriteString("\n  ")
		switch {
		case strings.HasPrefix(line, ">"):
			b.WriteString(s.marked.Render(line))
		case strings.TrimSpace(line) == "^":
			b.WriteString(s.pointer.Render(line))
		default:
			b.WriteString(s.context.Render(line))
		}
	}
	return b.String()
}

// summary 集計行を組み立てる
func (s styles) summary(total, failed int) string {
	if failed == 0 {
		return s.success.Render(fmt.Sprintf("✓ compiled %d %s", total, plural(total, "script")))
	}
	return s.failure.Render(fmt.Sprintf("✗ %d of %d %s failed to compile", failed, total, plural(total, "script")))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
