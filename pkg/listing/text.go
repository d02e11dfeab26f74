package listing

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/zurustar/evscript/pkg/script"
)

// writeText prints s as source text, one section per header in name order.
// The output compiles back to an equal script.
func writeText(w io.Writer, s *script.Script) error {
	bw := bufio.NewWriter(w)
	for _, name := range s.Names() {
		fmt.Fprintf(bw, "--- %s\n", name)
		list, _ := s.Section(name)
		for _, inst := range list {
			line, err := Source(inst)
			if err != nil {
				return fmt.Errorf("section %s: %w", name, err)
			}
			bw.WriteString(line)
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}

// Source renders a single instruction as one line of source text.
func Source(inst script.Instruction) (string, error) {
	switch v := inst.(type) {
	case *script.Jump:
		return fmt.Sprintf("jump(%s)", v.Section), nil
	case *script.JumpIf:
		return fmt.Sprintf("jump_if(%s, %s)", v.Section, v.Cond), nil
	case *script.Talk:
		if len(v.Choices) == 0 {
			return fmt.Sprintf("talk(%s)", v.TextID), nil
		}
		choices := make([]string, len(v.Choices))
		for i, c := range v.Choices {
			choices[i] = fmt.Sprintf("(%s, %s)", c.Label, c.Section)
		}
		return fmt.Sprintf("talk(%s, [%s])", v.TextID, strings.Join(choices, ", ")), nil
	case *script.GSet:
		return fmt.Sprintf("gset(%s, %s)", v.Var, v.Value), nil
	case *script.ReceiveMoney:
		return fmt.Sprintf("receive_money(%s)", v.Amount), nil
	case *script.RemoveItem:
		return fmt.Sprintf("remove_item(%s)", v.ItemID), nil
	case *script.Special:
		return fmt.Sprintf("special(%s)", v.Kind), nil
	}
	return "", fmt.Errorf("unknown instruction %T", inst)
}
