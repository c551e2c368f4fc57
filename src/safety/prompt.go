// Package safety gates destructive workflow steps behind an operator
// confirmation.
package safety

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Options controls prompting behavior.
type Options struct {
	// Yes answers every prompt affirmatively, for non-interactive runs.
	Yes bool
}

// Confirm prompts before a destructive action. With opts.Yes it returns
// true without prompting. An empty answer declines.
func Confirm(opts Options, in io.Reader, out io.Writer, question string) (bool, error) {
	if opts.Yes {
		return true, nil
	}
	if out != nil {
		fmt.Fprintf(out, "%s [y/N]: ", strings.TrimSpace(question))
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	ans := strings.TrimSpace(strings.ToLower(line))
	return ans == "y" || ans == "yes", nil
}
