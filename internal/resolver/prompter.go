package resolver

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompter is the single user-interaction point of the resolver: it shows a
// prompt and returns one line of input. Implementations return an error when
// no more input can be obtained (closed stdin, exhausted script).
type Prompter interface {
	Prompt(prompt string) (string, error)
}

// ErrNoInput is returned when the input source is exhausted.
var ErrNoInput = errors.New("no more input")

// ConsolePrompter reads answers line by line from in and writes prompts to out.
type ConsolePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsolePrompter binds a prompter to the given streams (usually stdin and
// stderr, so that stdout only carries normalized rows).
func NewConsolePrompter(in io.Reader, out io.Writer) *ConsolePrompter {
	return &ConsolePrompter{in: bufio.NewReader(in), out: out}
}

// Prompt writes prompt and reads a line. A final line without a trailing
// newline is still returned; EOF with nothing read yields ErrNoInput.
func (c *ConsolePrompter) Prompt(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)

	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
