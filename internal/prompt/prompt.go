// Package prompt abstracts the operator decisions the generator needs:
// yes/no confirmations and free-text answers.
//
// Console reads answers from a terminal; Static answers from fixed values and
// is used for non-interactive runs and tests.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Decider asks the operator for decisions.
type Decider interface {
	// Confirm asks a [Y/n] question. An empty answer means yes.
	Confirm(question string) (bool, error)

	// Ask asks a free-text question and returns the raw answer.
	Ask(question string) (string, error)
}

// ParseYesNo interprets a [Y/n] answer. Empty, "y" and "Y" mean yes; "n"
// and "N" mean no. Anything else is not understood.
func ParseYesNo(answer string) (yes bool, ok bool) {
	switch strings.TrimSpace(answer) {
	case "", "y", "Y":
		return true, true
	case "n", "N":
		return false, true
	default:
		return false, false
	}
}

// =============================================================================
// CONSOLE
// =============================================================================

// Console prompts on Out and reads line answers from In.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsole creates a Console over the given streams.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// Confirm repeats the question until a yes or no answer is given.
func (c *Console) Confirm(question string) (bool, error) {
	for {
		answer, err := c.Ask(question)
		if err != nil {
			return false, err
		}
		if yes, ok := ParseYesNo(answer); ok {
			return yes, nil
		}
		fmt.Fprintln(c.out, "Please answer 'y' or 'n'.")
	}
}

// Ask writes the question and reads one line. A final line without a
// newline is accepted; io.EOF is returned only when nothing was read.
func (c *Console) Ask(question string) (string, error) {
	fmt.Fprint(c.out, question)

	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// =============================================================================
// STATIC
// =============================================================================

// ErrNoAnswer is returned by Static.Ask for questions without an answer.
var ErrNoAnswer = errors.New("no answer available in non-interactive mode")

// Static answers without reading input. Confirmations get Default unless the
// question has an entry in Confirmations; free-text questions are looked up
// in Answers.
type Static struct {
	Default       bool
	Confirmations map[string]bool
	Answers       map[string]string

	// Asked records every question in order.
	Asked []string
}

// Confirm returns the configured decision for the question.
func (s *Static) Confirm(question string) (bool, error) {
	s.Asked = append(s.Asked, question)
	if v, ok := s.Confirmations[question]; ok {
		return v, nil
	}
	return s.Default, nil
}

// Ask returns the configured answer or ErrNoAnswer.
func (s *Static) Ask(question string) (string, error) {
	s.Asked = append(s.Asked, question)
	if v, ok := s.Answers[question]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrNoAnswer, strings.TrimSpace(question))
}
