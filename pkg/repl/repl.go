// Package repl implements a tiny line-oriented command dispatcher: register
// triggers against handlers, then run a read-eval-print loop over an
// io.Reader/io.Writer pair.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
)

// ReplCommand handles one command's payload (the full input line, including
// its trigger word) and returns the text to print, or an error.
type ReplCommand func(string, *REPLConfig) (output string, err error)

const (
	// TriggerHelpMetacommand is the built-in command that lists every
	// registered trigger and its help string.
	TriggerHelpMetacommand = ".help"

	// ErrorPrependStr is written before any error returned by a command.
	ErrorPrependStr = "ERROR: "
)

// ErrCommandNotFound is returned when an input line's trigger matches no
// registered command.
var ErrCommandNotFound = errors.New("command not found")

// REPL dispatches input lines to registered commands by their first
// whitespace-separated token.
type REPL struct {
	commands map[string]ReplCommand
	help     map[string]string
}

// REPLConfig carries per-session state into every command invocation.
type REPLConfig struct {
	clientId uuid.UUID
}

// NewRepl returns an empty REPL with no commands registered.
func NewRepl() *REPL {
	return &REPL{
		commands: make(map[string]ReplCommand),
		help:     make(map[string]string),
	}
}

// AddCommand registers action under trigger, along with a one-line help
// string. Registering the same trigger twice overwrites the earlier
// handler. The reserved ".help" trigger is silently ignored.
func (r *REPL) AddCommand(trigger string, action ReplCommand, help string) {
	if trigger == TriggerHelpMetacommand {
		return
	}
	r.commands[trigger] = action
	r.help[trigger] = help
}

// HelpString renders every registered command's help line.
func (r *REPL) HelpString() string {
	var sb strings.Builder
	for trigger, help := range r.help {
		fmt.Fprintf(&sb, "%s: %s\n", trigger, help)
	}
	return sb.String()
}

// Run prints a welcome banner and the prompt, then reads lines from input
// (stdin if nil) until EOF, dispatching each to its matching command and
// writing the result (or an ERROR: line) to output (stdout if nil). The
// prompt is reprinted after every line, including blank ones.
func (r *REPL) Run(clientId uuid.UUID, prompt string, input io.Reader, output io.Writer) {
	if input == nil {
		input = os.Stdin
	}
	if output == nil {
		output = os.Stdout
	}

	cfg := &REPLConfig{clientId: clientId}
	fmt.Fprintln(output, "Welcome to the mahstore REPL! Please type '.help' to see the list of available commands.")
	io.WriteString(output, prompt)

	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) == 0 {
			io.WriteString(output, prompt)
			continue
		}

		trigger := fields[0]
		switch {
		case trigger == TriggerHelpMetacommand:
			io.WriteString(output, r.HelpString())
		case r.commands[trigger] != nil:
			result, err := r.commands[trigger](line, cfg)
			if err != nil {
				fmt.Fprintf(output, "%s%s\n", ErrorPrependStr, err)
				break
			}
			if result != "" && !strings.HasSuffix(result, "\n") {
				result += "\n"
			}
			io.WriteString(output, result)
		default:
			fmt.Fprintf(output, "%s%s\n", ErrorPrependStr, ErrCommandNotFound)
		}
		io.WriteString(output, prompt)
	}
	io.WriteString(output, "\n")
}
