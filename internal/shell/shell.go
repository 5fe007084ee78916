// Package shell is the interactive text front end. It owns the record list
// (filter, check marks, cursor) and drives the editor core from commands
// typed at a readline prompt.
package shell

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/chzyer/readline"

	"github.com/mesh-intelligence/typesmith/internal/bulk"
	"github.com/mesh-intelligence/typesmith/internal/document"
	"github.com/mesh-intelligence/typesmith/internal/editor"
	"github.com/mesh-intelligence/typesmith/internal/logger"
	"github.com/mesh-intelligence/typesmith/internal/state"
	"github.com/mesh-intelligence/typesmith/pkg/types"
)

// ErrQuit is returned by Execute when the user asks to leave.
var ErrQuit = errors.New("quit requested")

// Shell implements types.ListView on top of a text list.
type Shell struct {
	ed    *editor.Editor
	store *state.Store
	out   io.Writer
	log   *slog.Logger

	rows    []*document.Record
	cursor  int
	checked map[string]bool
	filter  map[string]bool

	session *bulk.Session
	touched map[string]bool
}

var _ types.ListView = (*Shell)(nil)

// New creates a shell over ed and registers it as the editor's list view.
// store may be nil.
func New(ed *editor.Editor, store *state.Store, out io.Writer, log *slog.Logger) *Shell {
	s := &Shell{
		ed:      ed,
		store:   store,
		out:     out,
		log:     logger.Or(log).With("component", "shell"),
		cursor:  -1,
		checked: make(map[string]bool),
		touched: make(map[string]bool),
	}
	ed.SetView(s)
	s.Reload("")
	return s
}

// RefreshRow notes that a record changed. Rows render from the document, so
// the list is always current; the note feeds the summary printed after bulk
// commands.
func (s *Shell) RefreshRow(recordID string) {
	s.touched[recordID] = true
}

// SelectedRecords returns the record under the cursor.
func (s *Shell) SelectedRecords() []string {
	if s.cursor < 0 || s.cursor >= len(s.rows) {
		return nil
	}
	return []string{s.rows[s.cursor].ID()}
}

// CheckedRecords returns the checked rows in list order.
func (s *Shell) CheckedRecords() []string {
	var out []string
	for _, r := range s.rows {
		if s.checked[r.ID()] {
			out = append(out, r.ID())
		}
	}
	return out
}

// Reload rebuilds the rows from the current filter and moves the cursor to
// selectID, or keeps it on the active record.
func (s *Shell) Reload(selectID string) {
	s.rows = nil
	s.cursor = -1
	if s.ed.Document() == nil {
		return
	}
	rows, err := s.ed.Filter(s.filter)
	if err != nil {
		s.log.Warn("reload", "error", err)
		return
	}
	s.rows = rows
	if selectID == "" && s.ed.Active() != nil {
		selectID = s.ed.Active().ID()
	}
	for i, r := range rows {
		if r.ID() == selectID {
			s.cursor = i
			break
		}
	}
}

// Rows returns the visible records.
func (s *Shell) Rows() []*document.Record { return s.rows }

// Cursor returns the index of the highlighted row, or -1.
func (s *Shell) Cursor() int { return s.cursor }

// Prompt returns the prompt for the current state.
func (s *Shell) Prompt() string {
	switch {
	case s.session != nil:
		return "typesmith[bulk]> "
	case s.ed.Active() != nil:
		return fmt.Sprintf("typesmith:%s> ", s.ed.Active().Name())
	}
	return "typesmith> "
}

// Completer offers the command names for tab completion.
func Completer() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(commandOrder))
	for _, name := range commandOrder {
		if name == "bulk" {
			subs := make([]readline.PrefixCompleterInterface, 0, len(bulkOrder))
			for _, sub := range bulkOrder {
				subs = append(subs, readline.PcItem(sub))
			}
			items = append(items, readline.PcItem(name, subs...))
			continue
		}
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(items...)
}

// Run reads commands from rl until quit or end of input. Command errors are
// printed and the loop continues.
func (s *Shell) Run(rl *readline.Instance) error {
	for {
		rl.SetPrompt(s.Prompt())
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			fmt.Fprintln(s.out, "Use 'quit' to exit.")
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.Execute(line); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
}

// Execute runs one command line.
func (s *Shell) Execute(line string) error {
	args := ParseArgs(strings.TrimSpace(line))
	if len(args) == 0 {
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command: %s", args[0])
	}
	return cmd.run(s, args[1:])
}

// ParseArgs splits input on spaces, keeping double-quoted runs together.
func ParseArgs(input string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false
	quoted := false

	flush := func() {
		if current.Len() > 0 || quoted {
			args = append(args, current.String())
			current.Reset()
		}
		quoted = false
	}

	for _, char := range input {
		switch {
		case char == '"':
			inQuotes = !inQuotes
			quoted = true
		case (char == ' ' || char == '\t') && !inQuotes:
			flush()
		default:
			current.WriteRune(char)
		}
	}
	flush()
	return args
}
