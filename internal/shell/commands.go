package shell

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/typesmith/internal/document"
	"github.com/mesh-intelligence/typesmith/internal/fields"
	"github.com/mesh-intelligence/typesmith/pkg/types"
)

type command struct {
	usage string
	help  string
	run   func(s *Shell, args []string) error
}

var commands map[string]command

// commandOrder is the order help lists commands in.
var commandOrder = []string{
	"open", "save", "saveas", "recent", "list", "filter", "categories",
	"check", "uncheck", "checkall", "uncheckall", "show", "set", "add",
	"remove", "undo", "redo", "bulk", "help", "quit",
}

func init() {
	commands = map[string]command{
		"open":       {"open <file>", "Load a document, replacing the current one.", (*Shell).cmdOpen},
		"save":       {"save", "Save to the document's remembered target.", (*Shell).cmdSave},
		"saveas":     {"saveas <file>", "Save to file and remember it as the target.", (*Shell).cmdSaveAs},
		"recent":     {"recent", "List recently opened documents.", (*Shell).cmdRecent},
		"list":       {"list", "List the visible records.", (*Shell).cmdList},
		"filter":     {"filter [all|none|<category>...]", "Show only records in the given categories.", (*Shell).cmdFilter},
		"categories": {"categories", "List the categories present in the document.", (*Shell).cmdCategories},
		"check":      {"check <row>...", "Check rows for bulk editing.", (*Shell).cmdCheck},
		"uncheck":    {"uncheck <row>...", "Uncheck rows.", (*Shell).cmdUncheck},
		"checkall":   {"checkall", "Check every visible row.", (*Shell).cmdCheckAll},
		"uncheckall": {"uncheckall", "Uncheck every visible row.", (*Shell).cmdUncheckAll},
		"show":       {"show [row|name]", "Make a record active and print its fields.", (*Shell).cmdShow},
		"set":        {"set <field> <value>", "Set a field of the active record by number or tag.", (*Shell).cmdSet},
		"add":        {"add <usage|value|tag> <value>", "Add a repeatable entry to the active record.", (*Shell).cmdAdd},
		"remove":     {"remove <field>", "Remove a repeatable entry from the active record.", (*Shell).cmdRemove},
		"undo":       {"undo", "Undo the last edit of the active record.", (*Shell).cmdUndo},
		"redo":       {"redo", "Redo the last undone edit of the active record.", (*Shell).cmdRedo},
		"bulk":       {"bulk [<sub> ...]", "Bulk edit the checked rows; 'help bulk' lists sub-commands.", (*Shell).cmdBulk},
		"help":       {"help [command]", "Show help.", (*Shell).cmdHelp},
		"quit":       {"quit", "Leave the shell.", (*Shell).cmdQuit},
		"exit":       {"exit", "Leave the shell.", (*Shell).cmdQuit},
	}
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) cmdOpen(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: open <file>")
	}
	if err := s.ed.Open(args[0]); err != nil {
		return err
	}
	s.closeSession()
	s.checked = make(map[string]bool)
	s.filter = nil
	s.Reload("")
	s.printf("Loaded %d records from %s\n", s.ed.Document().Len(), args[0])
	return nil
}

func (s *Shell) cmdSave(args []string) error {
	path, err := s.ed.Save()
	if err != nil {
		return err
	}
	s.printf("Saved %s\n", path)
	return nil
}

func (s *Shell) cmdSaveAs(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: saveas <file>")
	}
	if err := s.ed.SaveAs(args[0]); err != nil {
		return err
	}
	s.printf("Saved %s\n", args[0])
	return nil
}

func (s *Shell) cmdRecent(args []string) error {
	if s.store == nil {
		return nil
	}
	files, err := s.store.RecentFiles()
	if err != nil {
		return err
	}
	for i, f := range files {
		s.printf("%3d  %s\n", i+1, f)
	}
	return nil
}

func (s *Shell) requireDocument() error {
	if s.ed.Document() == nil {
		return types.ErrNoDocument
	}
	return nil
}

func (s *Shell) rowLabel(i int, rec *document.Record) string {
	mark := " "
	if s.checked[rec.ID()] {
		mark = "x"
	}
	cur := " "
	if i == s.cursor {
		cur = ">"
	}
	category := ""
	if el := s.ed.Document().Child(rec, types.TagCategory); el != nil {
		category = " (" + document.AttrValue(el, types.AttrName) + ")"
	}
	return fmt.Sprintf("%s[%s] %4d  %s%s", cur, mark, i+1, rec.Name(), category)
}

func (s *Shell) cmdList(args []string) error {
	if err := s.requireDocument(); err != nil {
		return err
	}
	s.Reload("")
	for i, rec := range s.rows {
		s.printf("%s\n", s.rowLabel(i, rec))
	}
	s.printf("%d of %d records\n", len(s.rows), s.ed.Document().Len())
	return nil
}

func (s *Shell) cmdFilter(args []string) error {
	if err := s.requireDocument(); err != nil {
		return err
	}
	switch {
	case len(args) == 0 || (len(args) == 1 && args[0] == "all"):
		s.filter = nil
	case len(args) == 1 && args[0] == "none":
		s.filter = map[string]bool{}
	default:
		s.filter = make(map[string]bool, len(args))
		for _, a := range args {
			s.filter[a] = true
		}
	}
	s.Reload("")
	s.printf("%d records visible\n", len(s.rows))
	return nil
}

func (s *Shell) cmdCategories(args []string) error {
	if err := s.requireDocument(); err != nil {
		return err
	}
	for _, c := range s.ed.Document().Categories() {
		s.printf("%s\n", c)
	}
	return nil
}

func (s *Shell) rowIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(s.rows) {
		return 0, fmt.Errorf("row %q: %w", arg, types.ErrRecordNotFound)
	}
	return n - 1, nil
}

func (s *Shell) setChecked(args []string, on bool) error {
	if err := s.requireDocument(); err != nil {
		return err
	}
	for _, a := range args {
		i, err := s.rowIndex(a)
		if err != nil {
			return err
		}
		s.checked[s.rows[i].ID()] = on
	}
	return nil
}

func (s *Shell) cmdCheck(args []string) error   { return s.setChecked(args, true) }
func (s *Shell) cmdUncheck(args []string) error { return s.setChecked(args, false) }

func (s *Shell) setAllChecked(on bool) error {
	if err := s.requireDocument(); err != nil {
		return err
	}
	for _, r := range s.rows {
		s.checked[r.ID()] = on
	}
	s.printf("%d records %s\n", len(s.rows), map[bool]string{true: "checked", false: "unchecked"}[on])
	return nil
}

func (s *Shell) cmdCheckAll(args []string) error   { return s.setAllChecked(true) }
func (s *Shell) cmdUncheckAll(args []string) error { return s.setAllChecked(false) }

func (s *Shell) cmdShow(args []string) error {
	if err := s.requireDocument(); err != nil {
		return err
	}
	if len(args) > 0 {
		id, err := s.resolveRecord(strings.Join(args, " "))
		if err != nil {
			return err
		}
		if err := s.ed.Activate(id); err != nil {
			return err
		}
		s.Reload(id)
	}
	if s.ed.Active() == nil {
		return types.ErrNoActiveRecord
	}
	s.printFields()
	return nil
}

// resolveRecord accepts a row number or a record name.
func (s *Shell) resolveRecord(arg string) (string, error) {
	if i, err := s.rowIndex(arg); err == nil {
		return s.rows[i].ID(), nil
	}
	rec, err := s.ed.Document().FindRecord(arg)
	if err != nil {
		return "", fmt.Errorf("%q: %w", arg, err)
	}
	return rec.ID(), nil
}

func (s *Shell) printFields() {
	layout := s.ed.Layout()
	for i, h := range layout.Handles() {
		s.printf("%3d  %-18s %v\n", i+1, fields.Label(h), h.Value())
	}
	if hist := s.ed.History(); hist != nil {
		if t := hist.UndoText(); t != "" {
			s.printf("undo: %s\n", t)
		}
		if t := hist.RedoText(); t != "" {
			s.printf("redo: %s\n", t)
		}
	}
}

// resolveField accepts a field number from show or a tag or flag name.
func (s *Shell) resolveField(arg string) (*fields.Handle, error) {
	layout := s.ed.Layout()
	if layout == nil {
		return nil, types.ErrNoActiveRecord
	}
	if n, err := strconv.Atoi(arg); err == nil {
		hs := layout.Handles()
		if n < 1 || n > len(hs) {
			return nil, fmt.Errorf("field %d: %w", n, types.ErrFieldNotFound)
		}
		return hs[n-1], nil
	}
	h, ok := layout.Find(arg)
	if !ok {
		return nil, fmt.Errorf("field %q: %w", arg, types.ErrFieldNotFound)
	}
	return h, nil
}

func (s *Shell) cmdSet(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: set <field> <value>")
	}
	h, err := s.resolveField(args[0])
	if err != nil {
		return err
	}
	value := strings.Join(args[1:], " ")
	if opts := types.Options(h.Tag); opts != nil && !types.IsOption(h.Tag, value) {
		s.printf("note: %q is not a known %s\n", value, h.Tag)
	}
	pushed, err := s.ed.Edit(h.Key, value)
	if err != nil {
		return err
	}
	if !pushed {
		s.printf("unchanged\n")
	}
	return nil
}

func (s *Shell) cmdAdd(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: add <usage|value|tag> <value>")
	}
	if _, err := s.ed.AddField(args[0], args[1]); err != nil {
		return err
	}
	s.printFields()
	return nil
}

func (s *Shell) cmdRemove(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: remove <field>")
	}
	h, err := s.resolveField(args[0])
	if err != nil {
		return err
	}
	if err := s.ed.RemoveField(h.Key); err != nil {
		return err
	}
	s.printFields()
	return nil
}

func (s *Shell) cmdUndo(args []string) error {
	if s.ed.Active() == nil {
		return types.ErrNoActiveRecord
	}
	if !s.ed.Undo() {
		s.printf("nothing to undo\n")
	}
	return nil
}

func (s *Shell) cmdRedo(args []string) error {
	if s.ed.Active() == nil {
		return types.ErrNoActiveRecord
	}
	if !s.ed.Redo() {
		s.printf("nothing to redo\n")
	}
	return nil
}

func (s *Shell) cmdHelp(args []string) error {
	if len(args) == 0 {
		for _, name := range commandOrder {
			c := commands[name]
			s.printf("  %-34s %s\n", c.usage, c.help)
		}
		return nil
	}
	if args[0] == "bulk" {
		for _, name := range bulkOrder {
			c := bulkCommands[name]
			s.printf("  bulk %-29s %s\n", c.usage, c.help)
		}
		return nil
	}
	c, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command: %s", args[0])
	}
	s.printf("%s\n  %s\n", c.usage, c.help)
	return nil
}

func (s *Shell) cmdQuit(args []string) error {
	s.closeSession()
	return ErrQuit
}

// sortedKeys is used for stable error messages.
func sortedKeys(m map[string]command) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Open loads the document at path as the open command does.
func (s *Shell) Open(path string) error {
	return s.cmdOpen([]string{path})
}
