package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/typesmith/internal/bulk"
	"github.com/mesh-intelligence/typesmith/pkg/types"
)

var bulkCommands map[string]command

// bulkOrder is the order help lists bulk sub-commands in.
var bulkOrder = []string{
	"input", "check", "mult", "restore", "scale", "avg", "entries",
	"add", "remove", "replace", "category", "status", "ok", "cancel",
}

func init() {
	bulkCommands = map[string]command{
		"input":    {"input <param> [value]", "Overwrite param on every record; no value clears the input.", (*Shell).bulkInput},
		"check":    {"check <param> [on|off]", "Tick the multiplier checkbox of param.", (*Shell).bulkCheck},
		"mult":     {"mult <x10|x5|x2|standard|/2|/5|/10>", "Multiply the checked params.", (*Shell).bulkMult},
		"restore":  {"restore", "Restore the checked params from the defaults file.", (*Shell).bulkRestore},
		"scale":    {"scale <lifetime|restock> <percent>", "Scale from the values captured at open.", (*Shell).bulkScale},
		"avg":      {"avg <lifetime|restock> [percent]", "Average captured value in minutes.", (*Shell).bulkAvg},
		"entries":  {"entries <usage|value|tag>", "List the entries present across the selection.", (*Shell).bulkEntries},
		"add":      {"add <usage|value|tag> <value>", "Add an entry where missing.", (*Shell).bulkAdd},
		"remove":   {"remove <usage|value|tag> <value>", "Remove an entry everywhere.", (*Shell).bulkRemove},
		"replace":  {"replace <usage|value|tag> <from> <to>", "Rename an entry everywhere.", (*Shell).bulkReplace},
		"category": {"category <name>", "Set the category.", (*Shell).bulkCategory},
		"status":   {"status", "Show inputs, checkboxes and sliders.", (*Shell).bulkStatus},
		"ok":       {"ok", "Accept and close the bulk edit.", (*Shell).bulkOK},
		"cancel":   {"cancel", "Close the bulk edit; applied changes stay.", (*Shell).bulkCancel},
	}
}

func (s *Shell) cmdBulk(args []string) error {
	if len(args) == 0 {
		return s.openSession()
	}
	if s.session == nil {
		return fmt.Errorf("no bulk edit open; run 'bulk' first")
	}
	c, ok := bulkCommands[args[0]]
	if !ok {
		return fmt.Errorf("unknown bulk command %q, want one of %s", args[0], strings.Join(sortedKeys(bulkCommands), ", "))
	}
	clear(s.touched)
	err := c.run(s, args[1:])
	if n := len(s.touched); n > 0 {
		s.printf("%d records updated\n", n)
	}
	return err
}

func (s *Shell) openSession() error {
	if err := s.requireDocument(); err != nil {
		return err
	}
	if s.session != nil {
		return fmt.Errorf("bulk edit already open")
	}
	selection := s.CheckedRecords()
	if len(selection) == 0 {
		selection = s.SelectedRecords()
	}
	if len(selection) == 0 {
		return fmt.Errorf("check some rows first")
	}
	sess, err := s.ed.OpenBulkEdit(selection)
	if err != nil {
		return err
	}
	for p := range sess.Capture().Progress() {
		s.printf("\rcapturing values %3d%%", p)
	}
	s.printf("\n")
	if _, err := sess.Wait(context.Background()); err != nil {
		return err
	}
	s.session = sess
	s.printf("Bulk editing %d records\n", sess.Len())
	return s.bulkStatus(nil)
}

func (s *Shell) closeSession() {
	if s.session != nil {
		s.session.Cancel()
		s.session = nil
	}
}

func (s *Shell) bulkInput(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: bulk input <param> [value]")
	}
	return s.session.SetInput(args[0], strings.Join(args[1:], " "))
}

func (s *Shell) bulkCheck(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: bulk check <param> [on|off]")
	}
	on := true
	if len(args) == 2 {
		switch args[1] {
		case "on":
		case "off":
			on = false
		default:
			return fmt.Errorf("want on or off, got %q", args[1])
		}
	}
	return s.session.SetChecked(args[0], on)
}

func (s *Shell) bulkMult(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: bulk mult <multiplier>")
	}
	m, err := bulk.ParseMultiplier(args[0])
	if err != nil {
		return err
	}
	return s.session.Multiply(m)
}

func (s *Shell) bulkRestore(args []string) error {
	return s.session.RestoreDefaults()
}

func (s *Shell) bulkScale(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: bulk scale <param> <percent>")
	}
	pct, err := strconv.Atoi(strings.TrimSuffix(args[1], "%"))
	if err != nil {
		return fmt.Errorf("percent %q: %w", args[1], types.ErrInvalidPercent)
	}
	err = s.session.Scale(args[0], pct)
	var mismatch *bulk.MismatchError
	if errors.As(err, &mismatch) {
		s.log.Warn("scale rejected", "param", mismatch.Param, "baseline", mismatch.Baseline, "selected", mismatch.Selected)
	}
	return err
}

func (s *Shell) bulkAvg(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: bulk avg <param> [percent]")
	}
	pct := s.session.Slider(args[0])
	if len(args) == 2 {
		v, err := strconv.Atoi(strings.TrimSuffix(args[1], "%"))
		if err != nil {
			return fmt.Errorf("percent %q: %w", args[1], types.ErrInvalidPercent)
		}
		pct = v
	}
	if pct == 0 {
		pct = types.SliderNeutral
	}
	avg, ok := s.session.Average(args[0], pct)
	if !ok {
		s.printf("Avg: n/a\n")
		return nil
	}
	s.printf("Avg: %.2f min\n", avg)
	return nil
}

func (s *Shell) bulkEntries(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: bulk entries <tag>")
	}
	for _, e := range s.session.CommonEntries(args[0]) {
		s.printf("%s\n", e)
	}
	return nil
}

func (s *Shell) bulkAdd(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: bulk add <tag> <value>")
	}
	return s.session.AddEntry(args[0], args[1])
}

func (s *Shell) bulkRemove(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: bulk remove <tag> <value>")
	}
	return s.session.RemoveEntry(args[0], args[1])
}

func (s *Shell) bulkReplace(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: bulk replace <tag> <from> <to>")
	}
	return s.session.ReplaceEntry(args[0], args[1], args[2])
}

func (s *Shell) bulkCategory(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: bulk category <name>")
	}
	return s.session.SetCategory(args[0])
}

func (s *Shell) bulkStatus(args []string) error {
	for _, p := range types.BulkParams {
		state := "off"
		if s.session.Checked(p) {
			state = "on"
		}
		if !s.session.Enabled(p) {
			state += " (disabled)"
		}
		line := fmt.Sprintf("  %-9s check=%-15s input=%q", p, state, s.session.Input(p))
		if types.IsScalable(p) {
			line += fmt.Sprintf(" slider=%d%%", s.session.Slider(p))
		}
		s.printf("%s\n", line)
	}
	return nil
}

func (s *Shell) bulkOK(args []string) error {
	err := s.session.Accept()
	s.session = nil
	if s.ed.Active() != nil {
		s.printFields()
	}
	return err
}

func (s *Shell) bulkCancel(args []string) error {
	s.closeSession()
	return nil
}
