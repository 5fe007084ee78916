// Package undo keeps one independent undo/redo history per record.
package undo

// Target is the value a command edits.
type Target interface {
	Value() any
	SetValue(v any)
}

// Command is a reversible edit of one target. The old value is captured when
// the command is created, not when it is pushed.
type Command struct {
	Target      Target
	Old         any
	New         any
	Description string
}

// NewCommand snapshots the current value of target as the old value.
func NewCommand(target Target, newValue any, description string) *Command {
	return &Command{
		Target:      target,
		Old:         target.Value(),
		New:         newValue,
		Description: description,
	}
}

// Redo applies the new value.
func (c *Command) Redo() { c.Target.SetValue(c.New) }

// Undo restores the old value.
func (c *Command) Undo() { c.Target.SetValue(c.Old) }

// History is an ordered list of commands with a cursor. Commands before the
// cursor are applied; commands at or after it have been undone.
type History struct {
	commands []*Command
	cursor   int
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// Push applies cmd and records it, dropping any undone commands. A command
// whose new value equals the target's current value is ignored and Push
// returns false.
func (h *History) Push(cmd *Command) bool {
	if cmd.Target.Value() == cmd.New {
		return false
	}
	cmd.Redo()
	h.commands = append(h.commands[:h.cursor], cmd)
	h.cursor++
	return true
}

// Undo reverts the command before the cursor. It reports false when there is
// nothing to undo.
func (h *History) Undo() bool {
	if h.cursor == 0 {
		return false
	}
	h.cursor--
	h.commands[h.cursor].Undo()
	return true
}

// Redo re-applies the command at the cursor. It reports false when there is
// nothing to redo.
func (h *History) Redo() bool {
	if h.cursor == len(h.commands) {
		return false
	}
	h.commands[h.cursor].Redo()
	h.cursor++
	return true
}

// CanUndo reports whether Undo would move the cursor.
func (h *History) CanUndo() bool { return h.cursor > 0 }

// CanRedo reports whether Redo would move the cursor.
func (h *History) CanRedo() bool { return h.cursor < len(h.commands) }

// Len returns the number of recorded commands, including undone ones.
func (h *History) Len() int { return len(h.commands) }

// Cursor returns the number of applied commands.
func (h *History) Cursor() int { return h.cursor }

// UndoText describes the command Undo would revert, or "".
func (h *History) UndoText() string {
	if !h.CanUndo() {
		return ""
	}
	return h.commands[h.cursor-1].Description
}

// RedoText describes the command Redo would apply, or "".
func (h *History) RedoText() string {
	if !h.CanRedo() {
		return ""
	}
	return h.commands[h.cursor].Description
}

// Registry owns the histories of one open document, keyed by record id.
type Registry struct {
	histories map[string]*History
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{histories: make(map[string]*History)}
}

// Get returns the history of recordID, creating it on first use.
func (r *Registry) Get(recordID string) *History {
	h, ok := r.histories[recordID]
	if !ok {
		h = NewHistory()
		r.histories[recordID] = h
	}
	return h
}

// Has reports whether recordID already has a history.
func (r *Registry) Has(recordID string) bool {
	_, ok := r.histories[recordID]
	return ok
}

// Len returns the number of histories.
func (r *Registry) Len() int { return len(r.histories) }

// Clear drops every history. Called when the document is closed.
func (r *Registry) Clear() {
	clear(r.histories)
}
