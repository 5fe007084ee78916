// Package editor keeps the document, the record shown in the detail view and
// the per-record undo histories consistent. At most one record is active; its
// pending edits live in field handles until they are flushed into the
// document, which happens before any other reader looks at it.
package editor

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/mesh-intelligence/typesmith/internal/bulk"
	"github.com/mesh-intelligence/typesmith/internal/document"
	"github.com/mesh-intelligence/typesmith/internal/fields"
	"github.com/mesh-intelligence/typesmith/internal/logger"
	"github.com/mesh-intelligence/typesmith/internal/state"
	"github.com/mesh-intelligence/typesmith/internal/undo"
	"github.com/mesh-intelligence/typesmith/pkg/types"
)

// Options configures an Editor. Every field is optional.
type Options struct {
	Defaults      *document.Document // Source for bulk default restores
	Store         *state.Store       // Recent files and slider percentages
	View          types.ListView     // Notified when rows change
	SliderDefault int
	Logger        *slog.Logger
}

// Editor is the core facade the UI drives. It is not safe for concurrent
// use.
type Editor struct {
	doc       *document.Document
	histories *undo.Registry

	active *document.Record
	layout *fields.Layout

	defaults      *document.Document
	store         *state.Store
	view          types.ListView
	sliderDefault int
	log           *slog.Logger
}

// New creates an editor with no document.
func New(opts Options) *Editor {
	return &Editor{
		histories:     undo.NewRegistry(),
		defaults:      opts.Defaults,
		store:         opts.Store,
		view:          opts.View,
		sliderDefault: opts.SliderDefault,
		log:           logger.Or(opts.Logger).With("component", "editor"),
	}
}

// SetView attaches the list view.
func (e *Editor) SetView(v types.ListView) { e.view = v }

// Document returns the loaded document, or nil.
func (e *Editor) Document() *document.Document { return e.doc }

// Histories returns the undo registry.
func (e *Editor) Histories() *undo.Registry { return e.histories }

// Open loads the document at path. On failure the current document, the
// active record and the histories are left untouched.
func (e *Editor) Open(path string) error {
	doc, err := document.LoadFile(path)
	if err != nil {
		e.log.Error("open failed", "path", path, "error", err)
		return err
	}
	e.SetDocument(doc)
	if e.store != nil {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if err := e.store.TouchRecent(abs); err != nil {
			e.log.Warn("remember recent file", "path", abs, "error", err)
		}
	}
	e.log.Info("opened", "path", path, "records", doc.Len())
	return nil
}

// SetDocument replaces the document. Histories of the previous document are
// dropped.
func (e *Editor) SetDocument(doc *document.Document) {
	e.detach()
	e.histories.Clear()
	e.doc = doc
	if e.view != nil {
		e.view.Reload("")
	}
}

// Close drops the document and every history.
func (e *Editor) Close() {
	e.detach()
	e.histories.Clear()
	e.doc = nil
	if e.view != nil {
		e.view.Reload("")
	}
}

// Save flushes pending edits and writes the document to its default target.
// It returns the path written.
func (e *Editor) Save() (string, error) {
	if e.doc == nil {
		return "", types.ErrNoDocument
	}
	target := e.doc.Target()
	return target, e.save(target)
}

// SaveAs flushes pending edits, writes the document to path and makes path
// the default target.
func (e *Editor) SaveAs(path string) error {
	if e.doc == nil {
		return types.ErrNoDocument
	}
	if err := e.save(path); err != nil {
		return err
	}
	e.doc.SetDefaultTarget(path)
	return nil
}

func (e *Editor) save(path string) error {
	e.Flush()
	if err := e.doc.SaveFile(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	e.log.Info("saved", "path", path)
	return nil
}

// Active returns the active record, or nil.
func (e *Editor) Active() *document.Record { return e.active }

// Layout returns the handles of the active record, or nil.
func (e *Editor) Layout() *fields.Layout { return e.layout }

// History returns the undo history of the active record, or nil.
func (e *Editor) History() *undo.History {
	if e.active == nil {
		return nil
	}
	return e.histories.Get(e.active.ID())
}

// Activate makes the record with the given id active. The previously active
// record is flushed first.
func (e *Editor) Activate(id string) error {
	if e.doc == nil {
		return types.ErrNoDocument
	}
	rec, err := e.doc.Record(id)
	if err != nil {
		return err
	}
	e.Flush()
	e.detach()
	e.active = rec
	e.layout = fields.Build(e.doc, rec)
	e.histories.Get(rec.ID())
	e.log.Debug("activated", "record", rec.Name(), "fields", e.layout.Len())
	return nil
}

func (e *Editor) detach() {
	e.active = nil
	e.layout = nil
}

// Flush writes the active handles into the document. It is a no-op without
// an active record and may be called any number of times.
func (e *Editor) Flush() {
	if e.active == nil {
		return
	}
	e.layout.WriteBack(e.doc, e.active)
	if e.view != nil {
		e.view.RefreshRow(e.active.ID())
	}
}

// Reload rebuilds the handles of the active record from the document
// without flushing, so changes made directly to the document show up. It
// does nothing unless id is the active record.
func (e *Editor) Reload(id string) {
	if e.active == nil || e.active.ID() != id {
		return
	}
	e.layout = fields.Build(e.doc, e.active)
}

// Edit sets the field with the given key through the undo history. It
// reports false when the value equals the current one.
func (e *Editor) Edit(key string, value any) (bool, error) {
	if e.active == nil {
		return false, types.ErrNoActiveRecord
	}
	h, ok := e.layout.Handle(key)
	if !ok {
		return false, fmt.Errorf("edit %s: %w", key, types.ErrFieldNotFound)
	}
	v, err := fields.Coerce(h.Kind, value)
	if err != nil {
		return false, fmt.Errorf("edit %s: %w", fields.Label(h), err)
	}
	desc := fmt.Sprintf("%s: %v", fields.Label(h), v)
	cmd := undo.NewCommand(&slot{e: e, recordID: e.active.ID(), key: key}, v, desc)
	return e.History().Push(cmd), nil
}

// Undo reverts the last edit of the active record.
func (e *Editor) Undo() bool {
	if h := e.History(); h != nil {
		return h.Undo()
	}
	return false
}

// Redo re-applies the last undone edit of the active record.
func (e *Editor) Redo() bool {
	if h := e.History(); h != nil {
		return h.Redo()
	}
	return false
}

// AddField adds a repeatable entry to the active record. Structural edits
// are not recorded in the undo history.
func (e *Editor) AddField(tag, value string) (*fields.Handle, error) {
	if e.active == nil {
		return nil, types.ErrNoActiveRecord
	}
	return e.layout.Insert(tag, value)
}

// RemoveField drops a repeatable entry from the active record.
func (e *Editor) RemoveField(key string) error {
	if e.active == nil {
		return types.ErrNoActiveRecord
	}
	return e.layout.Remove(key)
}

// Filter returns the records whose category is in categories; see
// document.FilterByCategory. Pending edits are flushed first so category
// changes are honoured.
func (e *Editor) Filter(categories map[string]bool) ([]*document.Record, error) {
	if e.doc == nil {
		return nil, types.ErrNoDocument
	}
	e.Flush()
	return e.doc.FilterByCategory(categories), nil
}

// OpenBulkEdit flushes pending edits and starts a bulk edit over the records
// with the given ids. The active record is flushed again before the session
// mutates it, so edits made while the session is open are kept. Every record
// the session touches is reloaded into the detail view when active and
// refreshed in the list.
func (e *Editor) OpenBulkEdit(selection []string) (*bulk.Session, error) {
	if e.doc == nil {
		return nil, types.ErrNoDocument
	}
	e.Flush()
	opts := bulk.Options{
		Defaults:      e.defaults,
		View:          e.view,
		SliderDefault: e.sliderDefault,
		Logger:        e.log,
		Prepare: func(id string) {
			if e.active != nil && e.active.ID() == id {
				e.Flush()
			}
		},
		Refresh: func(id string) {
			e.Reload(id)
			if e.view != nil {
				e.view.RefreshRow(id)
			}
		},
	}
	if e.store != nil {
		opts.Sliders = e.store
	}
	return bulk.Open(e.doc, selection, opts)
}

// slot resolves a field of one record by key each time it is read or
// written, so commands keep working after the layout is rebuilt. Writes to a
// record that is not active are dropped.
type slot struct {
	e        *Editor
	recordID string
	key      string
}

func (s *slot) handle() *fields.Handle {
	if s.e.layout == nil || s.e.layout.RecordID() != s.recordID {
		return nil
	}
	h, _ := s.e.layout.Handle(s.key)
	return h
}

func (s *slot) Value() any {
	if h := s.handle(); h != nil {
		return h.Value()
	}
	return nil
}

func (s *slot) SetValue(v any) {
	if h := s.handle(); h != nil {
		h.SetValue(v)
	}
}
