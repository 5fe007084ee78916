// Package bulk applies batch transformations to a selection of records:
// overwrites, multipliers, default restores, percentage scaling against a
// captured baseline, and add/remove of repeatable entries.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/mesh-intelligence/typesmith/internal/document"
	"github.com/mesh-intelligence/typesmith/internal/logger"
	"github.com/mesh-intelligence/typesmith/pkg/types"
)

// MismatchError reports a scaling request whose baseline does not line up
// with the selection.
type MismatchError struct {
	Param    string
	Baseline int
	Selected int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("scale %s: %d original values for %d selected records: %v",
		e.Param, e.Baseline, e.Selected, types.ErrFieldMismatch)
}

func (e *MismatchError) Unwrap() error { return types.ErrFieldMismatch }

// SliderStore persists slider percentages between sessions.
type SliderStore interface {
	Slider(param string, def int) (int, error)
	SetSlider(param string, percent int) error
}

// Options configures a session. Every field is optional.
type Options struct {
	Defaults      *document.Document    // Source for RestoreDefaults
	Sliders       SliderStore           // Remembers slider percentages
	View          types.ListView        // Reloaded on Accept
	Prepare       func(recordID string) // Called before a record is read for mutation
	Refresh       func(recordID string) // Called for every touched record
	SliderDefault int                   // Initial percentage when nothing is stored
	Logger        *slog.Logger
}

// Session is one bulk edit over a fixed selection. Like the document it
// edits, it must be used from a single goroutine; only the baseline capture
// runs elsewhere.
type Session struct {
	doc     *document.Document
	records []*document.Record
	opts    Options
	log     *slog.Logger

	capture *Capture
	inputs  map[string]string
	checked map[string]bool
	sliders map[string]int

	lastTouched string
	closed      bool
}

// Open snapshots the selection, starts the baseline capture and restores the
// slider percentages. Selection ids are record ids in list order.
func Open(doc *document.Document, selection []string, opts Options) (*Session, error) {
	if doc == nil {
		return nil, types.ErrNoDocument
	}
	records := make([]*document.Record, 0, len(selection))
	for _, id := range selection {
		rec, err := doc.Record(id)
		if err != nil {
			return nil, fmt.Errorf("open bulk edit: %w", err)
		}
		records = append(records, rec)
	}

	s := &Session{
		doc:     doc,
		records: records,
		opts:    opts,
		log:     logger.Or(opts.Logger).With("component", "bulk"),
		inputs:  make(map[string]string),
		checked: make(map[string]bool),
		sliders: make(map[string]int),
	}
	s.restoreSliders()

	snap := snapshot{params: types.BulkParams, texts: make(map[string][]string)}
	for _, p := range snap.params {
		for _, rec := range records {
			if el := doc.Child(rec, p); el != nil {
				snap.texts[p] = append(snap.texts[p], document.Text(el))
			}
		}
	}
	s.capture = startCapture(snap)
	s.log.Debug("bulk edit opened", "records", len(records))
	return s, nil
}

func (s *Session) restoreSliders() {
	def := s.opts.SliderDefault
	if def < types.SliderMin || def > types.SliderMax {
		def = types.SliderNeutral
	}
	for _, p := range types.ScalableParams {
		s.sliders[p] = def
		if s.opts.Sliders == nil {
			continue
		}
		v, err := s.opts.Sliders.Slider(p, def)
		if err != nil {
			s.log.Warn("load slider", "param", p, "error", err)
			continue
		}
		s.sliders[p] = v
	}
}

// Capture returns the baseline capture task.
func (s *Session) Capture() *Capture { return s.capture }

// Wait blocks until the baseline is captured or ctx ends.
func (s *Session) Wait(ctx context.Context) (Baseline, error) {
	return s.capture.Wait(ctx)
}

// Records returns the selection snapshot.
func (s *Session) Records() []*document.Record {
	out := make([]*document.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of selected records.
func (s *Session) Len() int { return len(s.records) }

// LastTouched returns the id of the most recently mutated record.
func (s *Session) LastTouched() string { return s.lastTouched }

// Closed reports whether Accept or Cancel was called.
func (s *Session) Closed() bool { return s.closed }

// prepare runs before any element of rec is looked up for mutation, so the
// owner can write pending edits of rec into the document first.
func (s *Session) prepare(rec *document.Record) {
	if s.opts.Prepare != nil {
		s.opts.Prepare(rec.ID())
	}
}

func (s *Session) touch(rec *document.Record) {
	s.lastTouched = rec.ID()
	if s.opts.Refresh != nil {
		s.opts.Refresh(rec.ID())
	}
}

func (s *Session) check() error {
	if s.closed {
		return types.ErrSessionClosed
	}
	return nil
}

func checkParam(param string) error {
	if !types.IsBulkParam(param) {
		return fmt.Errorf("%q: %w", param, types.ErrUnknownParam)
	}
	return nil
}

// SetInput records the overwrite input of param. A non-empty text is
// written to every selected record at once, creating the element where it
// is missing.
func (s *Session) SetInput(param, text string) error {
	if err := s.check(); err != nil {
		return err
	}
	if err := checkParam(param); err != nil {
		return err
	}
	s.inputs[param] = text
	if text == "" {
		return nil
	}
	for _, rec := range s.records {
		s.prepare(rec)
		s.doc.EnsureText(rec, param, text)
		s.log.Debug("set", "param", param, "value", text, "record", rec.Name())
		s.touch(rec)
	}
	return nil
}

// Input returns the overwrite input of param.
func (s *Session) Input(param string) string { return s.inputs[param] }

// Enabled reports whether the multiplier checkbox of param is usable, which
// is the case while its overwrite input is empty.
func (s *Session) Enabled(param string) bool { return s.inputs[param] == "" }

// SetChecked sets the multiplier checkbox of param.
func (s *Session) SetChecked(param string, on bool) error {
	if err := s.check(); err != nil {
		return err
	}
	if err := checkParam(param); err != nil {
		return err
	}
	s.checked[param] = on
	return nil
}

// Checked reports the multiplier checkbox of param, regardless of whether
// it is enabled.
func (s *Session) Checked(param string) bool { return s.checked[param] }

// Multiply applies m to every checked and enabled parameter of every
// selected record holding a non-negative integer. Other values are skipped.
// Standard restores defaults instead.
func (s *Session) Multiply(m Multiplier) error {
	if err := s.check(); err != nil {
		return err
	}
	if m == Standard {
		return s.RestoreDefaults()
	}
	for _, p := range types.BulkParams {
		if !s.checked[p] || !s.Enabled(p) {
			continue
		}
		for _, rec := range s.records {
			s.prepare(rec)
			el := s.doc.Child(rec, p)
			if el == nil {
				s.log.Debug("multiply skipped, missing", "param", p, "record", rec.Name())
				continue
			}
			v, ok := parseCount(document.Text(el))
			if !ok {
				s.log.Debug("multiply skipped, not a number", "param", p, "record", rec.Name())
				continue
			}
			out, ok := m.Apply(v)
			if !ok {
				s.log.Debug("multiply skipped, overflow", "param", p, "record", rec.Name(), "value", v)
				continue
			}
			s.doc.SetText(el, strconv.FormatInt(out, 10))
			s.touch(rec)
		}
	}
	return nil
}

// RestoreDefaults overwrites every checked parameter with the value of the
// same-named record in the defaults document. Records or values absent from
// the defaults are skipped.
func (s *Session) RestoreDefaults() error {
	if err := s.check(); err != nil {
		return err
	}
	if s.opts.Defaults == nil {
		return types.ErrNoDefaults
	}
	for _, p := range types.BulkParams {
		if !s.checked[p] {
			continue
		}
		for _, rec := range s.records {
			def, err := s.opts.Defaults.FindRecord(rec.Name())
			if err != nil {
				s.log.Debug("restore skipped, no default record", "param", p, "record", rec.Name())
				continue
			}
			el := s.opts.Defaults.Child(def, p)
			if el == nil {
				s.log.Debug("restore skipped, no default value", "param", p, "record", rec.Name())
				continue
			}
			s.prepare(rec)
			s.doc.EnsureText(rec, p, document.Text(el))
			s.touch(rec)
		}
	}
	return nil
}

// Slider returns the current percentage of a scalable parameter.
func (s *Session) Slider(param string) int { return s.sliders[param] }

// Scale sets param on every selected record to floor(baseline*percent/100)
// using the value captured at session start. It waits for the capture. When
// the baseline and the selection differ in length nothing changes and a
// *MismatchError is returned.
func (s *Session) Scale(param string, percent int) error {
	if err := s.check(); err != nil {
		return err
	}
	if err := checkParam(param); err != nil {
		return err
	}
	if !types.IsScalable(param) {
		return fmt.Errorf("%q: %w", param, types.ErrNotScalable)
	}
	if percent < types.SliderMin || percent > types.SliderMax {
		return fmt.Errorf("%d%%: %w", percent, types.ErrInvalidPercent)
	}

	<-s.capture.Done()
	base, _ := s.capture.Result()
	values := base[param]
	if len(values) != len(s.records) {
		return &MismatchError{Param: param, Baseline: len(values), Selected: len(s.records)}
	}

	s.sliders[param] = percent
	for i, rec := range s.records {
		s.prepare(rec)
		el := s.doc.Child(rec, param)
		if el == nil {
			s.log.Debug("scale skipped, missing", "param", param, "record", rec.Name())
			continue
		}
		if _, ok := parseCount(document.Text(el)); !ok {
			s.log.Debug("scale skipped, not a number", "param", param, "record", rec.Name())
			continue
		}
		scaled, ok := mulCount(values[i], int64(percent))
		if !ok {
			s.log.Debug("scale skipped, overflow", "param", param, "record", rec.Name(), "value", values[i])
			continue
		}
		s.doc.SetText(el, strconv.FormatInt(scaled/100, 10))
		s.touch(rec)
	}
	return nil
}

// Average returns the mean captured value of param scaled by percent, in
// minutes. It reports false while the capture runs or when nothing was
// captured.
func (s *Session) Average(param string, percent int) (float64, bool) {
	base, ok := s.capture.Result()
	if !ok || len(base[param]) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range base[param] {
		sum += float64(v)
	}
	avg := sum / float64(len(base[param]))
	return avg * float64(percent) / 100 / 60, true
}

// Accept stores the slider percentages, reloads the list selecting the last
// touched record and closes the session.
func (s *Session) Accept() error {
	if err := s.check(); err != nil {
		return err
	}
	s.closed = true

	var errs []error
	if s.opts.Sliders != nil {
		for _, p := range types.ScalableParams {
			if err := s.opts.Sliders.SetSlider(p, s.sliders[p]); err != nil {
				errs = append(errs, fmt.Errorf("save slider %s: %w", p, err))
			}
		}
	}
	if s.opts.View != nil {
		s.opts.View.Reload(s.lastTouched)
	}
	s.log.Debug("bulk edit accepted", "last", s.lastTouched)
	return errors.Join(errs...)
}

// Cancel closes the session. Edits already applied stay in the document.
func (s *Session) Cancel() {
	s.closed = true
	s.log.Debug("bulk edit cancelled")
}
