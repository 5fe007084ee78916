package bulk

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/mesh-intelligence/typesmith/internal/document"
	"github.com/mesh-intelligence/typesmith/pkg/types"
)

// entryAnchors lists, per tag, the groups a new element goes after, in
// fallback order. Without any of them the element is appended.
var entryAnchors = map[string][]string{
	types.TagCategory: {types.TagFlags},
	types.TagUsage:    {types.TagUsage, types.TagCategory, types.TagFlags},
	types.TagValue:    {types.TagValue, types.TagUsage, types.TagCategory, types.TagFlags},
	types.TagTag:      {types.TagTag, types.TagValue, types.TagUsage, types.TagCategory, types.TagFlags},
}

func (s *Session) insertEntry(rec *document.Record, tag, value string) *etree.Element {
	pos := -1
	for _, a := range entryAnchors[tag] {
		if els := s.doc.Children(rec, a); len(els) > 0 {
			pos = els[len(els)-1].Index() + 1
			break
		}
	}
	return s.doc.InsertSubElement(rec, pos, tag, document.Attr{Key: types.AttrName, Value: value})
}

func hasEntry(doc *document.Document, rec *document.Record, tag, value string) bool {
	for _, el := range doc.Children(rec, tag) {
		if document.AttrValue(el, types.AttrName) == value {
			return true
		}
	}
	return false
}

func checkEntry(tag, value string) error {
	if !types.IsRepeatable(tag) {
		return fmt.Errorf("%q: %w", tag, types.ErrNotRepeatable)
	}
	if value == "" {
		return fmt.Errorf("%s entry: %w", tag, types.ErrEmptyValue)
	}
	return nil
}

// AddEntry adds a tag entry named value to every selected record that has
// none yet.
func (s *Session) AddEntry(tag, value string) error {
	if err := s.check(); err != nil {
		return err
	}
	if err := checkEntry(tag, value); err != nil {
		return err
	}
	for _, rec := range s.records {
		s.prepare(rec)
		if hasEntry(s.doc, rec, tag, value) {
			s.log.Debug("entry exists", "tag", tag, "value", value, "record", rec.Name())
			continue
		}
		s.insertEntry(rec, tag, value)
		s.touch(rec)
	}
	return nil
}

// RemoveEntry removes every tag entry named value from the selected records.
func (s *Session) RemoveEntry(tag, value string) error {
	if err := s.check(); err != nil {
		return err
	}
	if err := checkEntry(tag, value); err != nil {
		return err
	}
	for _, rec := range s.records {
		s.prepare(rec)
		removed := false
		for _, el := range s.doc.Children(rec, tag) {
			if document.AttrValue(el, types.AttrName) == value {
				removed = s.doc.RemoveSubElement(rec, el) || removed
			}
		}
		if removed {
			s.touch(rec)
		}
	}
	return nil
}

// ReplaceEntry renames every tag entry named from to to. A record that
// already has a to entry loses its from entries instead, so no duplicates
// appear.
func (s *Session) ReplaceEntry(tag, from, to string) error {
	if err := s.check(); err != nil {
		return err
	}
	if err := checkEntry(tag, from); err != nil {
		return err
	}
	if err := checkEntry(tag, to); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	for _, rec := range s.records {
		s.prepare(rec)
		changed := false
		for _, el := range s.doc.Children(rec, tag) {
			if document.AttrValue(el, types.AttrName) != from {
				continue
			}
			if hasEntry(s.doc, rec, tag, to) {
				s.doc.RemoveSubElement(rec, el)
			} else {
				s.doc.SetAttribute(el, types.AttrName, to)
			}
			changed = true
		}
		if changed {
			s.touch(rec)
		}
	}
	return nil
}

// SetCategory sets the category of every selected record, creating the
// element where it is missing.
func (s *Session) SetCategory(name string) error {
	if err := s.check(); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("category: %w", types.ErrEmptyValue)
	}
	for _, rec := range s.records {
		s.prepare(rec)
		if el := s.doc.Child(rec, types.TagCategory); el != nil {
			s.doc.SetAttribute(el, types.AttrName, name)
		} else {
			s.insertEntry(rec, types.TagCategory, name)
		}
		s.touch(rec)
	}
	return nil
}

// CommonEntries returns the distinct tag entry names across the selection,
// in first-seen order.
func (s *Session) CommonEntries(tag string) []string {
	for _, rec := range s.records {
		s.prepare(rec)
	}
	seen := make(map[string]bool)
	var out []string
	for _, rec := range s.records {
		for _, el := range s.doc.Children(rec, tag) {
			name := document.AttrValue(el, types.AttrName)
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}
