package document

import (
	"github.com/beevik/etree"

	"github.com/mesh-intelligence/typesmith/pkg/types"
)

// Attr is one attribute for AddSubElement.
type Attr struct {
	Key   string
	Value string
}

// Child returns the first sub-element of rec with the given tag, or nil.
func (d *Document) Child(rec *Record, tag string) *etree.Element {
	return rec.elem.SelectElement(tag)
}

// Children returns every sub-element of rec with the given tag.
func (d *Document) Children(rec *Record, tag string) []*etree.Element {
	return rec.elem.SelectElements(tag)
}

// Elements returns every sub-element of rec in document order.
func (d *Document) Elements(rec *Record) []*etree.Element {
	return rec.elem.ChildElements()
}

// Text returns the text content of el.
func Text(el *etree.Element) string {
	return el.Text()
}

// AttrValue returns the value of attribute key on el, or "".
func AttrValue(el *etree.Element, key string) string {
	return el.SelectAttrValue(key, "")
}

// SetAttribute sets attribute key on el.
func (d *Document) SetAttribute(el *etree.Element, key, value string) {
	el.CreateAttr(key, value)
}

// SetText replaces the text content of el.
func (d *Document) SetText(el *etree.Element, text string) {
	el.SetText(text)
}

// SetName renames rec. Uniqueness is not enforced.
func (d *Document) SetName(rec *Record, name string) {
	rec.elem.CreateAttr(types.AttrName, name)
}

// AddSubElement appends a new sub-element to rec.
func (d *Document) AddSubElement(rec *Record, tag string, attrs ...Attr) *etree.Element {
	el := rec.elem.CreateElement(tag)
	for _, a := range attrs {
		el.CreateAttr(a.Key, a.Value)
	}
	return el
}

// InsertSubElement inserts a new sub-element at token index of rec. An index
// past the end appends.
func (d *Document) InsertSubElement(rec *Record, index int, tag string, attrs ...Attr) *etree.Element {
	el := etree.NewElement(tag)
	for _, a := range attrs {
		el.CreateAttr(a.Key, a.Value)
	}
	if index < 0 || index >= len(rec.elem.Child) {
		rec.elem.AddChild(el)
	} else {
		rec.elem.InsertChildAt(index, el)
	}
	return el
}

// RemoveSubElement removes el from rec and forgets its id. It reports
// whether el was a child of rec.
func (d *Document) RemoveSubElement(rec *Record, el *etree.Element) bool {
	if rec.elem.RemoveChild(el) == nil {
		return false
	}
	delete(d.ids, el)
	return true
}

// EnsureText sets the text of the first tag sub-element of rec, creating it
// if absent, and returns it.
func (d *Document) EnsureText(rec *Record, tag, text string) *etree.Element {
	el := rec.elem.SelectElement(tag)
	if el == nil {
		el = rec.elem.CreateElement(tag)
	}
	el.SetText(text)
	return el
}
