package fields

import (
	"slices"

	"github.com/beevik/etree"

	"github.com/mesh-intelligence/typesmith/internal/document"
	"github.com/mesh-intelligence/typesmith/pkg/types"
)

// Layout is the ordered list of handles for one record: identity, flags,
// category, usage, value, tag, then the remaining scalars in document order.
type Layout struct {
	recordID string
	handles  []*Handle
}

// Build enumerates the editable fields of rec.
func Build(doc *document.Document, rec *document.Record) *Layout {
	l := &Layout{recordID: rec.ID()}
	l.handles = append(l.handles, &Handle{
		Key:   KeyName,
		Kind:  types.KindText,
		value: rec.Name(),
	})

	if flags := doc.Child(rec, types.TagFlags); flags != nil {
		for _, a := range flags.Attr {
			l.handles = append(l.handles, &Handle{
				Key:   flagKey(a.Key),
				Kind:  types.KindBoolean,
				Tag:   types.TagFlags,
				Flag:  a.Key,
				value: a.Value == types.FlagTrue,
				raw:   a.Value,
			})
		}
	}

	for _, el := range doc.Children(rec, types.TagCategory) {
		l.handles = append(l.handles, &Handle{
			Key:   doc.ElementID(el),
			Kind:  types.KindChoice,
			Tag:   types.TagCategory,
			value: document.AttrValue(el, types.AttrName),
		})
	}

	for _, tag := range types.RepeatableTags {
		for _, el := range doc.Children(rec, tag) {
			l.handles = append(l.handles, &Handle{
				Key:   doc.ElementID(el),
				Kind:  types.KindRepeatable,
				Tag:   tag,
				value: document.AttrValue(el, types.AttrName),
			})
		}
	}

	for _, el := range doc.Elements(rec) {
		if types.IsStructural(el.Tag) {
			continue
		}
		l.handles = append(l.handles, &Handle{
			Key:   doc.ElementID(el),
			Kind:  types.KindText,
			Tag:   el.Tag,
			value: document.Text(el),
		})
	}
	return l
}

// RecordID returns the id of the record the layout was built from.
func (l *Layout) RecordID() string { return l.recordID }

// Handles returns the handles in layout order.
func (l *Layout) Handles() []*Handle { return slices.Clone(l.handles) }

// Len returns the number of handles.
func (l *Layout) Len() int { return len(l.handles) }

// Handle returns the handle with the given key.
func (l *Layout) Handle(key string) (*Handle, bool) {
	for _, h := range l.handles {
		if h.Key == key {
			return h, true
		}
	}
	return nil, false
}

// Find returns the first handle matching tag, or the identity handle when tag
// is "name" and no element carries that tag.
func (l *Layout) Find(tag string) (*Handle, bool) {
	for _, h := range l.handles {
		if h.Tag == tag || (h.Kind == types.KindBoolean && h.Flag == tag) {
			return h, true
		}
	}
	if tag == types.AttrName {
		return l.handles[0], true
	}
	return nil, false
}

// ByTag returns the handles of the given tag in layout order.
func (l *Layout) ByTag(tag string) []*Handle {
	var out []*Handle
	for _, h := range l.handles {
		if h.Tag == tag {
			out = append(out, h)
		}
	}
	return out
}

// insertAnchors lists, per repeatable tag, the tags whose last handle the new
// handle goes after, in fallback order. The identity handle is the final
// fallback.
var insertAnchors = map[string][]string{
	types.TagUsage: {types.TagUsage, types.TagCategory},
	types.TagValue: {types.TagUsage, types.TagCategory},
	types.TagTag:   {types.TagValue, types.TagUsage, types.TagCategory},
}

// InsertPosition returns the index a new handle of tag is inserted at.
func (l *Layout) InsertPosition(tag string) int {
	for _, anchor := range insertAnchors[tag] {
		if i := l.lastIndex(anchor); i >= 0 {
			return i + 1
		}
	}
	return 1
}

func (l *Layout) lastIndex(tag string) int {
	last := -1
	for i, h := range l.handles {
		if h.Tag == tag {
			last = i
		}
	}
	return last
}

// Insert adds a repeatable handle for tag with the given value at the
// position InsertPosition reports. The new handle has no element until the
// layout is written back.
func (l *Layout) Insert(tag, value string) (*Handle, error) {
	if !types.IsRepeatable(tag) {
		return nil, types.ErrNotRepeatable
	}
	h := &Handle{
		Key:   document.NewID(),
		Kind:  types.KindRepeatable,
		Tag:   tag,
		value: value,
	}
	pos := l.InsertPosition(tag)
	l.handles = slices.Insert(l.handles, pos, h)
	return h, nil
}

// Remove drops the repeatable handle with the given key.
func (l *Layout) Remove(key string) error {
	i := slices.IndexFunc(l.handles, func(h *Handle) bool { return h.Key == key })
	if i < 0 {
		return types.ErrFieldNotFound
	}
	if l.handles[i].Kind != types.KindRepeatable {
		return types.ErrNotRepeatable
	}
	l.handles = slices.Delete(l.handles, i, i+1)
	return nil
}

// rebuildOrder lists the element tags WriteBack rebuilds, with the tags a
// rebuilt group is anchored after when the record had none of them.
var rebuildOrder = []struct {
	tag     string
	anchors []string
}{
	{types.TagCategory, []string{types.TagFlags}},
	{types.TagUsage, []string{types.TagCategory}},
	{types.TagValue, []string{types.TagUsage, types.TagCategory}},
	{types.TagTag, []string{types.TagValue, types.TagUsage, types.TagCategory}},
}

// WriteBack stores every handle value into rec. Category and repeatable
// groups are rebuilt: all existing elements of the tag are removed and one
// element per surviving handle is inserted where the group was, bound to the
// handle key so the handle keeps its identity.
func (l *Layout) WriteBack(doc *document.Document, rec *document.Record) {
	byID := make(map[string]*etree.Element)
	for _, el := range doc.Elements(rec) {
		byID[doc.ElementID(el)] = el
	}

	for _, h := range l.handles {
		switch {
		case h.IsIdentity():
			doc.SetName(rec, h.Text())
		case h.Kind == types.KindBoolean:
			flags := doc.Child(rec, types.TagFlags)
			if flags == nil {
				flags = doc.AddSubElement(rec, types.TagFlags)
			}
			doc.SetAttribute(flags, h.Flag, h.flagText())
		case h.Kind == types.KindText:
			if el, ok := byID[h.Key]; ok {
				doc.SetText(el, h.Text())
			}
		}
	}

	for _, group := range rebuildOrder {
		l.rebuild(doc, rec, group.tag, group.anchors)
	}
}

func (l *Layout) rebuild(doc *document.Document, rec *document.Record, tag string, anchors []string) {
	existing := doc.Children(rec, tag)
	pos := -1
	if len(existing) > 0 {
		pos = existing[0].Index()
	} else {
		for _, a := range anchors {
			if els := doc.Children(rec, a); len(els) > 0 {
				pos = els[len(els)-1].Index() + 1
				break
			}
		}
	}
	for _, el := range existing {
		doc.RemoveSubElement(rec, el)
	}
	for _, h := range l.ByTag(tag) {
		el := doc.InsertSubElement(rec, pos, tag, document.Attr{Key: types.AttrName, Value: h.Text()})
		doc.BindID(el, h.Key)
		if pos >= 0 {
			pos = el.Index() + 1
		}
	}
}
