// Package document holds the parsed item document and the query and mutation
// primitives the editor and the bulk edit engine build on. It knows nothing
// about fields, undo or views.
package document

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/mesh-intelligence/typesmith/pkg/types"
)

// ParseError reports a document that is not well-formed.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("parse document: %v", e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

// Unwrap returns both the cause and types.ErrParse so callers can match
// either with errors.Is.
func (e *ParseError) Unwrap() []error {
	return []error{types.ErrParse, e.Err}
}

// Record is one item entry of the document. Its ID is assigned at load time
// and never changes, unlike the user-editable name.
type Record struct {
	id   string
	elem *etree.Element
}

// ID returns the stable record id.
func (r *Record) ID() string { return r.id }

// Name returns the current display name.
func (r *Record) Name() string { return r.elem.SelectAttrValue(types.AttrName, "") }

// Element returns the underlying element.
func (r *Record) Element() *etree.Element { return r.elem }

// Document is the in-memory item document. It is not safe for concurrent
// mutation.
type Document struct {
	tree    *etree.Document
	root    *etree.Element
	records []*Record
	byID    map[string]*Record
	ids     map[*etree.Element]string
	source  string
}

// Load parses a document from r. The error wraps types.ErrParse when the
// input is not well-formed or has no root element.
func Load(r io.Reader) (*Document, error) {
	return load(r, "")
}

// LoadFile parses the document stored at path.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	doc, err := load(f, path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func load(r io.Reader, source string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if err := checkWellFormed(data); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}

	tree := etree.NewDocument()
	tree.ReadSettings.CharsetReader = charsetReader
	if err := tree.ReadFromBytes(data); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	root := tree.Root()
	if root == nil {
		return nil, &ParseError{Source: source, Err: errors.New("no root element")}
	}

	d := &Document{
		tree:   tree,
		root:   root,
		byID:   make(map[string]*Record),
		ids:    make(map[*etree.Element]string),
		source: source,
	}
	for _, el := range root.SelectElements(types.TagRecord) {
		rec := &Record{id: d.ElementID(el), elem: el}
		d.records = append(d.records, rec)
		d.byID[rec.id] = rec
	}
	return d, nil
}

// checkWellFormed runs the strict decoder over data. The tree builder only
// sees raw tokens, so mismatched or unclosed tags are caught here.
func checkWellFormed(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charsetReader
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Source returns the path the document was loaded from, if any.
func (d *Document) Source() string { return d.source }

// Root returns the root element.
func (d *Document) Root() *etree.Element { return d.root }

// DefaultTarget returns the save target remembered in the root file
// attribute, or "" when absent.
func (d *Document) DefaultTarget() string {
	return d.root.SelectAttrValue(types.AttrFile, "")
}

// SetDefaultTarget records path in the root file attribute.
func (d *Document) SetDefaultTarget(path string) {
	d.root.CreateAttr(types.AttrFile, path)
}

// Records returns all records in document order.
func (d *Document) Records() []*Record {
	return slices.Clone(d.records)
}

// Len returns the number of records.
func (d *Document) Len() int { return len(d.records) }

// FindAll returns the direct children of the root with the given tag.
func (d *Document) FindAll(tag string) []*etree.Element {
	return d.root.SelectElements(tag)
}

// Record returns the record with the given id.
func (d *Document) Record(id string) (*Record, error) {
	rec, ok := d.byID[id]
	if !ok {
		return nil, types.ErrRecordNotFound
	}
	return rec, nil
}

// FindRecord returns the first record whose name equals name.
func (d *Document) FindRecord(name string) (*Record, error) {
	for _, rec := range d.records {
		if rec.Name() == name {
			return rec, nil
		}
	}
	return nil, types.ErrRecordNotFound
}

// FilterByCategory returns the records whose category name is in categories.
// A nil set means no filter was requested and every record is returned; an
// empty non-nil set hides everything.
func (d *Document) FilterByCategory(categories map[string]bool) []*Record {
	if categories == nil {
		return d.Records()
	}
	var out []*Record
	for _, rec := range d.records {
		cat := rec.elem.SelectElement(types.TagCategory)
		if cat == nil {
			continue
		}
		if categories[cat.SelectAttrValue(types.AttrName, "")] {
			out = append(out, rec)
		}
	}
	return out
}

// Categories returns the distinct category names present, in first-seen order.
func (d *Document) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range d.records {
		cat := rec.elem.SelectElement(types.TagCategory)
		if cat == nil {
			continue
		}
		name := cat.SelectAttrValue(types.AttrName, "")
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// ElementID returns the opaque id of el, assigning a new one on first use.
func (d *Document) ElementID(el *etree.Element) string {
	if id, ok := d.ids[el]; ok {
		return id
	}
	id := NewID()
	d.ids[el] = id
	return id
}

// BindID assigns id to el, replacing any id it had.
func (d *Document) BindID(el *etree.Element, id string) {
	d.ids[el] = id
}

// NewID generates a new UUID v7 for record, element and field ids.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
