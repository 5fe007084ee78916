package document

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/typesmith/pkg/types"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes" ?>
<types file="mission/db/types.xml">
    <type name="AKM">
        <nominal>5</nominal>
        <lifetime>3600</lifetime>
        <restock>0</restock>
        <min>2</min>
        <quantmin>-1</quantmin>
        <flags count_in_cargo="0" count_in_hoarder="0" count_in_map="1" count_in_player="0" crafted="0" deloot="0"/>
        <category name="weapons"/>
        <usage name="Military"/>
        <usage name="Police"/>
        <value name="Tier3"/>
        <tag name="shelves"/>
    </type>
    <type name="Apple">
        <nominal>40</nominal>
        <lifetime>7200</lifetime>
        <category name="food"/>
        <usage name="Farm"/>
    </type>
    <type name="Rag">
        <nominal>20</nominal>
    </type>
</types>
`

func loadSample(t *testing.T) *Document {
	t.Helper()
	doc, err := Load(strings.NewReader(sampleXML))
	require.NoError(t, err)
	return doc
}

func names(recs []*Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Name())
	}
	return out
}

func TestLoad(t *testing.T) {
	doc := loadSample(t)

	assert.Equal(t, 3, doc.Len())
	assert.Equal(t, []string{"AKM", "Apple", "Rag"}, names(doc.Records()))
	assert.Equal(t, "mission/db/types.xml", doc.DefaultTarget())
	assert.Len(t, doc.FindAll(types.TagRecord), 3)

	ids := make(map[string]bool)
	for _, rec := range doc.Records() {
		assert.NotEmpty(t, rec.ID())
		ids[rec.ID()] = true
	}
	assert.Len(t, ids, 3, "record ids must be unique")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"unclosed element", "<types><type name=\"AKM\">"},
		{"mismatched tags", "<types><type></types></type>"},
		{"text only", "not xml at all"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Load(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Nil(t, doc)
			assert.True(t, errors.Is(err, types.ErrParse), "got %v", err)
			var pe *ParseError
			assert.True(t, errors.As(err, &pe))
		})
	}
}

func TestLoadFileReportsSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xml")
	require.NoError(t, os.WriteFile(path, []byte("<types>"), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, path, pe.Source)
	assert.Contains(t, err.Error(), path)
}

func TestLoadDecodesDeclaredCharset(t *testing.T) {
	input := []byte("<?xml version=\"1.0\" encoding=\"windows-1252\"?><types><type name=\"Caf\xe9\"/></types>")
	doc, err := Load(bytes.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "Café", doc.Records()[0].Name())
}

func TestFindRecord(t *testing.T) {
	doc := loadSample(t)

	rec, err := doc.FindRecord("Apple")
	require.NoError(t, err)
	assert.Equal(t, "Apple", rec.Name())

	byID, err := doc.Record(rec.ID())
	require.NoError(t, err)
	assert.Same(t, rec, byID)

	_, err = doc.FindRecord("Missing")
	assert.ErrorIs(t, err, types.ErrRecordNotFound)
	_, err = doc.Record("nope")
	assert.ErrorIs(t, err, types.ErrRecordNotFound)
}

func TestRenameKeepsID(t *testing.T) {
	doc := loadSample(t)
	rec, err := doc.FindRecord("AKM")
	require.NoError(t, err)
	id := rec.ID()

	doc.SetName(rec, "AKM_Black")

	again, err := doc.Record(id)
	require.NoError(t, err)
	assert.Equal(t, "AKM_Black", again.Name())
	_, err = doc.FindRecord("AKM")
	assert.ErrorIs(t, err, types.ErrRecordNotFound)
}

func TestFilterByCategory(t *testing.T) {
	doc := loadSample(t)

	tests := []struct {
		name   string
		filter map[string]bool
		want   []string
	}{
		{"nil filter returns everything", nil, []string{"AKM", "Apple", "Rag"}},
		{"empty filter hides everything", map[string]bool{}, nil},
		{"single category", map[string]bool{"food": true}, []string{"Apple"}},
		{"several categories", map[string]bool{"food": true, "weapons": true}, []string{"AKM", "Apple"}},
		{"unknown category", map[string]bool{"clothes": true}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := doc.FilterByCategory(tt.filter)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestCategories(t *testing.T) {
	doc := loadSample(t)
	assert.Equal(t, []string{"weapons", "food"}, doc.Categories())
}

func TestMutationPrimitives(t *testing.T) {
	doc := loadSample(t)
	rec, err := doc.FindRecord("Rag")
	require.NoError(t, err)

	cat := doc.AddSubElement(rec, types.TagCategory, Attr{Key: types.AttrName, Value: "clothes"})
	assert.Equal(t, "clothes", AttrValue(cat, types.AttrName))
	assert.Same(t, cat, doc.Child(rec, types.TagCategory))

	doc.SetAttribute(cat, types.AttrName, "containers")
	assert.Equal(t, "containers", AttrValue(doc.Child(rec, types.TagCategory), types.AttrName))

	nominal := doc.Child(rec, "nominal")
	require.NotNil(t, nominal)
	doc.SetText(nominal, "25")
	assert.Equal(t, "25", Text(doc.Child(rec, "nominal")))

	life := doc.EnsureText(rec, "lifetime", "900")
	assert.Equal(t, "900", Text(life))
	assert.Len(t, doc.Children(rec, "lifetime"), 1)

	first := doc.InsertSubElement(rec, 0, types.TagUsage, Attr{Key: types.AttrName, Value: "Town"})
	assert.Same(t, first, doc.Elements(rec)[0])

	id := doc.ElementID(first)
	assert.Equal(t, id, doc.ElementID(first), "element ids are stable")
	assert.True(t, doc.RemoveSubElement(rec, first))
	assert.False(t, doc.RemoveSubElement(rec, first), "second removal reports false")
	assert.Empty(t, doc.Children(rec, types.TagUsage))
}

func TestBindID(t *testing.T) {
	doc := loadSample(t)
	rec, err := doc.FindRecord("Rag")
	require.NoError(t, err)

	el := doc.AddSubElement(rec, types.TagTag, Attr{Key: types.AttrName, Value: "floor"})
	doc.BindID(el, "slot-1")
	assert.Equal(t, "slot-1", doc.ElementID(el))
}

func TestSerializeFormat(t *testing.T) {
	doc := loadSample(t)

	out, err := doc.Serialize()
	require.NoError(t, err)
	text := string(out)

	assert.True(t, strings.HasPrefix(text, "<?xml"), "declaration first: %q", text[:20])
	assert.Contains(t, text, `encoding="UTF-8"`)
	assert.Contains(t, text, "\n  <type name=\"AKM\">")
	assert.Contains(t, text, "\n    <nominal>5</nominal>")
	assert.Contains(t, text, "\n    <usage name=\"Police\"/>")
}

func TestSerializeDoesNotTouchTree(t *testing.T) {
	doc := loadSample(t)
	before := len(doc.Records()[0].Element().Child)

	_, err := doc.Serialize()
	require.NoError(t, err)

	assert.Equal(t, before, len(doc.Records()[0].Element().Child))
}

func TestRoundTripPreservesFields(t *testing.T) {
	doc := loadSample(t)
	out, err := doc.Serialize()
	require.NoError(t, err)

	again, err := Load(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, doc.Len(), again.Len())

	for i, rec := range doc.Records() {
		other := again.Records()[i]
		assert.Equal(t, rec.Name(), other.Name())
		a := doc.Elements(rec)
		b := again.Elements(other)
		require.Len(t, b, len(a))
		for j := range a {
			assert.Equal(t, a[j].Tag, b[j].Tag)
			assert.Equal(t, strings.TrimSpace(Text(a[j])), strings.TrimSpace(Text(b[j])))
			assert.Equal(t, len(a[j].Attr), len(b[j].Attr))
			for k := range a[j].Attr {
				assert.Equal(t, a[j].Attr[k].Key, b[j].Attr[k].Key)
				assert.Equal(t, a[j].Attr[k].Value, b[j].Attr[k].Value)
			}
		}
	}
	assert.Equal(t, doc.DefaultTarget(), again.DefaultTarget())
}

func TestSaveFile(t *testing.T) {
	doc := loadSample(t)
	path := filepath.Join(t.TempDir(), "types.xml")

	require.NoError(t, doc.SaveFile(path))

	again, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, again.Source())
	assert.Equal(t, []string{"AKM", "Apple", "Rag"}, names(again.Records()))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestTarget(t *testing.T) {
	doc := loadSample(t)
	assert.Equal(t, "mission/db/types.xml", doc.Target())

	bare, err := Load(strings.NewReader("<types><type name=\"A\"/></types>"))
	require.NoError(t, err)
	assert.Equal(t, FallbackTarget, bare.Target())

	bare.SetDefaultTarget("custom.xml")
	assert.Equal(t, "custom.xml", bare.Target())
}
