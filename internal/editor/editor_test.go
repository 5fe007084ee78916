package editor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/typesmith/internal/document"
	"github.com/mesh-intelligence/typesmith/internal/fields"
	"github.com/mesh-intelligence/typesmith/internal/state"
	"github.com/mesh-intelligence/typesmith/pkg/types"
)

const editorXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes" ?>
<types>
    <type name="AKM">
        <nominal>5</nominal>
        <lifetime>3600</lifetime>
        <flags count_in_cargo="0" count_in_map="1"/>
        <category name="weapons"/>
        <usage name="Military"/>
        <usage name="Police"/>
    </type>
    <type name="Apple">
        <nominal>40</nominal>
        <lifetime>7200</lifetime>
        <category name="food"/>
    </type>
</types>
`

type fakeView struct {
	refreshed []string
	reloaded  []string
}

func (v *fakeView) RefreshRow(id string)      { v.refreshed = append(v.refreshed, id) }
func (v *fakeView) SelectedRecords() []string { return nil }
func (v *fakeView) CheckedRecords() []string  { return nil }
func (v *fakeView) Reload(id string)          { v.reloaded = append(v.reloaded, id) }

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "types.xml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newEditor(t *testing.T, opts Options) (*Editor, *fakeView) {
	t.Helper()
	view := &fakeView{}
	opts.View = view
	e := New(opts)
	require.NoError(t, e.Open(writeDoc(t, editorXML)))
	return e, view
}

func recordID(t *testing.T, e *Editor, name string) string {
	t.Helper()
	rec, err := e.Document().FindRecord(name)
	require.NoError(t, err)
	return rec.ID()
}

func childText(t *testing.T, e *Editor, name, tag string) string {
	t.Helper()
	rec, err := e.Document().FindRecord(name)
	require.NoError(t, err)
	el := e.Document().Child(rec, tag)
	require.NotNil(t, el, tag)
	return document.Text(el)
}

func handle(t *testing.T, e *Editor, tag string) *fields.Handle {
	t.Helper()
	h, ok := e.Layout().Find(tag)
	require.True(t, ok, tag)
	return h
}

func TestActivateFlushesPreviousRecord(t *testing.T) {
	e, view := newEditor(t, Options{})
	akm, apple := recordID(t, e, "AKM"), recordID(t, e, "Apple")

	require.NoError(t, e.Activate(akm))
	_, err := e.Edit(handle(t, e, types.ParamNominal).Key, "12")
	require.NoError(t, err)
	_, err = e.Edit(handle(t, e, "count_in_map").Key, false)
	require.NoError(t, err)
	assert.Equal(t, "5", childText(t, e, "AKM", types.ParamNominal), "edits stay in handles until flush")

	require.NoError(t, e.Activate(apple))
	assert.Equal(t, "12", childText(t, e, "AKM", types.ParamNominal))
	rec, _ := e.Document().Record(akm)
	assert.Equal(t, "0", document.AttrValue(e.Document().Child(rec, types.TagFlags), "count_in_map"))
	assert.Contains(t, view.refreshed, akm)
	assert.Equal(t, apple, e.Active().ID())
	assert.Equal(t, apple, e.Layout().RecordID())
}

func TestActivateUnknownRecord(t *testing.T) {
	e, _ := newEditor(t, Options{})
	assert.ErrorIs(t, e.Activate("missing"), types.ErrRecordNotFound)
	assert.Nil(t, e.Active())

	empty := New(Options{})
	assert.ErrorIs(t, empty.Activate("x"), types.ErrNoDocument)
}

func TestFlushIsIdempotent(t *testing.T) {
	e, _ := newEditor(t, Options{})
	e.Flush()

	require.NoError(t, e.Activate(recordID(t, e, "AKM")))
	before, err := e.Document().Serialize()
	require.NoError(t, err)
	e.Flush()
	e.Flush()
	after, err := e.Document().Serialize()
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestEditSuppressesNoOp(t *testing.T) {
	e, _ := newEditor(t, Options{})
	require.NoError(t, e.Activate(recordID(t, e, "AKM")))
	key := handle(t, e, types.ParamNominal).Key

	pushed, err := e.Edit(key, "5")
	require.NoError(t, err)
	assert.False(t, pushed)
	assert.Equal(t, 0, e.History().Len())

	pushed, err = e.Edit(key, "6")
	require.NoError(t, err)
	assert.True(t, pushed)
	assert.Equal(t, 1, e.History().Len())
}

func TestEditErrors(t *testing.T) {
	e, _ := newEditor(t, Options{})
	_, err := e.Edit("x", "1")
	assert.ErrorIs(t, err, types.ErrNoActiveRecord)

	require.NoError(t, e.Activate(recordID(t, e, "AKM")))
	_, err = e.Edit("missing", "1")
	assert.ErrorIs(t, err, types.ErrFieldNotFound)

	_, err = e.Edit(handle(t, e, "count_in_map").Key, "maybe")
	assert.Error(t, err)
}

func TestUndoRedoRoundTrip(t *testing.T) {
	e, _ := newEditor(t, Options{})
	require.NoError(t, e.Activate(recordID(t, e, "AKM")))
	key := handle(t, e, types.ParamLifetime).Key

	for _, v := range []string{"100", "200", "300"} {
		_, err := e.Edit(key, v)
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		assert.True(t, e.Undo())
	}
	assert.False(t, e.Undo())
	assert.Equal(t, "3600", handle(t, e, types.ParamLifetime).Value())

	for i := 0; i < 3; i++ {
		assert.True(t, e.Redo())
	}
	assert.False(t, e.Redo())
	assert.Equal(t, "300", handle(t, e, types.ParamLifetime).Value())
}

func TestHistorySurvivesRevisit(t *testing.T) {
	e, _ := newEditor(t, Options{})
	akm, apple := recordID(t, e, "AKM"), recordID(t, e, "Apple")

	require.NoError(t, e.Activate(akm))
	_, err := e.Edit(handle(t, e, types.ParamNominal).Key, "9")
	require.NoError(t, err)
	_, err = e.Edit(fields.KeyName, "AK74")
	require.NoError(t, err)

	require.NoError(t, e.Activate(apple))
	assert.False(t, e.Undo(), "apple has its own empty history")

	require.NoError(t, e.Activate(akm))
	assert.Equal(t, "AK74", e.Active().Name())
	assert.True(t, e.Undo())
	assert.True(t, e.Undo())
	assert.Equal(t, "5", handle(t, e, types.ParamNominal).Value())
	assert.Equal(t, "AKM", handle(t, e, "name").Value())

	e.Flush()
	assert.Equal(t, "AKM", e.Active().Name())
	assert.Equal(t, "5", childText(t, e, "AKM", types.ParamNominal))
}

func TestUndoWithoutActiveRecord(t *testing.T) {
	e, _ := newEditor(t, Options{})
	assert.False(t, e.Undo())
	assert.False(t, e.Redo())
	assert.Nil(t, e.History())
}

func TestAddAndRemoveField(t *testing.T) {
	e, _ := newEditor(t, Options{})
	akm := recordID(t, e, "AKM")
	require.NoError(t, e.Activate(akm))

	h, err := e.AddField(types.TagTag, "floor")
	require.NoError(t, err)
	police := e.Layout().ByTag(types.TagUsage)[1]
	require.NoError(t, e.RemoveField(police.Key))

	require.NoError(t, e.Activate(recordID(t, e, "Apple")))
	require.NoError(t, e.Activate(akm))
	tags := e.Layout().ByTag(types.TagTag)
	require.Len(t, tags, 1)
	assert.Equal(t, h.Key, tags[0].Key)
	assert.Equal(t, "floor", tags[0].Value())
	require.Len(t, e.Layout().ByTag(types.TagUsage), 1)

	_, err = e.AddField(types.TagCategory, "x")
	assert.ErrorIs(t, err, types.ErrNotRepeatable)
	assert.ErrorIs(t, e.RemoveField(handle(t, e, types.ParamNominal).Key), types.ErrNotRepeatable)
}

func TestOpenFailureKeepsDocument(t *testing.T) {
	e, _ := newEditor(t, Options{})
	akm := recordID(t, e, "AKM")
	require.NoError(t, e.Activate(akm))
	_, err := e.Edit(handle(t, e, types.ParamNominal).Key, "8")
	require.NoError(t, err)

	err = e.Open(writeDoc(t, "<types><type name='x'></types>"))
	assert.ErrorIs(t, err, types.ErrParse)
	assert.Equal(t, akm, e.Active().ID())
	assert.Equal(t, 1, e.History().Len())
}

func TestOpenClearsHistories(t *testing.T) {
	e, view := newEditor(t, Options{})
	require.NoError(t, e.Activate(recordID(t, e, "AKM")))
	assert.Equal(t, 1, e.Histories().Len())

	require.NoError(t, e.Open(writeDoc(t, editorXML)))
	assert.Nil(t, e.Active())
	assert.Equal(t, 0, e.Histories().Len())
	assert.Len(t, view.reloaded, 2)

	e.Close()
	assert.Nil(t, e.Document())
	_, err := e.Save()
	assert.ErrorIs(t, err, types.ErrNoDocument)
}

func TestOpenRemembersRecentFile(t *testing.T) {
	store, err := state.Open(state.Memory)
	require.NoError(t, err)
	defer store.Close()

	e := New(Options{Store: store})
	path := writeDoc(t, editorXML)
	require.NoError(t, e.Open(path))

	recent, err := store.RecentFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{path}, recent)
}

func TestSaveFlushesAndUsesTarget(t *testing.T) {
	e, _ := newEditor(t, Options{})
	require.NoError(t, e.Activate(recordID(t, e, "Apple")))
	_, err := e.Edit(handle(t, e, types.ParamNominal).Key, "41")
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "saved.xml")
	require.NoError(t, e.SaveAs(out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<nominal>41</nominal>")

	_, err = e.Edit(handle(t, e, types.ParamNominal).Key, "42")
	require.NoError(t, err)
	written, err := e.Save()
	require.NoError(t, err)
	assert.Equal(t, out, written)
	data, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<?xml"))
	assert.Contains(t, string(data), `encoding="UTF-8"`)
	assert.Contains(t, string(data), "<nominal>42</nominal>")
}

func TestFilterFlushesFirst(t *testing.T) {
	e, _ := newEditor(t, Options{})
	require.NoError(t, e.Activate(recordID(t, e, "Apple")))
	_, err := e.Edit(handle(t, e, types.TagCategory).Key, "weapons")
	require.NoError(t, err)

	recs, err := e.Filter(map[string]bool{"weapons": true})
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	all, err := e.Filter(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	none, err := e.Filter(map[string]bool{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBulkEditReloadsActiveRecord(t *testing.T) {
	e, view := newEditor(t, Options{})
	akm, apple := recordID(t, e, "AKM"), recordID(t, e, "Apple")

	require.NoError(t, e.Activate(akm))
	_, err := e.Edit(handle(t, e, types.ParamLifetime).Key, "1000")
	require.NoError(t, err)

	s, err := e.OpenBulkEdit([]string{akm, apple})
	require.NoError(t, err)
	_, err = s.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1000", childText(t, e, "AKM", types.ParamLifetime), "opening flushes")

	view.refreshed = nil
	require.NoError(t, s.Scale(types.ParamLifetime, 50))
	assert.Equal(t, "500", handle(t, e, types.ParamLifetime).Value(), "active layout reloaded")
	assert.Equal(t, []string{akm, apple}, view.refreshed)

	require.NoError(t, s.Accept())
	assert.Equal(t, apple, view.reloaded[len(view.reloaded)-1])

	e.Flush()
	assert.Equal(t, "500", childText(t, e, "AKM", types.ParamLifetime), "stale handles do not overwrite bulk results")
}

func TestBulkEditKeepsEditsMadeWhileOpen(t *testing.T) {
	e, _ := newEditor(t, Options{})
	akm := recordID(t, e, "AKM")

	require.NoError(t, e.Activate(akm))
	s, err := e.OpenBulkEdit([]string{akm})
	require.NoError(t, err)
	_, err = s.Wait(context.Background())
	require.NoError(t, err)

	pushed, err := e.Edit(handle(t, e, types.ParamNominal).Key, "99")
	require.NoError(t, err)
	require.True(t, pushed)
	_, err = e.AddField(types.TagValue, "Tier4")
	require.NoError(t, err)

	require.NoError(t, s.SetInput(types.ParamLifetime, "100"))
	assert.Equal(t, "99", handle(t, e, types.ParamNominal).Value(), "pending edit survives the reload")
	assert.Equal(t, "100", handle(t, e, types.ParamLifetime).Value())

	e.Flush()
	assert.Equal(t, "99", childText(t, e, "AKM", types.ParamNominal))
	assert.Equal(t, "100", childText(t, e, "AKM", types.ParamLifetime))
	rec, err := e.Document().FindRecord("AKM")
	require.NoError(t, err)
	require.Len(t, e.Document().Children(rec, types.TagValue), 1)

	assert.True(t, e.Undo())
	assert.Equal(t, "5", handle(t, e, types.ParamNominal).Value(), "history still targets the reloaded layout")
}
