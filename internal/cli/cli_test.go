package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/typesmith/internal/paths"
	"github.com/mesh-intelligence/typesmith/pkg/types"
)

const cliXML = `<types>
    <type name="AKM">
        <nominal>5</nominal>
        <lifetime>3600</lifetime>
        <flags count_in_map="1"/>
        <category name="weapons"/>
        <usage name="Military"/>
    </type>
    <type name="Apple">
        <nominal>40</nominal>
        <category name="food"/>
    </type>
</types>`

type env struct {
	configDir string
	dataDir   string
	doc       string
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	e := env{
		configDir: filepath.Join(dir, "config"),
		dataDir:   filepath.Join(dir, "data"),
		doc:       filepath.Join(dir, "types.xml"),
	}
	require.NoError(t, os.WriteFile(e.doc, []byte(cliXML), 0o644))
	return e
}

func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := newEnv(t).run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "typesmith v"+Version)
}

func TestConfigWritesDefaultFile(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "config")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(e.configDir, paths.ConfigFileName))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, e.configDir, got["config_dir"])
	assert.Equal(t, "state.db", got["state_file"])
	assert.Equal(t, "info", got["log_level"])
	assert.Equal(t, 100, got["slider_default"])
}

func TestConfigRejectsInvalidValues(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, paths.ConfigFileName),
		[]byte("log_level: loud\n"), 0o644))

	_, err := e.run(t, "config")
	assert.ErrorIs(t, err, types.ErrLogLevelUnknown)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestList(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "list", e.doc)
	require.NoError(t, err)
	assert.Contains(t, out, "AKM")
	assert.Contains(t, out, "2 of 2 records")

	out, err = e.run(t, "--json", "list", e.doc, "--category", "food")
	require.NoError(t, err)
	var rows []recordRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, recordRow{Name: "Apple", Category: "food", Nominal: "40"}, rows[0])
}

func TestListMissingFile(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "list", filepath.Join(e.dataDir, "nope.xml"))
	require.Error(t, err)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestShow(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "show", e.doc, "AKM")
	require.NoError(t, err)
	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "Military")

	out, err = e.run(t, "--json", "show", e.doc, "AKM")
	require.NoError(t, err)
	var rows []fieldRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Equal(t, fieldRow{Label: "Name", Kind: types.KindText, Value: "AKM"}, rows[0])
	assert.Equal(t, fieldRow{Label: "count_in_map", Kind: types.KindBoolean, Value: true}, rows[1])

	_, err = e.run(t, "show", e.doc, "Nope")
	assert.ErrorIs(t, err, types.ErrRecordNotFound)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitUserError, exitCode(types.ErrParse))
	assert.Equal(t, exitSysError, exitCode(os.ErrPermission))
}
