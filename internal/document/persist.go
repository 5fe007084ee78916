package document

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
)

// FallbackTarget is the save target used when the root carries no file
// attribute and no path is given.
const FallbackTarget = "output.xml"

const declaration = `version="1.0" encoding="UTF-8" standalone="yes"`

// Serialize renders the document with a UTF-8 declaration and two-space
// indentation. The in-memory tree is not modified.
func (d *Document) Serialize() ([]byte, error) {
	out := etree.NewDocument()
	out.CreateProcInst("xml", declaration)
	out.SetRoot(d.root.Copy())
	out.Indent(2)
	data, err := out.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serialize document: %w", err)
	}
	return data, nil
}

// Target returns the path Save writes to when no explicit path is given.
func (d *Document) Target() string {
	if t := d.DefaultTarget(); t != "" {
		return t
	}
	return FallbackTarget
}

// SaveFile serializes the document and writes it to path using the temp-file,
// fsync, rename pattern, so a failed save never leaves a partial file.
func (d *Document) SaveFile(path string) error {
	data, err := d.Serialize()
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".typesmith-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	if _, err := w.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing document: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
