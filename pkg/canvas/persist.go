package canvas

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	errs "github.com/matzehuels/openboard/pkg/errors"
)

// Extension is the file suffix of persisted documents.
const Extension = ".canvas.json"

// Path returns the document path for board name inside dir.
func Path(dir, name string) string {
	return filepath.Join(dir, name+Extension)
}

// WriteJSON encodes the document as indented JSON and writes it to w.
func (d *Document) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return nil
}

// ReadJSON decodes a document from r and rebuilds its layer index.
func ReadJSON(r io.Reader) (*Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, errs.Wrap(errs.ErrCodeParse, err, "decode document")
	}
	if d.Width <= 0 || d.Height <= 0 {
		return nil, errs.New(errs.ErrCodeParse, "document has invalid size %dx%d", d.Width, d.Height)
	}
	d.reindex()
	return &d, nil
}

// Load reads the document stored at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "canvas not found: %s", path)
		}
		return nil, fmt.Errorf("open canvas: %w", err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// Save writes the document to path through a temporary file and rename.
func (d *Document) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create canvas dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp canvas: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := d.WriteJSON(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close canvas: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace canvas: %w", err)
	}
	return nil
}
