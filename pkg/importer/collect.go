package importer

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	errs "github.com/matzehuels/openboard/pkg/errors"
)

// Mode selects how source images are collected.
type Mode string

const (
	// ModeFolder takes every image file in a folder.
	ModeFolder Mode = "folder"
	// ModeSingle takes one file.
	ModeSingle Mode = "single"
	// ModePattern takes the files of a folder matching a glob pattern.
	ModePattern Mode = "pattern"
)

// DefaultPattern is used by ModePattern when no pattern is given.
const DefaultPattern = "*.jpg"

// FolderExtensions lists the extensions ModeFolder picks up, matched
// case-insensitively.
var FolderExtensions = []string{"jpg", "jpeg", "png", "tif", "tiff", "psd", "bmp"}

// Modes lists the collection modes in display order.
var Modes = []Mode{ModeFolder, ModeSingle, ModePattern}

// ParseMode accepts a mode name in any case.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", errs.New(errs.ErrCodeInvalidInput, "invalid import mode: %q (must be one of: folder, single, pattern)", s)
}

// Source describes where images come from. Folder is used by ModeFolder
// and ModePattern, File by ModeSingle.
type Source struct {
	Mode    Mode
	Folder  string
	File    string
	Pattern string
}

// Collect resolves src to a sorted list of image paths. Finding nothing is
// a NOT_FOUND error.
func Collect(src Source) ([]string, error) {
	var (
		files []string
		err   error
	)
	switch src.Mode {
	case ModeSingle:
		files, err = collectSingle(src.File)
	case ModeFolder:
		files, err = collectFolder(src.Folder)
	case ModePattern:
		files, err = collectPattern(src.Folder, src.Pattern)
	default:
		_, err = ParseMode(string(src.Mode))
	}
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errs.New(errs.ErrCodeNotFound, "no images found with current settings")
	}
	sort.Strings(files)
	return files, nil
}

func collectSingle(path string) ([]string, error) {
	st, err := os.Stat(path)
	if err != nil || st.IsDir() {
		return nil, errs.New(errs.ErrCodeFileNotFound, "not a valid image file: %q", path)
	}
	return []string{path}, nil
}

func requireDir(dir string) error {
	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		return errs.New(errs.ErrCodeInvalidPath, "not a valid folder: %q", dir)
	}
	return nil
}

func collectFolder(dir string) ([]string, error) {
	if err := requireDir(dir); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "read folder %q", dir)
	}
	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !hasFolderExtension(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

func collectPattern(dir, pattern string) ([]string, error) {
	if err := requireDir(dir); err != nil {
		return nil, err
	}
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultPattern
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid pattern %q", pattern)
	}
	var files []string
	for _, m := range matches {
		if st, err := os.Stat(m); err == nil && st.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	return files, nil
}

func hasFolderExtension(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	for _, e := range FolderExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
