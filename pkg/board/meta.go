package board

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Recognized metadata keys.
const (
	KeyBoardName       = "boardName"
	KeyNbrCols         = "nbrCols"
	KeyNbrRows         = "nbrRows"
	KeyCellWidth       = "cellWidth"
	KeyCellHeight      = "cellHeight"
	KeyCellType        = "cellType"
	KeyAdjustedMargin  = "adjustedMargin"
	KeyAdjustedSpacing = "adjustedSpacing"
	KeyLayoutWidth     = "layoutWidth"
	KeyLayoutHeight    = "layoutHeight"
	KeyImgMaxWidth     = "imgMaxWidth"
	KeyImgMaxHeight    = "imgMaxHeight"
	KeyOverlayFiles    = "overlayFiles"

	overlayIndexPrefix = "overlay_index_cell_"
)

// Meta is an insertion-ordered string map. The zero value is ready to use.
type Meta struct {
	keys []string
	vals map[string]string
}

// Get returns the value stored under key.
func (m *Meta) Get(key string) (string, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Set stores value under key. New keys are appended; existing keys keep
// their position.
func (m *Meta) Set(key, value string) {
	if m.vals == nil {
		m.vals = make(map[string]string)
	}
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = value
}

// Delete removes key.
func (m *Meta) Delete(key string) {
	if _, ok := m.vals[key]; !ok {
		return
	}
	delete(m.vals, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (m *Meta) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Len returns the number of entries.
func (m *Meta) Len() int { return len(m.keys) }

// Map returns an unordered copy of the entries.
func (m *Meta) Map() map[string]string {
	out := make(map[string]string, len(m.vals))
	for k, v := range m.vals {
		out[k] = v
	}
	return out
}

// Int parses the value under key as an integer. Float-formatted values
// ("3.0") are truncated.
func (m *Meta) Int(key string) (int, bool) {
	v, ok := m.vals[key]
	if !ok {
		return 0, false
	}
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f), true
	}
	return 0, false
}

// Float parses the value under key as a float.
func (m *Meta) Float(key string) (float64, bool) {
	v, ok := m.vals[key]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// SetInt stores an integer value.
func (m *Meta) SetInt(key string, v int) { m.Set(key, strconv.Itoa(v)) }

// SetFloat stores a float value in its shortest exact form.
func (m *Meta) SetFloat(key string, v float64) { m.Set(key, formatFloat(v)) }

// OverlayFiles decodes the overlayFiles JSON array. A missing or malformed
// value yields nil.
func (m *Meta) OverlayFiles() []string {
	v, ok := m.vals[KeyOverlayFiles]
	if !ok || v == "" {
		return nil
	}
	var files []string
	if err := json.Unmarshal([]byte(v), &files); err != nil {
		return nil
	}
	return files
}

// SetOverlayFiles stores files as a JSON array.
func (m *Meta) SetOverlayFiles(files []string) {
	if files == nil {
		files = []string{}
	}
	data, _ := json.Marshal(files)
	m.Set(KeyOverlayFiles, string(data))
}

// OverlayIndex returns the overlay index recorded for the cell at row, col.
func (m *Meta) OverlayIndex(row, col int) (int, bool) {
	return m.Int(overlayIndexKey(row, col))
}

// SetOverlayIndex records the overlay index used for the cell at row, col.
func (m *Meta) SetOverlayIndex(row, col, idx int) {
	m.SetInt(overlayIndexKey(row, col), idx)
}

func overlayIndexKey(row, col int) string {
	return fmt.Sprintf("%s%d_%d", overlayIndexPrefix, row, col)
}

// MarshalJSON encodes the entries as a JSON object in insertion order.
func (m Meta) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.vals[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
