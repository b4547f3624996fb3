package fixture

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is an on-disk document format for a forest
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml (case-insensitive)
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", ErrInvalidArgument, s)
}

// FormatFromPath picks a format from the file extension, defaulting to JSON
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// ContentType returns the HTTP media type for the format
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// ExportError reports a failure reading or writing a fixture file
type ExportError struct {
	Op   string
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("fixture %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// Encode writes records as a single top-level array
func Encode(w io.Writer, records []Record, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
}

// Decode reads a document written by Encode
func Decode(r io.Reader, format Format) ([]Record, error) {
	var records []Record
	var err error
	switch format {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&records)
		if err == io.EOF {
			err = nil
		}
	default:
		err = json.NewDecoder(r).Decode(&records)
	}
	if err != nil {
		return nil, err
	}

	if records == nil {
		records = []Record{}
	}
	for i := range records {
		if records[i].ImmediateChildren == nil {
			records[i].ImmediateChildren = []string{}
		}
	}
	return records, nil
}

// SaveFile writes records to path, replacing any existing file
func SaveFile(path string, records []Record, format Format) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &ExportError{Op: "write", Path: path, Err: err}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return &ExportError{Op: "write", Path: path, Err: err}
	}
	if err := Encode(f, records, format); err != nil {
		f.Close()
		return &ExportError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &ExportError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// LoadFile reads a forest, choosing the format from the extension
func LoadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ExportError{Op: "read", Path: path, Err: err}
	}
	defer f.Close()

	records, err := Decode(f, FormatFromPath(path))
	if err != nil {
		return nil, &ExportError{Op: "read", Path: path, Err: err}
	}
	return records, nil
}
