// Package fileio loads and dumps research artifacts, dispatching on file
// suffix. Supported formats: json, jsonl, yaml, toml, txt and gob.
package fileio

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

type Format uint8

const (
	FormatJSON Format = iota
	FormatJSONL
	FormatYAML
	FormatTOML
	FormatText
	FormatGob
)

var ErrUnknownFormat = errors.New("unknown file format")

// FormatForPath returns the format implied by the path's suffix.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".jsonl":
		return FormatJSONL, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".txt":
		return FormatText, nil
	case ".gob":
		return FormatGob, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Load reads the file at path into v, choosing the decoder by suffix.
func Load(path string, v any) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	return LoadAs(path, format, v)
}

// LoadAs reads the file at path into v using the given format regardless
// of the path's suffix.
func LoadAs(path string, format Format, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch format {
	case FormatJSON:
		return json.Unmarshal(data, v)
	case FormatJSONL:
		return unmarshalJSONL(data, v)
	case FormatYAML:
		return yaml.Unmarshal(data, v)
	case FormatTOML:
		return toml.Unmarshal(data, v)
	case FormatText:
		s, ok := v.(*string)
		if !ok {
			return fmt.Errorf("text load requires *string, got %T", v)
		}
		*s = string(data)
		return nil
	case FormatGob:
		return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
	default:
		return ErrUnknownFormat
	}
}

// Dump writes v to path, choosing the encoder by suffix. Parent
// directories are created as needed.
func Dump(v any, path string) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	return DumpAs(v, path, format)
}

// DumpAs writes v to path using the given format regardless of the path's
// suffix.
func DumpAs(v any, path string, format Format) error {
	data, err := encode(v, format)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

func encode(v any, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(v, "", "  ")
	case FormatJSONL:
		return marshalJSONL(v)
	case FormatYAML:
		return yaml.Marshal(v)
	case FormatTOML:
		return toml.Marshal(v)
	case FormatText:
		switch s := v.(type) {
		case string:
			return []byte(s), nil
		case []byte:
			return s, nil
		case fmt.Stringer:
			return []byte(s.String()), nil
		default:
			return nil, fmt.Errorf("text dump requires string-like value, got %T", v)
		}
	case FormatGob:
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(v); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, ErrUnknownFormat
	}
}

// unmarshalJSONL decodes line-delimited JSON into v, which must be a
// pointer to a slice. Lines are joined into a JSON array so the standard
// decoder handles element typing.
func unmarshalJSONL(data []byte, v any) error {
	lines := splitLines(data)
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, line := range lines {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(line)
	}
	buf.WriteByte(']')
	return json.Unmarshal(buf.Bytes(), v)
}

// marshalJSONL encodes a slice value as one JSON object per line.
func marshalJSONL(v any) ([]byte, error) {
	array, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(array, &elements); err != nil {
		return nil, fmt.Errorf("jsonl dump requires a slice value: %w", err)
	}

	var buf bytes.Buffer
	for _, elem := range elements {
		buf.Write(elem)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			lines = append(lines, line)
		}
	}
	return lines
}
