package fixture

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	records, err := NewGenerator(WithSeed(42)).Generate(3, 4, 5)
	require.NoError(t, err)

	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, records, format))

			decoded, err := Decode(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, records, decoded)
		})
	}
}

func TestEncode_JSONShape(t *testing.T) {
	records, err := NewGenerator(WithSeed(1)).Generate(1, 2, 2)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, records, FormatJSON))

	assert.True(t, strings.HasPrefix(buf.String(), "[\n  {\n"), "expected a top-level array with 2-space indent")

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	require.Len(t, raw, len(records))

	root := raw[0]
	assert.Nil(t, root["parent_id"])
	assert.Equal(t, "datacenter", root["object_type"])
	for _, key := range []string{"object_id", "sec_zone", "config_id", "ip_address", "status", "percent_utilized", "immediate_children"} {
		assert.Contains(t, root, key)
	}
}

func TestEncodeDecode_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, []Record{}, FormatJSON))
	assert.Equal(t, "[]\n", buf.String())

	decoded, err := Decode(&buf, FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, decoded)
	assert.NotNil(t, decoded)
}

func TestSaveLoadFile(t *testing.T) {
	records, err := NewGenerator(WithSeed(9)).Generate(2, 3, 3)
	require.NoError(t, err)

	dir := t.TempDir()
	for _, name := range []string{"data.json", "nested/data.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, SaveFile(path, records, FormatFromPath(path)))

			loaded, err := LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, records, loaded)
		})
	}
}

func TestSaveFile_Unwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := SaveFile(filepath.Join(blocker, "out.json"), nil, FormatJSON)
	require.Error(t, err)

	var exportErr *ExportError
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, "write", exportErr.Op)
	assert.False(t, errors.Is(err, ErrInvalidArgument))
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))

	var exportErr *ExportError
	require.True(t, errors.As(err, &exportErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidArgument, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
