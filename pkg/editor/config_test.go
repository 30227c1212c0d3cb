package editor

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/objview/pkg/errors"
)

func TestDefaultConfigValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		check   func(t *testing.T, c Config)
		wantErr bool
	}{
		{
			name:  "empty keeps defaults",
			input: "",
			check: func(t *testing.T, c Config) { assert.Equal(t, DefaultConfig(), c) },
		},
		{
			name:  "override",
			input: "grid_size = 20\nsnap_to_grid = true\nbits = 32\nendian = \"big\"\n",
			check: func(t *testing.T, c Config) {
				assert.Equal(t, 20.0, c.GridSize)
				assert.True(t, c.SnapToGrid)
				assert.Equal(t, 32, c.Bits)
				assert.Equal(t, 200.0, c.NodeWidth)
			},
		},
		{name: "unknown key", input: "gird_size = 20\n", wantErr: true},
		{name: "bad bits", input: "bits = 48\n", wantErr: true},
		{name: "bad endian", input: "endian = \"middle\"\n", wantErr: true},
		{name: "zoom step not above one", input: "zoom_step = 1.0\n", wantErr: true},
		{name: "syntax", input: "grid_size = \n", wantErr: true},
		{name: "empty history", input: "history_size = 0\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseConfig([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "got %v", err)
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}

func TestConfigStyleAndArch(t *testing.T) {
	c := DefaultConfig()
	c.NodeWidth = 150
	c.CharWidth = 5
	s := c.Style()
	assert.Equal(t, 150.0, s.BaseWidth)
	assert.Equal(t, 30.0, s.AttrHeight)

	a := c.Arch()
	assert.Equal(t, 64, a.Bits)
	assert.Equal(t, binary.LittleEndian, a.ByteOrder)

	c.Endian = "big"
	assert.Equal(t, binary.BigEndian, c.Arch().ByteOrder)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("explicit missing", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(dir, "missing.toml"))
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeInvalidConfig, errors.GetCode(err))
	})

	t.Run("explicit file", func(t *testing.T) {
		path := filepath.Join(dir, "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("max_depth = 3\n"), 0o644))
		c, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 3, c.MaxDepth)
	})

	t.Run("default missing", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "empty"))
		t.Setenv("HOME", filepath.Join(dir, "empty"))
		c, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), c)
	})
}
