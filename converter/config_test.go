package converter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, []string{"..."}, cfg.Packages)
	assert.Equal(t, DefaultRefPrefix, cfg.refPrefix())
	assert.Equal(t, []string{"iter.Seq"}, cfg.streams())
	assert.NoError(t, cfg.Validate())
}

func TestConfigDefaults(t *testing.T) {
	t.Run("custom ref prefix", func(t *testing.T) {
		cfg := Config{RefPrefix: "#/$defs/"}
		assert.Equal(t, "#/$defs/", cfg.refPrefix())
	})

	t.Run("builtin streams disabled", func(t *testing.T) {
		cfg := Config{Streams: []string{"example.com/rx.Flux"}, DisableBuiltinStreams: true}
		assert.Equal(t, []string{"example.com/rx.Flux"}, cfg.streams())
	})

	t.Run("extra streams keep builtin", func(t *testing.T) {
		cfg := Config{Streams: []string{"example.com/rx.Flux"}}
		assert.Equal(t, []string{"iter.Seq", "example.com/rx.Flux"}, cfg.streams())
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"empty", Config{}, false},
		{"exact package", Config{Packages: []string{"example.com/models"}}, false},
		{"subtree", Config{Packages: []string{"example.com/models/..."}}, false},
		{"glob", Config{Packages: []string{"example.com/*/models"}}, false},
		{"empty pattern", Config{Packages: []string{""}}, true},
		{"malformed glob", Config{Packages: []string{"example.com/[models"}}, true},
		{"empty stream name", Config{Streams: []string{" "}}, true},
		{"empty future name", Config{Futures: []string{""}}, true},
		{"empty envelope name", Config{Envelopes: []string{""}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("full document", func(t *testing.T) {
		doc := `
packages:
  - example.com/models/...
streams:
  - example.com/rx.Flux
futures:
  - example.com/rx.Mono
envelopes:
  - example.com/api.Envelope
disable_builtin_streams: true
ref_prefix: "#/$defs/"
`
		cfg, err := LoadConfig(strings.NewReader(doc))
		require.NoError(t, err)

		assert.Equal(t, []string{"example.com/models/..."}, cfg.Packages)
		assert.Equal(t, []string{"example.com/rx.Flux"}, cfg.Streams)
		assert.Equal(t, []string{"example.com/rx.Mono"}, cfg.Futures)
		assert.Equal(t, []string{"example.com/api.Envelope"}, cfg.Envelopes)
		assert.True(t, cfg.DisableBuiltinStreams)
		assert.Equal(t, "#/$defs/", cfg.RefPrefix)
	})

	t.Run("empty document yields defaults", func(t *testing.T) {
		cfg, err := LoadConfig(strings.NewReader(""))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("partial document keeps default packages", func(t *testing.T) {
		cfg, err := LoadConfig(strings.NewReader("futures: [example.com/rx.Mono]\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"..."}, cfg.Packages)
		assert.Equal(t, []string{"example.com/rx.Mono"}, cfg.Futures)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := LoadConfig(strings.NewReader("channels: true\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "converter: decode config")
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := LoadConfig(strings.NewReader("streams: ['']\n"))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Run("existing file", func(t *testing.T) {
		name := filepath.Join(t.TempDir(), "converter.yaml")
		require.NoError(t, os.WriteFile(name, []byte("packages: [example.com/models]\n"), 0o600))

		cfg, err := LoadConfigFile(name)
		require.NoError(t, err)
		assert.Equal(t, []string{"example.com/models"}, cfg.Packages)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
