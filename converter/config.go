package converter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultRefPrefix is the components section every synthesized $ref points into.
const DefaultRefPrefix = "#/components/schemas/"

// ErrInvalidConfig is returned when a Config cannot be used.
var ErrInvalidConfig = errors.New("converter: invalid config")

// Config is the process-wide converter configuration. It is applied once by
// New and never changes afterwards.
//
// Wrapper names use the form "<package path>.<type name>" without type
// arguments, e.g. "github.com/acme/rx.Flux".
type Config struct {
	// Packages lists the package patterns whose named composite types are
	// guarded against recursion. Patterns follow the go tool: an import path,
	// a path ending in "/..." for the package and its sub-packages, "..." for
	// every package, or a path.Match glob.
	Packages []string `yaml:"packages"`

	// Streams lists additional multi-value stream wrappers. Channels and
	// iter.Seq are always recognized unless DisableBuiltinStreams is set.
	Streams []string `yaml:"streams"`

	// Futures lists single-value asynchronous wrappers.
	Futures []string `yaml:"futures"`

	// Envelopes lists response envelopes whose payload replaces them when
	// they appear as a stream element.
	Envelopes []string `yaml:"envelopes"`

	// DisableBuiltinStreams turns off the channel and iter.Seq shapes.
	DisableBuiltinStreams bool `yaml:"disable_builtin_streams"`

	// RefPrefix overrides DefaultRefPrefix.
	RefPrefix string `yaml:"ref_prefix"`
}

// DefaultConfig guards every package and recognizes the built-in stream shapes.
func DefaultConfig() Config {
	return Config{
		Packages: []string{"..."},
	}
}

// refPrefix returns the configured reference prefix, defaulting to DefaultRefPrefix.
func (c Config) refPrefix() string {
	if c.RefPrefix == "" {
		return DefaultRefPrefix
	}
	return c.RefPrefix
}

// streams returns the multi-value wrapper names including the built-in ones.
func (c Config) streams() []string {
	if c.DisableBuiltinStreams {
		return c.Streams
	}
	return append([]string{"iter.Seq"}, c.Streams...)
}

// Validate reports unusable patterns and empty wrapper names.
func (c Config) Validate() error {
	for _, p := range c.Packages {
		if p == "" {
			return fmt.Errorf("%w: empty package pattern", ErrInvalidConfig)
		}
		base := strings.TrimSuffix(p, "/...")
		if base == "..." {
			continue
		}
		if _, err := path.Match(base, ""); err != nil {
			return fmt.Errorf("%w: package pattern %q: %v", ErrInvalidConfig, p, err)
		}
	}

	lists := map[string][]string{
		"streams":   c.Streams,
		"futures":   c.Futures,
		"envelopes": c.Envelopes,
	}
	for key, names := range lists {
		for _, name := range names {
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("%w: empty name in %s", ErrInvalidConfig, key)
			}
		}
	}

	return nil
}

// LoadConfig decodes a YAML configuration on top of DefaultConfig and
// validates it. An empty document yields the defaults.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("converter: decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadConfigFile reads the YAML configuration at name.
func LoadConfigFile(name string) (Config, error) {
	f, err := os.Open(name)
	if err != nil {
		return Config{}, fmt.Errorf("converter: open config: %w", err)
	}
	defer f.Close()

	return LoadConfig(f)
}
