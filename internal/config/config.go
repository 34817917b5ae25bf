// Package config loads the Zinc toolchain's optional per-user
// configuration file, `~/.zincrc.yaml`: color/trace defaults that
// apply across invocations of `zincc`, distinct from a Zinc project's
// own source files.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the toolchain-wide defaults `zincc` reads before
// parsing command-line flags; flags always override these.
type Config struct {
	// NoColor disables colorized diagnostic/REPL output.
	NoColor bool `yaml:"no_color"`

	// Debug makes the REPL print each input's disassembled bytecode by
	// default.
	Debug bool `yaml:"debug"`

	// TraceVerbosity is read from the rc file and kept here; no zincc
	// subcommand or the VM consults it, so it changes no output.
	TraceVerbosity int `yaml:"trace_verbosity"`
}

// Default returns the configuration `zincc` uses when no rc file is
// present or readable.
func Default() Config {
	return Config{}
}

// Load reads `~/.zincrc.yaml`, returning Default() unchanged (not an
// error) if the file doesn't exist.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Default(), err
	}
	return LoadFrom(filepath.Join(home, ".zincrc.yaml"))
}

// LoadFrom reads the rc file at path; a missing file is not an error.
func LoadFrom(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
