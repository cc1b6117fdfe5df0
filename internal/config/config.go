// Package config loads the TOML settings shared by the CLI and the example
// runner.
package config

import (
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/smallyu/go-ecc/internal/crypto/curves"
	"github.com/smallyu/go-ecc/internal/log"
	"github.com/smallyu/go-ecc/pkg/ecc"
)

// Config selects a curve preset, a multiplication strategy and logging.
type Config struct {
	Curve    string `toml:"curve"`
	Strategy string `toml:"strategy"`
	Window   int    `toml:"window"`
	Log      Log    `toml:"log"`
}

// Log configures the zap logger.
type Log struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

// Default returns secp256k1 with w-NAF at the default window.
func Default() *Config {
	return &Config{
		Curve:    "secp256k1",
		Strategy: curves.WNAF.String(),
		Window:   curves.DefaultWindow,
		Log:      Log{Level: "info"},
	}
}

// Load reads path on top of Default and validates the result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads TOML from r on top of Default. Unknown keys are rejected.
func Decode(r io.Reader) (*Config, error) {
	c := Default()
	md, err := toml.NewDecoder(r).Decode(c)
	if err != nil {
		return nil, ecc.Errorf("config.Decode", ecc.ErrInvalidEncoding, "%v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, ecc.Errorf("config.Decode", ecc.ErrInvalidEncoding, "unknown keys %v", undecoded)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that every field names something that exists.
func (c *Config) Validate() error {
	if _, err := c.ResolveCurve(); err != nil {
		return err
	}
	if _, err := c.ResolveStrategy(); err != nil {
		return err
	}
	if c.Window < curves.MinWindow || c.Window > curves.MaxWindow {
		return ecc.Errorf("config.Validate", ecc.ErrUnknownStrategy, "window %d outside [%d, %d]", c.Window, curves.MinWindow, curves.MaxWindow)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return ecc.Errorf("config.Validate", ecc.ErrInvalidEncoding, "%v", err)
	}
	return nil
}

// ResolveCurve returns the named curve preset.
func (c *Config) ResolveCurve() (*curves.Curve, error) {
	return curves.ByName(c.Curve)
}

// ResolveStrategy returns the named multiplication strategy.
func (c *Config) ResolveStrategy() (curves.Strategy, error) {
	return curves.ParseStrategy(c.Strategy)
}

// Logger builds a logger writing to stdout.
func (c *Config) Logger() log.Logger {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		level = log.DefaultLevel
	}
	return log.New(nil, level, c.Log.JSON)
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
