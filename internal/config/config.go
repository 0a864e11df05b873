// Package config provides the cryptokit configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"cryptokit/internal/keys"
	"cryptokit/internal/rc5"
)

const (
	defaultLogLevel   = "NOTICE"
	defaultBufferSize = 1024 * 1024
	minRSABits        = 1024
)

// Logging is the logging configuration.
type Logging struct {
	// Disable disables logging entirely.
	Disable bool

	// File specifies the log file, if omitted stderr will be used.
	File string

	// Level specifies the log level.
	Level string
}

func (lCfg *Logging) validate() error {
	lvl := strings.ToUpper(lCfg.Level)
	switch lvl {
	case "ERROR", "WARNING", "NOTICE", "INFO", "DEBUG":
	case "":
		lvl = defaultLogLevel
	default:
		return fmt.Errorf("config: Logging: Level '%v' is invalid", lCfg.Level)
	}
	lCfg.Level = lvl
	return nil
}

// RC5 is the RC5 block cipher configuration.
type RC5 struct {
	// Rounds is the number of cipher rounds. Zero selects the default.
	Rounds int
}

func (c *RC5) validate() error {
	if c.Rounds == 0 {
		c.Rounds = rc5.DefaultRounds
	}
	if c.Rounds < 0 || c.Rounds > rc5.MaxRounds {
		return fmt.Errorf("config: RC5: Rounds %d out of range", c.Rounds)
	}
	return nil
}

// RSA is the RSA key generation configuration.
type RSA struct {
	// Bits is the modulus size for generated keys.
	Bits int
}

func (c *RSA) validate() error {
	if c.Bits == 0 {
		c.Bits = keys.DefaultRSABits
	}
	if c.Bits < minRSABits {
		return fmt.Errorf("config: RSA: Bits %d is below %d", c.Bits, minRSABits)
	}
	return nil
}

// DSA is the DSA key generation configuration.
type DSA struct {
	// Sizes names the parameter sizes, e.g. "L2048N256".
	Sizes string
}

func (c *DSA) validate() error {
	if c.Sizes == "" {
		c.Sizes = "L2048N256"
	}
	if _, err := keys.ParseDSASizes(c.Sizes); err != nil {
		return fmt.Errorf("config: DSA: %w", err)
	}
	c.Sizes = strings.ToUpper(c.Sizes)
	return nil
}

// IO is the stream pump configuration.
type IO struct {
	// BufferSize is the read and write buffer size in bytes.
	BufferSize int
}

func (c *IO) validate() error {
	if c.BufferSize == 0 {
		c.BufferSize = defaultBufferSize
	}
	if c.BufferSize < 0 {
		return errors.New("config: IO: BufferSize must be positive")
	}
	return nil
}

// Config is the top level cryptokit configuration.
type Config struct {
	Logging *Logging
	RC5     *RC5
	RSA     *RSA
	DSA     *DSA
	IO      *IO
}

// FixupAndValidate applies defaults to missing sections and validates the
// configuration.
func (c *Config) FixupAndValidate() error {
	if c.Logging == nil {
		c.Logging = &Logging{}
	}
	if c.RC5 == nil {
		c.RC5 = &RC5{}
	}
	if c.RSA == nil {
		c.RSA = &RSA{}
	}
	if c.DSA == nil {
		c.DSA = &DSA{}
	}
	if c.IO == nil {
		c.IO = &IO{}
	}
	for _, v := range []interface{ validate() error }{c.Logging, c.RC5, c.RSA, c.DSA, c.IO} {
		if err := v.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := new(Config)
	if err := cfg.FixupAndValidate(); err != nil {
		panic(err)
	}
	return cfg
}

// Load parses and validates the provided buffer b as a config file body and
// returns the Config.
func Load(b []byte) (*Config, error) {
	cfg := new(Config)
	md, err := toml.Decode(string(b), cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		return nil, fmt.Errorf("config: Undecoded keys in config file: %v", undecoded)
	}
	if err := cfg.FixupAndValidate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads, parses and validates the provided file and returns the
// Config.
func LoadFile(f string) (*Config, error) {
	b, err := os.ReadFile(f)
	if err != nil {
		return nil, err
	}
	return Load(b)
}
