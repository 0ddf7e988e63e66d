package config

import (
	"os"
)

// Option customizes Load.
type Option func(*loader)

type loader struct {
	args     []string
	envFiles []string
	lookup   func(string) (string, bool)
}

// WithArgs sets the command-line arguments (without the program name).
func WithArgs(args []string) Option {
	return func(l *loader) {
		l.args = args
	}
}

// WithEnvFiles sets the .env files to read; defaults to ".env".
func WithEnvFiles(files ...string) Option {
	return func(l *loader) {
		l.envFiles = files
	}
}

// WithLookup replaces os.LookupEnv, mostly for tests.
func WithLookup(lookup func(string) (string, bool)) Option {
	return func(l *loader) {
		if lookup != nil {
			l.lookup = lookup
		}
	}
}

// Load builds a Config by applying defaults, .env files, the JSON file given
// by -config (or STAFF_CONFIG), STAFF_* variables and finally flags. The
// result is validated.
func Load(opts ...Option) (*Config, error) {
	l := &loader{
		args:   os.Args[1:],
		lookup: os.LookupEnv,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	cfg := &Config{}
	cfg.LoadDefaults()

	if err := loadDotEnv(l.envFiles...); err != nil {
		return nil, err
	}

	path := configFileFromArgs(l.args)
	if path == "" {
		path, _ = l.lookup(EnvPrefix + "CONFIG")
	}
	if err := parseJSON(cfg, path); err != nil {
		return nil, err
	}

	if err := parseEnv(cfg, l.lookup); err != nil {
		return nil, err
	}

	if err := parseFlags(cfg, l.args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
