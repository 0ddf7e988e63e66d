package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable the service reads.
const EnvPrefix = "STAFF_"

type envBinding struct {
	name string
	set  func(c *Config, value string) error
}

func stringVar(dst func(c *Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*dst(c) = v
		return nil
	}
}

func durationVar(dst func(c *Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*dst(c) = d
		return nil
	}
}

func boolVar(dst func(c *Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*dst(c) = b
		return nil
	}
}

func listVar(dst func(c *Config) *[]string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*dst(c) = splitList(v)
		return nil
	}
}

var envBindings = []envBinding{
	{"ENV", stringVar(func(c *Config) *string { return &c.Environment })},
	{"SERVER_ADDRESS", stringVar(func(c *Config) *string { return &c.Server.Address })},
	{"REQUEST_TIMEOUT", durationVar(func(c *Config) *time.Duration { return &c.Server.RequestTimeout })},
	{"CORS_ORIGINS", stringVar(func(c *Config) *string { return &c.Server.CORSOrigins })},
	{"DATABASE_DRIVER", stringVar(func(c *Config) *string { return &c.Database.Driver })},
	{"DATABASE_DSN", stringVar(func(c *Config) *string { return &c.Database.DSN })},
	{"DATABASE_DEBUG", boolVar(func(c *Config) *bool { return &c.Database.Debug })},
	{"SIGNING_KEY", stringVar(func(c *Config) *string { return &c.Auth.SigningKey })},
	{"REGISTRY_SALT", stringVar(func(c *Config) *string { return &c.Auth.RegistrySalt })},
	{"TOKEN_TTL", durationVar(func(c *Config) *time.Duration { return &c.Auth.TokenExpiration })},
	{"REFRESH_TTL", durationVar(func(c *Config) *time.Duration { return &c.Auth.RefreshExpiration })},
	{"COOKIE_SECURE", boolVar(func(c *Config) *bool { return &c.Auth.CookieSecure })},
	{"PHASE1_ROLES", listVar(func(c *Config) *[]string { return &c.Auth.Phase1Roles })},
	{"PHASE2_ROLES", listVar(func(c *Config) *[]string { return &c.Auth.Phase2Roles })},
	{"SWEEP_INTERVAL", durationVar(func(c *Config) *time.Duration { return &c.Registry.SweepInterval })},
	{"ACTIVITY_BACKEND", stringVar(func(c *Config) *string { return &c.Activity.Backend })},
	{"MONGO_URI", stringVar(func(c *Config) *string { return &c.Activity.MongoURI })},
	{"MONGO_DATABASE", stringVar(func(c *Config) *string { return &c.Activity.MongoDatabase })},
	{"LOG_LEVEL", stringVar(func(c *Config) *string { return &c.Log.Level })},
	{"LOG_FORMAT", stringVar(func(c *Config) *string { return &c.Log.Format })},
}

// loadDotEnv reads .env style files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func loadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %q: %w", f, err)
		}
	}
	return nil
}

// parseEnv overlays STAFF_* variables onto config.
func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, b := range envBindings {
		value, ok := lookup(EnvPrefix + b.name)
		if !ok || value == "" {
			continue
		}
		if err := b.set(config, value); err != nil {
			return fmt.Errorf("env %s%s: %w", EnvPrefix, b.name, err)
		}
	}
	return nil
}
