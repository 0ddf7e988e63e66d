package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Duration accepts both "30m" style strings and integer nanoseconds.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return nil
}

// jsonConfig mirrors Config for file decoding. It is seeded from the current
// values so keys missing from the file keep what earlier layers set.
type jsonConfig struct {
	Environment string `json:"environment"`
	Server      struct {
		Address         string   `json:"address"`
		ReadTimeout     Duration `json:"read_timeout"`
		WriteTimeout    Duration `json:"write_timeout"`
		ShutdownTimeout Duration `json:"shutdown_timeout"`
		RequestTimeout  Duration `json:"request_timeout"`
		CORSOrigins     string   `json:"cors_origins"`
	} `json:"server"`
	Database struct {
		Driver      string `json:"driver"`
		DSN         string `json:"dsn"`
		Debug       bool   `json:"debug"`
		AutoMigrate bool   `json:"auto_migrate"`
	} `json:"database"`
	Auth struct {
		SigningKey        string   `json:"signing_key"`
		Issuer            string   `json:"issuer"`
		TokenExpiration   Duration `json:"token_expiration"`
		RefreshExpiration Duration `json:"refresh_expiration"`
		CookieName        string   `json:"cookie_name"`
		CookieSecure      bool     `json:"cookie_secure"`
		TokenLookup       string   `json:"token_lookup"`
		AuthScheme        string   `json:"auth_scheme"`
		RegistrySalt      string   `json:"registry_salt"`
		Phase1Roles       []string `json:"phase1_roles"`
		Phase2Roles       []string `json:"phase2_roles"`
		PhoneRegion       string   `json:"phone_region"`
	} `json:"auth"`
	Registry struct {
		SweepInterval Duration `json:"sweep_interval"`
	} `json:"registry"`
	Activity struct {
		Backend       string `json:"backend"`
		MongoURI      string `json:"mongo_uri"`
		MongoDatabase string `json:"mongo_database"`
	} `json:"activity"`
	Log struct {
		Level  string `json:"level"`
		Format string `json:"format"`
	} `json:"log"`
}

func toJSONConfig(c *Config) *jsonConfig {
	j := &jsonConfig{Environment: c.Environment}

	j.Server.Address = c.Server.Address
	j.Server.ReadTimeout = Duration{c.Server.ReadTimeout}
	j.Server.WriteTimeout = Duration{c.Server.WriteTimeout}
	j.Server.ShutdownTimeout = Duration{c.Server.ShutdownTimeout}
	j.Server.RequestTimeout = Duration{c.Server.RequestTimeout}
	j.Server.CORSOrigins = c.Server.CORSOrigins

	j.Database.Driver = c.Database.Driver
	j.Database.DSN = c.Database.DSN
	j.Database.Debug = c.Database.Debug
	j.Database.AutoMigrate = c.Database.AutoMigrate

	j.Auth.SigningKey = c.Auth.SigningKey
	j.Auth.Issuer = c.Auth.Issuer
	j.Auth.TokenExpiration = Duration{c.Auth.TokenExpiration}
	j.Auth.RefreshExpiration = Duration{c.Auth.RefreshExpiration}
	j.Auth.CookieName = c.Auth.CookieName
	j.Auth.CookieSecure = c.Auth.CookieSecure
	j.Auth.TokenLookup = c.Auth.TokenLookup
	j.Auth.AuthScheme = c.Auth.AuthScheme
	j.Auth.RegistrySalt = c.Auth.RegistrySalt
	j.Auth.Phase1Roles = c.Auth.Phase1Roles
	j.Auth.Phase2Roles = c.Auth.Phase2Roles
	j.Auth.PhoneRegion = c.Auth.PhoneRegion

	j.Registry.SweepInterval = Duration{c.Registry.SweepInterval}

	j.Activity.Backend = c.Activity.Backend
	j.Activity.MongoURI = c.Activity.MongoURI
	j.Activity.MongoDatabase = c.Activity.MongoDatabase

	j.Log.Level = c.Log.Level
	j.Log.Format = c.Log.Format
	return j
}

func (j *jsonConfig) apply(c *Config) {
	c.Environment = j.Environment

	c.Server = Server{
		Address:         j.Server.Address,
		ReadTimeout:     j.Server.ReadTimeout.Duration,
		WriteTimeout:    j.Server.WriteTimeout.Duration,
		ShutdownTimeout: j.Server.ShutdownTimeout.Duration,
		RequestTimeout:  j.Server.RequestTimeout.Duration,
		CORSOrigins:     j.Server.CORSOrigins,
	}

	c.Database = Database{
		Driver:      j.Database.Driver,
		DSN:         j.Database.DSN,
		Debug:       j.Database.Debug,
		AutoMigrate: j.Database.AutoMigrate,
	}

	c.Auth = Auth{
		SigningKey:        j.Auth.SigningKey,
		Issuer:            j.Auth.Issuer,
		TokenExpiration:   j.Auth.TokenExpiration.Duration,
		RefreshExpiration: j.Auth.RefreshExpiration.Duration,
		CookieName:        j.Auth.CookieName,
		CookieSecure:      j.Auth.CookieSecure,
		TokenLookup:       j.Auth.TokenLookup,
		AuthScheme:        j.Auth.AuthScheme,
		RegistrySalt:      j.Auth.RegistrySalt,
		Phase1Roles:       j.Auth.Phase1Roles,
		Phase2Roles:       j.Auth.Phase2Roles,
		PhoneRegion:       j.Auth.PhoneRegion,
	}

	c.Registry.SweepInterval = j.Registry.SweepInterval.Duration

	c.Activity = Activity{
		Backend:       j.Activity.Backend,
		MongoURI:      j.Activity.MongoURI,
		MongoDatabase: j.Activity.MongoDatabase,
	}

	c.Log = Log{Level: j.Log.Level, Format: j.Log.Format}
}

// parseJSON overlays the file at path onto config. An empty path is a no-op.
func parseJSON(config *Config, path string) error {
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %q: %w", path, err)
	}

	j := toJSONConfig(config)
	if err := json.Unmarshal(file, j); err != nil {
		return fmt.Errorf("decode config file %q: %w", path, err)
	}

	j.apply(config)
	return nil
}
