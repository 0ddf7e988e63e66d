// Package config handles configuration for the staff service: defaults,
// an optional .env file, a JSON overlay, STAFF_* environment variables and
// finally command-line flags, applied in that order.
package config

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-staff/apperr"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	ActivityBackendSQL   = "sql"
	ActivityBackendMongo = "mongo"
)

// Config holds runtime settings for the staff service.
type Config struct {
	Environment string
	Server      Server
	Database    Database
	Auth        Auth
	Registry    Registry
	Activity    Activity
	Log         Log
}

// Server configures the HTTP listener.
type Server struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// RequestTimeout bounds every store call made on behalf of a request.
	RequestTimeout time.Duration
	CORSOrigins    string
}

type Database struct {
	Driver      string
	DSN         string
	Debug       bool
	AutoMigrate bool
}

// Auth configures token issuance and the approval roles.
type Auth struct {
	SigningKey        string
	Issuer            string
	TokenExpiration   time.Duration
	RefreshExpiration time.Duration
	CookieName        string
	CookieSecure      bool
	TokenLookup       string
	AuthScheme        string
	RegistrySalt      string
	Phase1Roles       []string
	Phase2Roles       []string
	PhoneRegion       string
}

type Registry struct {
	// SweepInterval enables the in-process sweeper when positive.
	SweepInterval time.Duration
}

type Activity struct {
	Backend       string
	MongoURI      string
	MongoDatabase string
}

type Log struct {
	Level  string
	Format string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Environment = EnvDevelopment

	c.Server = Server{
		Address:         ":8080",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		RequestTimeout:  10 * time.Second,
		CORSOrigins:     "*",
	}

	c.Database = Database{
		Driver:      DriverSQLite,
		DSN:         "file::memory:?cache=shared",
		AutoMigrate: true,
	}

	c.Auth = Auth{
		SigningKey:        "development-signing-key",
		Issuer:            "go-staff",
		TokenExpiration:   30 * time.Minute,
		RefreshExpiration: 7 * 24 * time.Hour,
		CookieName:        "access_token",
		TokenLookup:       "header:Authorization,cookie:access_token",
		AuthScheme:        "Bearer",
		Phase1Roles:       []string{"manager_women", "manager_men"},
		Phase2Roles:       []string{"admin1", "admin2"},
		PhoneRegion:       "IR",
	}

	c.Registry = Registry{SweepInterval: time.Hour}

	c.Activity = Activity{
		Backend:       ActivityBackendSQL,
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "staff",
	}

	c.Log = Log{Level: "info", Format: "json"}
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	return apperr.ValidateWithOzzo(func() error {
		if err := validation.ValidateStruct(c,
			validation.Field(&c.Environment, validation.Required, validation.In(EnvDevelopment, EnvProduction)),
		); err != nil {
			return err
		}

		if err := validation.ValidateStruct(&c.Server,
			validation.Field(&c.Server.Address, validation.Required),
			validation.Field(&c.Server.RequestTimeout, validation.Required, validation.Min(time.Millisecond)),
		); err != nil {
			return err
		}

		if err := validation.ValidateStruct(&c.Database,
			validation.Field(&c.Database.Driver, validation.Required, validation.In(DriverSQLite, DriverPostgres)),
			validation.Field(&c.Database.DSN, validation.Required),
		); err != nil {
			return err
		}

		keyRules := []validation.Rule{validation.Required}
		if c.Environment == EnvProduction {
			keyRules = append(keyRules, validation.Length(32, 0))
		}

		if err := validation.ValidateStruct(&c.Auth,
			validation.Field(&c.Auth.SigningKey, keyRules...),
			validation.Field(&c.Auth.TokenExpiration, validation.Required, validation.Min(time.Second)),
			validation.Field(&c.Auth.RefreshExpiration, validation.Required, validation.Min(time.Second)),
			validation.Field(&c.Auth.CookieName, validation.Required),
			validation.Field(&c.Auth.TokenLookup, validation.Required),
			validation.Field(&c.Auth.Phase1Roles, validation.Required, validation.By(knownRoles)),
			validation.Field(&c.Auth.Phase2Roles, validation.Required, validation.By(knownRoles)),
		); err != nil {
			return err
		}

		var mongoRules []validation.Rule
		if c.Activity.Backend == ActivityBackendMongo {
			mongoRules = append(mongoRules, validation.Required)
		}

		return validation.ValidateStruct(&c.Activity,
			validation.Field(&c.Activity.Backend, validation.Required, validation.In(ActivityBackendSQL, ActivityBackendMongo)),
			validation.Field(&c.Activity.MongoURI, mongoRules...),
			validation.Field(&c.Activity.MongoDatabase, mongoRules...),
		)
	}, "invalid configuration")
}

// roleNames mirrors the closed role set of the auth package, which cannot be
// imported here.
var roleNames = []string{"admin1", "admin2", "manager_women", "manager_men", "employee"}

func knownRoles(value any) error {
	roles, _ := value.([]string)
	for _, r := range roles {
		found := false
		for _, n := range roleNames {
			if strings.EqualFold(strings.TrimSpace(r), n) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown role %q", r)
		}
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func (a Auth) GetSigningKey() string {
	return a.SigningKey
}

func (a Auth) GetSigningMethod() string {
	return "HS256"
}

func (a Auth) GetIssuer() string {
	return a.Issuer
}

func (a Auth) GetTokenExpiration() time.Duration {
	return a.TokenExpiration
}

func (a Auth) GetRefreshExpiration() time.Duration {
	return a.RefreshExpiration
}

func (a Auth) GetTokenLookup() string {
	return a.TokenLookup
}

func (a Auth) GetAuthScheme() string {
	return a.AuthScheme
}

func (a Auth) GetCookieName() string {
	return a.CookieName
}

// GetRegistrySalt falls back to the signing key when no dedicated salt is set.
func (a Auth) GetRegistrySalt() string {
	if a.RegistrySalt != "" {
		return a.RegistrySalt
	}
	return a.SigningKey
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
