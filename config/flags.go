package config

import (
	"flag"
	"io"
	"strings"
	"time"
)

// configFileFromArgs finds the value of -config or -c without parsing the
// rest of the command line.
func configFileFromArgs(args []string) string {
	for i := 0; i < len(args); i++ {
		arg := strings.TrimLeft(args[i], "-")
		if arg == args[i] {
			continue
		}
		name, value, hasValue := strings.Cut(arg, "=")
		if name != "config" && name != "c" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string    HTTP bind address (e.g. ":8080")
//	-driver      database driver (sqlite, postgres)
//	-d string    database DSN
//	-s string    JWT HMAC signing key
//	-t int       access token validity, minutes
//	-r int       refresh token validity, minutes
//	-l string    log level
//	-config, -c  JSON configuration file (read earlier, accepted here)
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("staff", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var configFile string
	fs.StringVar(&configFile, "config", "", "JSON configuration file")
	fs.StringVar(&configFile, "c", "", "JSON configuration file (shorthand)")

	fs.StringVar(&config.Server.Address, "a", config.Server.Address, "address and port to run server")
	fs.StringVar(&config.Database.Driver, "driver", config.Database.Driver, "database driver")
	fs.StringVar(&config.Database.DSN, "d", config.Database.DSN, "database DSN")
	fs.StringVar(&config.Auth.SigningKey, "s", config.Auth.SigningKey, "signing key")
	fs.StringVar(&config.Log.Level, "l", config.Log.Level, "log level")

	accessTTL := fs.Int("t", int(config.Auth.TokenExpiration.Minutes()), "access token validity (in minutes)")
	refreshTTL := fs.Int("r", int(config.Auth.RefreshExpiration.Minutes()), "refresh token validity (in minutes)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.Auth.TokenExpiration = time.Duration(*accessTTL) * time.Minute
		case "r":
			config.Auth.RefreshExpiration = time.Duration(*refreshTTL) * time.Minute
		}
	})
	return nil
}
