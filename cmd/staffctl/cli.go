package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goliatone/go-print"
	"github.com/uptrace/bun"
	"golang.org/x/term"

	"github.com/goliatone/go-staff/auth"
	"github.com/goliatone/go-staff/config"
	"github.com/goliatone/go-staff/employees"
	"github.com/goliatone/go-staff/logging"
	"github.com/goliatone/go-staff/store"
)

var (
	errUsage    = errors.New("unknown command")
	stdinReader = bufio.NewReader(os.Stdin)
)

// CLI holds the process streams so commands can be driven from tests.
type CLI struct {
	Stdout io.Writer
	// ReadPassword prompts for a secret on the controlling terminal.
	ReadPassword func(prompt string) (string, error)
	// Lookup replaces os.LookupEnv when set.
	Lookup func(string) (string, bool)
}

func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		usage(c.Stdout)
		return errUsage
	}

	switch args[0] {
	case "migrate":
		return c.migrate(ctx, args[1:])
	case "create-admin":
		return c.createAdmin(ctx, args[1:])
	case "sweep-tokens":
		return c.sweepTokens(ctx, args[1:])
	case "config":
		return c.dumpConfig(args[1:])
	case "help", "-h", "--help":
		usage(c.Stdout)
		return nil
	default:
		usage(c.Stdout)
		return fmt.Errorf("%w %q", errUsage, args[0])
	}
}

// configFlags registers the flags every command shares and returns a loader
// for the resulting configuration.
func (c *CLI) configFlags(fs *flag.FlagSet) func() (*config.Config, error) {
	path := fs.String("c", "", "JSON configuration file")
	driver := fs.String("driver", "", "database driver")
	dsn := fs.String("d", "", "database DSN")

	return func() (*config.Config, error) {
		var args []string
		if *path != "" {
			args = append(args, "-c", *path)
		}
		if *driver != "" {
			args = append(args, "-driver", *driver)
		}
		if *dsn != "" {
			args = append(args, "-d", *dsn)
		}
		opts := []config.Option{config.WithArgs(args)}
		if c.Lookup != nil {
			opts = append(opts, config.WithLookup(c.Lookup))
		}
		return config.Load(opts...)
	}
}

func (c *CLI) open(ctx context.Context, cfg *config.Config) (*bun.DB, error) {
	db, err := store.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (c *CLI) migrate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	load := c.configFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := load()
	if err != nil {
		return err
	}

	db, err := c.open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := store.MigrationVersion(ctx, db)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Stdout, "schema at version %d\n", version)
	return nil
}

func (c *CLI) createAdmin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	load := c.configFlags(fs)
	number := fs.Int("employee-id", 0, "employee number (10-999)")
	name := fs.String("name", "", "full name")
	phone := fs.String("phone", "", "phone number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := load()
	if err != nil {
		return err
	}

	password, err := c.ReadPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := c.ReadPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}

	in := employees.CreateInput{
		EmployeeID: *number,
		FullName:   *name,
		Phone:      *phone,
		Role:       auth.RoleAdmin1,
		Password:   password,
	}
	if err := in.Validate(); err != nil {
		return err
	}
	normalized, err := employees.NormalizePhone(in.Phone, cfg.Auth.PhoneRegion)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	db, err := c.open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	created, err := auth.NewEmployeesRepository(db).Create(ctx, &auth.Employee{
		EmployeeNumber: in.EmployeeID,
		FullName:       in.FullName,
		Phone:          normalized,
		Role:           auth.RoleAdmin1,
		PasswordHash:   hash,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Stdout, "created admin %d (%s)\n", created.EmployeeNumber, created.ID)
	return nil
}

func (c *CLI) sweepTokens(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sweep-tokens", flag.ContinueOnError)
	load := c.configFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := load()
	if err != nil {
		return err
	}

	db, err := c.open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	registry := auth.NewRegistry(db, cfg.Auth.GetRegistrySalt(), auth.WithRegistryLogger(logging.Nop{}))
	n, err := registry.SweepExpired(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Stdout, "deleted %d expired tokens\n", n)
	return nil
}

// dumpConfig prints the effective configuration with secrets masked.
func (c *CLI) dumpConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	load := c.configFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := load()
	if err != nil {
		return err
	}

	masked := *cfg
	masked.Auth.SigningKey = mask(masked.Auth.SigningKey)
	masked.Auth.RegistrySalt = mask(masked.Auth.RegistrySalt)
	fmt.Fprintln(c.Stdout, print.MaybePrettyJSON(masked))
	return nil
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}

// terminalPassword reads without echo when stdin is a terminal and falls
// back to a plain line otherwise, so the command can be scripted.
func terminalPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := stdinReader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
