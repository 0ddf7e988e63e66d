package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-staff/apperr"
	"github.com/goliatone/go-staff/auth"
	"github.com/goliatone/go-staff/config"
	"github.com/goliatone/go-staff/store"
)

func newTestCLI(t *testing.T, passwords ...string) (*CLI, *bytes.Buffer, string) {
	t.Helper()
	auth.PasswordHashCost = bcrypt.MinCost

	dsn := "file:" + filepath.Join(t.TempDir(), "staff.db")
	out := &bytes.Buffer{}
	cli := &CLI{
		Stdout: out,
		Lookup: func(string) (string, bool) { return "", false },
		ReadPassword: func(string) (string, error) {
			if len(passwords) == 0 {
				return "", nil
			}
			p := passwords[0]
			passwords = passwords[1:]
			return p, nil
		},
	}
	return cli, out, dsn
}

func TestMigrate(t *testing.T) {
	cli, out, dsn := newTestCLI(t)

	require.NoError(t, cli.Run(context.Background(), []string{"migrate", "-d", dsn}))
	assert.Contains(t, out.String(), "schema at version 4")
}

func TestCreateAdmin(t *testing.T) {
	cli, out, dsn := newTestCLI(t, "s3cret", "s3cret")
	ctx := context.Background()

	require.NoError(t, cli.Run(ctx, []string{"create-admin", "-d", dsn, "-employee-id", "10", "-name", "Root Admin"}))
	assert.Contains(t, out.String(), "created admin 10")

	db, err := store.Open(config.Database{Driver: config.DriverSQLite, DSN: dsn})
	require.NoError(t, err)
	defer db.Close()

	emp, err := auth.NewEmployeesRepository(db).GetByNumber(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin1, emp.Role)
	assert.NoError(t, auth.ComparePasswordAndHash("s3cret", emp.PasswordHash))
}

func TestCreateAdminRejectsBadInput(t *testing.T) {
	ctx := context.Background()

	cli, _, dsn := newTestCLI(t, "s3cret", "other")
	err := cli.Run(ctx, []string{"create-admin", "-d", dsn, "-employee-id", "10", "-name", "Root"})
	assert.EqualError(t, err, "passwords do not match")

	cli, _, dsn = newTestCLI(t, "s3cret", "s3cret")
	err = cli.Run(ctx, []string{"create-admin", "-d", dsn, "-employee-id", "5", "-name", "Root"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSweepTokens(t *testing.T) {
	cli, out, dsn := newTestCLI(t)

	require.NoError(t, cli.Run(context.Background(), []string{"sweep-tokens", "-d", dsn}))
	assert.Contains(t, out.String(), "deleted 0 expired tokens")
}

func TestConfigDumpMasksSecrets(t *testing.T) {
	cli, out, _ := newTestCLI(t)

	require.NoError(t, cli.Run(context.Background(), []string{"config"}))
	assert.NotContains(t, out.String(), "development-signing-key")
	assert.Contains(t, out.String(), "********")
}

func TestUnknownCommand(t *testing.T) {
	cli, _, _ := newTestCLI(t)
	assert.ErrorIs(t, cli.Run(context.Background(), []string{"explode"}), errUsage)
	assert.ErrorIs(t, cli.Run(context.Background(), nil), errUsage)
}
