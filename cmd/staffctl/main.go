// Command staffctl runs operator tasks against the staff database.
//
// Usage:
//
//	staffctl migrate [-c config.json] [-driver sqlite] [-d dsn]
//	staffctl create-admin -employee-id N -name "Full Name" [-phone +98...]
//	staffctl sweep-tokens
//	staffctl config
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cli := &CLI{
		Stdout:       os.Stdout,
		ReadPassword: terminalPassword,
	}
	if err := cli.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "staffctl: %v\n", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: staffctl <migrate|create-admin|sweep-tokens|config> [flags]")
}
