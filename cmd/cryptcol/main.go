package main

import (
	"errors"
	"os"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/syssam/cryptcol/internal/cli"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cmd := cli.NewRootCommand(os.Stdout, os.Stderr, version)
	if err := cmd.Execute(); err != nil {
		cmd.PrintErrln("error:", err)
		var withExitCode interface{ ExitCode() int }
		if errors.As(err, &withExitCode) {
			os.Exit(withExitCode.ExitCode())
		}
		os.Exit(1)
	}
}
