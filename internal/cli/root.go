// Package cli implements the cryptcol command line tool.
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/syssam/cryptcol"
	"github.com/syssam/cryptcol/cipher"
	"github.com/syssam/cryptcol/config"
)

type globalOptions struct {
	Config  string
	Verbose bool
	KeyEnv  string
}

type commandDeps struct {
	out     io.Writer
	globals *globalOptions
	logger  func() *slog.Logger
}

// NewRootCommand returns the cryptcol command. Results are written to out,
// logs to errOut.
func NewRootCommand(out, errOut io.Writer, version string) *cobra.Command {
	globals := &globalOptions{}
	cmd := &cobra.Command{
		Use:           "cryptcol",
		Short:         "Inspect and apply field-level database encryption",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	flags := cmd.PersistentFlags()
	flags.StringVar(&globals.Config, "config", "cryptcol.yaml", "Path to the connections file")
	flags.BoolVarP(&globals.Verbose, "verbose", "v", false, "Log resolution and statements (values redacted)")
	flags.StringVar(&globals.KeyEnv, "key-env", "CRYPTCOL_KEY", "Environment variable holding the encryption key")

	deps := commandDeps{
		out:     out,
		globals: globals,
		logger: func() *slog.Logger {
			level := slog.LevelWarn
			if globals.Verbose {
				level = slog.LevelDebug
			}
			return slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))
		},
	}
	cmd.AddCommand(newCheckCommand(deps))
	cmd.AddCommand(newExprCommand(deps))
	cmd.AddCommand(newEncryptColumnCommand(deps))
	return cmd
}

func (d commandDeps) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(d.globals.Config)
	if err != nil {
		return nil, mapCommandError(err)
	}
	return cfg, nil
}

func (d commandDeps) registry(cfg *config.Config) *cipher.Registry {
	return cipher.NewRegistry(cfg, cipher.WithLogger(d.logger()))
}

func (d commandDeps) key() (cipher.Key, error) {
	v := os.Getenv(d.globals.KeyEnv)
	if v == "" {
		return "", mapCommandError(cryptcol.NewMissingKeyError("$"+d.globals.KeyEnv, ""))
	}
	return cipher.Key(v), nil
}
