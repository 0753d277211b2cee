package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/cryptcol"
	"github.com/syssam/cryptcol/dialect/sql"
)

func newExprCommand(deps commandDeps) *cobra.Command {
	var (
		connection string
		decrypt    bool
		column     bool
		showKey    bool
	)
	cmd := &cobra.Command{
		Use:   "expr <text>",
		Short: "Print the SQL expression that encrypts or decrypts a value",
		Long: "Print the SQL expression the connection's cipher engine produces for a value\n" +
			"or, with --column, for a column reference. Literals are masked unless\n" +
			"--show-key is given.",
		Example: "  CRYPTCOL_KEY=secret cryptcol expr '123-45-6789'\n" +
			"  CRYPTCOL_KEY=secret cryptcol expr --decrypt --column ssn --show-key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErrorf("expr expects exactly one argument, got %d", len(args))
			}
			cfg, err := deps.loadConfig()
			if err != nil {
				return err
			}
			conn, ok := cfg.Connection(connection)
			if !ok {
				return mapCommandError(cryptcol.NewConfigurationError(connection, "", "", "connection is not configured"))
			}
			eng, err := deps.registry(cfg).ServiceFor(connection)
			if err != nil {
				return mapCommandError(err)
			}
			key, err := deps.key()
			if err != nil {
				return err
			}
			text, quote := args[0], true
			if column {
				if !sql.IsIdentifier(text) {
					return usageErrorf("%q is not a column name", text)
				}
				text, quote = sql.QuoteIdent(conn.Driver, text), false
			}
			expr := eng.EncryptExpression(text, key, quote)
			if decrypt {
				expr = eng.DecryptExpression(text, key, quote)
			}
			if !showKey {
				expr = sql.Redact(conn.Driver, expr)
			}
			_, err = fmt.Fprintln(deps.out, expr)
			return mapCommandError(err)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&connection, "connection", "c", "", "Connection name (default connection if empty)")
	flags.BoolVarP(&decrypt, "decrypt", "d", false, "Print the decrypt expression")
	flags.BoolVar(&column, "column", false, "Treat the argument as a column name")
	flags.BoolVar(&showKey, "show-key", false, "Print literals, including the key, unmasked")
	return cmd
}
