package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/syssam/cryptcol"
	"github.com/syssam/cryptcol/dialect"
	"github.com/syssam/cryptcol/dialect/sql"
)

func newEncryptColumnCommand(deps commandDeps) *cobra.Command {
	var (
		connection string
		table      string
		column     string
		dryRun     bool
		slow       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "encrypt-column",
		Short: "Encrypt the existing plaintext values of a column in place",
		Long: "Encrypt every non-NULL value of a column with the connection's cipher engine.\n" +
			"The column must already be able to store ciphertext, and it must not hold\n" +
			"encrypted values yet: running the command twice encrypts them twice.",
		Example: "  CRYPTCOL_KEY=secret cryptcol encrypt-column --table people --column ssn\n" +
			"  cryptcol encrypt-column -c reports --table people --column ssn --dry-run",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("encrypt-column does not accept positional arguments")
			}
			if !sql.IsIdentifier(table) {
				return usageErrorf("--table: %q is not an identifier", table)
			}
			if !sql.IsIdentifier(column) {
				return usageErrorf("--column: %q is not an identifier", column)
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
			expr := eng.EncryptExpression(sql.QuoteIdent(conn.Driver, column), key, false)
			query, qargs := sql.Dialect(conn.Driver).
				Update(table).
				Set(column, sql.Raw(expr)).
				Where(sql.NotNull(column)).
				Query()
			if dryRun {
				_, err := fmt.Fprintln(deps.out, sql.Redact(conn.Driver, query))
				return mapCommandError(err)
			}

			drv, err := cfg.Open(connection)
			if err != nil {
				return mapCommandError(err)
			}
			defer drv.Close()
			logger := deps.logger()
			stats := sql.NewStatsDriver(drv, sql.WithSlowThreshold(slow), sql.WithSlowQueryLog(logger))
			var exec dialect.ExecQuerier = stats
			if deps.globals.Verbose {
				exec = sql.NewDebugDriver(stats, logger)
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			var res sql.Result
			if err := exec.Exec(ctx, query, qargs, &res); err != nil {
				return mapCommandError(err)
			}
			logger.Debug("encrypt-column: done", "stats", stats.QueryStats().Stats().String())
			n, err := res.RowsAffected()
			if err != nil {
				return mapCommandError(err)
			}
			_, err = fmt.Fprintf(deps.out, "encrypted %d rows of %s.%s\n", n, table, column)
			return mapCommandError(err)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&connection, "connection", "c", "", "Connection name (default connection if empty)")
	flags.StringVar(&table, "table", "", "Table to update")
	flags.StringVar(&column, "column", "", "Column to encrypt")
	flags.BoolVar(&dryRun, "dry-run", false, "Print the statement, with literals masked, instead of running it")
	flags.DurationVar(&slow, "slow-threshold", time.Second, "Log the statement, with literals masked, when it runs longer than this")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("column")
	return cmd
}
