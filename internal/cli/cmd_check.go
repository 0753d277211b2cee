package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syssam/cryptcol/cipher"
)

func newCheckCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Resolve the cipher engine of every configured connection",
		Example: "  cryptcol check\n" +
			"  cryptcol --config prod.yaml -v check",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("check does not accept positional arguments")
			}
			cfg, err := deps.loadConfig()
			if err != nil {
				return err
			}
			var (
				reg    = deps.registry(cfg)
				names  = cfg.Names()
				failed int
			)
			for _, name := range names {
				conn, _ := cfg.Connection(name)
				label := name
				if name == cfg.DefaultName() {
					label += " (default)"
				}
				if _, err := reg.ServiceFor(name); err != nil {
					failed++
					supported := cipher.DefaultTable().Ciphers(conn.Driver)
					if len(supported) == 0 {
						supported = []string{"none"}
					}
					fmt.Fprintf(deps.out, "%s: %s/%s: FAIL %v (supported: %s)\n",
						label, conn.Driver, conn.Cipher, err, strings.Join(supported, ", "))
					continue
				}
				fmt.Fprintf(deps.out, "%s: %s/%s: ok\n", label, conn.Driver, conn.Cipher)
			}
			if failed > 0 {
				return &ExitError{
					Code: ExitCodeConfiguration,
					Err:  fmt.Errorf("%d of %d connections cannot resolve a cipher engine", failed, len(names)),
				}
			}
			return nil
		},
	}
}
