package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xkilldash9x/deskpilot/internal/config"
	"github.com/xkilldash9x/deskpilot/internal/mcp"
	"github.com/xkilldash9x/deskpilot/internal/observability"
)

// newServeCmd creates the `serve` command: attach to the terminal and host
// the HTTP/websocket boundary for a calling agent.
func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Attach to the trading terminal and serve the automation API",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr")); err != nil {
				return err
			}
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			// Re-read the config now that flags are bound, so --addr
			// overrides the file and environment.
			cfg, err := config.NewFromViper(viper.GetViper())
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(cfg, logger)
			if err != nil {
				return err
			}
			return server.Start(cmd.Context())
		},
	}

	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	return serveCmd
}

func init() {
	rootCmd.AddCommand(newServeCmd())
}
