package commands

import (
	"github.com/spf13/cobra"

	"taskmate/internal/server"
)

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the terminal client over SSH",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ssh := a.cfg.SSH
			runtime, err := server.New(ssh, server.DefaultChain(ssh, a.logger), server.TUIHandler(a.client, a.logger), a.logger)
			if err != nil {
				return err
			}
			return runtime.Run(cmd.Context())
		},
	}
}
