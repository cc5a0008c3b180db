package main

import (
	"github.com/iamvkosarev/ai-chat-web/config"
	"github.com/iamvkosarev/ai-chat-web/internal/app"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to a YAML config file; the environment is used when empty")
	return cmd
}
