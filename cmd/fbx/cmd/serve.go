/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/haxelion/fbx3d/pkg/api"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the REST API server. Uploaded files are decoded with the configured
limits; reports can be stored in and browsed from the catalog. Prometheus metrics
are exposed at /metrics.

Examples:
  fbx serve
  fbx serve --bind 0.0.0.0 --port 9000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := container.Config()
		if cmd.Flags().Changed("bind") {
			cfg.Server.Bind, _ = cmd.Flags().GetString("bind")
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("api-key") {
			cfg.Server.APIKey, _ = cmd.Flags().GetString("api-key")
		}

		cat, err := container.Catalog()
		if err != nil {
			return err
		}

		serverConfig := api.ServerConfig{
			Bind:           cfg.Server.Bind,
			Port:           cfg.Server.Port,
			MaxUploadBytes: cfg.Server.MaxUploadBytes,
			APIKey:         cfg.Server.APIKey,
			DecoderOptions: cfg.Decoder.Options(),
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger := container.Logger()
		logger.Info("serving",
			zap.String("bind", cfg.Server.Bind),
			zap.Int("port", cfg.Server.Port),
			zap.String("catalog", cfg.Catalog.Dir),
		)

		starter := container.GetServerFactory().CreateServerStarter()
		if err := starter.StartServer(ctx, cat, serverConfig, container.Metrics(), logger); err != nil {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind server to")
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("api-key", "", "Require this X-API-Key on decode and report endpoints")
}
