/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/haxelion/fbx3d/pkg/catalog"
	"github.com/haxelion/fbx3d/pkg/config"
	"github.com/haxelion/fbx3d/pkg/di"
	"github.com/haxelion/fbx3d/pkg/fbx"
	"github.com/haxelion/fbx3d/pkg/logging"
)

var container *di.Container

// SetContainer injects the dependency container used by every command
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fbx",
	Short: "fbx - binary FBX inspector",
	Long: `fbx decodes binary FBX files into their node tree and lets you dump, query
and summarize them, keep a catalog of decode reports, or serve the decoder over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if container == nil {
			return fmt.Errorf("dependency container not initialized")
		}
		// init writes the config file, so it must not require one
		if cmd.Name() == "init" {
			return nil
		}
		return configure(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if container == nil {
			return nil
		}
		return container.Close()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if container != nil {
		// PersistentPostRunE is skipped when a command fails
		_ = container.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: OS-specific location)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level override (debug, info, warn, error)")
}

// configure loads the configuration and logger into the container. An explicit
// --config must exist; the default location is optional.
func configure(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	logLevel, _ := cmd.Flags().GetString("log-level")

	cfg := config.DefaultConfig()
	switch {
	case configPath != "":
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	case config.ConfigExists(config.GetDefaultConfigPath()):
		loaded, err := config.LoadConfig(config.GetDefaultConfigPath())
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	logger, err := logging.NewWithWriter(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	container.Configure(cfg, logger)
	return nil
}

// decodeFile decodes path with the configured decoder and builds its report
func decodeFile(path string) (*fbx.Document, *catalog.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	start := time.Now()
	doc, err := container.Decoder().DecodeDocument(bytes.NewReader(data))
	elapsed := time.Since(start)
	if err != nil {
		container.Logger().Debug("decode failed", zap.String("file", path), zap.Error(err))
		return nil, nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	container.Logger().Debug("decoded file",
		zap.String("file", path),
		zap.Uint32("version", doc.Version),
		zap.Int("roots", len(doc.Nodes)),
		zap.Duration("elapsed", elapsed),
	)

	return doc, catalog.NewReport(path, int64(len(data)), doc, elapsed), nil
}
