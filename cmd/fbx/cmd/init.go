/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haxelion/fbx3d/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a configuration file with default decoder limits, catalog location,
server and logging settings, and create the catalog directory.

Examples:
  fbx init
  fbx init --config ./fbx3d.yaml --catalog-dir ./reports
  fbx init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		catalogDir, _ := cmd.Flags().GetString("catalog-dir")
		force, _ := cmd.Flags().GetBool("force")

		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		cfg, err := initializeConfig(configPath, catalogDir, force)
		if err != nil {
			return err
		}

		cmd.Printf("Configuration written to %s\n", configPath)
		cmd.Printf("Catalog directory: %s\n", cfg.Catalog.Dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("catalog-dir", "", "Catalog directory (default: ./data/catalog)")
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration file")
}

// initializeConfig writes the default configuration to configPath
func initializeConfig(configPath, catalogDir string, force bool) (*config.Config, error) {
	if config.ConfigExists(configPath) && !force {
		return nil, fmt.Errorf("config file already exists: %s (use --force to overwrite)", configPath)
	}

	cfg := config.DefaultConfig()
	if catalogDir != "" {
		cfg.Catalog.Dir = catalogDir
	}

	if err := os.MkdirAll(cfg.Catalog.Dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}
	if err := config.SaveConfig(cfg, configPath); err != nil {
		return nil, err
	}
	return cfg, nil
}
