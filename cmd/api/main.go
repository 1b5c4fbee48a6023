package main

import (
	"fmt"
	"os"

	"github.com/fandom-project/back-end/internal/config"
	"github.com/fandom-project/back-end/internal/pkg"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "api",
	Short: "Fandom community backend",
	Long: `Fandom community backend: users, categories, communities, memberships and posts.

Without a subcommand the HTTP server is started (same as "api serve").`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "YAML config file (missing file falls back to defaults + env)")
	rootCmd.AddCommand(serveCmd, reconcileCmd)
}

// setup 读取配置并创建日志
func setup() (*config.Config, *pkg.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := pkg.NewLogger(cfg.Mode)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
