/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"
	"os"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/api"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "monitoringhub",
	Short: "MonitoringHub task completion server",
	Long: `MonitoringHub serves food-safety monitoring tasks (personal tasks,
checklists and detail forms). It keeps per-user drafts, records one
completion per task and calendar day, and pushes completions to open forms.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file path (default: search in current directory, ./config, or $HOME/.monitoringhub)")
}

// GetRootCmd 返回根命令(用于测试)
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// loadConfig 加载配置并创建日志记录器
func loadConfig(cmd *cobra.Command) (*config.Config, *logrus.Logger, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := api.NewLoggerFromConfig(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	api.SetLogger(logger)
	return cfg, logger, nil
}
