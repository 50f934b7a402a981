package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/market_brief/app/market_brief/pkg/config"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/engine"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/logger"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/variant"
)

// version 构建时通过 ldflags 注入
var version = "dev"

var (
	configPath  string
	variantName string
	dryRun      bool
)

var rootCmd = &cobra.Command{
	Use:           "market_brief",
	Short:         "Generate a daily market briefing and publish it",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBrief,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect evidence, call the model and publish the report",
	RunE:  runBrief,
}

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the prompt that would be sent to the model",
	RunE:  printPrompt,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "config file")
	rootCmd.PersistentFlags().StringVar(&variantName, "variant", "", fmt.Sprintf("report variant %v (overrides config)", variant.Names()))
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "print the report instead of publishing")
	rootCmd.AddCommand(runCmd, promptCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Log.Errorf("运行失败: %v", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig 加载配置并初始化日志
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("无法加载配置文件: %w", err)
	}
	if variantName != "" {
		cfg.Variant = variantName
	}
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Printf("无法初始化日志: %v", err)
	}
	return cfg, nil
}

func runBrief(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	validate := cfg.Validate
	if dryRun {
		validate = cfg.ValidateDryRun
	}
	if err := validate(); err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	logger.Log.Infof("启动市场简报 [%s]...", cfg.Variant)
	e, cleanup, err := engine.NewFromConfig(cmd.Context(), cfg, engine.BuildOptions{SkipPublisher: dryRun})
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := e.Run(cmd.Context(), engine.RunOptions{DryRun: dryRun, Out: cmd.OutOrStdout()})
	if err != nil {
		return err
	}
	if !res.LivePrices {
		logger.Log.Warn("本次报告使用模型估价")
	}
	logger.Log.Infof("完成 (run_id=%s)", res.RunID)
	return nil
}

func printPrompt(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	e, cleanup, err := engine.NewFromConfig(cmd.Context(), cfg, engine.BuildOptions{SkipLLM: true, SkipPublisher: true})
	if err != nil {
		return err
	}
	defer cleanup()

	text, err := e.Prompt(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
