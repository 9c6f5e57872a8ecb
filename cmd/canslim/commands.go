package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"CanSlimHunter/internal/chart"
	"CanSlimHunter/internal/collector"
	"CanSlimHunter/internal/config"
	"CanSlimHunter/internal/logger"
	"CanSlimHunter/internal/notifier"
	"CanSlimHunter/internal/runner"
)

var version = "dev"

const defaultConfigPath = "configs/config.yaml"

func newRootCmd() *cobra.Command {
	var cfgPath string
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:           "canslim",
		Short:         "CAN-SLIM stock screener",
		Long:          `Screens a ticker list with technical and fundamental CAN-SLIM filters and sends an alert with exit levels for each qualifier.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}
			if cfgPath == "" {
				cfgPath = defaultConfigPath
				if v := os.Getenv("CONFIG_PATH"); v != "" {
					cfgPath = v
				}
			}
			c, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			cfg = c
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Configuration file path (default $CONFIG_PATH or "+defaultConfigPath+")")

	rootCmd.AddCommand(newScreenCmd(func() *config.Config { return cfg }))
	rootCmd.AddCommand(newConfigCmd(func() *config.Config { return cfg }))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newScreenCmd(loaded func() *config.Config) *cobra.Command {
	var (
		tickersPath string
		provider    string
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Run one screening pass over the ticker list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loaded()
			if tickersPath != "" {
				cfg.Tickers.Path = tickersPath
			}
			if provider != "" {
				cfg.DataSource.Provider = provider
			}
			if dryRun {
				cfg.DryRun = true
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}

			log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rep, err := runScreen(ctx, cfg, log)
			if err != nil {
				log.Error("run failed", zap.Error(err))
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), runner.RenderSummary(rep))
			return nil
		},
	}

	cmd.Flags().StringVar(&tickersPath, "tickers", "", "Ticker list CSV (overrides tickers.path)")
	cmd.Flags().StringVar(&provider, "provider", "", "Data provider: yahoo or mock")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log alerts instead of sending them")
	return cmd
}

func runScreen(ctx context.Context, cfg *config.Config, log *zap.Logger) (*runner.Report, error) {
	tickers, err := collector.LoadTickers(cfg.Tickers.Path, log)
	if err != nil {
		return nil, err
	}

	var p collector.Provider
	switch cfg.DataSource.Provider {
	case "mock":
		p = collector.NewDemoProvider()
	default:
		p = collector.NewYahooProvider(cfg.DataSource.BaseURL, cfg.Proxy, cfg.DataSource.Timeout, log)
	}
	log.Info("data source", zap.String("provider", p.Name()), zap.Int("tickers", len(tickers)))

	charts, err := chart.NewRenderer(cfg.Chart.OutputDir, log)
	if err != nil {
		return nil, err
	}
	news := collector.NewYahooNews(cfg.DataSource.BaseURL, cfg.Proxy, cfg.DataSource.Timeout)

	r := runner.NewFromProvider(p, news, charts, buildNotifier(cfg, log), cfg, log)
	return r.Run(ctx, tickers)
}

func buildNotifier(cfg *config.Config, log *zap.Logger) notifier.Notifier {
	multi := &notifier.Multi{}
	if cfg.SlackEnabled() {
		multi.Notifiers = append(multi.Notifiers,
			notifier.NewSlack(cfg.Slack.BaseURL, cfg.Slack.BotToken, cfg.Slack.Channel, cfg.Proxy, log))
	}
	if cfg.LineEnabled() {
		multi.Notifiers = append(multi.Notifiers,
			notifier.NewLine(cfg.Line.BaseURL, cfg.Line.ChannelToken, cfg.Line.To, cfg.Proxy, log))
	}
	if len(multi.Notifiers) == 0 {
		return nil
	}
	return multi
}

func newConfigCmd(loaded func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := yaml.Marshal(loaded().Masked())
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "canslim %s\n", version)
		},
	}
}
