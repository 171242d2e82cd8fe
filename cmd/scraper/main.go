package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ReviewScraper/internal/app"
	"ReviewScraper/internal/observability"
	"ReviewScraper/pkg/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "scraper",
	Short:        "scraper collects products and reviews from Best Buy and Macy's.",
	SilenceUsage: true,
}

var tasks = []struct {
	name, short string
}{
	{"bestbuy", "Scrape Best Buy products and their review pages."},
	{"macys", "Scrape Macy's products and reviews through the product API."},
	{"macys-html", "Scrape Macy's product pages (no reviews)."},
	{"collect-urls", "Collect Macy's product URLs from category listing pages."},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yml", "Path to the YAML config file.")
	for _, t := range tasks {
		task := t.name
		rootCmd.AddCommand(&cobra.Command{
			Use:   task,
			Short: t.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runTask(cmd.Context(), task)
			},
		})
	}
}

func runTask(ctx context.Context, task string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	log.Logger = observability.NewLogger(cfg.Env, cfg.Log.Level)
	observability.Serve(cfg.Server.MetricsAddr, observability.InitRegistry())

	application, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	log.Info().Str("task", task).Msg("running task")
	return application.Run(ctx, task)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
