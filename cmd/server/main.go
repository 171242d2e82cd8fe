package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ReviewScraper/internal/database"
	"ReviewScraper/internal/observability"
	"ReviewScraper/internal/server"
	"ReviewScraper/pkg/config"
)

var (
	configPath string
	addr       string
)

var rootCmd = &cobra.Command{
	Use:          "server",
	Short:        "server exposes scraped products and reviews over HTTP.",
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		log.Logger = observability.NewLogger(cfg.Env, cfg.Log.Level)
		if addr == "" {
			addr = cfg.Server.Addr
		}

		repo, err := database.InitDB(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer repo.Close()

		return server.Start(cmd.Context(), addr, repo, observability.InitRegistry())
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "config.yml", "Path to the YAML config file.")
	rootCmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to server.addr).")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
