package main

import (
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var scrapeMax int

var scrapeCmd = &cobra.Command{
	Use:   "scrape <competitor-id> <url>",
	Short: "Scrape reviews for one competitor into the store",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, cfg, "scrape")
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Scraper.ScrapeDetailed(ctx, args[0], args[1], scrapeMax)
		if err != nil {
			return err
		}

		zap.L().Info("scrape complete",
			zap.String("competitor_id", res.CompetitorID),
			zap.Int("persisted", res.Persisted),
		)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	scrapeCmd.Flags().IntVar(&scrapeMax, "max", 0, "max reviews to capture (default from config)")
	rootCmd.AddCommand(scrapeCmd)
}
