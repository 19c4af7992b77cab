package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"thot/internal/analytics"
	"thot/internal/cli"
	"thot/internal/config"
	"thot/internal/services"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Send the income projection digest now",
	Long: "Project the income of every active business unit and send the digest " +
		"the worker sends on its schedule. Mails through SMTP when configured.",
	RunE: runDigest,
}

func init() {
	rootCmd.AddCommand(digestCmd)
}

func runDigest(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	repo, logger, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	builder := services.NewDigestBuilder(repo, analytics.NewService(repo, nil, logger), cli.NewNotifier(cfg, logger), logger)
	if err := builder.Send(cmd.Context()); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "digest sent")
	return nil
}
