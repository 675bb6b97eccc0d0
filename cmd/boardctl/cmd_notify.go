package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"sbuboard/internal/amqp"
	applog "sbuboard/internal/log"
)

var (
	notifyDomain string
	notifyKey    string
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Tell every running dashboard to refetch a leaderboard",
	Long: `notify publishes a refresh message on AMQP_EXCHANGE. Dashboards whose
on-screen query matches the domain (and the key, when given) refetch it.`,
	Example: `  boardctl notify --domain attendance --key 2025-01-01-2025-05-30
  boardctl notify --domain completion
  boardctl notify --domain brag --key 2025-5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.AMQPEnabled() {
			return errors.New("AMQP_URL is not set")
		}
		domain, ok := applog.CanonicalDomain(notifyDomain)
		if !ok {
			return fmt.Errorf("unknown leaderboard domain %q", notifyDomain)
		}
		client, err := amqp.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			return err
		}
		defer client.Close()

		if err := client.PublishRefresh(cmd.Context(), domain, notifyKey); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "refresh sent: %s %s\n", domain, notifyKey)
		return nil
	},
}

func init() {
	notifyCmd.Flags().StringVar(&notifyDomain, "domain", "", "attendance, completion or brag")
	notifyCmd.Flags().StringVar(&notifyKey, "key", "", "cache key to refetch (default: every key)")
	_ = notifyCmd.MarkFlagRequired("domain")
}
