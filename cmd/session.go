package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mstgnz/placetopay/infra/logger"
	"github.com/mstgnz/placetopay/provider/placetopay"
	"github.com/spf13/cobra"
)

const waitInterval = 5 * time.Second

// waitAttempts is the number of polls that fit in wait, rounded up, at least one
func waitAttempts(wait, interval time.Duration) int {
	attempts := int((wait + interval - 1) / interval)
	if attempts < 1 {
		return 1
	}
	return attempts
}

func sessionCmd(opts *rootOptions) *cobra.Command {
	var (
		outcome bool
		cancel  bool
		wait    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "session [requestId]",
		Short: "Query a checkout session",
		Long: `Print a checkout session as JSON.

Examples:
  placetopay session 123456
  placetopay session 123456 --outcome
  placetopay session 123456 --wait 2m`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.InitGlobalLogger(nil)
			client, err := newClient(opts, logger.GetGlobalLogger(), nil)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			requestID := args[0]

			var result any
			switch {
			case cancel:
				result, err = client.Sessions.Cancel(ctx, requestID)
			case wait > 0:
				result, err = client.Sessions.WaitForFinalStatus(ctx, requestID, placetopay.WaitOptions{
					PollInterval: waitInterval,
					MaxAttempts:  waitAttempts(wait, waitInterval),
				})
			case outcome:
				result, err = client.Sessions.Outcome(ctx, requestID)
			default:
				result, err = client.Sessions.Get(ctx, requestID)
			}
			if err != nil {
				return fmt.Errorf("session %s: %w", requestID, err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().BoolVar(&outcome, "outcome", false, "print the session outcome summary")
	cmd.Flags().BoolVar(&cancel, "cancel", false, "cancel the session")
	cmd.Flags().DurationVar(&wait, "wait", 0, "poll until the session reaches a final status")
	cmd.MarkFlagsMutuallyExclusive("outcome", "cancel", "wait")

	return cmd
}
