package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/blackjack-go/internal/api/response"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Long: `Check server health. Exits non-zero when the server is unreachable or
reports its storage as degraded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			var result response.Health
			if err := client.Get(cmd.Context(), "/api/v1/health", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			if cfg.Output != "json" {
				out.PrintMessage(fmt.Sprintf("Latency: %s", time.Since(start).Round(time.Millisecond)))
			}
			return nil
		},
	}
}
