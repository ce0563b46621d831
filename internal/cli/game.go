package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/blackjack-go/internal/api/apierr"
	"github.com/mcoot/blackjack-go/internal/api/request"
	"github.com/mcoot/blackjack-go/internal/api/response"
)

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Single-player game commands",
	}

	cmd.AddCommand(newPlayStartCmd())
	for _, action := range []struct{ name, short string }{
		{"hit", "Draw a card on the active hand"},
		{"stand", "Close the active hand"},
		{"double", "Double the bet and draw exactly one card"},
		{"split", "Split a pair into two hands"},
	} {
		cmd.AddCommand(newPlayActionCmd(action.name, action.short))
	}
	cmd.AddCommand(newPlayRestartCmd())
	cmd.AddCommand(newPlayStateCmd())
	cmd.AddCommand(newPlayQuitCmd())

	return cmd
}

func newPlayStartCmd() *cobra.Command {
	var (
		name    string
		bet     int
		balance int
		fresh   bool
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Deal a new game",
		Long: `Deal a new game. The remembered session is reused when its round is
over; use --new to always open a fresh session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.StartGameRequest{
				PlayerName: name,
				Bet:        bet,
				Balance:    balance,
			}
			if !fresh {
				if id, err := cfg.LoadSession(); err == nil {
					req.SessionID = id
				}
			}

			var result response.StartGame
			err := client.Post(cmd.Context(), "/api/v1/game/start", req, &result)
			if req.SessionID != "" && isAPIError(err, apierr.CodeSessionNotFound) {
				// The remembered session expired; open a new one
				req.SessionID = ""
				err = client.Post(cmd.Context(), "/api/v1/game/start", req, &result)
			}
			if err != nil {
				return err
			}

			if err := cfg.SaveSession(result.SessionID); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Player name")
	cmd.Flags().IntVar(&bet, "bet", 100, "Bet for the round")
	cmd.Flags().IntVar(&balance, "balance", 1000, "Starting balance")
	cmd.Flags().BoolVar(&fresh, "new", false, "Start a new session")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newPlayActionCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.LoadSession()
			if err != nil {
				return err
			}

			var result response.GameState
			if err := client.Post(cmd.Context(), fmt.Sprintf("/api/v1/sessions/%s/game/%s", id, action), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newPlayRestartCmd() *cobra.Command {
	var bet int

	cmd := &cobra.Command{
		Use:   "restart",
		Short: "Deal the next round, carrying the balance over",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.LoadSession()
			if err != nil {
				return err
			}

			var result response.GameState
			if err := client.Post(cmd.Context(), fmt.Sprintf("/api/v1/sessions/%s/game/restart", id), request.RestartRequest{Bet: bet}, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&bet, "bet", 100, "Bet for the next round")
	return cmd
}

func newPlayStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the current game",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.LoadSession()
			if err != nil {
				return err
			}

			var result response.GameState
			if err := client.Get(cmd.Context(), fmt.Sprintf("/api/v1/sessions/%s/game", id), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newPlayQuitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quit",
		Short: "End the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.LoadSession()
			if err != nil {
				return err
			}

			if err := client.Delete(cmd.Context(), "/api/v1/sessions/"+id); err != nil {
				if !isAPIError(err, apierr.CodeSessionNotFound) {
					return err
				}
			}
			if err := cfg.ClearSession(); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Session ended")
			return nil
		},
	}
}

func isAPIError(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}
