package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	cl "cleanstart/internal/cli"
	"cleanstart/internal/config"
	"cleanstart/internal/sim"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "clst",
		Short:        "CleanStart CLI game client",
		SilenceUsage: true,
	}

	root.AddCommand(
		newNewCmd(&apiBase),
		newStatusCmd(&apiBase),
		newHistoryCmd(&apiBase),
		newAdvanceCmd(&apiBase),
		newFundCmd(&apiBase),
		newStaffCmd(&apiBase),
		newWatchCmd(&apiBase),
		newEndCmd(),
		newPlayCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newAPIClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func activeGame(apiBase *string) (*cl.Client, cl.Session, error) {
	sess, err := cl.LoadSession()
	if err != nil {
		return nil, cl.Session{}, fmt.Errorf("no active game, run `clst new` first: %w", err)
	}
	base := sess.APIBaseURL
	if strings.TrimSpace(*apiBase) != "" {
		base = *apiBase
	}
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(base), "/")), sess, nil
}

func newNewCmd(apiBase *string) *cobra.Command {
	var track string
	var seed int64
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new CleanStart playthrough",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newAPIClient(apiBase)

			if strings.TrimSpace(track) == "" {
				tracks, err := client.ListTracks(ctx)
				if err != nil {
					return err
				}
				picked, err := promptTrack(tracks)
				if err != nil {
					return err
				}
				track = picked
			}

			created, err := client.NewGame(ctx, track, seed)
			if err != nil {
				return err
			}
			if err := cl.SaveSession(cl.Session{
				GameID:     created.GameID,
				Track:      string(created.State.Track),
				APIBaseURL: client.BaseURL,
			}); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Company founded: %s", created.State.TrackName))
			renderState(created.State)
			return nil
		},
	}
	cmd.Flags().StringVar(&track, "track", "", "technology track (battery|solar|hydrogen|carbon_capture)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = random)")
	return cmd
}

func newStatusCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current company state",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, sess, err := activeGame(apiBase)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			st, err := client.GameState(ctx, sess.GameID)
			if err != nil {
				return err
			}
			renderState(st)
			return nil
		},
	}
}

func newHistoryCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show per-quarter metrics history",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, sess, err := activeGame(apiBase)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			quarters, err := client.GameHistory(ctx, sess.GameID)
			if err != nil {
				return err
			}
			renderHistory(quarters)
			return nil
		},
	}
}

func newAdvanceCmd(apiBase *string) *cobra.Command {
	var price float64
	var production int
	var marketing, rd float64
	cmd := &cobra.Command{
		Use:   "advance",
		Short: "Advance one quarter with the given decisions",
		Long:  "Flags left unset fall back to the previous quarter's values.",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, sess, err := activeGame(apiBase)
			if err != nil {
				return err
			}

			var d sim.Decisions
			if cmd.Flags().Changed("price") {
				d.Price = &price
			}
			if cmd.Flags().Changed("production") {
				d.Production = &production
			}
			if cmd.Flags().Changed("marketing") {
				d.Marketing = &marketing
			}
			if cmd.Flags().Changed("rd") {
				d.RD = &rd
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			res, err := client.Advance(ctx, sess.GameID, d)
			if err != nil {
				return err
			}
			renderQuarterResult(res)
			return nil
		},
	}
	cmd.Flags().Float64Var(&price, "price", 0, "unit price ($)")
	cmd.Flags().IntVar(&production, "production", 0, "planned production (units)")
	cmd.Flags().Float64Var(&marketing, "marketing", 0, "marketing spend ($)")
	cmd.Flags().Float64Var(&rd, "rd", 0, "R&D spend ($)")
	return cmd
}

func newFundCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:       "fund <source>",
		Short:     "Raise a funding round (angel|vc_a|vc_b|grant|debt)",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"angel", "vc_a", "vc_b", "grant", "debt"},
		RunE: func(cmd *cobra.Command, args []string) error {
			client, sess, err := activeGame(apiBase)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			res, err := client.RaiseFunding(ctx, sess.GameID, args[0])
			if err != nil {
				return err
			}
			renderFundingResult(res)
			return nil
		},
	}
}

func newStaffCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "staff <department> <delta>",
		Short: "Hire (positive) or fire (negative) in a department",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("delta must be an integer: %w", err)
			}
			client, sess, err := activeGame(apiBase)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			res, err := client.HireFire(ctx, sess.GameID, args[0], delta)
			if err != nil {
				return err
			}
			if res.Success {
				printSuccess(fmt.Sprintf("%s (headcount now %d)", res.Message, res.NewHeadcount))
			} else {
				printWarn(res.Message)
			}
			return nil
		},
	}
}

func newWatchCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream quarter results live as the game advances",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, sess, err := activeGame(apiBase)
			if err != nil {
				return err
			}

			url := client.StreamURL(sess.GameID)
			conn, _, err := websocket.DefaultDialer.DialContext(cmd.Context(), url, nil)
			if err != nil {
				return fmt.Errorf("dial stream: %w", err)
			}
			defer conn.Close()

			printInfo("Watching " + sess.GameID + " (Ctrl+C to stop)")
			for {
				var res sim.QuarterResult
				if err := conn.ReadJSON(&res); err != nil {
					if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
						return nil
					}
					return err
				}
				renderQuarterResult(res)
				if res.GameOver {
					return nil
				}
			}
		},
	}
}

func newEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end",
		Short: "Forget the active game session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cl.ClearSession(); err != nil {
				return err
			}
			printSuccess("Session cleared.")
			return nil
		},
	}
}

func newPlayCmd() *cobra.Command {
	var seed int64
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a full game in the terminal (no server needed)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(seed)
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = random)")
	return cmd
}
