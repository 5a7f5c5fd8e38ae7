// Command cleanstart-sim runs headless default-decision playthroughs for
// balance checking: how often the default strategy survives 12 quarters on a
// given track, and where the final metrics land.
package main

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"cleanstart/internal/sim"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	runs := envIntDefault("CLEANSTART_SIM_RUNS", 1000)
	baseSeed := envInt64Default("CLEANSTART_SIM_SEED", 1)
	trackName := envDefault("CLEANSTART_SIM_TRACK", string(sim.TrackSolar))

	track, err := sim.ParseTrack(trackName)
	if err != nil {
		logger.Error("bad track", "err", err)
		os.Exit(1)
	}

	logger.Info("batch started", "track", track, "runs", runs, "base_seed", baseSeed)

	completed := 0
	bankrupt := 0
	var sumValuation, sumCash, sumShare, sumScore float64

	for i := 0; i < runs; i++ {
		company, err := sim.NewSeeded(track, baseSeed+int64(i))
		if err != nil {
			logger.Error("new company", "err", err)
			os.Exit(1)
		}
		for {
			res, err := company.AdvanceQuarter(sim.Decisions{})
			if err != nil {
				logger.Error("advance failed", "run", i, "err", err)
				os.Exit(1)
			}
			if res.GameOver {
				break
			}
		}

		st := company.State()
		if strings.Contains(st.GameOverReason, "Bankruptcy") {
			bankrupt++
		} else {
			completed++
		}
		sumValuation += st.Metrics.Valuation
		sumCash += st.Metrics.Cash
		sumShare += st.Metrics.MarketShare
		sumScore += st.Score
	}

	n := float64(runs)
	logger.Info("batch complete",
		"track", track,
		"runs", runs,
		"completed", completed,
		"bankrupt", bankrupt,
		"avg_valuation", sumValuation/n,
		"avg_final_cash", sumCash/n,
		"avg_market_share", sumShare/n,
		"avg_score", sumScore/n,
	)
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envIntDefault(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envInt64Default(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
