package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	cl "cleanstart/internal/cli"
	"cleanstart/internal/sim"

	"github.com/fatih/color"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptTrack(tracks []cl.TrackInfo) (string, error) {
	accent.Println("\n== CHOOSE YOUR TECHNOLOGY ==")
	for i, t := range tracks {
		fmt.Printf("%d) %-28s %s\n", i+1, t.Name, t.Tagline)
	}
	for {
		fmt.Print("Track [1-", len(tracks), "]: ")
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil || n < 1 || n > len(tracks) {
			printWarn("Pick a number from the list.")
			continue
		}
		return string(tracks[n-1].Track), nil
	}
}

func renderState(st sim.State) {
	m := st.Metrics
	accent.Printf("\n== %s — Q%d/12 ==\n", st.TrackName, m.Quarter)

	fmt.Printf("Cash:            %s\n", colorizeUSD(m.Cash))
	fmt.Printf("Revenue:         %s\n", sim.FormatUSD(m.Revenue))
	fmt.Printf("Net Income:      %s\n", colorizeUSD(m.NetIncome))
	fmt.Printf("Valuation:       %s\n", sim.FormatUSD(m.Valuation))
	fmt.Printf("Unit Cost:       $%.2f\n", m.UnitCost)
	fmt.Printf("Tech Level:      %.2f\n", m.TechLevel)
	fmt.Printf("Market Share:    %.1f%%\n", m.MarketShare*100)
	fmt.Printf("Units Sold:      %d (cumulative %d)\n", m.UnitsSold, m.CumulativeProduction)
	fmt.Printf("Funding Raised:  %s (equity given %.0f%%)\n", sim.FormatUSD(m.TotalFundingRaised), m.EquityGiven*100)

	fmt.Println()
	accent.Println("Current Decisions")
	fmt.Printf("Price $%.0f | Production %d | Marketing %s | R&D %s\n",
		st.Decisions.Price, st.Decisions.Production,
		sim.FormatUSD(st.Decisions.Marketing), sim.FormatUSD(st.Decisions.RD))

	fmt.Println()
	accent.Println("Departments")
	fmt.Printf("%-14s %10s %14s\n", "NAME", "HEADCOUNT", "SALARY/QTR")
	for _, d := range st.Departments {
		fmt.Printf("%-14s %10d %14s\n", d.Name, d.Headcount, sim.FormatUSD(d.SalaryPerPerson))
	}

	fmt.Println()
	accent.Println("Competitors")
	fmt.Printf("%-18s %8s %10s %10s\n", "NAME", "TECH", "SHARE", "PRICE")
	for _, c := range st.Competitors {
		if !c.IsActive {
			continue
		}
		fmt.Printf("%-18s %8.2f %9.1f%% %10s\n", c.Name, c.TechLevel, c.MarketShare*100, fmt.Sprintf("$%.0f", c.Price))
	}

	if st.LastEvent != nil {
		fmt.Println()
		renderEvent(*st.LastEvent)
	}

	if st.GameOver {
		fmt.Println()
		renderGameOver(st)
	}
	fmt.Println()
}

func renderQuarterResult(res sim.QuarterResult) {
	accent.Printf("\n== QUARTER %d RESULTS ==\n", res.Quarter)
	fmt.Printf("Units Sold:   %d\n", res.UnitsSold)
	fmt.Printf("Revenue:      %s\n", sim.FormatUSD(res.Revenue))
	fmt.Printf("Net Income:   %s\n", colorizeUSD(res.NetIncome))
	fmt.Printf("Cash:         %s\n", colorizeUSD(res.Cash))
	fmt.Printf("Market Share: %.1f%%\n", res.MarketShare*100)
	fmt.Printf("Tech Level:   %.2f\n", res.TechLevel)
	fmt.Printf("Unit Cost:    $%.2f\n", res.UnitCost)
	if res.Event != nil {
		fmt.Println()
		renderEvent(*res.Event)
	}
	if res.GameOver {
		fmt.Println()
		if strings.Contains(res.Reason, "Bankruptcy") {
			danger.Println(res.Reason)
		} else {
			success.Println(res.Reason)
		}
	}
	fmt.Println()
}

func renderHistory(quarters []sim.Metrics) {
	accent.Println("\n== QUARTERLY HISTORY ==")
	if len(quarters) == 0 {
		printInfo("No quarters played yet.")
		return
	}
	fmt.Printf("%-4s %12s %12s %12s %8s %8s %12s\n", "QTR", "REVENUE", "NET", "CASH", "SHARE", "TECH", "VALUATION")
	for _, m := range quarters {
		fmt.Printf("%-4d %12s %12s %12s %7.1f%% %8.2f %12s\n",
			m.Quarter,
			sim.FormatUSD(m.Revenue),
			colorizeUSD(m.NetIncome),
			colorizeUSD(m.Cash),
			m.MarketShare*100,
			m.TechLevel,
			sim.FormatUSD(m.Valuation),
		)
	}
	fmt.Println()
}

func renderFundingResult(res sim.FundingResult) {
	if !res.Success {
		printWarn(res.Message)
		return
	}
	printSuccess(res.Message)
	if res.Dilution > 0 {
		fmt.Printf("Equity given up: %.0f%%\n", res.Dilution*100)
	}
}

func renderEvent(e sim.RandomEvent) {
	header := warn
	switch e.Effect {
	case "positive":
		header = success
	case "negative":
		header = danger
	}
	header.Printf("EVENT: %s\n", e.Title)
	fmt.Println(e.Description)
}

func renderGameOver(st sim.State) {
	if strings.Contains(st.GameOverReason, "Bankruptcy") {
		danger.Println(st.GameOverReason)
	} else {
		success.Println(st.GameOverReason)
	}
	fmt.Printf("Final Score: %.0f points\n", st.Score)
	printInfo(sim.ScoreRating(st.Score))
}

func colorizeUSD(v float64) string {
	text := sim.FormatUSD(v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

