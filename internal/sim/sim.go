package sim

import (
	"errors"
	"fmt"
	"math"
	mathrand "math/rand"
	"strconv"
	"strings"
	"time"
)

const (
	StartingCash     = float64(3_000_000)
	SeedCapital      = float64(3_000_000)
	FixedOverhead    = float64(50_000)
	MarketGrowthRate = 0.05 // per quarter, compounding
	BankruptcyFloor  = float64(-1_000_000)
	FinalQuarter     = 12

	eventProbability = 0.20
	grantFailureRate = 0.40
	seriesBGateFunds = float64(2_000_000)
)

var (
	ErrGameOver             = errors.New("game is over")
	ErrNoActiveCompetitors  = errors.New("no active competitors")
	ErrInvalidDecision      = errors.New("invalid decision")
	ErrUnknownDepartment    = errors.New("unknown department")
	ErrUnknownTrack         = errors.New("unknown technology track")
	ErrUnknownFundingSource = errors.New("unknown funding source")
)

// Company is the simulation engine for one playthrough. It owns all mutable
// game state and is mutated in place by AdvanceQuarter, RaiseFunding, and
// HireFire. Single-threaded by contract: each command runs to completion
// before the next is issued.
type Company struct {
	track  TechTrack
	params trackParams

	metrics Metrics
	history []Metrics

	departments []Department
	competitors []Competitor

	cumulativeRD float64

	// Decision inputs, overwritten each quarter by the caller.
	price      float64
	production int
	marketing  float64
	rd         float64

	gameOver       bool
	gameOverReason string
	lastEvent      *RandomEvent

	rng *mathrand.Rand
}

// New constructs a company with a time-based random seed.
func New(track TechTrack) (*Company, error) {
	return NewSeeded(track, time.Now().UnixNano())
}

// NewSeeded constructs a company with an explicit seed. Two companies built
// with the same track and seed replay identically for identical decisions.
func NewSeeded(track TechTrack, seed int64) (*Company, error) {
	params, ok := trackTable[track]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTrack, track)
	}
	c := &Company{
		track:  track,
		params: params,
		metrics: Metrics{
			Cash:               StartingCash,
			TechLevel:          1.0,
			UnitCost:           params.BaseUnitCost,
			Valuation:          3_000_000,
			TotalFundingRaised: SeedCapital,
		},
		departments: []Department{
			{Name: "Engineering", Headcount: 5, SalaryPerPerson: 35_000},
			{Name: "Sales", Headcount: 3, SalaryPerPerson: 28_000},
			{Name: "Marketing", Headcount: 2, SalaryPerPerson: 25_000},
			{Name: "Operations", Headcount: 4, SalaryPerPerson: 27_000},
		},
		competitors: []Competitor{
			{Name: "TechPower Inc", TechLevel: 1.0, MarketShare: 0.30, Price: 420, IsActive: true},
			{Name: "GreenFuture Corp", TechLevel: 0.95, MarketShare: 0.25, Price: 440, IsActive: true},
			{Name: "EcoInnovate", TechLevel: 0.9, MarketShare: 0.20, Price: 460, IsActive: true},
		},
		price:      450,
		production: 1000,
		marketing:  50_000,
		rd:         100_000,
		rng:        mathrand.New(mathrand.NewSource(seed)),
	}
	return c, nil
}

func (c *Company) Track() TechTrack { return c.track }

func (c *Company) GameOver() (bool, string) { return c.gameOver, c.gameOverReason }

// AdvanceQuarter runs the 13-step quarter pipeline. The stage order matters:
// each stage reads the outputs of the previous one. All guards run before the
// first mutation, so a rejected call leaves the prior quarter's state intact.
func (c *Company) AdvanceQuarter(d Decisions) (QuarterResult, error) {
	if c.gameOver {
		return QuarterResult{}, fmt.Errorf("%w: %s", ErrGameOver, c.gameOverReason)
	}
	if err := validateDecisions(d); err != nil {
		return QuarterResult{}, err
	}
	if c.activeCompetitorCount() == 0 {
		return QuarterResult{}, ErrNoActiveCompetitors
	}

	// 1. Overwrite decision inputs.
	if d.Price != nil {
		c.price = *d.Price
	}
	if d.Production != nil {
		c.production = *d.Production
	}
	if d.Marketing != nil {
		c.marketing = *d.Marketing
	}
	if d.RD != nil {
		c.rd = *d.RD
	}

	// 2. New quarter.
	c.metrics.Quarter++

	// 3-4. Technology, then unit cost (unit cost reads the new tech level).
	c.updateTechnology()
	c.updateUnitCost()

	// 5-6. Demand, sales, cumulative production.
	demand := c.calculateDemand()
	sold := c.production
	if demand < sold {
		sold = demand
	}
	c.metrics.UnitsSold = sold
	c.metrics.CumulativeProduction += sold

	// 7. Financials.
	c.metrics.Revenue = float64(sold) * c.price
	c.metrics.COGS = float64(sold) * c.metrics.UnitCost
	c.metrics.GrossProfit = c.metrics.Revenue - c.metrics.COGS
	c.metrics.OperatingExpenses = c.salaryCosts() + c.marketing + c.rd + FixedOverhead
	c.metrics.NetIncome = c.metrics.GrossProfit - c.metrics.OperatingExpenses
	c.metrics.Cash += c.metrics.NetIncome

	// 8-10. Market share, competitor drift, valuation.
	c.updateMarketShare()
	c.updateCompetitors()
	c.updateValuation()

	// 11. Random event.
	var event *RandomEvent
	if c.rng.Float64() < eventProbability {
		event = c.triggerRandomEvent()
	}

	// 12. Terminal conditions.
	if c.metrics.Cash < BankruptcyFloor {
		c.gameOver = true
		c.gameOverReason = "Bankruptcy - Cash balance below -$1M"
	} else if c.metrics.Quarter >= FinalQuarter {
		c.gameOver = true
		c.gameOverReason = "Game Complete - 12 quarters finished"
	}

	// 13. Immutable history snapshot.
	c.history = append(c.history, c.metrics)

	return QuarterResult{
		Quarter:     c.metrics.Quarter,
		UnitsSold:   c.metrics.UnitsSold,
		Revenue:     c.metrics.Revenue,
		NetIncome:   c.metrics.NetIncome,
		Cash:        c.metrics.Cash,
		MarketShare: c.metrics.MarketShare,
		TechLevel:   c.metrics.TechLevel,
		UnitCost:    c.metrics.UnitCost,
		Event:       event,
		GameOver:    c.gameOver,
		Reason:      c.gameOverReason,
	}, nil
}

func validateDecisions(d Decisions) error {
	if d.Price != nil && *d.Price <= 0 {
		return fmt.Errorf("%w: price must be > 0", ErrInvalidDecision)
	}
	if d.Production != nil && *d.Production < 0 {
		return fmt.Errorf("%w: production must be >= 0", ErrInvalidDecision)
	}
	if d.Marketing != nil && *d.Marketing < 0 {
		return fmt.Errorf("%w: marketing spend must be >= 0", ErrInvalidDecision)
	}
	if d.RD != nil && *d.RD < 0 {
		return fmt.Errorf("%w: rd spend must be >= 0", ErrInvalidDecision)
	}
	return nil
}

// updateTechnology recomputes tech level from cumulative R&D spend and the
// engineering bench. The level is replaced each quarter, not accumulated, so
// the multiplicative jitter makes it non-monotonic quarter to quarter.
func (c *Company) updateTechnology() {
	c.cumulativeRD += c.rd

	rdFactor := math.Log(1+c.cumulativeRD/100_000) * 0.05 * c.params.RDEffectiveness
	engineerFactor := float64(c.departmentByName("Engineering").Headcount) * 0.01

	c.metrics.TechLevel = (1.0 + rdFactor + engineerFactor) * c.uniform(0.98, 1.02)
}

// updateUnitCost recomputes unit cost from scratch each quarter: the per-track
// base cost shaped by a progress-ratio learning curve (~20% reduction per
// production doubling) and the current tech level. Never compounds off the
// previous quarter's cost.
func (c *Company) updateUnitCost() {
	learningFactor := 1.0
	if c.metrics.CumulativeProduction > 0 {
		learningFactor = math.Pow(2, math.Log2(float64(c.metrics.CumulativeProduction)/1000+1)*-0.234)
	}
	techFactor := 1.0 / c.metrics.TechLevel
	c.metrics.UnitCost = c.params.BaseUnitCost * learningFactor * techFactor
}

func (c *Company) calculateDemand() int {
	currentMarket := c.params.MarketSize * math.Pow(1+MarketGrowthRate, float64(c.metrics.Quarter))

	active := c.activeCompetitorCount()
	avgPrice := 0.0
	avgTech := 0.0
	for _, comp := range c.competitors {
		if comp.IsActive {
			avgPrice += comp.Price
			avgTech += comp.TechLevel
		}
	}
	avgPrice /= float64(active)
	avgTech /= float64(active)

	priceEffect := math.Pow(c.price/avgPrice, c.params.PriceElasticity)
	marketingEffect := 1.0 + math.Log(1+c.marketing/10_000)*0.1
	techEffect := 1.0 + (c.metrics.TechLevel/avgTech-1.0)*0.5

	ourShare := (priceEffect * marketingEffect * techEffect) / float64(active+1)
	demand := int(currentMarket * ourShare * c.uniform(0.85, 1.15))
	if demand < 0 {
		return 0
	}
	return demand
}

// updateMarketShare estimates the total market off the initial market size,
// not the grown one, so competitor "sales" stay comparable without modeling
// their full demand curves.
func (c *Company) updateMarketShare() {
	ourSales := float64(c.metrics.UnitsSold)
	total := ourSales
	for _, comp := range c.competitors {
		if comp.IsActive {
			total += c.params.MarketSize * comp.MarketShare * 0.9
		}
	}
	if total > 0 {
		c.metrics.MarketShare = ourSales / total
	} else {
		c.metrics.MarketShare = 0
	}
}

func (c *Company) updateCompetitors() {
	for i := range c.competitors {
		comp := &c.competitors[i]
		if !comp.IsActive {
			continue
		}
		comp.TechLevel *= c.uniform(1.01, 1.03)
		comp.Price *= c.uniform(0.98, 1.02)
		comp.MarketShare *= c.uniform(0.95, 1.05)
		if comp.MarketShare < 0.05 {
			comp.MarketShare = 0.05
		}
		if comp.MarketShare > 0.35 {
			comp.MarketShare = 0.35
		}
	}
}

// updateValuation blends an annualized revenue multiple, a technology premium,
// a market-share premium, and cash on hand, floored at half of all capital
// ever raised.
func (c *Company) updateValuation() {
	revenueMultiple := 1.0
	if c.metrics.Revenue > 0 {
		revenueMultiple = 3.0
	}
	value := c.metrics.Revenue*4*revenueMultiple +
		c.metrics.TechLevel*500_000 +
		c.metrics.MarketShare*2_000_000 +
		math.Max(0, c.metrics.Cash)

	c.metrics.Valuation = math.Max(value, c.metrics.TotalFundingRaised*0.5)
}

// RaiseFunding applies one funding round. Rejections (Series B gate, declined
// grant) are normal business outcomes carried in the result, not errors.
func (c *Company) RaiseFunding(source FundingSource) (FundingResult, error) {
	terms, ok := fundingTable[source]
	if !ok {
		return FundingResult{}, fmt.Errorf("%w: %q", ErrUnknownFundingSource, source)
	}

	// The gate counts only capital raised beyond the founding seed round.
	if source == FundingVCB && c.metrics.TotalFundingRaised-SeedCapital < seriesBGateFunds {
		return FundingResult{Success: false, Message: "Need to raise Series A first"}, nil
	}
	if source == FundingGrant && c.rng.Float64() < grantFailureRate {
		return FundingResult{Success: false, Message: "Grant application not approved"}, nil
	}

	c.metrics.Cash += terms.Amount
	c.metrics.TotalFundingRaised += terms.Amount
	c.metrics.EquityGiven += terms.Dilution

	return FundingResult{
		Success:  true,
		Amount:   terms.Amount,
		Dilution: terms.Dilution,
		Message:  fmt.Sprintf("Successfully raised %s", FormatUSD(terms.Amount)),
	}, nil
}

// HireFire adjusts one department's headcount. A nonexistent department is a
// usage error; a negative resulting headcount is a declined business outcome.
// No cost is charged here: costs land through the quarterly salary aggregate.
func (c *Company) HireFire(department string, delta int) (HireResult, error) {
	dept := c.departmentByName(department)
	if dept == nil {
		return HireResult{}, fmt.Errorf("%w: %q", ErrUnknownDepartment, department)
	}

	next := dept.Headcount + delta
	if next < 0 {
		return HireResult{
			Success:      false,
			Message:      "Cannot have negative headcount",
			NewHeadcount: dept.Headcount,
		}, nil
	}
	dept.Headcount = next

	action := "Hired"
	if delta < 0 {
		action = "Fired"
	}
	n := delta
	if n < 0 {
		n = -n
	}
	return HireResult{
		Success:      true,
		Message:      fmt.Sprintf("%s %d employee(s) in %s", action, n, dept.Name),
		NewHeadcount: next,
	}, nil
}

// State returns a deep-copy snapshot for presentation layers.
func (c *Company) State() State {
	depts := make([]Department, len(c.departments))
	copy(depts, c.departments)
	comps := make([]Competitor, len(c.competitors))
	copy(comps, c.competitors)
	history := make([]Metrics, len(c.history))
	copy(history, c.history)

	var event *RandomEvent
	if c.lastEvent != nil {
		e := *c.lastEvent
		e.Impact = make(map[string]float64, len(c.lastEvent.Impact))
		for k, v := range c.lastEvent.Impact {
			e.Impact[k] = v
		}
		event = &e
	}

	return State{
		Track:       c.track,
		TrackName:   c.track.DisplayName(),
		Metrics:     c.metrics,
		Departments: depts,
		Competitors: comps,
		Decisions: DecisionState{
			Price:      c.price,
			Production: c.production,
			Marketing:  c.marketing,
			RD:         c.rd,
		},
		History:        history,
		GameOver:       c.gameOver,
		GameOverReason: c.gameOverReason,
		LastEvent:      event,
		Score:          c.Score(),
	}
}

// Score is the end-of-game performance number: valuation in millions plus
// weighted market share and tech level.
func (c *Company) Score() float64 {
	return c.metrics.Valuation/1_000_000 + c.metrics.MarketShare*1000 + c.metrics.TechLevel*100
}

// ScoreRating maps a score to its performance band.
func ScoreRating(score float64) string {
	switch {
	case score > 500:
		return "Outstanding Performance! You've built an industry-leading company."
	case score > 300:
		return "Good Performance! Your company is on solid footing."
	default:
		return "Room for Improvement. Consider different strategies next time."
	}
}

// EstimatedQuarterlyBurn previews next quarter's operating expenses under the
// current decision inputs.
func (c *Company) EstimatedQuarterlyBurn() float64 {
	return c.salaryCosts() + c.marketing + c.rd + FixedOverhead
}

// GrossMarginPct is the margin at a given price against the current unit cost.
func (c *Company) GrossMarginPct(price float64) float64 {
	if price <= 0 {
		return 0
	}
	return (price - c.metrics.UnitCost) / price * 100
}

func (c *Company) salaryCosts() float64 {
	total := 0.0
	for _, d := range c.departments {
		total += float64(d.Headcount) * d.SalaryPerPerson
	}
	return total
}

func (c *Company) departmentByName(name string) *Department {
	for i := range c.departments {
		if c.departments[i].Name == name {
			return &c.departments[i]
		}
	}
	return nil
}

func (c *Company) activeCompetitorCount() int {
	n := 0
	for _, comp := range c.competitors {
		if comp.IsActive {
			n++
		}
	}
	return n
}

func (c *Company) uniform(lo, hi float64) float64 {
	return lo + c.rng.Float64()*(hi-lo)
}

// FormatUSD renders a dollar amount with thousands separators, rounded to
// whole dollars.
func FormatUSD(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatInt(int64(math.Round(v)), 10)
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
		if len(s) > pre {
			b.WriteByte(',')
		}
	}
	for i := pre; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}
