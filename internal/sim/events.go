package sim

// eventCatalog is the fixed 12-entry random event table. At most one event
// fires per quarter, with probability 0.20, drawn uniformly.
var eventCatalog = []RandomEvent{
	{
		Title:       "Government Subsidy Approved!",
		Description: "Your technology qualifies for a new government clean energy subsidy program.",
		Effect:      "positive",
		Impact:      map[string]float64{"cash": 500_000, "demand_boost": 1.2},
	},
	{
		Title:       "Supply Chain Disruption",
		Description: "Global chip shortage impacts your production capabilities.",
		Effect:      "negative",
		Impact:      map[string]float64{"unit_cost_mult": 1.15, "production_limit": 0.7},
	},
	{
		Title:       "Breakthrough in R&D!",
		Description: "Your engineering team achieves a major technological breakthrough.",
		Effect:      "positive",
		Impact:      map[string]float64{"tech_boost": 1.2},
	},
	{
		Title:       "Key Engineer Departs",
		Description: "Your lead engineer accepted a position at a competitor.",
		Effect:      "negative",
		Impact:      map[string]float64{"tech_level_mult": 0.95, "engineer_loss": 1},
	},
	{
		Title:       "Major Customer Win",
		Description: "Fortune 500 company signs large purchase agreement.",
		Effect:      "positive",
		Impact:      map[string]float64{"demand_boost": 1.5, "cash": 300_000},
	},
	{
		Title:       "Regulatory Change",
		Description: "New environmental regulations increase compliance costs.",
		Effect:      "negative",
		Impact:      map[string]float64{"operating_cost": 150_000},
	},
	{
		Title:       "New Competitor Enters Market",
		Description: "Well-funded startup announces competing product.",
		Effect:      "negative",
		Impact:      map[string]float64{"market_share_mult": 0.85},
	},
	{
		Title:       "Industry Conference Success",
		Description: "Your CEO's keynote generates significant buzz and sales leads.",
		Effect:      "positive",
		Impact:      map[string]float64{"marketing_efficiency": 1.3},
	},
	{
		Title:       "Patent Granted",
		Description: "Your core technology patent is approved, providing competitive protection.",
		Effect:      "positive",
		Impact:      map[string]float64{"tech_level": 1.15, "valuation_mult": 1.1},
	},
	{
		Title:       "Economic Downturn",
		Description: "Market recession reduces overall demand for clean energy products.",
		Effect:      "negative",
		Impact:      map[string]float64{"demand_boost": 0.75},
	},
	{
		Title:       "Strategic Partnership",
		Description: "Major energy company proposes distribution partnership.",
		Effect:      "positive",
		Impact:      map[string]float64{"cash": 400_000, "demand_boost": 1.3},
	},
	{
		Title:       "Product Recall",
		Description: "Quality issue requires costly product recall and repairs.",
		Effect:      "negative",
		Impact:      map[string]float64{"cash": -600_000, "market_share_mult": 0.8},
	},
}

func (c *Company) triggerRandomEvent() *RandomEvent {
	event := eventCatalog[c.rng.Intn(len(eventCatalog))]
	// Callers receive their own Impact map; the catalog stays immutable.
	impact := make(map[string]float64, len(event.Impact))
	for k, v := range event.Impact {
		impact[k] = v
	}
	event.Impact = impact
	c.lastEvent = &event
	c.applyEvent(event)
	return &event
}

// applyEvent mutates state for the keys the engine recognizes. The catalog
// also carries advisory keys that never touch state: demand_boost,
// production_limit, market_share_mult, marketing_efficiency, and the Patent
// Granted tech_level key (only tech_boost and tech_level_mult scale the tech
// level). Those stay display-only.
func (c *Company) applyEvent(event RandomEvent) {
	if v, ok := event.Impact["cash"]; ok {
		c.metrics.Cash += v
	}
	if v, ok := event.Impact["tech_boost"]; ok {
		c.metrics.TechLevel *= v
	}
	if v, ok := event.Impact["tech_level_mult"]; ok {
		c.metrics.TechLevel *= v
	}
	if v, ok := event.Impact["unit_cost_mult"]; ok {
		c.metrics.UnitCost *= v
	}
	if _, ok := event.Impact["engineer_loss"]; ok {
		if eng := c.departmentByName("Engineering"); eng.Headcount > 0 {
			eng.Headcount--
		}
	}
	if v, ok := event.Impact["operating_cost"]; ok {
		c.metrics.OperatingExpenses += v
	}
	if v, ok := event.Impact["valuation_mult"]; ok {
		c.metrics.Valuation *= v
	}
}
