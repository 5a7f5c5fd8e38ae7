package sim

import (
	"math"
	"reflect"
	"testing"
)

func eventByTitle(t *testing.T, title string) RandomEvent {
	t.Helper()
	for _, e := range eventCatalog {
		if e.Title == title {
			return e
		}
	}
	t.Fatalf("event %q not in catalog", title)
	return RandomEvent{}
}

func TestEventCatalog(t *testing.T) {
	if len(eventCatalog) != 12 {
		t.Fatalf("catalog size: got %d want 12", len(eventCatalog))
	}
	seen := map[string]bool{}
	for _, e := range eventCatalog {
		if seen[e.Title] {
			t.Fatalf("duplicate event title %q", e.Title)
		}
		seen[e.Title] = true
		if e.Effect != "positive" && e.Effect != "negative" && e.Effect != "neutral" {
			t.Fatalf("event %q has effect %q", e.Title, e.Effect)
		}
		if len(e.Impact) == 0 {
			t.Fatalf("event %q has no impact", e.Title)
		}
	}
}

func TestApplyCashEvent(t *testing.T) {
	c := mustCompany(t, TrackSolar, 1)
	before := c.metrics.Cash

	c.applyEvent(eventByTitle(t, "Product Recall"))
	if c.metrics.Cash != before-600_000 {
		t.Fatalf("cash: got %v want %v", c.metrics.Cash, before-600_000)
	}
	// market_share_mult is advisory only.
	if c.metrics.MarketShare != 0 {
		t.Fatalf("market share mutated by advisory key: %v", c.metrics.MarketShare)
	}
}

func TestApplyTechEvents(t *testing.T) {
	c := mustCompany(t, TrackSolar, 1)

	c.applyEvent(eventByTitle(t, "Breakthrough in R&D!"))
	if c.metrics.TechLevel != 1.2 {
		t.Fatalf("tech boost: got %v want 1.2", c.metrics.TechLevel)
	}

	c.applyEvent(eventByTitle(t, "Key Engineer Departs"))
	if got := c.metrics.TechLevel; got != 1.2*0.95 {
		t.Fatalf("tech penalty: got %v want %v", got, 1.2*0.95)
	}
	if got := c.departmentByName("Engineering").Headcount; got != 4 {
		t.Fatalf("engineering headcount: got %d want 4", got)
	}
}

func TestEngineerLossFloor(t *testing.T) {
	c := mustCompany(t, TrackSolar, 1)
	c.departmentByName("Engineering").Headcount = 0

	c.applyEvent(eventByTitle(t, "Key Engineer Departs"))
	if got := c.departmentByName("Engineering").Headcount; got != 0 {
		t.Fatalf("headcount went negative: %d", got)
	}
}

func TestOperatingCostEventLeavesCashAlone(t *testing.T) {
	c := mustCompany(t, TrackSolar, 1)
	cash := c.metrics.Cash
	opex := c.metrics.OperatingExpenses

	c.applyEvent(eventByTitle(t, "Regulatory Change"))
	if c.metrics.OperatingExpenses != opex+150_000 {
		t.Fatalf("opex: got %v want %v", c.metrics.OperatingExpenses, opex+150_000)
	}
	if c.metrics.Cash != cash {
		t.Fatalf("operating cost event changed cash")
	}
}

func TestPatentGrantedAdvisoryTechKey(t *testing.T) {
	c := mustCompany(t, TrackSolar, 1)
	c.metrics.Valuation = 10_000_000

	c.applyEvent(eventByTitle(t, "Patent Granted"))
	if c.metrics.Valuation != 11_000_000 {
		t.Fatalf("valuation mult: got %v want 11000000", c.metrics.Valuation)
	}
	// The tech_level key is display-only; only tech_boost/tech_level_mult apply.
	if c.metrics.TechLevel != 1.0 {
		t.Fatalf("advisory tech_level key mutated tech level: %v", c.metrics.TechLevel)
	}
}

func TestTriggeredEventCopiesImpact(t *testing.T) {
	c := mustCompany(t, TrackSolar, 1)
	ev := c.triggerRandomEvent()

	catalog := eventByTitle(t, ev.Title)
	before := make(map[string]float64, len(catalog.Impact))
	for k, v := range catalog.Impact {
		before[k] = v
	}

	ev.Impact["cash"] = 1_234_567
	if !reflect.DeepEqual(catalog.Impact, before) {
		t.Fatalf("mutating a triggered event leaked into the catalog: %v", catalog.Impact)
	}
}

func TestUnitCostEvent(t *testing.T) {
	c := mustCompany(t, TrackHydrogen, 1)

	c.applyEvent(eventByTitle(t, "Supply Chain Disruption"))
	if math.Abs(c.metrics.UnitCost-483) > 1e-9 {
		t.Fatalf("unit cost: got %v want 483", c.metrics.UnitCost)
	}
}
