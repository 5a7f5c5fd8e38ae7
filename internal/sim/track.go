package sim

import (
	"fmt"
	"strings"
)

// TechTrack is the technology bet chosen at company creation. It fixes the
// starting unit cost, the addressable market, how price-sensitive buyers are,
// and how far each R&D dollar goes.
type TechTrack string

const (
	TrackBattery       TechTrack = "battery"
	TrackSolar         TechTrack = "solar"
	TrackHydrogen      TechTrack = "hydrogen"
	TrackCarbonCapture TechTrack = "carbon_capture"
)

type trackParams struct {
	DisplayName     string
	Tagline         string
	BaseUnitCost    float64
	MarketSize      float64
	PriceElasticity float64
	RDEffectiveness float64
}

var trackTable = map[TechTrack]trackParams{
	TrackBattery: {
		DisplayName:     "Advanced Battery Storage",
		Tagline:         "High unit cost, medium market size, strong R&D leverage",
		BaseUnitCost:    350,
		MarketSize:      8_000,
		PriceElasticity: -1.8,
		RDEffectiveness: 1.2,
	},
	TrackSolar: {
		DisplayName:     "Next-Gen Solar Panels",
		Tagline:         "Lower unit cost, large market size, high price competition",
		BaseUnitCost:    280,
		MarketSize:      12_000,
		PriceElasticity: -2.0,
		RDEffectiveness: 1.0,
	},
	TrackHydrogen: {
		DisplayName:     "Green Hydrogen Production",
		Tagline:         "Highest unit cost, smaller market, excellent R&D potential",
		BaseUnitCost:    420,
		MarketSize:      5_000,
		PriceElasticity: -1.5,
		RDEffectiveness: 1.3,
	},
	TrackCarbonCapture: {
		DisplayName:     "Carbon Capture Technology",
		Tagline:         "High unit cost, growing market, moderate R&D leverage",
		BaseUnitCost:    380,
		MarketSize:      6_000,
		PriceElasticity: -1.6,
		RDEffectiveness: 1.1,
	},
}

func Tracks() []TechTrack {
	return []TechTrack{TrackBattery, TrackSolar, TrackHydrogen, TrackCarbonCapture}
}

func (t TechTrack) DisplayName() string {
	return trackTable[t].DisplayName
}

func (t TechTrack) Tagline() string {
	return trackTable[t].Tagline
}

func ParseTrack(s string) (TechTrack, error) {
	t := TechTrack(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := trackTable[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTrack, s)
	}
	return t, nil
}

// FundingSource is one round of outside capital.
type FundingSource string

const (
	FundingAngel FundingSource = "angel"
	FundingVCA   FundingSource = "vc_a"
	FundingVCB   FundingSource = "vc_b"
	FundingGrant FundingSource = "grant"
	FundingDebt  FundingSource = "debt"
)

type fundingTerms struct {
	DisplayName string
	Amount      float64
	Dilution    float64
	DebtRate    float64 // quarterly interest, debt only
}

var fundingTable = map[FundingSource]fundingTerms{
	FundingAngel: {DisplayName: "Angel Investment", Amount: 500_000, Dilution: 0.08},
	FundingVCA:   {DisplayName: "VC Series A", Amount: 3_000_000, Dilution: 0.20},
	FundingVCB:   {DisplayName: "VC Series B", Amount: 8_000_000, Dilution: 0.25},
	FundingGrant: {DisplayName: "Government Grant", Amount: 750_000},
	FundingDebt:  {DisplayName: "Debt Financing", Amount: 2_000_000, DebtRate: 0.02},
}

func FundingSources() []FundingSource {
	return []FundingSource{FundingAngel, FundingVCA, FundingVCB, FundingGrant, FundingDebt}
}

func (f FundingSource) DisplayName() string {
	return fundingTable[f].DisplayName
}

func ParseFundingSource(s string) (FundingSource, error) {
	f := FundingSource(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := fundingTable[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFundingSource, s)
	}
	return f, nil
}
