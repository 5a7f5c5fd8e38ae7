package sim

// Metrics is one quarter's financial and operational snapshot. Exactly one
// live value exists per Company; AdvanceQuarter appends an immutable copy to
// the history log before returning.
type Metrics struct {
	Quarter              int     `json:"quarter"`
	Cash                 float64 `json:"cash"`
	Revenue              float64 `json:"revenue"`
	COGS                 float64 `json:"cogs"`
	GrossProfit          float64 `json:"gross_profit"`
	OperatingExpenses    float64 `json:"operating_expenses"`
	NetIncome            float64 `json:"net_income"`
	CumulativeProduction int     `json:"cumulative_production"`
	UnitsSold            int     `json:"units_sold"`
	MarketShare          float64 `json:"market_share"`
	TechLevel            float64 `json:"tech_level"`
	UnitCost             float64 `json:"unit_cost"`
	Valuation            float64 `json:"valuation"`
	TotalFundingRaised   float64 `json:"total_funding_raised"`
	EquityGiven          float64 `json:"equity_given"`
}

type Department struct {
	Name            string  `json:"name"`
	Headcount       int     `json:"headcount"`
	SalaryPerPerson float64 `json:"salary_per_person"` // quarterly
}

type Competitor struct {
	Name        string  `json:"name"`
	TechLevel   float64 `json:"tech_level"`
	MarketShare float64 `json:"market_share"`
	Price       float64 `json:"price"`
	IsActive    bool    `json:"is_active"`
}

// RandomEvent is a catalog entry. Effect is advisory ("positive", "negative",
// "neutral") and only used for display; Impact maps effect keys to magnitudes.
type RandomEvent struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Effect      string             `json:"effect"`
	Impact      map[string]float64 `json:"impact"`
}

// Decisions carries the per-quarter player inputs. Nil fields fall back to the
// previous quarter's value.
type Decisions struct {
	Price      *float64 `json:"price,omitempty"`
	Production *int     `json:"production,omitempty"`
	Marketing  *float64 `json:"marketing,omitempty"`
	RD         *float64 `json:"rd,omitempty"`
}

// DecisionState is the resolved decision set currently in force.
type DecisionState struct {
	Price      float64 `json:"price"`
	Production int     `json:"production"`
	Marketing  float64 `json:"marketing"`
	RD         float64 `json:"rd"`
}

type QuarterResult struct {
	Quarter     int          `json:"quarter"`
	UnitsSold   int          `json:"units_sold"`
	Revenue     float64      `json:"revenue"`
	NetIncome   float64      `json:"net_income"`
	Cash        float64      `json:"cash"`
	MarketShare float64      `json:"market_share"`
	TechLevel   float64      `json:"tech_level"`
	UnitCost    float64      `json:"unit_cost"`
	Event       *RandomEvent `json:"event,omitempty"`
	GameOver    bool         `json:"game_over"`
	Reason      string       `json:"game_over_reason,omitempty"`
}

type FundingResult struct {
	Success  bool    `json:"success"`
	Amount   float64 `json:"amount,omitempty"`
	Dilution float64 `json:"dilution,omitempty"`
	Message  string  `json:"message"`
}

type HireResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	NewHeadcount int    `json:"new_headcount"`
}

// State is the read-only snapshot consumed by presentation layers. Every slice
// and pointer is a copy; mutating it never touches the live Company.
type State struct {
	Track          TechTrack     `json:"track"`
	TrackName      string        `json:"track_name"`
	Metrics        Metrics       `json:"metrics"`
	Departments    []Department  `json:"departments"`
	Competitors    []Competitor  `json:"competitors"`
	Decisions      DecisionState `json:"decisions"`
	History        []Metrics     `json:"history"`
	GameOver       bool          `json:"game_over"`
	GameOverReason string        `json:"game_over_reason,omitempty"`
	LastEvent      *RandomEvent  `json:"last_event,omitempty"`
	Score          float64       `json:"score"`
}
