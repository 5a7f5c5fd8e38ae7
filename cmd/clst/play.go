package main

import (
	"fmt"
	"strconv"
	"strings"

	"cleanstart/internal/sim"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

type playScreen int

const (
	screenTrack playScreen = iota
	screenQuarter
	screenFunding
	screenStaff
	screenDone
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	goodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	cellStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

const (
	inputPrice = iota
	inputProduction
	inputMarketing
	inputRD
	inputCount
)

type playModel struct {
	w, h int
	seed int64

	screen   playScreen
	trackIdx int
	fundIdx  int
	staffIdx int
	focus    int

	company *sim.Company
	inputs  []textinput.Model
	status  string
	last    *sim.QuarterResult
}

func runTUI(seed int64) error {
	m := newPlayModel(seed)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newPlayModel(seed int64) playModel {
	inputs := make([]textinput.Model, inputCount)
	labels := []string{"450", "1000", "50000", "100000"}
	for i := range inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 9
		in.Width = 10
		in.SetValue(labels[i])
		inputs[i] = in
	}
	inputs[0].Focus()

	return playModel{seed: seed, inputs: inputs}
}

func (m playModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.w = msg.Width
		m.h = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch m.screen {
		case screenTrack:
			return m.updateTrack(msg)
		case screenQuarter:
			return m.updateQuarter(msg)
		case screenFunding:
			return m.updateFunding(msg)
		case screenStaff:
			return m.updateStaff(msg)
		case screenDone:
			return m.updateDone(msg)
		}
	}
	return m, nil
}

func (m playModel) View() string {
	switch m.screen {
	case screenTrack:
		return m.viewTrack()
	case screenQuarter:
		return m.viewQuarter()
	case screenFunding:
		return m.viewFunding()
	case screenStaff:
		return m.viewStaff()
	default:
		return m.viewDone()
	}
}

func wrapIndex(current, delta, size int) int {
	next := current + delta
	for next < 0 {
		next += size
	}
	return next % size
}

// --- Track picker ---

func (m playModel) updateTrack(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tracks := sim.Tracks()
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		m.trackIdx = wrapIndex(m.trackIdx, -1, len(tracks))
		return m, nil
	case "down", "j":
		m.trackIdx = wrapIndex(m.trackIdx, 1, len(tracks))
		return m, nil
	case "enter":
		track := tracks[m.trackIdx]
		var (
			company *sim.Company
			err     error
		)
		if m.seed == 0 {
			company, err = sim.New(track)
		} else {
			company, err = sim.NewSeeded(track, m.seed)
		}
		if err != nil {
			m.status = fmt.Sprintf("Failed to start: %v", err)
			return m, nil
		}
		m.company = company
		m.screen = screenQuarter
		m.status = ""
		m.syncInputs()
		return m, nil
	}
	return m, nil
}

func (m playModel) viewTrack() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("CLEANSTART") + "\n")
	b.WriteString(dimStyle.Render("Survive 12 quarters. Maximize your valuation.") + "\n")
	b.WriteString(borderStyle.Render("----------------------------------------") + "\n\n")

	for i, t := range sim.Tracks() {
		cursor := "  "
		line := fmt.Sprintf("%-28s %s", t.DisplayName(), dimStyle.Render(t.Tagline()))
		if i == m.trackIdx {
			cursor = "> "
			line = goodStyle.Render(fmt.Sprintf("%-28s", t.DisplayName())) + " " + dimStyle.Render(t.Tagline())
		}
		b.WriteString(cursor + line + "\n")
	}

	b.WriteString("\n" + borderStyle.Render("----------------------------------------") + "\n")
	b.WriteString(dimStyle.Render("↑/↓ move  Enter select  q quit") + "\n")
	if m.status != "" {
		b.WriteString("\n" + badStyle.Render(m.status) + "\n")
	}
	return b.String()
}

// --- Quarter screen ---

func (m *playModel) syncInputs() {
	st := m.company.State()
	m.inputs[inputPrice].SetValue(strconv.FormatFloat(st.Decisions.Price, 'f', 0, 64))
	m.inputs[inputProduction].SetValue(strconv.Itoa(st.Decisions.Production))
	m.inputs[inputMarketing].SetValue(strconv.FormatFloat(st.Decisions.Marketing, 'f', 0, 64))
	m.inputs[inputRD].SetValue(strconv.FormatFloat(st.Decisions.RD, 'f', 0, 64))
}

func (m *playModel) setFocus(idx int) {
	m.focus = idx
	for i := range m.inputs {
		if i == idx {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m playModel) updateQuarter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab", "down":
		m.setFocus(wrapIndex(m.focus, 1, inputCount))
		return m, nil
	case "shift+tab", "up":
		m.setFocus(wrapIndex(m.focus, -1, inputCount))
		return m, nil
	case "F":
		m.screen = screenFunding
		m.status = ""
		return m, nil
	case "S":
		m.screen = screenStaff
		m.status = ""
		return m, nil
	case "enter":
		return m.advanceFromInputs()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m playModel) advanceFromInputs() (tea.Model, tea.Cmd) {
	price, err := strconv.ParseFloat(strings.TrimSpace(m.inputs[inputPrice].Value()), 64)
	if err != nil {
		m.status = "Price must be a number."
		return m, nil
	}
	production, err := strconv.Atoi(strings.TrimSpace(m.inputs[inputProduction].Value()))
	if err != nil {
		m.status = "Production must be a whole number."
		return m, nil
	}
	marketing, err := strconv.ParseFloat(strings.TrimSpace(m.inputs[inputMarketing].Value()), 64)
	if err != nil {
		m.status = "Marketing must be a number."
		return m, nil
	}
	rd, err := strconv.ParseFloat(strings.TrimSpace(m.inputs[inputRD].Value()), 64)
	if err != nil {
		m.status = "R&D must be a number."
		return m, nil
	}

	res, err := m.company.AdvanceQuarter(sim.Decisions{
		Price:      &price,
		Production: &production,
		Marketing:  &marketing,
		RD:         &rd,
	})
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.last = &res
	m.status = ""
	m.syncInputs()
	if res.GameOver {
		m.screen = screenDone
	}
	return m, nil
}

func (m playModel) viewQuarter() string {
	st := m.company.State()
	mtr := st.Metrics

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("CLEANSTART — %s — Q%d/12", st.TrackName, mtr.Quarter)) + "\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Cash %s  Valuation %s  Tech %.2f  Share %.1f%%  Unit Cost $%.2f",
		sim.FormatUSD(mtr.Cash), sim.FormatUSD(mtr.Valuation), mtr.TechLevel, mtr.MarketShare*100, mtr.UnitCost)) + "\n")
	b.WriteString(borderStyle.Render(strings.Repeat("-", 60)) + "\n\n")

	labels := []string{"Unit Price ($)", "Production (units)", "Marketing ($)", "R&D ($)"}
	for i, in := range m.inputs {
		cursor := "  "
		label := fmt.Sprintf("%-20s", labels[i])
		if i == m.focus {
			cursor = "> "
			label = goodStyle.Render(label)
		}
		b.WriteString(cursor + label + in.View() + "\n")
	}

	b.WriteString("\n" + dimStyle.Render(fmt.Sprintf("Est. quarterly burn %s  |  Gross margin %.1f%%",
		sim.FormatUSD(m.company.EstimatedQuarterlyBurn()), m.company.GrossMarginPct(st.Decisions.Price))) + "\n\n")

	b.WriteString(m.competitorTable(st) + "\n")

	if m.last != nil && m.last.Event != nil {
		style := badStyle
		if m.last.Event.Effect == "positive" {
			style = goodStyle
		}
		b.WriteString("\n" + style.Render("EVENT: "+m.last.Event.Title) + "\n")
		b.WriteString(dimStyle.Render(m.last.Event.Description) + "\n")
	}

	b.WriteString("\n" + borderStyle.Render(strings.Repeat("-", 60)) + "\n")
	b.WriteString(dimStyle.Render("Tab/↑↓ field  Enter advance quarter  Shift+F funding  Shift+S staff  Ctrl+C quit") + "\n")
	if m.status != "" {
		b.WriteString("\n" + badStyle.Render(m.status) + "\n")
	}
	return b.String()
}

func (m playModel) competitorTable(st sim.State) string {
	rows := make([][]string, 0, len(st.Competitors))
	for _, c := range st.Competitors {
		if !c.IsActive {
			continue
		}
		rows = append(rows, []string{
			c.Name,
			fmt.Sprintf("%.2f", c.TechLevel),
			fmt.Sprintf("%.1f%%", c.MarketShare*100),
			fmt.Sprintf("$%.0f", c.Price),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		BorderHeader(true).
		BorderRow(false).
		Headers("Competitor", "Tech", "Share", "Price").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return titleStyle
			}
			return cellStyle
		})
	return t.Render()
}

// --- Funding screen ---

func (m playModel) updateFunding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sources := sim.FundingSources()
	rowCount := len(sources) + 1 // sources + back
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "q":
		m.screen = screenQuarter
		return m, nil
	case "up", "k":
		m.fundIdx = wrapIndex(m.fundIdx, -1, rowCount)
		return m, nil
	case "down", "j":
		m.fundIdx = wrapIndex(m.fundIdx, 1, rowCount)
		return m, nil
	case "enter":
		if m.fundIdx == len(sources) {
			m.screen = screenQuarter
			return m, nil
		}
		res, err := m.company.RaiseFunding(sources[m.fundIdx])
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.status = res.Message
		return m, nil
	}
	return m, nil
}

func (m playModel) viewFunding() string {
	st := m.company.State()

	var b strings.Builder
	b.WriteString(titleStyle.Render("RAISE FUNDING") + "\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Cash %s  Raised %s  Equity given %.0f%%",
		sim.FormatUSD(st.Metrics.Cash), sim.FormatUSD(st.Metrics.TotalFundingRaised), st.Metrics.EquityGiven*100)) + "\n")
	b.WriteString(borderStyle.Render(strings.Repeat("-", 60)) + "\n\n")

	sources := sim.FundingSources()
	terms := map[sim.FundingSource]string{
		sim.FundingAngel: "$500,000 for 8% equity",
		sim.FundingVCA:   "$3,000,000 for 20% equity",
		sim.FundingVCB:   "$8,000,000 for 25% equity (needs Series A)",
		sim.FundingGrant: "$750,000, no dilution, 60% approval odds",
		sim.FundingDebt:  "$2,000,000, no dilution, 2% quarterly interest",
	}
	for i, src := range sources {
		cursor := "  "
		line := fmt.Sprintf("%-20s %s", src.DisplayName(), dimStyle.Render(terms[src]))
		if i == m.fundIdx {
			cursor = "> "
			line = goodStyle.Render(fmt.Sprintf("%-20s", src.DisplayName())) + " " + dimStyle.Render(terms[src])
		}
		b.WriteString(cursor + line + "\n")
	}
	cursor := "  "
	back := "Back"
	if m.fundIdx == len(sources) {
		cursor = "> "
		back = goodStyle.Render(back)
	}
	b.WriteString(cursor + back + "\n")

	b.WriteString("\n" + borderStyle.Render(strings.Repeat("-", 60)) + "\n")
	b.WriteString(dimStyle.Render("↑/↓ move  Enter raise  Esc back") + "\n")
	if m.status != "" {
		b.WriteString("\n" + goodStyle.Render(m.status) + "\n")
	}
	return b.String()
}

// --- Staff screen ---

func (m playModel) updateStaff(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.company.State()
	rowCount := len(st.Departments) + 1 // departments + back
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "q":
		m.screen = screenQuarter
		return m, nil
	case "up", "k":
		m.staffIdx = wrapIndex(m.staffIdx, -1, rowCount)
		return m, nil
	case "down", "j":
		m.staffIdx = wrapIndex(m.staffIdx, 1, rowCount)
		return m, nil
	case "enter":
		if m.staffIdx == len(st.Departments) {
			m.screen = screenQuarter
			return m, nil
		}
		return m, nil
	case "left", "-":
		return m.adjustStaff(st, -1)
	case "right", "+":
		return m.adjustStaff(st, 1)
	}
	return m, nil
}

func (m playModel) adjustStaff(st sim.State, delta int) (tea.Model, tea.Cmd) {
	if m.staffIdx >= len(st.Departments) {
		return m, nil
	}
	res, err := m.company.HireFire(st.Departments[m.staffIdx].Name, delta)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.status = res.Message
	return m, nil
}

func (m playModel) viewStaff() string {
	st := m.company.State()

	var b strings.Builder
	b.WriteString(titleStyle.Render("DEPARTMENTS") + "\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Quarterly salary bill %s", sim.FormatUSD(salaryTotal(st)))) + "\n")
	b.WriteString(borderStyle.Render(strings.Repeat("-", 60)) + "\n\n")

	for i, d := range st.Departments {
		cursor := "  "
		line := fmt.Sprintf("%-14s %3d people  %s each", d.Name, d.Headcount, sim.FormatUSD(d.SalaryPerPerson))
		if i == m.staffIdx {
			cursor = "> "
			line = goodStyle.Render(line)
		}
		b.WriteString(cursor + line + "\n")
	}
	cursor := "  "
	back := "Back"
	if m.staffIdx == len(st.Departments) {
		cursor = "> "
		back = goodStyle.Render(back)
	}
	b.WriteString(cursor + back + "\n")

	b.WriteString("\n" + borderStyle.Render(strings.Repeat("-", 60)) + "\n")
	b.WriteString(dimStyle.Render("↑/↓ move  ←/→ fire/hire  Esc back") + "\n")
	if m.status != "" {
		b.WriteString("\n" + goodStyle.Render(m.status) + "\n")
	}
	return b.String()
}

func salaryTotal(st sim.State) float64 {
	total := 0.0
	for _, d := range st.Departments {
		total += float64(d.Headcount) * d.SalaryPerPerson
	}
	return total
}

// --- Game over ---

func (m playModel) updateDone(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "enter", "esc":
		return m, tea.Quit
	}
	return m, nil
}

func (m playModel) viewDone() string {
	st := m.company.State()

	var b strings.Builder
	b.WriteString(titleStyle.Render("GAME OVER") + "\n")
	if strings.Contains(st.GameOverReason, "Bankruptcy") {
		b.WriteString(badStyle.Render(st.GameOverReason) + "\n")
	} else {
		b.WriteString(goodStyle.Render(st.GameOverReason) + "\n")
	}
	b.WriteString(borderStyle.Render(strings.Repeat("-", 60)) + "\n\n")

	b.WriteString(fmt.Sprintf("Final Valuation: %s\n", sim.FormatUSD(st.Metrics.Valuation)))
	b.WriteString(fmt.Sprintf("Market Share:    %.1f%%\n", st.Metrics.MarketShare*100))
	b.WriteString(fmt.Sprintf("Tech Level:      %.2f\n", st.Metrics.TechLevel))
	b.WriteString(fmt.Sprintf("Final Cash:      %s\n", sim.FormatUSD(st.Metrics.Cash)))
	b.WriteString("\n" + titleStyle.Render(fmt.Sprintf("Final Score: %.0f points", st.Score)) + "\n")
	b.WriteString(dimStyle.Render(sim.ScoreRating(st.Score)) + "\n\n")

	b.WriteString(m.historyTable(st) + "\n")
	b.WriteString("\n" + dimStyle.Render("q quit") + "\n")
	return b.String()
}

func (m playModel) historyTable(st sim.State) string {
	rows := make([][]string, 0, len(st.History))
	for _, mtr := range st.History {
		rows = append(rows, []string{
			fmt.Sprintf("Q%d", mtr.Quarter),
			sim.FormatUSD(mtr.Revenue),
			sim.FormatUSD(mtr.NetIncome),
			sim.FormatUSD(mtr.Cash),
			fmt.Sprintf("%.1f%%", mtr.MarketShare*100),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		BorderHeader(true).
		BorderRow(false).
		Headers("Qtr", "Revenue", "Net", "Cash", "Share").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return titleStyle
			}
			return cellStyle
		})
	return t.Render()
}
