package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/barkeep/internal/finance"
)

var granularities = []finance.Granularity{
	finance.GranularityMonth,
	finance.GranularityWeek,
	finance.GranularityDay,
}

type financeState int

const (
	financeStateTimeframe financeState = iota
	financeStateDashboard
	financeStateRecordForm
	financeStateExpenseForm
)

type FinanceModel struct {
	CommonModel
	financeService *finance.Service

	state           financeState
	timeframePicker TimeframePicker
	selection       TimeframeSelectedMsg

	granularityIdx int
	ledger         *finance.LedgerSummary
	distribution   *finance.Distribution
	trend          table.Model

	form   *huh.Form
	status string
	err    error
}

func NewFinanceModel(svc *finance.Service) FinanceModel {
	return FinanceModel{
		financeService:  svc,
		state:           financeStateTimeframe,
		timeframePicker: NewTimeframePicker(TimeframeThisWeek),
		trend: newTable([]table.Column{
			{Title: "Period", Width: 12},
			{Title: "Income", Width: 14},
			{Title: "Expenses", Width: 14},
		}),
	}
}

func (m FinanceModel) Title() string { return "Finance" }

func (m FinanceModel) ShortHelp() string {
	switch m.state {
	case financeStateDashboard:
		return "Esc: back | g: granularity | t: timeframe | a: add income | x: add expense | r: refresh"
	case financeStateRecordForm, financeStateExpenseForm:
		return "Enter: save | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m FinanceModel) Init() tea.Cmd {
	return nil
}

func (m FinanceModel) granularity() finance.Granularity {
	return granularities[m.granularityIdx]
}

func (m FinanceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.selection = msg
		m.state = financeStateDashboard
		m.err = nil

		return m, m.loadAllCmd()

	case ledgerMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.ledger = &msg.summary

		return m, nil

	case distributionMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.distribution = &msg.distribution

		return m, nil

	case trendMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		rows := make([]table.Row, 0, len(msg.points))
		for _, p := range msg.points {
			rows = append(rows, table.Row{p.Date, FormatAmount(p.Income), FormatAmount(p.Expenses)})
		}

		m.trend.SetRows(rows)

		return m, nil

	case financeSavedMsg:
		m.state = financeStateDashboard
		m.form = nil

		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			return m, nil
		}

		m.status = msg.text

		return m, m.loadAllCmd()
	}

	switch m.state {
	case financeStateTimeframe:
		return m.updateTimeframe(msg)
	case financeStateDashboard:
		return m.updateDashboard(msg)
	case financeStateRecordForm, financeStateExpenseForm:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m FinanceModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
		return m, Back
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m FinanceModel) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "t":
			m.state = financeStateTimeframe
			m.timeframePicker.Reset()

			return m, nil
		case "g":
			m.granularityIdx = (m.granularityIdx + 1) % len(granularities)
			return m, m.loadTrendCmd()
		case "r":
			return m, m.loadAllCmd()
		case "a":
			m.form = m.buildRecordForm()
			m.state = financeStateRecordForm

			return m, m.form.Init()
		case "x":
			m.form = m.buildExpenseForm()
			m.state = financeStateExpenseForm

			return m, m.form.Init()
		}
	}

	var cmd tea.Cmd
	m.trend, cmd = m.trend.Update(msg)

	return m, cmd
}

func (m FinanceModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = financeStateDashboard
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == financeStateRecordForm {
		return m, m.saveRecordCmd()
	}

	return m, m.saveExpenseCmd()
}

func validateAmount(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("not a number")
	}

	if d.IsNegative() {
		return fmt.Errorf("must not be negative")
	}

	return nil
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func (m FinanceModel) buildRecordForm() *huh.Form {
	modes := make([]huh.Option[string], 0, len(finance.PaymentModes))
	for _, mode := range finance.PaymentModes {
		modes = append(modes, huh.NewOption(string(mode), string(mode)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Key("total").Title("Total amount").Validate(validateAmount),
			huh.NewInput().Key("paid").Title("Amount paid").Validate(validateAmount),
			huh.NewInput().Key("available").Title("Amount available").Validate(validateAmount),
			huh.NewSelect[string]().Key("mode").Title("Payment mode").Options(modes...),
			huh.NewInput().Key("by").Title("Submitted by").
				Placeholder(m.financeService.LedgerTag()).
				Validate(validateRequired("submitter")),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m FinanceModel) buildExpenseForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Key("item").Title("Item").Validate(validateRequired("item")),
			huh.NewInput().Key("amount").Title("Amount spent").Validate(validateAmount),
			huh.NewInput().Key("department").Title("Department"),
			huh.NewInput().Key("date").Title("Date").Placeholder("YYYY-MM-DD").
				Validate(func(s string) error {
					_, err := time.Parse(time.DateOnly, s)
					return err
				}),
			huh.NewInput().Key("by").Title("Submitted by").
				Placeholder(m.financeService.LedgerTag()).
				Validate(validateRequired("submitter")),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m FinanceModel) View() string {
	switch m.state {
	case financeStateTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())
	case financeStateRecordForm:
		return lipgloss.NewStyle().Padding(1).Render(panelStyle.Render("Add Income\n\n" + m.form.View()))
	case financeStateExpenseForm:
		return lipgloss.NewStyle().Padding(1).Render(panelStyle.Render("Add Expense\n\n" + m.form.View()))
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := fmt.Sprintf("Period: %s | [g] Cash flow by: %s",
		activeStyle(m.selection.Label()), activeStyle(string(m.granularity())))

	trendView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.trend.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		lipgloss.JoinHorizontal(lipgloss.Top,
			trendView,
			lipgloss.JoinVertical(lipgloss.Left, m.viewLedger(), m.viewDistribution()),
		),
	)

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m FinanceModel) viewLedger() string {
	if m.ledger == nil {
		return panelStyle.Render("Loading ledger...")
	}

	updated := "never"
	if m.ledger.LastUpdated != nil {
		updated = m.ledger.LastUpdated.Format(time.DateTime)
	}

	return panelStyle.Render(fmt.Sprintf(
		"Ledger (%s)\n\nPaid:       %s\nAvailable:  %s\nExpenses:   %s\nBalance:    %s\n\nLast updated: %s",
		m.financeService.LedgerTag(),
		FormatAmount(m.ledger.TotalAmountPaid),
		FormatAmount(m.ledger.TotalAmountAvailable),
		FormatAmount(m.ledger.TotalExpenses),
		FormatAmount(m.ledger.BalanceForward),
		updated,
	))
}

func (m FinanceModel) viewDistribution() string {
	if m.distribution == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString("Payment methods\n\n")

	for _, mode := range finance.PaymentModes {
		fmt.Fprintf(&b, "%-13s %s\n", mode, FormatAmount(m.distribution.ByMode[mode]))
	}

	if !m.distribution.Unrecognized.IsZero() {
		fmt.Fprintf(&b, "%-13s %s\n", "Other", FormatAmount(m.distribution.Unrecognized))
	}

	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// Messages

type ledgerMsg struct {
	summary finance.LedgerSummary
	err     error
}

type distributionMsg struct {
	distribution finance.Distribution
	err          error
}

type trendMsg struct {
	points []finance.TrendPoint
	err    error
}

type financeSavedMsg struct {
	text string
	err  error
}

func (m FinanceModel) loadAllCmd() tea.Cmd {
	filter := m.selection.Filter()

	ledger := func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		summary, err := m.financeService.Ledger(ctx, filter)

		return ledgerMsg{summary: summary, err: err}
	}

	distribution := func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		d, err := m.financeService.PaymentDistribution(ctx, filter)

		return distributionMsg{distribution: d, err: err}
	}

	return tea.Batch(ledger, distribution, m.loadTrendCmd())
}

func (m FinanceModel) loadTrendCmd() tea.Cmd {
	filter := m.selection.Filter()
	g := m.granularity()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		points, err := m.financeService.CashFlow(ctx, g, filter)

		return trendMsg{points: points, err: err}
	}
}

func (m FinanceModel) saveRecordCmd() tea.Cmd {
	f := m.form
	params := finance.CreateRecordParams{
		TotalAmount:     decimal.RequireFromString(strings.TrimSpace(f.GetString("total"))),
		AmountPaid:      decimal.RequireFromString(strings.TrimSpace(f.GetString("paid"))),
		AmountAvailable: decimal.RequireFromString(strings.TrimSpace(f.GetString("available"))),
		PaymentMode:     finance.PaymentMode(f.GetString("mode")),
		SubmittedBy:     strings.TrimSpace(f.GetString("by")),
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		r, err := m.financeService.CreateRecord(ctx, params)
		if err != nil {
			return financeSavedMsg{err: err}
		}

		return financeSavedMsg{text: fmt.Sprintf("Recorded %s via %s", FormatAmount(r.AmountPaid), r.PaymentMode)}
	}
}

func (m FinanceModel) saveExpenseCmd() tea.Cmd {
	f := m.form
	date, _ := time.Parse(time.DateOnly, f.GetString("date"))
	params := finance.CreateExpenseParams{
		Item:        strings.TrimSpace(f.GetString("item")),
		AmountSpent: decimal.RequireFromString(strings.TrimSpace(f.GetString("amount"))),
		Department:  strings.TrimSpace(f.GetString("department")),
		SubmittedBy: strings.TrimSpace(f.GetString("by")),
		Date:        date,
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		e, err := m.financeService.CreateExpense(ctx, params)
		if err != nil {
			return financeSavedMsg{err: err}
		}

		return financeSavedMsg{text: fmt.Sprintf("Recorded expense %q of %s", e.Item, FormatAmount(e.AmountSpent))}
	}
}
