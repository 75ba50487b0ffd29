package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/barkeep/internal/order"
)

// commonStatuses seed the status filter and the edit form's suggestions.
// Any other text is accepted as a status.
var commonStatuses = []string{"Pending", "Processing", "Shipped", "Delivered", "Cancelled"}

type ordersState int

const (
	ordersStateBrowse ordersState = iota
	ordersStateEdit
)

type OrdersModel struct {
	CommonModel
	orderService *order.Service

	state  ordersState
	table  table.Model
	orders []*order.Order
	form   *huh.Form

	statusFilterIdx int
	filter          order.ListFilter

	monthly []order.MonthlyBucket

	loading bool
	err     error
	status  string

	formStatus string
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func NewOrdersModel(svc *order.Service) OrdersModel {
	return OrdersModel{
		orderService: svc,
		loading:      true,
		table: newTable([]table.Column{
			{Title: "ID", Width: 8},
			{Title: "Created", Width: 12},
			{Title: "Status", Width: 18},
			{Title: "Items", Width: 6},
			{Title: "Customer", Width: 38},
		}),
	}
}

func (m OrdersModel) Title() string { return "Orders" }

func (m OrdersModel) ShortHelp() string {
	if m.state == ordersStateEdit {
		return "Enter: save | Esc: cancel"
	}

	return "Esc: back | e: edit status | s: status filter | r: refresh"
}

func (m OrdersModel) Init() tea.Cmd {
	return tea.Batch(m.loadOrdersCmd(), m.loadMonthlyCmd())
}

func (m OrdersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadOrdersMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.orders = msg.orders
		m.refreshTable()

		return m, nil

	case loadMonthlyMsg:
		if msg.err == nil {
			m.monthly = msg.buckets
		}

		return m, nil

	case statusSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Order %d is now %s", msg.id, msg.status+order.CelebrationSuffix)
		}

		m.state = ordersStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadOrdersCmd()

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-12, 5))

		return m, nil
	}

	switch m.state {
	case ordersStateBrowse:
		return m.updateBrowse(msg)
	case ordersStateEdit:
		return m.updateEdit(msg)
	}

	return m, nil
}

func (m OrdersModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, tea.Batch(m.loadOrdersCmd(), m.loadMonthlyCmd())
		case "e":
			return m.enterEditMode()
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % (len(commonStatuses) + 1)
			m.filter.Status = nil

			if m.statusFilterIdx > 0 {
				m.filter.Status = new(commonStatuses[m.statusFilterIdx-1])
			}

			return m, m.loadOrdersCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m OrdersModel) selected() *order.Order {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.orders) {
		return nil
	}

	return m.orders[idx]
}

func (m OrdersModel) enterEditMode() (tea.Model, tea.Cmd) {
	o := m.selected()
	if o == nil {
		return m, nil
	}

	m.formStatus = o.Status
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("status").
				Title(fmt.Sprintf("Status of order %d", o.ID)).
				Suggestions(commonStatuses).
				Value(&m.formStatus).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("status cannot be empty")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = ordersStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m OrdersModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = ordersStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveStatusCmd()
}

func (m OrdersModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading orders...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	statusLabel := "All"
	if m.statusFilterIdx > 0 {
		statusLabel = commonStatuses[m.statusFilterIdx-1]
	}

	header := fmt.Sprintf("Filter: [s] Status: %s | %d orders", activeStyle(statusLabel), len(m.orders))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		m.viewMonthly(),
	)

	if m.state == ordersStateEdit && m.form != nil {
		panel := panelStyle.Width(48).Render("Update Status\n\n" + m.form.View())
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m OrdersModel) viewMonthly() string {
	if len(m.monthly) == 0 {
		return ""
	}

	parts := make([]string, 0, len(m.monthly))
	for _, b := range m.monthly {
		parts = append(parts, fmt.Sprintf("%s %d", b.Month, b.Count))
	}

	return lipgloss.NewStyle().Faint(true).PaddingTop(1).Render("Orders per month: " + strings.Join(parts, "  "))
}

func (m *OrdersModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.orders))
	for _, o := range m.orders {
		customer := "-"
		if o.UserID != nil {
			customer = o.UserID.String()
		}

		rows = append(rows, table.Row{
			fmt.Sprintf("%d", o.ID),
			FormatDate(o.CreatedAt),
			o.Status,
			fmt.Sprintf("%d", len(o.Items)),
			customer,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadOrdersMsg struct {
	orders []*order.Order
	err    error
}

type loadMonthlyMsg struct {
	buckets []order.MonthlyBucket
	err     error
}

type statusSavedMsg struct {
	id     int64
	status string
	err    error
}

func (m OrdersModel) loadOrdersCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		orders, err := m.orderService.List(ctx, filter)

		return loadOrdersMsg{orders: orders, err: err}
	}
}

func (m OrdersModel) loadMonthlyCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		buckets, err := m.orderService.MonthlyCounts(ctx)

		return loadMonthlyMsg{buckets: buckets, err: err}
	}
}

func (m OrdersModel) saveStatusCmd() tea.Cmd {
	o := m.selected()
	if o == nil {
		return nil
	}

	id := o.ID
	status := m.form.GetString("status")

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		err := m.orderService.UpdateStatus(ctx, id, status)

		return statusSavedMsg{id: id, status: status, err: err}
	}
}
