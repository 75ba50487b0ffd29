package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/barkeep/internal/category"
)

type categoriesState int

const (
	categoriesStateBrowse categoriesState = iota
	categoriesStateCreate
	categoriesStateRename
	categoriesStateDelete
)

type CategoriesModel struct {
	CommonModel
	categoryService *category.Service

	state      categoriesState
	table      table.Model
	categories []*category.Category
	form       *huh.Form

	loading bool
	err     error
	status  string
}

func NewCategoriesModel(svc *category.Service) CategoriesModel {
	return CategoriesModel{
		categoryService: svc,
		loading:         true,
		table: newTable([]table.Column{
			{Title: "ID", Width: 6},
			{Title: "Name", Width: 28},
			{Title: "Slug", Width: 28},
			{Title: "Products", Width: 10},
		}),
	}
}

func (m CategoriesModel) Title() string { return "Categories" }

func (m CategoriesModel) ShortHelp() string {
	if m.state != categoriesStateBrowse {
		return "Enter: confirm | Esc: cancel"
	}

	return "Esc: back | n: new | e: rename | d: delete | r: refresh"
}

func (m CategoriesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m CategoriesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadCategoriesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.categories = msg.categories
		m.refreshTable()

		return m, nil

	case categorySavedMsg:
		m.state = categoriesStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = msg.text

		return m, m.loadCmd()
	}

	if m.state == categoriesStateBrowse {
		return m.updateBrowse(msg)
	}

	return m.updateForm(msg)
}

func (m CategoriesModel) selected() *category.Category {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.categories) {
		return nil
	}

	return m.categories[idx]
}

func (m CategoriesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "n":
			return m.openForm(categoriesStateCreate, huh.NewForm(
				huh.NewGroup(
					huh.NewInput().Key("name").Title("Name").Validate(validateRequired("name")),
					huh.NewInput().Key("products").Title("Product IDs").
						Placeholder("comma separated, optional").
						Validate(func(s string) error {
							_, err := parseIDList(s)
							return err
						}),
				),
			))
		case "e":
			c := m.selected()
			if c == nil {
				return m, nil
			}

			return m.openForm(categoriesStateRename, huh.NewForm(
				huh.NewGroup(
					huh.NewInput().Key("name").Title("New name").
						Placeholder(c.Name).
						Validate(validateRequired("name")),
				),
			))
		case "d":
			c := m.selected()
			if c == nil {
				return m, nil
			}

			return m.openForm(categoriesStateDelete, huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().Key("confirm").
						Title(fmt.Sprintf("Delete %q?", c.Name)).
						Description("Its products stay but lose their category.").
						Affirmative("Delete").
						Negative("Cancel"),
				),
			))
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m CategoriesModel) openForm(state categoriesState, form *huh.Form) (tea.Model, tea.Cmd) {
	m.form = form.WithWidth(45).WithShowHelp(false)
	m.state = state
	m.table.Blur()

	return m, m.form.Init()
}

func (m CategoriesModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = categoriesStateBrowse
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

	switch m.state {
	case categoriesStateCreate:
		return m, m.createCmd()
	case categoriesStateRename:
		return m, m.renameCmd()
	case categoriesStateDelete:
		if !m.form.GetBool("confirm") {
			m.state = categoriesStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}

		return m, m.deleteCmd()
	}

	return m, nil
}

func (m CategoriesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading categories...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	content := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	if m.form != nil {
		title := map[categoriesState]string{
			categoriesStateCreate: "New Category",
			categoriesStateRename: "Rename Category",
			categoriesStateDelete: "Delete Category",
		}[m.state]

		content = lipgloss.JoinHorizontal(lipgloss.Top, content,
			panelStyle.Width(48).Render(title+"\n\n"+m.form.View()))
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *CategoriesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.categories))
	for _, c := range m.categories {
		rows = append(rows, table.Row{
			strconv.FormatInt(c.ID, 10),
			c.Name,
			c.Slug,
			strconv.Itoa(len(c.ProductIDs)),
		})
	}

	m.table.SetRows(rows)
}

// parseIDList reads "1, 2,3" into ids. Blank input yields none.
func parseIDList(s string) ([]int64, error) {
	var ids []int64

	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid product id %q", part)
		}

		ids = append(ids, id)
	}

	return ids, nil
}

// Messages

type loadCategoriesMsg struct {
	categories []*category.Category
	err        error
}

type categorySavedMsg struct {
	text string
	err  error
}

func (m CategoriesModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		categories, err := m.categoryService.List(ctx)

		return loadCategoriesMsg{categories: categories, err: err}
	}
}

func (m CategoriesModel) createCmd() tea.Cmd {
	name := m.form.GetString("name")
	ids, _ := parseIDList(m.form.GetString("products"))

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		c, err := m.categoryService.Create(ctx, category.CreateParams{Name: name, ProductIDs: ids})
		if err != nil {
			return categorySavedMsg{err: err}
		}

		return categorySavedMsg{text: fmt.Sprintf("Created %q (%s)", c.Name, c.Slug)}
	}
}

func (m CategoriesModel) renameCmd() tea.Cmd {
	c := m.selected()
	if c == nil {
		return nil
	}

	id := c.ID
	name := m.form.GetString("name")

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		updated, err := m.categoryService.Update(ctx, id, name)
		if err != nil {
			return categorySavedMsg{err: err}
		}

		return categorySavedMsg{text: fmt.Sprintf("Renamed to %q", updated.Name)}
	}
}

func (m CategoriesModel) deleteCmd() tea.Cmd {
	c := m.selected()
	if c == nil {
		return nil
	}

	id, name := c.ID, c.Name

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.categoryService.Delete(ctx, id); err != nil {
			return categorySavedMsg{err: err}
		}

		return categorySavedMsg{text: fmt.Sprintf("Deleted %q", name)}
	}
}
