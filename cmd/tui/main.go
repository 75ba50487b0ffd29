package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/barkeep/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/barkeep/internal/category"
	categoryStore "github.com/MrJamesThe3rd/barkeep/internal/category/store"
	"github.com/MrJamesThe3rd/barkeep/internal/config"
	"github.com/MrJamesThe3rd/barkeep/internal/database"
	"github.com/MrJamesThe3rd/barkeep/internal/export"
	"github.com/MrJamesThe3rd/barkeep/internal/finance"
	financeStore "github.com/MrJamesThe3rd/barkeep/internal/finance/store"
	"github.com/MrJamesThe3rd/barkeep/internal/importer"
	"github.com/MrJamesThe3rd/barkeep/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/barkeep/internal/matching/store"
	"github.com/MrJamesThe3rd/barkeep/internal/notify"
	"github.com/MrJamesThe3rd/barkeep/internal/order"
	orderStore "github.com/MrJamesThe3rd/barkeep/internal/order/store"
	"github.com/MrJamesThe3rd/barkeep/internal/search"
	searchStore "github.com/MrJamesThe3rd/barkeep/internal/search/store"
	"github.com/MrJamesThe3rd/barkeep/internal/viewcache"
)

type services struct {
	cfg      *config.Config
	orders   *order.Service
	finance  *finance.Service
	category *category.Service
	search   *search.Service
	importer *importer.Service
	export   *export.Service
}

type model struct {
	svc services

	currentView View

	ordersView     view.OrdersModel
	financeView    view.FinanceModel
	categoriesView view.CategoriesModel
	searchView     view.SearchModel
	importView     view.ImportModel
	exportView     view.ExportModel
}

type View int

const (
	ViewMenu       View = 0
	ViewOrders     View = 1
	ViewFinance    View = 2
	ViewCategories View = 3
	ViewSearch     View = 4
	ViewImport     View = 5
	ViewExport     View = 6
)

// newServices wires the TUI against the database directly. Status changes
// and finance writes made here still invalidate the API's view cache when
// it is enabled.
func newServices(ctx context.Context) (services, func(), error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return services{}, nil, fmt.Errorf("loading config: %w", err)
	}

	// The terminal belongs to bubbletea; service logs are discarded.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return services{}, nil, fmt.Errorf("connecting to database: %w", err)
	}

	cleanup := func() { _ = db.Close() }

	var rdb *redis.Client
	if cfg.Cache.Enabled || cfg.Notify.Backend == config.NotifyRedis {
		rdb, err = database.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			cleanup()
			return services{}, nil, fmt.Errorf("connecting to redis: %w", err)
		}

		prev := cleanup
		cleanup = func() { _ = rdb.Close(); prev() }
	}

	var cacheClient *redis.Client
	if cfg.Cache.Enabled {
		cacheClient = rdb
	}

	views := viewcache.New(cacheClient, cfg.Cache.TTL, logger)

	notifier, closeNotifier, err := notify.New(cfg, rdb, logger)
	if err != nil {
		cleanup()
		return services{}, nil, fmt.Errorf("creating notifier: %w", err)
	}

	prev := cleanup
	cleanup = func() { _ = closeNotifier(); prev() }

	financeSvc := finance.NewService(financeStore.New(db), views, cfg.Ledger.SubmitterTag, logger)
	matchingSvc := matching.NewService(matchingStore.New(db))

	return services{
		cfg:      cfg,
		orders:   order.NewService(orderStore.New(db), notifier, views, logger),
		finance:  financeSvc,
		category: category.NewService(categoryStore.New(db)),
		search:   search.NewService(searchStore.New(db, cfg.Search.MaxRows), cfg.Search.QueryTimeout, logger).WithRoutes(cfg.Search.Routes),
		importer: importer.NewService(matchingSvc, logger),
		export:   export.NewService(financeSvc),
	}, cleanup, nil
}

func initialModel(svc services) model {
	return model{
		svc:         svc,
		currentView: ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewOrders
				m.ordersView = view.NewOrdersModel(m.svc.orders)

				return m, m.ordersView.Init()
			case "2":
				m.currentView = ViewFinance
				m.financeView = view.NewFinanceModel(m.svc.finance)

				return m, m.financeView.Init()
			case "3":
				m.currentView = ViewCategories
				m.categoriesView = view.NewCategoriesModel(m.svc.category)

				return m, m.categoriesView.Init()
			case "4":
				m.currentView = ViewSearch
				m.searchView = view.NewSearchModel(m.svc.search, m.svc.cfg.Search.Debounce)

				return m, m.searchView.Init()
			case "5":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.svc.finance, m.svc.importer)

				return m, m.importView.Init()
			case "6":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.svc.export)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewOrders:
		var newModel tea.Model
		newModel, cmd = m.ordersView.Update(msg)
		m.ordersView = newModel.(view.OrdersModel)
	case ViewFinance:
		var newModel tea.Model
		newModel, cmd = m.financeView.Update(msg)
		m.financeView = newModel.(view.FinanceModel)
	case ViewCategories:
		var newModel tea.Model
		newModel, cmd = m.categoriesView.Update(msg)
		m.categoriesView = newModel.(view.CategoriesModel)
	case ViewSearch:
		var newModel tea.Model
		newModel, cmd = m.searchView.Update(msg)
		m.searchView = newModel.(view.SearchModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	var current view.View

	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			m.svc.cfg.App.Name + " Admin\n\n" +
				"1. Orders\n" +
				"2. Finance\n" +
				"3. Categories\n" +
				"4. Search\n" +
				"5. Import Expenses\n" +
				"6. Export Ledger\n\n" +
				"q. Quit",
		)
	case ViewOrders:
		current = m.ordersView
	case ViewFinance:
		current = m.financeView
	case ViewCategories:
		current = m.categoriesView
	case ViewSearch:
		current = m.searchView
	case ViewImport:
		current = m.importView
	case ViewExport:
		current = m.exportView
	default:
		return "Unknown View"
	}

	help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(current.ShortHelp())
	title := lipgloss.NewStyle().Bold(true).PaddingLeft(1).Render(current.Title())

	return lipgloss.JoinVertical(lipgloss.Left, title, current.View(), help)
}

func main() {
	svc, cleanup, err := newServices(context.Background())
	if err != nil {
		slog.Error("failed to start TUI", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	p := tea.NewProgram(initialModel(svc))
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		cleanup()
		os.Exit(1)
	}
}
