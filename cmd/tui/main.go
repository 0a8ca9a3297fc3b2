package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/tally/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/expense"
	"github.com/MrJamesThe3rd/tally/internal/expense/store"
	"github.com/MrJamesThe3rd/tally/internal/export"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/matching"
)

type View int

const (
	ViewMenu View = iota
	ViewAdd
	ViewDays
	ViewChart
	ViewImport
	ViewExport
)

type model struct {
	appName string

	expenseService  *expense.Service
	matchingService *matching.Service
	importService   *importer.Service
	exportService   *export.Service
	format          view.Formatter

	currentView View
	active      view.View
	width       int
	height      int
}

func newModel(cfg *config.Config, expenseSvc *expense.Service) model {
	matchingSvc := matching.NewService(expenseSvc)

	return model{
		appName:         cfg.App.Name,
		expenseService:  expenseSvc,
		matchingService: matchingSvc,
		importService:   importer.NewService(expenseSvc, importer.WithCategorizer(matchingSvc)),
		exportService:   export.NewService(expenseSvc),
		format:          view.NewFormatter(cfg.TUI.Language, cfg.TUI.Currency),
		currentView:     ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) open(v View) (tea.Model, tea.Cmd) {
	switch v {
	case ViewAdd:
		m.active = view.NewAddModel(m.expenseService, m.matchingService, m.format)
	case ViewDays:
		m.active = view.NewDaysModel(m.expenseService, m.format)
	case ViewChart:
		m.active = view.NewChartModel(m.expenseService, m.format)
	case ViewImport:
		m.active = view.NewImportModel(m.importService)
	case ViewExport:
		m.active = view.NewExportModel(m.exportService)
	default:
		return m, nil
	}

	m.currentView = v

	if m.width == 0 {
		return m, m.active.Init()
	}

	size := tea.WindowSizeMsg{Width: m.width, Height: m.height}

	return m, tea.Batch(m.active.Init(), func() tea.Msg { return size })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				return m.open(ViewAdd)
			case "2":
				return m.open(ViewDays)
			case "3":
				return m.open(ViewChart)
			case "4":
				return m.open(ViewImport)
			case "5":
				return m.open(ViewExport)
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		m.active = nil

		return m, nil
	}

	if m.active == nil {
		return m, nil
	}

	next, cmd := m.active.Update(msg)
	if v, ok := next.(view.View); ok {
		m.active = v
	}

	return m, cmd
}

func (m model) View() string {
	if m.currentView == ViewMenu || m.active == nil {
		return lipgloss.NewStyle().Padding(2).Render(
			m.appName + "\n\n" +
				"1. Add Expense\n" +
				"2. Expenses by Day\n" +
				"3. Spending Chart\n" +
				"4. Import\n" +
				"5. Export\n\n" +
				"q. Quit",
		)
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Render(m.active.Title())
	help := lipgloss.NewStyle().Faint(true).Render(m.active.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, title, m.active.View(), help)
}

// setupLogging sends logs to path, or drops them when path is empty, since
// bubbletea owns the terminal.
func setupLogging(path string, level slog.Level) (func() error, error) {
	if path == "" {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return func() error { return nil }, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))

	return f.Close, nil
}

func main() {
	_ = godotenv.Load()

	if err := run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	closeLog, err := setupLogging(cfg.TUI.LogFile, cfg.SlogLevel())
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	defer closeLog()

	storage, closeStorage, err := store.Open(cfg.Storage.Backend, cfg.Storage.Path, cfg.Storage.Key)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer closeStorage()

	expenseSvc := expense.NewService(storage,
		expense.WithRequiredNote(cfg.Expense.RequireNote),
		expense.WithLogger(slog.Default()),
	)

	p := tea.NewProgram(newModel(cfg, expenseSvc), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}

	return nil
}
