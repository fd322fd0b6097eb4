package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/tally/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/export"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
	txStore "github.com/MrJamesThe3rd/tally/internal/transaction/store"
)

type model struct {
	appName       string
	txService     *transaction.Service
	importService *importer.Service
	exportService *export.Service

	currentView View

	listView   view.ListModel
	ledgerView view.LedgerModel
	entryView  view.EntryModel
	importView view.ImportModel
	exportView view.ExportModel
}

type View int

const (
	ViewMenu   View = 0
	ViewList   View = 1
	ViewLedger View = 2
	ViewEntry  View = 3
	ViewImport View = 4
	ViewExport View = 5
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	txSvc := transaction.NewService(txStore.New(db))

	return model{
		appName:       cfg.App.Name,
		txService:     txSvc,
		importService: importer.NewService(),
		exportService: export.NewService(txSvc),
		currentView:   ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.txService)

				return m, m.listView.Init()
			case "2":
				m.currentView = ViewLedger
				m.ledgerView = view.NewLedgerModel(m.txService)

				return m, m.ledgerView.Init()
			case "3":
				m.currentView = ViewEntry
				m.entryView = view.NewEntryModel(m.txService)

				return m, m.entryView.Init()
			case "4":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.txService, m.importService)

				return m, m.importView.Init()
			case "5":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.exportService)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewLedger:
		var newModel tea.Model
		newModel, cmd = m.ledgerView.Update(msg)
		m.ledgerView = newModel.(view.LedgerModel)
	case ViewEntry:
		var newModel tea.Model
		newModel, cmd = m.entryView.Update(msg)
		m.entryView = newModel.(view.EntryModel)
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
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			m.appName + " TUI\n\n" +
				"1. All Transactions\n" +
				"2. Session Ledger\n" +
				"3. New Transaction\n" +
				"4. Import CSV\n" +
				"5. Export Statement\n\n" +
				"q. Quit",
		)
	case ViewList:
		return m.listView.View()
	case ViewLedger:
		return m.ledgerView.View()
	case ViewEntry:
		return m.entryView.View()
	case ViewImport:
		return m.importView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
