package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

// ListModel shows every stored transaction regardless of session.
type ListModel struct {
	CommonModel
	txService *transaction.Service

	table   table.Model
	txs     []*transaction.Transaction
	loading bool
	err     error
}

func NewListModel(txSvc *transaction.Service) ListModel {
	return ListModel{
		txService: txSvc,
		table: newTable([]table.Column{
			{Title: "Created", Width: 17},
			{Title: "Session", Width: 10},
			{Title: "Amount", Width: 12},
			{Title: "Title", Width: 40},
		}),
		loading: true,
	}
}

func (m ListModel) Title() string { return "All Transactions" }

func (m ListModel) ShortHelp() string {
	return "Esc: back | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadAllMsg:
		m.loading = false
		m.err = msg.err
		m.txs = msg.txs
		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := fmt.Sprintf("%s: %s rows", m.Title(), activeStyle(fmt.Sprint(len(m.txs))))

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		renderTable(m.table),
		faintStyle.Render(m.ShortHelp()),
	))
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		rows = append(rows, table.Row{
			FormatTime(tx.CreatedAt),
			FormatSession(tx.SessionID),
			FormatAmount(tx.Amount),
			tx.Title,
		})
	}

	m.table.SetRows(rows)
}

type loadAllMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m ListModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.ListAll(ctx)

		return loadAllMsg{txs: txs, err: err}
	}
}
