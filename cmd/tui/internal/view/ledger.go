package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

type ledgerState int

const (
	ledgerStateSession ledgerState = iota
	ledgerStateBrowse
	ledgerStateEdit
	ledgerStateDelete
)

// typeAsGiven keeps the edited amount's sign exactly as typed.
const typeAsGiven = ""

// LedgerModel browses and edits the entries of a single session.
type LedgerModel struct {
	CommonModel
	txService *transaction.Service

	state     ledgerState
	sessionID string
	form      *huh.Form
	table     table.Model
	txs       []*transaction.Transaction
	summary   *transaction.Summary
	status    string
	err       error
}

func NewLedgerModel(txSvc *transaction.Service) LedgerModel {
	return LedgerModel{
		txService: txSvc,
		form:      newSessionForm("Session to open"),
		table: newTable([]table.Column{
			{Title: "Created", Width: 17},
			{Title: "Type", Width: 7},
			{Title: "Amount", Width: 12},
			{Title: "Title", Width: 40},
		}),
	}
}

func (m LedgerModel) Title() string { return "Session Ledger" }

func (m LedgerModel) ShortHelp() string {
	switch m.state {
	case ledgerStateSession:
		return "Enter: open | Esc: back"
	case ledgerStateEdit, ledgerStateDelete:
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | e: edit | x: delete | r: refresh"
}

func (m LedgerModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LedgerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ledgerLoadMsg:
		m.err = msg.err
		m.txs = msg.txs
		m.summary = msg.summary
		m.refreshTable()

		return m, nil

	case ledgerSaveMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = ledgerStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 14)
		return m, nil
	}

	switch m.state {
	case ledgerStateSession:
		return m.updateSession(msg)
	case ledgerStateBrowse:
		return m.updateBrowse(msg)
	case ledgerStateEdit, ledgerStateDelete:
		return m.updateAction(msg)
	}

	return m, nil
}

func (m LedgerModel) updateSession(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd, done := updateForm(m.form, msg)
	m.form = form

	if !done {
		return m, cmd
	}

	m.sessionID = strings.TrimSpace(m.form.GetString("session"))
	m.form = nil
	m.state = ledgerStateBrowse

	return m, m.loadCmd()
}

func (m LedgerModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.status = ""
			return m, m.loadCmd()
		case "e":
			return m.enterEdit()
		case "x":
			return m.enterDelete()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m LedgerModel) selected() *transaction.Transaction {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	return m.txs[idx]
}

func (m LedgerModel) enterEdit() (tea.Model, tea.Cmd) {
	tx := m.selected()
	if tx == nil {
		return m, nil
	}

	title := tx.Title
	amount := tx.Amount.String()
	dir := typeAsGiven

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("title").
				Title("Title").
				Value(&title),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Description("Leave blank to keep the current amount").
				Value(&amount).
				Validate(validateOptionalAmount),

			huh.NewSelect[string]().
				Key("type").
				Title("Type").
				Options(
					huh.NewOption("As typed (signed)", typeAsGiven),
					huh.NewOption("Debit", string(transaction.DirectionDebit)),
					huh.NewOption("Credit", string(transaction.DirectionCredit)),
				).
				Value(&dir),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = ledgerStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m LedgerModel) enterDelete() (tea.Model, tea.Cmd) {
	tx := m.selected()
	if tx == nil {
		return m, nil
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(fmt.Sprintf("Delete %q (%s)?", tx.Title, FormatAmount(tx.Amount))).
				Affirmative("Delete").
				Negative("Cancel"),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = ledgerStateDelete
	m.table.Blur()

	return m, m.form.Init()
}

func (m LedgerModel) updateAction(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = ledgerStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd, done := updateForm(m.form, msg)
	m.form = form

	if !done {
		return m, cmd
	}

	if m.state == ledgerStateDelete {
		return m, m.deleteCmd(m.form.GetBool("confirm"))
	}

	return m, m.updateCmd(m.form.GetString("title"), m.form.GetString("amount"), m.form.GetString("type"))
}

func (m LedgerModel) View() string {
	if m.state == ledgerStateSession {
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := fmt.Sprintf("Session %s", activeStyle(m.sessionID))
	if m.summary != nil {
		header += fmt.Sprintf(" | Balance: %s | Entries: %d",
			activeStyle(FormatAmount(m.summary.Amount)), m.summary.Count)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		renderTable(m.table),
	)

	if m.form != nil {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Width(48).Render(m.form.View()))
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content + "\n" + faintStyle.Render(m.ShortHelp()))
}

func (m *LedgerModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		rows = append(rows, table.Row{
			FormatTime(tx.CreatedAt),
			string(transaction.DirectionOf(tx.Amount)),
			FormatAmount(tx.Amount),
			tx.Title,
		})
	}

	m.table.SetRows(rows)
}

func validateOptionalAmount(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	if _, err := decimal.NewFromString(strings.TrimSpace(s)); err != nil {
		return errors.New("amount must be a number")
	}

	return nil
}

// parseUpdate builds the service parameters from raw form values.
func parseUpdate(title, amount, dir string) (transaction.UpdateParams, error) {
	var params transaction.UpdateParams

	if strings.TrimSpace(title) != "" {
		params.Title = &title
	}

	if s := strings.TrimSpace(amount); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return params, fmt.Errorf("parsing amount: %w", err)
		}

		params.Amount = &d
	}

	if dir != typeAsGiven {
		d := transaction.Direction(dir)
		params.Direction = &d
	}

	return params, nil
}

// Messages

type ledgerLoadMsg struct {
	txs     []*transaction.Transaction
	summary *transaction.Summary
	err     error
}

type ledgerSaveMsg struct {
	status string
	err    error
}

func (m LedgerModel) loadCmd() tea.Cmd {
	sessionID := m.sessionID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.ListForSession(ctx, sessionID)
		if err != nil {
			return ledgerLoadMsg{err: err}
		}

		summary, err := m.txService.Summarize(ctx, sessionID)
		if err != nil {
			return ledgerLoadMsg{err: err}
		}

		return ledgerLoadMsg{txs: txs, summary: summary}
	}
}

func (m LedgerModel) updateCmd(title, amount, dir string) tea.Cmd {
	tx := m.selected()
	if tx == nil {
		return nil
	}

	id, sessionID := tx.ID, m.sessionID

	return func() tea.Msg {
		params, err := parseUpdate(title, amount, dir)
		if err != nil {
			return ledgerSaveMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		n, err := m.txService.Update(ctx, id, sessionID, params)
		if err != nil {
			return ledgerSaveMsg{err: err}
		}

		return ledgerSaveMsg{status: fmt.Sprintf("Updated %d transaction(s).", n)}
	}
}

func (m LedgerModel) deleteCmd(confirmed bool) tea.Cmd {
	tx := m.selected()
	if tx == nil || !confirmed {
		return func() tea.Msg { return ledgerSaveMsg{status: "Delete cancelled."} }
	}

	id, sessionID := tx.ID, m.sessionID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := m.txService.Delete(ctx, id, sessionID); err != nil {
			return ledgerSaveMsg{err: err}
		}

		return ledgerSaveMsg{status: "Deleted 1 transaction."}
	}
}
