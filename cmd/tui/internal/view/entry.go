package view

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

// EntryModel records a single transaction.
type EntryModel struct {
	CommonModel
	txService *transaction.Service

	form   *huh.Form
	result *transaction.Transaction
	err    error
}

func NewEntryModel(txSvc *transaction.Service) EntryModel {
	return EntryModel{
		txService: txSvc,
		form:      newEntryForm(),
	}
}

func newEntryForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("title").
				Title("Title").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("title cannot be empty")
					}

					return nil
				}),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Placeholder("20.00").
				Validate(validateMagnitude),

			huh.NewSelect[string]().
				Key("type").
				Title("Type").
				Options(
					huh.NewOption("Debit", string(transaction.DirectionDebit)),
					huh.NewOption("Credit", string(transaction.DirectionCredit)),
				),

			huh.NewInput().
				Key("session").
				Title("Session").
				Description("Leave blank to start a new session"),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m EntryModel) Title() string { return "New Transaction" }

func (m EntryModel) ShortHelp() string {
	if m.form == nil {
		return "Esc: back | n: new entry"
	}

	return "Navigate form | Esc: back"
}

func (m EntryModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m EntryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case entrySavedMsg:
		m.result = msg.tx
		m.err = msg.err

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.form == nil && msg.String() == "n" {
			m.form = newEntryForm()
			m.result = nil
			m.err = nil

			return m, m.form.Init()
		}
	}

	if m.form == nil {
		return m, nil
	}

	form, cmd, done := updateForm(m.form, msg)
	m.form = form

	if !done {
		return m, cmd
	}

	params, err := entryParams(
		m.form.GetString("title"),
		m.form.GetString("amount"),
		m.form.GetString("type"),
		m.form.GetString("session"),
	)
	m.form = nil

	if err != nil {
		m.err = err
		return m, nil
	}

	return m, m.createCmd(params)
}

func (m EntryModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	if m.form != nil {
		return style.Render(m.form.View())
	}

	if m.err != nil {
		return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + faintStyle.Render(m.ShortHelp()))
	}

	if m.result == nil {
		return style.Render("Saving...")
	}

	session := ""
	if m.result.SessionID != nil {
		session = *m.result.SessionID
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		successStyle.Render("Transaction saved."),
		"",
		fmt.Sprintf("ID:      %s", m.result.ID),
		fmt.Sprintf("Title:   %s", m.result.Title),
		fmt.Sprintf("Amount:  %s", FormatAmount(m.result.Amount)),
		fmt.Sprintf("Session: %s", activeStyle(session)),
		"",
		faintStyle.Render(m.ShortHelp()),
	))
}

func validateMagnitude(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return errors.New("amount must be a number")
	}

	if d.IsNegative() {
		return errors.New("amount must not be negative")
	}

	return nil
}

func entryParams(title, amount, dir, sessionID string) (transaction.CreateParams, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return transaction.CreateParams{}, fmt.Errorf("parsing amount: %w", err)
	}

	return transaction.CreateParams{
		Title:     title,
		Amount:    d,
		Direction: transaction.Direction(dir),
		SessionID: strings.TrimSpace(sessionID),
	}, nil
}

type entrySavedMsg struct {
	tx  *transaction.Transaction
	err error
}

func (m EntryModel) createCmd(params transaction.CreateParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		tx, err := m.txService.Create(ctx, params)

		return entrySavedMsg{tx: tx, err: err}
	}
}
