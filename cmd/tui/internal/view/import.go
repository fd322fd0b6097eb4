package view

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateSession importState = iota
	importStateFilePick
	importStateImporting
	importStateResult
)

type ImportModel struct {
	CommonModel
	txService     *transaction.Service
	importService *importer.Service

	state      importState
	form       *huh.Form
	filePicker filepicker.Model
	sessionID  string

	status string
	err    error
}

func NewImportModel(txSvc *transaction.Service, impSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		txService:     txSvc,
		importService: impSvc,
		form:          newImportSessionForm(),
		filePicker:    fp,
	}
}

func newImportSessionForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("session").
				Title("Import into session").
				Description("Leave blank to start a new session"),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m ImportModel) Title() string { return "Import CSV" }

func (m ImportModel) ShortHelp() string {
	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

	case importResultMsg:
		m.state = importStateResult
		m.err = msg.err

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d transactions into session %s.", msg.count, msg.sessionID)

		return m, nil
	}

	switch m.state {
	case importStateSession:
		form, cmd, done := updateForm(m.form, msg)
		m.form = form

		if !done {
			return m, cmd
		}

		m.sessionID = strings.TrimSpace(m.form.GetString("session"))
		m.state = importStateFilePick

		return m, m.filePicker.Init()

	case importStateFilePick:
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.state = importStateImporting
			m.status = fmt.Sprintf("Importing from %s...", path)

			return m, m.importCmd(path)
		}

		return m, cmd
	}

	return m, nil
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick, importStateResult:
		m.state = importStateSession
		m.form = newImportSessionForm()
		m.err = nil
		m.status = ""

		return m, m.form.Init()
	}

	return m, Back
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateSession:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	case importStateFilePick:
		target := "a new session"
		if m.sessionID != "" {
			target = "session " + activeStyle(m.sessionID)
		}

		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select CSV to import into %s:\n\n%s", target, m.filePicker.View()),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewResult() string {
	style := successStyle
	if m.err != nil {
		style = errorStyle
	}

	return lipgloss.NewStyle().Padding(2).Render(style.Render(m.status) + "\n\n(Esc to go back)")
}

type importResultMsg struct {
	count     int
	sessionID string
	err       error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	sessionID := m.sessionID

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		params, err := m.importService.Import(importer.FormatCSV, f)
		if err != nil {
			return importResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		txs, err := m.txService.CreateBatch(ctx, sessionID, params)
		if err != nil {
			return importResultMsg{err: err}
		}

		if len(txs) > 0 && txs[0].SessionID != nil {
			sessionID = *txs[0].SessionID
		}

		return importResultMsg{count: len(txs), sessionID: sessionID}
	}
}
