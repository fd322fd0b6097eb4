package view

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/export"
)

const exportTimeout = 2 * time.Minute

type exportState int

const (
	exportStateForm exportState = iota
	exportStateExporting
	exportStateResult
)

// ExportModel writes a session statement to disk.
type ExportModel struct {
	CommonModel
	exportService *export.Service

	state   exportState
	form    *huh.Form
	spinner spinner.Model
	path    string
	summary string
	err     error
}

func NewExportModel(svc *export.Service) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ExportModel{
		exportService: svc,
		form:          newExportForm(),
		spinner:       s,
	}
}

func newExportForm() *huh.Form {
	dir := "./exports"

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("session").
				Title("Session").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("session cannot be empty")
					}

					return nil
				}),

			huh.NewInput().
				Key("dir").
				Title("Output Directory").
				Description("Directory will be created if it doesn't exist").
				Value(&dir),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m ExportModel) Title() string { return "Export Statement" }

func (m ExportModel) ShortHelp() string {
	switch m.state {
	case exportStateResult:
		return "Esc: back to menu"
	case exportStateExporting:
		return "Exporting..."
	}

	return "Esc: back | Enter: confirm"
}

func (m ExportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.state != exportStateExporting {
		return m, Back
	}

	switch m.state {
	case exportStateForm:
		form, cmd, done := updateForm(m.form, msg)
		m.form = form

		if !done {
			return m, cmd
		}

		m.state = exportStateExporting

		return m, tea.Batch(m.spinner.Tick, m.runExportCmd(
			strings.TrimSpace(m.form.GetString("session")),
			m.form.GetString("dir"),
		))

	case exportStateExporting:
		if result, ok := msg.(exportResultMsg); ok {
			m.state = exportStateResult
			m.err = result.err
			m.path = result.path
			m.summary = result.summary

			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m ExportModel) View() string {
	switch m.state {
	case exportStateForm:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())

	case exportStateExporting:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s Writing statement...", m.spinner.View()),
		)

	case exportStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ExportModel) viewResult() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := successStyle.Bold(true).Render("Export Complete!")

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			"Written to "+m.path,
			"",
			m.summary,
		),
	)
}

type exportResultMsg struct {
	path    string
	summary string
	err     error
}

func (m ExportModel) runExportCmd(sessionID, dir string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		lines, err := m.exportService.Statement(ctx, sessionID)
		if err != nil {
			return exportResultMsg{err: err}
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exportResultMsg{err: fmt.Errorf("creating output directory: %w", err)}
		}

		path := filepath.Join(dir, m.exportService.Filename(time.Now()))

		f, err := os.Create(path)
		if err != nil {
			return exportResultMsg{err: fmt.Errorf("creating file: %w", err)}
		}
		defer f.Close()

		if err := m.exportService.WriteCSV(f, lines); err != nil {
			return exportResultMsg{err: err}
		}

		return exportResultMsg{path: path, summary: m.exportService.Summary(lines)}
	}
}
