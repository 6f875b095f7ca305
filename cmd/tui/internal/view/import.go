package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/auth"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/importer"
)

const importTimeout = 2 * time.Minute

type Importer interface {
	Import(ctx context.Context, businessID string, r io.Reader) (*importer.Report, error)
}

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStateResult
)

type importResultMsg struct {
	report *importer.Report
	err    error
}

type ImportModel struct {
	importer Importer
	user     *auth.User

	state      importState
	filePicker filepicker.Model
	spinner    spinner.Model
	file       string

	report *importer.Report
	err    error
}

func NewImportModel(imp Importer, user *auth.User) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		importer:   imp,
		user:       user,
		filePicker: fp,
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (m ImportModel) Title() string { return "Importar CSV" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateFilePick {
		return "Enter: seleccionar archivo | Esc: volver"
	}

	return "Esc: volver"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc && m.state != importStateImporting {
			return m, Back
		}
	case importResultMsg:
		m.state = importStateResult
		m.report = msg.report
		m.err = msg.err

		return m, nil
	case spinner.TickMsg:
		if m.state != importStateImporting {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if ok, path := m.filePicker.DidSelectFile(msg); ok {
		m.file = path
		m.state = importStateImporting

		return m, tea.Batch(m.spinner.Tick, m.importCmd(path))
	}

	return m, cmd
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	imp := m.importer
	businessID := m.user.BusinessID

	if businessID == "" {
		businessID = m.user.ID
	}

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: fmt.Errorf("open file: %w", err)}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		report, err := imp.Import(ctx, businessID, f)

		return importResultMsg{report: report, err: err}
	}
}

func (m ImportModel) View() string {
	var body string

	switch m.state {
	case importStateFilePick:
		body = titleStyle.Render("Selecciona un archivo CSV") + "\n\n" + m.filePicker.View()
	case importStateImporting:
		body = fmt.Sprintf("%s Importando %s...", m.spinner.View(), m.file)
	case importStateResult:
		body = m.resultView()
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(body)
}

func (m ImportModel) resultView() string {
	if m.err != nil {
		return errorStyle.Render("No se pudo importar: "+m.err.Error()) + "\n\n" + faintStyle.Render("Esc: volver")
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", okStyle.Render(fmt.Sprintf("%d transacciones importadas", len(m.report.Imported))))
	fmt.Fprintf(&b, "%s\n", faintStyle.Render("Codificación: "+m.report.Charset))

	if len(m.report.Rejected) > 0 {
		fmt.Fprintf(&b, "\n%d filas rechazadas:\n", len(m.report.Rejected))

		for _, r := range m.report.Rejected {
			fmt.Fprintf(&b, "  línea %d: %s\n", r.Line, errorStyle.Render(r.Message))
		}
	}

	b.WriteString("\n" + faintStyle.Render("Esc: volver"))

	return b.String()
}
