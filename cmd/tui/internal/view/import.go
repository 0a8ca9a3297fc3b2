package view

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/importer/cgd"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateSource importState = iota
	importStatePaste
	importStateFilePick
	importStateImporting
	importStateResult
)

type importSource string

const (
	importSourcePaste importSource = "Paste CSV text"
	importSourceFile  importSource = "Choose a CSV file"
	importSourceCGD   importSource = "Choose a CGD bank statement"
)

type ImportModel struct {
	importService *importer.Service

	state        importState
	sources      []importSource
	sourceCursor int

	textarea   textarea.Model
	filePicker filepicker.Model
	statement  bool

	status string
	err    error
}

func NewImportModel(impSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	ta := textarea.New()
	ta.Placeholder = "date,category,note,amount\n2024-01-15,food,Lunch,80"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(70)
	ta.SetHeight(12)

	return ImportModel{
		importService: impSvc,
		sources:       []importSource{importSourcePaste, importSourceFile, importSourceCGD},
		textarea:      ta,
		filePicker:    fp,
	}
}

func (m ImportModel) Title() string { return "Import" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStatePaste {
		return "Ctrl+S: import | Esc: back"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return nil
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		switch m.state {
		case importStateSource:
			return m.updateSource(msg)
		case importStatePaste:
			if msg.String() == "ctrl+s" {
				m.state = importStateImporting
				m.status = "Importing pasted text..."

				return m, m.importTextCmd(m.textarea.Value())
			}
		}

	case importResultMsg:
		m.state = importStateResult
		m.err = msg.err

		switch {
		case errors.Is(msg.err, importer.ErrNoRows):
			m.status = "No valid rows found."
		case errors.Is(msg.err, cgd.ErrUnknownLayout):
			m.status = "Not a CGD statement export."
		case msg.err != nil:
			m.status = fmt.Sprintf("Error: %v", msg.err)
		default:
			m.status = fmt.Sprintf("Imported %d expenses.", msg.count)
		}

		return m, nil
	}

	switch m.state {
	case importStatePaste:
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)

		return m, cmd

	case importStateFilePick:
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.state = importStateImporting
			m.status = fmt.Sprintf("Importing from %s...", path)

			return m, m.importFileCmd(path)
		}

		return m, cmd
	}

	return m, nil
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStatePaste:
		m.textarea.Blur()
		m.state = importStateSource

		return m, nil
	case importStateFilePick:
		m.state = importStateSource
		return m, nil
	case importStateResult:
		m.state = importStateSource
		m.err = nil
		m.status = ""

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateSource(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.sourceCursor > 0 {
			m.sourceCursor--
		}
	case tea.KeyDown:
		if m.sourceCursor < len(m.sources)-1 {
			m.sourceCursor++
		}
	case tea.KeyEnter:
		switch m.sources[m.sourceCursor] {
		case importSourceFile, importSourceCGD:
			m.statement = m.sources[m.sourceCursor] == importSourceCGD
			m.state = importStateFilePick

			return m, m.filePicker.Init()
		}

		m.state = importStatePaste
		m.textarea.Reset()

		return m, m.textarea.Focus()
	}

	return m, nil
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateSource:
		var b strings.Builder

		b.WriteString("Import expenses from:\n\n")

		for i, src := range m.sources {
			cursor := " "
			if i == m.sourceCursor {
				cursor = ">"
			}

			fmt.Fprintf(&b, "%s %s\n", cursor, src)
		}

		return padded.Render(b.String())

	case importStatePaste:
		return padded.Render("Paste rows (date,category,note,amount):\n\n" + m.textarea.View())

	case importStateFilePick:
		return padded.Render("Select file to import:\n\n" + m.filePicker.View())

	case importStateImporting:
		return padded.Render(m.status)

	case importStateResult:
		style := successStyle
		if m.err != nil {
			style = errorStyle
		}

		return padded.Render(style.Render(m.status) + "\n\n(Esc to go back)")
	}

	return ""
}

// Messages

type importResultMsg struct {
	count int
	err   error
}

func (m ImportModel) importTextCmd(text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		n, err := m.importService.ImportText(ctx, text)

		return importResultMsg{count: n, err: err}
	}
}

func (m ImportModel) importFileCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		importFn := m.importService.Import
		if m.statement {
			importFn = m.importService.ImportStatement
		}

		n, err := importFn(ctx, f)

		return importResultMsg{count: n, err: err}
	}
}
