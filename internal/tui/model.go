package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/browser"

	"github.com/jjenkins/billt/internal/store"
)

// Screen is the view currently shown
type Screen int

const (
	ScreenMain Screen = iota
	ScreenHelp
	ScreenSearch
)

type openedMsg struct {
	url string
	err error
}

type writtenMsg struct {
	err error
}

// Model browses the bills of the local store
type Model struct {
	db   *store.Local
	path string

	// fixed when the model is created
	entries  []store.Entry
	selected int

	screen Screen
	input  textinput.Model

	width  int
	height int

	status string
	err    error

	open func(url string) error
}

// New creates a Model over a snapshot of the store's entries.
// The store is written back to path when the user quits.
func New(db *store.Local, path string) Model {
	input := textinput.New()
	input.Placeholder = "query to save"
	input.CharLimit = 200

	return Model{
		db:      db,
		path:    path,
		entries: db.Entries(),
		screen:  ScreenMain,
		input:   input,
		open:    browser.OpenURL,
	}
}

// Err reports the last failure, such as the final store write
func (m Model) Err() error {
	return m.err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func openCmd(open func(string) error, url string) tea.Cmd {
	return func() tea.Msg {
		return openedMsg{url: url, err: open(url)}
	}
}

func writeCmd(db *store.Local, path string) tea.Cmd {
	return func() tea.Msg {
		return writtenMsg{err: db.Write(path)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case openedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("open %s: %w", msg.url, msg.err)
		} else {
			m.status = "Opened " + msg.url
		}
		return m, nil

	case writtenMsg:
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		switch m.screen {
		case ScreenHelp:
			return m.handleHelpKey(msg)
		case ScreenSearch:
			return m.handleSearchKey(msg)
		default:
			return m.handleMainKey(msg)
		}
	}

	return m, nil
}

func (m Model) handleMainKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, writeCmd(m.db, m.path)

	case "ctrl+c":
		return m, tea.Quit

	case "?":
		m.screen = ScreenHelp

	case "s":
		m.screen = ScreenSearch
		m.status = ""
		cmd := m.input.Focus()
		return m, cmd

	case "down", "j":
		m.next()

	case "up", "k":
		m.prev()

	case "enter":
		if len(m.entries) == 0 {
			return m, nil
		}
		url := m.entries[m.selected].Bill.URL
		if url == "" {
			m.status = "Bill has no URL"
			return m, nil
		}
		return m, openCmd(m.open, url)
	}

	return m, nil
}

func (m Model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "?":
		m.screen = ScreenMain
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		m.input.Reset()
		m.screen = ScreenMain
		return m, nil

	case "ctrl+c":
		return m, tea.Quit

	case "enter":
		query := m.input.Value()
		if m.db.AddSavedSearch(query) {
			m.status = fmt.Sprintf("Saved search %q", strings.TrimSpace(query))
		}
		m.input.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// next and prev wrap around at either end of the list
func (m *Model) next() {
	if len(m.entries) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.entries)
}

func (m *Model) prev() {
	if len(m.entries) == 0 {
		return
	}
	m.selected = (m.selected - 1 + len(m.entries)) % len(m.entries)
}

func (m Model) View() string {
	var sections []string

	sections = append(sections, titleStyle.Render(fmt.Sprintf("billt · %d bills", len(m.entries))))
	sections = append(sections, m.renderTable())

	switch m.screen {
	case ScreenHelp:
		sections = append(sections, popupStyle.Render(helpText))
	case ScreenSearch:
		saved := dimStyle.Render(fmt.Sprintf("%d saved searches", len(m.db.SavedSearches)))
		sections = append(sections, popupStyle.Render("Save search\n\n"+m.input.View()+"\n\n"+saved))
	}

	if m.err != nil {
		sections = append(sections, errorStyle.Render(m.err.Error()))
	} else if m.status != "" {
		sections = append(sections, statusStyle.Render(m.status))
	}

	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

const helpText = `Keys

  ↑/k  ↓/j   move (wraps around)
  enter      open bill in browser
  s          save a search for batch runs
  ?          toggle this help
  esc        back
  q          save and quit`

var columnWidths = []int{40, 6, 10, 12, 40}

func (m Model) renderTable() string {
	var lines []string
	lines = append(lines, columnStyle.Render(formatRow([]string{"Title", "State", "Number", "Last action", "Action"})))

	if len(m.entries) == 0 {
		lines = append(lines, dimStyle.Render("No bills stored yet. Run `billt search` first."))
		return strings.Join(lines, "\n")
	}

	start, end := m.visibleRange()
	for i := start; i < end; i++ {
		b := m.entries[i].Bill
		row := formatRow([]string{b.Title, b.State, b.BillNumber, b.LastActionDate, b.LastAction})
		if i == m.selected {
			row = selectedStyle.Render(row)
		}
		lines = append(lines, row)
	}

	return strings.Join(lines, "\n")
}

// visibleRange keeps the selected row on screen when the list is taller than the window
func (m Model) visibleRange() (int, int) {
	n := len(m.entries)
	rows := m.height - 4
	if m.height == 0 || rows <= 0 || rows >= n {
		return 0, n
	}

	start := m.selected - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > n {
		start = n - rows
	}
	return start, start + rows
}

func formatRow(cells []string) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = padRight(truncateToWidth(c, columnWidths[i]), columnWidths[i])
	}
	return strings.Join(parts, " ")
}

func (m Model) renderFooter() string {
	parts := []string{
		footerKeyStyle.Render("↑↓") + footerDescStyle.Render(" Nav"),
		footerKeyStyle.Render("enter") + footerDescStyle.Render(" Open"),
		footerKeyStyle.Render("s") + footerDescStyle.Render(" Save search"),
		footerKeyStyle.Render("?") + footerDescStyle.Render(" Help"),
		footerKeyStyle.Render("q") + footerDescStyle.Render(" Quit"),
	}
	return strings.Join(parts, "  ")
}

func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func truncateToWidth(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if len(runes) > width-1 {
		return string(runes[:width-1]) + "…"
	}
	return s
}
