package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/luxury-retail/productlist/internal/logtail"
)

// logState holds activity log state.
type logState struct {
	entries     []logtail.Entry
	follow      bool
	lastRefresh time.Time
	err         error
}

// initLogViewport initializes the log viewport.
func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(maxInt(m.width-4, 1), m.logViewportHeight())
}

// logViewportHeight is the box height minus the border and the status line.
func (m Model) logViewportHeight() int {
	return maxInt(m.contentHeight()+1-3, 1)
}

// updateLogViewport updates the log viewport with current content.
func (m *Model) updateLogViewport() {
	if m.logViewport.Width == 0 {
		m.initLogViewport()
	}
	m.logViewport.Width = maxInt(m.width-4, 1)
	m.logViewport.Height = m.logViewportHeight()
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	m.logViewport.SetContent(m.renderLogContent())

	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// renderLogs renders the activity log view.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Background)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Width(maxInt(m.width-2, 1)).
		Render(m.logViewport.View())

	follow := "off"
	if m.logState.follow {
		follow = "on"
	}
	status := fmt.Sprintf("Activity log %d lines auto-tail %s", len(m.logState.entries), follow)
	if m.logPath != "" {
		status += " " + truncate(m.logPath, maxInt(m.width/2, 10))
	}
	line := bg.Render(status, styles.FaintText)
	if m.logState.err != nil {
		line = bg.Render("Log unavailable: "+m.logState.err.Error(), styles.DangerText)
	}
	return box + "\n" + bg.FillLine(line, m.width)
}

// renderLogContent renders formatted entries with a colorized level column.
func (m *Model) renderLogContent() string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()
	width := m.logViewport.Width

	if m.logPath == "" {
		return bg.FillLine(bg.Render("No log file configured", styles.MutedText), width)
	}
	if len(m.logState.entries) == 0 {
		return bg.FillLine(bg.Render("No log entries", styles.MutedText), width)
	}

	var b strings.Builder
	for i, entry := range m.logState.entries {
		b.WriteString(bg.FillLine(m.colorizeEntry(entry, styles, bg), width))
		if i < len(m.logState.entries)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// colorizeEntry renders one entry as "time LEVEL message key=value".
func (m *Model) colorizeEntry(e logtail.Entry, styles Styles, bg BgStyle) string {
	if e.Raw != "" || (e.Message == "" && e.Level == "") {
		return bg.Render(e.Raw, styles.Text)
	}

	var parts []string
	if !e.Time.IsZero() {
		parts = append(parts, bg.Render(e.Time.Local().Format("15:04:05"), styles.FaintText))
	}
	level := strings.ToUpper(e.Level)
	parts = append(parts, bg.Render(padRight(level, 5), levelStyle(level, styles).Bold(true)))
	parts = append(parts, bg.Render(e.Message, styles.Text))

	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]string, 0, len(keys))
		for _, k := range keys {
			fields = append(fields, k+"="+e.Fields[k])
		}
		parts = append(parts, bg.Render(strings.Join(fields, " "), styles.MutedText))
	}
	return strings.Join(parts, bg.Space())
}

// levelStyle returns the style for a log level.
func levelStyle(level string, styles Styles) lipgloss.Style {
	switch level {
	case "INFO":
		return styles.SuccessText
	case "WARN":
		return styles.WarningText
	case "ERROR", "FATAL", "PANIC":
		return styles.DangerText
	case "DEBUG", "TRACE":
		return styles.InfoText
	default:
		return styles.Text
	}
}

// handleLogsKey processes keyboard input for the log view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		if m.logState.follow {
			m.logViewport.GotoBottom()
		}
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.logState.follow = false
		m.logViewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		return m, nil
	}

	// Any manual scroll stops following
	var cmd tea.Cmd
	before := m.logViewport.YOffset
	m.logViewport, cmd = m.logViewport.Update(msg)
	if m.logViewport.YOffset < before {
		m.logState.follow = false
	}
	return m, cmd
}

type logBatchMsg struct {
	entries []logtail.Entry
	err     error
}

// refreshLogs reads the tail of the log file at most once per LogRefreshInterval.
func (m *Model) refreshLogs() tea.Cmd {
	if m.logPath == "" {
		return nil
	}
	if time.Since(m.logState.lastRefresh) < LogRefreshInterval {
		return nil
	}
	m.logState.lastRefresh = time.Now()
	return readLogCmd(m.logPath)
}

func readLogCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogTailLines)
		if err != nil {
			return logBatchMsg{err: err}
		}
		entries := make([]logtail.Entry, 0, len(lines))
		for _, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			entries = append(entries, logtail.Parse(line))
		}
		return logBatchMsg{entries: entries}
	}
}

// handleLogBatch replaces the buffered entries with a fresh read.
func (m *Model) handleLogBatch(msg logBatchMsg) {
	m.logState.err = msg.err
	if msg.err != nil {
		return
	}
	m.logState.entries = msg.entries
	m.updateLogViewport()
}
