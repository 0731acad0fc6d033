package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/luxury-retail/productlist/internal/state"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// noticeModal shows the outcome of a native action until dismissed.
type noticeModal struct {
	notice state.Notice
}

func newNoticeModal(n state.Notice) Modal {
	return noticeModal{notice: n}
}

func (n noticeModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return n, nil, false
	}
	switch {
	case keyMsg.Type == tea.KeyCtrlC:
		return n, tea.Quit, true
	case key.Matches(keyMsg, keys.Select, keys.Escape), keyMsg.Type == tea.KeySpace, keyMsg.String() == "o":
		return n, nil, true
	}
	return n, nil, false
}

func (n noticeModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	border := theme.Accent
	titleStyle := styles.AccentText.Bold(true)
	switch n.notice.Kind {
	case state.NoticeWarning:
		border = theme.Warning
		titleStyle = styles.WarningText.Bold(true)
	case state.NoticeError:
		border = theme.Danger
		titleStyle = styles.DangerText
	}

	title := n.notice.Title
	if title == "" {
		title = "Notice"
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		"",
		styles.Text.Render(n.notice.Message),
		"",
		styles.FaintText.Render("enter/esc to dismiss"),
	)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(1, 3).
		Render(body)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
