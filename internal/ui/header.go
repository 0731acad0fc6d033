package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const appTitle = "LUXURY COLLECTION"

// renderHeader renders the title bar with connectivity, sync and queue status.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{bg.Render(appTitle, styles.Logo)}

	if m.snapshot.IsOnline {
		parts = append(parts, bg.Render("● ONLINE", styles.SuccessText))
	} else {
		parts = append(parts, bg.Render("● OFFLINE", styles.DangerText))
	}

	parts = append(parts, bg.Render(syncLabel(m.snapshot.LastSync, m.now()), styles.MutedText))

	if depth := m.snapshot.QueueDepth; depth > 0 {
		parts = append(parts,
			bg.Render("Queued:", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d", depth), styles.WarningText))
	}

	if m.embedded {
		parts = append(parts, bg.Render("embedded", styles.FaintText))
	}

	if m.pending != "" {
		parts = append(parts, bg.Render(m.pending, styles.AccentText))
	} else if m.status != "" && m.width >= LayoutCompactWidth {
		parts = append(parts, bg.Render(truncate(m.status, m.width/2), styles.InfoText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// renderOfflineBanner renders the full-width offline warning.
func (m Model) renderOfflineBanner() string {
	styles := m.theme.Styles()
	return styles.Banner.
		Width(m.width).
		Align(lipgloss.Center).
		Render("⚠ You are offline. Showing cached products.")
}

// renderCommandBar renders the search field and category chips.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Background)

	var search string
	switch {
	case m.searching:
		search = m.search.View()
	case m.snapshot.SearchQuery != "":
		search = bg.Render("/ "+m.snapshot.SearchQuery, styles.AccentText)
	default:
		search = bg.Render("/ Search products...", styles.FaintText)
	}

	chips := make([]string, 0, len(m.view.Categories))
	for _, category := range m.view.Categories {
		active := category == m.snapshot.SelectedCategory
		chips = append(chips, styles.ChipStyle(active).Render(titleCase(category)))
	}

	line := search + bg.Spaces(3) + strings.Join(chips, bg.Space())
	return bg.FillLine(line, m.width)
}

// renderFooter renders the platform line and the result count.
func (m Model) renderFooter() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	platform := bg.Render("App #1: Product List • Platform: "+m.platform, styles.MutedText)

	connectivity := bg.Render("● Online", styles.SuccessText)
	if !m.snapshot.IsOnline {
		connectivity = bg.Render("● Offline", styles.DangerText)
	}
	count := bg.Render(countLabel(len(m.view.Products))+" •", styles.FaintText) + bg.Space() + connectivity

	center := lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Width(m.width).
		Align(lipgloss.Center)
	return center.Render(platform) + "\n" + center.Render(count)
}
