package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/luxury-retail/productlist/internal/catalog"
)

const (
	brandWidth    = 18
	categoryWidth = 13
	priceWidth    = 16
	stockWidth    = 10
	markerWidth   = 2
)

// renderProducts renders the product rows, or the loading and empty placeholders.
func (m Model) renderProducts() string {
	height := m.contentHeight()
	styles := m.theme.Styles()

	placeholder := func(text string, style lipgloss.Style) string {
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, style.Render(text))
	}

	if m.snapshot.Loading {
		return placeholder("Loading products...", styles.Text)
	}
	if len(m.view.Products) == 0 {
		return placeholder("No products found", styles.MutedText)
	}

	start, end := m.visibleRange(height)
	lines := make([]string, 0, height)
	for i := start; i < end; i++ {
		lines = append(lines, m.renderProductRow(m.view.Products[i], i == m.selectedRow))
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// renderProductRow renders one product: brand, name, category, price and stock.
func (m Model) renderProductRow(p catalog.Product, selected bool) string {
	bgColor := m.theme.Background
	if selected {
		bgColor = m.theme.SelectionBg
	}
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()
	if selected {
		styles.Text = styles.Text.Foreground(lipgloss.Color(m.theme.SelectionText))
		styles.MutedText = styles.MutedText.Foreground(lipgloss.Color(m.theme.SelectionText))
	}

	compact := m.width < LayoutCompactWidth
	nameWidth := m.width - markerWidth - brandWidth - priceWidth - stockWidth
	if !compact {
		nameWidth -= categoryWidth
	}
	nameWidth = maxInt(nameWidth, 10)

	marker := ternary(selected, "▸ ", "  ")
	cols := []string{
		bg.Render(marker, styles.AccentText),
		bg.Render(padRight(truncate(strings.ToUpper(p.Brand), brandWidth-1), brandWidth), styles.MutedText),
	}

	name := p.Name
	if m.width >= LayoutDescriptionWidth && p.Description != "" {
		name += " – " + p.Description
	}
	cols = append(cols, bg.Render(padRight(truncate(name, nameWidth-1), nameWidth), styles.Text.Bold(true)))

	if !compact {
		cols = append(cols, bg.Render(padRight(titleCase(p.Category), categoryWidth), styles.FaintText))
	}

	price := lipgloss.NewStyle().Width(priceWidth).Align(lipgloss.Right).Render(p.PriceLabel())
	cols = append(cols, bg.Render(price, styles.PriceText))
	if !p.InStock {
		cols = append(cols, bg.Render(padRight("  Sold out", stockWidth), styles.DangerText))
	}

	return bg.FillLine(strings.Join(cols, ""), m.width)
}

// visibleRange returns the [start, end) product indices that fit in height rows.
func (m Model) visibleRange(height int) (int, int) {
	n := len(m.view.Products)
	start := m.offset
	if start > n {
		start = 0
	}
	end := start + height
	if end > n {
		end = n
	}
	return start, end
}

// moveSelection handles cursor keys on the product list.
func (m *Model) moveSelection(msg tea.KeyMsg) {
	n := len(m.view.Products)
	if n == 0 {
		return
	}
	half := maxInt(m.contentHeight()/2, 1)

	switch {
	case key.Matches(msg, m.keys.Down):
		m.selectedRow++
	case key.Matches(msg, m.keys.Up):
		m.selectedRow--
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = n - 1
	case key.Matches(msg, m.keys.HalfPageDown):
		m.selectedRow += half
	case key.Matches(msg, m.keys.HalfPageUp):
		m.selectedRow -= half
	default:
		return
	}
	m.clampSelection()
}

// clampSelection keeps the selected row inside the filtered list and on screen.
func (m *Model) clampSelection() {
	n := len(m.view.Products)
	if m.selectedRow >= n {
		m.selectedRow = n - 1
	}
	if m.selectedRow < 0 {
		m.selectedRow = 0
	}

	height := m.contentHeight()
	if m.selectedRow < m.offset {
		m.offset = m.selectedRow
	}
	if m.selectedRow >= m.offset+height {
		m.offset = m.selectedRow - height + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// selectedProduct returns the product under the cursor.
func (m Model) selectedProduct() (catalog.Product, bool) {
	if m.selectedRow < 0 || m.selectedRow >= len(m.view.Products) {
		return catalog.Product{}, false
	}
	return m.view.Products[m.selectedRow], true
}
