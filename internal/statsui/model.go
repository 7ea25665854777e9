// Package statsui provides the Bubble Tea reading dashboard.
package statsui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/selahreader/selah/internal/corpus"
	"github.com/selahreader/selah/internal/model"
	"github.com/selahreader/selah/internal/stats"
	"github.com/selahreader/selah/internal/store"
)

const (
	tabOverview = iota
	tabBooks
	tabFavorites
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	favRefStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	favNoteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Italic(true)
)

// Model implements the Bubble Tea reading dashboard.
type Model struct {
	store  *store.Store
	corpus *corpus.Corpus

	report    stats.Report
	favorites []model.Favorite
	errMsg    string

	tabs        []string
	activeTab   int
	viewports   []viewport.Model
	booksTable  table.Model
	tableLayout tableLayout

	width  int
	height int
}

type tableLayout struct {
	width    int
	height   int
	rowCount int
}

// NewModel constructs a dashboard model.
func NewModel(st *store.Store, c *corpus.Corpus) *Model {
	m := &Model{
		store:  st,
		corpus: c,
		tabs:   []string{"Resumo", "Livros", "Favoritos"},
	}
	m.initViewports()
	m.booksTable = table.New(
		table.WithColumns(booksColumns()),
		table.WithHeight(1),
	)
	m.booksTable.SetStyles(booksTableStyles())
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		if m.activeTab == tabBooks {
			m.booksTable.Focus()
		} else {
			m.booksTable.Blur()
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "r":
			m.refreshReport()
			m.updateLayout()
			return m, nil
		case "g", "home":
			if m.activeTab == tabBooks {
				m.booksTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabBooks {
				m.booksTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabBooks {
				var cmd tea.Cmd
				m.booksTable, cmd = m.booksTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.setBooksTableSize(m.width, vpHeight)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabBooks {
		m.booksTable.Focus()
	} else {
		m.booksTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	summary := padLines(m.renderProgressSummary(), m.width)
	return tabs + "\n" + summary
}

func (m *Model) renderProgressSummary() string {
	totals := m.report.Totals
	summary := fmt.Sprintf("Progresso: %d/%d capítulos (%.1f%%)  Versículos: %d",
		totals.ChaptersRead, totals.TotalChapters, totals.ProgressPercent(), totals.TotalVersesRead)
	summary = truncateLine(summary, m.width)
	return headerStyle.Render(summary)
}

func (m *Model) renderHelp() string {
	return headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Refresh: r  Quit: q")
}

func (m *Model) renderFooter() string {
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderBody(height int) string {
	if m.activeTab == tabBooks {
		if len(m.report.Books) == 0 {
			return fitLines("Nenhum livro carregado.", m.width, height)
		}
		view := tableMutedStyle.Render(m.booksTable.View())
		return fitLines(view, m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.corpus)
	if err != nil {
		m.errMsg = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Falha ao carregar estatísticas.")
		}
		return
	}
	favorites, err := m.store.ListFavorites(context.Background())
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.report = report
	m.favorites = favorites
	width := m.width
	if width <= 0 {
		width = stats.TerminalWidth()
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.applyBooksTable(width, bodyHeight)
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	if m.errMsg != "" {
		for i := range m.viewports {
			m.viewports[i].SetContent("Falha ao carregar estatísticas.")
		}
		return
	}
	width := m.width
	if width <= 0 {
		width = stats.TerminalWidth()
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, width))
	m.viewports[tabFavorites].SetContent(renderFavorites(m.favorites, width))
}

func renderOverview(report stats.Report, width int) string {
	totals := report.Totals
	cards := []string{
		metricCard("Capítulos lidos", fmt.Sprintf("%d / %d", totals.ChaptersRead, totals.TotalChapters)),
		metricCard("Progresso", fmt.Sprintf("%.1f%%", totals.ProgressPercent())),
		metricCard("Versículos lidos", fmt.Sprintf("%d", totals.TotalVersesRead)),
		metricCard("Tempo de leitura", stats.FormatDuration(totals.TotalTimeReading)),
		metricCard("Favoritos", fmt.Sprintf("%d", report.FavoritesCount)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderFavorites(favorites []model.Favorite, width int) string {
	if len(favorites) == 0 {
		return "Nenhum favorito ainda. Pressione 'v' durante a leitura para favoritar."
	}
	blocks := make([]string, 0, len(favorites))
	for _, fav := range favorites {
		lines := []string{
			favRefStyle.Render(fav.Reference) + headerStyle.Render("  "+fav.CreatedAt.Format("2006-01-02")),
			truncateLine(fav.Text, width),
		}
		if fav.Note != "" {
			lines = append(lines, favNoteStyle.Render(truncateLine("Nota: "+fav.Note, width)))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

func booksColumns() []table.Column {
	return []table.Column{
		{Title: "Livro", Width: 22},
		{Title: "Lidos", Width: 6},
		{Title: "Total", Width: 6},
		{Title: "Progresso", Width: 10},
	}
}

func (m *Model) applyBooksTable(width, height int) {
	rows := make([]table.Row, 0, len(m.report.Books))
	for _, book := range m.report.Books {
		rows = append(rows, table.Row{
			book.Name,
			fmt.Sprintf("%d", book.ChaptersRead),
			fmt.Sprintf("%d", book.ChapterCount),
			fmt.Sprintf("%.1f%%", stats.CoveragePercent(book)),
		})
	}
	m.booksTable.SetRows(rows)
	m.tableLayout.rowCount = len(rows)
	m.setBooksTableSize(width, height)
}

func (m *Model) setBooksTableSize(width, height int) {
	viewportHeight := maxInt(1, height-1)
	if m.tableLayout.width == width && m.tableLayout.height == viewportHeight {
		return
	}
	m.tableLayout.width = width
	m.tableLayout.height = viewportHeight
	m.booksTable.SetWidth(width)
	m.booksTable.SetHeight(viewportHeight)
	viewportHeight = m.adjustBooksTableHeight(height)
	if m.tableLayout.height != viewportHeight {
		m.tableLayout.height = viewportHeight
		m.booksTable.SetHeight(viewportHeight)
	}
}

func (m *Model) adjustBooksTableHeight(bodyHeight int) int {
	target := maxInt(1, bodyHeight)
	height := m.booksTable.Height()
	viewHeight := lipgloss.Height(m.booksTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	m.booksTable.SetHeight(height)
	viewHeight = lipgloss.Height(m.booksTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	return height
}

func booksTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
