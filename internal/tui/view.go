package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/selahreader/selah/internal/model"
)

// View implements tea.Model.
func (m *Model) View() string {
	colors := paletteFor(m.engine.Config().NightMode)
	if m.width == 0 || m.height == 0 {
		return colors.verse.Render(m.frame.Text)
	}

	content := m.renderVerse(colors)
	if m.engine.Config().Fullscreen {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}

	header := m.renderHeader(colors)
	footer := m.renderFooter(colors)
	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	return header + "\n" + body + "\n" + footer
}

// renderVerse wraps the current frame into a column whose width scales with
// the font size preference.
func (m *Model) renderVerse(colors palette) string {
	contentWidth := m.engine.Config().FontSize * 2
	if limit := m.width - 4; contentWidth > limit {
		contentWidth = limit
	}
	if contentWidth < 10 {
		contentWidth = 10
	}
	text := m.frame.Text
	if m.statusMsg != "" {
		text = m.statusMsg
	}
	return colors.verse.Width(contentWidth).Align(lipgloss.Center).Render(text)
}

func (m *Model) renderHeader(colors palette) string {
	mode := "Chunks"
	if m.engine.Config().Mode == model.ModeWordByWord {
		mode = "Palavra"
	}
	segments := []string{
		colors.reference.Render(m.reference),
		colors.muted.Render(fmt.Sprintf("[%s]", strings.ToUpper(m.translation))),
		colors.muted.Render("Modo: " + mode),
		colors.muted.Render(fmt.Sprintf("Velocidade: %.1fs", m.engine.Config().WordSpeed)),
	}
	if m.isFavorite {
		segments = append(segments, colors.accent.Render("Favoritado"))
	}
	line := strings.Join(segments, "  ")
	return lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, line)
}

func (m *Model) renderFooter(colors palette) string {
	pos := m.engine.Position()
	verseCount := m.corpus.ChapterLength(pos.Book, pos.Chapter)
	percent := 0.0
	if verseCount > 0 {
		percent = float64(pos.Verse+1) / float64(verseCount)
	}

	barWidth := m.width / 3
	if barWidth < 10 {
		barWidth = 10
	}
	m.chapterBar.Width = barWidth
	progressLine := fmt.Sprintf("%s %s",
		m.chapterBar.ViewAs(percent),
		colors.muted.Render(fmt.Sprintf("Capítulo: %d%%", int(percent*100))))

	state := "Pausado"
	if m.engine.Playing() {
		state = "Lendo"
	}
	segments := []string{colors.status.Render(state)}
	if m.music.Count() > 0 {
		track := m.music.CurrentTrackName()
		if len(track) > 40 {
			track = track[:37] + "..."
		}
		note := "♪ " + track
		if !m.music.Playing() {
			note += " (parada)"
		}
		segments = append(segments, colors.muted.Render(note))
	}
	segments = append(segments, colors.muted.Render(
		"espaço play/pause · ←/→ versículos · m modo · +/- velocidade · g ir para · v favorito · q sair"))
	helpLine := strings.Join(segments, "  ")

	lines := []string{
		lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, progressLine),
		lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, helpLine),
	}
	if m.gotoActive {
		prompt := colors.accent.Render("Ir para: ") + m.gotoInput.View()
		lines = append(lines, lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, prompt))
	}
	return strings.Join(lines, "\n")
}
