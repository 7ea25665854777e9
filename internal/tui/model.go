// Package tui provides the Bubble Tea reading interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/selahreader/selah/internal/corpus"
	"github.com/selahreader/selah/internal/model"
	"github.com/selahreader/selah/internal/music"
	"github.com/selahreader/selah/internal/session"
	"github.com/selahreader/selah/internal/store"
)

// frameTickMsg is an expired frame timer. The generation stamps the tick so
// a tick scheduled before a pause, navigation, or cursor rebuild is dropped
// instead of double-advancing the session.
type frameTickMsg struct {
	generation uint64
}

// Model implements the Bubble Tea reading UI.
type Model struct {
	engine *session.Engine
	corpus *corpus.Corpus
	store  *store.Store
	music  *music.Player

	translation  string
	musicFolder  string
	musicVolume  float64
	musicEnabled bool

	width  int
	height int

	frame      model.Frame
	reference  string
	isFavorite bool
	statusMsg  string

	gotoActive bool
	gotoInput  textinput.Model

	chapterBar progress.Model
}

// NewModel constructs the reading TUI around an engine and its collaborators.
func NewModel(engine *session.Engine, c *corpus.Corpus, st *store.Store, player *music.Player, settings model.Settings) *Model {
	gotoInput := textinput.New()
	gotoInput.Placeholder = "João 3:16"
	gotoInput.CharLimit = 40
	gotoInput.Width = 30

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())

	m := &Model{
		engine:       engine,
		corpus:       c,
		store:        st,
		music:        player,
		translation:  settings.Translation,
		musicFolder:  settings.MusicFolder,
		musicVolume:  settings.MusicVolume,
		musicEnabled: settings.MusicEnabled,
		gotoInput:    gotoInput,
		chapterBar:   bar,
	}
	m.frame = engine.CurrentFrame()
	m.refreshPosition()
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
		return m, nil
	case frameTickMsg:
		return m.handleFrameTick(msg)
	case tea.KeyMsg:
		if m.gotoActive {
			return m.handleGotoKey(msg)
		}
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

// scheduleFrame arms one tick for the frame currently displayed.
func (m *Model) scheduleFrame() tea.Cmd {
	generation := m.engine.Generation()
	duration := m.engine.CurrentFrame().Duration
	return tea.Tick(duration, func(time.Time) tea.Msg {
		return frameTickMsg{generation: generation}
	})
}

func (m *Model) handleFrameTick(msg frameTickMsg) (tea.Model, tea.Cmd) {
	if !m.engine.ValidTick(msg.generation) {
		return m, nil
	}
	m.engine.AddElapsed(m.engine.CurrentFrame().Duration)
	events := m.engine.AdvanceFrame()
	m.applyEvents(events)
	if m.engine.Playing() {
		return m, m.scheduleFrame()
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m.exit()
	case " ":
		return m.togglePlay()
	case "right", "d":
		m.applyEvents(m.engine.ManualNext())
		return m, m.rescheduleIfPlaying()
	case "left", "a":
		m.applyEvents(m.engine.ManualPrevious())
		return m, m.rescheduleIfPlaying()
	case "m":
		mode := m.engine.Config().Mode.Toggle()
		m.applyEvents(m.engine.SetConfig(session.ConfigChange{Mode: &mode}))
		m.checkpoint()
		return m, m.rescheduleIfPlaying()
	case "+", "=":
		// Faster reading means less time per word.
		return m.adjustSpeed(-0.1)
	case "-", "_":
		return m.adjustSpeed(0.1)
	case "]":
		return m.adjustFontSize(2)
	case "[":
		return m.adjustFontSize(-2)
	case "l":
		night := !m.engine.Config().NightMode
		m.applyEvents(m.engine.SetConfig(session.ConfigChange{NightMode: &night}))
		m.checkpoint()
		return m, nil
	case "f":
		full := !m.engine.Config().Fullscreen
		m.applyEvents(m.engine.SetConfig(session.ConfigChange{Fullscreen: &full}))
		m.checkpoint()
		return m, nil
	case "v":
		m.toggleFavorite()
		return m, nil
	case "g":
		m.gotoActive = true
		m.gotoInput.SetValue("")
		m.gotoInput.Focus()
		return m, textinput.Blink
	case "n":
		m.toggleMusic()
		return m, nil
	case ".", ">":
		m.music.Next()
		return m, nil
	case ",", "<":
		m.music.Previous()
		return m, nil
	case "0":
		return m.adjustVolume(0.1)
	case "9":
		return m.adjustVolume(-0.1)
	default:
		return m, nil
	}
}

func (m *Model) handleGotoKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.gotoActive = false
		return m, nil
	case "enter":
		m.gotoActive = false
		query := m.gotoInput.Value()
		pos, ok := m.corpus.SearchReference(query)
		if !ok {
			m.statusMsg = fmt.Sprintf("Referência não encontrada: %s", query)
			return m, nil
		}
		events, err := m.engine.SelectPosition(pos)
		if err != nil {
			m.statusMsg = fmt.Sprintf("Posição inválida: %s", query)
			return m, nil
		}
		m.statusMsg = ""
		m.applyEvents(events)
		return m, m.rescheduleIfPlaying()
	default:
		var cmd tea.Cmd
		m.gotoInput, cmd = m.gotoInput.Update(msg)
		return m, cmd
	}
}

func (m *Model) togglePlay() (tea.Model, tea.Cmd) {
	wasPlaying := m.engine.Playing()
	m.applyEvents(m.engine.TogglePlayPause())
	if wasPlaying {
		m.flushElapsed()
		return m, nil
	}
	if m.engine.Playing() {
		return m, m.scheduleFrame()
	}
	return m, nil
}

func (m *Model) adjustSpeed(delta float64) (tea.Model, tea.Cmd) {
	speed := m.engine.Config().WordSpeed + delta
	m.applyEvents(m.engine.SetConfig(session.ConfigChange{WordSpeed: &speed}))
	m.checkpoint()
	return m, m.rescheduleIfPlaying()
}

func (m *Model) adjustFontSize(delta int) (tea.Model, tea.Cmd) {
	size := m.engine.Config().FontSize + delta
	m.applyEvents(m.engine.SetConfig(session.ConfigChange{FontSize: &size}))
	m.checkpoint()
	return m, nil
}

func (m *Model) adjustVolume(delta float64) (tea.Model, tea.Cmd) {
	m.musicVolume += delta
	if m.musicVolume < 0 {
		m.musicVolume = 0
	}
	if m.musicVolume > 1 {
		m.musicVolume = 1
	}
	m.music.SetVolume(m.musicVolume)
	m.checkpoint()
	return m, nil
}

// rescheduleIfPlaying arms a fresh tick after any command that rebuilt the
// cursor. The bumped generation already invalidated the previous tick.
func (m *Model) rescheduleIfPlaying() tea.Cmd {
	if m.engine.Playing() {
		return m.scheduleFrame()
	}
	return nil
}

func (m *Model) toggleMusic() {
	if !m.musicEnabled || m.music.Count() == 0 {
		return
	}
	if m.music.Playing() {
		m.music.Pause()
	} else {
		m.music.Play()
	}
}

func (m *Model) toggleFavorite() {
	ctx := context.Background()
	pos := m.engine.Position()
	if m.isFavorite {
		if _, err := m.store.RemoveFavorite(ctx, pos); err != nil {
			logErrf("failed to remove favorite: %v\n", err)
			return
		}
		m.isFavorite = false
		return
	}
	text, err := m.corpus.Verse(pos)
	if err != nil {
		return
	}
	if _, err := m.store.AddFavorite(ctx, model.Favorite{
		Position:  pos,
		Text:      text,
		Reference: m.corpus.Reference(pos),
	}); err != nil {
		logErrf("failed to add favorite: %v\n", err)
		return
	}
	m.isFavorite = true
}

// applyEvents folds engine events into the view state and the store.
func (m *Model) applyEvents(events []session.Event) {
	ctx := context.Background()
	for _, event := range events {
		switch event := event.(type) {
		case session.FrameChanged:
			m.frame = event.Frame
		case session.PositionChanged:
			m.refreshPosition()
			m.checkpoint()
		case session.VerseCompleted:
			if err := m.store.IncrementVersesRead(ctx, 1); err != nil {
				logErrf("failed to record verse: %v\n", err)
			}
		case session.ChapterCompleted:
			if err := m.store.MarkChapterRead(ctx, event.BookAbbrev, event.Chapter); err != nil {
				logErrf("failed to record chapter: %v\n", err)
			}
		case session.PlayStateChanged:
			m.syncMusic(event.Playing)
		case session.ReachedEnd:
			m.statusMsg = "Fim da Bíblia! Parabéns!"
		}
	}
}

func (m *Model) refreshPosition() {
	pos := m.engine.Position()
	m.reference = m.corpus.Reference(pos)
	isFav, err := m.store.IsFavorite(context.Background(), pos)
	if err != nil {
		logErrf("failed to check favorite: %v\n", err)
		isFav = false
	}
	m.isFavorite = isFav
	if m.statusMsg != "" {
		m.statusMsg = ""
	}
}

func (m *Model) syncMusic(playing bool) {
	if !m.musicEnabled || m.music.Count() == 0 {
		return
	}
	if playing {
		m.music.Play()
	} else {
		m.music.Pause()
	}
}

// checkpoint persists the whole settings record. A write failure is logged
// and retried on the next checkpoint; it never interrupts the session.
func (m *Model) checkpoint() {
	settings := model.Settings{
		Translation:  m.translation,
		Reading:      m.engine.Config(),
		LastPosition: m.engine.Position(),
		MusicFolder:  m.musicFolder,
		MusicVolume:  m.musicVolume,
		MusicEnabled: m.musicEnabled,
	}
	if err := m.store.SaveSettings(context.Background(), settings); err != nil {
		logErrf("failed to save settings: %v\n", err)
	}
}

func (m *Model) flushElapsed() {
	elapsed := m.engine.TakeElapsed()
	if elapsed <= 0 {
		return
	}
	if err := m.store.AddReadingTime(context.Background(), elapsed); err != nil {
		logErrf("failed to record reading time: %v\n", err)
	}
}

func (m *Model) exit() (tea.Model, tea.Cmd) {
	m.applyEvents(m.engine.Stop())
	m.flushElapsed()
	m.checkpoint()
	m.music.Stop()
	return m, tea.Quit
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
