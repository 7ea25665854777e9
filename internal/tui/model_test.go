package tui

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/selahreader/selah/internal/corpus"
	"github.com/selahreader/selah/internal/model"
	"github.com/selahreader/selah/internal/music"
	"github.com/selahreader/selah/internal/session"
	"github.com/selahreader/selah/internal/store"
)

func newTestModel(t *testing.T, pos model.Position) (*Model, *store.Store) {
	t.Helper()
	dir := t.TempDir()

	books := []corpus.Book{
		{Abbrev: "gn", Chapters: [][]string{
			{"No princípio criou Deus", "E a terra era sem forma"},
			{"Assim os céus foram acabados"},
		}},
		{Abbrev: "ex", Chapters: [][]string{
			{"Estes são os nomes"},
		}},
	}
	raw, err := json.Marshal(books)
	if err != nil {
		t.Fatalf("marshal corpus: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nvi.json"), raw, 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	c, err := corpus.Load(dir, "nvi")
	if err != nil {
		t.Fatalf("load corpus: %v", err)
	}

	st, err := store.Open(filepath.Join(dir, "selah.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	settings := model.DefaultSettings()
	settings.LastPosition = pos
	engine := session.New(c, settings.Reading, pos)
	m := NewModel(engine, c, st, &music.Player{}, settings)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, st
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewShowsReferenceAndChrome(t *testing.T) {
	m, _ := newTestModel(t, model.Position{})
	out := m.View()
	for _, want := range []string{"Gênesis 1:1", "[NVI]", "Modo: Chunks", "Pausado", "No princípio criou Deus"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
}

func TestFullscreenHidesChrome(t *testing.T) {
	m, _ := newTestModel(t, model.Position{})
	m.Update(keyRunes("f"))
	out := m.View()
	if strings.Contains(out, "Gênesis 1:1") {
		t.Fatalf("fullscreen view must hide the header:\n%s", out)
	}
	if !strings.Contains(out, "No princípio criou Deus") {
		t.Fatalf("fullscreen view must keep the verse:\n%s", out)
	}
}

func TestFrameTickAdvancesAndRecords(t *testing.T) {
	m, st := newTestModel(t, model.Position{})
	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	if !m.engine.Playing() {
		t.Fatalf("expected playing after space")
	}

	m.Update(frameTickMsg{generation: m.engine.Generation()})
	if m.engine.Position() != (model.Position{Verse: 1}) {
		t.Fatalf("expected advance to verse 2, got %+v", m.engine.Position())
	}
	stats, err := st.ReadingStats(context.Background())
	if err != nil {
		t.Fatalf("reading stats: %v", err)
	}
	if stats.TotalVersesRead != 1 {
		t.Fatalf("expected 1 verse recorded, got %d", stats.TotalVersesRead)
	}
}

func TestStaleFrameTickIgnored(t *testing.T) {
	m, _ := newTestModel(t, model.Position{})
	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	stale := m.engine.Generation()
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	after := m.engine.Position()

	m.Update(frameTickMsg{generation: stale})
	if m.engine.Position() != after {
		t.Fatalf("stale tick must not advance the session")
	}
}

func TestChapterCompletionPersisted(t *testing.T) {
	m, st := newTestModel(t, model.Position{Verse: 1})
	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m.Update(frameTickMsg{generation: m.engine.Generation()})

	read, err := st.IsChapterRead(context.Background(), "gn", 0)
	if err != nil {
		t.Fatalf("is chapter read: %v", err)
	}
	if !read {
		t.Fatalf("expected chapter gn 0 marked read after crossing the boundary")
	}
}

func TestReachedEndShowsStatus(t *testing.T) {
	m, _ := newTestModel(t, model.Position{Book: 1})
	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m.Update(frameTickMsg{generation: m.engine.Generation()})

	if m.engine.Playing() {
		t.Fatalf("expected pause at the end of the corpus")
	}
	if !strings.Contains(m.View(), "Fim da Bíblia! Parabéns!") {
		t.Fatalf("expected end message in view:\n%s", m.View())
	}
}

func TestGotoJumpsToReference(t *testing.T) {
	m, _ := newTestModel(t, model.Position{})
	m.Update(keyRunes("g"))
	if !m.gotoActive {
		t.Fatalf("expected goto overlay after g")
	}
	m.gotoInput.SetValue("ex 1")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.gotoActive {
		t.Fatalf("expected goto overlay dismissed")
	}
	if m.engine.Position() != (model.Position{Book: 1}) {
		t.Fatalf("expected jump to Êxodo 1:1, got %+v", m.engine.Position())
	}
	if m.reference != "Êxodo 1:1" {
		t.Fatalf("expected reference refresh, got %q", m.reference)
	}
}

func TestGotoUnknownReference(t *testing.T) {
	m, _ := newTestModel(t, model.Position{})
	before := m.engine.Position()
	m.Update(keyRunes("g"))
	m.gotoInput.SetValue("nada 99")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.engine.Position() != before {
		t.Fatalf("unknown reference must not move the position")
	}
	if m.statusMsg == "" {
		t.Fatalf("expected an error status message")
	}
}

func TestToggleFavorite(t *testing.T) {
	m, st := newTestModel(t, model.Position{})
	m.Update(keyRunes("v"))
	fav, err := st.IsFavorite(context.Background(), model.Position{})
	if err != nil || !fav {
		t.Fatalf("expected favorite persisted, got %v err=%v", fav, err)
	}
	if !strings.Contains(m.View(), "Favoritado") {
		t.Fatalf("expected favorite marker in view")
	}

	m.Update(keyRunes("v"))
	fav, err = st.IsFavorite(context.Background(), model.Position{})
	if err != nil || fav {
		t.Fatalf("expected favorite removed, got %v err=%v", fav, err)
	}
}

func TestModeToggleRebuildsFrames(t *testing.T) {
	m, _ := newTestModel(t, model.Position{})
	m.Update(keyRunes("m"))
	if m.engine.Config().Mode != model.ModeWordByWord {
		t.Fatalf("expected word mode, got %q", m.engine.Config().Mode)
	}
	if m.frame.Text != "No" {
		t.Fatalf("expected first word frame, got %q", m.frame.Text)
	}
}

func TestSpeedKeysAdjustAndClamp(t *testing.T) {
	m, _ := newTestModel(t, model.Position{})
	m.Update(keyRunes("+"))
	got := m.engine.Config().WordSpeed
	if got > 0.91 || got < 0.89 {
		t.Fatalf("expected ~0.9 after speed up, got %v", got)
	}
	for i := 0; i < 60; i++ {
		m.Update(keyRunes("-"))
	}
	if m.engine.Config().WordSpeed != model.MaxWordSpeed {
		t.Fatalf("expected clamp at max speed, got %v", m.engine.Config().WordSpeed)
	}
}

func TestExitPersistsCheckpoint(t *testing.T) {
	m, st := newTestModel(t, model.Position{})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	_, cmd := m.Update(keyRunes("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}

	settings, err := st.LoadSettings(context.Background())
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if settings.LastPosition != (model.Position{Verse: 1}) {
		t.Fatalf("expected persisted position, got %+v", settings.LastPosition)
	}
}
