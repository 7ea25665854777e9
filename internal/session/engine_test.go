package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/selahreader/selah/internal/corpus"
	"github.com/selahreader/selah/internal/model"
)

func testCorpus(t *testing.T) *corpus.Corpus {
	t.Helper()
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
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "nvi.json"), raw, 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	c, err := corpus.Load(dir, "nvi")
	if err != nil {
		t.Fatalf("load corpus: %v", err)
	}
	return c
}

func testConfig(mode model.Mode) model.ReadingConfig {
	return model.ReadingConfig{Mode: mode, WordSpeed: 1.0, FontSize: 32}
}

func playing(t *testing.T, e *Engine) {
	t.Helper()
	events := e.TogglePlayPause()
	if len(events) != 1 {
		t.Fatalf("expected one event from toggle, got %d", len(events))
	}
	if !e.Playing() {
		t.Fatalf("expected engine to be playing")
	}
}

func eventTypes(events []Event) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		switch ev.(type) {
		case FrameChanged:
			out[i] = "frame"
		case PositionChanged:
			out[i] = "position"
		case VerseCompleted:
			out[i] = "verse"
		case ChapterCompleted:
			out[i] = "chapter"
		case PlayStateChanged:
			out[i] = "playstate"
		case ReachedEnd:
			out[i] = "end"
		}
	}
	return out
}

func sameTypes(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestNewStartsPaused(t *testing.T) {
	e := New(testCorpus(t), testConfig(model.ModeChunks), model.Position{})
	if e.State() != Paused {
		t.Fatalf("expected Paused, got %v", e.State())
	}
	if e.CurrentFrame().Text != "No princípio criou Deus" {
		t.Fatalf("unexpected initial frame: %q", e.CurrentFrame().Text)
	}
}

func TestNewClampsStalePosition(t *testing.T) {
	e := New(testCorpus(t), testConfig(model.ModeChunks), model.Position{Book: 9, Chapter: 3})
	if e.Position() != (model.Position{}) {
		t.Fatalf("expected clamp to start, got %+v", e.Position())
	}
}

func TestTogglePlayPause(t *testing.T) {
	e := New(testCorpus(t), testConfig(model.ModeChunks), model.Position{})
	events := e.TogglePlayPause()
	if !sameTypes(eventTypes(events), []string{"playstate"}) {
		t.Fatalf("unexpected events: %v", eventTypes(events))
	}
	if ps := events[0].(PlayStateChanged); !ps.Playing {
		t.Fatalf("expected playing=true")
	}
	events = e.TogglePlayPause()
	if ps := events[0].(PlayStateChanged); ps.Playing {
		t.Fatalf("expected playing=false")
	}
	e.Stop()
	if events := e.TogglePlayPause(); events != nil {
		t.Fatalf("expected no-op after stop, got %v", eventTypes(events))
	}
}

func TestAdvanceFrameWithinVerse(t *testing.T) {
	e := New(testCorpus(t), testConfig(model.ModeWordByWord), model.Position{})
	playing(t, e)
	if e.FrameCount() != 4 {
		t.Fatalf("expected 4 word frames, got %d", e.FrameCount())
	}
	events := e.AdvanceFrame()
	if !sameTypes(eventTypes(events), []string{"frame"}) {
		t.Fatalf("unexpected events: %v", eventTypes(events))
	}
	if e.CurrentFrame().Text != "princípio" {
		t.Fatalf("expected second word, got %q", e.CurrentFrame().Text)
	}
	if e.Position() != (model.Position{}) {
		t.Fatalf("position must not move within a verse")
	}
}

func TestAdvanceFramePausedIsNoop(t *testing.T) {
	e := New(testCorpus(t), testConfig(model.ModeChunks), model.Position{})
	if events := e.AdvanceFrame(); events != nil {
		t.Fatalf("expected no-op while paused, got %v", eventTypes(events))
	}
}

func TestAdvanceVerseCountsRead(t *testing.T) {
	e := New(testCorpus(t), testConfig(model.ModeChunks), model.Position{})
	playing(t, e)
	events := e.AdvanceFrame()
	if !sameTypes(eventTypes(events), []string{"verse", "position", "frame"}) {
		t.Fatalf("unexpected events: %v", eventTypes(events))
	}
	if vc := events[0].(VerseCompleted); vc.Position != (model.Position{}) {
		t.Fatalf("expected completed verse at start, got %+v", vc.Position)
	}
	if e.Position() != (model.Position{Verse: 1}) {
		t.Fatalf("expected move to verse 2, got %+v", e.Position())
	}
}

func TestAdvanceVerseMarksChapter(t *testing.T) {
	e := New(testCorpus(t), testConfig(model.ModeChunks), model.Position{Verse: 1})
	playing(t, e)
	events := e.AdvanceFrame()
	if !sameTypes(eventTypes(events), []string{"verse", "chapter", "position", "frame"}) {
		t.Fatalf("unexpected events: %v", eventTypes(events))
	}
	cc := events[1].(ChapterCompleted)
	if cc.BookAbbrev != "gn" || cc.Chapter != 0 {
		t.Fatalf("expected gn chapter 0, got %+v", cc)
	}
	if e.Position() != (model.Position{Chapter: 1}) {
		t.Fatalf("expected move to next chapter, got %+v", e.Position())
	}
}

func TestAdvanceVerseAtCorpusEnd(t *testing.T) {
	e := New(testCorpus(t), testConfig(model.ModeChunks), model.Position{Book: 1})
	playing(t, e)
	events := e.AdvanceFrame()
	if !sameTypes(eventTypes(events), []string{"verse", "chapter", "end", "playstate"}) {
		t.Fatalf("unexpected events: %v", eventTypes(events))
	}
	if e.State() != Paused {
		t.Fatalf("expected pause at corpus end, got %v", e.State())
	}
	if e.Position() != (model.Position{Book: 1}) {
		t.Fatalf("position must stay at the final verse")
	}
}

func TestManualNextSkipsWithoutCounting(t *testing.T) {
	e := New(testCorpus(t), testConfig(model.ModeChunks), model.Position{})
	events := e.ManualNext()
	if !sameTypes(eventTypes(events), []string{"position", "frame"}) {
		t.Fatalf("unexpected events: %v", eventTypes(events))
	}
	if e.Position() != (model.Position{Verse: 1}) {
		t.Fatalf("expected skip to verse 2, got %+v", e.Position())
	}
}

func TestManualNextMarksChapterOnBoundary(t *testing.T) {
	e := New(testCorpus(t), testConfig(model.ModeChunks), model.Position{Verse: 1})
	events := e.ManualNext()
	if !sameTypes(eventTypes(events), []string{"chapter", "position", "frame"}) {
		t.Fatalf("unexpected events: %v", eventTypes(events))
	}
}

func TestManualNextAtEndIsNoop(t *testing.T) {
	e := New(testCorpus(t), testConfig(model.ModeChunks), model.Position{Book: 1})
	if events := e.ManualNext(); events != nil {
		t.Fatalf("expected no-op at corpus end, got %v", eventTypes(events))
	}
	if e.Position() != (model.Position{Book: 1}) {
		t.Fatalf("position must not move")
	}
}

func TestManualPreviousAtStartIsNoop(t *testing.T) {
	e := New(testCorpus(t), testConfig(model.ModeChunks), model.Position{})
	if events := e.ManualPrevious(); events != nil {
		t.Fatalf("expected no-op at corpus start, got %v", eventTypes(events))
	}
}

func TestManualPreviousCrossesChapter(t *testing.T) {
	e := New(testCorpus(t), testConfig(model.ModeChunks), model.Position{Chapter: 1})
	events := e.ManualPrevious()
	if !sameTypes(eventTypes(events), []string{"position", "frame"}) {
		t.Fatalf("unexpected events: %v", eventTypes(events))
	}
	if e.Position() != (model.Position{Verse: 1}) {
		t.Fatalf("expected last verse of previous chapter, got %+v", e.Position())
	}
}

func TestSelectPositionInvalid(t *testing.T) {
	e := New(testCorpus(t), testConfig(model.ModeChunks), model.Position{})
	before := e.Position()
	gen := e.Generation()
	_, err := e.SelectPosition(model.Position{Book: 7})
	if !errors.Is(err, corpus.ErrInvalidPosition) {
		t.Fatalf("expected ErrInvalidPosition, got %v", err)
	}
	if e.Position() != before || e.Generation() != gen {
		t.Fatalf("state must be untouched after rejected jump")
	}
}

func TestSelectPositionValid(t *testing.T) {
	e := New(testCorpus(t), testConfig(model.ModeChunks), model.Position{})
	events, err := e.SelectPosition(model.Position{Book: 1})
	if err != nil {
		t.Fatalf("select position: %v", err)
	}
	if !sameTypes(eventTypes(events), []string{"position", "frame"}) {
		t.Fatalf("unexpected events: %v", eventTypes(events))
	}
	if e.CurrentFrame().Text != "Estes são os nomes" {
		t.Fatalf("unexpected frame after jump: %q", e.CurrentFrame().Text)
	}
}

func TestSetConfigModeRebuildsCursor(t *testing.T) {
	e := New(testCorpus(t), testConfig(model.ModeChunks), model.Position{})
	mode := model.ModeWordByWord
	events := e.SetConfig(ConfigChange{Mode: &mode})
	if !sameTypes(eventTypes(events), []string{"frame"}) {
		t.Fatalf("unexpected events: %v", eventTypes(events))
	}
	if e.FrameCount() != 4 {
		t.Fatalf("expected word frames after mode change, got %d", e.FrameCount())
	}
	if e.CurrentFrame().Text != "No" {
		t.Fatalf("expected cursor reset to first word, got %q", e.CurrentFrame().Text)
	}
}

func TestSetConfigCosmeticNoRebuild(t *testing.T) {
	e := New(testCorpus(t), testConfig(model.ModeChunks), model.Position{})
	night := true
	size := 40
	if events := e.SetConfig(ConfigChange{NightMode: &night, FontSize: &size}); events != nil {
		t.Fatalf("expected no events for cosmetic change, got %v", eventTypes(events))
	}
	if !e.Config().NightMode || e.Config().FontSize != 40 {
		t.Fatalf("cosmetic change not applied: %+v", e.Config())
	}
}

func TestSetConfigSpeedResetsCursorMidVerse(t *testing.T) {
	e := New(testCorpus(t), testConfig(model.ModeWordByWord), model.Position{})
	playing(t, e)
	e.AdvanceFrame()
	e.AdvanceFrame()
	if e.CurrentFrame().Text != "criou" {
		t.Fatalf("expected to be mid-verse, got %q", e.CurrentFrame().Text)
	}
	speed := 0.5
	events := e.SetConfig(ConfigChange{WordSpeed: &speed})
	if !sameTypes(eventTypes(events), []string{"frame"}) {
		t.Fatalf("unexpected events: %v", eventTypes(events))
	}
	if e.CurrentFrame().Text != "No" {
		t.Fatalf("expected cursor reset to first word, got %q", e.CurrentFrame().Text)
	}
	if e.Position() != (model.Position{}) {
		t.Fatalf("speed change must not move the position, got %+v", e.Position())
	}
}

func TestSetConfigClampsSpeed(t *testing.T) {
	e := New(testCorpus(t), testConfig(model.ModeChunks), model.Position{})
	speed := 99.0
	e.SetConfig(ConfigChange{WordSpeed: &speed})
	if e.Config().WordSpeed != model.MaxWordSpeed {
		t.Fatalf("expected clamped speed, got %v", e.Config().WordSpeed)
	}
}

func TestStaleTicksAreRejected(t *testing.T) {
	e := New(testCorpus(t), testConfig(model.ModeChunks), model.Position{})
	playing(t, e)
	gen := e.Generation()
	if !e.ValidTick(gen) {
		t.Fatalf("current generation must be valid while playing")
	}
	e.ManualNext()
	if e.ValidTick(gen) {
		t.Fatalf("tick from before a manual jump must be stale")
	}
	gen = e.Generation()
	e.TogglePlayPause()
	if e.ValidTick(gen) {
		t.Fatalf("tick must be stale after pausing")
	}
}

func TestElapsedOnlyCountsWhilePlaying(t *testing.T) {
	e := New(testCorpus(t), testConfig(model.ModeChunks), model.Position{})
	e.AddElapsed(time.Second)
	if got := e.TakeElapsed(); got != 0 {
		t.Fatalf("paused time must not count, got %v", got)
	}
	playing(t, e)
	e.AddElapsed(2 * time.Second)
	e.AddElapsed(time.Second)
	if got := e.TakeElapsed(); got != 3*time.Second {
		t.Fatalf("expected 3s accumulated, got %v", got)
	}
	if got := e.TakeElapsed(); got != 0 {
		t.Fatalf("expected accumulator reset, got %v", got)
	}
}
