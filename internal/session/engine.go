// Package session drives paced navigation through the corpus.
package session

import (
	"time"

	"github.com/selahreader/selah/internal/corpus"
	"github.com/selahreader/selah/internal/model"
	"github.com/selahreader/selah/internal/pacing"
)

// PlayState is the engine's play/pause state.
type PlayState int

const (
	// Stopped means the session has ended; all commands are no-ops.
	Stopped PlayState = iota
	// Paused means positioned but not advancing.
	Paused
	// Playing means the frame timer is running.
	Playing
)

// Event is a state change observable by the rendering layer.
type Event interface{ sessionEvent() }

// FrameChanged reports a new frame to display.
type FrameChanged struct{ Frame model.Frame }

// PositionChanged reports a move to a different verse.
type PositionChanged struct{ Position model.Position }

// VerseCompleted reports a verse that was fully displayed.
type VerseCompleted struct{ Position model.Position }

// ChapterCompleted reports a chapter read end to end.
type ChapterCompleted struct {
	BookAbbrev string
	Chapter    int
}

// PlayStateChanged reports a play/pause transition.
type PlayStateChanged struct{ Playing bool }

// ReachedEnd reports that the final verse of the corpus finished.
type ReachedEnd struct{}

func (FrameChanged) sessionEvent()     {}
func (PositionChanged) sessionEvent()  {}
func (VerseCompleted) sessionEvent()   {}
func (ChapterCompleted) sessionEvent() {}
func (PlayStateChanged) sessionEvent() {}
func (ReachedEnd) sessionEvent()       {}

// ConfigChange is a partial update to the reading configuration. Nil fields
// are left unchanged.
type ConfigChange struct {
	Mode       *model.Mode
	WordSpeed  *float64
	FontSize   *int
	NightMode  *bool
	Fullscreen *bool
}

// Engine owns the reading position, the per-verse frame cursor, and the
// play state. It performs no I/O and holds no timers: the caller schedules
// one tick per frame and feeds expired ticks back through AdvanceFrame.
type Engine struct {
	corpus *corpus.Corpus
	config model.ReadingConfig

	position   model.Position
	frames     []model.Frame
	frameIndex int

	state      PlayState
	generation uint64
	elapsed    time.Duration
}

// New builds an engine positioned at pos in the Paused state. A position that
// no longer resolves in the corpus is clamped to the nearest existing verse.
func New(c *corpus.Corpus, cfg model.ReadingConfig, pos model.Position) *Engine {
	cfg.WordSpeed = model.ClampWordSpeed(cfg.WordSpeed)
	cfg.FontSize = model.ClampFontSize(cfg.FontSize)
	e := &Engine{
		corpus:   c,
		config:   cfg,
		position: c.Clamp(pos),
		state:    Paused,
	}
	e.rebuildCursor()
	return e
}

// State returns the current play state.
func (e *Engine) State() PlayState { return e.state }

// Playing reports whether the frame timer should be running.
func (e *Engine) Playing() bool { return e.state == Playing }

// Position returns the current verse position.
func (e *Engine) Position() model.Position { return e.position }

// Config returns a snapshot of the reading configuration.
func (e *Engine) Config() model.ReadingConfig { return e.config }

// CurrentFrame returns the frame to display.
func (e *Engine) CurrentFrame() model.Frame { return e.frames[e.frameIndex] }

// FrameIndex returns the index within the current verse's cursor.
func (e *Engine) FrameIndex() int { return e.frameIndex }

// FrameCount returns the number of frames in the current cursor.
func (e *Engine) FrameCount() int { return len(e.frames) }

// Generation identifies the currently valid scheduled tick. A tick carrying
// an older generation must be discarded by the caller: any transition away
// from Playing, and any cursor rebuild, invalidates pending ticks.
func (e *Engine) Generation() uint64 { return e.generation }

// ValidTick reports whether a tick scheduled at generation gen may advance
// the session.
func (e *Engine) ValidTick(gen uint64) bool {
	return e.state == Playing && gen == e.generation
}

func (e *Engine) bump() { e.generation++ }

func (e *Engine) rebuildCursor() {
	text, err := e.corpus.Verse(e.position)
	if err != nil {
		text = ""
	}
	e.frames = pacing.Frames(text, e.config.Mode, e.config.WordSpeed)
	e.frameIndex = 0
	e.bump()
}

// TogglePlayPause flips between Paused and Playing. From Stopped it is a
// no-op.
func (e *Engine) TogglePlayPause() []Event {
	switch e.state {
	case Paused:
		e.state = Playing
		e.bump()
		return []Event{PlayStateChanged{Playing: true}}
	case Playing:
		e.state = Paused
		e.bump()
		return []Event{PlayStateChanged{Playing: false}}
	default:
		return nil
	}
}

// Stop ends the session.
func (e *Engine) Stop() []Event {
	if e.state == Stopped {
		return nil
	}
	wasPlaying := e.state == Playing
	e.state = Stopped
	e.bump()
	if wasPlaying {
		return []Event{PlayStateChanged{Playing: false}}
	}
	return nil
}

// AdvanceFrame consumes an expired frame tick: next frame within the verse,
// or the verse-advance sequence once the cursor is exhausted. Calling it
// outside Playing is a no-op.
func (e *Engine) AdvanceFrame() []Event {
	if e.state != Playing {
		return nil
	}
	if e.frameIndex+1 < len(e.frames) {
		e.frameIndex++
		e.bump()
		return []Event{FrameChanged{Frame: e.CurrentFrame()}}
	}
	return e.advanceVerse()
}

// advanceVerse runs after the last frame of a verse finished displaying. The
// finished verse always counts as read; chapter completion is recorded when
// the advance leaves the chapter, including off the end of the corpus.
func (e *Engine) advanceVerse() []Event {
	events := []Event{VerseCompleted{Position: e.position}}

	next, atEnd := e.corpus.Next(e.position)
	if atEnd {
		events = append(events, e.completeChapter(e.position))
		e.state = Paused
		e.bump()
		return append(events, ReachedEnd{}, PlayStateChanged{Playing: false})
	}

	if next.Book != e.position.Book || next.Chapter != e.position.Chapter {
		events = append(events, e.completeChapter(e.position))
	}
	e.position = next
	e.rebuildCursor()
	return append(events,
		PositionChanged{Position: e.position},
		FrameChanged{Frame: e.CurrentFrame()},
	)
}

func (e *Engine) completeChapter(pos model.Position) Event {
	return ChapterCompleted{
		BookAbbrev: e.corpus.BookAbbrev(pos.Book),
		Chapter:    pos.Chapter,
	}
}

// ManualNext skips forward one verse without counting the current verse as
// read. Crossing a chapter boundary still marks the chapter. At the final
// verse it is a no-op.
func (e *Engine) ManualNext() []Event {
	if e.state == Stopped {
		return nil
	}
	next, atEnd := e.corpus.Next(e.position)
	if atEnd {
		return nil
	}
	var events []Event
	if next.Book != e.position.Book || next.Chapter != e.position.Chapter {
		events = append(events, e.completeChapter(e.position))
	}
	e.position = next
	e.rebuildCursor()
	return append(events,
		PositionChanged{Position: e.position},
		FrameChanged{Frame: e.CurrentFrame()},
	)
}

// ManualPrevious steps back one verse. At the first verse of the corpus it
// is a no-op.
func (e *Engine) ManualPrevious() []Event {
	if e.state == Stopped {
		return nil
	}
	prev, atStart := e.corpus.Previous(e.position)
	if atStart {
		return nil
	}
	e.position = prev
	e.rebuildCursor()
	return []Event{
		PositionChanged{Position: e.position},
		FrameChanged{Frame: e.CurrentFrame()},
	}
}

// SelectPosition jumps to an arbitrary position. An unresolvable position is
// rejected without mutating state.
func (e *Engine) SelectPosition(pos model.Position) ([]Event, error) {
	if !e.corpus.Contains(pos) {
		return nil, corpus.ErrInvalidPosition
	}
	e.position = pos
	e.rebuildCursor()
	return []Event{
		PositionChanged{Position: e.position},
		FrameChanged{Frame: e.CurrentFrame()},
	}, nil
}

// SetConfig merges a partial configuration change. A mode or speed change
// rebuilds the cursor at frame zero without moving the position.
func (e *Engine) SetConfig(change ConfigChange) []Event {
	rebuild := false
	if change.Mode != nil && *change.Mode != e.config.Mode {
		e.config.Mode = *change.Mode
		rebuild = true
	}
	if change.WordSpeed != nil {
		speed := model.ClampWordSpeed(*change.WordSpeed)
		if speed != e.config.WordSpeed {
			e.config.WordSpeed = speed
			rebuild = true
		}
	}
	if change.FontSize != nil {
		e.config.FontSize = model.ClampFontSize(*change.FontSize)
	}
	if change.NightMode != nil {
		e.config.NightMode = *change.NightMode
	}
	if change.Fullscreen != nil {
		e.config.Fullscreen = *change.Fullscreen
	}
	if !rebuild {
		return nil
	}
	e.rebuildCursor()
	return []Event{FrameChanged{Frame: e.CurrentFrame()}}
}

// AddElapsed accumulates reading time. Only time spent Playing counts.
func (e *Engine) AddElapsed(d time.Duration) {
	if e.state == Playing && d > 0 {
		e.elapsed += d
	}
}

// TakeElapsed returns the accumulated reading time since the last call and
// resets the accumulator. Callers flush it to the progress store on pause
// and on exit.
func (e *Engine) TakeElapsed() time.Duration {
	d := e.elapsed
	e.elapsed = 0
	return d
}
