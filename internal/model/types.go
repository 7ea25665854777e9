// Package model defines shared data structures.
package model

import "time"

// Mode selects how a verse is presented.
type Mode string

const (
	// ModeChunks shows the whole verse as a single frame.
	ModeChunks Mode = "chunks"
	// ModeWordByWord shows one word per frame.
	ModeWordByWord Mode = "word"
)

// ParseMode maps a stored mode string to a Mode, defaulting to chunks.
func ParseMode(s string) Mode {
	if Mode(s) == ModeWordByWord {
		return ModeWordByWord
	}
	return ModeChunks
}

// Toggle returns the other reading mode.
func (m Mode) Toggle() Mode {
	if m == ModeChunks {
		return ModeWordByWord
	}
	return ModeChunks
}

// Bounds for reading preferences.
const (
	MinWordSpeed = 0.1
	MaxWordSpeed = 5.0
	MinFontSize  = 16
	MaxFontSize  = 72
)

// Position addresses a verse in the corpus. All indexes are zero-based.
type Position struct {
	Book    int `json:"book_index"`
	Chapter int `json:"chapter_index"`
	Verse   int `json:"verse_index"`
}

// ReadingConfig holds presentation preferences.
type ReadingConfig struct {
	Mode       Mode
	WordSpeed  float64 // seconds per word
	FontSize   int
	NightMode  bool
	Fullscreen bool
}

// ClampWordSpeed bounds a speed value to the supported range.
func ClampWordSpeed(v float64) float64 {
	if v < MinWordSpeed {
		return MinWordSpeed
	}
	if v > MaxWordSpeed {
		return MaxWordSpeed
	}
	return v
}

// ClampFontSize bounds a font size to the supported range.
func ClampFontSize(v int) int {
	if v < MinFontSize {
		return MinFontSize
	}
	if v > MaxFontSize {
		return MaxFontSize
	}
	return v
}

// Settings is the full persisted settings record.
type Settings struct {
	Translation  string
	Reading      ReadingConfig
	LastPosition Position
	MusicFolder  string
	MusicVolume  float64 // 0.0 to 1.0
	MusicEnabled bool
}

// DefaultSettings returns the first-run settings record.
func DefaultSettings() Settings {
	return Settings{
		Translation: "nvi",
		Reading: ReadingConfig{
			Mode:      ModeChunks,
			WordSpeed: 1.0,
			FontSize:  32,
		},
		MusicVolume:  0.5,
		MusicEnabled: true,
	}
}

// Frame is one unit of timed display content.
type Frame struct {
	Text     string
	Duration time.Duration
}

// ReadingStats aggregates cumulative reading progress.
type ReadingStats struct {
	ChaptersRead     int
	TotalChapters    int
	TotalVersesRead  int
	TotalTimeReading time.Duration
}

// ProgressPercent returns chapter coverage as a percentage.
func (s ReadingStats) ProgressPercent() float64 {
	if s.TotalChapters == 0 {
		return 0
	}
	return float64(s.ChaptersRead) / float64(s.TotalChapters) * 100
}

// Favorite is a bookmarked verse.
type Favorite struct {
	ID        int64
	Position  Position
	Text      string
	Reference string
	Note      string
	CreatedAt time.Time
}

// BookCoverage summarizes read chapters for one book.
type BookCoverage struct {
	Abbrev       string
	Name         string
	ChaptersRead int
	ChapterCount int
}
