// Package pacing converts verse text into timed display frames.
package pacing

import (
	"strings"
	"time"

	"github.com/selahreader/selah/internal/model"
)

// MinFrameDuration is the floor applied to chunk frames so very short verses
// remain perceivable.
const MinFrameDuration = 500 * time.Millisecond

// Frames builds the display sequence for one verse. The result is never
// empty: a blank verse yields a single empty frame at the floor duration so
// the timer loop cannot stall.
func Frames(text string, mode model.Mode, wordSpeed float64) []model.Frame {
	words := strings.Fields(text)
	perWord := time.Duration(float64(time.Second) * model.ClampWordSpeed(wordSpeed))

	if len(words) == 0 {
		return []model.Frame{{Text: "", Duration: MinFrameDuration}}
	}

	if mode == model.ModeWordByWord {
		frames := make([]model.Frame, len(words))
		for i, word := range words {
			frames[i] = model.Frame{Text: word, Duration: perWord}
		}
		return frames
	}

	duration := time.Duration(len(words)) * perWord
	if duration < MinFrameDuration {
		duration = MinFrameDuration
	}
	return []model.Frame{{Text: text, Duration: duration}}
}

// WordCount returns the number of whitespace-delimited tokens in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
