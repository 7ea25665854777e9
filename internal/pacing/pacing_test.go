package pacing

import (
	"testing"
	"time"

	"github.com/selahreader/selah/internal/model"
)

func TestFramesWordMode(t *testing.T) {
	frames := Frames("No princípio criou Deus", model.ModeWordByWord, 0.5)
	if len(frames) != 4 {
		t.Fatalf("expected 4 frames, got %d", len(frames))
	}
	want := []string{"No", "princípio", "criou", "Deus"}
	for i, frame := range frames {
		if frame.Text != want[i] {
			t.Fatalf("frame %d: expected %q, got %q", i, want[i], frame.Text)
		}
		if frame.Duration != 500*time.Millisecond {
			t.Fatalf("frame %d: expected 500ms, got %v", i, frame.Duration)
		}
	}
}

func TestFramesChunksMode(t *testing.T) {
	text := "E disse Deus: Haja luz"
	frames := Frames(text, model.ModeChunks, 1.0)
	if len(frames) != 1 {
		t.Fatalf("expected single frame, got %d", len(frames))
	}
	if frames[0].Text != text {
		t.Fatalf("expected full verse text, got %q", frames[0].Text)
	}
	if frames[0].Duration != 5*time.Second {
		t.Fatalf("expected 5s for 5 words at 1.0, got %v", frames[0].Duration)
	}
}

func TestFramesChunksFloor(t *testing.T) {
	frames := Frames("Amém", model.ModeChunks, 0.1)
	if len(frames) != 1 {
		t.Fatalf("expected single frame, got %d", len(frames))
	}
	if frames[0].Duration != MinFrameDuration {
		t.Fatalf("expected floor duration %v, got %v", MinFrameDuration, frames[0].Duration)
	}
}

func TestFramesEmptyText(t *testing.T) {
	for _, mode := range []model.Mode{model.ModeChunks, model.ModeWordByWord} {
		frames := Frames("   ", mode, 1.0)
		if len(frames) != 1 {
			t.Fatalf("mode %s: expected single frame, got %d", mode, len(frames))
		}
		if frames[0].Text != "" {
			t.Fatalf("mode %s: expected empty text, got %q", mode, frames[0].Text)
		}
		if frames[0].Duration != MinFrameDuration {
			t.Fatalf("mode %s: expected floor duration, got %v", mode, frames[0].Duration)
		}
	}
}

func TestFramesClampsSpeed(t *testing.T) {
	frames := Frames("um dois", model.ModeWordByWord, 100)
	perWord := time.Duration(float64(time.Second) * model.MaxWordSpeed)
	if frames[0].Duration != perWord {
		t.Fatalf("expected clamped duration %v, got %v", perWord, frames[0].Duration)
	}
}

func TestWordCount(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"  ", 0},
		{"um", 1},
		{"um  dois\ttrês", 3},
	}
	for _, tc := range cases {
		if got := WordCount(tc.text); got != tc.want {
			t.Fatalf("WordCount(%q): expected %d, got %d", tc.text, tc.want, got)
		}
	}
}
