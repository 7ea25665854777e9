// Package music plays background audio through an external player process.
package music

import (
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// supportedFormats are the playlist file extensions.
var supportedFormats = []string{".mp3", ".wav", ".ogg", ".flac"}

// playerBinaries are tried in order when resolving a backend.
var playerBinaries = []string{"mpv", "ffplay"}

// Player shuffles through a folder of audio files, one external player
// process per track. Every command degrades to a silent no-op when no
// backend binary or no playlist is available: background music must never
// interrupt a reading session.
type Player struct {
	mu       sync.Mutex
	binary   string
	playlist []string
	index    int
	playing  bool
	volume   float64
	cmd      *exec.Cmd
	gen      int
}

// NewPlayer resolves a player backend, trying preferred first when set.
// A missing binary leaves the player permanently unavailable but still
// safe to call.
func NewPlayer(volume float64, preferred string) *Player {
	p := &Player{volume: clampVolume(volume)}
	candidates := playerBinaries
	if preferred != "" {
		candidates = append([]string{preferred}, playerBinaries...)
	}
	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			p.binary = path
			break
		}
	}
	return p
}

// Available reports whether a player backend was found.
func (p *Player) Available() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.binary != ""
}

// SetFolder loads and shuffles the playlist from a folder. Returns true if
// any playable file was found.
func (p *Player) SetFolder(folder string) bool {
	if folder == "" {
		return false
	}
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return false
	}
	entries, err := os.ReadDir(folder)
	if err != nil {
		return false
	}

	var playlist []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		for _, ext := range supportedFormats {
			if strings.HasSuffix(name, ext) {
				playlist = append(playlist, filepath.Join(folder, entry.Name()))
				break
			}
		}
	}
	rand.Shuffle(len(playlist), func(i, j int) {
		playlist[i], playlist[j] = playlist[j], playlist[i]
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.playlist = playlist
	p.index = 0
	return len(playlist) > 0
}

// Count returns the number of tracks in the playlist.
func (p *Player) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.playlist)
}

// Playing reports whether a track is currently playing.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// CurrentTrackName returns the file name of the current track.
func (p *Player) CurrentTrackName() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.playlist) == 0 {
		return ""
	}
	return filepath.Base(p.playlist[p.index])
}

// Play starts (or restarts) playback of the current track.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.binary == "" || len(p.playlist) == 0 {
		return
	}
	if p.playing && p.cmd != nil {
		return
	}
	p.playing = true
	p.startLocked()
}

// Pause stops the current track. Resuming restarts it from the beginning;
// a one-shot player process has no live pause channel.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// Stop halts playback entirely.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// Next advances to the next track, wrapping around the playlist.
func (p *Player) Next() {
	p.skip(1)
}

// Previous moves to the previous track, wrapping around the playlist.
func (p *Player) Previous() {
	p.skip(-1)
}

func (p *Player) skip(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.playlist) == 0 {
		return
	}
	p.index = (p.index + delta + len(p.playlist)) % len(p.playlist)
	if p.playing {
		p.killLocked()
		p.startLocked()
	}
}

// SetVolume updates the volume. It applies when the next track starts.
func (p *Player) SetVolume(volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = clampVolume(volume)
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// startLocked spawns the player process for the current track and watches
// for its natural exit to advance the playlist.
func (p *Player) startLocked() {
	if p.binary == "" || len(p.playlist) == 0 {
		p.playing = false
		return
	}
	track := p.playlist[p.index]
	percent := int(p.volume * 100)

	var cmd *exec.Cmd
	if strings.Contains(filepath.Base(p.binary), "ffplay") {
		cmd = exec.Command(p.binary, "-nodisp", "-autoexit", "-loglevel", "quiet",
			"-volume", fmt.Sprintf("%d", percent), track)
	} else {
		cmd = exec.Command(p.binary, "--no-video", "--really-quiet",
			fmt.Sprintf("--volume=%d", percent), track)
	}
	if err := cmd.Start(); err != nil {
		p.playing = false
		p.cmd = nil
		return
	}
	p.cmd = cmd
	p.gen++
	gen := p.gen

	go func() {
		err := cmd.Wait()
		// Playback errors are swallowed: background music is best-effort.
		_ = err

		p.mu.Lock()
		defer p.mu.Unlock()
		if gen != p.gen || !p.playing {
			return // superseded by a skip, pause, or stop
		}
		p.index = (p.index + 1) % len(p.playlist)
		p.startLocked()
	}()
}

// killLocked terminates the current process without clearing playing.
func (p *Player) killLocked() {
	if p.cmd != nil && p.cmd.Process != nil {
		if err := p.cmd.Process.Kill(); err != nil {
			// Best-effort kill; the watcher ignores superseded exits.
			_ = err
		}
	}
	p.cmd = nil
	p.gen++
}

// stopLocked terminates the current process and marks playback stopped.
func (p *Player) stopLocked() {
	p.killLocked()
	p.playing = false
}
