// Package audio plays synthesized announcement clips on the local
// machine by piping them to an external player process.
package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
)

// ErrNoPlayer is returned when no supported player binary is installed.
var ErrNoPlayer = errors.New("audio: no player binary found (tried mpg123, ffplay, play)")

// candidate players that accept MP3 on stdin, in preference order.
var players = [][]string{
	{"mpg123", "-q", "-"},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", "-i", "pipe:0"},
	{"play", "-q", "-t", "mp3", "-"},
}

// Player pipes MP3 clips to an external player. Starting a new clip
// cancels the one still playing.
type Player struct {
	bin  string
	args []string

	mu      sync.Mutex
	cmd     *exec.Cmd
	playing bool

	logger *slog.Logger
}

// NewPlayer locates a supported player binary on PATH.
func NewPlayer(logger *slog.Logger) (*Player, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, candidate := range players {
		if path, err := exec.LookPath(candidate[0]); err == nil {
			return &Player{
				bin:    path,
				args:   candidate[1:],
				logger: logger.With("component", "audio.player"),
			}, nil
		}
	}
	return nil, ErrNoPlayer
}

// Play starts playback of an MP3 clip, cancelling any clip still
// playing. Playback runs in the background; completion and failures
// are logged, not returned.
func (p *Player) Play(mp3 []byte) error {
	if len(mp3) == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	cmd := exec.Command(p.bin, p.args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("audio: stdin pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("audio: start player: %w", err)
	}

	p.cmd = cmd
	p.playing = true

	go func() {
		if _, err := stdin.Write(mp3); err != nil {
			p.logger.Warn("write to player failed", "error", err)
		}
		stdin.Close()

		err := cmd.Wait()

		p.mu.Lock()
		if p.cmd == cmd {
			p.cmd = nil
			p.playing = false
		}
		p.mu.Unlock()

		if err != nil {
			p.logger.Warn("playback failed", "error", err)
		}
	}()

	return nil
}

// Stop cancels the current clip, if any.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// stopLocked kills the current player process (must hold mu).
func (p *Player) stopLocked() {
	if p.cmd != nil && p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	p.cmd = nil
	p.playing = false
}

// IsPlaying returns whether a clip is currently playing.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}
