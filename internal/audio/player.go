package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// ErrPlaybackUnsupported indicates no sound player is available.
var ErrPlaybackUnsupported = errors.New("audio playback unsupported")

const fileArg = "{file}"

// Player plays cues without blocking the caller.
type Player interface {
	Play(cue Cue) error
	Close() error
}

// NewPlayer returns a player backed by the first sound command found on
// this system.
func NewPlayer(volume float64) (Player, error) {
	for _, candidate := range playerCandidates() {
		path, err := exec.LookPath(candidate[0])
		if err != nil {
			continue
		}
		args := append([]string{path}, candidate[1:]...)
		return NewCommandPlayer(args, volume)
	}
	return nil, ErrPlaybackUnsupported
}

// CommandPlayer renders cues to WAV files once and plays them through an
// external command. The argument equal to "{file}" is replaced by the path.
type CommandPlayer struct {
	mu      sync.Mutex
	command []string
	volume  float64
	dir     string
	files   map[Cue]string
	running map[*exec.Cmd]struct{}
	closed  bool
}

// NewCommandPlayer creates a player around the given command line.
func NewCommandPlayer(command []string, volume float64) (*CommandPlayer, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("create player: %w", ErrPlaybackUnsupported)
	}
	dir, err := os.MkdirTemp("", "intervaltimer-cues-")
	if err != nil {
		return nil, fmt.Errorf("create cue dir: %w", err)
	}
	return &CommandPlayer{
		command: append([]string(nil), command...),
		volume:  volume,
		dir:     dir,
		files:   make(map[Cue]string),
		running: make(map[*exec.Cmd]struct{}),
	}, nil
}

// Play starts playback of the cue and returns immediately.
func (player *CommandPlayer) Play(cue Cue) error {
	player.mu.Lock()
	defer player.mu.Unlock()
	if player.closed {
		return fmt.Errorf("play %s: player closed", cue)
	}

	path, err := player.fileLocked(cue)
	if err != nil {
		return err
	}

	args := make([]string, 0, len(player.command))
	for _, arg := range player.command[1:] {
		args = append(args, strings.ReplaceAll(arg, fileArg, path))
	}
	command := exec.Command(player.command[0], args...)
	if err := command.Start(); err != nil {
		return fmt.Errorf("play %s: %w", cue, err)
	}
	player.running[command] = struct{}{}
	go player.wait(command)
	return nil
}

// Close stops running playback and removes the rendered files.
func (player *CommandPlayer) Close() error {
	player.mu.Lock()
	if player.closed {
		player.mu.Unlock()
		return nil
	}
	player.closed = true
	for command := range player.running {
		if command.Process != nil {
			_ = command.Process.Kill()
		}
	}
	player.mu.Unlock()

	if err := os.RemoveAll(player.dir); err != nil {
		return fmt.Errorf("remove cue dir: %w", err)
	}
	return nil
}

func (player *CommandPlayer) fileLocked(cue Cue) (string, error) {
	if path, ok := player.files[cue]; ok {
		return path, nil
	}
	tones := cue.Tones()
	if len(tones) == 0 {
		return "", fmt.Errorf("render %s: no tones", cue)
	}
	path := filepath.Join(player.dir, cue.String()+".wav")
	if err := os.WriteFile(path, Render(tones, player.volume), 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", cue, err)
	}
	player.files[cue] = path
	return path, nil
}

func (player *CommandPlayer) wait(command *exec.Cmd) {
	_ = command.Wait()
	player.mu.Lock()
	delete(player.running, command)
	player.mu.Unlock()
}

// BellPlayer rings the terminal bell once per note.
type BellPlayer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewBellPlayer writes bell characters to out.
func NewBellPlayer(out io.Writer) *BellPlayer {
	return &BellPlayer{out: out}
}

func (player *BellPlayer) Play(cue Cue) error {
	count := len(cue.Tones())
	if count == 0 {
		return nil
	}
	player.mu.Lock()
	defer player.mu.Unlock()
	if _, err := io.WriteString(player.out, strings.Repeat("\a", count)); err != nil {
		return fmt.Errorf("ring bell: %w", err)
	}
	return nil
}

func (player *BellPlayer) Close() error {
	return nil
}

// Mute discards every cue.
type Mute struct{}

func (Mute) Play(Cue) error { return nil }
func (Mute) Close() error   { return nil }
