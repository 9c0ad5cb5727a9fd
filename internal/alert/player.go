package alert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"time"
)

// playTimeout bounds a single playback so a hung audio command cannot pile
// up goroutines.
const playTimeout = 5 * time.Second

// Player outputs an encoded WAV tone.
type Player interface {
	Play(ctx context.Context, wav []byte) error
}

// CommandPlayer pipes the tone into an external program such as
// "aplay -q -" or "paplay".
type CommandPlayer struct {
	Name       string
	Args       []string
	cmdFactory func(ctx context.Context, name string, arg ...string) *exec.Cmd
}

func NewCommandPlayer(command []string) (*CommandPlayer, error) {
	if len(command) == 0 || command[0] == "" {
		return nil, errors.New("empty alert command")
	}
	if _, err := exec.LookPath(command[0]); err != nil {
		return nil, fmt.Errorf("alert command not available: %w", err)
	}
	return &CommandPlayer{
		Name:       command[0],
		Args:       command[1:],
		cmdFactory: exec.CommandContext,
	}, nil
}

func (p *CommandPlayer) Play(ctx context.Context, wav []byte) error {
	cmd := p.cmdFactory(ctx, p.Name, p.Args...)
	cmd.Stdin = bytes.NewReader(wav)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s failed: %w: %s", p.Name, err, bytes.TrimSpace(out))
	}
	return nil
}

// BellPlayer rings the terminal bell instead of playing audio.
type BellPlayer struct {
	W io.Writer
}

func (p BellPlayer) Play(ctx context.Context, wav []byte) error {
	_, err := io.WriteString(p.W, "\a")
	return err
}

type NopPlayer struct{}

func (NopPlayer) Play(context.Context, []byte) error { return nil }

// MultiPlayer plays through every player, returning the joined errors.
type MultiPlayer []Player

func (m MultiPlayer) Play(ctx context.Context, wav []byte) error {
	var errs []error
	for _, p := range m {
		if err := p.Play(ctx, wav); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Alert plays the tone without blocking the caller. Playback errors are
// logged at debug level and otherwise dropped.
type Alert struct {
	player Player
	tone   []byte
	logger *slog.Logger
}

func New(player Player, logger *slog.Logger) (*Alert, error) {
	tone, err := Tone()
	if err != nil {
		return nil, err
	}
	if player == nil {
		player = NopPlayer{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Alert{player: player, tone: tone, logger: logger}, nil
}

// WAV returns the encoded tone.
func (a *Alert) WAV() []byte {
	return a.tone
}

func (a *Alert) Play() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), playTimeout)
		defer cancel()
		if err := a.player.Play(ctx, a.tone); err != nil {
			a.logger.Debug("alert playback failed", slog.Any("err", err))
		}
	}()
}
