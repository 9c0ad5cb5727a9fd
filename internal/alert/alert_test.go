package alert

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os/exec"
	"testing"
	"time"
)

func TestSamplesDecay(t *testing.T) {
	samples := Samples()

	want := int(float64(SampleRate) * Duration.Seconds())
	if len(samples) != want {
		t.Fatalf("expected %d samples, got %d", want, len(samples))
	}
	if samples[0] != 0 {
		t.Errorf("expected the sine to start at 0, got %d", samples[0])
	}

	window := SampleRate / 100
	head := maxAbs(samples[:window])
	tail := maxAbs(samples[len(samples)-window:])

	if head > int(math.Ceil(startGain*32767)) {
		t.Errorf("peak %d exceeds the start gain", head)
	}
	if tail >= head/10 {
		t.Errorf("expected the tone to decay, head peak %d, tail peak %d", head, tail)
	}
}

func TestToneIsWAV(t *testing.T) {
	tone, err := Tone()
	if err != nil {
		t.Fatalf("Tone failed: %v", err)
	}
	if len(tone) < 44+len(Samples())*2 {
		t.Fatalf("tone too short: %d bytes", len(tone))
	}
	if !bytes.Equal(tone[0:4], []byte("RIFF")) || !bytes.Equal(tone[8:12], []byte("WAVE")) {
		t.Errorf("missing RIFF/WAVE header: %q", tone[:12])
	}
}

type recordingPlayer struct {
	played chan []byte
	err    error
}

func (p *recordingPlayer) Play(ctx context.Context, wav []byte) error {
	p.played <- wav
	return p.err
}

func TestAlertPlayIsFireAndForget(t *testing.T) {
	player := &recordingPlayer{played: make(chan []byte, 1), err: errors.New("no audio device")}
	a, err := New(player, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	a.Play()

	select {
	case wav := <-player.played:
		if !bytes.Equal(wav, a.WAV()) {
			t.Errorf("player received a different tone")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("player was not called")
	}
}

func TestCommandPlayer(t *testing.T) {
	p := &CommandPlayer{Name: "aplay", Args: []string{"-q", "-"}}

	var gotName string
	var gotArgs []string
	p.cmdFactory = func(ctx context.Context, name string, arg ...string) *exec.Cmd {
		gotName = name
		gotArgs = arg
		return exec.CommandContext(ctx, "true")
	}

	if err := p.Play(context.Background(), []byte("RIFF")); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if gotName != "aplay" || len(gotArgs) != 2 || gotArgs[1] != "-" {
		t.Errorf("unexpected command %s %v", gotName, gotArgs)
	}

	p.cmdFactory = func(ctx context.Context, name string, arg ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "false")
	}
	if err := p.Play(context.Background(), nil); err == nil {
		t.Error("expected error from failing command")
	}
}

func TestNewCommandPlayerRejectsEmpty(t *testing.T) {
	if _, err := NewCommandPlayer(nil); err == nil {
		t.Error("expected error for empty command")
	}
	if _, err := NewCommandPlayer([]string{"definitely-not-a-real-player-binary"}); err == nil {
		t.Error("expected error for missing binary")
	}
}

func TestBellAndMultiPlayer(t *testing.T) {
	var buf bytes.Buffer
	failing := &recordingPlayer{played: make(chan []byte, 1), err: errors.New("boom")}
	m := MultiPlayer{BellPlayer{W: &buf}, failing, NopPlayer{}}

	err := m.Play(context.Background(), nil)
	if err == nil {
		t.Error("expected joined error")
	}
	if buf.String() != "\a" {
		t.Errorf("expected bell, got %q", buf.String())
	}
}

func maxAbs(samples []int) int {
	m := 0
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		if s > m {
			m = s
		}
	}
	return m
}
