package anim

import (
	"testing"

	"github.com/voxpuppet/voxpuppet/internal/audio"
	"github.com/voxpuppet/voxpuppet/internal/wav"
)

type stubSpeech struct{ speaking bool }

func (s *stubSpeech) Speaking() bool { return s.speaking }

func loudContainer(n int) *wav.Container {
	samples := make([]float32, n)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = 0.5
		} else {
			samples[i] = -0.5
		}
	}
	return &wav.Container{Channels: 1, SampleRate: 22050, BitsPerSample: 16, Samples: samples}
}

func TestDriverJawFollowsLoudness(t *testing.T) {
	player := audio.NewMockPlayer()
	speech := &stubSpeech{speaking: true}
	d := NewDriver(DefaultConfig(), player, speech)

	if err := player.Play(loudContainer(audio.WindowSize * 16)); err != nil {
		t.Fatalf("Play: %v", err)
	}

	var pose Pose
	for i := 0; i < 120; i++ {
		player.Advance(audio.WindowSize / 2)
		pose = d.Update(1.0 / 60.0)
	}

	if pose.JawOpen <= 0.1 {
		t.Errorf("jaw stayed shut during loud playback: %v", pose.JawOpen)
	}
	if pose.JawOpen > HardOpenLimit {
		t.Errorf("jaw %v exceeds hard limit", pose.JawOpen)
	}
}

func TestDriverJawClosesWhenNotSpeaking(t *testing.T) {
	player := audio.NewMockPlayer()
	speech := &stubSpeech{speaking: true}
	d := NewDriver(DefaultConfig(), player, speech)

	if err := player.Play(loudContainer(audio.WindowSize * 16)); err != nil {
		t.Fatalf("Play: %v", err)
	}
	for i := 0; i < 60; i++ {
		player.Advance(audio.WindowSize / 2)
		d.Update(1.0 / 60.0)
	}

	speech.speaking = false
	var pose Pose
	for i := 0; i < 300; i++ {
		pose = d.Update(1.0 / 60.0)
	}

	if pose.JawOpen > 0.01 {
		t.Errorf("jaw still open after speech ended: %v", pose.JawOpen)
	}
}

func TestDriverSetConfigTakesEffect(t *testing.T) {
	player := audio.NewMockPlayer()
	speech := &stubSpeech{speaking: true}
	d := NewDriver(DefaultConfig(), player, speech)

	if err := player.Play(loudContainer(audio.WindowSize * 32)); err != nil {
		t.Fatalf("Play: %v", err)
	}
	for i := 0; i < 120; i++ {
		player.Advance(audio.WindowSize / 2)
		d.Update(1.0 / 60.0)
	}
	if d.Pose().JawOpen <= 0.2 {
		t.Fatalf("jaw never opened before retune: %v", d.Pose().JawOpen)
	}

	// Clamp the jaw nearly shut and keep the loud audio coming. The new
	// ceiling has to win.
	retuned := DefaultConfig()
	retuned.Jaw.MaxOpen = 0.1
	d.SetConfig(retuned)

	var pose Pose
	for i := 0; i < 300; i++ {
		player.Advance(audio.WindowSize / 2)
		pose = d.Update(1.0 / 60.0)
	}

	if pose.JawOpen > 0.11 {
		t.Errorf("jaw %v ignores retuned MaxOpen", pose.JawOpen)
	}
	if pose.JawOpen <= 0 {
		t.Errorf("jaw shut entirely during loud playback: %v", pose.JawOpen)
	}
}

func TestDriverIdleSwayRunsWithoutSpeech(t *testing.T) {
	player := audio.NewMockPlayer()
	d := NewDriver(DefaultConfig(), player, &stubSpeech{speaking: false})

	var prev Pose
	moved := false
	for i := 0; i < 120; i++ {
		pose := d.Update(1.0 / 60.0)
		if i > 0 && pose.BodyOffset != prev.BodyOffset {
			moved = true
		}
		prev = pose
	}

	if !moved {
		t.Error("idle sway halted while not speaking")
	}
}
