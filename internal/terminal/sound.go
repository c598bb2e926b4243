package terminal

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	cueSampleRate = beep.SampleRate(44100)
	cueFrequency  = 880
	cueDuration   = 50 * time.Millisecond
)

// BeepCue plays a short sine tone through the default audio device.
type BeepCue struct{}

// NewBeepCue opens the speaker. Callers fall back to Silent on error.
func NewBeepCue() (*BeepCue, error) {
	if err := speaker.Init(cueSampleRate, cueSampleRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	return &BeepCue{}, nil
}

func (c *BeepCue) Play() {
	sine, err := generators.SineTone(cueSampleRate, cueFrequency)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(cueSampleRate.N(cueDuration), sine))
}
