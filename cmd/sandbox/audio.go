package main

import (
	"math"
	"reflect"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/plus3/sigecs/ecs"
)

const (
	sampleRate    = beep.SampleRate(48000)
	chimeDuration = 250 * time.Millisecond
)

// Output plays streamers. The speaker package satisfies it through
// speakerOutput.
type Output interface {
	Play(s ...beep.Streamer)
}

type speakerOutput struct{}

func (speakerOutput) Play(s ...beep.Streamer) { speaker.Play(s...) }

func openSpeaker() (Output, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return nil, err
	}
	return speakerOutput{}, nil
}

// AudioSystem plays a chime for every SoundCue and then removes the cue. With
// a nil Output cues are consumed silently.
type AudioSystem struct {
	ecs.SystemBase
	Output Output
	Played int
}

func (s *AudioSystem) Init(w *ecs.World) error {
	sig, err := ecs.SignatureOf(w, reflect.TypeFor[SoundCue]())
	if err != nil {
		return err
	}
	return ecs.SetSystemSignature[AudioSystem](w, sig)
}

func (s *AudioSystem) Execute(frame *ecs.UpdateFrame) {
	for e := range s.Entities().All() {
		cue := ecs.MustGetComponent[SoundCue](frame.World, e)
		if s.Output != nil {
			s.Output.Play(newChime(sampleRate, cue.Freq, chimeDuration))
			s.Played++
		}
		ecs.QueueRemove[SoundCue](frame.Commands, e)
	}
}

// chime is a decaying sine with a quieter octave overtone.
type chime struct {
	sr   beep.SampleRate
	freq float64
	pos  int
}

func newChime(sr beep.SampleRate, freq float64, d time.Duration) beep.Streamer {
	return beep.Take(sr.N(d), &chime{sr: sr, freq: freq})
}

func (c *chime) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(c.pos) / float64(c.sr)
		envelope := math.Exp(-t * 12)
		v := envelope * (0.7*math.Sin(2*math.Pi*c.freq*t) + 0.3*math.Sin(4*math.Pi*c.freq*t)) * 0.5

		samples[i][0] = v
		samples[i][1] = v
		c.pos++
	}
	return len(samples), true
}

func (c *chime) Err() error { return nil }
