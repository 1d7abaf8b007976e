package beeper

import (
	"bytes"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// Beeper loops a sample on an ebiten audio context.
type Beeper struct {
	player *audio.Player
}

// New prepares sample for playback on ctx. The context must run at
// SampleRate.
func New(ctx *audio.Context, sample *Sample) (*Beeper, error) {
	pcm := sample.Resample(ctx.SampleRate()).PCM16Stereo()
	loop := audio.NewInfiniteLoop(bytes.NewReader(pcm), int64(len(pcm)))
	player, err := ctx.NewPlayer(loop)
	if err != nil {
		return nil, err
	}
	return &Beeper{player: player}, nil
}

// Update starts or stops the tone. It is called once per frame with whether
// the sound timer is non-zero.
func (b *Beeper) Update(on bool) {
	switch {
	case on && !b.player.IsPlaying():
		b.player.Play()
	case !on && b.player.IsPlaying():
		b.player.Pause()
	}
}

func (b *Beeper) Close() error {
	return b.player.Close()
}
