package ring

import (
	"math"
	"os"
	"sync"
)

// Player is the ring-tone side effect. Start may be called once per ring;
// Stop must be safe to call even if Start failed or was never called.
type Player interface {
	Start() error
	Stop()
}

// AssetPlayer plays a pre-recorded ring-tone asset. Start fails when the
// asset is missing or unreadable, which lets FallbackPlayer switch to a
// synthesized tone.
type AssetPlayer struct {
	Path string

	mu      sync.Mutex
	playing bool
}

func (p *AssetPlayer) Start() error {
	f, err := os.Open(p.Path)
	if err != nil {
		return err
	}
	_ = f.Close()

	p.mu.Lock()
	p.playing = true
	p.mu.Unlock()
	return nil
}

func (p *AssetPlayer) Stop() {
	p.mu.Lock()
	p.playing = false
	p.mu.Unlock()
}

func (p *AssetPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// SynthPlayer generates a sine ring tone. It never fails to start, so it is
// the universal fallback when audio assets are unavailable.
type SynthPlayer struct {
	// FreqHz defaults to 440, SampleRate to 8000.
	FreqHz     float64
	SampleRate int

	mu      sync.Mutex
	playing bool
	samples []float64
}

func (p *SynthPlayer) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	freq := p.FreqHz
	if freq <= 0 {
		freq = 440
	}
	rate := p.SampleRate
	if rate <= 0 {
		rate = 8000
	}

	// One second of tone, looped by the audio sink.
	if p.samples == nil {
		p.samples = make([]float64, rate)
		for i := range p.samples {
			p.samples[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(rate))
		}
	}
	p.playing = true
	return nil
}

func (p *SynthPlayer) Stop() {
	p.mu.Lock()
	p.playing = false
	p.mu.Unlock()
}

func (p *SynthPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Samples exposes the generated loop for the embedding audio sink.
func (p *SynthPlayer) Samples() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]float64, len(p.samples))
	copy(out, p.samples)
	return out
}

// FallbackPlayer tries Primary and falls back to Fallback when the primary
// cannot start. Stop stops whichever player actually started.
type FallbackPlayer struct {
	Primary  Player
	Fallback Player

	mu     sync.Mutex
	active Player
}

func (p *FallbackPlayer) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Primary != nil {
		if err := p.Primary.Start(); err == nil {
			p.active = p.Primary
			return nil
		}
	}
	if p.Fallback == nil {
		p.active = nil
		return nil
	}
	if err := p.Fallback.Start(); err != nil {
		return err
	}
	p.active = p.Fallback
	return nil
}

func (p *FallbackPlayer) Stop() {
	p.mu.Lock()
	active := p.active
	p.active = nil
	p.mu.Unlock()
	if active != nil {
		active.Stop()
	}
}
