package clip

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// Built-in clip names. The library serves these when no asset file exists.
const (
	BellName  = "service_bell"
	SprayName = "pepper_spray"
)

// Bell synthesizes a short counter-bell chime.
func Bell(sr beep.SampleRate) *Clip {
	return FromStreamer(BellName, sr, beep.Take(sr.N(1200*time.Millisecond), &chimeGenerator{sr: sr}))
}

// Spray synthesizes an aerosol hiss.
func Spray(sr beep.SampleRate) *Clip {
	return FromStreamer(SprayName, sr, beep.Take(sr.N(600*time.Millisecond), &hissGenerator{sr: sr, seed: 1}))
}

// chimeGenerator: inharmonic partials with exponential decay.
type chimeGenerator struct {
	sr  beep.SampleRate
	pos int
}

var chimePartials = [...]struct{ freq, amp, decay float64 }{
	{2093, 0.30, 3.0},
	{5230, 0.12, 6.0},
	{7950, 0.06, 9.0},
}

func (g *chimeGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		sample := 0.0
		for _, p := range chimePartials {
			sample += p.amp * math.Exp(-t*p.decay) * math.Sin(2*math.Pi*p.freq*t)
		}

		// 2ms attack to avoid a click
		sample *= math.Min(t/0.002, 1)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *chimeGenerator) Err() error {
	return nil
}

// hissGenerator: white noise, fast attack, plateau, linear release.
type hissGenerator struct {
	sr   beep.SampleRate
	pos  int
	seed int64
}

func (g *hissGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		envelope := math.Min(t/0.02, 1)
		if t > 0.4 {
			envelope = math.Max(0, 1-(t-0.4)/0.2)
		}

		g.seed = (g.seed*1103515245 + 12345) & 0x7fffffff
		noise := float64(g.seed)/float64(0x7fffffff)*2 - 1

		sample := 0.2 * envelope * noise

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *hissGenerator) Err() error {
	return nil
}
