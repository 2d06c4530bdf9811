package clip

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/patrickmn/go-cache"
)

// Library resolves clip names to decoded clips.
//
// Lookup order: cache, then <dir>/<name>.wav, then <dir>/<name>.mp3.
// Decoded files expire after the configured TTL; registered clips never do.
type Library struct {
	dir        string
	sampleRate beep.SampleRate
	clips      *cache.Cache

	loadMu sync.Mutex // one decode at a time
}

// NewLibrary creates a library reading from dir and decoding to sr.
func NewLibrary(dir string, sr beep.SampleRate, ttl time.Duration) *Library {
	return &Library{
		dir:        dir,
		sampleRate: sr,
		clips:      cache.New(ttl, 2*ttl),
	}
}

// SampleRate returns the rate every clip is decoded to.
func (l *Library) SampleRate() beep.SampleRate {
	return l.sampleRate
}

// Register adds a clip that never expires.
func (l *Library) Register(c *Clip) {
	l.clips.Set(c.Name(), c, cache.NoExpiration)
}

// RegisterBuiltins registers the synthesized bell and spray clips.
// Files with the same names in the clips directory are shadowed.
func (l *Library) RegisterBuiltins() {
	l.Register(Bell(l.sampleRate))
	l.Register(Spray(l.sampleRate))
}

// Len returns the number of cached clips.
func (l *Library) Len() int {
	return l.clips.ItemCount()
}

// Get returns the named clip, decoding it from disk on a cache miss.
func (l *Library) Get(name string) (*Clip, error) {
	if v, ok := l.clips.Get(name); ok {
		return v.(*Clip), nil
	}

	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("%w: invalid clip name %q", ErrNotFound, name)
	}

	l.loadMu.Lock()
	defer l.loadMu.Unlock()

	// Another caller may have decoded it while we waited.
	if v, ok := l.clips.Get(name); ok {
		return v.(*Clip), nil
	}

	c, err := l.load(name)
	if err != nil {
		return nil, err
	}

	l.clips.Set(name, c, cache.DefaultExpiration)
	slog.Debug("clip loaded",
		"name", name,
		"duration", c.Duration(),
		"samples", c.Len())
	return c, nil
}

func (l *Library) load(name string) (*Clip, error) {
	for _, ext := range []string{".wav", ".mp3"} {
		path := filepath.Join(l.dir, name+ext)

		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("opening clip %s: %w", path, err)
		}

		var c *Clip
		if ext == ".wav" {
			c, err = DecodeWAV(name, f, l.sampleRate)
		} else {
			c, err = DecodeMP3(name, f, l.sampleRate)
		}
		f.Close()
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	return nil, fmt.Errorf("%w: %q in %s", ErrNotFound, name, l.dir)
}
