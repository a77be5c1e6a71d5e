//go:build !ci

// Package sound plays short local effects for game events: a card
// being dealt, a reveal verdict, game start and game over. Effects are
// optional, a missing assets directory or a failed speaker init just
// leaves the manager muted.
package sound

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

const (
	effectsDir = "assets/sounds"
	sampleRate = beep.SampleRate(44100)
)

type decodeFunc func(*os.File) (beep.StreamSeekCloser, beep.Format, error)

var decoders = map[string]decodeFunc{
	".mp3": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) },
	".wav": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) },
}

// SoundManager holds pre-decoded effect buffers keyed by file base name.
type SoundManager struct {
	mu      sync.RWMutex
	effects map[string]*beep.Buffer
	ready   bool
}

func NewSoundManager() *SoundManager {
	return &SoundManager{effects: make(map[string]*beep.Buffer)}
}

// Init opens the speaker and decodes every effect found under
// assets/sounds. Init runs on a background goroutine while the UI is
// already up, so readiness is guarded by the mutex.
func (sm *SoundManager) Init() error {
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	entries, err := os.ReadDir(effectsDir)
	if err != nil {
		if os.IsNotExist(err) {
			sm.setReady()
			return nil
		}
		return fmt.Errorf("read effects dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		decode, ok := decoders[ext]
		if !ok {
			continue
		}
		buf, err := loadEffect(filepath.Join(effectsDir, entry.Name()), decode)
		if err != nil {
			continue
		}
		key := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		sm.mu.Lock()
		sm.effects[key] = buf
		sm.mu.Unlock()
	}

	sm.setReady()
	return nil
}

func loadEffect(path string, decode decodeFunc) (*beep.Buffer, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	streamer, format, err := decode(f)
	if err != nil {
		return nil, err
	}
	defer func() { _ = streamer.Close() }()

	var src beep.Streamer = streamer
	if format.SampleRate != sampleRate {
		src = beep.Resample(4, format.SampleRate, sampleRate, streamer)
	}

	buf := beep.NewBuffer(beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 4})
	buf.Append(src)
	return buf, nil
}

// Play fires an effect by name. Unknown names and a muted manager are
// silently ignored.
func (sm *SoundManager) Play(name string) {
	sm.mu.RLock()
	buf, ok := sm.effects[name]
	ready := sm.ready
	sm.mu.RUnlock()
	if !ready || !ok {
		return
	}
	speaker.Play(buf.Streamer(0, buf.Len()))
}

// Close mutes the manager. Already queued effects finish playing.
func (sm *SoundManager) Close() {
	sm.mu.Lock()
	sm.ready = false
	sm.mu.Unlock()
}

func (sm *SoundManager) setReady() {
	sm.mu.Lock()
	sm.ready = true
	sm.mu.Unlock()
}
