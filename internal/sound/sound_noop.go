//go:build ci

// Silent build for environments without an audio device.
package sound

type SoundManager struct{}

func NewSoundManager() *SoundManager { return &SoundManager{} }

func (sm *SoundManager) Init() error { return nil }

func (sm *SoundManager) Play(name string) {}

func (sm *SoundManager) Close() {}
