package player

import (
	"math"
	"sync/atomic"
)

// SoftMixer is a software volume control shared with the audio pipeline.
type SoftMixer struct {
	volume atomic.Uint32
}

// NewSoftMixer creates a mixer at the given volume.
func NewSoftMixer(volume uint16) *SoftMixer {
	m := &SoftMixer{}
	m.SetVolume(volume)
	return m
}

// Volume returns the current volume in [0, 65535].
func (m *SoftMixer) Volume() uint16 {
	return uint16(m.volume.Load())
}

// SetVolume sets the volume in [0, 65535].
func (m *SoftMixer) SetVolume(volume uint16) {
	m.volume.Store(uint32(volume))
}

// Attenuation returns the linear gain factor for the current volume.
func (m *SoftMixer) Attenuation() float64 {
	return float64(m.Volume()) / math.MaxUint16
}

// PercentToVolume maps 0-100 onto the mixer range, clamping out of range input.
func PercentToVolume(percent int) uint16 {
	percent = max(0, min(100, percent))
	return uint16(percent * math.MaxUint16 / 100)
}

// VolumeToPercent maps a mixer volume back to 0-100.
func VolumeToPercent(volume uint16) int {
	return int(math.Round(float64(volume) * 100 / math.MaxUint16))
}
