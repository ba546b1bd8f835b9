package audio

import (
	"github.com/gen2brain/malgo"
)

// DeviceConfig describes the PCM stream an output device is opened with.
type DeviceConfig struct {
	Format     malgo.FormatType
	Channels   int
	SampleRate int
}

// ConfigFor returns the device config that plays clip untouched.
func ConfigFor(clip Clip) DeviceConfig {
	return DeviceConfig{
		Format:     malgo.FormatS16,
		Channels:   clip.Channels,
		SampleRate: clip.SampleRate,
	}
}
