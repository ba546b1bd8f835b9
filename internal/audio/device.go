package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alkime/voiceover/pkg/collections"
	"github.com/gen2brain/malgo"
)

// FillFunc writes the next chunk of S16LE PCM into out. It is called from
// the device's audio thread.
type FillFunc func(out []byte)

// Output is a sound output device.
type Output interface {
	// Open allocates the device. fill is called whenever it needs data.
	Open(conf DeviceConfig, fill FillFunc) error

	// Start starts the device. A started device is a no-op.
	Start() error

	// Stop stops the device. An unallocated device is a no-op.
	Stop() error

	// IsStarted returns whether the device is currently running.
	IsStarted() bool

	// Close deallocates the device and frees resources.
	Close()
}

type malgoOutput struct {
	mgCtx    *malgo.AllocatedContext
	mgDevice *malgo.Device
}

// NewOutput returns the system's default playback device.
func NewOutput() Output {
	return &malgoOutput{}
}

// EnumerateDevices lists the available playback devices.
func EnumerateDevices(_ context.Context) ([]Info, error) {
	// An empty context is enough for listing devices.
	devCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	defer uninitializeContext(devCtx)

	playbackDevices, err := devCtx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("failed to get playback devices: %w", err)
	}

	return collections.Apply(playbackDevices, malgoDeviceInfoToDeviceInfo), nil
}

func (o *malgoOutput) Open(conf DeviceConfig, fill FillFunc) error {
	if fill == nil {
		return errors.New("fill func is nil. unable to allocate device")
	}

	if o.mgDevice != nil {
		return errors.New("device already open")
	}

	mgCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	devCnf := malgo.DefaultDeviceConfig(malgo.Playback)
	devCnf.Playback.Format = conf.Format
	devCnf.Playback.Channels = uint32(conf.Channels)
	devCnf.SampleRate = uint32(conf.SampleRate)

	callBacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, _ uint32) {
			fill(out)
		},
	}

	mgDevice, err := malgo.InitDevice(mgCtx.Context, devCnf, callBacks)
	if err != nil {
		uninitializeContext(mgCtx)
		return fmt.Errorf("failed to initialize malgo device: %w", err)
	}

	o.mgCtx = mgCtx
	o.mgDevice = mgDevice

	return nil
}

func (o *malgoOutput) Start() error {
	if o.mgDevice == nil {
		return errors.New("device nil. have you Open()ed it?")
	}

	if o.mgDevice.IsStarted() {
		return nil
	}

	if err := o.mgDevice.Start(); err != nil {
		return fmt.Errorf("failed to start malgo device: %w", err)
	}

	return nil
}

func (o *malgoOutput) Stop() error {
	if o.mgDevice == nil {
		return nil
	}

	if err := o.mgDevice.Stop(); err != nil {
		return fmt.Errorf("failed to stop malgo device: %w", err)
	}

	return nil
}

func (o *malgoOutput) IsStarted() bool {
	if o.mgDevice == nil {
		return false
	}

	return o.mgDevice.IsStarted()
}

func (o *malgoOutput) Close() {
	if o.mgDevice == nil {
		return
	}

	o.mgDevice.Uninit()
	uninitializeContext(o.mgCtx)
	o.mgDevice = nil
	o.mgCtx = nil
}

// Info describes an audio device.
type Info struct {
	Name        string   `json:"name" csv:"name" yaml:"name"`
	IsDefault   bool     `json:"is_default" csv:"is_default" yaml:"is_default"`
	FormatCount int      `json:"format_count" csv:"format_count" yaml:"format_count"`
	Formats     []string `json:"formats" csv:"-" yaml:"formats"`
}

func malgoDeviceInfoToDeviceInfo(mdi malgo.DeviceInfo) Info {
	formats := make([]string, len(mdi.Formats))
	for i, mf := range mdi.Formats {
		formats[i] = fmt.Sprintf("(SampleSizeBytes: %d, Channels: %d, SampleRate: %d)",
			malgo.SampleSizeInBytes(mf.Format),
			mf.Channels, mf.SampleRate)
	}

	return Info{
		Name:        mdi.Name(),
		IsDefault:   mdi.IsDefault != 0,
		FormatCount: int(mdi.FormatCount),
		Formats:     formats,
	}
}

func uninitializeContext(deviceCtx *malgo.AllocatedContext) {
	if deviceCtx == nil {
		return
	}

	if err := deviceCtx.Uninit(); err != nil {
		slog.Error("failed to uninitialize malgo context", "error", err)
	}
	deviceCtx.Free()
}
