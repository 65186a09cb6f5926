package widgets

import (
	"sync/atomic"

	"github.com/aerolens/uxsdk-go/pkg/key"
	"github.com/aerolens/uxsdk-go/pkg/keys"
	"github.com/aerolens/uxsdk-go/pkg/processor"
	"github.com/aerolens/uxsdk-go/pkg/widget"
)

// CameraModeModule tracks the capture mode of one camera. It is shared by
// the models that behave differently in photo and video mode.
type CameraModeModule struct {
	reg   *key.Registry
	index atomic.Int32
	mode  *processor.DataProcessor[keys.CaptureMode]
}

// NewCameraModeModule creates a module for the camera at index.
func NewCameraModeModule(reg *key.Registry, index int) *CameraModeModule {
	m := &CameraModeModule{
		reg:  reg,
		mode: processor.New(keys.CaptureModeUnknown, processor.Comparable[keys.CaptureMode]()),
	}
	m.index.Store(int32(index))
	return m
}

// Setup implements widget.Module.
func (m *CameraModeModule) Setup(b *widget.Binder) error {
	k, err := key.Of(m.reg, keys.CameraMode, m.Index(), 0)
	if err != nil {
		return err
	}
	return widget.Bind(b, k, m.mode)
}

// Cleanup implements widget.Module.
func (m *CameraModeModule) Cleanup() {}

// Index returns the camera index. A change takes effect on the host's next
// setup.
func (m *CameraModeModule) Index() int {
	return int(m.index.Load())
}

// SetIndex selects another camera.
func (m *CameraModeModule) SetIndex(index int) {
	m.index.Store(int32(index))
}

// Mode returns the capture mode stream.
func (m *CameraModeModule) Mode() processor.Observable[keys.CaptureMode] {
	return m.mode
}

// IsVideoMode reports whether the camera is in video mode.
func (m *CameraModeModule) IsVideoMode() bool {
	return m.mode.Value() == keys.CaptureModeVideo
}

// IsPhotoMode reports whether the camera is in photo mode.
func (m *CameraModeModule) IsPhotoMode() bool {
	return m.mode.Value() == keys.CaptureModePhoto
}

// Compile-time interface satisfaction check.
var _ widget.Module = (*CameraModeModule)(nil)
