package widgets

import (
	"context"
	"errors"
	"time"

	"github.com/aerolens/uxsdk-go/pkg/key"
	"github.com/aerolens/uxsdk-go/pkg/keys"
	"github.com/aerolens/uxsdk-go/pkg/processor"
	"github.com/aerolens/uxsdk-go/pkg/store"
	"github.com/aerolens/uxsdk-go/pkg/widget"
)

// ErrCameraBusy is returned by Trigger while the camera is shooting a photo
// or in a mode without a shutter action.
var ErrCameraBusy = errors.New("camera busy")

// RecordState is the derived state of the shutter button.
type RecordState struct {
	Connected     bool
	Mode          keys.CaptureMode
	Recording     bool
	ShootingPhoto bool
	Elapsed       time.Duration
}

// CanTrigger reports whether the shutter button is enabled.
func (s RecordState) CanTrigger() bool {
	if !s.Connected || s.ShootingPhoto {
		return false
	}
	return s.Mode == keys.CaptureModePhoto || s.Mode == keys.CaptureModeVideo
}

// RecordModel drives the shutter button: start or stop recording in video
// mode, shoot a photo in photo mode.
type RecordModel struct {
	*widget.Model

	reg    *key.Registry
	camera *CameraModeModule

	connected     *processor.DataProcessor[bool]
	recording     *processor.DataProcessor[bool]
	shootingPhoto *processor.DataProcessor[bool]
	elapsed       *processor.DataProcessor[int]
	state         *processor.DataProcessor[RecordState]
}

// NewRecordModel creates the model for the camera at index.
func NewRecordModel(s *store.Store, reg *key.Registry, index int, opts ...widget.Option) *RecordModel {
	r := &RecordModel{
		reg:           reg,
		camera:        NewCameraModeModule(reg, index),
		connected:     processor.New(false),
		recording:     processor.New(false),
		shootingPhoto: processor.New(false),
		elapsed:       processor.New(0),
		state:         processor.New(RecordState{}, processor.Comparable[RecordState]()),
	}
	r.Model = widget.NewModel(s, r, opts...)
	r.Own(r.camera.mode, r.connected, r.recording, r.shootingPhoto, r.elapsed, r.state)
	// Added before setup, so this cannot fail.
	_ = r.AddModule(r.camera)
	return r
}

// InSetup implements widget.Behavior.
func (r *RecordModel) InSetup(b *widget.Binder) error {
	index := r.camera.Index()

	connection, err := key.Of(r.reg, keys.CameraConnection, index, 0)
	if err != nil {
		return err
	}
	recording, err := key.Of(r.reg, keys.CameraIsRecording, index, 0)
	if err != nil {
		return err
	}
	shooting, err := key.Of(r.reg, keys.CameraIsShootingPhoto, index, 0)
	if err != nil {
		return err
	}
	elapsed, err := key.Of(r.reg, keys.CameraRecordingTime, index, 0)
	if err != nil {
		return err
	}

	disconnected := widget.WithOnUnavailable(func() { r.connected.OnNext(false) })
	if err := widget.Bind(b, connection, r.connected, disconnected); err != nil {
		return err
	}
	if err := widget.Bind(b, recording, r.recording); err != nil {
		return err
	}
	if err := widget.Bind(b, shooting, r.shootingPhoto); err != nil {
		return err
	}
	return widget.Bind(b, elapsed, r.elapsed)
}

// InCleanup implements widget.Behavior.
func (r *RecordModel) InCleanup() {}

// UpdateStates implements widget.Behavior.
func (r *RecordModel) UpdateStates() {
	st := RecordState{
		Connected:     r.connected.Value(),
		Mode:          r.camera.Mode().Value(),
		Recording:     r.recording.Value(),
		ShootingPhoto: r.shootingPhoto.Value(),
	}
	if st.Recording {
		st.Elapsed = time.Duration(r.elapsed.Value()) * time.Second
	}
	r.state.OnNext(st)
}

// Status returns the shutter state stream.
func (r *RecordModel) Status() processor.Observable[RecordState] {
	return r.state
}

// Mode returns the capture mode stream of the shared camera module.
func (r *RecordModel) Mode() processor.Observable[keys.CaptureMode] {
	return r.camera.Mode()
}

// CameraIndex returns the camera the model is bound to.
func (r *RecordModel) CameraIndex() int {
	return r.camera.Index()
}

// SetCameraIndex rebinds the model to another camera. Derived state keeps
// its last value until the new camera reports.
func (r *RecordModel) SetCameraIndex(index int) error {
	if index == r.camera.Index() {
		return nil
	}
	r.camera.SetIndex(index)
	if r.Model.State() != widget.StateActive {
		return nil
	}
	return r.Restart()
}

// Trigger presses the shutter button.
func (r *RecordModel) Trigger(ctx context.Context) *store.Completion {
	st := r.state.Value()
	if !st.CanTrigger() {
		return store.Resolved(ErrCameraBusy)
	}

	param := keys.CameraShootPhoto
	if st.Mode == keys.CaptureModeVideo {
		param = keys.CameraStartRecord
		if st.Recording {
			param = keys.CameraStopRecord
		}
	}
	k, err := key.Of(r.reg, param, r.camera.Index(), 0)
	if err != nil {
		return store.Resolved(err)
	}
	return store.SetValue(ctx, r.Store(), k, true)
}
