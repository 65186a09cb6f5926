package widgets

import (
	"context"

	"github.com/aerolens/uxsdk-go/pkg/key"
	"github.com/aerolens/uxsdk-go/pkg/keys"
	"github.com/aerolens/uxsdk-go/pkg/processor"
	"github.com/aerolens/uxsdk-go/pkg/store"
	"github.com/aerolens/uxsdk-go/pkg/widget"
)

// AELockState is the derived state of the exposure lock toggle.
type AELockState struct {
	Connected bool
	Locked    bool
}

// AELockModel toggles the auto exposure lock of one camera.
type AELockModel struct {
	*widget.Model

	reg    *key.Registry
	camera *CameraModeModule

	connected *processor.DataProcessor[bool]
	locked    *processor.DataProcessor[bool]
	state     *processor.DataProcessor[AELockState]
}

// NewAELockModel creates the model for the camera at index.
func NewAELockModel(s *store.Store, reg *key.Registry, index int, opts ...widget.Option) *AELockModel {
	a := &AELockModel{
		reg:       reg,
		camera:    NewCameraModeModule(reg, index),
		connected: processor.New(false),
		locked:    processor.New(false),
		state:     processor.New(AELockState{}, processor.Comparable[AELockState]()),
	}
	a.Model = widget.NewModel(s, a, opts...)
	a.Own(a.camera.mode, a.connected, a.locked, a.state)
	_ = a.AddModule(a.camera)
	return a
}

// InSetup implements widget.Behavior.
func (a *AELockModel) InSetup(b *widget.Binder) error {
	connection, err := key.Of(a.reg, keys.CameraConnection, a.camera.Index(), 0)
	if err != nil {
		return err
	}
	lock, err := key.Of(a.reg, keys.CameraAELock, a.camera.Index(), 0)
	if err != nil {
		return err
	}
	disconnected := widget.WithOnUnavailable(func() { a.connected.OnNext(false) })
	if err := widget.Bind(b, connection, a.connected, disconnected); err != nil {
		return err
	}
	return widget.Bind(b, lock, a.locked)
}

// InCleanup implements widget.Behavior.
func (a *AELockModel) InCleanup() {}

// UpdateStates implements widget.Behavior.
func (a *AELockModel) UpdateStates() {
	a.state.OnNext(AELockState{
		Connected: a.connected.Value(),
		Locked:    a.locked.Value(),
	})
}

// Status returns the lock state stream.
func (a *AELockModel) Status() processor.Observable[AELockState] {
	return a.state
}

// Toggle flips the exposure lock. The state only changes once the camera
// confirms; a rejected write is reported through the completion.
func (a *AELockModel) Toggle(ctx context.Context) *store.Completion {
	k, err := key.Of(a.reg, keys.CameraAELock, a.camera.Index(), 0)
	if err != nil {
		return store.Resolved(err)
	}
	return store.SetValue(ctx, a.Store(), k, !a.locked.Value())
}
