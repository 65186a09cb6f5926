package widgets

import (
	"github.com/aerolens/uxsdk-go/pkg/key"
	"github.com/aerolens/uxsdk-go/pkg/keys"
	"github.com/aerolens/uxsdk-go/pkg/processor"
	"github.com/aerolens/uxsdk-go/pkg/store"
	"github.com/aerolens/uxsdk-go/pkg/widget"
)

// Placeholder shown while the aircraft is disconnected.
const FlightModeDisconnected = "N/A"

// FlightModeModel renders the flight mode of the aircraft as text.
type FlightModeModel struct {
	*widget.Model

	reg *key.Registry

	connected *processor.DataProcessor[bool]
	mode      *processor.DataProcessor[keys.FlightMode]
	text      *processor.DataProcessor[string]
}

// NewFlightModeModel creates the model.
func NewFlightModeModel(s *store.Store, reg *key.Registry, opts ...widget.Option) *FlightModeModel {
	f := &FlightModeModel{
		reg:       reg,
		connected: processor.New(false),
		mode:      processor.New(keys.FlightModeUnknown),
		text:      processor.New(FlightModeDisconnected, processor.Comparable[string]()),
	}
	f.Model = widget.NewModel(s, f, opts...)
	f.Own(f.connected, f.mode, f.text)
	return f
}

// InSetup implements widget.Behavior.
func (f *FlightModeModel) InSetup(b *widget.Binder) error {
	connection, err := key.Of(f.reg, keys.FlightControllerConnection, 0, 0)
	if err != nil {
		return err
	}
	mode, err := key.Of(f.reg, keys.FlightControllerFlightMode, 0, 0)
	if err != nil {
		return err
	}
	disconnected := widget.WithOnUnavailable(func() { f.connected.OnNext(false) })
	if err := widget.Bind(b, connection, f.connected, disconnected); err != nil {
		return err
	}
	return widget.Bind(b, mode, f.mode)
}

// InCleanup implements widget.Behavior.
func (f *FlightModeModel) InCleanup() {}

// UpdateStates implements widget.Behavior.
func (f *FlightModeModel) UpdateStates() {
	if !f.connected.Value() {
		f.text.OnNext(FlightModeDisconnected)
		return
	}
	f.text.OnNext(f.mode.Value().String())
}

// Text returns the display text stream.
func (f *FlightModeModel) Text() processor.Observable[string] {
	return f.text
}
