package widgets

import (
	"math"

	"github.com/aerolens/uxsdk-go/pkg/key"
	"github.com/aerolens/uxsdk-go/pkg/keys"
	"github.com/aerolens/uxsdk-go/pkg/processor"
	"github.com/aerolens/uxsdk-go/pkg/store"
	"github.com/aerolens/uxsdk-go/pkg/widget"
)

// FeetPerMeter converts aircraft altitude for imperial display.
const FeetPerMeter = 3.28084

// Altitude is the derived state of the altitude widget.
type Altitude struct {
	Value float64
	Unit  string
}

// AltitudeModel shows the aircraft altitude in the unit selected by the
// user preference.
type AltitudeModel struct {
	*widget.Model

	reg *key.Registry

	meters   *processor.DataProcessor[float64]
	units    *processor.DataProcessor[keys.UnitType]
	altitude *processor.DataProcessor[Altitude]
}

// NewAltitudeModel creates the model.
func NewAltitudeModel(s *store.Store, reg *key.Registry, opts ...widget.Option) *AltitudeModel {
	a := &AltitudeModel{
		reg:      reg,
		meters:   processor.New(0.0),
		units:    processor.New(keys.UnitMetric),
		altitude: processor.New(Altitude{Unit: "m"}, processor.Comparable[Altitude]()),
	}
	a.Model = widget.NewModel(s, a, opts...)
	a.Own(a.meters, a.units, a.altitude)
	return a
}

// InSetup implements widget.Behavior.
func (a *AltitudeModel) InSetup(b *widget.Binder) error {
	altitude, err := key.Of(a.reg, keys.FlightControllerAltitude, 0, 0)
	if err != nil {
		return err
	}
	units, err := key.Of(a.reg, keys.UXUnitType, 0, 0)
	if err != nil {
		return err
	}
	if err := widget.Bind(b, altitude, a.meters); err != nil {
		return err
	}
	return widget.Bind(b, units, a.units)
}

// InCleanup implements widget.Behavior.
func (a *AltitudeModel) InCleanup() {}

// UpdateStates implements widget.Behavior.
func (a *AltitudeModel) UpdateStates() {
	m := a.meters.Value()
	if a.units.Value() == keys.UnitImperial {
		a.altitude.OnNext(Altitude{Value: round1(m * FeetPerMeter), Unit: "ft"})
		return
	}
	a.altitude.OnNext(Altitude{Value: round1(m), Unit: "m"})
}

// Altitude returns the display altitude stream.
func (a *AltitudeModel) Altitude() processor.Observable[Altitude] {
	return a.altitude
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
