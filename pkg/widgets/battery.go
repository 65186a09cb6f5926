package widgets

import (
	"github.com/aerolens/uxsdk-go/pkg/key"
	"github.com/aerolens/uxsdk-go/pkg/keys"
	"github.com/aerolens/uxsdk-go/pkg/processor"
	"github.com/aerolens/uxsdk-go/pkg/store"
	"github.com/aerolens/uxsdk-go/pkg/widget"
)

// Battery thresholds in percent.
const (
	BatteryLowThreshold      = 30
	BatteryCriticalThreshold = 15
)

// BatteryLevel classifies the remaining charge.
type BatteryLevel uint8

const (
	BatteryLevelUnknown BatteryLevel = iota
	BatteryLevelNormal
	BatteryLevelLow
	BatteryLevelCritical
)

// String returns the level name.
func (l BatteryLevel) String() string {
	switch l {
	case BatteryLevelNormal:
		return "NORMAL"
	case BatteryLevelLow:
		return "LOW"
	case BatteryLevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// BatteryState is the derived state shown by the battery widget.
type BatteryState struct {
	Connected bool
	Percent   int
	VoltageMV int
	Level     BatteryLevel
}

// BatteryModel shows the charge of one battery.
type BatteryModel struct {
	*widget.Model

	reg   *key.Registry
	index int

	connected *processor.DataProcessor[bool]
	percent   *processor.DataProcessor[int]
	voltage   *processor.DataProcessor[int]
	state     *processor.DataProcessor[BatteryState]
}

// NewBatteryModel creates the model for the battery at index.
func NewBatteryModel(s *store.Store, reg *key.Registry, index int, opts ...widget.Option) *BatteryModel {
	b := &BatteryModel{
		reg:       reg,
		index:     index,
		connected: processor.New(false),
		percent:   processor.New(0),
		voltage:   processor.New(0),
		state:     processor.New(BatteryState{}, processor.Comparable[BatteryState]()),
	}
	b.Model = widget.NewModel(s, b, opts...)
	b.Own(b.connected, b.percent, b.voltage, b.state)
	return b
}

// InSetup implements widget.Behavior.
func (b *BatteryModel) InSetup(binder *widget.Binder) error {
	connection, err := key.Of(b.reg, keys.BatteryConnection, b.index, 0)
	if err != nil {
		return err
	}
	charge, err := key.Of(b.reg, keys.BatteryChargeRemaining, b.index, 0)
	if err != nil {
		return err
	}
	voltage, err := key.Of(b.reg, keys.BatteryVoltage, b.index, 0)
	if err != nil {
		return err
	}

	disconnected := widget.WithOnUnavailable(func() { b.connected.OnNext(false) })
	if err := widget.Bind(binder, connection, b.connected, disconnected); err != nil {
		return err
	}
	if err := widget.Bind(binder, charge, b.percent, disconnected); err != nil {
		return err
	}
	return widget.Bind(binder, voltage, b.voltage, disconnected)
}

// InCleanup implements widget.Behavior.
func (b *BatteryModel) InCleanup() {}

// UpdateStates implements widget.Behavior.
func (b *BatteryModel) UpdateStates() {
	st := BatteryState{
		Connected: b.connected.Value(),
		Percent:   b.percent.Value(),
		VoltageMV: b.voltage.Value(),
	}
	switch {
	case !st.Connected:
		st.Level = BatteryLevelUnknown
	case st.Percent <= BatteryCriticalThreshold:
		st.Level = BatteryLevelCritical
	case st.Percent <= BatteryLowThreshold:
		st.Level = BatteryLevelLow
	default:
		st.Level = BatteryLevelNormal
	}
	b.state.OnNext(st)
}

// Status returns the battery state stream.
func (b *BatteryModel) Status() processor.Observable[BatteryState] {
	return b.state
}
