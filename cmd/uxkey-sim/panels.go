package main

import (
	"fmt"
	"log"

	"github.com/aerolens/uxsdk-go/pkg/processor"
	"github.com/aerolens/uxsdk-go/pkg/widget"
	"github.com/aerolens/uxsdk-go/pkg/widgets"
)

// lifecycle is the part of a widget model the console drives.
type lifecycle interface {
	Setup() error
	Cleanup()
	Restart() error
	Dispose()
	State() widget.State
	Name() string
}

// panel is one widget on the simulated screen.
type panel struct {
	title    string
	model    lifecycle
	describe func() string
}

func (a *App) buildPanels(camera int, opts ...widget.Option) {
	battery := widgets.NewBatteryModel(a.store, a.reg, 0, opts...)
	a.record = widgets.NewRecordModel(a.store, a.reg, camera, opts...)
	a.aeLock = widgets.NewAELockModel(a.store, a.reg, camera, opts...)
	flight := widgets.NewFlightModeModel(a.store, a.reg, opts...)
	altitude := widgets.NewAltitudeModel(a.store, a.reg, opts...)

	a.panels = []*panel{
		newPanel("battery", battery, battery.Status(), formatBattery),
		newPanel("shutter", a.record, a.record.Status(), formatRecord),
		newPanel("ae-lock", a.aeLock, a.aeLock.Status(), formatAELock),
		newPanel("flight-mode", flight, flight.Text(), func(s string) string { return s }),
		newPanel("altitude", altitude, altitude.Altitude(), formatAltitude),
	}
}

// newPanel prints every change of the widget's derived state.
func newPanel[T any](title string, m lifecycle, o processor.Observable[T], format func(T) string) *panel {
	o.Subscribe(func(v T) {
		log.Printf("[%s] %s", title, format(v))
	})
	return &panel{
		title:    title,
		model:    m,
		describe: func() string { return format(o.Value()) },
	}
}

func (a *App) panel(title string) *panel {
	for _, p := range a.panels {
		if p.title == title {
			return p
		}
	}
	return nil
}

func formatBattery(s widgets.BatteryState) string {
	if !s.Connected {
		return "disconnected"
	}
	return fmt.Sprintf("%d%% %.2fV %s", s.Percent, float64(s.VoltageMV)/1000, s.Level)
}

func formatRecord(s widgets.RecordState) string {
	if !s.Connected {
		return "disconnected"
	}
	switch {
	case s.Recording:
		return fmt.Sprintf("%s REC %s", s.Mode, s.Elapsed)
	case s.ShootingPhoto:
		return fmt.Sprintf("%s shooting", s.Mode)
	case s.CanTrigger():
		return fmt.Sprintf("%s ready", s.Mode)
	default:
		return fmt.Sprintf("%s unavailable", s.Mode)
	}
}

func formatAELock(s widgets.AELockState) string {
	switch {
	case !s.Connected:
		return "disconnected"
	case s.Locked:
		return "AE locked"
	default:
		return "AE auto"
	}
}

func formatAltitude(a widgets.Altitude) string {
	return fmt.Sprintf("%.1f %s", a.Value, a.Unit)
}
