package keys

import (
	"fmt"
	"strings"
)

// CaptureMode is the capture mode of a camera.
type CaptureMode uint8

const (
	CaptureModeUnknown CaptureMode = iota
	CaptureModePhoto
	CaptureModeVideo
	CaptureModePlayback
)

var captureModeNames = map[CaptureMode]string{
	CaptureModeUnknown:  "UNKNOWN",
	CaptureModePhoto:    "PHOTO",
	CaptureModeVideo:    "VIDEO",
	CaptureModePlayback: "PLAYBACK",
}

// String returns the mode name.
func (m CaptureMode) String() string {
	if name, ok := captureModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("CaptureMode(%d)", uint8(m))
}

// UnmarshalText parses a mode name, case-insensitively.
func (m *CaptureMode) UnmarshalText(text []byte) error {
	for mode, name := range captureModeNames {
		if strings.EqualFold(name, string(text)) {
			*m = mode
			return nil
		}
	}
	return fmt.Errorf("unknown camera mode %q", text)
}

// FlightMode is the active flight controller mode.
type FlightMode uint8

const (
	FlightModeUnknown FlightMode = iota
	FlightModeManual
	FlightModeAtti
	FlightModeGPS
	FlightModeTakeOff
	FlightModeLanding
	FlightModeGoHome
	FlightModeTripod
	FlightModeSport
)

var flightModeNames = map[FlightMode]string{
	FlightModeUnknown: "UNKNOWN",
	FlightModeManual:  "MANUAL",
	FlightModeAtti:    "ATTI",
	FlightModeGPS:     "GPS",
	FlightModeTakeOff: "TAKE_OFF",
	FlightModeLanding: "LANDING",
	FlightModeGoHome:  "GO_HOME",
	FlightModeTripod:  "TRIPOD",
	FlightModeSport:   "SPORT",
}

// String returns the mode name.
func (m FlightMode) String() string {
	if name, ok := flightModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("FlightMode(%d)", uint8(m))
}

// UnmarshalText parses a mode name, case-insensitively.
func (m *FlightMode) UnmarshalText(text []byte) error {
	for mode, name := range flightModeNames {
		if strings.EqualFold(name, string(text)) {
			*m = mode
			return nil
		}
	}
	return fmt.Errorf("unknown flight mode %q", text)
}

// UnitType selects how distances are shown.
type UnitType string

const (
	UnitMetric   UnitType = "metric"
	UnitImperial UnitType = "imperial"
)

// UnmarshalText accepts "metric" and "imperial".
func (u *UnitType) UnmarshalText(text []byte) error {
	switch v := UnitType(strings.ToLower(string(text))); v {
	case UnitMetric, UnitImperial:
		*u = v
		return nil
	}
	return fmt.Errorf("unknown unit type %q", text)
}
