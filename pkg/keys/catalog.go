package keys

import "github.com/aerolens/uxsdk-go/pkg/key"

// Namespace names.
const (
	NamespaceCamera           = "Camera"
	NamespaceBattery          = "Battery"
	NamespaceFlightController = "FlightController"
	NamespaceRemoteController = "RemoteController"
	NamespaceGimbal           = "Gimbal"
	NamespaceUX               = "UX"
)

// Camera parameters. The index selects the camera, the sub-index the lens.
var (
	CameraConnection      = key.Declare[bool](NamespaceCamera, "Connection", key.AccessReadOnly)
	CameraMode            = key.Declare[CaptureMode](NamespaceCamera, "Mode", key.AccessReadWrite, key.WithType(key.DataTypeEnum))
	CameraIsRecording     = key.Declare[bool](NamespaceCamera, "IsRecording", key.AccessReadOnly)
	CameraIsShootingPhoto = key.Declare[bool](NamespaceCamera, "IsShootingPhoto", key.AccessReadOnly)
	CameraRecordingTime   = key.Declare[int](NamespaceCamera, "RecordingTime", key.AccessReadOnly, key.Unit("s"))
	CameraAELock          = key.Declare[bool](NamespaceCamera, "AELock", key.AccessReadWrite)
	CameraZoomRatio       = key.Declare[float64](NamespaceCamera, "ZoomRatio", key.AccessReadWrite,
		key.Optimistic(), key.Range(1.0, 28.0), key.Unit("x"))
	CameraStartRecord = key.Declare[bool](NamespaceCamera, "StartRecord", key.AccessAction)
	CameraStopRecord  = key.Declare[bool](NamespaceCamera, "StopRecord", key.AccessAction)
	CameraShootPhoto  = key.Declare[bool](NamespaceCamera, "ShootPhoto", key.AccessAction)
)

// Battery parameters. The index selects the battery.
var (
	BatteryConnection      = key.Declare[bool](NamespaceBattery, "Connection", key.AccessReadOnly)
	BatteryChargeRemaining = key.Declare[int](NamespaceBattery, "ChargeRemaining", key.AccessReadOnly,
		key.Range(0, 100), key.Unit("%"))
	BatteryVoltage     = key.Declare[int](NamespaceBattery, "Voltage", key.AccessReadOnly, key.Unit("mV"))
	BatteryTemperature = key.Declare[float64](NamespaceBattery, "Temperature", key.AccessReadOnly, key.Unit("°C"))
)

// Flight controller parameters.
var (
	FlightControllerConnection  = key.Declare[bool](NamespaceFlightController, "Connection", key.AccessReadOnly)
	FlightControllerFlightMode  = key.Declare[FlightMode](NamespaceFlightController, "FlightMode", key.AccessReadOnly, key.WithType(key.DataTypeEnum))
	FlightControllerAltitude    = key.Declare[float64](NamespaceFlightController, "Altitude", key.AccessReadOnly, key.Unit("m"))
	FlightControllerIsFlying    = key.Declare[bool](NamespaceFlightController, "IsFlying", key.AccessReadOnly)
	FlightControllerAreMotorsOn = key.Declare[bool](NamespaceFlightController, "AreMotorsOn", key.AccessReadOnly)
	FlightControllerGPSSignal   = key.Declare[int](NamespaceFlightController, "GPSSignalLevel", key.AccessReadOnly, key.Range(0, 5))
)

// Remote controller parameters.
var (
	RemoteControllerConnection      = key.Declare[bool](NamespaceRemoteController, "Connection", key.AccessReadOnly)
	RemoteControllerChargeRemaining = key.Declare[int](NamespaceRemoteController, "ChargeRemaining", key.AccessReadOnly,
		key.Range(0, 100), key.Unit("%"))
)

// Gimbal parameters. The index selects the gimbal.
var (
	GimbalPitch = key.Declare[float64](NamespaceGimbal, "Pitch", key.AccessReadOnly, key.Unit("°"))
	GimbalYaw   = key.Declare[float64](NamespaceGimbal, "Yaw", key.AccessReadOnly, key.Unit("°"))
	GimbalReset = key.Declare[bool](NamespaceGimbal, "Reset", key.AccessAction)
)

// User preferences. Preference sources have no confirmation channel, so
// writes are optimistic.
var (
	UXUnitType = key.Declare[UnitType](NamespaceUX, "UnitType", key.AccessReadWrite,
		key.Optimistic(), key.WithType(key.DataTypeEnum))
	UXShowGrid = key.Declare[bool](NamespaceUX, "ShowGrid", key.AccessReadWrite, key.Optimistic())
)

// Namespaces returns the catalog, one entry per namespace.
func Namespaces() []key.Namespace {
	return []key.Namespace{
		{Name: NamespaceCamera, Params: []key.Declaration{
			CameraConnection, CameraMode, CameraIsRecording, CameraIsShootingPhoto,
			CameraRecordingTime, CameraAELock, CameraZoomRatio,
			CameraStartRecord, CameraStopRecord, CameraShootPhoto,
		}},
		{Name: NamespaceBattery, Params: []key.Declaration{
			BatteryConnection, BatteryChargeRemaining, BatteryVoltage, BatteryTemperature,
		}},
		{Name: NamespaceFlightController, Params: []key.Declaration{
			FlightControllerConnection, FlightControllerFlightMode, FlightControllerAltitude,
			FlightControllerIsFlying, FlightControllerAreMotorsOn, FlightControllerGPSSignal,
		}},
		{Name: NamespaceRemoteController, Params: []key.Declaration{
			RemoteControllerConnection, RemoteControllerChargeRemaining,
		}},
		{Name: NamespaceGimbal, Params: []key.Declaration{
			GimbalPitch, GimbalYaw, GimbalReset,
		}},
		{Name: NamespaceUX, Params: []key.Declaration{
			UXUnitType, UXShowGrid,
		}},
	}
}

// RegisterAll registers every catalog namespace.
func RegisterAll(reg *key.Registry) error {
	for _, ns := range Namespaces() {
		if err := reg.Register(ns); err != nil {
			return err
		}
	}
	return nil
}
