// Package keys declares the drone key catalog: camera, battery, flight
// controller, remote controller, gimbal and user preference parameters.
//
// Declarations have no side effects. Call RegisterAll once at startup to
// make them resolvable through a key.Registry:
//
//	reg := key.NewRegistry()
//	if err := keys.RegisterAll(reg); err != nil {
//		return err
//	}
//	recording := key.Must(reg, keys.CameraIsRecording, 0, 0)
package keys
