// Package key implements the typed key registry.
//
// # Addressing
//
// Every piece of external device state is addressed by the tuple:
//
//	(Namespace, Parameter, Index, SubIndex)
//
// for example the recording flag of the second camera is
// (Camera, IsRecording, 1, 0), written as "Camera.IsRecording[1]". SubIndex
// selects a lens on multi-lens cameras and is 0 otherwise.
//
// # Declaration and Registration
//
// Parameters are declared statically, one package-level value per
// parameter, and grouped into a Namespace:
//
//	var IsRecording = key.Declare[bool]("Camera", "IsRecording", key.AccessReadOnly)
//
//	var Camera = key.Namespace{Name: "Camera", Params: []key.Declaration{IsRecording}}
//
// Declaring does not touch any registry. The application registers each
// namespace exactly once at startup:
//
//	reg := key.NewRegistry()
//	reg.Register(Camera)
//
// # Interning
//
// Keys are interned per registry: two lookups with the same identity return
// the same *Key[T] pointer, so keys can be compared by identity and used as
// map keys. Lookups are safe for concurrent first use.
package key
