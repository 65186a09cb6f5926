// Package sim provides an in-memory simulated device implementing
// source.Source.
//
// A Device holds one value per key identity and delivers changes to its
// observers in the order they were made. Tests and the demo console use it
// to script timelines, inject write failures and count live subscriptions
// per key.
//
// Scenarios are YAML timelines of value changes applied to a Device, either
// step by step (Player.AdvanceTo) or in real time (Player.Run):
//
//	name: start-recording
//	steps:
//	  - at: 0s
//	    key: Camera.IsRecording[0]
//	    value: false
//	  - at: 20s
//	    key: Camera.IsRecording[0]
//	    value: true
//	  - at: 30s
//	    fail_writes: execution failed
package sim
