// Package widget implements the widget model lifecycle.
//
// A Model drives a Behavior through CREATED, SETUP, ACTIVE and CLEANED_UP.
// During Setup the behavior and its composed modules bind store keys to data
// processors through a Binder. While ACTIVE, every value delivered to a
// binding is applied and followed by a call to UpdateStates, which
// recomputes the derived processors from the latest raw values.
//
// Module order: modules are set up in registration order before the
// behavior's InSetup, so the behavior can depend on processors a module
// publishes. On Cleanup the behavior's InCleanup runs first, then the
// modules' Cleanup in registration order.
//
// Lifecycle misuse: Setup on a model that is already set up returns
// ErrAlreadySetup. Cleanup on a model that is not set up is a no-op.
//
// Deliveries and hooks of one model are serialized by the model. Once
// Cleanup returns, no binding reaches any processor of the model. Hooks and
// binding callbacks must not call Setup, Cleanup or Restart on their own
// model.
package widget
